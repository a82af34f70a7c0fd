package numerator

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	corenumerator "enoria/internal/core/numerator"
)

type mockRow struct {
	val int64
	err error
}

func (m *mockRow) Scan(dest ...any) error {
	if m.err != nil {
		return m.err
	}
	if len(dest) > 0 {
		if ptr, ok := dest[0].(*int64); ok {
			*ptr = m.val
		}
	}
	return nil
}

// mockQuerier simulates the sys_sequences upsert: every call advances the
// stored value by the increment and returns the new value.
type mockQuerier struct {
	mu      sync.Mutex
	current int64
	keys    []string
}

func (m *mockQuerier) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	m.mu.Lock()
	defer m.mu.Unlock()

	var increment int64 = 1
	if len(args) == 2 {
		if v, ok := args[1].(int64); ok {
			increment = v
		}
	}
	if len(args) > 0 {
		if key, ok := args[0].(string); ok {
			m.keys = append(m.keys, key)
		}
	}

	m.current += increment
	return &mockRow{val: m.current}
}

func TestGetNextNumberStrict(t *testing.T) {
	q := &mockQuerier{}
	svc := New(q)
	ctx := context.Background()

	// Fixed period so the expected strings never drift with the clock
	period := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)
	cfg := corenumerator.DefaultConfig("INV")

	first, err := svc.GetNextNumber(ctx, cfg, nil, period)
	require.NoError(t, err)
	assert.Equal(t, "INV-2026-00001", first)

	second, err := svc.GetNextNumber(ctx, cfg, nil, period)
	require.NoError(t, err)
	assert.Equal(t, "INV-2026-00002", second)

	// Yearly reset is encoded in the sequence key
	require.NotEmpty(t, q.keys)
	assert.Equal(t, "INV_2026", q.keys[0])
}

func TestGetNextNumberCached(t *testing.T) {
	q := &mockQuerier{}
	svc := New(q)
	ctx := context.Background()

	period := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)
	cfg := corenumerator.DefaultConfig("INV")
	opts := &corenumerator.Options{Strategy: corenumerator.StrategyCached, RangeSize: 10}

	for i := 1; i <= 15; i++ {
		num, err := svc.GetNextNumber(ctx, cfg, opts, period)
		require.NoError(t, err)
		assert.Equal(t, formatNumber(cfg, period, int64(i)), num)
	}

	// 15 numbers from ranges of 10 means exactly two database round trips
	assert.Len(t, q.keys, 2)
}

func TestGetNextNumberFormats(t *testing.T) {
	period := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		cfg  corenumerator.Config
		want string
	}{
		{
			name: "year and default width",
			cfg:  corenumerator.Config{Prefix: "INV", IncludeYear: true},
			want: "INV-2026-00001",
		},
		{
			name: "no year",
			cfg:  corenumerator.Config{Prefix: "DOC"},
			want: "DOC-00001",
		},
		{
			name: "custom width",
			cfg:  corenumerator.Config{Prefix: "X", IncludeYear: true, PadWidth: 3},
			want: "X-2026-001",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := New(&mockQuerier{})
			got, err := svc.GetNextNumber(context.Background(), tt.cfg, nil, period)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestBuildKey(t *testing.T) {
	period := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, "INV_2026", buildKey(corenumerator.Config{Prefix: "INV", ResetPeriod: "year"}, period))
	assert.Equal(t, "INV_2026_03", buildKey(corenumerator.Config{Prefix: "INV", ResetPeriod: "month"}, period))
	assert.Equal(t, "INV", buildKey(corenumerator.Config{Prefix: "INV", ResetPeriod: "never"}, period))
}

func TestSetNextNumberResetsCache(t *testing.T) {
	q := &mockQuerier{}
	svc := New(q)
	ctx := context.Background()

	period := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)
	cfg := corenumerator.DefaultConfig("INV")
	opts := &corenumerator.Options{Strategy: corenumerator.StrategyCached, RangeSize: 10}

	_, err := svc.GetNextNumber(ctx, cfg, opts, period)
	require.NoError(t, err)

	require.NoError(t, svc.SetNextNumber(ctx, cfg, period, 100))

	// Cached range was dropped, so the next call reserves a fresh one
	_, err = svc.GetNextNumber(ctx, cfg, opts, period)
	require.NoError(t, err)
	assert.Len(t, q.keys, 3)
}
