package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseQuantity(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Quantity
		wantErr bool
	}{
		{name: "integer", input: "5", want: 5000},
		{name: "one decimal", input: "2.5", want: 2500},
		{name: "three decimals", input: "0.001", want: 1},
		{name: "extra digits truncated", input: "1.2345", want: 1234},
		{name: "negative", input: "-3.25", want: -3250},
		{name: "leading plus", input: "+7", want: 7000},
		{name: "bare fraction", input: ".5", want: 500},
		{name: "whitespace", input: " 10 ", want: 10000},
		{name: "empty", input: "", wantErr: true},
		{name: "garbage", input: "abc", wantErr: true},
		{name: "exponent rejected", input: "1e3", wantErr: true},
		{name: "uppercase exponent rejected", input: "2E-1", wantErr: true},
		{name: "overflow rejected", input: "99999999999999999999", wantErr: true},
		{name: "scaled overflow rejected", input: "9223372036854776", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseQuantity(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestQuantityString(t *testing.T) {
	assert.Equal(t, "5.000", NewQuantityFromFloat64(5).String())
	assert.Equal(t, "0.001", Quantity(1).String())
	assert.Equal(t, "-3.250", Quantity(-3250).String())
	assert.Equal(t, "0.000", Quantity(0).String())
}

func TestQuantityJSONRoundTrip(t *testing.T) {
	type payload struct {
		Qty Quantity `json:"qty"`
	}

	data, err := json.Marshal(payload{Qty: Quantity(12345)})
	require.NoError(t, err)
	assert.Equal(t, `{"qty":12.345}`, string(data))

	var decoded payload
	require.NoError(t, json.Unmarshal([]byte(`{"qty":12.345}`), &decoded))
	assert.Equal(t, Quantity(12345), decoded.Qty)

	// Strings are accepted too
	require.NoError(t, json.Unmarshal([]byte(`{"qty":"0.5"}`), &decoded))
	assert.Equal(t, Quantity(500), decoded.Qty)

	require.NoError(t, json.Unmarshal([]byte(`{"qty":null}`), &decoded))
	assert.Equal(t, Quantity(0), decoded.Qty)
}

func TestQuantityArithmeticHelpers(t *testing.T) {
	q := Quantity(-1500)
	assert.True(t, q.IsNegative())
	assert.Equal(t, Quantity(1500), q.Abs())
	assert.Equal(t, Quantity(1500), q.Neg())
	assert.True(t, Quantity(0).IsZero())
	assert.InDelta(t, -1.5, q.Float64(), 1e-9)
}

func TestTotalValue(t *testing.T) {
	tests := []struct {
		name     string
		qty      string
		unitCost string
		want     MinorUnits
	}{
		{name: "whole units", qty: "10", unitCost: "1.50", want: 1500},
		{name: "fractional quantity", qty: "2.5", unitCost: "3.00", want: 750},
		{name: "rounded to minor units", qty: "0.333", unitCost: "1.00", want: 33},
		{name: "four digit cost", qty: "100", unitCost: "0.1234", want: 1234},
		{name: "zero quantity", qty: "0", unitCost: "99.99", want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := ParseQuantity(tt.qty)
			require.NoError(t, err)
			assert.Equal(t, tt.want, TotalValue(q, MustMoney(tt.unitCost)))
		})
	}
}

func TestMinorUnitsDecimal(t *testing.T) {
	m := MinorUnits(1234)
	assert.Equal(t, "12.34", m.Decimal().StringFixed(2))
	assert.Equal(t, MinorUnits(-1234), m.Neg())
}

func TestNormalizeUnitCost(t *testing.T) {
	assert.True(t, MustMoney("1.2346").Equal(NormalizeUnitCost(MustMoney("1.23456"))))
}
