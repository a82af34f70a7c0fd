// Package document_repo provides PostgreSQL implementations for document
// repositories.
package document_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"enoria/internal/core/apperror"
	"enoria/internal/core/id"
	"enoria/internal/domain/inventory"
	"enoria/internal/infrastructure/storage/postgres"
)

const (
	sessionsTable     = "inv_sessions"
	sessionItemsTable = "inv_session_items"
)

var itemColumns = []string{
	"id", "session_id", "item_type", "product_id", "asset_id",
	"book_quantity", "physical_quantity", "unit_cost", "notes",
}

// SessionRepo implements inventory.Repository.
type SessionRepo struct {
	txManager   *postgres.TxManager
	builder     squirrel.StatementBuilderType
	sessionCols []string
}

// NewSessionRepo creates a new session repository.
func NewSessionRepo(txManager *postgres.TxManager) *SessionRepo {
	return &SessionRepo{
		txManager:   txManager,
		builder:     squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
		sessionCols: postgres.ExtractDBColumns[inventory.Session](),
	}
}

func (r *SessionRepo) querier(ctx context.Context) postgres.Querier {
	return r.txManager.GetQuerier(ctx)
}

// CreateSession inserts a new session using its "db" tags.
func (r *SessionRepo) CreateSession(ctx context.Context, s *inventory.Session) error {
	data := postgres.StructToMap(s)

	q := r.builder.Insert(sessionsTable).SetMap(data)

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.querier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert session: %w", err)
	}

	return nil
}

// UpdateSession modifies a session with optimistic locking.
func (r *SessionRepo) UpdateSession(ctx context.Context, s *inventory.Session) error {
	data := postgres.StructToMap(s)
	version, _ := data["version"].(int)
	delete(data, "id")
	delete(data, "version")

	q := r.builder.Update(sessionsTable).
		SetMap(data).
		Set("version", squirrel.Expr("version + 1")).
		Where(squirrel.Eq{"id": s.ID}).
		Where(squirrel.Eq{"version": version})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	result, err := r.querier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update session: %w", err)
	}

	if result.RowsAffected() == 0 {
		return apperror.NewConcurrentModification("inventory session", s.ID)
	}

	s.Version = version + 1
	return nil
}

// GetSession retrieves a session by ID.
func (r *SessionRepo) GetSession(ctx context.Context, sessionID id.ID) (*inventory.Session, error) {
	q := r.builder.Select(r.sessionCols...).
		From(sessionsTable).
		Where(squirrel.Eq{"id": sessionID}).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var s inventory.Session
	if err := pgxscan.Get(ctx, r.querier(ctx), &s, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("inventory session", sessionID.String())
		}
		return nil, fmt.Errorf("get session: %w", err)
	}

	return &s, nil
}

// ListSessions retrieves sessions with filtering and pagination.
func (r *SessionRepo) ListSessions(ctx context.Context, filter inventory.ListFilter) ([]*inventory.Session, error) {
	q := r.builder.Select(r.sessionCols...).From(sessionsTable)

	if filter.ParishID != nil {
		q = q.Where(squirrel.Eq{"parish_id": *filter.ParishID})
	}
	if filter.WarehouseID != nil {
		q = q.Where(squirrel.Eq{"warehouse_id": *filter.WarehouseID})
	}
	if filter.Status != nil {
		q = q.Where(squirrel.Eq{"status": *filter.Status})
	}

	q = q.OrderBy("date DESC", "number DESC")

	if filter.Limit > 0 {
		q = q.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		q = q.Offset(uint64(filter.Offset))
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var sessions []*inventory.Session
	if err := pgxscan.Select(ctx, r.querier(ctx), &sessions, sql, args...); err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}

	return sessions, nil
}

// AddItems inserts session items, using COPY when inside a transaction.
func (r *SessionRepo) AddItems(ctx context.Context, items []inventory.Item) error {
	if len(items) == 0 {
		return nil
	}

	if tx := r.txManager.GetTx(ctx); tx != nil {
		inserter := postgres.NewBatchInserter(r.txManager)
		rows := make([][]any, 0, len(items))
		for _, item := range items {
			rows = append(rows, []any{
				item.ID, item.SessionID, item.Type, item.ProductID, item.AssetID,
				item.BookQuantity, item.PhysicalQuantity, item.UnitCost, item.Notes,
			})
		}
		if _, err := inserter.CopyFromSlice(ctx, sessionItemsTable, itemColumns, rows); err != nil {
			return fmt.Errorf("copy session items: %w", err)
		}
		return nil
	}

	q := r.builder.Insert(sessionItemsTable).Columns(itemColumns...)
	for _, item := range items {
		q = q.Values(
			item.ID, item.SessionID, item.Type, item.ProductID, item.AssetID,
			item.BookQuantity, item.PhysicalQuantity, item.UnitCost, item.Notes,
		)
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.querier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert session items: %w", err)
	}

	return nil
}

// UpdateItem stores a recorded count.
func (r *SessionRepo) UpdateItem(ctx context.Context, item *inventory.Item) error {
	q := r.builder.Update(sessionItemsTable).
		Set("physical_quantity", item.PhysicalQuantity).
		Set("unit_cost", item.UnitCost).
		Set("notes", item.Notes).
		Where(squirrel.Eq{"id": item.ID}).
		Where(squirrel.Eq{"session_id": item.SessionID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	result, err := r.querier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update session item: %w", err)
	}

	if result.RowsAffected() == 0 {
		return apperror.NewNotFound("session item", item.ID.String())
	}

	return nil
}

// GetItem retrieves one item of a session.
func (r *SessionRepo) GetItem(ctx context.Context, sessionID, itemID id.ID) (*inventory.Item, error) {
	q := r.builder.Select(itemColumns...).
		From(sessionItemsTable).
		Where(squirrel.Eq{"id": itemID, "session_id": sessionID}).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var item inventory.Item
	if err := pgxscan.Get(ctx, r.querier(ctx), &item, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("session item", itemID.String())
		}
		return nil, fmt.Errorf("get session item: %w", err)
	}

	return &item, nil
}

// GetItems retrieves all items of a session.
func (r *SessionRepo) GetItems(ctx context.Context, sessionID id.ID) ([]inventory.Item, error) {
	q := r.builder.Select(itemColumns...).
		From(sessionItemsTable).
		Where(squirrel.Eq{"session_id": sessionID}).
		OrderBy("product_id NULLS LAST", "asset_id")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var items []inventory.Item
	if err := pgxscan.Select(ctx, r.querier(ctx), &items, sql, args...); err != nil {
		return nil, fmt.Errorf("get session items: %w", err)
	}

	return items, nil
}

// Ensure interface compliance.
var _ inventory.Repository = (*SessionRepo)(nil)
