package repository

import (
	"context"
	"errors"

	"library-backend/internal/domains/inventory/model"
	"library-backend/internal/shared/apperror"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type postgresRepository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) RepositoryInterface {
	return &postgresRepository{pool: pool}
}

func (r *postgresRepository) LockStockWithTx(ctx context.Context, tx pgx.Tx, bookID uuid.UUID) (int, error) {
	// Pessimistic lock: concurrent adjusters of the same book queue here.
	query := `SELECT stock FROM books WHERE id = $1 FOR UPDATE`

	var stock int
	if err := tx.QueryRow(ctx, query, bookID).Scan(&stock); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, model.ErrBookNotFound
		}
		return 0, apperror.Storage("lock book stock", err)
	}
	return stock, nil
}

func (r *postgresRepository) SetStockWithTx(ctx context.Context, tx pgx.Tx, bookID uuid.UUID, stock int) error {
	query := `
		UPDATE books
		SET stock = $2, updated_at = NOW()
		WHERE id = $1
	`

	tag, err := tx.Exec(ctx, query, bookID, stock)
	if err != nil {
		return apperror.FromPg("update book stock", err, nil)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrBookNotFound
	}
	return nil
}

func (r *postgresRepository) CreateMovementWithTx(ctx context.Context, tx pgx.Tx, m *model.StockMovement) error {
	query := `
		INSERT INTO stock_movements (
			book_id, delta, stock_before, stock_after, reason,
			borrowing_id, actor_id, note
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at
	`

	err := tx.QueryRow(ctx, query,
		m.BookID,
		m.Delta,
		m.StockBefore,
		m.StockAfter,
		m.Reason,
		m.BorrowingID,
		m.ActorID,
		m.Note,
	).Scan(&m.ID, &m.CreatedAt)
	if err != nil {
		return apperror.FromPg("insert stock movement", err, nil)
	}
	return nil
}

func (r *postgresRepository) ListMovements(ctx context.Context, bookID uuid.UUID, limit, offset int) ([]model.StockMovement, int, error) {
	var total int
	countQuery := `SELECT COUNT(*) FROM stock_movements WHERE book_id = $1`
	if err := r.pool.QueryRow(ctx, countQuery, bookID).Scan(&total); err != nil {
		return nil, 0, apperror.Storage("count stock movements", err)
	}

	query := `
		SELECT id, book_id, delta, stock_before, stock_after, reason,
		       borrowing_id, actor_id, note, created_at
		FROM stock_movements
		WHERE book_id = $1
		ORDER BY created_at DESC, id
		LIMIT $2 OFFSET $3
	`

	rows, err := r.pool.Query(ctx, query, bookID, limit, offset)
	if err != nil {
		return nil, 0, apperror.Storage("list stock movements", err)
	}
	defer rows.Close()

	movements := make([]model.StockMovement, 0, limit)
	for rows.Next() {
		var m model.StockMovement
		if err := rows.Scan(
			&m.ID,
			&m.BookID,
			&m.Delta,
			&m.StockBefore,
			&m.StockAfter,
			&m.Reason,
			&m.BorrowingID,
			&m.ActorID,
			&m.Note,
			&m.CreatedAt,
		); err != nil {
			return nil, 0, apperror.Storage("scan stock movement", err)
		}
		movements = append(movements, m)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, apperror.Storage("iterate stock movements", err)
	}

	return movements, total, nil
}
