package repository

import (
	"context"
	"errors"
	"fmt"

	"library-backend/internal/domains/borrowing/model"
	"library-backend/internal/shared/access"
	"library-backend/internal/shared/apperror"
	"library-backend/internal/shared/utils"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const borrowingColumns = `id, client_id, book_id, actor_id, borrow_date, quantity, status, created_at, updated_at`

const viewSelect = `
	SELECT
		br.id, br.client_id, br.book_id, br.actor_id, br.borrow_date,
		br.quantity, br.status, br.created_at, br.updated_at,
		c.first_name || ' ' || c.last_name,
		bk.title,
		bk.author,
		u.username
	FROM borrowings br
	JOIN clients c ON c.id = br.client_id
	JOIN books bk ON bk.id = br.book_id
	JOIN users u ON u.id = br.actor_id
`

type postgresRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresRepository(pool *pgxpool.Pool) RepositoryInterface {
	return &postgresRepository{pool: pool}
}

func scanBorrowing(row pgx.Row) (*model.Borrowing, error) {
	var (
		b      model.Borrowing
		status string
	)
	err := row.Scan(
		&b.ID,
		&b.ClientID,
		&b.BookID,
		&b.ActorID,
		&b.BorrowDate,
		&b.Quantity,
		&status,
		&b.CreatedAt,
		&b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	b.Status = model.Status(status)
	return &b, nil
}

func scanView(row pgx.Row) (*model.BorrowingView, error) {
	var (
		v      model.BorrowingView
		status string
	)
	err := row.Scan(
		&v.ID,
		&v.ClientID,
		&v.BookID,
		&v.ActorID,
		&v.BorrowDate,
		&v.Quantity,
		&status,
		&v.CreatedAt,
		&v.UpdatedAt,
		&v.ClientName,
		&v.BookTitle,
		&v.BookAuthor,
		&v.Username,
	)
	if err != nil {
		return nil, err
	}
	v.Status = model.Status(status)
	return &v, nil
}

func (r *postgresRepository) GetByIDForUpdateWithTx(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*model.Borrowing, error) {
	query := `SELECT ` + borrowingColumns + ` FROM borrowings WHERE id = $1 FOR UPDATE`

	b, err := scanBorrowing(tx.QueryRow(ctx, query, id))
	if err != nil {
		return nil, apperror.FromPg("lock borrowing", err, model.ErrBorrowingNotFound)
	}
	return b, nil
}

func (r *postgresRepository) CreateWithTx(ctx context.Context, tx pgx.Tx, b *model.Borrowing) error {
	query := `
		INSERT INTO borrowings (id, client_id, book_id, actor_id, borrow_date, quantity, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at, updated_at
	`

	err := tx.QueryRow(ctx, query,
		b.ID,
		b.ClientID,
		b.BookID,
		b.ActorID,
		b.BorrowDate,
		b.Quantity,
		string(b.Status),
	).Scan(&b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return apperror.FromPg("insert borrowing", err, nil)
	}
	return nil
}

func (r *postgresRepository) UpdateWithTx(ctx context.Context, tx pgx.Tx, b *model.Borrowing) error {
	query := `
		UPDATE borrowings
		SET client_id = $2, book_id = $3, borrow_date = $4, quantity = $5, status = $6, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`

	err := tx.QueryRow(ctx, query,
		b.ID,
		b.ClientID,
		b.BookID,
		b.BorrowDate,
		b.Quantity,
		string(b.Status),
	).Scan(&b.UpdatedAt)
	if err != nil {
		return apperror.FromPg("update borrowing", err, model.ErrBorrowingNotFound)
	}
	return nil
}

func (r *postgresRepository) DeleteWithTx(ctx context.Context, tx pgx.Tx, id uuid.UUID) error {
	tag, err := tx.Exec(ctx, `DELETE FROM borrowings WHERE id = $1`, id)
	if err != nil {
		return apperror.FromPg("delete borrowing", err, nil)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrBorrowingNotFound
	}
	return nil
}

func (r *postgresRepository) ClientExistsWithTx(ctx context.Context, tx pgx.Tx, id uuid.UUID) (bool, error) {
	return existsWithTx(ctx, tx, `SELECT 1 FROM clients WHERE id = $1 FOR KEY SHARE`, id)
}

func existsWithTx(ctx context.Context, tx pgx.Tx, query string, id uuid.UUID) (bool, error) {
	var one int
	err := tx.QueryRow(ctx, query, id).Scan(&one)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, apperror.Storage("check reference", err)
	}
	return true, nil
}

func (r *postgresRepository) GetView(ctx context.Context, id uuid.UUID) (*model.BorrowingView, error) {
	v, err := scanView(r.pool.QueryRow(ctx, viewSelect+` WHERE br.id = $1`, id))
	if err != nil {
		return nil, apperror.FromPg("get borrowing", err, model.ErrBorrowingNotFound)
	}
	return v, nil
}

func (r *postgresRepository) List(
	ctx context.Context,
	scope access.Scope,
	filter model.ListFilter,
	limit, offset int,
) ([]model.BorrowingView, int, error) {
	var (
		conditions []string
		args       []any
		argPos     = 1
	)

	if clause, scopeArgs := scope.SQLFilter("br.actor_id", argPos); clause != "" {
		conditions = append(conditions, clause)
		args = append(args, scopeArgs...)
		argPos += len(scopeArgs)
	}
	if filter.ClientID != nil {
		conditions = append(conditions, fmt.Sprintf("br.client_id = $%d", argPos))
		args = append(args, *filter.ClientID)
		argPos++
	}
	if filter.BookID != nil {
		conditions = append(conditions, fmt.Sprintf("br.book_id = $%d", argPos))
		args = append(args, *filter.BookID)
		argPos++
	}

	where := utils.WhereClause(conditions)

	var total int
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM borrowings br"+where, args...).Scan(&total); err != nil {
		return nil, 0, apperror.Storage("count borrowings", err)
	}

	query := fmt.Sprintf(
		"%s%s ORDER BY br.borrow_date DESC, br.id LIMIT $%d OFFSET $%d",
		viewSelect, where, argPos, argPos+1,
	)
	args = append(args, limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, apperror.Storage("list borrowings", err)
	}
	defer rows.Close()

	views := make([]model.BorrowingView, 0, limit)
	for rows.Next() {
		v, err := scanView(rows)
		if err != nil {
			return nil, 0, apperror.Storage("scan borrowing", err)
		}
		views = append(views, *v)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, apperror.Storage("iterate borrowings", err)
	}

	return views, total, nil
}
