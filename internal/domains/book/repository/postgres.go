package repository

import (
	"context"
	"errors"
	"fmt"

	"library-backend/internal/domains/book/model"
	"library-backend/internal/shared/apperror"
	"library-backend/internal/shared/utils"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const bookColumns = `id, title, author, release_date, genre, price, stock, created_at, updated_at`

type postgresRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresRepository(pool *pgxpool.Pool) RepositoryInterface {
	return &postgresRepository{pool: pool}
}

func scanBook(row pgx.Row) (*model.Book, error) {
	var b model.Book
	err := row.Scan(
		&b.ID,
		&b.Title,
		&b.Author,
		&b.ReleaseDate,
		&b.Genre,
		&b.Price,
		&b.Stock,
		&b.CreatedAt,
		&b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *postgresRepository) Create(ctx context.Context, b *model.Book) error {
	query := `
		INSERT INTO books (title, author, release_date, genre, price, stock)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at
	`

	err := r.pool.QueryRow(ctx, query,
		b.Title,
		b.Author,
		b.ReleaseDate,
		b.Genre,
		b.Price,
		b.Stock,
	).Scan(&b.ID, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return apperror.FromPg("insert book", err, nil)
	}
	return nil
}

func (r *postgresRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Book, error) {
	query := `SELECT ` + bookColumns + ` FROM books WHERE id = $1`

	b, err := scanBook(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		return nil, apperror.FromPg("get book", err, model.ErrBookNotFound)
	}
	return b, nil
}

func (r *postgresRepository) List(ctx context.Context, filter model.ListFilter, limit, offset int) ([]model.Book, int, error) {
	var (
		conditions []string
		args       []any
		argPos     = 1
	)

	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(title ILIKE $%d OR author ILIKE $%d)", argPos, argPos))
		args = append(args, "%"+filter.Search+"%")
		argPos++
	}
	if filter.Genre != "" {
		conditions = append(conditions, fmt.Sprintf("genre = $%d", argPos))
		args = append(args, filter.Genre)
		argPos++
	}

	where := utils.WhereClause(conditions)

	var total int
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM books"+where, args...).Scan(&total); err != nil {
		return nil, 0, apperror.Storage("count books", err)
	}

	query := fmt.Sprintf(
		"SELECT %s FROM books%s ORDER BY title, id LIMIT $%d OFFSET $%d",
		bookColumns, where, argPos, argPos+1,
	)
	args = append(args, limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, apperror.Storage("list books", err)
	}
	defer rows.Close()

	books := make([]model.Book, 0, limit)
	for rows.Next() {
		b, err := scanBook(rows)
		if err != nil {
			return nil, 0, apperror.Storage("scan book", err)
		}
		books = append(books, *b)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, apperror.Storage("iterate books", err)
	}

	return books, total, nil
}

func (r *postgresRepository) Update(ctx context.Context, b *model.Book) error {
	query := `
		UPDATE books
		SET title = $2, author = $3, release_date = $4, genre = $5, price = $6, updated_at = NOW()
		WHERE id = $1
		RETURNING stock, updated_at
	`

	err := r.pool.QueryRow(ctx, query,
		b.ID,
		b.Title,
		b.Author,
		b.ReleaseDate,
		b.Genre,
		b.Price,
	).Scan(&b.Stock, &b.UpdatedAt)
	if err != nil {
		return apperror.FromPg("update book", err, model.ErrBookNotFound)
	}
	return nil
}

func (r *postgresRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM books WHERE id = $1`, id)
	if err != nil {
		mapped := apperror.FromPg("delete book", err, nil)
		if errors.Is(mapped, apperror.ErrConflict) {
			return model.ErrBookInUse
		}
		return mapped
	}
	if tag.RowsAffected() == 0 {
		return model.ErrBookNotFound
	}
	return nil
}

func (r *postgresRepository) SelectOptions(ctx context.Context) ([]model.SelectOption, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, title, author, stock FROM books ORDER BY title, id`)
	if err != nil {
		return nil, apperror.Storage("list book options", err)
	}
	defer rows.Close()

	var options []model.SelectOption
	for rows.Next() {
		var o model.SelectOption
		if err := rows.Scan(&o.ID, &o.Title, &o.Author, &o.Stock); err != nil {
			return nil, apperror.Storage("scan book option", err)
		}
		options = append(options, o)
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.Storage("iterate book options", err)
	}

	return options, nil
}
