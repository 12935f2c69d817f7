package repository

import (
	"context"
	"errors"
	"fmt"

	"library-backend/internal/domains/client/model"
	"library-backend/internal/shared/apperror"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const clientColumns = `id, first_name, last_name, pesel, email, phone_number, created_at, updated_at`

type postgresRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresRepository(pool *pgxpool.Pool) RepositoryInterface {
	return &postgresRepository{pool: pool}
}

func scanClient(row pgx.Row) (*model.Client, error) {
	var c model.Client
	err := row.Scan(
		&c.ID,
		&c.FirstName,
		&c.LastName,
		&c.Pesel,
		&c.Email,
		&c.PhoneNumber,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// uniqueViolation narrows a generic conflict to ErrClientExists.
func uniqueViolation(op string, err error, notFound error) error {
	mapped := apperror.FromPg(op, err, notFound)
	if errors.Is(mapped, apperror.ErrConflict) {
		return model.ErrClientExists
	}
	return mapped
}

func (r *postgresRepository) Create(ctx context.Context, c *model.Client) error {
	query := `
		INSERT INTO clients (first_name, last_name, pesel, email, phone_number)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at
	`

	err := r.pool.QueryRow(ctx, query,
		c.FirstName,
		c.LastName,
		c.Pesel,
		c.Email,
		c.PhoneNumber,
	).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return uniqueViolation("insert client", err, nil)
	}
	return nil
}

func (r *postgresRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Client, error) {
	query := `SELECT ` + clientColumns + ` FROM clients WHERE id = $1`

	c, err := scanClient(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		return nil, apperror.FromPg("get client", err, model.ErrClientNotFound)
	}
	return c, nil
}

func (r *postgresRepository) List(ctx context.Context, search string, limit, offset int) ([]model.Client, int, error) {
	where := ""
	args := []any{}
	argPos := 1

	if search != "" {
		where = fmt.Sprintf(
			" WHERE (first_name ILIKE $%d OR last_name ILIKE $%d OR email ILIKE $%d OR pesel LIKE $%d)",
			argPos, argPos, argPos, argPos,
		)
		args = append(args, "%"+search+"%")
		argPos++
	}

	var total int
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM clients"+where, args...).Scan(&total); err != nil {
		return nil, 0, apperror.Storage("count clients", err)
	}

	query := fmt.Sprintf(
		"SELECT %s FROM clients%s ORDER BY last_name, first_name, id LIMIT $%d OFFSET $%d",
		clientColumns, where, argPos, argPos+1,
	)
	args = append(args, limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, apperror.Storage("list clients", err)
	}
	defer rows.Close()

	clients := make([]model.Client, 0, limit)
	for rows.Next() {
		c, err := scanClient(rows)
		if err != nil {
			return nil, 0, apperror.Storage("scan client", err)
		}
		clients = append(clients, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, apperror.Storage("iterate clients", err)
	}

	return clients, total, nil
}

func (r *postgresRepository) Update(ctx context.Context, c *model.Client) error {
	query := `
		UPDATE clients
		SET first_name = $2, last_name = $3, pesel = $4, email = $5, phone_number = $6, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`

	err := r.pool.QueryRow(ctx, query,
		c.ID,
		c.FirstName,
		c.LastName,
		c.Pesel,
		c.Email,
		c.PhoneNumber,
	).Scan(&c.UpdatedAt)
	if err != nil {
		return uniqueViolation("update client", err, model.ErrClientNotFound)
	}
	return nil
}

func (r *postgresRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM clients WHERE id = $1`, id)
	if err != nil {
		mapped := apperror.FromPg("delete client", err, nil)
		if errors.Is(mapped, apperror.ErrConflict) {
			return model.ErrClientInUse
		}
		return mapped
	}
	if tag.RowsAffected() == 0 {
		return model.ErrClientNotFound
	}
	return nil
}

func (r *postgresRepository) SelectOptions(ctx context.Context) ([]model.SelectOption, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, first_name, last_name FROM clients ORDER BY last_name, first_name, id`)
	if err != nil {
		return nil, apperror.Storage("list client options", err)
	}
	defer rows.Close()

	var options []model.SelectOption
	for rows.Next() {
		var o model.SelectOption
		if err := rows.Scan(&o.ID, &o.FirstName, &o.LastName); err != nil {
			return nil, apperror.Storage("scan client option", err)
		}
		options = append(options, o)
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.Storage("iterate client options", err)
	}

	return options, nil
}
