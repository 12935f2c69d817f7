package repository

import (
	"context"
	"maps"
	"sort"
	"time"

	"library-backend/internal/domains/inventory/model"
	"library-backend/internal/shared/memdb"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// MemoryRepository is an in-memory RepositoryInterface backed by memdb.
type MemoryRepository struct {
	db        *memdb.DB
	stock     map[uuid.UUID]int
	movements []model.StockMovement
}

func NewMemoryRepository(db *memdb.DB) *MemoryRepository {
	r := &MemoryRepository{db: db, stock: map[uuid.UUID]int{}}
	db.Register(r)
	return r
}

func (r *MemoryRepository) Snapshot() func() {
	stock := maps.Clone(r.stock)
	movements := append([]model.StockMovement(nil), r.movements...)
	return func() {
		r.stock = stock
		r.movements = movements
	}
}

// PutBook seeds a book with the given stock.
func (r *MemoryRepository) PutBook(id uuid.UUID, stock int) {
	r.db.Read(func() { r.stock[id] = stock })
}

// Stock reads a book's stock outside any transaction.
func (r *MemoryRepository) Stock(id uuid.UUID) (int, bool) {
	var (
		s  int
		ok bool
	)
	r.db.Read(func() { s, ok = r.stock[id] })
	return s, ok
}

func (r *MemoryRepository) MovementCount() int {
	var n int
	r.db.Read(func() { n = len(r.movements) })
	return n
}

func (r *MemoryRepository) LockStockWithTx(_ context.Context, _ pgx.Tx, bookID uuid.UUID) (int, error) {
	s, ok := r.stock[bookID]
	if !ok {
		return 0, model.ErrBookNotFound
	}
	return s, nil
}

func (r *MemoryRepository) SetStockWithTx(_ context.Context, _ pgx.Tx, bookID uuid.UUID, stock int) error {
	if _, ok := r.stock[bookID]; !ok {
		return model.ErrBookNotFound
	}
	r.stock[bookID] = stock
	return nil
}

func (r *MemoryRepository) CreateMovementWithTx(_ context.Context, _ pgx.Tx, m *model.StockMovement) error {
	m.ID = uuid.New()
	m.CreatedAt = time.Now()
	r.movements = append(r.movements, *m)
	return nil
}

func (r *MemoryRepository) ListMovements(_ context.Context, bookID uuid.UUID, limit, offset int) ([]model.StockMovement, int, error) {
	var matched []model.StockMovement
	r.db.Read(func() {
		for _, m := range r.movements {
			if m.BookID == bookID {
				matched = append(matched, m)
			}
		}
	})

	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	total := len(matched)
	if offset >= total {
		return []model.StockMovement{}, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return matched[offset:end], total, nil
}
