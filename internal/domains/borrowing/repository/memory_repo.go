package repository

import (
	"bytes"
	"context"
	"maps"
	"sort"
	"time"

	"library-backend/internal/domains/borrowing/model"
	"library-backend/internal/shared/access"
	"library-backend/internal/shared/memdb"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type bookRef struct {
	title  string
	author string
}

// MemoryRepository is an in-memory RepositoryInterface backed by memdb. The
// referenced clients, books and users are registered with the Put helpers.
type MemoryRepository struct {
	db         *memdb.DB
	borrowings map[uuid.UUID]model.Borrowing
	clients    map[uuid.UUID]string
	books      map[uuid.UUID]bookRef
	users      map[uuid.UUID]string
}

func NewMemoryRepository(db *memdb.DB) *MemoryRepository {
	r := &MemoryRepository{
		db:         db,
		borrowings: map[uuid.UUID]model.Borrowing{},
		clients:    map[uuid.UUID]string{},
		books:      map[uuid.UUID]bookRef{},
		users:      map[uuid.UUID]string{},
	}
	db.Register(r)
	return r
}

func (r *MemoryRepository) Snapshot() func() {
	borrowings := maps.Clone(r.borrowings)
	return func() { r.borrowings = borrowings }
}

func (r *MemoryRepository) PutClient(id uuid.UUID, name string) {
	r.db.Read(func() { r.clients[id] = name })
}

func (r *MemoryRepository) PutBook(id uuid.UUID, title, author string) {
	r.db.Read(func() { r.books[id] = bookRef{title: title, author: author} })
}

func (r *MemoryRepository) PutUser(id uuid.UUID, username string) {
	r.db.Read(func() { r.users[id] = username })
}

// Count returns the number of stored borrowings.
func (r *MemoryRepository) Count() int {
	var n int
	r.db.Read(func() { n = len(r.borrowings) })
	return n
}

// Get reads a borrowing outside any transaction.
func (r *MemoryRepository) Get(id uuid.UUID) (model.Borrowing, bool) {
	var (
		b  model.Borrowing
		ok bool
	)
	r.db.Read(func() { b, ok = r.borrowings[id] })
	return b, ok
}

func (r *MemoryRepository) GetByIDForUpdateWithTx(_ context.Context, _ pgx.Tx, id uuid.UUID) (*model.Borrowing, error) {
	b, ok := r.borrowings[id]
	if !ok {
		return nil, model.ErrBorrowingNotFound
	}
	return &b, nil
}

func (r *MemoryRepository) CreateWithTx(_ context.Context, _ pgx.Tx, b *model.Borrowing) error {
	now := time.Now()
	b.CreatedAt = now
	b.UpdatedAt = now
	r.borrowings[b.ID] = *b
	return nil
}

func (r *MemoryRepository) UpdateWithTx(_ context.Context, _ pgx.Tx, b *model.Borrowing) error {
	if _, ok := r.borrowings[b.ID]; !ok {
		return model.ErrBorrowingNotFound
	}
	b.UpdatedAt = time.Now()
	r.borrowings[b.ID] = *b
	return nil
}

func (r *MemoryRepository) DeleteWithTx(_ context.Context, _ pgx.Tx, id uuid.UUID) error {
	if _, ok := r.borrowings[id]; !ok {
		return model.ErrBorrowingNotFound
	}
	delete(r.borrowings, id)
	return nil
}

func (r *MemoryRepository) ClientExistsWithTx(_ context.Context, _ pgx.Tx, id uuid.UUID) (bool, error) {
	_, ok := r.clients[id]
	return ok, nil
}

func (r *MemoryRepository) GetView(_ context.Context, id uuid.UUID) (*model.BorrowingView, error) {
	var (
		v  model.BorrowingView
		ok bool
	)
	r.db.Read(func() {
		var b model.Borrowing
		if b, ok = r.borrowings[id]; ok {
			v = r.view(b)
		}
	})
	if !ok {
		return nil, model.ErrBorrowingNotFound
	}
	return &v, nil
}

func (r *MemoryRepository) List(
	_ context.Context,
	scope access.Scope,
	filter model.ListFilter,
	limit, offset int,
) ([]model.BorrowingView, int, error) {
	visible := scope.FilterPredicate()

	var matched []model.BorrowingView
	r.db.Read(func() {
		for _, b := range r.borrowings {
			if !visible(b) {
				continue
			}
			if filter.ClientID != nil && b.ClientID != *filter.ClientID {
				continue
			}
			if filter.BookID != nil && b.BookID != *filter.BookID {
				continue
			}
			matched = append(matched, r.view(b))
		}
	})

	// borrow_date DESC, id
	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].BorrowDate.Equal(matched[j].BorrowDate) {
			return matched[i].BorrowDate.After(matched[j].BorrowDate)
		}
		return bytes.Compare(matched[i].ID[:], matched[j].ID[:]) < 0
	})

	total := len(matched)
	if offset >= total {
		return []model.BorrowingView{}, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return matched[offset:end], total, nil
}

func (r *MemoryRepository) view(b model.Borrowing) model.BorrowingView {
	book := r.books[b.BookID]
	return model.BorrowingView{
		Borrowing:  b,
		ClientName: r.clients[b.ClientID],
		BookTitle:  book.title,
		BookAuthor: book.author,
		Username:   r.users[b.ActorID],
	}
}
