package service

import (
	"context"
	"sync"
	"time"

	"github.com/Astemirdum/library-management/library/internal/errs"
	"github.com/Astemirdum/library-management/library/internal/model"
	libraryRepo "github.com/Astemirdum/library-management/library/internal/repository"
	"github.com/Astemirdum/library-management/pkg/kafka"
)

// fakeRepo keeps the workflow tables in memory. Methods that are not
// overridden panic through the nil embedded interface.
type fakeRepo struct {
	libraryRepo.Repository

	mu       sync.Mutex
	txMu     sync.Mutex
	books    map[int64]int
	borrows  map[int64]model.Borrow
	students map[int64]model.Student
	users    map[string]model.User
	nextID   int64
	writes   int

	// readBarrier, when set, holds every stock read until all expected
	// readers have arrived.
	readBarrier   *sync.WaitGroup
	failDecrement error
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		books:    map[int64]int{},
		borrows:  map[int64]model.Borrow{},
		students: map[int64]model.Student{},
		users:    map[string]model.User{},
	}
}

func (f *fakeRepo) WithTx(_ context.Context, fn func(libraryRepo.Repository) error) error {
	f.txMu.Lock()
	defer f.txMu.Unlock()

	f.mu.Lock()
	books := make(map[int64]int, len(f.books))
	for k, v := range f.books {
		books[k] = v
	}
	borrows := make(map[int64]model.Borrow, len(f.borrows))
	for k, v := range f.borrows {
		borrows[k] = v
	}
	f.mu.Unlock()

	if err := fn(f); err != nil {
		f.mu.Lock()
		f.books, f.borrows = books, borrows
		f.mu.Unlock()
		return err
	}
	return nil
}

func (f *fakeRepo) BookQuantity(_ context.Context, bookID int64) (int, error) {
	f.mu.Lock()
	q, ok := f.books[bookID]
	f.mu.Unlock()
	if !ok {
		return 0, errs.ErrNotFound
	}
	if f.readBarrier != nil {
		f.readBarrier.Done()
		f.readBarrier.Wait()
	}
	return q, nil
}

func (f *fakeRepo) CreateBorrow(_ context.Context, b model.Borrow) (model.Borrow, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	b.ID = f.nextID
	f.borrows[b.ID] = b
	f.writes++
	return b, nil
}

func (f *fakeRepo) DecrementQuantity(_ context.Context, bookID int64, guarded bool) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failDecrement != nil {
		return false, f.failDecrement
	}
	q, ok := f.books[bookID]
	if !ok || (guarded && q <= 0) {
		return false, nil
	}
	f.books[bookID] = q - 1
	f.writes++
	return true, nil
}

func (f *fakeRepo) IncrementQuantity(_ context.Context, bookID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.books[bookID]; !ok {
		return errs.ErrNotFound
	}
	f.books[bookID]++
	f.writes++
	return nil
}

func (f *fakeRepo) GetActiveBorrow(_ context.Context, id int64) (model.Borrow, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.borrows[id]
	if !ok || b.ReturnDate != nil {
		return model.Borrow{}, errs.ErrNotFound
	}
	return b, nil
}

func (f *fakeRepo) MarkReturned(_ context.Context, id int64) (model.Borrow, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.borrows[id]
	if !ok || b.ReturnDate != nil {
		return model.Borrow{}, errs.ErrAlreadyReturned
	}
	now := time.Now().UTC()
	b.ReturnDate = &now
	f.borrows[id] = b
	f.writes++
	return b, nil
}

func (f *fakeRepo) GetUserByUsername(_ context.Context, username string) (model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[username]
	if !ok {
		return model.User{}, errs.ErrNotFound
	}
	return u, nil
}

func (f *fakeRepo) CreateStudent(_ context.Context, s model.Student) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	s.ID = f.nextID
	f.students[s.ID] = s
	return s.ID, nil
}

func (f *fakeRepo) CountBooks(context.Context) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.books), nil
}

func (f *fakeRepo) CountStudents(context.Context) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.students), nil
}

func (f *fakeRepo) CountBorrows(context.Context) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.borrows), nil
}

func (f *fakeRepo) CountActiveBorrows(ctx context.Context) (int, error) {
	return f.countBorrows(func(b model.Borrow) bool { return b.Status() == model.BorrowActive }), nil
}

func (f *fakeRepo) CountReturnedBorrows(ctx context.Context) (int, error) {
	return f.countBorrows(func(b model.Borrow) bool { return b.Status() == model.BorrowReturned }), nil
}

func (f *fakeRepo) countBorrows(match func(model.Borrow) bool) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, b := range f.borrows {
		if match(b) {
			n++
		}
	}
	return n
}

func (f *fakeRepo) quantity(bookID int64) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.books[bookID]
}

func (f *fakeRepo) borrowCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.borrows)
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []kafka.BorrowEvent
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, e kafka.BorrowEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return p.err
}
