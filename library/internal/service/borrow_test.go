package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Astemirdum/library-management/library/internal/errs"
	"github.com/Astemirdum/library-management/library/internal/model"
	"github.com/Astemirdum/library-management/pkg/auth"
	"github.com/Astemirdum/library-management/pkg/kafka"
)

func librarianCtx() context.Context {
	return auth.WithIdentity(context.Background(), auth.Identity{ID: 9, Role: auth.RoleLibrarian})
}

func TestService_Borrow(t *testing.T) {
	t.Parallel()
	for _, atomic := range []bool{true, false} {
		atomic := atomic
		name := "legacy"
		if atomic {
			name = "atomic"
		}
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			t.Run("out of stock performs no write", func(t *testing.T) {
				repo := newFakeRepo()
				repo.books[1] = 0
				svc := NewService(repo, zap.NewNop(), WithAtomicBorrow(atomic))

				_, err := svc.Borrow(librarianCtx(), model.BorrowRequest{StudentID: 1, BookID: 1})
				require.ErrorIs(t, err, errs.ErrOutOfStock)
				require.Equal(t, 0, repo.quantity(1))
				require.Equal(t, 0, repo.borrowCount())
				require.Equal(t, 0, repo.writes)
			})

			t.Run("unknown book", func(t *testing.T) {
				repo := newFakeRepo()
				svc := NewService(repo, zap.NewNop(), WithAtomicBorrow(atomic))

				_, err := svc.Borrow(librarianCtx(), model.BorrowRequest{StudentID: 1, BookID: 42})
				require.ErrorIs(t, err, errs.ErrNotFound)
				require.Equal(t, 0, repo.borrowCount())
			})

			t.Run("borrow then return restores stock", func(t *testing.T) {
				repo := newFakeRepo()
				repo.books[1] = 2
				pub := &recordingPublisher{}
				svc := NewService(repo, zap.NewNop(), WithAtomicBorrow(atomic), WithEventPublisher(pub))
				ctx := librarianCtx()

				b, err := svc.Borrow(ctx, model.BorrowRequest{StudentID: 5, BookID: 1})
				require.NoError(t, err)
				require.Equal(t, model.BorrowActive, b.Status())
				require.Equal(t, int64(9), *b.CreatedBy)
				require.False(t, b.BorrowDate.IsZero())
				require.Equal(t, 1, repo.quantity(1))

				returned, err := svc.ReturnBorrow(ctx, b.ID)
				require.NoError(t, err)
				require.NotNil(t, returned.ReturnDate)
				require.Equal(t, model.BorrowReturned, returned.Status())
				require.Equal(t, 2, repo.quantity(1))

				require.Len(t, pub.events, 2)
				require.Equal(t, kafka.EventBorrow, pub.events[0].Type)
				require.Equal(t, kafka.EventReturn, pub.events[1].Type)
				require.Equal(t, b.ID, pub.events[1].BorrowID)
				require.Equal(t, int64(9), pub.events[1].ActorID)
			})

			t.Run("second return fails without mutation", func(t *testing.T) {
				repo := newFakeRepo()
				repo.books[1] = 1
				svc := NewService(repo, zap.NewNop(), WithAtomicBorrow(atomic))
				ctx := librarianCtx()

				b, err := svc.Borrow(ctx, model.BorrowRequest{StudentID: 5, BookID: 1})
				require.NoError(t, err)
				_, err = svc.ReturnBorrow(ctx, b.ID)
				require.NoError(t, err)

				writes := repo.writes
				_, err = svc.ReturnBorrow(ctx, b.ID)
				require.ErrorIs(t, err, errs.ErrAlreadyReturned)
				_, err = svc.ReturnBorrow(ctx, 777)
				require.ErrorIs(t, err, errs.ErrAlreadyReturned)
				require.Equal(t, writes, repo.writes)
				require.Equal(t, 1, repo.quantity(1))
			})

			t.Run("sequential borrows stop at stock", func(t *testing.T) {
				repo := newFakeRepo()
				repo.books[1] = 3
				svc := NewService(repo, zap.NewNop(), WithAtomicBorrow(atomic))

				ok := 0
				for i := 0; i < 5; i++ {
					_, err := svc.Borrow(librarianCtx(), model.BorrowRequest{StudentID: int64(i + 1), BookID: 1})
					if err == nil {
						ok++
						continue
					}
					require.ErrorIs(t, err, errs.ErrOutOfStock)
				}
				require.Equal(t, 3, ok)
				require.Equal(t, 0, repo.quantity(1))
				require.Equal(t, 3, repo.borrowCount())
			})
		})
	}
}

func TestService_Borrow_PublishFailureIsNotFatal(t *testing.T) {
	t.Parallel()
	repo := newFakeRepo()
	repo.books[1] = 1
	pub := &recordingPublisher{err: errors.New("broker down")}
	svc := NewService(repo, zap.NewNop(), WithEventPublisher(pub))

	_, err := svc.Borrow(librarianCtx(), model.BorrowRequest{StudentID: 1, BookID: 1})
	require.NoError(t, err)
	require.Equal(t, 0, repo.quantity(1))
}

func TestService_Borrow_FailureBetweenWrites(t *testing.T) {
	t.Parallel()
	decrementErr := errors.New("update failed")

	t.Run("atomic rolls the borrow back", func(t *testing.T) {
		repo := newFakeRepo()
		repo.books[1] = 1
		repo.failDecrement = decrementErr
		svc := NewService(repo, zap.NewNop(), WithAtomicBorrow(true))

		_, err := svc.Borrow(librarianCtx(), model.BorrowRequest{StudentID: 1, BookID: 1})
		require.ErrorIs(t, err, decrementErr)
		require.Equal(t, 1, repo.quantity(1))
		require.Equal(t, 0, repo.borrowCount())
	})

	t.Run("legacy keeps the orphan borrow", func(t *testing.T) {
		repo := newFakeRepo()
		repo.books[1] = 1
		repo.failDecrement = decrementErr
		svc := NewService(repo, zap.NewNop(), WithAtomicBorrow(false))

		_, err := svc.Borrow(librarianCtx(), model.BorrowRequest{StudentID: 1, BookID: 1})
		require.ErrorIs(t, err, decrementErr)
		require.Equal(t, 1, repo.quantity(1))
		require.Equal(t, 1, repo.borrowCount())
	})
}

func TestService_Borrow_ConcurrentAtomic(t *testing.T) {
	t.Parallel()
	repo := newFakeRepo()
	repo.books[1] = 3
	svc := NewService(repo, zap.NewNop(), WithAtomicBorrow(true))

	const attempts = 10
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		ok, oos  int
		otherErr error
	)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(student int64) {
			defer wg.Done()
			_, err := svc.Borrow(librarianCtx(), model.BorrowRequest{StudentID: student, BookID: 1})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				ok++
			case errors.Is(err, errs.ErrOutOfStock):
				oos++
			default:
				otherErr = err
			}
		}(int64(i + 1))
	}
	wg.Wait()

	require.NoError(t, otherErr)
	require.Equal(t, 3, ok)
	require.Equal(t, attempts-3, oos)
	require.Equal(t, 0, repo.quantity(1))
	require.Equal(t, 3, repo.borrowCount())
}

// Without a transaction every borrow that read the stock before the
// others wrote passes the check, so the book is oversubscribed.
func TestService_Borrow_ConcurrentLegacyOversubscribes(t *testing.T) {
	t.Parallel()
	const attempts = 5
	repo := newFakeRepo()
	repo.books[1] = 3
	repo.readBarrier = &sync.WaitGroup{}
	repo.readBarrier.Add(attempts)
	svc := NewService(repo, zap.NewNop(), WithAtomicBorrow(false))

	var wg sync.WaitGroup
	errCh := make(chan error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(student int64) {
			defer wg.Done()
			_, err := svc.Borrow(librarianCtx(), model.BorrowRequest{StudentID: student, BookID: 1})
			errCh <- err
		}(int64(i + 1))
	}
	wg.Wait()
	close(errCh)

	for err := range errCh {
		require.NoError(t, err)
	}
	require.Equal(t, attempts, repo.borrowCount())
	require.Equal(t, 3-attempts, repo.quantity(1))
}
