package service

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/Astemirdum/library-management/library/internal/errs"
	"github.com/Astemirdum/library-management/library/internal/model"
	libraryRepo "github.com/Astemirdum/library-management/library/internal/repository"
	"github.com/Astemirdum/library-management/pkg/kafka"
)

// unit runs fn either inside one transaction or directly against the
// shared repository. Without a transaction the steps of fn are independent
// writes: a failure between them leaves stock and borrows out of step, and
// concurrent borrows of the last copy can both pass the stock check.
func (s *Service) unit(ctx context.Context, fn func(libraryRepo.Repository) error) error {
	if s.atomicBorrow {
		return s.repo.WithTx(ctx, fn)
	}
	return fn(s.repo)
}

// Borrow checks stock, records an active borrow and takes one copy.
func (s *Service) Borrow(ctx context.Context, req model.BorrowRequest) (model.Borrow, error) {
	var borrow model.Borrow
	err := s.unit(ctx, func(repo libraryRepo.Repository) error {
		quantity, err := repo.BookQuantity(ctx, req.BookID)
		if err != nil {
			return err
		}
		if quantity <= 0 {
			return errs.ErrOutOfStock
		}

		borrow, err = repo.CreateBorrow(ctx, model.Borrow{
			StudentID:  req.StudentID,
			BookID:     req.BookID,
			CreatedBy:  actorID(ctx),
			BorrowDate: time.Now().UTC(),
		})
		if err != nil {
			return err
		}

		taken, err := repo.DecrementQuantity(ctx, req.BookID, s.atomicBorrow)
		if err != nil {
			return err
		}
		if !taken {
			return errs.ErrOutOfStock
		}
		return nil
	})
	if err != nil {
		return model.Borrow{}, err
	}

	s.publish(ctx, kafka.EventBorrow, borrow)
	return borrow, nil
}

// ReturnBorrow closes an active borrow and puts the copy back into stock.
func (s *Service) ReturnBorrow(ctx context.Context, id int64) (model.Borrow, error) {
	var borrow model.Borrow
	err := s.unit(ctx, func(repo libraryRepo.Repository) error {
		if _, err := repo.GetActiveBorrow(ctx, id); err != nil {
			if errors.Is(err, errs.ErrNotFound) {
				return errs.ErrAlreadyReturned
			}
			return err
		}

		var err error
		borrow, err = repo.MarkReturned(ctx, id)
		if err != nil {
			return err
		}
		return repo.IncrementQuantity(ctx, borrow.BookID)
	})
	if err != nil {
		return model.Borrow{}, err
	}

	s.publish(ctx, kafka.EventReturn, borrow)
	return borrow, nil
}

func (s *Service) publish(ctx context.Context, typ kafka.EventType, b model.Borrow) {
	event := kafka.BorrowEvent{
		Type:      typ,
		BorrowID:  b.ID,
		BookID:    b.BookID,
		StudentID: b.StudentID,
	}
	if actor := actorID(ctx); actor != nil {
		event.ActorID = *actor
	}
	if err := s.events.Publish(ctx, event); err != nil {
		s.log.Warn("publish borrow event", zap.String("type", string(typ)), zap.Int64("borrow_id", b.ID), zap.Error(err))
	}
}
