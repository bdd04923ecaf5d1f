package service

import (
	"context"

	"github.com/pkg/errors"

	"github.com/Astemirdum/library-management/library/internal/model"
)

// Dashboard runs the counts one after another; they are not taken
// from a single snapshot.
func (s *Service) Dashboard(ctx context.Context) (model.Dashboard, error) {
	var (
		d   model.Dashboard
		err error
	)
	counts := []struct {
		name string
		dst  *int
		fn   func(context.Context) (int, error)
	}{
		{"books", &d.TotalBooks, s.repo.CountBooks},
		{"students", &d.TotalStudents, s.repo.CountStudents},
		{"borrows", &d.TotalBorrows, s.repo.CountBorrows},
		{"active borrows", &d.ActiveBorrows, s.repo.CountActiveBorrows},
		{"returned borrows", &d.ReturnedBorrows, s.repo.CountReturnedBorrows},
	}
	for _, c := range counts {
		if *c.dst, err = c.fn(ctx); err != nil {
			return model.Dashboard{}, errors.Wrapf(err, "count %s", c.name)
		}
	}
	return d, nil
}
