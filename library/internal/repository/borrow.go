package repository

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/Astemirdum/library-management/library/internal/errs"
	"github.com/Astemirdum/library-management/library/internal/model"
	"github.com/Astemirdum/library-management/pkg/paging"
)

func borrowsSelect() sq.SelectBuilder {
	return qb.Select("br.id", "br.student_id", "coalesce(s.full_name, '') as student_name",
		"br.book_id", "coalesce(b.title, '') as book_title",
		"br.created_by", "br.borrow_date", "br.return_date").
		From(borrowsTableName + " br").
		LeftJoin(fmt.Sprintf("%s s on s.id = br.student_id", studentsTableName)).
		LeftJoin(fmt.Sprintf("%s b on b.id = br.book_id", booksTableName))
}

func (r *repository) BookQuantity(ctx context.Context, bookID int64) (int, error) {
	query, args, err := qb.Select("quantity").
		From(booksTableName).
		Where(sq.Eq{"id": bookID}).
		ToSql()
	if err != nil {
		return 0, err
	}
	var quantity int
	if err := r.db.QueryRow(ctx, query, args...).Scan(&quantity); err != nil {
		return 0, storeErr(err, "BookQuantity")
	}
	return quantity, nil
}

func (r *repository) CreateBorrow(ctx context.Context, b model.Borrow) (model.Borrow, error) {
	if b.BorrowDate.IsZero() {
		b.BorrowDate = time.Now().UTC()
	}
	query, args, err := qb.Insert(borrowsTableName).
		Columns("student_id", "book_id", "created_by", "borrow_date").
		Values(b.StudentID, b.BookID, b.CreatedBy, b.BorrowDate).
		Suffix("returning id, borrow_date").
		ToSql()
	if err != nil {
		return model.Borrow{}, err
	}
	if err := r.db.QueryRow(ctx, query, args...).Scan(&b.ID, &b.BorrowDate); err != nil {
		r.log.Error("CreateBorrow", zap.String("q", query), zap.Any("args", args), zap.Error(err))
		return model.Borrow{}, storeErr(err, "CreateBorrow")
	}
	b.ReturnDate = nil
	return b, nil
}

func (r *repository) DecrementQuantity(ctx context.Context, bookID int64, guarded bool) (bool, error) {
	q := `
update books
    set quantity = quantity - 1
where id = @book_id`
	if guarded {
		q += ` and quantity > 0`
	}
	tag, err := r.db.Exec(ctx, q, pgx.NamedArgs{"book_id": bookID})
	if err != nil {
		return false, storeErr(err, "DecrementQuantity")
	}
	return tag.RowsAffected() > 0, nil
}

func (r *repository) IncrementQuantity(ctx context.Context, bookID int64) error {
	q := `
update books
    set quantity = quantity + 1
where id = @book_id`
	tag, err := r.db.Exec(ctx, q, pgx.NamedArgs{"book_id": bookID})
	if err != nil {
		return storeErr(err, "IncrementQuantity")
	}
	return affected(tag)
}

func (r *repository) GetActiveBorrow(ctx context.Context, id int64) (model.Borrow, error) {
	query, args, err := borrowsSelect().
		Where(sq.Eq{"br.id": id, "br.return_date": nil}).
		ToSql()
	if err != nil {
		return model.Borrow{}, err
	}
	return r.collectBorrow(ctx, query, args, "GetActiveBorrow")
}

// MarkReturned closes an active borrow. A borrow that is already
// returned is left untouched and reported as errs.ErrAlreadyReturned.
func (r *repository) MarkReturned(ctx context.Context, id int64) (model.Borrow, error) {
	q := `
update borrows
	set return_date = now()
where id = @id and return_date is null
returning id, student_id, book_id, created_by, borrow_date, return_date`
	var b model.Borrow
	err := r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id}).
		Scan(&b.ID, &b.StudentID, &b.BookID, &b.CreatedBy, &b.BorrowDate, &b.ReturnDate)
	if err != nil {
		if err = storeErr(err, "MarkReturned"); errors.Is(err, errs.ErrNotFound) {
			return model.Borrow{}, errs.ErrAlreadyReturned
		}
		return model.Borrow{}, err
	}
	return b, nil
}

func (r *repository) ListBorrows(ctx context.Context, p paging.Params) ([]model.Borrow, int, error) {
	total, err := r.count(ctx, qb.Select("count(*)").From(borrowsTableName))
	if err != nil {
		return nil, 0, err
	}

	query, args, err := paginate(borrowsSelect().OrderBy("br.borrow_date desc", "br.id desc"), p).ToSql()
	if err != nil {
		return nil, 0, err
	}
	r.log.Debug("ListBorrows", zap.String("query", query), zap.Any("args", args))

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, storeErr(err, "ListBorrows")
	}
	defer rows.Close()

	borrows, err := pgx.CollectRows(rows, pgx.RowToStructByName[model.Borrow])
	if err != nil {
		return nil, 0, storeErr(err, "pgx.CollectRows")
	}
	return borrows, total, nil
}

func (r *repository) GetBorrow(ctx context.Context, id int64) (model.Borrow, error) {
	query, args, err := borrowsSelect().Where(sq.Eq{"br.id": id}).ToSql()
	if err != nil {
		return model.Borrow{}, err
	}
	return r.collectBorrow(ctx, query, args, "GetBorrow")
}

func (r *repository) collectBorrow(ctx context.Context, query string, args []any, op string) (model.Borrow, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return model.Borrow{}, storeErr(err, op)
	}
	defer rows.Close()

	borrow, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[model.Borrow])
	if err != nil {
		return model.Borrow{}, storeErr(err, op)
	}
	return borrow, nil
}
