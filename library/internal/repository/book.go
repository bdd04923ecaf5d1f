package repository

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/Astemirdum/library-management/library/internal/model"
	"github.com/Astemirdum/library-management/pkg/paging"
)

func booksSelect() sq.SelectBuilder {
	return qb.Select("b.id", "b.title", "b.description",
		"b.author_id", "coalesce(a.full_name, '') as author_name",
		"b.category_id", "coalesce(c.name, '') as category_name",
		"b.quantity", "b.created_by").
		From(booksTableName + " b").
		LeftJoin(fmt.Sprintf("%s a on a.id = b.author_id", authorsTableName)).
		LeftJoin(fmt.Sprintf("%s c on c.id = b.category_id", categoriesTableName))
}

func (r *repository) CreateBook(ctx context.Context, b model.Book) (int64, error) {
	query, args, err := qb.Insert(booksTableName).
		Columns("title", "description", "author_id", "category_id", "quantity", "created_by").
		Values(b.Title, b.Description, b.AuthorID, b.CategoryID, b.Quantity, b.CreatedBy).
		Suffix("returning id").
		ToSql()
	if err != nil {
		return 0, err
	}

	var id int64
	if err := r.db.QueryRow(ctx, query, args...).Scan(&id); err != nil {
		r.log.Error("CreateBook", zap.String("q", query), zap.Any("args", args), zap.Error(err))
		return 0, storeErr(err, "CreateBook")
	}
	return id, nil
}

func (r *repository) ListBooks(ctx context.Context, p paging.Params) ([]model.Book, int, error) {
	total, err := r.count(ctx, qb.Select("count(*)").From(booksTableName))
	if err != nil {
		return nil, 0, err
	}

	query, args, err := paginate(booksSelect().OrderBy("b.id desc"), p).ToSql()
	if err != nil {
		return nil, 0, err
	}
	r.log.Debug("ListBooks", zap.String("query", query), zap.Any("args", args))

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, storeErr(err, "ListBooks")
	}
	defer rows.Close()

	books, err := pgx.CollectRows(rows, pgx.RowToStructByName[model.Book])
	if err != nil {
		return nil, 0, storeErr(err, "pgx.CollectRows")
	}
	return books, total, nil
}

func (r *repository) GetBook(ctx context.Context, id int64) (model.Book, error) {
	query, args, err := booksSelect().
		Where(sq.Eq{"b.id": id}).
		Limit(1).
		ToSql()
	if err != nil {
		return model.Book{}, err
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return model.Book{}, storeErr(err, "GetBook")
	}
	defer rows.Close()

	book, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[model.Book])
	if err != nil {
		return model.Book{}, storeErr(err, "GetBook")
	}
	return book, nil
}

func (r *repository) UpdateBook(ctx context.Context, b model.Book) error {
	query, args, err := qb.Update(booksTableName).
		Set("title", b.Title).
		Set("description", b.Description).
		Set("author_id", b.AuthorID).
		Set("category_id", b.CategoryID).
		Set("quantity", b.Quantity).
		Where(sq.Eq{"id": b.ID}).
		ToSql()
	if err != nil {
		return err
	}
	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return storeErr(err, "UpdateBook")
	}
	return affected(tag)
}

func (r *repository) DeleteBook(ctx context.Context, id int64) error {
	query, args, err := qb.Delete(booksTableName).Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return err
	}
	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return storeErr(err, "DeleteBook")
	}
	return affected(tag)
}
