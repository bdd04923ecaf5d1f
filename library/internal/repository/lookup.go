package repository

import (
	"context"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"github.com/Astemirdum/library-management/library/internal/model"
)

func (r *repository) CreateAuthor(ctx context.Context, a model.Author) (int64, error) {
	return r.insertReturningID(ctx, qb.Insert(authorsTableName).
		Columns("full_name").
		Values(a.FullName), "CreateAuthor")
}

func (r *repository) ListAuthors(ctx context.Context) ([]model.Author, error) {
	query, args, err := qb.Select("id", "full_name").
		From(authorsTableName).
		OrderBy("full_name").
		ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, storeErr(err, "ListAuthors")
	}
	defer rows.Close()

	authors, err := pgx.CollectRows(rows, pgx.RowToStructByName[model.Author])
	if err != nil {
		return nil, storeErr(err, "pgx.CollectRows")
	}
	return authors, nil
}

func (r *repository) CreateCategory(ctx context.Context, c model.Category) (int64, error) {
	return r.insertReturningID(ctx, qb.Insert(categoriesTableName).
		Columns("name").
		Values(c.Name), "CreateCategory")
}

func (r *repository) ListCategories(ctx context.Context) ([]model.Category, error) {
	query, args, err := qb.Select("id", "name").
		From(categoriesTableName).
		OrderBy("name").
		ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, storeErr(err, "ListCategories")
	}
	defer rows.Close()

	categories, err := pgx.CollectRows(rows, pgx.RowToStructByName[model.Category])
	if err != nil {
		return nil, storeErr(err, "pgx.CollectRows")
	}
	return categories, nil
}

func (r *repository) insertReturningID(ctx context.Context, b sq.InsertBuilder, op string) (int64, error) {
	query, args, err := b.Suffix("returning id").ToSql()
	if err != nil {
		return 0, err
	}
	var id int64
	if err := r.db.QueryRow(ctx, query, args...).Scan(&id); err != nil {
		return 0, storeErr(err, op)
	}
	return id, nil
}
