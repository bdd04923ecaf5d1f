package repository

import (
	"context"

	sq "github.com/Masterminds/squirrel"
)

func (r *repository) CountBooks(ctx context.Context) (int, error) {
	return r.count(ctx, qb.Select("count(*)").From(booksTableName))
}

func (r *repository) CountStudents(ctx context.Context) (int, error) {
	return r.count(ctx, qb.Select("count(*)").From(studentsTableName))
}

func (r *repository) CountBorrows(ctx context.Context) (int, error) {
	return r.count(ctx, qb.Select("count(*)").From(borrowsTableName))
}

func (r *repository) CountActiveBorrows(ctx context.Context) (int, error) {
	return r.count(ctx, qb.Select("count(*)").From(borrowsTableName).Where(sq.Eq{"return_date": nil}))
}

func (r *repository) CountReturnedBorrows(ctx context.Context) (int, error) {
	return r.count(ctx, qb.Select("count(*)").From(borrowsTableName).Where(sq.NotEq{"return_date": nil}))
}
