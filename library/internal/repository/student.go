package repository

import (
	"context"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/Astemirdum/library-management/library/internal/model"
	"github.com/Astemirdum/library-management/pkg/paging"
)

var studentColumns = []string{"id", "full_name", "id_card", "class", "created_by"}

func (r *repository) CreateStudent(ctx context.Context, s model.Student) (int64, error) {
	columns := []string{"full_name", "id_card", "class"}
	values := []any{s.FullName, s.IDCard, s.StudentClass}
	if s.CreatedBy != nil {
		columns = append(columns, "created_by")
		values = append(values, *s.CreatedBy)
	}
	query, args, err := qb.Insert(studentsTableName).
		Columns(columns...).
		Values(values...).
		Suffix("returning id").
		ToSql()
	if err != nil {
		return 0, err
	}

	var id int64
	if err := r.db.QueryRow(ctx, query, args...).Scan(&id); err != nil {
		r.log.Error("CreateStudent", zap.String("q", query), zap.Any("args", args), zap.Error(err))
		return 0, storeErr(err, "CreateStudent")
	}
	return id, nil
}

func (r *repository) ListStudents(ctx context.Context, p paging.Params) ([]model.Student, int, error) {
	total, err := r.count(ctx, qb.Select("count(*)").From(studentsTableName))
	if err != nil {
		return nil, 0, err
	}

	query, args, err := paginate(
		qb.Select(studentColumns...).From(studentsTableName).OrderBy("id desc"), p).
		ToSql()
	if err != nil {
		return nil, 0, err
	}
	r.log.Debug("ListStudents", zap.String("query", query), zap.Any("args", args))

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, storeErr(err, "ListStudents")
	}
	defer rows.Close()

	students, err := pgx.CollectRows(rows, pgx.RowToStructByName[model.Student])
	if err != nil {
		return nil, 0, storeErr(err, "pgx.CollectRows")
	}
	return students, total, nil
}

func (r *repository) GetStudent(ctx context.Context, id int64) (model.Student, error) {
	query, args, err := qb.Select(studentColumns...).
		From(studentsTableName).
		Where(sq.Eq{"id": id}).
		Limit(1).
		ToSql()
	if err != nil {
		return model.Student{}, err
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return model.Student{}, storeErr(err, "GetStudent")
	}
	defer rows.Close()

	student, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[model.Student])
	if err != nil {
		return model.Student{}, storeErr(err, "GetStudent")
	}
	return student, nil
}

func (r *repository) UpdateStudent(ctx context.Context, s model.Student) error {
	query, args, err := qb.Update(studentsTableName).
		Set("full_name", s.FullName).
		Set("id_card", s.IDCard).
		Set("class", s.StudentClass).
		Where(sq.Eq{"id": s.ID}).
		ToSql()
	if err != nil {
		return err
	}
	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return storeErr(err, "UpdateStudent")
	}
	return affected(tag)
}

func (r *repository) DeleteStudent(ctx context.Context, id int64) error {
	query, args, err := qb.Delete(studentsTableName).Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return err
	}
	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return storeErr(err, "DeleteStudent")
	}
	return affected(tag)
}

// SearchStudents matches the query as a substring of name or id card.
func (r *repository) SearchStudents(ctx context.Context, query string, limit int) ([]model.Student, error) {
	pattern := "%" + query + "%"
	q, args, err := qb.Select(studentColumns...).
		From(studentsTableName).
		Where(sq.Or{
			sq.ILike{"full_name": pattern},
			sq.ILike{"id_card": pattern},
		}).
		OrderBy("full_name").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx, q, args...)
	if err != nil {
		return nil, storeErr(err, "SearchStudents")
	}
	defer rows.Close()

	students, err := pgx.CollectRows(rows, pgx.RowToStructByName[model.Student])
	if err != nil {
		return nil, storeErr(err, "pgx.CollectRows")
	}
	return students, nil
}
