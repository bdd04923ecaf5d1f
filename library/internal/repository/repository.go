package repository

import (
	"context"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/Astemirdum/library-management/library/internal/errs"
	"github.com/Astemirdum/library-management/library/internal/model"
	"github.com/Astemirdum/library-management/pkg/paging"
)

type StudentRepository interface {
	CreateStudent(ctx context.Context, s model.Student) (int64, error)
	ListStudents(ctx context.Context, p paging.Params) ([]model.Student, int, error)
	GetStudent(ctx context.Context, id int64) (model.Student, error)
	UpdateStudent(ctx context.Context, s model.Student) error
	DeleteStudent(ctx context.Context, id int64) error
	SearchStudents(ctx context.Context, query string, limit int) ([]model.Student, error)
}

type BookRepository interface {
	CreateBook(ctx context.Context, b model.Book) (int64, error)
	ListBooks(ctx context.Context, p paging.Params) ([]model.Book, int, error)
	GetBook(ctx context.Context, id int64) (model.Book, error)
	UpdateBook(ctx context.Context, b model.Book) error
	DeleteBook(ctx context.Context, id int64) error
}

type LookupRepository interface {
	CreateAuthor(ctx context.Context, a model.Author) (int64, error)
	ListAuthors(ctx context.Context) ([]model.Author, error)
	CreateCategory(ctx context.Context, c model.Category) (int64, error)
	ListCategories(ctx context.Context) ([]model.Category, error)
}

// BorrowRepository holds the primitives of the borrow/return workflow.
type BorrowRepository interface {
	BookQuantity(ctx context.Context, bookID int64) (int, error)
	CreateBorrow(ctx context.Context, b model.Borrow) (model.Borrow, error)
	// DecrementQuantity takes one unit of stock. A guarded decrement never
	// drives quantity below zero and reports false when nothing was taken.
	DecrementQuantity(ctx context.Context, bookID int64, guarded bool) (bool, error)
	IncrementQuantity(ctx context.Context, bookID int64) error
	GetActiveBorrow(ctx context.Context, id int64) (model.Borrow, error)
	MarkReturned(ctx context.Context, id int64) (model.Borrow, error)
	ListBorrows(ctx context.Context, p paging.Params) ([]model.Borrow, int, error)
	GetBorrow(ctx context.Context, id int64) (model.Borrow, error)
}

type UserRepository interface {
	GetUserByUsername(ctx context.Context, username string) (model.User, error)
}

type DashboardRepository interface {
	CountBooks(ctx context.Context) (int, error)
	CountStudents(ctx context.Context) (int, error)
	CountBorrows(ctx context.Context) (int, error)
	CountActiveBorrows(ctx context.Context) (int, error)
	CountReturnedBorrows(ctx context.Context) (int, error)
}

type Repository interface {
	StudentRepository
	BookRepository
	LookupRepository
	BorrowRepository
	UserRepository
	DashboardRepository
	// WithTx runs fn against a repository bound to one transaction.
	// The transaction commits when fn returns nil.
	WithTx(ctx context.Context, fn func(Repository) error) error
}

// querier is implemented by both *pgxpool.Pool and pgx.Tx.
type querier interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type repository struct {
	db   querier
	pool *pgxpool.Pool
	log  *zap.Logger
}

func NewRepository(db *pgxpool.Pool, log *zap.Logger) (*repository, error) {
	return &repository{
		db:   db,
		pool: db,
		log:  log.Named("repo"),
	}, nil
}

var _ Repository = (*repository)(nil)

const (
	usersTableName      = `users`
	studentsTableName   = `students`
	authorsTableName    = `authors`
	categoriesTableName = `categories`
	booksTableName      = `books`
	borrowsTableName    = `borrows`
)

var qb = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

func (r *repository) WithTx(ctx context.Context, fn func(Repository) error) error {
	if r.pool == nil {
		return fn(r)
	}
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(&repository{db: tx, log: r.log})
	})
}

// paginate appends limit/offset as bound parameters so that the values
// reach the store exactly as the caller computed them.
func paginate(b sq.SelectBuilder, p paging.Params) sq.SelectBuilder {
	return b.Suffix("LIMIT ? OFFSET ?", p.Limit, p.Offset())
}

func (r *repository) count(ctx context.Context, b sq.SelectBuilder) (int, error) {
	query, args, err := b.ToSql()
	if err != nil {
		return 0, err
	}
	var n int
	if err := r.db.QueryRow(ctx, query, args...).Scan(&n); err != nil {
		return 0, errors.Wrap(err, "count")
	}
	return n, nil
}

// storeErr translates driver errors into the errs taxonomy.
func storeErr(err error, op string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return errs.ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgerrcode.UniqueViolation, pgerrcode.ForeignKeyViolation,
			pgerrcode.CheckViolation, pgerrcode.NotNullViolation:
			return errors.Wrapf(errs.ErrConstraint, "%s: %s", op, pgErr.Detail)
		}
	}
	return errors.Wrap(err, op)
}

func affected(tag pgconn.CommandTag) error {
	if tag.RowsAffected() == 0 {
		return errs.ErrNotFound
	}
	return nil
}
