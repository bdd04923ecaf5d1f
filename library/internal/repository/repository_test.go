package repository_test

import (
	"context"
	"fmt"
	"os"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Astemirdum/library-management/library/internal/errs"
	"github.com/Astemirdum/library-management/library/internal/model"
	"github.com/Astemirdum/library-management/library/internal/repository"
	"github.com/Astemirdum/library-management/library/migrations"
	"github.com/Astemirdum/library-management/pkg/auth"
	"github.com/Astemirdum/library-management/pkg/paging"
	"github.com/Astemirdum/library-management/pkg/postgres/testdb"
)

func TestMain(m *testing.M) {
	code := m.Run()
	testdb.Terminate()
	os.Exit(code)
}

func setupRepo(t *testing.T) (repository.Repository, *pgxpool.Pool) {
	t.Helper()
	pg := testdb.SetupShared(t, migrations.MigrationFiles)
	testdb.Truncate(t, pg.Pool, "borrows", "books", "students", "authors", "categories")

	repo, err := repository.NewRepository(pg.Pool, zap.NewNop())
	require.NoError(t, err)
	return repo, pg.Pool
}

func createBook(t *testing.T, repo repository.Repository, title string, quantity int) model.Book {
	t.Helper()
	ctx := context.Background()
	authorID, err := repo.CreateAuthor(ctx, model.Author{FullName: "Author of " + title})
	require.NoError(t, err)
	categoryID, err := repo.CreateCategory(ctx, model.Category{Name: "Category of " + title})
	require.NoError(t, err)

	book := model.Book{
		Title:      title,
		AuthorID:   authorID,
		CategoryID: categoryID,
		Quantity:   quantity,
	}
	book.ID, err = repo.CreateBook(ctx, book)
	require.NoError(t, err)
	return book
}

func createStudent(t *testing.T, repo repository.Repository, name, card string) int64 {
	t.Helper()
	id, err := repo.CreateStudent(context.Background(), model.Student{
		FullName:     name,
		IDCard:       card,
		StudentClass: "A1",
	})
	require.NoError(t, err)
	return id
}

func bookQuantity(t *testing.T, pool *pgxpool.Pool, id int64) int {
	t.Helper()
	var q int
	require.NoError(t, pool.QueryRow(context.Background(),
		"select quantity from books where id = $1", id).Scan(&q))
	return q
}

func TestRepository_Students(t *testing.T) {
	repo, _ := setupRepo(t)
	ctx := context.Background()

	admin, err := repo.GetUserByUsername(ctx, "admin")
	require.NoError(t, err)
	require.Equal(t, auth.RoleAdmin, admin.Role)

	id, err := repo.CreateStudent(ctx, model.Student{
		FullName:     "Ann",
		IDCard:       "STU9",
		StudentClass: "A1",
		CreatedBy:    &admin.ID,
	})
	require.NoError(t, err)

	got, err := repo.GetStudent(ctx, id)
	require.NoError(t, err)
	require.Equal(t, model.Student{
		ID:           id,
		FullName:     "Ann",
		IDCard:       "STU9",
		StudentClass: "A1",
		CreatedBy:    &admin.ID,
	}, got)

	anonymous := createStudent(t, repo, "Bob", "STU10")
	got, err = repo.GetStudent(ctx, anonymous)
	require.NoError(t, err)
	require.Nil(t, got.CreatedBy)

	_, err = repo.CreateStudent(ctx, model.Student{FullName: "Ann 2", IDCard: "STU9", StudentClass: "B2"})
	require.ErrorIs(t, err, errs.ErrConstraint)

	require.NoError(t, repo.UpdateStudent(ctx, model.Student{ID: id, FullName: "Ann B", IDCard: "STU9", StudentClass: "A2"}))
	got, err = repo.GetStudent(ctx, id)
	require.NoError(t, err)
	require.Equal(t, "Ann B", got.FullName)
	require.Equal(t, "A2", got.StudentClass)

	require.NoError(t, repo.DeleteStudent(ctx, id))
	_, err = repo.GetStudent(ctx, id)
	require.ErrorIs(t, err, errs.ErrNotFound)
}

func TestRepository_MissingRows(t *testing.T) {
	repo, pool := setupRepo(t)
	ctx := context.Background()
	book := createBook(t, repo, "Dune", 2)
	const missing = int64(999)

	tests := []struct {
		name string
		call func() error
	}{
		{
			name: "update student",
			call: func() error {
				return repo.UpdateStudent(ctx, model.Student{ID: missing, FullName: "X", IDCard: "X", StudentClass: "X"})
			},
		},
		{
			name: "delete student",
			call: func() error { return repo.DeleteStudent(ctx, missing) },
		},
		{
			name: "get student",
			call: func() error { _, err := repo.GetStudent(ctx, missing); return err },
		},
		{
			name: "update book",
			call: func() error {
				return repo.UpdateBook(ctx, model.Book{ID: missing, Title: "X", AuthorID: book.AuthorID, CategoryID: book.CategoryID})
			},
		},
		{
			name: "delete book",
			call: func() error { return repo.DeleteBook(ctx, missing) },
		},
		{
			name: "get book",
			call: func() error { _, err := repo.GetBook(ctx, missing); return err },
		},
		{
			name: "book quantity",
			call: func() error { _, err := repo.BookQuantity(ctx, missing); return err },
		},
		{
			name: "get borrow",
			call: func() error { _, err := repo.GetBorrow(ctx, missing); return err },
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.ErrorIs(t, tt.call(), errs.ErrNotFound)
		})
	}

	var books int
	require.NoError(t, pool.QueryRow(ctx, "select count(*) from books").Scan(&books))
	require.Equal(t, 1, books)
}

func TestRepository_BookConstraints(t *testing.T) {
	repo, _ := setupRepo(t)
	ctx := context.Background()
	book := createBook(t, repo, "Dune", 1)

	_, err := repo.CreateBook(ctx, model.Book{Title: "Orphan", AuthorID: 999, CategoryID: book.CategoryID})
	require.ErrorIs(t, err, errs.ErrConstraint)

	_, err = repo.CreateCategory(ctx, model.Category{Name: "Category of Dune"})
	require.ErrorIs(t, err, errs.ErrConstraint)

	err = repo.UpdateBook(ctx, model.Book{ID: book.ID, Title: "Dune", AuthorID: book.AuthorID, CategoryID: book.CategoryID, Quantity: -1})
	require.ErrorIs(t, err, errs.ErrConstraint)

	got, err := repo.GetBook(ctx, book.ID)
	require.NoError(t, err)
	require.Equal(t, "Author of Dune", got.AuthorName)
	require.Equal(t, "Category of Dune", got.CategoryName)
	require.Equal(t, 1, got.Quantity)
}

func TestRepository_SearchStudents(t *testing.T) {
	repo, _ := setupRepo(t)
	ctx := context.Background()
	for i := 1; i <= 12; i++ {
		createStudent(t, repo, fmt.Sprintf("Student %02d", i), fmt.Sprintf("CARD-%02d", i))
	}
	createStudent(t, repo, "Ann", "STU9")

	tests := []struct {
		name  string
		query string
		limit int
		want  []string
	}{
		{
			name:  "capped at limit",
			query: "student",
			limit: 10,
			want: []string{
				"Student 01", "Student 02", "Student 03", "Student 04", "Student 05",
				"Student 06", "Student 07", "Student 08", "Student 09", "Student 10",
			},
		},
		{
			name:  "case insensitive id card",
			query: "card-03",
			limit: 10,
			want:  []string{"Student 03"},
		},
		{
			name:  "substring of name",
			query: "nn",
			limit: 10,
			want:  []string{"Ann"},
		},
		{
			name:  "no match",
			query: "zzz",
			limit: 10,
			want:  []string{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			students, err := repo.SearchStudents(ctx, tt.query, tt.limit)
			require.NoError(t, err)
			names := make([]string, 0, len(students))
			for _, s := range students {
				names = append(names, s.FullName)
			}
			require.Equal(t, tt.want, names)
		})
	}
}

func TestRepository_ListPaging(t *testing.T) {
	repo, _ := setupRepo(t)
	ctx := context.Background()
	for i := 1; i <= 5; i++ {
		createBook(t, repo, fmt.Sprintf("Book %d", i), i)
		createStudent(t, repo, fmt.Sprintf("Student %d", i), fmt.Sprintf("CARD-%d", i))
	}

	tests := []struct {
		name      string
		params    paging.Params
		wantBooks []string
	}{
		{
			name:      "first page",
			params:    paging.Params{Page: 1, Limit: 2},
			wantBooks: []string{"Book 5", "Book 4"},
		},
		{
			name:      "second page starts at offset 2",
			params:    paging.Params{Page: 2, Limit: 2},
			wantBooks: []string{"Book 3", "Book 2"},
		},
		{
			name:      "last partial page",
			params:    paging.Params{Page: 3, Limit: 2},
			wantBooks: []string{"Book 1"},
		},
		{
			name:      "past the end",
			params:    paging.Params{Page: 4, Limit: 2},
			wantBooks: []string{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			books, total, err := repo.ListBooks(ctx, tt.params)
			require.NoError(t, err)
			require.Equal(t, 5, total)
			titles := make([]string, 0, len(books))
			for _, b := range books {
				titles = append(titles, b.Title)
			}
			require.Equal(t, tt.wantBooks, titles)

			students, total, err := repo.ListStudents(ctx, tt.params)
			require.NoError(t, err)
			require.Equal(t, 5, total)
			require.Len(t, students, len(tt.wantBooks))
		})
	}
}

func TestRepository_DecrementQuantity(t *testing.T) {
	repo, pool := setupRepo(t)
	ctx := context.Background()
	book := createBook(t, repo, "Dune", 1)

	taken, err := repo.DecrementQuantity(ctx, book.ID, true)
	require.NoError(t, err)
	require.True(t, taken)
	require.Equal(t, 0, bookQuantity(t, pool, book.ID))

	taken, err = repo.DecrementQuantity(ctx, book.ID, true)
	require.NoError(t, err)
	require.False(t, taken)
	require.Equal(t, 0, bookQuantity(t, pool, book.ID))

	_, err = repo.DecrementQuantity(ctx, book.ID, false)
	require.ErrorIs(t, err, errs.ErrConstraint)
	require.Equal(t, 0, bookQuantity(t, pool, book.ID))

	taken, err = repo.DecrementQuantity(ctx, 999, true)
	require.NoError(t, err)
	require.False(t, taken)

	require.NoError(t, repo.IncrementQuantity(ctx, book.ID))
	require.Equal(t, 1, bookQuantity(t, pool, book.ID))
	require.ErrorIs(t, repo.IncrementQuantity(ctx, 999), errs.ErrNotFound)
}

func TestRepository_BorrowReturn(t *testing.T) {
	repo, _ := setupRepo(t)
	ctx := context.Background()
	book := createBook(t, repo, "Dune", 1)
	studentID := createStudent(t, repo, "Ann", "STU9")

	borrow, err := repo.CreateBorrow(ctx, model.Borrow{StudentID: studentID, BookID: book.ID})
	require.NoError(t, err)
	require.NotZero(t, borrow.ID)
	require.False(t, borrow.BorrowDate.IsZero())

	active, err := repo.GetActiveBorrow(ctx, borrow.ID)
	require.NoError(t, err)
	require.Equal(t, "Ann", active.StudentName)
	require.Equal(t, "Dune", active.BookTitle)
	require.Equal(t, model.BorrowActive, active.Status())

	returned, err := repo.MarkReturned(ctx, borrow.ID)
	require.NoError(t, err)
	require.NotNil(t, returned.ReturnDate)
	require.Equal(t, book.ID, returned.BookID)

	_, err = repo.MarkReturned(ctx, borrow.ID)
	require.ErrorIs(t, err, errs.ErrAlreadyReturned)
	_, err = repo.MarkReturned(ctx, 999)
	require.ErrorIs(t, err, errs.ErrAlreadyReturned)

	_, err = repo.GetActiveBorrow(ctx, borrow.ID)
	require.ErrorIs(t, err, errs.ErrNotFound)

	stored, err := repo.GetBorrow(ctx, borrow.ID)
	require.NoError(t, err)
	require.Equal(t, model.BorrowReturned, stored.Status())
	require.True(t, stored.ReturnDate.Equal(*returned.ReturnDate))

	_, err = repo.CreateBorrow(ctx, model.Borrow{StudentID: 999, BookID: book.ID})
	require.ErrorIs(t, err, errs.ErrConstraint)
}

func TestRepository_WithTxRollback(t *testing.T) {
	repo, pool := setupRepo(t)
	ctx := context.Background()
	book := createBook(t, repo, "Dune", 1)
	studentID := createStudent(t, repo, "Ann", "STU9")

	err := repo.WithTx(ctx, func(tx repository.Repository) error {
		if _, err := tx.CreateBorrow(ctx, model.Borrow{StudentID: studentID, BookID: book.ID}); err != nil {
			return err
		}
		if _, err := tx.DecrementQuantity(ctx, book.ID, true); err != nil {
			return err
		}
		return errs.ErrOutOfStock
	})
	require.ErrorIs(t, err, errs.ErrOutOfStock)

	_, total, err := repo.ListBorrows(ctx, paging.Params{Page: 1, Limit: 10})
	require.NoError(t, err)
	require.Zero(t, total)
	require.Equal(t, 1, bookQuantity(t, pool, book.ID))
}

func TestRepository_Dashboard(t *testing.T) {
	repo, _ := setupRepo(t)
	ctx := context.Background()
	book := createBook(t, repo, "Dune", 3)
	studentID := createStudent(t, repo, "Ann", "STU9")
	createStudent(t, repo, "Bob", "STU10")

	first, err := repo.CreateBorrow(ctx, model.Borrow{StudentID: studentID, BookID: book.ID})
	require.NoError(t, err)
	_, err = repo.CreateBorrow(ctx, model.Borrow{StudentID: studentID, BookID: book.ID})
	require.NoError(t, err)
	_, err = repo.MarkReturned(ctx, first.ID)
	require.NoError(t, err)

	counts := []struct {
		name  string
		count func(context.Context) (int, error)
		want  int
	}{
		{name: "books", count: repo.CountBooks, want: 1},
		{name: "students", count: repo.CountStudents, want: 2},
		{name: "borrows", count: repo.CountBorrows, want: 2},
		{name: "active", count: repo.CountActiveBorrows, want: 1},
		{name: "returned", count: repo.CountReturnedBorrows, want: 1},
	}
	for _, tt := range counts {
		t.Run(tt.name, func(t *testing.T) {
			n, err := tt.count(ctx)
			require.NoError(t, err)
			require.Equal(t, tt.want, n)
		})
	}

	borrows, total, err := repo.ListBorrows(ctx, paging.Params{Page: 1, Limit: 1})
	require.NoError(t, err)
	require.Equal(t, 2, total)
	require.Len(t, borrows, 1)
}
