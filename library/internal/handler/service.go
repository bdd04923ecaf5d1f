package handler

import (
	"context"

	"github.com/Astemirdum/library-management/library/internal/model"
	"github.com/Astemirdum/library-management/library/internal/service"
	"github.com/Astemirdum/library-management/pkg/paging"
)

//go:generate go run github.com/golang/mock/mockgen -source=service.go -destination=mocks/mock.go

type LibraryService interface {
	Login(ctx context.Context, req model.LoginRequest) (model.LoginResponse, error)

	CreateStudent(ctx context.Context, req model.StudentRequest) (int64, error)
	ListStudents(ctx context.Context, p paging.Params) (model.List[model.Student], error)
	GetStudent(ctx context.Context, id int64) (model.Student, error)
	UpdateStudent(ctx context.Context, id int64, req model.StudentRequest) error
	DeleteStudent(ctx context.Context, id int64) error
	SearchStudents(ctx context.Context, query string) ([]model.Student, error)

	CreateBook(ctx context.Context, req model.BookRequest) (int64, error)
	ListBooks(ctx context.Context, p paging.Params) (model.List[model.Book], error)
	GetBook(ctx context.Context, id int64) (model.Book, error)
	UpdateBook(ctx context.Context, id int64, req model.BookRequest) error
	DeleteBook(ctx context.Context, id int64) error

	ListAuthors(ctx context.Context) ([]model.Author, error)
	CreateAuthor(ctx context.Context, req model.AuthorRequest) (int64, error)
	ListCategories(ctx context.Context) ([]model.Category, error)
	CreateCategory(ctx context.Context, req model.CategoryRequest) (int64, error)

	Borrow(ctx context.Context, req model.BorrowRequest) (model.Borrow, error)
	ReturnBorrow(ctx context.Context, id int64) (model.Borrow, error)
	ListBorrows(ctx context.Context, p paging.Params) (model.List[model.Borrow], error)
	GetBorrow(ctx context.Context, id int64) (model.Borrow, error)

	Dashboard(ctx context.Context) (model.Dashboard, error)
}

var _ LibraryService = (*service.Service)(nil)
