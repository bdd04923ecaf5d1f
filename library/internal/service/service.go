package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/Astemirdum/library-management/library/internal/errs"
	"github.com/Astemirdum/library-management/library/internal/model"
	libraryRepo "github.com/Astemirdum/library-management/library/internal/repository"
	"github.com/Astemirdum/library-management/pkg/auth"
	"github.com/Astemirdum/library-management/pkg/kafka"
	"github.com/Astemirdum/library-management/pkg/paging"
)

const searchLimit = 10

type TokenIssuer interface {
	Issue(id int64, role auth.Role) (string, error)
}

type EventPublisher interface {
	Publish(ctx context.Context, event kafka.BorrowEvent) error
}

type nopPublisher struct{}

func (nopPublisher) Publish(context.Context, kafka.BorrowEvent) error { return nil }

type Service struct {
	log    *zap.Logger
	repo   libraryRepo.Repository
	tokens TokenIssuer
	events EventPublisher

	// atomicBorrow runs each borrow/return sequence in one transaction
	// with a guarded stock decrement.
	atomicBorrow bool
	// recordCreator stores the caller id as students.created_by.
	recordCreator bool
}

type Option func(*Service)

func WithTokenIssuer(t TokenIssuer) Option {
	return func(s *Service) { s.tokens = t }
}

func WithEventPublisher(p EventPublisher) Option {
	return func(s *Service) {
		if p != nil {
			s.events = p
		}
	}
}

func WithAtomicBorrow(atomic bool) Option {
	return func(s *Service) { s.atomicBorrow = atomic }
}

func WithStudentCreator(record bool) Option {
	return func(s *Service) { s.recordCreator = record }
}

func NewService(repo libraryRepo.Repository, log *zap.Logger, opts ...Option) *Service {
	s := &Service{
		log:           log.Named("service"),
		repo:          repo,
		events:        nopPublisher{},
		atomicBorrow:  true,
		recordCreator: true,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func newList[T any](items []T, p paging.Params, total int) model.List[T] {
	return model.List[T]{
		Paging: model.Paging{
			Page:       p.Page,
			Limit:      p.Limit,
			Total:      total,
			TotalPages: paging.TotalPages(total, p.Limit),
		},
		Items: items,
	}
}

func actorID(ctx context.Context) *int64 {
	id, ok := auth.FromContext(ctx)
	if !ok {
		return nil
	}
	return &id.ID
}

func (s *Service) CreateStudent(ctx context.Context, req model.StudentRequest) (int64, error) {
	student := model.Student{
		FullName:     req.FullName,
		IDCard:       req.IDCard,
		StudentClass: req.StudentClass,
	}
	if s.recordCreator {
		student.CreatedBy = actorID(ctx)
		if student.CreatedBy == nil {
			return 0, errs.ErrCreatorRequired
		}
	}
	return s.repo.CreateStudent(ctx, student)
}

func (s *Service) ListStudents(ctx context.Context, p paging.Params) (model.List[model.Student], error) {
	students, total, err := s.repo.ListStudents(ctx, p)
	if err != nil {
		return model.List[model.Student]{}, err
	}
	return newList(students, p, total), nil
}

func (s *Service) GetStudent(ctx context.Context, id int64) (model.Student, error) {
	return s.repo.GetStudent(ctx, id)
}

func (s *Service) UpdateStudent(ctx context.Context, id int64, req model.StudentRequest) error {
	return s.repo.UpdateStudent(ctx, model.Student{
		ID:           id,
		FullName:     req.FullName,
		IDCard:       req.IDCard,
		StudentClass: req.StudentClass,
	})
}

func (s *Service) DeleteStudent(ctx context.Context, id int64) error {
	return s.repo.DeleteStudent(ctx, id)
}

func (s *Service) SearchStudents(ctx context.Context, query string) ([]model.Student, error) {
	if query == "" {
		return nil, errs.ErrEmptyQuery
	}
	return s.repo.SearchStudents(ctx, query, searchLimit)
}

func (s *Service) CreateBook(ctx context.Context, req model.BookRequest) (int64, error) {
	return s.repo.CreateBook(ctx, model.Book{
		Title:       req.Title,
		Description: req.Description,
		AuthorID:    req.AuthorID,
		CategoryID:  req.CategoryID,
		Quantity:    req.Quantity,
		CreatedBy:   actorID(ctx),
	})
}

func (s *Service) ListBooks(ctx context.Context, p paging.Params) (model.List[model.Book], error) {
	books, total, err := s.repo.ListBooks(ctx, p)
	if err != nil {
		return model.List[model.Book]{}, err
	}
	return newList(books, p, total), nil
}

func (s *Service) GetBook(ctx context.Context, id int64) (model.Book, error) {
	return s.repo.GetBook(ctx, id)
}

func (s *Service) UpdateBook(ctx context.Context, id int64, req model.BookRequest) error {
	return s.repo.UpdateBook(ctx, model.Book{
		ID:          id,
		Title:       req.Title,
		Description: req.Description,
		AuthorID:    req.AuthorID,
		CategoryID:  req.CategoryID,
		Quantity:    req.Quantity,
	})
}

func (s *Service) DeleteBook(ctx context.Context, id int64) error {
	return s.repo.DeleteBook(ctx, id)
}

func (s *Service) ListAuthors(ctx context.Context) ([]model.Author, error) {
	return s.repo.ListAuthors(ctx)
}

func (s *Service) CreateAuthor(ctx context.Context, req model.AuthorRequest) (int64, error) {
	return s.repo.CreateAuthor(ctx, model.Author{FullName: req.FullName})
}

func (s *Service) ListCategories(ctx context.Context) ([]model.Category, error) {
	return s.repo.ListCategories(ctx)
}

func (s *Service) CreateCategory(ctx context.Context, req model.CategoryRequest) (int64, error) {
	return s.repo.CreateCategory(ctx, model.Category{Name: req.Name})
}

func (s *Service) ListBorrows(ctx context.Context, p paging.Params) (model.List[model.Borrow], error) {
	borrows, total, err := s.repo.ListBorrows(ctx, p)
	if err != nil {
		return model.List[model.Borrow]{}, err
	}
	return newList(borrows, p, total), nil
}

func (s *Service) GetBorrow(ctx context.Context, id int64) (model.Borrow, error) {
	return s.repo.GetBorrow(ctx, id)
}
