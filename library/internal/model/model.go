package model

import (
	"time"

	"github.com/Astemirdum/library-management/pkg/auth"
)

type User struct {
	ID           int64     `json:"id" db:"id"`
	Username     string    `json:"username" db:"username"`
	PasswordHash string    `json:"-" db:"password_hash"`
	FullName     string    `json:"full_name" db:"full_name"`
	Role         auth.Role `json:"role" db:"role"`
}

type Student struct {
	ID           int64  `json:"id" db:"id"`
	FullName     string `json:"full_name" db:"full_name"`
	IDCard       string `json:"id_card" db:"id_card"`
	StudentClass string `json:"student_class" db:"class"`
	CreatedBy    *int64 `json:"created_by" db:"created_by"`
}

type Author struct {
	ID       int64  `json:"id" db:"id"`
	FullName string `json:"full_name" db:"full_name"`
}

type Category struct {
	ID   int64  `json:"id" db:"id"`
	Name string `json:"name" db:"name"`
}

type Book struct {
	ID           int64  `json:"id" db:"id"`
	Title        string `json:"title" db:"title"`
	Description  string `json:"description" db:"description"`
	AuthorID     int64  `json:"author_id" db:"author_id"`
	AuthorName   string `json:"author_name" db:"author_name"`
	CategoryID   int64  `json:"category_id" db:"category_id"`
	CategoryName string `json:"category_name" db:"category_name"`
	Quantity     int    `json:"quantity" db:"quantity"`
	CreatedBy    *int64 `json:"created_by" db:"created_by"`
}

type BorrowStatus string

const (
	BorrowActive   BorrowStatus = "ACTIVE"
	BorrowReturned BorrowStatus = "RETURNED"
)

type Borrow struct {
	ID          int64      `json:"id" db:"id"`
	StudentID   int64      `json:"student_id" db:"student_id"`
	StudentName string     `json:"student_name,omitempty" db:"student_name"`
	BookID      int64      `json:"book_id" db:"book_id"`
	BookTitle   string     `json:"book_title,omitempty" db:"book_title"`
	CreatedBy   *int64     `json:"created_by" db:"created_by"`
	BorrowDate  time.Time  `json:"borrow_date" db:"borrow_date"`
	ReturnDate  *time.Time `json:"return_date" db:"return_date"`
}

// Status derives the borrow state from return_date.
func (b Borrow) Status() BorrowStatus {
	if b.ReturnDate == nil {
		return BorrowActive
	}
	return BorrowReturned
}

type Dashboard struct {
	TotalBooks      int `json:"total_books"`
	TotalStudents   int `json:"total_students"`
	TotalBorrows    int `json:"total_borrows"`
	ActiveBorrows   int `json:"active_borrows"`
	ReturnedBorrows int `json:"returned_borrows"`
}

type Paging struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
}

type List[T any] struct {
	Paging
	Items []T `json:"items"`
}
