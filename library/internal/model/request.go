package model

type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type LoginResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

type StudentRequest struct {
	FullName     string `json:"full_name" validate:"required"`
	IDCard       string `json:"id_card" validate:"required"`
	StudentClass string `json:"student_class" validate:"required"`
}

type BookRequest struct {
	Title       string `json:"title" validate:"required"`
	Description string `json:"description"`
	AuthorID    int64  `json:"author_id" validate:"required,gt=0"`
	CategoryID  int64  `json:"category_id" validate:"required,gt=0"`
	Quantity    int    `json:"quantity" validate:"gte=0"`
}

type AuthorRequest struct {
	FullName string `json:"full_name" validate:"required"`
}

type CategoryRequest struct {
	Name string `json:"name" validate:"required"`
}

type BorrowRequest struct {
	StudentID int64 `json:"student_id" validate:"required,gt=0"`
	BookID    int64 `json:"book_id" validate:"required,gt=0"`
}

type CreatedResponse struct {
	ID int64 `json:"id"`
}

type MessageResponse struct {
	Message string `json:"message"`
}
