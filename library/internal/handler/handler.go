package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"
	echoSwagger "github.com/swaggo/echo-swagger"
	"go.uber.org/zap"

	"github.com/Astemirdum/library-management/library/internal/errs"
	"github.com/Astemirdum/library-management/pkg/auth"
	md "github.com/Astemirdum/library-management/pkg/middleware"
	"github.com/Astemirdum/library-management/pkg/paging"
	"github.com/Astemirdum/library-management/pkg/validate"
	_ "github.com/Astemirdum/library-management/swagger"
)

type Handler struct {
	librarySvc LibraryService
	authn      md.Authenticator
	paging     paging.Policy
	log        *zap.Logger
}

func New(librarySvc LibraryService, authn md.Authenticator, policy paging.Policy, log *zap.Logger) *Handler {
	return &Handler{
		librarySvc: librarySvc,
		authn:      authn,
		paging:     policy,
		log:        log.Named("handler"),
	}
}

func (h *Handler) NewRouter() *echo.Echo {
	e := echo.New()
	const (
		baseRPS = 10
		apiRPS  = 100
	)
	e.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{
		StackSize: 4 << 10, // 4 KB
	}))
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{http.MethodGet, http.MethodOptions, http.MethodHead, http.MethodPut, http.MethodPatch, http.MethodPost, http.MethodDelete},
		AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
		AllowCredentials: true,
	}))

	base := e.Group("", md.NewRateLimiter(baseRPS))
	base.GET("/manage/health", h.Health)
	base.GET("/swagger/*", echoSwagger.WrapHandler)

	e.Validator = validate.NewCustomValidator()
	api := e.Group("/api",
		middleware.RequestLoggerWithConfig(md.RequestLoggerConfig(h.log)),
		middleware.RequestID(),
		md.NewRateLimiter(apiRPS),
	)
	api.POST("/auth/login", h.Login)

	staff := api.Group("", md.RequireRoles(h.authn, auth.StaffRoles...))

	staff.GET("/students", h.ListStudents)
	staff.GET("/students/search", h.SearchStudents)
	staff.GET("/students/:id", h.GetStudent)
	staff.POST("/students", h.CreateStudent)
	staff.PUT("/students/:id", h.UpdateStudent)
	staff.DELETE("/students/:id", h.DeleteStudent)

	staff.GET("/books", h.ListBooks)
	staff.GET("/books/:id", h.GetBook)
	staff.POST("/books", h.CreateBook)
	staff.PUT("/books/:id", h.UpdateBook)
	staff.DELETE("/books/:id", h.DeleteBook)

	staff.GET("/authors", h.ListAuthors)
	staff.POST("/authors", h.CreateAuthor)
	staff.GET("/categories", h.ListCategories)
	staff.POST("/categories", h.CreateCategory)

	staff.POST("/borrows", h.Borrow)
	staff.GET("/borrows", h.ListBorrows)
	staff.GET("/borrows/:id", h.GetBorrow)
	staff.PUT("/borrows/:id/return", h.ReturnBorrow)

	staff.GET("/dashboard", h.Dashboard)

	return e
}

func (h *Handler) Health(c echo.Context) error {
	return c.String(http.StatusOK, "OK")
}

func (h *Handler) pagingParams(c echo.Context) (paging.Params, error) {
	p, err := h.paging.Parse(c.QueryParam("page"), c.QueryParam("limit"))
	if err != nil {
		return paging.Params{}, echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return p, nil
}

func idParam(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "id is invalid")
	}
	return id, nil
}

// bind decodes and validates the request body.
func bind(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return nil
}

// httpError maps service errors onto response codes. Unknown errors are
// store failures.
func (h *Handler) httpError(err error) error {
	switch {
	case errors.Is(err, errs.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, errs.ErrInvalidCredentials):
		return echo.NewHTTPError(http.StatusUnauthorized, err.Error())
	case errors.Is(err, errs.ErrOutOfStock),
		errors.Is(err, errs.ErrAlreadyReturned),
		errors.Is(err, errs.ErrConstraint),
		errors.Is(err, errs.ErrEmptyQuery),
		errors.Is(err, errs.ErrCreatorRequired):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	h.log.Error("store failure", zap.Error(err))
	return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
}
