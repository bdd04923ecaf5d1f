package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Astemirdum/library-management/library/internal/errs"
	"github.com/Astemirdum/library-management/library/internal/model"
)

func (h *Handler) ListStudents(c echo.Context) error {
	p, err := h.pagingParams(c)
	if err != nil {
		return err
	}
	list, err := h.librarySvc.ListStudents(c.Request().Context(), p)
	if err != nil {
		return h.httpError(err)
	}
	return c.JSON(http.StatusOK, list)
}

func (h *Handler) SearchStudents(c echo.Context) error {
	query := c.QueryParam("query")
	if query == "" {
		return echo.NewHTTPError(http.StatusBadRequest, errs.ErrEmptyQuery.Error())
	}
	students, err := h.librarySvc.SearchStudents(c.Request().Context(), query)
	if err != nil {
		return h.httpError(err)
	}
	return c.JSON(http.StatusOK, students)
}

func (h *Handler) GetStudent(c echo.Context) error {
	id, err := idParam(c)
	if err != nil {
		return err
	}
	student, err := h.librarySvc.GetStudent(c.Request().Context(), id)
	if err != nil {
		return h.httpError(err)
	}
	return c.JSON(http.StatusOK, student)
}

func (h *Handler) CreateStudent(c echo.Context) error {
	var req model.StudentRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	id, err := h.librarySvc.CreateStudent(c.Request().Context(), req)
	if err != nil {
		return h.httpError(err)
	}
	return c.JSON(http.StatusCreated, model.CreatedResponse{ID: id})
}

func (h *Handler) UpdateStudent(c echo.Context) error {
	id, err := idParam(c)
	if err != nil {
		return err
	}
	var req model.StudentRequest
	if err = bind(c, &req); err != nil {
		return err
	}
	if err = h.librarySvc.UpdateStudent(c.Request().Context(), id, req); err != nil {
		return h.httpError(err)
	}
	return c.JSON(http.StatusOK, model.MessageResponse{Message: "student updated"})
}

func (h *Handler) DeleteStudent(c echo.Context) error {
	id, err := idParam(c)
	if err != nil {
		return err
	}
	if err = h.librarySvc.DeleteStudent(c.Request().Context(), id); err != nil {
		return h.httpError(err)
	}
	return c.JSON(http.StatusOK, model.MessageResponse{Message: "student deleted"})
}
