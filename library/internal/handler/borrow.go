package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Astemirdum/library-management/library/internal/model"
)

func (h *Handler) Borrow(c echo.Context) error {
	var req model.BorrowRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	borrow, err := h.librarySvc.Borrow(c.Request().Context(), req)
	if err != nil {
		return h.httpError(err)
	}
	return c.JSON(http.StatusCreated, borrow)
}

func (h *Handler) ReturnBorrow(c echo.Context) error {
	id, err := idParam(c)
	if err != nil {
		return err
	}
	if _, err = h.librarySvc.ReturnBorrow(c.Request().Context(), id); err != nil {
		return h.httpError(err)
	}
	return c.JSON(http.StatusOK, model.MessageResponse{Message: "book returned"})
}

func (h *Handler) ListBorrows(c echo.Context) error {
	p, err := h.pagingParams(c)
	if err != nil {
		return err
	}
	list, err := h.librarySvc.ListBorrows(c.Request().Context(), p)
	if err != nil {
		return h.httpError(err)
	}
	return c.JSON(http.StatusOK, list)
}

func (h *Handler) GetBorrow(c echo.Context) error {
	id, err := idParam(c)
	if err != nil {
		return err
	}
	borrow, err := h.librarySvc.GetBorrow(c.Request().Context(), id)
	if err != nil {
		return h.httpError(err)
	}
	return c.JSON(http.StatusOK, borrow)
}
