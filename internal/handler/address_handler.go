package handler

import (
	"net/http"

	"storefront/internal/usecase"

	"github.com/labstack/echo/v4"
)

type AddressHandler struct {
	uc *usecase.AddressUsecase
}

func NewAddressHandler(uc *usecase.AddressUsecase) *AddressHandler {
	return &AddressHandler{uc: uc}
}

func (h *AddressHandler) RegisterRoutes(g *echo.Group) {
	g.GET("/address", h.List)
	g.POST("/address", h.Create)
	g.PUT("/address/:addressId", h.Update)
	g.DELETE("/address/:addressId", h.Delete)
}

func (h *AddressHandler) List(c echo.Context) error {
	userID, found := getUserIDFromContext(c)
	if !found {
		return usecase.UnauthorizedError()
	}

	list, err := h.uc.List(c.Request().Context(), userID)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, list)
}

func (h *AddressHandler) Create(c echo.Context) error {
	userID, found := getUserIDFromContext(c)
	if !found {
		return usecase.UnauthorizedError()
	}

	var req usecase.AddressRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	created, err := h.uc.Create(c.Request().Context(), userID, req)
	if err != nil {
		return err
	}
	return respond(c, http.StatusCreated, created)
}

func (h *AddressHandler) Update(c echo.Context) error {
	userID, found := getUserIDFromContext(c)
	if !found {
		return usecase.UnauthorizedError()
	}

	id, err := paramID(c, "addressId")
	if err != nil {
		return err
	}

	var req usecase.AddressRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	updated, err := h.uc.Update(c.Request().Context(), userID, id, req)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, updated)
}

func (h *AddressHandler) Delete(c echo.Context) error {
	userID, found := getUserIDFromContext(c)
	if !found {
		return usecase.UnauthorizedError()
	}

	id, err := paramID(c, "addressId")
	if err != nil {
		return err
	}

	if err := h.uc.Delete(c.Request().Context(), userID, id); err != nil {
		return err
	}
	return okMessage(c, "deleted")
}
