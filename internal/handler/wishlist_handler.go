package handler

import (
	"net/http"

	"storefront/internal/usecase"

	"github.com/labstack/echo/v4"
)

type WishlistHandler struct {
	uc *usecase.WishlistUsecase
}

func NewWishlistHandler(uc *usecase.WishlistUsecase) *WishlistHandler {
	return &WishlistHandler{uc: uc}
}

func (h *WishlistHandler) RegisterRoutes(g *echo.Group) {
	g.GET("/wishlist", h.list)
	g.POST("/wishlist", h.add)
	g.DELETE("/wishlist/:productId", h.remove)
}

func (h *WishlistHandler) list(c echo.Context) error {
	userID, found := getUserIDFromContext(c)
	if !found {
		return usecase.UnauthorizedError()
	}

	out, err := h.uc.List(c.Request().Context(), userID)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, out)
}

func (h *WishlistHandler) add(c echo.Context) error {
	userID, found := getUserIDFromContext(c)
	if !found {
		return usecase.UnauthorizedError()
	}

	var req usecase.WishlistInput
	if err := bind(c, &req); err != nil {
		return err
	}

	out, err := h.uc.Add(c.Request().Context(), userID, req)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, out)
}

func (h *WishlistHandler) remove(c echo.Context) error {
	userID, found := getUserIDFromContext(c)
	if !found {
		return usecase.UnauthorizedError()
	}

	productID, err := paramID(c, "productId")
	if err != nil {
		return err
	}

	if err := h.uc.Remove(c.Request().Context(), userID, productID); err != nil {
		return err
	}
	return okMessage(c, "removed")
}
