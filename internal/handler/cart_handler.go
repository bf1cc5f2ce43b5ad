package handler

import (
	"net/http"

	"storefront/internal/usecase"

	"github.com/labstack/echo/v4"
)

// /api/shop/cart のHTTP
type CartHandler struct {
	uc *usecase.CartUsecase
}

// DI
func NewCartHandler(uc *usecase.CartUsecase) *CartHandler {
	return &CartHandler{uc: uc}
}

// /cart, /cart/:productId を登録
func (h *CartHandler) RegisterRoutes(g *echo.Group) {
	g.GET("/cart", h.getCart)
	g.POST("/cart", h.addToCart)
	g.PUT("/cart", h.updateQuantity)
	g.DELETE("/cart/:productId", h.deleteItem)
}

func (h *CartHandler) getCart(c echo.Context) error {
	userID, found := getUserIDFromContext(c)
	if !found {
		return usecase.UnauthorizedError()
	}

	out, err := h.uc.GetCart(c.Request().Context(), userID)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, out)
}

func (h *CartHandler) addToCart(c echo.Context) error {
	userID, found := getUserIDFromContext(c)
	if !found {
		return usecase.UnauthorizedError()
	}

	var req usecase.CartItemInput
	if err := bind(c, &req); err != nil {
		return err
	}

	out, err := h.uc.AddItem(c.Request().Context(), userID, req)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, out)
}

func (h *CartHandler) updateQuantity(c echo.Context) error {
	userID, found := getUserIDFromContext(c)
	if !found {
		return usecase.UnauthorizedError()
	}

	var req usecase.CartItemInput
	if err := bind(c, &req); err != nil {
		return err
	}

	out, err := h.uc.UpdateQuantity(c.Request().Context(), userID, req)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, out)
}

func (h *CartHandler) deleteItem(c echo.Context) error {
	userID, found := getUserIDFromContext(c)
	if !found {
		return usecase.UnauthorizedError()
	}

	productID, err := paramID(c, "productId")
	if err != nil {
		return err
	}

	out, err := h.uc.RemoveItem(c.Request().Context(), userID, productID)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, out)
}
