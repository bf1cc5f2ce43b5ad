package handler

import (
	"net/http"

	"storefront/internal/usecase"

	"github.com/labstack/echo/v4"
)

type OrderHandler struct {
	uc *usecase.OrderUsecase
}

func NewOrderHandler(uc *usecase.OrderUsecase) *OrderHandler {
	return &OrderHandler{uc: uc}
}

func (h *OrderHandler) RegisterRoutes(g *echo.Group) {
	g.POST("/order", h.create)
	g.GET("/order", h.list)
	g.GET("/order/:id", h.detail)
	g.POST("/order/:id/capture", h.capture)
}

func (h *OrderHandler) create(c echo.Context) error {
	userID, found := getUserIDFromContext(c)
	if !found {
		return usecase.UnauthorizedError()
	}

	var req usecase.SubmitOrderInput
	if err := bind(c, &req); err != nil {
		return err
	}

	out, err := h.uc.SubmitOrder(c.Request().Context(), userID, req)
	if err != nil {
		return err
	}
	return respond(c, http.StatusCreated, out)
}

func (h *OrderHandler) list(c echo.Context) error {
	userID, found := getUserIDFromContext(c)
	if !found {
		return usecase.UnauthorizedError()
	}

	out, err := h.uc.ListOrdersForUser(c.Request().Context(), userID)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, out)
}

func (h *OrderHandler) detail(c echo.Context) error {
	userID, found := getUserIDFromContext(c)
	if !found {
		return usecase.UnauthorizedError()
	}

	id, err := paramID(c, "id")
	if err != nil {
		return err
	}

	out, err := h.uc.GetOrderDetails(c.Request().Context(), userID, id)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, out)
}

// 決済プロバイダから戻ったあと
func (h *OrderHandler) capture(c echo.Context) error {
	userID, found := getUserIDFromContext(c)
	if !found {
		return usecase.UnauthorizedError()
	}

	id, err := paramID(c, "id")
	if err != nil {
		return err
	}

	var req usecase.CaptureOrderInput
	if err := bind(c, &req); err != nil {
		return err
	}

	out, err := h.uc.CaptureOrder(c.Request().Context(), userID, id, req)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, out)
}
