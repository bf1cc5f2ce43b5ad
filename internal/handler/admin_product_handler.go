package handler

import (
	"net/http"

	"storefront/internal/usecase"

	"github.com/labstack/echo/v4"
)

// /api/admin/products
type AdminProductHandler struct {
	uc *usecase.ProductUsecase
}

// DI
func NewAdminProductHandler(uc *usecase.ProductUsecase) *AdminProductHandler {
	return &AdminProductHandler{uc: uc}
}

// adminグループに登録（JWT・tv・admin ガードは呼び出し側）
func (h *AdminProductHandler) RegisterRoutes(admin *echo.Group) {
	admin.GET("/products", h.listProducts)
	admin.POST("/products", h.createProduct)
	admin.PUT("/products/:id", h.updateProduct)
	admin.DELETE("/products/:id", h.deleteProduct)
}

func (h *AdminProductHandler) listProducts(c echo.Context) error {
	out, err := h.uc.AdminListProducts(c.Request().Context())
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, out)
}

func (h *AdminProductHandler) createProduct(c echo.Context) error {
	var req usecase.ProductRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	adminID, found := getUserIDFromContext(c)
	if !found {
		return usecase.UnauthorizedError()
	}

	p, err := h.uc.AdminCreateProduct(c.Request().Context(), adminID, req)
	if err != nil {
		return err
	}
	return respond(c, http.StatusCreated, p)
}

func (h *AdminProductHandler) updateProduct(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}

	var req usecase.ProductRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	adminID, found := getUserIDFromContext(c)
	if !found {
		return usecase.UnauthorizedError()
	}

	p, err := h.uc.AdminUpdateProduct(c.Request().Context(), adminID, id, req)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, p)
}

func (h *AdminProductHandler) deleteProduct(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}

	adminID, found := getUserIDFromContext(c)
	if !found {
		return usecase.UnauthorizedError()
	}

	if err := h.uc.AdminDeleteProduct(c.Request().Context(), adminID, id); err != nil {
		return err
	}
	return okMessage(c, "deleted")
}
