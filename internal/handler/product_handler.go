package handler

import (
	"net/http"
	"strings"

	"storefront/internal/usecase"

	"github.com/labstack/echo/v4"
)

// /api/shop/products の公開API
type ProductHandler struct {
	uc *usecase.ProductUsecase
}

// DI
func NewProductHandler(uc *usecase.ProductUsecase) *ProductHandler {
	return &ProductHandler{uc: uc}
}

// 公開商品のルートを登録
func (h *ProductHandler) RegisterRoutes(g *echo.Group) {
	g.GET("/products", h.list)
	g.GET("/products/:id", h.detail)
	g.GET("/search/:keyword", h.search)
}

// ?category=men,women&brand=nike&sortBy=price-lowtohigh
func (h *ProductHandler) list(c echo.Context) error {
	out, err := h.uc.ListProducts(c.Request().Context(), usecase.ListProductsInput{
		Categories: splitCSV(c.QueryParams()["category"]),
		Brands:     splitCSV(c.QueryParams()["brand"]),
		SortBy:     c.QueryParam("sortBy"),
	})
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, out)
}

func (h *ProductHandler) detail(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}

	p, err := h.uc.GetProductDetail(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, p)
}

func (h *ProductHandler) search(c echo.Context) error {
	out, err := h.uc.Search(c.Request().Context(), c.Param("keyword"))
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, out)
}

// ?brand=a,b と ?brand=a&brand=b の両方を受ける
func splitCSV(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		out = append(out, strings.Split(v, ",")...)
	}
	return out
}
