package handler

import (
	"net/http"

	"storefront/internal/usecase"

	"github.com/labstack/echo/v4"
)

// /api/common/feature
type FeatureHandler struct {
	uc *usecase.FeatureImageUsecase
}

func NewFeatureHandler(uc *usecase.FeatureImageUsecase) *FeatureHandler {
	return &FeatureHandler{uc: uc}
}

// 一覧は誰でも
func (h *FeatureHandler) RegisterRoutes(g *echo.Group) {
	g.GET("/feature", h.list)
}

// 追加と削除はadminのみ
func (h *FeatureHandler) RegisterAdminRoutes(g *echo.Group) {
	g.POST("/feature", h.add)
	g.DELETE("/feature/:id", h.delete)
}

func (h *FeatureHandler) list(c echo.Context) error {
	out, err := h.uc.List(c.Request().Context())
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, out)
}

func (h *FeatureHandler) add(c echo.Context) error {
	adminID, found := getUserIDFromContext(c)
	if !found {
		return usecase.UnauthorizedError()
	}

	var req usecase.FeatureImageRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	img, err := h.uc.Add(c.Request().Context(), adminID, req)
	if err != nil {
		return err
	}
	return respond(c, http.StatusCreated, img)
}

func (h *FeatureHandler) delete(c echo.Context) error {
	adminID, found := getUserIDFromContext(c)
	if !found {
		return usecase.UnauthorizedError()
	}

	id, err := paramID(c, "id")
	if err != nil {
		return err
	}

	if err := h.uc.Delete(c.Request().Context(), adminID, id); err != nil {
		return err
	}
	return okMessage(c, "deleted")
}
