package handler

import (
	"net/http"
	"strconv"

	"storefront/internal/usecase"

	"github.com/labstack/echo/v4"
)

type AdminOrderHandler struct {
	uc      *usecase.AdminOrderUsecase
	auditUC *usecase.AuditLogUsecase
}

func NewAdminOrderHandler(uc *usecase.AdminOrderUsecase, auditUC *usecase.AuditLogUsecase) *AdminOrderHandler {
	return &AdminOrderHandler{uc: uc, auditUC: auditUC}
}

func (h *AdminOrderHandler) RegisterRoutes(admin *echo.Group) {
	admin.GET("/orders", h.list)
	admin.GET("/orders/:id", h.detail)
	admin.PUT("/orders/:id/status", h.updateStatus)
	admin.GET("/audit-logs", h.auditLogs)
}

func (h *AdminOrderHandler) list(c echo.Context) error {
	page, err := queryInt(c, "page")
	if err != nil {
		return err
	}
	limit, err := queryInt(c, "limit")
	if err != nil {
		return err
	}
	userID, err := queryInt64Ptr(c, "user_id")
	if err != nil {
		return err
	}

	out, err := h.uc.List(c.Request().Context(), usecase.AdminOrderListInput{
		Page:   page,
		Limit:  limit,
		Status: c.QueryParam("status"),
		UserID: userID,
	})
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, out)
}

func (h *AdminOrderHandler) detail(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}

	out, err := h.uc.Get(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, out)
}

func (h *AdminOrderHandler) updateStatus(c echo.Context) error {
	orderID, err := paramID(c, "id")
	if err != nil {
		return err
	}

	var req usecase.AdminUpdateOrderStatusInput
	if err := bind(c, &req); err != nil {
		return err
	}

	// 操作した管理者ID（監査ログ用）
	adminID, found := getUserIDFromContext(c)
	if !found {
		return usecase.UnauthorizedError()
	}

	out, err := h.uc.UpdateStatus(c.Request().Context(), adminID, orderID, req)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, out)
}

func (h *AdminOrderHandler) auditLogs(c echo.Context) error {
	limit, err := queryInt(c, "limit")
	if err != nil {
		return err
	}
	offset, err := queryInt(c, "offset")
	if err != nil {
		return err
	}
	actor, err := queryInt64Ptr(c, "actor_user_id")
	if err != nil {
		return err
	}
	resourceID, err := queryInt64Ptr(c, "resource_id")
	if err != nil {
		return err
	}

	logs, err := h.auditUC.List(c.Request().Context(), usecase.AuditLogListInput{
		ActorUserID:  actor,
		Action:       c.QueryParam("action"),
		ResourceType: c.QueryParam("resource_type"),
		ResourceID:   resourceID,
		Limit:        limit,
		Offset:       offset,
	})
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, logs)
}

// 未指定は0
func queryInt(c echo.Context, name string) (int, error) {
	v := c.QueryParam(name)
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, usecase.ValidationError("invalid " + name)
	}
	return n, nil
}

func queryInt64Ptr(c echo.Context, name string) (*int64, error) {
	v := c.QueryParam(name)
	if v == "" {
		return nil, nil
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return nil, usecase.ValidationError("invalid " + name)
	}
	return &n, nil
}
