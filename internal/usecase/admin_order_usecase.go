package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"

	"github.com/sirupsen/logrus"
)

type AdminOrderUsecase struct {
	tx     repo.TransactionManager
	orders repo.OrderRepository
	log    *logrus.Entry
}

func NewAdminOrderUsecase(tx repo.TransactionManager, orders repo.OrderRepository, log *logrus.Entry) *AdminOrderUsecase {
	return &AdminOrderUsecase{
		tx:     tx,
		orders: orders,
		log:    log.WithField("component", "usecase.admin_order"),
	}
}

type AdminOrderListInput struct {
	Page   int
	Limit  int
	Status string
	UserID *int64
}

type AdminOrderListOutput struct {
	Items []OrderSummary `json:"items"`
	Total int64          `json:"total"`
	Page  int            `json:"page"`
	Limit int            `json:"limit"`
}

type AdminUpdateOrderStatusInput struct {
	Status string `json:"order_status" validate:"notblank"`
}

// 注文一覧（新しい順）
func (u *AdminOrderUsecase) List(ctx context.Context, in AdminOrderListInput) (AdminOrderListOutput, error) {
	if in.Page == 0 {
		in.Page = 1
	}
	if in.Limit == 0 {
		in.Limit = 20
	}
	// page/limitの最低限チェック
	if in.Page < 1 {
		return AdminOrderListOutput{}, ValidationError("invalid page")
	}
	if in.Limit < 1 || in.Limit > 100 {
		return AdminOrderListOutput{}, ValidationError("invalid limit")
	}
	in.Status = strings.TrimSpace(in.Status)
	if in.Status != "" && !model.OrderStatus(in.Status).Valid() {
		return AdminOrderListOutput{}, ValidationError("invalid status")
	}

	orders, total, err := u.orders.ListAdmin(ctx, repo.AdminOrderListFilter{
		Page:   in.Page,
		Limit:  in.Limit,
		Status: in.Status,
		UserID: in.UserID,
	})
	if err != nil {
		u.log.WithError(err).Error("list orders failed")
		return AdminOrderListOutput{}, PersistenceError(err)
	}

	items := make([]OrderSummary, 0, len(orders))
	for _, o := range orders {
		items = append(items, toOrderSummary(o))
	}
	return AdminOrderListOutput{Items: items, Total: total, Page: in.Page, Limit: in.Limit}, nil
}

func (u *AdminOrderUsecase) Get(ctx context.Context, orderID int64) (OrderOutput, error) {
	if orderID <= 0 {
		return OrderOutput{}, ValidationError("invalid id")
	}

	o, err := u.orders.FindByID(ctx, orderID)
	if errors.Is(err, repo.ErrNotFound) {
		return OrderOutput{}, NotFoundError()
	}
	if err != nil {
		u.log.WithError(err).Error("find order failed")
		return OrderOutput{}, PersistenceError(err)
	}
	return toOrderOutput(o), nil
}

// ステータス更新。delivered/rejected からは動かさない
func (u *AdminOrderUsecase) UpdateStatus(ctx context.Context, actorAdminUserID int64, orderID int64, in AdminUpdateOrderStatusInput) (OrderOutput, error) {
	if actorAdminUserID <= 0 {
		return OrderOutput{}, UnauthorizedError()
	}
	if orderID <= 0 {
		return OrderOutput{}, ValidationError("invalid id")
	}

	newStatus := model.OrderStatus(strings.TrimSpace(in.Status))
	if !newStatus.Valid() {
		return OrderOutput{}, ValidationError("invalid status")
	}

	var out OrderOutput
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		// 注文取得（行ロック。終端ガードと更新の間に割り込ませない）
		o, err := r.Orders().FindByIDForUpdate(ctx, orderID)
		if errors.Is(err, repo.ErrNotFound) {
			return NotFoundError()
		}
		if err != nil {
			return PersistenceError(err)
		}

		// すでに同じなら何もしない（200）
		if o.OrderStatus == newStatus {
			out = toOrderOutput(o)
			return nil
		}
		// 終端ガード
		if o.OrderStatus.Terminal() {
			return ValidationError(fmt.Sprintf("cannot change %s order", o.OrderStatus))
		}

		// ステータス更新
		beforeStatus := o.OrderStatus
		if err := r.Orders().UpdateStatus(ctx, orderID, newStatus); err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return NotFoundError()
			}
			return PersistenceError(err)
		}

		//監査ログ
		if err := r.AuditLogs().Create(ctx, model.AuditLog{
			ActorUserID:  actorAdminUserID,
			Action:       model.AuditActionUpdateOrderStatus,
			ResourceType: model.AuditResourceOrder,
			ResourceID:   orderID,
			BeforeJSON:   fmt.Sprintf(`{"order_status":%q}`, beforeStatus),
			AfterJSON:    fmt.Sprintf(`{"order_status":%q}`, newStatus),
			CreatedAt:    time.Now(),
		}); err != nil {
			return PersistenceError(err)
		}

		o.OrderStatus = newStatus
		out = toOrderOutput(o)
		return nil
	})
	if err != nil {
		he := toHTTPError(err)
		if he.Err != nil {
			u.log.WithError(he.Err).WithField("order_id", orderID).Error("update order status failed")
		}
		return OrderOutput{}, he
	}
	return out, nil
}
