package repository

import (
	"context"

	"storefront/internal/domain/model"
)

type AdminOrderListFilter struct {
	Page   int
	Limit  int
	Status string
	UserID *int64
}

type OrderRepository interface {
	// 注文と明細を1トランザクションで保存し、IDを埋める
	Create(ctx context.Context, order *model.Order) error
	// 明細込みで取得
	FindByID(ctx context.Context, orderID int64) (model.Order, error)
	// 行ロック付き（Tx内で使う）
	FindByIDForUpdate(ctx context.Context, orderID int64) (model.Order, error)
	// 新しい順（同時刻はID降順）
	ListByUserID(ctx context.Context, userID int64) ([]model.Order, error)
	UpdateStatus(ctx context.Context, orderID int64, status model.OrderStatus) error
	// pending以外なら ErrNotFound
	MarkPaid(ctx context.Context, orderID int64, paymentID string, payerID string) error

	//管理者用の注文一覧
	ListAdmin(ctx context.Context, f AdminOrderListFilter) ([]model.Order, int64, error)
}
