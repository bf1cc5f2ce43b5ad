package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"storefront/internal/domain/model"
	"storefront/internal/metrics"
	"storefront/internal/notify"
	repo "storefront/internal/repository"

	"github.com/sirupsen/logrus"
)

type OrderUsecase struct {
	orders    repo.OrderRepository
	products  repo.ProductRepository
	addresses repo.AddressRepository
	tx        repo.TransactionManager
	publisher notify.Publisher
	log       *logrus.Entry
}

func NewOrderUsecase(
	orders repo.OrderRepository,
	products repo.ProductRepository,
	addresses repo.AddressRepository,
	tx repo.TransactionManager,
	publisher notify.Publisher,
	log *logrus.Entry,
) *OrderUsecase {
	return &OrderUsecase{
		orders:    orders,
		products:  products,
		addresses: addresses,
		tx:        tx,
		publisher: publisher,
		log:       log.WithField("component", "usecase.order"),
	}
}

type OrderLineInput struct {
	ProductID int64 `json:"product_id" validate:"gt=0"`
	Quantity  int64 `json:"quantity" validate:"gt=0"`
}

type ShippingAddressInput struct {
	// 住所帳から選んだ場合だけ
	AddressID *int64 `json:"address_id"`
	Address   string `json:"address" validate:"notblank"`
	City      string `json:"city" validate:"notblank"`
	Pincode   string `json:"pincode" validate:"notblank"`
	Phone     string `json:"phone" validate:"notblank"`
	Notes     string `json:"notes"`
}

type SubmitOrderInput struct {
	CartID        *int64               `json:"cart_id"`
	CartItems     []OrderLineInput     `json:"cart_items" validate:"min=1,dive"`
	Address       ShippingAddressInput `json:"address"`
	PaymentMethod string               `json:"payment_method" validate:"notblank"`
}

type CaptureOrderInput struct {
	PaymentID string `json:"payment_id" validate:"notblank"`
	PayerID   string `json:"payer_id" validate:"notblank"`
}

type OrderItemOutput struct {
	ProductID int64  `json:"product_id"`
	Title     string `json:"title"`
	Image     string `json:"image"`
	UnitPrice int64  `json:"unit_price"`
	Quantity  int64  `json:"quantity"`
	Subtotal  int64  `json:"subtotal"`
}

type OrderOutput struct {
	ID            int64                 `json:"id"`
	UserID        int64                 `json:"user_id"`
	CartID        *int64                `json:"cart_id,omitempty"`
	Items         []OrderItemOutput     `json:"items"`
	Address       model.AddressSnapshot `json:"address"`
	TotalAmount   int64                 `json:"total_amount"`
	PaymentMethod string                `json:"payment_method"`
	PaymentStatus string                `json:"payment_status"`
	OrderStatus   string                `json:"order_status"`
	PaymentID     string                `json:"payment_id,omitempty"`
	PayerID       string                `json:"payer_id,omitempty"`
	CreatedAt     time.Time             `json:"created_at"`
	UpdatedAt     time.Time             `json:"updated_at"`
}

// 一覧用
type OrderSummary struct {
	ID            int64     `json:"id"`
	UserID        int64     `json:"user_id"`
	TotalAmount   int64     `json:"total_amount"`
	PaymentStatus string    `json:"payment_status"`
	OrderStatus   string    `json:"order_status"`
	ItemCount     int       `json:"item_count"`
	CreatedAt     time.Time `json:"created_at"`
}

// 注文確定。保存できたら通知チャネルへ流す
func (u *OrderUsecase) SubmitOrder(ctx context.Context, userID int64, in SubmitOrderInput) (OrderOutput, error) {
	if userID <= 0 {
		return OrderOutput{}, UnauthorizedError()
	}
	trimShippingAddress(&in.Address)
	in.PaymentMethod = strings.TrimSpace(in.PaymentMethod)
	if err := Validate(in); err != nil {
		return OrderOutput{}, err
	}

	//住所帳の住所を指定したときは所有チェック
	if in.Address.AddressID != nil {
		owned, err := u.addresses.IsOwnedByUser(ctx, *in.Address.AddressID, userID)
		if errors.Is(err, repo.ErrNotFound) {
			return OrderOutput{}, ValidationError("address not found")
		}
		if err != nil {
			return OrderOutput{}, u.persistence(err)
		}
		if !owned {
			return OrderOutput{}, ForbiddenError()
		}
	}

	//価格はクライアントの値を使わず商品から取る
	items := make([]model.OrderItem, 0, len(in.CartItems))
	var total int64
	for _, line := range in.CartItems {
		p, err := u.products.FindByID(ctx, line.ProductID)
		if errors.Is(err, repo.ErrNotFound) {
			return OrderOutput{}, ValidationError(fmt.Sprintf("product %d not found", line.ProductID))
		}
		if err != nil {
			return OrderOutput{}, u.persistence(err)
		}

		it := model.OrderItem{
			ProductID: p.ID,
			Title:     p.Title,
			Image:     p.Image,
			UnitPrice: p.EffectivePrice(),
			Quantity:  line.Quantity,
		}
		items = append(items, it)
		total += it.Subtotal()
	}

	order := &model.Order{
		UserID: userID,
		CartID: in.CartID,
		Items:  items,
		ShippingAddress: model.AddressSnapshot{
			AddressID: in.Address.AddressID,
			Address:   in.Address.Address,
			City:      in.Address.City,
			Pincode:   in.Address.Pincode,
			Phone:     in.Address.Phone,
			Notes:     in.Address.Notes,
		},
		TotalAmount:   total,
		PaymentMethod: in.PaymentMethod,
		PaymentStatus: model.PaymentStatusPending,
		OrderStatus:   model.OrderStatusPending,
	}

	if err := u.orders.Create(ctx, order); err != nil {
		return OrderOutput{}, u.persistence(err)
	}
	metrics.OrdersPlaced.Inc()

	//保存後にだけ流す（待たない）
	u.publisher.Publish(notify.OrderPlaced{
		OrderID:       order.ID,
		UserID:        order.UserID,
		TotalAmount:   order.TotalAmount,
		OrderStatus:   string(order.OrderStatus),
		PaymentMethod: order.PaymentMethod,
		ItemCount:     len(order.Items),
		CreatedAt:     order.CreatedAt,
	})

	return toOrderOutput(*order), nil
}

// 自分の注文一覧（新しい順）
func (u *OrderUsecase) ListOrdersForUser(ctx context.Context, userID int64) ([]OrderSummary, error) {
	if userID <= 0 {
		return []OrderSummary{}, UnauthorizedError()
	}

	orders, err := u.orders.ListByUserID(ctx, userID)
	if err != nil {
		return []OrderSummary{}, u.persistence(err)
	}

	outs := make([]OrderSummary, 0, len(orders))
	for _, o := range orders {
		outs = append(outs, toOrderSummary(o))
	}
	return outs, nil
}

func (u *OrderUsecase) GetOrderDetails(ctx context.Context, userID int64, orderID int64) (OrderOutput, error) {
	if userID <= 0 {
		return OrderOutput{}, UnauthorizedError()
	}
	if orderID <= 0 {
		return OrderOutput{}, ValidationError("invalid id")
	}

	o, err := u.orders.FindByID(ctx, orderID)
	if errors.Is(err, repo.ErrNotFound) {
		return OrderOutput{}, NotFoundError()
	}
	if err != nil {
		return OrderOutput{}, u.persistence(err)
	}
	//他人の注文は「存在しない扱い」にする
	if o.UserID != userID {
		return OrderOutput{}, NotFoundError()
	}
	return toOrderOutput(o), nil
}

// 決済完了の反映。在庫を減らしてカートを空にする
func (u *OrderUsecase) CaptureOrder(ctx context.Context, userID int64, orderID int64, in CaptureOrderInput) (OrderOutput, error) {
	if userID <= 0 {
		return OrderOutput{}, UnauthorizedError()
	}
	if orderID <= 0 {
		return OrderOutput{}, ValidationError("invalid id")
	}
	in.PaymentID = strings.TrimSpace(in.PaymentID)
	in.PayerID = strings.TrimSpace(in.PayerID)
	if err := Validate(in); err != nil {
		return OrderOutput{}, err
	}

	var out OrderOutput

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		//同じ注文の同時captureはここで待たせる
		o, err := r.Orders().FindByIDForUpdate(ctx, orderID)
		if errors.Is(err, repo.ErrNotFound) {
			return NotFoundError()
		}
		if err != nil {
			return PersistenceError(err)
		}
		if o.UserID != userID {
			return NotFoundError()
		}

		//支払い済みならそのまま返す
		if o.PaymentStatus == model.PaymentStatusPaid {
			out = toOrderOutput(o)
			return nil
		}

		for _, it := range o.Items {
			ok, err := r.Inventory().DecreaseStockIfEnough(ctx, it.ProductID, it.Quantity)
			if err != nil {
				return PersistenceError(err)
			}
			if !ok {
				return ValidationError(fmt.Sprintf("not enough stock for %s", it.Title))
			}
		}

		err = r.Orders().MarkPaid(ctx, orderID, in.PaymentID, in.PayerID)
		if errors.Is(err, repo.ErrNotFound) {
			return ConflictError("order already paid")
		}
		if err != nil {
			return PersistenceError(err)
		}

		if o.CartID != nil {
			if err := r.Carts().Clear(ctx, *o.CartID); err != nil {
				return PersistenceError(err)
			}
		}

		updated, err := r.Orders().FindByID(ctx, orderID)
		if err != nil {
			return PersistenceError(err)
		}
		out = toOrderOutput(updated)
		return nil
	})
	if err != nil {
		he := toHTTPError(err)
		if he.Err != nil {
			u.log.WithError(he.Err).WithField("order_id", orderID).Error("capture failed")
		}
		return OrderOutput{}, he
	}
	return out, nil
}

// DBエラーはログに出してから500
func (u *OrderUsecase) persistence(err error) error {
	u.log.WithError(err).Error("order store failure")
	return PersistenceError(err)
}

func trimShippingAddress(a *ShippingAddressInput) {
	a.Address = strings.TrimSpace(a.Address)
	a.City = strings.TrimSpace(a.City)
	a.Pincode = strings.TrimSpace(a.Pincode)
	a.Phone = strings.TrimSpace(a.Phone)
	a.Notes = strings.TrimSpace(a.Notes)
}

func toOrderOutput(o model.Order) OrderOutput {
	outItems := make([]OrderItemOutput, 0, len(o.Items))
	for _, it := range o.Items {
		outItems = append(outItems, OrderItemOutput{
			ProductID: it.ProductID,
			Title:     it.Title,
			Image:     it.Image,
			UnitPrice: it.UnitPrice,
			Quantity:  it.Quantity,
			Subtotal:  it.Subtotal(),
		})
	}

	return OrderOutput{
		ID:            o.ID,
		UserID:        o.UserID,
		CartID:        o.CartID,
		Items:         outItems,
		Address:       o.ShippingAddress,
		TotalAmount:   o.TotalAmount,
		PaymentMethod: o.PaymentMethod,
		PaymentStatus: string(o.PaymentStatus),
		OrderStatus:   string(o.OrderStatus),
		PaymentID:     o.PaymentID,
		PayerID:       o.PayerID,
		CreatedAt:     o.CreatedAt,
		UpdatedAt:     o.UpdatedAt,
	}
}

func toOrderSummary(o model.Order) OrderSummary {
	return OrderSummary{
		ID:            o.ID,
		UserID:        o.UserID,
		TotalAmount:   o.TotalAmount,
		PaymentStatus: string(o.PaymentStatus),
		OrderStatus:   string(o.OrderStatus),
		ItemCount:     len(o.Items),
		CreatedAt:     o.CreatedAt,
	}
}
