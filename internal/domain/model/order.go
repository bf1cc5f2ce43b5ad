package model

import "time"

type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusConfirmed  OrderStatus = "confirmed"
	OrderStatusInProcess  OrderStatus = "inProcess"
	OrderStatusInShipping OrderStatus = "inShipping"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusRejected   OrderStatus = "rejected"
)

// 有効なステータスか
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusConfirmed, OrderStatusInProcess,
		OrderStatusInShipping, OrderStatusDelivered, OrderStatusRejected:
		return true
	}
	return false
}

// これ以上変えられないステータス
func (s OrderStatus) Terminal() bool {
	return s == OrderStatusDelivered || s == OrderStatusRejected
}

type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "pending"
	PaymentStatusPaid    PaymentStatus = "paid"
)

// 注文時点の配送先（住所を後で編集しても変わらない）
type AddressSnapshot struct {
	AddressID *int64 `gorm:"column:address_id" json:"address_id,omitempty"`
	Address   string `gorm:"column:address_line;type:varchar(255);not null" json:"address"`
	City      string `gorm:"column:address_city;type:varchar(255);not null" json:"city"`
	Pincode   string `gorm:"column:address_pincode;type:varchar(20);not null" json:"pincode"`
	Phone     string `gorm:"column:address_phone;type:varchar(30);not null" json:"phone"`
	Notes     string `gorm:"column:address_notes;type:text" json:"notes"`
}

// TotalAmountは作成時の明細合計で固定（再計算しない）
type Order struct {
	ID              int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID          int64           `gorm:"not null;index" json:"user_id"`
	CartID          *int64          `gorm:"index" json:"cart_id,omitempty"`
	Items           []OrderItem     `gorm:"foreignKey:OrderID" json:"items"`
	ShippingAddress AddressSnapshot `gorm:"embedded" json:"address"`
	TotalAmount     int64           `gorm:"not null" json:"total_amount"`
	PaymentMethod   string          `gorm:"type:varchar(50);not null" json:"payment_method"`
	PaymentStatus   PaymentStatus   `gorm:"type:varchar(20);not null;index" json:"payment_status"`
	OrderStatus     OrderStatus     `gorm:"type:varchar(20);not null;index" json:"order_status"`
	PaymentID       string          `gorm:"type:varchar(255)" json:"payment_id,omitempty"`
	PayerID         string          `gorm:"type:varchar(255)" json:"payer_id,omitempty"`
	CreatedAt       time.Time       `gorm:"not null;index" json:"created_at"`
	UpdatedAt       time.Time       `gorm:"not null" json:"updated_at"`
}
