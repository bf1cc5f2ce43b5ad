package model

// 注文明細。商品名と単価は注文時のスナップショット
type OrderItem struct {
	ID        int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderID   int64  `gorm:"not null;index" json:"order_id"`
	ProductID int64  `gorm:"not null;index" json:"product_id"`
	Title     string `gorm:"type:varchar(255);not null" json:"title"`
	Image     string `gorm:"type:text" json:"image"`
	UnitPrice int64  `gorm:"not null" json:"unit_price"`
	Quantity  int64  `gorm:"not null" json:"quantity"`
}

func (it OrderItem) Subtotal() int64 {
	return it.UnitPrice * it.Quantity
}
