package model

import (
	"time"

	"gorm.io/gorm"
)

type Product struct {
	ID          int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	Image       string `gorm:"type:text" json:"image"`
	Title       string `gorm:"type:varchar(255);not null" json:"title"`
	Description string `gorm:"type:text" json:"description"`
	Category    string `gorm:"type:varchar(100);index" json:"category"`
	Brand       string `gorm:"type:varchar(100);index" json:"brand"`
	Price       int64  `gorm:"not null" json:"price"`
	// 0ならセールなし
	SalePrice     int64          `gorm:"not null;default:0" json:"sale_price"`
	TotalStock    int64          `gorm:"not null" json:"total_stock"`
	AverageReview float64        `gorm:"not null;default:0" json:"average_review"`
	CreatedAt     time.Time      `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time      `gorm:"not null;autoUpdateTime" json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`
}

// 注文時に使う単価（セール価格優先）
func (p Product) EffectivePrice() int64 {
	if p.SalePrice > 0 {
		return p.SalePrice
	}
	return p.Price
}
