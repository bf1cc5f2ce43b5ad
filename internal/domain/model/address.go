package model

import "time"

// 配送先住所（ユーザー専有）
type Address struct {
	ID     int64 `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID int64 `gorm:"not null;index" json:"user_id"`

	//自宅・職場などの呼び名
	Label string `gorm:"type:varchar(100)" json:"label"`

	//番地など
	Address string `gorm:"type:varchar(255);not null" json:"address"`

	City string `gorm:"type:varchar(255);not null" json:"city"`

	//郵便番号
	Pincode string `gorm:"type:varchar(20);not null" json:"pincode"`

	Phone string `gorm:"type:varchar(30);not null" json:"phone"`

	//配達メモ
	Notes string `gorm:"type:text" json:"notes"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}
