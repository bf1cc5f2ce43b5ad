package model

import "time"

// トップページのバナー画像（管理者が登録）
type FeatureImage struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Image     string    `gorm:"type:text;not null" json:"image"`
	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
}
