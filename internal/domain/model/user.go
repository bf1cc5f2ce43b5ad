package model

import "time"

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

type User struct {
	ID           int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	UserName     string `gorm:"type:varchar(100);not null" json:"user_name"`
	Email        string `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	PasswordHash string `gorm:"column:password_hash;not null" json:"-"`
	Role         Role   `gorm:"type:varchar(20);not null;default:'user'" json:"role"`
	// パスワード再設定で+1（古いアクセストークンを無効化）
	TokenVersion int       `gorm:"not null;default:0" json:"token_version"`
	CreatedAt    time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
