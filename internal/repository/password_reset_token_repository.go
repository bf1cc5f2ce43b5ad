package repository

import (
	"context"
	"time"

	"storefront/internal/domain/model"
)

type PasswordResetTokenRepository interface {
	Create(ctx context.Context, token *model.PasswordResetToken) error
	// 見つからなければErrNotFound
	FindByTokenHash(ctx context.Context, tokenHash string) (*model.PasswordResetToken, error)
	MarkUsed(ctx context.Context, tokenID string, usedAt time.Time) error
	// 再発行時に古いトークンを消す
	DeleteAllByUserID(ctx context.Context, userID int64) error
}
