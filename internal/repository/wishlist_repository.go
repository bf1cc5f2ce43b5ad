package repository

import (
	"context"

	"storefront/internal/domain/model"
)

type WishlistRepository interface {
	// 既にあれば何もしない
	Add(ctx context.Context, userID int64, productID int64) error
	ListByUserID(ctx context.Context, userID int64) ([]model.WishlistItem, error)
	Remove(ctx context.Context, userID int64, productID int64) error
}
