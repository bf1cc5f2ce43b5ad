package repository

import (
	"context"

	"storefront/internal/domain/model"
)

type FeatureImageRepository interface {
	Create(ctx context.Context, img model.FeatureImage) (model.FeatureImage, error)
	List(ctx context.Context) ([]model.FeatureImage, error)
	FindByID(ctx context.Context, id int64) (model.FeatureImage, error)
	// 見つからなければErrNotFound
	Delete(ctx context.Context, id int64) error
}
