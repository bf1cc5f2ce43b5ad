package repository

import (
	"context"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"

	"gorm.io/gorm"
)

type featureImageGormRepository struct {
	db *gorm.DB
}

func NewFeatureImageGormRepository(db *gorm.DB) repo.FeatureImageRepository {
	return &featureImageGormRepository{db: db}
}

func (r *featureImageGormRepository) Create(ctx context.Context, img model.FeatureImage) (model.FeatureImage, error) {
	if err := r.db.WithContext(ctx).Create(&img).Error; err != nil {
		return model.FeatureImage{}, err
	}
	return img, nil
}

func (r *featureImageGormRepository) List(ctx context.Context) ([]model.FeatureImage, error) {
	var list []model.FeatureImage
	if err := r.db.WithContext(ctx).Order("id asc").Find(&list).Error; err != nil {
		return []model.FeatureImage{}, err
	}
	return list, nil
}

func (r *featureImageGormRepository) FindByID(ctx context.Context, id int64) (model.FeatureImage, error) {
	var img model.FeatureImage
	err := r.db.WithContext(ctx).First(&img, id).Error
	if isNotFound(err) {
		return model.FeatureImage{}, repo.ErrNotFound
	}
	if err != nil {
		return model.FeatureImage{}, err
	}
	return img, nil
}

func (r *featureImageGormRepository) Delete(ctx context.Context, id int64) error {
	res := r.db.WithContext(ctx).Delete(&model.FeatureImage{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}
