package repository

import (
	"context"
	"strings"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"

	"gorm.io/gorm"
)

type ProductGormRepository struct {
	db *gorm.DB
}

// DI
func NewProductGormRepository(db *gorm.DB) *ProductGormRepository {
	return &ProductGormRepository{db: db}
}

// カテゴリ/ブランドで絞り込み、ソートして返す。
func (r *ProductGormRepository) List(ctx context.Context, f repo.ProductFilter) ([]model.Product, error) {
	var products []model.Product

	tx := r.db.WithContext(ctx).Model(&model.Product{})

	if len(f.Categories) > 0 {
		tx = tx.Where("category IN ?", f.Categories)
	}
	if len(f.Brands) > 0 {
		tx = tx.Where("brand IN ?", f.Brands)
	}

	//sort
	switch f.SortBy {
	case repo.SortPriceHighToLow:
		tx = tx.Order("price desc").Order("id desc")
	case repo.SortTitleAtoZ:
		tx = tx.Order("title asc").Order("id asc")
	case repo.SortTitleZtoA:
		tx = tx.Order("title desc").Order("id desc")
	default:
		// price-lowtohigh
		tx = tx.Order("price asc").Order("id asc")
	}

	if err := tx.Find(&products).Error; err != nil {
		return []model.Product{}, err
	}
	return products, nil
}

// タイトル/説明/カテゴリ/ブランドを部分一致で検索
func (r *ProductGormRepository) Search(ctx context.Context, keyword string) ([]model.Product, error) {
	var products []model.Product

	like := "%" + strings.TrimSpace(keyword) + "%"
	err := r.db.WithContext(ctx).
		Where("title ILIKE ? OR description ILIKE ? OR category ILIKE ? OR brand ILIKE ?", like, like, like, like).
		Order("id asc").
		Find(&products).Error
	if err != nil {
		return []model.Product{}, err
	}
	return products, nil
}

// IDで商品を取得
func (r *ProductGormRepository) FindByID(ctx context.Context, id int64) (model.Product, error) {
	var p model.Product
	err := r.db.WithContext(ctx).First(&p, id).Error
	if isNotFound(err) {
		return model.Product{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Product{}, err
	}
	return p, nil
}

// 商品の作成
func (r *ProductGormRepository) Create(ctx context.Context, p model.Product) (model.Product, error) {
	if err := r.db.WithContext(ctx).Create(&p).Error; err != nil {
		return model.Product{}, err
	}
	return p, nil
}

// 商品の更新
func (r *ProductGormRepository) Update(ctx context.Context, p model.Product) error {
	res := r.db.WithContext(ctx).Model(&model.Product{}).Where("id = ?", p.ID).Updates(map[string]interface{}{
		"image":       p.Image,
		"title":       p.Title,
		"description": p.Description,
		"category":    p.Category,
		"brand":       p.Brand,
		"price":       p.Price,
		"sale_price":  p.SalePrice,
		"total_stock": p.TotalStock,
	})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

// 商品削除
func (r *ProductGormRepository) SoftDelete(ctx context.Context, id int64) error {
	res := r.db.WithContext(ctx).Delete(&model.Product{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}
