package repository

import (
	"context"

	"storefront/internal/domain/model"
)

// 一覧の並び順
const (
	SortPriceLowToHigh = "price-lowtohigh"
	SortPriceHighToLow = "price-hightolow"
	SortTitleAtoZ      = "title-atoz"
	SortTitleZtoA      = "title-ztoa"
)

// ショップ一覧の絞り込み
type ProductFilter struct {
	Categories []string
	Brands     []string
	SortBy     string
}

// 商品の永続化（保存・取得）だけを約束。
type ProductRepository interface {
	List(ctx context.Context, f ProductFilter) ([]model.Product, error)
	Search(ctx context.Context, keyword string) ([]model.Product, error)
	FindByID(ctx context.Context, id int64) (model.Product, error)

	Create(ctx context.Context, p model.Product) (model.Product, error)
	Update(ctx context.Context, p model.Product) error
	SoftDelete(ctx context.Context, id int64) error
}
