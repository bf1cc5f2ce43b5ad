package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"
)

type ProductUsecase struct {
	tx          repo.TransactionManager
	productRepo repo.ProductRepository
}

// DI
func NewProductUsecase(
	tx repo.TransactionManager,
	productRepo repo.ProductRepository,
) *ProductUsecase {
	return &ProductUsecase{
		tx:          tx,
		productRepo: productRepo,
	}
}

// GET /shop/productsの入力DTO
type ListProductsInput struct {
	Categories []string
	Brands     []string
	SortBy     string
}

type ProductRequest struct {
	Image       string `json:"image"`
	Title       string `json:"title" validate:"notblank"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Brand       string `json:"brand"`
	Price       int64  `json:"price" validate:"gte=0"`
	SalePrice   int64  `json:"sale_price" validate:"gte=0"`
	TotalStock  int64  `json:"total_stock" validate:"gte=0"`
}

func (r *ProductRequest) normalize() {
	r.Image = strings.TrimSpace(r.Image)
	r.Title = strings.TrimSpace(r.Title)
	r.Category = strings.TrimSpace(r.Category)
	r.Brand = strings.TrimSpace(r.Brand)
}

func (u *ProductUsecase) ListProducts(ctx context.Context, in ListProductsInput) ([]model.Product, error) {
	switch in.SortBy {
	case "":
		in.SortBy = repo.SortPriceLowToHigh
	case repo.SortPriceLowToHigh, repo.SortPriceHighToLow, repo.SortTitleAtoZ, repo.SortTitleZtoA:
	default:
		return []model.Product{}, ValidationError("invalid sortBy")
	}

	items, err := u.productRepo.List(ctx, repo.ProductFilter{
		Categories: compact(in.Categories),
		Brands:     compact(in.Brands),
		SortBy:     in.SortBy,
	})
	if err != nil {
		return []model.Product{}, PersistenceError(err)
	}
	return items, nil
}

func (u *ProductUsecase) GetProductDetail(ctx context.Context, productID int64) (model.Product, error) {
	if productID <= 0 {
		return model.Product{}, ValidationError("invalid product id")
	}

	p, err := u.productRepo.FindByID(ctx, productID)
	if errors.Is(err, repo.ErrNotFound) {
		return model.Product{}, NotFoundError()
	}
	if err != nil {
		return model.Product{}, PersistenceError(err)
	}
	return p, nil
}

func (u *ProductUsecase) Search(ctx context.Context, keyword string) ([]model.Product, error) {
	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		return []model.Product{}, ValidationError("keyword is required")
	}
	if len(keyword) > 100 {
		return []model.Product{}, ValidationError("keyword too long")
	}

	items, err := u.productRepo.Search(ctx, keyword)
	if err != nil {
		return []model.Product{}, PersistenceError(err)
	}
	return items, nil
}

func (u *ProductUsecase) AdminListProducts(ctx context.Context) ([]model.Product, error) {
	return u.ListProducts(ctx, ListProductsInput{SortBy: repo.SortTitleAtoZ})
}

func (u *ProductUsecase) AdminCreateProduct(ctx context.Context, adminUserID int64, in ProductRequest) (model.Product, error) {
	if adminUserID <= 0 {
		return model.Product{}, UnauthorizedError()
	}
	in.normalize()
	if err := Validate(in); err != nil {
		return model.Product{}, err
	}

	var out model.Product
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		p, err := r.Products().Create(ctx, model.Product{
			Image:       in.Image,
			Title:       in.Title,
			Description: in.Description,
			Category:    in.Category,
			Brand:       in.Brand,
			Price:       in.Price,
			SalePrice:   in.SalePrice,
			TotalStock:  in.TotalStock,
		})
		if err != nil {
			return PersistenceError(err)
		}
		if err := auditProduct(ctx, r, adminUserID, model.AuditActionCreateProduct, p.ID, nil, p); err != nil {
			return err
		}
		out = p
		return nil
	})
	if err != nil {
		return model.Product{}, toHTTPError(err)
	}
	return out, nil
}

func (u *ProductUsecase) AdminUpdateProduct(ctx context.Context, adminUserID int64, productID int64, in ProductRequest) (model.Product, error) {
	if adminUserID <= 0 {
		return model.Product{}, UnauthorizedError()
	}
	if productID <= 0 {
		return model.Product{}, ValidationError("invalid product id")
	}
	in.normalize()
	if err := Validate(in); err != nil {
		return model.Product{}, err
	}

	var out model.Product
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		before, err := r.Products().FindByID(ctx, productID)
		if errors.Is(err, repo.ErrNotFound) {
			return NotFoundError()
		}
		if err != nil {
			return PersistenceError(err)
		}

		after := before
		after.Image = in.Image
		after.Title = in.Title
		after.Description = in.Description
		after.Category = in.Category
		after.Brand = in.Brand
		after.Price = in.Price
		after.SalePrice = in.SalePrice
		after.TotalStock = in.TotalStock

		err = r.Products().Update(ctx, after)
		if errors.Is(err, repo.ErrNotFound) {
			return NotFoundError()
		}
		if err != nil {
			return PersistenceError(err)
		}

		if err := auditProduct(ctx, r, adminUserID, model.AuditActionUpdateProduct, productID, before, after); err != nil {
			return err
		}
		out = after
		return nil
	})
	if err != nil {
		return model.Product{}, toHTTPError(err)
	}
	return out, nil
}

func (u *ProductUsecase) AdminDeleteProduct(ctx context.Context, adminUserID int64, productID int64) error {
	if adminUserID <= 0 {
		return UnauthorizedError()
	}
	if productID <= 0 {
		return ValidationError("invalid product id")
	}

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		err := r.Products().SoftDelete(ctx, productID)
		if errors.Is(err, repo.ErrNotFound) {
			return NotFoundError()
		}
		if err != nil {
			return PersistenceError(err)
		}
		return auditProduct(ctx, r, adminUserID, model.AuditActionDeleteProduct, productID, nil, nil)
	})
	if err != nil {
		return toHTTPError(err)
	}
	return nil
}

//「誰が」「何を」「どの対象に」「どう変えたか」を残す
func auditProduct(ctx context.Context, r repo.TxRepos, actor int64, action model.AuditAction, productID int64, before, after interface{}) error {
	beforeJSON, _ := json.Marshal(before)
	afterJSON, _ := json.Marshal(after)

	if err := r.AuditLogs().Create(ctx, model.AuditLog{
		ActorUserID:  actor,
		Action:       action,
		ResourceType: model.AuditResourceProduct,
		ResourceID:   productID,
		BeforeJSON:   string(beforeJSON),
		AfterJSON:    string(afterJSON),
		CreatedAt:    time.Now(),
	}); err != nil {
		return PersistenceError(err)
	}
	return nil
}

// 空白要素を除く
func compact(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
