package usecase

import (
	"context"
	"errors"
	"time"

	repo "storefront/internal/repository"
)

type WishlistUsecase struct {
	wishlist    repo.WishlistRepository
	productRepo repo.ProductRepository
}

func NewWishlistUsecase(wishlist repo.WishlistRepository, productRepo repo.ProductRepository) *WishlistUsecase {
	return &WishlistUsecase{wishlist: wishlist, productRepo: productRepo}
}

type WishlistItemResponse struct {
	ProductID int64     `json:"product_id"`
	Title     string    `json:"title"`
	Image     string    `json:"image"`
	Price     int64     `json:"price"`
	SalePrice int64     `json:"sale_price"`
	AddedAt   time.Time `json:"added_at"`
}

type WishlistInput struct {
	ProductID int64 `json:"product_id" validate:"gt=0"`
}

// 既に入っていてもエラーにしない
func (u *WishlistUsecase) Add(ctx context.Context, userID int64, in WishlistInput) ([]WishlistItemResponse, error) {
	if userID <= 0 {
		return nil, UnauthorizedError()
	}
	if err := Validate(in); err != nil {
		return nil, err
	}

	_, err := u.productRepo.FindByID(ctx, in.ProductID)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, NotFoundError()
	}
	if err != nil {
		return nil, PersistenceError(err)
	}

	if err := u.wishlist.Add(ctx, userID, in.ProductID); err != nil {
		return nil, PersistenceError(err)
	}
	return u.List(ctx, userID)
}

func (u *WishlistUsecase) List(ctx context.Context, userID int64) ([]WishlistItemResponse, error) {
	if userID <= 0 {
		return nil, UnauthorizedError()
	}

	items, err := u.wishlist.ListByUserID(ctx, userID)
	if err != nil {
		return nil, PersistenceError(err)
	}

	out := make([]WishlistItemResponse, 0, len(items))
	for _, it := range items {
		p, err := u.productRepo.FindByID(ctx, it.ProductID)
		if errors.Is(err, repo.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, PersistenceError(err)
		}
		out = append(out, WishlistItemResponse{
			ProductID: p.ID,
			Title:     p.Title,
			Image:     p.Image,
			Price:     p.Price,
			SalePrice: p.SalePrice,
			AddedAt:   it.CreatedAt,
		})
	}
	return out, nil
}

func (u *WishlistUsecase) Remove(ctx context.Context, userID int64, productID int64) error {
	if userID <= 0 {
		return UnauthorizedError()
	}
	if productID <= 0 {
		return ValidationError("invalid product id")
	}

	err := u.wishlist.Remove(ctx, userID, productID)
	if errors.Is(err, repo.ErrNotFound) {
		return NotFoundError()
	}
	if err != nil {
		return PersistenceError(err)
	}
	return nil
}
