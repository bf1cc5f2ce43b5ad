package usecase

import (
	"context"
	"errors"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"
)

// CartUsecase は /shop/cart の業務ロジックです。
type CartUsecase struct {
	cartRepo     repo.CartRepository
	cartItemRepo repo.CartItemRepository
	productRepo  repo.ProductRepository
}

func NewCartUsecase(
	cartRepo repo.CartRepository,
	cartItemRepo repo.CartItemRepository,
	productRepo repo.ProductRepository,
) *CartUsecase {
	return &CartUsecase{
		cartRepo:     cartRepo,
		cartItemRepo: cartItemRepo,
		productRepo:  productRepo,
	}
}

// 価格は現在の商品価格（注文確定時にスナップショット）
type CartItemResponse struct {
	ProductID int64  `json:"product_id"`
	Title     string `json:"title"`
	Image     string `json:"image"`
	Price     int64  `json:"price"`
	SalePrice int64  `json:"sale_price"`
	Quantity  int64  `json:"quantity"`
}

type CartResponse struct {
	CartID int64              `json:"cart_id"`
	Items  []CartItemResponse `json:"items"`
	Total  int64              `json:"total"`
}

type CartItemInput struct {
	ProductID int64 `json:"product_id" validate:"gt=0"`
	Quantity  int64 `json:"quantity" validate:"gt=0"`
}

// GetCart はカート取得（無ければ作って空を返す）。
func (u *CartUsecase) GetCart(ctx context.Context, userID int64) (CartResponse, error) {
	if userID <= 0 {
		return CartResponse{}, UnauthorizedError()
	}

	cart, err := u.cartRepo.GetOrCreateByUserID(ctx, userID)
	if err != nil {
		return CartResponse{}, PersistenceError(err)
	}
	return u.buildResponse(ctx, cart)
}

// 同じ商品なら数量を足す
func (u *CartUsecase) AddItem(ctx context.Context, userID int64, in CartItemInput) (CartResponse, error) {
	if userID <= 0 {
		return CartResponse{}, UnauthorizedError()
	}
	if err := Validate(in); err != nil {
		return CartResponse{}, err
	}

	if err := u.ensureProduct(ctx, in.ProductID); err != nil {
		return CartResponse{}, err
	}

	cart, err := u.cartRepo.GetOrCreateByUserID(ctx, userID)
	if err != nil {
		return CartResponse{}, PersistenceError(err)
	}
	if err := u.cartItemRepo.Upsert(ctx, cart.ID, in.ProductID, in.Quantity); err != nil {
		return CartResponse{}, PersistenceError(err)
	}
	return u.buildResponse(ctx, cart)
}

func (u *CartUsecase) UpdateQuantity(ctx context.Context, userID int64, in CartItemInput) (CartResponse, error) {
	if userID <= 0 {
		return CartResponse{}, UnauthorizedError()
	}
	if err := Validate(in); err != nil {
		return CartResponse{}, err
	}

	cart, err := u.cartRepo.GetOrCreateByUserID(ctx, userID)
	if err != nil {
		return CartResponse{}, PersistenceError(err)
	}
	err = u.cartItemRepo.UpdateQuantity(ctx, cart.ID, in.ProductID, in.Quantity)
	if errors.Is(err, repo.ErrNotFound) {
		return CartResponse{}, NotFoundError()
	}
	if err != nil {
		return CartResponse{}, PersistenceError(err)
	}
	return u.buildResponse(ctx, cart)
}

func (u *CartUsecase) RemoveItem(ctx context.Context, userID int64, productID int64) (CartResponse, error) {
	if userID <= 0 {
		return CartResponse{}, UnauthorizedError()
	}
	if productID <= 0 {
		return CartResponse{}, ValidationError("invalid product id")
	}

	cart, err := u.cartRepo.GetOrCreateByUserID(ctx, userID)
	if err != nil {
		return CartResponse{}, PersistenceError(err)
	}
	err = u.cartItemRepo.Delete(ctx, cart.ID, productID)
	if errors.Is(err, repo.ErrNotFound) {
		return CartResponse{}, NotFoundError()
	}
	if err != nil {
		return CartResponse{}, PersistenceError(err)
	}
	return u.buildResponse(ctx, cart)
}

func (u *CartUsecase) ensureProduct(ctx context.Context, productID int64) error {
	_, err := u.productRepo.FindByID(ctx, productID)
	if errors.Is(err, repo.ErrNotFound) {
		return NotFoundError()
	}
	if err != nil {
		return PersistenceError(err)
	}
	return nil
}

// 明細に商品情報を付ける。削除済み商品は出さない
func (u *CartUsecase) buildResponse(ctx context.Context, cart model.Cart) (CartResponse, error) {
	items, err := u.cartItemRepo.ListByCartID(ctx, cart.ID)
	if err != nil {
		return CartResponse{}, PersistenceError(err)
	}

	res := CartResponse{CartID: cart.ID, Items: make([]CartItemResponse, 0, len(items))}
	for _, it := range items {
		p, err := u.productRepo.FindByID(ctx, it.ProductID)
		if errors.Is(err, repo.ErrNotFound) {
			continue
		}
		if err != nil {
			return CartResponse{}, PersistenceError(err)
		}
		res.Items = append(res.Items, CartItemResponse{
			ProductID: p.ID,
			Title:     p.Title,
			Image:     p.Image,
			Price:     p.Price,
			SalePrice: p.SalePrice,
			Quantity:  it.Quantity,
		})
		res.Total += p.EffectivePrice() * it.Quantity
	}
	return res, nil
}
