package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"storefront/internal/domain/model"
	"storefront/internal/repository"
)

type AddressDTO struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	Label     string    `json:"label"`
	Address   string    `json:"address"`
	City      string    `json:"city"`
	Pincode   string    `json:"pincode"`
	Phone     string    `json:"phone"`
	Notes     string    `json:"notes"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// 作成・更新どちらも同じ入力
type AddressRequest struct {
	Label   string `json:"label"`
	Address string `json:"address" validate:"notblank"`
	City    string `json:"city" validate:"notblank"`
	Pincode string `json:"pincode" validate:"notblank"`
	Phone   string `json:"phone" validate:"notblank"`
	Notes   string `json:"notes"`
}

func (r *AddressRequest) normalize() {
	r.Label = strings.TrimSpace(r.Label)
	r.Address = strings.TrimSpace(r.Address)
	r.City = strings.TrimSpace(r.City)
	r.Pincode = strings.TrimSpace(r.Pincode)
	r.Phone = strings.TrimSpace(r.Phone)
	r.Notes = strings.TrimSpace(r.Notes)
}

type AddressUsecase struct {
	addresses repository.AddressRepository
}

func NewAddressUsecase(addresses repository.AddressRepository) *AddressUsecase {
	return &AddressUsecase{addresses: addresses}
}

func (u *AddressUsecase) List(ctx context.Context, userID int64) ([]AddressDTO, error) {
	if userID <= 0 {
		return nil, UnauthorizedError()
	}

	list, err := u.addresses.ListByUserID(ctx, userID)
	if err != nil {
		return nil, PersistenceError(err)
	}

	out := make([]AddressDTO, 0, len(list))
	for i := range list {
		out = append(out, toAddressDTO(&list[i]))
	}
	return out, nil
}

func (u *AddressUsecase) Create(ctx context.Context, userID int64, req AddressRequest) (AddressDTO, error) {
	if userID <= 0 {
		return AddressDTO{}, UnauthorizedError()
	}
	req.normalize()
	if err := Validate(req); err != nil {
		return AddressDTO{}, err
	}

	created, err := u.addresses.Create(ctx, model.Address{
		UserID:  userID,
		Label:   req.Label,
		Address: req.Address,
		City:    req.City,
		Pincode: req.Pincode,
		Phone:   req.Phone,
		Notes:   req.Notes,
	})
	if err != nil {
		return AddressDTO{}, PersistenceError(err)
	}
	return toAddressDTO(&created), nil
}

func (u *AddressUsecase) Update(ctx context.Context, userID, addressID int64, req AddressRequest) (AddressDTO, error) {
	if userID <= 0 {
		return AddressDTO{}, UnauthorizedError()
	}
	if addressID <= 0 {
		return AddressDTO{}, ValidationError("invalid address id")
	}
	req.normalize()
	if err := Validate(req); err != nil {
		return AddressDTO{}, err
	}

	//所有チェック（本人のみ）
	if err := u.ensureOwned(ctx, addressID, userID); err != nil {
		return AddressDTO{}, err
	}

	a := model.Address{
		ID:      addressID,
		UserID:  userID,
		Label:   req.Label,
		Address: req.Address,
		City:    req.City,
		Pincode: req.Pincode,
		Phone:   req.Phone,
		Notes:   req.Notes,
	}
	if err := u.addresses.Update(ctx, a); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return AddressDTO{}, NotFoundError()
		}
		return AddressDTO{}, PersistenceError(err)
	}

	updated, err := u.addresses.FindByID(ctx, addressID)
	if err != nil {
		return AddressDTO{}, PersistenceError(err)
	}
	return toAddressDTO(&updated), nil
}

func (u *AddressUsecase) Delete(ctx context.Context, userID, addressID int64) error {
	if userID <= 0 {
		return UnauthorizedError()
	}
	if addressID <= 0 {
		return ValidationError("invalid address id")
	}

	//所有チェック（本人のみ）
	if err := u.ensureOwned(ctx, addressID, userID); err != nil {
		return err
	}

	if err := u.addresses.Delete(ctx, addressID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return NotFoundError()
		}
		return PersistenceError(err)
	}
	return nil
}

func (u *AddressUsecase) ensureOwned(ctx context.Context, addressID, userID int64) error {
	owned, err := u.addresses.IsOwnedByUser(ctx, addressID, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return NotFoundError()
	}
	if err != nil {
		return PersistenceError(err)
	}
	if !owned {
		return ForbiddenError()
	}
	return nil
}

func toAddressDTO(a *model.Address) AddressDTO {
	return AddressDTO{
		ID:        a.ID,
		UserID:    a.UserID,
		Label:     a.Label,
		Address:   a.Address,
		City:      a.City,
		Pincode:   a.Pincode,
		Phone:     a.Phone,
		Notes:     a.Notes,
		CreatedAt: a.CreatedAt,
		UpdatedAt: a.UpdatedAt,
	}
}
