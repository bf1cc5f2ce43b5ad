package usecase_test

import (
	"context"
	"testing"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"
	"storefront/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func addressReq() usecase.AddressRequest {
	return usecase.AddressRequest{
		Label:   "home",
		Address: "1-2-3 Shibuya",
		City:    "Tokyo",
		Pincode: "150-0002",
		Phone:   "090-0000-0000",
	}
}

func TestAddressUsecase_Create_OK(t *testing.T) {
	ctx := context.Background()
	addrs := new(AddressRepoMock)
	uc := usecase.NewAddressUsecase(addrs)

	addrs.On("Create", ctx, mock.MatchedBy(func(a model.Address) bool {
		return a.UserID == 5 && a.City == "Tokyo"
	})).Return(model.Address{ID: 1, UserID: 5, City: "Tokyo"}, nil).Once()

	out, err := uc.Create(ctx, 5, addressReq())

	require.NoError(t, err)
	assert.Equal(t, int64(1), out.ID)
	addrs.AssertExpectations(t)
}

func TestAddressUsecase_Create_BlankPhone_400(t *testing.T) {
	addrs := new(AddressRepoMock)
	uc := usecase.NewAddressUsecase(addrs)

	req := addressReq()
	req.Phone = " "
	_, err := uc.Create(context.Background(), 5, req)

	assert.ErrorIs(t, err, usecase.ErrValidation)
	addrs.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestAddressUsecase_Update_NotOwned_403(t *testing.T) {
	ctx := context.Background()
	addrs := new(AddressRepoMock)
	uc := usecase.NewAddressUsecase(addrs)

	addrs.On("IsOwnedByUser", ctx, int64(3), int64(5)).Return(false, nil).Once()

	_, err := uc.Update(ctx, 5, 3, addressReq())

	assert.ErrorIs(t, err, usecase.ErrForbidden)
	addrs.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestAddressUsecase_Delete_Missing_404(t *testing.T) {
	ctx := context.Background()
	addrs := new(AddressRepoMock)
	uc := usecase.NewAddressUsecase(addrs)

	addrs.On("IsOwnedByUser", ctx, int64(3), int64(5)).Return(false, repo.ErrNotFound).Once()

	err := uc.Delete(ctx, 5, 3)

	assert.ErrorIs(t, err, usecase.ErrNotFound)
	addrs.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

func TestAddressUsecase_Delete_OK(t *testing.T) {
	ctx := context.Background()
	addrs := new(AddressRepoMock)
	uc := usecase.NewAddressUsecase(addrs)

	addrs.On("IsOwnedByUser", ctx, int64(3), int64(5)).Return(true, nil).Once()
	addrs.On("Delete", ctx, int64(3)).Return(nil).Once()

	require.NoError(t, uc.Delete(ctx, 5, 3))
	addrs.AssertExpectations(t)
}
