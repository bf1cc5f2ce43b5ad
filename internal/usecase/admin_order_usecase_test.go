package usecase_test

import (
	"context"
	"errors"
	"testing"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"
	"storefront/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newAdminOrderUsecase() (*usecase.AdminOrderUsecase, *OrderRepoMock, *OrderRepoMock, *AuditRepoMock, *TxManagerMock) {
	orders := new(OrderRepoMock)
	txOrders := new(OrderRepoMock)
	audit := new(AuditRepoMock)
	tx := &TxManagerMock{Repos: &TxReposMock{orders: txOrders, audit: audit}}
	return usecase.NewAdminOrderUsecase(tx, orders, discardLog()), orders, txOrders, audit, tx
}

func TestAdminOrderUsecase_List_Defaults(t *testing.T) {
	ctx := context.Background()
	uc, orders, _, _, _ := newAdminOrderUsecase()

	orders.On("ListAdmin", ctx, repo.AdminOrderListFilter{Page: 1, Limit: 20}).
		Return([]model.Order{
			{ID: 3, Items: []model.OrderItem{{ProductID: 1, Quantity: 1}, {ProductID: 2, Quantity: 3}}},
			{ID: 2, Items: []model.OrderItem{{ProductID: 1, Quantity: 1}}},
		}, int64(2), nil).Once()

	out, err := uc.List(ctx, usecase.AdminOrderListInput{})

	require.NoError(t, err)
	assert.Equal(t, int64(2), out.Total)
	assert.Equal(t, 1, out.Page)
	assert.Equal(t, 20, out.Limit)
	require.Len(t, out.Items, 2)
	assert.Equal(t, 2, out.Items[0].ItemCount)
	assert.Equal(t, 1, out.Items[1].ItemCount)
	orders.AssertExpectations(t)
}

func TestAdminOrderUsecase_List_InvalidStatus_400(t *testing.T) {
	ctx := context.Background()
	uc, orders, _, _, _ := newAdminOrderUsecase()

	_, err := uc.List(ctx, usecase.AdminOrderListInput{Status: "lost"})

	assert.ErrorIs(t, err, usecase.ErrValidation)
	orders.AssertNotCalled(t, "ListAdmin", mock.Anything, mock.Anything)
}

func TestAdminOrderUsecase_UpdateStatus_WritesAudit(t *testing.T) {
	ctx := context.Background()
	uc, _, txOrders, audit, tx := newAdminOrderUsecase()

	tx.On("WithinTx", ctx).Return(nil).Once()
	txOrders.On("FindByIDForUpdate", ctx, int64(10)).Return(model.Order{ID: 10, OrderStatus: model.OrderStatusConfirmed}, nil).Once()
	txOrders.On("UpdateStatus", ctx, int64(10), model.OrderStatusInShipping).Return(nil).Once()
	audit.On("Create", ctx, mock.MatchedBy(func(l model.AuditLog) bool {
		return l.ActorUserID == 1 &&
			l.Action == model.AuditActionUpdateOrderStatus &&
			l.ResourceID == 10 &&
			l.BeforeJSON == `{"order_status":"confirmed"}` &&
			l.AfterJSON == `{"order_status":"inShipping"}`
	})).Return(nil).Once()

	out, err := uc.UpdateStatus(ctx, 1, 10, usecase.AdminUpdateOrderStatusInput{Status: "inShipping"})

	require.NoError(t, err)
	assert.Equal(t, "inShipping", out.OrderStatus)
	tx.AssertExpectations(t)
	txOrders.AssertExpectations(t)
	audit.AssertExpectations(t)
}

func TestAdminOrderUsecase_UpdateStatus_SameStatus_NoOp(t *testing.T) {
	ctx := context.Background()
	uc, _, txOrders, audit, tx := newAdminOrderUsecase()

	tx.On("WithinTx", ctx).Return(nil).Once()
	txOrders.On("FindByIDForUpdate", ctx, int64(10)).Return(model.Order{ID: 10, OrderStatus: model.OrderStatusInProcess}, nil).Once()

	out, err := uc.UpdateStatus(ctx, 1, 10, usecase.AdminUpdateOrderStatusInput{Status: "inProcess"})

	require.NoError(t, err)
	assert.Equal(t, "inProcess", out.OrderStatus)
	txOrders.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
	audit.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestAdminOrderUsecase_UpdateStatus_TerminalGuard_400(t *testing.T) {
	ctx := context.Background()
	uc, _, txOrders, audit, tx := newAdminOrderUsecase()

	tx.On("WithinTx", ctx).Return(nil).Once()
	txOrders.On("FindByIDForUpdate", ctx, int64(10)).Return(model.Order{ID: 10, OrderStatus: model.OrderStatusDelivered}, nil).Once()

	_, err := uc.UpdateStatus(ctx, 1, 10, usecase.AdminUpdateOrderStatusInput{Status: "pending"})

	assert.ErrorIs(t, err, usecase.ErrValidation)
	txOrders.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
	audit.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestAdminOrderUsecase_UpdateStatus_UnknownStatus_400(t *testing.T) {
	ctx := context.Background()
	uc, _, _, _, tx := newAdminOrderUsecase()

	_, err := uc.UpdateStatus(ctx, 1, 10, usecase.AdminUpdateOrderStatusInput{Status: "shipped"})

	assert.ErrorIs(t, err, usecase.ErrValidation)
	tx.AssertNotCalled(t, "WithinTx", mock.Anything)
}

func TestAdminOrderUsecase_UpdateStatus_Missing_404(t *testing.T) {
	ctx := context.Background()
	uc, _, txOrders, _, tx := newAdminOrderUsecase()

	tx.On("WithinTx", ctx).Return(nil).Once()
	txOrders.On("FindByIDForUpdate", ctx, int64(10)).Return(model.Order{}, repo.ErrNotFound).Once()

	_, err := uc.UpdateStatus(ctx, 1, 10, usecase.AdminUpdateOrderStatusInput{Status: "confirmed"})

	assert.ErrorIs(t, err, usecase.ErrNotFound)
}

func TestAdminOrderUsecase_UpdateStatus_AuditFailure_500(t *testing.T) {
	ctx := context.Background()
	uc, _, txOrders, audit, tx := newAdminOrderUsecase()

	tx.On("WithinTx", ctx).Return(nil).Once()
	txOrders.On("FindByIDForUpdate", ctx, int64(10)).Return(model.Order{ID: 10, OrderStatus: model.OrderStatusPending}, nil).Once()
	txOrders.On("UpdateStatus", ctx, int64(10), model.OrderStatusConfirmed).Return(nil).Once()
	audit.On("Create", ctx, mock.Anything).Return(errors.New("insert failed")).Once()

	_, err := uc.UpdateStatus(ctx, 1, 10, usecase.AdminUpdateOrderStatusInput{Status: "confirmed"})

	// Txの中のエラーなのでステータス更新ごとロールバックされる
	assert.ErrorIs(t, err, usecase.ErrPersistence)
	txOrders.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
}
