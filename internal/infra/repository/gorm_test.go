package repository

import (
	"context"
	"testing"
	"time"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	gdb, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	return gdb, mock
}

func TestFeatureImageDelete_NotFound(t *testing.T) {
	gdb, mock := newMockDB(t)
	r := NewFeatureImageGormRepository(gdb)

	mock.ExpectExec(`DELETE FROM "feature_images"`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := r.Delete(context.Background(), 42)

	assert.ErrorIs(t, err, repo.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFeatureImageDelete_OK(t *testing.T) {
	gdb, mock := newMockDB(t)
	r := NewFeatureImageGormRepository(gdb)

	mock.ExpectExec(`DELETE FROM "feature_images"`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	assert.NoError(t, r.Delete(context.Background(), 1))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProductFindByID_NotFound(t *testing.T) {
	gdb, mock := newMockDB(t)
	r := NewProductGormRepository(gdb)

	mock.ExpectQuery(`SELECT \* FROM "products"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := r.FindByID(context.Background(), 9)

	assert.ErrorIs(t, err, repo.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserCreate_DuplicateEmail(t *testing.T) {
	gdb, mock := newMockDB(t)
	r := NewUserGormRepository(gdb)

	mock.ExpectQuery(`INSERT INTO "users"`).
		WillReturnError(&pgconn.PgError{Code: "23505"})

	err := r.Create(context.Background(), &model.User{Email: "a@example.com", UserName: "a", Role: model.RoleUser})

	assert.ErrorIs(t, err, repo.ErrDuplicate)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInventoryDecrease_NotEnough(t *testing.T) {
	gdb, mock := newMockDB(t)
	r := NewInventoryGormRepository(gdb)

	mock.ExpectExec(`UPDATE "products" SET`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	ok, err := r.DecreaseStockIfEnough(context.Background(), 1, 5)

	require.NoError(t, err)
	assert.False(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOrderListByUserID_NewestFirstWithItems(t *testing.T) {
	gdb, mock := newMockDB(t)
	r := NewOrderGormRepository(gdb)

	now := time.Now()
	mock.ExpectQuery(`SELECT \* FROM "orders" WHERE user_id = .+ ORDER BY created_at desc,id desc`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "total_amount", "order_status", "created_at"}).
			AddRow(int64(8), int64(3), int64(100), "pending", now).
			AddRow(int64(7), int64(3), int64(250), "pending", now))
	mock.ExpectQuery(`SELECT \* FROM "order_items"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "order_id", "product_id", "unit_price", "quantity"}).
			AddRow(int64(1), int64(7), int64(1), int64(100), int64(2)).
			AddRow(int64(2), int64(7), int64(2), int64(50), int64(1)).
			AddRow(int64(3), int64(8), int64(1), int64(100), int64(1)))

	orders, err := r.ListByUserID(context.Background(), 3)

	require.NoError(t, err)
	require.Len(t, orders, 2)
	assert.Equal(t, int64(8), orders[0].ID)
	assert.Len(t, orders[0].Items, 1)
	assert.Len(t, orders[1].Items, 2)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOrderFindByID_NotFound(t *testing.T) {
	gdb, mock := newMockDB(t)
	r := NewOrderGormRepository(gdb)

	mock.ExpectQuery(`SELECT \* FROM "orders"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := r.FindByID(context.Background(), 99)

	assert.ErrorIs(t, err, repo.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOrderFindByIDForUpdate_LocksRowThenLoadsItems(t *testing.T) {
	gdb, mock := newMockDB(t)
	r := NewOrderGormRepository(gdb)

	mock.ExpectQuery(`SELECT \* FROM "orders" WHERE id = .+ FOR UPDATE`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "payment_status"}).
			AddRow(int64(8), int64(3), "pending"))
	mock.ExpectQuery(`SELECT \* FROM "order_items" WHERE order_id = .+ ORDER BY id asc`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "order_id", "product_id", "unit_price", "quantity"}).
			AddRow(int64(1), int64(8), int64(1), int64(100), int64(2)))

	o, err := r.FindByIDForUpdate(context.Background(), 8)

	require.NoError(t, err)
	assert.Equal(t, model.PaymentStatusPending, o.PaymentStatus)
	assert.Len(t, o.Items, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOrderFindByIDForUpdate_NotFound(t *testing.T) {
	gdb, mock := newMockDB(t)
	r := NewOrderGormRepository(gdb)

	mock.ExpectQuery(`SELECT \* FROM "orders" WHERE id = .+ FOR UPDATE`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := r.FindByIDForUpdate(context.Background(), 8)

	assert.ErrorIs(t, err, repo.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOrderMarkPaid_OnlyPendingOrders(t *testing.T) {
	gdb, mock := newMockDB(t)
	r := NewOrderGormRepository(gdb)

	// 既にpaidなら0件更新
	mock.ExpectExec(`UPDATE "orders" SET .+ WHERE \(?id = \$\d+ AND payment_status = \$\d+\)?`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := r.MarkPaid(context.Background(), 8, "PAY-1", "PAYER-1")

	assert.ErrorIs(t, err, repo.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOrderListAdmin_CountsAndPreloadsItems(t *testing.T) {
	gdb, mock := newMockDB(t)
	r := NewOrderGormRepository(gdb)

	now := time.Now()
	mock.ExpectQuery(`SELECT count\(\*\) FROM "orders" WHERE order_status = `).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(int64(2)))
	mock.ExpectQuery(`SELECT \* FROM "orders" WHERE order_status = .+ ORDER BY created_at desc,id desc LIMIT`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "total_amount", "order_status", "created_at"}).
			AddRow(int64(8), int64(3), int64(100), "pending", now).
			AddRow(int64(7), int64(4), int64(250), "pending", now))
	mock.ExpectQuery(`SELECT \* FROM "order_items"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "order_id", "product_id", "unit_price", "quantity"}).
			AddRow(int64(1), int64(7), int64(1), int64(100), int64(2)).
			AddRow(int64(2), int64(7), int64(2), int64(50), int64(1)).
			AddRow(int64(3), int64(8), int64(1), int64(100), int64(1)))

	orders, total, err := r.ListAdmin(context.Background(), repo.AdminOrderListFilter{Page: 1, Limit: 20, Status: "pending"})

	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	require.Len(t, orders, 2)
	assert.Len(t, orders[0].Items, 1)
	assert.Len(t, orders[1].Items, 2)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOrderListAdmin_DefaultLimit20(t *testing.T) {
	gdb, mock := newMockDB(t)
	r := NewOrderGormRepository(gdb)

	mock.ExpectQuery(`SELECT count\(\*\) FROM "orders"`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(int64(0)))
	mock.ExpectQuery(`SELECT \* FROM "orders" ORDER BY created_at desc,id desc LIMIT \$1`).
		WithArgs(20).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	orders, total, err := r.ListAdmin(context.Background(), repo.AdminOrderListFilter{})

	require.NoError(t, err)
	assert.Equal(t, int64(0), total)
	assert.Empty(t, orders)
	assert.NoError(t, mock.ExpectationsWereMet())
}
