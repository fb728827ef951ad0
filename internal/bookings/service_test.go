package booking

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	product "github.com/joymart/joymart-backend/internal/products"
	"github.com/joymart/joymart-backend/pkg/db"
	"github.com/joymart/joymart-backend/pkg/db/models"
	"github.com/joymart/joymart-backend/pkg/enums"
	pkgerrors "github.com/joymart/joymart-backend/pkg/errors"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&models.Category{}, &models.Product{}, &models.User{}, &models.Booking{}))
	return conn
}

func seedProduct(t *testing.T, conn *gorm.DB, stock int) *models.Product {
	t.Helper()
	cat := &models.Category{ID: uuid.New(), Name: "Cat " + uuid.NewString()[:8], IsActive: true}
	require.NoError(t, conn.Create(cat).Error)
	row := &models.Product{
		ID:          uuid.New(),
		SellerID:    uuid.New(),
		CategoryID:  cat.ID,
		Title:       "Widget",
		Description: "d",
		Price:       decimal.NewFromInt(25),
		Stock:       stock,
		IsActive:    stock > 0,
	}
	require.NoError(t, conn.Create(row).Error)
	return row
}

func newTestService(t *testing.T, conn *gorm.DB) Service {
	t.Helper()
	svc, err := NewService(NewRepository(conn), product.NewRepository(conn), db.FromConn(conn))
	require.NoError(t, err)
	return svc
}

func productStock(t *testing.T, conn *gorm.DB, id uuid.UUID) int {
	t.Helper()
	var row models.Product
	require.NoError(t, conn.First(&row, "id = ?", id).Error)
	return row.Stock
}

func TestCreateReservesStockAndMergesCartRows(t *testing.T) {
	conn := newTestDB(t)
	prod := seedProduct(t, conn, 10)
	svc := newTestService(t, conn)
	ctx := context.Background()
	userID := uuid.New()

	first, err := svc.Create(ctx, userID, CreateInput{ProductID: prod.ID, Quantity: 2})
	require.NoError(t, err)
	require.Equal(t, 2, first.Quantity)
	require.Equal(t, 8, productStock(t, conn, prod.ID))

	// a second add merges into the same open cart row
	second, err := svc.Create(ctx, userID, CreateInput{ProductID: prod.ID, Quantity: 3})
	require.NoError(t, err)
	require.Equal(t, first.ID, second.ID)
	require.Equal(t, 5, second.Quantity)
	require.Equal(t, 5, productStock(t, conn, prod.ID))

	var count int64
	require.NoError(t, conn.Model(&models.Booking{}).Where("user_id = ?", userID).Count(&count).Error)
	require.Equal(t, int64(1), count)
}

func TestCreateRejectsInsufficientStock(t *testing.T) {
	conn := newTestDB(t)
	prod := seedProduct(t, conn, 2)
	svc := newTestService(t, conn)

	_, err := svc.Create(context.Background(), uuid.New(), CreateInput{ProductID: prod.ID, Quantity: 5})
	require.Error(t, err)
	require.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())
	// the transaction rolled back, nothing was reserved
	require.Equal(t, 2, productStock(t, conn, prod.ID))

	var count int64
	require.NoError(t, conn.Model(&models.Booking{}).Count(&count).Error)
	require.Zero(t, count)
}

func TestCreateRejectsInactiveProduct(t *testing.T) {
	conn := newTestDB(t)
	prod := seedProduct(t, conn, 0)
	svc := newTestService(t, conn)

	_, err := svc.Create(context.Background(), uuid.New(), CreateInput{ProductID: prod.ID, Quantity: 1})
	require.Error(t, err)
	require.Equal(t, pkgerrors.CodeStateConflict, pkgerrors.As(err).Code())
}

func TestOwnerMayOnlyCancel(t *testing.T) {
	conn := newTestDB(t)
	prod := seedProduct(t, conn, 10)
	svc := newTestService(t, conn)
	ctx := context.Background()
	userID := uuid.New()

	created, err := svc.Create(ctx, userID, CreateInput{ProductID: prod.ID, Quantity: 4})
	require.NoError(t, err)

	_, err = svc.UpdateStatus(ctx, userID, enums.UserRoleUser, created.ID, enums.OrderStatusConfirmed)
	require.Error(t, err)
	require.Equal(t, pkgerrors.CodeForbidden, pkgerrors.As(err).Code())

	cancelled, err := svc.UpdateStatus(ctx, userID, enums.UserRoleUser, created.ID, enums.OrderStatusCancelled)
	require.NoError(t, err)
	require.Equal(t, enums.OrderStatusCancelled, cancelled.OrderStatus)
	// cancellation returned the reserved units
	require.Equal(t, 10, productStock(t, conn, prod.ID))
}

func TestAdminMovesForwardOneStepAtATime(t *testing.T) {
	conn := newTestDB(t)
	prod := seedProduct(t, conn, 10)
	svc := newTestService(t, conn)
	ctx := context.Background()
	adminID := uuid.New()

	created, err := svc.Create(ctx, uuid.New(), CreateInput{ProductID: prod.ID, Quantity: 1})
	require.NoError(t, err)

	// skipping confirmed is rejected
	_, err = svc.UpdateStatus(ctx, adminID, enums.UserRoleAdmin, created.ID, enums.OrderStatusShipped)
	require.Error(t, err)
	require.Equal(t, pkgerrors.CodeStateConflict, pkgerrors.As(err).Code())

	for _, next := range []enums.OrderStatus{
		enums.OrderStatusConfirmed,
		enums.OrderStatusProcessing,
		enums.OrderStatusShipped,
		enums.OrderStatusDelivered,
	} {
		updated, err := svc.UpdateStatus(ctx, adminID, enums.UserRoleAdmin, created.ID, next)
		require.NoError(t, err, "transition to %s", next)
		require.Equal(t, next, updated.OrderStatus)
	}

	// delivered is terminal
	_, err = svc.UpdateStatus(ctx, adminID, enums.UserRoleAdmin, created.ID, enums.OrderStatusCancelled)
	require.Error(t, err)
	require.Equal(t, pkgerrors.CodeStateConflict, pkgerrors.As(err).Code())
}

func TestCancelAfterConfirmedOnly(t *testing.T) {
	conn := newTestDB(t)
	prod := seedProduct(t, conn, 10)
	svc := newTestService(t, conn)
	ctx := context.Background()
	adminID := uuid.New()

	created, err := svc.Create(ctx, uuid.New(), CreateInput{ProductID: prod.ID, Quantity: 1})
	require.NoError(t, err)

	_, err = svc.UpdateStatus(ctx, adminID, enums.UserRoleAdmin, created.ID, enums.OrderStatusConfirmed)
	require.NoError(t, err)
	_, err = svc.UpdateStatus(ctx, adminID, enums.UserRoleAdmin, created.ID, enums.OrderStatusProcessing)
	require.NoError(t, err)

	// once processing, cancellation is closed
	_, err = svc.UpdateStatus(ctx, adminID, enums.UserRoleAdmin, created.ID, enums.OrderStatusCancelled)
	require.Error(t, err)
	require.Equal(t, pkgerrors.CodeStateConflict, pkgerrors.As(err).Code())
}

func TestDeleteRestoresStockUnlessCancelled(t *testing.T) {
	conn := newTestDB(t)
	prod := seedProduct(t, conn, 10)
	svc := newTestService(t, conn)
	ctx := context.Background()
	userID := uuid.New()

	created, err := svc.Create(ctx, userID, CreateInput{ProductID: prod.ID, Quantity: 3})
	require.NoError(t, err)
	require.Equal(t, 7, productStock(t, conn, prod.ID))

	require.NoError(t, svc.Delete(ctx, userID, enums.UserRoleUser, created.ID))
	require.Equal(t, 10, productStock(t, conn, prod.ID))

	// cancelled rows already restored their stock; deleting must not double it
	again, err := svc.Create(ctx, userID, CreateInput{ProductID: prod.ID, Quantity: 2})
	require.NoError(t, err)
	_, err = svc.UpdateStatus(ctx, userID, enums.UserRoleUser, again.ID, enums.OrderStatusCancelled)
	require.NoError(t, err)
	require.NoError(t, svc.Delete(ctx, userID, enums.UserRoleUser, again.ID))
	require.Equal(t, 10, productStock(t, conn, prod.ID))
}

func TestGetByIDIsOwnerScoped(t *testing.T) {
	conn := newTestDB(t)
	prod := seedProduct(t, conn, 10)
	svc := newTestService(t, conn)
	ctx := context.Background()
	userID := uuid.New()

	created, err := svc.Create(ctx, userID, CreateInput{ProductID: prod.ID, Quantity: 1})
	require.NoError(t, err)

	_, err = svc.GetByID(ctx, uuid.New(), enums.UserRoleUser, created.ID)
	require.Error(t, err)
	require.Equal(t, pkgerrors.CodeNotFound, pkgerrors.As(err).Code())

	// admins see any booking
	dto, err := svc.GetByID(ctx, uuid.New(), enums.UserRoleAdmin, created.ID)
	require.NoError(t, err)
	require.Equal(t, created.ID, dto.ID)
	require.NotNil(t, dto.Product)
	require.Equal(t, "Widget", dto.Product.Title)
}

func TestCreateMergesIntoConfirmedUnclaimedRow(t *testing.T) {
	conn := newTestDB(t)
	prod := seedProduct(t, conn, 10)
	svc := newTestService(t, conn)
	ctx := context.Background()
	userID := uuid.New()
	adminID := uuid.New()

	created, err := svc.Create(ctx, userID, CreateInput{ProductID: prod.ID, Quantity: 2})
	require.NoError(t, err)
	_, err = svc.UpdateStatus(ctx, adminID, enums.UserRoleAdmin, created.ID, enums.OrderStatusConfirmed)
	require.NoError(t, err)

	// an admin-confirmed row that no payment claimed still absorbs adds
	merged, err := svc.Create(ctx, userID, CreateInput{ProductID: prod.ID, Quantity: 1})
	require.NoError(t, err)
	require.Equal(t, created.ID, merged.ID)
	require.Equal(t, 3, merged.Quantity)

	var count int64
	require.NoError(t, conn.Model(&models.Booking{}).Where("user_id = ?", userID).Count(&count).Error)
	require.Equal(t, int64(1), count)
}

func TestAssignOrderClaimsOnlyUnclaimedRows(t *testing.T) {
	conn := newTestDB(t)
	prod := seedProduct(t, conn, 10)
	repo := NewRepository(conn)
	ctx := context.Background()

	rowA := &models.Booking{ProductID: prod.ID, UserID: uuid.New(), Quantity: 1, OrderStatus: enums.OrderStatusPending}
	rowB := &models.Booking{ProductID: prod.ID, UserID: uuid.New(), Quantity: 1, OrderStatus: enums.OrderStatusPending}
	require.NoError(t, repo.Create(ctx, rowA))
	require.NoError(t, repo.Create(ctx, rowB))

	claimed, err := repo.AssignOrder(ctx, []uuid.UUID{rowA.ID, rowB.ID}, "JMART_TXN1", map[string]any{
		"order_status": string(enums.OrderStatusConfirmed),
	})
	require.NoError(t, err)
	require.Equal(t, int64(2), claimed)

	// a later claim never overwrites the first transaction id
	claimed, err = repo.AssignOrder(ctx, []uuid.UUID{rowA.ID, rowB.ID}, "JMART_TXN2", map[string]any{
		"order_status": string(enums.OrderStatusConfirmed),
	})
	require.NoError(t, err)
	require.Zero(t, claimed)

	reloaded, err := repo.FindByID(ctx, rowA.ID)
	require.NoError(t, err)
	require.NotNil(t, reloaded.OrderID)
	require.Equal(t, "JMART_TXN1", *reloaded.OrderID)
}
