package product

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	category "github.com/joymart/joymart-backend/internal/categories"
	"github.com/joymart/joymart-backend/pkg/db/models"
	pkgerrors "github.com/joymart/joymart-backend/pkg/errors"
	"github.com/joymart/joymart-backend/pkg/listing"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&models.Category{}, &models.Product{}))
	return conn
}

func seedCategory(t *testing.T, conn *gorm.DB) *models.Category {
	t.Helper()
	row := &models.Category{ID: uuid.New(), Name: "Gadgets " + uuid.NewString()[:8], IsActive: true}
	require.NoError(t, conn.Create(row).Error)
	return row
}

func newTestService(t *testing.T, conn *gorm.DB) Service {
	t.Helper()
	svc, err := NewService(NewRepository(conn), category.NewRepository(conn))
	require.NoError(t, err)
	return svc
}

func TestCreateComputesDiscountAndActivity(t *testing.T) {
	conn := newTestDB(t)
	cat := seedCategory(t, conn)
	svc := newTestService(t, conn)

	dto, err := svc.Create(context.Background(), uuid.New(), CreateInput{
		CategoryID:    cat.ID,
		Title:         "Desk Lamp",
		Description:   "warm light",
		Price:         decimal.NewFromInt(75),
		OriginalPrice: decimal.NewFromInt(100),
		Stock:         10,
	})
	require.NoError(t, err)
	require.Equal(t, 25, dto.DiscountPercentage)
	require.True(t, dto.IsActive)

	zeroStock, err := svc.Create(context.Background(), uuid.New(), CreateInput{
		CategoryID:  cat.ID,
		Title:       "Sold Out Lamp",
		Description: "none left",
		Price:       decimal.NewFromInt(40),
		Stock:       0,
	})
	require.NoError(t, err)
	require.False(t, zeroStock.IsActive)
	// original price falls back to price when omitted
	require.True(t, zeroStock.OriginalPrice.Equal(decimal.NewFromInt(40)))
}

func TestCreateRejectsUnknownCategory(t *testing.T) {
	conn := newTestDB(t)
	svc := newTestService(t, conn)

	_, err := svc.Create(context.Background(), uuid.New(), CreateInput{
		CategoryID:  uuid.New(),
		Title:       "Orphan",
		Description: "no category",
		Price:       decimal.NewFromInt(5),
		Stock:       1,
	})
	require.Error(t, err)
	require.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())
}

func TestUpdateOwnership(t *testing.T) {
	conn := newTestDB(t)
	cat := seedCategory(t, conn)
	svc := newTestService(t, conn)
	sellerID := uuid.New()

	created, err := svc.Create(context.Background(), sellerID, CreateInput{
		CategoryID:  cat.ID,
		Title:       "Mine",
		Description: "d",
		Price:       decimal.NewFromInt(10),
		Stock:       3,
	})
	require.NoError(t, err)

	title := "Stolen"
	_, err = svc.Update(context.Background(), uuid.New(), "seller", created.ID, UpdateInput{Title: &title})
	require.Error(t, err)
	require.Equal(t, pkgerrors.CodeForbidden, pkgerrors.As(err).Code())

	// admins may edit any listing
	updated, err := svc.Update(context.Background(), uuid.New(), "admin", created.ID, UpdateInput{Title: &title})
	require.NoError(t, err)
	require.Equal(t, "Stolen", updated.Title)
}

func TestSoftDeleteHidesFromPublicList(t *testing.T) {
	conn := newTestDB(t)
	cat := seedCategory(t, conn)
	svc := newTestService(t, conn)
	sellerID := uuid.New()

	created, err := svc.Create(context.Background(), sellerID, CreateInput{
		CategoryID:  cat.ID,
		Title:       "Going Away",
		Description: "d",
		Price:       decimal.NewFromInt(10),
		Stock:       3,
	})
	require.NoError(t, err)
	require.NoError(t, svc.SoftDelete(context.Background(), sellerID, "seller", created.ID))

	rows, _, err := svc.List(context.Background(), ListInput{View: ViewPublic, Params: listing.Params{}})
	require.NoError(t, err)
	require.Empty(t, rows)

	// the seller still sees the tombstoned row
	rows, _, err = svc.List(context.Background(), ListInput{View: ViewSeller, SellerID: sellerID, Params: listing.Params{}})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.True(t, rows[0].IsDeleted)
}

func TestHardDeleteRequiresSuperAdmin(t *testing.T) {
	conn := newTestDB(t)
	cat := seedCategory(t, conn)
	svc := newTestService(t, conn)

	created, err := svc.Create(context.Background(), uuid.New(), CreateInput{
		CategoryID:  cat.ID,
		Title:       "Perma",
		Description: "d",
		Price:       decimal.NewFromInt(10),
		Stock:       3,
	})
	require.NoError(t, err)

	err = svc.HardDelete(context.Background(), "admin", created.ID)
	require.Error(t, err)
	require.Equal(t, pkgerrors.CodeForbidden, pkgerrors.As(err).Code())

	require.NoError(t, svc.HardDelete(context.Background(), "superAdmin", created.ID))

	_, err = svc.GetByID(context.Background(), created.ID)
	require.Error(t, err)
	require.Equal(t, pkgerrors.CodeNotFound, pkgerrors.As(err).Code())
}

func TestDecrementStockGuardsAgainstOverselling(t *testing.T) {
	conn := newTestDB(t)
	cat := seedCategory(t, conn)
	repo := NewRepository(conn)
	ctx := context.Background()

	row := &models.Product{
		ID:          uuid.New(),
		SellerID:    uuid.New(),
		CategoryID:  cat.ID,
		Title:       "Limited",
		Description: "d",
		Price:       decimal.NewFromInt(20),
		Stock:       3,
		IsActive:    true,
	}
	require.NoError(t, conn.Create(row).Error)

	err := repo.DecrementStock(ctx, row.ID, 5, false)
	require.Error(t, err)
	require.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())

	reloaded, err := repo.FindByID(ctx, row.ID)
	require.NoError(t, err)
	require.Equal(t, 3, reloaded.Stock)
	require.True(t, reloaded.IsActive)
}

func TestDecrementStockToZeroDeactivates(t *testing.T) {
	conn := newTestDB(t)
	cat := seedCategory(t, conn)
	repo := NewRepository(conn)
	ctx := context.Background()

	row := &models.Product{
		ID:          uuid.New(),
		SellerID:    uuid.New(),
		CategoryID:  cat.ID,
		Title:       "Last Units",
		Description: "d",
		Price:       decimal.NewFromInt(20),
		Stock:       2,
		IsActive:    true,
	}
	require.NoError(t, conn.Create(row).Error)

	require.NoError(t, repo.DecrementStock(ctx, row.ID, 2, false))
	reloaded, err := repo.FindByID(ctx, row.ID)
	require.NoError(t, err)
	require.Equal(t, 0, reloaded.Stock)
	require.False(t, reloaded.IsActive)
	require.False(t, reloaded.IsDeleted)

	require.NoError(t, repo.IncrementStock(ctx, row.ID, 4))
	reloaded, err = repo.FindByID(ctx, row.ID)
	require.NoError(t, err)
	require.Equal(t, 4, reloaded.Stock)
	require.True(t, reloaded.IsActive)
}

func TestDecrementStockRetireSoftDeletesAtZero(t *testing.T) {
	conn := newTestDB(t)
	cat := seedCategory(t, conn)
	repo := NewRepository(conn)
	ctx := context.Background()

	row := &models.Product{
		ID:          uuid.New(),
		SellerID:    uuid.New(),
		CategoryID:  cat.ID,
		Title:       "Final Sale",
		Description: "d",
		Price:       decimal.NewFromInt(20),
		Stock:       1,
		IsActive:    true,
	}
	require.NoError(t, conn.Create(row).Error)

	require.NoError(t, repo.DecrementStock(ctx, row.ID, 1, true))
	reloaded, err := repo.FindByID(ctx, row.ID)
	require.NoError(t, err)
	require.Equal(t, 0, reloaded.Stock)
	require.False(t, reloaded.IsActive)
	require.True(t, reloaded.IsDeleted)

	// a retired row no longer accepts decrements
	err = repo.DecrementStock(ctx, row.ID, 1, true)
	require.Error(t, err)
}

func TestListSearchAndPaging(t *testing.T) {
	conn := newTestDB(t)
	cat := seedCategory(t, conn)
	svc := newTestService(t, conn)
	ctx := context.Background()
	sellerID := uuid.New()

	for i := 0; i < 3; i++ {
		_, err := svc.Create(ctx, sellerID, CreateInput{
			CategoryID:  cat.ID,
			Title:       fmt.Sprintf("Walnut Chair %d", i),
			Description: "solid wood",
			Price:       decimal.NewFromInt(int64(50 + i)),
			Stock:       5,
		})
		require.NoError(t, err)
	}
	_, err := svc.Create(ctx, sellerID, CreateInput{
		CategoryID:  cat.ID,
		Title:       "Steel Table",
		Description: "brushed metal",
		Price:       decimal.NewFromInt(200),
		Stock:       5,
	})
	require.NoError(t, err)

	rows, meta, err := svc.List(ctx, ListInput{
		View:   ViewPublic,
		Params: listing.Params{SearchTerm: "walnut", Page: 1, Limit: 2},
	})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	require.Equal(t, int64(3), meta.Total)
	require.Equal(t, int64(2), meta.TotalPages)
}
