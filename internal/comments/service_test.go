package comment

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
	user "github.com/joymart/joymart-backend/internal/users"
	"github.com/joymart/joymart-backend/pkg/db/models"
	pkgerrors "github.com/joymart/joymart-backend/pkg/errors"
	"github.com/joymart/joymart-backend/pkg/listing"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&models.Category{}, &models.Product{}, &models.User{}, &models.ProductComment{}))
	return conn
}

func seedProduct(t *testing.T, conn *gorm.DB) *models.Product {
	t.Helper()
	cat := &models.Category{ID: uuid.New(), Name: "Cat " + uuid.NewString()[:8], IsActive: true}
	require.NoError(t, conn.Create(cat).Error)
	row := &models.Product{
		ID:          uuid.New(),
		SellerID:    uuid.New(),
		CategoryID:  cat.ID,
		Title:       "Blender",
		Description: "d",
		Price:       decimal.NewFromInt(40),
		Stock:       5,
		IsActive:    true,
	}
	require.NoError(t, conn.Create(row).Error)
	return row
}

func seedUser(t *testing.T, conn *gorm.DB, name string) *models.User {
	t.Helper()
	row := &models.User{
		ID:           uuid.New(),
		Name:         name,
		Email:        uuid.NewString()[:8] + "@example.com",
		PasswordHash: "x",
	}
	require.NoError(t, conn.Create(row).Error)
	return row
}

func newTestService(t *testing.T, conn *gorm.DB) Service {
	t.Helper()
	svc, err := NewService(NewRepository(conn), product.NewRepository(conn), user.NewRepository(conn))
	require.NoError(t, err)
	return svc
}

func TestCreateSnapshotsAuthorName(t *testing.T) {
	conn := newTestDB(t)
	prod := seedProduct(t, conn)
	svc := newTestService(t, conn)
	ctx := context.Background()
	author := seedUser(t, conn, "Farhana")

	created, err := svc.Create(ctx, author.ID, CreateInput{ProductID: prod.ID, Rating: 4, Comment: "solid build"})
	require.NoError(t, err)
	require.Equal(t, "Farhana", created.UserName)
	require.Equal(t, author.Email, created.Email)

	// renaming the account does not rewrite old comments
	require.NoError(t, conn.Model(&models.User{}).Where("id = ?", author.ID).Update("name", "F. Akter").Error)
	rows, meta, err := svc.ListByProduct(ctx, prod.ID, listing.Params{})
	require.NoError(t, err)
	require.Equal(t, int64(1), meta.Total)
	require.Equal(t, "Farhana", rows[0].UserName)
}

func TestCreateValidatesInputs(t *testing.T) {
	conn := newTestDB(t)
	prod := seedProduct(t, conn)
	svc := newTestService(t, conn)
	ctx := context.Background()

	_, err := svc.Create(ctx, uuid.New(), CreateInput{ProductID: prod.ID, Rating: 0, Comment: "x"})
	require.Error(t, err)
	require.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())

	_, err = svc.Create(ctx, seedUser(t, conn, "A").ID, CreateInput{ProductID: uuid.New(), Rating: 3, Comment: "x"})
	require.Error(t, err)
	require.Equal(t, pkgerrors.CodeNotFound, pkgerrors.As(err).Code())

	// an unknown author is rejected before anything is written
	_, err = svc.Create(ctx, uuid.New(), CreateInput{ProductID: prod.ID, Rating: 3, Comment: "x"})
	require.Error(t, err)
	require.Equal(t, pkgerrors.CodeNotFound, pkgerrors.As(err).Code())

	var count int64
	require.NoError(t, conn.Model(&models.ProductComment{}).Count(&count).Error)
	require.Zero(t, count)
}

func TestUpdateAndDeleteAreOwnerScoped(t *testing.T) {
	conn := newTestDB(t)
	prod := seedProduct(t, conn)
	svc := newTestService(t, conn)
	ctx := context.Background()
	author := seedUser(t, conn, "Author")

	created, err := svc.Create(ctx, author.ID, CreateInput{ProductID: prod.ID, Rating: 4, Comment: "fine"})
	require.NoError(t, err)

	text := "edited"
	_, err = svc.Update(ctx, created.ID, uuid.New(), UpdateInput{Comment: &text})
	require.Error(t, err)
	require.Equal(t, pkgerrors.CodeNotFound, pkgerrors.As(err).Code())

	updated, err := svc.Update(ctx, created.ID, author.ID, UpdateInput{Comment: &text})
	require.NoError(t, err)
	require.Equal(t, "edited", updated.Comment)

	require.Error(t, svc.Delete(ctx, created.ID, uuid.New()))
	require.NoError(t, svc.Delete(ctx, created.ID, author.ID))

	_, _, err = svc.ListByProduct(ctx, prod.ID, listing.Params{})
	require.NoError(t, err)
	var count int64
	require.NoError(t, conn.Model(&models.ProductComment{}).Count(&count).Error)
	require.Zero(t, count)
}
