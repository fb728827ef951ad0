package subscriber

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/joymart/joymart-backend/pkg/db/models"
	pkgerrors "github.com/joymart/joymart-backend/pkg/errors"
	"github.com/joymart/joymart-backend/pkg/listing"
)

func newTestService(t *testing.T) Service {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&models.Subscriber{}))
	svc, err := NewService(NewRepository(conn))
	require.NoError(t, err)
	return svc
}

func TestSubscribeIsUpsert(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	first, err := svc.Subscribe(ctx, " News@Example.COM ")
	require.NoError(t, err)
	require.Equal(t, "news@example.com", first.Email)
	require.True(t, first.IsSubscribed)

	again, err := svc.Subscribe(ctx, "news@example.com")
	require.NoError(t, err)
	require.Equal(t, first.ID, again.ID)

	rows, meta, err := svc.List(ctx, listing.Params{})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Equal(t, int64(1), meta.Total)
}

func TestUnsubscribeAndResubscribe(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.Subscribe(ctx, "reader@example.com")
	require.NoError(t, err)

	require.NoError(t, svc.Unsubscribe(ctx, "reader@example.com"))
	// unsubscribing twice stays a no-op
	require.NoError(t, svc.Unsubscribe(ctx, "reader@example.com"))

	back, err := svc.Subscribe(ctx, "reader@example.com")
	require.NoError(t, err)
	require.True(t, back.IsSubscribed)
}

func TestUnsubscribeUnknownEmail(t *testing.T) {
	svc := newTestService(t)

	err := svc.Unsubscribe(context.Background(), "ghost@example.com")
	require.Error(t, err)
	require.Equal(t, pkgerrors.CodeNotFound, pkgerrors.As(err).Code())
}
