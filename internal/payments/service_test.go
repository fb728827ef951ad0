package payment

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	booking "github.com/joymart/joymart-backend/internal/bookings"
	product "github.com/joymart/joymart-backend/internal/products"
	"github.com/joymart/joymart-backend/pkg/config"
	"github.com/joymart/joymart-backend/pkg/db"
	"github.com/joymart/joymart-backend/pkg/db/models"
	"github.com/joymart/joymart-backend/pkg/enums"
	pkgerrors "github.com/joymart/joymart-backend/pkg/errors"
	"github.com/joymart/joymart-backend/pkg/sslcommerz"
)

type fakeGateway struct {
	initiateResp  *sslcommerz.InitiateResponse
	initiateErr   error
	initiateCalls int
	validateResp  *sslcommerz.ValidationResponse
	validateErr   error
	validateCalls int
}

func (f *fakeGateway) Initiate(ctx context.Context, params sslcommerz.InitiateParams) (*sslcommerz.InitiateResponse, error) {
	f.initiateCalls++
	if f.initiateErr != nil {
		return nil, f.initiateErr
	}
	if f.initiateResp != nil {
		return f.initiateResp, nil
	}
	return &sslcommerz.InitiateResponse{Status: "SUCCESS", GatewayPageURL: "https://sandbox.sslcommerz.com/gw/pay"}, nil
}

func (f *fakeGateway) Validate(ctx context.Context, transactionID string) (*sslcommerz.ValidationResponse, error) {
	f.validateCalls++
	if f.validateErr != nil {
		return nil, f.validateErr
	}
	if f.validateResp != nil {
		return f.validateResp, nil
	}
	return &sslcommerz.ValidationResponse{Status: sslcommerz.StatusValid, TransactionID: transactionID}, nil
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(
		&models.Category{}, &models.Product{}, &models.User{},
		&models.Booking{}, &models.Payment{}, &models.PaymentItem{},
	))
	return conn
}

func seedProduct(t *testing.T, conn *gorm.DB, price int64, stock int) *models.Product {
	t.Helper()
	cat := &models.Category{ID: uuid.New(), Name: "Cat " + uuid.NewString()[:8], IsActive: true}
	require.NoError(t, conn.Create(cat).Error)
	row := &models.Product{
		ID:          uuid.New(),
		SellerID:    uuid.New(),
		CategoryID:  cat.ID,
		Title:       "Widget",
		Description: "d",
		Price:       decimal.NewFromInt(price),
		Stock:       stock,
		IsActive:    stock > 0,
	}
	require.NoError(t, conn.Create(row).Error)
	return row
}

func newTestService(t *testing.T, conn *gorm.DB, gw Gateway) Service {
	t.Helper()
	cfg := config.SSLCommerzConfig{RedirectBaseURL: "https://shop.example.com"}
	svc, err := NewService(
		NewRepository(conn),
		booking.NewRepository(conn),
		product.NewRepository(conn),
		db.FromConn(conn),
		gw,
		cfg,
	)
	require.NoError(t, err)
	return svc
}

func customer() CustomerInput {
	return CustomerInput{Name: "Rahim", Email: "rahim@example.com", Phone: "01711111111", Address: "Dhaka"}
}

func TestInitiateCODSkipsGateway(t *testing.T) {
	conn := newTestDB(t)
	prod := seedProduct(t, conn, 50, 10)
	gw := &fakeGateway{}
	svc := newTestService(t, conn, gw)
	userID := uuid.New()

	result, err := svc.Initiate(context.Background(), userID, InitiateInput{
		Items:       []LineItemInput{{ProductID: prod.ID, Quantity: 2}},
		TotalAmount: decimal.NewFromInt(100),
		Method:      enums.PaymentMethodCOD,
		Customer:    customer(),
	})
	require.NoError(t, err)
	require.Zero(t, gw.initiateCalls)
	require.True(t, strings.HasPrefix(result.TransactionID, "JMART_TXN"))
	require.Empty(t, result.PaymentURL)

	stored, err := svc.Track(context.Background(), userID, result.TransactionID)
	require.NoError(t, err)
	require.Equal(t, enums.OrderStatusConfirmed, stored.OrderStatus)
	require.Equal(t, enums.PaymentStatusPending, stored.PaymentStatus)
	require.Len(t, stored.Items, 1)

	var reloaded models.Product
	require.NoError(t, conn.First(&reloaded, "id = ?", prod.ID).Error)
	require.Equal(t, 8, reloaded.Stock)
}

func TestInitiateDrainingStockRetiresProduct(t *testing.T) {
	conn := newTestDB(t)
	prod := seedProduct(t, conn, 50, 5)
	svc := newTestService(t, conn, &fakeGateway{})

	_, err := svc.Initiate(context.Background(), uuid.New(), InitiateInput{
		Items:       []LineItemInput{{ProductID: prod.ID, Quantity: 5}},
		TotalAmount: decimal.NewFromInt(250),
		Method:      enums.PaymentMethodCOD,
		Customer:    customer(),
	})
	require.NoError(t, err)

	// buying out the full stock deactivates and tombstones the listing
	var reloaded models.Product
	require.NoError(t, conn.First(&reloaded, "id = ?", prod.ID).Error)
	require.Equal(t, 0, reloaded.Stock)
	require.False(t, reloaded.IsActive)
	require.True(t, reloaded.IsDeleted)
}

func TestInitiateRejectsMismatchedTotal(t *testing.T) {
	conn := newTestDB(t)
	prod := seedProduct(t, conn, 50, 10)
	svc := newTestService(t, conn, &fakeGateway{})

	_, err := svc.Initiate(context.Background(), uuid.New(), InitiateInput{
		Items:       []LineItemInput{{ProductID: prod.ID, Quantity: 2}},
		TotalAmount: decimal.NewFromInt(90),
		Method:      enums.PaymentMethodCOD,
		Customer:    customer(),
	})
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.Equal(t, pkgerrors.CodeValidation, typed.Code())

	// nothing was reserved
	var reloaded models.Product
	require.NoError(t, conn.First(&reloaded, "id = ?", prod.ID).Error)
	require.Equal(t, 10, reloaded.Stock)
}

func TestInitiateOnlineReturnsGatewayURL(t *testing.T) {
	conn := newTestDB(t)
	prod := seedProduct(t, conn, 50, 10)
	gw := &fakeGateway{}
	svc := newTestService(t, conn, gw)

	result, err := svc.Initiate(context.Background(), uuid.New(), InitiateInput{
		Items:       []LineItemInput{{ProductID: prod.ID, Quantity: 1}},
		TotalAmount: decimal.NewFromInt(50),
		Method:      enums.PaymentMethodOnline,
		Customer:    customer(),
	})
	require.NoError(t, err)
	require.Equal(t, 1, gw.initiateCalls)
	require.Equal(t, "https://sandbox.sslcommerz.com/gw/pay", result.PaymentURL)
}

func TestInitiateGatewayRefusalRollsBack(t *testing.T) {
	conn := newTestDB(t)
	prod := seedProduct(t, conn, 50, 10)
	gw := &fakeGateway{initiateResp: &sslcommerz.InitiateResponse{Status: "FAILED", FailedReason: "store disabled"}}
	svc := newTestService(t, conn, gw)
	userID := uuid.New()

	_, err := svc.Initiate(context.Background(), userID, InitiateInput{
		Items:       []LineItemInput{{ProductID: prod.ID, Quantity: 1}},
		TotalAmount: decimal.NewFromInt(50),
		Method:      enums.PaymentMethodOnline,
		Customer:    customer(),
	})
	require.Error(t, err)
	require.Equal(t, pkgerrors.CodeDependency, pkgerrors.As(err).Code())

	// the reservation rolled back
	var reloaded models.Product
	require.NoError(t, conn.First(&reloaded, "id = ?", prod.ID).Error)
	require.Equal(t, 10, reloaded.Stock)

	// but the refusal stays visible in history as a failed payment
	rows, err := svc.History(context.Background(), userID)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Equal(t, enums.PaymentStatusFailed, rows[0].PaymentStatus)
}

func TestInitiateClaimsBookingsWithoutDoubleDecrement(t *testing.T) {
	conn := newTestDB(t)
	prod := seedProduct(t, conn, 50, 10)
	svc := newTestService(t, conn, &fakeGateway{})
	userID := uuid.New()

	// cart add already reserved the stock
	bookingSvc, err := booking.NewService(booking.NewRepository(conn), product.NewRepository(conn), db.FromConn(conn))
	require.NoError(t, err)
	cartRow, err := bookingSvc.Create(context.Background(), userID, booking.CreateInput{ProductID: prod.ID, Quantity: 2})
	require.NoError(t, err)

	var reloaded models.Product
	require.NoError(t, conn.First(&reloaded, "id = ?", prod.ID).Error)
	require.Equal(t, 8, reloaded.Stock)

	result, err := svc.Initiate(context.Background(), userID, InitiateInput{
		BookingIDs:  []uuid.UUID{cartRow.ID},
		TotalAmount: decimal.NewFromInt(100),
		Method:      enums.PaymentMethodCOD,
		Customer:    customer(),
	})
	require.NoError(t, err)

	// stock untouched beyond the cart-add reservation
	require.NoError(t, conn.First(&reloaded, "id = ?", prod.ID).Error)
	require.Equal(t, 8, reloaded.Stock)

	var claimed models.Booking
	require.NoError(t, conn.First(&claimed, "id = ?", cartRow.ID).Error)
	require.NotNil(t, claimed.OrderID)
	require.Equal(t, result.TransactionID, *claimed.OrderID)
	require.Equal(t, enums.OrderStatusConfirmed, claimed.OrderStatus)

	// a second initiate against the same booking is rejected
	_, err = svc.Initiate(context.Background(), userID, InitiateInput{
		BookingIDs:  []uuid.UUID{cartRow.ID},
		TotalAmount: decimal.NewFromInt(100),
		Method:      enums.PaymentMethodCOD,
		Customer:    customer(),
	})
	require.Error(t, err)
	require.Equal(t, pkgerrors.CodeStateConflict, pkgerrors.As(err).Code())
}

func TestInitiateClaimsSeveralBookingsInOneCheckout(t *testing.T) {
	conn := newTestDB(t)
	first := seedProduct(t, conn, 50, 10)
	second := seedProduct(t, conn, 30, 10)
	svc := newTestService(t, conn, &fakeGateway{})
	userID := uuid.New()

	bookingSvc, err := booking.NewService(booking.NewRepository(conn), product.NewRepository(conn), db.FromConn(conn))
	require.NoError(t, err)
	rowA, err := bookingSvc.Create(context.Background(), userID, booking.CreateInput{ProductID: first.ID, Quantity: 1})
	require.NoError(t, err)
	rowB, err := bookingSvc.Create(context.Background(), userID, booking.CreateInput{ProductID: second.ID, Quantity: 2})
	require.NoError(t, err)

	result, err := svc.Initiate(context.Background(), userID, InitiateInput{
		BookingIDs:  []uuid.UUID{rowA.ID, rowB.ID},
		TotalAmount: decimal.NewFromInt(110),
		Method:      enums.PaymentMethodCOD,
		Customer:    customer(),
	})
	require.NoError(t, err)

	// every booking in the checkout carries the same transaction id
	var claimed []models.Booking
	require.NoError(t, conn.Where("user_id = ?", userID).Find(&claimed).Error)
	require.Len(t, claimed, 2)
	for _, row := range claimed {
		require.NotNil(t, row.OrderID)
		require.Equal(t, result.TransactionID, *row.OrderID)
		require.Equal(t, enums.OrderStatusConfirmed, row.OrderStatus)
	}
}

func TestValidateSettlesPayment(t *testing.T) {
	conn := newTestDB(t)
	prod := seedProduct(t, conn, 50, 10)
	gw := &fakeGateway{}
	svc := newTestService(t, conn, gw)
	userID := uuid.New()

	result, err := svc.Initiate(context.Background(), userID, InitiateInput{
		Items:       []LineItemInput{{ProductID: prod.ID, Quantity: 1}},
		TotalAmount: decimal.NewFromInt(50),
		Method:      enums.PaymentMethodOnline,
		Customer:    customer(),
	})
	require.NoError(t, err)

	gw.validateResp = &sslcommerz.ValidationResponse{
		Status:          sslcommerz.StatusValid,
		TransactionID:   result.TransactionID,
		Amount:          "50.00",
		Currency:        "BDT",
		CardType:        "VISA",
		CardNo:          "432143XXXXXX4321",
		TransactionDate: "2026-08-29 11:30:00",
	}

	settled, err := svc.Validate(context.Background(), result.TransactionID)
	require.NoError(t, err)
	require.True(t, settled.Success)

	stored, err := svc.Track(context.Background(), userID, result.TransactionID)
	require.NoError(t, err)
	require.Equal(t, enums.PaymentStatusPaid, stored.PaymentStatus)
	require.Equal(t, enums.OrderStatusConfirmed, stored.OrderStatus)
	require.NotNil(t, stored.GatewayDetail)
	require.Equal(t, "4321", stored.GatewayDetail.CardLast4)
	require.Equal(t, "sslcommerz", stored.GatewayDetail.Gateway)

	// a replayed validation is a no-op
	settled, err = svc.Validate(context.Background(), result.TransactionID)
	require.NoError(t, err)
	require.True(t, settled.Success)
}

func TestValidateFailedTransaction(t *testing.T) {
	conn := newTestDB(t)
	prod := seedProduct(t, conn, 50, 10)
	gw := &fakeGateway{}
	svc := newTestService(t, conn, gw)
	userID := uuid.New()

	result, err := svc.Initiate(context.Background(), userID, InitiateInput{
		Items:       []LineItemInput{{ProductID: prod.ID, Quantity: 1}},
		TotalAmount: decimal.NewFromInt(50),
		Method:      enums.PaymentMethodOnline,
		Customer:    customer(),
	})
	require.NoError(t, err)

	gw.validateResp = &sslcommerz.ValidationResponse{Status: "FAILED", TransactionID: result.TransactionID}
	settled, err := svc.Validate(context.Background(), result.TransactionID)
	require.NoError(t, err)
	require.False(t, settled.Success)

	stored, err := svc.Track(context.Background(), userID, result.TransactionID)
	require.NoError(t, err)
	require.Equal(t, enums.PaymentStatusFailed, stored.PaymentStatus)
}

func TestHandleIPNReVerifiesWithGateway(t *testing.T) {
	conn := newTestDB(t)
	prod := seedProduct(t, conn, 50, 10)
	gw := &fakeGateway{}
	svc := newTestService(t, conn, gw)
	userID := uuid.New()

	result, err := svc.Initiate(context.Background(), userID, InitiateInput{
		Items:       []LineItemInput{{ProductID: prod.ID, Quantity: 1}},
		TotalAmount: decimal.NewFromInt(50),
		Method:      enums.PaymentMethodOnline,
		Customer:    customer(),
	})
	require.NoError(t, err)

	// a forged VALID claim that the gateway denies must not settle anything
	gw.validateResp = &sslcommerz.ValidationResponse{Status: "FAILED", TransactionID: result.TransactionID}
	settled, err := svc.HandleIPN(context.Background(), IPNInput{TransactionID: result.TransactionID, Status: "VALID"})
	require.NoError(t, err)
	require.False(t, settled.Success)
	require.Equal(t, 1, gw.validateCalls)

	stored, err := svc.Track(context.Background(), userID, result.TransactionID)
	require.NoError(t, err)
	require.Equal(t, enums.PaymentStatusPending, stored.PaymentStatus)

	// a non-VALID claim never even reaches the gateway
	settled, err = svc.HandleIPN(context.Background(), IPNInput{TransactionID: result.TransactionID, Status: "FAILED"})
	require.NoError(t, err)
	require.False(t, settled.Success)
	require.Equal(t, 1, gw.validateCalls)

	// a genuine VALID claim settles after re-verification
	gw.validateResp = &sslcommerz.ValidationResponse{
		Status:        sslcommerz.StatusValid,
		TransactionID: result.TransactionID,
		Amount:        "50.00",
		Currency:      "BDT",
	}
	settled, err = svc.HandleIPN(context.Background(), IPNInput{TransactionID: result.TransactionID, Status: "VALID"})
	require.NoError(t, err)
	require.True(t, settled.Success)

	stored, err = svc.Track(context.Background(), userID, result.TransactionID)
	require.NoError(t, err)
	require.Equal(t, enums.PaymentStatusPaid, stored.PaymentStatus)
}

func TestTrackIsOwnerScoped(t *testing.T) {
	conn := newTestDB(t)
	prod := seedProduct(t, conn, 50, 10)
	svc := newTestService(t, conn, &fakeGateway{})
	userID := uuid.New()

	result, err := svc.Initiate(context.Background(), userID, InitiateInput{
		Items:       []LineItemInput{{ProductID: prod.ID, Quantity: 1}},
		TotalAmount: decimal.NewFromInt(50),
		Method:      enums.PaymentMethodCOD,
		Customer:    customer(),
	})
	require.NoError(t, err)

	_, err = svc.Track(context.Background(), uuid.New(), result.TransactionID)
	require.Error(t, err)
	require.Equal(t, pkgerrors.CodeNotFound, pkgerrors.As(err).Code())
}

func TestTransactionIDFormat(t *testing.T) {
	at := time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)
	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		id := newTransactionID(at)
		require.True(t, strings.HasPrefix(id, "JMART_TXN"))
		seen[id] = true
	}
	// the random suffix keeps ids distinct even at one timestamp
	require.Greater(t, len(seen), 1)
}
