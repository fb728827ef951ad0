package payment

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	booking "github.com/joymart/joymart-backend/internal/bookings"
	product "github.com/joymart/joymart-backend/internal/products"
	"github.com/joymart/joymart-backend/pkg/config"
	"github.com/joymart/joymart-backend/pkg/db"
	"github.com/joymart/joymart-backend/pkg/db/models"
	"github.com/joymart/joymart-backend/pkg/enums"
	pkgerrors "github.com/joymart/joymart-backend/pkg/errors"
	"github.com/joymart/joymart-backend/pkg/sslcommerz"
	"github.com/joymart/joymart-backend/pkg/types"
)

// Gateway is the slice of the SSLCommerz client the service depends on.
type Gateway interface {
	Initiate(ctx context.Context, params sslcommerz.InitiateParams) (*sslcommerz.InitiateResponse, error)
	Validate(ctx context.Context, transactionID string) (*sslcommerz.ValidationResponse, error)
}

// Service exposes payment and order operations.
type Service interface {
	Initiate(ctx context.Context, userID uuid.UUID, input InitiateInput) (*InitiateResult, error)
	Validate(ctx context.Context, transactionID string) (*SettleResult, error)
	HandleIPN(ctx context.Context, input IPNInput) (*SettleResult, error)
	Track(ctx context.Context, userID uuid.UUID, transactionID string) (*PaymentDTO, error)
	History(ctx context.Context, userID uuid.UUID) ([]PaymentDTO, error)
}

// InitiateInput holds the validated payload to start a purchase. Line items
// come from claimed cart bookings, from direct product references, or both.
type InitiateInput struct {
	BookingIDs      []uuid.UUID
	Items           []LineItemInput
	TotalAmount     decimal.Decimal
	Currency        string
	Method          enums.PaymentMethod
	Customer        CustomerInput
	ShippingAddress *types.Address
}

// LineItemInput is a direct product purchase line.
type LineItemInput struct {
	ProductID uuid.UUID
	Quantity  int
}

// CustomerInput is the buyer contact block forwarded to the gateway.
type CustomerInput struct {
	Name    string
	Email   string
	Phone   string
	Address string
}

// IPNInput carries the gateway's server-to-server notification.
type IPNInput struct {
	TransactionID string
	Status        string
}

type service struct {
	repo        *Repository
	bookingRepo *booking.Repository
	productRepo *product.Repository
	dbClient    *db.Client
	gateway     Gateway
	cfg         config.SSLCommerzConfig
}

// NewService constructs a payment service instance.
func NewService(repo *Repository, bookingRepo *booking.Repository, productRepo *product.Repository, dbClient *db.Client, gateway Gateway, cfg config.SSLCommerzConfig) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("payment repository required")
	}
	if bookingRepo == nil {
		return nil, fmt.Errorf("booking repository required")
	}
	if productRepo == nil {
		return nil, fmt.Errorf("product repository required")
	}
	if dbClient == nil {
		return nil, fmt.Errorf("db client required")
	}
	if gateway == nil {
		return nil, fmt.Errorf("payment gateway required")
	}
	return &service{
		repo:        repo,
		bookingRepo: bookingRepo,
		productRepo: productRepo,
		dbClient:    dbClient,
		gateway:     gateway,
		cfg:         cfg,
	}, nil
}

// Initiate starts a purchase. The transaction id is generated up front; the
// total is recomputed server-side from current prices and must match the
// client's figure. COD persists immediately and never touches the gateway.
func (s *service) Initiate(ctx context.Context, userID uuid.UUID, input InitiateInput) (*InitiateResult, error) {
	if len(input.BookingIDs) == 0 && len(input.Items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "at least one booking or item is required")
	}
	if !input.Method.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid payment method")
	}
	for _, item := range input.Items {
		if item.Quantity < 1 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "item quantity must be at least 1")
		}
	}

	transactionID := newTransactionID(time.Now())
	currency := strings.TrimSpace(input.Currency)
	if currency == "" {
		currency = "BDT"
	}

	var result *InitiateResult
	err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		bookingRepo := s.bookingRepo.WithTx(tx)
		productRepo := s.productRepo.WithTx(tx)

		items, claimedBookings, err := s.buildLineItems(ctx, bookingRepo, productRepo, userID, input)
		if err != nil {
			return err
		}

		total := decimal.Zero
		for _, item := range items {
			total = total.Add(item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity))))
		}
		if !total.Equal(input.TotalAmount) {
			return pkgerrors.New(pkgerrors.CodeValidation, "total amount does not match line items").
				WithDetails(map[string]any{"expected": total.StringFixed(2)})
		}

		// direct items reserve stock here; booking lines reserved at cart-add
		for _, item := range input.Items {
			if err := productRepo.DecrementStock(ctx, item.ProductID, item.Quantity, true); err != nil {
				return err
			}
		}

		record := &models.Payment{
			UserID:        userID,
			TransactionID: transactionID,
			OrderStatus:   enums.OrderStatusPending,
			PaymentStatus: enums.PaymentStatusPending,
			PaymentMethod: input.Method,
			TotalAmount:   total,
			Currency:      currency,
			ShippingAddress: input.ShippingAddress,
			ContactInfo: &types.ContactInfo{
				Phone: input.Customer.Phone,
				Email: input.Customer.Email,
			},
			Items: items,
		}

		if input.Method == enums.PaymentMethodCOD {
			record.OrderStatus = enums.OrderStatusConfirmed
			if err := s.repo.WithTx(tx).Create(ctx, record); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "creating payment")
			}
			if err := s.claimBookings(ctx, bookingRepo, claimedBookings, transactionID, input.Method); err != nil {
				return err
			}
			result = &InitiateResult{TransactionID: transactionID, PaymentMethod: input.Method}
			return nil
		}

		resp, err := s.gateway.Initiate(ctx, s.gatewayParams(transactionID, total, currency, input))
		if err != nil {
			return err
		}
		if !resp.Accepted() {
			reason := strings.TrimSpace(resp.FailedReason)
			if reason == "" {
				reason = "gateway refused the session"
			}
			return pkgerrors.New(pkgerrors.CodeDependency, "payment initiation failed").
				WithDetails(map[string]any{"reason": reason})
		}

		if err := s.repo.WithTx(tx).Create(ctx, record); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "creating payment")
		}
		if err := s.claimBookings(ctx, bookingRepo, claimedBookings, transactionID, input.Method); err != nil {
			return err
		}

		result = &InitiateResult{
			TransactionID: transactionID,
			PaymentURL:    resp.GatewayPageURL,
			PaymentMethod: input.Method,
		}
		return nil
	})
	if err != nil {
		s.recordFailedAttempt(ctx, userID, transactionID, currency, input, err)
		return nil, err
	}

	return result, nil
}

// buildLineItems resolves booking ids and direct product lines into frozen
// payment items, verifying ownership and availability.
func (s *service) buildLineItems(ctx context.Context, bookingRepo *booking.Repository, productRepo *product.Repository, userID uuid.UUID, input InitiateInput) ([]models.PaymentItem, []uuid.UUID, error) {
	items := make([]models.PaymentItem, 0, len(input.BookingIDs)+len(input.Items))
	claimed := make([]uuid.UUID, 0, len(input.BookingIDs))

	if len(input.BookingIDs) > 0 {
		rows, err := bookingRepo.FindManyForUser(ctx, input.BookingIDs, userID)
		if err != nil {
			return nil, nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading bookings")
		}
		if len(rows) != len(input.BookingIDs) {
			return nil, nil, pkgerrors.New(pkgerrors.CodeNotFound, "booking not found")
		}
		for i := range rows {
			row := &rows[i]
			if row.OrderID != nil || row.OrderStatus != enums.OrderStatusPending {
				return nil, nil, pkgerrors.New(pkgerrors.CodeStateConflict, "booking already processed")
			}
			if row.Product == nil {
				return nil, nil, pkgerrors.New(pkgerrors.CodeInternal, "booking has no product")
			}
			items = append(items, models.PaymentItem{
				ProductID: row.ProductID,
				Quantity:  row.Quantity,
				UnitPrice: row.Product.Price,
			})
			claimed = append(claimed, row.ID)
		}
	}

	for _, item := range input.Items {
		prod, err := productRepo.FindByID(ctx, item.ProductID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
			}
			return nil, nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading product")
		}
		if prod.IsDeleted || !prod.IsActive {
			return nil, nil, pkgerrors.New(pkgerrors.CodeStateConflict, "product is not available")
		}
		items = append(items, models.PaymentItem{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			UnitPrice: prod.Price,
		})
	}

	return items, claimed, nil
}

// claimBookings stamps cart rows with the transaction id. AssignOrder only
// touches unclaimed rows, so a concurrent claim shows up as a short row count
// and rolls the purchase back.
func (s *service) claimBookings(ctx context.Context, bookingRepo *booking.Repository, ids []uuid.UUID, transactionID string, method enums.PaymentMethod) error {
	if len(ids) == 0 {
		return nil
	}
	claimed, err := bookingRepo.AssignOrder(ctx, ids, transactionID, map[string]any{
		"order_status":   string(enums.OrderStatusConfirmed),
		"payment_status": string(enums.PaymentStatusPending),
		"payment_method": string(method),
	})
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "claiming bookings")
	}
	if claimed != int64(len(ids)) {
		return pkgerrors.New(pkgerrors.CodeConflict, "booking already claimed by another payment")
	}
	return nil
}

func (s *service) gatewayParams(transactionID string, total decimal.Decimal, currency string, input InitiateInput) sslcommerz.InitiateParams {
	base := strings.TrimRight(s.cfg.RedirectBaseURL, "/")
	return sslcommerz.InitiateParams{
		TotalAmount:     total,
		Currency:        currency,
		TransactionID:   transactionID,
		SuccessURL:      fmt.Sprintf("%s/payment/success/%s", base, transactionID),
		FailURL:         fmt.Sprintf("%s/payment/fail/%s", base, transactionID),
		CancelURL:       fmt.Sprintf("%s/payment/cancel/%s", base, transactionID),
		CustomerName:    input.Customer.Name,
		CustomerEmail:   input.Customer.Email,
		CustomerPhone:   input.Customer.Phone,
		CustomerAddress: input.Customer.Address,
		ProductName:     "Booking Payment",
		ProductCategory: "Service",
	}
}

// recordFailedAttempt writes a failed payment row after the purchase tx rolled
// back, so gateway refusals stay visible in order history. Validation and
// conflict failures are the client's problem and are not recorded.
func (s *service) recordFailedAttempt(ctx context.Context, userID uuid.UUID, transactionID, currency string, input InitiateInput, cause error) {
	typed := pkgerrors.As(cause)
	if typed == nil || typed.Code() != pkgerrors.CodeDependency {
		return
	}
	_ = s.repo.Create(ctx, &models.Payment{
		UserID:        userID,
		TransactionID: transactionID,
		OrderStatus:   enums.OrderStatusPending,
		PaymentStatus: enums.PaymentStatusFailed,
		PaymentMethod: input.Method,
		TotalAmount:   input.TotalAmount,
		Currency:      currency,
	})
}

// Validate asks the gateway for the authoritative result and applies a
// fixed-value update keyed on the transaction id. Safe to call repeatedly.
func (s *service) Validate(ctx context.Context, transactionID string) (*SettleResult, error) {
	resp, err := s.gateway.Validate(ctx, transactionID)
	if err != nil {
		return nil, err
	}
	if resp.Paid() {
		if err := s.applyPaid(ctx, transactionID, resp); err != nil {
			return nil, err
		}
		return &SettleResult{Success: true}, nil
	}
	if err := s.applyFailed(ctx, transactionID); err != nil {
		return nil, err
	}
	return &SettleResult{Success: false}, nil
}

// HandleIPN processes the gateway's server-to-server notification. The posted
// status is never trusted: a VALID claim is re-verified against the gateway
// before any state changes.
func (s *service) HandleIPN(ctx context.Context, input IPNInput) (*SettleResult, error) {
	if strings.TrimSpace(input.TransactionID) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "tran_id is required")
	}
	if !strings.EqualFold(strings.TrimSpace(input.Status), sslcommerz.StatusValid) {
		return &SettleResult{Success: false}, nil
	}

	resp, err := s.gateway.Validate(ctx, input.TransactionID)
	if err != nil {
		return nil, err
	}
	if !resp.Paid() {
		return &SettleResult{Success: false}, nil
	}

	if err := s.applyPaid(ctx, input.TransactionID, resp); err != nil {
		return nil, err
	}
	return &SettleResult{Success: true}, nil
}

func (s *service) applyPaid(ctx context.Context, transactionID string, resp *sslcommerz.ValidationResponse) error {
	detail := &types.GatewayDetail{
		Currency: resp.Currency,
		Gateway:  "sslcommerz",
		CardType: resp.CardType,
	}
	if amount, err := decimal.NewFromString(resp.Amount); err == nil {
		detail.Amount = amount
	}
	if len(resp.CardNo) >= 4 {
		detail.CardLast4 = resp.CardNo[len(resp.CardNo)-4:]
	}
	if ts, err := time.Parse("2006-01-02 15:04:05", resp.TransactionDate); err == nil {
		detail.TransactionTime = &ts
	}

	return s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		err := s.repo.WithTx(tx).UpdateByTransactionID(ctx, transactionID, models.Payment{
			PaymentStatus: enums.PaymentStatusPaid,
			OrderStatus:   enums.OrderStatusConfirmed,
			GatewayDetail: detail,
		})
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "settling payment")
		}
		err = s.bookingRepo.WithTx(tx).UpdateByOrderID(ctx, transactionID, map[string]any{
			"payment_status": string(enums.PaymentStatusPaid),
			"order_status":   string(enums.OrderStatusConfirmed),
		})
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "settling bookings")
		}
		return nil
	})
}

func (s *service) applyFailed(ctx context.Context, transactionID string) error {
	return s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		err := s.repo.WithTx(tx).UpdateByTransactionID(ctx, transactionID, models.Payment{
			PaymentStatus: enums.PaymentStatusFailed,
		})
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "marking payment failed")
		}
		err = s.bookingRepo.WithTx(tx).UpdateByOrderID(ctx, transactionID, map[string]any{
			"payment_status": string(enums.PaymentStatusFailed),
		})
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "marking bookings failed")
		}
		return nil
	})
}

// Track returns the payment owned by the caller, or NotFound.
func (s *service) Track(ctx context.Context, userID uuid.UUID, transactionID string) (*PaymentDTO, error) {
	row, err := s.repo.FindByTransactionIDForUser(ctx, transactionID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading order")
	}
	return toDTO(row), nil
}

// History lists the caller's payments, newest first.
func (s *service) History(ctx context.Context, userID uuid.UUID) ([]PaymentDTO, error) {
	rows, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing order history")
	}
	return toDTOs(rows), nil
}
