package types

import (
	"time"

	"github.com/shopspring/decimal"
)

// GatewayDetail snapshots what the payment gateway reported for a settled
// transaction. Stored as jsonb; never recomputed after capture.
type GatewayDetail struct {
	Amount          decimal.Decimal `json:"amount"`
	Currency        string          `json:"currency"`
	Gateway         string          `json:"gateway,omitempty"`
	CardType        string          `json:"card_type,omitempty"`
	CardLast4       string          `json:"card_last4,omitempty"`
	TransactionTime *time.Time      `json:"transaction_time,omitempty"`
}
