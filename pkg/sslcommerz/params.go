package sslcommerz

import (
	"net/url"
	"strings"

	"github.com/shopspring/decimal"
)

// Gateway transaction statuses reported by the validation API.
const (
	StatusValid       = "VALID"
	StatusValidated   = "VALIDATED"
	StatusFailed      = "FAILED"
	StatusCancelled   = "CANCELLED"
	StatusUnattempted = "UNATTEMPTED"
	StatusExpired     = "EXPIRED"
)

// InitiateParams carries everything a hosted-checkout session needs.
type InitiateParams struct {
	TotalAmount     decimal.Decimal
	Currency        string
	TransactionID   string
	SuccessURL      string
	FailURL         string
	CancelURL       string
	IPNURL          string
	CustomerName    string
	CustomerEmail   string
	CustomerPhone   string
	CustomerAddress string
	CustomerCity    string
	CustomerCountry string
	ProductName     string
	ProductCategory string
}

func (p InitiateParams) toForm(storeID, storePassword string) url.Values {
	form := url.Values{}
	form.Set("store_id", storeID)
	form.Set("store_passwd", storePassword)
	form.Set("total_amount", p.TotalAmount.StringFixed(2))
	form.Set("currency", defaultString(p.Currency, "BDT"))
	form.Set("tran_id", p.TransactionID)
	form.Set("success_url", p.SuccessURL)
	form.Set("fail_url", p.FailURL)
	form.Set("cancel_url", p.CancelURL)
	if p.IPNURL != "" {
		form.Set("ipn_url", p.IPNURL)
	}
	form.Set("shipping_method", "NO")
	form.Set("product_name", defaultString(p.ProductName, "Order"))
	form.Set("product_category", defaultString(p.ProductCategory, "General"))
	form.Set("product_profile", "general")
	form.Set("cus_name", p.CustomerName)
	form.Set("cus_email", p.CustomerEmail)
	form.Set("cus_phone", defaultString(p.CustomerPhone, "N/A"))
	form.Set("cus_add1", defaultString(p.CustomerAddress, "N/A"))
	form.Set("cus_city", defaultString(p.CustomerCity, "N/A"))
	form.Set("cus_country", defaultString(p.CustomerCountry, "Bangladesh"))
	return form
}

// InitiateResponse is the session-creation reply. A missing GatewayPageURL
// means the session was refused regardless of the status field.
type InitiateResponse struct {
	Status         string `json:"status"`
	SessionKey     string `json:"sessionkey"`
	GatewayPageURL string `json:"GatewayPageURL"`
	FailedReason   string `json:"failedreason"`
}

// Accepted reports whether the gateway produced a usable redirect URL.
func (r *InitiateResponse) Accepted() bool {
	return r != nil && strings.TrimSpace(r.GatewayPageURL) != ""
}

// ValidationResponse is the authoritative transaction state.
type ValidationResponse struct {
	Status          string `json:"status"`
	TransactionID   string `json:"tran_id"`
	ValidationID    string `json:"val_id"`
	Amount          string `json:"amount"`
	StoreAmount     string `json:"store_amount"`
	Currency        string `json:"currency"`
	BankTransID     string `json:"bank_tran_id"`
	CardType        string `json:"card_type"`
	CardNo          string `json:"card_no"`
	CardIssuer      string `json:"card_issuer"`
	CardBrand       string `json:"card_brand"`
	TransactionDate string `json:"tran_date"`
	RiskLevel       string `json:"risk_level"`
	RiskTitle       string `json:"risk_title"`
}

// Paid reports whether the gateway considers the transaction settled.
func (r *ValidationResponse) Paid() bool {
	if r == nil {
		return false
	}
	switch strings.ToUpper(strings.TrimSpace(r.Status)) {
	case StatusValid, StatusValidated:
		return true
	default:
		return false
	}
}

func defaultString(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}
