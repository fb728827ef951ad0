// Package sslcommerz wraps the SSLCommerz hosted-checkout HTTP API with
// centralized credentials, logging, timeouts, and error mapping. The gateway
// has no official Go SDK; the session-initiation and validation endpoints are
// plain form/query HTTP calls.
package sslcommerz

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/joymart/joymart-backend/pkg/config"
	pkgerrors "github.com/joymart/joymart-backend/pkg/errors"
	"github.com/joymart/joymart-backend/pkg/logger"
)

const (
	sandboxBaseURL = "https://sandbox.sslcommerz.com"
	liveBaseURL    = "https://securepay.sslcommerz.com"

	initiatePath   = "/gwprocess/v4/api.php"
	validationPath = "/validator/api/validationserverAPI.php"
)

var (
	errStoreIDRequired  = errors.New("sslcommerz store id is required")
	errStorePwdRequired = errors.New("sslcommerz store password is required")
	errLoggerRequired   = errors.New("sslcommerz logger is required")
)

// Client exposes the gateway primitives the payment service needs.
type Client struct {
	httpClient    *http.Client
	storeID       string
	storePassword string
	baseURL       string
	logger        *logger.Logger
}

// NewClient validates the credentials and builds the gateway wrapper.
func NewClient(cfg config.SSLCommerzConfig, logg *logger.Logger) (*Client, error) {
	if logg == nil {
		return nil, errLoggerRequired
	}

	storeID := strings.TrimSpace(cfg.StoreID)
	if storeID == "" {
		return nil, errStoreIDRequired
	}
	storePassword := strings.TrimSpace(cfg.StorePassword)
	if storePassword == "" {
		return nil, errStorePwdRequired
	}

	baseURL := sandboxBaseURL
	if cfg.Live {
		baseURL = liveBaseURL
	}

	return &Client{
		httpClient:    &http.Client{Timeout: cfg.HTTPTimeout},
		storeID:       storeID,
		storePassword: storePassword,
		baseURL:       baseURL,
		logger:        logg,
	}, nil
}

// BaseURL reports the resolved gateway endpoint, sandbox or live.
func (c *Client) BaseURL() string {
	if c == nil {
		return ""
	}
	return c.baseURL
}

// Initiate creates a hosted-checkout session and returns the redirect URL.
func (c *Client) Initiate(ctx context.Context, params InitiateParams) (*InitiateResponse, error) {
	form := params.toForm(c.storeID, c.storePassword)
	c.log(ctx, "request", "initiate", map[string]any{
		"tran_id": params.TransactionID,
		"amount":  params.TotalAmount.String(),
	})

	var resp InitiateResponse
	if err := c.postForm(ctx, initiatePath, form, &resp); err != nil {
		c.log(ctx, "error", "initiate", map[string]any{"error": err.Error()})
		return nil, err
	}

	c.log(ctx, "response", "initiate", map[string]any{
		"tran_id": params.TransactionID,
		"status":  resp.Status,
	})
	return &resp, nil
}

// Validate asks the gateway for the authoritative state of a transaction.
// SSLCommerz keys validation on the transaction id when queried by merchants.
func (c *Client) Validate(ctx context.Context, transactionID string) (*ValidationResponse, error) {
	transactionID = strings.TrimSpace(transactionID)
	if transactionID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "transaction id is required")
	}

	query := url.Values{}
	query.Set("val_id", transactionID)
	query.Set("store_id", c.storeID)
	query.Set("store_passwd", c.storePassword)
	query.Set("format", "json")

	c.log(ctx, "request", "validate", map[string]any{"tran_id": transactionID})

	var resp ValidationResponse
	if err := c.getJSON(ctx, validationPath, query, &resp); err != nil {
		c.log(ctx, "error", "validate", map[string]any{"error": err.Error()})
		return nil, err
	}

	c.log(ctx, "response", "validate", map[string]any{
		"tran_id": transactionID,
		"status":  resp.Status,
	})
	return &resp, nil
}

func (c *Client) postForm(ctx context.Context, path string, form url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, strings.NewReader(form.Encode()))
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "building gateway request")
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return c.do(req, out)
}

func (c *Client) getJSON(ctx context.Context, path string, query url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+query.Encode(), nil)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "building gateway request")
	}
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "calling payment gateway")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reading gateway response")
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return pkgerrors.New(pkgerrors.CodeDependency,
			fmt.Sprintf("payment gateway returned status %d", resp.StatusCode))
	}
	if err := json.Unmarshal(body, out); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decoding gateway response")
	}
	return nil
}

func (c *Client) log(ctx context.Context, phase, op string, fields map[string]any) {
	if c == nil || c.logger == nil {
		return
	}
	logFields := map[string]any{"operation": op, "phase": phase}
	for k, v := range fields {
		logFields[k] = c.redact(k, v)
	}
	ctx = c.logger.WithFields(ctx, logFields)
	switch phase {
	case "error":
		c.logger.Error(ctx, fmt.Sprintf("sslcommerz %s", op), errors.New(fmt.Sprint(fields["error"])))
	default:
		c.logger.Info(ctx, fmt.Sprintf("sslcommerz %s", phase))
	}
}

func (c *Client) redact(key string, value any) any {
	lower := strings.ToLower(key)
	for _, sensitive := range []string{"card", "passwd", "secret", "email", "phone"} {
		if strings.Contains(lower, sensitive) {
			return "[REDACTED]"
		}
	}
	return value
}
