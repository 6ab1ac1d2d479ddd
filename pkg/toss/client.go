package toss

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gigadev/qr-order-backend/pkg/config"
	"github.com/gigadev/qr-order-backend/pkg/logger"
	"github.com/gigadev/qr-order-backend/pkg/types"
)

const confirmPath = "/v1/payments/confirm"

// StatusDone is the gateway's success sentinel for a confirmed payment.
const StatusDone = "DONE"

var (
	errSecretKeyRequired = errors.New("toss secret key is required")
	errBaseURLRequired   = errors.New("toss base url is required")
	errLoggerRequired    = errors.New("toss logger is required")
)

// Confirmer is the surface the payment confirmation service depends on.
type Confirmer interface {
	ConfirmPayment(ctx context.Context, params ConfirmParams) (*Payment, error)
}

// ConfirmParams carries the gateway confirmation request.
type ConfirmParams struct {
	PaymentKey string `json:"paymentKey"`
	OrderID    string `json:"orderId"`
	Amount     int    `json:"amount"`
}

// Receipt is the nested receipt reference on a confirmed payment.
type Receipt struct {
	URL string `json:"url"`
}

// Payment is the success shape returned by the confirm endpoint.
type Payment struct {
	PaymentKey    string        `json:"paymentKey"`
	OrderID       string        `json:"orderId"`
	Status        string        `json:"status"`
	ApprovedAt    string        `json:"approvedAt"`
	Method        string        `json:"method"`
	TransactionID string        `json:"transactionId"`
	TotalAmount   int           `json:"totalAmount"`
	Receipt       *Receipt      `json:"receipt"`
	Raw           types.JSONMap `json:"-"`
}

// APIError is an explicit decline payload from the gateway. Responses
// that match neither the success nor the failure shape are still
// surfaced as an APIError with the raw body captured.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
	Raw        types.JSONMap
}

func (e *APIError) Error() string {
	if e == nil {
		return ""
	}
	if e.Message != "" {
		return fmt.Sprintf("toss confirm declined: %s (%s)", e.Message, e.Code)
	}
	return fmt.Sprintf("toss confirm declined with status %d", e.StatusCode)
}

// Client calls the Toss Payments confirm API with centralized auth,
// logging, and error shaping.
type Client struct {
	httpClient *http.Client
	baseURL    string
	authHeader string
	logger     *logger.Logger
}

// NewClient validates the credentials and builds the gateway wrapper.
func NewClient(ctx context.Context, cfg config.TossConfig, logg *logger.Logger) (*Client, error) {
	if logg == nil {
		return nil, errLoggerRequired
	}
	secret := strings.TrimSpace(cfg.SecretKey)
	if secret == "" {
		return nil, errSecretKeyRequired
	}
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		return nil, errBaseURLRequired
	}

	c := &Client{
		httpClient: &http.Client{Timeout: cfg.RequestTimeout},
		baseURL:    baseURL,
		// Toss uses HTTP basic auth with the secret key as username
		// and an empty password.
		authHeader: "Basic " + base64.StdEncoding.EncodeToString([]byte(secret+":")),
		logger:     logg,
	}

	logg.Info(ctx, "toss client initialized")
	return c, nil
}

// ConfirmPayment executes the confirm call and discriminates the response.
// A non-DONE status, a failure payload, or an unrecognizable body all
// return *APIError; transport failures return the underlying error.
func (c *Client) ConfirmPayment(ctx context.Context, params ConfirmParams) (*Payment, error) {
	c.log(ctx, "request", "confirm_payment", map[string]any{
		"order_id": params.OrderID,
		"amount":   params.Amount,
	})

	body, err := json.Marshal(params)
	if err != nil {
		return nil, fmt.Errorf("encode confirm request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+confirmPath, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build confirm request: %w", err)
	}
	req.Header.Set("Authorization", c.authHeader)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log(ctx, "error", "confirm_payment", map[string]any{"error": err.Error()})
		return nil, fmt.Errorf("call toss confirm: %w", err)
	}
	defer resp.Body.Close()

	rawBody, err := io.ReadAll(resp.Body)
	if err != nil {
		c.log(ctx, "error", "confirm_payment", map[string]any{"error": err.Error()})
		return nil, fmt.Errorf("read toss response: %w", err)
	}

	var raw types.JSONMap
	if len(rawBody) > 0 {
		// A body that is not a JSON object still becomes an APIError
		// below; the decode error itself is not interesting.
		_ = json.Unmarshal(rawBody, &raw)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := failureFromRaw(resp.StatusCode, raw)
		c.log(ctx, "error", "confirm_payment", map[string]any{
			"status_code": resp.StatusCode,
			"error":       apiErr.Error(),
		})
		return nil, apiErr
	}

	var payment Payment
	if err := json.Unmarshal(rawBody, &payment); err != nil || payment.Status != StatusDone {
		apiErr := failureFromRaw(resp.StatusCode, raw)
		if apiErr.Message == "" {
			apiErr.Message = "gateway returned non-DONE status or unexpected format"
		}
		c.log(ctx, "error", "confirm_payment", map[string]any{
			"status": payment.Status,
			"error":  apiErr.Error(),
		})
		return nil, apiErr
	}
	payment.Raw = raw

	c.log(ctx, "response", "confirm_payment", map[string]any{
		"order_id": payment.OrderID,
		"status":   payment.Status,
		"method":   payment.Method,
	})
	return &payment, nil
}

func failureFromRaw(statusCode int, raw types.JSONMap) *APIError {
	apiErr := &APIError{StatusCode: statusCode, Raw: raw}
	if raw == nil {
		return apiErr
	}
	if code, ok := raw["code"].(string); ok {
		apiErr.Code = code
	}
	if message, ok := raw["message"].(string); ok {
		apiErr.Message = message
	}
	if apiErr.Message == "" {
		if status, ok := raw["status"].(string); ok {
			apiErr.Message = status
		}
	}
	return apiErr
}

func (c *Client) log(ctx context.Context, phase, op string, fields map[string]any) {
	if c == nil || c.logger == nil {
		return
	}
	logFields := map[string]any{
		"operation": op,
		"phase":     phase,
	}
	for k, v := range fields {
		logFields[k] = c.redact(k, v)
	}
	ctx = c.logger.WithFields(ctx, logFields)
	switch phase {
	case "error":
		c.logger.Error(ctx, fmt.Sprintf("toss %s", op), errors.New(fmt.Sprint(fields["error"])))
	default:
		c.logger.Info(ctx, fmt.Sprintf("toss %s", phase))
	}
}

func (c *Client) redact(key string, value any) any {
	lower := strings.ToLower(key)
	for _, sensitive := range []string{"key", "secret", "token", "authorization"} {
		if strings.Contains(lower, sensitive) {
			return "[REDACTED]"
		}
	}
	return value
}
