package payments

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/museobook/museum-ticketing-platform/pkg/logging"
)

var gatewayTracer = otel.Tracer("museobook.internal.payments.gateway")

// ErrAlreadyRefunded is returned when the gateway reports the payment has
// already been fully refunded. Callers treat it as success so duplicate
// refund attempts stay idempotent.
var ErrAlreadyRefunded = errors.New("payments: payment already fully refunded")

// Order is a payment order opened at the gateway.
type Order struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"` // minor currency units
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
}

// RefundResult is the gateway's refund acknowledgement.
type RefundResult struct {
	RefundID  string          `json:"refundId"`
	Status    string          `json:"status"`
	CreatedAt time.Time       `json:"createdAt"`
	Raw       json.RawMessage `json:"raw,omitempty"`
}

// Gateway talks to the Razorpay Orders/Refunds API.
type Gateway struct {
	baseURL    string
	keyID      string
	keySecret  string
	httpClient *http.Client
	logger     *logging.Logger
}

// NewGateway creates a payment gateway client.
func NewGateway(baseURL, keyID, keySecret string, logger *logging.Logger) *Gateway {
	if logger == nil {
		logger = logging.Default()
	}
	if baseURL == "" {
		baseURL = "https://api.razorpay.com"
	}
	return &Gateway{
		baseURL:    strings.TrimRight(baseURL, "/"),
		keyID:      keyID,
		keySecret:  keySecret,
		httpClient: &http.Client{Timeout: 15 * time.Second},
		logger:     logger,
	}
}

// CreateOrder opens a payment order for the given amount in minor units.
func (g *Gateway) CreateOrder(ctx context.Context, amountMinor int64, currency, receipt string) (*Order, error) {
	ctx, span := gatewayTracer.Start(ctx, "razorpay.create_order")
	defer span.End()
	span.SetAttributes(
		attribute.Int64("razorpay.amount_minor", amountMinor),
		attribute.String("razorpay.currency", currency),
	)

	body := map[string]any{
		"amount":   amountMinor,
		"currency": currency,
		"receipt":  receipt,
	}
	respBody, err := g.post(ctx, "/v1/orders", body)
	if err != nil {
		return nil, err
	}

	var parsed struct {
		ID       string `json:"id"`
		Amount   int64  `json:"amount"`
		Currency string `json:"currency"`
		Receipt  string `json:"receipt"`
	}
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, fmt.Errorf("payments: order decode: %w", err)
	}

	g.logger.Info("payment order created",
		"order_id", parsed.ID,
		"amount_minor", parsed.Amount,
		"currency", parsed.Currency,
	)

	return &Order{
		ID:       parsed.ID,
		Amount:   parsed.Amount,
		Currency: parsed.Currency,
		Receipt:  parsed.Receipt,
	}, nil
}

// Refund issues a full refund for a captured payment. A gateway response
// saying the payment is already fully refunded maps to ErrAlreadyRefunded.
func (g *Gateway) Refund(ctx context.Context, paymentRef string) (*RefundResult, error) {
	ctx, span := gatewayTracer.Start(ctx, "razorpay.refund")
	defer span.End()
	span.SetAttributes(attribute.String("razorpay.payment_id", paymentRef))

	respBody, err := g.post(ctx, fmt.Sprintf("/v1/payments/%s/refund", paymentRef), map[string]any{})
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "fully refunded") {
			return nil, ErrAlreadyRefunded
		}
		return nil, err
	}

	var parsed struct {
		ID        string `json:"id"`
		Status    string `json:"status"`
		CreatedAt int64  `json:"created_at"`
	}
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, fmt.Errorf("payments: refund decode: %w", err)
	}

	g.logger.Info("refund processed",
		"refund_id", parsed.ID,
		"payment_id", paymentRef,
		"status", parsed.Status,
	)

	return &RefundResult{
		RefundID:  parsed.ID,
		Status:    parsed.Status,
		CreatedAt: time.Unix(parsed.CreatedAt, 0),
		Raw:       respBody,
	}, nil
}

// VerifySignature checks the checkout callback signature:
// HMAC-SHA256(orderID + "|" + paymentID, keySecret) hex-encoded.
func (g *Gateway) VerifySignature(orderID, paymentID, signature string) bool {
	mac := hmac.New(sha256.New, []byte(g.keySecret))
	mac.Write([]byte(orderID + "|" + paymentID))
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}

func (g *Gateway) post(ctx context.Context, path string, body map[string]any) ([]byte, error) {
	reqBody, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("payments: marshal: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+path, bytes.NewReader(reqBody))
	if err != nil {
		return nil, fmt.Errorf("payments: request: %w", err)
	}
	httpReq.SetBasicAuth(g.keyID, g.keySecret)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := g.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("payments: http: %w", err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)

	if resp.StatusCode >= http.StatusMultipleChoices {
		g.logger.Error("gateway call failed",
			"path", path,
			"status", resp.StatusCode,
			"body", string(respBody),
		)
		var gatewayErr struct {
			Error struct {
				Description string `json:"description"`
			} `json:"error"`
		}
		if json.Unmarshal(respBody, &gatewayErr) == nil && gatewayErr.Error.Description != "" {
			return nil, fmt.Errorf("payments: gateway status %d: %s", resp.StatusCode, gatewayErr.Error.Description)
		}
		return nil, fmt.Errorf("payments: gateway status %d: %s", resp.StatusCode, string(respBody))
	}

	return respBody, nil
}
