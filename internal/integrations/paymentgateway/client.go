package paymentgateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/m04kA/SMC-EventBooking/internal/domain"
)

// Client клиент бэкенда платежного шлюза
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewClient создает новый экземпляр клиента платежного шлюза
func NewClient(baseURL, apiKey string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// CreateOrder создает заказ в шлюзе. Сумма в минимальных единицах валюты
func (c *Client) CreateOrder(ctx context.Context, amountMinor int64, currency, receipt string) (string, error) {
	var order OrderResponse
	status, body, err := c.post(ctx, "/payments/orders", CreateOrderRequest{
		Amount:   amountMinor,
		Currency: currency,
		Receipt:  receipt,
	}, &order)
	if err != nil {
		return "", err
	}

	if status != http.StatusOK && status != http.StatusCreated {
		return "", fmt.Errorf("%w: create order: status %d: %s", ErrGateway, status, body)
	}
	if order.OrderID == "" {
		return "", fmt.Errorf("%w: create order: empty order id", ErrInvalidResponse)
	}
	if order.Amount != 0 && order.Amount != amountMinor {
		return "", fmt.Errorf("%w: create order: amount mismatch %d != %d", ErrInvalidResponse, order.Amount, amountMinor)
	}

	return order.OrderID, nil
}

// Verify проверяет подпись платежа. Любой ответ кроме 2xx считается отказом
func (c *Client) Verify(ctx context.Context, confirmation domain.PaymentConfirmation) error {
	status, body, err := c.post(ctx, "/payments/verify", VerifyRequest{
		PaymentID: confirmation.PaymentID,
		OrderID:   confirmation.OrderID,
		Signature: confirmation.Signature,
	}, nil)
	if err != nil {
		return err
	}

	if status < 200 || status >= 300 {
		return fmt.Errorf("%w: status %d: %s", ErrVerificationRejected, status, body)
	}
	return nil
}

func (c *Client) post(ctx context.Context, path string, payload interface{}, dst interface{}) (int, string, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return 0, "", fmt.Errorf("%w: failed to encode request: %v", ErrInternal, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(raw))
	if err != nil {
		return 0, "", fmt.Errorf("%w: failed to create request: %v", ErrInternal, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, "", fmt.Errorf("%w: failed to execute request: %v", ErrInternal, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, "", fmt.Errorf("%w: failed to read response: %v", ErrInternal, err)
	}

	if dst != nil && resp.StatusCode >= 200 && resp.StatusCode < 300 {
		if err := json.Unmarshal(body, dst); err != nil {
			return resp.StatusCode, string(body), fmt.Errorf("%w: failed to decode response: %v", ErrInvalidResponse, err)
		}
	}

	return resp.StatusCode, string(body), nil
}
