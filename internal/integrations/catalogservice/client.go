package catalogservice

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/m04kA/SMC-EventBooking/internal/domain"
	"github.com/m04kA/SMC-EventBooking/pkg/money"
)

// Client клиент каталога услуг и пакетов
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient создает новый экземпляр клиента каталога
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// GetPackage получает пакет услуг. Исходный JSON пакета сохраняется в снимке как есть
func (c *Client) GetPackage(ctx context.Context, packageID int64) (*domain.PackageSnapshot, error) {
	url := fmt.Sprintf("%s/internal/packages/%d", c.baseURL, packageID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create request: %v", ErrInternal, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to execute request: %v", ErrInternal, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read response: %v", ErrInternal, err)
	}

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return nil, ErrPackageNotFound
	default:
		return nil, fmt.Errorf("%w: unexpected status code %d: %s", ErrInvalidResponse, resp.StatusCode, string(body))
	}

	var pkg Package
	if err := json.Unmarshal(body, &pkg); err != nil {
		return nil, fmt.Errorf("%w: failed to decode response: %v", ErrInvalidResponse, err)
	}
	if pkg.Price <= 0 {
		return nil, fmt.Errorf("%w: package %d has non-positive price", ErrInvalidResponse, packageID)
	}
	if pkg.Price > domain.MaxPackagePrice {
		return nil, fmt.Errorf("%w: package %d price %d exceeds %d", ErrInvalidResponse, packageID, pkg.Price, domain.MaxPackagePrice)
	}
	if !pkg.Active {
		return nil, ErrPackageInactive
	}
	if pkg.Currency == "" {
		pkg.Currency = money.DefaultCurrency
	}

	return &domain.PackageSnapshot{
		ID:        pkg.ID,
		EventID:   pkg.EventID,
		ServiceID: pkg.ServiceID,
		Name:      pkg.Name,
		Price:     pkg.Price,
		Currency:  pkg.Currency,
		Raw:       json.RawMessage(body),
	}, nil
}
