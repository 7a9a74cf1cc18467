package httpclient

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Quotes are the conversion rates of one base currency: how many units of
// each symbol one unit of Base buys.
type Quotes struct {
	Base      string
	Rates     map[string]decimal.Decimal
	UpdatedAt time.Time
}

type ExchangeRateClient struct {
	http    *http.Client
	baseURL string
}

type apiResponse struct {
	Result             string                     `json:"result"`
	ErrorType          string                     `json:"error-type"`
	BaseCode           string                     `json:"base_code"`
	TimeLastUpdateUnix int64                      `json:"time_last_update_unix"`
	ConversionRates    map[string]decimal.Decimal `json:"conversion_rates"`
}

// GetQuotes fetches the latest conversion rates for base. Rates are decoded
// straight into decimals so no float rounding reaches the relayed values.
func (c *ExchangeRateClient) GetQuotes(ctx context.Context, base string) (Quotes, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return Quotes{}, fmt.Errorf("failed to parse base URL: %w", err)
	}

	u.Path = strings.TrimSuffix(u.Path, "/") + "/" + base

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return Quotes{}, fmt.Errorf("failed to create request for currency %q: %w", base, err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return Quotes{}, fmt.Errorf("failed to execute request for currency %q: %w", base, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return Quotes{}, fmt.Errorf("unexpected status code %d for currency %q: %s", resp.StatusCode, base, resp.Status)
	}

	var body apiResponse
	if err = json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return Quotes{}, fmt.Errorf("failed to decode response for currency %q: %w", base, err)
	}

	if body.Result != "success" {
		return Quotes{}, fmt.Errorf("api returned non-success result for currency %q: %s %s", base, body.Result, body.ErrorType)
	}

	out := Quotes{Base: body.BaseCode, Rates: body.ConversionRates}
	if out.Base == "" {
		out.Base = base
	}
	if body.TimeLastUpdateUnix > 0 {
		out.UpdatedAt = time.Unix(body.TimeLastUpdateUnix, 0).UTC()
	}
	return out, nil
}

func NewExchangeRateClient(httpClient *http.Client, baseURL string) *ExchangeRateClient {
	return &ExchangeRateClient{http: httpClient, baseURL: baseURL}
}
