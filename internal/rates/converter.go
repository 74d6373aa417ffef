// Package rates refreshes the workspace currency table from Yahoo Finance
// forex quotes.
package rates

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"wealthtrack/internal/models"
)

const (
	yahooChartURL = "https://query1.finance.yahoo.com/v8/finance/chart"
	yahooUA       = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7)"
)

type chartMeta struct {
	Symbol             string  `json:"symbol"`
	Currency           string  `json:"currency"`
	RegularMarketPrice float64 `json:"regularMarketPrice"`
}

type chartError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

type chartResponse struct {
	Chart struct {
		Result []struct {
			Meta chartMeta `json:"meta"`
		} `json:"result"`
		Error *chartError `json:"error"`
	} `json:"chart"`
}

// Converter fetches home-currency exchange rates. Rates are cached for the
// lifetime of the converter, so one instance should serve one refresh run.
type Converter struct {
	httpClient *http.Client
	baseURL    string
	mu         sync.RWMutex
	rates      map[string]float64 // "USD" -> 7.23 (1 USD = 7.23 CNY)
}

// NewConverter creates a Converter. A nil client gets a 10 second timeout.
func NewConverter(httpClient *http.Client) *Converter {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &Converter{
		httpClient: httpClient,
		baseURL:    yahooChartURL,
		rates:      make(map[string]float64),
	}
}

// Ticker returns the Yahoo forex symbol quoting code in the home currency.
func Ticker(code string) string {
	return strings.ToUpper(code) + models.HomeCurrency + "=X"
}

// GetRate returns how many units of the home currency one unit of code buys.
func (c *Converter) GetRate(ctx context.Context, code string) (float64, error) {
	from := strings.ToUpper(code)
	if from == models.HomeCurrency {
		return 1.0, nil
	}

	c.mu.RLock()
	rate, ok := c.rates[from]
	c.mu.RUnlock()
	if ok {
		return rate, nil
	}

	rate, err := c.fetchRate(ctx, from)
	if err != nil {
		return 0, err
	}

	c.mu.Lock()
	c.rates[from] = rate
	c.mu.Unlock()

	return rate, nil
}

// Quote is a refreshed rate for one currency.
type Quote struct {
	Code string
	Rate float64
}

// FetchError records a currency whose rate could not be refreshed.
type FetchError struct {
	Code string
	Err  error
}

func (e FetchError) Error() string { return e.Code + ": " + e.Err.Error() }

// Refresh fetches a rate for every non-home currency in the table. A failed
// currency does not stop the others.
func (c *Converter) Refresh(ctx context.Context, currencies []models.Currency) ([]Quote, []FetchError) {
	var quotes []Quote
	var failures []FetchError
	for _, cur := range currencies {
		if strings.EqualFold(cur.Code, models.HomeCurrency) {
			continue
		}
		rate, err := c.GetRate(ctx, cur.Code)
		if err != nil {
			failures = append(failures, FetchError{Code: cur.Code, Err: err})
			continue
		}
		quotes = append(quotes, Quote{Code: cur.Code, Rate: rate})
	}
	return quotes, failures
}

func (c *Converter) fetchRate(ctx context.Context, code string) (float64, error) {
	ticker := Ticker(code)
	url := c.baseURL + "/" + ticker + "?interval=1d&range=1d"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, fmt.Errorf("building forex request: %w", err)
	}
	req.Header.Set("User-Agent", yahooUA)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("forex http request for %s: %w", ticker, err)
	}
	defer func() { _ = resp.Body.Close() }()

	// Yahoo reports unknown symbols as 404 with a chart error body.
	var chart chartResponse
	decodeErr := json.NewDecoder(resp.Body).Decode(&chart)
	if decodeErr == nil && chart.Chart.Error != nil {
		return 0, fmt.Errorf("forex chart error for %s: %s: %s", ticker, chart.Chart.Error.Code, chart.Chart.Error.Description)
	}
	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("forex request for %s: unexpected status %d", ticker, resp.StatusCode)
	}
	if decodeErr != nil {
		return 0, fmt.Errorf("decoding forex response for %s: %w", ticker, decodeErr)
	}

	if len(chart.Chart.Result) == 0 {
		return 0, fmt.Errorf("no forex results for %s", ticker)
	}

	rate := chart.Chart.Result[0].Meta.RegularMarketPrice
	if rate <= 0 {
		return 0, fmt.Errorf("invalid forex rate for %s: %f", ticker, rate)
	}
	return rate, nil
}
