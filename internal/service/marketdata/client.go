package marketdata

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"EquityPulse/internal/domain/models"
	xhttp "EquityPulse/pkg/http"
	applogger "EquityPulse/pkg/logger"
	"EquityPulse/pkg/util"
)

// Client fetches daily OHLCV history from an upstream market data provider.
type Client struct {
	baseURL string
	apiKey  string
	retries int
	backoff time.Duration
	http    *xhttp.Client
	log     *applogger.Logger
}

// Option configures Client.
type Option func(*Client)

// WithRetries sets retry attempts and the initial backoff. Backoff doubles
// per attempt.
func WithRetries(n int, backoff time.Duration) Option {
	return func(c *Client) {
		c.retries = n
		c.backoff = backoff
	}
}

// WithTimeout sets the per-request HTTP timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.http = xhttp.NewClient(xhttp.WithTimeout(d))
	}
}

// WithLogger sets the structured logger.
func WithLogger(l *applogger.Logger) Option {
	return func(c *Client) {
		c.log = l
	}
}

// New creates a market data client.
func New(baseURL, apiKey string, opts ...Option) *Client {
	c := &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		retries: 3,
		backoff: 2 * time.Second,
		http:    xhttp.NewClient(xhttp.WithTimeout(30 * time.Second)),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type barDTO struct {
	Date   string  `json:"date"`
	Open   float64 `json:"open"`
	High   float64 `json:"high"`
	Low    float64 `json:"low"`
	Close  float64 `json:"close"`
	Volume *int64  `json:"volume"`
}

type historyDTO struct {
	Symbol string   `json:"symbol"`
	Name   string   `json:"name"`
	Sector string   `json:"sector"`
	Bars   []barDTO `json:"bars"`
}

// FetchHistory downloads up to days of daily bars for a symbol, retrying
// transient failures with a doubling backoff.
func (c *Client) FetchHistory(ctx context.Context, symbol string, days int) (models.Company, []models.PricePoint, error) {
	var dto historyDTO
	if err := c.fetch(ctx, symbol, days, &dto); err != nil {
		return models.Company{}, nil, err
	}

	company := models.Company{
		Symbol: util.NormalizeSymbol(dto.Symbol),
		Name:   dto.Name,
		Sector: dto.Sector,
	}
	if company.Symbol == "" {
		company.Symbol = util.NormalizeSymbol(symbol)
	}

	bars := make([]models.PricePoint, 0, len(dto.Bars))
	for _, b := range dto.Bars {
		d, ok := util.ParseDay(b.Date)
		if !ok {
			if c.log != nil {
				c.log.Warn("skipping bar with bad date",
					applogger.String("symbol", symbol),
					applogger.String("date", b.Date),
				)
			}
			continue
		}
		bars = append(bars, models.PricePoint{
			Symbol: company.Symbol,
			Date:   d,
			Open:   b.Open,
			High:   b.High,
			Low:    b.Low,
			Close:  b.Close,
			Volume: b.Volume,
		})
	}
	return company, bars, nil
}

func (c *Client) fetch(ctx context.Context, symbol string, days int, dest *historyDTO) error {
	opts := &xhttp.RequestOptions{
		Method: xhttp.MethodGet,
		URL:    fmt.Sprintf("%s/v1/daily/%s", c.baseURL, symbol),
		QueryParams: map[string][]string{
			"days": {strconv.Itoa(days)},
		},
	}
	if c.apiKey != "" {
		opts.Headers = map[string]string{"X-Api-Key": c.apiKey}
	}

	backoff := c.backoff
	var lastErr error
	for attempt := 1; attempt <= c.retries; attempt++ {
		lastErr = c.http.SendAndParse(ctx, opts, dest)
		if lastErr == nil {
			return nil
		}
		if c.log != nil {
			c.log.Warn("history fetch failed",
				applogger.String("symbol", symbol),
				applogger.Int("attempt", attempt),
				applogger.Error(lastErr),
			)
		}
		if attempt == c.retries {
			break
		}
		select {
		case <-time.After(backoff):
		case <-ctx.Done():
			return ctx.Err()
		}
		backoff *= 2
	}
	return fmt.Errorf("fetch history %s after %d attempts: %w", symbol, c.retries, lastErr)
}
