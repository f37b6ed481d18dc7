// Package quote looks up a single market quote from a public chart
// endpoint and maps it onto a watchlist entry.
package quote

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	apperrors "tradedesk/internal/errors"
	"tradedesk/internal/models"
	"tradedesk/internal/resilience"
	"tradedesk/pkg/utils"
)

// DefaultBaseURL is the public chart API host.
const DefaultBaseURL = "https://query1.finance.yahoo.com"

// DefaultUserAgent is sent with every lookup; the chart API rejects
// requests without a browser-like agent.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"

// Config configures a Client.
type Config struct {
	BaseURL     string
	Timeout     time.Duration
	MaxAttempts int
	UserAgent   string

	// Repeated connection failures open the breaker and later lookups fail
	// fast until its cooldown passes.
	Breaker resilience.BreakerConfig
}

// Provider looks up quotes by symbol.
type Provider interface {
	Lookup(ctx context.Context, symbol string) (*models.Stock, error)
}

// Client fetches quotes over HTTP.
type Client struct {
	http      *http.Client
	baseURL   string
	userAgent string
	retry     utils.RetryConfig
	breaker   *resilience.Breaker
	logger    zerolog.Logger
}

// NewClient creates a quote client. Zero config values take defaults.
func NewClient(cfg Config, logger zerolog.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultUserAgent
	}

	retry := utils.DefaultRetryConfig()
	if cfg.MaxAttempts > 0 {
		retry.MaxAttempts = cfg.MaxAttempts
	}
	retry.Retryable = isConnectionFailure
	cfg.Breaker.IsFailure = isConnectionFailure

	return &Client{
		http:      &http.Client{Timeout: cfg.Timeout},
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		userAgent: cfg.UserAgent,
		retry:     retry,
		breaker:   resilience.NewBreaker("quote", cfg.Breaker),
		logger:    logger.With().Str("component", "quote").Logger(),
	}
}

// chartResponse is the subset of the chart payload that is read.
type chartResponse struct {
	Chart struct {
		Result []struct {
			Meta *chartMeta `json:"meta"`
		} `json:"result"`
	} `json:"chart"`
}

type chartMeta struct {
	Symbol                 string   `json:"symbol"`
	RegularMarketPrice     *float64 `json:"regularMarketPrice"`
	PreviousClose          *float64 `json:"previousClose"`
	ChartPreviousClose     *float64 `json:"chartPreviousClose"`
	RegularMarketVolume    *int64   `json:"regularMarketVolume"`
	RegularMarketDayHigh   *float64 `json:"regularMarketDayHigh"`
	RegularMarketDayLow    *float64 `json:"regularMarketDayLow"`
	PreMarketPrice         *float64 `json:"preMarketPrice"`
	PreMarketChange        *float64 `json:"preMarketChange"`
	PreMarketChangePercent *float64 `json:"preMarketChangePercent"`
}

// Lookup fetches the current quote for symbol. Every failure is reported as
// a DataError wrapping ErrSymbolNotFound; transport failures additionally
// wrap ErrConnectionFailed and are the only ones retried.
func (c *Client) Lookup(ctx context.Context, symbol string) (*models.Stock, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		return nil, apperrors.NewValidationError("symbol", symbol, "must not be empty")
	}

	stock, err := resilience.Call(ctx, c.breaker, func(ctx context.Context) (*models.Stock, error) {
		return utils.RetryWithResult(ctx, c.retry, func() (*models.Stock, error) {
			return c.fetch(ctx, symbol)
		})
	})
	if err != nil {
		c.logger.Warn().Err(err).Str("symbol", symbol).Msg("Quote lookup failed")
		if errors.Is(err, resilience.ErrOpen) {
			return nil, notFound(symbol, "quote service unavailable", fmt.Errorf("%w: %w", apperrors.ErrConnectionFailed, err))
		}
		// cancellation during backoff surfaces the bare context error
		if !errors.Is(err, apperrors.ErrSymbolNotFound) {
			return nil, notFound(symbol, "lookup cancelled", err)
		}
		return nil, err
	}

	c.logger.Debug().Str("symbol", symbol).Float64("price", stock.Price).Msg("Quote fetched")
	return stock, nil
}

func (c *Client) fetch(ctx context.Context, symbol string) (*models.Stock, error) {
	reqURL := c.baseURL + "/v8/finance/chart/" + url.PathEscape(symbol)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, notFound(symbol, "invalid request", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	c.logger.Debug().Str("url", reqURL).Msg("Quote request")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, notFound(symbol, "request failed", fmt.Errorf("%w: %w", apperrors.ErrConnectionFailed, err))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, notFound(symbol, "reading response", fmt.Errorf("%w: %w", apperrors.ErrConnectionFailed, err))
	}

	if resp.StatusCode != http.StatusOK {
		return nil, notFound(symbol, fmt.Sprintf("HTTP status %d", resp.StatusCode), nil)
	}
	if len(strings.TrimSpace(string(body))) == 0 {
		return nil, notFound(symbol, "empty response", nil)
	}

	var chart chartResponse
	if err := json.Unmarshal(body, &chart); err != nil {
		return nil, notFound(symbol, "invalid JSON response", err)
	}
	if len(chart.Chart.Result) == 0 || chart.Chart.Result[0].Meta == nil {
		return nil, notFound(symbol, "no chart result", nil)
	}

	return stockFromMeta(symbol, chart.Chart.Result[0].Meta)
}

// stockFromMeta maps chart metadata onto a watchlist entry.
func stockFromMeta(symbol string, m *chartMeta) (*models.Stock, error) {
	if m.RegularMarketPrice == nil {
		return nil, notFound(symbol, "no market price", nil)
	}
	price := *m.RegularMarketPrice

	prevClose := m.PreviousClose
	if prevClose == nil {
		prevClose = m.ChartPreviousClose
	}

	s := &models.Stock{
		Symbol:                 symbol,
		Price:                  price,
		High:                   orDefault(m.RegularMarketDayHigh, price),
		Low:                    orDefault(m.RegularMarketDayLow, price),
		PreMarketPrice:         m.PreMarketPrice,
		PreMarketChange:        m.PreMarketChange,
		PreMarketChangePercent: m.PreMarketChangePercent,
		Tags:                   []string{},
	}
	if m.Symbol != "" {
		s.Symbol = strings.ToUpper(m.Symbol)
	}
	s.Name = DefaultName(s.Symbol)
	if m.RegularMarketVolume != nil {
		s.Volume = *m.RegularMarketVolume
	}
	if prevClose != nil {
		s.Change = price - *prevClose
		if *prevClose != 0 {
			s.ChangePercent = s.Change / *prevClose * 100
		}
	}
	return s, nil
}

// DefaultName is the display name given to a looked-up symbol.
func DefaultName(symbol string) string {
	return symbol + " Inc."
}

// orDefault returns *v, or def when v is nil or zero.
func orDefault(v *float64, def float64) float64 {
	if v == nil || *v == 0 {
		return def
	}
	return *v
}

// BreakerStats reports the state of the lookup circuit breaker.
func (c *Client) BreakerStats() resilience.Stats {
	return c.breaker.Stats()
}

func isConnectionFailure(err error) bool {
	return apperrors.Is(err, apperrors.ErrConnectionFailed)
}

func notFound(symbol, message string, cause error) error {
	err := apperrors.ErrSymbolNotFound
	if cause != nil {
		err = fmt.Errorf("%w: %w", apperrors.ErrSymbolNotFound, cause)
	}
	return apperrors.NewDataError("quote", symbol, message, err)
}
