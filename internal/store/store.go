// Package store provides data persistence interfaces and implementations.
package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	apperrors "tradedesk/internal/errors"
	"tradedesk/internal/models"
)

// Drivers accepted by Open.
const (
	DriverSQLite = "sqlite"
	DriverMemory = "memory"
)

// DataStore defines the interface for data persistence.
type DataStore interface {
	// Journal
	AddTrade(ctx context.Context, trade *models.Trade) error
	GetTrade(ctx context.Context, id string) (*models.Trade, error)
	UpdateTrade(ctx context.Context, id string, update models.TradeUpdate) (*models.Trade, error)
	RemoveTrade(ctx context.Context, id string) error
	ListTrades(ctx context.Context) ([]models.Trade, error)

	// Watchlist
	AddStock(ctx context.Context, stock *models.Stock) error
	GetStock(ctx context.Context, id string) (*models.Stock, error)
	UpdateStockNotes(ctx context.Context, id, notes string) (*models.Stock, error)
	UpdateStockTags(ctx context.Context, id string, tags []string) (*models.Stock, error)
	UpdateStockQuote(ctx context.Context, id string, quote models.Stock) (*models.Stock, error)
	RemoveStock(ctx context.Context, id string) error
	ListStocks(ctx context.Context) ([]models.Stock, error)

	// Shared watchlist snapshots, keyed by share id
	SaveSnapshot(ctx context.Context, id, payload string) error
	GetSnapshot(ctx context.Context, id string) (string, error)

	// Sync
	GetLastSync(dataType SyncDataType) time.Time
	SetLastSync(dataType SyncDataType, t time.Time) error

	// Lifecycle
	Close() error
}

// Open creates the store selected by driver. path is ignored for the
// memory driver.
func Open(driver, path string) (DataStore, error) {
	switch strings.ToLower(driver) {
	case DriverMemory:
		return NewMemoryStore(), nil
	case DriverSQLite, "":
		return NewSQLiteStore(path)
	default:
		return nil, fmt.Errorf("%w: unknown store driver %q", apperrors.ErrConfigInvalid, driver)
	}
}

// prepareTrade normalises and validates a trade before it is written,
// assigning a fresh ID when none is set.
func prepareTrade(t *models.Trade) error {
	t.Normalize()
	if err := t.Validate(); err != nil {
		return err
	}
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	return nil
}

func prepareStock(s *models.Stock) error {
	s.Normalize()
	if err := s.Validate(); err != nil {
		return err
	}
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	return nil
}

// applyQuote copies the market fields of q onto s, leaving identity, notes
// and tags untouched.
func applyQuote(s *models.Stock, q models.Stock) {
	if q.Name != "" {
		s.Name = q.Name
	}
	s.Price = q.Price
	s.Change = q.Change
	s.ChangePercent = q.ChangePercent
	s.Volume = q.Volume
	s.High = q.High
	s.Low = q.Low
	s.PreMarketPrice = q.PreMarketPrice
	s.PreMarketChange = q.PreMarketChange
	s.PreMarketChangePercent = q.PreMarketChangePercent
}

func normalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]bool, len(tags))
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" || seen[tag] {
			continue
		}
		seen[tag] = true
		out = append(out, tag)
	}
	return out
}

func tradeNotFound(id string) error {
	return fmt.Errorf("%w: %s", apperrors.ErrTradeNotFound, id)
}

func stockNotFound(id string) error {
	return fmt.Errorf("%w: %s", apperrors.ErrStockNotFound, id)
}

func shareNotFound(id string) error {
	return fmt.Errorf("%w: %s", apperrors.ErrShareNotFound, id)
}
