package store

import (
	"context"
	"fmt"
	"sync"
	"time"

	apperrors "tradedesk/internal/errors"
	"tradedesk/internal/models"
)

// MemoryStore implements DataStore in process memory. Contents are lost
// when the process exits.
type MemoryStore struct {
	mu        sync.RWMutex
	trades    []models.Trade
	stocks    []models.Stock
	snapshots map[string]string
	syncTimes map[SyncDataType]time.Time
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		snapshots: make(map[string]string),
		syncTimes: make(map[SyncDataType]time.Time),
	}
}

// AddTrade validates and appends a trade, assigning its ID if unset.
func (s *MemoryStore) AddTrade(_ context.Context, trade *models.Trade) error {
	if err := prepareTrade(trade); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.tradeIndex(trade.ID) >= 0 {
		return fmt.Errorf("%w: trade %s", apperrors.ErrDuplicateID, trade.ID)
	}
	s.trades = append(s.trades, trade.Clone())
	return nil
}

// GetTrade returns a copy of the trade with the given ID.
func (s *MemoryStore) GetTrade(_ context.Context, id string) (*models.Trade, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i := s.tradeIndex(id)
	if i < 0 {
		return nil, tradeNotFound(id)
	}
	t := s.trades[i].Clone()
	return &t, nil
}

// UpdateTrade applies a partial edit. The edited trade is re-validated and
// the stored record is left unchanged if validation fails.
func (s *MemoryStore) UpdateTrade(_ context.Context, id string, update models.TradeUpdate) (*models.Trade, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.tradeIndex(id)
	if i < 0 {
		return nil, tradeNotFound(id)
	}
	updated := update.Apply(s.trades[i])
	updated.ID = id
	if err := prepareTrade(&updated); err != nil {
		return nil, err
	}
	s.trades[i] = updated
	out := updated.Clone()
	return &out, nil
}

// RemoveTrade deletes a trade.
func (s *MemoryStore) RemoveTrade(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.tradeIndex(id)
	if i < 0 {
		return tradeNotFound(id)
	}
	s.trades = append(s.trades[:i], s.trades[i+1:]...)
	return nil
}

// ListTrades returns copies of all trades in insertion order.
func (s *MemoryStore) ListTrades(_ context.Context) ([]models.Trade, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Trade, len(s.trades))
	for i := range s.trades {
		out[i] = s.trades[i].Clone()
	}
	return out, nil
}

// AddStock validates and appends a watchlist entry.
func (s *MemoryStore) AddStock(_ context.Context, stock *models.Stock) error {
	stock.Tags = normalizeTags(stock.Tags)
	if err := prepareStock(stock); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stockIndex(stock.ID) >= 0 {
		return fmt.Errorf("%w: stock %s", apperrors.ErrDuplicateID, stock.ID)
	}
	s.stocks = append(s.stocks, stock.Clone())
	return nil
}

// GetStock returns a copy of the watchlist entry with the given ID.
func (s *MemoryStore) GetStock(_ context.Context, id string) (*models.Stock, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i := s.stockIndex(id)
	if i < 0 {
		return nil, stockNotFound(id)
	}
	st := s.stocks[i].Clone()
	return &st, nil
}

// UpdateStockNotes replaces the notes of a watchlist entry.
func (s *MemoryStore) UpdateStockNotes(_ context.Context, id, notes string) (*models.Stock, error) {
	return s.updateStock(id, func(st *models.Stock) { st.Notes = notes })
}

// UpdateStockTags replaces the tag set of a watchlist entry.
func (s *MemoryStore) UpdateStockTags(_ context.Context, id string, tags []string) (*models.Stock, error) {
	tags = normalizeTags(tags)
	return s.updateStock(id, func(st *models.Stock) { st.Tags = tags })
}

// UpdateStockQuote refreshes the market fields of a watchlist entry.
func (s *MemoryStore) UpdateStockQuote(_ context.Context, id string, quote models.Stock) (*models.Stock, error) {
	return s.updateStock(id, func(st *models.Stock) { applyQuote(st, quote) })
}

func (s *MemoryStore) updateStock(id string, edit func(*models.Stock)) (*models.Stock, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.stockIndex(id)
	if i < 0 {
		return nil, stockNotFound(id)
	}
	st := s.stocks[i].Clone()
	edit(&st)
	if err := st.Validate(); err != nil {
		return nil, err
	}
	s.stocks[i] = st
	out := st.Clone()
	return &out, nil
}

// RemoveStock deletes a watchlist entry.
func (s *MemoryStore) RemoveStock(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.stockIndex(id)
	if i < 0 {
		return stockNotFound(id)
	}
	s.stocks = append(s.stocks[:i], s.stocks[i+1:]...)
	return nil
}

// ListStocks returns copies of all watchlist entries in insertion order.
func (s *MemoryStore) ListStocks(_ context.Context) ([]models.Stock, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Stock, len(s.stocks))
	for i := range s.stocks {
		out[i] = s.stocks[i].Clone()
	}
	return out, nil
}

// SaveSnapshot stores an encoded watchlist snapshot, replacing any
// snapshot with the same id.
func (s *MemoryStore) SaveSnapshot(_ context.Context, id, payload string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshots[id] = payload
	return nil
}

// GetSnapshot returns the encoded snapshot stored under id.
func (s *MemoryStore) GetSnapshot(_ context.Context, id string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	payload, ok := s.snapshots[id]
	if !ok {
		return "", shareNotFound(id)
	}
	return payload, nil
}

// GetLastSync returns the last sync time for a data type.
func (s *MemoryStore) GetLastSync(dataType SyncDataType) time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.syncTimes[dataType]
}

// SetLastSync sets the last sync time for a data type.
func (s *MemoryStore) SetLastSync(dataType SyncDataType, t time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.syncTimes[dataType] = t
	return nil
}

// Close is a no-op.
func (s *MemoryStore) Close() error {
	return nil
}

func (s *MemoryStore) tradeIndex(id string) int {
	for i := range s.trades {
		if s.trades[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *MemoryStore) stockIndex(id string) int {
	for i := range s.stocks {
		if s.stocks[i].ID == id {
			return i
		}
	}
	return -1
}
