package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"

	apperrors "tradedesk/internal/errors"
	"tradedesk/internal/models"
)

// SQLiteStore implements DataStore using SQLite.
type SQLiteStore struct {
	db *sql.DB
	// serialises read-modify-write updates
	mu        sync.Mutex
	syncMu    sync.RWMutex
	syncTimes map[SyncDataType]time.Time
}

// NewSQLiteStore creates a new SQLite-based data store.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Configure connection pool for concurrent access
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)

	store := &SQLiteStore{
		db:        db,
		syncTimes: make(map[SyncDataType]time.Time),
	}

	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return store, nil
}

// initSchema creates all required tables and indexes.
func (s *SQLiteStore) initSchema() error {
	schema := `
	-- Journal trades; option, greek and risk fields live in extras
	CREATE TABLE IF NOT EXISTS trades (
		id TEXT PRIMARY KEY,
		symbol TEXT NOT NULL,
		side TEXT NOT NULL,
		asset_type TEXT NOT NULL,
		quantity INTEGER NOT NULL,
		price REAL NOT NULL,
		date TEXT NOT NULL,
		time TEXT NOT NULL,
		strategy TEXT,
		notes TEXT,
		tags TEXT,
		pnl REAL,
		holding_period REAL,
		extras TEXT,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	-- Watchlist entries
	CREATE TABLE IF NOT EXISTS stocks (
		id TEXT PRIMARY KEY,
		symbol TEXT NOT NULL,
		name TEXT,
		price REAL NOT NULL,
		change REAL,
		change_percent REAL,
		volume INTEGER,
		high REAL,
		low REAL,
		pre_market_price REAL,
		pre_market_change REAL,
		pre_market_change_percent REAL,
		notes TEXT,
		tags TEXT,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	-- Encoded shared watchlist snapshots
	CREATE TABLE IF NOT EXISTS shared_watchlists (
		id TEXT PRIMARY KEY,
		payload TEXT NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	-- Sync status table
	CREATE TABLE IF NOT EXISTS sync_status (
		data_type TEXT PRIMARY KEY,
		last_sync DATETIME NOT NULL,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_trades_date ON trades(date);
	CREATE INDEX IF NOT EXISTS idx_trades_symbol ON trades(symbol);
	CREATE INDEX IF NOT EXISTS idx_stocks_symbol ON stocks(symbol);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// ============================================================================
// Trades Methods
// ============================================================================

// tradeExtras holds the optional trade fields stored as JSON.
type tradeExtras struct {
	EntryPrice *float64 `json:"entryPrice,omitempty"`
	ExitPrice  *float64 `json:"exitPrice,omitempty"`
	StopLoss   *float64 `json:"stopLoss,omitempty"`
	TakeProfit *float64 `json:"takeProfit,omitempty"`
	Commission *float64 `json:"commission,omitempty"`

	StrikePrice      *float64 `json:"strikePrice,omitempty"`
	ExpirationDate   string   `json:"expirationDate,omitempty"`
	DaysToExpiration *int     `json:"daysToExpiration,omitempty"`

	EntryIV    *float64 `json:"entryIV,omitempty"`
	ExitIV     *float64 `json:"exitIV,omitempty"`
	EntryDelta *float64 `json:"entryDelta,omitempty"`
	ExitDelta  *float64 `json:"exitDelta,omitempty"`
	EntryGamma *float64 `json:"entryGamma,omitempty"`
	ExitGamma  *float64 `json:"exitGamma,omitempty"`
	EntryTheta *float64 `json:"entryTheta,omitempty"`
	ExitTheta  *float64 `json:"exitTheta,omitempty"`
	EntryVega  *float64 `json:"entryVega,omitempty"`
	ExitVega   *float64 `json:"exitVega,omitempty"`
	EntryRho   *float64 `json:"entryRho,omitempty"`
	ExitRho    *float64 `json:"exitRho,omitempty"`

	MAE *float64 `json:"mae,omitempty"`
	MFE *float64 `json:"mfe,omitempty"`
}

func extrasOf(t *models.Trade) tradeExtras {
	return tradeExtras{
		EntryPrice: t.EntryPrice, ExitPrice: t.ExitPrice, StopLoss: t.StopLoss,
		TakeProfit: t.TakeProfit, Commission: t.Commission,
		StrikePrice: t.StrikePrice, ExpirationDate: t.ExpirationDate, DaysToExpiration: t.DaysToExpiration,
		EntryIV: t.EntryIV, ExitIV: t.ExitIV, EntryDelta: t.EntryDelta, ExitDelta: t.ExitDelta,
		EntryGamma: t.EntryGamma, ExitGamma: t.ExitGamma, EntryTheta: t.EntryTheta, ExitTheta: t.ExitTheta,
		EntryVega: t.EntryVega, ExitVega: t.ExitVega, EntryRho: t.EntryRho, ExitRho: t.ExitRho,
		MAE: t.MAE, MFE: t.MFE,
	}
}

func (e tradeExtras) applyTo(t *models.Trade) {
	t.EntryPrice, t.ExitPrice, t.StopLoss = e.EntryPrice, e.ExitPrice, e.StopLoss
	t.TakeProfit, t.Commission = e.TakeProfit, e.Commission
	t.StrikePrice, t.ExpirationDate, t.DaysToExpiration = e.StrikePrice, e.ExpirationDate, e.DaysToExpiration
	t.EntryIV, t.ExitIV, t.EntryDelta, t.ExitDelta = e.EntryIV, e.ExitIV, e.EntryDelta, e.ExitDelta
	t.EntryGamma, t.ExitGamma, t.EntryTheta, t.ExitTheta = e.EntryGamma, e.ExitGamma, e.EntryTheta, e.ExitTheta
	t.EntryVega, t.ExitVega, t.EntryRho, t.ExitRho = e.EntryVega, e.ExitVega, e.EntryRho, e.ExitRho
	t.MAE, t.MFE = e.MAE, e.MFE
}

const tradeColumns = "id, symbol, side, asset_type, quantity, price, date, time, strategy, notes, tags, pnl, holding_period, extras"

// AddTrade validates and saves a trade, assigning its ID if unset.
func (s *SQLiteStore) AddTrade(ctx context.Context, trade *models.Trade) error {
	if err := prepareTrade(trade); err != nil {
		return err
	}

	tags, extras, err := encodeTrade(trade)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO trades (`+tradeColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, trade.ID, trade.Symbol, trade.Side, trade.AssetType, trade.Quantity, trade.Price, trade.Date, trade.Time,
		trade.Strategy, trade.Notes, tags, trade.PnL, trade.HoldingPeriod, extras)
	if err != nil {
		if isConstraintError(err) {
			return fmt.Errorf("%w: trade %s", apperrors.ErrDuplicateID, trade.ID)
		}
		return fmt.Errorf("failed to log trade: %w", err)
	}
	return nil
}

// GetTrade retrieves a trade by ID.
func (s *SQLiteStore) GetTrade(ctx context.Context, id string) (*models.Trade, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+tradeColumns+" FROM trades WHERE id = ?", id)
	t, err := scanTrade(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, tradeNotFound(id)
	}
	if err != nil {
		return nil, err
	}
	return t, nil
}

// UpdateTrade applies a partial edit and re-validates the trade.
func (s *SQLiteStore) UpdateTrade(ctx context.Context, id string, update models.TradeUpdate) (*models.Trade, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := s.GetTrade(ctx, id)
	if err != nil {
		return nil, err
	}
	updated := update.Apply(*current)
	updated.ID = id
	if err := prepareTrade(&updated); err != nil {
		return nil, err
	}

	tags, extras, err := encodeTrade(&updated)
	if err != nil {
		return nil, err
	}

	_, err = s.db.ExecContext(ctx, `
		UPDATE trades SET symbol = ?, side = ?, asset_type = ?, quantity = ?, price = ?, date = ?, time = ?,
			strategy = ?, notes = ?, tags = ?, pnl = ?, holding_period = ?, extras = ?
		WHERE id = ?
	`, updated.Symbol, updated.Side, updated.AssetType, updated.Quantity, updated.Price, updated.Date, updated.Time,
		updated.Strategy, updated.Notes, tags, updated.PnL, updated.HoldingPeriod, extras, id)
	if err != nil {
		return nil, fmt.Errorf("failed to update trade: %w", err)
	}
	return &updated, nil
}

// RemoveTrade deletes a trade.
func (s *SQLiteStore) RemoveTrade(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM trades WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to remove trade: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return tradeNotFound(id)
	}
	return nil
}

// ListTrades retrieves all trades in insertion order.
func (s *SQLiteStore) ListTrades(ctx context.Context) ([]models.Trade, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT "+tradeColumns+" FROM trades ORDER BY rowid ASC")
	if err != nil {
		return nil, fmt.Errorf("failed to query trades: %w", err)
	}
	defer rows.Close()

	trades := []models.Trade{}
	for rows.Next() {
		t, err := scanTrade(rows)
		if err != nil {
			return nil, err
		}
		trades = append(trades, *t)
	}

	return trades, rows.Err()
}

func encodeTrade(t *models.Trade) (string, string, error) {
	tags, err := json.Marshal(t.Tags)
	if err != nil {
		return "", "", fmt.Errorf("failed to encode trade tags: %w", err)
	}
	extras, err := json.Marshal(extrasOf(t))
	if err != nil {
		return "", "", fmt.Errorf("failed to encode trade details: %w", err)
	}
	return string(tags), string(extras), nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTrade(row rowScanner) (*models.Trade, error) {
	var (
		t                    models.Trade
		strategy, notes      sql.NullString
		tagsJSON, extrasJSON sql.NullString
	)
	err := row.Scan(&t.ID, &t.Symbol, &t.Side, &t.AssetType, &t.Quantity, &t.Price, &t.Date, &t.Time,
		&strategy, &notes, &tagsJSON, &t.PnL, &t.HoldingPeriod, &extrasJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan trade: %w", err)
	}

	t.Strategy = strategy.String
	t.Notes = notes.String
	t.Tags = []string{}
	if tagsJSON.Valid && tagsJSON.String != "" {
		if err := json.Unmarshal([]byte(tagsJSON.String), &t.Tags); err != nil {
			return nil, fmt.Errorf("failed to decode tags of trade %s: %w", t.ID, err)
		}
	}
	if extrasJSON.Valid && extrasJSON.String != "" {
		var extras tradeExtras
		if err := json.Unmarshal([]byte(extrasJSON.String), &extras); err != nil {
			return nil, fmt.Errorf("failed to decode details of trade %s: %w", t.ID, err)
		}
		extras.applyTo(&t)
	}
	return &t, nil
}

// ============================================================================
// Watchlist Methods
// ============================================================================

const stockColumns = "id, symbol, name, price, change, change_percent, volume, high, low, pre_market_price, pre_market_change, pre_market_change_percent, notes, tags"

// AddStock validates and saves a watchlist entry.
func (s *SQLiteStore) AddStock(ctx context.Context, stock *models.Stock) error {
	stock.Tags = normalizeTags(stock.Tags)
	if err := prepareStock(stock); err != nil {
		return err
	}
	tags, err := json.Marshal(stock.Tags)
	if err != nil {
		return fmt.Errorf("failed to encode stock tags: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO stocks (`+stockColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, stock.ID, stock.Symbol, stock.Name, stock.Price, stock.Change, stock.ChangePercent, stock.Volume, stock.High, stock.Low,
		stock.PreMarketPrice, stock.PreMarketChange, stock.PreMarketChangePercent, stock.Notes, string(tags))
	if err != nil {
		if isConstraintError(err) {
			return fmt.Errorf("%w: stock %s", apperrors.ErrDuplicateID, stock.ID)
		}
		return fmt.Errorf("failed to add to watchlist: %w", err)
	}
	return nil
}

// GetStock retrieves a watchlist entry by ID.
func (s *SQLiteStore) GetStock(ctx context.Context, id string) (*models.Stock, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+stockColumns+" FROM stocks WHERE id = ?", id)
	st, err := scanStock(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, stockNotFound(id)
	}
	if err != nil {
		return nil, err
	}
	return st, nil
}

// UpdateStockNotes replaces the notes of a watchlist entry.
func (s *SQLiteStore) UpdateStockNotes(ctx context.Context, id, notes string) (*models.Stock, error) {
	return s.updateStock(ctx, id, func(st *models.Stock) { st.Notes = notes })
}

// UpdateStockTags replaces the tag set of a watchlist entry.
func (s *SQLiteStore) UpdateStockTags(ctx context.Context, id string, tags []string) (*models.Stock, error) {
	tags = normalizeTags(tags)
	return s.updateStock(ctx, id, func(st *models.Stock) { st.Tags = tags })
}

// UpdateStockQuote refreshes the market fields of a watchlist entry.
func (s *SQLiteStore) UpdateStockQuote(ctx context.Context, id string, quote models.Stock) (*models.Stock, error) {
	return s.updateStock(ctx, id, func(st *models.Stock) { applyQuote(st, quote) })
}

func (s *SQLiteStore) updateStock(ctx context.Context, id string, edit func(*models.Stock)) (*models.Stock, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, err := s.GetStock(ctx, id)
	if err != nil {
		return nil, err
	}
	edit(st)
	if err := st.Validate(); err != nil {
		return nil, err
	}
	tags, err := json.Marshal(st.Tags)
	if err != nil {
		return nil, fmt.Errorf("failed to encode stock tags: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		UPDATE stocks SET name = ?, price = ?, change = ?, change_percent = ?, volume = ?, high = ?, low = ?,
			pre_market_price = ?, pre_market_change = ?, pre_market_change_percent = ?, notes = ?, tags = ?
		WHERE id = ?
	`, st.Name, st.Price, st.Change, st.ChangePercent, st.Volume, st.High, st.Low,
		st.PreMarketPrice, st.PreMarketChange, st.PreMarketChangePercent, st.Notes, string(tags), id)
	if err != nil {
		return nil, fmt.Errorf("failed to update watchlist entry: %w", err)
	}
	return st, nil
}

// RemoveStock deletes a watchlist entry.
func (s *SQLiteStore) RemoveStock(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM stocks WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to remove from watchlist: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return stockNotFound(id)
	}
	return nil
}

// ListStocks retrieves all watchlist entries in insertion order.
func (s *SQLiteStore) ListStocks(ctx context.Context) ([]models.Stock, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT "+stockColumns+" FROM stocks ORDER BY rowid ASC")
	if err != nil {
		return nil, fmt.Errorf("failed to query watchlist: %w", err)
	}
	defer rows.Close()

	stocks := []models.Stock{}
	for rows.Next() {
		st, err := scanStock(rows)
		if err != nil {
			return nil, err
		}
		stocks = append(stocks, *st)
	}

	return stocks, rows.Err()
}

func scanStock(row rowScanner) (*models.Stock, error) {
	var (
		st                    models.Stock
		name, notes, tagsJSON sql.NullString
		change, changePct     sql.NullFloat64
		high, low             sql.NullFloat64
		volume                sql.NullInt64
	)
	err := row.Scan(&st.ID, &st.Symbol, &name, &st.Price, &change, &changePct, &volume, &high, &low,
		&st.PreMarketPrice, &st.PreMarketChange, &st.PreMarketChangePercent, &notes, &tagsJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan stock: %w", err)
	}

	st.Name = name.String
	st.Notes = notes.String
	st.Change = change.Float64
	st.ChangePercent = changePct.Float64
	st.Volume = volume.Int64
	st.High = high.Float64
	st.Low = low.Float64
	st.Tags = []string{}
	if tagsJSON.Valid && tagsJSON.String != "" {
		if err := json.Unmarshal([]byte(tagsJSON.String), &st.Tags); err != nil {
			return nil, fmt.Errorf("failed to decode tags of stock %s: %w", st.ID, err)
		}
	}
	return &st, nil
}

// ============================================================================
// Shared Snapshot Methods
// ============================================================================

// SaveSnapshot stores an encoded watchlist snapshot.
func (s *SQLiteStore) SaveSnapshot(ctx context.Context, id, payload string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO shared_watchlists (id, payload) VALUES (?, ?)
	`, id, payload)
	if err != nil {
		return fmt.Errorf("failed to save shared watchlist: %w", err)
	}
	return nil
}

// GetSnapshot retrieves an encoded watchlist snapshot.
func (s *SQLiteStore) GetSnapshot(ctx context.Context, id string) (string, error) {
	var payload string
	err := s.db.QueryRowContext(ctx, "SELECT payload FROM shared_watchlists WHERE id = ?", id).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return "", shareNotFound(id)
	}
	if err != nil {
		return "", fmt.Errorf("failed to get shared watchlist: %w", err)
	}
	return payload, nil
}

// ============================================================================
// Sync Methods
// ============================================================================

// GetLastSync returns the last sync time for a data type.
func (s *SQLiteStore) GetLastSync(dataType SyncDataType) time.Time {
	s.syncMu.RLock()
	if t, ok := s.syncTimes[dataType]; ok {
		s.syncMu.RUnlock()
		return t
	}
	s.syncMu.RUnlock()

	var lastSync time.Time
	err := s.db.QueryRow(`
		SELECT last_sync FROM sync_status WHERE data_type = ?
	`, string(dataType)).Scan(&lastSync)
	if err != nil {
		return time.Time{}
	}

	s.syncMu.Lock()
	s.syncTimes[dataType] = lastSync
	s.syncMu.Unlock()

	return lastSync
}

// SetLastSync sets the last sync time for a data type.
func (s *SQLiteStore) SetLastSync(dataType SyncDataType, t time.Time) error {
	_, err := s.db.Exec(`
		INSERT OR REPLACE INTO sync_status (data_type, last_sync, updated_at)
		VALUES (?, ?, ?)
	`, string(dataType), t, time.Now())
	if err != nil {
		return fmt.Errorf("failed to set last sync: %w", err)
	}

	s.syncMu.Lock()
	s.syncTimes[dataType] = t
	s.syncMu.Unlock()

	return nil
}

func isConstraintError(err error) bool {
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
