// Package desk wires the journal, watchlist, analytics and sharing
// components into the operations exposed by the CLI and the HTTP API.
package desk

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	apperrors "tradedesk/internal/errors"
	"tradedesk/internal/listing"
	"tradedesk/internal/logging"
	"tradedesk/internal/mockdata"
	"tradedesk/internal/models"
	"tradedesk/internal/performance"
	"tradedesk/internal/quote"
	"tradedesk/internal/share"
	"tradedesk/internal/store"
)

// Options configures a Desk.
type Options struct {
	// Month used by the heatmap and calendar when none is requested.
	HeatmapMonth time.Time
	// Prefix for share links.
	ShareBaseURL string
	Sync         *store.SyncConfig
}

// Desk is the application service over a single data store.
type Desk struct {
	store  store.DataStore
	quotes quote.Provider
	shares *share.Service
	sync   *store.SyncManager
	agg    *performance.Aggregator
	month  time.Time
	logger zerolog.Logger
}

// New creates a desk. quotes may be nil, in which case lookups fail.
func New(st store.DataStore, quotes quote.Provider, opts Options, logger zerolog.Logger) *Desk {
	month := opts.HeatmapMonth
	if month.IsZero() {
		month, _ = performance.ParseMonth(performance.DefaultMonth)
	}
	return &Desk{
		store:  st,
		quotes: quotes,
		shares: share.NewService(st, opts.ShareBaseURL, logger),
		sync:   store.NewSyncManager(st, opts.Sync),
		agg:    performance.NewAggregator(logger),
		month:  month,
		logger: logger.With().Str("component", "desk").Logger(),
	}
}

// Store returns the underlying data store.
func (d *Desk) Store() store.DataStore { return d.store }

// Month returns the default analytics month.
func (d *Desk) Month() time.Time { return d.month }

// TradeQuery selects and orders journal entries.
type TradeQuery struct {
	Filter listing.TradeFilter
	Sort   listing.SortState
}

// Trades lists the journal, filtered and sorted. A zero sort uses the
// journal default.
func (d *Desk) Trades(ctx context.Context, q TradeQuery) ([]models.Trade, error) {
	trades, err := d.store.ListTrades(ctx)
	if err != nil {
		return nil, err
	}
	if q.Sort.Field == "" {
		q.Sort = listing.DefaultTradeSort()
	}
	return listing.SortTrades(listing.FilterTrades(trades, q.Filter), q.Sort)
}

// AddTrade records a trade in the journal.
func (d *Desk) AddTrade(ctx context.Context, t *models.Trade) error {
	if err := d.store.AddTrade(ctx, t); err != nil {
		return err
	}
	logging.LogTrade(d.logger, "add", t.ID, t.Symbol, t.PnL)
	return nil
}

// UpdateTrade applies a partial edit to a trade.
func (d *Desk) UpdateTrade(ctx context.Context, id string, u models.TradeUpdate) (*models.Trade, error) {
	t, err := d.store.UpdateTrade(ctx, id, u)
	if err != nil {
		return nil, err
	}
	logging.LogTrade(d.logger, "update", t.ID, t.Symbol, t.PnL)
	return t, nil
}

// RemoveTrade deletes a trade.
func (d *Desk) RemoveTrade(ctx context.Context, id string) error {
	if err := d.store.RemoveTrade(ctx, id); err != nil {
		return err
	}
	logging.LogTrade(d.logger, "remove", id, "", nil)
	return nil
}

// StockQuery selects and orders watchlist entries.
type StockQuery struct {
	Filter listing.StockFilter
	Sort   listing.SortState
}

// Stocks lists the watchlist, filtered and sorted. A zero sort uses the
// watchlist default.
func (d *Desk) Stocks(ctx context.Context, q StockQuery) ([]models.Stock, error) {
	stocks, err := d.store.ListStocks(ctx)
	if err != nil {
		return nil, err
	}
	if q.Sort.Field == "" {
		q.Sort = listing.DefaultStockSort()
	}
	return listing.SortStocks(listing.FilterStocks(stocks, q.Filter), q.Sort)
}

// AddSymbol looks up symbol and appends it to the watchlist with the given
// notes and tags. On lookup failure the watchlist is left unchanged.
func (d *Desk) AddSymbol(ctx context.Context, symbol, notes string, tags []string) (*models.Stock, error) {
	stock, err := d.lookup(ctx, symbol)
	if err != nil {
		return nil, err
	}
	stock.Notes = notes
	stock.Tags = tags
	if err := d.store.AddStock(ctx, stock); err != nil {
		return nil, err
	}
	l := logging.WithSymbol(d.logger, stock.Symbol)
	l.Info().Str("stock_id", stock.ID).Msg("Added to watchlist")
	return stock, nil
}

// Quote looks up the current quote for symbol without touching the watchlist.
func (d *Desk) Quote(ctx context.Context, symbol string) (*models.Stock, error) {
	return d.lookup(ctx, symbol)
}

func (d *Desk) lookup(ctx context.Context, symbol string) (*models.Stock, error) {
	if d.quotes == nil {
		return nil, apperrors.NewDataError("quote", symbol, "no quote provider configured", apperrors.ErrSymbolNotFound)
	}
	return d.quotes.Lookup(ctx, symbol)
}

// UpdateNotes replaces a watchlist entry's notes.
func (d *Desk) UpdateNotes(ctx context.Context, id, notes string) (*models.Stock, error) {
	return d.store.UpdateStockNotes(ctx, id, notes)
}

// UpdateTags replaces a watchlist entry's tags.
func (d *Desk) UpdateTags(ctx context.Context, id string, tags []string) (*models.Stock, error) {
	return d.store.UpdateStockTags(ctx, id, tags)
}

// RemoveStock deletes a watchlist entry.
func (d *Desk) RemoveStock(ctx context.Context, id string) error {
	return d.store.RemoveStock(ctx, id)
}

// RefreshResult reports a watchlist quote refresh.
type RefreshResult struct {
	Updated []models.Stock `json:"updated"`
	Failed  []string       `json:"failed"`
}

// Refresh re-quotes every watchlist entry. Failed lookups leave the entry
// unchanged and are reported by symbol. The quotes sync time is recorded
// when at least one entry was updated.
func (d *Desk) Refresh(ctx context.Context) (*RefreshResult, error) {
	stocks, err := d.store.ListStocks(ctx)
	if err != nil {
		return nil, err
	}

	l := logging.WithOperation(d.logger, "refresh")
	res := &RefreshResult{Updated: []models.Stock{}, Failed: []string{}}
	for _, s := range stocks {
		q, err := d.lookup(ctx, s.Symbol)
		if err != nil {
			if ctx.Err() != nil {
				return res, ctx.Err()
			}
			res.Failed = append(res.Failed, s.Symbol)
			continue
		}
		updated, err := d.store.UpdateStockQuote(ctx, s.ID, *q)
		if err != nil {
			return res, err
		}
		res.Updated = append(res.Updated, *updated)
	}

	if len(res.Updated) > 0 {
		if err := d.sync.MarkSynced(store.SyncTypeQuotes); err != nil {
			l.Warn().Err(err).Msg("Failed to record quote refresh")
		}
	}
	l.Info().Int("updated", len(res.Updated)).Int("failed", len(res.Failed)).Msg("Watchlist refreshed")
	return res, nil
}

// SyncStatus reports data freshness for every tracked data type.
func (d *Desk) SyncStatus() []*store.SyncStatus {
	return d.sync.GetAllSyncStatus()
}

// QuotesStale reports whether watchlist prices need a refresh.
func (d *Desk) QuotesStale() bool {
	return d.sync.IsDataStale(store.SyncTypeQuotes)
}

// Analytics holds the journal statistics and breakdowns.
type Analytics struct {
	Summary performance.Summary  `json:"summary"`
	Metrics *performance.Metrics `json:"metrics"`
}

// Analytics computes summary statistics and every breakdown over the
// trades matching filter.
func (d *Desk) Analytics(ctx context.Context, filter listing.TradeFilter) (*Analytics, error) {
	trades, err := d.store.ListTrades(ctx)
	if err != nil {
		return nil, err
	}
	trades = listing.FilterTrades(trades, filter)
	return &Analytics{
		Summary: performance.Summarize(trades),
		Metrics: d.agg.Aggregate(trades),
	}, nil
}

// Heatmap builds the session heatmap for month, or the default month when
// month is zero.
func (d *Desk) Heatmap(ctx context.Context, month time.Time) (*performance.Heatmap, error) {
	trades, err := d.store.ListTrades(ctx)
	if err != nil {
		return nil, err
	}
	return d.agg.Heatmap(trades, d.monthOr(month)), nil
}

// Calendar builds the P&L calendar for month, or the default month when
// month is zero.
func (d *Desk) Calendar(ctx context.Context, month time.Time) (*performance.Calendar, error) {
	trades, err := d.store.ListTrades(ctx)
	if err != nil {
		return nil, err
	}
	return d.agg.Calendar(trades, d.monthOr(month)), nil
}

func (d *Desk) monthOr(month time.Time) time.Time {
	if month.IsZero() {
		return d.month
	}
	return month
}

// Share publishes the watchlist entries matching filter.
func (d *Desk) Share(ctx context.Context, opts share.Options, filter listing.StockFilter) (*share.Link, error) {
	stocks, err := d.Stocks(ctx, StockQuery{Filter: filter})
	if err != nil {
		return nil, err
	}
	return d.shares.Publish(ctx, stocks, opts)
}

// OpenShare loads a shared watchlist from an id or share link.
func (d *Desk) OpenShare(ctx context.Context, idOrLink string) (*share.Snapshot, error) {
	id, err := share.ParseID(idOrLink)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", apperrors.ErrShareNotFound, err)
	}
	return d.shares.Open(ctx, id)
}

// SeedResult reports what Seed loaded.
type SeedResult struct {
	Trades  int `json:"trades"`
	Stocks  int `json:"stocks"`
	Skipped int `json:"skipped"`
}

// Seed loads the demo journal and watchlist. Records whose id already
// exists are skipped, so seeding twice is harmless.
func (d *Desk) Seed(ctx context.Context, seed int64) (*SeedResult, error) {
	l := logging.WithOperation(d.logger, "seed")
	res := &SeedResult{}
	for _, t := range mockdata.Journal(seed) {
		t := t
		if err := d.store.AddTrade(ctx, &t); err != nil {
			if apperrors.Is(err, apperrors.ErrDuplicateID) {
				res.Skipped++
				continue
			}
			return res, fmt.Errorf("failed to seed trade %s: %w", t.ID, err)
		}
		res.Trades++
	}
	for _, s := range mockdata.Stocks() {
		s := s
		if err := d.store.AddStock(ctx, &s); err != nil {
			if apperrors.Is(err, apperrors.ErrDuplicateID) {
				res.Skipped++
				continue
			}
			return res, fmt.Errorf("failed to seed stock %s: %w", strings.ToUpper(s.Symbol), err)
		}
		res.Stocks++
	}

	if err := d.sync.MarkSynced(store.SyncTypeSeed); err != nil {
		l.Warn().Err(err).Msg("Failed to record seed time")
	}
	l.Info().Int("trades", res.Trades).Int("stocks", res.Stocks).Int("skipped", res.Skipped).Msg("Demo data loaded")
	return res, nil
}
