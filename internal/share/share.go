// Package share publishes read-only watchlist snapshots under a short id
// and reopens them from a share link.
package share

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	apperrors "tradedesk/internal/errors"
	"tradedesk/internal/models"
)

// QueryParam is the link query parameter carrying the share id.
const QueryParam = "share"

// Options selects which watchlist fields a snapshot carries.
type Options struct {
	IncludeNotes  bool `json:"includeNotes"`
	IncludePrices bool `json:"includePrices"`
}

// SharedStock is a watchlist entry as it appears in a snapshot. Price fields
// are omitted when prices are not shared.
type SharedStock struct {
	Symbol                 string   `json:"symbol"`
	Name                   string   `json:"name"`
	Price                  *float64 `json:"price,omitempty"`
	Change                 *float64 `json:"change,omitempty"`
	ChangePercent          *float64 `json:"changePercent,omitempty"`
	Volume                 *int64   `json:"volume,omitempty"`
	High                   *float64 `json:"high,omitempty"`
	Low                    *float64 `json:"low,omitempty"`
	Notes                  string   `json:"notes"`
	Tags                   []string `json:"tags"`
	PreMarketPrice         *float64 `json:"preMarketPrice,omitempty"`
	PreMarketChange        *float64 `json:"preMarketChange,omitempty"`
	PreMarketChangePercent *float64 `json:"preMarketChangePercent,omitempty"`
}

// Snapshot is a point-in-time copy of the watchlist.
type Snapshot struct {
	Watchlist []SharedStock `json:"watchlist"`
	Timestamp time.Time     `json:"timestamp"`
	Settings  Options       `json:"settings"`
}

// Build copies stocks into a snapshot taken at now.
func Build(stocks []models.Stock, opts Options, now time.Time) Snapshot {
	snap := Snapshot{
		Watchlist: make([]SharedStock, 0, len(stocks)),
		Timestamp: now.UTC(),
		Settings:  opts,
	}
	for _, s := range stocks {
		ss := SharedStock{
			Symbol: s.Symbol,
			Name:   s.Name,
			Tags:   append([]string{}, s.Tags...),
		}
		if opts.IncludeNotes {
			ss.Notes = s.Notes
		}
		if opts.IncludePrices {
			volume := s.Volume
			ss.Price = models.Float(s.Price)
			ss.Change = models.Float(s.Change)
			ss.ChangePercent = models.Float(s.ChangePercent)
			ss.Volume = &volume
			ss.High = models.Float(s.High)
			ss.Low = models.Float(s.Low)
			ss.PreMarketPrice = copyFloat(s.PreMarketPrice)
			ss.PreMarketChange = copyFloat(s.PreMarketChange)
			ss.PreMarketChangePercent = copyFloat(s.PreMarketChangePercent)
		}
		snap.Watchlist = append(snap.Watchlist, ss)
	}
	return snap
}

func copyFloat(p *float64) *float64 {
	if p == nil {
		return nil
	}
	return models.Float(*p)
}

// Encode serialises a snapshot to URL-safe base64 JSON.
func Encode(snap Snapshot) (string, error) {
	data, err := json.Marshal(snap)
	if err != nil {
		return "", fmt.Errorf("failed to encode snapshot: %w", err)
	}
	return base64.URLEncoding.EncodeToString(data), nil
}

// Decode parses an encoded snapshot.
func Decode(payload string) (*Snapshot, error) {
	data, err := base64.URLEncoding.DecodeString(strings.TrimSpace(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to decode snapshot: %w", err)
	}
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("failed to parse snapshot: %w", err)
	}
	return &snap, nil
}

// ID hashes an encoded payload into a short share id: a 32-bit
// h = h*31 + c string hash rendered in base 36. The hash is signed, so ids
// may start with '-'.
func ID(encoded string) string {
	var h int32
	for i := 0; i < len(encoded); i++ {
		h = h*31 + int32(encoded[i])
	}
	return strconv.FormatInt(int64(h), 36)
}

// URL returns the share link for id.
func URL(baseURL, id string) string {
	return strings.TrimRight(baseURL, "/") + "/?" + QueryParam + "=" + url.QueryEscape(id)
}

// ParseID accepts a bare share id or a share link and returns the id.
func ParseID(s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", apperrors.NewValidationError("share", s, "must not be empty")
	}
	if !strings.Contains(s, "?") && !strings.Contains(s, "://") {
		return s, nil
	}
	u, err := url.Parse(s)
	if err != nil {
		return "", apperrors.NewValidationError("share", s, "not a share link")
	}
	id := u.Query().Get(QueryParam)
	if id == "" {
		return "", apperrors.NewValidationError("share", s, "link has no "+QueryParam+" parameter")
	}
	return id, nil
}

// SnapshotStore persists encoded snapshots by id.
type SnapshotStore interface {
	SaveSnapshot(ctx context.Context, id, payload string) error
	GetSnapshot(ctx context.Context, id string) (string, error)
}

// Link is a published snapshot.
type Link struct {
	ID       string   `json:"id"`
	URL      string   `json:"url"`
	Snapshot Snapshot `json:"snapshot"`
}

// Service publishes and opens shared watchlists.
type Service struct {
	store   SnapshotStore
	baseURL string
	logger  zerolog.Logger
	now     func() time.Time
}

// NewService creates a share service producing links under baseURL.
func NewService(store SnapshotStore, baseURL string, logger zerolog.Logger) *Service {
	return &Service{
		store:   store,
		baseURL: baseURL,
		logger:  logger.With().Str("component", "share").Logger(),
		now:     time.Now,
	}
}

// Publish snapshots stocks, stores the encoded payload and returns its link.
// Publishing identical content at the same instant yields the same id.
func (s *Service) Publish(ctx context.Context, stocks []models.Stock, opts Options) (*Link, error) {
	snap := Build(stocks, opts, s.now())
	encoded, err := Encode(snap)
	if err != nil {
		return nil, err
	}

	id := ID(encoded)
	if err := s.store.SaveSnapshot(ctx, id, encoded); err != nil {
		return nil, fmt.Errorf("failed to publish watchlist: %w", err)
	}

	s.logger.Info().Str("share_id", id).Int("stocks", len(snap.Watchlist)).Msg("Watchlist shared")
	return &Link{ID: id, URL: URL(s.baseURL, id), Snapshot: snap}, nil
}

// Open loads the snapshot stored under id. A missing or unreadable snapshot
// is logged and reported as ErrShareNotFound.
func (s *Service) Open(ctx context.Context, id string) (*Snapshot, error) {
	payload, err := s.store.GetSnapshot(ctx, id)
	if err != nil {
		s.logger.Warn().Err(err).Str("share_id", id).Msg("Shared watchlist not found")
		if apperrors.Is(err, apperrors.ErrShareNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", apperrors.ErrShareNotFound, err)
	}

	snap, err := Decode(payload)
	if err != nil {
		s.logger.Error().Err(err).Str("share_id", id).Msg("Error loading shared watchlist")
		return nil, fmt.Errorf("%w: %s: %w", apperrors.ErrShareNotFound, id, err)
	}
	return snap, nil
}
