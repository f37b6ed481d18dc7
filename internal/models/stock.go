package models

// Stock represents a tracked ticker on the watchlist.
type Stock struct {
	ID            string   `json:"id"`
	Symbol        string   `json:"symbol" validate:"required,max=20"`
	Name          string   `json:"name"`
	Price         float64  `json:"price" validate:"gte=0"`
	Change        float64  `json:"change"`
	ChangePercent float64  `json:"changePercent"`
	Volume        int64    `json:"volume" validate:"gte=0"`
	High          float64  `json:"high" validate:"gte=0"`
	Low           float64  `json:"low" validate:"gte=0"`
	Notes         string   `json:"notes"`
	Tags          []string `json:"tags"`

	PreMarketPrice         *float64 `json:"preMarketPrice,omitempty"`
	PreMarketChange        *float64 `json:"preMarketChange,omitempty"`
	PreMarketChangePercent *float64 `json:"preMarketChangePercent,omitempty"`
}

// HasTag reports whether the stock carries the named tag.
func (s *Stock) HasTag(tag string) bool {
	for _, t := range s.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// Clone returns a deep copy of the stock.
func (s Stock) Clone() Stock {
	c := s
	if s.Tags != nil {
		c.Tags = append([]string(nil), s.Tags...)
	}
	if s.PreMarketPrice != nil {
		c.PreMarketPrice = Float(*s.PreMarketPrice)
	}
	if s.PreMarketChange != nil {
		c.PreMarketChange = Float(*s.PreMarketChange)
	}
	if s.PreMarketChangePercent != nil {
		c.PreMarketChangePercent = Float(*s.PreMarketChangePercent)
	}
	return c
}
