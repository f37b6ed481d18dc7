package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"tradedesk/internal/desk"
	"tradedesk/internal/listing"
	"tradedesk/internal/models"
	"tradedesk/internal/performance"
	"tradedesk/internal/share"
)

// sortState reads the sort and dir query parameters.
func sortState(c *gin.Context) (listing.SortState, error) {
	dir, err := listing.ParseDirection(c.Query("dir"))
	if err != nil {
		return listing.SortState{}, err
	}
	return listing.SortState{Field: strings.TrimSpace(c.Query("sort")), Direction: dir}, nil
}

func tradeFilter(c *gin.Context) listing.TradeFilter {
	return listing.TradeFilter{
		Strategy:  c.Query("strategy"),
		AssetType: models.AssetType(strings.ToLower(c.Query("assetType"))),
	}
}

// tagList accepts repeated and comma-separated tags parameters.
func tagList(c *gin.Context) []string {
	var tags []string
	for _, v := range c.QueryArray("tags") {
		for _, t := range strings.Split(v, ",") {
			if t = strings.TrimSpace(t); t != "" {
				tags = append(tags, t)
			}
		}
	}
	return tags
}

func month(c *gin.Context) (time.Time, error) {
	m := c.Query("month")
	if m == "" {
		return time.Time{}, nil
	}
	return performance.ParseMonth(m)
}

// Journal

func (s *Server) handleListTrades(c *gin.Context) {
	sort, err := sortState(c)
	if err != nil {
		abort(c, err)
		return
	}
	trades, err := s.desk.Trades(c.Request.Context(), desk.TradeQuery{Filter: tradeFilter(c), Sort: sort})
	if err != nil {
		abort(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"trades": trades, "count": len(trades)})
}

func (s *Server) handleAddTrade(c *gin.Context) {
	var trade models.Trade
	if err := c.ShouldBindJSON(&trade); err != nil {
		badRequest(c, "invalid trade: "+err.Error())
		return
	}
	if err := s.desk.AddTrade(c.Request.Context(), &trade); err != nil {
		abort(c, err)
		return
	}
	c.JSON(http.StatusCreated, trade)
}

func (s *Server) handleUpdateTrade(c *gin.Context) {
	var update models.TradeUpdate
	if err := c.ShouldBindJSON(&update); err != nil {
		badRequest(c, "invalid update: "+err.Error())
		return
	}
	trade, err := s.desk.UpdateTrade(c.Request.Context(), c.Param("id"), update)
	if err != nil {
		abort(c, err)
		return
	}
	c.JSON(http.StatusOK, trade)
}

func (s *Server) handleRemoveTrade(c *gin.Context) {
	if err := s.desk.RemoveTrade(c.Request.Context(), c.Param("id")); err != nil {
		abort(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Analytics

func (s *Server) handleAnalytics(c *gin.Context) {
	a, err := s.desk.Analytics(c.Request.Context(), tradeFilter(c))
	if err != nil {
		abort(c, err)
		return
	}
	c.JSON(http.StatusOK, a)
}

func (s *Server) handleHeatmap(c *gin.Context) {
	m, err := month(c)
	if err != nil {
		badRequest(c, err.Error())
		return
	}
	hm, err := s.desk.Heatmap(c.Request.Context(), m)
	if err != nil {
		abort(c, err)
		return
	}
	c.JSON(http.StatusOK, hm)
}

func (s *Server) handleCalendar(c *gin.Context) {
	m, err := month(c)
	if err != nil {
		badRequest(c, err.Error())
		return
	}
	cal, err := s.desk.Calendar(c.Request.Context(), m)
	if err != nil {
		abort(c, err)
		return
	}
	c.JSON(http.StatusOK, cal)
}

// Watchlist

// AddStockRequest adds a symbol to the watchlist after a quote lookup.
type AddStockRequest struct {
	Symbol string   `json:"symbol" binding:"required"`
	Notes  string   `json:"notes"`
	Tags   []string `json:"tags"`
}

// UpdateStockRequest edits a watchlist entry. Absent fields are unchanged;
// an empty tags array clears the tags.
type UpdateStockRequest struct {
	Notes *string   `json:"notes"`
	Tags  *[]string `json:"tags"`
}

func (s *Server) handleListStocks(c *gin.Context) {
	sort, err := sortState(c)
	if err != nil {
		abort(c, err)
		return
	}
	q := desk.StockQuery{Filter: listing.StockFilter{Tags: tagList(c)}, Sort: sort}
	stocks, err := s.desk.Stocks(c.Request.Context(), q)
	if err != nil {
		abort(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"stocks": stocks, "count": len(stocks), "stale": s.desk.QuotesStale()})
}

func (s *Server) handleAddStock(c *gin.Context) {
	var req AddStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request: "+err.Error())
		return
	}
	stock, err := s.desk.AddSymbol(c.Request.Context(), req.Symbol, req.Notes, req.Tags)
	if err != nil {
		abort(c, err)
		return
	}
	c.JSON(http.StatusCreated, stock)
}

func (s *Server) handleUpdateStock(c *gin.Context) {
	var req UpdateStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request: "+err.Error())
		return
	}
	if req.Notes == nil && req.Tags == nil {
		badRequest(c, "nothing to update: set notes or tags")
		return
	}

	ctx := c.Request.Context()
	id := c.Param("id")
	var (
		stock *models.Stock
		err   error
	)
	if req.Notes != nil {
		if stock, err = s.desk.UpdateNotes(ctx, id, *req.Notes); err != nil {
			abort(c, err)
			return
		}
	}
	if req.Tags != nil {
		if stock, err = s.desk.UpdateTags(ctx, id, *req.Tags); err != nil {
			abort(c, err)
			return
		}
	}
	c.JSON(http.StatusOK, stock)
}

func (s *Server) handleRemoveStock(c *gin.Context) {
	if err := s.desk.RemoveStock(c.Request.Context(), c.Param("id")); err != nil {
		abort(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) handleRefresh(c *gin.Context) {
	res, err := s.desk.Refresh(c.Request.Context())
	if err != nil {
		abort(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (s *Server) handleQuote(c *gin.Context) {
	stock, err := s.desk.Quote(c.Request.Context(), c.Param("symbol"))
	if err != nil {
		abort(c, err)
		return
	}
	c.JSON(http.StatusOK, stock)
}

// Sharing

// ShareRequest selects what a shared snapshot carries.
type ShareRequest struct {
	share.Options
	// Only stocks carrying any of these tags are shared; empty shares all.
	Tags []string `json:"tags"`
}

func (s *Server) handleShare(c *gin.Context) {
	var req ShareRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "invalid request: "+err.Error())
			return
		}
	}
	link, err := s.desk.Share(c.Request.Context(), req.Options, listing.StockFilter{Tags: req.Tags})
	if err != nil {
		abort(c, err)
		return
	}
	c.JSON(http.StatusCreated, link)
}

func (s *Server) handleOpenShare(c *gin.Context) {
	snap, err := s.desk.OpenShare(c.Request.Context(), c.Param("id"))
	if err != nil {
		abort(c, err)
		return
	}
	c.JSON(http.StatusOK, snap)
}

// Reference data

func (s *Server) handleStrategies(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"strategies": models.DefaultStrategies()})
}

func (s *Server) handleTags(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"tags": models.DefaultTags()})
}

func (s *Server) handleSyncStatus(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"sync": s.desk.SyncStatus()})
}
