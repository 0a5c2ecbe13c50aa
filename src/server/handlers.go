package server

import (
	"net/http"

	"market-dashboard/src/analysis"
	"market-dashboard/src/models"
	"market-dashboard/src/utils"

	"github.com/gin-gonic/gin"
)

// -----------------------------------------------------------------------------
// Route Handlers
// -----------------------------------------------------------------------------

func (s *DashboardServer) getHealth(c *gin.Context) {
	snap := s.opts.Controller.Snapshot()
	c.JSON(http.StatusOK, gin.H{
		"status":         "ok",
		"connections":    s.hub.Count(),
		"snapshotStatus": snap.Status,
		"sequence":       snap.Sequence,
		"latestUpdate":   snap.LastUpdated,
	})
}

// -----------------------------------------------------------------------------

func (s *DashboardServer) getSnapshot(c *gin.Context) {
	c.JSON(http.StatusOK, s.opts.Controller.Snapshot())
}

// -----------------------------------------------------------------------------

// getQuotes returns one family: "primary", "alternate" or the one the UI
// currently renders (default).
func (s *DashboardServer) getQuotes(c *gin.Context) {
	snap := s.opts.Controller.Snapshot()

	switch c.DefaultQuery("family", "preferred") {
	case "primary":
		c.JSON(http.StatusOK, familyBody(snap.Provider, snap.Quotes, snap.Charts))
	case "alternate":
		if snap.Alternate == nil {
			writeError(c, http.StatusNotFound, "no alternate family in the current snapshot")
			return
		}
		c.JSON(http.StatusOK, familyBody(snap.Alternate.Provider, snap.Alternate.Quotes, snap.Alternate.Charts))
	case "preferred":
		quotes, charts := snap.PreferredFamily()
		provider := snap.Provider
		if snap.UseAlternate && snap.Alternate != nil {
			provider = snap.Alternate.Provider
		}
		c.JSON(http.StatusOK, familyBody(provider, quotes, charts))
	default:
		writeError(c, http.StatusBadRequest, "family must be primary, alternate or preferred")
	}
}

func familyBody(provider models.MProviderInfo, quotes []models.MQuote, charts map[string]models.MChartSeries) gin.H {
	return gin.H{"provider": provider, "quotes": quotes, "charts": charts}
}

// -----------------------------------------------------------------------------

func (s *DashboardServer) getTrending(c *gin.Context) {
	limit, err := queryInt(c, "limit", utils.DefaultTrendingLimit)
	if err != nil {
		writeError(c, http.StatusBadRequest, err.Error())
		return
	}
	quotes, _ := s.opts.Controller.Snapshot().PreferredFamily()
	c.JSON(http.StatusOK, gin.H{"items": analysis.Trending(quotes, c.Query("q"), limit)})
}

// -----------------------------------------------------------------------------

func (s *DashboardServer) getSummary(c *gin.Context) {
	_, charts := s.opts.Controller.Snapshot().PreferredFamily()
	c.JSON(http.StatusOK, gin.H{"series": analysis.SummarizeAll(charts)})
}

// -----------------------------------------------------------------------------
// Watch-list
// -----------------------------------------------------------------------------

type watchListBody struct {
	Symbols []string `json:"symbols"`
}

func (s *DashboardServer) getWatchList(c *gin.Context) {
	c.JSON(http.StatusOK, watchListBody{Symbols: s.opts.Controller.WatchList()})
}

func (s *DashboardServer) putWatchList(c *gin.Context) {
	var body watchListBody
	if err := c.ShouldBindJSON(&body); err != nil {
		writeError(c, http.StatusBadRequest, "invalid body: "+err.Error())
		return
	}
	c.JSON(http.StatusOK, watchListBody{Symbols: s.applyWatchList(c.Request.Context(), body.Symbols)})
}

func (s *DashboardServer) searchWatchList(c *gin.Context) {
	quotes, _ := s.opts.Controller.Snapshot().PreferredFamily()
	matches := analysis.FilterWatchList(s.opts.Controller.WatchList(), c.Query("q"), quotes, s.opts.Mapper)
	c.JSON(http.StatusOK, watchListBody{Symbols: matches})
}

// -----------------------------------------------------------------------------

type alternateBody struct {
	Enabled *bool `json:"enabled" binding:"required"`
}

func (s *DashboardServer) putAlternate(c *gin.Context) {
	var body alternateBody
	if err := c.ShouldBindJSON(&body); err != nil {
		writeError(c, http.StatusBadRequest, "invalid body: "+err.Error())
		return
	}
	s.opts.Controller.SetUseAlternate(*body.Enabled)
	c.JSON(http.StatusOK, gin.H{"useAlternate": s.opts.Controller.UseAlternate()})
}

// -----------------------------------------------------------------------------

func (s *DashboardServer) postRefresh(c *gin.Context) {
	snap, err := s.opts.Controller.Refresh(c.Request.Context())
	if err != nil {
		c.JSON(errorStatus(err), gin.H{"error": err.Error(), "snapshot": snap})
		return
	}
	c.JSON(http.StatusOK, snap)
}

// -----------------------------------------------------------------------------
// Providers
// -----------------------------------------------------------------------------

func (s *DashboardServer) getProviders(c *gin.Context) {
	body := gin.H{"providers": s.opts.Providers.DescribeAll()}
	if s.opts.SelfTests != nil {
		body["selfTests"] = s.opts.SelfTests.Latest()
	}
	c.JSON(http.StatusOK, body)
}

func (s *DashboardServer) postSelfTest(c *gin.Context) {
	provider, err := s.opts.Providers.Get(c.Param("name"))
	if err != nil {
		writeError(c, http.StatusNotFound, err.Error())
		return
	}

	res, err := provider.SelfTest(c.Request.Context())
	if res == nil {
		res = &models.MSelfTestResult{Provider: provider.Name()}
		if err != nil {
			res.Detail = err.Error()
		}
	}
	if s.opts.SelfTests != nil {
		s.opts.SelfTests.Record(*res)
	}
	c.JSON(http.StatusOK, res)
}

// -----------------------------------------------------------------------------

func (s *DashboardServer) getHistory(c *gin.Context) {
	if s.opts.Store == nil {
		writeError(c, http.StatusServiceUnavailable, "history is not stored")
		return
	}
	limit, err := queryInt(c, "limit", utils.DefaultHistoryLimit)
	if err != nil {
		writeError(c, http.StatusBadRequest, err.Error())
		return
	}

	records, err := s.opts.Store.RecentSnapshots(c.Request.Context(), limit)
	if err != nil {
		writeError(c, errorStatus(err), err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": records})
}
