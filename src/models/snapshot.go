package models

import "time"

// SnapshotStatus is the coarse state the UI maps to a color/label.
type SnapshotStatus string

const (
	StatusIdle    SnapshotStatus = "idle"
	StatusLoading SnapshotStatus = "loading"
	StatusSuccess SnapshotStatus = "success"
	StatusMock    SnapshotStatus = "mock"
	StatusError   SnapshotStatus = "error"
)

// -----------------------------------------------------------------------------
// Snapshot (published wholesale once per refresh cycle)
// -----------------------------------------------------------------------------

type MSnapshot struct {
	ID           string                  `json:"id"`
	Sequence     uint64                  `json:"sequence"`
	Status       SnapshotStatus          `json:"status"`
	Quotes       []MQuote                `json:"quotes"`
	Charts       map[string]MChartSeries `json:"charts"`
	LastUpdated  *time.Time              `json:"lastUpdated"`
	WatchList    []string                `json:"watchList"`
	Provider     MProviderInfo           `json:"provider"`
	UseAlternate bool                    `json:"useAlternate"`
	Alternate    *MFamilySnapshot        `json:"alternate,omitempty"`
	MarketOpen   map[string]bool         `json:"marketOpen,omitempty"`
}

// MFamilySnapshot is the quote/chart pair of the alternate provider family.
type MFamilySnapshot struct {
	Provider MProviderInfo           `json:"provider"`
	Quotes   []MQuote                `json:"quotes"`
	Charts   map[string]MChartSeries `json:"charts"`
}

// -----------------------------------------------------------------------------

// EmptySnapshot is the idle value a controller starts with.
func EmptySnapshot(watchList []string) MSnapshot {
	return MSnapshot{
		Status:    StatusIdle,
		Quotes:    []MQuote{},
		Charts:    map[string]MChartSeries{},
		WatchList: append([]string(nil), watchList...),
	}
}

// -----------------------------------------------------------------------------

// Clone returns a deep copy so published values can be handed out freely.
func (s MSnapshot) Clone() MSnapshot {
	out := s
	out.Quotes = append([]MQuote{}, s.Quotes...)
	out.Charts = cloneCharts(s.Charts)
	out.WatchList = append([]string(nil), s.WatchList...)
	if s.LastUpdated != nil {
		ts := *s.LastUpdated
		out.LastUpdated = &ts
	}
	if s.Alternate != nil {
		alt := *s.Alternate
		alt.Quotes = append([]MQuote{}, s.Alternate.Quotes...)
		alt.Charts = cloneCharts(s.Alternate.Charts)
		out.Alternate = &alt
	}
	if s.MarketOpen != nil {
		out.MarketOpen = make(map[string]bool, len(s.MarketOpen))
		for k, v := range s.MarketOpen {
			out.MarketOpen[k] = v
		}
	}
	return out
}

// -----------------------------------------------------------------------------

// PreferredFamily returns the quote/chart pair the UI should render.
func (s MSnapshot) PreferredFamily() ([]MQuote, map[string]MChartSeries) {
	if s.UseAlternate && s.Alternate != nil {
		return s.Alternate.Quotes, s.Alternate.Charts
	}
	return s.Quotes, s.Charts
}

// -----------------------------------------------------------------------------

func cloneCharts(in map[string]MChartSeries) map[string]MChartSeries {
	out := make(map[string]MChartSeries, len(in))
	for k, v := range in {
		out[k] = append(MChartSeries(nil), v...)
	}
	return out
}
