package models

import (
	"math"
	"strconv"
	"strings"
)

// MQuote is the normalized quote record shared by every provider.
// Numeric fields stay decimal strings; parse them where they are used.
type MQuote struct {
	Symbol        string `json:"symbol"`
	Name          string `json:"name"`
	Price         string `json:"price"`
	Change        string `json:"change"`
	ChangePercent string `json:"changePercent"`
	Volume        string `json:"volume"`

	// Only populated by scanner-style providers.
	MarketCap string `json:"marketCap,omitempty"`
	Sector    string `json:"sector,omitempty"`
	Country   string `json:"country,omitempty"`
}

// -----------------------------------------------------------------------------

// ParseDecimal parses a decimal string and reports whether it is finite.
func ParseDecimal(s string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// -----------------------------------------------------------------------------

// Valid reports whether price, change, changePercent and volume are all finite numbers.
func (q MQuote) Valid() bool {
	for _, field := range []string{q.Price, q.Change, q.ChangePercent, q.Volume} {
		if _, ok := ParseDecimal(field); !ok {
			return false
		}
	}
	return q.Symbol != ""
}

// -----------------------------------------------------------------------------

func (q MQuote) PriceValue() float64 {
	v, _ := ParseDecimal(q.Price)
	return v
}

// -----------------------------------------------------------------------------

func (q MQuote) ChangeValue() float64 {
	v, _ := ParseDecimal(q.Change)
	return v
}

// -----------------------------------------------------------------------------

// ChangePercentValue returns 0 for unparsable input so sorting never panics.
func (q MQuote) ChangePercentValue() float64 {
	v, _ := ParseDecimal(q.ChangePercent)
	return v
}

// -----------------------------------------------------------------------------

func (q MQuote) VolumeValue() float64 {
	v, _ := ParseDecimal(q.Volume)
	return v
}

// -----------------------------------------------------------------------------

// IsUp is used by the UI for color selection.
func (q MQuote) IsUp() bool {
	return q.ChangeValue() >= 0
}
