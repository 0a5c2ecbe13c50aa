// Package shared holds normalization helpers used by every provider adapter.
package shared

import (
	"encoding/json"
	"math"
	"strings"

	"market-dashboard/src/models"

	"github.com/shopspring/decimal"
)

// FormatFloat renders a vendor float as a decimal string. Non-finite input
// reports false.
func FormatFloat(v float64) (string, bool) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "", false
	}
	return decimal.NewFromFloat(v).String(), true
}

// -----------------------------------------------------------------------------

// FormatFloatPtr is FormatFloat for optional JSON numbers.
func FormatFloatPtr(v *float64) (string, bool) {
	if v == nil {
		return "", false
	}
	return FormatFloat(*v)
}

// -----------------------------------------------------------------------------

// NormalizeDecimalString cleans vendor strings such as "1.2400%" or " 175.4300 ".
func NormalizeDecimalString(s string) (string, bool) {
	s = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "%"))
	if s == "" {
		return "", false
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return "", false
	}
	return d.String(), true
}

// -----------------------------------------------------------------------------

// JSONNumber converts a loosely typed JSON value (number or numeric string).
func JSONNumber(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, !math.IsNaN(n) && !math.IsInf(n, 0)
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case string:
		d, err := decimal.NewFromString(strings.TrimSpace(n))
		if err != nil {
			return 0, false
		}
		return d.InexactFloat64(), true
	default:
		return 0, false
	}
}

// -----------------------------------------------------------------------------

// BuildQuote assembles a quote from floats; it fails when any field is non-finite.
func BuildQuote(symbol, name string, price, change, changePercent, volume float64) (models.MQuote, bool) {
	q := models.MQuote{Symbol: symbol, Name: name}
	var ok bool
	if q.Price, ok = FormatFloat(price); !ok {
		return q, false
	}
	if q.Change, ok = FormatFloat(change); !ok {
		return q, false
	}
	if q.ChangePercent, ok = FormatFloat(changePercent); !ok {
		return q, false
	}
	if q.Volume, ok = FormatFloat(volume); !ok {
		return q, false
	}
	if q.Name == "" {
		q.Name = symbol
	}
	return q, q.Valid()
}
