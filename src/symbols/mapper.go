// Package symbols translates between the exchange-qualified notation used by
// the watch-list (EXCHANGE:TICKER) and the plain tickers the quote vendors
// expect.
package symbols

import (
	"maps"
	"slices"
	"strings"
)

// Entry is one qualified -> plain mapping.
type Entry struct {
	Qualified string
	Plain     string
}

// defaultTable is ordered; the default watch-list follows it.
var defaultTable = []Entry{
	{"NASDAQ:AAPL", "AAPL"},
	{"NASDAQ:MSFT", "MSFT"},
	{"NASDAQ:TSLA", "TSLA"},
	{"NASDAQ:NVDA", "NVDA"},
	{"CME_MINI:ES1!", "ES=F"},
	{"TVC:SPX", "^GSPC"},
	{"AMEX:SPY", "SPY"},
	{"NASDAQ:QQQ", "QQQ"},
	{"OANDA:EURUSD", "EURUSD=X"},
	{"OANDA:USDJPY", "USDJPY=X"},
	{"TVC:GOLD", "GC=F"},
	{"NYMEX:CL1!", "CL=F"},
}

// -----------------------------------------------------------------------------

// Mapper is immutable after construction and safe for concurrent use.
type Mapper struct {
	forward map[string]string
	reverse map[string]string
}

// -----------------------------------------------------------------------------

// NewMapper builds the default table and applies overrides on top of it.
func NewMapper(overrides map[string]string) *Mapper {
	m := &Mapper{
		forward: make(map[string]string, len(defaultTable)+len(overrides)),
		reverse: make(map[string]string, len(defaultTable)+len(overrides)),
	}
	for _, e := range defaultTable {
		m.add(e.Qualified, e.Plain)
	}
	// Overrides apply in sorted key order; a plain symbol keeps its first claimant.
	for _, key := range slices.Sorted(maps.Keys(overrides)) {
		q, p := strings.TrimSpace(key), strings.TrimSpace(overrides[key])
		if q == "" || p == "" {
			continue
		}
		if old, ok := m.forward[q]; ok && m.reverse[old] == q {
			delete(m.reverse, old)
		}
		m.add(q, p)
	}
	return m
}

// -----------------------------------------------------------------------------

func (m *Mapper) add(qualified, plain string) {
	m.forward[qualified] = plain
	if _, exists := m.reverse[plain]; !exists {
		m.reverse[plain] = qualified
	}
}

// -----------------------------------------------------------------------------

// ToProviderSymbol returns the plain symbol for a qualified one, or the input
// unchanged when no mapping exists.
func (m *Mapper) ToProviderSymbol(qualified string) string {
	if plain, ok := m.forward[qualified]; ok {
		return plain
	}
	return qualified
}

// -----------------------------------------------------------------------------

// ToProviderSymbols maps a list, preserving order and length.
func (m *Mapper) ToProviderSymbols(qualified []string) []string {
	out := make([]string, len(qualified))
	for i, q := range qualified {
		out[i] = m.ToProviderSymbol(q)
	}
	return out
}

// -----------------------------------------------------------------------------

// ToQualified is the reverse lookup.
func (m *Mapper) ToQualified(plain string) (string, bool) {
	q, ok := m.reverse[plain]
	return q, ok
}

// -----------------------------------------------------------------------------

// Split separates "EXCHANGE:TICKER". A symbol without a colon has no exchange.
func Split(symbol string) (exchange, ticker string) {
	if i := strings.Index(symbol, ":"); i >= 0 {
		return symbol[:i], symbol[i+1:]
	}
	return "", symbol
}

// -----------------------------------------------------------------------------

// DefaultWatchList returns a fresh copy of the built-in watch-list.
func DefaultWatchList() []string {
	out := make([]string, len(defaultTable))
	for i, e := range defaultTable {
		out[i] = e.Qualified
	}
	return out
}

// -----------------------------------------------------------------------------

// Normalize trims, upper-cases and de-duplicates a user supplied list.
func Normalize(list []string) []string {
	seen := make(map[string]struct{}, len(list))
	out := make([]string, 0, len(list))
	for _, s := range list {
		s = strings.ToUpper(strings.TrimSpace(s))
		if s == "" {
			continue
		}
		if _, dup := seen[s]; dup {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
