package utils

import (
	"sync"
	"time"

	"market-dashboard/src/logger"
)

// MarketScheduler annotates watch-list symbols with their market session.
// Calendars are cached per symbol and rebuilt when the watch-list changes.
type MarketScheduler struct {
	Calendars map[string]*TradingCalendar
	Logger    *logger.Logger
	now       func() time.Time
	mu        sync.RWMutex
}

// -----------------------------------------------------------------------------

func NewMarketScheduler(symbols []string, l *logger.Logger) *MarketScheduler {
	ms := &MarketScheduler{
		Calendars: make(map[string]*TradingCalendar),
		Logger:    l,
		now:       time.Now,
	}
	ms.MapSymbolsToCalendars(symbols)
	return ms
}

// -----------------------------------------------------------------------------

// MapSymbolsToCalendars replaces the symbol -> calendar mapping
func (ms *MarketScheduler) MapSymbolsToCalendars(symbols []string) {
	calendars := make(map[string]*TradingCalendar, len(symbols))
	for _, symbol := range symbols {
		if cal := GetCalendar(symbol); cal != nil {
			calendars[symbol] = cal
		}
	}

	ms.mu.Lock()
	ms.Calendars = calendars
	ms.mu.Unlock()

	ms.Logger.Debug("MarketScheduler: Mapped %d symbols to calendars.", len(calendars))
}

// -----------------------------------------------------------------------------

// UpdateSymbols updates the scheduler with a new list of symbols
func (ms *MarketScheduler) UpdateSymbols(symbols []string) {
	ms.MapSymbolsToCalendars(symbols)
}

// -----------------------------------------------------------------------------

// Sessions reports open/closed for each symbol. Symbols not seen before are
// resolved on the fly.
func (ms *MarketScheduler) Sessions(symbols []string) map[string]bool {
	now := ms.now().UTC()

	ms.mu.RLock()
	defer ms.mu.RUnlock()

	out := make(map[string]bool, len(symbols))
	for _, symbol := range symbols {
		cal, ok := ms.Calendars[symbol]
		if !ok {
			cal = GetCalendar(symbol)
		}
		out[symbol] = cal.IsOpenOnMinute(now)
	}
	return out
}

// -----------------------------------------------------------------------------

// AnyMarketOpen checks if ANY tracked markets are currently open
func (ms *MarketScheduler) AnyMarketOpen() bool {
	now := ms.now().UTC()

	ms.mu.RLock()
	defer ms.mu.RUnlock()

	for _, cal := range ms.Calendars {
		if cal.IsOpenOnMinute(now) {
			return true
		}
	}
	return false
}
