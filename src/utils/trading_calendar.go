package utils

import (
	"log"
	"strings"
	"time"

	"github.com/scmhub/calendar"
)

// SessionKind selects how open/closed is decided for an instrument.
type SessionKind int

const (
	SessionExchange SessionKind = iota // scmhub/calendar by MIC
	SessionFX                          // Sunday 17:00 to Friday 17:00 New York
	SessionFutures                     // FX hours minus the daily 17:00-18:00 New York halt
)

// exchange prefix (watch-list notation) -> MIC
var exchangeMICs = map[string]string{
	"NASDAQ":   "xnas",
	"NYSE":     "xnys",
	"AMEX":     "xnys",
	"ARCA":     "xnys",
	"TVC":      "xnys",
	"LSE":      "xlon",
	"XETR":     "xetr",
	"FWB":      "xfra",
	"EURONEXT": "xpar",
	"SIX":      "xswx",
	"TSX":      "xtse",
	"TSE":      "xtks",
	"HKEX":     "xhkg",
	"ASX":      "xasx",
}

var fxPrefixes = map[string]bool{"OANDA": true, "FX": true, "FX_IDC": true, "FOREXCOM": true}

var futuresPrefixes = map[string]bool{"CME": true, "CME_MINI": true, "CBOT": true, "NYMEX": true, "COMEX": true}

// TradingCalendar answers "is this market open" for one instrument class.
type TradingCalendar struct {
	Calendar *calendar.Calendar
	Kind     SessionKind
	Fallback bool
	Timezone *time.Location
}

// -----------------------------------------------------------------------------

// GetCalendar resolves a qualified symbol (EXCHANGE:TICKER) to a calendar.
// Unknown exchanges use NYSE hours.
func GetCalendar(symbol string) *TradingCalendar {
	exchange := ""
	if i := strings.Index(symbol, ":"); i >= 0 {
		exchange = strings.ToUpper(symbol[:i])
	}

	nyLoc := newYork()
	if fxPrefixes[exchange] {
		return &TradingCalendar{Kind: SessionFX, Timezone: nyLoc}
	}
	if futuresPrefixes[exchange] {
		return &TradingCalendar{Kind: SessionFutures, Timezone: nyLoc}
	}

	mic, ok := exchangeMICs[exchange]
	if !ok {
		mic = "xnys"
	}

	cal := calendar.GetCalendar(mic)
	if cal == nil {
		cal = calendar.GetCalendar("xnys")
	}

	if cal == nil {
		log.Printf("WARNING: Failed to load calendar for MIC '%s' and fallback 'xnys'. Using simple fallback (Mon-Fri 09:30-16:00 New York).", mic)
		return &TradingCalendar{Kind: SessionExchange, Fallback: true, Timezone: nyLoc}
	}

	return &TradingCalendar{Calendar: cal, Kind: SessionExchange, Timezone: cal.Loc}
}

// -----------------------------------------------------------------------------

func newYork() *time.Location {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		return time.UTC
	}
	return loc
}

// -----------------------------------------------------------------------------

func (tc *TradingCalendar) IsTradingDay(date time.Time) bool {
	if tc.Timezone != nil {
		date = date.In(tc.Timezone)
	}

	if tc.Kind != SessionExchange || tc.Fallback {
		weekday := date.Weekday()
		return weekday != time.Saturday && weekday != time.Sunday
	}
	return tc.Calendar.IsBusinessDay(date)
}

// -----------------------------------------------------------------------------

// IsOpenOnMinute checks if the market is open at a specific minute.
func (tc *TradingCalendar) IsOpenOnMinute(t time.Time) bool {
	if tc.Timezone != nil {
		t = t.In(tc.Timezone)
	}

	switch tc.Kind {
	case SessionFX:
		return roundTheClockOpen(t, false)
	case SessionFutures:
		return roundTheClockOpen(t, true)
	}

	if tc.Fallback {
		if !tc.IsTradingDay(t) {
			return false
		}
		hour := t.Hour()
		minute := t.Minute()
		return (hour > 9 || (hour == 9 && minute >= 30)) && hour < 16
	}

	return tc.Calendar.IsOpen(t)
}

// -----------------------------------------------------------------------------

// roundTheClockOpen implements the Sunday 17:00 to Friday 17:00 (New York)
// week, optionally closed for the daily 17:00-18:00 maintenance halt.
func roundTheClockOpen(t time.Time, dailyHalt bool) bool {
	hour := t.Hour()
	switch t.Weekday() {
	case time.Saturday:
		return false
	case time.Sunday:
		if dailyHalt {
			return hour >= 18
		}
		return hour >= 17
	case time.Friday:
		return hour < 17
	default:
		if dailyHalt && hour == 17 {
			return false
		}
		return true
	}
}
