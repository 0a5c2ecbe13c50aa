package utils

import "time"

// -----------------------------------------------------------------------------

// Defaults used when the config leaves a refresh setting unset.
const (
	DefaultRefreshInterval  = 30 * time.Second
	DefaultChartTimeout     = 20 * time.Second
	DefaultChartFanOutCap   = 8
	DefaultChartConcurrency = 4
	DefaultRetentionDays    = 7
	DefaultRequestTimeout   = 10 * time.Second
	DefaultTrendingLimit    = 6
	DefaultHistoryLimit     = 50
	DefaultSelfTestHistory  = 10
)

// -----------------------------------------------------------------------------

// SecondsOr converts a config value in seconds, using def when it is not positive.
func SecondsOr(seconds int, def time.Duration) time.Duration {
	if seconds <= 0 {
		return def
	}
	return time.Duration(seconds) * time.Second
}

// -----------------------------------------------------------------------------

// IntOr returns v, or def when v is not positive.
func IntOr(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}
