package models

import "time"

// ProviderMode tells whether a provider is serving vendor data or its demo dataset.
type ProviderMode string

const (
	ProviderLive ProviderMode = "live"
	ProviderDemo ProviderMode = "demo"
)

// MProviderInfo is the static descriptor an adapter returns from Describe.
type MProviderInfo struct {
	Name         string       `json:"name"`
	Status       ProviderMode `json:"status"`
	Message      string       `json:"message"`
	ReferenceURL string       `json:"referenceUrl"`
}

// MSelfTestResult is the outcome of one diagnostic request.
type MSelfTestResult struct {
	Provider  string        `json:"provider"`
	OK        bool          `json:"ok"`
	Detail    string        `json:"detail,omitempty"`
	Latency   time.Duration `json:"latency"`
	CheckedAt time.Time     `json:"checkedAt"`
}
