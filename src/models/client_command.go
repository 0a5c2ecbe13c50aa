package models

// -----------------------------------------------------------------------------
// Websocket client commands
// -----------------------------------------------------------------------------

const (
	CommandSetWatchList = "setWatchList"
	CommandSetAlternate = "setAlternate"
	CommandRefresh      = "refresh"
)

type MClientCommand struct {
	Command string   `json:"command"`
	Symbols []string `json:"symbols,omitempty"`
	Enabled *bool    `json:"enabled,omitempty"`
}

// MServerMessage wraps every frame pushed to websocket clients.
type MServerMessage struct {
	Type     string     `json:"type"` // "snapshot" or "error"
	Snapshot *MSnapshot `json:"snapshot,omitempty"`
	Error    string     `json:"error,omitempty"`
}
