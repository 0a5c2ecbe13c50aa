package interfaces

import (
	"context"

	"market-dashboard/src/models"
)

// -----------------------------------------------------------------------------
// ISnapshotSink receives every snapshot the controller publishes, in order.
// -----------------------------------------------------------------------------

type ISnapshotSink interface {
	// Name identifies the sink in logs
	Name() string

	// -----------------------------------------------------------------------------
	// Publish must not retain the snapshot's maps or slices after returning
	Publish(ctx context.Context, snapshot models.MSnapshot) error
}

// -----------------------------------------------------------------------------
// IDataExchanger is a sink that also serves clients (HTTP/WebSocket).
// -----------------------------------------------------------------------------

type IDataExchanger interface {
	ISnapshotSink

	// -----------------------------------------------------------------------------
	// Start the server
	Start() error

	// -----------------------------------------------------------------------------
	// Stop the server gracefully
	Stop(ctx context.Context) error
}
