package interfaces

import "context"

// -----------------------------------------------------------------------------
// INetworkManager defines the contract for outbound HTTP requests.
// There are no retries: the refresh timer is the only retry mechanism.
// -----------------------------------------------------------------------------

type INetworkManager interface {

	// -----------------------------------------------------------------------------

	// Get performs a GET request to the specified URL with query parameters.
	// Returns the response body or an error for transport faults and non-2xx.
	Get(ctx context.Context, url string, params map[string]string, headers map[string]string) ([]byte, error)

	// -----------------------------------------------------------------------------

	// PostJSON marshals body and POSTs it as application/json.
	PostJSON(ctx context.Context, url string, body interface{}, headers map[string]string) ([]byte, error)
}
