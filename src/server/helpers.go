package server

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"market-dashboard/src/aggregator"
	"market-dashboard/src/helpers"

	"github.com/gin-gonic/gin"
)

// -----------------------------------------------------------------------------

func writeError(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, gin.H{"error": msg})
}

// -----------------------------------------------------------------------------

// errorStatus maps the typed errors to an HTTP status.
func errorStatus(err error) int {
	var (
		validation *helpers.ValidationError
		cfg        *helpers.ConfigurationError
		network    *helpers.NetworkError
		provider   *helpers.ProviderError
	)
	switch {
	case errors.Is(err, aggregator.ErrStopped):
		return http.StatusServiceUnavailable
	case errors.As(err, &validation), errors.As(err, &cfg):
		return http.StatusBadRequest
	case errors.As(err, &network), errors.As(err, &provider):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// -----------------------------------------------------------------------------

// queryInt reads a positive integer query parameter.
func queryInt(c *gin.Context, key string, fallback int) (int, error) {
	raw := c.Query(key)
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v <= 0 {
		return 0, fmt.Errorf("%s must be a positive integer", key)
	}
	return v, nil
}
