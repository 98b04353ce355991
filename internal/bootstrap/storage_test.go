package bootstrap

import (
	"context"
	"log/slog"
	"testing"

	"github.com/Domenick1991/flightdesk/config"
	"github.com/Domenick1991/flightdesk/internal/backend"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenStorage_REST(t *testing.T) {
	cfg := &config.Config{Backend: config.BackendConfig{
		Driver:            config.DriverREST,
		BaseURL:           "http://backend.local/api",
		TimeoutSeconds:    5,
		RequestsPerSecond: 10,
	}}

	s, err := OpenStorage(context.Background(), cfg, slog.Default())
	require.NoError(t, err)
	defer s.Close()

	assert.IsType(t, &backend.FlightStore{}, s.Flights)
	assert.IsType(t, &backend.AirportStore{}, s.Airports)
}

func TestOpenStorage_UnknownDriver(t *testing.T) {
	cfg := &config.Config{Backend: config.BackendConfig{Driver: "sqlite"}}

	_, err := OpenStorage(context.Background(), cfg, slog.Default())
	assert.ErrorContains(t, err, "unknown backend driver")
}
