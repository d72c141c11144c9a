package tracing

import (
	"context"
	"testing"

	"github.com/phrazzld/kioku/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetup_DisabledIsNoop(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.TelemetryConfig
	}{
		{"disabled", config.TelemetryConfig{Enabled: false, OTLPEndpoint: "http://localhost:4318"}},
		{"enabled without endpoint", config.TelemetryConfig{Enabled: true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			shutdown, err := Setup(context.Background(), tt.cfg, nil)
			require.NoError(t, err)
			require.NotNil(t, shutdown)
			assert.NoError(t, shutdown(context.Background()))
		})
	}
}

func TestSetup_Enabled(t *testing.T) {
	cfg := config.TelemetryConfig{
		Enabled:      true,
		OTLPEndpoint: "http://127.0.0.1:4318",
		ServiceName:  "kioku-test",
	}

	shutdown, err := Setup(context.Background(), cfg, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	// Nothing was recorded, so shutdown does not need the collector.
	_ = shutdown(ctx)
}
