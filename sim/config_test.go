package sim

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/inference-sim/mmcsim/sim/trace"
)

func TestDefaultConfig_IsValid(t *testing.T) {
	cfg := DefaultConfig()
	assert.NoError(t, cfg.Validate())
	assert.Equal(t, 90.0, cfg.ArrivalMean)
	assert.Equal(t, 60.0, cfg.ServiceMean)
	assert.Equal(t, 2, cfg.Servers)
}

func TestConfig_Validate_RejectsInvalidScenarios(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero servers", func(c *Config) { c.Servers = 0 }},
		{"negative servers", func(c *Config) { c.Servers = -2 }},
		{"zero arrival mean", func(c *Config) { c.ArrivalMean = 0 }},
		{"negative arrival mean", func(c *Config) { c.ArrivalMean = -90 }},
		{"NaN arrival mean", func(c *Config) { c.ArrivalMean = math.NaN() }},
		{"zero service mean", func(c *Config) { c.ServiceMean = 0 }},
		{"infinite service mean", func(c *Config) { c.ServiceMean = math.Inf(1) }},
		{"negative horizon", func(c *Config) { c.Horizon = -1 }},
		{"infinite horizon", func(c *Config) { c.Horizon = math.Inf(1) }},
		{"unknown policy", func(c *Config) { c.Policy = "fastest" }},
		{"unknown trace level", func(c *Config) { c.TraceLevel = trace.TraceLevel("verbose") }},
		{"negative ledger limit", func(c *Config) { c.LedgerLimit = -1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)

			err := cfg.Validate()

			if !errors.Is(err, ErrConfiguration) {
				t.Errorf("Validate() = %v, want ErrConfiguration", err)
			}
			_, err = NewSimulator(cfg)
			assert.ErrorIs(t, err, ErrConfiguration, "NewSimulator must fail before running")
		})
	}
}

func TestConfig_Validate_ZeroHorizonIsAnEmptyRun(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Horizon = 0
	assert.NoError(t, cfg.Validate())
}

func TestConfig_OfferedLoad(t *testing.T) {
	cfg := Config{ArrivalMean: 45, ServiceMean: 60, Servers: 2}
	assert.InDelta(t, 2.0/3.0, cfg.OfferedLoad(), 1e-12)
}
