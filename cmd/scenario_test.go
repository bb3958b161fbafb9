package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inference-sim/mmcsim/sim"
	"github.com/inference-sim/mmcsim/sim/histogram"
	"github.com/inference-sim/mmcsim/sim/trace"
)

func writeScenario(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

// parsedRunFlags returns the run command's flag set after parsing args.
func parsedRunFlags(t *testing.T, args ...string) *pflag.FlagSet {
	t.Helper()
	run := newRunCmd()
	require.NoError(t, run.Flags().Parse(args))
	return run.Flags()
}

func TestLoadScenario_ParsesKnownFields(t *testing.T) {
	path := writeScenario(t, `
arrival_mean: 10
service_mean: 35
horizon: 5000
servers: 5
seed: 7
policy: shortest-queue
trace: service
ledger_limit: 1000
core_thresholds: [1, 5]
`)
	sc, err := loadScenario(path)
	require.NoError(t, err)

	assert.Equal(t, 10.0, *sc.ArrivalMean)
	assert.Equal(t, 35.0, *sc.ServiceMean)
	assert.Equal(t, 5000.0, *sc.Horizon)
	assert.Equal(t, 5, *sc.Servers)
	assert.Equal(t, int64(7), *sc.Seed)
	assert.Equal(t, "shortest-queue", *sc.Policy)
	assert.Equal(t, "service", *sc.Trace)
	assert.Equal(t, 1000, *sc.LedgerLimit)
	assert.Equal(t, []float64{1, 5}, sc.CoreThresholds)
	assert.Nil(t, sc.PackageThresholds)
}

func TestLoadScenario_UnknownKey_IsConfigurationError(t *testing.T) {
	// GIVEN a scenario with a typo in a key
	path := writeScenario(t, "arival_mean: 10\n")

	// WHEN loaded
	_, err := loadScenario(path)

	// THEN the typo is rejected rather than silently ignored
	assert.ErrorIs(t, err, sim.ErrConfiguration)
}

func TestLoadScenario_EmptyFile_NoOverrides(t *testing.T) {
	sc, err := loadScenario(writeScenario(t, "\n"))
	require.NoError(t, err)
	assert.Equal(t, Scenario{}, sc)
}

func TestLoadScenario_MissingFile(t *testing.T) {
	_, err := loadScenario(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestResolveScenario_Defaults(t *testing.T) {
	r, err := resolveScenario(parsedRunFlags(t), "")
	require.NoError(t, err)

	cfg := r.Config
	assert.Equal(t, sim.DefaultArrivalMean, cfg.ArrivalMean)
	assert.Equal(t, sim.DefaultServiceMean, cfg.ServiceMean)
	assert.Equal(t, sim.DefaultHorizon, cfg.Horizon)
	assert.Equal(t, sim.DefaultServers, cfg.Servers)
	assert.Equal(t, int64(sim.DefaultSeed), cfg.Seed)
	assert.Equal(t, sim.PolicyRandom, cfg.Policy)
	assert.Equal(t, trace.TraceLevelNone, cfg.TraceLevel)
	assert.Equal(t, histogram.DefaultCoreThresholds, r.CoreThresholds)
	assert.Equal(t, histogram.DefaultPackageThresholds, r.PackageThresholds)
}

func TestResolveScenario_Precedence(t *testing.T) {
	// GIVEN a file setting servers=3, arrival_mean=50 and service_mean=40
	path := writeScenario(t, "servers: 3\narrival_mean: 50\nservice_mean: 40\n")
	// AND an env override for servers and service mean
	t.Setenv("MMCSIM_SERVERS", "4")
	t.Setenv("MMCSIM_SERVICE_MEAN", "45")

	// WHEN the command line sets the service mean explicitly
	r, err := resolveScenario(parsedRunFlags(t, "-d", "30"), path)
	require.NoError(t, err)

	// THEN flag > env > file > flag default
	assert.Equal(t, 30.0, r.Config.ServiceMean, "flag wins")
	assert.Equal(t, 4, r.Config.Servers, "env beats file")
	assert.Equal(t, 50.0, r.Config.ArrivalMean, "file beats flag default")
	assert.Equal(t, sim.DefaultHorizon, r.Config.Horizon, "flag default fills the rest")
}

func TestResolveScenario_ThresholdPrecedence(t *testing.T) {
	path := writeScenario(t, "core_thresholds: [1, 2]\npackage_thresholds: [5]\n")

	r, err := resolveScenario(parsedRunFlags(t, "--package-thresholds", "7,70"), path)
	require.NoError(t, err)

	assert.Equal(t, []float64{1, 2}, r.CoreThresholds)
	assert.Equal(t, []float64{7, 70}, r.PackageThresholds)
}

func TestResolveScenario_InvalidValues_AreConfigurationErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"zero servers", []string{"-c", "0"}},
		{"negative arrival mean", []string{"-a", "-1"}},
		{"zero service mean", []string{"-d", "0"}},
		{"negative horizon", []string{"-s", "-5"}},
		{"unknown policy", []string{"--policy", "fastest"}},
		{"unknown trace level", []string{"--trace", "verbose"}},
		{"negative ledger limit", []string{"--ledger-limit", "-1"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := resolveScenario(parsedRunFlags(t, tt.args...), "")
			assert.ErrorIs(t, err, sim.ErrConfiguration)
		})
	}
}

func TestScenarioFromConfig_RoundTripsThroughLoader(t *testing.T) {
	// GIVEN a resolved configuration echoed back as a scenario
	cfg := sim.DefaultConfig()
	cfg.Servers = 4
	sc := scenarioFromConfig(cfg, []float64{3}, []float64{30})

	// WHEN written as YAML and loaded again
	var buf bytes.Buffer
	require.NoError(t, writeYAML(&buf, sc))
	loaded, err := loadScenario(writeScenario(t, buf.String()))
	require.NoError(t, err)

	// THEN it describes the same scenario
	assert.Equal(t, sc, loaded)
	assert.Equal(t, sim.PolicyRandom, *loaded.Policy)
	assert.Equal(t, string(trace.TraceLevelNone), *loaded.Trace)
}

func TestPickThresholds_FlagOfWrongType_IsConfigurationError(t *testing.T) {
	// GIVEN a flag set where the threshold flag is not a float slice
	flags := pflag.NewFlagSet("run", pflag.ContinueOnError)
	flags.String("core-thresholds", "", "")
	require.NoError(t, flags.Parse([]string{"--core-thresholds", "2,20"}))

	// WHEN the thresholds are picked
	_, err := pickThresholds(flags, "core-thresholds", []float64{1}, histogram.DefaultCoreThresholds)

	// THEN the error surfaces instead of falling back to the file or defaults
	assert.ErrorIs(t, err, sim.ErrConfiguration)
}

func TestPickThresholds_Fallbacks(t *testing.T) {
	flags := parsedRunFlags(t)

	got, err := pickThresholds(flags, "core-thresholds", []float64{1, 3}, histogram.DefaultCoreThresholds)
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 3}, got)

	got, err = pickThresholds(flags, "core-thresholds", nil, histogram.DefaultCoreThresholds)
	require.NoError(t, err)
	assert.Equal(t, histogram.DefaultCoreThresholds, got)
}
