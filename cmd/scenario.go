package cmd

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/inference-sim/mmcsim/sim"
	"github.com/inference-sim/mmcsim/sim/histogram"
	"github.com/inference-sim/mmcsim/sim/trace"
)

// envPrefix namespaces environment overrides, e.g. MMCSIM_ARRIVAL_MEAN.
const envPrefix = "MMCSIM"

// Scenario is the on-disk form of a simulation run. Unset fields fall back to
// environment variables and then to flag defaults; flags set on the command
// line always win.
type Scenario struct {
	ArrivalMean       *float64  `yaml:"arrival_mean,omitempty" json:"arrival_mean,omitempty"`
	ServiceMean       *float64  `yaml:"service_mean,omitempty" json:"service_mean,omitempty"`
	Horizon           *float64  `yaml:"horizon,omitempty" json:"horizon,omitempty"`
	Servers           *int      `yaml:"servers,omitempty" json:"servers,omitempty"`
	Seed              *int64    `yaml:"seed,omitempty" json:"seed,omitempty"`
	Policy            *string   `yaml:"policy,omitempty" json:"policy,omitempty"`
	Trace             *string   `yaml:"trace,omitempty" json:"trace,omitempty"`
	LedgerLimit       *int      `yaml:"ledger_limit,omitempty" json:"ledger_limit,omitempty"`
	CoreThresholds    []float64 `yaml:"core_thresholds,omitempty" json:"core_thresholds,omitempty"`
	PackageThresholds []float64 `yaml:"package_thresholds,omitempty" json:"package_thresholds,omitempty"`
}

// loadScenario parses a scenario YAML file.
// Unknown keys are rejected so a typo never silently falls back to a default.
func loadScenario(path string) (Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Scenario{}, fmt.Errorf("reading scenario file: %w", err)
	}
	var sc Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&sc); err != nil {
		// an empty file decodes to io.EOF and means "no overrides"
		if len(bytes.TrimSpace(data)) == 0 {
			return Scenario{}, nil
		}
		return Scenario{}, fmt.Errorf("%w: parsing scenario file %s: %v", sim.ErrConfiguration, path, err)
	}
	return sc, nil
}

// scenarioFromConfig echoes a resolved configuration back in file form.
func scenarioFromConfig(cfg sim.Config, core, pkg []float64) Scenario {
	policy := cfg.Policy
	if policy == "" {
		policy = sim.PolicyRandom
	}
	level := string(cfg.TraceLevel)
	if level == "" {
		level = string(trace.TraceLevelNone)
	}
	return Scenario{
		ArrivalMean:       &cfg.ArrivalMean,
		ServiceMean:       &cfg.ServiceMean,
		Horizon:           &cfg.Horizon,
		Servers:           &cfg.Servers,
		Seed:              &cfg.Seed,
		Policy:            &policy,
		Trace:             &level,
		LedgerLimit:       &cfg.LedgerLimit,
		CoreThresholds:    core,
		PackageThresholds: pkg,
	}
}

// scalar keys shared by flags, env and scenario files
const (
	keyArrivalMean = "arrival-mean"
	keyServiceMean = "service-mean"
	keyHorizon     = "horizon"
	keyServers     = "servers"
	keySeed        = "seed"
	keyPolicy      = "policy"
	keyTrace       = "trace"
	keyLedgerLimit = "ledger-limit"
)

// resolved is everything a run needs after precedence has been applied.
type resolved struct {
	Config            sim.Config
	CoreThresholds    []float64
	PackageThresholds []float64
}

// resolveScenario merges flag > env > scenario file > flag default into a
// validated sim.Config. Threshold lists come from the flag when set, then the
// scenario file, then the built-in defaults.
func resolveScenario(flags *pflag.FlagSet, path string) (resolved, error) {
	var sc Scenario
	if path != "" {
		var err error
		if sc, err = loadScenario(path); err != nil {
			return resolved{}, err
		}
	}

	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	applyScenarioDefaults(v, sc)
	if err := v.BindPFlags(flags); err != nil {
		return resolved{}, fmt.Errorf("binding flags: %w", err)
	}

	cfg := sim.Config{
		ArrivalMean: v.GetFloat64(keyArrivalMean),
		ServiceMean: v.GetFloat64(keyServiceMean),
		Horizon:     v.GetFloat64(keyHorizon),
		Servers:     v.GetInt(keyServers),
		Seed:        v.GetInt64(keySeed),
		Policy:      v.GetString(keyPolicy),
		TraceLevel:  trace.TraceLevel(v.GetString(keyTrace)),
		LedgerLimit: v.GetInt(keyLedgerLimit),
	}
	if err := cfg.Validate(); err != nil {
		return resolved{}, err
	}

	core, err := pickThresholds(flags, "core-thresholds", sc.CoreThresholds, histogram.DefaultCoreThresholds)
	if err != nil {
		return resolved{}, err
	}
	pkg, err := pickThresholds(flags, "package-thresholds", sc.PackageThresholds, histogram.DefaultPackageThresholds)
	if err != nil {
		return resolved{}, err
	}
	return resolved{Config: cfg, CoreThresholds: core, PackageThresholds: pkg}, nil
}

// applyScenarioDefaults layers file values under env and explicit flags.
// Viper consults SetDefault before falling back to the flag's own default.
func applyScenarioDefaults(v *viper.Viper, sc Scenario) {
	if sc.ArrivalMean != nil {
		v.SetDefault(keyArrivalMean, *sc.ArrivalMean)
	}
	if sc.ServiceMean != nil {
		v.SetDefault(keyServiceMean, *sc.ServiceMean)
	}
	if sc.Horizon != nil {
		v.SetDefault(keyHorizon, *sc.Horizon)
	}
	if sc.Servers != nil {
		v.SetDefault(keyServers, *sc.Servers)
	}
	if sc.Seed != nil {
		v.SetDefault(keySeed, *sc.Seed)
	}
	if sc.Policy != nil {
		v.SetDefault(keyPolicy, *sc.Policy)
	}
	if sc.Trace != nil {
		v.SetDefault(keyTrace, *sc.Trace)
	}
	if sc.LedgerLimit != nil {
		v.SetDefault(keyLedgerLimit, *sc.LedgerLimit)
	}
}

func pickThresholds(flags *pflag.FlagSet, name string, fromFile, fallback []float64) ([]float64, error) {
	if f := flags.Lookup(name); f != nil && f.Changed {
		values, err := flags.GetFloat64Slice(name)
		if err != nil {
			return nil, fmt.Errorf("%w: reading --%s: %v", sim.ErrConfiguration, name, err)
		}
		return values, nil
	}
	if len(fromFile) > 0 {
		return fromFile, nil
	}
	return fallback, nil
}
