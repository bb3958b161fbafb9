package cmd

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/inference-sim/mmcsim/sim"
	"github.com/inference-sim/mmcsim/sim/analytic"
	"github.com/inference-sim/mmcsim/sim/histogram"
	"github.com/inference-sim/mmcsim/sim/trace"
)

var (
	// CLI flags for the queueing model
	arrivalMean float64 // Mean time between arrivals
	serviceMean float64 // Mean service time
	horizon     float64 // Total simulated time
	servers     int     // Number of servers c
	seed        int64   // Master seed for every random stream
	policy      string  // Server assignment policy

	// CLI flags for ledgers and reporting
	traceLevel        string    // Event trace verbosity
	ledgerLimit       int       // Max samples per idle ledger (0 = unlimited)
	coreThresholds    []float64 // Core idle report thresholds
	packageThresholds []float64 // Package idle report thresholds
	cdf               bool      // Include cumulative idle distributions
	cdfWidth          float64   // Bucket width of the cumulative tables
	cdfMaxBuckets     int       // Max entries per cumulative table (0 = unlimited)
	outputFormat      string    // text, json or yaml

	// Persistent flags
	logLevel     string // Log verbosity level
	scenarioPath string // Optional YAML scenario file
)

// newRootCmd builds the base command for the CLI with fresh flag state
func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "mmcsim",
		Short: "Discrete-event simulator for M/M/1 and M/M/c queues",
		Long: `mmcsim simulates a system of c identical servers fed by a Poisson arrival
stream. Each arriving job is assigned to one server and waits in that
server's own FIFO queue. The run reports Little's-law metrics, per-server
busy and idle time, and the distribution of core and package idle periods.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level, err := logrus.ParseLevel(logLevel)
			if err != nil {
				return fmt.Errorf("invalid log level %q: %w", logLevel, err)
			}
			logrus.SetLevel(level)
			return nil
		},
	}
	root.PersistentFlags().StringVar(&logLevel, "log", "warn", "Log level (trace, debug, info, warn, error, fatal, panic)")
	root.PersistentFlags().StringVar(&scenarioPath, "config", "", "YAML scenario file; flags and MMCSIM_* env vars override its values")

	root.AddCommand(newRunCmd())
	root.AddCommand(newTheoryCmd())
	root.AddCommand(newPoliciesCmd())
	return root
}

// newRunCmd executes the simulation using parameters from flags, env and the scenario file
func newRunCmd() *cobra.Command {
	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Run the queue simulation",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !isValidOutput(outputFormat) {
				return fmt.Errorf("%w: unknown output format %q", sim.ErrConfiguration, outputFormat)
			}
			r, err := resolveScenario(cmd.Flags(), scenarioPath)
			if err != nil {
				return err
			}

			startTime := time.Now()
			s, err := sim.NewSimulator(r.Config)
			if err != nil {
				return err
			}
			res, err := s.Run()
			if err != nil {
				return err
			}
			logrus.Infof("Simulation finished in %s", time.Since(startTime))

			rep, err := buildReport(r, res, reportOptions{CDF: cdf, CDFWidth: cdfWidth, CDFMaxBuckets: cdfMaxBuckets})
			if err != nil {
				return err
			}
			return writeReport(cmd.OutOrStdout(), rep, outputFormat)
		},
	}
	registerModelFlags(runCmd)
	runCmd.Flags().StringVar(&traceLevel, keyTrace, string(trace.TraceLevelNone), "Event trace level (none, service, events)")
	runCmd.Flags().IntVar(&ledgerLimit, keyLedgerLimit, 0, "Max samples per idle ledger; exceeding it fails the run (0 = unlimited)")
	runCmd.Flags().Float64SliceVar(&coreThresholds, "core-thresholds", histogram.DefaultCoreThresholds, "Core idle report thresholds, ascending")
	runCmd.Flags().Float64SliceVar(&packageThresholds, "package-thresholds", histogram.DefaultPackageThresholds, "Package idle report thresholds, ascending")
	runCmd.Flags().BoolVar(&cdf, "cdf", false, "Include cumulative idle distributions in the report")
	runCmd.Flags().Float64Var(&cdfWidth, "cdf-width", 1, "Bucket width of the cumulative idle distributions")
	runCmd.Flags().IntVar(&cdfMaxBuckets, "cdf-max-buckets", 1_000_000, "Max entries per cumulative table (0 = unlimited)")
	return runCmd
}

// newTheoryCmd prints closed-form steady-state values without simulating
func newTheoryCmd() *cobra.Command {
	theoryCmd := &cobra.Command{
		Use:   "theory",
		Short: "Print analytical M/M/c predictions for a scenario",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !isValidOutput(outputFormat) {
				return fmt.Errorf("%w: unknown output format %q", sim.ErrConfiguration, outputFormat)
			}
			r, err := resolveScenario(cmd.Flags(), scenarioPath)
			if err != nil {
				return err
			}
			cfg := r.Config
			if cfg.OfferedLoad() >= 1 {
				logrus.Warnf("Offered load rho=%g >= 1: the system has no steady state", cfg.OfferedLoad())
			}
			values := []analytic.Values{
				analytic.Solve(analytic.RandomSplit, cfg.ArrivalMean, cfg.ServiceMean, cfg.Servers),
				analytic.Solve(analytic.SharedQueue, cfg.ArrivalMean, cfg.ServiceMean, cfg.Servers),
			}
			return writeTheory(cmd.OutOrStdout(), values, outputFormat)
		},
	}
	registerModelFlags(theoryCmd)
	return theoryCmd
}

// newPoliciesCmd lists the server assignment policies
func newPoliciesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "policies",
		Short: "List server assignment policies",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			for _, name := range sim.AvailableAssignmentPolicies() {
				fmt.Fprintf(cmd.OutOrStdout(), "%-16s %s\n", name, policyDescriptions[name])
			}
		},
	}
}

var policyDescriptions = map[string]string{
	sim.PolicyRandom:        "uniform random server (default)",
	sim.PolicyRoundRobin:    "servers in cyclic order",
	sim.PolicyShortestQueue: "fewest jobs queued or in service, lowest index on ties",
	sim.PolicyIdleFirst:     "an idle server when one exists, else shortest queue",
}

// Execute runs the CLI root command
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// registerModelFlags adds the scenario flags shared by run and theory.
func registerModelFlags(cmd *cobra.Command) {
	cmd.Flags().Float64VarP(&arrivalMean, keyArrivalMean, "a", sim.DefaultArrivalMean, "Mean time between arrivals")
	cmd.Flags().Float64VarP(&serviceMean, keyServiceMean, "d", sim.DefaultServiceMean, "Mean service time")
	cmd.Flags().Float64VarP(&horizon, keyHorizon, "s", sim.DefaultHorizon, "Total simulation time")
	cmd.Flags().IntVarP(&servers, keyServers, "c", sim.DefaultServers, "Number of servers in the system")
	cmd.Flags().Int64Var(&seed, keySeed, sim.DefaultSeed, "Seed for every random stream")
	cmd.Flags().StringVar(&policy, keyPolicy, sim.PolicyRandom,
		"Server assignment policy ("+strings.Join(sim.AvailableAssignmentPolicies(), ", ")+")")
	cmd.Flags().StringVarP(&outputFormat, "output", "o", outputText, "Output format (text, json, yaml)")
}
