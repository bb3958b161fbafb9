package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/inference-sim/mmcsim/sim"
	"github.com/inference-sim/mmcsim/sim/analytic"
	"github.com/inference-sim/mmcsim/sim/histogram"
	"github.com/inference-sim/mmcsim/sim/trace"
)

// Output formats accepted by --output.
const (
	outputText = "text"
	outputJSON = "json"
	outputYAML = "yaml"
)

func isValidOutput(format string) bool {
	switch format {
	case outputText, outputJSON, outputYAML:
		return true
	}
	return false
}

// IdleReport describes one idle ledger.
type IdleReport struct {
	Ledger  histogram.Summary  `json:"ledger" yaml:"ledger"`
	Buckets []histogram.Bucket `json:"buckets" yaml:"buckets"`
	CDF     []histogram.Point  `json:"cdf,omitempty" yaml:"cdf,omitempty"`
}

// Report is the final output of a run.
type Report struct {
	Scenario    Scenario            `json:"scenario" yaml:"scenario"`
	Results     *sim.Results        `json:"results" yaml:"results"`
	CoreIdle    IdleReport          `json:"core_idle" yaml:"core_idle"`
	PackageIdle IdleReport          `json:"package_idle" yaml:"package_idle"`
	Theory      analytic.Values     `json:"theory" yaml:"theory"`
	Trace       *trace.TraceSummary `json:"trace,omitempty" yaml:"trace,omitempty"`
}

// reportOptions controls the optional parts of a Report.
type reportOptions struct {
	CDF           bool
	CDFWidth      float64
	CDFMaxBuckets int
}

// buildReport runs the histogram builders over both ledgers and attaches the
// analytical prediction for the configured policy. Core idle fractions are
// shares of the summed per-server idle time; package idle fractions are
// shares of the package ledger itself.
func buildReport(r resolved, res *sim.Results, opts reportOptions) (*Report, error) {
	core, err := buildIdleReport(res.CoreIdle, r.CoreThresholds, res.IdleTimeAllServers, opts)
	if err != nil {
		return nil, fmt.Errorf("core idle distribution: %w", err)
	}
	pkg, err := buildIdleReport(res.PackageIdle, r.PackageThresholds, 0, opts)
	if err != nil {
		return nil, fmt.Errorf("package idle distribution: %w", err)
	}

	cfg := r.Config
	rep := &Report{
		Scenario:    scenarioFromConfig(cfg, r.CoreThresholds, r.PackageThresholds),
		Results:     res,
		CoreIdle:    core,
		PackageIdle: pkg,
		Theory:      analytic.Solve(analytic.ModelFor(cfg.Policy), cfg.ArrivalMean, cfg.ServiceMean, cfg.Servers),
	}
	if res.Trace != nil {
		rep.Trace = trace.Summarize(res.Trace)
	}
	return rep, nil
}

func buildIdleReport(ledger *sim.Ledger, thresholds []float64, denominator float64, opts reportOptions) (IdleReport, error) {
	samples := ledger.Samples()
	buckets, err := histogram.ThresholdFractions(samples, thresholds, denominator)
	if err != nil {
		return IdleReport{}, err
	}
	ir := IdleReport{
		Ledger:  histogram.Summarize(samples),
		Buckets: buckets,
	}
	logrus.Debugf("%s ledger: %d samples, total %g", ledger.Name(), ledger.Len(), ledger.Total())

	if opts.CDF {
		cdf, err := histogram.CumulativeDistribution(samples, histogram.CDFOptions{
			Width:      opts.CDFWidth,
			MaxBuckets: opts.CDFMaxBuckets,
		})
		if err != nil {
			return IdleReport{}, err
		}
		ir.CDF = histogram.Steps(cdf)
		logrus.Debugf("%s cdf: %d buckets, %d steps", ledger.Name(), len(cdf), len(ir.CDF))
	}
	return ir, nil
}

// writeReport renders rep in the requested format.
func writeReport(w io.Writer, rep *Report, format string) error {
	switch format {
	case outputJSON:
		return writeJSON(w, rep)
	case outputYAML:
		return writeYAML(w, rep)
	default:
		writeText(w, rep)
		return nil
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeYAML(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}

const rule = "<------------------------------------------------------------->"

func writeText(w io.Writer, rep *Report) {
	res := rep.Results
	cfg := res.Config

	fmt.Fprintln(w, rule)
	fmt.Fprintf(w, "<           *** Results for M/M/%d simulation ***             >\n", cfg.Servers)
	fmt.Fprintln(w, rule)
	fmt.Fprintln(w, "-  INPUTS:")
	fmt.Fprintf(w, "-    Total simulation time        = %.9f\n", res.EndTime)
	fmt.Fprintf(w, "-    Mean time between arrivals   = %.9f\n", cfg.ArrivalMean)
	fmt.Fprintf(w, "-    Mean service time            = %.9f\n", cfg.ServiceMean)
	fmt.Fprintf(w, "-    # of Servers in system       = %d\n", cfg.Servers)
	fmt.Fprintf(w, "-    Assignment policy            = %s\n", *rep.Scenario.Policy)
	fmt.Fprintf(w, "-    Seed                         = %d\n", cfg.Seed)
	fmt.Fprintln(w, rule)
	fmt.Fprintln(w, "-  OUTPUTS:")
	fmt.Fprintf(w, "-    # of Arrivals                = %d\n", res.Arrivals)
	fmt.Fprintf(w, "-    # of Customers served        = %d\n", res.Completed)
	fmt.Fprintf(w, "-    # in system at end           = %d\n", res.InSystem)
	fmt.Fprintf(w, "-    Throughput rate              = %s\n", res.Throughput)
	fmt.Fprintf(w, "-    Server utilization           = %s (fraction of time all servers busy)\n", res.Utilization)
	fmt.Fprintf(w, "-    Avg # of cust. in system     = %s\n", res.AvgInSystem)
	fmt.Fprintf(w, "-    Mean Sojourn time            = %s\n", res.AvgSojourn)
	fmt.Fprintf(w, "-    Busy Time                    = %f (summed over servers)\n", res.BusyTimeAllServers)
	fmt.Fprintf(w, "-    Idle Time                    = %f (summed over servers)\n", res.IdleTimeAllServers)
	fmt.Fprintf(w, "-    Average utilization          = %s\n", res.AltUtilization)
	fmt.Fprintf(w, "-    Realised mean interarrival   = %s\n", res.MeanInterarrival)
	fmt.Fprintf(w, "-    Realised mean service        = %s\n", res.MeanService)
	fmt.Fprintln(w, "-    Per server:")
	for i, s := range res.Servers {
		fmt.Fprintf(w, "-      Server %-3d assigned=%-8d completed=%-8d busy=%f idle=%f\n",
			i, s.Assigned, s.Completed, s.BusyTime, s.IdleTime)
	}
	fmt.Fprintln(w, "-    Core Idle Time Distribution:")
	writeIdleText(w, rep.CoreIdle)
	fmt.Fprintln(w, "-    Package Idle Time Distribution:")
	writeIdleText(w, rep.PackageIdle)
	fmt.Fprintln(w, rule)
	writeTheoryText(w, rep.Theory, res)
	if rep.Trace != nil {
		fmt.Fprintln(w, rule)
		fmt.Fprintln(w, "-  TRACE:")
		fmt.Fprintf(w, "-    Events                       = %d arrivals, %d departures\n", rep.Trace.Arrivals, rep.Trace.Departures)
		fmt.Fprintf(w, "-    Service starts               = %d (%d without waiting)\n", rep.Trace.ServiceStarts, rep.Trace.Immediate)
		fmt.Fprintf(w, "-    Mean / max wait              = %f / %f\n", rep.Trace.MeanWait, rep.Trace.MaxWait)
	}
	fmt.Fprintln(w, rule)
}

func writeIdleText(w io.Writer, ir IdleReport) {
	for _, b := range ir.Buckets {
		fmt.Fprintf(w, "-      idle %-8s = %s\n", b.Label, b.Fraction)
	}
	s := ir.Ledger
	fmt.Fprintf(w, "-      periods=%d mean=%f p50=%f p90=%f p99=%f max=%f\n", s.Count, s.Mean, s.P50, s.P90, s.P99, s.Max)
	if len(ir.CDF) > 0 {
		steps := make([]string, len(ir.CDF))
		for i, p := range ir.CDF {
			steps[i] = fmt.Sprintf("%d:%.6f", p.Bucket, p.Cumulative)
		}
		fmt.Fprintf(w, "-      cdf %s\n", strings.Join(steps, " "))
	}
}

func writeTheoryText(w io.Writer, v analytic.Values, res *sim.Results) {
	fmt.Fprintf(w, "-  THEORY (%s, rho=%f):\n", v.Model, v.Rho)
	if !v.Stable {
		fmt.Fprintln(w, "-    unstable: no steady state exists")
		return
	}
	fmt.Fprintf(w, "-    %-28s = %-14s simulated %s\n", "P(all servers busy)", v.AllBusy, res.Utilization)
	fmt.Fprintf(w, "-    %-28s = %-14s simulated %s\n", "Avg # of cust. in system", v.AvgInSystem, res.AvgInSystem)
	fmt.Fprintf(w, "-    %-28s = %-14s simulated %s\n", "Mean Sojourn time", v.AvgSojourn, res.AvgSojourn)
	fmt.Fprintf(w, "-    %-28s = %s\n", "Mean wait in queue", v.AvgWait)
}

// writeTheory renders the standalone theory command output.
func writeTheory(w io.Writer, values []analytic.Values, format string) error {
	switch format {
	case outputJSON:
		return writeJSON(w, values)
	case outputYAML:
		return writeYAML(w, values)
	}
	for _, v := range values {
		fmt.Fprintf(w, "%s (rho=%f)\n", v.Model, v.Rho)
		if !v.Stable {
			fmt.Fprintln(w, "  unstable: no steady state exists")
			continue
		}
		fmt.Fprintf(w, "  throughput         = %s\n", v.Throughput)
		fmt.Fprintf(w, "  utilization        = %s\n", v.Utilization)
		fmt.Fprintf(w, "  P(all busy)        = %s\n", v.AllBusy)
		fmt.Fprintf(w, "  L  (in system)     = %s\n", v.AvgInSystem)
		fmt.Fprintf(w, "  Lq (in queue)      = %s\n", v.AvgInQueue)
		fmt.Fprintf(w, "  W  (sojourn)       = %s\n", v.AvgSojourn)
		fmt.Fprintf(w, "  Wq (wait)          = %s\n", v.AvgWait)
	}
	return nil
}
