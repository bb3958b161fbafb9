// Package testutil provides shared test infrastructure for the simulator.
// It holds the theory-check dataset: scenarios whose long-run simulated
// metrics must agree with closed-form queueing results.
package testutil

import (
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

// TheoryDataset represents the structure of testdata/theorycases.json.
type TheoryDataset struct {
	Cases []TheoryCase `json:"cases"`
}

// TheoryCase is one scenario checked against its analytical model.
type TheoryCase struct {
	Name        string  `json:"name"`
	ArrivalMean float64 `json:"arrival_mean"`
	ServiceMean float64 `json:"service_mean"`
	Servers     int     `json:"servers"`
	Policy      string  `json:"policy"`
	Horizon     float64 `json:"horizon"`
	Seed        int64   `json:"seed"`
	RelTol      float64 `json:"rel_tol"` // relative tolerance for every compared metric
	// AllBusyRelTol overrides RelTol for the all-servers-busy fraction, which
	// converges slowly when it is small. Zero means RelTol.
	AllBusyRelTol float64 `json:"all_busy_rel_tol,omitempty"`
}

// AllBusyTolerance returns the tolerance for the all-servers-busy fraction.
func (tc TheoryCase) AllBusyTolerance() float64 {
	if tc.AllBusyRelTol > 0 {
		return tc.AllBusyRelTol
	}
	return tc.RelTol
}

// LoadTheoryDataset loads the theory-check dataset from the testdata directory.
// The path is resolved relative to this source file: sim/internal/testutil/ → testdata/.
func LoadTheoryDataset(t *testing.T) *TheoryDataset {
	t.Helper()

	_, thisFile, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("Failed to get current file path")
	}
	// Navigate from sim/internal/testutil/ to repo root testdata/
	path := filepath.Join(filepath.Dir(thisFile), "..", "..", "..", "testdata", "theorycases.json")
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read theory dataset: %v", err)
	}

	var dataset TheoryDataset
	if err := json.Unmarshal(data, &dataset); err != nil {
		t.Fatalf("Failed to parse theory dataset: %v", err)
	}
	if len(dataset.Cases) == 0 {
		t.Fatal("Theory dataset has no cases")
	}
	return &dataset
}

// AssertFloat64Equal compares two float64 values with relative tolerance.
func AssertFloat64Equal(t *testing.T, name string, want, got, relTol float64) {
	t.Helper()
	if want == 0 && got == 0 {
		return
	}
	diff := math.Abs(want - got)
	maxVal := math.Max(math.Abs(want), math.Abs(got))
	if diff/maxVal > relTol {
		t.Errorf("%s: got %v, want %v (diff=%v, relDiff=%v)", name, got, want, diff, diff/maxVal)
	}
}
