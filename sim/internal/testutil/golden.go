// Package testutil provides shared test infrastructure for the spin-block
// simulator: the golden dataset of hand-checked evaluations and assertion
// helpers used across sim/ test packages.
package testutil

import (
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

// GoldenDataset represents the structure of testdata/goldendataset.json.
type GoldenDataset struct {
	Tests []GoldenTestCase `json:"tests"`
}

// GoldenTestCase is one deterministic policy replayed against one sequence.
type GoldenTestCase struct {
	Name      string          `json:"name"`
	Policy    string          `json:"policy"`
	CostModel GoldenCostModel `json:"cost_model"`
	Sequence  []int64         `json:"sequence"`
	Metrics   GoldenMetrics   `json:"metrics"`
}

// GoldenCostModel mirrors sim.CostModel without importing sim.
type GoldenCostModel struct {
	HoldCost            float64 `json:"hold_cost"`
	RecoverCost         float64 `json:"recover_cost"`
	CompressCost        float64 `json:"compress_cost"`
	CompressRecoverCost float64 `json:"compress_recover_cost"`
	CompressHoldCost    float64 `json:"compress_hold_cost"`
}

// GoldenMetrics represents the expected result of a golden test case.
type GoldenMetrics struct {
	PolicyCost  float64 `json:"policy_cost"`
	OfflineCost float64 `json:"offline_cost"`
	Ratio       float64 `json:"ratio"`
}

// LoadGoldenDataset loads the golden dataset from the testdata directory.
// The path is resolved relative to this source file: sim/internal/testutil/ → testdata/.
func LoadGoldenDataset(t *testing.T) *GoldenDataset {
	t.Helper()

	_, thisFile, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("Failed to get current file path")
	}
	// Navigate from sim/internal/testutil/ to repo root testdata/
	path := filepath.Join(filepath.Dir(thisFile), "..", "..", "..", "testdata", "goldendataset.json")
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read golden dataset: %v", err)
	}

	var dataset GoldenDataset
	if err := json.Unmarshal(data, &dataset); err != nil {
		t.Fatalf("Failed to parse golden dataset: %v", err)
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
