package workload

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inference-sim/spinblock/sim"
)

func writeCSV(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "trace.csv")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestConvertCSVTrace_GroupsPerNode(t *testing.T) {
	// GIVEN interleaved accesses to two nodes, one repeated
	path := writeCSV(t, "node,time\na,10\nb,3\na,2\na,10\nb,9\n")
	model := sim.CostModel{HoldCost: 1, RecoverCost: 3}

	// WHEN converted
	spec, err := ConvertCSVTrace(path, 0, model)

	// THEN each node becomes one sorted, de-duplicated sequence in first-seen order
	require.NoError(t, err)
	assert.Equal(t, [][]int64{{2, 10}, {3, 9}}, spec.Sequences)
	assert.Equal(t, model, spec.CostModel)
	assert.NoError(t, spec.Validate())
}

func TestConvertCSVTrace_Horizon(t *testing.T) {
	path := writeCSV(t, "node,time\na,1\na,5\na,50\n")
	spec, err := ConvertCSVTrace(path, 10, sim.CostModel{HoldCost: 1, RecoverCost: 3})
	require.NoError(t, err)
	assert.Equal(t, [][]int64{{1, 5}}, spec.Sequences)
}

func TestConvertCSVTrace_Errors(t *testing.T) {
	model := sim.CostModel{HoldCost: 1, RecoverCost: 3}
	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{"bad time", "node,time\na,x\n", "invalid time"},
		{"negative time", "node,time\na,-4\n", "negative time"},
		{"header only", "node,time\n", "no accesses"},
		{"one column", "node\na\n", "expected at least 2 columns"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ConvertCSVTrace(writeCSV(t, tt.body), 0, model)
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}

	_, err := ConvertCSVTrace("", 0, model)
	assert.Error(t, err)
	_, err = ConvertCSVTrace(filepath.Join(t.TempDir(), "missing.csv"), 0, model)
	assert.ErrorContains(t, err, "opening CSV trace")
}
