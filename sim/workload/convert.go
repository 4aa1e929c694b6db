package workload

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/inference-sim/spinblock/sim"
)

// ConvertCSVTrace reads a recorded access trace and returns an ExperimentSpec
// whose explicit sequences replay it. The CSV has a header row followed by
// "node,time" rows; accesses are grouped per node in order of first
// appearance, then sorted and de-duplicated. Accesses after horizon are
// dropped (0 = no truncation).
func ConvertCSVTrace(path string, horizon int64, model sim.CostModel) (*ExperimentSpec, error) {
	if path == "" {
		return nil, fmt.Errorf("CSV trace path must not be empty")
	}
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening CSV trace %s: %w", path, err)
	}
	defer file.Close() //nolint:errcheck // read-only file

	reader := csv.NewReader(file)
	reader.TrimLeadingSpace = true

	// Skip header row
	if _, err := reader.Read(); err != nil {
		return nil, fmt.Errorf("reading CSV header from %s: %w", path, err)
	}

	var order []string
	byNode := make(map[string]sim.AccessSequence)
	for rowIdx := 0; ; rowIdx++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("CSV %s row %d: %w", path, rowIdx, err)
		}
		if len(record) < 2 {
			return nil, fmt.Errorf("CSV %s row %d: expected at least 2 columns, got %d", path, rowIdx, len(record))
		}
		node := strings.TrimSpace(record[0])
		t, err := strconv.ParseInt(strings.TrimSpace(record[1]), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("CSV %s row %d: invalid time %q: %w", path, rowIdx, record[1], err)
		}
		if t < 0 {
			return nil, fmt.Errorf("CSV %s row %d: negative time %d", path, rowIdx, t)
		}
		if horizon > 0 && t > horizon {
			continue
		}
		if _, seen := byNode[node]; !seen {
			order = append(order, node)
		}
		byNode[node] = append(byNode[node], t)
	}
	if len(order) == 0 {
		return nil, fmt.Errorf("CSV trace %s has no accesses", path)
	}

	spec := &ExperimentSpec{
		Version:   "1",
		Seed:      42,
		Trials:    100,
		CostModel: model,
	}
	for _, node := range order {
		seq := byNode[node]
		sort.Slice(seq, func(i, j int) bool { return seq[i] < seq[j] })
		spec.Sequences = append(spec.Sequences, dedup(seq))
	}
	return spec, nil
}
