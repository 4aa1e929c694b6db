package experiment

import (
	"fmt"
	"io"
	"strings"

	"github.com/inference-sim/spinblock/sim"
	"github.com/inference-sim/spinblock/sim/trace"
)

// SequenceReport holds every trial ratio of one policy on one sequence.
type SequenceReport struct {
	Index          int // position in the slice handed to Run
	Ratios         []float64
	MeanRatio      float64
	MeanPolicyCost float64
	OfflineCost    float64
}

// PolicyReport aggregates one policy over all evaluated sequences.
// MeanRatio, StdDev, MinRatio and MaxRatio are taken over every trial ratio.
// With equal trials per sequence the mean equals the mean of the per-sequence means.
type PolicyReport struct {
	Kind      sim.PolicyKind
	Trials    int // per sequence; 1 for deterministic kinds
	Evaluated int
	Skipped   int

	MeanRatio float64
	StdDev    float64
	MinRatio  float64
	MaxRatio  float64

	Sequences []*SequenceReport
	Summary   *trace.TraceSummary // nil unless tracing is enabled
}

// FormatRatios renders reports as "ratio: kind=X.XX, kind=X.XX".
func FormatRatios(reports []*PolicyReport) string {
	parts := make([]string, len(reports))
	for i, r := range reports {
		parts[i] = fmt.Sprintf("%s=%.2f", r.Kind, r.MeanRatio)
	}
	return "ratio: " + strings.Join(parts, ", ")
}

// WritePerSequence writes one line per sequence with each policy's mean ratio.
// All reports must come from the same Compare call.
func WritePerSequence(w io.Writer, reports []*PolicyReport) error {
	if len(reports) == 0 {
		return nil
	}
	byIndex := make([]map[int]float64, len(reports))
	for i, r := range reports {
		byIndex[i] = make(map[int]float64, len(r.Sequences))
		for _, sr := range r.Sequences {
			byIndex[i][sr.Index] = sr.MeanRatio
		}
	}
	for _, sr := range reports[0].Sequences {
		var b strings.Builder
		fmt.Fprintf(&b, "sequence %d:", sr.Index)
		for i, r := range reports {
			fmt.Fprintf(&b, " %s=%.2f", r.Kind, byIndex[i][sr.Index])
		}
		b.WriteByte('\n')
		if _, err := io.WriteString(w, b.String()); err != nil {
			return err
		}
	}
	return nil
}

// WriteSummary writes the merged trace summary of each report that has one.
func WriteSummary(w io.Writer, reports []*PolicyReport) error {
	for _, r := range reports {
		s := r.Summary
		if s == nil {
			continue
		}
		_, err := fmt.Fprintf(w, "%s: accesses=%d compressions=%d discards=%d recoveries=%d hold_cost=%.2f recovery_cost=%.2f\n",
			r.Kind, s.Accesses, s.Compressions, s.Discards, s.Recoveries, s.HoldCost, s.RecoveryCost)
		if err != nil {
			return err
		}
	}
	return nil
}
