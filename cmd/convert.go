package cmd

import (
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/inference-sim/spinblock/sim"
	"github.com/inference-sim/spinblock/sim/workload"
)

// newConvertCmd builds `convert`: external access traces to experiment YAML.
func newConvertCmd() *cobra.Command {
	convert := &cobra.Command{
		Use:   "convert",
		Short: "Convert external access traces to experiment YAML",
		Long:  "Convert recorded access traces to an experiment YAML that replays them with --experiment. Output is written to stdout for piping.",
	}

	// --- spinblock convert csv-trace ---
	var (
		csvTracePath string
		horizon      int64
		holdCost     float64
		recoverCost  float64
	)
	csvTrace := &cobra.Command{
		Use:   "csv-trace",
		Short: "Convert a node,time CSV trace to an experiment spec",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			model, err := sim.NewCostModel(holdCost, recoverCost)
			if err != nil {
				return err
			}
			spec, err := workload.ConvertCSVTrace(csvTracePath, horizon, model)
			if err != nil {
				return err
			}
			return writeSpec(cmd, spec)
		},
	}
	csvTrace.Flags().StringVar(&csvTracePath, "file", "", "Path to CSV trace file")
	csvTrace.Flags().Int64Var(&horizon, "horizon", 0, "Drop accesses after this tick (0 = no truncation)")
	csvTrace.Flags().Float64Var(&holdCost, "hold-cost", 1, "Per-tick cost of keeping an idle node")
	csvTrace.Flags().Float64Var(&recoverCost, "recover-cost", 3, "Cost of recovering a discarded node")
	_ = csvTrace.MarkFlagRequired("file")

	convert.AddCommand(csvTrace)
	return convert
}

// writeSpec marshals an ExperimentSpec to YAML on the command's stdout.
func writeSpec(cmd *cobra.Command, spec *workload.ExperimentSpec) error {
	data, err := yaml.Marshal(spec)
	if err != nil {
		return err
	}
	_, err = cmd.OutOrStdout().Write(data)
	return err
}
