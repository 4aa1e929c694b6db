package cmd

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/inference-sim/spinblock/sim"
	"github.com/inference-sim/spinblock/sim/experiment"
)

// rootCmd is the base command for the CLI
var rootCmd = newRootCmd()

func newRootCmd() *cobra.Command {
	var logLevel string // Log verbosity level

	root := &cobra.Command{
		Use:   "spinblock",
		Short: "Competitive-ratio simulator for keep/compress/discard storage policies",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level, err := logrus.ParseLevel(logLevel)
			if err != nil {
				return fmt.Errorf("invalid log level %q: %w", logLevel, err)
			}
			logrus.SetLevel(level)
			return nil
		},
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&logLevel, "log", "warn", "Log level (trace, debug, info, warn, error, fatal, panic)")

	root.AddCommand(newRunCmd(), newThreeTierCmd(), newSampleCmd(), newConvertCmd())
	return root
}

// newRunCmd builds `run`: the two-tier deterministic vs randomized comparison.
func newRunCmd() *cobra.Command {
	opts := defaultExperimentOptions()
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Compare the deterministic and randomized two-tier policies",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runComparison(cmd, opts, []sim.PolicyKind{sim.PolicyDeterministic, sim.PolicyRandomized})
		},
	}
	opts.register(cmd)
	return cmd
}

// newThreeTierCmd builds `three-tier`: all four policies on a three-tier model.
func newThreeTierCmd() *cobra.Command {
	opts := defaultExperimentOptions()
	opts.compressCost = 1.2
	opts.compressRecoverCost = 0.5
	cmd := &cobra.Command{
		Use:   "three-tier",
		Short: "Compare two-tier and three-tier policies on a model with a compressed state",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runComparison(cmd, opts, []sim.PolicyKind{
				sim.PolicyDeterministic, sim.PolicyRandomized,
				sim.PolicyThreeTierDeterministic, sim.PolicyThreeTierRandomized,
			})
		},
	}
	opts.register(cmd)
	cmd.Flags().Float64Var(&opts.compressCost, "compress-cost", opts.compressCost, "One-time cost of compressing an idle node")
	cmd.Flags().Float64Var(&opts.compressRecoverCost, "compress-recover-cost", opts.compressRecoverCost, "Cost of restoring a compressed node on access")
	cmd.Flags().Float64Var(&opts.compressHoldCost, "compress-hold-cost", opts.compressHoldCost, "Per-tick cost of holding a compressed node")
	return cmd
}

// runComparison builds the experiment from flags (or --experiment), runs every
// policy against the same sequences and prints the mean ratios.
func runComparison(cmd *cobra.Command, opts *experimentOptions, kinds []sim.PolicyKind) error {
	spec, err := opts.experimentSpec(cmd, kinds)
	if err != nil {
		return err
	}
	seqs, err := generateSequences(spec)
	if err != nil {
		return err
	}

	s, err := experiment.New(spec.CostModel, experiment.Config{
		Trials:      spec.Trials,
		Parallelism: spec.Parallelism,
		Seed:        spec.Seed,
		TraceLevel:  traceLevel(spec),
	})
	if err != nil {
		return err
	}

	logrus.Infof("Starting comparison: model=%+v, %d sequences, %d trials, seed=%d",
		spec.CostModel, len(seqs), spec.Trials, spec.Seed)
	reports, err := s.Compare(cmd.Context(), spec.PolicyKinds(), seqs)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if opts.perList {
		if err := experiment.WritePerSequence(out, reports); err != nil {
			return err
		}
	}
	if err := experiment.WriteSummary(out, reports); err != nil {
		return err
	}
	_, err = fmt.Fprintln(out, experiment.FormatRatios(reports))
	return err
}

// Execute runs the CLI root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
