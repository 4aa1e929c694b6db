package cmd

import (
	"fmt"
	"math/rand"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/inference-sim/spinblock/sim/karlin"
)

// newSampleCmd builds `sample`: draws from the Karlin sampler and prints the
// histogram next to the target distribution, for external plotting.
func newSampleCmd() *cobra.Command {
	var (
		cost    int64 // Upper end of the support
		samples int   // Number of draws
		seed    int64 // Sampler seed
	)
	cmd := &cobra.Command{
		Use:   "sample",
		Short: "Draw Karlin thresholds and print their histogram with a chi-squared fit",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cost < 0 || cost > karlin.MaxCost {
				return fmt.Errorf("--cost must be in [0, %d], got %d", karlin.MaxCost, cost)
			}
			if samples < 1 {
				return fmt.Errorf("--samples must be >= 1, got %d", samples)
			}
			sampler := karlin.NewSampler(rand.New(rand.NewSource(seed)))
			draws := make([]int64, samples)
			for i := range draws {
				x, err := sampler.Sample(cost)
				if err != nil {
					return err
				}
				draws[i] = x
			}

			counts := make([]int, cost+1)
			for _, x := range draws {
				counts[x]++
			}
			weights := karlin.DiscreteWeights(cost)
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "x count empirical pdf")
			for x, c := range counts {
				fmt.Fprintf(out, "%d %d %.4f %.4f\n", x, c, float64(c)/float64(samples), weights[x])
			}

			if cost == 0 {
				return nil
			}
			chi2, p, err := karlin.GoodnessOfFit(draws, cost)
			if err != nil {
				return err
			}
			logrus.Infof("chi-squared fit over %d samples: %.4f (p=%.4f)", samples, chi2, p)
			_, err = fmt.Fprintf(out, "chi2=%.4f p=%.4f\n", chi2, p)
			return err
		},
	}
	cmd.Flags().Int64Var(&cost, "cost", 3, "Upper end of the threshold support (D* in ticks)")
	cmd.Flags().IntVar(&samples, "samples", 10000, "Number of draws")
	cmd.Flags().Int64Var(&seed, "seed", 42, "Sampler seed")
	return cmd
}
