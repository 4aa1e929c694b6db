package cmd

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/inference-sim/spinblock/sim"
	"github.com/inference-sim/spinblock/sim/workload"
)

// loadExperiment parses an experiment YAML file.
// Uses strict field checking: typos must cause errors.
func loadExperiment(path string) (*workload.ExperimentSpec, error) {
	spec, err := workload.LoadExperimentSpec(path)
	if err != nil {
		return nil, err
	}
	logrus.Infof("Loaded experiment %s (version %s)", path, spec.Version)
	return spec, nil
}

// generateSequences builds the access lists of spec and logs how many there are.
func generateSequences(spec *workload.ExperimentSpec) ([]sim.AccessSequence, error) {
	seqs, err := workload.GenerateSequences(spec)
	if err != nil {
		return nil, err
	}
	if len(seqs) == 0 {
		return nil, fmt.Errorf("experiment produced no access lists")
	}
	logrus.Debugf("Generated %d access lists", len(seqs))
	return seqs, nil
}
