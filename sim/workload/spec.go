package workload

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/inference-sim/spinblock/sim"
	"github.com/inference-sim/spinblock/sim/trace"
)

// Adversarial targets.
const (
	TargetDiscard  = "discard"  // gaps one tick past D* = R/h
	TargetCompress = "compress" // gaps one tick past the compress break-even
)

// ExperimentSpec is the top-level experiment configuration.
// Loaded from YAML via LoadExperimentSpec(path).
type ExperimentSpec struct {
	Version     string           `yaml:"version"`
	Seed        int64            `yaml:"seed"`
	Trials      int              `yaml:"trials"`
	Parallelism int              `yaml:"parallelism,omitempty"` // 0 = GOMAXPROCS
	TraceLevel  string           `yaml:"trace_level,omitempty"`
	CostModel   sim.CostModel    `yaml:"cost_model"`
	Policies    []sim.PolicyKind `yaml:"policies,omitempty"` // empty = deterministic and randomized
	Sequences   [][]int64        `yaml:"sequences,omitempty"`
	Random      *RandomSpec      `yaml:"random,omitempty"`
	Adversarial *AdversarialSpec `yaml:"adversarial,omitempty"`
}

// RandomSpec configures uniformly random access lists.
type RandomSpec struct {
	Count   int   `yaml:"count"`    // number of lists
	Length  int   `yaml:"length"`   // draws per list before de-duplication
	MaxTime int64 `yaml:"max_time"` // draws are in [1, max_time]
}

// AdversarialSpec configures one list built against a deterministic threshold.
type AdversarialSpec struct {
	Gaps   int    `yaml:"gaps"`
	Target string `yaml:"target,omitempty"` // "discard" (default) or "compress"
}

var validTargets = map[string]bool{
	"": true, TargetDiscard: true, TargetCompress: true,
}

// LoadExperimentSpec reads and parses a YAML experiment specification file.
// Uses strict parsing: unrecognized keys (typos) are rejected.
func LoadExperimentSpec(path string) (*ExperimentSpec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading experiment spec: %w", err)
	}
	var spec ExperimentSpec
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&spec); err != nil {
		return nil, fmt.Errorf("parsing experiment spec: %w", err)
	}
	if spec.Version == "" {
		spec.Version = "1"
	}
	return &spec, nil
}

// Validate checks that all fields in the spec are valid. Individual access
// sequences are not checked here: degenerate ones are skipped at run time.
func (s *ExperimentSpec) Validate() error {
	if err := s.CostModel.Validate(); err != nil {
		return fmt.Errorf("cost_model: %w", err)
	}
	if s.Trials < 1 {
		return fmt.Errorf("trials must be >= 1, got %d", s.Trials)
	}
	if s.Parallelism < 0 {
		return fmt.Errorf("parallelism must be non-negative, got %d", s.Parallelism)
	}
	if !trace.IsValidTraceLevel(s.TraceLevel) {
		return fmt.Errorf("unknown trace_level %q; valid: none, decisions", s.TraceLevel)
	}
	for i, p := range s.Policies {
		if !sim.IsValidPolicyKind(string(p)) {
			return fmt.Errorf("policies[%d]: unknown policy %q", i, p)
		}
		if p.ThreeTier() && !s.CostModel.ThreeTier() {
			return fmt.Errorf("policies[%d]: %q requires cost_model.compress_cost", i, p)
		}
	}
	if len(s.Sequences) == 0 && s.Random == nil && s.Adversarial == nil {
		return fmt.Errorf("at least one of sequences, random or adversarial is required")
	}
	if r := s.Random; r != nil {
		if r.Count < 1 {
			return fmt.Errorf("random.count must be >= 1, got %d", r.Count)
		}
		if r.Length < 2 {
			return fmt.Errorf("random.length must be >= 2, got %d", r.Length)
		}
		if r.MaxTime < 1 {
			return fmt.Errorf("random.max_time must be >= 1, got %d", r.MaxTime)
		}
	}
	if a := s.Adversarial; a != nil {
		if a.Gaps < 1 {
			return fmt.Errorf("adversarial.gaps must be >= 1, got %d", a.Gaps)
		}
		if !validTargets[a.Target] {
			return fmt.Errorf("unknown adversarial.target %q; valid: discard, compress", a.Target)
		}
		if a.Target == TargetCompress && !s.CostModel.ThreeTier() {
			return fmt.Errorf("adversarial.target %q requires cost_model.compress_cost", a.Target)
		}
	}
	return nil
}

// PolicyKinds returns the policies to run, defaulting to the two-tier pair.
func (s *ExperimentSpec) PolicyKinds() []sim.PolicyKind {
	if len(s.Policies) == 0 {
		return []sim.PolicyKind{sim.PolicyDeterministic, sim.PolicyRandomized}
	}
	return s.Policies
}
