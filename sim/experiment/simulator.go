// Package experiment runs Monte-Carlo competitive-ratio experiments: every
// policy against every access sequence, with many independently seeded trials
// for randomized policies, reduced to mean ratio and spread.
package experiment

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"runtime"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/inference-sim/spinblock/sim"
	"github.com/inference-sim/spinblock/sim/karlin"
	"github.com/inference-sim/spinblock/sim/trace"
)

// ErrNoEvaluableSequences is returned when every sequence handed to Run was
// degenerate, leaving nothing to average.
var ErrNoEvaluableSequences = errors.New("no evaluable access sequences")

// Config controls trial count, parallelism and seeding.
type Config struct {
	Trials      int              // trials per sequence for randomized policies
	Parallelism int              // concurrent trials; 0 = GOMAXPROCS
	Seed        int64            // master seed; trial seeds are derived from it
	TraceLevel  trace.TraceLevel // "" or none disables tracing

	// NewSource builds the entropy source of one trial. nil = math/rand.
	NewSource func(seed int64) karlin.Source
}

// Simulator evaluates policies for one cost model.
type Simulator struct {
	model     sim.CostModel
	cfg       Config
	key       sim.SimulationKey
	evaluator *sim.Evaluator
}

// New creates a Simulator. Returns *sim.InvalidCostModelError for an invalid
// model.
func New(model sim.CostModel, cfg Config) (*Simulator, error) {
	if cfg.Trials < 1 {
		return nil, fmt.Errorf("trials must be >= 1, got %d", cfg.Trials)
	}
	if cfg.Parallelism < 0 {
		return nil, fmt.Errorf("parallelism must be non-negative, got %d", cfg.Parallelism)
	}
	if cfg.Parallelism == 0 {
		cfg.Parallelism = runtime.GOMAXPROCS(0)
	}
	if cfg.TraceLevel == "" {
		cfg.TraceLevel = trace.TraceLevelNone
	}
	if cfg.NewSource == nil {
		cfg.NewSource = func(seed int64) karlin.Source {
			return rand.New(rand.NewSource(seed))
		}
	}
	ev, err := sim.NewEvaluator(model, cfg.TraceLevel)
	if err != nil {
		return nil, err
	}
	return &Simulator{
		model:     model,
		cfg:       cfg,
		key:       sim.NewSimulationKey(cfg.Seed),
		evaluator: ev,
	}, nil
}

// Model returns the cost model the simulator evaluates against.
func (s *Simulator) Model() sim.CostModel {
	return s.model
}

// job is one (sequence, trial) evaluation.
type job struct {
	seq   int
	trial int
}

// Run evaluates kind against every sequence. Deterministic kinds run once per
// sequence; randomized kinds run Config.Trials trials, each with its own
// seeded source. Degenerate sequences are skipped and counted. Any other
// failure (e.g. *karlin.SamplingExhaustedError) aborts the run.
func (s *Simulator) Run(ctx context.Context, kind sim.PolicyKind, seqs []sim.AccessSequence) (*PolicyReport, error) {
	if !sim.IsValidPolicyKind(string(kind)) {
		return nil, fmt.Errorf("unknown policy kind %q", kind)
	}
	trials := 1
	if kind.Randomized() {
		trials = s.cfg.Trials
	}
	logrus.Infof("running %s: %d sequences, %d trials each", kind, len(seqs), trials)

	var jobs []job
	skipped := make([]bool, len(seqs))
	for i, seq := range seqs {
		if _, err := sim.OfflineCost(s.model, seq); err != nil {
			var degenerate *sim.DegenerateSequenceError
			if !errors.As(err, &degenerate) {
				return nil, err
			}
			logrus.Warnf("skipping sequence %d: %v", i, err)
			skipped[i] = true
			continue
		}
		for t := 0; t < trials; t++ {
			jobs = append(jobs, job{seq: i, trial: t})
		}
	}

	results := make([]sim.EvaluationResult, len(jobs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.Parallelism)
	for n, j := range jobs {
		n, j := n, j
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			res, err := s.trial(kind, seqs[j.seq], j)
			if err != nil {
				return fmt.Errorf("sequence %d, trial %d: %w", j.seq, j.trial, err)
			}
			results[n] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	report, err := s.reduce(kind, trials, skipped, jobs, results)
	if err != nil {
		return nil, err
	}
	logrus.Infof("%s: mean ratio %.4f (stddev %.4f) over %d sequences, %d skipped",
		kind, report.MeanRatio, report.StdDev, report.Evaluated, report.Skipped)
	return report, nil
}

// trial builds a fresh policy for one job and evaluates it.
func (s *Simulator) trial(kind sim.PolicyKind, seq sim.AccessSequence, j job) (sim.EvaluationResult, error) {
	var src karlin.Source
	if kind.Randomized() {
		src = s.cfg.NewSource(s.key.DeriveSeed(sim.SubsystemTrial(kind, j.seq, j.trial)))
	}
	p, err := sim.NewPolicy(kind, s.model, src)
	if err != nil {
		return sim.EvaluationResult{}, err
	}
	return s.evaluator.Evaluate(p, seq)
}

// reduce folds per-job results into a PolicyReport. Results are visited in job
// order, so the report does not depend on scheduling.
func (s *Simulator) reduce(kind sim.PolicyKind, trials int, skipped []bool, jobs []job, results []sim.EvaluationResult) (*PolicyReport, error) {
	report := &PolicyReport{Kind: kind, Trials: trials}
	if s.cfg.TraceLevel.Enabled() {
		report.Summary = trace.Summarize(nil)
	}

	perSeq := make(map[int]*SequenceReport)
	var all []float64
	for n, j := range jobs {
		res := results[n]
		sr, ok := perSeq[j.seq]
		if !ok {
			sr = &SequenceReport{Index: j.seq, OfflineCost: res.OfflineCost}
			perSeq[j.seq] = sr
			report.Sequences = append(report.Sequences, sr)
		}
		sr.Ratios = append(sr.Ratios, res.Ratio)
		sr.MeanPolicyCost += res.PolicyCost / float64(trials)
		all = append(all, res.Ratio)
		if report.Summary != nil {
			report.Summary.Merge(res.Summary)
		}
	}
	for _, skip := range skipped {
		if skip {
			report.Skipped++
		}
	}
	report.Evaluated = len(report.Sequences)
	if report.Evaluated == 0 {
		return nil, fmt.Errorf("policy %s: %w (%d skipped)", kind, ErrNoEvaluableSequences, report.Skipped)
	}

	for _, sr := range report.Sequences {
		sr.MeanRatio = stat.Mean(sr.Ratios, nil)
		logrus.Debugf("%s sequence %d: mean ratio %.4f", kind, sr.Index, sr.MeanRatio)
	}
	report.MeanRatio, report.StdDev = stat.MeanStdDev(all, nil)
	if len(all) < 2 {
		report.StdDev = 0
	}
	report.MinRatio = floats.Min(all)
	report.MaxRatio = floats.Max(all)
	return report, nil
}

// Compare runs every kind against the same sequences, in order.
func (s *Simulator) Compare(ctx context.Context, kinds []sim.PolicyKind, seqs []sim.AccessSequence) ([]*PolicyReport, error) {
	reports := make([]*PolicyReport, 0, len(kinds))
	for _, kind := range kinds {
		r, err := s.Run(ctx, kind, seqs)
		if err != nil {
			return nil, err
		}
		reports = append(reports, r)
	}
	return reports, nil
}
