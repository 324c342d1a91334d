// Copyright (C) 2026 OpenHEP (maintainers@openhep.org)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package toy

import (
	"context"
	"fmt"
	"math/rand/v2"
	"runtime"
	"strings"
	"sync/atomic"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/stat"

	"github.com/openhep/sigfit/pkg/fit"
)

// StudyConfig controls one pull study.
type StudyConfig struct {
	// Toys is the number of pseudo-experiments to generate and fit.
	Toys int `json:"toys" yaml:"toys"`

	// Seed selects the random stream family. Toy i draws from the PCG
	// stream (Seed, i+1), so results depend on Seed and Toys alone.
	Seed uint64 `json:"seed" yaml:"seed"`

	// Workers bounds the number of concurrent fits; zero means one per
	// available CPU. The worker count never changes the numbers, only
	// the wall time.
	Workers int `json:"workers" yaml:"workers"`

	// Fit configures every per-toy fit.
	Fit fit.Config `json:"fit" yaml:"fit"`

	// OnToy, when set, is called after each toy finishes with the number
	// of finished toys and the total. Calls come from worker goroutines,
	// so the callback must be safe for concurrent use.
	OnToy func(done, total int) `json:"-" yaml:"-"`
}

// DefaultStudyConfig returns 200 toys on seed 1 with one worker per CPU
// and the default fit configuration.
func DefaultStudyConfig() StudyConfig {
	return StudyConfig{
		Toys: 200,
		Seed: 1,
		Fit:  fit.DefaultConfig(),
	}
}

// Validate checks that the study configuration is usable.
func (c StudyConfig) Validate() error {
	if c.Toys < 1 {
		return fmt.Errorf("%w: toys must be >= 1, got %d", fit.ErrInvalidParameter, c.Toys)
	}
	if c.Workers < 0 {
		return fmt.Errorf("%w: workers must be >= 0, got %d", fit.ErrInvalidParameter, c.Workers)
	}
	return c.Fit.Validate()
}

// PullSummary condenses one component's yield pulls.
type PullSummary struct {
	// Mean is the average pull. Near zero for an unbiased fitter.
	Mean float64

	// Width is the sample standard deviation of the pulls. Near one when
	// the reported errors are calibrated.
	Width float64

	// N is the number of converged toys entering the summary.
	N int
}

// toyOutcome is one pseudo-experiment's contribution, pulls in model
// component order.
type toyOutcome struct {
	ok    bool
	pulls []float64
}

// StudyResult holds the outcome of a pull study.
//
// Thread Safety: Immutable; safe for concurrent use.
type StudyResult struct {
	runID      string
	toys       int
	failed     int
	components []string
	pulls      map[string][]float64
}

// RunID returns the unique identifier of this study run.
func (r *StudyResult) RunID() string { return r.runID }

// Toys returns the number of pseudo-experiments attempted.
func (r *StudyResult) Toys() int { return r.toys }

// Failed returns the number of toys whose fit failed or did not produce a
// usable error estimate.
func (r *StudyResult) Failed() int { return r.failed }

// Components returns the component names in model order.
func (r *StudyResult) Components() []string {
	return append([]string(nil), r.components...)
}

// Pulls returns the yield pulls of one component, ordered by toy index and
// restricted to converged toys.
func (r *StudyResult) Pulls(component string) []float64 {
	return append([]float64(nil), r.pulls[component]...)
}

// Summary returns the pull summary of one component. The second return is
// false for unknown components or when fewer than two toys converged.
func (r *StudyResult) Summary(component string) (PullSummary, bool) {
	ps, ok := r.pulls[component]
	if !ok || len(ps) < 2 {
		return PullSummary{}, false
	}
	return PullSummary{
		Mean:  stat.Mean(ps, nil),
		Width: stat.StdDev(ps, nil),
		N:     len(ps),
	}, true
}

// String renders a fixed-width summary of the study.
func (r *StudyResult) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "study %s: toys=%d failed=%d\n", r.runID, r.toys, r.failed)
	for _, name := range r.components {
		s, ok := r.Summary(name)
		if !ok {
			fmt.Fprintf(&b, "  %-16s too few converged toys\n", name)
			continue
		}
		fmt.Fprintf(&b, "  %-16s pull mean %+.3f width %.3f (n=%d)\n", name, s.Mean, s.Width, s.N)
	}
	return b.String()
}

// RunStudy draws, fits, and summarizes cfg.Toys pseudo-experiments.
//
// Description:
//
//	Toys run concurrently on up to cfg.Workers goroutines. Toy i draws
//	its dataset from the PCG stream (cfg.Seed, i+1) and fits it with the
//	generator's own model as the starting point, so the study checks the
//	fitter against a known truth. A toy whose fit errors out or whose
//	covariance is unusable counts as failed and contributes no pulls.
//
// Inputs:
//   - ctx: Cancels outstanding toys; a study aborted this way returns the
//     context error.
//   - gen: The pseudo-experiment source and fit truth.
//   - cfg: Study configuration; see DefaultStudyConfig.
//
// Outputs:
//   - *StudyResult: Pulls and summaries per component.
//   - error: Non-nil on invalid configuration, cancellation, or a
//     generator failure.
//
// Thread Safety: Safe for concurrent use.
func RunStudy(ctx context.Context, gen *Generator, cfg StudyConfig) (*StudyResult, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if gen == nil {
		return nil, fmt.Errorf("%w: generator is nil", fit.ErrInvalidParameter)
	}

	workers := cfg.Workers
	if workers == 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	comps := gen.Model().Components()
	names := make([]string, len(comps))
	truths := make([]float64, len(comps))
	for i, c := range comps {
		names[i] = c.Name
		truths[i] = c.Yield
	}

	outcomes := make([]toyOutcome, cfg.Toys)
	var finished atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := range outcomes {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			defer func() {
				if cfg.OnToy != nil {
					cfg.OnToy(int(finished.Add(1)), cfg.Toys)
				}
			}()

			rng := rand.New(rand.NewPCG(cfg.Seed, uint64(i)+1))
			s, err := gen.Draw(rng)
			if err != nil {
				return fmt.Errorf("toy %d: %w", i, err)
			}

			res, err := fit.Unbinned(s, gen.Window(), gen.Model(), cfg.Fit)
			if err != nil || !res.Converged() {
				return nil
			}

			pulls := make([]float64, len(names))
			for k, name := range names {
				y, ok := res.Yield(name)
				if !ok || y.Error <= 0 {
					return nil
				}
				pulls[k] = (y.Value - truths[k]) / y.Error
			}
			outcomes[i] = toyOutcome{ok: true, pulls: pulls}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	result := &StudyResult{
		runID:      uuid.NewString(),
		toys:       cfg.Toys,
		components: names,
		pulls:      make(map[string][]float64, len(names)),
	}
	for _, o := range outcomes {
		if !o.ok {
			result.failed++
			continue
		}
		for k, name := range names {
			result.pulls[name] = append(result.pulls[name], o.pulls[k])
		}
	}
	return result, nil
}
