// Copyright (C) 2026 OpenHEP (maintainers@openhep.org)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/openhep/sigfit/pkg/toy"
	"github.com/openhep/sigfit/pkg/ux"
)

// pullsJSON is the machine-readable report written by toys --out.
type pullsJSON struct {
	RunID      string               `json:"run_id"`
	Toys       int                  `json:"toys"`
	Failed     int                  `json:"failed"`
	Components map[string]pullStats `json:"components"`
}

type pullStats struct {
	Mean  float64   `json:"mean"`
	Width float64   `json:"width"`
	N     int       `json:"n"`
	Pulls []float64 `json:"pulls"`
}

// runToys handles "sigfit toys": draw pseudo-experiments from the model
// file's truth yields, refit each one, and summarize the yield pulls.
func runToys(cmd *cobra.Command, args []string) {
	logger := newLogger("toys")
	defer logger.Close()

	if modelPath == "" {
		fail(logger, "toys needs --model")
	}

	spec, err := loadSpec(modelPath)
	if err != nil {
		fail(logger, "cannot load model", "error", err)
	}
	model, window, err := buildModel(spec)
	if err != nil {
		fail(logger, "cannot build model", "error", err)
	}
	gen, err := toy.NewGenerator(model, window)
	if err != nil {
		fail(logger, "cannot build generator", "error", err)
	}

	cfg := studyConfig(spec)
	logger.Info("study starting",
		"toys", cfg.Toys,
		"seed", cfg.Seed,
		"workers", cfg.Workers,
		"expected_events", gen.ExpectedEvents())

	// Show a live counter when a human is watching.
	var progress *ux.ProgressSpinner
	if !quietLogs && isatty.IsTerminal(os.Stderr.Fd()) {
		progress = ux.NewProgressSpinner("fitting toys", cfg.Toys)
		cfg.OnToy = func(done, total int) { progress.Increment() }
		progress.Start()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	res, err := toy.RunStudy(ctx, gen, cfg)
	if progress != nil {
		progress.Stop()
	}
	if err != nil {
		fail(logger, "study failed", "error", err)
	}
	if res.Failed() > 0 {
		logger.Warn("some toys failed to converge",
			"failed", res.Failed(),
			"toys", res.Toys())
	}
	logger.Info("study finished",
		"run_id", res.RunID(),
		"toys", res.Toys(),
		"failed", res.Failed())

	fmt.Print(res.String())

	if pullsPath != "" {
		if err := writePullsJSON(pullsPath, res); err != nil {
			fail(logger, "cannot write pulls", "error", err)
		}
		logger.Info("pulls written", "path", pullsPath)
	}
}

// studyConfig merges the model file's study block with the CLI overrides.
// A zero seed in the file defers to the default.
func studyConfig(spec *modelSpec) toy.StudyConfig {
	cfg := toy.DefaultStudyConfig()
	cfg.Fit = spec.fitConfig()
	if spec.Study != nil {
		if spec.Study.Toys > 0 {
			cfg.Toys = spec.Study.Toys
		}
		if spec.Study.Seed != 0 {
			cfg.Seed = spec.Study.Seed
		}
		if spec.Study.Workers > 0 {
			cfg.Workers = spec.Study.Workers
		}
	}
	if toysCount > 0 {
		cfg.Toys = toysCount
	}
	if toysSeed != 0 {
		cfg.Seed = toysSeed
	}
	if toysWorkers > 0 {
		cfg.Workers = toysWorkers
	}
	return cfg
}

// writePullsJSON writes the per-toy pulls and their summaries to path.
func writePullsJSON(path string, res *toy.StudyResult) error {
	out := pullsJSON{
		RunID:      res.RunID(),
		Toys:       res.Toys(),
		Failed:     res.Failed(),
		Components: make(map[string]pullStats, len(res.Components())),
	}
	for _, name := range res.Components() {
		stats := pullStats{Pulls: res.Pulls(name)}
		if s, ok := res.Summary(name); ok {
			stats.Mean = s.Mean
			stats.Width = s.Width
			stats.N = s.N
		}
		out.Components[name] = stats
	}
	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0640)
}
