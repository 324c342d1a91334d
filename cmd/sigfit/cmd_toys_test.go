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
	"os"
	"path/filepath"
	"testing"

	"github.com/openhep/sigfit/pkg/fit"
	"github.com/openhep/sigfit/pkg/toy"
)

// setToysFlags overrides the toys CLI flags for one test.
func setToysFlags(t *testing.T, count int, seed uint64, workers int) {
	t.Helper()
	origCount, origSeed, origWorkers := toysCount, toysSeed, toysWorkers
	toysCount, toysSeed, toysWorkers = count, seed, workers
	t.Cleanup(func() {
		toysCount, toysSeed, toysWorkers = origCount, origSeed, origWorkers
	})
}

func TestStudyConfig_Defaults(t *testing.T) {
	setToysFlags(t, 0, 0, 0)

	spec := &modelSpec{}
	cfg := studyConfig(spec)

	def := toy.DefaultStudyConfig()
	if cfg.Toys != def.Toys || cfg.Seed != def.Seed || cfg.Workers != def.Workers {
		t.Errorf("expected study defaults, got %+v", cfg)
	}
	if cfg.Fit.MaxIterations != def.Fit.MaxIterations || cfg.Fit.Tolerance != def.Fit.Tolerance {
		t.Errorf("expected default fit config, got %+v", cfg.Fit)
	}
}

func TestStudyConfig_FileBlock(t *testing.T) {
	setToysFlags(t, 0, 0, 0)

	spec := &modelSpec{
		Fit:   &fit.Config{MaxIterations: 120, Tolerance: 1e-7},
		Study: &studySpec{Toys: 80, Seed: 9, Workers: 3},
	}
	cfg := studyConfig(spec)

	if cfg.Toys != 80 || cfg.Seed != 9 || cfg.Workers != 3 {
		t.Errorf("file study block not honored: %+v", cfg)
	}
	if cfg.Fit.MaxIterations != 120 || cfg.Fit.Tolerance != 1e-7 {
		t.Errorf("file fit block not honored: %+v", cfg.Fit)
	}
}

func TestStudyConfig_CLIOverrides(t *testing.T) {
	setToysFlags(t, 25, 42, 6)

	spec := &modelSpec{Study: &studySpec{Toys: 80, Seed: 9, Workers: 3}}
	cfg := studyConfig(spec)

	if cfg.Toys != 25 {
		t.Errorf("toys = %d, the CLI flag should win", cfg.Toys)
	}
	if cfg.Seed != 42 {
		t.Errorf("seed = %d, the CLI flag should win", cfg.Seed)
	}
	if cfg.Workers != 6 {
		t.Errorf("workers = %d, the CLI flag should win", cfg.Workers)
	}
}

func TestStudyConfig_ZeroSeedInFile(t *testing.T) {
	setToysFlags(t, 0, 0, 0)

	// A zero file seed defers to the default rather than seeding with 0.
	spec := &modelSpec{Study: &studySpec{Toys: 10}}
	cfg := studyConfig(spec)
	if cfg.Seed != toy.DefaultStudyConfig().Seed {
		t.Errorf("seed = %d, want the default", cfg.Seed)
	}
}

func TestWritePullsJSON(t *testing.T) {
	// 1. Run a tiny one-component study.
	model, window := flatModel(t)
	gen, err := toy.NewGenerator(model, window)
	if err != nil {
		t.Fatal(err)
	}
	cfg := toy.DefaultStudyConfig()
	cfg.Toys = 4
	cfg.Workers = 1
	res, err := toy.RunStudy(context.Background(), gen, cfg)
	if err != nil {
		t.Fatalf("study failed: %v", err)
	}

	// 2. Write and read back.
	path := filepath.Join(t.TempDir(), "pulls.json")
	if err := writePullsJSON(path, res); err != nil {
		t.Fatalf("writePullsJSON failed: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var out pullsJSON
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("pulls file is not valid JSON: %v", err)
	}

	// 3. The report mirrors the study.
	if out.Toys != 4 {
		t.Errorf("toys = %d, want 4", out.Toys)
	}
	if out.RunID != res.RunID() {
		t.Errorf("run id = %q, want %q", out.RunID, res.RunID())
	}
	stats, ok := out.Components["flat"]
	if !ok {
		t.Fatal("flat component missing from report")
	}
	if len(stats.Pulls) != out.Toys-out.Failed {
		t.Errorf("got %d pulls for %d converged toys", len(stats.Pulls), out.Toys-out.Failed)
	}
}
