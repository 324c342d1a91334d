// Copyright (C) 2026 OpenHEP (maintainers@openhep.org)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package e2e

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
)

// flatModelYAML describes a single uniform component, so the fitted
// yield must equal the event count exactly.
const flatModelYAML = `
window: {lo: 0.0, hi: 1.0}
components:
  - name: flat
    shape: uniform
    yield: 100
`

// writeFlatFixtures writes a model file and an evenly spaced data file
// with n points into dir.
func writeFlatFixtures(t *testing.T, dir string, n int) (modelFile, dataFile string) {
	t.Helper()

	modelFile = filepath.Join(dir, "model.yaml")
	if err := os.WriteFile(modelFile, []byte(flatModelYAML), 0644); err != nil {
		t.Fatal(err)
	}

	var sb strings.Builder
	for i := 0; i < n; i++ {
		fmt.Fprintf(&sb, "%.6f\n", (float64(i)+0.5)/float64(n))
	}
	dataFile = filepath.Join(dir, "data.txt")
	if err := os.WriteFile(dataFile, []byte(sb.String()), 0644); err != nil {
		t.Fatal(err)
	}
	return modelFile, dataFile
}

func TestFitCommand(t *testing.T) {
	dir := t.TempDir()
	modelFile, dataFile := writeFlatFixtures(t, dir, 200)
	resultFile := filepath.Join(dir, "result.json")

	// 1. Run the fit with a JSON report
	out, err := exec.Command(cliBinary, "fit",
		"--model", modelFile,
		"--data", dataFile,
		"--out", resultFile,
		"--quiet").CombinedOutput()
	if err != nil {
		t.Fatalf("fit command failed: %v\n%s", err, out)
	}

	// 2. The stdout report names the yield and its state
	output := string(out)
	if !strings.Contains(output, "fit converged") {
		t.Errorf("stdout does not report convergence:\n%s", output)
	}
	if !strings.Contains(output, "flat.yield") {
		t.Errorf("stdout does not list the yield:\n%s", output)
	}

	// 3. The JSON report carries the count as the yield
	data, err := os.ReadFile(resultFile)
	if err != nil {
		t.Fatalf("result file missing: %v", err)
	}
	var report struct {
		Converged bool `json:"converged"`
		Params    []struct {
			Name  string  `json:"name"`
			Value float64 `json:"value"`
			Error float64 `json:"error"`
		} `json:"params"`
	}
	if err := json.Unmarshal(data, &report); err != nil {
		t.Fatalf("result file is not valid JSON: %v", err)
	}
	if !report.Converged {
		t.Error("report says not converged")
	}
	found := false
	for _, p := range report.Params {
		if p.Name != "flat.yield" {
			continue
		}
		found = true
		if math.Abs(p.Value-200) > 0.5 {
			t.Errorf("fitted yield = %v, want 200", p.Value)
		}
		if math.Abs(p.Error-math.Sqrt(200)) > 0.05*math.Sqrt(200) {
			t.Errorf("yield error = %v, want about %v", p.Error, math.Sqrt(200))
		}
	}
	if !found {
		t.Error("flat.yield missing from the JSON report")
	}
}

func TestFitCommand_Binned(t *testing.T) {
	dir := t.TempDir()
	modelFile, dataFile := writeFlatFixtures(t, dir, 200)

	out, err := exec.Command(cliBinary, "fit",
		"--model", modelFile,
		"--data", dataFile,
		"--bins", "20",
		"--quiet").CombinedOutput()
	if err != nil {
		t.Fatalf("binned fit command failed: %v\n%s", err, out)
	}
	if !strings.Contains(string(out), "fit converged") {
		t.Errorf("stdout does not report convergence:\n%s", out)
	}
}

func TestFitCommand_QuietStderr(t *testing.T) {
	dir := t.TempDir()
	modelFile, dataFile := writeFlatFixtures(t, dir, 50)

	cmd := exec.Command(cliBinary, "fit",
		"--model", modelFile,
		"--data", dataFile,
		"--quiet")
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		t.Fatalf("fit command failed: %v\n%s", err, stderr.String())
	}

	if stderr.Len() != 0 {
		t.Errorf("--quiet still wrote to stderr: %q", stderr.String())
	}
	if !strings.Contains(stdout.String(), "fit converged") {
		t.Errorf("report missing from stdout:\n%s", stdout.String())
	}
}

func TestFitCommand_MissingFlags(t *testing.T) {
	out, err := exec.Command(cliBinary, "fit").CombinedOutput()
	if err == nil {
		t.Fatalf("fit without flags should exit non-zero:\n%s", out)
	}
}

func TestFitCommand_BadModel(t *testing.T) {
	dir := t.TempDir()
	_, dataFile := writeFlatFixtures(t, dir, 10)
	modelFile := filepath.Join(dir, "model.yaml")
	os.WriteFile(modelFile, []byte("components: []\n"), 0644)

	out, err := exec.Command(cliBinary, "fit",
		"--model", modelFile,
		"--data", dataFile).CombinedOutput()
	if err == nil {
		t.Fatalf("fit with an empty model should exit non-zero:\n%s", out)
	}
}

func TestToysCommand(t *testing.T) {
	dir := t.TempDir()
	modelFile := filepath.Join(dir, "model.yaml")
	if err := os.WriteFile(modelFile, []byte(flatModelYAML), 0644); err != nil {
		t.Fatal(err)
	}

	out, err := exec.Command(cliBinary, "toys",
		"--model", modelFile,
		"--toys", "3",
		"--seed", "5",
		"--workers", "2",
		"--quiet").CombinedOutput()
	if err != nil {
		t.Fatalf("toys command failed: %v\n%s", err, out)
	}

	output := string(out)
	if !strings.Contains(output, "study") {
		t.Errorf("stdout does not carry the study summary:\n%s", output)
	}
	if !strings.Contains(output, "flat") {
		t.Errorf("stdout does not list the component:\n%s", output)
	}
}

func TestRootHelp(t *testing.T) {
	out, err := exec.Command(cliBinary, "--help").CombinedOutput()
	if err != nil {
		t.Fatalf("--help failed: %v", err)
	}
	for _, want := range []string{"fit", "toys", "maximum likelihood"} {
		if !strings.Contains(string(out), want) {
			t.Errorf("help output does not mention %q", want)
		}
	}
}
