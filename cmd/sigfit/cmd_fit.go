// Copyright (C) 2026 OpenHEP (maintainers@openhep.org)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/openhep/sigfit/pkg/fit"
	"github.com/openhep/sigfit/pkg/sample"
)

// resultJSON is the machine-readable report written by fit --out.
type resultJSON struct {
	Converged  bool        `json:"converged"`
	NLL        float64     `json:"nll"`
	Iterations int         `json:"iterations"`
	Params     []paramJSON `json:"params"`
}

type paramJSON struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
	Error float64 `json:"error"`
	Fixed bool    `json:"fixed,omitempty"`
}

// runFit handles "sigfit fit": load the model file and the data file,
// minimize, and report the yields.
func runFit(cmd *cobra.Command, args []string) {
	logger := newLogger("fit")
	defer logger.Close()

	if modelPath == "" || dataPath == "" {
		fail(logger, "fit needs --model and --data")
	}

	spec, err := loadSpec(modelPath)
	if err != nil {
		fail(logger, "cannot load model", "error", err)
	}
	model, window, err := buildModel(spec)
	if err != nil {
		fail(logger, "cannot build model", "error", err)
	}

	values, err := readDataFile(dataPath)
	if err != nil {
		fail(logger, "cannot read data", "error", err)
	}
	data := sample.New(values)
	logger.Info("data loaded",
		"path", dataPath,
		"values", data.Len(),
		"in_window", data.CountWithin(window))

	res, err := executeFit(data, window, model, spec.fitConfig())
	if err != nil {
		fail(logger, "fit failed", "error", err)
	}
	if !res.Converged() {
		logger.Warn("no valid error estimate, the minimum may be shallow or degenerate")
	}
	logger.Info("fit finished",
		"converged", res.Converged(),
		"nll", res.NLL(),
		"iterations", res.Iterations())

	fmt.Print(res.String())

	if resultPath != "" {
		if err := writeResultJSON(resultPath, res); err != nil {
			fail(logger, "cannot write result", "error", err)
		}
		logger.Info("result written", "path", resultPath)
	}
}

// executeFit runs the unbinned fit, or the binned one when --bins is set.
func executeFit(data *sample.Sample, window sample.Range, model *fit.Model, cfg fit.Config) (*fit.Result, error) {
	if binsCount <= 0 {
		return fit.Unbinned(data, window, model, cfg)
	}
	binning, err := sample.NewBinning(binsCount, window)
	if err != nil {
		return nil, err
	}
	hist, err := data.Histogram(binning)
	if err != nil {
		return nil, err
	}
	return fit.Binned(hist, model, cfg)
}

// writeResultJSON writes the full result to path as indented JSON.
func writeResultJSON(path string, res *fit.Result) error {
	out := resultJSON{
		Converged:  res.Converged(),
		NLL:        res.NLL(),
		Iterations: res.Iterations(),
	}
	for _, p := range res.Params() {
		out.Params = append(out.Params, paramJSON{
			Name:  p.Name,
			Value: p.Value,
			Error: p.Error,
			Fixed: p.Fixed,
		})
	}
	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0640)
}
