// Copyright (C) 2026 OpenHEP (maintainers@openhep.org)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/openhep/sigfit/pkg/logging"
)

var (
	// Persistent flags shared by every command.
	logLevelName string
	logDirPath   string
	logJSON      bool
	quietLogs    bool

	// fit and toys both read the same model file schema.
	modelPath string

	// fit flags.
	dataPath   string
	binsCount  int
	resultPath string

	// toys flags. Zero values defer to the model file's study block.
	toysCount   int
	toysSeed    uint64
	toysWorkers int
	pullsPath   string

	rootCmd = &cobra.Command{
		Use:   "sigfit",
		Short: "Extended maximum-likelihood yield fitting",
		Long: `sigfit estimates component yields in an observable window by extended
maximum likelihood. A model file composes shape templates (Gaussian,
Crystal Ball, ARGUS, exponential, Chebyshev, uniform) whose yields and
shape parameters are fitted to unbinned or histogrammed data, with
standard errors taken from the inverse Hessian at the minimum.`,
	}

	// Defined in cmd_fit.go
	fitCmd = &cobra.Command{
		Use:   "fit",
		Short: "Fit component yields to a data file",
		Run:   runFit,
	}

	// Defined in cmd_toys.go
	toysCmd = &cobra.Command{
		Use:   "toys",
		Short: "Calibrate yield errors with pseudo-experiments",
		Run:   runToys,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevelName, "log-level", "info", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&logDirPath, "log-dir", "", "Also write JSON logs under this directory")
	rootCmd.PersistentFlags().BoolVar(&logJSON, "log-json", !isatty.IsTerminal(os.Stderr.Fd()), "Emit stderr logs as JSON")
	rootCmd.PersistentFlags().BoolVar(&quietLogs, "quiet", false, "Suppress stderr logs")

	fitCmd.Flags().StringVar(&modelPath, "model", "", "Model YAML file (required)")
	fitCmd.Flags().StringVar(&dataPath, "data", "", "Observable data file, whitespace-separated values (required)")
	fitCmd.Flags().IntVar(&binsCount, "bins", 0, "Histogram the data into this many bins before fitting (0 = unbinned)")
	fitCmd.Flags().StringVar(&resultPath, "out", "", "Write the full fit result as JSON to this file")

	toysCmd.Flags().StringVar(&modelPath, "model", "", "Model YAML file with component truth yields (required)")
	toysCmd.Flags().IntVar(&toysCount, "toys", 0, "Number of pseudo-experiments (overrides the study block)")
	toysCmd.Flags().Uint64Var(&toysSeed, "seed", 0, "Random seed (overrides the study block)")
	toysCmd.Flags().IntVar(&toysWorkers, "workers", 0, "Parallel fit workers, 0 = all CPUs (overrides the study block)")
	toysCmd.Flags().StringVar(&pullsPath, "out", "", "Write per-toy pulls as JSON to this file")

	rootCmd.AddCommand(fitCmd)
	rootCmd.AddCommand(toysCmd)
}

// newLogger builds the command logger from the persistent flags.
func newLogger(service string) *logging.Logger {
	return logging.New(logging.Config{
		Level:   parseLevel(logLevelName),
		LogDir:  logDirPath,
		Service: service,
		JSON:    logJSON,
		Quiet:   quietLogs,
	})
}

// fail logs the error, flushes the logger, and exits. It never returns.
func fail(logger *logging.Logger, msg string, args ...any) {
	logger.Error(msg, args...)
	logger.Close()
	os.Exit(1)
}

// parseLevel maps a --log-level value to a logging level. Unknown names
// fall back to info.
func parseLevel(name string) logging.Level {
	switch strings.ToLower(name) {
	case "debug":
		return logging.LevelDebug
	case "warn":
		return logging.LevelWarn
	case "error":
		return logging.LevelError
	default:
		return logging.LevelInfo
	}
}
