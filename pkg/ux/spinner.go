// Copyright (C) 2026 OpenHEP (maintainers@openhep.org)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package ux provides terminal activity indicators for long-running
// commands. Nothing here is used by the fitting packages themselves;
// only the CLI draws on it, and only when stderr is a terminal.
package ux

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// Spinner is an animated activity indicator. A Spinner is single use:
// once stopped it cannot be started again.
type Spinner struct {
	writer   io.Writer
	interval time.Duration
	stop     chan struct{}
	done     chan struct{}

	mu        sync.Mutex
	message   string
	isRunning bool
}

// NewSpinner creates a spinner that writes to stderr.
func NewSpinner(message string) *Spinner {
	return &Spinner{
		writer:   os.Stderr,
		interval: 80 * time.Millisecond,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
		message:  message,
	}
}

// WithWriter redirects the spinner output, mainly for tests.
func (s *Spinner) WithWriter(w io.Writer) *Spinner {
	s.writer = w
	return s
}

// WithInterval overrides the frame interval.
func (s *Spinner) WithInterval(d time.Duration) *Spinner {
	s.interval = d
	return s
}

// Start begins the animation on its own goroutine.
func (s *Spinner) Start() {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return
	}
	s.isRunning = true
	s.mu.Unlock()

	go func() {
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		frame := 0
		for {
			select {
			case <-s.stop:
				// Clear the spinner line.
				fmt.Fprint(s.writer, "\r\033[K")
				close(s.done)
				return
			case <-ticker.C:
				s.mu.Lock()
				msg := s.message
				s.mu.Unlock()
				fmt.Fprintf(s.writer, "\r%s %s", spinnerFrames[frame], msg)
				frame = (frame + 1) % len(spinnerFrames)
			}
		}
	}()
}

// Stop halts the animation and clears the line. It blocks until the
// spinner goroutine has exited, so the writer is quiescent afterwards.
func (s *Spinner) Stop() {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return
	}
	s.isRunning = false
	s.mu.Unlock()

	close(s.stop)
	<-s.done
}

// UpdateMessage changes the text shown next to the spinner.
func (s *Spinner) UpdateMessage(message string) {
	s.mu.Lock()
	s.message = message
	s.mu.Unlock()
}

// ProgressSpinner is a spinner with a [current/total] counter, for
// commands that grind through a known number of steps.
type ProgressSpinner struct {
	*Spinner
	label   string
	current int
	total   int
}

// NewProgressSpinner creates a spinner that shows progress toward total.
func NewProgressSpinner(label string, total int) *ProgressSpinner {
	return &ProgressSpinner{
		Spinner: NewSpinner(fmt.Sprintf("%s [0/%d]", label, total)),
		label:   label,
		total:   total,
	}
}

// Increment advances the counter by one. Safe to call from multiple
// goroutines.
func (p *ProgressSpinner) Increment() {
	p.mu.Lock()
	p.current++
	p.message = fmt.Sprintf("%s [%d/%d]", p.label, p.current, p.total)
	p.mu.Unlock()
}

// SetProgress sets the counter to an absolute value.
func (p *ProgressSpinner) SetProgress(current int) {
	p.mu.Lock()
	p.current = current
	p.message = fmt.Sprintf("%s [%d/%d]", p.label, p.current, p.total)
	p.mu.Unlock()
}
