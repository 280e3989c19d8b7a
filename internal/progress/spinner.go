/*
Package progress provides a single-line CLI activity spinner.
*/
package progress

// Copyright (C) 2023-2025 the SMX authors
// SPDX-License-Identifier: Apache-2.0

import (
	"fmt"
	"os"
	"sync"
	"time"

	"golang.org/x/term"
)

var spinChars = []string{"⣾", "⣽", "⣻", "⢿", "⡿", "⣟", "⣯", "⣷"}

// Spinner renders an activity indicator with a status message on stderr.
// When stderr is not a terminal it prints each new status on its own line
// instead of animating.
type Spinner struct {
	mutex       sync.Mutex
	status      string
	statusIsNew bool
	spinIndex   int
	ticker      *time.Ticker
	done        chan bool
	spinning    bool
}

// NewSpinner creates a stopped Spinner.
func NewSpinner() *Spinner {
	return &Spinner{done: make(chan bool)}
}

// Start begins drawing the spinner.
func (s *Spinner) Start() {
	s.draw(true)
	s.ticker = time.NewTicker(250 * time.Millisecond)
	s.spinning = true
	go s.onTick()
}

// Status updates the status message.
func (s *Spinner) Status(status string) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	if status != s.status {
		s.status = status
		s.statusIsNew = true
	}
}

// Finish stops the spinner, leaving the last status on screen.
func (s *Spinner) Finish() {
	if s.spinning {
		s.ticker.Stop()
		s.done <- true
		s.draw(false)
		s.spinning = false
	}
}

func (s *Spinner) onTick() {
	for {
		select {
		case <-s.done:
			return
		case <-s.ticker.C:
			s.draw(true)
		}
	}
}

func (s *Spinner) draw(goUp bool) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	isTerminal := term.IsTerminal(int(os.Stderr.Fd()))
	if !isTerminal && !s.statusIsNew {
		return
	}
	fmt.Fprintf(os.Stderr, "%s  %-60s\n", spinChars[s.spinIndex], s.status)
	s.statusIsNew = false
	s.spinIndex = (s.spinIndex + 1) % len(spinChars)
	if goUp && isTerminal {
		fmt.Fprintf(os.Stderr, "\x1b[1A")
	}
}
