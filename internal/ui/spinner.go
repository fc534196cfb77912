package ui

import (
	"io"
	"time"

	"github.com/briandowns/spinner"
)

// Spinner shows progress while a network call is in flight. A disabled
// spinner is a no-op so callers never branch on terminal state.
type Spinner struct {
	s *spinner.Spinner
}

// StartSpinner starts a spinner writing to w when enabled is true.
func StartSpinner(w io.Writer, enabled bool, message string) *Spinner {
	if !enabled {
		return &Spinner{}
	}

	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(w))
	s.Suffix = " " + message
	// Continue without a colored spinner if the color is rejected.
	_ = s.Color("cyan")
	s.Start()
	return &Spinner{s: s}
}

// Active reports whether the spinner is drawing.
func (sp *Spinner) Active() bool {
	return sp != nil && sp.s != nil && sp.s.Active()
}

// Stop stops the spinner and clears its line.
func (sp *Spinner) Stop() {
	if sp == nil || sp.s == nil {
		return
	}
	sp.s.Stop()
}
