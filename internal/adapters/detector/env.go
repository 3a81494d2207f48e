// Package detector decides how batch progress is shown.
package detector

import (
	"os"

	"golang.org/x/term"
)

// OutputMode represents how batch progress is rendered.
type OutputMode int

const (
	// ModeAuto detects the mode from the environment.
	ModeAuto OutputMode = iota
	// ModeProgress prints a line as each unit starts and completes.
	ModeProgress
	// ModeQuiet prints only the final results.
	ModeQuiet
	// ModeTUI shows an interactive dashboard with each unit's load output.
	// It is never detected, only requested.
	ModeTUI
)

// DetectEnvironment returns ModeProgress on an interactive stderr outside CI,
// and ModeQuiet otherwise.
func DetectEnvironment() OutputMode {
	return detect(term.IsTerminal(int(os.Stderr.Fd())), os.Getenv("CI"))
}

func detect(isTTY bool, ci string) OutputMode {
	if !isTTY || ci == "true" || ci == "1" {
		return ModeQuiet
	}
	return ModeProgress
}

// ResolveMode applies the user's flag to the detected mode.
// userFlag is one of "auto", "progress", "quiet", "ci", "tui", or empty.
func ResolveMode(autoDetected OutputMode, userFlag string) OutputMode {
	switch userFlag {
	case "tui":
		return ModeTUI
	case "progress":
		return ModeProgress
	case "quiet", "ci":
		return ModeQuiet
	default:
		return autoDetected
	}
}
