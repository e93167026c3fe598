package checker

import "github.com/mvp-joe/spec-check/internal/report"

// ProgressReporter provides callbacks for reporting check progress.
// Implementations can display progress bars, log messages, or remain silent.
// OnFileChecked may be called concurrently from worker goroutines.
type ProgressReporter interface {
	// OnDiscoveryComplete is called when file pairs have been resolved.
	OnDiscoveryComplete(pairs, missingSpecs int)

	// OnFileChecked is called after each pair is checked.
	OnFileChecked(result report.FileResult)

	// OnComplete is called when the run finishes.
	OnComplete(run *Run)
}

// NoOpProgressReporter is a progress reporter that does nothing.
// Used when progress reporting is disabled (e.g., --quiet flag).
type NoOpProgressReporter struct{}

func (n *NoOpProgressReporter) OnDiscoveryComplete(pairs, missingSpecs int) {}
func (n *NoOpProgressReporter) OnFileChecked(result report.FileResult)      {}
func (n *NoOpProgressReporter) OnComplete(run *Run)                         {}
