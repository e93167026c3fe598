package cli

import (
	"fmt"
	"io"
	"log"
	"time"

	"github.com/schollz/progressbar/v3"

	"github.com/mvp-joe/spec-check/internal/checker"
	"github.com/mvp-joe/spec-check/internal/report"
)

// CLIProgressReporter implements progress reporting with a progress bar.
type CLIProgressReporter struct {
	out     io.Writer
	fileBar *progressbar.ProgressBar
}

// NewCLIProgressReporter creates a new CLI progress reporter writing to out.
func NewCLIProgressReporter(out io.Writer) *CLIProgressReporter {
	return &CLIProgressReporter{out: out}
}

func (c *CLIProgressReporter) OnDiscoveryComplete(pairs, missingSpecs int) {
	log.Printf("Checking %d source files (%d without a spec document)", pairs, missingSpecs)
	if pairs == 0 {
		return
	}

	c.fileBar = progressbar.NewOptions(pairs,
		progressbar.OptionSetWriter(c.out),
		progressbar.OptionSetDescription("Checking files"),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetItsString("files/s"),
		progressbar.OptionThrottle(65*time.Millisecond),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprintln(c.out)
		}),
	)
}

// OnFileChecked is safe for concurrent use; the bar serializes updates.
func (c *CLIProgressReporter) OnFileChecked(result report.FileResult) {
	if c.fileBar != nil {
		c.fileBar.Add(1)
	}
}

func (c *CLIProgressReporter) OnComplete(run *checker.Run) {
	if c.fileBar != nil {
		c.fileBar.Finish()
		c.fileBar = nil
	}
}
