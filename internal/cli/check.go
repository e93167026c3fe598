package cli

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mvp-joe/spec-check/internal/checker"
	"github.com/mvp-joe/spec-check/internal/config"
	"github.com/mvp-joe/spec-check/internal/discovery"
	"github.com/mvp-joe/spec-check/internal/history"
	"github.com/mvp-joe/spec-check/internal/report"
)

func runCheck(cmd *cobra.Command, args []string) error {
	// Set up context with cancellation for Ctrl+C
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)
	go func() {
		select {
		case <-sigChan:
			fmt.Fprintln(cmd.ErrOrStderr(), "\nInterrupted! Stopping...")
			cancel()
		case <-ctx.Done():
		}
	}()

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if quietFlag {
		log.SetOutput(io.Discard)
	}

	code, err := check(ctx, cfg, cmd.OutOrStdout(), quietFlag, watchFlag)
	if err != nil {
		return err
	}
	if code != 0 {
		return &exitError{code: code}
	}
	return nil
}

// check runs one pass (or watches when watch is set) and returns the exit
// status of the last completed pass.
func check(ctx context.Context, cfg *config.Config, out io.Writer, quiet, watch bool) (int, error) {
	resolver, err := discovery.New(cfg.DiscoveryOptions())
	if err != nil {
		return 0, err
	}

	var progress checker.ProgressReporter = &checker.NoOpProgressReporter{}
	if !quiet && !watch {
		progress = NewCLIProgressReporter(out)
	}

	chk, err := checker.New(resolver, cfg.CheckerOptions(), progress)
	if err != nil {
		return 0, err
	}
	defer chk.Close()

	run, err := chk.Run(ctx)
	if err != nil {
		return 0, err
	}
	code, err := finishRun(cfg, run, out, quiet)
	if err != nil || !watch {
		return code, err
	}

	watcher, err := checker.NewWatcher(chk, func(run *checker.Run, err error) {
		if err != nil {
			if ctx.Err() == nil {
				log.Printf("Error during re-check: %v", err)
			}
			return
		}
		code, err = finishRun(cfg, run, out, quiet)
		if err != nil {
			log.Printf("Error writing results: %v", err)
		}
	})
	if err != nil {
		return code, fmt.Errorf("failed to start watcher: %w", err)
	}

	if !quiet {
		fmt.Fprintln(out, "Watching for changes (Ctrl+C to stop)...")
	}
	watcher.Start(ctx)
	<-ctx.Done()
	watcher.Stop()
	return code, nil
}

// finishRun writes the log file, records history and prints the summary line.
func finishRun(cfg *config.Config, run *checker.Run, out io.Writer, quiet bool) (int, error) {
	code := run.Summary.ExitCode(cfg.AllowMissingSpec)

	w, err := report.Create(cfg.LogFile)
	if err != nil {
		return code, err
	}
	if err := w.Write(run.Results, run.Summary); err != nil {
		w.Close()
		return code, fmt.Errorf("failed to write log file: %w", err)
	}
	if err := w.Close(); err != nil {
		return code, fmt.Errorf("failed to write log file: %w", err)
	}

	if cfg.HistoryDB != "" {
		if err := recordRun(cfg, run, code); err != nil {
			log.Printf("Warning: failed to record run history: %v", err)
		}
	}

	if !quiet {
		s := run.Summary
		fmt.Fprintf(out, "Checked %d files: %d passing, %d with errors, %d missing spec (%.1fs)\n",
			s.Total, s.Passed, s.Errors(), s.MissingSpec, run.Duration.Seconds())
		fmt.Fprintf(out, "Results written to %s\n", cfg.LogFile)
	}
	return code, nil
}

func recordRun(cfg *config.Config, run *checker.Run, code int) error {
	store, err := history.Open(cfg.HistoryDB)
	if err != nil {
		return err
	}
	defer store.Close()

	return store.Record(history.Run{
		ID:        run.ID,
		StartedAt: run.StartedAt,
		Duration:  run.Duration,
		SourceDir: cfg.SrcDir,
		SpecDir:   cfg.SpecDir,
		Summary:   run.Summary,
		ExitCode:  code,
	}, run.Results)
}
