// Package checker runs the source/spec comparison over every file pair.
package checker

import (
	"context"
	"fmt"
	"log"
	"os"
	"runtime"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/mvp-joe/spec-check/internal/compare"
	"github.com/mvp-joe/spec-check/internal/discovery"
	"github.com/mvp-joe/spec-check/internal/item"
	"github.com/mvp-joe/spec-check/internal/parsers"
	"github.com/mvp-joe/spec-check/internal/report"
)

// Options configures a Checker.
type Options struct {
	Parse   parsers.Options
	Compare compare.Options

	// Workers bounds the number of pairs checked concurrently.
	// Zero means GOMAXPROCS.
	Workers int

	// CacheCapacity bounds the parse cache. Zero means a default.
	CacheCapacity int
}

// Run is the outcome of one pass over all pairs.
type Run struct {
	ID        string
	StartedAt time.Time
	Duration  time.Duration

	// Results holds one entry per pair, in discovery order.
	Results []report.FileResult
	Summary report.Summary
}

// Checker compares source files against their spec documents.
type Checker struct {
	resolver   *discovery.Resolver
	comparator *compare.Comparator
	opts       Options
	cache      *parseCache
	progress   ProgressReporter
}

// New creates a Checker. A nil progress reporter disables progress output.
func New(resolver *discovery.Resolver, opts Options, progress ProgressReporter) (*Checker, error) {
	if opts.Workers <= 0 {
		opts.Workers = runtime.GOMAXPROCS(0)
	}
	if progress == nil {
		progress = &NoOpProgressReporter{}
	}

	cache, err := newParseCache(opts.CacheCapacity)
	if err != nil {
		return nil, err
	}

	return &Checker{
		resolver:   resolver,
		comparator: compare.New(opts.Compare),
		opts:       opts,
		cache:      cache,
		progress:   progress,
	}, nil
}

// Close releases the parse cache.
func (c *Checker) Close() {
	c.cache.close()
}

// Resolver returns the resolver the checker walks.
func (c *Checker) Resolver() *discovery.Resolver {
	return c.resolver
}

// Run discovers pairs and checks them concurrently. Per-pair failures become
// ERROR results; only discovery failure or cancellation returns an error.
func (c *Checker) Run(ctx context.Context) (*Run, error) {
	run := &Run{ID: uuid.New().String(), StartedAt: time.Now()}

	pairs, err := c.resolver.Pairs()
	if err != nil {
		return nil, err
	}

	missing := 0
	for _, p := range pairs {
		if !p.HasSpec {
			missing++
		}
	}
	c.progress.OnDiscoveryComplete(len(pairs), missing)

	run.Results, err = c.CheckPairs(ctx, pairs)
	if err != nil {
		return nil, err
	}

	run.Summary = report.Summarize(run.Results)
	run.Duration = time.Since(run.StartedAt)
	c.progress.OnComplete(run)
	return run, nil
}

// CheckPairs checks pairs on a bounded worker group. Each worker writes only
// its own slot, so results keep the order of pairs.
func (c *Checker) CheckPairs(ctx context.Context, pairs []discovery.Pair) ([]report.FileResult, error) {
	results := make([]report.FileResult, len(pairs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.opts.Workers)

	for i, p := range pairs {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = c.CheckPair(p)
			c.progress.OnFileChecked(results[i])
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

// CheckPair checks a single pair. It never fails; errors become ERROR results.
func (c *Checker) CheckPair(p discovery.Pair) report.FileResult {
	if !p.HasSpec {
		return report.Missing(p.Source, p.Spec)
	}

	code, err := c.extract(p.Source, c.extractSource)
	if err != nil {
		return report.Failed(p.Source, p.Spec, err)
	}
	spec, err := c.extract(p.Spec, c.extractSamples)
	if err != nil {
		return report.Failed(p.Source, p.Spec, err)
	}

	return report.Compared(p.Source, p.Spec, c.comparator.Compare(code, spec))
}

func (c *Checker) extract(path string, fn extractFunc) (*item.Set, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	set, hit, err := c.cache.load(path, content, fn)
	if err != nil {
		return nil, err
	}
	if !hit {
		for _, dup := range set.Duplicates() {
			log.Printf("Warning: %s:%d: duplicate %s ignored", path, dup.Line, dup.Key())
		}
	}
	return set, nil
}

func (c *Checker) extractSource(path string, content []byte) (*item.Set, error) {
	return parsers.ExtractSource(path, content, c.opts.Parse)
}

func (c *Checker) extractSamples(path string, content []byte) (*item.Set, error) {
	return parsers.ExtractSamples(path, content, c.opts.Parse)
}
