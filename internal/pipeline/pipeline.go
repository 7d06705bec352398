// Package pipeline classifies candidates concurrently with a bounded worker pool.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fpang/lapse-classify/internal/classify"
	"github.com/fpang/lapse-classify/internal/filehandler"
	"github.com/fpang/lapse-classify/internal/metrics"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// ErrInterrupted is returned when the user interrupts the run.
var ErrInterrupted = errors.New("interrupted")

// DefaultWorkers is the number of concurrent classifier calls.
const DefaultWorkers = 5

// Result is the outcome of classifying one candidate. Each candidate
// produces exactly one Result.
type Result struct {
	Candidate *filehandler.Candidate
	Outcome   classify.Outcome
}

// Preparer turns a candidate into a classifier payload.
type Preparer func(*filehandler.Candidate) (*filehandler.Prepared, error)

// Pipeline fans candidates out to a Classifier.
type Pipeline struct {
	classifier classify.Classifier
	workers    int
	prepare    Preparer
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithWorkers sets the number of concurrent classifications.
func WithWorkers(n int) Option {
	return func(p *Pipeline) {
		if n > 0 {
			p.workers = n
		}
	}
}

// WithPreparer replaces filehandler.PrepareCandidate.
func WithPreparer(fn Preparer) Option {
	return func(p *Pipeline) { p.prepare = fn }
}

// New returns a Pipeline using c.
func New(c classify.Classifier, opts ...Option) *Pipeline {
	p := &Pipeline{
		classifier: c,
		workers:    DefaultWorkers,
		prepare:    filehandler.PrepareCandidate,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Workers returns the configured concurrency.
func (p *Pipeline) Workers() int {
	return p.workers
}

// ClassifyAll classifies every candidate and returns the results in
// completion order. A failure affects only its own candidate's Result.
//
// If ctx is cancelled, ClassifyAll returns ErrInterrupted at once without
// waiting for in-flight workers, and no results. Workers see the same
// cancelled context and wind down on their own.
func (p *Pipeline) ClassifyAll(ctx context.Context, candidates []*filehandler.Candidate) ([]Result, error) {
	if len(candidates) == 0 {
		return nil, nil
	}

	start := time.Now()
	log.Info().
		Int("candidates", len(candidates)).
		Int("workers", p.workers).
		Str("classifier", p.classifier.Name()).
		Msg("Classifying images")

	// Buffered so a worker finishing after an interrupt never blocks.
	results := make(chan Result, len(candidates))

	var g errgroup.Group
	g.SetLimit(p.workers)

	go func() {
		for _, c := range candidates {
			if ctx.Err() != nil {
				log.Debug().Msg("Dispatch stopped")
				return
			}
			g.Go(func() error {
				results <- p.classifyOne(ctx, c)
				return nil
			})
		}
	}()

	collected := make([]Result, 0, len(candidates))
	var failed int
	for len(collected) < len(candidates) {
		select {
		case r := <-results:
			collected = append(collected, r)
			if r.Outcome.Kind == classify.OutcomeFailed {
				failed++
			}
			log.Info().
				Str("file", r.Candidate.Name()).
				Str("outcome", r.Outcome.String()).
				Int("done", len(collected)).
				Int("total", len(candidates)).
				Msg("Classified")
		case <-ctx.Done():
			log.Warn().
				Int("done", len(collected)).
				Int("total", len(candidates)).
				Msg("Classification interrupted")
			return nil, fmt.Errorf("%w: %w", ErrInterrupted, context.Cause(ctx))
		}
	}

	metrics.New("LapseClassify").
		Dimension("Operation", "classifyAll").
		Dimension("Provider", p.classifier.Name()).
		Metric("Candidates", float64(len(candidates)), metrics.UnitCount).
		Metric("Failed", float64(failed), metrics.UnitCount).
		Metric("DurationMs", float64(time.Since(start).Milliseconds()), metrics.UnitMilliseconds).
		Flush()

	return collected, nil
}

func (p *Pipeline) classifyOne(ctx context.Context, c *filehandler.Candidate) Result {
	if err := ctx.Err(); err != nil {
		return Result{Candidate: c, Outcome: classify.Failed(err)}
	}

	prepared, err := p.prepare(c)
	if err != nil {
		log.Warn().Err(err).Str("file", c.Name()).Msg("Failed to prepare image")
		return Result{Candidate: c, Outcome: classify.Failed(err)}
	}

	text, err := p.classifier.Classify(ctx, prepared.Data, prepared.MIMEType)
	if err != nil {
		if ctx.Err() == nil {
			log.Warn().Err(err).Str("file", c.Name()).Msg("Classification failed")
		}
		return Result{Candidate: c, Outcome: classify.Failed(err)}
	}

	return Result{Candidate: c, Outcome: classify.Normalize(text)}
}
