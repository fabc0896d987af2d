// Package annotator attaches semantic verdicts to structural change
// records. Only value changes between two strings are eligible; everything
// else passes through untouched.
package annotator

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/wonderfulspam/semdiff/pkg/differ"
	"github.com/wonderfulspam/semdiff/pkg/semantic"
)

const (
	defaultWorkers = 4
	defaultTimeout = 10 * time.Second
)

// Record is a structural change record with an optional semantic verdict.
type Record struct {
	differ.ChangeRecord
	Semantic *semantic.Verdict `json:"semantic,omitempty"`
}

// Structural wraps records without scoring them, for callers that skip the
// semantic layer entirely.
func Structural(records []differ.ChangeRecord) []Record {
	out := make([]Record, len(records))
	for i := range records {
		out[i] = Record{ChangeRecord: records[i]}
	}
	return out
}

// Annotator scores eligible records concurrently through one scorer.
type Annotator struct {
	scorer  *semantic.Scorer
	workers int
	timeout time.Duration
}

// Option configures an Annotator.
type Option func(*Annotator)

// WithWorkers bounds the number of concurrent embedding calls.
func WithWorkers(n int) Option {
	return func(a *Annotator) {
		if n > 0 {
			a.workers = n
		}
	}
}

// WithTimeout bounds each record's scoring call. A timed-out record
// degrades to Unknown; the comparison as a whole still succeeds.
func WithTimeout(d time.Duration) Option {
	return func(a *Annotator) {
		if d > 0 {
			a.timeout = d
		}
	}
}

// New creates an annotator. The scorer is required; callers without one use
// Structural instead.
func New(scorer *semantic.Scorer, opts ...Option) (*Annotator, error) {
	if scorer == nil {
		return nil, fmt.Errorf("scorer is required")
	}
	a := &Annotator{
		scorer:  scorer,
		workers: defaultWorkers,
		timeout: defaultTimeout,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

// Annotate scores every eligible record and returns the annotated records
// in input order, plus the number of records degraded by provider failures.
// Scoring calls are independent, so they run on a bounded worker pool;
// completion order does not matter because each result lands back at its
// record's index.
func (a *Annotator) Annotate(ctx context.Context, records []differ.ChangeRecord) ([]Record, int) {
	out := Structural(records)

	sem := make(chan struct{}, a.workers)
	var wg sync.WaitGroup
	var failed int64

	for i := range out {
		if !out[i].IsStringChange() {
			continue
		}
		wg.Add(1)
		go func(rec *Record) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			callCtx, cancel := context.WithTimeout(ctx, a.timeout)
			defer cancel()

			verdict, err := a.scorer.Score(callCtx, rec.Old.Str(), rec.New.Str())
			if err != nil {
				atomic.AddInt64(&failed, 1)
				verdict = semantic.Verdict{
					Classification: semantic.Unknown,
					Profile:        a.scorer.Profile(),
				}
			}
			rec.Semantic = &verdict
		}(&out[i])
	}
	wg.Wait()

	return out, int(failed)
}
