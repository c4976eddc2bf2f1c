package table

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/010m010/PMSChartAnalyzer/chart"
	"github.com/010m010/PMSChartAnalyzer/density"
	"github.com/010m010/PMSChartAnalyzer/logging"
)

var (
	// ErrResolutionTimeout means an entry's chart bytes did not arrive
	// within the configured timeout
	ErrResolutionTimeout = errors.New("chart resolution timed out")
	// ErrResolutionFailure means the resolver failed for a reason other
	// than a timeout or an unreadable local file
	ErrResolutionFailure = errors.New("chart resolution failed")
	// ErrSkipped means the batch was canceled before the entry was
	// dispatched
	ErrSkipped = errors.New("entry skipped: batch canceled")
)

// RunnerConfig controls batch execution.
type RunnerConfig struct {
	// Workers is the number of entries analyzed concurrently; values < 1
	// mean sequential execution
	Workers int `json:"workers"`
	// ResolveTimeout bounds each entry's resolution; zero means no limit
	ResolveTimeout time.Duration `json:"resolve_timeout"`
	// Metric selects the per-chart scalar used for distribution summaries
	Metric Metric `json:"metric"`

	Parser  *chart.ParserConfig `json:"parser,omitempty"`
	Density *density.Config     `json:"density,omitempty"`
}

// DefaultRunnerConfig returns batch defaults: 4 workers, 30-second resolve
// timeout, peak density as the distribution metric.
func DefaultRunnerConfig() *RunnerConfig {
	return &RunnerConfig{
		Workers:        4,
		ResolveTimeout: 30 * time.Second,
		Metric:         MetricPeak,
	}
}

// EntryResult is the per-entry outcome: either a Chart and density Result, or
// the error that stopped this entry. One entry's failure never aborts the
// batch.
type EntryResult struct {
	Index int             `json:"index"`
	Entry DifficultyEntry `json:"entry"`

	Chart  *chart.Chart    `json:"chart,omitempty"`
	Result *density.Result `json:"result,omitempty"`

	// Err is the in-process error; Error carries its message into the JSON
	// rendering, where error values do not marshal
	Err   error  `json:"-"`
	Error string `json:"error,omitempty"`
}

// Failed reports whether the entry produced no result.
func (r *EntryResult) Failed() bool {
	return r.Err != nil
}

func (r *EntryResult) fail(err error) {
	r.Err = err
	r.Error = err.Error()
}

// BatchResult is the full outcome of one batch run: per-entry results in
// table order plus per-difficulty distributions over the successes.
type BatchResult struct {
	Table   *Table         `json:"table"`
	Entries []EntryResult  `json:"entries"`
	Groups  []Distribution `json:"groups"`
}

// Failures returns the failed entries, preserving table order.
func (b *BatchResult) Failures() []EntryResult {
	var out []EntryResult
	for _, e := range b.Entries {
		if e.Failed() {
			out = append(out, e)
		}
	}
	return out
}

// Runner analyzes every entry of a difficulty table. Entries are independent,
// so they run on a small worker pool; results are collected by entry index so
// output order never depends on completion order.
type Runner struct {
	config   *RunnerConfig
	resolver Resolver
	parser   *chart.Parser
	logger   logging.Logger
}

// NewRunner creates a batch runner with the given resolver, falling back to
// defaults for a nil config.
func NewRunner(config *RunnerConfig, resolver Resolver) *Runner {
	if config == nil {
		config = DefaultRunnerConfig()
	}
	if config.Metric == "" {
		config.Metric = MetricPeak
	}
	return &Runner{
		config:   config,
		resolver: resolver,
		parser:   chart.NewParser(config.Parser),
		logger:   logging.WithFields(logging.Fields{"component": "batch_runner"}),
	}
}

// Run analyzes all table entries. Canceling the context stops dispatching
// further entries; already-dispatched ones finish and the partial result is
// returned with the remaining entries marked as skipped.
func (r *Runner) Run(ctx context.Context, t *Table) *BatchResult {
	results := make([]EntryResult, len(t.Entries))
	for i, entry := range t.Entries {
		results[i] = EntryResult{Index: i, Entry: entry}
		results[i].fail(ErrSkipped)
	}

	workers := r.config.Workers
	if workers < 1 {
		workers = 1
	}
	if workers > len(t.Entries) {
		workers = len(t.Entries)
	}

	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				results[i] = r.runEntry(ctx, i, t.Entries[i])
			}
		}()
	}

dispatch:
	for i := range t.Entries {
		select {
		case <-ctx.Done():
			r.logger.Warn("batch canceled, returning partial results", logging.Fields{
				"dispatched": i, "total": len(t.Entries),
			})
			break dispatch
		case jobs <- i:
		}
	}
	close(jobs)
	wg.Wait()

	return &BatchResult{
		Table:   t,
		Entries: results,
		Groups:  GroupDistributions(results, r.config.Metric),
	}
}

// runEntry resolves, parses and computes density for one entry, classifying
// any failure by kind.
func (r *Runner) runEntry(ctx context.Context, index int, entry DifficultyEntry) EntryResult {
	result := EntryResult{Index: index, Entry: entry}

	resolveCtx := ctx
	if r.config.ResolveTimeout > 0 {
		var cancel context.CancelFunc
		resolveCtx, cancel = context.WithTimeout(ctx, r.config.ResolveTimeout)
		defer cancel()
	}

	data, err := r.resolver.Resolve(resolveCtx, entry)
	if err != nil {
		result.fail(classifyResolveError(resolveCtx, err))
		r.logger.Warn("entry resolution failed", logging.Fields{
			"title": entry.Title, "path": entry.Path, "error": result.Err.Error(),
		})
		return result
	}

	parsed, err := r.parser.ParseBytes(data, entry.Path)
	if err != nil {
		result.fail(err)
		r.logger.Warn("entry parse failed", logging.Fields{
			"title": entry.Title, "path": entry.Path, "error": err.Error(),
		})
		return result
	}
	result.Chart = parsed

	computed, err := density.Compute(parsed.Events, parsed.TotalTime, r.config.Density)
	if err != nil {
		result.fail(err)
		return result
	}
	result.Result = computed
	return result
}

func classifyResolveError(ctx context.Context, err error) error {
	switch {
	case errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded):
		return fmt.Errorf("%w: %v", ErrResolutionTimeout, err)
	case errors.Is(err, chart.ErrUnreadableFile):
		return err
	default:
		return fmt.Errorf("%w: %v", ErrResolutionFailure, err)
	}
}
