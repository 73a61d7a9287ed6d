package audit

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"
)

// Sink receives per-domain reports as they are produced. Implementations
// must be usable from a single goroutine; the runner invokes sinks
// sequentially, in input order.
type Sink interface {
	Write(report Report) error
}

// RunnerConfig contains configuration for a Runner.
type RunnerConfig struct {
	// Classifier classifies each domain. Required.
	Classifier *Classifier

	// Stats receives a tally of every report. Required.
	Stats *Stats

	// Sinks receive every report after tallying, e.g. categorized output
	// files or a machine-readable report stream. A sink error aborts the
	// run; resolution failures never do.
	Sinks []Sink

	// Verbose enables a per-domain result line on Output.
	Verbose bool

	// Output is the destination for verbose lines. Defaults to os.Stdout.
	Output io.Writer

	// Progress is the destination for the progress bar, typically
	// os.Stderr. Nil disables the bar. The bar is also suppressed in
	// verbose mode, where it would interleave with the per-domain lines.
	Progress io.Writer

	// Logger for debug output. Defaults to a discarding logger.
	Logger *slog.Logger
}

// Runner drives a batch of domains through the classifier, one domain at a
// time in input order. Each domain costs two sequential DNS queries; there
// is no cross-domain parallelism.
type Runner struct {
	classifier *Classifier
	stats      *Stats
	sinks      []Sink
	verbose    bool
	out        io.Writer
	progress   io.Writer
	logger     *slog.Logger
}

// NewRunner creates a Runner from the given configuration.
func NewRunner(config RunnerConfig) *Runner {
	if config.Output == nil {
		config.Output = os.Stdout
	}
	if config.Logger == nil {
		config.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Runner{
		classifier: config.Classifier,
		stats:      config.Stats,
		sinks:      config.Sinks,
		verbose:    config.Verbose,
		out:        config.Output,
		progress:   config.Progress,
		logger:     config.Logger,
	}
}

// Run processes every domain in order. Per-domain resolution failures are
// classification outcomes, not errors: the batch always continues to the
// next domain. Run returns early only when ctx is cancelled or a sink
// fails.
func (r *Runner) Run(ctx context.Context, domains []string) error {
	var (
		progress *mpb.Progress
		bar      *mpb.Bar
	)
	if r.progress != nil && !r.verbose {
		progress = mpb.New(mpb.WithOutput(r.progress), mpb.WithWidth(64))
		bar = progress.AddBar(int64(len(domains)),
			mpb.PrependDecorators(
				decor.Name("auditing", decor.WCSyncWidth),
			),
			mpb.AppendDecorators(
				decor.CountersNoUnit("[%d / %d]", decor.WCSyncWidth),
				decor.Percentage(decor.WCSyncSpace),
			),
		)
		defer progress.Wait()
	}

	for _, domain := range domains {
		select {
		case <-ctx.Done():
			if bar != nil {
				bar.Abort(true)
			}
			return ctx.Err()
		default:
		}

		report := r.classifier.Classify(ctx, domain)
		r.stats.Add(report)

		for _, sink := range r.sinks {
			if err := sink.Write(report); err != nil {
				if bar != nil {
					bar.Abort(true)
				}
				return fmt.Errorf("writing report for %s: %w", domain, err)
			}
		}

		if r.verbose {
			r.printReport(report)
		}
		if bar != nil {
			bar.Increment()
		}
	}

	r.logger.Debug("batch complete", "run", r.stats.RunID, "domains", r.stats.Total)
	return nil
}
