// Command mailaudit checks a list of domains for SPF and DMARC DNS records.
//
// It reads a domain list file, resolves each domain's TXT records and the
// TXT records of its "_dmarc" subdomain, and classifies each record kind as
// present, absent, or unresolvable. Results can be printed per domain,
// summarized, written to categorized domain-list files, and streamed as
// MessagePack for downstream tooling.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jessevdk/go-flags"

	"github.com/synqronlabs/mailaudit/audit"
	"github.com/synqronlabs/mailaudit/dns"
	"github.com/synqronlabs/mailaudit/input"
	"github.com/synqronlabs/mailaudit/output"
)

type options struct {
	Verbose bool `short:"v" long:"verbose" description:"Print the result for each domain as it is checked"`
	Stats   bool `short:"s" long:"stats" description:"Print summary statistics when the run completes"`

	SPF     bool `long:"spf" description:"Write domains with an SPF record to an output file"`
	NoSPF   bool `long:"nospf" description:"Write domains without an SPF record to an output file"`
	DMARC   bool `long:"dmarc" description:"Write domains with a DMARC record to an output file"`
	NoDMARC bool `long:"nodmarc" description:"Write domains without a DMARC record to an output file"`

	SPFFile   string `long:"spf-file" value-name:"PATH" description:"Override the SPF output file name"`
	DMARCFile string `long:"dmarc-file" value-name:"PATH" description:"Override the DMARC output file name"`
	Report    string `long:"report" value-name:"PATH" description:"Stream per-domain results to PATH as MessagePack"`

	Timeout     int      `long:"timeout" value-name:"SECONDS" default:"5" description:"DNS query timeout"`
	Nameservers []string `long:"nameserver" value-name:"HOST:PORT" description:"DNS server to query (repeatable; default: system resolvers)"`
	StdRes      bool     `long:"std-resolver" description:"Resolve through the system stub resolver instead of querying DNS servers directly"`
	DNSSEC      bool     `long:"dnssec" description:"Request DNSSEC validation and report authenticated answers"`
	OrgFallback bool     `long:"org-fallback" description:"Also check the organizational domain when _dmarc.<domain> has no record"`

	NoProgress bool `long:"no-progress" description:"Disable the progress bar"`
	Debug      bool `long:"debug" description:"Enable debug logging on stderr"`

	Args struct {
		DomainsFile string `positional-arg-name:"DOMAINS-FILE" description:"File with one domain per line, - for stdin (# comments and blank lines are skipped)"`
	} `positional-args:"yes" required:"yes"`
}

func parseFlags() (*options, error) {
	opts := &options{}

	parser := flags.NewParser(opts, flags.Default)
	parser.Usage = "[OPTIONS] DOMAINS-FILE"

	if _, err := parser.Parse(); err != nil {
		if flags.WroteHelp(err) {
			// Help has been printed by the library, exit cleanly
			os.Exit(0)
		}
		return nil, err
	}

	if err := opts.validate(); err != nil {
		return nil, err
	}

	return opts, nil
}

func (o *options) validate() error {
	if o.Timeout <= 0 {
		return fmt.Errorf("timeout must be > 0 seconds, got %d", o.Timeout)
	}
	if o.StdRes && len(o.Nameservers) > 0 {
		return errors.New("--nameserver has no effect with --std-resolver")
	}
	if o.StdRes && o.DNSSEC {
		return errors.New("--dnssec requires the direct resolver, not --std-resolver")
	}
	return nil
}

// outputPaths resolves the category file paths from the toggles and
// overrides. An override names the has- file when its toggle is set;
// otherwise it names the no- file. With neither toggle, the override is
// ignored. Per-category defaults apply when a toggle is set without an
// applicable override.
func (o *options) outputPaths() output.RouterConfig {
	var config output.RouterConfig

	if o.SPF {
		config.SPFFile = orDefault(o.SPFFile, output.DefaultSPFFile)
	}
	if o.NoSPF {
		if o.SPFFile != "" && !o.SPF {
			config.NoSPFFile = o.SPFFile
		} else {
			config.NoSPFFile = output.DefaultNoSPFFile
		}
	}

	if o.DMARC {
		config.DMARCFile = orDefault(o.DMARCFile, output.DefaultDMARCFile)
	}
	if o.NoDMARC {
		if o.DMARCFile != "" && !o.DMARC {
			config.NoDMARCFile = o.DMARCFile
		} else {
			config.NoDMARCFile = output.DefaultNoDMARCFile
		}
	}

	return config
}

func orDefault(path, fallback string) string {
	if path == "" {
		return fallback
	}
	return path
}

func (o *options) resolver() dns.Resolver {
	if o.StdRes {
		return dns.NewStdResolver()
	}
	return dns.NewResolver(dns.ResolverConfig{
		Nameservers: o.Nameservers,
		Timeout:     time.Duration(o.Timeout) * time.Second,
		DNSSEC:      o.DNSSEC,
	})
}

func newLogger(debug bool) *slog.Logger {
	if !debug {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
}

func main() {
	opts, err := parseFlags()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	logger := newLogger(opts.Debug)

	domains, err := input.ReadDomains(opts.Args.DomainsFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if len(domains) == 0 {
		fmt.Fprintln(os.Stderr, "Error: no domains to check")
		os.Exit(1)
	}

	classifier := audit.NewClassifier(audit.ClassifierConfig{
		Resolver:    opts.resolver(),
		OrgFallback: opts.OrgFallback,
		Logger:      logger,
	})
	stats := audit.NewStats()

	var sinks []audit.Sink
	var closers []func() error

	router, err := output.NewRouter(opts.outputPaths())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	sinks = append(sinks, router)
	closers = append(closers, router.Close)

	if opts.Report != "" {
		reportWriter, err := output.NewReportWriter(opts.Report, stats.RunID)
		if err != nil {
			router.Close()
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		sinks = append(sinks, reportWriter)
		closers = append(closers, reportWriter.Close)
	}

	// Setup context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle interrupt signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		fmt.Fprintln(os.Stderr, "\nReceived interrupt signal, stopping after the current domain...")
		cancel()
	}()

	var progress *os.File
	if !opts.NoProgress {
		progress = os.Stderr
	}

	runner := audit.NewRunner(audit.RunnerConfig{
		Classifier: classifier,
		Stats:      stats,
		Sinks:      sinks,
		Verbose:    opts.Verbose,
		Progress:   progressWriter(progress),
		Logger:     logger,
	})

	runErr := runner.Run(ctx, domains)

	var closeErr error
	for _, closeFn := range closers {
		if err := closeFn(); err != nil && closeErr == nil {
			closeErr = err
		}
	}

	if opts.Stats {
		fmt.Print(stats.Summary())
	}

	switch {
	case errors.Is(runErr, context.Canceled):
		fmt.Fprintf(os.Stderr, "Interrupted after %d of %d domains\n", stats.Total, len(domains))
		os.Exit(1)
	case runErr != nil:
		fmt.Fprintf(os.Stderr, "Error: %v\n", runErr)
		os.Exit(1)
	case closeErr != nil:
		fmt.Fprintf(os.Stderr, "Error: %v\n", closeErr)
		os.Exit(1)
	}
}

// progressWriter keeps the nil interface nil when no progress output is
// wanted (a nil *os.File in an io.Writer interface would not be nil).
func progressWriter(f *os.File) io.Writer {
	if f == nil {
		return nil
	}
	return f
}
