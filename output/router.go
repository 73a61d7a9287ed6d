// Package output writes classification results to categorized domain-list
// files and to a machine-readable report stream.
package output

import (
	"fmt"
	"os"

	"github.com/synqronlabs/mailaudit/audit"
)

// Default output file names for each category.
const (
	DefaultSPFFile     = "spf_domains.txt"
	DefaultNoSPFFile   = "no_spf_domains.txt"
	DefaultDMARCFile   = "dmarc_domains.txt"
	DefaultNoDMARCFile = "no_dmarc_domains.txt"
)

// RouterConfig selects which category files to produce. An empty path
// disables that category.
type RouterConfig struct {
	SPFFile     string
	NoSPFFile   string
	DMARCFile   string
	NoDMARCFile string
}

// Router appends domain names to the category files whose predicate matches
// a report. Files are opened once, in append mode, so partial progress is
// preserved if the process is interrupted mid-batch.
//
// An unresolvable check routes the domain to neither the has- nor the no-
// file for that record kind: indeterminate is not negative, and writing
// unreachable domains to a no-SPF list would misreport DNS outages as
// missing security records.
type Router struct {
	spf     *os.File
	noSPF   *os.File
	dmarc   *os.File
	noDMARC *os.File
}

var _ audit.Sink = (*Router)(nil)

// NewRouter opens the configured category files. On any failure it closes
// the files it already opened and returns the error.
func NewRouter(config RouterConfig) (*Router, error) {
	r := &Router{}

	for _, target := range []struct {
		path string
		file **os.File
	}{
		{config.SPFFile, &r.spf},
		{config.NoSPFFile, &r.noSPF},
		{config.DMARCFile, &r.dmarc},
		{config.NoDMARCFile, &r.noDMARC},
	} {
		if target.path == "" {
			continue
		}
		file, err := os.OpenFile(target.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			r.Close()
			return nil, fmt.Errorf("opening output file: %w", err)
		}
		*target.file = file
	}

	return r, nil
}

// Write appends the report's domain to every configured file whose category
// matches.
func (r *Router) Write(report audit.Report) error {
	if err := r.route(report.SPF.Status, report.Domain, r.spf, r.noSPF); err != nil {
		return err
	}
	return r.route(report.DMARC.Status, report.Domain, r.dmarc, r.noDMARC)
}

func (r *Router) route(status audit.Status, domain string, has, not *os.File) error {
	var file *os.File
	switch status {
	case audit.StatusPresent:
		file = has
	case audit.StatusAbsent:
		file = not
	default:
		// Unresolvable: indeterminate, routed nowhere.
		return nil
	}
	if file == nil {
		return nil
	}
	_, err := fmt.Fprintln(file, domain)
	return err
}

// Close closes every open category file, returning the first error.
func (r *Router) Close() error {
	var firstErr error
	for _, file := range []*os.File{r.spf, r.noSPF, r.dmarc, r.noDMARC} {
		if file == nil {
			continue
		}
		if err := file.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
