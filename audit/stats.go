package audit

import (
	"fmt"
	"strings"

	"github.com/oklog/ulid/v2"
)

// Tally counts classification outcomes for one record kind.
type Tally struct {
	Present      int
	Absent       int
	Unresolvable int
}

func (t *Tally) add(s Status) {
	switch s {
	case StatusPresent:
		t.Present++
	case StatusAbsent:
		t.Absent++
	case StatusUnresolvable:
		t.Unresolvable++
	}
}

// Resolvable returns the number of domains whose lookup produced a definite
// present-or-absent answer.
func (t Tally) Resolvable() int {
	return t.Present + t.Absent
}

// Total returns the number of domains tallied. It always equals
// Present + Absent + Unresolvable, so per-kind counts reconcile with the
// number of domains processed.
func (t Tally) Total() int {
	return t.Present + t.Absent + t.Unresolvable
}

// Stats accumulates classification outcomes across a run.
//
// Stats is an explicit aggregator rather than package-level state, so
// repeated or embedded invocations do not share counters. It is not safe
// for concurrent use; the batch runner tallies sequentially.
type Stats struct {
	// RunID uniquely identifies this run. Surfaced in the summary and in
	// machine-readable report streams so output from different runs can be
	// told apart.
	RunID string

	// Total is the number of domains processed.
	Total int

	// SPF tallies outcomes of the SPF check.
	SPF Tally

	// DMARC tallies outcomes of the DMARC check.
	DMARC Tally
}

// NewStats creates an empty Stats with a fresh run ID.
func NewStats() *Stats {
	return &Stats{RunID: ulid.Make().String()}
}

// Add tallies a single report.
func (s *Stats) Add(report Report) {
	s.Total++
	s.SPF.add(report.SPF.Status)
	s.DMARC.add(report.DMARC.Status)
}

// Summary renders the run statistics as human-readable text.
func (s *Stats) Summary() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Run %s checked %d domains\n", s.RunID, s.Total)
	summaryLine(&b, "SPF", s.SPF)
	summaryLine(&b, "DMARC", s.DMARC)
	return b.String()
}

func summaryLine(b *strings.Builder, kind string, t Tally) {
	resolvable := t.Resolvable()
	if resolvable == 0 {
		fmt.Fprintf(b, "No domains were resolvable for the %s check (%d unresolvable)\n",
			kind, t.Unresolvable)
		return
	}
	fmt.Fprintf(b, "Out of %d resolvable domains, %d, or %.2f%%, had %s enabled (%d unresolvable)\n",
		resolvable, t.Present, float64(t.Present)/float64(resolvable)*100, kind, t.Unresolvable)
}
