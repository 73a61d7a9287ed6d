package output

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/synqronlabs/mailaudit/audit"
	"github.com/synqronlabs/mailaudit/dns"
)

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading %s: %v", path, err)
	}
	return string(data)
}

func check(status audit.Status) audit.Check {
	c := audit.Check{Status: status}
	if status == audit.StatusUnresolvable {
		c.Err = dns.ErrNotFound
	}
	return c
}

func TestRouterRoutesByStatus(t *testing.T) {
	dir := t.TempDir()
	config := RouterConfig{
		SPFFile:     filepath.Join(dir, "spf.txt"),
		NoSPFFile:   filepath.Join(dir, "nospf.txt"),
		DMARCFile:   filepath.Join(dir, "dmarc.txt"),
		NoDMARCFile: filepath.Join(dir, "nodmarc.txt"),
	}

	router, err := NewRouter(config)
	if err != nil {
		t.Fatalf("NewRouter() error = %v", err)
	}

	reports := []audit.Report{
		{Domain: "both.example", SPF: check(audit.StatusPresent), DMARC: check(audit.StatusPresent)},
		{Domain: "spfonly.example", SPF: check(audit.StatusPresent), DMARC: check(audit.StatusAbsent)},
		{Domain: "bare.example", SPF: check(audit.StatusAbsent), DMARC: check(audit.StatusAbsent)},
		{Domain: "dead.example", SPF: check(audit.StatusUnresolvable), DMARC: check(audit.StatusUnresolvable)},
	}
	for _, report := range reports {
		if err := router.Write(report); err != nil {
			t.Fatalf("Write(%s) error = %v", report.Domain, err)
		}
	}
	if err := router.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	tests := []struct {
		path string
		want string
	}{
		{config.SPFFile, "both.example\nspfonly.example\n"},
		{config.NoSPFFile, "bare.example\n"},
		{config.DMARCFile, "both.example\n"},
		{config.NoDMARCFile, "spfonly.example\nbare.example\n"},
	}
	for _, tt := range tests {
		if got := readFile(t, tt.path); got != tt.want {
			t.Errorf("%s = %q, want %q", filepath.Base(tt.path), got, tt.want)
		}
	}
}

// Unresolvable must route nowhere: writing an unreachable domain to a no-SPF
// list would misreport a DNS outage as a missing record.
func TestRouterUnresolvableRoutesNowhere(t *testing.T) {
	dir := t.TempDir()
	config := RouterConfig{
		SPFFile:   filepath.Join(dir, "spf.txt"),
		NoSPFFile: filepath.Join(dir, "nospf.txt"),
	}

	router, err := NewRouter(config)
	if err != nil {
		t.Fatal(err)
	}
	report := audit.Report{
		Domain: "dead.example",
		SPF:    check(audit.StatusUnresolvable),
		DMARC:  check(audit.StatusUnresolvable),
	}
	if err := router.Write(report); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if err := router.Close(); err != nil {
		t.Fatal(err)
	}

	if got := readFile(t, config.SPFFile); got != "" {
		t.Errorf("spf file = %q, want empty", got)
	}
	if got := readFile(t, config.NoSPFFile); got != "" {
		t.Errorf("nospf file = %q, want empty", got)
	}
}

func TestRouterAppendsAcrossRuns(t *testing.T) {
	path := filepath.Join(t.TempDir(), "spf.txt")
	report := audit.Report{Domain: "a.example", SPF: check(audit.StatusPresent)}

	for i := 0; i < 2; i++ {
		router, err := NewRouter(RouterConfig{SPFFile: path})
		if err != nil {
			t.Fatal(err)
		}
		if err := router.Write(report); err != nil {
			t.Fatal(err)
		}
		if err := router.Close(); err != nil {
			t.Fatal(err)
		}
	}

	if got := readFile(t, path); got != "a.example\na.example\n" {
		t.Errorf("file = %q, want domain appended twice", got)
	}
}

func TestRouterNoFilesConfigured(t *testing.T) {
	router, err := NewRouter(RouterConfig{})
	if err != nil {
		t.Fatal(err)
	}
	if err := router.Write(audit.Report{Domain: "a.example", SPF: check(audit.StatusPresent)}); err != nil {
		t.Errorf("Write() error = %v", err)
	}
	if err := router.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
}

func TestRouterOpenFailureClosesEarlierFiles(t *testing.T) {
	dir := t.TempDir()
	_, err := NewRouter(RouterConfig{
		SPFFile:   filepath.Join(dir, "spf.txt"),
		NoSPFFile: filepath.Join(dir, "missing-dir", "nospf.txt"),
	})
	if err == nil {
		t.Fatal("expected an error for an unopenable output path")
	}
}

// TestEndToEnd runs the full pipeline: classifier, runner, stats, and
// router, against a stubbed resolver.
func TestEndToEnd(t *testing.T) {
	mock := dns.MockResolver{
		TXT: map[string][]string{
			"good.example.":  {"v=spf1 -all"},
			"nospf.example.": {"v=other text"},
		},
		NXDomain: []string{"nxdomain.example.", "_dmarc.nxdomain.example."},
	}

	noSPFPath := filepath.Join(t.TempDir(), "no_spf_domains.txt")
	router, err := NewRouter(RouterConfig{NoSPFFile: noSPFPath})
	if err != nil {
		t.Fatal(err)
	}

	stats := audit.NewStats()
	runner := audit.NewRunner(audit.RunnerConfig{
		Classifier: audit.NewClassifier(audit.ClassifierConfig{Resolver: mock}),
		Stats:      stats,
		Sinks:      []audit.Sink{router},
	})

	domains := []string{"good.example", "nospf.example", "nxdomain.example"}
	if err := runner.Run(context.Background(), domains); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if err := router.Close(); err != nil {
		t.Fatal(err)
	}

	if stats.SPF != (audit.Tally{Present: 1, Absent: 1, Unresolvable: 1}) {
		t.Errorf("SPF tally = %+v", stats.SPF)
	}
	// good.example and nospf.example exist but publish no DMARC record;
	// nxdomain.example cannot be resolved at all.
	if stats.DMARC != (audit.Tally{Present: 0, Absent: 2, Unresolvable: 1}) {
		t.Errorf("DMARC tally = %+v", stats.DMARC)
	}

	if got := readFile(t, noSPFPath); got != "nospf.example\n" {
		t.Errorf("no-SPF file = %q, want exactly nospf.example", got)
	}
}
