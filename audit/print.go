package audit

import (
	"fmt"
	"io"

	"github.com/mitchellh/colorstring"
	"github.com/synqronlabs/mailaudit/dns"
)

// printReport writes the human-readable per-domain result lines.
func (r *Runner) printReport(report Report) {
	printCheck(r.out, report.Domain, report.Domain, "an SPF", report.SPF)
	printCheck(r.out, report.Domain, dmarcPrefix+report.Domain, "a DMARC", report.DMARC)
}

// printCheck renders one record check. queryName is the name the lookup
// actually went to, which differs from the domain for DMARC.
func printCheck(w io.Writer, domain, queryName, label string, check Check) {
	switch check.Status {
	case StatusPresent:
		line := fmt.Sprintf("[green]%s has %s record", domain, label)
		if check.Authentic {
			line += " (dnssec-signed)"
		}
		fmt.Fprintln(w, colorstring.Color(line))
		fmt.Fprintf(w, "    %s\n", check.Record)
	case StatusAbsent:
		if check.Empty {
			fmt.Fprintln(w, colorstring.Color(fmt.Sprintf(
				"[red]%s does not have any TXT records", queryName)))
			return
		}
		fmt.Fprintln(w, colorstring.Color(fmt.Sprintf(
			"[red]%s does not have %s record, only other TXT records", domain, label)))
	case StatusUnresolvable:
		fmt.Fprintln(w, colorstring.Color(fmt.Sprintf(
			"[red]%s", unresolvableDetail(queryName, check.Err))))
	}
}

// unresolvableDetail names the failure sub-case for verbose output.
func unresolvableDetail(queryName string, err error) string {
	switch {
	case dns.IsNotFound(err):
		return fmt.Sprintf("%s does not exist", queryName)
	case dns.IsTimeout(err):
		return fmt.Sprintf("%s timed out", queryName)
	case dns.IsServFail(err):
		return fmt.Sprintf("%s could not be resolved with the current name servers", queryName)
	default:
		return fmt.Sprintf("%s could not be resolved: %v", queryName, err)
	}
}
