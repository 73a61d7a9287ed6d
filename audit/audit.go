package audit

import (
	"context"
	"io"
	"log/slog"
	"strings"

	"github.com/synqronlabs/mailaudit/dns"
)

// Record markers per RFC 7208 Section 4.5 and RFC 7489 Section 6.3. The
// version tag is always the first term of a record; matching is a
// case-insensitive prefix test, not a policy parse, so malformed records
// still count as present.
const (
	spfMarker   = "v=spf1"
	dmarcMarker = "v=dmarc1"

	// dmarcPrefix is the well-known subdomain where DMARC policies live.
	dmarcPrefix = "_dmarc."
)

// Status is the classification outcome for a single record kind.
type Status uint8

const (
	// StatusUnknown is the zero value; no classification has happened.
	StatusUnknown Status = iota

	// StatusPresent indicates a record starting with the version marker was
	// found.
	StatusPresent

	// StatusAbsent indicates the name answered the query but no record
	// matched the marker. This covers both a name with unrelated TXT
	// records and a name with no TXT records at all.
	StatusAbsent

	// StatusUnresolvable indicates the query failed: the name does not
	// exist, the query timed out, or the resolution failed in some other
	// way. Deliberately distinct from StatusAbsent, since conflating the
	// two would misreport DNS outages as missing security records.
	StatusUnresolvable
)

// String returns the lowercase name of the status.
func (s Status) String() string {
	switch s {
	case StatusPresent:
		return "present"
	case StatusAbsent:
		return "absent"
	case StatusUnresolvable:
		return "unresolvable"
	default:
		return "unknown"
	}
}

// Check is the outcome of classifying one record kind for one domain.
type Check struct {
	// Status is the classification outcome.
	Status Status

	// Record is the raw text of the first matching record.
	// Only set when Status is StatusPresent.
	Record string

	// Empty indicates the name answered but publishes no TXT records at
	// all, as opposed to publishing only unrelated ones.
	// Only meaningful when Status is StatusAbsent.
	Empty bool

	// Err is the underlying lookup failure.
	// Only set when Status is StatusUnresolvable.
	Err error

	// Authentic indicates the DNS response was DNSSEC-validated.
	Authentic bool
}

// Report is the classification result for a single domain.
type Report struct {
	// Domain is the audited domain name.
	Domain string

	// SPF is the outcome of the TXT lookup on the domain itself.
	SPF Check

	// DMARC is the outcome of the TXT lookup on "_dmarc.<domain>".
	DMARC Check
}

// ClassifierConfig contains configuration for a Classifier.
type ClassifierConfig struct {
	// Resolver performs the TXT lookups. Required.
	Resolver dns.Resolver

	// OrgFallback enables falling back to the organizational domain
	// (Public Suffix List eTLD+1) when "_dmarc.<domain>" has no DMARC
	// record, as DMARC policy discovery does per RFC 7489 Section 6.6.3.
	// Disabled by default: the plain well-known-subdomain lookup is what
	// most audits want to measure.
	OrgFallback bool

	// Logger for debug output. Defaults to a discarding logger.
	Logger *slog.Logger
}

// Classifier determines SPF and DMARC record presence for domains.
type Classifier struct {
	resolver    dns.Resolver
	orgFallback bool
	logger      *slog.Logger
}

// NewClassifier creates a Classifier from the given configuration.
func NewClassifier(config ClassifierConfig) *Classifier {
	if config.Logger == nil {
		config.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Classifier{
		resolver:    config.Resolver,
		orgFallback: config.OrgFallback,
		logger:      config.Logger,
	}
}

// Classify resolves the SPF and DMARC records for domain and returns the
// assembled report. It never returns an error: every failure path is
// represented as a status value in the report.
func (c *Classifier) Classify(ctx context.Context, domain string) Report {
	report := Report{Domain: domain}

	report.SPF = c.check(ctx, domain, spfMarker)
	c.logger.Debug("spf lookup",
		"domain", domain,
		"status", report.SPF.Status.String(),
		"err", report.SPF.Err)

	report.DMARC = c.check(ctx, dmarcPrefix+domain, dmarcMarker)
	if c.orgFallback && dmarcFallbackEligible(report.DMARC) {
		if org := OrganizationalDomain(domain); org != "" && org != normalizeDomain(domain) {
			fallback := c.check(ctx, dmarcPrefix+org, dmarcMarker)
			if fallback.Status == StatusPresent {
				c.logger.Debug("dmarc found at organizational domain",
					"domain", domain, "org", org)
				report.DMARC = fallback
			}
		}
	}
	c.logger.Debug("dmarc lookup",
		"domain", domain,
		"status", report.DMARC.Status.String(),
		"err", report.DMARC.Err)

	return report
}

// check performs a single TXT lookup and scans the answer for the marker.
func (c *Classifier) check(ctx context.Context, name, marker string) Check {
	result, err := c.resolver.LookupTXT(ctx, name)
	switch {
	case err == nil:
		for _, txt := range result.Records {
			if hasMarker(txt, marker) {
				return Check{
					Status:    StatusPresent,
					Record:    strings.TrimSpace(txt),
					Authentic: result.Authentic,
				}
			}
		}
		return Check{Status: StatusAbsent, Authentic: result.Authentic}
	case dns.IsNoRecords(err):
		// The name exists and answered; it just publishes nothing.
		return Check{Status: StatusAbsent, Empty: true, Authentic: result.Authentic}
	default:
		return Check{Status: StatusUnresolvable, Err: err}
	}
}

// dmarcFallbackEligible reports whether the subdomain lookup outcome allows
// falling back to the organizational domain. Temporary failures do not: the
// subdomain may well have a record we could not see.
func dmarcFallbackEligible(check Check) bool {
	if check.Status == StatusAbsent {
		return true
	}
	return check.Status == StatusUnresolvable && dns.IsNotFound(check.Err)
}

// hasMarker reports whether the trimmed record starts with the marker,
// case-insensitively.
func hasMarker(txt, marker string) bool {
	txt = strings.TrimSpace(txt)
	return len(txt) >= len(marker) && strings.EqualFold(txt[:len(marker)], marker)
}

// normalizeDomain lowercases the domain and strips any trailing dot.
func normalizeDomain(domain string) string {
	return strings.TrimSuffix(strings.ToLower(domain), ".")
}
