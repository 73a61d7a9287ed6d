package dns

import (
	"context"
	"slices"
)

// MockResolver is a Resolver used for testing.
// Set TXT records in the TXT field, which maps FQDNs (with trailing dot)
// to record values.
//
// Names listed in the failure fields override the TXT map. A name absent
// from both the TXT map and the failure fields resolves to ErrNoRecords,
// i.e. the name exists but publishes nothing.
type MockResolver struct {
	TXT map[string][]string

	// NXDomain contains names that will return ErrNotFound.
	NXDomain []string

	// Timeout contains names that will return ErrTimeout.
	Timeout []string

	// Fail contains names that will return a temporary error (SERVFAIL).
	Fail []string

	// AllAuthentic sets the default value for Authentic in responses.
	// Overridden by the Authentic and Inauthentic lists.
	AllAuthentic bool

	// Authentic contains names whose responses will have Authentic=true.
	Authentic []string

	// Inauthentic contains names whose responses will have Authentic=false.
	Inauthentic []string
}

var _ Resolver = MockResolver{}

// ensureFQDN ensures the name ends with a dot.
func ensureFQDN(name string) string {
	if len(name) == 0 || name[len(name)-1] != '.' {
		return name + "."
	}
	return name
}

// LookupTXT returns the configured TXT records for the given name.
func (r MockResolver) LookupTXT(ctx context.Context, name string) (Result, error) {
	fqdn := ensureFQDN(name)
	result := Result{Authentic: r.AllAuthentic}

	if err := ctx.Err(); err != nil {
		return result, err
	}

	if slices.Contains(r.Authentic, fqdn) {
		result.Authentic = true
	}
	if slices.Contains(r.Inauthentic, fqdn) {
		result.Authentic = false
	}

	// Check for configured failures
	switch {
	case slices.Contains(r.NXDomain, fqdn):
		return result, ErrNotFound
	case slices.Contains(r.Timeout, fqdn):
		return result, ErrTimeout
	case slices.Contains(r.Fail, fqdn):
		return result, ErrServFail
	}

	records, ok := r.TXT[fqdn]
	if !ok || len(records) == 0 {
		return result, ErrNoRecords
	}

	result.Records = records
	return result, nil
}
