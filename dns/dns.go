// Package dns provides TXT record resolution for the mailaudit classifier.
//
// The package abstracts the underlying DNS query mechanism behind the
// Resolver interface and maps the many ways a lookup can fail onto a small
// set of sentinel errors, so callers can classify outcomes with errors.Is
// instead of inspecting transport-level error types.
//
// Two production implementations are provided: DNSResolver, built on
// github.com/miekg/dns with optional DNSSEC validation, and StdResolver,
// built on the standard library resolver for environments where direct
// port-53 traffic is filtered. MockResolver serves tests.
package dns

import (
	"context"
	"errors"
)

// Sentinel errors returned by Resolver implementations.
var (
	// ErrNotFound indicates an authoritative NXDOMAIN response: the queried
	// name does not exist.
	ErrNotFound = errors.New("dns: name does not exist")

	// ErrNoRecords indicates the name exists but carries no TXT records.
	// This is distinct from ErrNotFound: the zone answered the query.
	ErrNoRecords = errors.New("dns: name has no TXT records")

	// ErrTimeout indicates the query timed out before any server answered.
	ErrTimeout = errors.New("dns: query timed out")

	// ErrServFail indicates the server reported a failure (SERVFAIL).
	ErrServFail = errors.New("dns: server failure")

	// ErrRefused indicates the server refused the query.
	ErrRefused = errors.New("dns: query refused")

	// ErrBogus indicates a DNSSEC validation failure. Only returned when
	// DNSSEC is enabled on the resolver.
	ErrBogus = errors.New("dns: dnssec validation failed")
)

// Result contains the records returned by a successful TXT lookup.
type Result struct {
	// Records holds one string per TXT record, with the record's
	// constituent character-strings joined per RFC 7208 Section 3.3.
	Records []string

	// Authentic indicates the response was DNSSEC-validated (AD bit set by
	// a validating resolver). Always false for StdResolver.
	Authentic bool
}

// Resolver is the interface for TXT lookups required by record
// classification. Implementations must map failures onto the package
// sentinel errors where possible.
type Resolver interface {
	// LookupTXT retrieves the TXT records for the given name.
	LookupTXT(ctx context.Context, name string) (Result, error)
}

// IsNotFound reports whether err indicates NXDOMAIN.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsNoRecords reports whether err indicates an empty answer for an
// existing name.
func IsNoRecords(err error) bool {
	return errors.Is(err, ErrNoRecords)
}

// IsTimeout reports whether err indicates a query timeout.
func IsTimeout(err error) bool {
	return errors.Is(err, ErrTimeout)
}

// IsServFail reports whether err indicates a server failure.
func IsServFail(err error) bool {
	return errors.Is(err, ErrServFail)
}

// IsTemporary reports whether err is likely to resolve itself on retry
// (timeouts and server failures, as opposed to NXDOMAIN).
func IsTemporary(err error) bool {
	return errors.Is(err, ErrTimeout) || errors.Is(err, ErrServFail) || errors.Is(err, ErrBogus)
}
