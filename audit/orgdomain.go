package audit

import (
	"golang.org/x/net/publicsuffix"
)

// OrganizationalDomain returns the organizational domain for the given domain.
//
// The organizational domain is the domain directly under the public suffix.
// For example:
//   - example.com -> example.com
//   - sub.example.com -> example.com
//   - sub.example.co.uk -> example.co.uk
//
// This uses the Public Suffix List, as required by RFC 7489 for DMARC
// policy discovery.
func OrganizationalDomain(domain string) string {
	domain = normalizeDomain(domain)

	if domain == "" {
		return ""
	}

	// Get the eTLD+1 (effective TLD plus one label)
	etld1, err := publicsuffix.EffectiveTLDPlusOne(domain)
	if err != nil {
		// If we can't determine the eTLD+1, return the domain as-is
		// This handles cases like "localhost" or invalid domains
		return domain
	}

	return etld1
}
