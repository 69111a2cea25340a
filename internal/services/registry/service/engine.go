package service

import (
	"strings"

	"bugprint/internal/core/fingerprint"
	"bugprint/internal/services/registry/domain"
)

// Engine computes fingerprints; it holds no state
type Engine struct{}

// Fingerprint returns the digest together with the parts it was built from
func (Engine) Fingerprint(r domain.BugReport) domain.FingerprintResult {
	parts := fingerprint.Components(r)
	return domain.FingerprintResult{
		Fingerprint:   fingerprint.Hash(strings.Join(parts, fingerprint.Separator)),
		NormalizedURL: parts[0],
		Components:    parts,
	}
}
