// Package canon converts arbitrary, possibly malformed URL strings into the
// canonical form used as a comparison and blocklist key by anti-phishing
// filters.
//
// The pipeline splits a URL into a host and a remainder, normalizes both
// independently and recombines them. Every function in this package is pure
// and safe for concurrent use.
package canon

import (
	"errors"
	"fmt"
)

// ErrInvalidInput is returned when there is no URL to canonicalize at all.
// Present but malformed URL text is never rejected.
var ErrInvalidInput = errors.New("invalid input: url is absent")

// Canonicalize returns the canonical form of rawURL.
func Canonicalize(rawURL string) string {
	parts := Split(rawURL)
	return Combine(NormalizeHost(parts.Host), NormalizeRemainder(parts.Remainder))
}

// CanonicalizePtr canonicalizes *rawURL. A nil pointer fails with
// ErrInvalidInput before any processing takes place.
func CanonicalizePtr(rawURL *string) (string, error) {
	if rawURL == nil {
		return "", fmt.Errorf("canonicalize: %w", ErrInvalidInput)
	}
	return Canonicalize(*rawURL), nil
}

// Combine joins a normalized host and remainder. An empty remainder is
// replaced by "/" so that a bare host always ends in a slash.
func Combine(host, remainder string) string {
	if remainder == "" {
		return host + "/"
	}
	return host + remainder
}
