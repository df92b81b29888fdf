package canon

// URL is an immutable value object wrapping an original URL string. The zero
// value holds no URL; canonicalizing it fails with ErrInvalidInput.
type URL struct {
	raw   string
	valid bool
}

// New wraps raw. The empty string is a present (if odd) URL.
func New(raw string) URL {
	return URL{raw: raw, valid: true}
}

// FromPtr wraps *raw, or returns the absent URL when raw is nil.
func FromPtr(raw *string) URL {
	if raw == nil {
		return URL{}
	}
	return New(*raw)
}

// Valid reports whether u holds a URL.
func (u URL) Valid() bool {
	return u.valid
}

// String returns the original text, unmodified.
func (u URL) String() string {
	return u.raw
}

// Canonicalize returns the canonical form of the wrapped URL.
func (u URL) Canonicalize() (string, error) {
	if !u.valid {
		return CanonicalizePtr(nil)
	}
	return Canonicalize(u.raw), nil
}
