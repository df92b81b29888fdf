package canon

// SplitResult holds the two parts of a raw URL that the pipeline normalizes
// independently.
type SplitResult struct {
	Host      string // authority captured after "//" (may be empty)
	Remainder string // path run captured right after the authority (may be empty)
}

// Split separates rawURL into its host and remainder segments.
//
// It performs a single partial match of
//
//	(scheme ":")? ("//" authority)? path ("?" query)? ("#" fragment)?
//
// anchored at the start of the string, where scheme is a run of bytes other
// than ":/?#", authority is a run of bytes other than "/?#" and path is a run
// of ASCII letters, digits and "-". Only the authority and path captures are
// returned; query and fragment are matched but discarded. An empty string or
// one starting with "&" does not match, so both segments come back empty.
func Split(rawURL string) SplitResult {
	if rawURL == "" || rawURL[0] == '&' {
		return SplitResult{}
	}

	pos := 0

	// The scheme group only matches when the first run of non-delimiters is
	// non-empty and is immediately followed by ':'.
	if end := scanWhile(rawURL, 0, isSchemeByte); end > 0 && end < len(rawURL) && rawURL[end] == ':' {
		pos = end + 1
	}

	var res SplitResult
	if len(rawURL)-pos >= 2 && rawURL[pos] == '/' && rawURL[pos+1] == '/' {
		start := pos + 2
		pos = scanWhile(rawURL, start, isAuthorityByte)
		res.Host = rawURL[start:pos]
	}

	end := scanWhile(rawURL, pos, isPathByte)
	res.Remainder = rawURL[pos:end]

	return res
}

// scanWhile returns the index of the first byte at or after start for which
// accept reports false, or len(s).
func scanWhile(s string, start int, accept func(byte) bool) int {
	i := start
	for i < len(s) && accept(s[i]) {
		i++
	}
	return i
}

func isSchemeByte(c byte) bool {
	return c != ':' && c != '/' && c != '?' && c != '#'
}

func isAuthorityByte(c byte) bool {
	return c != '/' && c != '?' && c != '#'
}

// isPathByte is deliberately narrow: '/' and '.' are not part of the path run.
func isPathByte(c byte) bool {
	return isAlnum(c) || c == '-'
}

func isAlnum(c byte) bool {
	return ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z') || ('0' <= c && c <= '9')
}
