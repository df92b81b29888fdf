package canon

import "strings"

const parentSegment = "/.."

var remainderSteps = []pass{
	{"collapse-current", collapseCurrentDirs},
	{"elide-parents", elideParents},
	{"truncate-fragment", truncateFragment},
}

// NormalizeRemainder resolves dot-segments in the remainder and strips any
// fragment.
//
// Runs of "/./" collapse to a single "/". Then a single left-to-right pass
// over the segments matching "/" followed by letters, digits, '-' or '.'
// keeps a segment only if neither it nor the segment after it is "/..".
// Removals are never re-examined, so "/a/b/../../c" becomes "/a/c". Finally
// everything from the first '#' onward is cut.
func NormalizeRemainder(rem string) string {
	return run(remainderSteps, rem)
}

// collapseCurrentDirs replaces every maximal run of adjacent "/./"
// occurrences with "/". Matching is leftmost and non-overlapping, so
// "/././x" becomes "/./x".
func collapseCurrentDirs(s string) string {
	if !strings.Contains(s, "/./") {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); {
		if !strings.HasPrefix(s[i:], "/./") {
			b.WriteByte(s[i])
			i++
			continue
		}
		for strings.HasPrefix(s[i:], "/./") {
			i += 3
		}
		b.WriteByte('/')
	}
	return b.String()
}

// elideParents performs the one-segment-lookahead parent elision. When no
// segment matches the string is returned untouched; otherwise only the kept
// segments survive and any text between or around segments is dropped.
func elideParents(s string) string {
	segments := scanSegments(s)
	if len(segments) == 0 {
		return s
	}

	var b strings.Builder
	b.Grow(len(s))
	for i, current := range segments {
		var next string
		if i+1 < len(segments) {
			next = segments[i+1]
		}
		if current != parentSegment && next != parentSegment {
			b.WriteString(current)
		}
	}
	return b.String()
}

// scanSegments returns all non-overlapping matches of "/" followed by one or
// more letters, digits, '-' or '.', in scan order.
func scanSegments(s string) []string {
	var segments []string
	for i := 0; i < len(s); {
		if s[i] != '/' {
			i++
			continue
		}
		end := scanWhile(s, i+1, isSegmentByte)
		if end == i+1 {
			i++
			continue
		}
		segments = append(segments, s[i:end])
		i = end
	}
	return segments
}

func isSegmentByte(c byte) bool {
	return isAlnum(c) || c == '-' || c == '.'
}

func truncateFragment(s string) string {
	if idx := strings.IndexByte(s, '#'); idx >= 0 {
		return s[:idx]
	}
	return s
}
