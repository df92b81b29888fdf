package canon

import "strings"

// pass is one named normalization step.
type pass struct {
	name string
	fn   func(string) string
}

// hostSteps run in this exact order; later passes assume earlier cleanup.
var hostSteps = []pass{
	{"strip-control", stripControl},
	{"trim-dots", trimDots},
	{"collapse-dots", collapseDots},
	{"normalize-ip", NormalizeIP},
	{"escape", escapeHost},
	{"tidy-dots", tidyDots},
	{"lowercase", lowerASCII},
}

// NormalizeHost turns a raw authority into a canonical host containing only
// lowercase ASCII letters, digits, '.' and '-', with no leading or trailing
// dot and no run of consecutive dots.
func NormalizeHost(host string) string {
	return run(hostSteps, host)
}

// NormalizeIP is the IP-address normalization pass. It is the identity:
// IPv4 and IPv6 literals are passed through unchanged.
func NormalizeIP(host string) string {
	return host
}

// stripControl removes the bytes 0x00-0x1F and 0x7F-0xFF. Working on bytes
// means every byte of a multi-byte UTF-8 sequence is removed as well.
func stripControl(s string) string {
	return filterBytes(s, func(c byte) bool {
		return c > 0x1f && c < 0x7f
	})
}

func trimDots(s string) string {
	return strings.Trim(s, ".")
}

func collapseDots(s string) string {
	if !strings.Contains(s, "..") {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] == '.' && i > 0 && s[i-1] == '.' {
			continue
		}
		b.WriteByte(s[i])
	}
	return b.String()
}

// escapeHost deletes every byte that is not an ASCII letter, digit, '.' or
// '-'. Nothing is percent-encoded.
func escapeHost(s string) string {
	return filterBytes(s, func(c byte) bool {
		return isAlnum(c) || c == '.' || c == '-'
	})
}

// tidyDots re-applies the dot trimming and collapsing to dots that the escape
// pass exposed, e.g. "$.example" or "a.$.b".
func tidyDots(s string) string {
	return collapseDots(trimDots(s))
}

func lowerASCII(s string) string {
	// Only ASCII survives the escape pass, so strings.ToLower is byte-exact here.
	return strings.ToLower(s)
}

func filterBytes(s string, keep func(byte) bool) string {
	for i := 0; i < len(s); i++ {
		if keep(s[i]) {
			continue
		}
		b := make([]byte, 0, len(s))
		b = append(b, s[:i]...)
		for ; i < len(s); i++ {
			if keep(s[i]) {
				b = append(b, s[i])
			}
		}
		return string(b)
	}
	return s
}

func run(passes []pass, s string) string {
	for _, p := range passes {
		s = p.fn(s)
	}
	return s
}
