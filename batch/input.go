package batch

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/lukemcguire/canonhost/result"
)

const maxLineSize = 1 << 20

// Input is one URL to canonicalize. A nil URL is an absent input.
type Input struct {
	Line     int     // 1-based source line, 0 when not read from a file
	URL      *string // nil when the source had no URL
	Err      error   // set when the source line could not be decoded
	External bool    // link left the site of the page it was found on
}

// jsonLine is the shape of one JSON lines record. A missing or null "url"
// decodes to a nil pointer.
type jsonLine struct {
	URL *string `json:"url"`
}

// FromStrings wraps present URLs as inputs without line numbers.
func FromStrings(urls []string) []Input {
	inputs := make([]Input, len(urls))
	for i := range urls {
		inputs[i] = Input{URL: &urls[i]}
	}
	return inputs
}

// ReadLines reads one URL per line. Whitespace-only lines and lines whose
// first non-blank byte is '#' are skipped. Other lines are passed through
// untouched, so a URL read from a file gets the same key as the same text
// given any other way.
func ReadLines(r io.Reader) ([]Input, error) {
	var inputs []Input
	err := scanLines(r, func(lineNo int, line string) {
		if strings.HasPrefix(strings.TrimSpace(line), "#") {
			return
		}
		inputs = append(inputs, Input{Line: lineNo, URL: &line})
	})
	return inputs, err
}

// ReadJSONLines reads one JSON object per line, taking the URL from its
// "url" member. Lines that fail to decode become inputs carrying a
// *result.DecodeError so the rest of the batch still runs.
func ReadJSONLines(r io.Reader) ([]Input, error) {
	var inputs []Input
	err := scanLines(r, func(lineNo int, line string) {
		var rec jsonLine
		if err := json.Unmarshal([]byte(line), &rec); err != nil {
			inputs = append(inputs, Input{Line: lineNo, Err: &result.DecodeError{Line: lineNo, Err: err}})
			return
		}
		inputs = append(inputs, Input{Line: lineNo, URL: rec.URL})
	})
	return inputs, err
}

func scanLines(r io.Reader, fn func(lineNo int, line string)) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	for lineNo := 1; scanner.Scan(); lineNo++ {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		fn(lineNo, line)
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read input: %w", err)
	}
	return nil
}
