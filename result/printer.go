package result

import (
	"fmt"
	"io"
)

// PrintRecord writes one record in the original/canonicalized pair format.
func PrintRecord(w io.Writer, rec Record) {
	writef := func(format string, a ...any) { _, _ = fmt.Fprintf(w, format, a...) }

	if rec.Input == nil {
		writef("Original URL: <absent>\n")
	} else {
		writef("Original URL: %s\n", *rec.Input)
	}
	if rec.Failed() {
		writef("Error: %s\n", rec.Error)
		return
	}
	writef("Canonicalized URL: %s\n", rec.Canonical)
	if rec.Blocked {
		writef("Blocked: yes\n")
	}
	if rec.External {
		writef("External: yes\n")
	}
}

// PrintResults writes every record followed by a summary line to w.
func PrintResults(w io.Writer, res *Result) {
	for i, rec := range res.Records {
		if i > 0 {
			_, _ = fmt.Fprintln(w)
		}
		PrintRecord(w, rec)
	}
	if len(res.Records) > 0 {
		_, _ = fmt.Fprintln(w)
	}
	_, _ = fmt.Fprintf(w, "Canonicalized %d URLs (%d unique), %d failed, %d blocked\n",
		res.Stats.Total, res.Stats.Unique, res.Stats.Failed, res.Stats.Blocked)
}
