package result

import "time"

// Record is the outcome of canonicalizing a single input.
type Record struct {
	Line          int           `json:"line,omitempty"`       // 1-based input line, 0 for single inputs
	Input         *string       `json:"input"`                // original text, nil when absent
	Canonical     string        `json:"canonical,omitempty"`  // canonical key
	Domain        string        `json:"domain,omitempty"`     // registrable domain of the canonical host
	Blocked       bool          `json:"blocked"`              // key matched the blocklist
	External      bool          `json:"external,omitempty"`   // link points off the scanned page's site
	Error         string        `json:"error,omitempty"`      // why the record failed
	ErrorCategory ErrorCategory `json:"error_type,omitempty"` // classification of Error
}

// Failed reports whether the record carries an error.
func (r Record) Failed() bool {
	return r.Error != ""
}

// InputText returns the original text, or "" when the input was absent.
func (r Record) InputText() string {
	if r.Input == nil {
		return ""
	}
	return *r.Input
}

// Stats contains aggregate statistics for a run.
type Stats struct {
	Total    int           // Inputs processed
	Failed   int           // Inputs that produced an error
	Blocked  int           // Canonical keys found on the blocklist
	Unique   int           // Distinct canonical keys
	Duration time.Duration // Wall time of the run
}

// Result is the complete output of a batch run, in input order.
type Result struct {
	Records []Record
	Stats   Stats
}
