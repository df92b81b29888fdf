package canon

// StepResult is the value of a segment after one named pass.
type StepResult struct {
	Step  string
	Value string
}

// Trace records every intermediate value of a canonicalization, for
// debugging why two URLs do or do not share a key.
type Trace struct {
	Input          string
	Split          SplitResult
	HostSteps      []StepResult
	RemainderSteps []StepResult
	Canonical      string
}

// Explain canonicalizes rawURL and returns the full trace. Its Canonical
// field always equals Canonicalize(rawURL).
func Explain(rawURL string) Trace {
	tr := Trace{Input: rawURL, Split: Split(rawURL)}
	host := record(hostSteps, tr.Split.Host, &tr.HostSteps)
	rem := record(remainderSteps, tr.Split.Remainder, &tr.RemainderSteps)
	tr.Canonical = Combine(host, rem)
	return tr
}

func record(passes []pass, s string, out *[]StepResult) string {
	for _, p := range passes {
		s = p.fn(s)
		*out = append(*out, StepResult{Step: p.name, Value: s})
	}
	return s
}
