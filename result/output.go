package result

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
)

// WriteJSON writes the records as a formatted JSON array to the writer.
// Absent inputs are written as null.
func WriteJSON(w io.Writer, records []Record) error {
	if records == nil {
		records = []Record{}
	}
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(records); err != nil {
		return fmt.Errorf("write json output: %w", err)
	}
	return nil
}

// WriteCSV writes the records as CSV to the writer.
// Always includes a header row, even if there are no records.
// Column order: line, input, canonical, domain, blocked, error_type, external
func WriteCSV(w io.Writer, records []Record) error {
	cw := csv.NewWriter(w)

	header := []string{"line", "input", "canonical", "domain", "blocked", "error_type", "external"}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}

	for _, rec := range records {
		row := []string{
			lineStr(rec.Line),
			rec.InputText(),
			rec.Canonical,
			rec.Domain,
			strconv.FormatBool(rec.Blocked),
			string(rec.ErrorCategory),
			strconv.FormatBool(rec.External),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write csv record for line %d: %w", rec.Line, err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush csv output: %w", err)
	}
	return nil
}

// lineStr returns "" for 0 (no line number).
func lineStr(line int) string {
	if line == 0 {
		return ""
	}
	return strconv.Itoa(line)
}
