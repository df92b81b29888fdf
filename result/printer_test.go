package result

import (
	"bytes"
	"strings"
	"testing"
	"time"
)

func strPtr(s string) *string { return &s }

func TestPrintRecord(t *testing.T) {
	tests := []struct {
		name string
		rec  Record
		want string
	}{
		{
			name: "canonicalized",
			rec:  Record{Input: strPtr("http://One.2.nayyeri$.net/"), Canonical: "one.2.nayyeri.net/"},
			want: "Original URL: http://One.2.nayyeri$.net/\nCanonicalized URL: one.2.nayyeri.net/\n",
		},
		{
			name: "blocked",
			rec:  Record{Input: strPtr("http://evil.example"), Canonical: "evil.example/", Blocked: true},
			want: "Original URL: http://evil.example\nCanonicalized URL: evil.example/\nBlocked: yes\n",
		},
		{
			name: "external link",
			rec:  Record{Input: strPtr("https://login.example.phish.io/"), Canonical: "login.example.phish.io/", External: true},
			want: "Original URL: https://login.example.phish.io/\nCanonicalized URL: login.example.phish.io/\nExternal: yes\n",
		},
		{
			name: "absent input",
			rec:  Record{Error: "invalid input: url is absent", ErrorCategory: CategoryInvalidInput},
			want: "Original URL: <absent>\nError: invalid input: url is absent\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			PrintRecord(&buf, tt.rec)
			if got := buf.String(); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestPrintResults_Empty(t *testing.T) {
	var buf bytes.Buffer
	PrintResults(&buf, &Result{Stats: Stats{Duration: time.Second}})

	want := "Canonicalized 0 URLs (0 unique), 0 failed, 0 blocked\n"
	if got := buf.String(); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestPrintResults_WithRecords(t *testing.T) {
	var buf bytes.Buffer
	res := &Result{
		Records: []Record{
			{Line: 1, Input: strPtr("http://A.example/"), Canonical: "a.example/"},
			{Line: 2, Error: "invalid input: url is absent"},
		},
		Stats: Stats{Total: 2, Failed: 1, Unique: 1},
	}

	PrintResults(&buf, res)
	got := buf.String()

	for _, want := range []string{
		"Original URL: http://A.example/\nCanonicalized URL: a.example/\n\n",
		"Original URL: <absent>\nError: invalid input: url is absent\n\n",
		"Canonicalized 2 URLs (1 unique), 1 failed, 0 blocked\n",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q:\n%s", want, got)
		}
	}
}
