package tui

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/lukemcguire/canonhost/batch"
	"github.com/lukemcguire/canonhost/result"
)

func strPtr(s string) *string { return &s }

func TestNewModel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	progressCh := make(chan batch.Event, 10)
	runner := batch.New(batch.Config{Concurrency: 2}, progressCh)
	inputs := batch.FromStrings([]string{"http://a.example/", "http://b.example/"})

	model := NewModel(ctx, cancel, runner, inputs, progressCh)

	if model.ctx != ctx {
		t.Error("expected ctx to be stored in model")
	}
	if model.cancel == nil {
		t.Error("expected cancel to be stored in model")
	}
	if model.runner != runner {
		t.Error("expected runner to be stored in model")
	}
	if model.total != 2 {
		t.Errorf("expected total=2, got %d", model.total)
	}
	if model.processed != 0 || model.done {
		t.Error("expected a fresh model")
	}
}

func TestInit_ReturnsBatchCmd(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	progressCh := make(chan batch.Event, 10)
	model := NewModel(ctx, cancel, batch.New(batch.Config{}, progressCh), nil, progressCh)
	if cmd := model.Init(); cmd == nil {
		t.Error("Init() should return a non-nil batch command")
	}
}

func TestStartBatchRunsRunner(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	progressCh := make(chan batch.Event, 10)
	inputs := batch.FromStrings([]string{"http://One.2.nayyeri$.net/"})
	model := NewModel(ctx, cancel, batch.New(batch.Config{}, progressCh), inputs, progressCh)

	msg, ok := model.startBatch()().(BatchDoneMsg)
	if !ok {
		t.Fatal("startBatch should produce a BatchDoneMsg")
	}
	if msg.Err != nil {
		t.Fatalf("unexpected error: %v", msg.Err)
	}
	if got := msg.Result.Records[0].Canonical; got != "one.2.nayyeri.net/" {
		t.Errorf("unexpected canonical %q", got)
	}
}

func TestUpdate_BatchProgressMsg(t *testing.T) {
	model := Model{progressCh: make(chan batch.Event, 10)}

	msg := BatchProgressMsg{Processed: 5, Total: 9, Failed: 1, Blocked: 2, Canonical: "example.com/"}
	updatedModel, cmd := model.Update(msg)
	updated := updatedModel.(Model)

	if updated.processed != 5 || updated.total != 9 || updated.failed != 1 || updated.blocked != 2 {
		t.Errorf("unexpected counters: %+v", updated)
	}
	if updated.current != "example.com/" {
		t.Errorf("expected current key to be set, got %s", updated.current)
	}
	if cmd == nil {
		t.Error("expected non-nil cmd to re-subscribe to progress channel")
	}
}

func TestWaitForProgress_Closed(t *testing.T) {
	ch := make(chan batch.Event)
	close(ch)
	if _, ok := waitForProgress(ch)().(progressClosedMsg); !ok {
		t.Error("expected progressClosedMsg for a closed channel")
	}
}

func TestUpdate_BatchDoneMsg(t *testing.T) {
	model := Model{}
	res := &result.Result{
		Records: []result.Record{{Line: 1, Input: strPtr("http://a.example"), Canonical: "a.example/"}},
		Stats:   result.Stats{Total: 1, Unique: 1},
	}

	updatedModel, _ := model.Update(BatchDoneMsg{Result: res})
	updated := updatedModel.(Model)

	if !updated.done {
		t.Error("expected done=true after BatchDoneMsg")
	}
	if updated.Result() != res {
		t.Error("expected result to be stored")
	}
}

func TestUpdate_QuitCancels(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	model := Model{ctx: ctx, cancel: cancel}

	updatedModel, cmd := model.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	if !updatedModel.(Model).quitting {
		t.Error("expected quitting=true")
	}
	if cmd == nil {
		t.Error("expected quit command")
	}
	if ctx.Err() == nil {
		t.Error("expected context to be cancelled")
	}
}

func TestUpdate_SpinnerTickMsg(t *testing.T) {
	model := Model{}
	updatedModel, _ := model.Update(spinner.TickMsg{})
	_ = updatedModel.(Model)
}

func TestUpdate_WindowSizeMsg(t *testing.T) {
	model := Model{}
	updatedModel, _ := model.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	if updatedModel.(Model).width != 120 {
		t.Errorf("expected width=120, got %d", updatedModel.(Model).width)
	}
}

func TestView_InProgress(t *testing.T) {
	model := Model{processed: 3, total: 10, current: "example.com/"}
	output := model.View()
	if !strings.Contains(output, "Canonicalizing") || !strings.Contains(output, "3/10") {
		t.Errorf("unexpected progress view: %s", output)
	}
}

func TestView_DoneWithError(t *testing.T) {
	model := Model{done: true, err: context.Canceled}
	if output := model.View(); !strings.Contains(output, "Error") {
		t.Errorf("expected error message in done view, got: %s", output)
	}
}

func TestRenderSummary_NilResult(t *testing.T) {
	if RenderSummary(nil) == "" {
		t.Error("expected non-empty output for nil result")
	}
}

func TestRenderSummary_Empty(t *testing.T) {
	output := RenderSummary(&result.Result{})
	if !strings.Contains(output, "No URLs to canonicalize") {
		t.Errorf("unexpected output: %s", output)
	}
}

func TestRenderSummary_WithRecords(t *testing.T) {
	res := &result.Result{
		Records: []result.Record{
			{Line: 1, Input: strPtr("http://One.2.nayyeri$.net/"), Canonical: "one.2.nayyeri.net/", Domain: "nayyeri.net"},
			{Line: 2, Input: strPtr("http://evil.example"), Canonical: "evil.example/", Blocked: true},
			{Line: 3, Error: "invalid input: url is absent", ErrorCategory: result.CategoryInvalidInput},
		},
		Stats: result.Stats{Total: 3, Unique: 2, Failed: 1, Blocked: 1, Duration: 2 * time.Second},
	}
	output := RenderSummary(res)

	for _, want := range []string{
		"one.2.nayyeri.net/",
		"nayyeri.net",
		"blocked",
		"Invalid Input (1)",
		"lines: 3",
		"Canonicalized 3 URLs (2 unique), 1 failed, 1 blocked",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("expected %q in output, got: %s", want, output)
		}
	}
}

func TestRenderSummary_TruncatesTable(t *testing.T) {
	records := make([]result.Record, maxTableRows+5)
	for i := range records {
		records[i] = result.Record{Line: i + 1, Canonical: "a.example/"}
	}
	output := RenderSummary(&result.Result{Records: records, Stats: result.Stats{Total: len(records)}})
	if !strings.Contains(output, "5 more") {
		t.Errorf("expected truncation note, got: %s", output)
	}
}

func TestPromptModel(t *testing.T) {
	m := NewPromptModel()
	for _, r := range "http://One.2.nayyeri$.net/" {
		next, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
		m = next.(PromptModel)
	}

	if view := m.View(); !strings.Contains(view, "one.2.nayyeri.net/") {
		t.Errorf("expected live preview in view, got: %s", view)
	}
	if m.Value() != nil {
		t.Error("expected no value before submit")
	}

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = next.(PromptModel)
	if cmd == nil {
		t.Error("expected quit command on enter")
	}
	if got := m.Value(); got == nil || *got != "http://One.2.nayyeri$.net/" {
		t.Errorf("unexpected submitted value %v", got)
	}
}

func TestPromptModelCancel(t *testing.T) {
	m := NewPromptModel()
	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if next.(PromptModel).Value() != nil {
		t.Error("expected cancelled prompt to yield an absent value")
	}
}
