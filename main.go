// Package main provides the canonhost CLI entrypoint.
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"text/tabwriter"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"

	"github.com/lukemcguire/canonhost/batch"
	"github.com/lukemcguire/canonhost/blocklist"
	"github.com/lukemcguire/canonhost/canon"
	"github.com/lukemcguire/canonhost/extract"
	"github.com/lukemcguire/canonhost/logger"
	"github.com/lukemcguire/canonhost/result"
	"github.com/lukemcguire/canonhost/tui"
)

const (
	exitOK      = 0
	exitError   = 1
	exitUsage   = 2
	exitBlocked = 3
)

type options struct {
	file           string
	jsonl          string
	html           string
	base           string
	blocklist      string
	buildBlocklist string
	capacity       uint
	format         string
	concurrency    int
	explain        bool
	noTUI          bool
	logLevel       string
	logFormat      string
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	opts, positional, err := parseFlags(args, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK
		}
		_, _ = fmt.Fprintf(stderr, "%v\n", err)
		return exitUsage
	}

	log, err := logger.New(logger.Config{Level: opts.logLevel, Format: opts.logFormat, Output: stderr})
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitUsage
	}

	if opts.buildBlocklist != "" {
		return buildBlocklist(opts, positional, stdin, stdout, stderr, log)
	}

	cfg := batch.DefaultConfig()
	cfg.Logger = log
	if opts.concurrency > 0 {
		cfg.Concurrency = opts.concurrency
	}
	if opts.blocklist != "" {
		list, err := blocklist.Open(opts.blocklist)
		if err != nil {
			_, _ = fmt.Fprintf(stderr, "Error: %v\n", err)
			return exitError
		}
		defer list.Close()
		cfg.Blocklist = list
	}

	inputs, batchMode, err := collectInputs(opts, positional, stdin)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitError
	}

	if !batchMode {
		raw, err := readSingle(positional, opts, stdin, stdout)
		if err != nil {
			_, _ = fmt.Fprintf(stderr, "Error: %v\n", err)
			return exitError
		}
		return runSingle(opts, batch.New(cfg, nil), raw, stdout, stderr)
	}

	log.Debug("running batch", slog.Int("inputs", len(inputs)), slog.Int("concurrency", cfg.Concurrency))
	return runBatch(ctx, opts, cfg, inputs, stdout, stderr)
}

func parseFlags(args []string, stderr io.Writer) (options, []string, error) {
	var opts options
	fs := flag.NewFlagSet("canonhost", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&opts.file, "file", "", "read one URL per line from `path` (\"-\" for stdin); excludes URL arguments")
	fs.StringVar(&opts.jsonl, "jsonl", "", "read JSON lines with a nullable \"url\" member from `path` (\"-\" for stdin)")
	fs.StringVar(&opts.html, "html", "", "canonicalize every link in the HTML document at `path` (\"-\" for stdin)")
	fs.StringVar(&opts.base, "base", "", "base `URL` for resolving relative links in -html documents")
	fs.StringVar(&opts.blocklist, "blocklist", "", "check canonical keys against the blocklist file at `path`")
	fs.StringVar(&opts.buildBlocklist, "build-blocklist", "", "build a blocklist file at `path` from -file or the arguments")
	fs.UintVar(&opts.capacity, "capacity", blocklist.DefaultCapacity, "expected number of blocklist entries")
	fs.StringVar(&opts.format, "format", "text", "output format: text, json or csv")
	fs.IntVar(&opts.concurrency, "concurrency", 0, "number of batch workers (default: number of CPUs)")
	fs.BoolVar(&opts.explain, "explain", false, "print every intermediate normalization step")
	fs.BoolVar(&opts.noTUI, "no-tui", false, "never use the interactive terminal UI")
	fs.StringVar(&opts.logLevel, "log-level", "warn", "log level: debug, info, warn or error")
	fs.StringVar(&opts.logFormat, "log-format", "text", "log format: text or json")
	fs.Usage = func() {
		_, _ = fmt.Fprintln(stderr, "Usage: canonhost [flags] [url ...]")
		_, _ = fmt.Fprintln(stderr, "Flags:")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return opts, nil, err
	}

	switch opts.format {
	case "text", "json", "csv":
	default:
		return opts, nil, fmt.Errorf("unknown format %q", opts.format)
	}

	var sources []string
	for name, value := range map[string]string{"-file": opts.file, "-jsonl": opts.jsonl, "-html": opts.html} {
		if value != "" {
			sources = append(sources, name)
		}
	}
	switch {
	case len(sources) > 1:
		return opts, nil, errors.New("-file, -jsonl and -html are mutually exclusive")
	case len(sources) == 1 && fs.NArg() > 0:
		return opts, nil, fmt.Errorf("URL arguments cannot be combined with %s", sources[0])
	}
	return opts, fs.Args(), nil
}

// collectInputs gathers batch inputs. It reports batchMode=false when the
// invocation is about a single URL (one argument, or a prompt).
func collectInputs(opts options, positional []string, stdin io.Reader) ([]batch.Input, bool, error) {
	switch {
	case opts.file != "":
		return readFrom(opts.file, stdin, batch.ReadLines)
	case opts.jsonl != "":
		return readFrom(opts.jsonl, stdin, batch.ReadJSONLines)
	case opts.html != "":
		return readFrom(opts.html, stdin, func(r io.Reader) ([]batch.Input, error) {
			return linkInputs(r, opts.base)
		})
	case len(positional) > 1:
		return batch.FromStrings(positional), true, nil
	default:
		return nil, false, nil
	}
}

func readFrom(path string, stdin io.Reader, read func(io.Reader) ([]batch.Input, error)) ([]batch.Input, bool, error) {
	r := stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, true, fmt.Errorf("open input: %w", err)
		}
		defer f.Close()
		r = f
	}
	inputs, err := read(r)
	return inputs, true, err
}

func linkInputs(r io.Reader, base string) ([]batch.Input, error) {
	var baseURL *url.URL
	if base != "" {
		parsed, err := url.Parse(base)
		if err != nil {
			return nil, fmt.Errorf("parse base URL %q: %w", base, err)
		}
		baseURL = parsed
	}

	links, err := extract.Links(r, baseURL)
	if err != nil {
		return nil, fmt.Errorf("extract links: %w", err)
	}

	inputs := make([]batch.Input, len(links))
	for i, link := range links {
		inputs[i] = batch.Input{URL: &links[i].Href, External: link.External}
	}
	return inputs, nil
}

// readSingle returns the URL to canonicalize in single mode. A nil result
// means the user gave no URL at all.
func readSingle(positional []string, opts options, stdin io.Reader, stdout io.Writer) (*string, error) {
	if len(positional) == 1 {
		return &positional[0], nil
	}

	if in, ok := stdin.(*os.File); ok && !opts.noTUI && isatty.IsTerminal(in.Fd()) {
		program := tea.NewProgram(tui.NewPromptModel(), tea.WithInput(in), tea.WithOutput(stdout))
		final, err := program.Run()
		if err != nil {
			return nil, fmt.Errorf("prompt: %w", err)
		}
		return final.(tui.PromptModel).Value(), nil
	}

	line, err := bufio.NewReader(stdin).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("read url: %w", err)
	}
	if errors.Is(err, io.EOF) && line == "" {
		return nil, nil
	}
	line = strings.TrimRight(line, "\r\n")
	return &line, nil
}

func runSingle(opts options, runner *batch.Runner, raw *string, stdout, stderr io.Writer) int {
	rec := runner.Canonicalize(batch.Input{URL: raw})
	if rec.Failed() {
		_, _ = fmt.Fprintf(stderr, "Error: %s\n", rec.Error)
		return exitError
	}

	if opts.explain {
		// Structured formats keep stdout parseable.
		traceOut := stdout
		if opts.format != "text" {
			traceOut = stderr
		}
		printTrace(traceOut, canon.Explain(*raw))
	}

	if err := writeRecords(stdout, opts.format, []result.Record{rec}, func() {
		result.PrintRecord(stdout, rec)
	}); err != nil {
		_, _ = fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitError
	}

	if rec.Blocked {
		return exitBlocked
	}
	return exitOK
}

func runBatch(ctx context.Context, opts options, cfg batch.Config, inputs []batch.Input, stdout, stderr io.Writer) int {
	var res *result.Result
	var runErr error

	if out, ok := stdout.(*os.File); ok && opts.format == "text" && !opts.noTUI && isatty.IsTerminal(out.Fd()) {
		ctx, cancel := context.WithCancel(ctx)
		defer cancel()

		progressCh := make(chan batch.Event, 100)
		model := tui.NewModel(ctx, cancel, batch.New(cfg, progressCh), inputs, progressCh)
		final, err := tea.NewProgram(model, tea.WithOutput(out)).Run()
		if err != nil {
			_, _ = fmt.Fprintf(stderr, "Error: %v\n", err)
			return exitError
		}
		finalModel := final.(tui.Model)
		res, runErr = finalModel.Result(), finalModel.Err()
		if res == nil && runErr == nil {
			// Quit before the batch finished.
			return exitError
		}
	} else {
		res, runErr = batch.New(cfg, nil).Run(ctx, inputs)
		if res != nil {
			if err := writeRecords(stdout, opts.format, res.Records, func() {
				result.PrintResults(stdout, res)
			}); err != nil {
				_, _ = fmt.Fprintf(stderr, "Error: %v\n", err)
				return exitError
			}
		}
	}

	if runErr != nil {
		_, _ = fmt.Fprintf(stderr, "Error: %v\n", runErr)
		return exitError
	}
	if res.Stats.Failed > 0 {
		return exitError
	}
	if res.Stats.Blocked > 0 {
		return exitBlocked
	}
	return exitOK
}

func writeRecords(w io.Writer, format string, records []result.Record, text func()) error {
	switch format {
	case "json":
		return result.WriteJSON(w, records)
	case "csv":
		return result.WriteCSV(w, records)
	default:
		text()
		return nil
	}
}

func printTrace(w io.Writer, tr canon.Trace) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintf(tw, "Input:\t%q\n", tr.Input)
	_, _ = fmt.Fprintf(tw, "Split host:\t%q\n", tr.Split.Host)
	_, _ = fmt.Fprintf(tw, "Split remainder:\t%q\n", tr.Split.Remainder)
	for _, step := range tr.HostSteps {
		_, _ = fmt.Fprintf(tw, "  host %s:\t%q\n", step.Step, step.Value)
	}
	for _, step := range tr.RemainderSteps {
		_, _ = fmt.Fprintf(tw, "  remainder %s:\t%q\n", step.Step, step.Value)
	}
	_, _ = fmt.Fprintf(tw, "Canonical:\t%q\n", tr.Canonical)
	_ = tw.Flush()
}

func buildBlocklist(opts options, positional []string, stdin io.Reader, stdout, stderr io.Writer, log *slog.Logger) int {
	list, err := blocklist.Create(opts.buildBlocklist, opts.capacity, blocklist.DefaultFalsePositiveRate)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitError
	}

	added, loadErr := loadBlocklist(list, opts.file, positional, stdin)
	closeErr := list.Close()
	if err := errors.Join(loadErr, closeErr); err != nil {
		_, _ = fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitError
	}

	log.Info("blocklist written", slog.String("path", opts.buildBlocklist), slog.Int("entries", added))
	_, _ = fmt.Fprintf(stdout, "Wrote %d entries to %s\n", added, opts.buildBlocklist)
	return exitOK
}

func loadBlocklist(list *blocklist.Filter, file string, positional []string, stdin io.Reader) (int, error) {
	if file == "" {
		for _, raw := range positional {
			if err := list.Add(raw); err != nil {
				return 0, err
			}
		}
		return len(positional), nil
	}

	r := stdin
	if file != "-" {
		f, err := os.Open(file)
		if err != nil {
			return 0, fmt.Errorf("open blocklist source: %w", err)
		}
		defer f.Close()
		r = f
	}
	return list.LoadList(r)
}
