// Package blocklist stores canonical URL keys in a bloom filter that can be
// persisted to, and reopened from, a memory-mapped file.
package blocklist

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	bloom "github.com/bits-and-blooms/bloom/v3"
	"github.com/edsrzf/mmap-go"

	"github.com/lukemcguire/canonhost/canon"
)

const (
	// DefaultCapacity is the expected number of entries when none is given.
	DefaultCapacity = 100000
	// DefaultFalsePositiveRate is the target false positive rate.
	DefaultFalsePositiveRate = 0.001

	magic = "CANONBF1"
)

var (
	// ErrClosed is returned when writing to a closed or read-only filter.
	ErrClosed = errors.New("blocklist is closed or read-only")
	// ErrBadFormat is returned by Open for files not written by Create.
	ErrBadFormat = errors.New("not a blocklist file")
)

// Filter is a set of canonical URL keys. Lookups may report false positives
// but never false negatives.
type Filter struct {
	mu        sync.Mutex
	filter    *bloom.BloomFilter
	file      *os.File
	mmap      mmap.MMap
	entries   uint64 // keys added through this handle
	pending   uint64 // keys added since last sync
	syncEvery uint64
	readOnly  bool
	lastErr   error
}

// New returns an in-memory filter sized for capacity keys.
func New(capacity uint, fpRate float64) *Filter {
	if capacity == 0 {
		capacity = DefaultCapacity
	}
	if fpRate <= 0 || fpRate >= 1 {
		fpRate = DefaultFalsePositiveRate
	}
	return &Filter{filter: bloom.NewWithEstimates(capacity, fpRate)}
}

// Create returns a filter backed by a memory-mapped file at path. The file is
// created or truncated and kept in sync as keys are added; Close flushes it.
func Create(path string, capacity uint, fpRate float64) (*Filter, error) {
	f := New(capacity, fpRate)

	file, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, fmt.Errorf("create blocklist file: %w", err)
	}

	data, err := f.encode()
	if err != nil {
		_ = file.Close()
		return nil, err
	}

	// The bit set never grows, so the encoded size is fixed at creation.
	if err := file.Truncate(int64(len(data))); err != nil {
		_ = file.Close()
		return nil, fmt.Errorf("truncate blocklist file: %w", err)
	}

	mapped, err := mmap.MapRegion(file, len(data), mmap.RDWR, 0, 0)
	if err != nil {
		_ = file.Close()
		return nil, fmt.Errorf("mmap blocklist file: %w", err)
	}
	copy(mapped, data)

	f.file = file
	f.mmap = mapped
	f.syncEvery = 1000
	return f, nil
}

// Open maps an existing blocklist file read-only and loads the filter.
func Open(path string) (*Filter, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open blocklist file: %w", err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat blocklist file: %w", err)
	}
	if info.Size() < int64(len(magic)) {
		return nil, fmt.Errorf("open %s: %w", path, ErrBadFormat)
	}

	mapped, err := mmap.Map(file, mmap.RDONLY, 0)
	if err != nil {
		return nil, fmt.Errorf("mmap blocklist file: %w", err)
	}
	defer func() { _ = mapped.Unmap() }()

	if len(mapped) < len(magic) || string(mapped[:len(magic)]) != magic {
		return nil, fmt.Errorf("open %s: %w", path, ErrBadFormat)
	}

	filter := &bloom.BloomFilter{}
	if _, err := filter.ReadFrom(bytes.NewReader(mapped[len(magic):])); err != nil {
		return nil, fmt.Errorf("open %s: %w: %v", path, ErrBadFormat, err)
	}

	return &Filter{filter: filter, readOnly: true}, nil
}

// Add canonicalizes rawURL and inserts its key.
func (f *Filter) Add(rawURL string) error {
	return f.AddKey(canon.Canonicalize(rawURL))
}

// AddKey inserts an already canonical key.
func (f *Filter) AddKey(key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.readOnly || f.filter == nil {
		return ErrClosed
	}

	f.filter.AddString(key)
	f.entries++
	f.pending++

	if f.mmap != nil && f.pending >= f.syncEvery {
		// Periodic sync is best-effort; the error surfaces on Close.
		if err := f.syncLocked(); err != nil {
			f.lastErr = err
		}
	}
	return nil
}

// Contains canonicalizes rawURL and reports whether its key may be present.
func (f *Filter) Contains(rawURL string) bool {
	return f.ContainsKey(canon.Canonicalize(rawURL))
}

// ContainsKey reports whether an already canonical key may be present.
func (f *Filter) ContainsKey(key string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.filter == nil {
		return false
	}
	return f.filter.TestString(key)
}

// Len returns the number of keys added through this handle.
func (f *Filter) Len() uint64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.entries
}

// LoadList reads one URL per line from r and adds each. Whitespace-only lines
// and lines whose first non-blank byte is '#' are skipped; other lines are
// canonicalized exactly as read. It returns the number of URLs added.
func (f *Filter) LoadList(r io.Reader) (int, error) {
	scanner := bufio.NewScanner(r)
	added := 0
	for lineNo := 1; scanner.Scan(); lineNo++ {
		line := scanner.Text()
		if trimmed := strings.TrimSpace(line); trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		if err := f.Add(line); err != nil {
			return added, fmt.Errorf("add line %d: %w", lineNo, err)
		}
		added++
	}
	if err := scanner.Err(); err != nil {
		return added, fmt.Errorf("read blocklist: %w", err)
	}
	return added, nil
}

// WriteTo writes the filter in the on-disk format accepted by Open.
func (f *Filter) WriteTo(w io.Writer) (int64, error) {
	f.mu.Lock()
	data, err := f.encode()
	f.mu.Unlock()
	if err != nil {
		return 0, err
	}
	n, err := w.Write(data)
	if err != nil {
		return int64(n), fmt.Errorf("write blocklist: %w", err)
	}
	return int64(n), nil
}

func (f *Filter) encode() ([]byte, error) {
	if f.filter == nil {
		return nil, ErrClosed
	}
	var buf bytes.Buffer
	buf.WriteString(magic)
	if _, err := f.filter.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("marshal bloom filter: %w", err)
	}
	return buf.Bytes(), nil
}

// syncLocked copies the filter into the mapping and flushes it. Must be
// called with mu held.
func (f *Filter) syncLocked() error {
	data, err := f.encode()
	if err != nil {
		return err
	}
	if len(data) != len(f.mmap) {
		return fmt.Errorf("filter data (%d) does not match mmap size (%d)", len(data), len(f.mmap))
	}
	copy(f.mmap, data)

	if err := f.mmap.Flush(); err != nil {
		return fmt.Errorf("flush mmap: %w", err)
	}
	f.pending = 0
	return nil
}

// LastError returns the last error from a periodic sync.
func (f *Filter) LastError() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastErr
}

// Close syncs pending keys and releases the mapping and file. It is safe to
// call more than once.
func (f *Filter) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	var errs []error
	if f.lastErr != nil {
		errs = append(errs, f.lastErr)
		f.lastErr = nil
	}

	if f.mmap != nil {
		if f.pending > 0 {
			if err := f.syncLocked(); err != nil {
				errs = append(errs, err)
			}
		}
		if err := f.mmap.Unmap(); err != nil {
			errs = append(errs, fmt.Errorf("unmap: %w", err))
		}
		f.mmap = nil
	}

	if f.file != nil {
		if err := f.file.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close file: %w", err))
		}
		f.file = nil
	}

	f.readOnly = true

	if len(errs) > 0 {
		return fmt.Errorf("close blocklist: %w", errors.Join(errs...))
	}
	return nil
}
