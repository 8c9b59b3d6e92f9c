// Package export writes every entity table to a directory as JSONL, one
// <table>.jsonl file per table and one JSON object per line.
package export

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/mesh-intelligence/rewards/internal/repo"
)

// Result maps each exported table to its row count.
type Result map[string]int

// Option configures an export.
type Option func(*options)

type options struct {
	log *slog.Logger
}

// WithLogger sets the export logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.log = logger
	}
}

// Dir writes every table in reg to dir, creating it if needed. Each file is
// replaced atomically, so an interrupted export leaves the previous file
// intact.
func Dir(ctx context.Context, reg *repo.Registry, dir string, opts ...Option) (Result, error) {
	o := options{log: slog.New(slog.NewTextHandler(io.Discard, nil))}
	for _, opt := range opts {
		opt(&o)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating export directory: %w", err)
	}

	res := Result{}
	for _, r := range reg.All() {
		rows, err := r.List(ctx)
		if err != nil {
			return res, fmt.Errorf("listing %s: %w", r.Table(), err)
		}
		records := make([]json.RawMessage, 0, len(rows))
		for _, row := range rows {
			b, err := json.Marshal(row)
			if err != nil {
				return res, fmt.Errorf("encoding %s row %s: %w", r.Table(), r.ID(row), err)
			}
			records = append(records, b)
		}
		if err := WriteJSONL(filepath.Join(dir, r.Table()+".jsonl"), records); err != nil {
			return res, fmt.Errorf("writing %s: %w", r.Table(), err)
		}
		res[r.Table()] = len(records)
		o.log.DebugContext(ctx, "table exported", "table", r.Table(), "rows", len(records))
	}
	return res, nil
}

// ReadJSONL reads a JSONL file and returns each non-empty line as a
// json.RawMessage. Malformed lines are skipped.
func ReadJSONL(path string) ([]json.RawMessage, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	var records []json.RawMessage
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 || !json.Valid(line) {
			continue
		}
		cp := make([]byte, len(line))
		copy(cp, line)
		records = append(records, json.RawMessage(cp))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scanning %s: %w", path, err)
	}
	return records, nil
}

// WriteJSONL writes records to path through a temp file that is synced and
// renamed into place.
func WriteJSONL(path string, records []json.RawMessage) (err error) {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".jsonl-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmpName)
		}
	}()

	w := bufio.NewWriter(tmp)
	for _, rec := range records {
		if _, err := w.Write(rec); err != nil {
			return fmt.Errorf("writing record: %w", err)
		}
		if err := w.WriteByte('\n'); err != nil {
			return fmt.Errorf("writing newline: %w", err)
		}
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("flushing buffer: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("syncing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}
