// Package seed loads YAML fixtures through the entity repositories.
//
// A fixture maps table names to lists of records. Records are submitted in
// foreign-key dependency order regardless of their order in the file, so a
// record may reference any record of an earlier table. A record's optional
// "ref" key names it; other records refer to it with "@name" and receive
// the identifier the store generated.
//
//	organizations:
//	  - ref: acme
//	    name: Acme
//	    email: hello@acme.test
//	branches:
//	  - organization_id: "@acme"
//	    name: North
//	    code: N1
package seed

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/mesh-intelligence/rewards/internal/action"
	"github.com/mesh-intelligence/rewards/internal/repo"
	"github.com/mesh-intelligence/rewards/internal/schema"
	"github.com/mesh-intelligence/rewards/pkg/types"
)

// Seed errors.
var (
	ErrRecordFailed = errors.New("seed record failed")
	ErrUnknownRef   = errors.New("unknown fixture reference")
	ErrDuplicateRef = errors.New("duplicate fixture reference")
)

// RefKey is the record key that names a record for later references.
const RefKey = "ref"

// Fixture is a decoded fixture file: table name to records.
type Fixture map[string][]map[string]any

// Result reports what a load inserted.
type Result struct {
	Counts map[string]int    `json:"counts"`
	Refs   map[string]string `json:"refs"`
}

// Total returns the number of records inserted.
func (r Result) Total() int {
	n := 0
	for _, c := range r.Counts {
		n += c
	}
	return n
}

// Loader submits fixtures through the action pipeline.
type Loader struct {
	registry *repo.Registry
	pipeline *action.Pipeline
	log      *slog.Logger
}

// Option configures a Loader.
type Option func(*Loader)

// WithLogger sets the loader logger.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Loader) {
		l.log = logger
	}
}

// NewLoader returns a loader writing through pipeline to the resources in
// registry. The registry's order is the insertion order.
func NewLoader(registry *repo.Registry, pipeline *action.Pipeline, opts ...Option) *Loader {
	l := &Loader{
		registry: registry,
		pipeline: pipeline,
		log:      slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Decode parses a YAML fixture.
func Decode(r io.Reader) (Fixture, error) {
	var f Fixture
	if err := yaml.NewDecoder(r).Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return Fixture{}, nil
		}
		return nil, fmt.Errorf("decoding fixture: %w", err)
	}
	return f, nil
}

// LoadFile decodes and loads the fixture at path.
func (l *Loader) LoadFile(ctx context.Context, path string) (Result, error) {
	file, err := os.Open(path)
	if err != nil {
		return Result{}, fmt.Errorf("opening fixture: %w", err)
	}
	defer file.Close()

	fx, err := Decode(file)
	if err != nil {
		return Result{}, err
	}
	return l.Load(ctx, fx)
}

// Load inserts every record of fx. It stops at the first record that does
// not succeed; records inserted before it are kept.
func (l *Loader) Load(ctx context.Context, fx Fixture) (Result, error) {
	res := Result{Counts: map[string]int{}, Refs: map[string]string{}}

	for table := range fx {
		if _, err := l.registry.Get(table); err != nil {
			return res, err
		}
	}

	for _, r := range l.registry.All() {
		records := fx[r.Table()]
		for i, rec := range records {
			form, ref, err := toForm(rec, res.Refs)
			if err != nil {
				return res, fmt.Errorf("%s record %d: %w", r.Table(), i+1, err)
			}
			if _, dup := res.Refs[ref]; ref != "" && dup {
				return res, fmt.Errorf("%w: %q", ErrDuplicateRef, ref)
			}
			state := l.pipeline.Submit(ctx, r, form)
			if !state.Succeeded() {
				return res, fmt.Errorf("%w: %s record %d: %s", ErrRecordFailed, r.Table(), i+1, describe(state))
			}
			if ref != "" {
				res.Refs[ref] = state.ID
			}
			res.Counts[r.Table()]++
		}
		if len(records) > 0 {
			l.log.InfoContext(ctx, "seeded table", "table", r.Table(), "records", len(records))
		}
	}
	return res, nil
}

// toForm converts a fixture record to a form, resolving "@name" values.
func toForm(rec map[string]any, refs map[string]string) (schema.Form, string, error) {
	keys := make([]string, 0, len(rec))
	for k := range rec {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var (
		form schema.Form
		ref  string
	)
	for _, k := range keys {
		v := scalar(rec[k])
		if k == RefKey {
			ref = v
			continue
		}
		if name, ok := strings.CutPrefix(v, "@"); ok {
			id, found := refs[name]
			if !found {
				return schema.Form{}, "", fmt.Errorf("%w: %q", ErrUnknownRef, name)
			}
			v = id
		}
		if v != "" {
			form.Set(k, v)
		}
	}
	return form, ref, nil
}

// scalar renders a YAML value the way a browser would submit it.
func scalar(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case bool:
		if x {
			return "on"
		}
		return ""
	case string:
		return x
	case time.Time:
		if x.Hour() == 0 && x.Minute() == 0 && x.Second() == 0 {
			return x.Format(time.DateOnly)
		}
		return x.Format(time.RFC3339)
	default:
		return fmt.Sprint(x)
	}
}

func describe(state types.ActionState) string {
	if len(state.FieldErrors) == 0 {
		return state.Message
	}
	fields := make([]string, 0, len(state.FieldErrors))
	for f, msg := range state.FieldErrors {
		fields = append(fields, f+": "+msg)
	}
	sort.Strings(fields)
	return strings.Join(fields, "; ")
}
