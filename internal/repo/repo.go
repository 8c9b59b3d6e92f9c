// Package repo implements the generic entity repository. One Repository[T]
// serves every entity; what varies per entity (table, columns, schema,
// ordering, embeds, form fields) lives in its Entity[T] configuration.
//
// Writes are validate-then-persist: a submission that fails its schema
// returns a *schema.ValidationError and no statement is issued. Store
// failures are returned as the *store.Error the store produced.
package repo

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/google/uuid"

	"github.com/mesh-intelligence/rewards/internal/schema"
	"github.com/mesh-intelligence/rewards/internal/store"
	"github.com/mesh-intelligence/rewards/pkg/types"
)

// Store starts queries. *store.DB satisfies it.
type Store interface {
	From(table string) *store.Query
}

// StoreFunc adapts a function to Store.
type StoreFunc func(table string) *store.Query

// From calls f.
func (f StoreFunc) From(table string) *store.Query {
	return f(table)
}

// Entity configures a Repository for row type T.
type Entity[T any] struct {
	// Name is the singular display name used in messages ("Organization").
	Name string
	// Table is the backing table; the dashboard path derives from it.
	Table string
	// Columns are the writable columns, excluding id, in form order.
	Columns []string
	// Projection lists the table columns read back. Defaults to id plus
	// Columns.
	Projection []string
	Embeds     []store.Join
	Order      []store.Ordering
	Schema     *schema.Schema[T]
	// Fields describe the form inputs, in display order.
	Fields []Field
	// Label renders a row for dropdowns and headings.
	Label func(T) string
	// BeforeWrite runs on validated data before every insert and update.
	BeforeWrite func(ctx context.Context, v *T) error
}

// Option configures a Repository.
type Option func(*options)

type options struct {
	log   *slog.Logger
	newID func() (string, error)
}

// WithLogger sets the repository logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.log = logger
	}
}

// WithIDGenerator replaces the UUID v7 generator used on create.
func WithIDGenerator(fn func() (string, error)) Option {
	return func(o *options) {
		o.newID = fn
	}
}

// Repository runs create, update, delete, list and get for one entity.
type Repository[T any] struct {
	store  Store
	entity Entity[T]
	log    *slog.Logger
	newID  func() (string, error)
}

// New returns a repository for e backed by st.
func New[T any](st Store, e Entity[T], opts ...Option) *Repository[T] {
	o := options{
		log:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		newID: newUUID,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if len(e.Projection) == 0 {
		e.Projection = append([]string{"id"}, e.Columns...)
	}
	return &Repository[T]{
		store:  st,
		entity: e,
		log:    o.log.With("entity", e.Table),
		newID:  o.newID,
	}
}

func newUUID() (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

// Entity returns the repository's configuration.
func (r *Repository[T]) Entity() Entity[T] {
	return r.entity
}

// Create validates f and inserts one row with a fresh identifier.
func (r *Repository[T]) Create(ctx context.Context, f schema.Form) (T, error) {
	var zero T
	rec, err := r.prepare(ctx, f)
	if err != nil {
		return zero, err
	}
	id, err := r.newID()
	if err != nil {
		return zero, fmt.Errorf("generating %s id: %w", r.entity.Table, err)
	}

	var row store.Record
	row.Set("id", id)
	vals := rec.Values()
	for i, col := range rec.Columns() {
		row.Set(col, vals[i])
	}

	var out T
	if err := r.query().Insert(ctx, row, &out); err != nil {
		r.log.DebugContext(ctx, "insert failed", "error", err)
		return zero, err
	}
	r.log.DebugContext(ctx, "row created", "id", id)
	return out, nil
}

// Update validates f and overwrites the row identified by id. There is no
// version check; the last write wins.
func (r *Repository[T]) Update(ctx context.Context, id string, f schema.Form) (T, error) {
	var zero T
	if id == "" {
		return zero, types.ErrInvalidID
	}
	rec, err := r.prepare(ctx, f)
	if err != nil {
		return zero, err
	}

	var out T
	if err := r.query().Eq("id", id).Update(ctx, rec, &out); err != nil {
		r.log.DebugContext(ctx, "update failed", "id", id, "error", err)
		return zero, err
	}
	r.log.DebugContext(ctx, "row updated", "id", id)
	return out, nil
}

// Delete removes the row identified by id. It never validates.
func (r *Repository[T]) Delete(ctx context.Context, id string) error {
	if id == "" {
		return types.ErrInvalidID
	}
	if err := r.store.From(r.entity.Table).Eq("id", id).Delete(ctx); err != nil {
		return err
	}
	r.log.DebugContext(ctx, "row deleted", "id", id)
	return nil
}

// List returns every row with its embeds, in the entity's order.
func (r *Repository[T]) List(ctx context.Context) ([]T, error) {
	rows := []T{}
	err := r.query().Embed(r.entity.Embeds...).Order(r.entity.Order...).Many(ctx, &rows)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// Get returns the row identified by id.
func (r *Repository[T]) Get(ctx context.Context, id string) (T, error) {
	var out T
	if id == "" {
		return out, types.ErrInvalidID
	}
	if err := r.query().Embed(r.entity.Embeds...).Eq("id", id).Single(ctx, &out); err != nil {
		return out, err
	}
	return out, nil
}

// Options lists id and label pairs for dropdowns, in list order.
func (r *Repository[T]) Options(ctx context.Context) ([]Choice, error) {
	rows, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]Choice, 0, len(rows))
	for _, row := range rows {
		id, err := idOf(row)
		if err != nil {
			return nil, err
		}
		label := id
		if r.entity.Label != nil {
			label = r.entity.Label(row)
		}
		out = append(out, Choice{Value: id, Label: label})
	}
	return out, nil
}

// Validate runs the schema alone and returns its field errors.
func (r *Repository[T]) Validate(f schema.Form) map[string]string {
	return r.entity.Schema.Validate(f)
}

// prepare validates f, applies BeforeWrite and extracts the writable
// columns.
func (r *Repository[T]) prepare(ctx context.Context, f schema.Form) (store.Record, error) {
	res := r.entity.Schema.Parse(f)
	if !res.OK() {
		r.log.DebugContext(ctx, "validation failed", "issues", len(res.Issues))
		return store.Record{}, res.Err()
	}
	data := res.Data
	if r.entity.BeforeWrite != nil {
		if err := r.entity.BeforeWrite(ctx, &data); err != nil {
			return store.Record{}, fmt.Errorf("preparing %s: %w", r.entity.Table, err)
		}
	}
	return store.RecordOf(&data, r.entity.Columns)
}

func (r *Repository[T]) query() *store.Query {
	return r.store.From(r.entity.Table).Select(r.entity.Projection...)
}

func idOf(v any) (string, error) {
	rec, err := store.RecordOf(v, []string{"id"})
	if err != nil {
		return "", err
	}
	id, _ := rec.Get("id")
	s, ok := id.(string)
	if !ok {
		return "", fmt.Errorf("%T id is %T, not string", v, id)
	}
	return s, nil
}
