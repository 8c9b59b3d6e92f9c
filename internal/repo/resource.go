package repo

import (
	"context"
	"fmt"

	"github.com/mesh-intelligence/rewards/internal/schema"
	"github.com/mesh-intelligence/rewards/pkg/types"
)

// Resource is a Repository with its row type erased, so handlers and
// commands can dispatch on an entity name.
type Resource interface {
	Name() string
	Table() string
	Path() string
	Fields() []Field
	Create(ctx context.Context, f schema.Form) (any, error)
	Update(ctx context.Context, id string, f schema.Form) (any, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]any, error)
	Get(ctx context.Context, id string) (any, error)
	Options(ctx context.Context) ([]Choice, error)
	Validate(f schema.Form) map[string]string
	// Form renders a row returned by Get or List back into a form.
	Form(row any) (schema.Form, error)
	// Label renders a row returned by Get or List for display.
	Label(row any) string
	// ID returns the identifier of a row returned by Get or List.
	ID(row any) string
	// References lists the tables whose columns are embedded in listed rows.
	References() []string
}

// Resource returns r as a Resource.
func (r *Repository[T]) Resource() Resource {
	return resource[T]{r}
}

type resource[T any] struct {
	r *Repository[T]
}

func (x resource[T]) Name() string    { return x.r.entity.Name }
func (x resource[T]) Table() string   { return x.r.entity.Table }
func (x resource[T]) Path() string    { return types.DashboardPath(x.r.entity.Table) }
func (x resource[T]) Fields() []Field { return x.r.entity.Fields }

func (x resource[T]) Create(ctx context.Context, f schema.Form) (any, error) {
	v, err := x.r.Create(ctx, f)
	if err != nil {
		return nil, err
	}
	return v, nil
}

func (x resource[T]) Update(ctx context.Context, id string, f schema.Form) (any, error) {
	v, err := x.r.Update(ctx, id, f)
	if err != nil {
		return nil, err
	}
	return v, nil
}

func (x resource[T]) Delete(ctx context.Context, id string) error {
	return x.r.Delete(ctx, id)
}

func (x resource[T]) List(ctx context.Context) ([]any, error) {
	rows, err := x.r.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]any, len(rows))
	for i, row := range rows {
		out[i] = row
	}
	return out, nil
}

func (x resource[T]) Get(ctx context.Context, id string) (any, error) {
	v, err := x.r.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return v, nil
}

func (x resource[T]) Options(ctx context.Context) ([]Choice, error) {
	return x.r.Options(ctx)
}

func (x resource[T]) Validate(f schema.Form) map[string]string {
	return x.r.Validate(f)
}

func (x resource[T]) Form(row any) (schema.Form, error) {
	if _, ok := row.(T); !ok {
		return schema.Form{}, fmt.Errorf("%s form: unexpected row type %T", x.r.entity.Table, row)
	}
	return FormOf(row, x.r.entity.Fields)
}

func (x resource[T]) Label(row any) string {
	v, ok := row.(T)
	if !ok || x.r.entity.Label == nil {
		id, _ := idOf(row)
		return id
	}
	return x.r.entity.Label(v)
}

func (x resource[T]) ID(row any) string {
	id, err := idOf(row)
	if err != nil {
		return ""
	}
	return id
}

func (x resource[T]) References() []string {
	var tables []string
	for _, j := range x.r.entity.Embeds {
		if !contains(tables, j.Table) {
			tables = append(tables, j.Table)
		}
	}
	return tables
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// Registry holds one Resource per table, in registration order.
type Registry struct {
	byTable map[string]Resource
	order   []string
}

// NewRegistry returns a registry holding resources.
func NewRegistry(resources ...Resource) *Registry {
	reg := &Registry{byTable: make(map[string]Resource)}
	for _, r := range resources {
		reg.Register(r)
	}
	return reg
}

// Register adds r, replacing any resource for the same table.
func (reg *Registry) Register(r Resource) {
	if _, ok := reg.byTable[r.Table()]; !ok {
		reg.order = append(reg.order, r.Table())
	}
	reg.byTable[r.Table()] = r
}

// Get returns the resource for table, or an error wrapping
// types.ErrUnknownEntity.
func (reg *Registry) Get(table string) (Resource, error) {
	r, ok := reg.byTable[table]
	if !ok {
		return nil, fmt.Errorf("%w: %q", types.ErrUnknownEntity, table)
	}
	return r, nil
}

// All returns every resource in registration order.
func (reg *Registry) All() []Resource {
	out := make([]Resource, len(reg.order))
	for i, t := range reg.order {
		out[i] = reg.byTable[t]
	}
	return out
}

// Tables returns the registered table names in registration order.
func (reg *Registry) Tables() []string {
	return append([]string(nil), reg.order...)
}

// Dependents returns the resources whose listed rows embed columns of table,
// in registration order.
func (reg *Registry) Dependents(table string) []Resource {
	var out []Resource
	for _, t := range reg.order {
		r := reg.byTable[t]
		if t != table && contains(r.References(), table) {
			out = append(out, r)
		}
	}
	return out
}
