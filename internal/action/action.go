// Package action runs form submissions through the validate, persist and
// reconcile pipeline and reports the outcome as a types.ActionState.
//
// A submission moves Idle -> Validating, then to Invalid when the schema
// rejects it, or to Persisting. Persisting ends in Failed or Succeeded.
// Only Succeeded revalidates the entity's dashboard path.
package action

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/mesh-intelligence/rewards/internal/repo"
	"github.com/mesh-intelligence/rewards/internal/schema"
	"github.com/mesh-intelligence/rewards/internal/store"
	"github.com/mesh-intelligence/rewards/pkg/types"
)

// Revalidator drops cached data for a dashboard path.
type Revalidator interface {
	Revalidate(path string)
}

// Observer is told about every state a submission enters.
type Observer func(table string, status types.ActionStatus)

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets the pipeline logger.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		p.log = logger
	}
}

// WithRegistry makes successful writes also revalidate the paths of
// resources that embed the written table.
func WithRegistry(reg *repo.Registry) Option {
	return func(p *Pipeline) {
		p.registry = reg
	}
}

// WithObserver registers fn to receive state transitions.
func WithObserver(fn Observer) Option {
	return func(p *Pipeline) {
		p.observe = fn
	}
}

// Pipeline turns submissions into ActionStates. It holds no per-request
// state and is safe for concurrent use.
type Pipeline struct {
	cache    Revalidator
	registry *repo.Registry
	log      *slog.Logger
	observe  Observer
}

// New returns a pipeline that revalidates paths on cache.
func New(cache Revalidator, opts ...Option) *Pipeline {
	p := &Pipeline{
		cache:   cache,
		log:     slog.New(slog.NewTextHandler(io.Discard, nil)),
		observe: func(string, types.ActionStatus) {},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Submit validates and persists f. A non-empty id field selects update;
// otherwise a row is created. The form is passed to the repository
// unfiltered.
func (p *Pipeline) Submit(ctx context.Context, r repo.Resource, f schema.Form) (state types.ActionState) {
	x := p.start(r)
	defer x.recover(&state)

	x.enter(types.StatusValidating)
	id := f.String("id")
	var (
		row any
		err error
	)
	if id != "" {
		row, err = r.Update(ctx, id, f)
	} else {
		row, err = r.Create(ctx, f)
	}

	var verr *schema.ValidationError
	if errors.As(err, &verr) {
		return x.invalid(verr)
	}
	x.enter(types.StatusPersisting)
	if err != nil {
		return x.storeFailure(ctx, err)
	}

	verb := "created"
	if id != "" {
		verb = "updated"
	}
	rowID := r.ID(row)
	state = x.succeed(fmt.Sprintf("%s %s successfully", r.Name(), verb))
	state.ID = rowID
	return state
}

// Remove deletes the row identified by id. It never validates.
func (p *Pipeline) Remove(ctx context.Context, r repo.Resource, id string) (state types.ActionState) {
	x := p.start(r)
	x.deleting = true
	defer x.recover(&state)

	x.enter(types.StatusPersisting)
	if err := r.Delete(ctx, id); err != nil {
		return x.storeFailure(ctx, err)
	}
	state = x.succeed(r.Name() + " deleted successfully")
	state.ID = id
	return state
}

// run tracks one submission through the pipeline.
type run struct {
	p        *Pipeline
	r        repo.Resource
	status   types.ActionStatus
	deleting bool
}

func (p *Pipeline) start(r repo.Resource) *run {
	x := &run{p: p, r: r, status: types.StatusIdle}
	p.observe(r.Table(), types.StatusIdle)
	return x
}

func (x *run) enter(status types.ActionStatus) {
	x.status = status
	x.p.observe(x.r.Table(), status)
}

func (x *run) result(status types.ActionStatus, msg string, fieldErrors map[string]string) types.ActionState {
	x.enter(status)
	if fieldErrors == nil {
		fieldErrors = map[string]string{}
	}
	return types.ActionState{Status: status, Message: msg, FieldErrors: fieldErrors}
}

func (x *run) invalid(verr *schema.ValidationError) types.ActionState {
	roots := verr.RootMessages()
	if len(roots) > 0 {
		x.p.log.Debug("general validation issues", "entity", x.r.Table(), "issues", roots)
	}
	msg := ""
	if len(verr.FieldErrors) == 0 {
		msg = strings.Join(roots, "; ")
	}
	return x.result(types.StatusInvalid, msg, verr.FieldErrors)
}

func (x *run) succeed(msg string) types.ActionState {
	x.p.cache.Revalidate(x.r.Path())
	if x.p.registry != nil {
		for _, d := range x.p.registry.Dependents(x.r.Table()) {
			x.p.cache.Revalidate(d.Path())
		}
	}
	return x.result(types.StatusSucceeded, msg, nil)
}

// storeFailure reconciles a store error. Constraint violations on a form
// field are reported against that field; everything else is a generic
// failure.
func (x *run) storeFailure(ctx context.Context, err error) types.ActionState {
	name := x.r.Name()
	se, ok := store.AsError(err)
	if !ok {
		x.p.log.ErrorContext(ctx, "action failed", "entity", x.r.Table(), "error", err)
		return x.result(types.StatusFailed, "Could not save "+strings.ToLower(name)+". Please try again.", nil)
	}

	if field, found := x.field(se.Column); found && se.Constraint() {
		if msg := constraintMessage(se.Code, field.DisplayLabel()); msg != "" {
			x.p.log.DebugContext(ctx, "constraint violation", "entity", x.r.Table(), "column", se.Column, "code", se.Code)
			return x.result(types.StatusInvalid, "", map[string]string{field.Name: msg})
		}
	}

	x.p.log.WarnContext(ctx, "store error", "entity", x.r.Table(), "code", se.Code, "error", err)
	switch se.Code {
	case store.CodeNotFound:
		return x.result(types.StatusFailed, name+" not found", nil)
	case store.CodeForeignKey:
		if x.deleting {
			return x.result(types.StatusFailed, name+" is still referenced by other records", nil)
		}
		return x.result(types.StatusFailed, "A referenced record does not exist", nil)
	case store.CodeUnique:
		return x.result(types.StatusFailed, name+" already exists", nil)
	}
	return x.result(types.StatusFailed, "Could not save "+strings.ToLower(name)+". Please try again.", nil)
}

func (x *run) field(column string) (repo.Field, bool) {
	if column == "" {
		return repo.Field{}, false
	}
	for _, f := range x.r.Fields() {
		if f.Name == column {
			return f, true
		}
	}
	return repo.Field{}, false
}

func constraintMessage(code store.Code, label string) string {
	switch code {
	case store.CodeUnique:
		return label + " already exists"
	case store.CodeForeignKey:
		return label + " does not exist"
	case store.CodeNotNull:
		return label + " is required"
	case store.CodeCheck:
		return label + " is invalid"
	}
	return ""
}

// recover converts a panic in the repository into a generic failure.
func (x *run) recover(state *types.ActionState) {
	v := recover()
	if v == nil {
		return
	}
	x.p.log.Error("action panicked", "entity", x.r.Table(), "status", x.status, "panic", v)
	*state = x.result(types.StatusFailed, "Something went wrong. Please try again.", nil)
}
