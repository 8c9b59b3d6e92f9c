package web

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mesh-intelligence/rewards/internal/points"
	"github.com/mesh-intelligence/rewards/internal/repo"
	"github.com/mesh-intelligence/rewards/internal/schema"
	"github.com/mesh-intelligence/rewards/internal/store"
	"github.com/mesh-intelligence/rewards/pkg/types"
)

type navItem struct {
	Name string
	Path string
}

type page struct {
	Title   string
	Notice  string
	Failure string
	Nav     []navItem
}

type listView struct {
	page
	Name    string
	Path    string
	Columns []string
	Rows    []rowView
}

type rowView struct {
	ID    string
	Cells []string
}

type detail struct {
	Label string
	Value string
}

type showView struct {
	page
	Path    string
	ID      string
	Details []detail
}

type formView struct {
	page
	Path    string
	ID      string
	Message string
	Fields  []fieldView
}

type fieldView struct {
	Name      string
	Label     string
	Kind      repo.Kind
	InputType string
	Required  bool
	Value     string
	Checked   bool
	Error     string
	Choices   []choiceView
}

type choiceView struct {
	Value    string
	Label    string
	Selected bool
}

func (s *Server) page(title string, r *http.Request) page {
	p := page{
		Title:   title,
		Notice:  r.URL.Query().Get("notice"),
		Failure: r.URL.Query().Get("error"),
	}
	for _, res := range s.deps.Registry.All() {
		p.Nav = append(p.Nav, navItem{Name: schema.Label(res.Table()), Path: res.Path()})
	}
	return p
}

func (s *Server) handleHealth() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.deps.Health != nil {
			if err := s.deps.Health(r.Context()); err != nil {
				s.log.WarnContext(r.Context(), "health check failed", "error", err)
				writeJSON(w, http.StatusServiceUnavailable, map[string]any{"status": "unavailable"})
				return
			}
		}
		writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "clients": s.hub.Clients()})
	}
}

func (s *Server) handleIndex() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.render(w, r, http.StatusOK, "index.html", s.page("Dashboard", r))
	}
}

func (s *Server) handleList() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res, ok := s.resource(w, r)
		if !ok {
			return
		}
		ctx := r.Context()
		v, err := s.deps.Cache.Load(ctx, res.Path(), func(ctx context.Context) (any, error) {
			return res.List(ctx)
		})
		if err != nil {
			s.serverError(w, r, "listing", err)
			return
		}
		rows := v.([]any)
		if wantsJSON(r) {
			writeJSON(w, http.StatusOK, rows)
			return
		}

		labels, err := s.refLabels(ctx, res.Fields())
		if err != nil {
			s.serverError(w, r, "loading references", err)
			return
		}
		view := listView{
			page: s.page(schema.Label(res.Table()), r),
			Name: res.Name(),
			Path: res.Path(),
		}
		fields := listed(res.Fields())
		for _, f := range fields {
			view.Columns = append(view.Columns, f.DisplayLabel())
		}
		for _, row := range rows {
			form, err := res.Form(row)
			if err != nil {
				s.serverError(w, r, "rendering row", err)
				return
			}
			rv := rowView{ID: res.ID(row)}
			for _, f := range fields {
				rv.Cells = append(rv.Cells, display(f, form, labels))
			}
			view.Rows = append(view.Rows, rv)
		}
		s.render(w, r, http.StatusOK, "list.html", view)
	}
}

func (s *Server) handleShow() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res, ok := s.resource(w, r)
		if !ok {
			return
		}
		row, ok := s.row(w, r, res)
		if !ok {
			return
		}
		if wantsJSON(r) {
			writeJSON(w, http.StatusOK, row)
			return
		}
		form, err := res.Form(row)
		if err != nil {
			s.serverError(w, r, "rendering row", err)
			return
		}
		labels, err := s.refLabels(r.Context(), res.Fields())
		if err != nil {
			s.serverError(w, r, "loading references", err)
			return
		}
		view := showView{
			page: s.page(res.Label(row), r),
			Path: res.Path(),
			ID:   res.ID(row),
		}
		for _, f := range listed(res.Fields()) {
			view.Details = append(view.Details, detail{Label: f.DisplayLabel(), Value: display(f, form, labels)})
		}
		s.render(w, r, http.StatusOK, "show.html", view)
	}
}

func (s *Server) handleNew() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res, ok := s.resource(w, r)
		if !ok {
			return
		}
		s.renderForm(w, r, http.StatusOK, res, schema.Form{}, types.ActionState{})
	}
}

func (s *Server) handleEdit() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res, ok := s.resource(w, r)
		if !ok {
			return
		}
		row, ok := s.row(w, r, res)
		if !ok {
			return
		}
		form, err := res.Form(row)
		if err != nil {
			s.serverError(w, r, "rendering row", err)
			return
		}
		s.renderForm(w, r, http.StatusOK, res, form, types.ActionState{})
	}
}

// handleSubmit runs the form action. Browsers posting the form get a
// redirect to the list on success and the form with its errors otherwise;
// JSON clients get the ActionState.
func (s *Server) handleSubmit() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res, ok := s.resource(w, r)
		if !ok {
			return
		}
		form, err := readForm(r)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		state := s.deps.Pipeline.Submit(r.Context(), res, form)
		if wantsJSON(r) {
			writeJSON(w, stateCode(state), state)
			return
		}
		if state.Succeeded() {
			redirect(w, r, res.Path(), "notice", state.Message)
			return
		}
		s.renderForm(w, r, stateCode(state), res, form, state)
	}
}

func (s *Server) handleDelete() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res, ok := s.resource(w, r)
		if !ok {
			return
		}
		state := s.deps.Pipeline.Remove(r.Context(), res, r.PathValue("id"))
		if wantsJSON(r) {
			writeJSON(w, stateCode(state), state)
			return
		}
		if state.Succeeded() {
			redirect(w, r, res.Path(), "notice", state.Message)
			return
		}
		redirect(w, r, res.Path(), "error", state.Message)
	}
}

// handleValidate runs the schema alone so the form can show field errors
// before submitting.
func (s *Server) handleValidate() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res, ok := s.resource(w, r)
		if !ok {
			return
		}
		form, err := readForm(r)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"fieldErrors": res.Validate(form)})
	}
}

func (s *Server) handleOptions() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res, ok := s.resource(w, r)
		if !ok {
			return
		}
		choices, err := res.Options(r.Context())
		if err != nil {
			s.serverError(w, r, "listing options", err)
			return
		}
		writeJSON(w, http.StatusOK, choices)
	}
}

func (s *Server) handleQuote() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.deps.Quotes == nil {
			writeJSON(w, http.StatusNotImplemented, errorBody("points quotes are not configured"))
			return
		}
		var p points.Purchase
		dec := json.NewDecoder(io.LimitReader(r.Body, maxFormBytes))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&p); err != nil {
			writeJSON(w, http.StatusBadRequest, errorBody("invalid purchase: "+err.Error()))
			return
		}
		if p.At.IsZero() {
			p.At = time.Now()
		}
		q, err := s.deps.Quotes.Quote(r.Context(), p)
		if errors.Is(err, points.ErrInvalidPurchase) {
			writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
			return
		}
		if errors.Is(err, points.ErrNoApplicableRule) {
			writeJSON(w, http.StatusNotFound, errorBody(err.Error()))
			return
		}
		if err != nil {
			s.serverError(w, r, "quoting purchase", err)
			return
		}
		writeJSON(w, http.StatusOK, q)
	}
}

func (s *Server) resource(w http.ResponseWriter, r *http.Request) (repo.Resource, bool) {
	res, err := s.deps.Registry.Get(r.PathValue("entity"))
	if err != nil {
		http.NotFound(w, r)
		return nil, false
	}
	return res, true
}

func (s *Server) row(w http.ResponseWriter, r *http.Request, res repo.Resource) (any, bool) {
	row, err := res.Get(r.Context(), r.PathValue("id"))
	if store.IsNotFound(err) || errors.Is(err, types.ErrInvalidID) {
		http.NotFound(w, r)
		return nil, false
	}
	if err != nil {
		s.serverError(w, r, "loading row", err)
		return nil, false
	}
	return row, true
}

func (s *Server) renderForm(w http.ResponseWriter, r *http.Request, status int, res repo.Resource, form schema.Form, state types.ActionState) {
	id := form.String("id")
	title := "New " + strings.ToLower(res.Name())
	if id != "" {
		title = "Edit " + strings.ToLower(res.Name())
	}
	view := formView{
		page:    s.page(title, r),
		Path:    res.Path(),
		ID:      id,
		Message: state.Message,
	}
	for _, f := range res.Fields() {
		fv := fieldView{
			Name:      f.Name,
			Label:     f.DisplayLabel(),
			Kind:      f.Kind,
			InputType: inputType(f.Kind),
			Required:  f.Required,
			Error:     state.FieldErrors[f.Name],
		}
		switch f.Kind {
		case repo.KindPassword:
		case repo.KindCheckbox:
			fv.Checked = form.Bool(f.Name)
		default:
			fv.Value = form.Get(f.Name)
		}
		choices := f.Choices
		if f.Ref != "" {
			ref, err := s.deps.Registry.Get(f.Ref)
			if err != nil {
				s.serverError(w, r, "resolving reference", err)
				return
			}
			if choices, err = ref.Options(r.Context()); err != nil {
				s.serverError(w, r, "listing options", err)
				return
			}
		}
		for _, c := range choices {
			fv.Choices = append(fv.Choices, choiceView{Value: c.Value, Label: c.Label, Selected: c.Value == fv.Value})
		}
		view.Fields = append(view.Fields, fv)
	}
	s.render(w, r, status, "form.html", view)
}

// refLabels maps every referenced row id to its label, per field.
func (s *Server) refLabels(ctx context.Context, fields []repo.Field) (map[string]map[string]string, error) {
	out := make(map[string]map[string]string)
	for _, f := range fields {
		if f.Ref == "" {
			continue
		}
		ref, err := s.deps.Registry.Get(f.Ref)
		if err != nil {
			return nil, err
		}
		choices, err := ref.Options(ctx)
		if err != nil {
			return nil, err
		}
		m := make(map[string]string, len(choices))
		for _, c := range choices {
			m[c.Value] = c.Label
		}
		out[f.Name] = m
	}
	return out, nil
}

func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, name string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := s.tmpl.ExecuteTemplate(w, name, data); err != nil {
		s.log.ErrorContext(r.Context(), "rendering template", "template", name, "error", err)
	}
}

func (s *Server) serverError(w http.ResponseWriter, r *http.Request, doing string, err error) {
	s.log.ErrorContext(r.Context(), doing, "path", r.URL.Path, "error", err)
	if wantsJSON(r) {
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	http.Error(w, "internal error", http.StatusInternalServerError)
}

// listed drops the fields never shown outside the form.
func listed(fields []repo.Field) []repo.Field {
	out := make([]repo.Field, 0, len(fields))
	for _, f := range fields {
		if f.Kind != repo.KindPassword {
			out = append(out, f)
		}
	}
	return out
}

func display(f repo.Field, form schema.Form, labels map[string]map[string]string) string {
	v := form.Get(f.Name)
	switch {
	case f.Kind == repo.KindCheckbox:
		if form.Bool(f.Name) {
			return "Yes"
		}
		return "No"
	case labels[f.Name] != nil:
		if label, ok := labels[f.Name][v]; ok {
			return label
		}
	}
	return v
}

func inputType(k repo.Kind) string {
	switch k {
	case repo.KindEmail, repo.KindPassword, repo.KindNumber, repo.KindDate, repo.KindTime, repo.KindColor:
		return string(k)
	case repo.KindDecimal:
		return "number"
	}
	return "text"
}

func readForm(r *http.Request) (schema.Form, error) {
	body, err := io.ReadAll(http.MaxBytesReader(nil, r.Body, maxFormBytes))
	if err != nil {
		return schema.Form{}, err
	}
	return schema.ParseForm(string(body))
}

func wantsJSON(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "application/json")
}

func stateCode(state types.ActionState) int {
	switch state.Status {
	case types.StatusSucceeded:
		return http.StatusOK
	case types.StatusInvalid:
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

func redirect(w http.ResponseWriter, r *http.Request, path, key, msg string) {
	target := path
	if msg != "" {
		target += "?" + url.Values{key: {msg}}.Encode()
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

func errorBody(msg string) map[string]string {
	return map[string]string{"error": msg}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
