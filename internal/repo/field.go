package repo

import (
	"fmt"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/mesh-intelligence/rewards/internal/schema"
	"github.com/mesh-intelligence/rewards/internal/store"
)

// Kind selects how a field is rendered as a form input.
type Kind string

// Input kinds.
const (
	KindText     Kind = "text"
	KindTextarea Kind = "textarea"
	KindEmail    Kind = "email"
	KindPassword Kind = "password"
	KindNumber   Kind = "number"
	KindDecimal  Kind = "decimal"
	KindCheckbox Kind = "checkbox"
	KindDate     Kind = "date"
	KindTime     Kind = "time"
	KindColor    Kind = "color"
	KindSelect   Kind = "select"
)

// Field describes one form input. Ref names the table whose rows populate
// a KindSelect dropdown; Choices is used instead for fixed enumerations.
type Field struct {
	Name     string
	Label    string
	Kind     Kind
	Required bool
	Ref      string
	Choices  []Choice
}

// DisplayLabel returns Label, or the label derived from Name.
func (f Field) DisplayLabel() string {
	if f.Label != "" {
		return f.Label
	}
	return schema.Label(f.Name)
}

// Choice is one dropdown entry.
type Choice struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// ChoicesOf builds choices whose label equals their value.
func ChoicesOf(values ...string) []Choice {
	out := make([]Choice, len(values))
	for i, v := range values {
		out[i] = Choice{Value: v, Label: v}
	}
	return out
}

// FormOf renders row as the form that would recreate it: the identifier
// followed by every named field. Unchecked checkboxes and NULL values are
// omitted.
func FormOf(row any, fields []Field) (schema.Form, error) {
	cols := []string{"id"}
	for _, f := range fields {
		cols = append(cols, f.Name)
	}
	rec, err := store.RecordOf(row, cols)
	if err != nil {
		return schema.Form{}, err
	}

	var form schema.Form
	vals := rec.Values()
	for i, col := range rec.Columns() {
		s, ok := formValue(vals[i])
		if ok {
			form.Set(col, s)
		}
	}
	return form, nil
}

func formValue(v any) (string, bool) {
	switch x := v.(type) {
	case nil:
		return "", false
	case string:
		return x, true
	case *string:
		return *x, true
	case bool:
		if x {
			return "on", true
		}
		return "", false
	case int:
		return strconv.Itoa(x), true
	case int64:
		return strconv.FormatInt(x, 10), true
	case decimal.Decimal:
		return x.String(), true
	default:
		return fmt.Sprint(x), true
	}
}
