// Package schema validates form submissions into typed entity rows.
//
// A submission arrives as an ordered field -> string mapping (Form). Each
// entity schema decodes the form into its row type using the coercion
// helpers below, then evaluates the row's `validate` struct tags and any
// cross-field checks. The outcome is either a typed value or a list of
// (path, message) issues; Reduce flattens the issues into one message per
// field for inline display.
package schema

import (
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Form is an ordered mapping of field name to submitted string value.
// The zero value is an empty form ready to use.
type Form struct {
	keys   []string
	values map[string]string
}

// FormOf builds a Form from alternating key, value arguments.
// A trailing key without a value is ignored.
func FormOf(pairs ...string) Form {
	var f Form
	for i := 0; i+1 < len(pairs); i += 2 {
		f.Set(pairs[i], pairs[i+1])
	}
	return f
}

// FromValues builds a Form from url.Values. Keys are taken in sorted order
// and only the first value of each key is kept.
func FromValues(v url.Values) Form {
	keys := make([]string, 0, len(v))
	for k := range v {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var f Form
	for _, k := range keys {
		if len(v[k]) > 0 {
			f.Set(k, v[k][0])
		}
	}
	return f
}

// ParseForm decodes an application/x-www-form-urlencoded body, keeping the
// order in which fields were submitted. When a key repeats, the first value
// wins.
func ParseForm(raw string) (Form, error) {
	var f Form
	for _, pair := range strings.Split(raw, "&") {
		if pair == "" {
			continue
		}
		k, v, _ := strings.Cut(pair, "=")
		key, err := url.QueryUnescape(k)
		if err != nil {
			return Form{}, fmt.Errorf("decoding field name %q: %w", k, err)
		}
		val, err := url.QueryUnescape(v)
		if err != nil {
			return Form{}, fmt.Errorf("decoding value of %q: %w", key, err)
		}
		if f.Has(key) {
			continue
		}
		f.Set(key, val)
	}
	return f, nil
}

// Set stores value under key, appending key to the order if it is new.
func (f *Form) Set(key, value string) {
	if f.values == nil {
		f.values = make(map[string]string)
	}
	if _, ok := f.values[key]; !ok {
		f.keys = append(f.keys, key)
	}
	f.values[key] = value
}

// Get returns the raw value for key, or "" when absent.
func (f Form) Get(key string) string {
	return f.values[key]
}

// Lookup returns the raw value for key and whether it was submitted.
func (f Form) Lookup(key string) (string, bool) {
	v, ok := f.values[key]
	return v, ok
}

// Has reports whether key was submitted.
func (f Form) Has(key string) bool {
	_, ok := f.values[key]
	return ok
}

// Keys returns the submitted field names in submission order.
func (f Form) Keys() []string {
	out := make([]string, len(f.keys))
	copy(out, f.keys)
	return out
}

// Len returns the number of submitted fields.
func (f Form) Len() int {
	return len(f.keys)
}

// Values converts the form to url.Values.
func (f Form) Values() url.Values {
	v := make(url.Values, len(f.keys))
	for _, k := range f.keys {
		v.Set(k, f.values[k])
	}
	return v
}

// String returns the trimmed value for key.
func (f Form) String(key string) string {
	return strings.TrimSpace(f.values[key])
}

// Optional returns the trimmed value for key, or nil when it is empty or
// absent.
func (f Form) Optional(key string) *string {
	v := f.String(key)
	if v == "" {
		return nil
	}
	return &v
}

// Bool decodes a checkbox. Browsers send "on" for a checked box and omit
// the field otherwise; "true" and "1" are accepted for non-browser clients.
func (f Form) Bool(key string) bool {
	switch strings.ToLower(f.String(key)) {
	case "on", "true", "1":
		return true
	default:
		return false
	}
}

// Int decodes a whole number. Empty or unparsable input yields 0 instead of
// an error; range constraints are left to the schema.
func (f Form) Int(key string) int {
	n, err := strconv.Atoi(f.String(key))
	if err != nil {
		return 0
	}
	return n
}

// Decimal decodes a decimal number. Empty or unparsable input yields zero.
func (f Form) Decimal(key string) decimal.Decimal {
	d, err := decimal.NewFromString(f.String(key))
	if err != nil {
		return decimal.Zero
	}
	return d
}
