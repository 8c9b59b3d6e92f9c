package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/mesh-intelligence/rewards/internal/repo"
	"github.com/mesh-intelligence/rewards/pkg/types"
)

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// writeRows prints one line per row: identifier and label.
func writeRows(w io.Writer, res repo.Resource, rows []any) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\t"+strings.ToUpper(res.Name()))
	for _, row := range rows {
		fmt.Fprintf(tw, "%s\t%s\n", res.ID(row), res.Label(row))
	}
	return tw.Flush()
}

// writeRecord prints a row as its form fields, one per line.
func writeRecord(w io.Writer, res repo.Resource, row any) error {
	form, err := res.Form(row)
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "id:\t%s\n", res.ID(row))
	for _, f := range res.Fields() {
		if f.Kind == repo.KindPassword {
			continue
		}
		fmt.Fprintf(tw, "%s:\t%s\n", f.Name, form.Get(f.Name))
	}
	return tw.Flush()
}

// writeState prints an ActionState: the message, then field errors in
// name order.
func writeState(w io.Writer, state types.ActionState) {
	if state.Message != "" {
		fmt.Fprintln(w, state.Message)
	}
	if state.Succeeded() && state.ID != "" {
		fmt.Fprintf(w, "id: %s\n", state.ID)
	}
	names := make([]string, 0, len(state.FieldErrors))
	for name := range state.FieldErrors {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(w, "  %s: %s\n", name, state.FieldErrors[name])
	}
}

// stateError converts an unsuccessful state to an exit error: invalid input
// is a user error, anything else a system error.
func stateError(state types.ActionState) error {
	switch state.Status {
	case types.StatusSucceeded:
		return nil
	case types.StatusInvalid:
		return userError("submission rejected")
	}
	if state.Message != "" {
		return sysError("%s", state.Message)
	}
	return sysError("submission failed")
}
