package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/rewards/internal/schema"
)

func newListCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "list <entity>",
		Short: "List every row of an entity",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnv(cmd, flags, func(e *env) error {
				res, err := e.resource(args[0])
				if err != nil {
					return err
				}
				rows, err := res.List(contextOf(cmd))
				if err != nil {
					return wrapStoreError("list "+res.Table(), err)
				}
				if flags.jsonMode {
					return writeJSON(cmd.OutOrStdout(), rows)
				}
				return writeRows(cmd.OutOrStdout(), res, rows)
			})
		},
	}
}

func newGetCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "get <entity> <id>",
		Short: "Show one row",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnv(cmd, flags, func(e *env) error {
				res, err := e.resource(args[0])
				if err != nil {
					return err
				}
				row, err := res.Get(contextOf(cmd), args[1])
				if err != nil {
					return wrapStoreError("get "+res.Table(), err)
				}
				if flags.jsonMode {
					return writeJSON(cmd.OutOrStdout(), row)
				}
				return writeRecord(cmd.OutOrStdout(), res, row)
			})
		},
	}
}

func newSubmitCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "submit <entity> key=value...",
		Short: "Create or update a row through the form pipeline",
		Long: "Submit builds a form from key=value pairs and runs it through validation\n" +
			"and persistence exactly as the dashboard form does. Passing id=<id>\n" +
			"updates that row; otherwise a row is created.",
		Example: "  rewards submit organizations name=Acme email=ops@acme.test active=on",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			form, err := parsePairs(args[1:])
			if err != nil {
				return err
			}
			return withEnv(cmd, flags, func(e *env) error {
				res, err := e.resource(args[0])
				if err != nil {
					return err
				}
				state := e.pipeline.Submit(contextOf(cmd), res, form)
				if flags.jsonMode {
					if err := writeJSON(cmd.OutOrStdout(), state); err != nil {
						return err
					}
				} else {
					writeState(cmd.OutOrStdout(), state)
				}
				return stateError(state)
			})
		},
	}
}

func newDeleteCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <entity> <id>",
		Short: "Delete one row",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnv(cmd, flags, func(e *env) error {
				res, err := e.resource(args[0])
				if err != nil {
					return err
				}
				ctx := contextOf(cmd)
				if _, err := res.Get(ctx, args[1]); err != nil {
					return wrapStoreError("delete "+res.Table(), err)
				}
				state := e.pipeline.Remove(ctx, res, args[1])
				if flags.jsonMode {
					if err := writeJSON(cmd.OutOrStdout(), state); err != nil {
						return err
					}
				} else {
					writeState(cmd.OutOrStdout(), state)
				}
				return stateError(state)
			})
		},
	}
}

// parsePairs builds a form from key=value arguments, keeping their order.
func parsePairs(pairs []string) (schema.Form, error) {
	var f schema.Form
	for _, p := range pairs {
		k, v, ok := strings.Cut(p, "=")
		if !ok || k == "" {
			return schema.Form{}, userError("invalid field %q: expected key=value", p)
		}
		f.Set(k, v)
	}
	return f, nil
}
