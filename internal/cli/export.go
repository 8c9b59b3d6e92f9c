package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/rewards/internal/export"
	"github.com/mesh-intelligence/rewards/pkg/types"
)

func newExportCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "export <dir>",
		Short: "Write every table to <dir> as JSONL",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnv(cmd, flags, func(e *env) error {
				res, err := export.Dir(contextOf(cmd), e.repos.Registry(), args[0], export.WithLogger(e.log))
				if err != nil {
					return sysError("export: %w", err)
				}
				if flags.jsonMode {
					return writeJSON(cmd.OutOrStdout(), res)
				}
				total := 0
				for _, table := range types.StandardTableNames {
					fmt.Fprintf(cmd.OutOrStdout(), "%-20s %d\n", table, res[table])
					total += res[table]
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Exported %d rows to %s\n", total, args[0])
				return nil
			})
		},
	}
}
