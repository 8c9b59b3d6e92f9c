package cli

import (
	"errors"
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/rewards/internal/seed"
	"github.com/mesh-intelligence/rewards/pkg/types"
)

func newSeedCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "seed <file>",
		Short: "Load a YAML fixture through the form pipeline",
		Long: "Seed submits every record of a YAML fixture, table by table in dependency\n" +
			"order. A record may carry ref: <name>; later records refer to it as @name.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnv(cmd, flags, func(e *env) error {
				loader := seed.NewLoader(e.repos.Registry(), e.pipeline, seed.WithLogger(e.log))
				res, err := loader.LoadFile(contextOf(cmd), args[0])
				if err != nil {
					return seedError(err)
				}
				if flags.jsonMode {
					return writeJSON(cmd.OutOrStdout(), res)
				}
				out := cmd.OutOrStdout()
				tables := make([]string, 0, len(res.Counts))
				for t := range res.Counts {
					tables = append(tables, t)
				}
				sort.Strings(tables)
				for _, t := range tables {
					fmt.Fprintf(out, "%-20s %d\n", t, res.Counts[t])
				}
				fmt.Fprintf(out, "Seeded %d records\n", res.Total())
				return nil
			})
		},
	}
}

func seedError(err error) error {
	switch {
	case errors.Is(err, os.ErrNotExist),
		errors.Is(err, types.ErrUnknownEntity),
		errors.Is(err, seed.ErrRecordFailed),
		errors.Is(err, seed.ErrUnknownRef),
		errors.Is(err, seed.ErrDuplicateRef):
		return userError("seed: %w", err)
	}
	return sysError("seed: %w", err)
}
