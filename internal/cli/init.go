package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func newInitCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Initialize configuration and storage",
		Long: "Create the configuration and data directories, write a default config.yaml\n" +
			"when none exists, and apply the database schema.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInit(cmd, flags)
		},
	}
}

func runInit(cmd *cobra.Command, flags *rootFlags) error {
	s, err := loadSettings(flags)
	if err != nil {
		return sysError("%w", err)
	}

	if err := os.MkdirAll(s.configDir, 0o755); err != nil {
		return sysError("create config directory: %w", err)
	}
	if s.DataDir != "" {
		if err := os.MkdirAll(s.DataDir, 0o755); err != nil {
			return sysError("create data directory: %w", err)
		}
	}
	written, err := writeConfigIfMissing(s.configDir, s)
	if err != nil {
		return sysError("write config: %w", err)
	}

	// Opening the environment migrates the schema.
	if err := withEnv(cmd, flags, func(*env) error { return nil }); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if flags.jsonMode {
		return writeJSON(out, map[string]any{
			"config_dir":     s.configDir,
			"data_dir":       s.DataDir,
			"backend":        s.Backend,
			"config_written": written,
		})
	}
	if written {
		fmt.Fprintf(out, "Wrote %s/config.yaml\n", s.configDir)
	}
	fmt.Fprintln(out, "Rewards initialized successfully")
	return nil
}
