package cli

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/rewards/internal/points"
	"github.com/mesh-intelligence/rewards/internal/web"
)

func newServeCmd(flags *rootFlags) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the administration dashboard",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnv(cmd, flags, func(e *env) error {
				if addr == "" {
					addr = e.settings.HTTP.Addr
				}
				srv, err := web.New(web.Deps{
					Registry: e.repos.Registry(),
					Pipeline: e.pipeline,
					Cache:    e.cache,
					Quotes:   points.NewEngine(e.repos.PointsRules, points.WithLogger(e.log)),
					Health:   e.db.Ping,
				},
					web.WithLogger(e.log),
					web.WithOriginPatterns(e.settings.HTTP.Origins...),
				)
				if err != nil {
					return sysError("build server: %w", err)
				}

				ctx, stop := signal.NotifyContext(contextOf(cmd), os.Interrupt, syscall.SIGTERM)
				defer stop()
				if err := srv.ListenAndServe(ctx, addr); err != nil && ctx.Err() == nil {
					return sysError("serve: %w", err)
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default: http.addr from config)")
	return cmd
}
