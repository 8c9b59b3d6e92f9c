package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/rewards/internal/points"
)

func newPointsCmd(flags *rootFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "points",
		Short: "Points rule tools",
	}
	cmd.AddCommand(newQuoteCmd(flags))
	return cmd
}

func newQuoteCmd(flags *rootFlags) *cobra.Command {
	var (
		org    string
		amount string
		items  int
		at     string
	)
	cmd := &cobra.Command{
		Use:   "quote",
		Short: "Show which rule applies to a purchase and the points it earns",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p := points.Purchase{OrganizationID: org, Items: items, At: time.Now()}
			var err error
			if p.Amount, err = decimal.NewFromString(amount); err != nil {
				return userError("invalid --amount %q: %w", amount, err)
			}
			if at != "" {
				if p.At, err = time.Parse(time.RFC3339, at); err != nil {
					return userError("invalid --at %q: expected RFC 3339", at)
				}
			}

			return withEnv(cmd, flags, func(e *env) error {
				engine := points.NewEngine(e.repos.PointsRules, points.WithLogger(e.log))
				q, err := engine.Quote(contextOf(cmd), p)
				if errors.Is(err, points.ErrNoApplicableRule) || errors.Is(err, points.ErrInvalidPurchase) {
					return userError("%w", err)
				}
				if err != nil {
					return sysError("quote: %w", err)
				}
				if flags.jsonMode {
					return writeJSON(cmd.OutOrStdout(), q)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%d points (rule %q, %s)\n", q.Points, q.RuleName, q.RuleType)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&org, "org", "", "organization id")
	cmd.Flags().StringVar(&amount, "amount", "0", "purchase amount")
	cmd.Flags().IntVar(&items, "items", 0, "number of items purchased")
	cmd.Flags().StringVar(&at, "at", "", "purchase time, RFC 3339 (default: now)")
	_ = cmd.MarkFlagRequired("org")
	return cmd
}
