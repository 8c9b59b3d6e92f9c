// Package points resolves which points rule applies to a purchase and how
// many points it earns.
//
// A rule is a candidate when it is active, belongs to the purchase's
// organization and its schedule admits the purchase time. Among candidates
// the lowest priority number wins; equal priorities fall back to identifier
// order, which for UUID v7 identifiers is creation order.
package points

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mesh-intelligence/rewards/pkg/types"
)

var (
	// ErrNoApplicableRule is returned when no rule matches a purchase.
	ErrNoApplicableRule = errors.New("no applicable points rule")
	// ErrInvalidPurchase is returned for a purchase that cannot be quoted.
	ErrInvalidPurchase = errors.New("invalid purchase")
)

// Purchase is the input to rule resolution.
type Purchase struct {
	OrganizationID string          `json:"organization_id"`
	Amount         decimal.Decimal `json:"amount"`
	Items          int             `json:"items"`
	At             time.Time       `json:"at"`
}

// Validate rejects negative amounts and item counts.
func (p Purchase) Validate() error {
	if p.Amount.IsNegative() {
		return fmt.Errorf("%w: amount %s is negative", ErrInvalidPurchase, p.Amount)
	}
	if p.Items < 0 {
		return fmt.Errorf("%w: items %d is negative", ErrInvalidPurchase, p.Items)
	}
	return nil
}

// Quote is the points a purchase earns and the rule that produced them.
type Quote struct {
	RuleID   string         `json:"rule_id"`
	RuleName string         `json:"rule_name"`
	RuleType types.RuleType `json:"rule_type"`
	Points   int64          `json:"points"`
}

var weekdays = map[string]time.Weekday{
	"sun": time.Sunday,
	"mon": time.Monday,
	"tue": time.Tuesday,
	"wed": time.Wednesday,
	"thu": time.Thursday,
	"fri": time.Friday,
	"sat": time.Saturday,
}

// Applies reports whether r is a candidate for p.
func Applies(r types.PointsRule, p Purchase) bool {
	if !r.Active || r.OrganizationID != p.OrganizationID {
		return false
	}
	day := p.At.Format(time.DateOnly)
	if r.StartDate != nil && day < *r.StartDate {
		return false
	}
	if r.EndDate != nil && day > *r.EndDate {
		return false
	}
	if r.StartTime != nil && r.EndTime != nil && !inWindow(p.At.Format("15:04"), *r.StartTime, *r.EndTime) {
		return false
	}
	if r.DaysOfWeek != nil && *r.DaysOfWeek != "" && !onDay(*r.DaysOfWeek, p.At.Weekday()) {
		return false
	}
	return true
}

// inWindow reports whether clock lies in [start, end). A window whose end
// is not after its start wraps past midnight.
func inWindow(clock, start, end string) bool {
	if start < end {
		return clock >= start && clock < end
	}
	return clock >= start || clock < end
}

func onDay(list string, day time.Weekday) bool {
	for _, d := range strings.Split(list, ",") {
		if w, ok := weekdays[strings.TrimSpace(strings.ToLower(d))]; ok && w == day {
			return true
		}
	}
	return false
}

// Resolve returns the winning rule for p.
func Resolve(rules []types.PointsRule, p Purchase) (types.PointsRule, error) {
	var candidates []types.PointsRule
	for _, r := range rules {
		if Applies(r, p) {
			candidates = append(candidates, r)
		}
	}
	if len(candidates) == 0 {
		return types.PointsRule{}, ErrNoApplicableRule
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].Priority != candidates[j].Priority {
			return candidates[i].Priority < candidates[j].Priority
		}
		return candidates[i].ID < candidates[j].ID
	})
	return candidates[0], nil
}

// Earn computes the points r grants for p, rounded down.
func Earn(r types.PointsRule, p Purchase) (int64, error) {
	var pts decimal.Decimal
	switch r.RuleType {
	case types.RuleFixedAmount:
		pts = r.Value
	case types.RulePercentage:
		pts = p.Amount.Mul(r.Value).Div(decimal.NewFromInt(100))
	case types.RuleFixedPerItem:
		pts = r.Value.Mul(decimal.NewFromInt(int64(p.Items)))
	default:
		return 0, fmt.Errorf("rule %s: unknown rule type %q", r.ID, r.RuleType)
	}
	return pts.Floor().IntPart(), nil
}

// QuoteFor resolves the winning rule for p and computes its points.
func QuoteFor(rules []types.PointsRule, p Purchase) (Quote, error) {
	if err := p.Validate(); err != nil {
		return Quote{}, err
	}
	r, err := Resolve(rules, p)
	if err != nil {
		return Quote{}, err
	}
	pts, err := Earn(r, p)
	if err != nil {
		return Quote{}, err
	}
	return Quote{RuleID: r.ID, RuleName: r.Name, RuleType: r.RuleType, Points: pts}, nil
}

// RuleLister lists every points rule. The points rule repository satisfies
// it.
type RuleLister interface {
	List(ctx context.Context) ([]types.PointsRule, error)
}

// Engine quotes purchases against the rules held in the store.
type Engine struct {
	rules RuleLister
	log   *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the engine logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.log = logger
	}
}

// NewEngine returns an engine reading rules from rules.
func NewEngine(rules RuleLister, opts ...Option) *Engine {
	e := &Engine{
		rules: rules,
		log:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Quote loads the current rules and quotes p.
func (e *Engine) Quote(ctx context.Context, p Purchase) (Quote, error) {
	if err := p.Validate(); err != nil {
		return Quote{}, err
	}
	rules, err := e.rules.List(ctx)
	if err != nil {
		return Quote{}, fmt.Errorf("loading points rules: %w", err)
	}
	q, err := QuoteFor(rules, p)
	if err != nil {
		return Quote{}, err
	}
	e.log.DebugContext(ctx, "purchase quoted",
		"organization", p.OrganizationID, "rule", q.RuleID, "points", q.Points)
	return q, nil
}
