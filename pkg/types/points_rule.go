package types

import "github.com/shopspring/decimal"

// RuleType selects how a points rule turns a purchase into points.
type RuleType string

// Points rule types.
const (
	RuleFixedAmount  RuleType = "fixed_amount"
	RulePercentage   RuleType = "percentage"
	RuleFixedPerItem RuleType = "fixed_per_item"
)

// PointsRule configures how many points a purchase earns. Rules with a lower
// Priority win; the optional schedule restricts when the rule applies.
// Dates are YYYY-MM-DD, times HH:MM, and DaysOfWeek a comma list such as
// "mon,wed,fri".
type PointsRule struct {
	ID             string          `db:"id" json:"id" form:"id"`
	OrganizationID string          `db:"organization_id" json:"organization_id" form:"organization_id" validate:"required"`
	Name           string          `db:"name" json:"name" form:"name" validate:"required,max=120"`
	RuleType       RuleType        `db:"rule_type" json:"rule_type" form:"rule_type" validate:"required,oneof=fixed_amount percentage fixed_per_item"`
	Value          decimal.Decimal `db:"value" json:"value" form:"value"`
	Priority       int             `db:"priority" json:"priority" form:"priority" validate:"gte=0"`
	StartDate      *string         `db:"start_date" json:"start_date" form:"start_date" validate:"omitempty,datetime=2006-01-02"`
	EndDate        *string         `db:"end_date" json:"end_date" form:"end_date" validate:"omitempty,datetime=2006-01-02"`
	StartTime      *string         `db:"start_time" json:"start_time" form:"start_time" validate:"omitempty,datetime=15:04"`
	EndTime        *string         `db:"end_time" json:"end_time" form:"end_time" validate:"omitempty,datetime=15:04"`
	DaysOfWeek     *string         `db:"days_of_week" json:"days_of_week" form:"days_of_week"`
	Active         bool            `db:"active" json:"active" form:"active"`
}
