package entity

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/mesh-intelligence/rewards/internal/repo"
	"github.com/mesh-intelligence/rewards/internal/schema"
	"github.com/mesh-intelligence/rewards/internal/store"
	"github.com/mesh-intelligence/rewards/pkg/types"
)

// Weekdays are the tokens accepted in a rule's days_of_week list.
var Weekdays = []string{"mon", "tue", "wed", "thu", "fri", "sat", "sun"}

// PointsRule lists are ordered by priority, the order rules are tried in.
var PointsRule = repo.Entity[types.PointsRule]{
	Name:  "Points rule",
	Table: types.TablePointsRules,
	Columns: []string{
		"organization_id", "name", "rule_type", "value", "priority",
		"start_date", "end_date", "start_time", "end_time", "days_of_week", "active",
	},
	Order: []store.Ordering{store.Asc("priority"), store.Asc("id")},
	Schema: schema.New(decodePointsRule,
		checkRuleValue,
		checkRuleDates,
		checkRuleTimes,
		checkRuleDays,
	),
	Fields: []repo.Field{
		ref("organization_id", types.TableOrganizations),
		text("name"),
		{
			Name:     "rule_type",
			Kind:     repo.KindSelect,
			Required: true,
			Choices: repo.ChoicesOf(
				string(types.RuleFixedAmount),
				string(types.RulePercentage),
				string(types.RuleFixedPerItem),
			),
		},
		{Name: "value", Kind: repo.KindDecimal, Required: true},
		{Name: "priority", Kind: repo.KindNumber},
		{Name: "start_date", Kind: repo.KindDate},
		{Name: "end_date", Kind: repo.KindDate},
		{Name: "start_time", Kind: repo.KindTime},
		{Name: "end_time", Kind: repo.KindTime},
		optionalText("days_of_week"),
		{Name: "active", Kind: repo.KindCheckbox},
	},
	Label: func(r types.PointsRule) string { return r.Name },
}

func decodePointsRule(f schema.Form) types.PointsRule {
	r := types.PointsRule{
		OrganizationID: f.String("organization_id"),
		Name:           f.String("name"),
		RuleType:       types.RuleType(f.String("rule_type")),
		Value:          f.Decimal("value"),
		Priority:       f.Int("priority"),
		StartDate:      f.Optional("start_date"),
		EndDate:        f.Optional("end_date"),
		StartTime:      f.Optional("start_time"),
		EndTime:        f.Optional("end_time"),
		DaysOfWeek:     f.Optional("days_of_week"),
		Active:         f.Bool("active"),
	}
	if r.DaysOfWeek != nil {
		days := NormalizeDays(*r.DaysOfWeek)
		r.DaysOfWeek = &days
		if days == "" {
			r.DaysOfWeek = nil
		}
	}
	return r
}

// NormalizeDays lowercases a days_of_week list and strips blanks, so
// "Mon, WED" becomes "mon,wed".
func NormalizeDays(s string) string {
	var out []string
	for _, d := range strings.Split(s, ",") {
		if d = strings.ToLower(strings.TrimSpace(d)); d != "" {
			out = append(out, d)
		}
	}
	return strings.Join(out, ",")
}

var hundred = decimal.NewFromInt(100)

func checkRuleValue(r types.PointsRule) []schema.Issue {
	switch {
	case !r.Value.IsPositive():
		return []schema.Issue{schema.FieldIssue("value", "Value must be greater than 0")}
	case r.RuleType == types.RulePercentage && r.Value.GreaterThan(hundred):
		return []schema.Issue{schema.FieldIssue("value", "Value must be at most 100 for percentage rules")}
	}
	return nil
}

// Dates are YYYY-MM-DD, so string order is date order.
func checkRuleDates(r types.PointsRule) []schema.Issue {
	if r.StartDate != nil && r.EndDate != nil && *r.EndDate < *r.StartDate {
		return []schema.Issue{schema.FieldIssue("end_date", "End date must not be before start date")}
	}
	return nil
}

func checkRuleTimes(r types.PointsRule) []schema.Issue {
	switch {
	case r.StartTime != nil && r.EndTime == nil:
		return []schema.Issue{schema.FieldIssue("end_time", "End time is required when a start time is set")}
	case r.StartTime == nil && r.EndTime != nil:
		return []schema.Issue{schema.FieldIssue("start_time", "Start time is required when an end time is set")}
	case r.StartTime != nil && *r.StartTime == *r.EndTime:
		return []schema.Issue{schema.RootIssue("Start and end time must differ")}
	}
	return nil
}

func checkRuleDays(r types.PointsRule) []schema.Issue {
	if r.DaysOfWeek == nil {
		return nil
	}
	for _, d := range strings.Split(*r.DaysOfWeek, ",") {
		if !isWeekday(d) {
			return []schema.Issue{schema.FieldIssue("days_of_week",
				"Days of week must be a comma list of "+strings.Join(Weekdays, ", "))}
		}
	}
	return nil
}

func isWeekday(d string) bool {
	for _, w := range Weekdays {
		if d == w {
			return true
		}
	}
	return false
}
