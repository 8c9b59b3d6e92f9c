package entity

import (
	"fmt"

	"github.com/mesh-intelligence/rewards/internal/repo"
	"github.com/mesh-intelligence/rewards/internal/schema"
	"github.com/mesh-intelligence/rewards/internal/store"
	"github.com/mesh-intelligence/rewards/pkg/types"
)

// Beneficiary is a loyalty program member.
var Beneficiary = repo.Entity[types.Beneficiary]{
	Name:    "Beneficiary",
	Table:   types.TableBeneficiaries,
	Columns: []string{"organization_id", "first_name", "last_name", "email", "phone", "document_id", "available_points", "active"},
	Embeds: []store.Join{
		nameOf("organization_name", "organization_id", types.TableOrganizations),
	},
	Order: []store.Ordering{store.Asc("last_name")},
	Schema: schema.New(func(f schema.Form) types.Beneficiary {
		return types.Beneficiary{
			OrganizationID:  f.String("organization_id"),
			FirstName:       f.String("first_name"),
			LastName:        f.String("last_name"),
			Email:           f.String("email"),
			Phone:           f.Optional("phone"),
			DocumentID:      f.String("document_id"),
			AvailablePoints: f.Int("available_points"),
			Active:          f.Bool("active"),
		}
	}),
	Fields: []repo.Field{
		ref("organization_id", types.TableOrganizations),
		text("first_name"),
		text("last_name"),
		{Name: "email", Kind: repo.KindEmail, Required: true},
		optionalText("phone"),
		{Name: "document_id", Label: "Document ID", Kind: repo.KindText, Required: true},
		{Name: "available_points", Kind: repo.KindNumber},
		{Name: "active", Kind: repo.KindCheckbox},
	},
	Label: func(b types.Beneficiary) string { return b.FirstName + " " + b.LastName },
}

// Assignment lists are newest first.
var Assignment = repo.Entity[types.Assignment]{
	Name:    "Assignment",
	Table:   types.TableAssignments,
	Columns: []string{"beneficiary_id", "branch_id", "points_rule_id", "points", "reason", "assigned_at"},
	Embeds: []store.Join{
		{Alias: "beneficiary_name", Key: "beneficiary_id", Table: types.TableBeneficiaries, Columns: []string{"first_name", "last_name"}},
	},
	Order: []store.Ordering{store.Desc("assigned_at")},
	Schema: schema.New(func(f schema.Form) types.Assignment {
		return types.Assignment{
			BeneficiaryID: f.String("beneficiary_id"),
			BranchID:      f.Optional("branch_id"),
			PointsRuleID:  f.Optional("points_rule_id"),
			Points:        f.Int("points"),
			Reason:        f.Optional("reason"),
			AssignedAt:    f.String("assigned_at"),
		}
	}),
	Fields: []repo.Field{
		ref("beneficiary_id", types.TableBeneficiaries),
		optionalRef("branch_id", types.TableBranches),
		{Name: "points_rule_id", Label: "Points rule", Kind: repo.KindSelect, Ref: types.TablePointsRules},
		{Name: "points", Kind: repo.KindNumber, Required: true},
		{Name: "reason", Kind: repo.KindTextarea},
		{Name: "assigned_at", Label: "Assigned on", Kind: repo.KindDate, Required: true},
	},
	Label: func(a types.Assignment) string {
		return fmt.Sprintf("%s: %d points", a.AssignedAt, a.Points)
	},
}

// Redemption lists are newest first; undated redemptions sort last.
var Redemption = repo.Entity[types.Redemption]{
	Name:    "Redemption",
	Table:   types.TableRedemptions,
	Columns: []string{"beneficiary_id", "product_id", "branch_id", "status_id", "quantity", "points_spent", "redeemed_at", "notes"},
	Embeds: []store.Join{
		nameOf("product_name", "product_id", types.TableProducts),
		nameOf("status_name", "status_id", types.TableStatuses),
	},
	Order: []store.Ordering{store.Desc("redeemed_at")},
	Schema: schema.New(func(f schema.Form) types.Redemption {
		return types.Redemption{
			BeneficiaryID: f.String("beneficiary_id"),
			ProductID:     f.String("product_id"),
			BranchID:      f.String("branch_id"),
			StatusID:      f.String("status_id"),
			Quantity:      f.Int("quantity"),
			PointsSpent:   f.Int("points_spent"),
			RedeemedAt:    f.Optional("redeemed_at"),
			Notes:         f.Optional("notes"),
		}
	}),
	Fields: []repo.Field{
		ref("beneficiary_id", types.TableBeneficiaries),
		ref("product_id", types.TableProducts),
		ref("branch_id", types.TableBranches),
		ref("status_id", types.TableStatuses),
		{Name: "quantity", Kind: repo.KindNumber, Required: true},
		{Name: "points_spent", Kind: repo.KindNumber},
		{Name: "redeemed_at", Label: "Redeemed on", Kind: repo.KindDate},
		{Name: "notes", Kind: repo.KindTextarea},
	},
	Label: func(r types.Redemption) string {
		return fmt.Sprintf("%s x%d", deref(r.ProductName), r.Quantity)
	},
}
