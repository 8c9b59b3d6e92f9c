package entity

import (
	"github.com/mesh-intelligence/rewards/internal/repo"
	"github.com/mesh-intelligence/rewards/internal/schema"
	"github.com/mesh-intelligence/rewards/internal/store"
	"github.com/mesh-intelligence/rewards/pkg/types"
)

// Organization is the top of the ownership tree.
var Organization = repo.Entity[types.Organization]{
	Name:    "Organization",
	Table:   types.TableOrganizations,
	Columns: []string{"name", "tax_id", "email", "phone", "active"},
	Order:   []store.Ordering{store.Asc("name")},
	Schema: schema.New(func(f schema.Form) types.Organization {
		return types.Organization{
			Name:   f.String("name"),
			TaxID:  f.Optional("tax_id"),
			Email:  f.String("email"),
			Phone:  f.Optional("phone"),
			Active: f.Bool("active"),
		}
	}),
	Fields: []repo.Field{
		text("name"),
		{Name: "tax_id", Label: "Tax ID", Kind: repo.KindText},
		{Name: "email", Kind: repo.KindEmail, Required: true},
		optionalText("phone"),
		{Name: "active", Kind: repo.KindCheckbox},
	},
	Label: func(o types.Organization) string { return o.Name },
}

// Address rows are referenced by branches.
var Address = repo.Entity[types.Address]{
	Name:    "Address",
	Table:   types.TableAddresses,
	Columns: []string{"street", "number", "city", "state", "zip_code"},
	Order:   []store.Ordering{store.Asc("street")},
	Schema: schema.New(func(f schema.Form) types.Address {
		return types.Address{
			Street:  f.String("street"),
			Number:  f.String("number"),
			City:    f.String("city"),
			State:   f.String("state"),
			ZipCode: f.String("zip_code"),
		}
	}),
	Fields: []repo.Field{
		text("street"),
		text("number"),
		text("city"),
		text("state"),
		text("zip_code"),
	},
	Label: func(a types.Address) string {
		return a.Street + " " + a.Number + ", " + a.City
	},
}

// Branch lists show the owning organization's name.
var Branch = repo.Entity[types.Branch]{
	Name:    "Branch",
	Table:   types.TableBranches,
	Columns: []string{"organization_id", "address_id", "name", "code", "active"},
	Embeds: []store.Join{
		nameOf("organization_name", "organization_id", types.TableOrganizations),
	},
	Order: []store.Ordering{store.Asc("name")},
	Schema: schema.New(func(f schema.Form) types.Branch {
		return types.Branch{
			OrganizationID: f.String("organization_id"),
			AddressID:      f.Optional("address_id"),
			Name:           f.String("name"),
			Code:           f.String("code"),
			Active:         f.Bool("active"),
		}
	}),
	Fields: []repo.Field{
		ref("organization_id", types.TableOrganizations),
		optionalRef("address_id", types.TableAddresses),
		text("name"),
		text("code"),
		{Name: "active", Kind: repo.KindCheckbox},
	},
	Label: func(b types.Branch) string { return b.Name },
}
