package entity

import (
	"github.com/mesh-intelligence/rewards/internal/repo"
	"github.com/mesh-intelligence/rewards/internal/schema"
	"github.com/mesh-intelligence/rewards/internal/store"
	"github.com/mesh-intelligence/rewards/pkg/types"
)

// Category groups an organization's products.
var Category = repo.Entity[types.Category]{
	Name:    "Category",
	Table:   types.TableCategories,
	Columns: []string{"organization_id", "name", "description", "active"},
	Order:   []store.Ordering{store.Asc("name")},
	Schema: schema.New(func(f schema.Form) types.Category {
		return types.Category{
			OrganizationID: f.String("organization_id"),
			Name:           f.String("name"),
			Description:    f.Optional("description"),
			Active:         f.Bool("active"),
		}
	}),
	Fields: []repo.Field{
		ref("organization_id", types.TableOrganizations),
		text("name"),
		{Name: "description", Kind: repo.KindTextarea},
		{Name: "active", Kind: repo.KindCheckbox},
	},
	Label: func(c types.Category) string { return c.Name },
}

// Subcategory lists show the parent category's name.
var Subcategory = repo.Entity[types.Subcategory]{
	Name:    "Subcategory",
	Table:   types.TableSubcategories,
	Columns: []string{"category_id", "name", "description"},
	Embeds: []store.Join{
		nameOf("category_name", "category_id", types.TableCategories),
	},
	Order: []store.Ordering{store.Asc("name")},
	Schema: schema.New(func(f schema.Form) types.Subcategory {
		return types.Subcategory{
			CategoryID:  f.String("category_id"),
			Name:        f.String("name"),
			Description: f.Optional("description"),
		}
	}),
	Fields: []repo.Field{
		ref("category_id", types.TableCategories),
		text("name"),
		{Name: "description", Kind: repo.KindTextarea},
	},
	Label: func(s types.Subcategory) string { return s.Name },
}

// Product prices are decimals; the struct tags cannot express their range.
var Product = repo.Entity[types.Product]{
	Name:    "Product",
	Table:   types.TableProducts,
	Columns: []string{"organization_id", "category_id", "subcategory_id", "name", "sku", "description", "price", "points_cost", "active"},
	Embeds: []store.Join{
		nameOf("category_name", "category_id", types.TableCategories),
	},
	Order: []store.Ordering{store.Asc("name")},
	Schema: schema.New(func(f schema.Form) types.Product {
		return types.Product{
			OrganizationID: f.String("organization_id"),
			CategoryID:     f.String("category_id"),
			SubcategoryID:  f.Optional("subcategory_id"),
			Name:           f.String("name"),
			SKU:            f.String("sku"),
			Description:    f.Optional("description"),
			Price:          f.Decimal("price"),
			PointsCost:     f.Int("points_cost"),
			Active:         f.Bool("active"),
		}
	}, checkPrice),
	Fields: []repo.Field{
		ref("organization_id", types.TableOrganizations),
		ref("category_id", types.TableCategories),
		optionalRef("subcategory_id", types.TableSubcategories),
		text("name"),
		{Name: "sku", Label: "SKU", Kind: repo.KindText, Required: true},
		{Name: "description", Kind: repo.KindTextarea},
		{Name: "price", Kind: repo.KindDecimal},
		{Name: "points_cost", Kind: repo.KindNumber},
		{Name: "active", Kind: repo.KindCheckbox},
	},
	Label: func(p types.Product) string { return p.Name },
}

func checkPrice(p types.Product) []schema.Issue {
	if p.Price.IsNegative() {
		return []schema.Issue{schema.FieldIssue("price", "Price must be at least 0")}
	}
	return nil
}

// Stock lists are ordered by the embedded product name.
var Stock = repo.Entity[types.Stock]{
	Name:    "Stock",
	Table:   types.TableStock,
	Columns: []string{"branch_id", "product_id", "quantity", "min_quantity"},
	Embeds: []store.Join{
		nameOf("product_name", "product_id", types.TableProducts),
		nameOf("branch_name", "branch_id", types.TableBranches),
	},
	Order: []store.Ordering{store.Asc("product_name")},
	Schema: schema.New(func(f schema.Form) types.Stock {
		return types.Stock{
			BranchID:    f.String("branch_id"),
			ProductID:   f.String("product_id"),
			Quantity:    f.Int("quantity"),
			MinQuantity: f.Int("min_quantity"),
		}
	}),
	Fields: []repo.Field{
		ref("branch_id", types.TableBranches),
		ref("product_id", types.TableProducts),
		{Name: "quantity", Kind: repo.KindNumber},
		{Name: "min_quantity", Label: "Minimum quantity", Kind: repo.KindNumber},
	},
	Label: func(s types.Stock) string {
		return deref(s.ProductName) + " @ " + deref(s.BranchName)
	},
}

// Status is a redemption workflow state.
var Status = repo.Entity[types.Status]{
	Name:    "Status",
	Table:   types.TableStatuses,
	Columns: []string{"name", "description", "color"},
	Order:   []store.Ordering{store.Asc("name")},
	Schema: schema.New(func(f schema.Form) types.Status {
		return types.Status{
			Name:        f.String("name"),
			Description: f.Optional("description"),
			Color:       f.Optional("color"),
		}
	}),
	Fields: []repo.Field{
		text("name"),
		{Name: "description", Kind: repo.KindTextarea},
		{Name: "color", Kind: repo.KindColor},
	},
	Label: func(s types.Status) string { return s.Name },
}
