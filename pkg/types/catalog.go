package types

import "github.com/shopspring/decimal"

// Category groups products of an organization.
type Category struct {
	ID             string  `db:"id" json:"id" form:"id"`
	OrganizationID string  `db:"organization_id" json:"organization_id" form:"organization_id" validate:"required"`
	Name           string  `db:"name" json:"name" form:"name" validate:"required,max=80"`
	Description    *string `db:"description" json:"description" form:"description" validate:"omitempty,max=500"`
	Active         bool    `db:"active" json:"active" form:"active"`
}

// Subcategory refines a category.
type Subcategory struct {
	ID          string  `db:"id" json:"id" form:"id"`
	CategoryID  string  `db:"category_id" json:"category_id" form:"category_id" validate:"required"`
	Name        string  `db:"name" json:"name" form:"name" validate:"required,max=80"`
	Description *string `db:"description" json:"description" form:"description" validate:"omitempty,max=500"`

	CategoryName *string `db:"category_name" json:"category_name,omitempty" form:"-"`
}

// Product is a redeemable catalog item. PointsCost is what a beneficiary
// spends to redeem one unit.
type Product struct {
	ID             string          `db:"id" json:"id" form:"id"`
	OrganizationID string          `db:"organization_id" json:"organization_id" form:"organization_id" validate:"required"`
	CategoryID     string          `db:"category_id" json:"category_id" form:"category_id" validate:"required"`
	SubcategoryID  *string         `db:"subcategory_id" json:"subcategory_id" form:"subcategory_id"`
	Name           string          `db:"name" json:"name" form:"name" validate:"required,max=120"`
	SKU            string          `db:"sku" json:"sku" form:"sku" validate:"required,max=40"`
	Description    *string         `db:"description" json:"description" form:"description" validate:"omitempty,max=1000"`
	Price          decimal.Decimal `db:"price" json:"price" form:"price"`
	PointsCost     int             `db:"points_cost" json:"points_cost" form:"points_cost" validate:"gte=0"`
	Active         bool            `db:"active" json:"active" form:"active"`

	CategoryName *string `db:"category_name" json:"category_name,omitempty" form:"-"`
}

// Stock is the on-hand quantity of a product at a branch.
type Stock struct {
	ID          string `db:"id" json:"id" form:"id"`
	BranchID    string `db:"branch_id" json:"branch_id" form:"branch_id" validate:"required"`
	ProductID   string `db:"product_id" json:"product_id" form:"product_id" validate:"required"`
	Quantity    int    `db:"quantity" json:"quantity" form:"quantity" validate:"gte=0"`
	MinQuantity int    `db:"min_quantity" json:"min_quantity" form:"min_quantity" validate:"gte=0"`

	ProductName *string `db:"product_name" json:"product_name,omitempty" form:"-"`
	BranchName  *string `db:"branch_name" json:"branch_name,omitempty" form:"-"`
}

// Status is a redemption workflow label (pending, delivered, ...).
type Status struct {
	ID          string  `db:"id" json:"id" form:"id"`
	Name        string  `db:"name" json:"name" form:"name" validate:"required,max=40"`
	Description *string `db:"description" json:"description" form:"description" validate:"omitempty,max=200"`
	Color       *string `db:"color" json:"color" form:"color" validate:"omitempty,hexcolor"`
}
