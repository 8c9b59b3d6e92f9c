package types

// Organization owns branches, catalog entries, users and beneficiaries.
type Organization struct {
	ID     string  `db:"id" json:"id" form:"id"`
	Name   string  `db:"name" json:"name" form:"name" validate:"required,max=120"`
	TaxID  *string `db:"tax_id" json:"tax_id" form:"tax_id" validate:"omitempty,max=40"`
	Email  string  `db:"email" json:"email" form:"email" validate:"required,email"`
	Phone  *string `db:"phone" json:"phone" form:"phone" validate:"omitempty,max=40"`
	Active bool    `db:"active" json:"active" form:"active"`
}

// Address is a postal address referenced by branches.
type Address struct {
	ID      string `db:"id" json:"id" form:"id"`
	Street  string `db:"street" json:"street" form:"street" validate:"required,max=120"`
	Number  string `db:"number" json:"number" form:"number" validate:"required,max=20"`
	City    string `db:"city" json:"city" form:"city" validate:"required,max=80"`
	State   string `db:"state" json:"state" form:"state" validate:"required,max=80"`
	ZipCode string `db:"zip_code" json:"zip_code" form:"zip_code" validate:"required,min=3,max=10"`
}

// Branch is a physical location of an organization where points are
// assigned and products are redeemed.
type Branch struct {
	ID             string  `db:"id" json:"id" form:"id"`
	OrganizationID string  `db:"organization_id" json:"organization_id" form:"organization_id" validate:"required"`
	AddressID      *string `db:"address_id" json:"address_id" form:"address_id"`
	Name           string  `db:"name" json:"name" form:"name" validate:"required,max=120"`
	Code           string  `db:"code" json:"code" form:"code" validate:"required,max=20"`
	Active         bool    `db:"active" json:"active" form:"active"`

	OrganizationName *string `db:"organization_name" json:"organization_name,omitempty" form:"-"`
}
