package types

// Beneficiary is a loyalty program member who earns and redeems points.
type Beneficiary struct {
	ID              string  `db:"id" json:"id" form:"id"`
	OrganizationID  string  `db:"organization_id" json:"organization_id" form:"organization_id" validate:"required"`
	FirstName       string  `db:"first_name" json:"first_name" form:"first_name" validate:"required,max=80"`
	LastName        string  `db:"last_name" json:"last_name" form:"last_name" validate:"required,max=80"`
	Email           string  `db:"email" json:"email" form:"email" validate:"required,email"`
	Phone           *string `db:"phone" json:"phone" form:"phone" validate:"omitempty,max=40"`
	DocumentID      string  `db:"document_id" json:"document_id" form:"document_id" validate:"required,max=40"`
	AvailablePoints int     `db:"available_points" json:"available_points" form:"available_points" validate:"gte=0"`
	Active          bool    `db:"active" json:"active" form:"active"`

	OrganizationName *string `db:"organization_name" json:"organization_name,omitempty" form:"-"`
}

// Assignment records points granted to a beneficiary.
type Assignment struct {
	ID            string  `db:"id" json:"id" form:"id"`
	BeneficiaryID string  `db:"beneficiary_id" json:"beneficiary_id" form:"beneficiary_id" validate:"required"`
	BranchID      *string `db:"branch_id" json:"branch_id" form:"branch_id"`
	PointsRuleID  *string `db:"points_rule_id" json:"points_rule_id" form:"points_rule_id"`
	Points        int     `db:"points" json:"points" form:"points" validate:"gte=1"`
	Reason        *string `db:"reason" json:"reason" form:"reason" validate:"omitempty,max=200"`
	AssignedAt    string  `db:"assigned_at" json:"assigned_at" form:"assigned_at" validate:"required,datetime=2006-01-02"`

	BeneficiaryName *string `db:"beneficiary_name" json:"beneficiary_name,omitempty" form:"-"`
}

// Redemption records a beneficiary exchanging points for a product at a
// branch.
type Redemption struct {
	ID            string  `db:"id" json:"id" form:"id"`
	BeneficiaryID string  `db:"beneficiary_id" json:"beneficiary_id" form:"beneficiary_id" validate:"required"`
	ProductID     string  `db:"product_id" json:"product_id" form:"product_id" validate:"required"`
	BranchID      string  `db:"branch_id" json:"branch_id" form:"branch_id" validate:"required"`
	StatusID      string  `db:"status_id" json:"status_id" form:"status_id" validate:"required"`
	Quantity      int     `db:"quantity" json:"quantity" form:"quantity" validate:"gte=1"`
	PointsSpent   int     `db:"points_spent" json:"points_spent" form:"points_spent" validate:"gte=0"`
	RedeemedAt    *string `db:"redeemed_at" json:"redeemed_at" form:"redeemed_at" validate:"omitempty,datetime=2006-01-02"`
	Notes         *string `db:"notes" json:"notes" form:"notes" validate:"omitempty,max=500"`

	ProductName *string `db:"product_name" json:"product_name,omitempty" form:"-"`
	StatusName  *string `db:"status_name" json:"status_name,omitempty" form:"-"`
}
