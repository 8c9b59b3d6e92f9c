package types

// Permission levels granted to an app user within an organization.
const (
	PermissionRead  = "read"
	PermissionWrite = "write"
	PermissionAdmin = "admin"
)

// AppUser is a dashboard operator. Password holds the submitted plain text
// until the repository replaces it with a bcrypt hash; it is never projected
// back out of the store.
type AppUser struct {
	ID             string `db:"id" json:"id" form:"id"`
	OrganizationID string `db:"organization_id" json:"organization_id" form:"organization_id" validate:"required"`
	FirstName      string `db:"first_name" json:"first_name" form:"first_name" validate:"required,max=80"`
	LastName       string `db:"last_name" json:"last_name" form:"last_name" validate:"required,max=80"`
	Email          string `db:"email" json:"email" form:"email" validate:"required,email"`
	Username       string `db:"username" json:"username" form:"username" validate:"required,min=3,max=40,username"`
	Password       string `db:"password" json:"-" form:"password" validate:"required,min=8,max=72,maxbytes=72"`
	Active         bool   `db:"active" json:"active" form:"active"`

	OrganizationName *string `db:"organization_name" json:"organization_name,omitempty" form:"-"`
}

// UserPermission grants an app user a permission level on an organization.
type UserPermission struct {
	ID             string `db:"id" json:"id" form:"id"`
	UserID         string `db:"user_id" json:"user_id" form:"user_id" validate:"required"`
	OrganizationID string `db:"organization_id" json:"organization_id" form:"organization_id" validate:"required"`
	Permission     string `db:"permission" json:"permission" form:"permission" validate:"required,oneof=read write admin"`

	Username *string `db:"username" json:"username,omitempty" form:"-"`
}
