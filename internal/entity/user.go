package entity

import (
	"context"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/mesh-intelligence/rewards/internal/repo"
	"github.com/mesh-intelligence/rewards/internal/schema"
	"github.com/mesh-intelligence/rewards/internal/store"
	"github.com/mesh-intelligence/rewards/pkg/types"
)

// AppUser passwords are stored as bcrypt hashes and never read back.
var AppUser = repo.Entity[types.AppUser]{
	Name:       "User",
	Table:      types.TableAppUsers,
	Columns:    []string{"organization_id", "first_name", "last_name", "email", "username", "password", "active"},
	Projection: []string{"id", "organization_id", "first_name", "last_name", "email", "username", "active"},
	Embeds: []store.Join{
		nameOf("organization_name", "organization_id", types.TableOrganizations),
	},
	Order: []store.Ordering{store.Asc("last_name")},
	Schema: schema.New(func(f schema.Form) types.AppUser {
		return types.AppUser{
			OrganizationID: f.String("organization_id"),
			FirstName:      f.String("first_name"),
			LastName:       f.String("last_name"),
			Email:          f.String("email"),
			Username:       f.String("username"),
			// Passwords are taken verbatim; surrounding spaces are significant.
			Password: f.Get("password"),
			Active:   f.Bool("active"),
		}
	}),
	Fields: []repo.Field{
		ref("organization_id", types.TableOrganizations),
		text("first_name"),
		text("last_name"),
		{Name: "email", Kind: repo.KindEmail, Required: true},
		text("username"),
		{Name: "password", Kind: repo.KindPassword, Required: true},
		{Name: "active", Kind: repo.KindCheckbox},
	},
	Label: func(u types.AppUser) string {
		return fmt.Sprintf("%s %s (%s)", u.FirstName, u.LastName, u.Username)
	},
	BeforeWrite: hashPassword,
}

// PasswordCost is the bcrypt cost used for app user passwords.
var PasswordCost = bcrypt.DefaultCost

func hashPassword(_ context.Context, u *types.AppUser) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(u.Password), PasswordCost)
	if err != nil {
		return fmt.Errorf("hashing password: %w", err)
	}
	u.Password = string(hash)
	return nil
}

// UserPermission lists show the user's username.
var UserPermission = repo.Entity[types.UserPermission]{
	Name:    "Permission",
	Table:   types.TableUserPermissions,
	Columns: []string{"user_id", "organization_id", "permission"},
	Embeds: []store.Join{
		{Alias: "username", Key: "user_id", Table: types.TableAppUsers, Columns: []string{"username"}},
	},
	Order: []store.Ordering{store.Asc("permission")},
	Schema: schema.New(func(f schema.Form) types.UserPermission {
		return types.UserPermission{
			UserID:         f.String("user_id"),
			OrganizationID: f.String("organization_id"),
			Permission:     f.String("permission"),
		}
	}),
	Fields: []repo.Field{
		{Name: "user_id", Label: "User", Kind: repo.KindSelect, Ref: types.TableAppUsers, Required: true},
		ref("organization_id", types.TableOrganizations),
		{
			Name:     "permission",
			Kind:     repo.KindSelect,
			Required: true,
			Choices:  repo.ChoicesOf(types.PermissionRead, types.PermissionWrite, types.PermissionAdmin),
		},
	},
	Label: func(p types.UserPermission) string {
		return deref(p.Username) + ": " + p.Permission
	},
}
