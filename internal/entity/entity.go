// Package entity configures the generic repository for every dashboard
// entity: columns, schemas, list ordering, embeds and form fields.
package entity

import (
	"github.com/mesh-intelligence/rewards/internal/repo"
	"github.com/mesh-intelligence/rewards/internal/store"
	"github.com/mesh-intelligence/rewards/pkg/types"
)

// Repositories holds one typed repository per entity.
type Repositories struct {
	Organizations   *repo.Repository[types.Organization]
	Addresses       *repo.Repository[types.Address]
	Branches        *repo.Repository[types.Branch]
	AppUsers        *repo.Repository[types.AppUser]
	UserPermissions *repo.Repository[types.UserPermission]
	Beneficiaries   *repo.Repository[types.Beneficiary]
	Categories      *repo.Repository[types.Category]
	Subcategories   *repo.Repository[types.Subcategory]
	Products        *repo.Repository[types.Product]
	Stock           *repo.Repository[types.Stock]
	Statuses        *repo.Repository[types.Status]
	PointsRules     *repo.Repository[types.PointsRule]
	Assignments     *repo.Repository[types.Assignment]
	Redemptions     *repo.Repository[types.Redemption]

	registry *repo.Registry
}

// New builds every repository over st.
func New(st repo.Store, opts ...repo.Option) *Repositories {
	r := &Repositories{
		Organizations:   repo.New(st, Organization, opts...),
		Addresses:       repo.New(st, Address, opts...),
		Branches:        repo.New(st, Branch, opts...),
		AppUsers:        repo.New(st, AppUser, opts...),
		UserPermissions: repo.New(st, UserPermission, opts...),
		Beneficiaries:   repo.New(st, Beneficiary, opts...),
		Categories:      repo.New(st, Category, opts...),
		Subcategories:   repo.New(st, Subcategory, opts...),
		Products:        repo.New(st, Product, opts...),
		Stock:           repo.New(st, Stock, opts...),
		Statuses:        repo.New(st, Status, opts...),
		PointsRules:     repo.New(st, PointsRule, opts...),
		Assignments:     repo.New(st, Assignment, opts...),
		Redemptions:     repo.New(st, Redemption, opts...),
	}

	byTable := map[string]repo.Resource{
		types.TableOrganizations:   r.Organizations.Resource(),
		types.TableAddresses:       r.Addresses.Resource(),
		types.TableBranches:        r.Branches.Resource(),
		types.TableAppUsers:        r.AppUsers.Resource(),
		types.TableUserPermissions: r.UserPermissions.Resource(),
		types.TableBeneficiaries:   r.Beneficiaries.Resource(),
		types.TableCategories:      r.Categories.Resource(),
		types.TableSubcategories:   r.Subcategories.Resource(),
		types.TableProducts:        r.Products.Resource(),
		types.TableStock:           r.Stock.Resource(),
		types.TableStatuses:        r.Statuses.Resource(),
		types.TablePointsRules:     r.PointsRules.Resource(),
		types.TableAssignments:     r.Assignments.Resource(),
		types.TableRedemptions:     r.Redemptions.Resource(),
	}
	r.registry = repo.NewRegistry()
	for _, table := range types.StandardTableNames {
		r.registry.Register(byTable[table])
	}
	return r
}

// Registry returns the resources in foreign-key dependency order.
func (r *Repositories) Registry() *repo.Registry {
	return r.registry
}

// nameOf embeds the name column of the row referenced by key.
func nameOf(alias, key, table string) store.Join {
	return store.Join{Alias: alias, Key: key, Table: table, Columns: []string{"name"}}
}

// ref is a required dropdown field populated from table.
func ref(name, table string) repo.Field {
	return repo.Field{Name: name, Kind: repo.KindSelect, Ref: table, Required: true}
}

// optionalRef is a dropdown field that may be left empty.
func optionalRef(name, table string) repo.Field {
	return repo.Field{Name: name, Kind: repo.KindSelect, Ref: table}
}

func text(name string) repo.Field {
	return repo.Field{Name: name, Kind: repo.KindText, Required: true}
}

func optionalText(name string) repo.Field {
	return repo.Field{Name: name, Kind: repo.KindText}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
