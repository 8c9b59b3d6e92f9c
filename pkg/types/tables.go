package types

// Table names. Each table backs one entity and one dashboard list view at
// /dashboard/<table>.
const (
	TableOrganizations   = "organizations"
	TableAddresses       = "addresses"
	TableBranches        = "branches"
	TableAppUsers        = "app_users"
	TableUserPermissions = "user_permissions"
	TableBeneficiaries   = "beneficiaries"
	TableCategories      = "categories"
	TableSubcategories   = "subcategories"
	TableProducts        = "products"
	TableStock           = "stock"
	TableStatuses        = "statuses"
	TablePointsRules     = "points_rules"
	TableAssignments     = "assignments"
	TableRedemptions     = "redemptions"
)

// StandardTableNames lists every table in foreign-key dependency order:
// a table only references tables that appear before it.
var StandardTableNames = []string{
	TableOrganizations,
	TableAddresses,
	TableBranches,
	TableStatuses,
	TableCategories,
	TableSubcategories,
	TableProducts,
	TableAppUsers,
	TableUserPermissions,
	TableBeneficiaries,
	TablePointsRules,
	TableStock,
	TableAssignments,
	TableRedemptions,
}

// DashboardPath returns the list view path for a table. It doubles as the
// cache path revalidated after a successful write.
func DashboardPath(table string) string {
	return "/dashboard/" + table
}
