package shared

import "strings"

// Roles issued by the backend.
const (
	RoleAdmin           = "admin"
	RoleInventoryStaff  = "inventory_staff"
	RoleSalesStaff      = "sales_staff"
	RoleProductionStaff = "production_staff"
)

// Pages guarded by role.
const (
	PageDashboard  = "dashboard"
	PageInventory  = "inventory"
	PageSales      = "sales"
	PageProduction = "production"
	PageAlerts     = "alerts"
)

// NavItem is one entry of the sidebar.
type NavItem struct {
	Page  string
	Label string
	Path  string
}

var navigation = []NavItem{
	{Page: PageDashboard, Label: "Dashboard", Path: "/dashboard"},
	{Page: PageInventory, Label: "Inventory", Path: "/inventory"},
	{Page: PageSales, Label: "Sales", Path: "/sales"},
	{Page: PageProduction, Label: "Production", Path: "/production"},
	{Page: PageAlerts, Label: "Alerts", Path: "/alerts"},
}

var staffPage = map[string]string{
	RoleInventoryStaff:  PageInventory,
	RoleSalesStaff:      PageSales,
	RoleProductionStaff: PageProduction,
}

// NormalizeRole maps the short role names some backends emit onto the
// canonical ones. Unknown roles come back lowercased and unchanged.
func NormalizeRole(raw string) string {
	role := strings.ToLower(strings.TrimSpace(raw))
	switch role {
	case "inventory":
		return RoleInventoryStaff
	case "sales":
		return RoleSalesStaff
	case "production":
		return RoleProductionStaff
	}
	return role
}

// CanAccess reports whether role may open page.
func CanAccess(role, page string) bool {
	role = NormalizeRole(role)
	if role == RoleAdmin {
		return true
	}
	own, ok := staffPage[role]
	return ok && own == page
}

// KnownRole reports whether role has a page in the console.
func KnownRole(role string) bool {
	role = NormalizeRole(role)
	_, staff := staffPage[role]
	return staff || role == RoleAdmin
}

// IsAdmin reports whether role has unrestricted access.
func IsAdmin(role string) bool {
	return NormalizeRole(role) == RoleAdmin
}

// LandingPath is where role lands after login or a denied request.
func LandingPath(role string) string {
	role = NormalizeRole(role)
	if page, ok := staffPage[role]; ok {
		return "/" + page
	}
	if role == RoleAdmin {
		return "/dashboard"
	}
	return "/auth/login"
}

// Navigation lists the sidebar entries visible to role.
func Navigation(role string) []NavItem {
	items := make([]NavItem, 0, len(navigation))
	for _, item := range navigation {
		if CanAccess(role, item.Page) {
			items = append(items, item)
		}
	}
	return items
}
