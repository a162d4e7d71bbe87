package shared

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanAccess(t *testing.T) {
	cases := []struct {
		role string
		page string
		want bool
	}{
		{RoleAdmin, PageDashboard, true},
		{RoleAdmin, PageAlerts, true},
		{RoleInventoryStaff, PageInventory, true},
		{RoleInventoryStaff, PageSales, false},
		{"inventory", PageInventory, true},
		{RoleSalesStaff, PageDashboard, false},
		{RoleProductionStaff, PageProduction, true},
		{RoleProductionStaff, PageAlerts, false},
		{"guest", PageInventory, false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, CanAccess(tc.role, tc.page), "%s -> %s", tc.role, tc.page)
	}
}

func TestLandingPath(t *testing.T) {
	assert.Equal(t, "/dashboard", LandingPath("Admin"))
	assert.Equal(t, "/inventory", LandingPath(RoleInventoryStaff))
	assert.Equal(t, "/sales", LandingPath("sales"))
	assert.Equal(t, "/production", LandingPath(RoleProductionStaff))
	assert.Equal(t, "/auth/login", LandingPath(""))
}

func TestKnownRole(t *testing.T) {
	assert.True(t, KnownRole("ADMIN"))
	assert.True(t, KnownRole("production"))
	assert.False(t, KnownRole("viewer"))
	assert.False(t, KnownRole(""))
}

func TestNavigation(t *testing.T) {
	assert.Len(t, Navigation(RoleAdmin), 5)
	items := Navigation(RoleSalesStaff)
	if assert.Len(t, items, 1) {
		assert.Equal(t, "/sales", items[0].Path)
	}
}
