package authz

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func newTestAuthority() *Authority {
	resolver := NewResolver(NewCatalog())
	return NewAuthority(resolver, DefaultRouteTables())
}

func TestCanAccessRoute_AdminBypass(t *testing.T) {
	authority := newTestAuthority()

	for _, route := range []string{
		"/dashboard",
		"/dashboard/settings/users",
		"/dashboard/payroll/approval",
		"/dashboard/completely/unknown",
	} {
		assert.True(t, authority.CanAccessRoute(RoleAdmin, route), "admin must reach %s", route)
	}
}

func TestCanAccessRoute_ExplicitOverrideIsTerminal(t *testing.T) {
	authority := newTestAuthority()

	// Listed roles pass.
	assert.True(t, authority.CanAccessRoute(RoleGeneralManager, "/dashboard/payroll/approval"))
	assert.True(t, authority.CanAccessRoute(RoleFinanceManager, "/dashboard/payroll/approval"))

	// HRManager has MANAGE on payroll, which would grant the route through
	// the module table, but the explicit rule wins in both directions.
	assert.False(t, authority.CanAccessRoute(RoleHRManager, "/dashboard/payroll/approval"))

	// The rest of the payroll area still resolves through the module table.
	assert.True(t, authority.CanAccessRoute(RoleHRManager, "/dashboard/payroll"))
}

func TestCanAccessRoute_UserManagementIsAdminOnly(t *testing.T) {
	authority := newTestAuthority()

	for _, role := range AllRoles {
		got := authority.CanAccessRoute(role, "/dashboard/settings/users")
		assert.Equal(t, role == RoleAdmin, got, "role=%s", role)
	}
}

func TestCanAccessRoute_EmployeeDeniedManagementAreas(t *testing.T) {
	authority := newTestAuthority()

	denied := []string{
		"/dashboard/employees",
		"/dashboard/employees/123",
		"/dashboard/projects",
		"/dashboard/projects/PRJ-NORTH/tasks",
		"/dashboard/temp-labor",
		"/dashboard/warehouse",
		"/dashboard/warehouse/stock",
		"/dashboard/settings",
	}
	for _, route := range denied {
		assert.False(t, authority.CanAccessRoute(RoleEmployee, route), "employee must not reach %s", route)
	}

	assert.True(t, authority.CanAccessRoute(RoleEmployee, "/dashboard"))
}

func TestCanAccessRoute_EmployeeReportWhitelist(t *testing.T) {
	authority := newTestAuthority()

	assert.True(t, authority.CanAccessRoute(RoleEmployee, "/dashboard/reports/attendance"))
	assert.True(t, authority.CanAccessRoute(RoleEmployee, "/dashboard/reports/leave-balance"))
	assert.False(t, authority.CanAccessRoute(RoleEmployee, "/dashboard/reports"))
	assert.False(t, authority.CanAccessRoute(RoleEmployee, "/dashboard/reports/payroll"))
}

func TestCanAccessRoute_SelfServiceTechnoGate(t *testing.T) {
	authority := newTestAuthority()

	regular := AccessContext{ContractType: "permanent"}
	techno := AccessContext{ContractType: "techno"}

	// Profile and attendance are open to every employee.
	assert.True(t, authority.CanAccessRouteAs(RoleEmployee, "/dashboard/self-service/profile", regular))
	assert.True(t, authority.CanAccessRouteAs(RoleEmployee, "/dashboard/self-service/attendance", regular))
	assert.True(t, authority.CanAccessRouteAs(RoleEmployee, "/dashboard/self-service", regular))

	// The rest of the area requires a techno contract.
	assert.False(t, authority.CanAccessRouteAs(RoleEmployee, "/dashboard/self-service/requests", regular))
	assert.True(t, authority.CanAccessRouteAs(RoleEmployee, "/dashboard/self-service/requests", techno))

	// Contract type matching is case-insensitive.
	assert.True(t, authority.CanAccessRouteAs(RoleEmployee, "/dashboard/self-service/requests", AccessContext{ContractType: "Techno"}))

	// No context at all means no techno privileges.
	assert.False(t, authority.CanAccessRoute(RoleEmployee, "/dashboard/self-service/requests"))
}

func TestCanAccessRoute_ModuleDerived(t *testing.T) {
	authority := newTestAuthority()

	// WarehouseManager reads warehouse, not employees.
	assert.True(t, authority.CanAccessRoute(RoleWarehouseManager, "/dashboard/warehouse"))
	assert.True(t, authority.CanAccessRoute(RoleWarehouseManager, "/dashboard/warehouse/stock/items"))
	assert.False(t, authority.CanAccessRoute(RoleWarehouseManager, "/dashboard/employees"))

	// ProjectAdvisor is view-only: projects and reports yes, payroll no.
	assert.True(t, authority.CanAccessRoute(RoleProjectAdvisor, "/dashboard/projects"))
	assert.True(t, authority.CanAccessRoute(RoleProjectAdvisor, "/dashboard/reports"))
	assert.False(t, authority.CanAccessRoute(RoleProjectAdvisor, "/dashboard/payroll"))
}

func TestCanAccessRoute_LongestPrefixWins(t *testing.T) {
	resolver := NewResolver(NewCatalog())
	tables := DefaultRouteTables()
	tables.RouteModules = map[string]Module{
		"/dashboard":         ModuleDashboard,
		"/dashboard/payroll": ModulePayroll,
	}
	authority := NewAuthority(resolver, tables)

	// ProjectAdvisor has dashboard VIEW but no payroll row; the payroll
	// prefix must win over the shorter dashboard prefix.
	assert.False(t, authority.CanAccessRoute(RoleProjectAdvisor, "/dashboard/payroll/slips"))
	assert.True(t, authority.CanAccessRoute(RoleProjectAdvisor, "/dashboard/overview"))
}

func TestCanAccessRoute_UnmappedFallback(t *testing.T) {
	resolver := NewResolver(NewCatalog())
	tables := DefaultRouteTables()
	tables.RouteModules = map[string]Module{}
	authority := NewAuthority(resolver, tables)

	assert.True(t, authority.CanAccessRoute(RoleProjectManager, "/dashboard"))
	assert.True(t, authority.CanAccessRoute(RoleProjectManager, "/dashboard/self-service/profile"))
	assert.False(t, authority.CanAccessRoute(RoleProjectManager, "/dashboard/anything-else"))
	assert.False(t, authority.CanAccessRoute(RoleProjectManager, "/somewhere"))
}

func TestCanAccessRoute_RouteNormalization(t *testing.T) {
	authority := newTestAuthority()

	assert.True(t, authority.CanAccessRoute(RoleHRManager, "/dashboard/employees/"))
	assert.True(t, authority.CanAccessRoute(RoleHRManager, "dashboard/employees"))
	assert.True(t, authority.CanAccessRoute(RoleHRManager, "  /dashboard/employees  "))
}
