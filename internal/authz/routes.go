package authz

import "strings"

// ContractTypeTechno marks employees on a techno contract; it unlocks the
// self-service routes beyond profile and attendance.
const ContractTypeTechno = "techno"

// AccessContext carries the per-employee attributes route resolution needs
// beyond the role. The zero value is valid and grants nothing extra.
type AccessContext struct {
	ContractType string
}

// IsTechno reports whether the employee is on a techno contract.
func (a AccessContext) IsTechno() bool {
	return strings.EqualFold(a.ContractType, ContractTypeTechno)
}

const (
	dashboardRoot     = "/dashboard"
	selfServicePrefix = "/dashboard/self-service"
)

// defaultRouteModules maps route prefixes to modules. Resolution picks the
// longest matching prefix.
var defaultRouteModules = map[string]Module{
	dashboardRoot:             ModuleDashboard,
	"/dashboard/employees":    ModuleEmployees,
	"/dashboard/payroll":      ModulePayroll,
	"/dashboard/attendance":   ModuleAttendance,
	"/dashboard/projects":     ModuleProjects,
	"/dashboard/temp-labor":   ModuleTempLabor,
	"/dashboard/warehouse":    ModuleWarehouse,
	"/dashboard/approvals":    ModuleApprovals,
	"/dashboard/reports":      ModuleReports,
	"/dashboard/settings":     ModuleSettings,
	"/dashboard/self-service": ModuleSelfService,
}

// defaultRouteOverrides lists routes with an explicit role allow-list.
// An explicit rule is terminal: it wins over the module-derived result in
// both directions.
var defaultRouteOverrides = map[string][]Role{
	"/dashboard/settings/users":       {RoleAdmin},
	"/dashboard/settings/permissions": {RoleAdmin},
	"/dashboard/payroll/approval":     {RoleGeneralManager, RoleFinanceManager},
	"/dashboard/payroll/calculation":  {RoleHRManager, RoleFinanceManager},
	"/dashboard/reports/financial":    {RoleGeneralManager, RoleFinanceManager},
	"/dashboard/temp-labor/approval":  {RoleRegionalProjectManager, RoleGeneralManager},
}

// employeeDeniedPrefixes are the management areas employees can never reach,
// regardless of the module table.
var employeeDeniedPrefixes = []string{
	"/dashboard/employees",
	"/dashboard/payroll/calculation",
	"/dashboard/payroll/approval",
	"/dashboard/payroll/allowances",
	"/dashboard/payroll/deductions",
	"/dashboard/projects",
	"/dashboard/temp-labor",
	"/dashboard/warehouse",
	"/dashboard/settings",
}

// employeeReportWhitelist is the subset of report routes employees may open.
var employeeReportWhitelist = map[string]bool{
	"/dashboard/reports/attendance":    true,
	"/dashboard/reports/leave-balance": true,
}

// selfServiceAlwaysAllowed are the self-service sub-routes available to every
// employee; the rest of the self-service area requires a techno contract.
var selfServiceAlwaysAllowed = map[string]bool{
	selfServicePrefix + "/profile":    true,
	selfServicePrefix + "/attendance": true,
}

// RouteTables bundles the declarative route data the authority consults.
type RouteTables struct {
	RouteModules    map[string]Module
	RouteOverrides  map[string][]Role
	EmployeeDenied  []string
	ReportWhitelist map[string]bool
	SelfServiceOpen map[string]bool
}

// DefaultRouteTables returns the shipped route tables.
func DefaultRouteTables() RouteTables {
	return RouteTables{
		RouteModules:    defaultRouteModules,
		RouteOverrides:  defaultRouteOverrides,
		EmployeeDenied:  employeeDeniedPrefixes,
		ReportWhitelist: employeeReportWhitelist,
		SelfServiceOpen: selfServiceAlwaysAllowed,
	}
}

// Authority answers whether a role can reach a route. It is stateless and
// callable on every navigation; absence of any matching rule is a deny,
// never an error.
type Authority struct {
	resolver *Resolver
	tables   RouteTables
}

// NewAuthority creates an authority over the given resolver and route
// tables.
func NewAuthority(resolver *Resolver, tables RouteTables) *Authority {
	return &Authority{resolver: resolver, tables: tables}
}

// CanAccessRoute resolves access without employee context. For the Employee
// role this means the techno-gated self-service routes deny.
func (a *Authority) CanAccessRoute(role Role, route string) bool {
	return a.CanAccessRouteAs(role, route, AccessContext{})
}

// CanAccessRouteAs resolves access for a role on a route, in strict order:
// Admin bypass, explicit override allow-list (terminal), Employee path
// rules, then the route->module table through the permission resolver.
func (a *Authority) CanAccessRouteAs(role Role, route string, ac AccessContext) bool {
	route = normalizeRoute(route)

	if role == RoleAdmin {
		return true
	}

	if allowed, found := a.tables.RouteOverrides[route]; found {
		for _, r := range allowed {
			if r == role {
				return true
			}
		}
		// Explicit rules are terminal; never fall through to module logic.
		return false
	}

	if role == RoleEmployee {
		if decided, allow := a.employeeRouteAccess(route, ac); decided {
			return allow
		}
	}

	module, found := a.resolveModule(route)
	if !found {
		// Unmapped routes: only the dashboard root and self-service area.
		return route == dashboardRoot || strings.HasPrefix(route, selfServicePrefix)
	}
	return a.resolver.CanRead(role, module)
}

// employeeRouteAccess applies the Employee path-prefix rules. The first
// return value reports whether the rules decided the route at all; undecided
// routes fall through to module resolution.
func (a *Authority) employeeRouteAccess(route string, ac AccessContext) (decided, allow bool) {
	for _, prefix := range a.tables.EmployeeDenied {
		if route == prefix || strings.HasPrefix(route, prefix+"/") {
			return true, false
		}
	}

	if route == dashboardRoot {
		return true, true
	}

	if strings.HasPrefix(route, "/dashboard/reports") {
		return true, a.tables.ReportWhitelist[route]
	}

	if strings.HasPrefix(route, selfServicePrefix) {
		if route == selfServicePrefix || a.tables.SelfServiceOpen[route] {
			return true, true
		}
		return true, ac.IsTechno()
	}

	return false, false
}

// resolveModule finds the module for a route by longest-prefix match.
func (a *Authority) resolveModule(route string) (Module, bool) {
	var (
		best    string
		module  Module
		matched bool
	)
	for prefix, m := range a.tables.RouteModules {
		if route == prefix || strings.HasPrefix(route, prefix+"/") {
			if len(prefix) > len(best) {
				best = prefix
				module = m
				matched = true
			}
		}
	}
	return module, matched
}

func normalizeRoute(route string) string {
	route = strings.TrimSpace(route)
	if route == "" {
		return route
	}
	if !strings.HasPrefix(route, "/") {
		route = "/" + route
	}
	for len(route) > 1 && strings.HasSuffix(route, "/") {
		route = strings.TrimSuffix(route, "/")
	}
	return route
}
