package authz

import "strings"

// Role identifies a job function with a fixed permission profile.
// Values are canonical; external identity sources deliver them in
// inconsistent casing and must go through NormalizeRole first.
type Role string

const (
	RoleAdmin                  Role = "Admin"
	RoleGeneralManager         Role = "GeneralManager"
	RoleHRManager              Role = "HRManager"
	RoleFinanceManager         Role = "FinanceManager"
	RoleProjectManager         Role = "ProjectManager"
	RoleProjectSecretary       Role = "ProjectSecretary"
	RoleProjectAdvisor         Role = "ProjectAdvisor"
	RoleRegionalProjectManager Role = "RegionalProjectManager"
	RoleWarehouseManager       Role = "WarehouseManager"
	RoleEmployee               Role = "Employee"
)

// AllRoles lists every recognized role. Order matters only for display.
var AllRoles = []Role{
	RoleAdmin,
	RoleGeneralManager,
	RoleHRManager,
	RoleFinanceManager,
	RoleProjectManager,
	RoleProjectSecretary,
	RoleProjectAdvisor,
	RoleRegionalProjectManager,
	RoleWarehouseManager,
	RoleEmployee,
}

// roleAliases maps a folded form (lowercase, separators stripped) to the
// canonical role. Built once at init from AllRoles plus the short forms the
// identity provider has been observed to emit.
var roleAliases = map[string]Role{
	"gm":  RoleGeneralManager,
	"hr":  RoleHRManager,
	"hrm": RoleHRManager,
	"rpm": RoleRegionalProjectManager,
	"pm":  RoleProjectManager,
}

func init() {
	for _, r := range AllRoles {
		roleAliases[foldRole(string(r))] = r
	}
}

func foldRole(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.ReplaceAll(s, "_", "")
	s = strings.ReplaceAll(s, "-", "")
	s = strings.ReplaceAll(s, " ", "")
	return s
}

// NormalizeRole maps an externally supplied role string to its canonical
// Role. Unrecognized input fails closed: it maps to RoleEmployee, the least
// privileged role, and ok is false so callers can tell "Employee" apart from
// "unknown". It never falls back to Admin.
func NormalizeRole(raw string) (role Role, ok bool) {
	if r, found := roleAliases[foldRole(raw)]; found {
		return r, true
	}
	return RoleEmployee, false
}

// Valid reports whether r is one of the canonical roles.
func (r Role) Valid() bool {
	_, ok := roleAliases[foldRole(string(r))]
	return ok && roleAliases[foldRole(string(r))] == r
}

func (r Role) String() string { return string(r) }
