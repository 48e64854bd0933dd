package authz

// RolePermissionSet maps modules to permission levels for one role. Absence
// of a module means no access.
type RolePermissionSet map[Module]PermissionLevel

// Catalog holds the role -> module -> level table. Admin is never
// represented as rows; it is a hard-coded bypass evaluated before any
// lookup. The catalog is immutable after construction; table overrides
// build a new catalog rather than mutating one in place.
type Catalog struct {
	permissions map[Role]RolePermissionSet
}

// defaultPermissions is the shipped role permission table. Deployments can
// override it from the table config file without recompiling.
var defaultPermissions = map[Role]RolePermissionSet{
	RoleGeneralManager: {
		ModuleDashboard: LevelView,
		ModuleEmployees: LevelView,
		ModulePayroll:   LevelApprove,
		ModuleProjects:  LevelManage,
		ModuleTempLabor: LevelApprove,
		ModuleWarehouse: LevelView,
		ModuleApprovals: LevelApprove,
		ModuleReports:   LevelView,
		ModuleSettings:  LevelView,
	},
	RoleHRManager: {
		ModuleDashboard:  LevelView,
		ModuleEmployees:  LevelFull,
		ModulePayroll:    LevelManage,
		ModuleAttendance: LevelManage,
		ModuleTempLabor:  LevelView,
		ModuleApprovals:  LevelApprove,
		ModuleReports:    LevelView,
	},
	RoleFinanceManager: {
		ModuleDashboard: LevelView,
		ModuleEmployees: LevelView,
		ModulePayroll:   LevelFull,
		ModuleProjects:  LevelView,
		ModuleApprovals: LevelApprove,
		ModuleReports:   LevelView,
	},
	RoleProjectManager: {
		ModuleDashboard: LevelView,
		ModuleEmployees: LevelView,
		ModuleProjects:  LevelManage,
		ModuleTempLabor: LevelManage,
		ModuleWarehouse: LevelRequest,
		ModuleApprovals: LevelApprove,
		ModuleReports:   LevelView,
	},
	RoleProjectSecretary: {
		ModuleDashboard:  LevelView,
		ModuleProjects:   LevelSelf,
		ModuleTempLabor:  LevelRequest,
		ModuleAttendance: LevelManage,
		ModuleReports:    LevelOwn,
	},
	RoleProjectAdvisor: {
		ModuleDashboard: LevelView,
		ModuleProjects:  LevelView,
		ModuleReports:   LevelView,
	},
	RoleRegionalProjectManager: {
		ModuleDashboard: LevelView,
		ModuleEmployees: LevelView,
		ModuleProjects:  LevelApprove,
		ModuleTempLabor: LevelApprove,
		ModuleApprovals: LevelApprove,
		ModuleReports:   LevelView,
	},
	RoleWarehouseManager: {
		ModuleDashboard: LevelView,
		ModuleProjects:  LevelView,
		ModuleWarehouse: LevelFull,
		ModuleReports:   LevelView,
	},
	RoleEmployee: {
		ModuleDashboard:   LevelView,
		ModuleSelfService: LevelSelf,
		ModuleAttendance:  LevelOwn,
		ModulePayroll:     LevelOwn,
	},
}

// NewCatalog returns a catalog backed by the shipped permission table.
func NewCatalog() *Catalog {
	return &Catalog{permissions: defaultPermissions}
}

// NewCatalogWithOverrides returns a catalog whose table is the shipped one
// with per-role rows replaced by the given overrides. A role present in
// overrides replaces its entire row; roles absent keep their defaults.
// Admin rows in overrides are ignored, Admin stays a bypass.
func NewCatalogWithOverrides(overrides map[Role]RolePermissionSet) *Catalog {
	merged := make(map[Role]RolePermissionSet, len(defaultPermissions))
	for role, set := range defaultPermissions {
		merged[role] = set
	}
	for role, set := range overrides {
		if role == RoleAdmin {
			continue
		}
		merged[role] = set
	}
	return &Catalog{permissions: merged}
}

// Level returns the permission level for a role on a module, and whether any
// level is mapped at all.
func (c *Catalog) Level(role Role, module Module) (PermissionLevel, bool) {
	set, ok := c.permissions[role]
	if !ok {
		return "", false
	}
	level, ok := set[module]
	return level, ok
}

// HasModule reports whether the role has any permission level on the module.
func (c *Catalog) HasModule(role Role, module Module) bool {
	_, ok := c.Level(role, module)
	return ok
}
