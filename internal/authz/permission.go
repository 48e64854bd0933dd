package authz

// Module is a business capability area subject to coarse-grained
// permissioning. The set is closed.
type Module string

const (
	ModuleDashboard   Module = "dashboard"
	ModuleEmployees   Module = "employees"
	ModulePayroll     Module = "payroll"
	ModuleAttendance  Module = "attendance"
	ModuleProjects    Module = "projects"
	ModuleTempLabor   Module = "temp-labor"
	ModuleWarehouse   Module = "warehouse"
	ModuleApprovals   Module = "approvals"
	ModuleReports     Module = "reports"
	ModuleSettings    Module = "settings"
	ModuleSelfService Module = "self-service"
)

// AllModules lists every module in the system.
var AllModules = []Module{
	ModuleDashboard,
	ModuleEmployees,
	ModulePayroll,
	ModuleAttendance,
	ModuleProjects,
	ModuleTempLabor,
	ModuleWarehouse,
	ModuleApprovals,
	ModuleReports,
	ModuleSettings,
	ModuleSelfService,
}

// Action is an abstract operation a caller wants to perform on a module.
type Action string

const (
	ActionCreate  Action = "create"
	ActionRead    Action = "read"
	ActionUpdate  Action = "update"
	ActionDelete  Action = "delete"
	ActionApprove Action = "approve"
	ActionRequest Action = "request"
	ActionView    Action = "view"
)

// PermissionLevel is an access tier with a fixed mapping to allowed actions.
type PermissionLevel string

const (
	// LevelFull grants every action.
	LevelFull PermissionLevel = "FULL"
	// LevelManage grants create/read/update but not delete or approve.
	LevelManage PermissionLevel = "MANAGE"
	// LevelApprove grants read and approve only.
	LevelApprove PermissionLevel = "APPROVE"
	// LevelView grants read/view only.
	LevelView PermissionLevel = "VIEW"
	// LevelRequest grants read and request only.
	LevelRequest PermissionLevel = "REQUEST"
	// LevelSelf grants create/read/update scoped to the actor's own records.
	// Record scoping is enforced by the caller; this package only answers the
	// unscoped allow/deny.
	LevelSelf PermissionLevel = "SELF"
	// LevelOwn grants read/view scoped to the actor's own records. Same
	// scoping caveat as LevelSelf.
	LevelOwn PermissionLevel = "OWN"
)

// levelActions is the total mapping from permission level to allowed
// actions. It is pure data; the same (level, action) pair always yields the
// same answer.
var levelActions = map[PermissionLevel]map[Action]bool{
	LevelFull: {
		ActionCreate: true, ActionRead: true, ActionUpdate: true,
		ActionDelete: true, ActionApprove: true, ActionRequest: true,
		ActionView: true,
	},
	LevelManage: {
		ActionCreate: true, ActionRead: true, ActionUpdate: true,
	},
	LevelApprove: {
		ActionRead: true, ActionApprove: true,
	},
	LevelView: {
		ActionRead: true, ActionView: true,
	},
	LevelRequest: {
		ActionRead: true, ActionRequest: true,
	},
	LevelSelf: {
		ActionCreate: true, ActionRead: true, ActionUpdate: true,
	},
	LevelOwn: {
		ActionRead: true, ActionView: true,
	},
}

// LevelAllows reports whether the given permission level grants the action.
// Unknown levels or actions deny.
func LevelAllows(level PermissionLevel, action Action) bool {
	return levelActions[level][action]
}

// Valid reports whether l is a recognized permission level.
func (l PermissionLevel) Valid() bool {
	_, ok := levelActions[l]
	return ok
}
