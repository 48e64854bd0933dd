package workflow

import (
	"context"

	"github.com/google/uuid"

	"authz-service/internal/authz"
)

// Directory is the employee/org collaborator the chain resolver consults.
// Implementations must return normalized roles and report lookup failures
// as errors; the core treats a failed lookup as ErrDirectoryUnavailable,
// never as a default allow.
type Directory interface {
	// RoleOf returns the canonical role of an employee.
	RoleOf(ctx context.Context, employeeID uuid.UUID) (authz.Role, error)

	// EmployeesWithRole returns the ids of active employees holding the role.
	// scopeHints (project code, department) narrow the search where the org
	// assigns role holders per scope; implementations may ignore hints they
	// do not index.
	EmployeesWithRole(ctx context.Context, role authz.Role, hints ScopeHints) ([]uuid.UUID, error)

	// ManagerOf returns the direct manager of an employee. A nil id with a
	// nil error means the employee has no manager on record.
	ManagerOf(ctx context.Context, employeeID uuid.UUID) (*uuid.UUID, error)
}

// ScopeHints narrows role-holder lookups to the submitter's org context.
type ScopeHints struct {
	ProjectCode string
	Department  string
}
