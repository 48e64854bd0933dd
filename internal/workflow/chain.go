package workflow

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"authz-service/internal/authz"
	"authz-service/internal/models"
)

// SelectorKind says how a level's approver is chosen.
type SelectorKind string

const (
	// SelectorManager resolves to the submitter's direct manager.
	SelectorManager SelectorKind = "manager"
	// SelectorRole means any employee currently holding the role may act.
	SelectorRole SelectorKind = "role"
	// SelectorEmployee pins the level to one specific employee.
	SelectorEmployee SelectorKind = "employee"
)

// ApprovalLevel is one step of a request's chain. Level numbers are
// contiguous starting at 1. The chain is frozen into the request at
// creation; only selector resolution stays live.
type ApprovalLevel struct {
	Level      int          `json:"level"`
	Name       string       `json:"name"`
	Kind       SelectorKind `json:"kind"`
	Role       authz.Role   `json:"role,omitempty"`
	EmployeeID *uuid.UUID   `json:"employeeId,omitempty"`
}

// SubmitterContext carries the org data chain templates key off.
type SubmitterContext struct {
	EmployeeID  uuid.UUID
	ProjectCode string
	Department  string
	Amount      float64
}

// chainTemplates fixes the level sequence per request type. Level count and
// selector kind are static properties of the type; only who occupies a slot
// is resolved per instance.
var chainTemplates = map[models.RequestType][]ApprovalLevel{
	models.TypeLeave: {
		{Level: 1, Name: "Direct Manager", Kind: SelectorManager},
		{Level: 2, Name: "HR Manager", Kind: SelectorRole, Role: authz.RoleHRManager},
	},
	models.TypeLoan: {
		{Level: 1, Name: "Direct Manager", Kind: SelectorManager},
		{Level: 2, Name: "HR Manager", Kind: SelectorRole, Role: authz.RoleHRManager},
		{Level: 3, Name: "Finance Manager", Kind: SelectorRole, Role: authz.RoleFinanceManager},
	},
	models.TypeAllowance: {
		{Level: 1, Name: "HR Manager", Kind: SelectorRole, Role: authz.RoleHRManager},
		{Level: 2, Name: "Finance Manager", Kind: SelectorRole, Role: authz.RoleFinanceManager},
	},
	models.TypeTransfer: {
		{Level: 1, Name: "Direct Manager", Kind: SelectorManager},
		{Level: 2, Name: "HR Manager", Kind: SelectorRole, Role: authz.RoleHRManager},
	},
	models.TypePayment: {
		{Level: 1, Name: "Direct Manager", Kind: SelectorManager},
		{Level: 2, Name: "Finance Manager", Kind: SelectorRole, Role: authz.RoleFinanceManager},
	},
	models.TypePostponement: {
		{Level: 1, Name: "HR Manager", Kind: SelectorRole, Role: authz.RoleHRManager},
		{Level: 2, Name: "Finance Manager", Kind: SelectorRole, Role: authz.RoleFinanceManager},
	},
	models.TypeLabor: {
		{Level: 1, Name: "Regional Project Manager", Kind: SelectorRole, Role: authz.RoleRegionalProjectManager},
		{Level: 2, Name: "General Manager", Kind: SelectorRole, Role: authz.RoleGeneralManager},
	},
}

// ChainResolver builds approval chains and resolves the concrete approver
// for a level at the moment it becomes current.
type ChainResolver struct {
	directory Directory
}

// NewChainResolver creates a chain resolver over the given directory.
func NewChainResolver(directory Directory) *ChainResolver {
	return &ChainResolver{directory: directory}
}

// BuildChain returns the ordered approval levels for a request type. Manager
// levels are kept symbolic here; ResolveApprover turns them into a person
// when the level becomes current, so org changes between submission and
// approval are honored.
func (r *ChainResolver) BuildChain(requestType models.RequestType, sub SubmitterContext) ([]ApprovalLevel, error) {
	template, ok := chainTemplates[requestType]
	if !ok {
		return nil, fmt.Errorf("%w: unknown request type %q", ErrValidationFailed, requestType)
	}
	chain := make([]ApprovalLevel, len(template))
	copy(chain, template)
	return chain, nil
}

// Resolution is the outcome of resolving a level's selector: either a
// specific next approver, or a role any holder of which may act. Approver is
// nil for role levels with more than one holder.
type Resolution struct {
	ApproverID *uuid.UUID
	Role       authz.Role
}

// ResolveApprover resolves the approver slot for a level. A role level with
// zero eligible employees returns ErrNoEligibleApprover; the request must
// stay pending, reported as blocked rather than advanced.
func (r *ChainResolver) ResolveApprover(ctx context.Context, level ApprovalLevel, requestedBy uuid.UUID, hints ScopeHints) (Resolution, error) {
	switch level.Kind {
	case SelectorEmployee:
		if level.EmployeeID == nil {
			return Resolution{}, fmt.Errorf("%w: employee selector without employee id at level %d", ErrValidationFailed, level.Level)
		}
		return Resolution{ApproverID: level.EmployeeID}, nil

	case SelectorManager:
		managerID, err := r.directory.ManagerOf(ctx, requestedBy)
		if err != nil {
			return Resolution{}, fmt.Errorf("%w: %v", ErrDirectoryUnavailable, err)
		}
		if managerID == nil {
			return Resolution{}, ErrNoEligibleApprover
		}
		return Resolution{ApproverID: managerID}, nil

	case SelectorRole:
		holders, err := r.directory.EmployeesWithRole(ctx, level.Role, hints)
		if err != nil {
			return Resolution{}, fmt.Errorf("%w: %v", ErrDirectoryUnavailable, err)
		}
		if len(holders) == 0 {
			return Resolution{}, ErrNoEligibleApprover
		}
		if len(holders) == 1 {
			return Resolution{ApproverID: &holders[0], Role: level.Role}, nil
		}
		return Resolution{Role: level.Role}, nil

	default:
		return Resolution{}, fmt.Errorf("%w: unknown selector kind %q", ErrValidationFailed, level.Kind)
	}
}
