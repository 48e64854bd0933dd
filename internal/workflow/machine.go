package workflow

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/datatypes"

	"authz-service/internal/models"
)

// stagedTypes enter the workflow at NEW instead of PENDING. Both states are
// equivalent entry states for level-1 decisions.
var stagedTypes = map[models.RequestType]bool{
	models.TypeLoan:    true,
	models.TypePayment: true,
}

// Machine drives the generic approval lifecycle. It holds no request state:
// every operation maps the snapshot it is handed to a new snapshot, and
// persistence is the caller's job. Concurrent decisions on the same request
// are serialized by the store's version check, not here.
type Machine struct {
	chains    *ChainResolver
	directory Directory
}

// NewMachine creates a state machine over the given chain resolver and
// directory.
func NewMachine(chains *ChainResolver, directory Directory) *Machine {
	return &Machine{chains: chains, directory: directory}
}

// SubmitInput is what a caller provides to open a request.
type SubmitInput struct {
	Type      models.RequestType
	Payload   json.RawMessage
	Submitter SubmitterContext
}

// Submit builds the chain for the request type and returns the initial
// snapshot at level 1. blocked reports the "no eligible approver" condition:
// the request is still created, pending with a null next approver.
func (m *Machine) Submit(ctx context.Context, in SubmitInput) (req *models.ApprovalRequest, blocked bool, err error) {
	if !in.Type.Valid() {
		return nil, false, fmt.Errorf("%w: unknown request type %q", ErrValidationFailed, in.Type)
	}

	chain, err := m.chains.BuildChain(in.Type, in.Submitter)
	if err != nil {
		return nil, false, err
	}

	chainJSON, err := json.Marshal(chain)
	if err != nil {
		return nil, false, fmt.Errorf("failed to marshal chain: %w", err)
	}

	status := models.StatusPending
	if stagedTypes[in.Type] {
		status = models.StatusNew
	}

	req = &models.ApprovalRequest{
		RequestType:      string(in.Type),
		RequestedBy:      in.Submitter.EmployeeID,
		RequestDate:      time.Now().UTC(),
		ProjectCode:      in.Submitter.ProjectCode,
		Department:       in.Submitter.Department,
		Status:           status,
		Version:          1,
		Chain:            datatypes.JSON(chainJSON),
		CurrentLevel:     1,
		CurrentLevelName: chain[0].Name,
		Payload:          datatypes.JSON(in.Payload),
	}

	blocked, err = m.assignApprover(ctx, req, chain[0])
	if err != nil {
		return nil, false, err
	}
	return req, blocked, nil
}

// Approve records an approval by the acting employee at the request's
// current level. On intermediate levels the snapshot advances one level and
// the next approver is re-resolved live; on the last level the request
// becomes APPROVED. blocked reports that the new current level has no
// eligible approver.
func (m *Machine) Approve(ctx context.Context, req *models.ApprovalRequest, actorID uuid.UUID) (next *models.ApprovalRequest, blocked bool, err error) {
	if !req.IsActionable() {
		return nil, false, fmt.Errorf("%w: status is %q", ErrInvalidTransition, req.Status)
	}

	chain, err := DecodeChain(req)
	if err != nil {
		return nil, false, err
	}
	level := chain[req.CurrentLevel-1]

	if err := m.authorize(ctx, req, level, actorID); err != nil {
		return nil, false, err
	}

	snapshot := *req
	snapshot.PastApprovers = append(append(pq.StringArray{}, req.PastApprovers...), actorID.String())

	if req.CurrentLevel == len(chain) {
		snapshot.Status = models.StatusApproved
		snapshot.NextApproverID = nil
		snapshot.NextApproverRole = ""
		return &snapshot, false, nil
	}

	nextLevel := chain[req.CurrentLevel]
	snapshot.Status = models.StatusPending
	snapshot.CurrentLevel = req.CurrentLevel + 1
	snapshot.CurrentLevelName = nextLevel.Name

	blocked, err = m.assignApprover(ctx, &snapshot, nextLevel)
	if err != nil {
		return nil, false, err
	}
	return &snapshot, blocked, nil
}

// Reject terminates the request at its current level. The reason is
// mandatory and non-empty; the core never substitutes a placeholder.
func (m *Machine) Reject(ctx context.Context, req *models.ApprovalRequest, actorID uuid.UUID, reason string) (*models.ApprovalRequest, error) {
	if !req.IsActionable() {
		return nil, fmt.Errorf("%w: status is %q", ErrInvalidTransition, req.Status)
	}
	if strings.TrimSpace(reason) == "" {
		return nil, fmt.Errorf("%w: rejection reason is required", ErrValidationFailed)
	}

	chain, err := DecodeChain(req)
	if err != nil {
		return nil, err
	}
	level := chain[req.CurrentLevel-1]

	if err := m.authorize(ctx, req, level, actorID); err != nil {
		return nil, err
	}

	snapshot := *req
	snapshot.Status = models.StatusRejected
	snapshot.RejectionReason = strings.TrimSpace(reason)
	snapshot.NextApproverID = nil
	snapshot.NextApproverRole = ""
	return &snapshot, nil
}

// Cancel withdraws a still-pending request. Only the requester may cancel.
func (m *Machine) Cancel(req *models.ApprovalRequest, actorID uuid.UUID) (*models.ApprovalRequest, error) {
	if !req.IsActionable() {
		return nil, fmt.Errorf("%w: status is %q", ErrInvalidTransition, req.Status)
	}
	if req.RequestedBy != actorID {
		return nil, fmt.Errorf("%w: only the requester can cancel", ErrUnauthorized)
	}

	snapshot := *req
	snapshot.Status = models.StatusCancelled
	snapshot.NextApproverID = nil
	snapshot.NextApproverRole = ""
	return &snapshot, nil
}

// IsTerminal reports whether the request accepts no further transitions.
func (m *Machine) IsTerminal(req *models.ApprovalRequest) bool {
	return req.IsTerminal()
}

// authorize checks that the actor matches the level's selector: the resolved
// approver, or any current in-scope holder of the level's role. Resolution
// is live and uses the scope frozen on the request, so an approver who
// changed roles or projects since submission is judged by the org as it is
// now.
func (m *Machine) authorize(ctx context.Context, req *models.ApprovalRequest, level ApprovalLevel, actorID uuid.UUID) error {
	hints := requestScope(req)
	res, err := m.chains.ResolveApprover(ctx, level, req.RequestedBy, hints)
	if err != nil {
		return err
	}

	if res.ApproverID != nil && *res.ApproverID == actorID {
		return nil
	}
	if level.Kind == SelectorRole {
		holders, err := m.directory.EmployeesWithRole(ctx, level.Role, hints)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrDirectoryUnavailable, err)
		}
		for _, id := range holders {
			if id == actorID {
				return nil
			}
		}
	}
	return ErrUnauthorized
}

// requestScope reads the lookup hints frozen on the request at submission.
func requestScope(req *models.ApprovalRequest) ScopeHints {
	return ScopeHints{ProjectCode: req.ProjectCode, Department: req.Department}
}

// assignApprover resolves the level's approver onto the snapshot. A level
// with nobody to assign leaves the approver null and reports blocked; the
// request stays pending rather than advancing.
func (m *Machine) assignApprover(ctx context.Context, req *models.ApprovalRequest, level ApprovalLevel) (blocked bool, err error) {
	res, err := m.chains.ResolveApprover(ctx, level, req.RequestedBy, requestScope(req))
	if err != nil {
		if errors.Is(err, ErrNoEligibleApprover) {
			req.NextApproverID = nil
			req.NextApproverRole = string(level.Role)
			return true, nil
		}
		return false, err
	}
	req.NextApproverID = res.ApproverID
	req.NextApproverRole = string(res.Role)
	return false, nil
}

// DecodeChain reads the frozen chain off a request and validates that the
// current level points inside it.
func DecodeChain(req *models.ApprovalRequest) ([]ApprovalLevel, error) {
	var chain []ApprovalLevel
	if err := json.Unmarshal(req.Chain, &chain); err != nil {
		return nil, fmt.Errorf("%w: malformed chain: %v", ErrValidationFailed, err)
	}
	if len(chain) == 0 || req.CurrentLevel < 1 || req.CurrentLevel > len(chain) {
		return nil, fmt.Errorf("%w: current level %d outside chain of %d levels", ErrValidationFailed, req.CurrentLevel, len(chain))
	}
	return chain, nil
}
