package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"

	"authz-service/internal/models"
	"authz-service/internal/repository"
	"authz-service/internal/workflow"
)

// ErrRequestNotFound is returned when the request id matches nothing.
var ErrRequestNotFound = errors.New("approval request not found")

// ApprovalService orchestrates the workflow core against the request store:
// load snapshot, run the pure transition, save under the loaded version.
// It never retries; a stale save propagates so the caller can re-fetch.
type ApprovalService struct {
	repo      repository.RequestRepositoryInterface
	machine   *workflow.Machine
	directory workflow.Directory
	logger    *logrus.Logger
}

// NewApprovalService creates a new ApprovalService. The directory stamps the
// actor's role onto audit entries; nil leaves the role blank.
func NewApprovalService(repo repository.RequestRepositoryInterface, machine *workflow.Machine, directory workflow.Directory, logger *logrus.Logger) *ApprovalService {
	if logger == nil {
		logger = logrus.New()
	}
	return &ApprovalService{repo: repo, machine: machine, directory: directory, logger: logger}
}

// SubmitInput is the transport-facing shape of a submission.
type SubmitInput struct {
	RequestType string          `json:"requestType" binding:"required"`
	Payload     json.RawMessage `json:"payload,omitempty"`
	ProjectCode string          `json:"projectCode,omitempty"`
	Department  string          `json:"department,omitempty"`
	Amount      float64         `json:"amount,omitempty"`
}

// SubmitResult carries the created request plus the blocked condition so
// transports can tell "created" apart from "created, nobody can approve".
type SubmitResult struct {
	Request *models.ApprovalRequest `json:"request"`
	Blocked bool                    `json:"blocked"`
}

// Submit opens a request for the submitter and persists the initial
// snapshot.
func (s *ApprovalService) Submit(ctx context.Context, submitterID uuid.UUID, input SubmitInput) (*SubmitResult, error) {
	req, blocked, err := s.machine.Submit(ctx, workflow.SubmitInput{
		Type:    models.RequestType(input.RequestType),
		Payload: input.Payload,
		Submitter: workflow.SubmitterContext{
			EmployeeID:  submitterID,
			ProjectCode: input.ProjectCode,
			Department:  input.Department,
			Amount:      input.Amount,
		},
	})
	if err != nil {
		return nil, err
	}

	if err := s.repo.CreateRequest(ctx, req); err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	s.audit(ctx, req, models.AuditEventSubmitted, &submitterID, nil)

	if blocked {
		s.logger.WithFields(logrus.Fields{
			"request_id":   req.ID,
			"request_type": req.RequestType,
		}).Warn("request submitted with no eligible approver at level 1")
	}

	return &SubmitResult{Request: req, Blocked: blocked}, nil
}

// Approve loads the request, applies the approve transition as actingID and
// saves the new snapshot. A concurrent decision surfaces as
// workflow.ErrStaleState.
func (s *ApprovalService) Approve(ctx context.Context, requestID, actingID uuid.UUID, notes string) (*models.ApprovalRequest, error) {
	var approved *models.ApprovalRequest

	err := s.repo.WithTransaction(ctx, func(txRepo repository.RequestRepositoryInterface) error {
		req, err := txRepo.GetRequestByID(ctx, requestID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrRequestNotFound
			}
			return err
		}

		decidedLevel := req.CurrentLevel
		decidedLevelName := req.CurrentLevelName

		next, blocked, err := s.machine.Approve(ctx, req, actingID)
		if err != nil {
			return err
		}

		decision := &models.ApprovalDecision{
			RequestID:  req.ID,
			ApproverID: actingID,
			Level:      decidedLevel,
			LevelName:  decidedLevelName,
			Decision:   models.DecisionApproved,
			Notes:      notes,
		}
		if err := txRepo.CreateDecision(ctx, decision); err != nil {
			return fmt.Errorf("failed to create decision: %w", err)
		}

		if err := txRepo.SaveRequest(ctx, next, req.Version); err != nil {
			if errors.Is(err, repository.ErrVersionConflict) {
				return workflow.ErrStaleState
			}
			return fmt.Errorf("failed to save request: %w", err)
		}

		if blocked {
			s.logger.WithFields(logrus.Fields{
				"request_id": next.ID,
				"level":      next.CurrentLevel,
			}).Warn("request advanced to a level with no eligible approver")
		}

		approved = next
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.audit(ctx, approved, models.AuditEventApproved, &actingID, map[string]interface{}{
		"notes": notes,
		"level": approved.CurrentLevel,
	})
	return approved, nil
}

// Reject loads the request and applies the terminal reject transition. The
// reason is validated by the core; it must be non-empty.
func (s *ApprovalService) Reject(ctx context.Context, requestID, actingID uuid.UUID, reason string) (*models.ApprovalRequest, error) {
	var rejected *models.ApprovalRequest

	err := s.repo.WithTransaction(ctx, func(txRepo repository.RequestRepositoryInterface) error {
		req, err := txRepo.GetRequestByID(ctx, requestID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrRequestNotFound
			}
			return err
		}

		next, err := s.machine.Reject(ctx, req, actingID, reason)
		if err != nil {
			return err
		}

		decision := &models.ApprovalDecision{
			RequestID:  req.ID,
			ApproverID: actingID,
			Level:      req.CurrentLevel,
			LevelName:  req.CurrentLevelName,
			Decision:   models.DecisionRejected,
			Notes:      next.RejectionReason,
		}
		if err := txRepo.CreateDecision(ctx, decision); err != nil {
			return fmt.Errorf("failed to create decision: %w", err)
		}

		if err := txRepo.SaveRequest(ctx, next, req.Version); err != nil {
			if errors.Is(err, repository.ErrVersionConflict) {
				return workflow.ErrStaleState
			}
			return fmt.Errorf("failed to save request: %w", err)
		}

		rejected = next
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.audit(ctx, rejected, models.AuditEventRejected, &actingID, map[string]interface{}{
		"reason": rejected.RejectionReason,
		"level":  rejected.CurrentLevel,
	})
	return rejected, nil
}

// Cancel withdraws a still-pending request; only the requester may do it.
func (s *ApprovalService) Cancel(ctx context.Context, requestID, actingID uuid.UUID) (*models.ApprovalRequest, error) {
	var cancelled *models.ApprovalRequest

	err := s.repo.WithTransaction(ctx, func(txRepo repository.RequestRepositoryInterface) error {
		req, err := txRepo.GetRequestByID(ctx, requestID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrRequestNotFound
			}
			return err
		}

		next, err := s.machine.Cancel(req, actingID)
		if err != nil {
			return err
		}

		if err := txRepo.SaveRequest(ctx, next, req.Version); err != nil {
			if errors.Is(err, repository.ErrVersionConflict) {
				return workflow.ErrStaleState
			}
			return fmt.Errorf("failed to save request: %w", err)
		}

		cancelled = next
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.audit(ctx, cancelled, models.AuditEventCancelled, &actingID, nil)
	return cancelled, nil
}

// GetRequest retrieves a request by id.
func (s *ApprovalService) GetRequest(ctx context.Context, requestID uuid.UUID) (*models.ApprovalRequest, error) {
	req, err := s.repo.GetRequestByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrRequestNotFound
		}
		return nil, err
	}
	return req, nil
}

// ListForApprover lists requests awaiting the given approver.
func (s *ApprovalService) ListForApprover(ctx context.Context, approverID uuid.UUID, approverRole string, statusFilter string, limit, offset int) ([]models.ApprovalRequest, int64, error) {
	return s.repo.ListRequestsForApprover(ctx, approverID, approverRole, statusFilter, limit, offset)
}

// ListMyRequests lists requests submitted by an employee.
func (s *ApprovalService) ListMyRequests(ctx context.Context, requesterID uuid.UUID, limit, offset int) ([]models.ApprovalRequest, int64, error) {
	return s.repo.ListRequestsByRequester(ctx, requesterID, limit, offset)
}

// GetRequestHistory retrieves the audit history for a request.
func (s *ApprovalService) GetRequestHistory(ctx context.Context, requestID uuid.UUID) ([]models.ApprovalAuditLog, error) {
	return s.repo.GetRequestHistory(ctx, requestID)
}

func (s *ApprovalService) audit(ctx context.Context, req *models.ApprovalRequest, eventType string, actorID *uuid.UUID, metadata map[string]interface{}) {
	metadataJSON, _ := json.Marshal(metadata)

	// The actor's role at event time, best effort. Audit entries still get
	// written when the directory is down.
	var actorRole string
	if actorID != nil && s.directory != nil {
		if role, err := s.directory.RoleOf(ctx, *actorID); err == nil {
			actorRole = string(role)
		}
	}

	entry := &models.ApprovalAuditLog{
		RequestID: req.ID,
		EventType: eventType,
		ActorID:   actorID,
		ActorRole: actorRole,
		Metadata:  datatypes.JSON(metadataJSON),
	}
	if err := s.repo.CreateAuditLog(ctx, entry); err != nil {
		s.logger.WithError(err).WithField("request_id", req.ID).Warn("failed to write audit log")
	}
}
