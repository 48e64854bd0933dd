package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"authz-service/internal/models"
)

var (
	ErrNotFound        = errors.New("not found")
	ErrVersionConflict = errors.New("version conflict - record was modified by another request")
)

// RequestRepositoryInterface is the request store contract. The workflow
// core never touches it directly; the service layer loads a snapshot, runs
// the core transition, and saves the result under the version it loaded.
type RequestRepositoryInterface interface {
	CreateRequest(ctx context.Context, request *models.ApprovalRequest) error
	GetRequestByID(ctx context.Context, id uuid.UUID) (*models.ApprovalRequest, error)
	SaveRequest(ctx context.Context, request *models.ApprovalRequest, expectedVersion int) error
	ListRequestsForApprover(ctx context.Context, approverID uuid.UUID, approverRole string, statusFilter string, limit, offset int) ([]models.ApprovalRequest, int64, error)
	ListRequestsByRequester(ctx context.Context, requesterID uuid.UUID, limit, offset int) ([]models.ApprovalRequest, int64, error)
	CreateDecision(ctx context.Context, decision *models.ApprovalDecision) error
	CreateAuditLog(ctx context.Context, log *models.ApprovalAuditLog) error
	GetRequestHistory(ctx context.Context, requestID uuid.UUID) ([]models.ApprovalAuditLog, error)
	WithTransaction(ctx context.Context, fn func(txRepo RequestRepositoryInterface) error) error
}

// RequestRepository is the postgres-backed request store.
type RequestRepository struct {
	db *gorm.DB
}

var _ RequestRepositoryInterface = (*RequestRepository)(nil)

// NewRequestRepository creates a new RequestRepository.
func NewRequestRepository(db *gorm.DB) *RequestRepository {
	return &RequestRepository{db: db}
}

// CreateRequest persists a newly submitted request.
func (r *RequestRepository) CreateRequest(ctx context.Context, request *models.ApprovalRequest) error {
	return r.db.WithContext(ctx).Create(request).Error
}

// GetRequestByID retrieves a request snapshot by id. The snapshot carries
// its version; SaveRequest checks it on write-back.
func (r *RequestRepository) GetRequestByID(ctx context.Context, id uuid.UUID) (*models.ApprovalRequest, error) {
	var request models.ApprovalRequest
	err := r.db.WithContext(ctx).
		Preload("Decisions").
		Where("id = ?", id).
		First(&request).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &request, nil
}

// SaveRequest writes a transitioned snapshot back under an optimistic
// version check. Zero rows affected means the row moved on since the
// snapshot was loaded; the caller gets ErrVersionConflict and must re-fetch.
func (r *RequestRepository) SaveRequest(ctx context.Context, request *models.ApprovalRequest, expectedVersion int) error {
	result := r.db.WithContext(ctx).Model(request).
		Where("id = ? AND version = ?", request.ID, expectedVersion).
		Updates(map[string]interface{}{
			"status":             request.Status,
			"current_level":      request.CurrentLevel,
			"current_level_name": request.CurrentLevelName,
			"next_approver_id":   request.NextApproverID,
			"next_approver_role": request.NextApproverRole,
			"past_approvers":     request.PastApprovers,
			"rejection_reason":   request.RejectionReason,
			"version":            expectedVersion + 1,
			"updated_at":         time.Now(),
		})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrVersionConflict
	}

	request.Version = expectedVersion + 1
	return nil
}

// ListRequestsForApprover retrieves requests awaiting the given approver: a
// direct assignment by id, or a role-level slot matching the approver's
// role. Status filter "" or "all" returns every status.
func (r *RequestRepository) ListRequestsForApprover(ctx context.Context, approverID uuid.UUID, approverRole string, statusFilter string, limit, offset int) ([]models.ApprovalRequest, int64, error) {
	var requests []models.ApprovalRequest
	var total int64

	query := r.db.WithContext(ctx).Model(&models.ApprovalRequest{}).
		Where("next_approver_id = ? OR (next_approver_id IS NULL AND next_approver_role = ?) OR next_approver_role = ?",
			approverID, approverRole, approverRole)

	if statusFilter != "" && statusFilter != "all" {
		query = query.Where("status = ?", statusFilter)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&requests).Error

	return requests, total, err
}

// ListRequestsByRequester retrieves requests submitted by a specific
// employee.
func (r *RequestRepository) ListRequestsByRequester(ctx context.Context, requesterID uuid.UUID, limit, offset int) ([]models.ApprovalRequest, int64, error) {
	var requests []models.ApprovalRequest
	var total int64

	query := r.db.WithContext(ctx).Model(&models.ApprovalRequest{}).
		Where("requested_by = ?", requesterID)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&requests).Error

	return requests, total, err
}

// CreateDecision records one approver's decision.
func (r *RequestRepository) CreateDecision(ctx context.Context, decision *models.ApprovalDecision) error {
	return r.db.WithContext(ctx).Create(decision).Error
}

// CreateAuditLog creates an audit log entry.
func (r *RequestRepository) CreateAuditLog(ctx context.Context, log *models.ApprovalAuditLog) error {
	return r.db.WithContext(ctx).Create(log).Error
}

// GetRequestHistory retrieves audit history for a request.
func (r *RequestRepository) GetRequestHistory(ctx context.Context, requestID uuid.UUID) ([]models.ApprovalAuditLog, error) {
	var logs []models.ApprovalAuditLog
	err := r.db.WithContext(ctx).
		Where("request_id = ?", requestID).
		Order("created_at ASC").
		Find(&logs).Error
	return logs, err
}

// WithTransaction executes fn within a database transaction, passing a
// repository bound to the transaction.
func (r *RequestRepository) WithTransaction(ctx context.Context, fn func(txRepo RequestRepositoryInterface) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&RequestRepository{db: tx})
	})
}
