package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// ApprovalDecision records one approver's decision at one level of a
// request's chain.
type ApprovalDecision struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	RequestID  uuid.UUID `gorm:"type:uuid;not null;index" json:"requestId"`
	ApproverID uuid.UUID `gorm:"type:uuid;not null;index" json:"approverId"`
	Level      int       `gorm:"not null" json:"level"`
	LevelName  string    `gorm:"type:varchar(100)" json:"levelName,omitempty"`
	Decision   string    `gorm:"type:varchar(20);not null" json:"decision"` // approved, rejected
	Notes      string    `gorm:"type:text" json:"notes,omitempty"`
	DecidedAt  time.Time `gorm:"autoCreateTime" json:"decidedAt"`
}

func (ApprovalDecision) TableName() string {
	return "approval_decisions"
}

// Decision constants
const (
	DecisionApproved = "approved"
	DecisionRejected = "rejected"
)

// ApprovalAuditLog represents an audit trail entry for a request.
type ApprovalAuditLog struct {
	ID        uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	RequestID uuid.UUID      `gorm:"type:uuid;not null;index" json:"requestId"`
	EventType string         `gorm:"type:varchar(50);not null;index" json:"eventType"`
	ActorID   *uuid.UUID     `gorm:"type:uuid" json:"actorId,omitempty"`
	ActorRole string         `gorm:"type:varchar(50)" json:"actorRole,omitempty"`
	Metadata  datatypes.JSON `gorm:"type:jsonb" json:"metadata,omitempty"`
	CreatedAt time.Time      `gorm:"autoCreateTime" json:"createdAt"`
}

func (ApprovalAuditLog) TableName() string {
	return "approval_audit_log"
}

// AuditEventType constants
const (
	AuditEventSubmitted = "submitted"
	AuditEventApproved  = "approved"
	AuditEventRejected  = "rejected"
	AuditEventCancelled = "cancelled"
)
