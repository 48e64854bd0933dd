package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/datatypes"
)

// RequestType identifies the business transaction a request carries. The
// payload stays opaque; the type only selects the approval chain template.
type RequestType string

const (
	TypeLeave        RequestType = "LEAVE"
	TypeLoan         RequestType = "LOAN"
	TypeAllowance    RequestType = "ALLOWANCE"
	TypeTransfer     RequestType = "TRANSFER"
	TypePayment      RequestType = "PAYMENT"
	TypePostponement RequestType = "POSTPONEMENT"
	TypeLabor        RequestType = "LABOR"
)

// AllRequestTypes lists every workflow-bearing request type.
var AllRequestTypes = []RequestType{
	TypeLeave,
	TypeLoan,
	TypeAllowance,
	TypeTransfer,
	TypePayment,
	TypePostponement,
	TypeLabor,
}

// Valid reports whether t is a recognized request type.
func (t RequestType) Valid() bool {
	for _, known := range AllRequestTypes {
		if t == known {
			return true
		}
	}
	return false
}

// Request status constants. NEW and PENDING at level 1 are equivalent entry
// states; APPROVED, REJECTED and CANCELLED are terminal.
const (
	StatusNew       = "new"
	StatusPending   = "pending"
	StatusApproved  = "approved"
	StatusRejected  = "rejected"
	StatusCancelled = "cancelled"
)

// ApprovalRequest is the generic envelope every workflow-bearing business
// object shares. State transitions never mutate a loaded row in place: the
// workflow package returns a new snapshot and the repository persists it
// under an optimistic version check.
type ApprovalRequest struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	RequestType string    `gorm:"type:varchar(30);not null;index" json:"requestType"`
	RequestedBy uuid.UUID `gorm:"type:uuid;not null;index" json:"requestedBy"`
	RequestDate time.Time `gorm:"not null" json:"requestDate"`

	// Submitter org scope, frozen at creation. Narrows role-holder lookups
	// for every level of this request, at assignment and at decision time.
	ProjectCode string `gorm:"type:varchar(50)" json:"projectCode,omitempty"`
	Department  string `gorm:"type:varchar(100)" json:"department,omitempty"`
	Status      string    `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	Version     int       `gorm:"not null;default:1" json:"version"` // Optimistic locking

	// Approval chain tracking. The chain is frozen at creation; selector
	// resolution stays live.
	Chain            datatypes.JSON `gorm:"type:jsonb;not null" json:"chain"`
	CurrentLevel     int            `gorm:"not null;default:1" json:"currentLevel"`
	CurrentLevelName string         `gorm:"type:varchar(100)" json:"currentLevelName"`
	NextApproverID   *uuid.UUID     `gorm:"type:uuid" json:"nextApproverId,omitempty"`
	NextApproverRole string         `gorm:"type:varchar(50)" json:"nextApproverRole,omitempty"`
	PastApprovers    pq.StringArray `gorm:"type:uuid[]" json:"pastApprovers"`

	// Set iff status is rejected.
	RejectionReason string `gorm:"type:text" json:"rejectionReason,omitempty"`

	// Type-specific fields; opaque to the workflow core.
	Payload datatypes.JSON `gorm:"type:jsonb" json:"payload,omitempty"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updatedAt"`

	// Relations
	Decisions []ApprovalDecision `gorm:"foreignKey:RequestID" json:"decisions,omitempty"`
}

func (ApprovalRequest) TableName() string {
	return "approval_requests"
}

// IsTerminal returns true if the request can accept no further transitions.
func (r *ApprovalRequest) IsTerminal() bool {
	return r.Status == StatusApproved ||
		r.Status == StatusRejected ||
		r.Status == StatusCancelled
}

// IsActionable returns true while the request is awaiting a decision at its
// current level.
func (r *ApprovalRequest) IsActionable() bool {
	return r.Status == StatusNew || r.Status == StatusPending
}
