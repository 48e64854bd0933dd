package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"authz-service/internal/middleware"
	"authz-service/internal/services"
	"authz-service/internal/workflow"
)

// ApprovalHandler handles HTTP requests for approval workflow operations.
type ApprovalHandler struct {
	service *services.ApprovalService
}

// NewApprovalHandler creates a new ApprovalHandler.
func NewApprovalHandler(service *services.ApprovalService) *ApprovalHandler {
	return &ApprovalHandler{service: service}
}

// Submit opens a new approval request for the authenticated employee.
func (h *ApprovalHandler) Submit(c *gin.Context) {
	actorID, ok := middleware.ActorID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	var input services.SubmitInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.service.Submit(c.Request.Context(), actorID, input)
	if err != nil {
		respondWorkflowError(c, err)
		return
	}

	c.JSON(http.StatusCreated, result)
}

// GetRequest retrieves a single request.
func (h *ApprovalHandler) GetRequest(c *gin.Context) {
	requestID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request id"})
		return
	}

	request, err := h.service.GetRequest(c.Request.Context(), requestID)
	if err != nil {
		respondWorkflowError(c, err)
		return
	}

	c.JSON(http.StatusOK, request)
}

// ListPending lists requests awaiting the authenticated approver.
func (h *ApprovalHandler) ListPending(c *gin.Context) {
	actorID, ok := middleware.ActorID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}
	role, _ := middleware.ActorRole(c)

	limit, offset := pagination(c)
	statusFilter := c.DefaultQuery("status", "pending")

	requests, total, err := h.service.ListForApprover(c.Request.Context(), actorID, string(role), statusFilter, limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "an internal error occurred"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"requests": requests,
		"total":    total,
		"limit":    limit,
		"offset":   offset,
	})
}

// ListMyRequests lists requests submitted by the authenticated employee.
func (h *ApprovalHandler) ListMyRequests(c *gin.Context) {
	actorID, ok := middleware.ActorID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	limit, offset := pagination(c)

	requests, total, err := h.service.ListMyRequests(c.Request.Context(), actorID, limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "an internal error occurred"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"requests": requests,
		"total":    total,
		"limit":    limit,
		"offset":   offset,
	})
}

type decisionInput struct {
	Notes  string `json:"notes,omitempty"`
	Reason string `json:"reason,omitempty"`
}

// Approve records an approval at the request's current level.
func (h *ApprovalHandler) Approve(c *gin.Context) {
	actorID, ok := middleware.ActorID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	requestID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request id"})
		return
	}

	var input decisionInput
	_ = c.ShouldBindJSON(&input)

	request, err := h.service.Approve(c.Request.Context(), requestID, actorID, input.Notes)
	if err != nil {
		respondWorkflowError(c, err)
		return
	}

	c.JSON(http.StatusOK, request)
}

// Reject terminates the request with a mandatory reason.
func (h *ApprovalHandler) Reject(c *gin.Context) {
	actorID, ok := middleware.ActorID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	requestID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request id"})
		return
	}

	var input decisionInput
	_ = c.ShouldBindJSON(&input)

	request, err := h.service.Reject(c.Request.Context(), requestID, actorID, input.Reason)
	if err != nil {
		respondWorkflowError(c, err)
		return
	}

	c.JSON(http.StatusOK, request)
}

// Cancel withdraws the authenticated employee's own pending request.
func (h *ApprovalHandler) Cancel(c *gin.Context) {
	actorID, ok := middleware.ActorID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	requestID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request id"})
		return
	}

	request, err := h.service.Cancel(c.Request.Context(), requestID, actorID)
	if err != nil {
		respondWorkflowError(c, err)
		return
	}

	c.JSON(http.StatusOK, request)
}

// GetHistory retrieves the audit history for a request.
func (h *ApprovalHandler) GetHistory(c *gin.Context) {
	requestID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request id"})
		return
	}

	history, err := h.service.GetRequestHistory(c.Request.Context(), requestID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "an internal error occurred"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"history": history})
}

// respondWorkflowError maps the workflow error taxonomy to HTTP statuses so
// the UI can tell "you're not the next approver" from "already decided".
func respondWorkflowError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrRequestNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, workflow.ErrUnauthorized):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error(), "code": "unauthorized"})
	case errors.Is(err, workflow.ErrInvalidTransition):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error(), "code": "invalid_transition"})
	case errors.Is(err, workflow.ErrValidationFailed):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "code": "validation_failed"})
	case errors.Is(err, workflow.ErrStaleState):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error(), "code": "stale_state"})
	case errors.Is(err, workflow.ErrNoEligibleApprover):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error(), "code": "no_eligible_approver"})
	case errors.Is(err, workflow.ErrDirectoryUnavailable):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error(), "code": "directory_unavailable"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "an internal error occurred"})
	}
}

func pagination(c *gin.Context) (limit, offset int) {
	limit, _ = strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ = strconv.Atoi(c.DefaultQuery("offset", "0"))
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
