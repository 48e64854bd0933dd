package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"

	"authz-service/internal/authz"
	"authz-service/internal/models"
	"authz-service/internal/repository"
	"authz-service/internal/services"
	"authz-service/internal/workflow"
)

// MockRequestRepository is a mock implementation of RequestRepositoryInterface
type MockRequestRepository struct {
	mock.Mock
}

var _ repository.RequestRepositoryInterface = (*MockRequestRepository)(nil)

func (m *MockRequestRepository) CreateRequest(ctx context.Context, request *models.ApprovalRequest) error {
	args := m.Called(ctx, request)
	if args.Error(0) == nil {
		request.ID = uuid.New()
	}
	return args.Error(0)
}

func (m *MockRequestRepository) GetRequestByID(ctx context.Context, id uuid.UUID) (*models.ApprovalRequest, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ApprovalRequest), args.Error(1)
}

func (m *MockRequestRepository) SaveRequest(ctx context.Context, request *models.ApprovalRequest, expectedVersion int) error {
	args := m.Called(ctx, request, expectedVersion)
	return args.Error(0)
}

func (m *MockRequestRepository) ListRequestsForApprover(ctx context.Context, approverID uuid.UUID, approverRole string, statusFilter string, limit, offset int) ([]models.ApprovalRequest, int64, error) {
	args := m.Called(ctx, approverID, approverRole, statusFilter, limit, offset)
	return args.Get(0).([]models.ApprovalRequest), args.Get(1).(int64), args.Error(2)
}

func (m *MockRequestRepository) ListRequestsByRequester(ctx context.Context, requesterID uuid.UUID, limit, offset int) ([]models.ApprovalRequest, int64, error) {
	args := m.Called(ctx, requesterID, limit, offset)
	return args.Get(0).([]models.ApprovalRequest), args.Get(1).(int64), args.Error(2)
}

func (m *MockRequestRepository) CreateDecision(ctx context.Context, decision *models.ApprovalDecision) error {
	args := m.Called(ctx, decision)
	return args.Error(0)
}

func (m *MockRequestRepository) CreateAuditLog(ctx context.Context, log *models.ApprovalAuditLog) error {
	args := m.Called(ctx, log)
	return args.Error(0)
}

func (m *MockRequestRepository) GetRequestHistory(ctx context.Context, requestID uuid.UUID) ([]models.ApprovalAuditLog, error) {
	args := m.Called(ctx, requestID)
	return args.Get(0).([]models.ApprovalAuditLog), args.Error(1)
}

func (m *MockRequestRepository) WithTransaction(ctx context.Context, fn func(txRepo repository.RequestRepositoryInterface) error) error {
	args := m.Called(ctx, fn)
	if args.Error(0) != nil {
		return args.Error(0)
	}
	return fn(m)
}

// MockDirectory is a mock implementation of workflow.Directory
type MockDirectory struct {
	mock.Mock
}

var _ workflow.Directory = (*MockDirectory)(nil)

func (m *MockDirectory) RoleOf(ctx context.Context, employeeID uuid.UUID) (authz.Role, error) {
	args := m.Called(ctx, employeeID)
	return args.Get(0).(authz.Role), args.Error(1)
}

func (m *MockDirectory) EmployeesWithRole(ctx context.Context, role authz.Role, hints workflow.ScopeHints) ([]uuid.UUID, error) {
	args := m.Called(ctx, role, hints)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]uuid.UUID), args.Error(1)
}

func (m *MockDirectory) ManagerOf(ctx context.Context, employeeID uuid.UUID) (*uuid.UUID, error) {
	args := m.Called(ctx, employeeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*uuid.UUID), args.Error(1)
}

func setupRouter(repo *MockRequestRepository, dir *MockDirectory, actorID uuid.UUID, actorRole authz.Role) *gin.Engine {
	gin.SetMode(gin.TestMode)

	machine := workflow.NewMachine(workflow.NewChainResolver(dir), dir)
	service := services.NewApprovalService(repo, machine, dir, nil)
	handler := NewApprovalHandler(service)

	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set("actor_id", actorID)
		c.Set("actor_role", actorRole)
		c.Next()
	})
	router.POST("/approvals", handler.Submit)
	router.GET("/approvals/pending", handler.ListPending)
	router.GET("/approvals/:id", handler.GetRequest)
	router.POST("/approvals/:id/approve", handler.Approve)
	router.POST("/approvals/:id/reject", handler.Reject)
	router.DELETE("/approvals/:id", handler.Cancel)
	return router
}

func pendingLeave(submitter, manager uuid.UUID) *models.ApprovalRequest {
	chain := []workflow.ApprovalLevel{
		{Level: 1, Name: "Direct Manager", Kind: workflow.SelectorManager},
		{Level: 2, Name: "HR Manager", Kind: workflow.SelectorRole, Role: authz.RoleHRManager},
	}
	chainJSON, _ := json.Marshal(chain)
	return &models.ApprovalRequest{
		ID:               uuid.New(),
		RequestType:      string(models.TypeLeave),
		RequestedBy:      submitter,
		Status:           models.StatusPending,
		Version:          1,
		Chain:            datatypes.JSON(chainJSON),
		CurrentLevel:     1,
		CurrentLevelName: "Direct Manager",
		NextApproverID:   &manager,
	}
}

func TestSubmitEndpoint_Created(t *testing.T) {
	submitter := uuid.New()
	manager := uuid.New()

	repo := new(MockRequestRepository)
	dir := new(MockDirectory)
	dir.On("ManagerOf", mock.Anything, submitter).Return(&manager, nil)
	dir.On("RoleOf", mock.Anything, submitter).Return(authz.RoleEmployee, nil)
	repo.On("CreateRequest", mock.Anything, mock.Anything).Return(nil)
	repo.On("CreateAuditLog", mock.Anything, mock.Anything).Return(nil)

	router := setupRouter(repo, dir, submitter, authz.RoleEmployee)

	body, _ := json.Marshal(map[string]interface{}{"requestType": "LEAVE"})
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, "/approvals", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var result services.SubmitResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.False(t, result.Blocked)
	assert.Equal(t, models.StatusPending, result.Request.Status)
}

func TestSubmitEndpoint_MissingTypeIsBadRequest(t *testing.T) {
	router := setupRouter(new(MockRequestRepository), new(MockDirectory), uuid.New(), authz.RoleEmployee)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, "/approvals", bytes.NewReader([]byte(`{}`)))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestApproveEndpoint_WrongActorIsForbidden(t *testing.T) {
	submitter := uuid.New()
	manager := uuid.New()
	stranger := uuid.New()
	request := pendingLeave(submitter, manager)

	repo := new(MockRequestRepository)
	dir := new(MockDirectory)
	repo.On("WithTransaction", mock.Anything, mock.Anything).Return(nil)
	repo.On("GetRequestByID", mock.Anything, request.ID).Return(request, nil)
	dir.On("ManagerOf", mock.Anything, submitter).Return(&manager, nil)

	router := setupRouter(repo, dir, stranger, authz.RoleEmployee)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, "/approvals/"+request.ID.String()+"/approve", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestApproveEndpoint_TerminalIsConflict(t *testing.T) {
	submitter := uuid.New()
	manager := uuid.New()
	request := pendingLeave(submitter, manager)
	request.Status = models.StatusApproved

	repo := new(MockRequestRepository)
	repo.On("WithTransaction", mock.Anything, mock.Anything).Return(nil)
	repo.On("GetRequestByID", mock.Anything, request.ID).Return(request, nil)

	router := setupRouter(repo, new(MockDirectory), manager, authz.RoleProjectManager)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, "/approvals/"+request.ID.String()+"/approve", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestRejectEndpoint_MissingReasonIsBadRequest(t *testing.T) {
	submitter := uuid.New()
	manager := uuid.New()
	request := pendingLeave(submitter, manager)

	repo := new(MockRequestRepository)
	dir := new(MockDirectory)
	repo.On("WithTransaction", mock.Anything, mock.Anything).Return(nil)
	repo.On("GetRequestByID", mock.Anything, request.ID).Return(request, nil)

	router := setupRouter(repo, dir, manager, authz.RoleProjectManager)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, "/approvals/"+request.ID.String()+"/reject", bytes.NewReader([]byte(`{"reason":"  "}`)))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetEndpoint_UnknownIDs(t *testing.T) {
	missing := uuid.New()

	repo := new(MockRequestRepository)
	repo.On("GetRequestByID", mock.Anything, missing).Return(nil, repository.ErrNotFound)

	router := setupRouter(repo, new(MockDirectory), uuid.New(), authz.RoleEmployee)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/approvals/"+missing.String(), nil)
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = httptest.NewRecorder()
	req, _ = http.NewRequest(http.MethodGet, "/approvals/not-a-uuid", nil)
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCancelEndpoint_VersionConflictIsConflict(t *testing.T) {
	submitter := uuid.New()
	manager := uuid.New()
	request := pendingLeave(submitter, manager)

	repo := new(MockRequestRepository)
	repo.On("WithTransaction", mock.Anything, mock.Anything).Return(nil)
	repo.On("GetRequestByID", mock.Anything, request.ID).Return(request, nil)
	repo.On("SaveRequest", mock.Anything, mock.Anything, 1).Return(repository.ErrVersionConflict)

	router := setupRouter(repo, new(MockDirectory), submitter, authz.RoleEmployee)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodDelete, "/approvals/"+request.ID.String(), nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestListPendingEndpoint_PaginationDefaults(t *testing.T) {
	approver := uuid.New()

	repo := new(MockRequestRepository)
	repo.On("ListRequestsForApprover", mock.Anything, approver, "HRManager", "pending", 20, 0).
		Return([]models.ApprovalRequest{}, int64(0), nil)

	router := setupRouter(repo, new(MockDirectory), approver, authz.RoleHRManager)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/approvals/pending?limit=-5", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	repo.AssertExpectations(t)
}
