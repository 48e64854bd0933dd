package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"authz-service/internal/authz"
	"authz-service/internal/directory"
	"authz-service/internal/services"
)

// stubContextSource returns a fixed access context or error.
type stubContextSource struct {
	ac  authz.AccessContext
	err error
}

func (s *stubContextSource) AccessContextOf(ctx context.Context, employeeID uuid.UUID) (authz.AccessContext, error) {
	return s.ac, s.err
}

func setupAccessRouter(source AccessContextSource, actorRole authz.Role) *gin.Engine {
	gin.SetMode(gin.TestMode)

	access := services.NewAccessService(authz.NewCatalog(), authz.DefaultRouteTables(), nil)
	handler := NewAccessHandler(access, source, "")

	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set("actor_id", uuid.New())
		c.Set("actor_role", actorRole)
		c.Next()
	})
	router.POST("/access/can-access-route", handler.CanAccessRoute)
	return router
}

func postRoute(t *testing.T, router *gin.Engine, route string) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(gin.H{"route": route})
	require.NoError(t, err)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/access/can-access-route", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(rec, req)
	return rec
}

func TestCanAccessRoute_TechnoContextFromDirectory(t *testing.T) {
	source := &stubContextSource{ac: authz.AccessContext{ContractType: authz.ContractTypeTechno}}
	router := setupAccessRouter(source, authz.RoleEmployee)

	rec := postRoute(t, router, "/dashboard/self-service/requests")

	require.Equal(t, http.StatusOK, rec.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, true, resp["allowed"])
}

func TestCanAccessRoute_UnknownActorDeniesInBand(t *testing.T) {
	source := &stubContextSource{err: fmt.Errorf("%w: %s", directory.ErrEmployeeNotFound, uuid.New())}
	router := setupAccessRouter(source, authz.RoleEmployee)

	rec := postRoute(t, router, "/dashboard/self-service/requests")

	require.Equal(t, http.StatusOK, rec.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, false, resp["allowed"])
}

func TestCanAccessRoute_DirectoryOutageIs503(t *testing.T) {
	source := &stubContextSource{err: fmt.Errorf("directory lookup failed: %w", assert.AnError)}
	router := setupAccessRouter(source, authz.RoleEmployee)

	rec := postRoute(t, router, "/dashboard/self-service/requests")

	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "directory_unavailable", resp["code"])
}
