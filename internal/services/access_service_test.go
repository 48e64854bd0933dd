package services

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"authz-service/internal/authz"
)

func newAccessService() *AccessService {
	return NewAccessService(authz.NewCatalog(), authz.DefaultRouteTables(), nil)
}

func TestAccessService_Checks(t *testing.T) {
	service := newAccessService()

	assert.True(t, service.CanPerform(authz.RoleAdmin, authz.ModuleSettings, authz.ActionDelete))
	assert.True(t, service.CanPerform(authz.RoleHRManager, authz.ModuleEmployees, authz.ActionDelete))
	assert.False(t, service.CanPerform(authz.RoleEmployee, authz.ModuleEmployees, authz.ActionRead))

	assert.True(t, service.CanAccessRoute(authz.RoleFinanceManager, "/dashboard/payroll/approval", authz.AccessContext{}))
	assert.False(t, service.CanAccessRoute(authz.RoleEmployee, "/dashboard/warehouse", authz.AccessContext{}))
}

func TestAccessService_ReloadSwapsTables(t *testing.T) {
	service := newAccessService()
	assert.True(t, service.CanPerform(authz.RoleHRManager, authz.ModuleEmployees, authz.ActionDelete))

	path := filepath.Join(t.TempDir(), "tables.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
permissions:
  HRManager:
    employees: VIEW
`), 0o644))

	require.NoError(t, service.Reload(path))
	assert.False(t, service.CanPerform(authz.RoleHRManager, authz.ModuleEmployees, authz.ActionDelete))
	assert.True(t, service.CanPerform(authz.RoleHRManager, authz.ModuleEmployees, authz.ActionRead))
}

func TestAccessService_ReloadFailureKeepsCurrentTables(t *testing.T) {
	service := newAccessService()

	path := filepath.Join(t.TempDir(), "tables.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
permissions:
  superuser:
    payroll: FULL
`), 0o644))

	assert.Error(t, service.Reload(path))
	assert.True(t, service.CanPerform(authz.RoleHRManager, authz.ModuleEmployees, authz.ActionDelete))
}
