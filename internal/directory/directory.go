package directory

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"authz-service/internal/authz"
	"authz-service/internal/cache"
	"authz-service/internal/models"
	"authz-service/internal/workflow"
)

// ErrEmployeeNotFound is returned when no active employee matches the id.
var ErrEmployeeNotFound = errors.New("employee not found")

// GormDirectory is the database-backed employee/role directory. It
// normalizes roles on the way out, so the workflow core never sees the raw
// identity-source casing.
type GormDirectory struct {
	db    *gorm.DB
	roles *cache.RoleCache
}

var _ workflow.Directory = (*GormDirectory)(nil)

// New creates a directory over the given database. roles may be nil to
// disable caching.
func New(db *gorm.DB, roles *cache.RoleCache) *GormDirectory {
	return &GormDirectory{db: db, roles: roles}
}

// RoleOf returns the canonical role of an active employee. Unknown role
// strings in the directory row normalize to the least privileged role.
func (d *GormDirectory) RoleOf(ctx context.Context, employeeID uuid.UUID) (authz.Role, error) {
	if d.roles != nil {
		if cached, err := d.roles.Get(ctx, employeeID); err == nil && cached != "" {
			role, _ := authz.NormalizeRole(cached)
			return role, nil
		}
	}

	var employee models.Employee
	err := d.db.WithContext(ctx).
		Select("role").
		Where("id = ? AND is_active = true", employeeID).
		First(&employee).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", fmt.Errorf("%w: %s", ErrEmployeeNotFound, employeeID)
		}
		return "", fmt.Errorf("directory lookup failed: %w", err)
	}

	role, _ := authz.NormalizeRole(employee.Role)
	if d.roles != nil {
		_ = d.roles.Set(ctx, employeeID, string(role))
	}
	return role, nil
}

// EmployeesWithRole returns the ids of active employees holding the role.
// Scope hints narrow by project and department when set.
func (d *GormDirectory) EmployeesWithRole(ctx context.Context, role authz.Role, hints workflow.ScopeHints) ([]uuid.UUID, error) {
	query := d.db.WithContext(ctx).
		Model(&models.Employee{}).
		Where("role = ? AND is_active = true", string(role))

	if hints.ProjectCode != "" {
		query = query.Where("project_code = ?", hints.ProjectCode)
	}
	if hints.Department != "" {
		query = query.Where("department = ?", hints.Department)
	}

	var ids []uuid.UUID
	if err := query.Order("employee_no ASC").Pluck("id", &ids).Error; err != nil {
		return nil, fmt.Errorf("directory lookup failed: %w", err)
	}
	return ids, nil
}

// ManagerOf returns the direct manager of an employee, or nil when the
// employee has no manager on record.
func (d *GormDirectory) ManagerOf(ctx context.Context, employeeID uuid.UUID) (*uuid.UUID, error) {
	var employee models.Employee
	err := d.db.WithContext(ctx).
		Select("manager_id").
		Where("id = ? AND is_active = true", employeeID).
		First(&employee).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrEmployeeNotFound, employeeID)
		}
		return nil, fmt.Errorf("directory lookup failed: %w", err)
	}
	return employee.ManagerID, nil
}

// AccessContextOf loads the route-resolution attributes for an employee.
func (d *GormDirectory) AccessContextOf(ctx context.Context, employeeID uuid.UUID) (authz.AccessContext, error) {
	var employee models.Employee
	err := d.db.WithContext(ctx).
		Select("contract_type").
		Where("id = ? AND is_active = true", employeeID).
		First(&employee).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return authz.AccessContext{}, fmt.Errorf("%w: %s", ErrEmployeeNotFound, employeeID)
		}
		return authz.AccessContext{}, fmt.Errorf("directory lookup failed: %w", err)
	}
	return authz.AccessContext{ContractType: employee.ContractType}, nil
}

// InvalidateRole drops the cached role for an employee after reassignment.
func (d *GormDirectory) InvalidateRole(ctx context.Context, employeeID uuid.UUID) {
	if d.roles != nil {
		_ = d.roles.Invalidate(ctx, employeeID)
	}
}
