package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"authz-service/internal/authz"
	"authz-service/internal/directory"
	"authz-service/internal/models"
)

// EmployeeHandler manages the directory rows the workflow core resolves
// against.
type EmployeeHandler struct {
	db        *gorm.DB
	directory *directory.GormDirectory
}

// NewEmployeeHandler creates a new EmployeeHandler.
func NewEmployeeHandler(db *gorm.DB, dir *directory.GormDirectory) *EmployeeHandler {
	return &EmployeeHandler{db: db, directory: dir}
}

type assignRoleInput struct {
	Role string `json:"role" binding:"required"`
}

// AssignRole changes an employee's role. The cached role is invalidated so
// in-flight approval chains resolve against the new assignment immediately.
func (h *EmployeeHandler) AssignRole(c *gin.Context) {
	employeeID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid employee id"})
		return
	}

	var input assignRoleInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	role, ok := authz.NormalizeRole(input.Role)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown role"})
		return
	}

	result := h.db.WithContext(c.Request.Context()).
		Model(&models.Employee{}).
		Where("id = ? AND is_active = true", employeeID).
		Update("role", string(role))
	if result.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "an internal error occurred"})
		return
	}
	if result.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "employee not found"})
		return
	}

	h.directory.InvalidateRole(c.Request.Context(), employeeID)

	c.JSON(http.StatusOK, gin.H{"id": employeeID, "role": role})
}

// GetEmployee returns a directory row.
func (h *EmployeeHandler) GetEmployee(c *gin.Context) {
	employeeID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid employee id"})
		return
	}

	var employee models.Employee
	err = h.db.WithContext(c.Request.Context()).
		Preload("Manager").
		Where("id = ?", employeeID).
		First(&employee).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "employee not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "an internal error occurred"})
		return
	}

	c.JSON(http.StatusOK, employee)
}
