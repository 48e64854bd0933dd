package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Employee is a directory row: the org data the authorization core consults
// through the directory collaborator. Attendance, payroll and the rest of
// the employee record live elsewhere.
type Employee struct {
	ID           uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	EmployeeNo   string         `gorm:"type:varchar(30);uniqueIndex;not null" json:"employeeNo"`
	FullName     string         `gorm:"type:varchar(255);not null" json:"fullName"`
	Role         string         `gorm:"type:varchar(50);not null;index" json:"role"`
	Department   string         `gorm:"type:varchar(100)" json:"department,omitempty"`
	ProjectCode  string         `gorm:"type:varchar(50);index" json:"projectCode,omitempty"`
	ManagerID    *uuid.UUID     `gorm:"type:uuid;index" json:"managerId,omitempty"`
	ContractType string         `gorm:"type:varchar(30)" json:"contractType,omitempty"`
	IsActive     bool           `gorm:"default:true" json:"isActive"`
	CreatedAt    time.Time      `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt    time.Time      `gorm:"autoUpdateTime" json:"updatedAt"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`

	Manager *Employee `gorm:"foreignKey:ManagerID" json:"manager,omitempty"`
}

func (Employee) TableName() string {
	return "employees"
}
