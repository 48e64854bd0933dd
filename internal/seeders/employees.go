package seeders

import (
	"log"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"authz-service/internal/authz"
	"authz-service/internal/models"
)

// SeedDemoEmployees creates a small org that exercises every approval chain:
// a reporting line of employees under a project manager, plus one holder of
// each approver role. Rows are upserted by employee number so reseeding a
// development database is safe.
func SeedDemoEmployees(db *gorm.DB) error {
	gm := demoEmployee("EMP-0001", "Nadia Rahim", authz.RoleGeneralManager, "Management", "", nil, "permanent")
	hr := demoEmployee("EMP-0002", "Omar Khalil", authz.RoleHRManager, "Human Resources", "", nil, "permanent")
	finance := demoEmployee("EMP-0003", "Lina Saab", authz.RoleFinanceManager, "Finance", "", nil, "permanent")
	regional := demoEmployee("EMP-0004", "Karim Daou", authz.RoleRegionalProjectManager, "Operations", "PRJ-NORTH", nil, "permanent")
	warehouse := demoEmployee("EMP-0005", "Rania Fares", authz.RoleWarehouseManager, "Warehouse", "PRJ-NORTH", nil, "permanent")

	pm := demoEmployee("EMP-0010", "Sami Haddad", authz.RoleProjectManager, "Operations", "PRJ-NORTH", &regional.ID, "permanent")
	secretary := demoEmployee("EMP-0011", "Dana Aoun", authz.RoleProjectSecretary, "Operations", "PRJ-NORTH", &pm.ID, "permanent")
	advisor := demoEmployee("EMP-0012", "Fuad Nassar", authz.RoleProjectAdvisor, "Operations", "PRJ-NORTH", &pm.ID, "permanent")

	emp1 := demoEmployee("EMP-0020", "Yusuf Kanaan", authz.RoleEmployee, "Operations", "PRJ-NORTH", &pm.ID, "permanent")
	emp2 := demoEmployee("EMP-0021", "Maya Zein", authz.RoleEmployee, "Operations", "PRJ-NORTH", &pm.ID, "techno")

	employees := []models.Employee{gm, hr, finance, regional, warehouse, pm, secretary, advisor, emp1, emp2}

	for _, employee := range employees {
		result := db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "employee_no"}},
			DoUpdates: clause.AssignmentColumns([]string{"full_name", "role", "department", "project_code", "manager_id", "contract_type", "is_active", "updated_at"}),
		}).Create(&employee)

		if result.Error != nil {
			log.Printf("Failed to seed employee %s: %v", employee.EmployeeNo, result.Error)
			return result.Error
		}
	}
	log.Printf("Seeded %d demo employees", len(employees))

	return nil
}

func demoEmployee(no, name string, role authz.Role, department, projectCode string, managerID *uuid.UUID, contractType string) models.Employee {
	return models.Employee{
		ID:           uuid.NewSHA1(uuid.NameSpaceOID, []byte("demo-employee:"+no)),
		EmployeeNo:   no,
		FullName:     name,
		Role:         string(role),
		Department:   department,
		ProjectCode:  projectCode,
		ManagerID:    managerID,
		ContractType: contractType,
		IsActive:     true,
	}
}
