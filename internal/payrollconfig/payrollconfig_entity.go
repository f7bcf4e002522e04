package payrollconfig

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	TypeSalary    = "SALARY"
	TypeAllowance = "ALLOWANCE"
	TypeDeduction = "DEDUCTION"
	TypeTax       = "TAX"
	TypeBonus     = "BONUS"
	TypePenalty   = "PENALTY"
)

const (
	ValueDecimal    = "DECIMAL"
	ValueInteger    = "INTEGER"
	ValuePercentage = "PERCENTAGE"
	ValueBoolean    = "BOOLEAN"
	ValueText       = "TEXT"
	ValueJSON       = "JSON"
)

// PayrollConfiguration adalah satu parameter aturan gaji yang versioned dan
// scoped. Scope paling spesifik (role+department) menang saat resolve.
type PayrollConfiguration struct {
	ID                uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CompanyID         uuid.UUID `gorm:"type:uuid;not null;index:idx_config_key"`
	ConfigurationType string    `gorm:"type:varchar(20);not null"`
	Key               string    `gorm:"type:varchar(120);not null;index:idx_config_key"`
	Value             string    `gorm:"type:text;not null"`
	ValueType         string    `gorm:"type:varchar(20);not null"`
	RoleID            *uuid.UUID `gorm:"type:uuid"`
	DepartmentID      *uuid.UUID `gorm:"type:uuid"`
	IsActive          bool       `gorm:"not null;default:true"`
	EffectiveFrom     time.Time  `gorm:"type:date;not null"`
	EffectiveTo       *time.Time `gorm:"type:date"`
	CreatedBy         uuid.UUID  `gorm:"type:uuid"`
	CreatedAt         time.Time
	UpdatedAt         time.Time
	DeletedAt         gorm.DeletedAt `gorm:"index"`
}

func (PayrollConfiguration) TableName() string {
	return "payroll_configurations"
}

// specificity: role+department > role > department > global.
func (c PayrollConfiguration) specificity() int {
	switch {
	case c.RoleID != nil && c.DepartmentID != nil:
		return 3
	case c.RoleID != nil:
		return 2
	case c.DepartmentID != nil:
		return 1
	default:
		return 0
	}
}

func (c PayrollConfiguration) matches(scope EmployeeScope) bool {
	if c.RoleID != nil {
		if scope.RoleID == nil || *c.RoleID != *scope.RoleID {
			return false
		}
	}
	if c.DepartmentID != nil {
		if scope.DepartmentID == nil || *c.DepartmentID != *scope.DepartmentID {
			return false
		}
	}
	return true
}

// EmployeeScope adalah role/department karyawan saat resolve.
type EmployeeScope struct {
	RoleID       *uuid.UUID
	DepartmentID *uuid.UUID
}
