package employee

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Employee adalah snapshot read-only dari direktori karyawan. Penggajian hanya
// membaca data ini; CRUD direktori dimiliki collaborator eksternal.
type Employee struct {
	ID                uuid.UUID       `gorm:"type:uuid;primaryKey"`
	CompanyID         uuid.UUID       `gorm:"type:uuid;not null;index"`
	EmployeeCode      string          `gorm:"type:varchar(20);not null;uniqueIndex"`
	FullName          string          `gorm:"column:full_name"`
	RoleID            *uuid.UUID      `gorm:"type:uuid"`
	DepartmentID      *uuid.UUID      `gorm:"type:uuid"`
	BasicSalary       decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	BankName          *string         `gorm:"type:varchar(100)"`
	BankAccountNumber *string         `gorm:"type:varchar(50)"`
	BankBranch        *string         `gorm:"type:varchar(100)"`
	IsActive          bool            `gorm:"not null;default:true"`
	CreatedAt         time.Time
	UpdatedAt         time.Time
	DeletedAt         gorm.DeletedAt `gorm:"index"`
}

func (Employee) TableName() string {
	return "employees"
}
