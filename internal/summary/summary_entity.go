package summary

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PayrollDepartmentSummary adalah materialized view per (periode, departemen).
// Selalu dibangun ulang penuh dari payslip, tidak pernah diedit langsung.
type PayrollDepartmentSummary struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CompanyID    uuid.UUID `gorm:"type:uuid;not null;index"`
	PeriodID     uuid.UUID `gorm:"type:uuid;not null;index:idx_summary_period_dept,unique"`
	DepartmentID uuid.UUID `gorm:"type:uuid;not null;index:idx_summary_period_dept,unique"`

	DepartmentName string `gorm:"type:varchar(120);not null"`
	EmployeeCount  int    `gorm:"not null;default:0"`

	TotalBasicSalary decimal.Decimal `gorm:"type:numeric(14,2);not null;default:0"`
	TotalAllowances  decimal.Decimal `gorm:"type:numeric(14,2);not null;default:0"`
	TotalOvertime    decimal.Decimal `gorm:"type:numeric(14,2);not null;default:0"`
	TotalGross       decimal.Decimal `gorm:"type:numeric(14,2);not null;default:0"`
	TotalDeductions  decimal.Decimal `gorm:"type:numeric(14,2);not null;default:0"`
	TotalNet         decimal.Decimal `gorm:"type:numeric(14,2);not null;default:0"`
	TotalEPFEmployee decimal.Decimal `gorm:"type:numeric(14,2);not null;default:0"`
	TotalEPFEmployer decimal.Decimal `gorm:"type:numeric(14,2);not null;default:0"`
	TotalETF         decimal.Decimal `gorm:"type:numeric(14,2);not null;default:0"`

	AverageSalary               decimal.Decimal `gorm:"type:numeric(14,2);not null;default:0"`
	BudgetUtilizationPercentage decimal.Decimal `gorm:"type:numeric(8,2);not null;default:0"`

	RoleBreakdown      json.RawMessage `gorm:"type:jsonb"`
	PerformanceMetrics json.RawMessage `gorm:"type:jsonb"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (PayrollDepartmentSummary) TableName() string {
	return "payroll_department_summaries"
}

// PeriodTotals adalah agregat lintas departemen yang disalin ke baris periode.
type PeriodTotals struct {
	EmployeeCount    int
	TotalGross       decimal.Decimal
	TotalNet         decimal.Decimal
	TotalDeductions  decimal.Decimal
	TotalEPFEmployee decimal.Decimal
	TotalEPFEmployer decimal.Decimal
	TotalETF         decimal.Decimal
}

type performanceMetrics struct {
	AttendanceRatio           string `json:"attendance_ratio"`
	OvertimeRatio             string `json:"overtime_ratio"`
	AttendanceWeight          string `json:"attendance_weight"`
	DepartmentEfficiencyScore string `json:"department_efficiency_score"`
}

type roleBreakdownEntry struct {
	RoleName      string `json:"role_name"`
	EmployeeCount int    `json:"employee_count"`
	TotalGross    string `json:"total_gross"`
	TotalNet      string `json:"total_net"`
}
