package payslip

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	StatusDraft      = "DRAFT"
	StatusCalculated = "CALCULATED"
	StatusApproved   = "APPROVED"
	StatusPaid       = "PAID"
)

type Payslip struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CompanyID  uuid.UUID `gorm:"type:uuid;not null;index:idx_company_status"`
	PeriodID   uuid.UUID `gorm:"type:uuid;not null;index:idx_period_employee,unique"`
	EmployeeID uuid.UUID `gorm:"type:uuid;not null;index:idx_period_employee,unique"`

	ReferenceNumber string `gorm:"type:varchar(30);not null;uniqueIndex"`
	Status          string `gorm:"type:varchar(20);not null;default:'DRAFT';index:idx_company_status"`

	// Kehadiran
	WorkingDays  int `gorm:"not null;default:0"`
	AttendedDays int `gorm:"not null;default:0"`
	LeaveDays    int `gorm:"not null;default:0"`

	// Pendapatan
	BasicSalary         decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0"`
	OvertimeHours       decimal.Decimal `gorm:"type:numeric(8,2);not null;default:0"`
	FridayOvertimeHours decimal.Decimal `gorm:"type:numeric(8,2);not null;default:0"`
	OvertimePay         decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0"`
	FridayOvertimePay   decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0"`
	TotalOvertimePay    decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0"`

	TransportAllowance decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0"`
	TelephoneAllowance decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0"`
	FuelAllowance      decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0"`
	MealAllowance      decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0"`
	InterimAllowance   decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0"`
	EducationAllowance decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0"`
	TotalAllowances    decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0"`

	AttendanceBonus  decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0"`
	PerformanceBonus decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0"`
	ReligiousPay     decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0"`
	FridaySalary     decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0"`

	GrossSalary decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0"`

	// Potongan
	LeaveDeduction          decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0"`
	LatePenalty             decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0"`
	AdvanceDeduction        decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0"`
	LunchViolationPenalty   decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0"`
	EmployeeEPFContribution decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0"`
	IncomeTax               decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0"`
	TotalDeductions         decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0"`

	NetSalary decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0"`

	// Statutori: kontribusi employer tidak mengurangi net, dicatat terpisah.
	EPFSalaryBase           decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0"`
	EmployerEPFContribution decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0"`
	ETFContribution         decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0"`

	// Jejak kalkulasi untuk audit
	RoleBasedCalculations json.RawMessage `gorm:"type:jsonb"`
	AttendanceBreakdown   json.RawMessage `gorm:"type:jsonb"`
	PenaltyBreakdown      json.RawMessage `gorm:"type:jsonb"`

	CreatedBy    uuid.UUID  `gorm:"type:uuid;not null"`
	CalculatedBy *uuid.UUID `gorm:"type:uuid"`
	CalculatedAt *time.Time
	ApprovedBy   *uuid.UUID `gorm:"type:uuid"`
	ApprovedAt   *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

func (Payslip) TableName() string {
	return "payslips"
}

// attendanceTrace dan penaltyTrace diserialisasi ke kolom jsonb supaya
// angka turunan bisa diaudit tanpa mengulang kalkulasi.
type attendanceTrace struct {
	WorkingDays       int    `json:"working_days"`
	AttendedDays      int    `json:"attended_days"`
	LeaveDays         int    `json:"leave_days"`
	PaidLeaveDays     int    `json:"paid_leave_days"`
	UnpaidLeaveDays   int    `json:"unpaid_leave_days"`
	OvertimeHours     string `json:"overtime_hours"`
	FridayOvertime    string `json:"friday_overtime_hours"`
	HourlyRate        string `json:"hourly_rate"`
	AttendanceRatio   string `json:"attendance_ratio"`
	EntitlementDays   int    `json:"leave_entitlement_days"`
	FullAttendance    bool   `json:"full_attendance"`
	ShiftHoursPerDay  string `json:"shift_hours_per_day"`
	LateArrivals      int    `json:"late_arrivals"`
	LateMinutes       int    `json:"late_minutes"`
	LunchViolations   int    `json:"lunch_violations"`
	ProcessingDateISO string `json:"processing_date"`
}

type penaltyTrace struct {
	GraceMinutes        int    `json:"late_grace_minutes"`
	ChargeableMinutes   int    `json:"chargeable_late_minutes"`
	LatePenaltyPerMin   string `json:"late_penalty_per_minute"`
	LatePenalty         string `json:"late_penalty"`
	FreeLunchViolations int    `json:"free_lunch_violations"`
	ChargeableLunch     int    `json:"chargeable_lunch_violations"`
	LunchViolationRate  string `json:"lunch_violation_amount"`
	LunchPenalty        string `json:"lunch_violation_penalty"`
	NegativeNetClamped  bool   `json:"negative_net_clamped"`
	ClampedShortfall    string `json:"clamped_shortfall,omitempty"`
}

type roleBasedTrace struct {
	RoundingMode       string            `json:"rounding_mode"`
	OvertimeMultiplier string            `json:"overtime_multiplier"`
	FridayMultiplier   string            `json:"friday_overtime_multiplier"`
	EPFEmployeePct     string            `json:"epf_employee_percent"`
	EPFEmployerPct     string            `json:"epf_employer_percent"`
	ETFPct             string            `json:"etf_percent"`
	EPFExemptApplied   map[string]string `json:"epf_exempt_applied,omitempty"`
	TaxBands           []taxBandTrace    `json:"tax_bands,omitempty"`
}

type taxBandTrace struct {
	UpTo   string `json:"up_to,omitempty"`
	Rate   string `json:"rate"`
	Taxed  string `json:"taxed_amount"`
	Amount string `json:"tax"`
}
