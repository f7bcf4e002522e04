package attendance

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PeriodAttendance adalah ringkasan kehadiran per karyawan per bulan yang
// sudah dihitung oleh sistem ingestion device. Payroll membacanya apa adanya.
type PeriodAttendance struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CompanyID  uuid.UUID `gorm:"type:uuid;not null;index:idx_attendance_period,unique"`
	EmployeeID uuid.UUID `gorm:"type:uuid;not null;index:idx_attendance_period,unique"`
	Year       int       `gorm:"not null;index:idx_attendance_period,unique"`
	Month      int       `gorm:"not null;index:idx_attendance_period,unique"`

	WorkingDays       int `gorm:"not null"`
	AttendedDays      int `gorm:"not null"`
	LeaveDays         int `gorm:"not null;default:0"`
	ApprovedLeaveDays int `gorm:"not null;default:0"`

	OvertimeHours       decimal.Decimal `gorm:"type:numeric(6,2);not null;default:0"`
	FridayOvertimeHours decimal.Decimal `gorm:"type:numeric(6,2);not null;default:0"`

	LateArrivals    int `gorm:"not null;default:0"`
	LateMinutes     int `gorm:"not null;default:0"`
	LunchViolations int `gorm:"not null;default:0"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (PeriodAttendance) TableName() string {
	return "period_attendances"
}
