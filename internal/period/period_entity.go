package period

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	StatusDraft      = "DRAFT"
	StatusProcessing = "PROCESSING"
	StatusCompleted  = "COMPLETED"
	StatusApproved   = "APPROVED"
	StatusPaid       = "PAID"
	StatusCancelled  = "CANCELLED"
)

// allowedTransitions adalah satu-satunya sumber kebenaran state machine
// periode. PAID dan CANCELLED terminal.
var allowedTransitions = map[string][]string{
	StatusDraft:      {StatusProcessing, StatusCancelled},
	StatusProcessing: {StatusCompleted, StatusCancelled},
	StatusCompleted:  {StatusApproved},
	StatusApproved:   {StatusPaid},
}

func transitionAllowed(from, to string) bool {
	for _, next := range allowedTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

type PayrollPeriod struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CompanyID uuid.UUID `gorm:"type:uuid;not null;index:idx_company_period,unique"`

	Year  int `gorm:"not null;index:idx_company_period,unique"`
	Month int `gorm:"not null;index:idx_company_period,unique"`

	PeriodName string `gorm:"type:varchar(60);not null"`
	Status     string `gorm:"type:varchar(20);not null;default:'DRAFT';index"`

	StartDate      time.Time  `gorm:"type:date;not null"`
	EndDate        time.Time  `gorm:"type:date;not null"`
	CutoffDate     time.Time  `gorm:"type:date;not null"`
	ProcessingDate *time.Time `gorm:"type:date"`

	TotalEmployees   int             `gorm:"not null;default:0"`
	TotalGross       decimal.Decimal `gorm:"type:numeric(14,2);not null;default:0"`
	TotalNet         decimal.Decimal `gorm:"type:numeric(14,2);not null;default:0"`
	TotalDeductions  decimal.Decimal `gorm:"type:numeric(14,2);not null;default:0"`
	TotalEPFEmployee decimal.Decimal `gorm:"type:numeric(14,2);not null;default:0"`
	TotalEPFEmployer decimal.Decimal `gorm:"type:numeric(14,2);not null;default:0"`
	TotalETF         decimal.Decimal `gorm:"type:numeric(14,2);not null;default:0"`

	CreatedBy  uuid.UUID  `gorm:"type:uuid;not null"`
	ApprovedBy *uuid.UUID `gorm:"type:uuid"`
	ApprovedAt *time.Time
	PaidAt     *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

func (PayrollPeriod) TableName() string {
	return "payroll_periods"
}

func periodName(year, month int) string {
	return fmt.Sprintf("%s %d", time.Month(month).String(), year)
}
