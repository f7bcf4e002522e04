package advance

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	StatusPending   = "PENDING"
	StatusApproved  = "APPROVED"
	StatusActive    = "ACTIVE"
	StatusCompleted = "COMPLETED"
	StatusCancelled = "CANCELLED"
)

const (
	TypeSalary    = "SALARY"
	TypeEmergency = "EMERGENCY"
	TypePurchase  = "PURCHASE"
	TypeMedical   = "MEDICAL"
)

const (
	InstallmentReserved  = "RESERVED"
	InstallmentConfirmed = "CONFIRMED"
)

type SalaryAdvance struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CompanyID  uuid.UUID `gorm:"type:uuid;not null;index"`
	EmployeeID uuid.UUID `gorm:"type:uuid;not null;index"`

	AdvanceType       string          `gorm:"type:varchar(20);not null"`
	Amount            decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	OutstandingAmount decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	MonthlyDeduction  decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0"`
	Installments      int             `gorm:"not null"`

	Status           string     `gorm:"type:varchar(20);not null;default:'PENDING'"`
	RequestedAt      time.Time  `gorm:"not null"`
	ApprovedAt       *time.Time
	DisbursementDate *time.Time `gorm:"type:date"`
	CompletionDate   *time.Time `gorm:"type:date"`

	RequestedBy uuid.UUID  `gorm:"type:uuid;not null"`
	ApprovedBy  *uuid.UUID `gorm:"type:uuid"`

	// Optimistic lock: satu penulis per advance, mencegah double-deduct
	// saat rekalkulasi paralel.
	Version int `gorm:"not null;default:0"`

	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

func (SalaryAdvance) TableName() string {
	return "salary_advances"
}

// IsOverdue: masih ada sisa padahal jadwal cicilan aslinya sudah lewat.
func (a SalaryAdvance) IsOverdue(now time.Time) bool {
	if a.Status != StatusActive || a.DisbursementDate == nil {
		return false
	}
	if !a.OutstandingAmount.IsPositive() {
		return false
	}
	deadline := a.DisbursementDate.AddDate(0, a.Installments, 0)
	return now.After(deadline)
}

// AdvanceInstallment adalah ledger reservasi potongan per periode.
// RESERVED saat kalkulasi memesan, CONFIRMED saat kalkulasi commit;
// release menghapus baris dan memulihkan outstanding.
type AdvanceInstallment struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CompanyID uuid.UUID `gorm:"type:uuid;not null;index"`
	AdvanceID uuid.UUID `gorm:"type:uuid;not null;index:idx_installment_period,unique"`
	PeriodID  uuid.UUID `gorm:"type:uuid;not null;index:idx_installment_period,unique"`

	EmployeeID uuid.UUID       `gorm:"type:uuid;not null;index"`
	Amount     decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	Status     string          `gorm:"type:varchar(20);not null;default:'RESERVED'"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (AdvanceInstallment) TableName() string {
	return "advance_installments"
}
