package transfer

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	StatusPending   = "PENDING"
	StatusGenerated = "GENERATED"
	StatusSent      = "SENT"
	StatusProcessed = "PROCESSED"
	StatusCompleted = "COMPLETED"
	StatusFailed    = "FAILED"
)

// statusRank memaksa transisi maju satu langkah; mundur selalu ditolak.
var statusRank = map[string]int{
	StatusPending:   0,
	StatusGenerated: 1,
	StatusSent:      2,
	StatusProcessed: 3,
	StatusCompleted: 4,
}

func transitionAllowed(from, to string) bool {
	if from == StatusCompleted || from == StatusFailed {
		return false
	}
	if to == StatusFailed {
		return true
	}
	fromRank, ok := statusRank[from]
	if !ok {
		return false
	}
	toRank, ok := statusRank[to]
	if !ok {
		return false
	}
	return toRank == fromRank+1
}

// activeStatuses memblokir pembuatan batch kedua untuk periode yang sama.
var activeStatuses = []string{StatusGenerated, StatusSent, StatusProcessed, StatusCompleted}

type PayrollBankTransfer struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CompanyID uuid.UUID `gorm:"type:uuid;not null;index"`
	PeriodID  uuid.UUID `gorm:"type:uuid;not null;index"`

	BatchReference string `gorm:"type:varchar(30);not null;uniqueIndex"`
	Status         string `gorm:"type:varchar(20);not null;default:'PENDING';index"`

	TotalEmployees int             `gorm:"not null;default:0"`
	TotalAmount    decimal.Decimal `gorm:"type:numeric(14,2);not null;default:0"`

	BankFilePath   string `gorm:"type:varchar(255)"`
	BankFileFormat string `gorm:"type:varchar(20)"`

	GeneratedAt *time.Time
	SentAt      *time.Time
	ProcessedAt *time.Time

	BankResponse *string `gorm:"type:text"`
	ErrorDetails *string `gorm:"type:text"`

	CreatedBy uuid.UUID `gorm:"type:uuid;not null"`

	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

func (PayrollBankTransfer) TableName() string {
	return "payroll_bank_transfers"
}
