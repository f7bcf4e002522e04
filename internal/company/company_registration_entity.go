package company

import (
	"time"

	"github.com/google/uuid"
)

type RegistrationType string

// Nomor registrasi statutori yang dipakai payroll: EPF/ETF untuk setoran
// kontribusi, TIN untuk pelaporan pajak, BRN sebagai identitas badan usaha.
const (
	RegistrationTypeEPF RegistrationType = "EPF"
	RegistrationTypeETF RegistrationType = "ETF"
	RegistrationTypeTIN RegistrationType = "TIN"
	RegistrationTypeBRN RegistrationType = "BRN"
)

type CompanyRegistration struct {
	ID        uuid.UUID        `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CompanyID uuid.UUID        `gorm:"type:uuid;not null;index"`
	Type      RegistrationType `gorm:"type:registration_type;not null"`
	Number    string           `gorm:"type:varchar(100);not null"`
	IssuedAt  *time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}
