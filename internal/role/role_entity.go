package role

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Role adalah snapshot read-only dari direktori jabatan. Dipakai untuk scope
// konfigurasi gaji dan label role_breakdown di summary.
type Role struct {
	ID           uuid.UUID  `gorm:"type:uuid;primaryKey"`
	CompanyID    uuid.UUID  `gorm:"type:uuid;not null;index"`
	Name         string     `gorm:"size:255;not null"`
	DepartmentID *uuid.UUID `gorm:"type:uuid"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
	DeletedAt    gorm.DeletedAt `gorm:"index"`
}

func (Role) TableName() string {
	return "roles"
}
