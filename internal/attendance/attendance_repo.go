package attendance

import (
	"context"

	"go-payroll/internal/tenant"

	"gorm.io/gorm"
)

//go:generate mockgen -source=attendance_repo.go -destination=mock/attendance_repo_mock.go -package=mock
type Repository interface {
	FindForPeriod(ctx context.Context, companyID string, year, month int) ([]PeriodAttendance, error)
	FindByEmployeeAndPeriod(ctx context.Context, companyID, employeeID string, year, month int) (*PeriodAttendance, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) FindForPeriod(ctx context.Context, companyID string, year, month int) ([]PeriodAttendance, error) {
	var rows []PeriodAttendance
	err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(companyID)).
		Where("year = ? AND month = ?", year, month).
		Find(&rows).Error
	return rows, err
}

func (r *repository) FindByEmployeeAndPeriod(ctx context.Context, companyID, employeeID string, year, month int) (*PeriodAttendance, error) {
	var row PeriodAttendance
	err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(companyID)).
		Where("employee_id = ? AND year = ? AND month = ?", employeeID, year, month).
		First(&row).Error
	if err != nil {
		return nil, err
	}
	return &row, nil
}
