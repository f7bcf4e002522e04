package summary

import (
	"context"
	"database/sql"

	"go-payroll/internal/shared/connection"
	"go-payroll/internal/tenant"

	"gorm.io/gorm"
)

//go:generate mockgen -source=summary_repo.go -destination=mock/summary_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	DeleteByPeriod(ctx context.Context, companyID, periodID string) error
	CreateBatch(ctx context.Context, rows []PayrollDepartmentSummary) error
	FindByPeriod(ctx context.Context, companyID, periodID string) ([]PayrollDepartmentSummary, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

// WithTx mengikat repo ke transaksi milik pemanggil; semua query repo
// hasil ikatan ini commit/rollback bareng transaksi tersebut.
func (r *repository) WithTx(tx *sql.Tx) Repository {
	return &repository{db: connection.GormWithTx(tx)}
}

func (r *repository) DeleteByPeriod(ctx context.Context, companyID, periodID string) error {
	return r.db.WithContext(ctx).
		Scopes(tenant.Scope(companyID)).
		Where("period_id = ?", periodID).
		Delete(&PayrollDepartmentSummary{}).Error
}

func (r *repository) CreateBatch(ctx context.Context, rows []PayrollDepartmentSummary) error {
	if len(rows) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&rows).Error
}

func (r *repository) FindByPeriod(ctx context.Context, companyID, periodID string) ([]PayrollDepartmentSummary, error) {
	var rows []PayrollDepartmentSummary
	err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(companyID)).
		Where("period_id = ?", periodID).
		Order("department_name ASC").
		Find(&rows).Error
	return rows, err
}
