package payslip

import (
	"context"
	"database/sql"

	"go-payroll/internal/shared/connection"
	"go-payroll/internal/tenant"

	"gorm.io/gorm"
)

//go:generate mockgen -source=payslip_repo.go -destination=mock/payslip_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	Create(ctx context.Context, slip *Payslip) error
	FindByIDAndCompany(ctx context.Context, companyID string, id string) (*Payslip, error)
	FindByPeriod(ctx context.Context, companyID, periodID string) ([]Payslip, error)
	FindByPeriodAndStatuses(ctx context.Context, companyID, periodID string, statuses []string) ([]Payslip, error)
	FindByEmployeeAndPeriod(ctx context.Context, companyID, employeeID, periodID string) (*Payslip, error)
	Save(ctx context.Context, slip *Payslip) error
	UpdateStatusByPeriod(ctx context.Context, companyID, periodID, fromStatus, toStatus string, fields map[string]any) (int64, error)
	DeleteByPeriod(ctx context.Context, companyID, periodID string) error
	SumNetByPeriodAndStatuses(ctx context.Context, companyID, periodID string, statuses []string) (string, error)
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

func (r *repository) Create(ctx context.Context, slip *Payslip) error {
	return r.db.WithContext(ctx).Create(slip).Error
}

func (r *repository) FindByIDAndCompany(ctx context.Context, companyID string, id string) (*Payslip, error) {
	var row Payslip
	err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(companyID)).
		First(&row, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *repository) FindByPeriod(ctx context.Context, companyID, periodID string) ([]Payslip, error) {
	var rows []Payslip
	err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(companyID)).
		Where("period_id = ?", periodID).
		Order("reference_number ASC").
		Find(&rows).Error
	return rows, err
}

func (r *repository) FindByPeriodAndStatuses(ctx context.Context, companyID, periodID string, statuses []string) ([]Payslip, error) {
	var rows []Payslip
	err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(companyID)).
		Where("period_id = ? AND status IN ?", periodID, statuses).
		Order("reference_number ASC").
		Find(&rows).Error
	return rows, err
}

func (r *repository) FindByEmployeeAndPeriod(ctx context.Context, companyID, employeeID, periodID string) (*Payslip, error) {
	var row Payslip
	err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(companyID)).
		Where("employee_id = ? AND period_id = ?", employeeID, periodID).
		First(&row).Error
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *repository) Save(ctx context.Context, slip *Payslip) error {
	return r.db.WithContext(ctx).Save(slip).Error
}

func (r *repository) UpdateStatusByPeriod(ctx context.Context, companyID, periodID, fromStatus, toStatus string, fields map[string]any) (int64, error) {
	updates := map[string]any{"status": toStatus}
	for k, v := range fields {
		updates[k] = v
	}
	res := r.db.WithContext(ctx).
		Model(&Payslip{}).
		Scopes(tenant.Scope(companyID)).
		Where("period_id = ? AND status = ?", periodID, fromStatus).
		Updates(updates)
	return res.RowsAffected, res.Error
}

func (r *repository) DeleteByPeriod(ctx context.Context, companyID, periodID string) error {
	return r.db.WithContext(ctx).
		Scopes(tenant.Scope(companyID)).
		Where("period_id = ?", periodID).
		Delete(&Payslip{}).Error
}

func (r *repository) SumNetByPeriodAndStatuses(ctx context.Context, companyID, periodID string, statuses []string) (string, error) {
	var total sql.NullString
	err := r.db.WithContext(ctx).
		Model(&Payslip{}).
		Scopes(tenant.Scope(companyID)).
		Where("period_id = ? AND status IN ?", periodID, statuses).
		Select("COALESCE(SUM(net_salary), 0)").
		Scan(&total).Error
	if err != nil {
		return "0", err
	}
	if !total.Valid {
		return "0", nil
	}
	return total.String, nil
}
