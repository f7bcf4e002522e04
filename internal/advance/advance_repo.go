package advance

import (
	"context"
	"database/sql"
	"time"

	"go-payroll/internal/shared/connection"
	"go-payroll/internal/tenant"

	"gorm.io/gorm"
)

//go:generate mockgen -source=advance_repo.go -destination=mock/advance_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	Create(ctx context.Context, advance *SalaryAdvance) error
	FindAllByCompany(ctx context.Context, companyID string) ([]SalaryAdvance, error)
	FindByIDAndCompany(ctx context.Context, companyID string, id string) (*SalaryAdvance, error)
	FindActiveByEmployee(ctx context.Context, companyID, employeeID string) ([]SalaryAdvance, error)
	CountByEmployeeAndYear(ctx context.Context, companyID, employeeID string, year int) (int64, error)
	Update(ctx context.Context, advance *SalaryAdvance) error
	// UpdateVersioned menulis hanya jika versi di DB masih sama; false berarti
	// ada penulis lain yang menang.
	UpdateVersioned(ctx context.Context, advance *SalaryAdvance, expectedVersion int) (bool, error)

	CreateInstallment(ctx context.Context, inst *AdvanceInstallment) error
	FindInstallmentsByEmployeeAndPeriod(ctx context.Context, companyID, employeeID, periodID string) ([]AdvanceInstallment, error)
	FindInstallmentsByPeriod(ctx context.Context, companyID, periodID string) ([]AdvanceInstallment, error)
	UpdateInstallment(ctx context.Context, inst *AdvanceInstallment) error
	DeleteInstallment(ctx context.Context, id string) error
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

func (r *repository) Create(ctx context.Context, advance *SalaryAdvance) error {
	return r.db.WithContext(ctx).Create(advance).Error
}

func (r *repository) FindAllByCompany(ctx context.Context, companyID string) ([]SalaryAdvance, error) {
	var rows []SalaryAdvance
	err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(companyID)).
		Order("requested_at DESC").
		Find(&rows).Error
	return rows, err
}

func (r *repository) FindByIDAndCompany(ctx context.Context, companyID string, id string) (*SalaryAdvance, error) {
	var row SalaryAdvance
	err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(companyID)).
		First(&row, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *repository) FindActiveByEmployee(ctx context.Context, companyID, employeeID string) ([]SalaryAdvance, error) {
	var rows []SalaryAdvance
	err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(companyID)).
		Where("employee_id = ? AND status = ?", employeeID, StatusActive).
		Order("disbursement_date ASC").
		Find(&rows).Error
	return rows, err
}

func (r *repository) CountByEmployeeAndYear(ctx context.Context, companyID, employeeID string, year int) (int64, error) {
	var count int64
	start := time.Date(year, 1, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(1, 0, 0)
	err := r.db.WithContext(ctx).
		Model(&SalaryAdvance{}).
		Scopes(tenant.Scope(companyID)).
		Where("employee_id = ?", employeeID).
		Where("status <> ?", StatusCancelled).
		Where("requested_at >= ? AND requested_at < ?", start, end).
		Count(&count).Error
	return count, err
}

func (r *repository) Update(ctx context.Context, advance *SalaryAdvance) error {
	return r.db.WithContext(ctx).Save(advance).Error
}

func (r *repository) UpdateVersioned(ctx context.Context, advance *SalaryAdvance, expectedVersion int) (bool, error) {
	advance.Version = expectedVersion + 1
	res := r.db.WithContext(ctx).
		Model(&SalaryAdvance{}).
		Where("id = ? AND version = ?", advance.ID, expectedVersion).
		Updates(map[string]any{
			"outstanding_amount": advance.OutstandingAmount,
			"status":             advance.Status,
			"completion_date":    advance.CompletionDate,
			"version":            advance.Version,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *repository) CreateInstallment(ctx context.Context, inst *AdvanceInstallment) error {
	return r.db.WithContext(ctx).Create(inst).Error
}

func (r *repository) FindInstallmentsByEmployeeAndPeriod(ctx context.Context, companyID, employeeID, periodID string) ([]AdvanceInstallment, error) {
	var rows []AdvanceInstallment
	err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(companyID)).
		Where("employee_id = ? AND period_id = ?", employeeID, periodID).
		Find(&rows).Error
	return rows, err
}

func (r *repository) FindInstallmentsByPeriod(ctx context.Context, companyID, periodID string) ([]AdvanceInstallment, error) {
	var rows []AdvanceInstallment
	err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(companyID)).
		Where("period_id = ?", periodID).
		Find(&rows).Error
	return rows, err
}

func (r *repository) UpdateInstallment(ctx context.Context, inst *AdvanceInstallment) error {
	return r.db.WithContext(ctx).Save(inst).Error
}

func (r *repository) DeleteInstallment(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Delete(&AdvanceInstallment{}, "id = ?", id).Error
}
