package period

import (
	"context"
	"database/sql"

	"go-payroll/internal/shared/connection"
	"go-payroll/internal/tenant"

	"gorm.io/gorm"
)

//go:generate mockgen -source=period_repo.go -destination=mock/period_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	Create(ctx context.Context, period *PayrollPeriod) error
	FindAllByCompany(ctx context.Context, companyID string) ([]PayrollPeriod, error)
	FindByIDAndCompany(ctx context.Context, companyID string, id string) (*PayrollPeriod, error)
	FindByYearMonth(ctx context.Context, companyID string, year, month int) (*PayrollPeriod, error)
	Update(ctx context.Context, period *PayrollPeriod) error
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

func (r *repository) Create(ctx context.Context, period *PayrollPeriod) error {
	return r.db.WithContext(ctx).Create(period).Error
}

func (r *repository) FindAllByCompany(ctx context.Context, companyID string) ([]PayrollPeriod, error) {
	var rows []PayrollPeriod
	err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(companyID)).
		Order("year DESC, month DESC").
		Find(&rows).Error
	return rows, err
}

func (r *repository) FindByIDAndCompany(ctx context.Context, companyID string, id string) (*PayrollPeriod, error) {
	var row PayrollPeriod
	err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(companyID)).
		First(&row, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *repository) FindByYearMonth(ctx context.Context, companyID string, year, month int) (*PayrollPeriod, error) {
	var row PayrollPeriod
	err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(companyID)).
		Where("year = ? AND month = ?", year, month).
		First(&row).Error
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *repository) Update(ctx context.Context, period *PayrollPeriod) error {
	return r.db.WithContext(ctx).Save(period).Error
}
