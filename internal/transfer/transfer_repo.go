package transfer

import (
	"context"
	"database/sql"

	"go-payroll/internal/shared/connection"
	"go-payroll/internal/tenant"

	"gorm.io/gorm"
)

//go:generate mockgen -source=transfer_repo.go -destination=mock/transfer_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	Create(ctx context.Context, batch *PayrollBankTransfer) error
	FindAllByCompany(ctx context.Context, companyID string) ([]PayrollBankTransfer, error)
	FindByIDAndCompany(ctx context.Context, companyID string, id string) (*PayrollBankTransfer, error)
	FindByPeriodAndStatuses(ctx context.Context, companyID, periodID string, statuses []string) ([]PayrollBankTransfer, error)
	Update(ctx context.Context, batch *PayrollBankTransfer) error
	DeletePendingByPeriod(ctx context.Context, companyID, periodID string) error
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

func (r *repository) Create(ctx context.Context, batch *PayrollBankTransfer) error {
	return r.db.WithContext(ctx).Create(batch).Error
}

func (r *repository) FindAllByCompany(ctx context.Context, companyID string) ([]PayrollBankTransfer, error) {
	var rows []PayrollBankTransfer
	err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(companyID)).
		Order("created_at DESC").
		Find(&rows).Error
	return rows, err
}

func (r *repository) FindByIDAndCompany(ctx context.Context, companyID string, id string) (*PayrollBankTransfer, error) {
	var row PayrollBankTransfer
	err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(companyID)).
		First(&row, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *repository) FindByPeriodAndStatuses(ctx context.Context, companyID, periodID string, statuses []string) ([]PayrollBankTransfer, error) {
	var rows []PayrollBankTransfer
	err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(companyID)).
		Where("period_id = ? AND status IN ?", periodID, statuses).
		Find(&rows).Error
	return rows, err
}

func (r *repository) Update(ctx context.Context, batch *PayrollBankTransfer) error {
	return r.db.WithContext(ctx).Save(batch).Error
}

func (r *repository) DeletePendingByPeriod(ctx context.Context, companyID, periodID string) error {
	return r.db.WithContext(ctx).
		Scopes(tenant.Scope(companyID)).
		Where("period_id = ? AND status = ?", periodID, StatusPending).
		Delete(&PayrollBankTransfer{}).Error
}
