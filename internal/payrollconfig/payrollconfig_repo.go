package payrollconfig

import (
	"context"
	"time"

	"go-payroll/internal/tenant"

	"gorm.io/gorm"
)

//go:generate mockgen -source=payrollconfig_repo.go -destination=mock/payrollconfig_repo_mock.go -package=mock
type Repository interface {
	FindActiveByKey(ctx context.Context, companyID, key string, asOf time.Time) ([]PayrollConfiguration, error)
	FindAllByCompany(ctx context.Context, companyID string) ([]PayrollConfiguration, error)
	FindByIDAndCompany(ctx context.Context, companyID string, id string) (*PayrollConfiguration, error)
	Create(ctx context.Context, cfg *PayrollConfiguration) error
	Update(ctx context.Context, cfg *PayrollConfiguration) error
	Delete(ctx context.Context, companyID string, id string) error
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) FindActiveByKey(ctx context.Context, companyID, key string, asOf time.Time) ([]PayrollConfiguration, error) {
	var rows []PayrollConfiguration
	err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(companyID)).
		Where("key = ?", key).
		Where("is_active = ?", true).
		Where("effective_from <= ?", asOf).
		Where("effective_to IS NULL OR effective_to >= ?", asOf).
		Find(&rows).Error
	return rows, err
}

func (r *repository) FindAllByCompany(ctx context.Context, companyID string) ([]PayrollConfiguration, error) {
	var rows []PayrollConfiguration
	err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(companyID)).
		Order("key ASC, effective_from DESC").
		Find(&rows).Error
	return rows, err
}

func (r *repository) FindByIDAndCompany(ctx context.Context, companyID string, id string) (*PayrollConfiguration, error) {
	var row PayrollConfiguration
	err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(companyID)).
		First(&row, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *repository) Create(ctx context.Context, cfg *PayrollConfiguration) error {
	return r.db.WithContext(ctx).Create(cfg).Error
}

func (r *repository) Update(ctx context.Context, cfg *PayrollConfiguration) error {
	return r.db.WithContext(ctx).Save(cfg).Error
}

func (r *repository) Delete(ctx context.Context, companyID string, id string) error {
	return r.db.WithContext(ctx).
		Scopes(tenant.Scope(companyID)).
		Delete(&PayrollConfiguration{}, "id = ?", id).Error
}
