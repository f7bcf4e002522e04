package payrollconfig

import (
	"context"
	"database/sql"
	"time"

	configerrors "go-payroll/internal/payrollconfig/errors"

	"github.com/google/uuid"
)

//go:generate mockgen -source=payrollconfig_service.go -destination=mock/payrollconfig_service_mock.go -package=mock
type Service interface {
	Create(ctx context.Context, companyID, actorID string, req CreateConfigurationRequest) (ConfigurationResponse, error)
	GetAll(ctx context.Context, companyID string) ([]ConfigurationResponse, error)
	GetByID(ctx context.Context, companyID, id string) (ConfigurationResponse, error)
	Update(ctx context.Context, companyID, id string, req UpdateConfigurationRequest) (ConfigurationResponse, error)
	Delete(ctx context.Context, companyID, id string) error
}

type service struct {
	db   *sql.DB
	repo Repository
}

func NewService(db *sql.DB, repo Repository) Service {
	return &service{db: db, repo: repo}
}

func (s *service) Create(
	ctx context.Context,
	companyID, actorID string,
	req CreateConfigurationRequest,
) (ConfigurationResponse, error) {
	companyUUID, err := uuid.Parse(companyID)
	if err != nil {
		return ConfigurationResponse{}, configerrors.ErrConfigNotFoundByID
	}
	actorUUID, err := uuid.Parse(actorID)
	if err != nil {
		return ConfigurationResponse{}, configerrors.ErrConfigNotFoundByID
	}

	if !validConfigType(req.ConfigurationType) {
		return ConfigurationResponse{}, configerrors.ErrInvalidConfigType
	}
	if !validValueType(req.ValueType) {
		return ConfigurationResponse{}, configerrors.ErrInvalidValueType
	}
	if err := validateValue(req.ValueType, req.Value); err != nil {
		return ConfigurationResponse{}, err
	}

	effectiveFrom, effectiveTo, err := parseEffectiveWindow(req.EffectiveFrom, req.EffectiveTo)
	if err != nil {
		return ConfigurationResponse{}, err
	}

	cfg := &PayrollConfiguration{
		ID:                uuid.New(),
		CompanyID:         companyUUID,
		ConfigurationType: req.ConfigurationType,
		Key:               req.Key,
		Value:             req.Value,
		ValueType:         req.ValueType,
		IsActive:          true,
		EffectiveFrom:     effectiveFrom,
		EffectiveTo:       effectiveTo,
		CreatedBy:         actorUUID,
	}

	if req.RoleID != nil && *req.RoleID != "" {
		roleUUID, err := uuid.Parse(*req.RoleID)
		if err != nil {
			return ConfigurationResponse{}, configerrors.ErrConfigNotFoundByID
		}
		cfg.RoleID = &roleUUID
	}
	if req.DepartmentID != nil && *req.DepartmentID != "" {
		deptUUID, err := uuid.Parse(*req.DepartmentID)
		if err != nil {
			return ConfigurationResponse{}, configerrors.ErrConfigNotFoundByID
		}
		cfg.DepartmentID = &deptUUID
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return ConfigurationResponse{}, err
	}
	defer tx.Rollback()

	// Exclusivity: satu key+scope hanya boleh punya satu baris aktif pada
	// tanggal mana pun di window barunya.
	existing, err := s.repo.FindActiveByKey(ctx, companyID, req.Key, effectiveFrom)
	if err != nil {
		return ConfigurationResponse{}, err
	}
	for _, row := range existing {
		if sameScope(row, *cfg) {
			return ConfigurationResponse{}, configerrors.ErrConfigAmbiguous
		}
	}

	if err := s.repo.Create(ctx, cfg); err != nil {
		return ConfigurationResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		return ConfigurationResponse{}, err
	}

	return mapToResponse(*cfg), nil
}

func (s *service) GetAll(ctx context.Context, companyID string) ([]ConfigurationResponse, error) {
	rows, err := s.repo.FindAllByCompany(ctx, companyID)
	if err != nil {
		return nil, err
	}
	res := make([]ConfigurationResponse, len(rows))
	for i, row := range rows {
		res[i] = mapToResponse(row)
	}
	return res, nil
}

func (s *service) GetByID(ctx context.Context, companyID, id string) (ConfigurationResponse, error) {
	row, err := s.repo.FindByIDAndCompany(ctx, companyID, id)
	if err != nil {
		return ConfigurationResponse{}, configerrors.ErrConfigNotFoundByID
	}
	return mapToResponse(*row), nil
}

func (s *service) Update(
	ctx context.Context,
	companyID, id string,
	req UpdateConfigurationRequest,
) (ConfigurationResponse, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return ConfigurationResponse{}, err
	}
	defer tx.Rollback()

	cfg, err := s.repo.FindByIDAndCompany(ctx, companyID, id)
	if err != nil {
		return ConfigurationResponse{}, configerrors.ErrConfigNotFoundByID
	}

	if err := validateValue(cfg.ValueType, req.Value); err != nil {
		return ConfigurationResponse{}, err
	}

	effectiveFrom, effectiveTo, err := parseEffectiveWindow(req.EffectiveFrom, req.EffectiveTo)
	if err != nil {
		return ConfigurationResponse{}, err
	}

	cfg.Value = req.Value
	cfg.EffectiveFrom = effectiveFrom
	cfg.EffectiveTo = effectiveTo
	if req.IsActive != nil {
		cfg.IsActive = *req.IsActive
	}

	if err := s.repo.Update(ctx, cfg); err != nil {
		return ConfigurationResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		return ConfigurationResponse{}, err
	}

	return mapToResponse(*cfg), nil
}

func (s *service) Delete(ctx context.Context, companyID, id string) error {
	return s.repo.Delete(ctx, companyID, id)
}

func validConfigType(t string) bool {
	switch t {
	case TypeSalary, TypeAllowance, TypeDeduction, TypeTax, TypeBonus, TypePenalty:
		return true
	}
	return false
}

func validValueType(t string) bool {
	switch t {
	case ValueDecimal, ValueInteger, ValuePercentage, ValueBoolean, ValueText, ValueJSON:
		return true
	}
	return false
}

// validateValue menolak nilai yang tidak bisa di-coerce sejak awal agar
// kalkulasi tidak pernah menemukan nilai korup.
func validateValue(valueType, raw string) error {
	v := NewConfigValue(valueType, raw)
	var err error
	switch valueType {
	case ValueDecimal:
		_, err = v.Decimal()
	case ValueInteger:
		_, err = v.Int()
	case ValuePercentage:
		_, err = v.Percent()
	case ValueBoolean:
		_, err = v.Bool()
	case ValueJSON:
		var js any
		err = v.JSON(&js)
	case ValueText:
		_, err = v.Text()
	}
	return err
}

func parseEffectiveWindow(from string, to *string) (time.Time, *time.Time, error) {
	effectiveFrom, err := time.Parse("2006-01-02", from)
	if err != nil {
		return time.Time{}, nil, configerrors.ErrInvalidEffectiveRange
	}

	var effectiveTo *time.Time
	if to != nil && *to != "" {
		t, err := time.Parse("2006-01-02", *to)
		if err != nil {
			return time.Time{}, nil, configerrors.ErrInvalidEffectiveRange
		}
		if effectiveFrom.After(t) {
			return time.Time{}, nil, configerrors.ErrInvalidEffectiveRange
		}
		effectiveTo = &t
	}

	return effectiveFrom, effectiveTo, nil
}

func sameScope(a, b PayrollConfiguration) bool {
	return equalUUIDPtr(a.RoleID, b.RoleID) && equalUUIDPtr(a.DepartmentID, b.DepartmentID)
}

func equalUUIDPtr(a, b *uuid.UUID) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func mapToResponse(cfg PayrollConfiguration) ConfigurationResponse {
	resp := ConfigurationResponse{
		ID:                cfg.ID.String(),
		CompanyID:         cfg.CompanyID.String(),
		ConfigurationType: cfg.ConfigurationType,
		Key:               cfg.Key,
		Value:             cfg.Value,
		ValueType:         cfg.ValueType,
		IsActive:          cfg.IsActive,
		EffectiveFrom:     cfg.EffectiveFrom.Format("2006-01-02"),
	}
	if cfg.RoleID != nil {
		v := cfg.RoleID.String()
		resp.RoleID = &v
	}
	if cfg.DepartmentID != nil {
		v := cfg.DepartmentID.String()
		resp.DepartmentID = &v
	}
	if cfg.EffectiveTo != nil {
		v := cfg.EffectiveTo.Format("2006-01-02")
		resp.EffectiveTo = &v
	}
	return resp
}
