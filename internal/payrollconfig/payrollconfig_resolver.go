package payrollconfig

import (
	"context"
	"errors"
	"fmt"
	"time"

	configerrors "go-payroll/internal/payrollconfig/errors"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/singleflight"
)

//go:generate mockgen -source=payrollconfig_resolver.go -destination=mock/payrollconfig_resolver_mock.go -package=mock
type Resolver interface {
	Resolve(ctx context.Context, companyID, key string, scope EmployeeScope, asOf time.Time) (ConfigValue, error)
	ResolveDecimal(ctx context.Context, companyID, key string, scope EmployeeScope, asOf time.Time) (decimal.Decimal, error)
	ResolveDecimalOr(ctx context.Context, companyID, key string, scope EmployeeScope, asOf time.Time, def decimal.Decimal) (decimal.Decimal, error)
	ResolveFraction(ctx context.Context, companyID, key string, scope EmployeeScope, asOf time.Time) (decimal.Decimal, error)
	ResolveInt(ctx context.Context, companyID, key string, scope EmployeeScope, asOf time.Time) (int, error)
	ResolveIntOr(ctx context.Context, companyID, key string, scope EmployeeScope, asOf time.Time, def int) (int, error)
}

type resolver struct {
	repo  Repository
	group singleflight.Group
}

func NewResolver(repo Repository) Resolver {
	return &resolver{repo: repo}
}

// Resolve memilih konfigurasi aktif paling spesifik untuk key+scope pada
// tanggal asOf. Dua baris dengan spesifisitas sama adalah configuration
// integrity error, bukan pilihan acak.
func (r *resolver) Resolve(ctx context.Context, companyID, key string, scope EmployeeScope, asOf time.Time) (ConfigValue, error) {
	rows, err := r.loadSnapshot(ctx, companyID, key, asOf)
	if err != nil {
		return ConfigValue{}, err
	}

	best := -1
	var winner *PayrollConfiguration
	ambiguous := false

	for i := range rows {
		cfg := rows[i]
		if !cfg.matches(scope) {
			continue
		}
		s := cfg.specificity()
		switch {
		case s > best:
			best = s
			winner = &rows[i]
			ambiguous = false
		case s == best:
			ambiguous = true
		}
	}

	if winner == nil {
		return ConfigValue{}, configerrors.ErrConfigNotFound
	}
	if ambiguous {
		return ConfigValue{}, configerrors.ErrConfigAmbiguous
	}

	return NewConfigValue(winner.ValueType, winner.Value), nil
}

// loadSnapshot collapse pembacaan paralel untuk key yang sama dalam satu
// company+tanggal; bulk calculation menembak key identik untuk banyak karyawan.
func (r *resolver) loadSnapshot(ctx context.Context, companyID, key string, asOf time.Time) ([]PayrollConfiguration, error) {
	flightKey := fmt.Sprintf("%s:%s:%s", companyID, key, asOf.Format("2006-01-02"))
	v, err, _ := r.group.Do(flightKey, func() (any, error) {
		return r.repo.FindActiveByKey(ctx, companyID, key, asOf)
	})
	if err != nil {
		return nil, err
	}
	return v.([]PayrollConfiguration), nil
}

func (r *resolver) ResolveDecimal(ctx context.Context, companyID, key string, scope EmployeeScope, asOf time.Time) (decimal.Decimal, error) {
	v, err := r.Resolve(ctx, companyID, key, scope, asOf)
	if err != nil {
		return decimal.Zero, err
	}
	return v.Decimal()
}

func (r *resolver) ResolveDecimalOr(ctx context.Context, companyID, key string, scope EmployeeScope, asOf time.Time, def decimal.Decimal) (decimal.Decimal, error) {
	d, err := r.ResolveDecimal(ctx, companyID, key, scope, asOf)
	if errors.Is(err, configerrors.ErrConfigNotFound) {
		return def, nil
	}
	return d, err
}

func (r *resolver) ResolveFraction(ctx context.Context, companyID, key string, scope EmployeeScope, asOf time.Time) (decimal.Decimal, error) {
	v, err := r.Resolve(ctx, companyID, key, scope, asOf)
	if err != nil {
		return decimal.Zero, err
	}
	return v.Fraction()
}

func (r *resolver) ResolveInt(ctx context.Context, companyID, key string, scope EmployeeScope, asOf time.Time) (int, error) {
	v, err := r.Resolve(ctx, companyID, key, scope, asOf)
	if err != nil {
		return 0, err
	}
	return v.Int()
}

func (r *resolver) ResolveIntOr(ctx context.Context, companyID, key string, scope EmployeeScope, asOf time.Time, def int) (int, error) {
	n, err := r.ResolveInt(ctx, companyID, key, scope, asOf)
	if errors.Is(err, configerrors.ErrConfigNotFound) {
		return def, nil
	}
	return n, err
}
