package summary

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"go-payroll/internal/department"
	"go-payroll/internal/employee"
	"go-payroll/internal/payrollconfig"
	configerrors "go-payroll/internal/payrollconfig/errors"
	"go-payroll/internal/payslip"
	"go-payroll/internal/role"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	SummaryCacheKeyPrefix = "payroll:summaries:"
	summaryCacheTTL       = 5 * time.Minute
)

func GetSummaryCacheKey(companyID, periodID string) string {
	return SummaryCacheKeyPrefix + companyID + ":" + periodID
}

var defaultAttendanceWeight = decimal.NewFromInt(70)

var aggregatedStatuses = []string{payslip.StatusCalculated, payslip.StatusApproved, payslip.StatusPaid}

//go:generate mockgen -source=summary_service.go -destination=mock/summary_service_mock.go -package=mock
type Service interface {
	// Rebuild menghapus dan menulis ulang seluruh summary periode dari
	// payslip sumber, lalu mengembalikan total lintas departemen. Config
	// efisiensi dibaca per asOf supaya rebuild periode lama tetap memakai
	// nilai yang berlaku saat periode itu diproses.
	Rebuild(ctx context.Context, tx *sql.Tx, companyID, periodID string, asOf time.Time) (PeriodTotals, error)
	GetByPeriod(ctx context.Context, companyID, periodID string) ([]SummaryResponse, error)
}

type service struct {
	repo        Repository
	payslips    payslip.Repository
	employees   employee.Repository
	departments department.Repository
	roles       role.Repository
	configs     payrollconfig.Resolver
	rdb         *redis.Client
	logger      *zap.Logger
}

func NewService(
	repo Repository,
	payslips payslip.Repository,
	employees employee.Repository,
	departments department.Repository,
	roles role.Repository,
	configs payrollconfig.Resolver,
	rdb *redis.Client,
	logger ...*zap.Logger,
) Service {
	l := zap.L().Named("summary.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("summary.service")
	}
	return &service{
		repo:        repo,
		payslips:    payslips,
		employees:   employees,
		departments: departments,
		roles:       roles,
		configs:     configs,
		rdb:         rdb,
		logger:      l,
	}
}

type departmentAccumulator struct {
	department *department.Department

	employeeCount int
	basic         decimal.Decimal
	allowances    decimal.Decimal
	overtime      decimal.Decimal
	gross         decimal.Decimal
	deductions    decimal.Decimal
	net           decimal.Decimal
	epfEmployee   decimal.Decimal
	epfEmployer   decimal.Decimal
	etf           decimal.Decimal

	workingDays  int
	attendedDays int

	roles map[string]*roleBreakdownEntry
}

func (s *service) Rebuild(ctx context.Context, tx *sql.Tx, companyID, periodID string, asOf time.Time) (PeriodTotals, error) {
	slips, err := s.payslips.WithTx(tx).FindByPeriodAndStatuses(ctx, companyID, periodID, aggregatedStatuses)
	if err != nil {
		return PeriodTotals{}, err
	}

	employees, err := s.employees.FindActiveByCompany(ctx, companyID)
	if err != nil {
		return PeriodTotals{}, err
	}
	emplByID := make(map[string]*employee.Employee, len(employees))
	for i := range employees {
		emplByID[employees[i].ID.String()] = &employees[i]
	}

	departments, err := s.departments.FindAllByCompany(ctx, companyID)
	if err != nil {
		return PeriodTotals{}, err
	}
	deptByID := make(map[string]*department.Department, len(departments))
	for i := range departments {
		deptByID[departments[i].ID.String()] = &departments[i]
	}

	roles, err := s.roles.FindAllByCompany(ctx, companyID)
	if err != nil {
		return PeriodTotals{}, err
	}
	roleNameByID := make(map[string]string, len(roles))
	for i := range roles {
		roleNameByID[roles[i].ID.String()] = roles[i].Name
	}

	weight, err := s.attendanceWeight(ctx, companyID, asOf)
	if err != nil {
		return PeriodTotals{}, err
	}

	accs := map[string]*departmentAccumulator{}
	totals := PeriodTotals{
		TotalGross:       decimal.Zero,
		TotalNet:         decimal.Zero,
		TotalDeductions:  decimal.Zero,
		TotalEPFEmployee: decimal.Zero,
		TotalEPFEmployer: decimal.Zero,
		TotalETF:         decimal.Zero,
	}

	for i := range slips {
		slip := &slips[i]
		empl := emplByID[slip.EmployeeID.String()]
		if empl == nil || empl.DepartmentID == nil {
			// Karyawan tanpa departemen tetap masuk total periode,
			// hanya tidak punya baris summary departemen.
			s.addToTotals(&totals, slip)
			continue
		}

		deptID := empl.DepartmentID.String()
		acc, ok := accs[deptID]
		if !ok {
			acc = &departmentAccumulator{
				department: deptByID[deptID],
				roles:      map[string]*roleBreakdownEntry{},
			}
			accs[deptID] = acc
		}

		acc.employeeCount++
		acc.basic = acc.basic.Add(slip.BasicSalary)
		acc.allowances = acc.allowances.Add(slip.TotalAllowances)
		acc.overtime = acc.overtime.Add(slip.TotalOvertimePay)
		acc.gross = acc.gross.Add(slip.GrossSalary)
		acc.deductions = acc.deductions.Add(slip.TotalDeductions)
		acc.net = acc.net.Add(slip.NetSalary)
		acc.epfEmployee = acc.epfEmployee.Add(slip.EmployeeEPFContribution)
		acc.epfEmployer = acc.epfEmployer.Add(slip.EmployerEPFContribution)
		acc.etf = acc.etf.Add(slip.ETFContribution)
		acc.workingDays += slip.WorkingDays
		acc.attendedDays += slip.AttendedDays

		roleKey := "unassigned"
		if empl.RoleID != nil {
			roleKey = empl.RoleID.String()
		}
		entry, ok := acc.roles[roleKey]
		if !ok {
			entry = &roleBreakdownEntry{RoleName: roleKey, TotalGross: "0.00", TotalNet: "0.00"}
			if name, ok := roleNameByID[roleKey]; ok {
				entry.RoleName = name
			}
			acc.roles[roleKey] = entry
		}
		entry.EmployeeCount++
		entry.TotalGross = mustAdd(entry.TotalGross, slip.GrossSalary)
		entry.TotalNet = mustAdd(entry.TotalNet, slip.NetSalary)

		s.addToTotals(&totals, slip)
	}

	rows := make([]PayrollDepartmentSummary, 0, len(accs))
	for deptID, acc := range accs {
		row, err := s.buildRow(companyID, periodID, deptID, acc, weight)
		if err != nil {
			return PeriodTotals{}, err
		}
		rows = append(rows, row)
	}

	qtx := s.repo.WithTx(tx)
	if err := qtx.DeleteByPeriod(ctx, companyID, periodID); err != nil {
		return PeriodTotals{}, err
	}
	if err := qtx.CreateBatch(ctx, rows); err != nil {
		return PeriodTotals{}, err
	}

	if s.rdb != nil {
		cacheKey := GetSummaryCacheKey(companyID, periodID)
		if err := s.rdb.Del(ctx, cacheKey).Err(); err != nil {
			s.logger.Error("failed to invalidate summary cache",
				zap.Error(err),
				zap.String("key", cacheKey),
			)
		}
	}

	s.logger.Info("department summaries rebuilt",
		zap.String("company_id", companyID),
		zap.String("period_id", periodID),
		zap.Int("departments", len(rows)),
		zap.Int("payslips", len(slips)),
	)
	return totals, nil
}

func (s *service) addToTotals(totals *PeriodTotals, slip *payslip.Payslip) {
	totals.EmployeeCount++
	totals.TotalGross = totals.TotalGross.Add(slip.GrossSalary)
	totals.TotalNet = totals.TotalNet.Add(slip.NetSalary)
	totals.TotalDeductions = totals.TotalDeductions.Add(slip.TotalDeductions)
	totals.TotalEPFEmployee = totals.TotalEPFEmployee.Add(slip.EmployeeEPFContribution)
	totals.TotalEPFEmployer = totals.TotalEPFEmployer.Add(slip.EmployerEPFContribution)
	totals.TotalETF = totals.TotalETF.Add(slip.ETFContribution)
}

func (s *service) attendanceWeight(ctx context.Context, companyID string, asOf time.Time) (decimal.Decimal, error) {
	v, err := s.configs.Resolve(ctx, companyID, payrollconfig.KeyEfficiencyAttendanceWeight, payrollconfig.EmployeeScope{}, asOf)
	if err != nil {
		if errors.Is(err, configerrors.ErrConfigNotFound) {
			return defaultAttendanceWeight, nil
		}
		return decimal.Zero, err
	}
	if v.Type == payrollconfig.ValueDecimal {
		return v.Decimal()
	}
	return v.Percent()
}

func (s *service) buildRow(companyID, periodID, deptID string, acc *departmentAccumulator, weight decimal.Decimal) (PayrollDepartmentSummary, error) {
	row := PayrollDepartmentSummary{
		ID:           uuid.New(),
		CompanyID:    uuid.MustParse(companyID),
		PeriodID:     uuid.MustParse(periodID),
		DepartmentID: uuid.MustParse(deptID),

		EmployeeCount:    acc.employeeCount,
		TotalBasicSalary: acc.basic,
		TotalAllowances:  acc.allowances,
		TotalOvertime:    acc.overtime,
		TotalGross:       acc.gross,
		TotalDeductions:  acc.deductions,
		TotalNet:         acc.net,
		TotalEPFEmployee: acc.epfEmployee,
		TotalEPFEmployer: acc.epfEmployer,
		TotalETF:         acc.etf,
	}
	if acc.department != nil {
		row.DepartmentName = acc.department.Name
	}
	if acc.employeeCount > 0 {
		row.AverageSalary = acc.gross.Div(decimal.NewFromInt(int64(acc.employeeCount))).Round(2)
	}
	if acc.department != nil && acc.department.Budget.IsPositive() {
		row.BudgetUtilizationPercentage = acc.gross.
			Div(acc.department.Budget).
			Mul(decimal.NewFromInt(100)).
			Round(2)
	}

	attendanceRatio := decimal.Zero
	if acc.workingDays > 0 {
		attendanceRatio = decimal.NewFromInt(int64(acc.attendedDays)).
			Div(decimal.NewFromInt(int64(acc.workingDays)))
	}
	overtimeRatio := decimal.Zero
	if acc.gross.IsPositive() {
		overtimeRatio = acc.overtime.Div(acc.gross)
		if overtimeRatio.GreaterThan(decimal.NewFromInt(1)) {
			overtimeRatio = decimal.NewFromInt(1)
		}
	}
	w := weight.Div(decimal.NewFromInt(100))
	one := decimal.NewFromInt(1)
	score := w.Mul(attendanceRatio).
		Add(one.Sub(w).Mul(one.Sub(overtimeRatio))).
		Round(4)

	metricsJSON, err := json.Marshal(performanceMetrics{
		AttendanceRatio:           attendanceRatio.Round(4).String(),
		OvertimeRatio:             overtimeRatio.Round(4).String(),
		AttendanceWeight:          weight.String(),
		DepartmentEfficiencyScore: score.String(),
	})
	if err != nil {
		return PayrollDepartmentSummary{}, err
	}
	row.PerformanceMetrics = metricsJSON

	rolesJSON, err := json.Marshal(acc.roles)
	if err != nil {
		return PayrollDepartmentSummary{}, err
	}
	row.RoleBreakdown = rolesJSON

	return row, nil
}

func (s *service) GetByPeriod(ctx context.Context, companyID, periodID string) ([]SummaryResponse, error) {
	cacheKey := GetSummaryCacheKey(companyID, periodID)
	if s.rdb != nil {
		cached, err := s.rdb.Get(ctx, cacheKey).Result()
		if err == nil {
			var resp []SummaryResponse
			if jsonErr := json.Unmarshal([]byte(cached), &resp); jsonErr == nil {
				return resp, nil
			}
		} else if !errors.Is(err, redis.Nil) {
			s.logger.Error("summary cache read failed", zap.Error(err), zap.String("key", cacheKey))
		}
	}

	rows, err := s.repo.FindByPeriod(ctx, companyID, periodID)
	if err != nil {
		return nil, err
	}
	resp := make([]SummaryResponse, 0, len(rows))
	for i := range rows {
		resp = append(resp, mapToResponse(&rows[i]))
	}

	if s.rdb != nil {
		payload, err := json.Marshal(resp)
		if err == nil {
			if err := s.rdb.Set(ctx, cacheKey, payload, summaryCacheTTL).Err(); err != nil {
				s.logger.Error("summary cache write failed", zap.Error(err), zap.String("key", cacheKey))
			}
		}
	}
	return resp, nil
}

func mustAdd(current string, d decimal.Decimal) string {
	c, err := decimal.NewFromString(current)
	if err != nil {
		c = decimal.Zero
	}
	return c.Add(d).StringFixed(2)
}
