package summary_test

import (
	"context"
	"database/sql"
	"encoding/json"
	"testing"
	"time"

	"go-payroll/internal/department"
	"go-payroll/internal/employee"
	"go-payroll/internal/payrollconfig"
	configerrors "go-payroll/internal/payrollconfig/errors"
	"go-payroll/internal/payslip"
	"go-payroll/internal/role"
	"go-payroll/internal/summary"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

type fakeSummaryRepository struct {
	rows           []summary.PayrollDepartmentSummary
	deletedPeriods []string
	created        []summary.PayrollDepartmentSummary
}

func (f *fakeSummaryRepository) WithTx(tx *sql.Tx) summary.Repository { return f }

func (f *fakeSummaryRepository) DeleteByPeriod(ctx context.Context, companyID, periodID string) error {
	f.deletedPeriods = append(f.deletedPeriods, periodID)
	return nil
}

func (f *fakeSummaryRepository) CreateBatch(ctx context.Context, rows []summary.PayrollDepartmentSummary) error {
	f.created = append(f.created, rows...)
	return nil
}

func (f *fakeSummaryRepository) FindByPeriod(ctx context.Context, companyID, periodID string) ([]summary.PayrollDepartmentSummary, error) {
	return f.rows, nil
}

type fakePayslipRepository struct {
	slips []payslip.Payslip
}

func (f *fakePayslipRepository) WithTx(tx *sql.Tx) payslip.Repository { return f }

func (f *fakePayslipRepository) Create(ctx context.Context, slip *payslip.Payslip) error { return nil }

func (f *fakePayslipRepository) FindByIDAndCompany(ctx context.Context, companyID, id string) (*payslip.Payslip, error) {
	return nil, gorm.ErrRecordNotFound
}

func (f *fakePayslipRepository) FindByPeriod(ctx context.Context, companyID, periodID string) ([]payslip.Payslip, error) {
	return f.slips, nil
}

func (f *fakePayslipRepository) FindByPeriodAndStatuses(ctx context.Context, companyID, periodID string, statuses []string) ([]payslip.Payslip, error) {
	var rows []payslip.Payslip
	for _, slip := range f.slips {
		for _, st := range statuses {
			if slip.Status == st {
				rows = append(rows, slip)
				break
			}
		}
	}
	return rows, nil
}

func (f *fakePayslipRepository) FindByEmployeeAndPeriod(ctx context.Context, companyID, employeeID, periodID string) (*payslip.Payslip, error) {
	return nil, gorm.ErrRecordNotFound
}

func (f *fakePayslipRepository) Save(ctx context.Context, slip *payslip.Payslip) error { return nil }

func (f *fakePayslipRepository) UpdateStatusByPeriod(ctx context.Context, companyID, periodID, fromStatus, toStatus string, fields map[string]any) (int64, error) {
	return 0, nil
}

func (f *fakePayslipRepository) DeleteByPeriod(ctx context.Context, companyID, periodID string) error {
	return nil
}

func (f *fakePayslipRepository) SumNetByPeriodAndStatuses(ctx context.Context, companyID, periodID string, statuses []string) (string, error) {
	return "0", nil
}

type fakeEmployeeRepository struct {
	employees []employee.Employee
}

func (f *fakeEmployeeRepository) FindActiveByCompany(ctx context.Context, companyID string) ([]employee.Employee, error) {
	return f.employees, nil
}

func (f *fakeEmployeeRepository) FindByID(ctx context.Context, id string) (*employee.Employee, error) {
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeEmployeeRepository) FindByIDAndCompany(ctx context.Context, companyID, id string) (*employee.Employee, error) {
	return nil, gorm.ErrRecordNotFound
}

type fakeDepartmentRepository struct {
	departments []department.Department
}

func (f *fakeDepartmentRepository) FindAllByCompany(ctx context.Context, companyID string) ([]department.Department, error) {
	return f.departments, nil
}

func (f *fakeDepartmentRepository) FindByIDAndCompany(ctx context.Context, companyID, id string) (*department.Department, error) {
	return nil, gorm.ErrRecordNotFound
}

type fakeRoleRepository struct {
	roles []role.Role
}

func (f *fakeRoleRepository) FindAllByCompany(ctx context.Context, companyID string) ([]role.Role, error) {
	return f.roles, nil
}

func (f *fakeRoleRepository) FindByIDAndCompany(ctx context.Context, companyID, id string) (*role.Role, error) {
	return nil, gorm.ErrRecordNotFound
}

// fakeResolver jatuh ke ErrConfigNotFound kecuali ada override per key.
type fakeResolver struct {
	values   map[string]payrollconfig.ConfigValue
	resolved []time.Time
}

func (f *fakeResolver) Resolve(ctx context.Context, companyID, key string, scope payrollconfig.EmployeeScope, asOf time.Time) (payrollconfig.ConfigValue, error) {
	f.resolved = append(f.resolved, asOf)
	if v, ok := f.values[key]; ok {
		return v, nil
	}
	return payrollconfig.ConfigValue{}, configerrors.ErrConfigNotFound
}

func (f *fakeResolver) ResolveDecimal(ctx context.Context, companyID, key string, scope payrollconfig.EmployeeScope, asOf time.Time) (decimal.Decimal, error) {
	return decimal.Zero, configerrors.ErrConfigNotFound
}

func (f *fakeResolver) ResolveDecimalOr(ctx context.Context, companyID, key string, scope payrollconfig.EmployeeScope, asOf time.Time, def decimal.Decimal) (decimal.Decimal, error) {
	return def, nil
}

func (f *fakeResolver) ResolveFraction(ctx context.Context, companyID, key string, scope payrollconfig.EmployeeScope, asOf time.Time) (decimal.Decimal, error) {
	return decimal.Zero, configerrors.ErrConfigNotFound
}

func (f *fakeResolver) ResolveInt(ctx context.Context, companyID, key string, scope payrollconfig.EmployeeScope, asOf time.Time) (int, error) {
	return 0, configerrors.ErrConfigNotFound
}

func (f *fakeResolver) ResolveIntOr(ctx context.Context, companyID, key string, scope payrollconfig.EmployeeScope, asOf time.Time, def int) (int, error) {
	return def, nil
}

type summaryTestEnv struct {
	service     summary.Service
	repo        *fakeSummaryRepository
	payslips    *fakePayslipRepository
	employees   *fakeEmployeeRepository
	departments *fakeDepartmentRepository
	roles       *fakeRoleRepository
	resolver    *fakeResolver
}

func setupSummaryServiceTest(t *testing.T) *summaryTestEnv {
	t.Helper()
	env := &summaryTestEnv{
		repo:        &fakeSummaryRepository{},
		payslips:    &fakePayslipRepository{},
		employees:   &fakeEmployeeRepository{},
		departments: &fakeDepartmentRepository{},
		roles:       &fakeRoleRepository{},
		resolver:    &fakeResolver{values: map[string]payrollconfig.ConfigValue{}},
	}
	env.service = summary.NewService(env.repo, env.payslips, env.employees, env.departments, env.roles, env.resolver, nil)
	return env
}

func money(s string) decimal.Decimal {
	d, _ := decimal.NewFromString(s)
	return d
}

func TestSummaryService_Rebuild(t *testing.T) {
	ctx := context.Background()

	companyID := uuid.New()
	periodID := uuid.New()
	processedAt := time.Date(2026, 3, 28, 0, 0, 0, 0, time.UTC)
	deptEng := uuid.New()
	deptOps := uuid.New()
	roleEngineer := uuid.New()
	emplA := uuid.New()
	emplB := uuid.New()
	emplC := uuid.New()
	emplFreelance := uuid.New()

	env := setupSummaryServiceTest(t)
	env.departments.departments = []department.Department{
		{ID: deptEng, Name: "Engineering", Budget: money("100000")},
		{ID: deptOps, Name: "Operations", Budget: decimal.Zero},
	}
	env.roles.roles = []role.Role{
		{ID: roleEngineer, CompanyID: companyID, Name: "Engineer"},
	}
	env.employees.employees = []employee.Employee{
		{ID: emplA, DepartmentID: &deptEng, RoleID: &roleEngineer, IsActive: true},
		{ID: emplB, DepartmentID: &deptEng, IsActive: true},
		{ID: emplC, DepartmentID: &deptOps, IsActive: true},
		{ID: emplFreelance, IsActive: true},
	}
	env.payslips.slips = []payslip.Payslip{
		{
			EmployeeID: emplA, Status: payslip.StatusCalculated,
			BasicSalary: money("28000"), TotalAllowances: money("1500"), TotalOvertimePay: money("500"),
			GrossSalary: money("30000"), TotalDeductions: money("5000"), NetSalary: money("25000"),
			EmployeeEPFContribution: money("2400"), EmployerEPFContribution: money("3600"), ETFContribution: money("900"),
			WorkingDays: 20, AttendedDays: 20,
		},
		{
			EmployeeID: emplB, Status: payslip.StatusApproved,
			BasicSalary: money("19000"), TotalAllowances: money("500"), TotalOvertimePay: money("500"),
			GrossSalary: money("20000"), TotalDeductions: money("3000"), NetSalary: money("17000"),
			EmployeeEPFContribution: money("1600"), EmployerEPFContribution: money("2400"), ETFContribution: money("600"),
			WorkingDays: 20, AttendedDays: 16,
		},
		{
			EmployeeID: emplC, Status: payslip.StatusPaid,
			BasicSalary: money("15000"), GrossSalary: money("15000"), TotalDeductions: money("2000"),
			NetSalary: money("13000"), EmployeeEPFContribution: money("1200"), EmployerEPFContribution: money("1800"),
			ETFContribution: money("450"), WorkingDays: 20, AttendedDays: 19,
		},
		{
			EmployeeID: emplFreelance, Status: payslip.StatusApproved,
			BasicSalary: money("10000"), GrossSalary: money("10000"), TotalDeductions: money("1000"),
			NetSalary: money("9000"), WorkingDays: 20, AttendedDays: 20,
		},
		// DRAFT tidak ikut diagregasi.
		{EmployeeID: emplA, Status: payslip.StatusDraft, GrossSalary: money("99999"), NetSalary: money("99999")},
	}

	t.Run("rebuilds one row per department and returns period totals", func(t *testing.T) {
		totals, err := env.service.Rebuild(ctx, nil, companyID.String(), periodID.String(), processedAt)

		assert.NoError(t, err)
		assert.Equal(t, []string{periodID.String()}, env.repo.deletedPeriods)
		assert.Len(t, env.repo.created, 2)
		// Bobot efisiensi dibaca per tanggal proses periode, bukan time.Now.
		assert.Equal(t, []time.Time{processedAt}, env.resolver.resolved)

		// Karyawan tanpa departemen tetap masuk total periode.
		assert.Equal(t, 4, totals.EmployeeCount)
		assert.Equal(t, "75000.00", totals.TotalGross.StringFixed(2))
		assert.Equal(t, "64000.00", totals.TotalNet.StringFixed(2))
		assert.Equal(t, "11000.00", totals.TotalDeductions.StringFixed(2))
		assert.Equal(t, "5200.00", totals.TotalEPFEmployee.StringFixed(2))
		assert.Equal(t, "7800.00", totals.TotalEPFEmployer.StringFixed(2))
		assert.Equal(t, "1950.00", totals.TotalETF.StringFixed(2))

		var eng *summary.PayrollDepartmentSummary
		for i := range env.repo.created {
			if env.repo.created[i].DepartmentID == deptEng {
				eng = &env.repo.created[i]
			}
		}
		if assert.NotNil(t, eng) {
			assert.Equal(t, "Engineering", eng.DepartmentName)
			assert.Equal(t, 2, eng.EmployeeCount)
			assert.Equal(t, "47000.00", eng.TotalBasicSalary.StringFixed(2))
			assert.Equal(t, "2000.00", eng.TotalAllowances.StringFixed(2))
			assert.Equal(t, "1000.00", eng.TotalOvertime.StringFixed(2))
			assert.Equal(t, "50000.00", eng.TotalGross.StringFixed(2))
			assert.Equal(t, "42000.00", eng.TotalNet.StringFixed(2))
			assert.Equal(t, "25000.00", eng.AverageSalary.StringFixed(2))
			assert.Equal(t, "50.00", eng.BudgetUtilizationPercentage.StringFixed(2))
		}
	})

	t.Run("role breakdown labels known roles and groups the rest as unassigned", func(t *testing.T) {
		var eng *summary.PayrollDepartmentSummary
		for i := range env.repo.created {
			if env.repo.created[i].DepartmentID == deptEng {
				eng = &env.repo.created[i]
			}
		}
		if !assert.NotNil(t, eng) {
			return
		}

		var breakdown map[string]struct {
			RoleName      string `json:"role_name"`
			EmployeeCount int    `json:"employee_count"`
			TotalGross    string `json:"total_gross"`
			TotalNet      string `json:"total_net"`
		}
		assert.NoError(t, json.Unmarshal(eng.RoleBreakdown, &breakdown))
		assert.Len(t, breakdown, 2)
		assert.Equal(t, "Engineer", breakdown[roleEngineer.String()].RoleName)
		assert.Equal(t, 1, breakdown[roleEngineer.String()].EmployeeCount)
		assert.Equal(t, "30000.00", breakdown[roleEngineer.String()].TotalGross)
		assert.Equal(t, "unassigned", breakdown["unassigned"].RoleName)
		assert.Equal(t, "17000.00", breakdown["unassigned"].TotalNet)
	})

	t.Run("performance metrics use the default attendance weight when unconfigured", func(t *testing.T) {
		var eng *summary.PayrollDepartmentSummary
		for i := range env.repo.created {
			if env.repo.created[i].DepartmentID == deptEng {
				eng = &env.repo.created[i]
			}
		}
		if !assert.NotNil(t, eng) {
			return
		}

		var metrics map[string]string
		assert.NoError(t, json.Unmarshal(eng.PerformanceMetrics, &metrics))
		// 36 hadir dari 40 hari kerja, lembur 1000 dari gross 50000.
		assert.Equal(t, "0.9", metrics["attendance_ratio"])
		assert.Equal(t, "0.02", metrics["overtime_ratio"])
		assert.Equal(t, "70", metrics["attendance_weight"])
		// 0.7*0.9 + 0.3*(1-0.02)
		assert.Equal(t, "0.924", metrics["department_efficiency_score"])
	})

	t.Run("configured attendance weight overrides the default", func(t *testing.T) {
		env := setupSummaryServiceTest(t)
		env.resolver.values[payrollconfig.KeyEfficiencyAttendanceWeight] = payrollconfig.NewConfigValue(payrollconfig.ValuePercentage, "50")
		env.departments.departments = []department.Department{{ID: deptEng, Name: "Engineering", Budget: money("100000")}}
		env.employees.employees = []employee.Employee{{ID: emplA, DepartmentID: &deptEng, IsActive: true}}
		env.payslips.slips = []payslip.Payslip{{
			EmployeeID: emplA, Status: payslip.StatusApproved,
			GrossSalary: money("20000"), NetSalary: money("18000"),
			WorkingDays: 20, AttendedDays: 15,
		}}

		_, err := env.service.Rebuild(ctx, nil, companyID.String(), periodID.String(), processedAt)
		assert.NoError(t, err)
		assert.Len(t, env.repo.created, 1)

		var metrics map[string]string
		assert.NoError(t, json.Unmarshal(env.repo.created[0].PerformanceMetrics, &metrics))
		assert.Equal(t, "50", metrics["attendance_weight"])
		// 0.5*0.75 + 0.5*1
		assert.Equal(t, "0.875", metrics["department_efficiency_score"])
	})

	t.Run("period without aggregatable payslips clears summaries", func(t *testing.T) {
		env := setupSummaryServiceTest(t)
		totals, err := env.service.Rebuild(ctx, nil, companyID.String(), periodID.String(), processedAt)

		assert.NoError(t, err)
		assert.Equal(t, []string{periodID.String()}, env.repo.deletedPeriods)
		assert.Empty(t, env.repo.created)
		assert.Equal(t, 0, totals.EmployeeCount)
		assert.True(t, totals.TotalGross.IsZero())
	})
}

func TestSummaryService_GetByPeriod(t *testing.T) {
	ctx := context.Background()
	companyID := uuid.New()
	periodID := uuid.New()

	env := setupSummaryServiceTest(t)
	env.repo.rows = []summary.PayrollDepartmentSummary{{
		ID:             uuid.New(),
		CompanyID:      companyID,
		PeriodID:       periodID,
		DepartmentID:   uuid.New(),
		DepartmentName: "Engineering",
		EmployeeCount:  3,
		TotalGross:     money("90000"),
		TotalNet:       money("78000.5"),
		AverageSalary:  money("30000"),
	}}

	resp, err := env.service.GetByPeriod(ctx, companyID.String(), periodID.String())

	assert.NoError(t, err)
	if assert.Len(t, resp, 1) {
		assert.Equal(t, "Engineering", resp[0].DepartmentName)
		assert.Equal(t, 3, resp[0].EmployeeCount)
		assert.Equal(t, "90000.00", resp[0].TotalGross)
		assert.Equal(t, "78000.50", resp[0].TotalNet)
		assert.Equal(t, "30000.00", resp[0].AverageSalary)
	}
}
