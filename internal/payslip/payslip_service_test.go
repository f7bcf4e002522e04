package payslip_test

import (
	"context"
	"database/sql"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"go-payroll/internal/advance"
	"go-payroll/internal/attendance"
	"go-payroll/internal/employee"
	"go-payroll/internal/payrollconfig"
	configerrors "go-payroll/internal/payrollconfig/errors"
	"go-payroll/internal/payslip"
	paysliperrors "go-payroll/internal/payslip/errors"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

type fakePayslipRepository struct {
	mu    sync.Mutex
	slips map[string]*payslip.Payslip
	saved []*payslip.Payslip
}

func newFakePayslipRepository() *fakePayslipRepository {
	return &fakePayslipRepository{slips: map[string]*payslip.Payslip{}}
}

func (f *fakePayslipRepository) WithTx(tx *sql.Tx) payslip.Repository {
	return f
}

func (f *fakePayslipRepository) Create(ctx context.Context, slip *payslip.Payslip) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	copied := *slip
	f.slips[slip.ID.String()] = &copied
	return nil
}

func (f *fakePayslipRepository) FindByIDAndCompany(ctx context.Context, companyID string, id string) (*payslip.Payslip, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if slip, ok := f.slips[id]; ok {
		copied := *slip
		return &copied, nil
	}
	return nil, sql.ErrNoRows
}

func (f *fakePayslipRepository) FindByPeriod(ctx context.Context, companyID, periodID string) ([]payslip.Payslip, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var rows []payslip.Payslip
	for _, slip := range f.slips {
		if slip.PeriodID.String() == periodID {
			rows = append(rows, *slip)
		}
	}
	return rows, nil
}

func (f *fakePayslipRepository) FindByPeriodAndStatuses(ctx context.Context, companyID, periodID string, statuses []string) ([]payslip.Payslip, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var rows []payslip.Payslip
	for _, slip := range f.slips {
		if slip.PeriodID.String() != periodID {
			continue
		}
		for _, st := range statuses {
			if slip.Status == st {
				rows = append(rows, *slip)
				break
			}
		}
	}
	return rows, nil
}

func (f *fakePayslipRepository) FindByEmployeeAndPeriod(ctx context.Context, companyID, employeeID, periodID string) (*payslip.Payslip, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, slip := range f.slips {
		if slip.EmployeeID.String() == employeeID && slip.PeriodID.String() == periodID {
			copied := *slip
			return &copied, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (f *fakePayslipRepository) Save(ctx context.Context, slip *payslip.Payslip) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	copied := *slip
	f.slips[slip.ID.String()] = &copied
	f.saved = append(f.saved, &copied)
	return nil
}

func (f *fakePayslipRepository) UpdateStatusByPeriod(ctx context.Context, companyID, periodID, fromStatus, toStatus string, fields map[string]any) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for _, slip := range f.slips {
		if slip.PeriodID.String() == periodID && slip.Status == fromStatus {
			slip.Status = toStatus
			n++
		}
	}
	return n, nil
}

func (f *fakePayslipRepository) DeleteByPeriod(ctx context.Context, companyID, periodID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for id, slip := range f.slips {
		if slip.PeriodID.String() == periodID {
			delete(f.slips, id)
		}
	}
	return nil
}

func (f *fakePayslipRepository) SumNetByPeriodAndStatuses(ctx context.Context, companyID, periodID string, statuses []string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	total := decimal.Zero
	for _, slip := range f.slips {
		if slip.PeriodID.String() != periodID {
			continue
		}
		for _, st := range statuses {
			if slip.Status == st {
				total = total.Add(slip.NetSalary)
				break
			}
		}
	}
	return total.StringFixed(2), nil
}

type fakeEmployeeRepository struct {
	employees map[string]*employee.Employee
}

func (f *fakeEmployeeRepository) FindActiveByCompany(ctx context.Context, companyID string) ([]employee.Employee, error) {
	var rows []employee.Employee
	for _, e := range f.employees {
		if e.IsActive {
			rows = append(rows, *e)
		}
	}
	return rows, nil
}

func (f *fakeEmployeeRepository) FindByID(ctx context.Context, id string) (*employee.Employee, error) {
	if e, ok := f.employees[id]; ok {
		return e, nil
	}
	return nil, sql.ErrNoRows
}

func (f *fakeEmployeeRepository) FindByIDAndCompany(ctx context.Context, companyID string, id string) (*employee.Employee, error) {
	if e, ok := f.employees[id]; ok {
		return e, nil
	}
	return nil, sql.ErrNoRows
}

type fakeAttendanceRepository struct {
	rows map[string]*attendance.PeriodAttendance
}

func (f *fakeAttendanceRepository) FindForPeriod(ctx context.Context, companyID string, year, month int) ([]attendance.PeriodAttendance, error) {
	var out []attendance.PeriodAttendance
	for _, a := range f.rows {
		if a.Year == year && a.Month == month {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (f *fakeAttendanceRepository) FindByEmployeeAndPeriod(ctx context.Context, companyID, employeeID string, year, month int) (*attendance.PeriodAttendance, error) {
	if a, ok := f.rows[employeeID]; ok {
		return a, nil
	}
	return nil, gorm.ErrRecordNotFound
}

type fakePeriodDirectory struct {
	view payslip.PeriodView
}

func (f *fakePeriodDirectory) ViewByIDAndCompany(ctx context.Context, companyID, id string) (payslip.PeriodView, error) {
	return f.view, nil
}

// fakeResolver meniru resolver asli: key yang tidak diset = ErrConfigNotFound,
// sehingga jalur default kalkulator ikut teruji.
type fakeResolver struct {
	values map[string]payrollconfig.ConfigValue
}

func newFakeResolver() *fakeResolver {
	return &fakeResolver{values: map[string]payrollconfig.ConfigValue{}}
}

func (f *fakeResolver) set(key, valueType, raw string) {
	f.values[key] = payrollconfig.NewConfigValue(valueType, raw)
}

func (f *fakeResolver) Resolve(ctx context.Context, companyID, key string, scope payrollconfig.EmployeeScope, asOf time.Time) (payrollconfig.ConfigValue, error) {
	if v, ok := f.values[key]; ok {
		return v, nil
	}
	return payrollconfig.ConfigValue{}, configerrors.ErrConfigNotFound
}

func (f *fakeResolver) ResolveDecimal(ctx context.Context, companyID, key string, scope payrollconfig.EmployeeScope, asOf time.Time) (decimal.Decimal, error) {
	v, err := f.Resolve(ctx, companyID, key, scope, asOf)
	if err != nil {
		return decimal.Zero, err
	}
	return v.Decimal()
}

func (f *fakeResolver) ResolveDecimalOr(ctx context.Context, companyID, key string, scope payrollconfig.EmployeeScope, asOf time.Time, def decimal.Decimal) (decimal.Decimal, error) {
	v, err := f.Resolve(ctx, companyID, key, scope, asOf)
	if err != nil {
		return def, nil
	}
	return v.Decimal()
}

func (f *fakeResolver) ResolveFraction(ctx context.Context, companyID, key string, scope payrollconfig.EmployeeScope, asOf time.Time) (decimal.Decimal, error) {
	v, err := f.Resolve(ctx, companyID, key, scope, asOf)
	if err != nil {
		return decimal.Zero, err
	}
	return v.Fraction()
}

func (f *fakeResolver) ResolveInt(ctx context.Context, companyID, key string, scope payrollconfig.EmployeeScope, asOf time.Time) (int, error) {
	v, err := f.Resolve(ctx, companyID, key, scope, asOf)
	if err != nil {
		return 0, err
	}
	return v.Int()
}

func (f *fakeResolver) ResolveIntOr(ctx context.Context, companyID, key string, scope payrollconfig.EmployeeScope, asOf time.Time, def int) (int, error) {
	v, err := f.Resolve(ctx, companyID, key, scope, asOf)
	if err != nil {
		return def, nil
	}
	return v.Int()
}

// memoryAdvanceRepository menyimpan advance + cicilan di memori supaya
// protokol reserve/confirm bisa diuji ujung ke ujung lewat service asli.
type memoryAdvanceRepository struct {
	mu           sync.Mutex
	advances     map[string]*advance.SalaryAdvance
	installments map[string]*advance.AdvanceInstallment
}

func newMemoryAdvanceRepository() *memoryAdvanceRepository {
	return &memoryAdvanceRepository{
		advances:     map[string]*advance.SalaryAdvance{},
		installments: map[string]*advance.AdvanceInstallment{},
	}
}

func (m *memoryAdvanceRepository) WithTx(tx *sql.Tx) advance.Repository { return m }

func (m *memoryAdvanceRepository) Create(ctx context.Context, adv *advance.SalaryAdvance) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *adv
	m.advances[adv.ID.String()] = &copied
	return nil
}

func (m *memoryAdvanceRepository) FindAllByCompany(ctx context.Context, companyID string) ([]advance.SalaryAdvance, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var rows []advance.SalaryAdvance
	for _, a := range m.advances {
		rows = append(rows, *a)
	}
	return rows, nil
}

func (m *memoryAdvanceRepository) FindByIDAndCompany(ctx context.Context, companyID string, id string) (*advance.SalaryAdvance, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if a, ok := m.advances[id]; ok {
		copied := *a
		return &copied, nil
	}
	return nil, sql.ErrNoRows
}

func (m *memoryAdvanceRepository) FindActiveByEmployee(ctx context.Context, companyID, employeeID string) ([]advance.SalaryAdvance, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var rows []advance.SalaryAdvance
	for _, a := range m.advances {
		if a.EmployeeID.String() == employeeID && a.Status == advance.StatusActive {
			rows = append(rows, *a)
		}
	}
	return rows, nil
}

func (m *memoryAdvanceRepository) CountByEmployeeAndYear(ctx context.Context, companyID, employeeID string, year int) (int64, error) {
	return 0, nil
}

func (m *memoryAdvanceRepository) Update(ctx context.Context, adv *advance.SalaryAdvance) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *adv
	m.advances[adv.ID.String()] = &copied
	return nil
}

func (m *memoryAdvanceRepository) UpdateVersioned(ctx context.Context, adv *advance.SalaryAdvance, expected int) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	current, ok := m.advances[adv.ID.String()]
	if !ok || current.Version != expected {
		return false, nil
	}
	copied := *adv
	copied.Version = expected + 1
	m.advances[adv.ID.String()] = &copied
	return true, nil
}

func (m *memoryAdvanceRepository) CreateInstallment(ctx context.Context, inst *advance.AdvanceInstallment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *inst
	m.installments[inst.ID.String()] = &copied
	return nil
}

func (m *memoryAdvanceRepository) FindInstallmentsByEmployeeAndPeriod(ctx context.Context, companyID, employeeID, periodID string) ([]advance.AdvanceInstallment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var rows []advance.AdvanceInstallment
	for _, inst := range m.installments {
		if inst.EmployeeID.String() == employeeID && inst.PeriodID.String() == periodID {
			rows = append(rows, *inst)
		}
	}
	return rows, nil
}

func (m *memoryAdvanceRepository) FindInstallmentsByPeriod(ctx context.Context, companyID, periodID string) ([]advance.AdvanceInstallment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var rows []advance.AdvanceInstallment
	for _, inst := range m.installments {
		if inst.PeriodID.String() == periodID {
			rows = append(rows, *inst)
		}
	}
	return rows, nil
}

func (m *memoryAdvanceRepository) UpdateInstallment(ctx context.Context, inst *advance.AdvanceInstallment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *inst
	m.installments[inst.ID.String()] = &copied
	return nil
}

func (m *memoryAdvanceRepository) DeleteInstallment(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.installments, id)
	return nil
}

type payslipServiceDeps struct {
	db          *sql.DB
	sqlMock     sqlmock.Sqlmock
	service     payslip.Service
	repo        *fakePayslipRepository
	employees   *fakeEmployeeRepository
	attendances *fakeAttendanceRepository
	periods     *fakePeriodDirectory
	resolver    *fakeResolver
	advances    *memoryAdvanceRepository

	companyID string
	periodID  string
}

func setupPayslipServiceTest(t *testing.T) *payslipServiceDeps {
	t.Helper()

	db, sqlMock, err := sqlmock.New()
	assert.NoError(t, err)

	companyID := uuid.New().String()
	periodID := uuid.New().String()

	repo := newFakePayslipRepository()
	employees := &fakeEmployeeRepository{employees: map[string]*employee.Employee{}}
	attendances := &fakeAttendanceRepository{rows: map[string]*attendance.PeriodAttendance{}}
	periods := &fakePeriodDirectory{view: payslip.PeriodView{
		ID:             uuid.MustParse(periodID),
		Status:         "PROCESSING",
		Year:           2026,
		Month:          3,
		ProcessingDate: time.Date(2026, 3, 25, 0, 0, 0, 0, time.UTC),
	}}
	resolver := newFakeResolver()
	advances := newMemoryAdvanceRepository()
	ledger := advance.NewService(db, advances, employees, resolver)

	svc := payslip.NewService(db, repo, employees, attendances, periods, resolver, ledger)

	return &payslipServiceDeps{
		db:          db,
		sqlMock:     sqlMock,
		service:     svc,
		repo:        repo,
		employees:   employees,
		attendances: attendances,
		periods:     periods,
		resolver:    resolver,
		advances:    advances,
		companyID:   companyID,
		periodID:    periodID,
	}
}

func (d *payslipServiceDeps) addEmployee(basicSalary int64) *employee.Employee {
	empl := &employee.Employee{
		ID:          uuid.New(),
		CompanyID:   uuid.MustParse(d.companyID),
		BasicSalary: decimal.NewFromInt(basicSalary),
		IsActive:    true,
	}
	d.employees.employees[empl.ID.String()] = empl
	return empl
}

func (d *payslipServiceDeps) addAttendance(employeeID uuid.UUID, working, attended int) *attendance.PeriodAttendance {
	att := &attendance.PeriodAttendance{
		ID:           uuid.New(),
		CompanyID:    uuid.MustParse(d.companyID),
		EmployeeID:   employeeID,
		Year:         2026,
		Month:        3,
		WorkingDays:  working,
		AttendedDays: attended,
	}
	d.attendances.rows[employeeID.String()] = att
	return att
}

func (d *payslipServiceDeps) addDraftPayslip(employeeID uuid.UUID, ref string) *payslip.Payslip {
	slip := &payslip.Payslip{
		ID:              uuid.New(),
		CompanyID:       uuid.MustParse(d.companyID),
		PeriodID:        uuid.MustParse(d.periodID),
		EmployeeID:      employeeID,
		ReferenceNumber: ref,
		Status:          payslip.StatusDraft,
		CreatedBy:       uuid.New(),
	}
	d.repo.slips[slip.ID.String()] = slip
	return slip
}

func expectCalcTx(t *testing.T, mock sqlmock.Sqlmock) {
	t.Helper()
	mock.ExpectBegin()
	mock.ExpectCommit()
}

func TestPayslipService_Calculate_LeaveDeductionCentExact(t *testing.T) {
	ctx := context.Background()
	deps := setupPayslipServiceTest(t)
	defer deps.db.Close()

	empl := deps.addEmployee(60000)
	deps.addAttendance(empl.ID, 22, 20)
	slip := deps.addDraftPayslip(empl.ID, "PS-202603-000001")

	expectCalcTx(t, deps.sqlMock)
	resp, err := deps.service.Calculate(ctx, deps.companyID, uuid.New().String(), slip.ID.String())

	assert.NoError(t, err)
	assert.Equal(t, payslip.StatusCalculated, resp.Status)
	// 60000 x 2/22 = 5454.5454..., HALF_UP di level sen
	assert.Equal(t, "5454.55", resp.LeaveDeduction)
	assert.Equal(t, "60000.00", resp.BasicSalary)
	assert.Equal(t, "60000.00", resp.GrossSalary)
	// Default EPF karyawan 8% dari basis 60000
	assert.Equal(t, "4800.00", resp.EmployeeEPFContribution)
	assert.Equal(t, "7200.00", resp.EmployerEPFContribution)
	assert.Equal(t, "1800.00", resp.ETFContribution)
	assert.Equal(t, "10254.55", resp.TotalDeductions)
	assert.Equal(t, "49745.45", resp.NetSalary)
	assert.NotNil(t, resp.CalculatedAt)
}

func TestPayslipService_Calculate_RoundingModeDown(t *testing.T) {
	ctx := context.Background()
	deps := setupPayslipServiceTest(t)
	defer deps.db.Close()

	deps.resolver.set(payrollconfig.KeyRoundingMode, payrollconfig.ValueText, "DOWN")

	empl := deps.addEmployee(60000)
	deps.addAttendance(empl.ID, 22, 20)
	slip := deps.addDraftPayslip(empl.ID, "PS-202603-000002")

	expectCalcTx(t, deps.sqlMock)
	resp, err := deps.service.Calculate(ctx, deps.companyID, uuid.New().String(), slip.ID.String())

	assert.NoError(t, err)
	assert.Equal(t, "5454.54", resp.LeaveDeduction)
}

func TestPayslipService_Calculate_GrossIncludesAllEarnings(t *testing.T) {
	ctx := context.Background()
	deps := setupPayslipServiceTest(t)
	defer deps.db.Close()

	deps.resolver.set(payrollconfig.KeyTransportAllowance, payrollconfig.ValueDecimal, "1500")
	deps.resolver.set(payrollconfig.KeyMealPerDay, payrollconfig.ValueDecimal, "100")
	deps.resolver.set(payrollconfig.KeyAttendanceBonus, payrollconfig.ValueDecimal, "2000")
	deps.resolver.set(payrollconfig.KeyPerformanceBonus, payrollconfig.ValueDecimal, "1000")
	deps.resolver.set(payrollconfig.KeyReligiousPay, payrollconfig.ValueDecimal, "500")
	deps.resolver.set(payrollconfig.KeyEPFEmployeePercent, payrollconfig.ValuePercentage, "0")
	deps.resolver.set(payrollconfig.KeyEPFEmployerPercent, payrollconfig.ValuePercentage, "0")
	deps.resolver.set(payrollconfig.KeyETFPercent, payrollconfig.ValuePercentage, "0")

	empl := deps.addEmployee(50000)
	deps.addAttendance(empl.ID, 20, 20) // kehadiran penuh, bonus kehadiran cair
	slip := deps.addDraftPayslip(empl.ID, "PS-202603-000003")

	expectCalcTx(t, deps.sqlMock)
	resp, err := deps.service.Calculate(ctx, deps.companyID, uuid.New().String(), slip.ID.String())

	assert.NoError(t, err)
	// allowances = 1500 + 100x20 = 3500; bonus 2000 + 1000; religius 500
	assert.Equal(t, "3500.00", resp.TotalAllowances)
	assert.Equal(t, "2000.00", resp.AttendanceBonus)
	assert.Equal(t, "57000.00", resp.GrossSalary)
	assert.Equal(t, "0.00", resp.LeaveDeduction)
	assert.Equal(t, "57000.00", resp.NetSalary)
}

func TestPayslipService_Calculate_AdvanceDeductionCommits(t *testing.T) {
	ctx := context.Background()
	deps := setupPayslipServiceTest(t)
	defer deps.db.Close()

	deps.resolver.set(payrollconfig.KeyEPFEmployeePercent, payrollconfig.ValuePercentage, "0")
	deps.resolver.set(payrollconfig.KeyEPFEmployerPercent, payrollconfig.ValuePercentage, "0")
	deps.resolver.set(payrollconfig.KeyETFPercent, payrollconfig.ValuePercentage, "0")

	empl := deps.addEmployee(60000)
	deps.addAttendance(empl.ID, 22, 22)
	slip := deps.addDraftPayslip(empl.ID, "PS-202603-000004")

	disbursed := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	adv := &advance.SalaryAdvance{
		ID:                uuid.New(),
		CompanyID:         uuid.MustParse(deps.companyID),
		EmployeeID:        empl.ID,
		AdvanceType:       advance.TypeSalary,
		Amount:            decimal.NewFromInt(9000),
		OutstandingAmount: decimal.NewFromInt(9000),
		MonthlyDeduction:  decimal.NewFromInt(3000),
		Installments:      3,
		Status:            advance.StatusActive,
		DisbursementDate:  &disbursed,
	}
	assert.NoError(t, deps.advances.Create(ctx, adv))

	expectCalcTx(t, deps.sqlMock)
	resp, err := deps.service.Calculate(ctx, deps.companyID, uuid.New().String(), slip.ID.String())

	assert.NoError(t, err)
	assert.Equal(t, "3000.00", resp.AdvanceDeduction)
	assert.Equal(t, "57000.00", resp.NetSalary)

	after, err := deps.advances.FindByIDAndCompany(ctx, deps.companyID, adv.ID.String())
	assert.NoError(t, err)
	assert.True(t, decimal.NewFromInt(6000).Equal(after.OutstandingAmount))
	assert.Equal(t, advance.StatusActive, after.Status)
}

func TestPayslipService_Calculate_RecalculationIsIdempotent(t *testing.T) {
	ctx := context.Background()
	deps := setupPayslipServiceTest(t)
	defer deps.db.Close()

	empl := deps.addEmployee(60000)
	deps.addAttendance(empl.ID, 22, 22)
	slip := deps.addDraftPayslip(empl.ID, "PS-202603-000005")

	adv := &advance.SalaryAdvance{
		ID:                uuid.New(),
		CompanyID:         uuid.MustParse(deps.companyID),
		EmployeeID:        empl.ID,
		AdvanceType:       advance.TypeSalary,
		Amount:            decimal.NewFromInt(9000),
		OutstandingAmount: decimal.NewFromInt(9000),
		MonthlyDeduction:  decimal.NewFromInt(3000),
		Installments:      3,
		Status:            advance.StatusActive,
	}
	assert.NoError(t, deps.advances.Create(ctx, adv))

	expectCalcTx(t, deps.sqlMock)
	first, err := deps.service.Calculate(ctx, deps.companyID, uuid.New().String(), slip.ID.String())
	assert.NoError(t, err)

	expectCalcTx(t, deps.sqlMock)
	second, err := deps.service.Calculate(ctx, deps.companyID, uuid.New().String(), slip.ID.String())
	assert.NoError(t, err)

	assert.Equal(t, first.GrossSalary, second.GrossSalary)
	assert.Equal(t, first.NetSalary, second.NetSalary)
	assert.Equal(t, first.AdvanceDeduction, second.AdvanceDeduction)

	// Rekalkulasi melepas reservasi lama: outstanding hanya turun sekali.
	after, err := deps.advances.FindByIDAndCompany(ctx, deps.companyID, adv.ID.String())
	assert.NoError(t, err)
	assert.True(t, decimal.NewFromInt(6000).Equal(after.OutstandingAmount))
}

func TestPayslipService_Calculate_NegativeNetClampedAndFlagged(t *testing.T) {
	ctx := context.Background()
	deps := setupPayslipServiceTest(t)
	defer deps.db.Close()

	empl := deps.addEmployee(1000)
	deps.addAttendance(empl.ID, 22, 22)
	slip := deps.addDraftPayslip(empl.ID, "PS-202603-000006")

	adv := &advance.SalaryAdvance{
		ID:                uuid.New(),
		CompanyID:         uuid.MustParse(deps.companyID),
		EmployeeID:        empl.ID,
		AdvanceType:       advance.TypeEmergency,
		Amount:            decimal.NewFromInt(5000),
		OutstandingAmount: decimal.NewFromInt(5000),
		MonthlyDeduction:  decimal.NewFromInt(5000),
		Installments:      1,
		Status:            advance.StatusActive,
	}
	assert.NoError(t, deps.advances.Create(ctx, adv))

	expectCalcTx(t, deps.sqlMock)
	resp, err := deps.service.Calculate(ctx, deps.companyID, uuid.New().String(), slip.ID.String())

	assert.NoError(t, err)
	assert.Equal(t, "0.00", resp.NetSalary)

	var penalties map[string]any
	assert.NoError(t, json.Unmarshal(resp.PenaltyBreakdown, &penalties))
	assert.Equal(t, true, penalties["negative_net_clamped"])
	assert.NotEmpty(t, penalties["clamped_shortfall"])
}

func TestPayslipService_Calculate_ProgressiveTax(t *testing.T) {
	ctx := context.Background()
	deps := setupPayslipServiceTest(t)
	defer deps.db.Close()

	deps.resolver.set(payrollconfig.KeyEPFEmployeePercent, payrollconfig.ValuePercentage, "0")
	deps.resolver.set(payrollconfig.KeyEPFEmployerPercent, payrollconfig.ValuePercentage, "0")
	deps.resolver.set(payrollconfig.KeyETFPercent, payrollconfig.ValuePercentage, "0")
	deps.resolver.set(payrollconfig.KeyTaxBrackets, payrollconfig.ValueJSON,
		`[{"up_to":"100000","rate":"0"},{"up_to":"150000","rate":"6"},{"rate":"12"}]`)

	empl := deps.addEmployee(160000)
	deps.addAttendance(empl.ID, 22, 22)
	slip := deps.addDraftPayslip(empl.ID, "PS-202603-000007")

	expectCalcTx(t, deps.sqlMock)
	resp, err := deps.service.Calculate(ctx, deps.companyID, uuid.New().String(), slip.ID.String())

	assert.NoError(t, err)
	// 0% sampai 100000, 6% atas 50000 = 3000, 12% atas 10000 = 1200
	assert.Equal(t, "4200.00", resp.IncomeTax)
	assert.Equal(t, "155800.00", resp.NetSalary)
}

func TestPayslipService_Calculate_RejectsApprovedPayslip(t *testing.T) {
	ctx := context.Background()
	deps := setupPayslipServiceTest(t)
	defer deps.db.Close()

	empl := deps.addEmployee(60000)
	slip := deps.addDraftPayslip(empl.ID, "PS-202603-000008")
	slip.Status = payslip.StatusApproved

	_, err := deps.service.Calculate(ctx, deps.companyID, uuid.New().String(), slip.ID.String())
	assert.ErrorIs(t, err, paysliperrors.ErrPayslipImmutable)
}

func TestPayslipService_Calculate_RejectsDraftPeriod(t *testing.T) {
	ctx := context.Background()
	deps := setupPayslipServiceTest(t)
	defer deps.db.Close()

	deps.periods.view.Status = "DRAFT"
	empl := deps.addEmployee(60000)
	slip := deps.addDraftPayslip(empl.ID, "PS-202603-000009")

	_, err := deps.service.Calculate(ctx, deps.companyID, uuid.New().String(), slip.ID.String())
	assert.ErrorIs(t, err, paysliperrors.ErrPeriodNotProcessable)
}

func TestPayslipService_Calculate_RejectsMissingAttendance(t *testing.T) {
	ctx := context.Background()
	deps := setupPayslipServiceTest(t)
	defer deps.db.Close()

	empl := deps.addEmployee(60000)
	slip := deps.addDraftPayslip(empl.ID, "PS-202603-000010")

	_, err := deps.service.Calculate(ctx, deps.companyID, uuid.New().String(), slip.ID.String())
	assert.ErrorIs(t, err, paysliperrors.ErrAttendanceMissing)
}

func TestPayslipService_BulkCalculate_IsolatesFailures(t *testing.T) {
	ctx := context.Background()
	deps := setupPayslipServiceTest(t)
	defer deps.db.Close()

	ok1 := deps.addEmployee(60000)
	deps.addAttendance(ok1.ID, 22, 22)
	deps.addDraftPayslip(ok1.ID, "PS-202603-000011")

	ok2 := deps.addEmployee(45000)
	deps.addAttendance(ok2.ID, 22, 21)
	deps.addDraftPayslip(ok2.ID, "PS-202603-000012")

	broken := deps.addEmployee(30000) // tanpa data kehadiran
	deps.addDraftPayslip(broken.ID, "PS-202603-000013")

	deps.sqlMock.MatchExpectationsInOrder(false)
	for i := 0; i < 2; i++ {
		deps.sqlMock.ExpectBegin()
		deps.sqlMock.ExpectCommit()
	}

	results, err := deps.service.BulkCalculate(ctx, deps.companyID, uuid.New().String(), deps.periodID, nil)

	assert.NoError(t, err)
	assert.Len(t, results, 3)

	statuses := map[string]string{}
	for _, r := range results {
		statuses[r.EmployeeID] = r.Status
	}
	assert.Equal(t, payslip.StatusCalculated, statuses[ok1.ID.String()])
	assert.Equal(t, payslip.StatusCalculated, statuses[ok2.ID.String()])
	assert.Equal(t, "FAILED", statuses[broken.ID.String()])
}
