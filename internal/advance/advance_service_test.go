package advance_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"go-payroll/internal/advance"
	advanceerrors "go-payroll/internal/advance/errors"
	"go-payroll/internal/employee"
	"go-payroll/internal/messaging/kafka"
	"go-payroll/internal/payrollconfig"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

type fakeAdvanceRepository struct {
	withTxFn                 func(tx *sql.Tx) advance.Repository
	createFn                 func(ctx context.Context, adv *advance.SalaryAdvance) error
	findAllByCompanyFn       func(ctx context.Context, companyID string) ([]advance.SalaryAdvance, error)
	findByIDAndCompanyFn     func(ctx context.Context, companyID string, id string) (*advance.SalaryAdvance, error)
	findActiveByEmployeeFn   func(ctx context.Context, companyID, employeeID string) ([]advance.SalaryAdvance, error)
	countByEmployeeAndYearFn func(ctx context.Context, companyID, employeeID string, year int) (int64, error)
	updateFn                 func(ctx context.Context, adv *advance.SalaryAdvance) error
	updateVersionedFn        func(ctx context.Context, adv *advance.SalaryAdvance, expected int) (bool, error)

	createInstallmentFn  func(ctx context.Context, inst *advance.AdvanceInstallment) error
	findInstByEmployeeFn func(ctx context.Context, companyID, employeeID, periodID string) ([]advance.AdvanceInstallment, error)
	findInstByPeriodFn   func(ctx context.Context, companyID, periodID string) ([]advance.AdvanceInstallment, error)
	updateInstallmentFn  func(ctx context.Context, inst *advance.AdvanceInstallment) error
	deleteInstallmentFn  func(ctx context.Context, id string) error
}

func (f *fakeAdvanceRepository) WithTx(tx *sql.Tx) advance.Repository {
	if f.withTxFn != nil {
		return f.withTxFn(tx)
	}
	return f
}

func (f *fakeAdvanceRepository) Create(ctx context.Context, adv *advance.SalaryAdvance) error {
	if f.createFn != nil {
		return f.createFn(ctx, adv)
	}
	return nil
}

func (f *fakeAdvanceRepository) FindAllByCompany(ctx context.Context, companyID string) ([]advance.SalaryAdvance, error) {
	if f.findAllByCompanyFn != nil {
		return f.findAllByCompanyFn(ctx, companyID)
	}
	return nil, nil
}

func (f *fakeAdvanceRepository) FindByIDAndCompany(ctx context.Context, companyID string, id string) (*advance.SalaryAdvance, error) {
	if f.findByIDAndCompanyFn != nil {
		return f.findByIDAndCompanyFn(ctx, companyID, id)
	}
	return nil, sql.ErrNoRows
}

func (f *fakeAdvanceRepository) FindActiveByEmployee(ctx context.Context, companyID, employeeID string) ([]advance.SalaryAdvance, error) {
	if f.findActiveByEmployeeFn != nil {
		return f.findActiveByEmployeeFn(ctx, companyID, employeeID)
	}
	return nil, nil
}

func (f *fakeAdvanceRepository) CountByEmployeeAndYear(ctx context.Context, companyID, employeeID string, year int) (int64, error) {
	if f.countByEmployeeAndYearFn != nil {
		return f.countByEmployeeAndYearFn(ctx, companyID, employeeID, year)
	}
	return 0, nil
}

func (f *fakeAdvanceRepository) Update(ctx context.Context, adv *advance.SalaryAdvance) error {
	if f.updateFn != nil {
		return f.updateFn(ctx, adv)
	}
	return nil
}

func (f *fakeAdvanceRepository) UpdateVersioned(ctx context.Context, adv *advance.SalaryAdvance, expected int) (bool, error) {
	if f.updateVersionedFn != nil {
		return f.updateVersionedFn(ctx, adv, expected)
	}
	return true, nil
}

func (f *fakeAdvanceRepository) CreateInstallment(ctx context.Context, inst *advance.AdvanceInstallment) error {
	if f.createInstallmentFn != nil {
		return f.createInstallmentFn(ctx, inst)
	}
	return nil
}

func (f *fakeAdvanceRepository) FindInstallmentsByEmployeeAndPeriod(ctx context.Context, companyID, employeeID, periodID string) ([]advance.AdvanceInstallment, error) {
	if f.findInstByEmployeeFn != nil {
		return f.findInstByEmployeeFn(ctx, companyID, employeeID, periodID)
	}
	return nil, nil
}

func (f *fakeAdvanceRepository) FindInstallmentsByPeriod(ctx context.Context, companyID, periodID string) ([]advance.AdvanceInstallment, error) {
	if f.findInstByPeriodFn != nil {
		return f.findInstByPeriodFn(ctx, companyID, periodID)
	}
	return nil, nil
}

func (f *fakeAdvanceRepository) UpdateInstallment(ctx context.Context, inst *advance.AdvanceInstallment) error {
	if f.updateInstallmentFn != nil {
		return f.updateInstallmentFn(ctx, inst)
	}
	return nil
}

func (f *fakeAdvanceRepository) DeleteInstallment(ctx context.Context, id string) error {
	if f.deleteInstallmentFn != nil {
		return f.deleteInstallmentFn(ctx, id)
	}
	return nil
}

type fakeEmployeeRepository struct {
	findActiveByCompanyFn func(ctx context.Context, companyID string) ([]employee.Employee, error)
	findByIDAndCompanyFn  func(ctx context.Context, companyID string, id string) (*employee.Employee, error)
}

func (f *fakeEmployeeRepository) FindActiveByCompany(ctx context.Context, companyID string) ([]employee.Employee, error) {
	if f.findActiveByCompanyFn != nil {
		return f.findActiveByCompanyFn(ctx, companyID)
	}
	return nil, nil
}

func (f *fakeEmployeeRepository) FindByID(ctx context.Context, id string) (*employee.Employee, error) {
	return nil, sql.ErrNoRows
}

func (f *fakeEmployeeRepository) FindByIDAndCompany(ctx context.Context, companyID string, id string) (*employee.Employee, error) {
	if f.findByIDAndCompanyFn != nil {
		return f.findByIDAndCompanyFn(ctx, companyID, id)
	}
	return nil, sql.ErrNoRows
}

// fakeResolver mengembalikan default untuk varian *Or dan nol untuk sisanya,
// kecuali di-override per key.
type fakeResolver struct {
	decimals map[string]decimal.Decimal
	ints     map[string]int
}

func (f *fakeResolver) Resolve(ctx context.Context, companyID, key string, scope payrollconfig.EmployeeScope, asOf time.Time) (payrollconfig.ConfigValue, error) {
	return payrollconfig.ConfigValue{}, nil
}

func (f *fakeResolver) ResolveDecimal(ctx context.Context, companyID, key string, scope payrollconfig.EmployeeScope, asOf time.Time) (decimal.Decimal, error) {
	if v, ok := f.decimals[key]; ok {
		return v, nil
	}
	return decimal.Zero, nil
}

func (f *fakeResolver) ResolveDecimalOr(ctx context.Context, companyID, key string, scope payrollconfig.EmployeeScope, asOf time.Time, def decimal.Decimal) (decimal.Decimal, error) {
	if v, ok := f.decimals[key]; ok {
		return v, nil
	}
	return def, nil
}

func (f *fakeResolver) ResolveFraction(ctx context.Context, companyID, key string, scope payrollconfig.EmployeeScope, asOf time.Time) (decimal.Decimal, error) {
	if v, ok := f.decimals[key]; ok {
		return v.Div(decimal.NewFromInt(100)), nil
	}
	return decimal.Zero, nil
}

func (f *fakeResolver) ResolveInt(ctx context.Context, companyID, key string, scope payrollconfig.EmployeeScope, asOf time.Time) (int, error) {
	if v, ok := f.ints[key]; ok {
		return v, nil
	}
	return 0, nil
}

func (f *fakeResolver) ResolveIntOr(ctx context.Context, companyID, key string, scope payrollconfig.EmployeeScope, asOf time.Time, def int) (int, error) {
	if v, ok := f.ints[key]; ok {
		return v, nil
	}
	return def, nil
}

type advanceServiceDeps struct {
	db        *sql.DB
	sqlMock   sqlmock.Sqlmock
	service   advance.Service
	repo      *fakeAdvanceRepository
	employees *fakeEmployeeRepository
	resolver  *fakeResolver
	outbox    *fakeOutboxRepository
}

type fakeOutboxRepository struct {
	createFn func(ctx context.Context, event kafka.OutboxEvent) error
	events   []kafka.OutboxEvent
}

func (f *fakeOutboxRepository) WithTx(tx *sql.Tx) kafka.OutboxRepository {
	return f
}

func (f *fakeOutboxRepository) Create(ctx context.Context, event kafka.OutboxEvent) error {
	if f.createFn != nil {
		return f.createFn(ctx, event)
	}
	f.events = append(f.events, event)
	return nil
}

func (f *fakeOutboxRepository) ListPending(ctx context.Context, limit int) ([]kafka.OutboxEvent, error) {
	return nil, nil
}

func (f *fakeOutboxRepository) MarkSent(ctx context.Context, id string) error {
	return nil
}

func (f *fakeOutboxRepository) MarkFailed(ctx context.Context, id string, reason string) error {
	return nil
}

func setupAdvanceServiceTest(t *testing.T) *advanceServiceDeps {
	t.Helper()

	db, sqlMock, err := sqlmock.New()
	assert.NoError(t, err)

	repo := &fakeAdvanceRepository{}
	employees := &fakeEmployeeRepository{}
	resolver := &fakeResolver{decimals: map[string]decimal.Decimal{}, ints: map[string]int{}}
	outbox := &fakeOutboxRepository{}
	svc := advance.NewServiceWithOutbox(db, repo, employees, resolver, outbox)

	return &advanceServiceDeps{
		db:        db,
		sqlMock:   sqlMock,
		service:   svc,
		repo:      repo,
		employees: employees,
		resolver:  resolver,
		outbox:    outbox,
	}
}

func expectTx(t *testing.T, mock sqlmock.Sqlmock, commit bool) {
	t.Helper()
	mock.ExpectBegin()
	if commit {
		mock.ExpectCommit()
	} else {
		mock.ExpectRollback()
	}
}

func testEmployee(companyID string, salary int64) *employee.Employee {
	return &employee.Employee{
		ID:          uuid.New(),
		CompanyID:   uuid.MustParse(companyID),
		BasicSalary: decimal.NewFromInt(salary),
		IsActive:    true,
	}
}

func TestAdvanceService_Request(t *testing.T) {
	ctx := context.Background()
	companyID := uuid.New().String()
	actorID := uuid.New().String()

	deps := setupAdvanceServiceTest(t)
	defer deps.db.Close()

	empl := testEmployee(companyID, 10000)
	deps.employees.findByIDAndCompanyFn = func(ctx context.Context, cid, id string) (*employee.Employee, error) {
		return empl, nil
	}

	var created *advance.SalaryAdvance
	deps.repo.createFn = func(ctx context.Context, adv *advance.SalaryAdvance) error {
		created = adv
		return nil
	}

	expectTx(t, deps.sqlMock, true)
	resp, err := deps.service.Request(ctx, companyID, actorID, advance.CreateAdvanceRequest{
		EmployeeID:   empl.ID.String(),
		AdvanceType:  advance.TypeSalary,
		Amount:       "3000",
		Installments: 3,
	})

	assert.NoError(t, err)
	assert.NotNil(t, created)
	assert.Equal(t, advance.StatusPending, resp.Status)
	assert.Equal(t, "3000.00", resp.Amount)
	assert.Equal(t, "3000.00", resp.OutstandingAmount)
	assert.Len(t, deps.outbox.events, 1)
	assert.Equal(t, "advance_requested", deps.outbox.events[0].EventType)
	assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
}

func TestAdvanceService_Request_RejectsOverLimit(t *testing.T) {
	ctx := context.Background()
	companyID := uuid.New().String()
	actorID := uuid.New().String()

	deps := setupAdvanceServiceTest(t)
	defer deps.db.Close()

	empl := testEmployee(companyID, 10000)
	deps.employees.findByIDAndCompanyFn = func(ctx context.Context, cid, id string) (*employee.Employee, error) {
		return empl, nil
	}

	// limit default 50% dari basic salary = 5000
	_, err := deps.service.Request(ctx, companyID, actorID, advance.CreateAdvanceRequest{
		EmployeeID:   empl.ID.String(),
		AdvanceType:  advance.TypeEmergency,
		Amount:       "5000.01",
		Installments: 2,
	})

	assert.ErrorIs(t, err, advanceerrors.ErrAmountExceedsLimit)
}

func TestAdvanceService_Request_RejectsAnnualLimit(t *testing.T) {
	ctx := context.Background()
	companyID := uuid.New().String()
	actorID := uuid.New().String()

	deps := setupAdvanceServiceTest(t)
	defer deps.db.Close()

	empl := testEmployee(companyID, 10000)
	deps.employees.findByIDAndCompanyFn = func(ctx context.Context, cid, id string) (*employee.Employee, error) {
		return empl, nil
	}
	deps.resolver.ints[payrollconfig.KeyAdvanceMaxPerYear] = 2
	deps.repo.countByEmployeeAndYearFn = func(ctx context.Context, cid, eid string, year int) (int64, error) {
		return 2, nil
	}

	_, err := deps.service.Request(ctx, companyID, actorID, advance.CreateAdvanceRequest{
		EmployeeID:   empl.ID.String(),
		AdvanceType:  advance.TypeSalary,
		Amount:       "1000",
		Installments: 1,
	})

	assert.ErrorIs(t, err, advanceerrors.ErrAnnualLimitReached)
}

func TestAdvanceService_Request_RejectsUnknownType(t *testing.T) {
	deps := setupAdvanceServiceTest(t)
	defer deps.db.Close()

	_, err := deps.service.Request(context.Background(), uuid.New().String(), uuid.New().String(), advance.CreateAdvanceRequest{
		EmployeeID:   uuid.New().String(),
		AdvanceType:  "LOAN",
		Amount:       "1000",
		Installments: 1,
	})

	assert.ErrorIs(t, err, advanceerrors.ErrInvalidAdvanceType)
}

func TestAdvanceService_Approve(t *testing.T) {
	ctx := context.Background()
	companyID := uuid.New().String()
	actorID := uuid.New().String()

	deps := setupAdvanceServiceTest(t)
	defer deps.db.Close()

	adv := &advance.SalaryAdvance{
		ID:                uuid.New(),
		CompanyID:         uuid.MustParse(companyID),
		EmployeeID:        uuid.New(),
		AdvanceType:       advance.TypeSalary,
		Amount:            decimal.NewFromInt(3000),
		OutstandingAmount: decimal.NewFromInt(3000),
		Installments:      3,
		Status:            advance.StatusPending,
		RequestedAt:       time.Now().UTC(),
	}
	deps.repo.findByIDAndCompanyFn = func(ctx context.Context, cid, id string) (*advance.SalaryAdvance, error) {
		return adv, nil
	}

	expectTx(t, deps.sqlMock, true)
	resp, err := deps.service.Approve(ctx, companyID, actorID, adv.ID.String())

	assert.NoError(t, err)
	assert.Equal(t, advance.StatusApproved, resp.Status)
	assert.NotNil(t, resp.ApprovedAt)
	assert.Len(t, deps.outbox.events, 1)
	assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
}

func TestAdvanceService_Approve_RejectsNonPending(t *testing.T) {
	ctx := context.Background()
	companyID := uuid.New().String()

	deps := setupAdvanceServiceTest(t)
	defer deps.db.Close()

	adv := &advance.SalaryAdvance{
		ID:        uuid.New(),
		CompanyID: uuid.MustParse(companyID),
		Status:    advance.StatusActive,
	}
	deps.repo.findByIDAndCompanyFn = func(ctx context.Context, cid, id string) (*advance.SalaryAdvance, error) {
		return adv, nil
	}

	expectTx(t, deps.sqlMock, false)
	_, err := deps.service.Approve(ctx, companyID, uuid.New().String(), adv.ID.String())

	assert.ErrorIs(t, err, advanceerrors.ErrInvalidStatusTransition)
	assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
}

func TestAdvanceService_Activate_RoundsMonthlyDeductionDown(t *testing.T) {
	ctx := context.Background()
	companyID := uuid.New().String()

	deps := setupAdvanceServiceTest(t)
	defer deps.db.Close()

	adv := &advance.SalaryAdvance{
		ID:                uuid.New(),
		CompanyID:         uuid.MustParse(companyID),
		EmployeeID:        uuid.New(),
		Amount:            decimal.NewFromInt(10000),
		OutstandingAmount: decimal.NewFromInt(10000),
		Installments:      3,
		Status:            advance.StatusApproved,
	}
	deps.repo.findByIDAndCompanyFn = func(ctx context.Context, cid, id string) (*advance.SalaryAdvance, error) {
		return adv, nil
	}

	expectTx(t, deps.sqlMock, true)
	resp, err := deps.service.Activate(ctx, companyID, uuid.New().String(), adv.ID.String(), "2026-03-01")

	assert.NoError(t, err)
	assert.Equal(t, advance.StatusActive, resp.Status)
	assert.Equal(t, "3333.33", resp.MonthlyDeduction)
	assert.Equal(t, "10000.00", resp.OutstandingAmount)
	assert.NotNil(t, resp.DisbursementDate)
	assert.Equal(t, "2026-03-01", *resp.DisbursementDate)
	assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
}

func TestAdvanceService_Cancel_RejectsActive(t *testing.T) {
	ctx := context.Background()
	companyID := uuid.New().String()

	deps := setupAdvanceServiceTest(t)
	defer deps.db.Close()

	adv := &advance.SalaryAdvance{
		ID:        uuid.New(),
		CompanyID: uuid.MustParse(companyID),
		Status:    advance.StatusActive,
	}
	deps.repo.findByIDAndCompanyFn = func(ctx context.Context, cid, id string) (*advance.SalaryAdvance, error) {
		return adv, nil
	}

	expectTx(t, deps.sqlMock, false)
	_, err := deps.service.Cancel(ctx, companyID, uuid.New().String(), adv.ID.String())

	assert.ErrorIs(t, err, advanceerrors.ErrInvalidStatusTransition)
	assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
}

func beginTestTx(t *testing.T, deps *advanceServiceDeps) *sql.Tx {
	t.Helper()
	deps.sqlMock.ExpectBegin()
	tx, err := deps.db.Begin()
	assert.NoError(t, err)
	return tx
}

func TestAdvanceLedger_Reserve_CapsAtOutstanding(t *testing.T) {
	ctx := context.Background()
	companyID := uuid.New().String()
	employeeID := uuid.New().String()
	periodID := uuid.New().String()

	deps := setupAdvanceServiceTest(t)
	defer deps.db.Close()

	first := advance.SalaryAdvance{
		ID:                uuid.New(),
		CompanyID:         uuid.MustParse(companyID),
		EmployeeID:        uuid.MustParse(employeeID),
		MonthlyDeduction:  decimal.NewFromInt(3000),
		OutstandingAmount: decimal.NewFromInt(9000),
		Status:            advance.StatusActive,
	}
	second := advance.SalaryAdvance{
		ID:                uuid.New(),
		CompanyID:         uuid.MustParse(companyID),
		EmployeeID:        uuid.MustParse(employeeID),
		MonthlyDeduction:  decimal.NewFromInt(500),
		OutstandingAmount: decimal.NewFromInt(200),
		Status:            advance.StatusActive,
	}
	deps.repo.findActiveByEmployeeFn = func(ctx context.Context, cid, eid string) ([]advance.SalaryAdvance, error) {
		return []advance.SalaryAdvance{first, second}, nil
	}

	var reserved []advance.AdvanceInstallment
	deps.repo.createInstallmentFn = func(ctx context.Context, inst *advance.AdvanceInstallment) error {
		reserved = append(reserved, *inst)
		return nil
	}

	tx := beginTestTx(t, deps)
	total, err := deps.service.Reserve(ctx, tx, companyID, employeeID, periodID)

	assert.NoError(t, err)
	assert.True(t, decimal.NewFromInt(3200).Equal(total))
	assert.Len(t, reserved, 2)
	assert.Equal(t, advance.InstallmentReserved, reserved[0].Status)
	assert.True(t, decimal.NewFromInt(3000).Equal(reserved[0].Amount))
	assert.True(t, decimal.NewFromInt(200).Equal(reserved[1].Amount))
}

func TestAdvanceLedger_Reserve_RetriesOnceOnDuplicateInstallment(t *testing.T) {
	ctx := context.Background()
	companyID := uuid.New().String()
	employeeID := uuid.New().String()
	periodID := uuid.New().String()

	deps := setupAdvanceServiceTest(t)
	defer deps.db.Close()

	active := advance.SalaryAdvance{
		ID:                uuid.New(),
		CompanyID:         uuid.MustParse(companyID),
		EmployeeID:        uuid.MustParse(employeeID),
		MonthlyDeduction:  decimal.NewFromInt(1000),
		OutstandingAmount: decimal.NewFromInt(5000),
		Status:            advance.StatusActive,
	}
	deps.repo.findActiveByEmployeeFn = func(ctx context.Context, cid, eid string) ([]advance.SalaryAdvance, error) {
		return []advance.SalaryAdvance{active}, nil
	}

	// Insert pertama kalah balapan di unique index (advance_id, period_id);
	// baca ulang berikutnya harus lolos.
	attempts := 0
	deps.repo.createInstallmentFn = func(ctx context.Context, inst *advance.AdvanceInstallment) error {
		attempts++
		if attempts == 1 {
			return &pgconn.PgError{Code: "23505", ConstraintName: "uq_advance_installments_advance_period"}
		}
		return nil
	}

	tx := beginTestTx(t, deps)
	total, err := deps.service.Reserve(ctx, tx, companyID, employeeID, periodID)

	assert.NoError(t, err)
	assert.Equal(t, 2, attempts)
	assert.True(t, decimal.NewFromInt(1000).Equal(total))
}

func TestAdvanceLedger_Reserve_SurfacesConflictWhenRaceRepeats(t *testing.T) {
	ctx := context.Background()
	companyID := uuid.New().String()
	employeeID := uuid.New().String()
	periodID := uuid.New().String()

	deps := setupAdvanceServiceTest(t)
	defer deps.db.Close()

	active := advance.SalaryAdvance{
		ID:                uuid.New(),
		CompanyID:         uuid.MustParse(companyID),
		EmployeeID:        uuid.MustParse(employeeID),
		MonthlyDeduction:  decimal.NewFromInt(1000),
		OutstandingAmount: decimal.NewFromInt(5000),
		Status:            advance.StatusActive,
	}
	deps.repo.findActiveByEmployeeFn = func(ctx context.Context, cid, eid string) ([]advance.SalaryAdvance, error) {
		return []advance.SalaryAdvance{active}, nil
	}

	attempts := 0
	deps.repo.createInstallmentFn = func(ctx context.Context, inst *advance.AdvanceInstallment) error {
		attempts++
		return &pgconn.PgError{Code: "23505", ConstraintName: "uq_advance_installments_advance_period"}
	}

	tx := beginTestTx(t, deps)
	_, err := deps.service.Reserve(ctx, tx, companyID, employeeID, periodID)

	assert.ErrorIs(t, err, advanceerrors.ErrConcurrencyConflict)
	assert.Equal(t, 2, attempts)
}

func TestAdvanceLedger_Confirm_CompletesAtZeroOutstanding(t *testing.T) {
	ctx := context.Background()
	companyID := uuid.New().String()
	employeeID := uuid.New().String()
	periodID := uuid.New().String()

	deps := setupAdvanceServiceTest(t)
	defer deps.db.Close()

	adv := advance.SalaryAdvance{
		ID:                uuid.New(),
		CompanyID:         uuid.MustParse(companyID),
		EmployeeID:        uuid.MustParse(employeeID),
		MonthlyDeduction:  decimal.NewFromInt(3000),
		OutstandingAmount: decimal.NewFromInt(3000),
		Status:            advance.StatusActive,
		Version:           4,
	}
	inst := advance.AdvanceInstallment{
		ID:         uuid.New(),
		CompanyID:  adv.CompanyID,
		AdvanceID:  adv.ID,
		PeriodID:   uuid.MustParse(periodID),
		EmployeeID: adv.EmployeeID,
		Amount:     decimal.NewFromInt(3000),
		Status:     advance.InstallmentReserved,
	}
	deps.repo.findInstByEmployeeFn = func(ctx context.Context, cid, eid, pid string) ([]advance.AdvanceInstallment, error) {
		return []advance.AdvanceInstallment{inst}, nil
	}
	deps.repo.findByIDAndCompanyFn = func(ctx context.Context, cid, id string) (*advance.SalaryAdvance, error) {
		row := adv
		return &row, nil
	}

	var written *advance.SalaryAdvance
	var expectedVersion int
	deps.repo.updateVersionedFn = func(ctx context.Context, a *advance.SalaryAdvance, expected int) (bool, error) {
		written = a
		expectedVersion = expected
		return true, nil
	}
	var confirmed *advance.AdvanceInstallment
	deps.repo.updateInstallmentFn = func(ctx context.Context, i *advance.AdvanceInstallment) error {
		confirmed = i
		return nil
	}

	tx := beginTestTx(t, deps)
	err := deps.service.Confirm(ctx, tx, companyID, employeeID, periodID)

	assert.NoError(t, err)
	assert.NotNil(t, written)
	assert.True(t, written.OutstandingAmount.IsZero())
	assert.Equal(t, advance.StatusCompleted, written.Status)
	assert.NotNil(t, written.CompletionDate)
	assert.Equal(t, 4, expectedVersion)
	assert.NotNil(t, confirmed)
	assert.Equal(t, advance.InstallmentConfirmed, confirmed.Status)
}

func TestAdvanceLedger_Confirm_SurfacesVersionConflict(t *testing.T) {
	ctx := context.Background()
	companyID := uuid.New().String()
	employeeID := uuid.New().String()
	periodID := uuid.New().String()

	deps := setupAdvanceServiceTest(t)
	defer deps.db.Close()

	adv := advance.SalaryAdvance{
		ID:                uuid.New(),
		CompanyID:         uuid.MustParse(companyID),
		EmployeeID:        uuid.MustParse(employeeID),
		MonthlyDeduction:  decimal.NewFromInt(1000),
		OutstandingAmount: decimal.NewFromInt(5000),
		Status:            advance.StatusActive,
	}
	inst := advance.AdvanceInstallment{
		ID:         uuid.New(),
		AdvanceID:  adv.ID,
		EmployeeID: adv.EmployeeID,
		Amount:     decimal.NewFromInt(1000),
		Status:     advance.InstallmentReserved,
	}
	deps.repo.findInstByEmployeeFn = func(ctx context.Context, cid, eid, pid string) ([]advance.AdvanceInstallment, error) {
		return []advance.AdvanceInstallment{inst}, nil
	}
	deps.repo.findByIDAndCompanyFn = func(ctx context.Context, cid, id string) (*advance.SalaryAdvance, error) {
		row := adv
		return &row, nil
	}

	attempts := 0
	deps.repo.updateVersionedFn = func(ctx context.Context, a *advance.SalaryAdvance, expected int) (bool, error) {
		attempts++
		return false, nil
	}

	tx := beginTestTx(t, deps)
	err := deps.service.Confirm(ctx, tx, companyID, employeeID, periodID)

	assert.ErrorIs(t, err, advanceerrors.ErrConcurrencyConflict)
	assert.Equal(t, 2, attempts)
}

func TestAdvanceLedger_Release_RestoresConfirmedDeduction(t *testing.T) {
	ctx := context.Background()
	companyID := uuid.New().String()
	employeeID := uuid.New().String()
	periodID := uuid.New().String()

	deps := setupAdvanceServiceTest(t)
	defer deps.db.Close()

	now := time.Now().UTC()
	adv := advance.SalaryAdvance{
		ID:                uuid.New(),
		CompanyID:         uuid.MustParse(companyID),
		EmployeeID:        uuid.MustParse(employeeID),
		MonthlyDeduction:  decimal.NewFromInt(3000),
		OutstandingAmount: decimal.Zero,
		Status:            advance.StatusCompleted,
		CompletionDate:    &now,
	}
	inst := advance.AdvanceInstallment{
		ID:         uuid.New(),
		AdvanceID:  adv.ID,
		EmployeeID: adv.EmployeeID,
		Amount:     decimal.NewFromInt(3000),
		Status:     advance.InstallmentConfirmed,
	}
	deps.repo.findInstByEmployeeFn = func(ctx context.Context, cid, eid, pid string) ([]advance.AdvanceInstallment, error) {
		return []advance.AdvanceInstallment{inst}, nil
	}
	deps.repo.findByIDAndCompanyFn = func(ctx context.Context, cid, id string) (*advance.SalaryAdvance, error) {
		row := adv
		return &row, nil
	}

	var written *advance.SalaryAdvance
	deps.repo.updateVersionedFn = func(ctx context.Context, a *advance.SalaryAdvance, expected int) (bool, error) {
		written = a
		return true, nil
	}
	var deleted []string
	deps.repo.deleteInstallmentFn = func(ctx context.Context, id string) error {
		deleted = append(deleted, id)
		return nil
	}

	tx := beginTestTx(t, deps)
	err := deps.service.Release(ctx, tx, companyID, employeeID, periodID)

	assert.NoError(t, err)
	assert.NotNil(t, written)
	assert.True(t, decimal.NewFromInt(3000).Equal(written.OutstandingAmount))
	assert.Equal(t, advance.StatusActive, written.Status)
	assert.Nil(t, written.CompletionDate)
	assert.Equal(t, []string{inst.ID.String()}, deleted)
}

func TestSalaryAdvance_IsOverdue(t *testing.T) {
	disbursed := time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)
	adv := advance.SalaryAdvance{
		Status:            advance.StatusActive,
		DisbursementDate:  &disbursed,
		Installments:      3,
		OutstandingAmount: decimal.NewFromInt(100),
	}

	assert.False(t, adv.IsOverdue(time.Date(2026, 4, 10, 0, 0, 0, 0, time.UTC)))
	assert.True(t, adv.IsOverdue(time.Date(2026, 4, 16, 0, 0, 0, 0, time.UTC)))

	settled := adv
	settled.OutstandingAmount = decimal.Zero
	assert.False(t, settled.IsOverdue(time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)))
}
