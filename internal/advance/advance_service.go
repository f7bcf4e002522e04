package advance

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	advanceerrors "go-payroll/internal/advance/errors"
	"go-payroll/internal/employee"
	"go-payroll/internal/events"
	"go-payroll/internal/messaging/kafka"
	"go-payroll/internal/payrollconfig"
	"go-payroll/internal/shared/apperror"
	"go-payroll/internal/shared/contextutil"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var defaultMaxPercentage = decimal.NewFromInt(50)

const defaultMaxPerYear = 3

//go:generate mockgen -source=advance_service.go -destination=mock/advance_service_mock.go -package=mock
type Service interface {
	Ledger
	Request(ctx context.Context, companyID, actorID string, req CreateAdvanceRequest) (AdvanceResponse, error)
	Approve(ctx context.Context, companyID, actorID, id string) (AdvanceResponse, error)
	Activate(ctx context.Context, companyID, actorID, id, disbursementDate string) (AdvanceResponse, error)
	Cancel(ctx context.Context, companyID, actorID, id string) (AdvanceResponse, error)
	GetAll(ctx context.Context, companyID string) ([]AdvanceResponse, error)
	GetByID(ctx context.Context, companyID, id string) (AdvanceResponse, error)
}

// Ledger dipakai kalkulator payslip di dalam transaksinya sendiri.
// Reserve memesan potongan per advance aktif, Confirm menurunkan
// outstanding, Release memulihkannya. Rekalkulasi yang idempoten =
// Release lalu Reserve lalu Confirm dalam satu transaksi.
type Ledger interface {
	Reserve(ctx context.Context, tx *sql.Tx, companyID, employeeID, periodID string) (decimal.Decimal, error)
	Confirm(ctx context.Context, tx *sql.Tx, companyID, employeeID, periodID string) error
	Release(ctx context.Context, tx *sql.Tx, companyID, employeeID, periodID string) error
	ReleaseForPeriod(ctx context.Context, tx *sql.Tx, companyID, periodID string) error
}

type service struct {
	db        *sql.DB
	repo      Repository
	employees employee.Repository
	configs   payrollconfig.Resolver
	outbox    kafka.OutboxRepository
	logger    *zap.Logger
}

func NewService(
	db *sql.DB,
	repo Repository,
	employees employee.Repository,
	configs payrollconfig.Resolver,
	logger ...*zap.Logger,
) Service {
	return NewServiceWithOutbox(db, repo, employees, configs, nil, logger...)
}

func NewServiceWithOutbox(
	db *sql.DB,
	repo Repository,
	employees employee.Repository,
	configs payrollconfig.Resolver,
	outboxRepo kafka.OutboxRepository,
	logger ...*zap.Logger,
) Service {
	l := zap.L().Named("advance.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("advance.service")
	}
	return &service{
		db:        db,
		repo:      repo,
		employees: employees,
		configs:   configs,
		outbox:    outboxRepo,
		logger:    l,
	}
}

func (s *service) Request(
	ctx context.Context,
	companyID string,
	actorID string,
	req CreateAdvanceRequest,
) (AdvanceResponse, error) {
	rid := contextutil.GetRequestID(ctx)
	s.logger.Debug("advance request received",
		zap.String("request_id", rid),
		zap.String("company_id", companyID),
		zap.String("employee_id", req.EmployeeID),
		zap.String("amount", req.Amount),
	)

	switch req.AdvanceType {
	case TypeSalary, TypeEmergency, TypePurchase, TypeMedical:
	default:
		return AdvanceResponse{}, advanceerrors.ErrInvalidAdvanceType
	}
	amount, err := decimal.NewFromString(req.Amount)
	if err != nil || !amount.IsPositive() {
		return AdvanceResponse{}, advanceerrors.ErrInvalidAmount
	}
	if req.Installments < 1 {
		return AdvanceResponse{}, advanceerrors.ErrInvalidInstallments
	}

	empl, err := s.employees.FindByIDAndCompany(ctx, companyID, req.EmployeeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return AdvanceResponse{}, advanceerrors.ErrEmployeeNotFound
		}
		return AdvanceResponse{}, err
	}
	scope := payrollconfig.EmployeeScope{RoleID: empl.RoleID, DepartmentID: empl.DepartmentID}
	now := time.Now().UTC()

	maxPct, err := s.configs.ResolveDecimalOr(ctx, companyID, payrollconfig.KeyAdvanceMaxPercentage, scope, now, defaultMaxPercentage)
	if err != nil {
		return AdvanceResponse{}, err
	}
	limit := empl.BasicSalary.Mul(maxPct).Div(decimal.NewFromInt(100))
	if amount.GreaterThan(limit) {
		s.logger.Warn("advance amount over limit",
			zap.String("employee_id", req.EmployeeID),
			zap.String("amount", amount.String()),
			zap.String("limit", limit.String()),
		)
		return AdvanceResponse{}, advanceerrors.ErrAmountExceedsLimit
	}

	maxPerYear, err := s.configs.ResolveIntOr(ctx, companyID, payrollconfig.KeyAdvanceMaxPerYear, scope, now, defaultMaxPerYear)
	if err != nil {
		return AdvanceResponse{}, err
	}
	taken, err := s.repo.CountByEmployeeAndYear(ctx, companyID, req.EmployeeID, now.Year())
	if err != nil {
		return AdvanceResponse{}, err
	}
	if taken >= int64(maxPerYear) {
		return AdvanceResponse{}, advanceerrors.ErrAnnualLimitReached
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("advance request begin tx failed", zap.String("request_id", rid), zap.Error(err))
		return AdvanceResponse{}, err
	}
	defer tx.Rollback()

	adv := &SalaryAdvance{
		ID:                uuid.New(),
		CompanyID:         uuid.MustParse(companyID),
		EmployeeID:        empl.ID,
		AdvanceType:       req.AdvanceType,
		Amount:            amount,
		OutstandingAmount: amount,
		Installments:      req.Installments,
		Status:            StatusPending,
		RequestedAt:       now,
		RequestedBy:       uuid.MustParse(actorID),
	}

	qtx := s.repo.WithTx(tx)
	if err := qtx.Create(ctx, adv); err != nil {
		s.logger.Error("advance request persist failed", zap.Error(err))
		return AdvanceResponse{}, err
	}
	if err := s.queueTransitionEvent(ctx, tx, adv, "advance_requested", "", StatusPending, actorID); err != nil {
		return AdvanceResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("commit failed", zap.String("request_id", rid), zap.Error(err))
		return AdvanceResponse{}, err
	}

	s.logger.Info("advance requested",
		zap.String("request_id", rid),
		zap.String("advance_id", adv.ID.String()),
		zap.String("employee_id", adv.EmployeeID.String()),
	)
	return mapToResponse(adv, now), nil
}

func (s *service) Approve(ctx context.Context, companyID, actorID, id string) (AdvanceResponse, error) {
	now := time.Now().UTC()
	return s.transition(ctx, companyID, actorID, id, "advance_approved", func(adv *SalaryAdvance) error {
		if adv.Status != StatusPending {
			return advanceerrors.ErrInvalidStatusTransition
		}
		approver := uuid.MustParse(actorID)
		adv.Status = StatusApproved
		adv.ApprovedAt = &now
		adv.ApprovedBy = &approver
		return nil
	})
}

func (s *service) Activate(ctx context.Context, companyID, actorID, id, disbursementDate string) (AdvanceResponse, error) {
	disbursed := time.Now().UTC()
	if disbursementDate != "" {
		parsed, err := time.Parse("2006-01-02", disbursementDate)
		if err != nil {
			return AdvanceResponse{}, apperror.InvalidField("disbursement_date")
		}
		disbursed = parsed
	}
	return s.transition(ctx, companyID, actorID, id, "advance_activated", func(adv *SalaryAdvance) error {
		if adv.Status != StatusApproved {
			return advanceerrors.ErrInvalidStatusTransition
		}
		adv.Status = StatusActive
		adv.DisbursementDate = &disbursed
		adv.OutstandingAmount = adv.Amount
		// Sisa pembulatan terserap natural: periode terakhir memotong
		// min(monthly, outstanding) sampai outstanding nol.
		adv.MonthlyDeduction = adv.Amount.
			Div(decimal.NewFromInt(int64(adv.Installments))).
			RoundDown(2)
		return nil
	})
}

func (s *service) Cancel(ctx context.Context, companyID, actorID, id string) (AdvanceResponse, error) {
	return s.transition(ctx, companyID, actorID, id, "advance_cancelled", func(adv *SalaryAdvance) error {
		if adv.Status != StatusPending && adv.Status != StatusApproved {
			return advanceerrors.ErrInvalidStatusTransition
		}
		adv.Status = StatusCancelled
		return nil
	})
}

// transition menjalankan satu perubahan status dalam transaksi dan
// mengantrikan event outbox-nya.
func (s *service) transition(
	ctx context.Context,
	companyID string,
	actorID string,
	id string,
	eventType string,
	apply func(adv *SalaryAdvance) error,
) (AdvanceResponse, error) {
	rid := contextutil.GetRequestID(ctx)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("advance transition begin tx failed", zap.String("request_id", rid), zap.Error(err))
		return AdvanceResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)
	adv, err := qtx.FindByIDAndCompany(ctx, companyID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return AdvanceResponse{}, advanceerrors.ErrAdvanceNotFound
		}
		return AdvanceResponse{}, err
	}

	from := adv.Status
	if err := apply(adv); err != nil {
		s.logger.Warn("advance transition rejected",
			zap.String("advance_id", id),
			zap.String("from", from),
			zap.String("event", eventType),
		)
		return AdvanceResponse{}, err
	}
	if err := qtx.Update(ctx, adv); err != nil {
		s.logger.Error("advance transition persist failed", zap.Error(err))
		return AdvanceResponse{}, err
	}
	if err := s.queueTransitionEvent(ctx, tx, adv, eventType, from, adv.Status, actorID); err != nil {
		return AdvanceResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("commit failed", zap.String("request_id", rid), zap.Error(err))
		return AdvanceResponse{}, err
	}

	s.logger.Info("advance transitioned",
		zap.String("request_id", rid),
		zap.String("advance_id", adv.ID.String()),
		zap.String("from", from),
		zap.String("to", adv.Status),
	)
	return mapToResponse(adv, time.Now().UTC()), nil
}

func (s *service) GetAll(ctx context.Context, companyID string) ([]AdvanceResponse, error) {
	rows, err := s.repo.FindAllByCompany(ctx, companyID)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	resp := make([]AdvanceResponse, 0, len(rows))
	for i := range rows {
		resp = append(resp, mapToResponse(&rows[i], now))
	}
	return resp, nil
}

func (s *service) GetByID(ctx context.Context, companyID, id string) (AdvanceResponse, error) {
	adv, err := s.repo.FindByIDAndCompany(ctx, companyID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return AdvanceResponse{}, advanceerrors.ErrAdvanceNotFound
		}
		return AdvanceResponse{}, err
	}
	return mapToResponse(adv, time.Now().UTC()), nil
}

// Reserve membatalkan reservasi lama untuk pasangan (employee, period)
// lalu memesan ulang dari tiap advance aktif, urut tanggal pencairan.
// Nilai kembalian adalah total potongan yang dipesan.
func (s *service) Reserve(ctx context.Context, tx *sql.Tx, companyID, employeeID, periodID string) (decimal.Decimal, error) {
	qtx := s.repo.WithTx(tx)
	total, err := s.reserveOnce(ctx, qtx, companyID, employeeID, periodID)
	if err == nil || !isUniqueInstallmentViolation(err) {
		return total, err
	}

	// Reservasi paralel keburu mengisi pasangan (advance, period) yang
	// sama. Baca ulang sekali; kalau masih tabrakan, pemanggil yang retry.
	total, err = s.reserveOnce(ctx, qtx, companyID, employeeID, periodID)
	if isUniqueInstallmentViolation(err) {
		return decimal.Zero, advanceerrors.ErrConcurrencyConflict
	}
	return total, err
}

func (s *service) reserveOnce(ctx context.Context, qtx Repository, companyID, employeeID, periodID string) (decimal.Decimal, error) {
	if err := s.releaseFor(ctx, qtx, companyID, employeeID, periodID); err != nil {
		return decimal.Zero, err
	}

	actives, err := qtx.FindActiveByEmployee(ctx, companyID, employeeID)
	if err != nil {
		return decimal.Zero, err
	}

	total := decimal.Zero
	for i := range actives {
		adv := &actives[i]
		amt := decimal.Min(adv.MonthlyDeduction, adv.OutstandingAmount)
		if !amt.IsPositive() {
			continue
		}
		inst := &AdvanceInstallment{
			ID:         uuid.New(),
			CompanyID:  adv.CompanyID,
			AdvanceID:  adv.ID,
			PeriodID:   uuid.MustParse(periodID),
			EmployeeID: adv.EmployeeID,
			Amount:     amt,
			Status:     InstallmentReserved,
		}
		if err := qtx.CreateInstallment(ctx, inst); err != nil {
			return decimal.Zero, err
		}
		total = total.Add(amt)
	}
	return total, nil
}

// Confirm menurunkan outstanding tiap advance sesuai reservasi dan
// menandai cicilannya CONFIRMED. Outstanding nol berarti COMPLETED.
func (s *service) Confirm(ctx context.Context, tx *sql.Tx, companyID, employeeID, periodID string) error {
	qtx := s.repo.WithTx(tx)
	insts, err := qtx.FindInstallmentsByEmployeeAndPeriod(ctx, companyID, employeeID, periodID)
	if err != nil {
		return err
	}
	for i := range insts {
		inst := &insts[i]
		if inst.Status != InstallmentReserved {
			continue
		}
		if err := s.applyDeduction(ctx, qtx, companyID, inst.AdvanceID.String(), inst.Amount); err != nil {
			return err
		}
		inst.Status = InstallmentConfirmed
		if err := qtx.UpdateInstallment(ctx, inst); err != nil {
			return err
		}
	}
	return nil
}

func (s *service) Release(ctx context.Context, tx *sql.Tx, companyID, employeeID, periodID string) error {
	return s.releaseFor(ctx, s.repo.WithTx(tx), companyID, employeeID, periodID)
}

func (s *service) ReleaseForPeriod(ctx context.Context, tx *sql.Tx, companyID, periodID string) error {
	qtx := s.repo.WithTx(tx)
	insts, err := qtx.FindInstallmentsByPeriod(ctx, companyID, periodID)
	if err != nil {
		return err
	}
	return s.releaseRows(ctx, qtx, companyID, insts)
}

func (s *service) releaseFor(ctx context.Context, qtx Repository, companyID, employeeID, periodID string) error {
	insts, err := qtx.FindInstallmentsByEmployeeAndPeriod(ctx, companyID, employeeID, periodID)
	if err != nil {
		return err
	}
	return s.releaseRows(ctx, qtx, companyID, insts)
}

func (s *service) releaseRows(ctx context.Context, qtx Repository, companyID string, insts []AdvanceInstallment) error {
	for i := range insts {
		inst := &insts[i]
		if inst.Status == InstallmentConfirmed {
			if err := s.restoreDeduction(ctx, qtx, companyID, inst.AdvanceID.String(), inst.Amount); err != nil {
				return err
			}
		}
		if err := qtx.DeleteInstallment(ctx, inst.ID.String()); err != nil {
			return err
		}
	}
	return nil
}

// applyDeduction menurunkan outstanding dengan optimistic lock; konflik
// versi di-retry sekali sebelum menyerah.
func (s *service) applyDeduction(ctx context.Context, qtx Repository, companyID, advanceID string, amount decimal.Decimal) error {
	for attempt := 0; attempt < 2; attempt++ {
		adv, err := qtx.FindByIDAndCompany(ctx, companyID, advanceID)
		if err != nil {
			return err
		}
		adv.OutstandingAmount = adv.OutstandingAmount.Sub(amount)
		if adv.OutstandingAmount.IsNegative() {
			adv.OutstandingAmount = decimal.Zero
		}
		if adv.OutstandingAmount.IsZero() {
			now := time.Now().UTC()
			adv.Status = StatusCompleted
			adv.CompletionDate = &now
		}
		ok, err := qtx.UpdateVersioned(ctx, adv, adv.Version)
		if err != nil {
			return err
		}
		if ok {
			if adv.Status == StatusCompleted {
				s.logger.Info("advance fully repaid", zap.String("advance_id", advanceID))
			}
			return nil
		}
		s.logger.Warn("advance version conflict on deduction",
			zap.String("advance_id", advanceID),
			zap.Int("attempt", attempt+1),
		)
	}
	return advanceerrors.ErrConcurrencyConflict
}

func (s *service) restoreDeduction(ctx context.Context, qtx Repository, companyID, advanceID string, amount decimal.Decimal) error {
	for attempt := 0; attempt < 2; attempt++ {
		adv, err := qtx.FindByIDAndCompany(ctx, companyID, advanceID)
		if err != nil {
			return err
		}
		adv.OutstandingAmount = adv.OutstandingAmount.Add(amount)
		if adv.Status == StatusCompleted {
			adv.Status = StatusActive
			adv.CompletionDate = nil
		}
		ok, err := qtx.UpdateVersioned(ctx, adv, adv.Version)
		if err != nil {
			return err
		}
		if ok {
			return nil
		}
		s.logger.Warn("advance version conflict on restore",
			zap.String("advance_id", advanceID),
			zap.Int("attempt", attempt+1),
		)
	}
	return advanceerrors.ErrConcurrencyConflict
}

func (s *service) queueTransitionEvent(
	ctx context.Context,
	tx *sql.Tx,
	adv *SalaryAdvance,
	eventType string,
	from string,
	to string,
	actorID string,
) error {
	if s.outbox == nil {
		return nil
	}
	rid := contextutil.GetRequestID(ctx)
	event := events.AdvanceTransitionedEvent{
		EventType:   eventType,
		RequestID:   rid,
		AdvanceID:   adv.ID.String(),
		EmployeeID:  adv.EmployeeID.String(),
		CompanyID:   adv.CompanyID.String(),
		FromStatus:  from,
		ToStatus:    to,
		Outstanding: adv.OutstandingAmount.StringFixed(2),
		ActorID:     actorID,
		OccurredAt:  time.Now().UTC(),
	}
	payload, err := json.Marshal(event)
	if err != nil {
		s.logger.Error("marshal advance event failed", zap.String("request_id", rid), zap.Error(err))
		return err
	}
	return s.outbox.WithTx(tx).Create(ctx, kafka.OutboxEvent{
		ID:            uuid.NewString(),
		RequestID:     rid,
		AggregateType: "salary_advance",
		AggregateID:   adv.ID.String(),
		EventType:     eventType,
		Topic:         events.AdvanceLifecycleTopic,
		Payload:       payload,
		Status:        kafka.OutboxStatusPending,
	})
}

func mapToResponse(adv *SalaryAdvance, now time.Time) AdvanceResponse {
	resp := AdvanceResponse{
		ID:                adv.ID.String(),
		CompanyID:         adv.CompanyID.String(),
		EmployeeID:        adv.EmployeeID.String(),
		AdvanceType:       adv.AdvanceType,
		Amount:            adv.Amount.StringFixed(2),
		OutstandingAmount: adv.OutstandingAmount.StringFixed(2),
		MonthlyDeduction:  adv.MonthlyDeduction.StringFixed(2),
		Installments:      adv.Installments,
		Status:            adv.Status,
		RequestedAt:       adv.RequestedAt.Format(time.RFC3339),
		IsOverdue:         adv.IsOverdue(now),
	}
	if adv.ApprovedAt != nil {
		v := adv.ApprovedAt.Format(time.RFC3339)
		resp.ApprovedAt = &v
	}
	if adv.DisbursementDate != nil {
		v := adv.DisbursementDate.Format("2006-01-02")
		resp.DisbursementDate = &v
	}
	if adv.CompletionDate != nil {
		v := adv.CompletionDate.Format("2006-01-02")
		resp.CompletionDate = &v
	}
	return resp
}

func isUniqueInstallmentViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}
