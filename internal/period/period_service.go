package period

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"go-payroll/internal/advance"
	"go-payroll/internal/attendance"
	"go-payroll/internal/employee"
	"go-payroll/internal/events"
	"go-payroll/internal/messaging/kafka"
	perioderrors "go-payroll/internal/period/errors"
	"go-payroll/internal/payslip"
	"go-payroll/internal/shared/contextutil"
	"go-payroll/internal/shared/counter"
	"go-payroll/internal/summary"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const payslipCounterType = "payslip_reference"

//go:generate mockgen -source=period_service.go -destination=mock/period_service_mock.go -package=mock
type Service interface {
	Create(ctx context.Context, companyID, actorID string, req CreatePeriodRequest) (PeriodResponse, error)
	StartProcessing(ctx context.Context, companyID, actorID, periodID string) (PeriodResponse, error)
	CompleteProcessing(ctx context.Context, companyID, actorID, periodID string) (PeriodResponse, error)
	ApprovePayroll(ctx context.Context, companyID, actorID, periodID string) (PeriodResponse, error)
	Cancel(ctx context.Context, companyID, actorID, periodID string) (PeriodResponse, error)
	// MarkPaid dipanggil consumer transfer COMPLETED, bukan endpoint HTTP.
	MarkPaid(ctx context.Context, companyID, periodID string) error
	GetAll(ctx context.Context, companyID string) ([]PeriodResponse, error)
	GetByID(ctx context.Context, companyID, id string) (PeriodResponse, error)
}

type service struct {
	db          *sql.DB
	repo        Repository
	payslips    payslip.Repository
	employees   employee.Repository
	attendances attendance.Repository
	counter     counter.Repository
	summaries   summary.Service
	ledger      advance.Ledger
	outbox      kafka.OutboxRepository
	logger      *zap.Logger
}

func NewService(
	db *sql.DB,
	repo Repository,
	payslips payslip.Repository,
	employees employee.Repository,
	attendances attendance.Repository,
	counterRepo counter.Repository,
	summaries summary.Service,
	ledger advance.Ledger,
	logger ...*zap.Logger,
) Service {
	return NewServiceWithOutbox(db, repo, payslips, employees, attendances, counterRepo, summaries, ledger, nil, logger...)
}

func NewServiceWithOutbox(
	db *sql.DB,
	repo Repository,
	payslips payslip.Repository,
	employees employee.Repository,
	attendances attendance.Repository,
	counterRepo counter.Repository,
	summaries summary.Service,
	ledger advance.Ledger,
	outboxRepo kafka.OutboxRepository,
	logger ...*zap.Logger,
) Service {
	l := zap.L().Named("period.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("period.service")
	}
	return &service{
		db:          db,
		repo:        repo,
		payslips:    payslips,
		employees:   employees,
		attendances: attendances,
		counter:     counterRepo,
		summaries:   summaries,
		ledger:      ledger,
		outbox:      outboxRepo,
		logger:      l,
	}
}

func (s *service) Create(ctx context.Context, companyID, actorID string, req CreatePeriodRequest) (PeriodResponse, error) {
	rid := contextutil.GetRequestID(ctx)
	if req.Month < 1 || req.Month > 12 {
		return PeriodResponse{}, perioderrors.ErrInvalidPeriodMonth
	}

	if _, err := s.repo.FindByYearMonth(ctx, companyID, req.Year, req.Month); err == nil {
		return PeriodResponse{}, perioderrors.ErrDuplicatePeriod
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return PeriodResponse{}, err
	}

	start := time.Date(req.Year, time.Month(req.Month), 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, -1)
	cutoff := end
	if req.CutoffDate != "" {
		parsed, err := time.Parse("2006-01-02", req.CutoffDate)
		if err != nil {
			return PeriodResponse{}, perioderrors.ErrInvalidCutoffDate
		}
		cutoff = parsed
	}

	period := &PayrollPeriod{
		ID:         uuid.New(),
		CompanyID:  uuid.MustParse(companyID),
		Year:       req.Year,
		Month:      req.Month,
		PeriodName: periodName(req.Year, req.Month),
		Status:     StatusDraft,
		StartDate:  start,
		EndDate:    end,
		CutoffDate: cutoff,
		CreatedBy:  uuid.MustParse(actorID),
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("create period begin tx failed", zap.String("request_id", rid), zap.Error(err))
		return PeriodResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)
	if err := qtx.Create(ctx, period); err != nil {
		if isUniquePeriodViolation(err) {
			return PeriodResponse{}, perioderrors.ErrDuplicatePeriod
		}
		s.logger.Error("create period persist failed", zap.Error(err))
		return PeriodResponse{}, err
	}
	if err := s.queueTransitionEvent(ctx, tx, period, "period_created", "", StatusDraft, actorID); err != nil {
		return PeriodResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("commit failed", zap.String("request_id", rid), zap.Error(err))
		return PeriodResponse{}, err
	}

	s.logger.Info("payroll period created",
		zap.String("request_id", rid),
		zap.String("period_id", period.ID.String()),
		zap.Int("year", period.Year),
		zap.Int("month", period.Month),
	)
	return mapToResponse(period), nil
}

// StartProcessing membuat satu payslip DRAFT per karyawan aktif yang punya
// data kehadiran periode ini, semuanya dalam satu transaksi.
func (s *service) StartProcessing(ctx context.Context, companyID, actorID, periodID string) (PeriodResponse, error) {
	rid := contextutil.GetRequestID(ctx)

	period, err := s.loadForTransition(ctx, companyID, periodID, StatusProcessing)
	if err != nil {
		return PeriodResponse{}, err
	}

	employees, err := s.employees.FindActiveByCompany(ctx, companyID)
	if err != nil {
		return PeriodResponse{}, err
	}
	attendances, err := s.attendances.FindForPeriod(ctx, companyID, period.Year, period.Month)
	if err != nil {
		return PeriodResponse{}, err
	}
	attendanceByEmployee := make(map[string]bool, len(attendances))
	for i := range attendances {
		attendanceByEmployee[attendances[i].EmployeeID.String()] = true
	}

	var eligible []employee.Employee
	for i := range employees {
		if attendanceByEmployee[employees[i].ID.String()] {
			eligible = append(eligible, employees[i])
		}
	}
	if len(eligible) == 0 {
		return PeriodResponse{}, perioderrors.ErrNoEmployeesWithAttendance
	}

	now := time.Now().UTC()
	actor := uuid.MustParse(actorID)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("start processing begin tx failed", zap.String("request_id", rid), zap.Error(err))
		return PeriodResponse{}, err
	}
	defer tx.Rollback()

	slipRepo := s.payslips.WithTx(tx)
	for i := range eligible {
		nextVal, err := s.counter.GetNextValue(ctx, companyID, payslipCounterType)
		if err != nil {
			s.logger.Error("payslip reference counter failed", zap.Error(err))
			return PeriodResponse{}, err
		}
		slip := &payslip.Payslip{
			ID:              uuid.New(),
			CompanyID:       period.CompanyID,
			PeriodID:        period.ID,
			EmployeeID:      eligible[i].ID,
			ReferenceNumber: fmt.Sprintf("PS-%d%02d-%06d", period.Year, period.Month, nextVal),
			Status:          payslip.StatusDraft,
			CreatedBy:       actor,
		}
		if err := slipRepo.Create(ctx, slip); err != nil {
			if isUniquePeriodViolation(err) {
				// Proses paralel keburu membuat draft pasangan
				// (period, employee) ini. Baca ulang status periode
				// dari pool supaya pesannya menyebut transisi aslinya.
				if fresh, ferr := s.repo.FindByIDAndCompany(ctx, companyID, periodID); ferr == nil && fresh.Status != StatusDraft {
					return PeriodResponse{}, perioderrors.InvalidTransition(fresh.Status, StatusProcessing)
				}
				return PeriodResponse{}, perioderrors.ErrConcurrentProcessing
			}
			s.logger.Error("draft payslip persist failed",
				zap.String("employee_id", eligible[i].ID.String()),
				zap.Error(err),
			)
			return PeriodResponse{}, err
		}
	}

	from := period.Status
	period.Status = StatusProcessing
	period.ProcessingDate = &now
	period.TotalEmployees = len(eligible)
	if err := s.repo.WithTx(tx).Update(ctx, period); err != nil {
		return PeriodResponse{}, err
	}
	if err := s.queueTransitionEvent(ctx, tx, period, "period_processing_started", from, period.Status, actorID); err != nil {
		return PeriodResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("commit failed", zap.String("request_id", rid), zap.Error(err))
		return PeriodResponse{}, err
	}

	s.logger.Info("period processing started",
		zap.String("request_id", rid),
		zap.String("period_id", period.ID.String()),
		zap.Int("payslips_created", len(eligible)),
	)
	return mapToResponse(period), nil
}

// CompleteProcessing menolak selama masih ada payslip yang belum CALCULATED
// dan menyebut kode karyawannya; kalau lolos, summary dibangun ulang dan
// totalnya disalin ke periode.
func (s *service) CompleteProcessing(ctx context.Context, companyID, actorID, periodID string) (PeriodResponse, error) {
	rid := contextutil.GetRequestID(ctx)

	period, err := s.loadForTransition(ctx, companyID, periodID, StatusCompleted)
	if err != nil {
		return PeriodResponse{}, err
	}

	slips, err := s.payslips.FindByPeriod(ctx, companyID, periodID)
	if err != nil {
		return PeriodResponse{}, err
	}
	var outstanding []string
	for i := range slips {
		if slips[i].Status != payslip.StatusCalculated {
			outstanding = append(outstanding, s.employeeCode(ctx, companyID, slips[i].EmployeeID.String()))
		}
	}
	if len(outstanding) > 0 {
		sort.Strings(outstanding)
		s.logger.Warn("complete processing blocked by uncalculated payslips",
			zap.String("period_id", periodID),
			zap.Strings("employee_codes", outstanding),
		)
		return PeriodResponse{}, perioderrors.PayslipsNotCalculated(outstanding)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("complete processing begin tx failed", zap.String("request_id", rid), zap.Error(err))
		return PeriodResponse{}, err
	}
	defer tx.Rollback()

	// Config efisiensi dibaca per tanggal proses periode, bukan hari ini,
	// supaya rebuild periode lama tidak geser gara-gara config baru.
	asOf := period.EndDate
	if period.ProcessingDate != nil {
		asOf = *period.ProcessingDate
	}
	totals, err := s.summaries.Rebuild(ctx, tx, companyID, periodID, asOf)
	if err != nil {
		return PeriodResponse{}, err
	}

	from := period.Status
	period.Status = StatusCompleted
	period.TotalEmployees = totals.EmployeeCount
	period.TotalGross = totals.TotalGross
	period.TotalNet = totals.TotalNet
	period.TotalDeductions = totals.TotalDeductions
	period.TotalEPFEmployee = totals.TotalEPFEmployee
	period.TotalEPFEmployer = totals.TotalEPFEmployer
	period.TotalETF = totals.TotalETF

	if err := s.repo.WithTx(tx).Update(ctx, period); err != nil {
		return PeriodResponse{}, err
	}
	if err := s.queueTransitionEvent(ctx, tx, period, "period_processing_completed", from, period.Status, actorID); err != nil {
		return PeriodResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("commit failed", zap.String("request_id", rid), zap.Error(err))
		return PeriodResponse{}, err
	}

	s.logger.Info("period processing completed",
		zap.String("request_id", rid),
		zap.String("period_id", period.ID.String()),
		zap.String("total_net", period.TotalNet.StringFixed(2)),
	)
	return mapToResponse(period), nil
}

func (s *service) ApprovePayroll(ctx context.Context, companyID, actorID, periodID string) (PeriodResponse, error) {
	rid := contextutil.GetRequestID(ctx)

	period, err := s.loadForTransition(ctx, companyID, periodID, StatusApproved)
	if err != nil {
		return PeriodResponse{}, err
	}

	now := time.Now().UTC()
	actor := uuid.MustParse(actorID)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("approve payroll begin tx failed", zap.String("request_id", rid), zap.Error(err))
		return PeriodResponse{}, err
	}
	defer tx.Rollback()

	flipped, err := s.payslips.WithTx(tx).UpdateStatusByPeriod(
		ctx, companyID, periodID,
		payslip.StatusCalculated, payslip.StatusApproved,
		map[string]any{"approved_by": actor, "approved_at": now},
	)
	if err != nil {
		return PeriodResponse{}, err
	}

	from := period.Status
	period.Status = StatusApproved
	period.ApprovedBy = &actor
	period.ApprovedAt = &now
	if err := s.repo.WithTx(tx).Update(ctx, period); err != nil {
		return PeriodResponse{}, err
	}
	if err := s.queueTransitionEvent(ctx, tx, period, "period_approved", from, period.Status, actorID); err != nil {
		return PeriodResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("commit failed", zap.String("request_id", rid), zap.Error(err))
		return PeriodResponse{}, err
	}

	s.logger.Info("payroll approved",
		zap.String("request_id", rid),
		zap.String("period_id", period.ID.String()),
		zap.Int64("payslips_approved", flipped),
	)
	return mapToResponse(period), nil
}

// Cancel membuang payslip periode beserta reservasi advance-nya, bukan
// membiarkannya tercecer.
func (s *service) Cancel(ctx context.Context, companyID, actorID, periodID string) (PeriodResponse, error) {
	rid := contextutil.GetRequestID(ctx)

	period, err := s.loadForTransition(ctx, companyID, periodID, StatusCancelled)
	if err != nil {
		return PeriodResponse{}, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("cancel period begin tx failed", zap.String("request_id", rid), zap.Error(err))
		return PeriodResponse{}, err
	}
	defer tx.Rollback()

	if err := s.ledger.ReleaseForPeriod(ctx, tx, companyID, periodID); err != nil {
		return PeriodResponse{}, err
	}
	if err := s.payslips.WithTx(tx).DeleteByPeriod(ctx, companyID, periodID); err != nil {
		return PeriodResponse{}, err
	}

	from := period.Status
	period.Status = StatusCancelled
	period.TotalEmployees = 0
	if err := s.repo.WithTx(tx).Update(ctx, period); err != nil {
		return PeriodResponse{}, err
	}
	if err := s.queueTransitionEvent(ctx, tx, period, "period_cancelled", from, period.Status, actorID); err != nil {
		return PeriodResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("commit failed", zap.String("request_id", rid), zap.Error(err))
		return PeriodResponse{}, err
	}

	s.logger.Info("payroll period cancelled",
		zap.String("request_id", rid),
		zap.String("period_id", period.ID.String()),
		zap.String("previous_status", from),
	)
	return mapToResponse(period), nil
}

func (s *service) MarkPaid(ctx context.Context, companyID, periodID string) error {
	period, err := s.loadForTransition(ctx, companyID, periodID, StatusPaid)
	if err != nil {
		// Redelivery dari broker setelah periode sudah PAID bukan kegagalan.
		if current, lookupErr := s.repo.FindByIDAndCompany(ctx, companyID, periodID); lookupErr == nil && current.Status == StatusPaid {
			s.logger.Warn("period already paid, ignoring", zap.String("period_id", periodID))
			return nil
		}
		return err
	}

	now := time.Now().UTC()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := s.payslips.WithTx(tx).UpdateStatusByPeriod(
		ctx, companyID, periodID,
		payslip.StatusApproved, payslip.StatusPaid,
		nil,
	); err != nil {
		return err
	}

	from := period.Status
	period.Status = StatusPaid
	period.PaidAt = &now
	if err := s.repo.WithTx(tx).Update(ctx, period); err != nil {
		return err
	}
	if err := s.queueTransitionEvent(ctx, tx, period, "period_paid", from, period.Status, ""); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	s.logger.Info("payroll period marked paid",
		zap.String("period_id", period.ID.String()),
		zap.String("company_id", companyID),
	)
	return nil
}

func (s *service) GetAll(ctx context.Context, companyID string) ([]PeriodResponse, error) {
	rows, err := s.repo.FindAllByCompany(ctx, companyID)
	if err != nil {
		return nil, err
	}
	resp := make([]PeriodResponse, 0, len(rows))
	for i := range rows {
		resp = append(resp, mapToResponse(&rows[i]))
	}
	return resp, nil
}

func (s *service) GetByID(ctx context.Context, companyID, id string) (PeriodResponse, error) {
	period, err := s.repo.FindByIDAndCompany(ctx, companyID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return PeriodResponse{}, perioderrors.ErrPeriodNotFound
		}
		return PeriodResponse{}, err
	}
	return mapToResponse(period), nil
}

func (s *service) loadForTransition(ctx context.Context, companyID, periodID, to string) (*PayrollPeriod, error) {
	period, err := s.repo.FindByIDAndCompany(ctx, companyID, periodID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, perioderrors.ErrPeriodNotFound
		}
		return nil, err
	}
	if !transitionAllowed(period.Status, to) {
		return nil, perioderrors.InvalidTransition(period.Status, to)
	}
	return period, nil
}

func (s *service) employeeCode(ctx context.Context, companyID, employeeID string) string {
	empl, err := s.employees.FindByIDAndCompany(ctx, companyID, employeeID)
	if err != nil || empl.EmployeeCode == "" {
		return employeeID
	}
	return empl.EmployeeCode
}

func (s *service) queueTransitionEvent(
	ctx context.Context,
	tx *sql.Tx,
	period *PayrollPeriod,
	eventType string,
	from string,
	to string,
	actorID string,
) error {
	if s.outbox == nil {
		return nil
	}
	rid := contextutil.GetRequestID(ctx)
	event := events.PeriodTransitionedEvent{
		EventType:  eventType,
		RequestID:  rid,
		PeriodID:   period.ID.String(),
		CompanyID:  period.CompanyID.String(),
		Year:       period.Year,
		Month:      period.Month,
		FromStatus: from,
		ToStatus:   to,
		ActorID:    actorID,
		OccurredAt: time.Now().UTC(),
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return s.outbox.WithTx(tx).Create(ctx, kafka.OutboxEvent{
		ID:            uuid.NewString(),
		RequestID:     rid,
		AggregateType: "payroll_period",
		AggregateID:   period.ID.String(),
		EventType:     eventType,
		Topic:         events.PeriodLifecycleTopic,
		Payload:       payload,
		Status:        kafka.OutboxStatusPending,
	})
}

func isUniquePeriodViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}
