package payslip

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"sort"
	"sync"
	"time"

	"go-payroll/internal/advance"
	"go-payroll/internal/attendance"
	"go-payroll/internal/employee"
	"go-payroll/internal/events"
	"go-payroll/internal/messaging/kafka"
	"go-payroll/internal/payrollconfig"
	paysliperrors "go-payroll/internal/payslip/errors"
	"go-payroll/internal/shared/contextutil"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// bulkWorkers membatasi paralelisme bulk-calculate; tiap worker memegang
// transaksi DB sendiri.
const bulkWorkers = 4

const (
	periodProcessing = "PROCESSING"
	periodCompleted  = "COMPLETED"
)

// PeriodView adalah potret periode secukupnya untuk kalkulasi; entity
// lengkapnya milik paket period.
type PeriodView struct {
	ID             uuid.UUID
	Status         string
	Year           int
	Month          int
	ProcessingDate time.Time
}

type PeriodDirectory interface {
	ViewByIDAndCompany(ctx context.Context, companyID, id string) (PeriodView, error)
}

type BulkItemResult struct {
	PayslipID  string `json:"payslip_id"`
	EmployeeID string `json:"employee_id"`
	Status     string `json:"status"`
	Error      string `json:"error,omitempty"`
}

//go:generate mockgen -source=payslip_service.go -destination=mock/payslip_service_mock.go -package=mock
type Service interface {
	Calculate(ctx context.Context, companyID, actorID, payslipID string) (PayslipResponse, error)
	BulkCalculate(ctx context.Context, companyID, actorID, periodID string, employeeIDs []string) ([]BulkItemResult, error)
	GetByPeriod(ctx context.Context, companyID, periodID string) ([]PayslipResponse, error)
	GetByID(ctx context.Context, companyID, id string) (PayslipResponse, error)
	RenderPDF(ctx context.Context, companyID, id string) ([]byte, string, error)
}

type service struct {
	db          *sql.DB
	repo        Repository
	employees   employee.Repository
	attendances attendance.Repository
	periods     PeriodDirectory
	ledger      advance.Ledger
	calc        *calculator
	outbox      kafka.OutboxRepository
	logger      *zap.Logger
}

func NewService(
	db *sql.DB,
	repo Repository,
	employees employee.Repository,
	attendances attendance.Repository,
	periods PeriodDirectory,
	configs payrollconfig.Resolver,
	ledger advance.Ledger,
	logger ...*zap.Logger,
) Service {
	return NewServiceWithOutbox(db, repo, employees, attendances, periods, configs, ledger, nil, logger...)
}

func NewServiceWithOutbox(
	db *sql.DB,
	repo Repository,
	employees employee.Repository,
	attendances attendance.Repository,
	periods PeriodDirectory,
	configs payrollconfig.Resolver,
	ledger advance.Ledger,
	outboxRepo kafka.OutboxRepository,
	logger ...*zap.Logger,
) Service {
	l := zap.L().Named("payslip.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("payslip.service")
	}
	return &service{
		db:          db,
		repo:        repo,
		employees:   employees,
		attendances: attendances,
		periods:     periods,
		ledger:      ledger,
		calc:        newCalculator(configs),
		outbox:      outboxRepo,
		logger:      l,
	}
}

// Calculate menjalankan seluruh algoritma untuk satu payslip dalam satu
// transaksi: reservasi cicilan advance dilepas dulu, dipesan ulang, lalu
// dikonfirmasi bersama commit payslip supaya rekalkulasi tidak drift.
func (s *service) Calculate(ctx context.Context, companyID, actorID, payslipID string) (PayslipResponse, error) {
	rid := contextutil.GetRequestID(ctx)
	s.logger.Debug("payslip calculation requested",
		zap.String("request_id", rid),
		zap.String("company_id", companyID),
		zap.String("payslip_id", payslipID),
	)

	slip, err := s.repo.FindByIDAndCompany(ctx, companyID, payslipID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return PayslipResponse{}, paysliperrors.ErrPayslipNotFound
		}
		return PayslipResponse{}, err
	}
	if slip.Status == StatusApproved || slip.Status == StatusPaid {
		return PayslipResponse{}, paysliperrors.ErrPayslipImmutable
	}

	period, err := s.periods.ViewByIDAndCompany(ctx, companyID, slip.PeriodID.String())
	if err != nil {
		return PayslipResponse{}, err
	}
	if period.Status != periodProcessing && period.Status != periodCompleted {
		return PayslipResponse{}, paysliperrors.ErrPeriodNotProcessable
	}

	empl, err := s.employees.FindByIDAndCompany(ctx, companyID, slip.EmployeeID.String())
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return PayslipResponse{}, paysliperrors.ErrEmployeeInactive
		}
		return PayslipResponse{}, err
	}
	if !empl.IsActive {
		return PayslipResponse{}, paysliperrors.ErrEmployeeInactive
	}

	att, err := s.attendances.FindByEmployeeAndPeriod(ctx, companyID, slip.EmployeeID.String(), period.Year, period.Month)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return PayslipResponse{}, paysliperrors.ErrAttendanceMissing
		}
		return PayslipResponse{}, err
	}

	scope := payrollconfig.EmployeeScope{RoleID: empl.RoleID, DepartmentID: empl.DepartmentID}
	card, err := s.calc.loadRates(ctx, companyID, scope, period.ProcessingDate)
	if err != nil {
		return PayslipResponse{}, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("calculate begin tx failed", zap.String("request_id", rid), zap.Error(err))
		return PayslipResponse{}, err
	}
	defer tx.Rollback()

	reserved, err := s.ledger.Reserve(ctx, tx, companyID, slip.EmployeeID.String(), slip.PeriodID.String())
	if err != nil {
		return PayslipResponse{}, err
	}
	slip.AdvanceDeduction = card.rounding.round(reserved)

	if err := s.calc.compute(slip, empl, att, card, period.ProcessingDate); err != nil {
		return PayslipResponse{}, err
	}

	now := time.Now().UTC()
	actor := uuid.MustParse(actorID)
	slip.Status = StatusCalculated
	slip.CalculatedBy = &actor
	slip.CalculatedAt = &now

	qtx := s.repo.WithTx(tx)
	if err := qtx.Save(ctx, slip); err != nil {
		s.logger.Error("calculate persist failed", zap.String("payslip_id", payslipID), zap.Error(err))
		return PayslipResponse{}, err
	}
	if err := s.ledger.Confirm(ctx, tx, companyID, slip.EmployeeID.String(), slip.PeriodID.String()); err != nil {
		return PayslipResponse{}, err
	}
	if err := s.queueCalculatedEvent(ctx, tx, slip, actorID); err != nil {
		return PayslipResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("commit failed", zap.String("request_id", rid), zap.Error(err))
		return PayslipResponse{}, err
	}

	s.logger.Info("payslip calculated",
		zap.String("request_id", rid),
		zap.String("payslip_id", slip.ID.String()),
		zap.String("employee_id", slip.EmployeeID.String()),
		zap.String("net_salary", slip.NetSalary.StringFixed(2)),
	)
	return mapToResponse(slip), nil
}

// BulkCalculate memproses payslip sebuah periode dengan worker pool
// terbatas. Kegagalan satu karyawan dicatat di daftar hasil dan tidak
// menghentikan yang lain.
func (s *service) BulkCalculate(ctx context.Context, companyID, actorID, periodID string, employeeIDs []string) ([]BulkItemResult, error) {
	rid := contextutil.GetRequestID(ctx)

	slips, err := s.repo.FindByPeriod(ctx, companyID, periodID)
	if err != nil {
		return nil, err
	}

	var filter map[string]bool
	if len(employeeIDs) > 0 {
		filter = make(map[string]bool, len(employeeIDs))
		for _, id := range employeeIDs {
			filter[id] = true
		}
	}

	type job struct {
		payslipID  string
		employeeID string
	}
	var jobs []job
	for i := range slips {
		if filter != nil && !filter[slips[i].EmployeeID.String()] {
			continue
		}
		jobs = append(jobs, job{
			payslipID:  slips[i].ID.String(),
			employeeID: slips[i].EmployeeID.String(),
		})
	}

	s.logger.Info("bulk calculation started",
		zap.String("request_id", rid),
		zap.String("period_id", periodID),
		zap.Int("payslips", len(jobs)),
	)

	results := make([]BulkItemResult, len(jobs))
	jobCh := make(chan int)
	var wg sync.WaitGroup
	workers := bulkWorkers
	if len(jobs) < workers {
		workers = len(jobs)
	}
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobCh {
				j := jobs[idx]
				item := BulkItemResult{PayslipID: j.payslipID, EmployeeID: j.employeeID}
				if _, err := s.Calculate(ctx, companyID, actorID, j.payslipID); err != nil {
					item.Status = "FAILED"
					item.Error = err.Error()
				} else {
					item.Status = StatusCalculated
				}
				results[idx] = item
			}
		}()
	}
	for idx := range jobs {
		jobCh <- idx
	}
	close(jobCh)
	wg.Wait()

	failed := 0
	for _, r := range results {
		if r.Status == "FAILED" {
			failed++
		}
	}
	sort.Slice(results, func(i, j int) bool { return results[i].PayslipID < results[j].PayslipID })

	s.logger.Info("bulk calculation finished",
		zap.String("request_id", rid),
		zap.String("period_id", periodID),
		zap.Int("succeeded", len(results)-failed),
		zap.Int("failed", failed),
	)
	return results, nil
}

func (s *service) GetByPeriod(ctx context.Context, companyID, periodID string) ([]PayslipResponse, error) {
	rows, err := s.repo.FindByPeriod(ctx, companyID, periodID)
	if err != nil {
		return nil, err
	}
	resp := make([]PayslipResponse, 0, len(rows))
	for i := range rows {
		resp = append(resp, mapToResponse(&rows[i]))
	}
	return resp, nil
}

func (s *service) GetByID(ctx context.Context, companyID, id string) (PayslipResponse, error) {
	slip, err := s.repo.FindByIDAndCompany(ctx, companyID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return PayslipResponse{}, paysliperrors.ErrPayslipNotFound
		}
		return PayslipResponse{}, err
	}
	return mapToResponse(slip), nil
}

// RenderPDF mengembalikan isi file beserta nama unduhannya.
func (s *service) RenderPDF(ctx context.Context, companyID, id string) ([]byte, string, error) {
	resp, err := s.GetByID(ctx, companyID, id)
	if err != nil {
		return nil, "", err
	}
	if resp.Status == StatusDraft {
		return nil, "", paysliperrors.ErrPayslipNotCalculated
	}

	content, err := buildPayslipPDF(payslipPDFLines(resp))
	if err != nil {
		return nil, "", err
	}
	return content, "payslip_" + resp.ReferenceNumber + ".pdf", nil
}

func (s *service) queueCalculatedEvent(ctx context.Context, tx *sql.Tx, slip *Payslip, actorID string) error {
	if s.outbox == nil {
		return nil
	}
	rid := contextutil.GetRequestID(ctx)
	event := events.PayslipCalculatedEvent{
		EventType:       "payslip_calculated",
		RequestID:       rid,
		PayslipID:       slip.ID.String(),
		PeriodID:        slip.PeriodID.String(),
		EmployeeID:      slip.EmployeeID.String(),
		CompanyID:       slip.CompanyID.String(),
		ReferenceNumber: slip.ReferenceNumber,
		GrossSalary:     slip.GrossSalary.StringFixed(2),
		NetSalary:       slip.NetSalary.StringFixed(2),
		ActorID:         actorID,
		OccurredAt:      time.Now().UTC(),
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return s.outbox.WithTx(tx).Create(ctx, kafka.OutboxEvent{
		ID:            uuid.NewString(),
		RequestID:     rid,
		AggregateType: "payslip",
		AggregateID:   slip.ID.String(),
		EventType:     event.EventType,
		Topic:         events.PayslipLifecycleTopic,
		Payload:       payload,
		Status:        kafka.OutboxStatusPending,
	})
}
