package transfer

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"go-payroll/internal/employee"
	"go-payroll/internal/events"
	"go-payroll/internal/messaging/kafka"
	"go-payroll/internal/period"
	perioderrors "go-payroll/internal/period/errors"
	"go-payroll/internal/payslip"
	"go-payroll/internal/shared/contextutil"
	"go-payroll/internal/shared/counter"
	transfererrors "go-payroll/internal/transfer/errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const transferCounterType = "bank_transfer_reference"

var payoutStatuses = []string{payslip.StatusApproved, payslip.StatusPaid}

//go:generate mockgen -source=transfer_service.go -destination=mock/transfer_service_mock.go -package=mock
type Service interface {
	Generate(ctx context.Context, companyID, actorID, periodID string) (TransferResponse, error)
	UpdateStatus(ctx context.Context, companyID, actorID, transferID string, req UpdateTransferStatusRequest) (TransferResponse, error)
	GetAll(ctx context.Context, companyID string) ([]TransferResponse, error)
	GetByID(ctx context.Context, companyID, id string) (TransferResponse, error)
}

type service struct {
	db        *sql.DB
	repo      Repository
	periods   period.Repository
	payslips  payslip.Repository
	employees employee.Repository
	counter   counter.Repository
	formatter BankFileFormatter
	fileDir   string
	outbox    kafka.OutboxRepository
	logger    *zap.Logger
}

func NewService(
	db *sql.DB,
	repo Repository,
	periods period.Repository,
	payslips payslip.Repository,
	employees employee.Repository,
	counterRepo counter.Repository,
	formatter BankFileFormatter,
	fileDir string,
	logger ...*zap.Logger,
) Service {
	return NewServiceWithOutbox(db, repo, periods, payslips, employees, counterRepo, formatter, fileDir, nil, logger...)
}

func NewServiceWithOutbox(
	db *sql.DB,
	repo Repository,
	periods period.Repository,
	payslips payslip.Repository,
	employees employee.Repository,
	counterRepo counter.Repository,
	formatter BankFileFormatter,
	fileDir string,
	outboxRepo kafka.OutboxRepository,
	logger ...*zap.Logger,
) Service {
	l := zap.L().Named("transfer.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("transfer.service")
	}
	return &service{
		db:        db,
		repo:      repo,
		periods:   periods,
		payslips:  payslips,
		employees: employees,
		counter:   counterRepo,
		formatter: formatter,
		fileDir:   fileDir,
		outbox:    outboxRepo,
		logger:    l,
	}
}

func (s *service) Generate(ctx context.Context, companyID, actorID, periodID string) (TransferResponse, error) {
	rid := contextutil.GetRequestID(ctx)

	prd, err := s.periods.FindByIDAndCompany(ctx, companyID, periodID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return TransferResponse{}, perioderrors.ErrPeriodNotFound
		}
		return TransferResponse{}, err
	}
	if prd.Status != period.StatusApproved && prd.Status != period.StatusPaid {
		return TransferResponse{}, transfererrors.ErrPeriodNotApproved
	}

	active, err := s.repo.FindByPeriodAndStatuses(ctx, companyID, periodID, activeStatuses)
	if err != nil {
		return TransferResponse{}, err
	}
	if len(active) > 0 {
		return TransferResponse{}, transfererrors.ErrBatchAlreadyGenerated
	}

	slips, err := s.payslips.FindByPeriodAndStatuses(ctx, companyID, periodID, payoutStatuses)
	if err != nil {
		return TransferResponse{}, err
	}
	if len(slips) == 0 {
		return TransferResponse{}, transfererrors.ErrNoPayoutPayslips
	}

	items := make([]LineItem, 0, len(slips))
	total := decimal.Zero
	var missing []string
	for i := range slips {
		empl, err := s.employees.FindByIDAndCompany(ctx, companyID, slips[i].EmployeeID.String())
		if err != nil {
			return TransferResponse{}, err
		}
		if empl.BankAccountNumber == nil || *empl.BankAccountNumber == "" ||
			empl.BankName == nil || *empl.BankName == "" {
			missing = append(missing, empl.EmployeeCode)
			continue
		}
		items = append(items, LineItem{
			EmployeeCode:      empl.EmployeeCode,
			EmployeeName:      empl.FullName,
			BankName:          *empl.BankName,
			BankAccountNumber: *empl.BankAccountNumber,
			Amount:            slips[i].NetSalary,
			Reference:         slips[i].ReferenceNumber,
		})
		total = total.Add(slips[i].NetSalary)
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return TransferResponse{}, transfererrors.MissingBankDetails(missing)
	}

	nextVal, err := s.counter.GetNextValue(ctx, companyID, transferCounterType)
	if err != nil {
		return TransferResponse{}, err
	}

	now := time.Now().UTC()
	batch := &PayrollBankTransfer{
		ID:             uuid.New(),
		CompanyID:      prd.CompanyID,
		PeriodID:       prd.ID,
		BatchReference: fmt.Sprintf("BT-%d%02d-%06d", prd.Year, prd.Month, nextVal),
		Status:         StatusGenerated,
		TotalEmployees: len(items),
		TotalAmount:    total,
		BankFileFormat: s.formatter.FormatName(),
		GeneratedAt:    &now,
		CreatedBy:      uuid.MustParse(actorID),
	}
	batch.BankFilePath = filepath.Join(s.fileDir, batch.BatchReference+"."+s.formatter.Extension())

	content, err := s.formatter.Format(batch, items)
	if err != nil {
		return TransferResponse{}, err
	}
	if err := os.MkdirAll(s.fileDir, 0o755); err != nil {
		return TransferResponse{}, err
	}
	if err := os.WriteFile(batch.BankFilePath, content, 0o644); err != nil {
		s.logger.Error("bank file write failed",
			zap.String("path", batch.BankFilePath),
			zap.Error(err),
		)
		return TransferResponse{}, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("generate transfer begin tx failed", zap.String("request_id", rid), zap.Error(err))
		return TransferResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)
	if err := qtx.DeletePendingByPeriod(ctx, companyID, periodID); err != nil {
		return TransferResponse{}, err
	}
	if err := qtx.Create(ctx, batch); err != nil {
		return TransferResponse{}, err
	}
	if err := s.queueTransitionEvent(ctx, tx, batch, "bank_transfer_generated", StatusPending, actorID); err != nil {
		return TransferResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("commit failed", zap.String("request_id", rid), zap.Error(err))
		return TransferResponse{}, err
	}

	s.logger.Info("bank transfer batch generated",
		zap.String("request_id", rid),
		zap.String("batch_reference", batch.BatchReference),
		zap.Int("total_employees", batch.TotalEmployees),
		zap.String("total_amount", batch.TotalAmount.StringFixed(2)),
	)
	return mapToResponse(batch), nil
}

func (s *service) UpdateStatus(ctx context.Context, companyID, actorID, transferID string, req UpdateTransferStatusRequest) (TransferResponse, error) {
	rid := contextutil.GetRequestID(ctx)

	if _, known := statusRank[req.Status]; !known && req.Status != StatusFailed {
		return TransferResponse{}, transfererrors.ErrUnknownStatus
	}

	batch, err := s.repo.FindByIDAndCompany(ctx, companyID, transferID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return TransferResponse{}, transfererrors.ErrTransferNotFound
		}
		return TransferResponse{}, err
	}
	if !transitionAllowed(batch.Status, req.Status) {
		return TransferResponse{}, transfererrors.InvalidTransition(batch.Status, req.Status)
	}

	now := time.Now().UTC()
	from := batch.Status
	batch.Status = req.Status
	switch req.Status {
	case StatusSent:
		batch.SentAt = &now
	case StatusProcessed:
		batch.ProcessedAt = &now
	}
	if req.BankResponse != "" {
		batch.BankResponse = &req.BankResponse
	}
	if req.ErrorDetails != "" {
		batch.ErrorDetails = &req.ErrorDetails
	}

	eventType := "bank_transfer_" + strings.ToLower(req.Status)
	if req.Status == StatusCompleted {
		eventType = events.TransferCompletedEventType
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("update transfer begin tx failed", zap.String("request_id", rid), zap.Error(err))
		return TransferResponse{}, err
	}
	defer tx.Rollback()

	if err := s.repo.WithTx(tx).Update(ctx, batch); err != nil {
		return TransferResponse{}, err
	}
	if err := s.queueTransitionEvent(ctx, tx, batch, eventType, from, actorID); err != nil {
		return TransferResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("commit failed", zap.String("request_id", rid), zap.Error(err))
		return TransferResponse{}, err
	}

	s.logger.Info("bank transfer status updated",
		zap.String("request_id", rid),
		zap.String("batch_reference", batch.BatchReference),
		zap.String("from_status", from),
		zap.String("to_status", batch.Status),
	)
	return mapToResponse(batch), nil
}

func (s *service) GetAll(ctx context.Context, companyID string) ([]TransferResponse, error) {
	rows, err := s.repo.FindAllByCompany(ctx, companyID)
	if err != nil {
		return nil, err
	}
	resp := make([]TransferResponse, 0, len(rows))
	for i := range rows {
		resp = append(resp, mapToResponse(&rows[i]))
	}
	return resp, nil
}

func (s *service) GetByID(ctx context.Context, companyID, id string) (TransferResponse, error) {
	batch, err := s.repo.FindByIDAndCompany(ctx, companyID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return TransferResponse{}, transfererrors.ErrTransferNotFound
		}
		return TransferResponse{}, err
	}
	return mapToResponse(batch), nil
}

func (s *service) queueTransitionEvent(
	ctx context.Context,
	tx *sql.Tx,
	batch *PayrollBankTransfer,
	eventType string,
	from string,
	actorID string,
) error {
	if s.outbox == nil {
		return nil
	}
	rid := contextutil.GetRequestID(ctx)
	event := events.TransferTransitionedEvent{
		EventType:      eventType,
		RequestID:      rid,
		TransferID:     batch.ID.String(),
		PeriodID:       batch.PeriodID.String(),
		CompanyID:      batch.CompanyID.String(),
		BatchReference: batch.BatchReference,
		FromStatus:     from,
		ToStatus:       batch.Status,
		TotalAmount:    batch.TotalAmount.StringFixed(2),
		ActorID:        actorID,
		OccurredAt:     time.Now().UTC(),
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return s.outbox.WithTx(tx).Create(ctx, kafka.OutboxEvent{
		ID:            uuid.NewString(),
		RequestID:     rid,
		AggregateType: "payroll_bank_transfer",
		AggregateID:   batch.ID.String(),
		EventType:     eventType,
		Topic:         events.TransferLifecycleTopic,
		Payload:       payload,
		Status:        kafka.OutboxStatusPending,
	})
}
