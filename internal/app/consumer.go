package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go-payroll/internal/advance"
	"go-payroll/internal/attendance"
	"go-payroll/internal/department"
	"go-payroll/internal/employee"
	"go-payroll/internal/events"
	"go-payroll/internal/messaging/kafka/consumer"
	"go-payroll/internal/payrollconfig"
	"go-payroll/internal/payslip"
	"go-payroll/internal/period"
	"go-payroll/internal/role"
	"go-payroll/internal/shared/connection"
	"go-payroll/internal/shared/counter"
	"go-payroll/internal/summary"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

func RunConsumer() error {
	logger := zap.L().Named("app.consumer")

	gormDB, err := connection.ConnectGORMWithRetry(
		os.Getenv("DB_HOST"),
		os.Getenv("DB_USER"),
		os.Getenv("DB_PASSWORD"),
		os.Getenv("DB_NAME"),
		os.Getenv("DB_PORT"),
		os.Getenv("DB_SSLMODE"),
		5,
	)
	if err != nil {
		return err
	}

	sqlDB, err := gormDB.DB()
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	kafkaBroker := os.Getenv("KAFKA_BROKER")
	if kafkaBroker == "" {
		return fmt.Errorf("KAFKA_BROKER is required")
	}

	employeeRepo := employee.NewRepository(gormDB)
	attendanceRepo := attendance.NewRepository(gormDB)
	departmentRepo := department.NewRepository(gormDB)
	roleRepo := role.NewRepository(gormDB)
	counterRepo := counter.NewRepository(gormDB)
	configResolver := payrollconfig.NewResolver(payrollconfig.NewRepository(gormDB))
	advanceRepo := advance.NewRepository(gormDB)
	payslipRepo := payslip.NewRepository(gormDB)
	periodRepo := period.NewRepository(gormDB)
	summaryRepo := summary.NewRepository(gormDB)

	advanceService := advance.NewService(sqlDB, advanceRepo, employeeRepo, configResolver)
	summaryService := summary.NewService(summaryRepo, payslipRepo, employeeRepo, departmentRepo, roleRepo, configResolver, nil)
	periodService := period.NewService(
		sqlDB, periodRepo, payslipRepo, employeeRepo, attendanceRepo,
		counterRepo, summaryService, advanceService,
	)

	reader := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:        []string{kafkaBroker},
		Topic:          events.TransferLifecycleTopic,
		GroupID:        "go-payroll-period-paid",
		CommitInterval: 0,
		StartOffset:    kafkago.FirstOffset,
	})
	defer reader.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go consumer.ConsumeTransferLifecycle(ctx, reader, periodService, logger)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("consumer shutting down")
	cancel()

	return nil
}
