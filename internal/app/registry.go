package app

import (
	"database/sql"
	"os"
	"path/filepath"

	"go-payroll/internal/advance"
	"go-payroll/internal/attendance"
	"go-payroll/internal/auth"
	"go-payroll/internal/company"
	"go-payroll/internal/department"
	"go-payroll/internal/employee"
	"go-payroll/internal/messaging/kafka"
	"go-payroll/internal/payrollconfig"
	"go-payroll/internal/payslip"
	"go-payroll/internal/period"
	"go-payroll/internal/rbac"
	"go-payroll/internal/rbac/infra"
	"go-payroll/internal/role"
	"go-payroll/internal/shared/counter"
	"go-payroll/internal/summary"
	"go-payroll/internal/transfer"
	"go-payroll/internal/user"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func registerModules(
	router *gin.Engine,
	db *sql.DB,
	gormDB *gorm.DB,
	rdb *redis.Client,
) error {
	logger := zap.L()

	// --- Repositories ---
	rbacRepo := rbac.NewRepository(gormDB)
	attendanceRepo := attendance.NewRepository(gormDB)
	authRepo := auth.NewRepository(gormDB)
	companyRepo := company.NewRepository(gormDB)
	counterRepo := counter.NewRepository(gormDB)
	departmentRepo := department.NewRepository(gormDB)
	employeeRepo := employee.NewRepository(gormDB)
	roleRepo := role.NewRepository(gormDB)
	userRepo := user.NewRepository(gormDB)
	outboxRepo := kafka.NewOutboxRepository(db)
	configRepo := payrollconfig.NewRepository(gormDB)
	advanceRepo := advance.NewRepository(gormDB)
	payslipRepo := payslip.NewRepository(gormDB)
	periodRepo := period.NewRepository(gormDB)
	summaryRepo := summary.NewRepository(gormDB)
	transferRepo := transfer.NewRepository(gormDB)

	// --- RBAC Core ---
	enforcer, err := infra.NewEnforcer(filepath.Join("internal", "rbac", "infra", "model.conf"))
	if err != nil {
		return err
	}
	rbacService := rbac.NewService(rbacRepo, enforcer)

	// --- Services ---
	authService := auth.NewService(authRepo, rbacService, employeeRepo)
	companyService := company.NewService(companyRepo)
	userService := user.NewService(userRepo, employeeRepo)
	configService := payrollconfig.NewService(db, configRepo)
	configResolver := payrollconfig.NewResolver(configRepo)

	advanceService := advance.NewServiceWithOutbox(db, advanceRepo, employeeRepo, configResolver, outboxRepo)
	summaryService := summary.NewService(summaryRepo, payslipRepo, employeeRepo, departmentRepo, roleRepo, configResolver, rdb)
	periodDirectory := period.NewPayslipDirectory(periodRepo)
	payslipService := payslip.NewServiceWithOutbox(
		db, payslipRepo, employeeRepo, attendanceRepo,
		periodDirectory, configResolver, advanceService, outboxRepo,
	)
	periodService := period.NewServiceWithOutbox(
		db, periodRepo, payslipRepo, employeeRepo, attendanceRepo,
		counterRepo, summaryService, advanceService, outboxRepo,
	)

	bankFileDir := os.Getenv("BANK_FILE_DIR")
	if bankFileDir == "" {
		bankFileDir = filepath.Join("files", "bank-transfers")
	}
	transferService := transfer.NewServiceWithOutbox(
		db, transferRepo, periodRepo, payslipRepo, employeeRepo,
		counterRepo, transfer.NewCSVFormatter(), bankFileDir, outboxRepo,
	)

	// --- Handlers ---
	authHandler := auth.NewHandler(authService)
	companyHandler := company.NewHandler(companyService)
	userHandler := user.NewHandler(userService)
	configHandler := payrollconfig.NewHandler(configService)
	advanceHandler := advance.NewHandler(advanceService)
	payslipHandler := payslip.NewHandler(payslipService)
	periodHandler := period.NewHandler(periodService, summaryService)
	transferHandler := transfer.NewHandler(transferService)

	// --- Routes Registration ---
	api := router.Group("/api/v1")
	{
		auth.RegisterRoutes(api, authHandler)
		company.RegisterRoutes(api, companyHandler, rbacService)
		user.RegisterRoutes(api, userHandler, rbacService, logger)
		payrollconfig.RegisterRoutes(api, configHandler, rbacService)
		advance.RegisterRoutes(api, advanceHandler, rbacService)
		payslip.RegisterRoutes(api, payslipHandler, rbacService, rdb)
		period.RegisterRoutes(api, periodHandler, rbacService, rdb)
		transfer.RegisterRoutes(api, transferHandler, rbacService, rdb)
	}

	return nil
}
