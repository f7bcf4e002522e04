package payslip

import (
	"go-payroll/internal/middleware"
	"go-payroll/internal/rbac"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

func RegisterRoutes(
	r *gin.RouterGroup,
	handler *Handler,
	rbacService rbac.Service,
	rdb ...*redis.Client,
) {
	var redisClient *redis.Client
	if len(rdb) > 0 {
		redisClient = rdb[0]
	}

	payslips := r.Group("/payslips")
	payslips.Use(middleware.AuthMiddleware())
	{
		payslips.GET("", middleware.RBACAuthorize(rbacService, "payslip", "read"), handler.GetAll)
		payslips.GET("/:id", middleware.RBACAuthorize(rbacService, "payslip", "read"), handler.GetById)
		payslips.GET("/:id/pdf", middleware.RBACAuthorize(rbacService, "payslip", "read"), handler.DownloadPDF)
		payslips.POST("/:id/calculate", middleware.RBACAuthorize(rbacService, "payslip", "process"), handler.Calculate)
		if redisClient != nil {
			payslips.POST(
				"/bulk-calculate",
				middleware.Idempotency(redisClient),
				middleware.RateLimitByUser(0.5, 2),
				middleware.RBACAuthorize(rbacService, "payslip", "process"),
				handler.BulkCalculate,
			)
		} else {
			payslips.POST(
				"/bulk-calculate",
				middleware.RateLimitByUser(0.5, 2),
				middleware.RBACAuthorize(rbacService, "payslip", "process"),
				handler.BulkCalculate,
			)
		}
	}
}
