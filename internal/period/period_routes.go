package period

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

	periods := r.Group("/payroll-periods")
	periods.Use(middleware.AuthMiddleware())
	{
		periods.GET("", middleware.RBACAuthorize(rbacService, "payroll_period", "read"), handler.GetAll)
		periods.GET("/:id", middleware.RBACAuthorize(rbacService, "payroll_period", "read"), handler.GetById)
		periods.GET("/:id/summaries", middleware.RBACAuthorize(rbacService, "payroll_period", "read"), handler.GetSummaries)
		periods.POST("", middleware.RBACAuthorize(rbacService, "payroll_period", "create"), handler.Create)

		// StartProcessing bikin banyak payslip sekaligus, jadi dibatasi
		// idempotency + rate limit seperti bulk-calculate.
		if redisClient != nil {
			periods.POST(
				"/:id/process",
				middleware.Idempotency(redisClient),
				middleware.RateLimitByUser(0.5, 2),
				middleware.RBACAuthorize(rbacService, "payroll_period", "process"),
				handler.StartProcessing,
			)
		} else {
			periods.POST(
				"/:id/process",
				middleware.RateLimitByUser(0.5, 2),
				middleware.RBACAuthorize(rbacService, "payroll_period", "process"),
				handler.StartProcessing,
			)
		}
		periods.POST("/:id/complete", middleware.RBACAuthorize(rbacService, "payroll_period", "process"), handler.CompleteProcessing)
		periods.POST("/:id/approve", middleware.RBACAuthorize(rbacService, "payroll_period", "approve"), handler.Approve)
		periods.POST("/:id/cancel", middleware.RBACAuthorize(rbacService, "payroll_period", "update"), handler.Cancel)
	}
}
