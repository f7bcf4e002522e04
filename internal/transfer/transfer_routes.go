package transfer

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

	transfers := r.Group("/bank-transfers")
	transfers.Use(middleware.AuthMiddleware())
	{
		transfers.GET("", middleware.RBACAuthorize(rbacService, "bank_transfer", "read"), handler.GetAll)
		transfers.GET("/:id", middleware.RBACAuthorize(rbacService, "bank_transfer", "read"), handler.GetById)
		if redisClient != nil {
			transfers.POST(
				"/generate",
				middleware.Idempotency(redisClient),
				middleware.RBACAuthorize(rbacService, "bank_transfer", "create"),
				handler.Generate,
			)
		} else {
			transfers.POST(
				"/generate",
				middleware.RBACAuthorize(rbacService, "bank_transfer", "create"),
				handler.Generate,
			)
		}
		transfers.PATCH("/:id/status", middleware.RBACAuthorize(rbacService, "bank_transfer", "update"), handler.UpdateStatus)
	}
}
