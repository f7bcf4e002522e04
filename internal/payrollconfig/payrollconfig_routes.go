package payrollconfig

import (
	"go-payroll/internal/middleware"
	"go-payroll/internal/rbac"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.RouterGroup, handler *Handler, rbacService rbac.Service) {
	configs := r.Group("/payroll-configurations")
	configs.Use(middleware.AuthMiddleware())
	{
		configs.GET("", middleware.RBACAuthorize(rbacService, "payroll_configuration", "read"), handler.GetAll)
		configs.GET("/:id", middleware.RBACAuthorize(rbacService, "payroll_configuration", "read"), handler.GetById)
		configs.POST("", middleware.RBACAuthorize(rbacService, "payroll_configuration", "create"), handler.Create)
		configs.PUT("/:id", middleware.RBACAuthorize(rbacService, "payroll_configuration", "update"), handler.Update)
		configs.DELETE("/:id", middleware.RBACAuthorize(rbacService, "payroll_configuration", "delete"), handler.Delete)
	}
}
