package period

import (
	"context"
	"net/http"

	"go-payroll/internal/shared/apperror"
	"go-payroll/internal/shared/response"
	"go-payroll/internal/summary"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service   Service
	summaries summary.Service
}

func NewHandler(service Service, summaries summary.Service) *Handler {
	return &Handler{service: service, summaries: summaries}
}

func (h *Handler) writeServiceError(c *gin.Context, err error) {
	httpErr := apperror.ToHTTP(err)
	response.Error(c, httpErr.Status, httpErr.Code, httpErr.Message, httpErr.Details)
}

func (h *Handler) Create(c *gin.Context) {
	companyID := c.GetString("company_id")
	actorID := c.GetString("employee_id")

	var req CreatePeriodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Input tidak valid", err.Error())
		return
	}

	resp, err := h.service.Create(c.Request.Context(), companyID, actorID, req)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, resp, nil)
}

func (h *Handler) GetAll(c *gin.Context) {
	companyID := c.GetString("company_id")

	resp, err := h.service.GetAll(c.Request.Context(), companyID)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) GetById(c *gin.Context) {
	companyID := c.GetString("company_id")

	resp, err := h.service.GetByID(c.Request.Context(), companyID, c.Param("id"))
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) GetSummaries(c *gin.Context) {
	companyID := c.GetString("company_id")

	resp, err := h.summaries.GetByPeriod(c.Request.Context(), companyID, c.Param("id"))
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) StartProcessing(c *gin.Context) {
	h.transition(c, h.service.StartProcessing)
}

func (h *Handler) CompleteProcessing(c *gin.Context) {
	h.transition(c, h.service.CompleteProcessing)
}

func (h *Handler) Approve(c *gin.Context) {
	h.transition(c, h.service.ApprovePayroll)
}

func (h *Handler) Cancel(c *gin.Context) {
	h.transition(c, h.service.Cancel)
}

func (h *Handler) transition(
	c *gin.Context,
	fn func(ctx context.Context, companyID, actorID, periodID string) (PeriodResponse, error),
) {
	companyID := c.GetString("company_id")
	actorID := c.GetString("employee_id")

	resp, err := fn(c.Request.Context(), companyID, actorID, c.Param("id"))
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp, nil)
}
