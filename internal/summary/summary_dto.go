package summary

import (
	"encoding/json"
	"time"
)

type SummaryResponse struct {
	ID             string `json:"id"`
	PeriodID       string `json:"period_id"`
	DepartmentID   string `json:"department_id"`
	DepartmentName string `json:"department_name"`
	EmployeeCount  int    `json:"employee_count"`

	TotalBasicSalary string `json:"total_basic_salary"`
	TotalAllowances  string `json:"total_allowances"`
	TotalOvertime    string `json:"total_overtime"`
	TotalGross       string `json:"total_gross"`
	TotalDeductions  string `json:"total_deductions"`
	TotalNet         string `json:"total_net"`
	TotalEPFEmployee string `json:"total_epf_employee"`
	TotalEPFEmployer string `json:"total_epf_employer"`
	TotalETF         string `json:"total_etf"`

	AverageSalary               string `json:"average_salary"`
	BudgetUtilizationPercentage string `json:"budget_utilization_percentage"`

	RoleBreakdown      json.RawMessage `json:"role_breakdown,omitempty"`
	PerformanceMetrics json.RawMessage `json:"performance_metrics,omitempty"`

	UpdatedAt string `json:"updated_at"`
}

func mapToResponse(row *PayrollDepartmentSummary) SummaryResponse {
	return SummaryResponse{
		ID:             row.ID.String(),
		PeriodID:       row.PeriodID.String(),
		DepartmentID:   row.DepartmentID.String(),
		DepartmentName: row.DepartmentName,
		EmployeeCount:  row.EmployeeCount,

		TotalBasicSalary: row.TotalBasicSalary.StringFixed(2),
		TotalAllowances:  row.TotalAllowances.StringFixed(2),
		TotalOvertime:    row.TotalOvertime.StringFixed(2),
		TotalGross:       row.TotalGross.StringFixed(2),
		TotalDeductions:  row.TotalDeductions.StringFixed(2),
		TotalNet:         row.TotalNet.StringFixed(2),
		TotalEPFEmployee: row.TotalEPFEmployee.StringFixed(2),
		TotalEPFEmployer: row.TotalEPFEmployer.StringFixed(2),
		TotalETF:         row.TotalETF.StringFixed(2),

		AverageSalary:               row.AverageSalary.StringFixed(2),
		BudgetUtilizationPercentage: row.BudgetUtilizationPercentage.StringFixed(2),

		RoleBreakdown:      row.RoleBreakdown,
		PerformanceMetrics: row.PerformanceMetrics,

		UpdatedAt: row.UpdatedAt.Format(time.RFC3339),
	}
}
