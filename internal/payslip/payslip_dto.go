package payslip

import "encoding/json"

type BulkCalculateRequest struct {
	PeriodID    string   `json:"period_id" binding:"required"`
	EmployeeIDs []string `json:"employee_ids"`
}

type PayslipResponse struct {
	ID              string `json:"id"`
	CompanyID       string `json:"company_id"`
	PeriodID        string `json:"period_id"`
	EmployeeID      string `json:"employee_id"`
	ReferenceNumber string `json:"reference_number"`
	Status          string `json:"status"`

	WorkingDays  int `json:"working_days"`
	AttendedDays int `json:"attended_days"`
	LeaveDays    int `json:"leave_days"`

	BasicSalary      string `json:"basic_salary"`
	TotalOvertimePay string `json:"total_overtime_pay"`
	TotalAllowances  string `json:"total_allowances"`
	AttendanceBonus  string `json:"attendance_bonus"`
	PerformanceBonus string `json:"performance_bonus"`
	ReligiousPay     string `json:"religious_pay"`
	FridaySalary     string `json:"friday_salary"`
	GrossSalary      string `json:"gross_salary"`

	LeaveDeduction          string `json:"leave_deduction"`
	LatePenalty             string `json:"late_penalty"`
	AdvanceDeduction        string `json:"advance_deduction"`
	LunchViolationPenalty   string `json:"lunch_violation_penalty"`
	EmployeeEPFContribution string `json:"employee_epf_contribution"`
	IncomeTax               string `json:"income_tax"`
	TotalDeductions         string `json:"total_deductions"`

	NetSalary string `json:"net_salary"`

	EPFSalaryBase           string `json:"epf_salary_base"`
	EmployerEPFContribution string `json:"employer_epf_contribution"`
	ETFContribution         string `json:"etf_contribution"`

	RoleBasedCalculations json.RawMessage `json:"role_based_calculations,omitempty"`
	AttendanceBreakdown   json.RawMessage `json:"attendance_breakdown,omitempty"`
	PenaltyBreakdown      json.RawMessage `json:"penalty_breakdown,omitempty"`

	CalculatedAt *string `json:"calculated_at,omitempty"`
	ApprovedAt   *string `json:"approved_at,omitempty"`
}
