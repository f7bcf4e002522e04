package events

import "time"

const PayslipLifecycleTopic = "payroll.payslip.lifecycle.v1"

type PayslipCalculatedEvent struct {
	EventType       string    `json:"event_type"`
	RequestID       string    `json:"request_id"`
	PayslipID       string    `json:"payslip_id"`
	PeriodID        string    `json:"period_id"`
	EmployeeID      string    `json:"employee_id"`
	CompanyID       string    `json:"company_id"`
	ReferenceNumber string    `json:"reference_number"`
	GrossSalary     string    `json:"gross_salary"`
	NetSalary       string    `json:"net_salary"`
	ActorID         string    `json:"actor_id"`
	OccurredAt      time.Time `json:"occurred_at"`
}
