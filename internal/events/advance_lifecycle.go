package events

import "time"

const AdvanceLifecycleTopic = "payroll.advance.lifecycle.v1"

type AdvanceTransitionedEvent struct {
	EventType   string    `json:"event_type"`
	RequestID   string    `json:"request_id"`
	AdvanceID   string    `json:"advance_id"`
	EmployeeID  string    `json:"employee_id"`
	CompanyID   string    `json:"company_id"`
	FromStatus  string    `json:"from_status"`
	ToStatus    string    `json:"to_status"`
	Outstanding string    `json:"outstanding_amount"`
	ActorID     string    `json:"actor_id"`
	OccurredAt  time.Time `json:"occurred_at"`
}
