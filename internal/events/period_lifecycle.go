package events

import "time"

const PeriodLifecycleTopic = "payroll.period.lifecycle.v1"

// PeriodTransitionedEvent dipublish setiap kali status periode berubah.
type PeriodTransitionedEvent struct {
	EventType  string    `json:"event_type"`
	RequestID  string    `json:"request_id"`
	PeriodID   string    `json:"period_id"`
	CompanyID  string    `json:"company_id"`
	Year       int       `json:"year"`
	Month      int       `json:"month"`
	FromStatus string    `json:"from_status"`
	ToStatus   string    `json:"to_status"`
	ActorID    string    `json:"actor_id"`
	OccurredAt time.Time `json:"occurred_at"`
}
