package events

import "time"

const TransferLifecycleTopic = "payroll.transfer.lifecycle.v1"

const TransferCompletedEventType = "bank_transfer_completed"

// TransferTransitionedEvent mengikuti batch transfer bank dari GENERATED sampai
// COMPLETED/FAILED. Consumer memakai event COMPLETED untuk menandai periode PAID.
type TransferTransitionedEvent struct {
	EventType      string    `json:"event_type"`
	RequestID      string    `json:"request_id"`
	TransferID     string    `json:"transfer_id"`
	PeriodID       string    `json:"period_id"`
	CompanyID      string    `json:"company_id"`
	BatchReference string    `json:"batch_reference"`
	FromStatus     string    `json:"from_status"`
	ToStatus       string    `json:"to_status"`
	TotalAmount    string    `json:"total_amount"`
	ActorID        string    `json:"actor_id"`
	OccurredAt     time.Time `json:"occurred_at"`
}
