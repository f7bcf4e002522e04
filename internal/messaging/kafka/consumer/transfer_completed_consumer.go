package consumer

import (
	"context"
	"encoding/json"

	"go-payroll/internal/events"
	"go-payroll/internal/period"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// ConsumeTransferLifecycle menandai periode PAID begitu batch transfer bank
// mencapai COMPLETED. Event lain di topik yang sama hanya di-ack.
func ConsumeTransferLifecycle(
	ctx context.Context,
	reader *kafkago.Reader,
	periodService period.Service,
	logger *zap.Logger,
) {
	log := logger.Named("kafka.consumer.transfer_lifecycle")
	log.Info("transfer lifecycle consumer started")

	for {
		msg, err := reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				log.Info("transfer lifecycle consumer stopped")
				return
			}
			log.Error("fetch transfer lifecycle message failed", zap.Error(err))
			continue
		}

		var event events.TransferTransitionedEvent
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			log.Error("decode transfer lifecycle event failed", zap.Error(err))
			_ = reader.CommitMessages(ctx, msg)
			continue
		}

		if event.EventType != events.TransferCompletedEventType {
			_ = reader.CommitMessages(ctx, msg)
			continue
		}

		err = periodService.MarkPaid(ctx, event.CompanyID, event.PeriodID)
		if err != nil {
			log.Error("mark period paid failed",
				zap.String("period_id", event.PeriodID),
				zap.String("company_id", event.CompanyID),
				zap.Error(err),
			)
			continue
		}

		if err := reader.CommitMessages(ctx, msg); err != nil {
			log.Error("commit transfer lifecycle message failed", zap.Error(err))
			continue
		}

		log.Info("period marked paid from completed bank transfer",
			zap.String("period_id", event.PeriodID),
			zap.String("batch_reference", event.BatchReference),
		)
	}
}
