// FILE: internal/service/consumer_service.go
package service

import (
	"context"
	"encoding/json"

	"medivault-be/internal/dto"
	"medivault-be/internal/pkg/logger"
	"medivault-be/pkg/events"
	natspkg "medivault-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

type IConsumerService interface {
	Consume(ctx context.Context) error
}

// consumerService drains the search telemetry topic. Every event is logged;
// fallback and unmatched-reference events are additionally forwarded to NATS
// so an operator can watch grounding quality without reading log files.
type consumerService struct {
	pubSub        *gochannel.GoChannel
	topicName     string
	sysLogger     logger.ILogger
	natsPublisher *natspkg.Publisher
}

func NewConsumerService(
	pubSub *gochannel.GoChannel,
	topicName string,
	sysLogger logger.ILogger,
	natsPublisher *natspkg.Publisher,
) IConsumerService {
	return &consumerService{
		pubSub:        pubSub,
		topicName:     topicName,
		sysLogger:     sysLogger,
		natsPublisher: natsPublisher,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.pubSub.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	var payload dto.SearchEventMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		cs.sysLogger.Error("Telemetry", "Failed to unmarshal search event", map[string]interface{}{
			"error": err.Error(),
		})
		msg.Ack() // invalid payloads never become valid, drop them
		return
	}

	details := map[string]interface{}{
		"user_id": payload.UserId,
		"mode":    payload.Mode,
	}
	if payload.SessionId != "" {
		details["session_id"] = payload.SessionId
	}

	switch {
	case payload.Fallback:
		details["reason"] = payload.FallbackReason
		cs.sysLogger.Warn("Telemetry", "Search fell back to document listing", details)
		cs.forward(ctx, events.TypeSearchFallback, &payload)
	case len(payload.UnmatchedReferences) > 0 || payload.InvalidReferences > 0:
		details["unmatched"] = payload.UnmatchedReferences
		details["invalid"] = payload.InvalidReferences
		details["ambiguous"] = payload.AmbiguousReferences
		cs.sysLogger.Warn("Telemetry", "Model cited references outside the corpus", details)
		cs.forward(ctx, events.TypeSearchReferencesUnmatched, &payload)
	default:
		cs.sysLogger.Info("Telemetry", "Search completed", details)
	}

	msg.Ack()
}

func (cs *consumerService) forward(ctx context.Context, eventType string, payload *dto.SearchEventMessage) {
	if cs.natsPublisher == nil {
		return
	}

	event := events.BaseEvent{
		Type: eventType,
		Data: map[string]interface{}{
			"user_id":              payload.UserId,
			"mode":                 payload.Mode,
			"fallback_reason":      payload.FallbackReason,
			"unmatched_references": payload.UnmatchedReferences,
			"invalid_references":   payload.InvalidReferences,
		},
		OccurredAt: payload.OccurredAt,
	}
	if err := cs.natsPublisher.Publish(ctx, event); err != nil {
		cs.sysLogger.Error("Telemetry", "Failed to forward event to NATS", map[string]interface{}{
			"event_type": eventType,
			"error":      err.Error(),
		})
	}
}
