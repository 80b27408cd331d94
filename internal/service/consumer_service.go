// FILE: internal/service/consumer_service.go
package service

import (
	"context"
	"encoding/json"

	"finance-dashboard/internal/pkg/logger"
	"finance-dashboard/pkg/events"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"
)

// Deliverer pushes a payload to every live connection of one visitor.
type Deliverer interface {
	Send(visitorID uuid.UUID, payload []byte)
}

type IConsumerService interface {
	Consume(ctx context.Context) error
}

type consumerService struct {
	subscriber message.Subscriber
	topicName  string
	deliverer  Deliverer
	logger     logger.ILogger
}

func NewConsumerService(
	subscriber message.Subscriber,
	topicName string,
	deliverer Deliverer,
	log logger.ILogger,
) IConsumerService {
	return &consumerService{
		subscriber: subscriber,
		topicName:  topicName,
		deliverer:  deliverer,
		logger:     log,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.subscriber.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(msg)
		}
	}()

	return nil
}

func (cs *consumerService) processMessage(msg *message.Message) {
	// Every message is acked: a lost live update only delays a page reload.
	defer msg.Ack()

	event, err := events.UnmarshalStateChanged(msg.Payload)
	if err != nil {
		cs.logger.Warn("EVENTS", "Dropping invalid state change message", map[string]interface{}{
			"message_id": msg.UUID,
			"error":      err.Error(),
		})
		return
	}

	visitorID, err := uuid.Parse(event.VisitorID)
	if err != nil {
		cs.logger.Warn("EVENTS", "Dropping state change for malformed visitor id", map[string]interface{}{
			"visitor_id": event.VisitorID,
		})
		return
	}

	data, err := json.Marshal(map[string]interface{}{
		"type": "state_changed",
		"data": map[string]interface{}{
			"resource":   event.Resource,
			"state":      event.State,
			"session_id": event.SessionID,
			"generation": event.Generation,
		},
	})
	if err != nil {
		return
	}

	cs.deliverer.Send(visitorID, data)
}
