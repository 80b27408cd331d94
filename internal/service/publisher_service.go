// FILE: internal/service/publisher_service.go
package service

import (
	"time"

	"finance-dashboard/internal/pkg/logger"
	"finance-dashboard/internal/store"
	"finance-dashboard/pkg/events"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
)

type IPublisherService interface {
	PublishStateChanged(visitorID string, change store.Change) error
	// Notifier adapts the publisher to a store notifier for one visitor.
	Notifier(visitorID string) store.Notifier
}

type publisherService struct {
	topicName string
	publisher message.Publisher
	logger    logger.ILogger
}

func NewPublisherService(topicName string, publisher message.Publisher, log logger.ILogger) IPublisherService {
	return &publisherService{
		topicName: topicName,
		publisher: publisher,
		logger:    log,
	}
}

func (s *publisherService) PublishStateChanged(visitorID string, change store.Change) error {
	event := events.StateChangedEvent{
		VisitorID:  visitorID,
		SessionID:  change.SessionID,
		Resource:   string(change.Resource),
		State:      string(change.State),
		Generation: change.Generation,
		OccurredAt: time.Now(),
	}

	payload, err := event.Marshal()
	if err != nil {
		return err
	}

	msg := message.NewMessage(watermill.NewUUID(), payload)
	msg.Metadata.Set("event_type", event.EventType())
	return s.publisher.Publish(s.topicName, msg)
}

func (s *publisherService) Notifier(visitorID string) store.Notifier {
	return func(change store.Change) {
		if err := s.PublishStateChanged(visitorID, change); err != nil {
			s.logger.Warn("EVENTS", "Failed to publish state change", map[string]interface{}{
				"visitor_id": visitorID,
				"resource":   string(change.Resource),
				"error":      err.Error(),
			})
		}
	}
}
