package events

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/Tesseract-Nexus/go-shared/events"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"variations-service/internal/models"
)

// Publisher wraps the go-shared events publisher for attribute and variation
// events. Both ride the products stream: downstream consumers treat them as
// product catalog changes.
type Publisher struct {
	publisher *events.Publisher
	logger    *logrus.Entry
}

// NewPublisher creates a new variations events publisher
func NewPublisher(logger *logrus.Logger) (*Publisher, error) {
	natsURL := os.Getenv("NATS_URL")
	if natsURL == "" {
		// Default to GKE internal NATS service URL
		natsURL = "nats://nats.nats.svc.cluster.local:4222"
	}

	config := events.DefaultPublisherConfig(natsURL)
	config.Name = "variations-service"

	publisher, err := events.NewPublisher(config, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create events publisher: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := publisher.EnsureStream(ctx, events.StreamProducts, []string{"product.>"}); err != nil {
		logger.WithError(err).Warn("Failed to ensure products stream (may already exist)")
	}

	return &Publisher{
		publisher: publisher,
		logger:    logger.WithField("component", "variations-events"),
	}, nil
}

// Close closes the NATS connection
func (p *Publisher) Close() {
	if p.publisher != nil {
		p.publisher.Close()
	}
}

// PublishAttributeChanged publishes a product.attribute_{created,updated,deleted} event
func (p *Publisher) PublishAttributeChanged(ctx context.Context, changeType string, attribute *models.Attribute, tenantID, actorID string) error {
	event := events.NewProductEvent("product.attribute_"+changeType, tenantID)
	event.SourceID = uuid.New().String()
	event.ActorID = actorID
	event.ChangeType = changeType
	event.NewValue = map[string]interface{}{
		"attributeId": attribute.ID.String(),
		"name":        attribute.Name,
		"slug":        attribute.Slug,
		"valueCount":  len(attribute.Values),
	}
	return p.publish(ctx, event)
}

// PublishVariationsSaved publishes a product.variations_saved event after an
// edit session's snapshot has been persisted.
func (p *Publisher) PublishVariationsSaved(ctx context.Context, productID uuid.UUID, savedCount, deletedCount int, tenantID, actorID string) error {
	event := events.NewProductEvent("product.variations_saved", tenantID)
	event.SourceID = uuid.New().String()
	event.ProductID = productID.String()
	event.ActorID = actorID
	event.ChangeType = "variations_saved"
	event.ChangedFields = []string{"variations"}
	event.NewValue = map[string]interface{}{
		"savedCount":   savedCount,
		"deletedCount": deletedCount,
	}
	return p.publish(ctx, event)
}

// publish is a helper that logs and publishes events asynchronously
func (p *Publisher) publish(ctx context.Context, event *events.ProductEvent) error {
	// Publish asynchronously to not block the main flow
	go func() {
		pubCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := p.publisher.PublishProduct(pubCtx, event); err != nil {
			p.logger.WithFields(logrus.Fields{
				"eventType": event.EventType,
				"productID": event.ProductID,
				"tenantID":  event.TenantID,
			}).WithError(err).Error("Failed to publish event")
		} else {
			p.logger.WithFields(logrus.Fields{
				"eventType": event.EventType,
				"productID": event.ProductID,
				"tenantID":  event.TenantID,
			}).Info("Event published successfully")
		}
	}()

	return nil
}
