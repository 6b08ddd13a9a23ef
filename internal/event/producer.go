package event

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/propconnect/propconnect/internal/domain"
	pkgkafka "github.com/propconnect/propconnect/pkg/kafka"
	"github.com/propconnect/propconnect/pkg/logger"
)

// Aggregate types.
const (
	AggregateTypeUser     = "user"
	AggregateTypeProperty = "property"
)

// Source identifies events originating from this service.
const Source = "propconnect-api"

// Topics for domain events.
var (
	TopicUserRegistered  = pkgkafka.Topic("user", "registered")
	TopicPropertyCreated = pkgkafka.Topic("property", "created")
	TopicPropertyUpdated = pkgkafka.Topic("property", "updated")
	TopicPropertyDeleted = pkgkafka.Topic("property", "deleted")
)

// UserRegisteredData is the payload for user.registered. It carries no
// credentials.
type UserRegisteredData struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	FullName string `json:"full_name"`
	Role     string `json:"role"`
}

// PropertyData is the payload for property.created and property.updated.
type PropertyData struct {
	ID           string  `json:"id"`
	OwnerID      string  `json:"owner_id"`
	Title        string  `json:"title"`
	City         string  `json:"city"`
	Category     string  `json:"category"`
	PropertyType string  `json:"property_type"`
	Price        float64 `json:"price"`
	Currency     string  `json:"currency"`
	Status       string  `json:"status"`
}

// PropertyDeletedData is the payload for property.deleted.
type PropertyDeletedData struct {
	ID      string `json:"id"`
	OwnerID string `json:"owner_id"`
}

// Publisher writes an event envelope to a topic.
type Publisher interface {
	Publish(ctx context.Context, topic string, event *pkgkafka.Event) error
}

// Producer publishes PropConnect domain events.
type Producer struct {
	publisher Publisher
	logger    *slog.Logger
}

// NewProducer creates a domain event producer on top of publisher,
// typically a *pkgkafka.Producer.
func NewProducer(publisher Publisher, logger *slog.Logger) *Producer {
	return &Producer{publisher: publisher, logger: logger}
}

// PublishUserRegistered publishes user.registered.
func (p *Producer) PublishUserRegistered(ctx context.Context, u *domain.User) error {
	return p.publish(ctx, TopicUserRegistered, u.ID, AggregateTypeUser, UserRegisteredData{
		ID:       u.ID,
		Email:    u.Email,
		FullName: u.FullName,
		Role:     u.Role,
	})
}

// PublishPropertyCreated publishes property.created.
func (p *Producer) PublishPropertyCreated(ctx context.Context, prop *domain.Property) error {
	return p.publish(ctx, TopicPropertyCreated, prop.ID, AggregateTypeProperty, propertyData(prop))
}

// PublishPropertyUpdated publishes property.updated.
func (p *Producer) PublishPropertyUpdated(ctx context.Context, prop *domain.Property) error {
	return p.publish(ctx, TopicPropertyUpdated, prop.ID, AggregateTypeProperty, propertyData(prop))
}

// PublishPropertyDeleted publishes property.deleted.
func (p *Producer) PublishPropertyDeleted(ctx context.Context, prop *domain.Property) error {
	return p.publish(ctx, TopicPropertyDeleted, prop.ID, AggregateTypeProperty, PropertyDeletedData{
		ID:      prop.ID,
		OwnerID: prop.OwnerID,
	})
}

func (p *Producer) publish(ctx context.Context, topic, aggregateID, aggregateType string, data any) error {
	evt, err := pkgkafka.NewEvent(topic, aggregateID, aggregateType, Source, data)
	if err != nil {
		return fmt.Errorf("create %s event: %w", topic, err)
	}
	if id := logger.CorrelationIDFromContext(ctx); id != "" {
		evt.WithCorrelationID(id)
	}

	if err := p.publisher.Publish(ctx, topic, evt); err != nil {
		return fmt.Errorf("publish %s event: %w", topic, err)
	}

	p.logger.DebugContext(ctx, "published event",
		slog.String("topic", topic),
		slog.String("aggregate_id", aggregateID),
		slog.String("event_id", evt.EventID),
	)
	return nil
}

func propertyData(prop *domain.Property) PropertyData {
	return PropertyData{
		ID:           prop.ID,
		OwnerID:      prop.OwnerID,
		Title:        prop.Title,
		City:         prop.City,
		Category:     prop.Category,
		PropertyType: prop.PropertyType,
		Price:        prop.Price,
		Currency:     prop.Currency,
		Status:       prop.Status,
	}
}
