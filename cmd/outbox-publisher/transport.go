package main

import (
	"context"
	"fmt"
	"time"

	gcppubsub "cloud.google.com/go/pubsub/v2"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/angelmondragon/marketplace-backend/pkg/db/models"
	"github.com/angelmondragon/marketplace-backend/pkg/outbox/registry"
	"github.com/angelmondragon/marketplace-backend/pkg/rabbitmq"
)

const (
	transportPubSub   = "pubsub"
	transportRabbitMQ = "rabbitmq"
)

// transport delivers one resolved outbox row to a broker.
type transport interface {
	Name() string
	Ping(ctx context.Context) error
	Publish(ctx context.Context, event models.OutboxEvent, resolved *registry.ResolvedEvent) error
}

func eventAttributes(event models.OutboxEvent, resolved *registry.ResolvedEvent) map[string]string {
	return map[string]string{
		"event_id":       resolved.Envelope.EventID,
		"event_type":     string(event.EventType),
		"aggregate_type": string(event.AggregateType),
		"aggregate_id":   event.AggregateID.String(),
		"created_at":     event.CreatedAt.Format(time.RFC3339Nano),
	}
}

type pubsubPublisher interface {
	Ping(context.Context) error
	Publisher(name string) *gcppubsub.Publisher
}

type pubsubTransport struct {
	client pubsubPublisher
}

func newPubSubTransport(client pubsubPublisher) transport {
	return &pubsubTransport{client: client}
}

func (t *pubsubTransport) Name() string { return transportPubSub }

func (t *pubsubTransport) Ping(ctx context.Context) error { return t.client.Ping(ctx) }

func (t *pubsubTransport) Publish(ctx context.Context, event models.OutboxEvent, resolved *registry.ResolvedEvent) error {
	topic := resolved.Descriptor.Destination
	pub := t.client.Publisher(topic)
	if pub == nil {
		return registry.NewNonRetryableError(fmt.Errorf("publisher not configured for topic %s", topic))
	}
	result := pub.Publish(ctx, &gcppubsub.Message{
		Data:       event.Payload,
		Attributes: eventAttributes(event, resolved),
	})
	if _, err := result.Get(ctx); err != nil {
		return classifyPubSubError(topic, err)
	}
	return nil
}

// classifyPubSubError stops retries for errors that no amount of waiting fixes.
func classifyPubSubError(topic string, err error) error {
	switch status.Code(err) {
	case codes.NotFound, codes.PermissionDenied, codes.InvalidArgument:
		return registry.NewNonRetryableError(fmt.Errorf("publish to %s: %w", topic, err))
	}
	return err
}

type amqpPublisher interface {
	Ping(context.Context) error
	Publish(ctx context.Context, exchange, routingKey string, msg rabbitmq.Message) error
}

type rabbitTransport struct {
	publisher amqpPublisher
}

func newRabbitTransport(publisher amqpPublisher) transport {
	return &rabbitTransport{publisher: publisher}
}

func (t *rabbitTransport) Name() string { return transportRabbitMQ }

func (t *rabbitTransport) Ping(ctx context.Context) error { return t.publisher.Ping(ctx) }

func (t *rabbitTransport) Publish(ctx context.Context, event models.OutboxEvent, resolved *registry.ResolvedEvent) error {
	return t.publisher.Publish(ctx, resolved.Descriptor.Destination, resolved.Descriptor.RoutingKey, rabbitmq.Message{
		ID:        resolved.Envelope.EventID,
		Type:      string(event.EventType),
		Body:      event.Payload,
		Headers:   eventAttributes(event, resolved),
		Timestamp: resolved.Envelope.OccurredAt,
	})
}
