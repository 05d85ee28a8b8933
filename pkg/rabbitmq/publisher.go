package rabbitmq

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/angelmondragon/marketplace-backend/pkg/config"
	"github.com/angelmondragon/marketplace-backend/pkg/logger"
)

var errNotInitialized = errors.New("rabbitmq publisher not initialized")

// Message is one outbound event. Headers become AMQP table entries.
type Message struct {
	ID        string
	Type      string
	Body      []byte
	Headers   map[string]string
	Timestamp time.Time
}

// Publisher sends persistent messages to a durable exchange with publisher confirms.
type Publisher struct {
	conn     *amqp.Connection
	channel  *amqp.Channel
	exchange string
}

// NewPublisher dials the broker, declares the configured exchange and enables confirms.
func NewPublisher(cfg config.RabbitMQConfig, logg *logger.Logger) (*Publisher, error) {
	if strings.TrimSpace(cfg.URL) == "" {
		return nil, errors.New("rabbitmq url is required")
	}
	if strings.TrimSpace(cfg.Exchange) == "" {
		return nil, errors.New("rabbitmq exchange is required")
	}
	kind := cfg.ExchangeKind
	if kind == "" {
		kind = amqp.ExchangeTopic
	}

	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}
	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	if err := channel.ExchangeDeclare(
		cfg.Exchange,
		kind,
		true,  // durable
		false, // auto-deleted
		false, // internal
		false, // no-wait
		nil,
	); err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare exchange %q: %w", cfg.Exchange, err)
	}
	if err := channel.Confirm(false); err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to enable publisher confirms: %w", err)
	}

	if logg != nil {
		ctx := logg.WithField(context.Background(), "exchange", cfg.Exchange)
		logg.Info(ctx, "rabbitmq publisher initialized")
	}
	return &Publisher{conn: conn, channel: channel, exchange: cfg.Exchange}, nil
}

// Exchange returns the declared exchange name.
func (p *Publisher) Exchange() string {
	if p == nil {
		return ""
	}
	return p.exchange
}

// Publish sends msg and waits for the broker to confirm it.
func (p *Publisher) Publish(ctx context.Context, exchange, routingKey string, msg Message) error {
	if p == nil || p.channel == nil {
		return errNotInitialized
	}
	if exchange == "" {
		exchange = p.exchange
	}
	confirm, err := p.channel.PublishWithDeferredConfirmWithContext(
		ctx,
		exchange,
		routingKey,
		false, // mandatory
		false, // immediate
		buildPublishing(msg),
	)
	if err != nil {
		return fmt.Errorf("publish to %s/%s: %w", exchange, routingKey, err)
	}
	if confirm == nil {
		return nil
	}
	acked, err := confirm.WaitContext(ctx)
	if err != nil {
		return fmt.Errorf("await confirm: %w", err)
	}
	if !acked {
		return fmt.Errorf("broker nacked message %s", msg.ID)
	}
	return nil
}

// Ping reports whether the connection is still open.
func (p *Publisher) Ping(context.Context) error {
	if p == nil || p.conn == nil {
		return errNotInitialized
	}
	if p.conn.IsClosed() {
		return errors.New("rabbitmq connection closed")
	}
	return nil
}

func (p *Publisher) Close() error {
	if p == nil {
		return nil
	}
	var errs []error
	if p.channel != nil {
		errs = append(errs, p.channel.Close())
	}
	if p.conn != nil {
		errs = append(errs, p.conn.Close())
	}
	return errors.Join(errs...)
}

func buildPublishing(msg Message) amqp.Publishing {
	headers := amqp.Table{}
	for k, v := range msg.Headers {
		headers[k] = v
	}
	ts := msg.Timestamp
	if ts.IsZero() {
		ts = time.Now().UTC()
	}
	return amqp.Publishing{
		Headers:      headers,
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    msg.ID,
		Type:         msg.Type,
		Timestamp:    ts,
		Body:         msg.Body,
	}
}
