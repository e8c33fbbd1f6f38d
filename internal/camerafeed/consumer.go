package camerafeed

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"

	"garagehub/pkg/domain"
	"garagehub/pkg/store"
)

const (
	reconnectBase = time.Second
	reconnectMax  = 30 * time.Second
)

// sighting is the wire form of one ANPR camera report.
type sighting struct {
	LicensePlateNumber string `json:"license_plate_number"`
	TimeStamp          string `json:"time_stamp"`
}

// Config wires the consumer's dependencies.
type Config struct {
	URL     string
	Queue   string
	Cameras store.Collection[domain.Camera]
}

// Consumer reads plate sightings from an AMQP queue and records them as
// camera documents. Malformed messages are rejected without requeue.
type Consumer struct {
	url     string
	queue   string
	cameras store.Collection[domain.Camera]
}

func New(cfg Config) (*Consumer, error) {
	if strings.TrimSpace(cfg.URL) == "" {
		return nil, errors.New("amqp url required")
	}
	if strings.TrimSpace(cfg.Queue) == "" {
		return nil, errors.New("amqp queue required")
	}
	if cfg.Cameras == nil {
		return nil, errors.New("camera store required")
	}
	return &Consumer{url: cfg.URL, queue: cfg.Queue, cameras: cfg.Cameras}, nil
}

// Start runs the consume loop until ctx is canceled, reconnecting with
// backoff after connection loss.
func (c *Consumer) Start(ctx context.Context) {
	go func() {
		delay := reconnectBase
		for {
			select {
			case <-ctx.Done():
				return
			default:
			}
			if err := c.consume(ctx); err != nil {
				slog.Warn("camera feed disconnected", "queue", c.queue, "error", err)
			}
			select {
			case <-ctx.Done():
				return
			case <-time.After(delay):
			}
			delay *= 2
			if delay > reconnectMax {
				delay = reconnectMax
			}
		}
	}()
}

func (c *Consumer) consume(ctx context.Context) error {
	conn, err := amqp.Dial(c.url)
	if err != nil {
		return err
	}
	defer conn.Close()

	ch, err := conn.Channel()
	if err != nil {
		return err
	}
	defer ch.Close()

	if _, err := ch.QueueDeclare(c.queue, true, false, false, false, nil); err != nil {
		return err
	}
	deliveries, err := ch.Consume(c.queue, "", false, false, false, false, nil)
	if err != nil {
		return err
	}

	slog.Info("camera feed connected", "queue", c.queue)
	for {
		select {
		case <-ctx.Done():
			return nil
		case d, ok := <-deliveries:
			if !ok {
				return errors.New("delivery channel closed")
			}
			c.handle(ctx, d)
		}
	}
}

func (c *Consumer) handle(ctx context.Context, d amqp.Delivery) {
	var s sighting
	if err := json.Unmarshal(d.Body, &s); err != nil || strings.TrimSpace(s.LicensePlateNumber) == "" {
		slog.Warn("rejecting malformed camera message", "queue", c.queue)
		_ = d.Reject(false)
		return
	}
	if s.TimeStamp == "" {
		s.TimeStamp = time.Now().UTC().Format(time.RFC3339)
	}
	camera := domain.Camera{
		ID:                 uuid.NewString(),
		LicensePlateNumber: strings.TrimSpace(s.LicensePlateNumber),
		TimeStamp:          s.TimeStamp,
	}
	if err := c.cameras.Insert(ctx, camera); err != nil {
		slog.Error("insert camera sighting failed", "plate", camera.LicensePlateNumber, "error", err)
		_ = d.Nack(false, true)
		return
	}
	_ = d.Ack(false)
}
