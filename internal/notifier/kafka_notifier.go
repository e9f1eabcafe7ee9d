package notifier

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/segmentio/kafka-go"

	"salon_backend/internal/models"
	"salon_backend/pkg/utils"
)

// messageWriter is the part of *kafka.Writer the notifier needs.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaNotifier publishes appointment events as JSON, keyed by appointment id so events for
// one appointment stay ordered within a partition.
type KafkaNotifier struct {
	writer     messageWriter
	topic      string
	maxRetries uint64
}

// NewKafkaNotifier creates a writer for brokers. Connections are opened lazily on first write.
func NewKafkaNotifier(brokers []string, topic string) (*KafkaNotifier, error) {
	if len(brokers) == 0 {
		return nil, errors.New("kafka brokers are not configured")
	}
	if topic == "" {
		return nil, errors.New("kafka topic is not configured")
	}

	writer := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireOne,
		BatchTimeout:           10 * time.Millisecond,
		WriteTimeout:           10 * time.Second,
		ReadTimeout:            10 * time.Second,
		AllowAutoTopicCreation: true,
	}

	utils.LogInfo("Kafka notifier initialized", map[string]interface{}{"brokers": brokers, "topic": topic})
	return newKafkaNotifier(writer, topic), nil
}

func newKafkaNotifier(w messageWriter, topic string) *KafkaNotifier {
	return &KafkaNotifier{writer: w, topic: topic, maxRetries: 3}
}

func (k *KafkaNotifier) AppointmentBooked(ctx context.Context, appt *models.Appointment) error {
	return k.publish(ctx, NewEvent(EventAppointmentBooked, appt, ""))
}

func (k *KafkaNotifier) AppointmentStatusChanged(ctx context.Context, appt *models.Appointment, from models.AppointmentStatus) error {
	return k.publish(ctx, NewEvent(EventAppointmentStatusChanged, appt, from))
}

func (k *KafkaNotifier) publish(ctx context.Context, event Event) error {
	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("kafka: failed to marshal event: %w", err)
	}
	msg := kafka.Message{
		Key:   []byte(utils.Int64ToStr(event.AppointmentID)),
		Value: value,
		Time:  event.OccurredAt,
	}

	operation := func() error {
		return k.writer.WriteMessages(ctx, msg)
	}
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 100 * time.Millisecond
	bo.MaxInterval = 2 * time.Second
	bo.Reset()

	if err := backoff.Retry(operation, backoff.WithContext(backoff.WithMaxRetries(bo, k.maxRetries), ctx)); err != nil {
		return fmt.Errorf("kafka: failed to publish %s for appointment %d: %w", event.Type, event.AppointmentID, err)
	}

	utils.LogDebug("Published appointment event", map[string]interface{}{
		"topic": k.topic, "type": event.Type, "appointment_id": event.AppointmentID,
	})
	return nil
}

func (k *KafkaNotifier) Close() error {
	if err := k.writer.Close(); err != nil {
		return fmt.Errorf("kafka: failed to close writer: %w", err)
	}
	return nil
}
