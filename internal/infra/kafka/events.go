package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/IBM/sarama"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/instreg/registration-admin/internal/core/domain"
	"github.com/instreg/registration-admin/internal/core/port"
	"github.com/instreg/registration-admin/internal/infra/config"
)

const schemaVersion = "1.0"

// EventPublisher implements port.EventPublisher using Kafka.
type EventPublisher struct {
	producer *Producer
	logger   *zap.Logger
	appCfg   config.AppSettings
}

// NewEventPublisher constructs a Kafka-backed event publisher.
func NewEventPublisher(producer *Producer, appCfg config.AppSettings, logger *zap.Logger) *EventPublisher {
	return &EventPublisher{producer: producer, appCfg: appCfg, logger: logger}
}

type envelopeMetadata map[string]string

type eventEnvelope struct {
	EventID   string           `json:"event_id"`
	EventType string           `json:"event_type"`
	Timestamp time.Time        `json:"timestamp"`
	Version   string           `json:"version"`
	Payload   any              `json:"payload"`
	Metadata  envelopeMetadata `json:"metadata,omitempty"`
}

func (p *EventPublisher) publish(ctx context.Context, eventID, eventType string, ts time.Time, payload any) error {
	if ts.IsZero() {
		ts = time.Now().UTC()
	}

	id := eventID
	if id == "" {
		id = uuid.NewString()
	}

	metadata := envelopeMetadata{
		"service":     p.appCfg.Name,
		"environment": p.appCfg.Env,
	}

	if span := trace.SpanFromContext(ctx); span != nil {
		if sc := span.SpanContext(); sc.IsValid() {
			metadata["trace_id"] = sc.TraceID().String()
		}
	}

	envelope := eventEnvelope{
		EventID:   id,
		EventType: eventType,
		Timestamp: ts.UTC(),
		Version:   schemaVersion,
		Payload:   payload,
		Metadata:  metadata,
	}

	bytes, err := json.Marshal(envelope)
	if err != nil {
		return fmt.Errorf("marshal event envelope: %w", err)
	}

	message := &sarama.ProducerMessage{
		Topic: p.producer.TopicName(eventType),
		Value: sarama.ByteEncoder(bytes),
	}

	select {
	case p.producer.Producer().Input() <- message:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// PublishRoleCreated publishes access.role.created events.
func (p *EventPublisher) PublishRoleCreated(ctx context.Context, event domain.RoleCreatedEvent) error {
	payload := struct {
		RoleID    int64          `json:"role_id"`
		RoleName  string         `json:"role_name"`
		CreatedBy int64          `json:"created_by"`
		CreatedAt time.Time      `json:"created_at"`
		Metadata  map[string]any `json:"metadata,omitempty"`
	}{
		RoleID:    event.RoleID,
		RoleName:  event.RoleName,
		CreatedBy: event.CreatedBy,
		CreatedAt: event.CreatedAt.UTC(),
		Metadata:  event.Metadata,
	}

	return p.publish(ctx, event.EventID, "access.role.created", event.CreatedAt, payload)
}

// PublishPermissionGranted publishes access.role.permission.granted events.
func (p *EventPublisher) PublishPermissionGranted(ctx context.Context, event domain.PermissionGrantedEvent) error {
	payload := struct {
		RoleID               int64          `json:"role_id"`
		PermissionID         int64          `json:"permission_id"`
		PermissionSystemName string         `json:"permission_system_name"`
		GrantedBy            int64          `json:"granted_by"`
		GrantedAt            time.Time      `json:"granted_at"`
		Metadata             map[string]any `json:"metadata,omitempty"`
	}{
		RoleID:               event.RoleID,
		PermissionID:         event.PermissionID,
		PermissionSystemName: event.PermissionSystemName,
		GrantedBy:            event.GrantedBy,
		GrantedAt:            event.GrantedAt.UTC(),
		Metadata:             event.Metadata,
	}

	return p.publish(ctx, event.EventID, "access.role.permission.granted", event.GrantedAt, payload)
}

var _ port.EventPublisher = (*EventPublisher)(nil)
