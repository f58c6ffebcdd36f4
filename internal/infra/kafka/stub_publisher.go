package kafka

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/instreg/registration-admin/internal/core/domain"
	"github.com/instreg/registration-admin/internal/core/port"
)

// StubPublisher logs events instead of sending them to Kafka. Useful for
// development environments and broker-less deployments.
type StubPublisher struct {
	logger *zap.Logger
}

// NewStubPublisher constructs a development-friendly event publisher.
func NewStubPublisher(logger *zap.Logger) *StubPublisher {
	return &StubPublisher{logger: logger}
}

func (p *StubPublisher) logEvent(eventType string, at time.Time, payload any) {
	if at.IsZero() {
		at = time.Now().UTC()
	}

	p.logger.Info("Stub event published",
		zap.String("event_type", eventType),
		zap.Time("timestamp", at.UTC()),
		zap.Any("payload", payload),
	)
}

// PublishRoleCreated logs access.role.created events.
func (p *StubPublisher) PublishRoleCreated(_ context.Context, event domain.RoleCreatedEvent) error {
	payload := map[string]any{
		"role_id":    event.RoleID,
		"role_name":  event.RoleName,
		"created_by": event.CreatedBy,
		"created_at": event.CreatedAt,
		"metadata":   event.Metadata,
	}
	p.logEvent("access.role.created", event.CreatedAt, payload)
	return nil
}

// PublishPermissionGranted logs access.role.permission.granted events.
func (p *StubPublisher) PublishPermissionGranted(_ context.Context, event domain.PermissionGrantedEvent) error {
	payload := map[string]any{
		"role_id":                event.RoleID,
		"permission_id":          event.PermissionID,
		"permission_system_name": event.PermissionSystemName,
		"granted_by":             event.GrantedBy,
		"granted_at":             event.GrantedAt,
		"metadata":               event.Metadata,
	}
	p.logEvent("access.role.permission.granted", event.GrantedAt, payload)
	return nil
}

var _ port.EventPublisher = (*StubPublisher)(nil)
