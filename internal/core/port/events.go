package port

import (
	"context"

	"github.com/instreg/registration-admin/internal/core/domain"
)

// EventPublisher publishes access-control events to the message bus.
type EventPublisher interface {
	PublishRoleCreated(ctx context.Context, event domain.RoleCreatedEvent) error
	PublishPermissionGranted(ctx context.Context, event domain.PermissionGrantedEvent) error
}
