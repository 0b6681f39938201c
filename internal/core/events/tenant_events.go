package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	TenantCreatedEvent            = "tenant.created"
	TenantDeactivatedEvent        = "tenant.deactivated"
	TenantCredentialsRotatedEvent = "tenant.credentials_rotated"
)

func NewTenantCreatedEvent(tenantID, subdomain string) Event {
	return BaseEvent{
		ID:        uuid.NewString(),
		Type:      TenantCreatedEvent,
		Timestamp: time.Now(),
		Data: map[string]interface{}{
			"tenant_id": tenantID,
			"subdomain": subdomain,
		},
	}
}

// NewTenantDeactivatedEvent signals that a tenant was tombstoned. Subscribers
// close any live connection so the tombstone takes effect immediately.
func NewTenantDeactivatedEvent(tenantID string) Event {
	return BaseEvent{
		ID:        uuid.NewString(),
		Type:      TenantDeactivatedEvent,
		Timestamp: time.Now(),
		Data: map[string]interface{}{
			"tenant_id": tenantID,
		},
	}
}

// NewTenantCredentialsRotatedEvent signals that a tenant's database
// configuration changed. Subscribers evict the cached connection so the next
// access re-reads the new config.
func NewTenantCredentialsRotatedEvent(tenantID string) Event {
	return BaseEvent{
		ID:        uuid.NewString(),
		Type:      TenantCredentialsRotatedEvent,
		Timestamp: time.Now(),
		Data: map[string]interface{}{
			"tenant_id": tenantID,
		},
	}
}

// TenantID extracts the tenant id from a tenant lifecycle event payload.
func TenantID(event Event) (string, bool) {
	data, ok := event.Payload().(map[string]interface{})
	if !ok {
		return "", false
	}
	id, ok := data["tenant_id"].(string)
	return id, ok
}
