package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/wardenhq/warden/pkg/authz"
	"github.com/wardenhq/warden/pkg/store"
)

// Event is one recorded authorization decision
type Event struct {
	ID         string             `json:"id"`
	Time       time.Time          `json:"time"`
	RequestID  string             `json:"request_id,omitempty"`
	TenantID   string             `json:"tenant_id"`
	UserID     string             `json:"user_id"`
	Resource   authz.ResourceType `json:"resource"`
	Permission authz.Permission   `json:"permission"`
	ResourceID string             `json:"resource_id,omitempty"`
	Allowed    bool               `json:"allowed"`
	Reason     string             `json:"reason,omitempty"`
}

// Recorder persists and queries audit events
type Recorder interface {
	// Record persists one event, filling ID and Time when unset.
	Record(ctx context.Context, event *Event) error

	// ListTenantEvents returns a tenant's most recent events, newest first.
	// A limit of zero or less means no limit.
	ListTenantEvents(ctx context.Context, tenantID string, limit int) ([]*Event, error)
}

// StoreRecorder is a Recorder over the shared KV store
type StoreRecorder struct {
	store store.Store
}

// NewStoreRecorder creates a recorder over the given store
func NewStoreRecorder(s store.Store) *StoreRecorder {
	return &StoreRecorder{store: s}
}

// eventTimeFormat sorts lexically in time order down to nanoseconds
const eventTimeFormat = "20060102T150405.000000000"

// Record persists the event under its tenant's audit prefix
func (r *StoreRecorder) Record(ctx context.Context, event *Event) error {
	if event.TenantID == "" {
		return fmt.Errorf("audit event requires a tenant id")
	}
	if event.Time.IsZero() {
		event.Time = time.Now().UTC()
	}
	if event.ID == "" {
		event.ID = event.Time.UTC().Format(eventTimeFormat) + "-" + uuid.NewString()
	}

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to serialize audit event: %w", err)
	}
	return r.store.Set(ctx, store.AuditEventKey(event.TenantID, event.ID), string(data))
}

// ListTenantEvents scans the tenant's audit prefix and returns events newest
// first
func (r *StoreRecorder) ListTenantEvents(ctx context.Context, tenantID string, limit int) ([]*Event, error) {
	keys, err := r.store.Keys(ctx, store.AuditPattern(tenantID))
	if err != nil {
		return nil, err
	}
	// Event ids embed the timestamp, so reverse key order is reverse time order.
	sort.Sort(sort.Reverse(sort.StringSlice(keys)))
	if limit > 0 && len(keys) > limit {
		keys = keys[:limit]
	}

	events := make([]*Event, 0, len(keys))
	for _, key := range keys {
		value, ok, err := r.store.Get(ctx, key)
		if err != nil {
			return nil, err
		}
		if !ok {
			// Deleted between scan and read.
			continue
		}
		var event Event
		if err := json.Unmarshal([]byte(value), &event); err != nil {
			return nil, fmt.Errorf("failed to parse audit event %s: %w", key, err)
		}
		events = append(events, &event)
	}
	return events, nil
}
