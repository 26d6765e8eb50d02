package audit

import (
	"time"

	"github.com/google/uuid"
)

// Result is the outcome of an audited action.
type Result string

const (
	ResultSuccess Result = "success"
	ResultFailure Result = "failure"
)

// Event is a single audit record. TenantID and UserID are zero for events
// outside any tenant scope (for example unrestricted-mode access).
type Event struct {
	ID        uuid.UUID         `json:"id"`
	TenantID  uuid.UUID         `json:"tenant_id,omitzero"`
	UserID    uuid.UUID         `json:"user_id,omitzero"`
	Action    string            `json:"action"`
	Result    Result            `json:"result"`
	Error     string            `json:"error,omitempty"`
	Metadata  map[string]string `json:"metadata,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
}

// Validate reports whether the event carries the required fields.
func (e *Event) Validate() error {
	if e.Action == "" {
		return ErrMissingAction
	}
	return nil
}

// EventOption customizes an event before it is stored.
type EventOption func(*Event)

// WithTenant attaches the tenant the action was scoped to.
func WithTenant(id uuid.UUID) EventOption {
	return func(e *Event) { e.TenantID = id }
}

// WithUser attaches the acting user.
func WithUser(id uuid.UUID) EventOption {
	return func(e *Event) { e.UserID = id }
}

// WithMetadata attaches a key/value pair to the event.
func WithMetadata(key, value string) EventOption {
	return func(e *Event) {
		if e.Metadata == nil {
			e.Metadata = make(map[string]string)
		}
		e.Metadata[key] = value
	}
}
