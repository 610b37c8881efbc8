package audit

import (
	"encoding/json"
	"time"
)

// EventType categorizes an audit event.
type EventType string

const (
	EventTypeDocumentDecision EventType = "documents.access_decision"
	EventTypeTrialSelfService EventType = "subscriptions.trial_self_service"
	EventTypeTrialAdminGrant  EventType = "subscriptions.trial_admin_grant"
	EventTypeGrantCreate      EventType = "access.grant_create"
	EventTypeGrantRevoke      EventType = "access.grant_revoke"
)

// EventStatus is the outcome of the audited operation.
type EventStatus string

const (
	EventStatusSuccess EventStatus = "success"
	EventStatusFailure EventStatus = "failure"
	EventStatusDenied  EventStatus = "denied"
)

// Event is a single audit log entry. Actor fields are empty for anonymous
// requests; Metadata carries event-specific detail such as the decision
// method or deny reason.
type Event struct {
	ID        int64       `json:"id"`
	Timestamp time.Time   `json:"timestamp"`
	EventType EventType   `json:"event_type"`
	Status    EventStatus `json:"status"`

	ActorID   string `json:"actor_id,omitempty"`
	ActorRole string `json:"actor_role,omitempty"`
	IPAddress string `json:"ip_address,omitempty"`
	RequestID string `json:"request_id,omitempty"`

	ResourceType string `json:"resource_type,omitempty"`
	ResourceID   string `json:"resource_id,omitempty"`

	Metadata map[string]interface{} `json:"metadata,omitempty"`
}

// NewEvent creates an event stamped with the current time.
func NewEvent(eventType EventType, status EventStatus) *Event {
	return &Event{
		Timestamp: time.Now().UTC(),
		EventType: eventType,
		Status:    status,
		Metadata:  make(map[string]interface{}),
	}
}

// WithActor sets the acting principal.
func (e *Event) WithActor(id, role string) *Event {
	e.ActorID = id
	e.ActorRole = role
	return e
}

// WithResource sets the resource the event concerns.
func (e *Event) WithResource(resourceType, resourceID string) *Event {
	e.ResourceType = resourceType
	e.ResourceID = resourceID
	return e
}

// WithMetadata adds one metadata entry.
func (e *Event) WithMetadata(key string, value interface{}) *Event {
	if e.Metadata == nil {
		e.Metadata = make(map[string]interface{})
	}
	e.Metadata[key] = value
	return e
}

func (e *Event) metadataJSON() ([]byte, error) {
	if len(e.Metadata) == 0 {
		return nil, nil
	}
	return json.Marshal(e.Metadata)
}
