package audit

import (
	"time"

	"github.com/google/uuid"
)

// Category represents the area of the app an event touches.
type Category string

const (
	CategoryAccess   Category = "access"
	CategoryRoster   Category = "roster"
	CategoryBilling  Category = "billing"
	CategoryTraining Category = "training"
	CategorySystem   Category = "system"
)

// Action represents the action that occurred.
type Action string

const (
	ActionCreate   Action = "create"
	ActionUpdate   Action = "update"
	ActionDelete   Action = "delete"
	ActionGrant    Action = "grant"
	ActionRevoke   Action = "revoke"
	ActionGenerate Action = "generate"
	ActionPay      Action = "pay"
	ActionRemind   Action = "remind"
	ActionImport   Action = "import"
)

// Event represents a single audit log entry.
type Event struct {
	ID           string    `json:"id"`
	Timestamp    time.Time `json:"timestamp"`
	Category     Category  `json:"category"`
	Action       Action    `json:"action"`
	ActorID      string    `json:"actorId"`
	ActorEmail   string    `json:"actorEmail"`
	ClubID       string    `json:"clubId"`
	ResourceType string    `json:"resourceType"`
	ResourceID   string    `json:"resourceId"`
	Description  string    `json:"description"`
	Metadata     string    `json:"metadata"`
}

// NewEvent creates a new audit event stamped at now.
// PRE: actorID and action are non-empty
// POST: Returns an Event with a fresh ID
func NewEvent(actorID, actorEmail string, category Category, action Action, now time.Time) Event {
	return Event{
		ID:         uuid.New().String(),
		Timestamp:  now,
		Category:   category,
		Action:     action,
		ActorID:    actorID,
		ActorEmail: actorEmail,
	}
}

// InClub scopes the event to a club.
func (e Event) InClub(clubID string) Event {
	e.ClubID = clubID
	return e
}

// WithResource sets resource information.
// PRE: resourceType and resourceID are non-empty
// POST: Event resource fields are populated
func (e Event) WithResource(resourceType, resourceID string) Event {
	e.ResourceType = resourceType
	e.ResourceID = resourceID
	return e
}

// WithDescription sets the event description.
func (e Event) WithDescription(desc string) Event {
	e.Description = desc
	return e
}

// WithMetadata sets optional JSON metadata.
// PRE: metadata is valid JSON or empty
func (e Event) WithMetadata(metadata string) Event {
	e.Metadata = metadata
	return e
}
