package models

// ComplaintEvent is the wire format published to Redis Pub/Sub and
// fanned out to WebSocket feed subscribers.
type ComplaintEvent struct {
	Type        string          `json:"type"` // "created", "status_changed", "voted"
	ComplaintID string          `json:"complaint_id"`
	Status      ComplaintStatus `json:"status,omitempty"`
	Upvotes     int             `json:"upvotes,omitempty"`
	Category    string          `json:"category,omitempty"`
	Location    string          `json:"location,omitempty"`
}

const (
	EventCreated       = "created"
	EventStatusChanged = "status_changed"
	EventVoted         = "voted"
)
