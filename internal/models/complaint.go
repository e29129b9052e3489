package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq" // Необхідний для pq.StringArray
	"gorm.io/gorm"
)

// ComplaintStatus is the lifecycle state of a complaint.
type ComplaintStatus string

const (
	StatusPending    ComplaintStatus = "Pending"
	StatusInProgress ComplaintStatus = "InProgress"
	StatusResolved   ComplaintStatus = "Resolved"
	StatusRejected   ComplaintStatus = "Rejected"
)

// ValidStatus reports whether s is one of the known lifecycle states.
func ValidStatus(s ComplaintStatus) bool {
	switch s {
	case StatusPending, StatusInProgress, StatusResolved, StatusRejected:
		return true
	}
	return false
}

// Complaint represents a citizen-submitted civic complaint.
type Complaint struct {
	ID          string `gorm:"primaryKey" json:"id"` // UUID
	Description string `gorm:"type:text;not null" json:"description"`
	Category    string `gorm:"index" json:"category"`
	// Location is the free-text place label entered by the citizen.
	Location string `json:"location"`
	// Latitude/Longitude are filled by the geocoder once, at submission.
	// Nil means geocoding failed; the complaint never joins a cluster.
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`

	Upvotes int             `gorm:"not null;default:0" json:"upvotes"`
	Status  ComplaintStatus `gorm:"index;not null" json:"status"`

	OwnerID string         `gorm:"type:uuid;not null;index" json:"owner_id"`
	Photos  pq.StringArray `gorm:"type:text[]" json:"photos,omitempty"`

	// ClusterID references the complaint acting as the cluster
	// representative. Empty for unclustered complaints; equal to ID for
	// the representative itself.
	ClusterID *string `gorm:"index" json:"cluster_id,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

// BeforeCreate — це хук GORM, який викликається перед створенням запису.
func (c *Complaint) BeforeCreate(tx *gorm.DB) (err error) {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	if c.Status == "" {
		c.Status = StatusPending
	}
	return
}

// HasCoordinates reports whether the complaint was successfully geocoded.
func (c *Complaint) HasCoordinates() bool {
	return c.Latitude != nil && c.Longitude != nil
}

// IsClusterRoot reports whether the complaint is its own cluster
// representative (cluster reference equals own id).
func (c *Complaint) IsClusterRoot() bool {
	return c.ClusterID != nil && *c.ClusterID == c.ID
}
