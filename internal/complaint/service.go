// Package complaint provides the core logic for handling citizen
// complaints: submission with best-effort geocoding, and listing.
package complaint

import (
	"context"
	"log"

	"civicsense/backend/internal/apperrors"
	"civicsense/backend/internal/geocode"
	"civicsense/backend/internal/models"

	"github.com/lib/pq"
)

// Store is the slice of the storage layer the service depends on.
type Store interface {
	GetUserByID(id string) (*models.User, error)
	SaveComplaint(complaint *models.Complaint) error
	GetComplaintsByVotes() ([]models.Complaint, error)
	PublishEvent(ev models.ComplaintEvent) error
}

// Service handles the business logic for complaints.
type Service struct {
	Storage  Store
	Geocoder geocode.Geocoder
}

// NewService creates a new complaint service.
func NewService(s Store, g geocode.Geocoder) *Service {
	return &Service{Storage: s, Geocoder: g}
}

// SubmitRequest carries a new complaint's fields.
type SubmitRequest struct {
	OwnerID     string
	Description string
	Category    string
	Location    string
	Photos      []string
}

// Submit creates a complaint for an existing owner. The location label
// is geocoded once; a failed or empty lookup is logged and swallowed —
// the complaint is still created, with empty coordinates, and stays
// ineligible for clustering until corrected.
func (s *Service) Submit(ctx context.Context, req SubmitRequest) (*models.Complaint, error) {
	owner, err := s.Storage.GetUserByID(req.OwnerID)
	if err != nil {
		return nil, err
	}
	if owner == nil {
		return nil, apperrors.ErrNotFound
	}

	complaint := &models.Complaint{
		Description: req.Description,
		Category:    req.Category,
		Location:    req.Location,
		Status:      models.StatusPending,
		OwnerID:     owner.ID,
		Photos:      pq.StringArray(req.Photos),
	}

	if s.Geocoder != nil && req.Location != "" {
		lat, lon, ok, err := s.Geocoder.Lookup(ctx, req.Location)
		if err != nil {
			log.Printf("ERROR: Geocoding %q failed, complaint created without coordinates: %v", req.Location, err)
		} else if ok {
			complaint.Latitude = &lat
			complaint.Longitude = &lon
		}
	}

	if err := s.Storage.SaveComplaint(complaint); err != nil {
		return nil, err
	}

	// Подія для живої стрічки; помилка публікації не зриває створення.
	_ = s.Storage.PublishEvent(models.ComplaintEvent{
		Type:        models.EventCreated,
		ComplaintID: complaint.ID,
		Status:      complaint.Status,
		Category:    complaint.Category,
		Location:    complaint.Location,
	})

	return complaint, nil
}

// ListByVotes returns all complaints ordered by upvotes descending.
func (s *Service) ListByVotes() ([]models.Complaint, error) {
	return s.Storage.GetComplaintsByVotes()
}
