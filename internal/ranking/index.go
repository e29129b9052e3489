// Package ranking provides the ranked retrieval of complaints: voting
// and "currently most-upvoted eligible complaint" lookup. Two
// realizations of the same contract exist — a sorted query against the
// authoritative store and an in-memory lazy-invalidation heap — and
// callers only see the Index interface.
//
// Tie-break rule, shared by both realizations: more upvotes first, then
// earliest creation time, then smallest id.
package ranking

import "civicsense/backend/internal/models"

// Store is the slice of the storage layer the index depends on.
type Store interface {
	GetComplaintByID(id string) (*models.Complaint, error)
	AddVote(complaintID, userID string) (*models.Complaint, error)
	GetTopPending() (*models.Complaint, error)
	GetPendingComplaints() ([]models.Complaint, error)
}

// Index is the ranked-retrieval contract.
type Index interface {
	// RecordVote registers userID's upvote on complaintID. Fails with
	// apperrors.ErrNotFound, ErrInvalidState (status is not Pending) or
	// ErrDuplicateVote; on success the vote row and the counter are
	// committed atomically and the updated complaint is returned.
	RecordVote(complaintID, userID string) (*models.Complaint, error)
	// PeekTopEligible returns the Pending complaint with the greatest
	// upvote count, or (nil, nil) when no Pending complaint exists.
	PeekTopEligible() (*models.Complaint, error)
	// Add makes the index aware of a complaint that became Pending
	// outside the voting path (submission, undone status change).
	Add(c *models.Complaint)
}

// StoreIndex realizes the contract with sorted queries against
// PostgreSQL. Preferred when the data lives in a queryable store: the
// ORDER BY is always authoritative, so there is nothing to invalidate.
type StoreIndex struct {
	Storage Store
}

// NewStoreIndex creates a query-backed index.
func NewStoreIndex(s Store) *StoreIndex {
	return &StoreIndex{Storage: s}
}

func (i *StoreIndex) RecordVote(complaintID, userID string) (*models.Complaint, error) {
	return i.Storage.AddVote(complaintID, userID)
}

func (i *StoreIndex) PeekTopEligible() (*models.Complaint, error) {
	return i.Storage.GetTopPending()
}

// Add is a no-op: the store is already authoritative.
func (i *StoreIndex) Add(c *models.Complaint) {}
