package ranking

import (
	"container/heap"
	"sync"
	"time"

	"civicsense/backend/internal/models"
)

// entry is one snapshot of a complaint's score inside the heap. Entries
// are never updated in place: a vote pushes a fresh entry and the stale
// one is discarded lazily when it surfaces at the top.
type entry struct {
	complaintID string
	upvotes     int
	createdAt   time.Time
}

type entryHeap []entry

func (h entryHeap) Len() int { return len(h) }

func (h entryHeap) Less(i, j int) bool {
	if h[i].upvotes != h[j].upvotes {
		return h[i].upvotes > h[j].upvotes
	}
	if !h[i].createdAt.Equal(h[j].createdAt) {
		return h[i].createdAt.Before(h[j].createdAt)
	}
	return h[i].complaintID < h[j].complaintID
}

func (h entryHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *entryHeap) Push(x any) { *h = append(*h, x.(entry)) }

func (h *entryHeap) Pop() any {
	old := *h
	n := len(old)
	e := old[n-1]
	*h = old[:n-1]
	return e
}

// HeapIndex realizes ranked retrieval with a max-priority queue and
// lazy invalidation. PeekTopEligible pops entries whose score or status
// no longer matches the authoritative store until one fully valid entry
// surfaces; a complaint that is still Pending under a stale score gets
// a fresh entry re-pushed so it stays indexed.
//
// Complaints that leave Pending are shed lazily; a complaint returning
// to Pending (an undone status change) must be re-announced via Add.
type HeapIndex struct {
	Storage Store

	mu      sync.Mutex
	entries entryHeap
}

// NewHeapIndex creates a heap-backed index seeded with the current set
// of Pending complaints.
func NewHeapIndex(s Store) (*HeapIndex, error) {
	pending, err := s.GetPendingComplaints()
	if err != nil {
		return nil, err
	}

	idx := &HeapIndex{Storage: s}
	for _, c := range pending {
		idx.entries = append(idx.entries, entry{
			complaintID: c.ID,
			upvotes:     c.Upvotes,
			createdAt:   c.CreatedAt,
		})
	}
	heap.Init(&idx.entries)
	return idx, nil
}

func (i *HeapIndex) RecordVote(complaintID, userID string) (*models.Complaint, error) {
	updated, err := i.Storage.AddVote(complaintID, userID)
	if err != nil {
		return nil, err
	}
	i.Add(updated)
	return updated, nil
}

// Add pushes a fresh entry for c without removing any stale ones.
func (i *HeapIndex) Add(c *models.Complaint) {
	i.mu.Lock()
	defer i.mu.Unlock()
	heap.Push(&i.entries, entry{
		complaintID: c.ID,
		upvotes:     c.Upvotes,
		createdAt:   c.CreatedAt,
	})
}

func (i *HeapIndex) PeekTopEligible() (*models.Complaint, error) {
	i.mu.Lock()
	defer i.mu.Unlock()

	for i.entries.Len() > 0 {
		top := i.entries[0]

		complaint, err := i.Storage.GetComplaintByID(top.complaintID)
		if err != nil {
			return nil, err
		}

		if complaint == nil || complaint.Status != models.StatusPending {
			// Deleted or no longer eligible: shed every entry lazily.
			heap.Pop(&i.entries)
			continue
		}
		if complaint.Upvotes != top.upvotes {
			// Stale score: replace with the authoritative one. The fresh
			// entry validates on a later iteration, so this terminates.
			heap.Pop(&i.entries)
			heap.Push(&i.entries, entry{
				complaintID: complaint.ID,
				upvotes:     complaint.Upvotes,
				createdAt:   complaint.CreatedAt,
			})
			continue
		}

		return complaint, nil
	}

	return nil, nil
}
