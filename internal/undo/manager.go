// Package undo records administrator status changes as compensating
// actions and lets each administrator reverse their most recent change
// in LIFO order. Stacks are process-local, keyed by administrator id,
// created lazily on first use and never persisted.
//
// Growth is unbounded by design; capping depth or evicting by TTL is a
// known production-hardening item.
package undo

import (
	"sync"

	"civicsense/backend/internal/apperrors"
	"civicsense/backend/internal/models"
)

// Store is the slice of the storage layer the manager depends on.
type Store interface {
	GetUserByID(id string) (*models.User, error)
	GetComplaintByID(id string) (*models.Complaint, error)
	UpdateComplaintStatus(id string, status models.ComplaintStatus) (*models.Complaint, error)
}

// record is one compensating action: enough to restore a complaint to
// the status it had before the change.
type record struct {
	complaintID    string
	previousStatus models.ComplaintStatus
}

// Manager owns every administrator's undo stack. A single mutex guards
// the maps; on top of that, applies and undos under the same admin id
// are fully serialized by a per-admin mutex, so the push -> mutate ->
// discard-on-failure sequence never interleaves with another request
// and a failed change can only discard its own record. Different
// admins never see each other's records and never contend.
type Manager struct {
	Storage Store

	mu     sync.Mutex
	stacks map[string][]record
	locks  map[string]*sync.Mutex
}

// NewManager creates a new undo stack manager.
func NewManager(s Store) *Manager {
	return &Manager{
		Storage: s,
		stacks:  make(map[string][]record),
		locks:   make(map[string]*sync.Mutex),
	}
}

// ApplyStatusChange sets the complaint's status on behalf of adminID,
// recording the previous status for undo first. A call where the status
// already equals newStatus succeeds without touching the stack. Returns
// the updated complaint and the admin's post-push stack depth.
func (m *Manager) ApplyStatusChange(adminID, complaintID string, newStatus models.ComplaintStatus) (*models.Complaint, int, error) {
	if err := m.requireAdmin(adminID); err != nil {
		return nil, 0, err
	}

	lock := m.adminLock(adminID)
	lock.Lock()
	defer lock.Unlock()

	complaint, err := m.Storage.GetComplaintByID(complaintID)
	if err != nil {
		return nil, 0, err
	}
	if complaint == nil {
		return nil, 0, apperrors.ErrNotFound
	}

	if complaint.Status == newStatus {
		// No-op for the stack; still a successful call.
		return complaint, m.Depth(adminID), nil
	}

	m.mu.Lock()
	m.stacks[adminID] = append(m.stacks[adminID], record{
		complaintID:    complaintID,
		previousStatus: complaint.Status,
	})
	depth := len(m.stacks[adminID])
	m.mu.Unlock()

	updated, err := m.Storage.UpdateComplaintStatus(complaintID, newStatus)
	if err != nil {
		// The mutation never happened: discard the record so the stack
		// only tracks real transitions. Under the per-admin lock the
		// top of the stack is necessarily our own record.
		m.popRecord(adminID)
		return nil, 0, err
	}

	return updated, depth, nil
}

// UndoLast reverses adminID's most recent status change. The popped
// record is consumed even when the referenced complaint no longer
// exists — the undo is not retried.
func (m *Manager) UndoLast(adminID string) (*models.Complaint, int, error) {
	if err := m.requireAdmin(adminID); err != nil {
		return nil, 0, err
	}

	lock := m.adminLock(adminID)
	lock.Lock()
	defer lock.Unlock()

	m.mu.Lock()
	stack := m.stacks[adminID]
	if len(stack) == 0 {
		m.mu.Unlock()
		return nil, 0, apperrors.ErrEmptyStack
	}
	rec := stack[len(stack)-1]
	m.stacks[adminID] = stack[:len(stack)-1]
	depth := len(m.stacks[adminID])
	m.mu.Unlock()

	updated, err := m.Storage.UpdateComplaintStatus(rec.complaintID, rec.previousStatus)
	if err != nil {
		return nil, depth, err
	}

	return updated, depth, nil
}

// Depth returns the current stack depth for adminID.
func (m *Manager) Depth(adminID string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.stacks[adminID])
}

func (m *Manager) requireAdmin(adminID string) error {
	user, err := m.Storage.GetUserByID(adminID)
	if err != nil {
		return err
	}
	if user == nil || !user.IsAdmin {
		return apperrors.ErrForbidden
	}
	return nil
}

// adminLock returns the mutex serializing operations for adminID,
// creating it on first use.
func (m *Manager) adminLock(adminID string) *sync.Mutex {
	m.mu.Lock()
	defer m.mu.Unlock()
	lock, ok := m.locks[adminID]
	if !ok {
		lock = &sync.Mutex{}
		m.locks[adminID] = lock
	}
	return lock
}

func (m *Manager) popRecord(adminID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	stack := m.stacks[adminID]
	if len(stack) > 0 {
		m.stacks[adminID] = stack[:len(stack)-1]
	}
}
