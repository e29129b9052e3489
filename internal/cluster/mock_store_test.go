package cluster_test

import (
	"time"

	"civicsense/backend/internal/models"

	"github.com/stretchr/testify/mock"
)

// MockStore is a testify mock of the engine's storage dependency.
type MockStore struct {
	mock.Mock
}

func (m *MockStore) GetPendingGeolocated() ([]models.Complaint, error) {
	args := m.Called()
	return args.Get(0).([]models.Complaint), args.Error(1)
}

func (m *MockStore) GetClusteredComplaints() ([]models.Complaint, error) {
	args := m.Called()
	return args.Get(0).([]models.Complaint), args.Error(1)
}

func (m *MockStore) CommitClusterAssignments(refs map[string]string) error {
	args := m.Called(refs)
	return args.Error(0)
}

func (m *MockStore) AcquireClusterLock(ttl time.Duration) (bool, error) {
	args := m.Called(ttl)
	return args.Bool(0), args.Error(1)
}

func (m *MockStore) ReleaseClusterLock() error {
	args := m.Called()
	return args.Error(0)
}
