package cluster_test

import (
	"testing"
	"time"

	"civicsense/backend/internal/cluster"
	"civicsense/backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// geoComplaint builds a Pending complaint at the given coordinates.
// Creation times follow the call order so the enumeration order in
// tests matches the slice order.
func geoComplaint(id string, lat, lon float64, seq int) models.Complaint {
	return models.Complaint{
		ID:        id,
		Status:    models.StatusPending,
		Latitude:  &lat,
		Longitude: &lon,
		CreatedAt: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC).Add(time.Duration(seq) * time.Minute),
	}
}

func expectLock(store *MockStore) {
	store.On("AcquireClusterLock", mock.Anything).Return(true, nil)
	store.On("ReleaseClusterLock").Return(nil)
}

// TestRecomputeClusters_NegativeRadius verifies the precondition check.
func TestRecomputeClusters_NegativeRadius(t *testing.T) {
	store := new(MockStore)
	engine := cluster.NewService(store)

	err := engine.RecomputeClusters(-1)

	assert.Error(t, err)
	store.AssertNotCalled(t, "GetPendingGeolocated")
}

// TestRecomputeClusters_ChainBuildsOneComponent verifies that complaints
// connected only through intermediate neighbors still form one cluster
// (maximal connected component), rooted at the first enumerated member.
func TestRecomputeClusters_ChainBuildsOneComponent(t *testing.T) {
	// Arrange: A-B ≈ 0.89 km, B-C ≈ 0.89 km, A-C ≈ 1.78 km; D far away.
	complaints := []models.Complaint{
		geoComplaint("A", 0.000, 0, 0),
		geoComplaint("B", 0.008, 0, 1),
		geoComplaint("C", 0.016, 0, 2),
		geoComplaint("D", 1.000, 0, 3),
	}

	store := new(MockStore)
	expectLock(store)
	store.On("GetPendingGeolocated").Return(complaints, nil)

	var gotRefs map[string]string
	store.On("CommitClusterAssignments", mock.Anything).
		Run(func(args mock.Arguments) {
			gotRefs = args.Get(0).(map[string]string)
		}).Return(nil)

	engine := cluster.NewService(store)

	// Act
	err := engine.RecomputeClusters(1.0)

	// Assert
	assert.NoError(t, err)
	assert.Equal(t, map[string]string{"A": "A", "B": "A", "C": "A"}, gotRefs,
		"chain forms one component rooted at the first enumerated member; singleton D stays unreferenced")
	store.AssertExpectations(t)
}

// TestRecomputeClusters_ZeroRadius verifies distinct points all stay singletons.
func TestRecomputeClusters_ZeroRadius(t *testing.T) {
	complaints := []models.Complaint{
		geoComplaint("A", 0.00, 0, 0),
		geoComplaint("B", 0.01, 0, 1),
		geoComplaint("C", 0.02, 0, 2),
	}

	store := new(MockStore)
	expectLock(store)
	store.On("GetPendingGeolocated").Return(complaints, nil)

	var gotRefs map[string]string
	store.On("CommitClusterAssignments", mock.Anything).
		Run(func(args mock.Arguments) {
			gotRefs = args.Get(0).(map[string]string)
		}).Return(nil)

	engine := cluster.NewService(store)

	err := engine.RecomputeClusters(0)

	assert.NoError(t, err)
	assert.Empty(t, gotRefs, "radius 0 with distinct coordinates clusters nothing")
}

// TestRecomputeClusters_CoincidentPointsAtZeroRadius: distance 0 <= 0,
// so complaints at the exact same point do cluster even at radius 0.
func TestRecomputeClusters_CoincidentPointsAtZeroRadius(t *testing.T) {
	complaints := []models.Complaint{
		geoComplaint("A", 50.45, 30.52, 0),
		geoComplaint("B", 50.45, 30.52, 1),
	}

	store := new(MockStore)
	expectLock(store)
	store.On("GetPendingGeolocated").Return(complaints, nil)

	var gotRefs map[string]string
	store.On("CommitClusterAssignments", mock.Anything).
		Run(func(args mock.Arguments) {
			gotRefs = args.Get(0).(map[string]string)
		}).Return(nil)

	engine := cluster.NewService(store)

	err := engine.RecomputeClusters(0)

	assert.NoError(t, err)
	assert.Equal(t, map[string]string{"A": "A", "B": "A"}, gotRefs)
}

// TestRecomputeClusters_Idempotent verifies two passes over unchanged
// data produce identical partitions and root choices.
func TestRecomputeClusters_Idempotent(t *testing.T) {
	complaints := []models.Complaint{
		geoComplaint("A", 0.000, 0, 0),
		geoComplaint("B", 0.005, 0, 1),
		geoComplaint("C", 0.500, 0, 2),
		geoComplaint("D", 0.505, 0, 3),
	}

	store := new(MockStore)
	expectLock(store)
	store.On("GetPendingGeolocated").Return(complaints, nil)

	var commits []map[string]string
	store.On("CommitClusterAssignments", mock.Anything).
		Run(func(args mock.Arguments) {
			commits = append(commits, args.Get(0).(map[string]string))
		}).Return(nil)

	engine := cluster.NewService(store)

	assert.NoError(t, engine.RecomputeClusters(1.0))
	assert.NoError(t, engine.RecomputeClusters(1.0))

	assert.Len(t, commits, 2)
	assert.Equal(t, commits[0], commits[1], "same inputs, same radius: same partition and roots")
	assert.Equal(t, map[string]string{"A": "A", "B": "A", "C": "C", "D": "C"}, commits[0])
}

// TestRecomputeClusters_LockHeld verifies a second concurrent pass is refused.
func TestRecomputeClusters_LockHeld(t *testing.T) {
	store := new(MockStore)
	store.On("AcquireClusterLock", mock.Anything).Return(false, nil)

	engine := cluster.NewService(store)

	err := engine.RecomputeClusters(1.0)

	assert.ErrorIs(t, err, cluster.ErrRecomputeInProgress)
	store.AssertNotCalled(t, "GetPendingGeolocated")
}

// TestRecomputeClusters_EmptySet verifies a pass over no complaints
// still commits, clearing whatever references earlier passes left.
func TestRecomputeClusters_EmptySet(t *testing.T) {
	store := new(MockStore)
	expectLock(store)
	store.On("GetPendingGeolocated").Return([]models.Complaint{}, nil)
	store.On("CommitClusterAssignments", mock.Anything).Return(nil)

	engine := cluster.NewService(store)

	assert.NoError(t, engine.RecomputeClusters(2.5))
	store.AssertCalled(t, "CommitClusterAssignments", mock.Anything)
}

// TestGetClusteredView verifies grouping by representative with the
// representative excluded from its own member list.
func TestGetClusteredView(t *testing.T) {
	refA := "A"
	refX := "X"
	clustered := []models.Complaint{
		{ID: "A", ClusterID: &refA},
		{ID: "B", ClusterID: &refA},
		{ID: "C", ClusterID: &refA},
		{ID: "X", ClusterID: &refX},
		{ID: "Y", ClusterID: &refX},
	}

	store := new(MockStore)
	store.On("GetClusteredComplaints").Return(clustered, nil)

	engine := cluster.NewService(store)

	views, err := engine.GetClusteredView()

	assert.NoError(t, err)
	assert.Len(t, views, 2)

	assert.Equal(t, "A", views[0].Representative.ID)
	memberIDs := []string{views[0].Members[0].ID, views[0].Members[1].ID}
	assert.ElementsMatch(t, []string{"B", "C"}, memberIDs)

	assert.Equal(t, "X", views[1].Representative.ID)
	assert.Len(t, views[1].Members, 1)
	assert.Equal(t, "Y", views[1].Members[0].ID)
}

// TestGetClusteredView_SkipsGroupsWithoutRepresentative: after the
// representative's own reference is cleared (its status changed), a
// member can still point at it until the next clustering pass. Such a
// group must not surface with a zero-valued representative.
func TestGetClusteredView_SkipsGroupsWithoutRepresentative(t *testing.T) {
	refA := "A"
	refX := "X"
	clustered := []models.Complaint{
		// B dangles: its ex-representative A is no longer clustered.
		{ID: "B", Status: models.StatusResolved, ClusterID: &refA},
		{ID: "X", Status: models.StatusPending, ClusterID: &refX},
		{ID: "Y", Status: models.StatusPending, ClusterID: &refX},
	}

	store := new(MockStore)
	store.On("GetClusteredComplaints").Return(clustered, nil)

	engine := cluster.NewService(store)

	views, err := engine.GetClusteredView()

	assert.NoError(t, err)
	assert.Len(t, views, 1, "the group around the departed representative is dropped")
	assert.Equal(t, "X", views[0].Representative.ID)
}
