// Package cluster groups pending, geolocated complaints into geographic
// clusters by connected-component analysis over the pairwise distance
// graph. A cluster is not a stored entity: it is recomputed wholesale on
// every pass and represented purely through the complaints'
// cluster-reference field.
package cluster

import (
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"civicsense/backend/internal/config"
	"civicsense/backend/internal/geo"
	"civicsense/backend/internal/models"
)

// ErrRecomputeInProgress is returned when a clustering pass is already
// running, either in this process or (via the Redis lock) in another.
var ErrRecomputeInProgress = errors.New("cluster recompute already in progress")

// Store is the slice of the storage layer the engine depends on.
type Store interface {
	GetPendingGeolocated() ([]models.Complaint, error)
	GetClusteredComplaints() ([]models.Complaint, error)
	CommitClusterAssignments(refs map[string]string) error
	AcquireClusterLock(ttl time.Duration) (bool, error)
	ReleaseClusterLock() error
}

// Service is the clustering engine.
type Service struct {
	Storage Store

	mu sync.Mutex
}

// NewService creates a new clustering engine.
func NewService(s Store) *Service {
	return &Service{Storage: s}
}

// RecomputeClusters partitions all Pending, geolocated complaints into
// maximal connected components under the "distance <= radiusKm" edge
// relation and persists the result. The pass is a full recompute: the
// stored reference set is replaced wholesale in a single transaction,
// so no partial state — and no reference from a previous pass —
// survives the commit.
//
// Complaints are enumerated in the storage layer's fixed order
// (ascending creation time, id as tie-break), which makes the choice of
// BFS root — and therefore the stored representative id — reproducible.
func (s *Service) RecomputeClusters(radiusKm float64) error {
	if radiusKm < 0 {
		return fmt.Errorf("cluster radius must be non-negative, got %v", radiusKm)
	}

	if !s.mu.TryLock() {
		return ErrRecomputeInProgress
	}
	defer s.mu.Unlock()

	// Cross-process exclusion (other replicas, admin CLI).
	acquired, err := s.Storage.AcquireClusterLock(config.ClusterLockTTL)
	if err != nil {
		return err
	}
	if !acquired {
		return ErrRecomputeInProgress
	}
	defer func() {
		if err := s.Storage.ReleaseClusterLock(); err != nil {
			log.Printf("ERROR: Failed to release cluster lock: %v", err)
		}
	}()

	complaints, err := s.Storage.GetPendingGeolocated()
	if err != nil {
		return err
	}

	refs := partition(complaints, radiusKm)

	if err := s.Storage.CommitClusterAssignments(refs); err != nil {
		return err
	}

	log.Printf("INFO: Clustering pass complete: %d complaints, %d clustered (radius %.2f km)",
		len(complaints), len(refs), radiusKm)
	return nil
}

// partition runs BFS over the implicit distance graph and returns the
// cluster reference for every member of a component of size >= 2,
// keyed by complaint id. Singletons are omitted: they keep an empty
// reference and are never "clustered with themselves".
//
// The edge test scans all still-unvisited nodes for every node pulled
// off the frontier — O(n²) worst case, acceptable for the volumes this
// service handles.
func partition(complaints []models.Complaint, radiusKm float64) map[string]string {
	visited := make([]bool, len(complaints))
	refs := make(map[string]string)

	for i := range complaints {
		if visited[i] {
			continue
		}
		visited[i] = true

		component := []int{i}
		frontier := []int{i}
		for len(frontier) > 0 {
			cur := frontier[0]
			frontier = frontier[1:]

			for j := range complaints {
				if visited[j] {
					continue
				}
				d := geo.DistanceKm(
					*complaints[cur].Latitude, *complaints[cur].Longitude,
					*complaints[j].Latitude, *complaints[j].Longitude,
				)
				if d <= radiusKm {
					visited[j] = true
					component = append(component, j)
					frontier = append(frontier, j)
				}
			}
		}

		if len(component) >= 2 {
			// The node that started the BFS is the representative; its
			// own reference points at itself.
			root := complaints[i].ID
			for _, idx := range component {
				refs[complaints[idx].ID] = root
			}
		}
	}

	return refs
}
