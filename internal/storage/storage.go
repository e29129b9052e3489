package storage

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	"civicsense/backend/internal/apperrors"
	"civicsense/backend/internal/config"
	"civicsense/backend/internal/models"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Storage is the aggregate persistence interface consumed by the
// service wiring. The individual services depend on the narrow
// per-package interfaces they declare themselves; *Service satisfies
// all of them.
type Storage interface {
	SaveUser(user *models.User) error
	GetUserByID(id string) (*models.User, error)
	GetUserByUsername(username string) (*models.User, error)

	SaveComplaint(complaint *models.Complaint) error
	GetComplaintByID(id string) (*models.Complaint, error)
	GetComplaintsByVotes() ([]models.Complaint, error)
	GetTopPending() (*models.Complaint, error)
	GetPendingComplaints() ([]models.Complaint, error)
	GetPendingGeolocated() ([]models.Complaint, error)
	GetClusteredComplaints() ([]models.Complaint, error)
	UpdateComplaintStatus(id string, status models.ComplaintStatus) (*models.Complaint, error)

	AddVote(complaintID, userID string) (*models.Complaint, error)
	CommitClusterAssignments(refs map[string]string) error

	AcquireClusterLock(ttl time.Duration) (bool, error)
	ReleaseClusterLock() error
	PublishEvent(ev models.ComplaintEvent) error
}

// Service is the PostgreSQL + Redis backed implementation of Storage.
type Service struct {
	DB    *gorm.DB
	Redis *redis.Client
	Ctx   context.Context
}

// NewStorageService Constructor
func NewStorageService(db *gorm.DB, rdb *redis.Client) *Service {
	return &Service{
		DB:    db,
		Redis: rdb,
		Ctx:   context.Background(),
	}
}

// SaveUser зберігає користувача в PostgreSQL
func (s *Service) SaveUser(user *models.User) error {
	return s.DB.Save(user).Error
}

// GetUserByID повертає користувача за ID або (nil, nil), якщо не знайдено.
func (s *Service) GetUserByID(id string) (*models.User, error) {
	var user models.User
	err := s.DB.First(&user, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *Service) GetUserByUsername(username string) (*models.User, error) {
	var user models.User
	err := s.DB.First(&user, "username = ?", username).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *Service) SaveComplaint(complaint *models.Complaint) error {
	if complaint.Status == "" {
		complaint.Status = models.StatusPending
	}

	result := s.DB.Save(complaint)
	if result.Error != nil {
		log.Printf("ERROR: Failed to save complaint for owner %s: %v", complaint.OwnerID, result.Error)
		return result.Error
	}
	return nil
}

// GetComplaintByID повертає скаргу за ID або (nil, nil), якщо не знайдено.
func (s *Service) GetComplaintByID(id string) (*models.Complaint, error) {
	var complaint models.Complaint
	err := s.DB.First(&complaint, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &complaint, nil
}

// GetComplaintsByVotes повертає всі скарги, відсортовані за голосами.
func (s *Service) GetComplaintsByVotes() ([]models.Complaint, error) {
	var complaints []models.Complaint
	err := s.DB.Order("upvotes DESC, created_at ASC, id ASC").Find(&complaints).Error
	if err != nil {
		log.Printf("ERROR: Failed to list complaints: %v", err)
		return nil, err
	}
	return complaints, nil
}

// GetTopPending returns the Pending complaint with the most upvotes.
// Tie-break: earliest creation time, then smallest id. Returns
// (nil, nil) when no Pending complaint exists.
func (s *Service) GetTopPending() (*models.Complaint, error) {
	var complaint models.Complaint
	err := s.DB.Where("status = ?", models.StatusPending).
		Order("upvotes DESC, created_at ASC, id ASC").
		First(&complaint).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &complaint, nil
}

func (s *Service) GetPendingComplaints() ([]models.Complaint, error) {
	var complaints []models.Complaint
	err := s.DB.Where("status = ?", models.StatusPending).
		Order("created_at ASC, id ASC").
		Find(&complaints).Error
	if err != nil {
		return nil, err
	}
	return complaints, nil
}

// GetPendingGeolocated returns every Pending complaint that has
// coordinates, in the fixed enumeration order the clustering engine
// relies on for reproducible root selection (created_at, then id).
func (s *Service) GetPendingGeolocated() ([]models.Complaint, error) {
	var complaints []models.Complaint
	err := s.DB.Where("status = ?", models.StatusPending).
		Where("latitude IS NOT NULL AND longitude IS NOT NULL").
		Order("created_at ASC, id ASC").
		Find(&complaints).Error
	if err != nil {
		log.Printf("ERROR: Failed to load geolocated complaints: %v", err)
		return nil, err
	}
	return complaints, nil
}

// GetClusteredComplaints повертає всі скарги з непорожнім cluster_id.
func (s *Service) GetClusteredComplaints() ([]models.Complaint, error) {
	var complaints []models.Complaint
	err := s.DB.Where("cluster_id IS NOT NULL").
		Order("created_at ASC, id ASC").
		Find(&complaints).Error
	if err != nil {
		return nil, err
	}
	return complaints, nil
}

// UpdateComplaintStatus sets the complaint's status. A complaint that
// leaves Pending also leaves its cluster: the reference is cleared in
// the same write, so no row ever points at (or serves as) a
// representative while ineligible for clustering.
func (s *Service) UpdateComplaintStatus(id string, status models.ComplaintStatus) (*models.Complaint, error) {
	var complaint models.Complaint
	err := s.DB.First(&complaint, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	complaint.Status = status
	if status != models.StatusPending {
		complaint.ClusterID = nil
	}
	if err := s.DB.Save(&complaint).Error; err != nil {
		return nil, err
	}
	return &complaint, nil
}

// AddVote performs the existence check, the vote insert and the counter
// increment in one transaction with a row lock on the complaint. Two
// concurrent votes for the same (user, complaint) pair cannot both
// succeed: the composite primary key on votes rejects the second insert.
func (s *Service) AddVote(complaintID, userID string) (*models.Complaint, error) {
	var updated models.Complaint
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var complaint models.Complaint
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&complaint, "id = ?", complaintID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrNotFound
		}
		if err != nil {
			return err
		}

		if complaint.Status != models.StatusPending {
			return apperrors.ErrInvalidState
		}

		vote := models.Vote{UserID: userID, ComplaintID: complaintID}
		if err := tx.Create(&vote).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return apperrors.ErrDuplicateVote
			}
			return err
		}

		if err := tx.Model(&complaint).
			UpdateColumn("upvotes", gorm.Expr("upvotes + 1")).Error; err != nil {
			return err
		}
		complaint.Upvotes++
		updated = complaint
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// CommitClusterAssignments replaces the complete set of cluster
// references: every stored reference is cleared and refs (member id ->
// representative id) is applied, all inside one transaction so that a
// mid-pass failure can never leave a reference pointing at a non-reset
// root. Clearing all rows rather than just the freshly selected ones
// also heals references left behind by complaints that exited Pending
// between passes.
func (s *Service) CommitClusterAssignments(refs map[string]string) error {
	return s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Complaint{}).
			Where("cluster_id IS NOT NULL").
			Update("cluster_id", nil).Error; err != nil {
			return err
		}

		// Групуємо членів за представником, щоб оновлювати пакетами.
		byRoot := make(map[string][]string)
		for id, root := range refs {
			byRoot[root] = append(byRoot[root], id)
		}
		for root, members := range byRoot {
			if err := tx.Model(&models.Complaint{}).
				Where("id IN ?", members).
				Update("cluster_id", root).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// AcquireClusterLock перевіряє ексклюзивність перерахунку через Redis SetNX.
// Without Redis (admin CLI runs with rdb == nil) the in-process mutex in
// the cluster engine is the only guard.
func (s *Service) AcquireClusterLock(ttl time.Duration) (bool, error) {
	if s.Redis == nil {
		return true, nil
	}
	return s.Redis.SetNX(s.Ctx, config.ClusterLockKey, "1", ttl).Result()
}

func (s *Service) ReleaseClusterLock() error {
	if s.Redis == nil {
		return nil
	}
	return s.Redis.Del(s.Ctx, config.ClusterLockKey).Err()
}

// PublishEvent публікує подію скарги в Redis Pub/Sub
func (s *Service) PublishEvent(ev models.ComplaintEvent) error {
	if s.Redis == nil {
		return nil
	}
	payload, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	if err := s.Redis.Publish(s.Ctx, config.FeedChannel, string(payload)).Err(); err != nil {
		log.Printf("ERROR: Failed to publish %s event for %s: %v", ev.Type, ev.ComplaintID, err)
		return err
	}
	return nil
}
