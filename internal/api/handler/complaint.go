package handler

import (
	"errors"
	"net/http"

	"civicsense/backend/internal/apperrors"
	"civicsense/backend/internal/complaint"
	"civicsense/backend/internal/models"

	"github.com/gin-gonic/gin"
)

type submitComplaintRequest struct {
	Description string   `json:"description" binding:"required"`
	Category    string   `json:"category" binding:"required"`
	Location    string   `json:"location"`
	Photos      []string `json:"photos"`
}

// SubmitComplaint створює нову скаргу для автентифікованого користувача.
func (h *Handler) SubmitComplaint(c *gin.Context) {
	var req submitComplaintRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	created, err := h.Complaints.Submit(c.Request.Context(), complaint.SubmitRequest{
		OwnerID:     c.GetString("userID"),
		Description: req.Description,
		Category:    req.Category,
		Location:    req.Location,
		Photos:      req.Photos,
	})
	if errors.Is(err, apperrors.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Owner user not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create complaint"})
		return
	}

	// Нова Pending-скарга має бути видима для peek.
	h.Index.Add(created)

	c.JSON(http.StatusCreated, created)
}

// ListComplaints повертає всі скарги, відсортовані за голосами.
func (h *Handler) ListComplaints(c *gin.Context) {
	complaints, err := h.Complaints.ListByVotes()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list complaints"})
		return
	}
	c.JSON(http.StatusOK, complaints)
}

// MostVoted повертає Pending-скаргу з найбільшою кількістю голосів.
func (h *Handler) MostVoted(c *gin.Context) {
	top, err := h.Index.PeekTopEligible()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to query top complaint"})
		return
	}
	if top == nil {
		c.Status(http.StatusNoContent)
		return
	}
	c.JSON(http.StatusOK, top)
}

// Upvote реєструє голос автентифікованого користувача.
func (h *Handler) Upvote(c *gin.Context) {
	complaintID := c.Param("id")
	userID := c.GetString("userID")

	updated, err := h.Index.RecordVote(complaintID, userID)
	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Complaint not found"})
		return
	case errors.Is(err, apperrors.ErrInvalidState):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Cannot vote on a non-pending complaint"})
		return
	case errors.Is(err, apperrors.ErrDuplicateVote):
		c.JSON(http.StatusBadRequest, gin.H{"error": "You have already voted for this complaint"})
		return
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to record vote"})
		return
	}

	_ = h.Storage.PublishEvent(models.ComplaintEvent{
		Type:        models.EventVoted,
		ComplaintID: updated.ID,
		Status:      updated.Status,
		Upvotes:     updated.Upvotes,
	})

	c.JSON(http.StatusOK, updated)
}

// ClusteredView повертає скарги, згруповані за представниками кластерів.
func (h *Handler) ClusteredView(c *gin.Context) {
	views, err := h.Clusters.GetClusteredView()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to build clustered view"})
		return
	}
	c.JSON(http.StatusOK, views)
}
