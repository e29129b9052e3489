package handler

import (
	"errors"
	"log"
	"net/http"

	"civicsense/backend/internal/apperrors"
	"civicsense/backend/internal/cluster"
	"civicsense/backend/internal/models"

	"github.com/gin-gonic/gin"
)

type statusChangeRequest struct {
	Status models.ComplaintStatus `json:"status" binding:"required"`
}

type reclusterRequest struct {
	RadiusKm *float64 `json:"radius_km"`
}

// UpdateStatus — адміністративна зміна статусу скарги (з підтримкою undo).
func (h *Handler) UpdateStatus(c *gin.Context) {
	var req statusChangeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !models.ValidStatus(req.Status) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown status"})
		return
	}

	adminID := c.GetString("userID")
	updated, depth, err := h.Undo.ApplyStatusChange(adminID, c.Param("id"), req.Status)
	switch {
	case errors.Is(err, apperrors.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "Forbidden: Requires admin privileges"})
		return
	case errors.Is(err, apperrors.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Complaint not found"})
		return
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update status"})
		return
	}

	h.afterStatusChange(updated)

	c.JSON(http.StatusOK, gin.H{"complaint": updated, "undoable_count": depth})
}

// UndoLast відкочує останню зміну статусу цього адміністратора.
func (h *Handler) UndoLast(c *gin.Context) {
	adminID := c.GetString("userID")
	updated, depth, err := h.Undo.UndoLast(adminID)
	switch {
	case errors.Is(err, apperrors.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "Forbidden: Requires admin privileges"})
		return
	case errors.Is(err, apperrors.ErrEmptyStack):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Nothing to undo"})
		return
	case errors.Is(err, apperrors.ErrNotFound):
		// Запис спожито; скарга більше не існує.
		c.JSON(http.StatusNotFound, gin.H{"error": "Complaint no longer exists", "undoable_count": depth})
		return
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to undo"})
		return
	}

	h.afterStatusChange(updated)

	c.JSON(http.StatusOK, gin.H{"complaint": updated, "undoable_count": depth})
}

// Recluster запускає повний перерахунок кластерів.
func (h *Handler) Recluster(c *gin.Context) {
	var req reclusterRequest
	if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	radius := h.DefaultRadiusKm
	if req.RadiusKm != nil {
		radius = *req.RadiusKm
	}
	if radius < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Radius must be non-negative"})
		return
	}

	if err := h.Clusters.RecomputeClusters(radius); err != nil {
		if errors.Is(err, cluster.ErrRecomputeInProgress) {
			c.JSON(http.StatusConflict, gin.H{"error": "Recompute already in progress"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Clustering failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok", "radius_km": radius})
}

// afterStatusChange публікує подію, повідомляє власника та повертає
// скаргу в індекс, якщо вона знову Pending.
func (h *Handler) afterStatusChange(updated *models.Complaint) {
	if updated == nil {
		return
	}

	_ = h.Storage.PublishEvent(models.ComplaintEvent{
		Type:        models.EventStatusChanged,
		ComplaintID: updated.ID,
		Status:      updated.Status,
		Upvotes:     updated.Upvotes,
	})

	if updated.Status == models.StatusPending {
		h.Index.Add(updated)
	}

	owner, err := h.Storage.GetUserByID(updated.OwnerID)
	if err != nil {
		log.Printf("ERROR: Failed to load owner %s for notification: %v", updated.OwnerID, err)
		return
	}
	h.Notifier.StatusChanged(owner, updated)
}
