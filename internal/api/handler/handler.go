package handler

import (
	"civicsense/backend/internal/cluster"
	"civicsense/backend/internal/complaint"
	"civicsense/backend/internal/feed"
	"civicsense/backend/internal/notify"
	"civicsense/backend/internal/ranking"
	"civicsense/backend/internal/storage"
	"civicsense/backend/internal/undo"
)

// Handler містить посилання на сервіси ядра
type Handler struct {
	Complaints *complaint.Service
	Index      ranking.Index
	Clusters   *cluster.Service
	Undo       *undo.Manager
	Feed       *feed.Hub
	Storage    storage.Storage
	Notifier   notify.Notifier

	JWTSecret       []byte
	DefaultRadiusKm float64
}

func NewHandler(
	complaints *complaint.Service,
	index ranking.Index,
	clusters *cluster.Service,
	undoMgr *undo.Manager,
	feedHub *feed.Hub,
	s storage.Storage,
	notifier notify.Notifier,
	jwtSecret []byte,
	defaultRadiusKm float64,
) *Handler {
	return &Handler{
		Complaints:      complaints,
		Index:           index,
		Clusters:        clusters,
		Undo:            undoMgr,
		Feed:            feedHub,
		Storage:         s,
		Notifier:        notifier,
		JWTSecret:       jwtSecret,
		DefaultRadiusKm: defaultRadiusKm,
	}
}
