package config

import "time"

const (
	// Clustering
	DefaultClusterRadiusKm = 0.5
	ClusterLockKey         = "cluster:recompute:lock"
	ClusterLockTTL         = 2 * time.Minute

	// Geocoding
	GeocodeTimeout  = 5 * time.Second
	GeocodeCacheTTL = 24 * time.Hour

	// Auth
	TokenLifetime = 72 * time.Hour
	TokenIssuer   = "civicsense-service"

	// Feed
	FeedChannel    = "complaints:events"
	FeedSendBuffer = 256
)
