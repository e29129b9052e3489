package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"civicsense/backend/internal/api/handler"
	"civicsense/backend/internal/cluster"
	"civicsense/backend/internal/complaint"
	"civicsense/backend/internal/config"
	"civicsense/backend/internal/feed"
	"civicsense/backend/internal/geocode"
	"civicsense/backend/internal/models"
	"civicsense/backend/internal/notify"
	"civicsense/backend/internal/ranking"
	"civicsense/backend/internal/storage"
	"civicsense/backend/internal/undo"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func setupDependencies(cfg *config.Config) (*gorm.DB, *redis.Client) {
	// 1. PostgreSQL. TranslateError потрібен, щоб зловити дублікати
	// голосів як gorm.ErrDuplicatedKey.
	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{TranslateError: true})
	if err != nil {
		log.Fatalf("Failed to connect PostgreSQL: %v", err)
	}

	// 2. Redis
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       0,
	})

	// Перевірка з'єднання Redis
	ctx := context.Background()
	if _, err := rdb.Ping(ctx).Result(); err != nil {
		log.Fatalf("Failed to connect Redis: %v", err)
	}

	// 3. Міграції (Створення таблиць)
	err = db.AutoMigrate(
		&models.User{},
		&models.Complaint{},
		&models.Vote{},
	)
	if err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	log.Println("Database and Redis connections established, migrations complete.")
	return db, rdb
}

func buildIndex(mode string, s storage.Storage) ranking.Index {
	if mode == "heap" {
		idx, err := ranking.NewHeapIndex(s)
		if err != nil {
			log.Fatalf("Failed to seed heap index: %v", err)
		}
		return idx
	}
	return ranking.NewStoreIndex(s)
}

func main() {
	log.Println("Starting CivicSense Backend...")

	if err := godotenv.Load(); err != nil {
		log.Println("Warning: Error loading .env file")
	}

	cfg, err := config.Load("config.yaml")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if cfg.JWTSecret == "" {
		log.Fatal("JWT_SECRET не встановлено!")
	}

	// 1. Ініціалізація залежностей
	db, rdb := setupDependencies(cfg)
	s := storage.NewStorageService(db, rdb)

	// 2. Сервіси ядра
	geocoder := geocode.NewHTTPGeocoder(cfg.GeocodeBaseURL, rdb)
	complaintSvc := complaint.NewService(s, geocoder)
	clusterSvc := cluster.NewService(s)
	index := buildIndex(cfg.RankingMode, s)
	undoMgr := undo.NewManager(s)
	feedHub := feed.NewHub(rdb)

	var notifier notify.Notifier = notify.Noop{}
	if cfg.TelegramBotToken != "" {
		tg, err := notify.NewTelegramNotifier(cfg.TelegramBotToken)
		if err != nil {
			log.Printf("ERROR: Telegram notifier disabled: %v", err)
		} else {
			notifier = tg
		}
	}

	// 3. Запуск основних Goroutines
	go feedHub.Run()

	if cfg.ClusterCron != "" {
		scheduler := cron.New()
		_, err := scheduler.AddFunc(cfg.ClusterCron, func() {
			if err := clusterSvc.RecomputeClusters(cfg.ClusterRadiusKm); err != nil {
				log.Printf("ERROR: Scheduled clustering pass failed: %v", err)
			}
		})
		if err != nil {
			log.Fatalf("Invalid cluster_cron expression %q: %v", cfg.ClusterCron, err)
		}
		scheduler.Start()
		log.Printf("Clustering scheduled (cron: %s, radius: %.2f km)", cfg.ClusterCron, cfg.ClusterRadiusKm)
	}

	// 4. Налаштування Gin та роутингу
	r := gin.Default()
	h := handler.NewHandler(complaintSvc, index, clusterSvc, undoMgr, feedHub, s, notifier,
		[]byte(cfg.JWTSecret), cfg.ClusterRadiusKm)

	r.POST("/register", h.Register)
	r.POST("/login", h.Login)
	r.GET("/complaints", h.ListComplaints)
	r.GET("/complaints/most_voted", h.MostVoted)
	r.GET("/complaints/clustered", h.ClusteredView)
	r.GET("/ws/feed", h.ServeFeed)

	authed := r.Group("/", h.AuthRequired())
	authed.POST("/complaint", h.SubmitComplaint)
	authed.POST("/complaint/:id/upvote", h.Upvote)
	authed.PUT("/admin/complaint/:id/status", h.UpdateStatus)
	authed.POST("/admin/undo", h.UndoLast)
	authed.POST("/admin/recluster", h.Recluster)

	// Запуск HTTP-сервера
	server := &http.Server{
		Addr:           cfg.ListenAddr,
		Handler:        r,
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   10 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	log.Fatal(server.ListenAndServe())
}
