package main

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"civicsense/backend/internal/cluster"
	"civicsense/backend/internal/config"
	"civicsense/backend/internal/models"
	"civicsense/backend/internal/storage"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	cfg, err := config.Load("config.yaml")
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{TranslateError: true})
	if err != nil {
		log.Fatalf("failed to connect database: %v", err)
	}

	storageSvc := storage.NewStorageService(db, nil) // No redis needed for admin CLI

	if len(os.Args) < 2 {
		fmt.Println("Usage: admin <command> [args]")
		os.Exit(1)
	}

	command := os.Args[1]

	switch command {
	case "grant-admin":
		if len(os.Args) != 3 {
			fmt.Println("Usage: admin grant-admin <user_id>")
			os.Exit(1)
		}
		if err := setAdminFlag(storageSvc, os.Args[2], true); err != nil {
			log.Fatalf("Error granting admin: %v", err)
		}
		fmt.Printf("User %s is now an administrator.\n", os.Args[2])
	case "revoke-admin":
		if len(os.Args) != 3 {
			fmt.Println("Usage: admin revoke-admin <user_id>")
			os.Exit(1)
		}
		if err := setAdminFlag(storageSvc, os.Args[2], false); err != nil {
			log.Fatalf("Error revoking admin: %v", err)
		}
		fmt.Printf("User %s is no longer an administrator.\n", os.Args[2])
	case "set-status":
		if len(os.Args) != 4 {
			fmt.Println("Usage: admin set-status <complaint_id> <status>")
			os.Exit(1)
		}
		status := models.ComplaintStatus(os.Args[3])
		if !models.ValidStatus(status) {
			fmt.Printf("Unknown status %q. Valid: Pending, InProgress, Resolved, Rejected.\n", os.Args[3])
			os.Exit(1)
		}
		if _, err := storageSvc.UpdateComplaintStatus(os.Args[2], status); err != nil {
			log.Fatalf("Error setting status: %v", err)
		}
		fmt.Printf("Complaint %s is now %s.\n", os.Args[2], status)
	case "recluster":
		radius := cfg.ClusterRadiusKm
		if len(os.Args) > 2 {
			var err error
			radius, err = strconv.ParseFloat(os.Args[2], 64)
			if err != nil {
				fmt.Println("Invalid radius. Please provide a number of kilometres.")
				os.Exit(1)
			}
		}
		engine := cluster.NewService(storageSvc)
		if err := engine.RecomputeClusters(radius); err != nil {
			log.Fatalf("Error reclustering: %v", err)
		}
		fmt.Printf("Clustering pass complete (radius %.2f km).\n", radius)
	case "top":
		top, err := storageSvc.GetTopPending()
		if err != nil {
			log.Fatalf("Error querying top complaint: %v", err)
		}
		if top == nil {
			fmt.Println("No pending complaints.")
			return
		}
		fmt.Printf("%s [%d votes] %s\n", top.ID, top.Upvotes, top.Description)
	default:
		fmt.Println("Unknown command")
		os.Exit(1)
	}
}

func setAdminFlag(s storage.Storage, userID string, isAdmin bool) error {
	user, err := s.GetUserByID(userID)
	if err != nil {
		return err
	}
	if user == nil {
		return fmt.Errorf("user %s not found", userID)
	}
	user.IsAdmin = isAdmin
	return s.SaveUser(user)
}
