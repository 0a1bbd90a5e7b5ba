// Package main provides back-office account utilities for Empleos Inclusivos.
package main

import (
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"empleos/internal/config"
	"empleos/internal/database"
	"empleos/internal/models"
	"empleos/internal/validation"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage:")
		fmt.Println("  go run ./cmd/admin/main.go create <email> <password>  - Create an active admin account")
		fmt.Println("  go run ./cmd/admin/main.go disable <user_id>          - Close an admin account")
		fmt.Println("  go run ./cmd/admin/main.go list-admins                - List all admins")
		os.Exit(1)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	command := os.Args[1]

	switch command {
	case "create":
		if len(os.Args) < 4 {
			fmt.Println("Usage: go run ./cmd/admin/main.go create <email> <password>")
			os.Exit(1)
		}
		createAdmin(db, os.Args[2], os.Args[3])

	case "disable":
		if len(os.Args) < 3 {
			fmt.Println("Usage: go run ./cmd/admin/main.go disable <user_id>")
			os.Exit(1)
		}
		disableAdmin(db, os.Args[2])

	case "list-admins":
		listAdmins(db)

	default:
		fmt.Printf("Unknown command: %s\n", command)
		os.Exit(1)
	}
}

func createAdmin(db *gorm.DB, email, password string) {
	email = validation.NormalizeEmail(email)
	if err := validation.ValidateEmail(email); err != nil {
		log.Fatalf("Invalid email: %v", err)
	}
	if err := validation.ValidatePassword(password); err != nil {
		log.Fatalf("Invalid password: %v", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("Failed to hash password: %v", err)
	}

	var existing models.User
	err = db.Where("email = ?", email).First(&existing).Error
	if err == nil {
		fmt.Printf("An account with email %s already exists (ID: %d, type: %s)\n", email, existing.ID, existing.UserType)
		os.Exit(1)
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		log.Fatalf("Database error: %v", err)
	}

	now := time.Now().UTC()
	admin := models.User{
		Email:           email,
		Password:        string(hash),
		UserType:        models.UserTypeAdmin,
		AccountStatus:   models.AccountActive,
		EmailVerifiedAt: &now,
	}
	if err := db.Create(&admin).Error; err != nil {
		log.Fatalf("Failed to create admin: %v", err)
	}

	fmt.Printf("✅ Created admin %s (ID: %d)\n", admin.Email, admin.ID)
}

func disableAdmin(db *gorm.DB, userID string) {
	var user models.User
	if err := db.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			fmt.Printf("User with ID %s not found\n", userID)
		} else {
			log.Fatalf("Database error: %v", err)
		}
		os.Exit(1)
	}

	if !user.IsAdmin() {
		fmt.Printf("User %s (ID: %d) is not an admin\n", user.Email, user.ID)
		return
	}
	if user.AccountStatus == models.AccountClosed {
		fmt.Printf("Admin %s (ID: %d) is already disabled\n", user.Email, user.ID)
		return
	}

	if err := db.Model(&user).Update("account_status", models.AccountClosed).Error; err != nil {
		log.Fatalf("Failed to disable admin: %v", err)
	}

	fmt.Printf("✅ Disabled admin %s (ID: %d)\n", user.Email, user.ID)
}

func listAdmins(db *gorm.DB) {
	var admins []models.User
	if err := db.Where("user_type = ?", models.UserTypeAdmin).Order("id").Find(&admins).Error; err != nil {
		log.Fatalf("Failed to fetch admins: %v", err)
	}

	if len(admins) == 0 {
		fmt.Println("No admins found in the system")
		return
	}

	fmt.Println("\n📋 Current Admins:")
	fmt.Println("─────────────────────────────────────")
	for _, admin := range admins {
		fmt.Printf("ID: %d | Email: %s | Status: %s\n", admin.ID, admin.Email, admin.AccountStatus)
	}
	fmt.Println("─────────────────────────────────────")
}
