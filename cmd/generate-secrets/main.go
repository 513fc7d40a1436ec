package main

import (
	"flag"
	"fmt"
	"log"

	"github.com/collegetransit/bus-pass-backend/internal/utils"
)

func main() {
	var adminPassword string
	flag.StringVar(&adminPassword, "admin-password", "", "plaintext admin password to hash for ADMIN_PASSWORD_HASH")
	flag.Parse()

	fmt.Println("===========================================")
	fmt.Println("Secret Generator for Bus Pass Backend")
	fmt.Println("===========================================")
	fmt.Println()

	jwtSecret, err := utils.GenerateJWTSecret()
	if err != nil {
		log.Fatalf("Failed to generate JWT secret: %v", err)
	}

	fmt.Println("✅ Secrets generated successfully!")
	fmt.Println()
	fmt.Println("Add these to your .env file or deployment secrets:")
	fmt.Println()
	fmt.Printf("JWT_SECRET=%s\n", jwtSecret)

	if adminPassword != "" {
		hash, err := utils.HashAdminPassword(adminPassword)
		if err != nil {
			log.Fatalf("Failed to hash admin password: %v", err)
		}
		fmt.Printf("ADMIN_PASSWORD_HASH=%s\n", hash)
	} else {
		fmt.Println()
		fmt.Println("Tip: pass -admin-password <password> to also generate ADMIN_PASSWORD_HASH")
	}

	fmt.Println()
	fmt.Println("⚠️  IMPORTANT: Keep these secrets safe and never commit them to version control!")
	fmt.Println("===========================================")
}
