package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"syscall"

	"studio_site_go/config"
	"studio_site_go/db"
	"studio_site_go/models"
	"studio_site_go/services"

	"golang.org/x/term"
)

func main() {
	name := flag.String("name", "", "admin display name (prompted when empty)")
	email := flag.String("email", "", "admin email (prompted when empty)")
	flag.Parse()

	// Load configuration
	cfg := config.Load()

	// Initialize database
	if err := db.Initialize(cfg); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	if err := db.AutoMigrate(&models.User{}); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	reader := bufio.NewReader(os.Stdin)
	fmt.Println("=== Create Studio Admin ===")
	fmt.Println()

	if *name == "" {
		*name = prompt(reader, "Name: ")
	}
	if *email == "" {
		*email = prompt(reader, "Email: ")
	}

	password := readPassword("Password: ")
	if password != readPassword("Confirm password: ") {
		log.Fatal("Passwords do not match")
	}
	if err := services.ValidatePassword(password); err != nil {
		log.Fatal(err)
	}

	user, err := services.CreateAdminUser(context.Background(), db.DB, *name, *email, password)
	if err != nil {
		log.Fatalf("Failed to create admin: %v", err)
	}

	fmt.Println()
	fmt.Println("✓ Admin created successfully!")
	fmt.Printf("  ID:    %s\n", user.ID)
	fmt.Printf("  Email: %s\n", user.Email)
	fmt.Println()
	fmt.Println("Sign in with POST /api/admin/login to get a bearer token.")
}

func prompt(reader *bufio.Reader, label string) string {
	fmt.Print(label)
	value, _ := reader.ReadString('\n')
	return strings.TrimSpace(value)
}

func readPassword(label string) string {
	fmt.Print(label)
	b, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		log.Fatalf("Failed to read password: %v", err)
	}
	return string(b)
}
