// cmd/adduser/main.go
// Creates or updates an API user in the database.
//
// Usage:
//
//	go run ./cmd/adduser -username eamon -password testing
package main

import (
	"context"
	"flag"
	"fmt"
	"log"

	"github.com/eamonmason/kwcc-tdz/config"
	bundb "github.com/eamonmason/kwcc-tdz/db"
	"github.com/eamonmason/kwcc-tdz/handlers"
	"github.com/eamonmason/kwcc-tdz/models"
)

func main() {
	username := flag.String("username", "", "username (required)")
	password := flag.String("password", "", "plain-text password (required)")
	flag.Parse()

	if *username == "" || *password == "" {
		log.Fatal("both -username and -password are required")
	}

	hash, err := handlers.HashPasswordForUser(*username, *password)
	if err != nil {
		log.Fatal("hash password:", err)
	}

	cfg := config.Load()
	db := bundb.Setup(cfg)
	defer db.Close()

	user := &models.User{
		Username: *username,
		Password: hash,
	}

	_, err = db.NewInsert().Model(user).
		On("CONFLICT (username) DO UPDATE SET password = EXCLUDED.password").
		Exec(context.Background())
	if err != nil {
		log.Fatal("insert user:", err)
	}

	fmt.Printf("user %q saved\n", *username)
}
