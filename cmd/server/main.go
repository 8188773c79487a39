package main

import (
	"log"
	"os"

	"riskdash/internal/store"
	"riskdash/internal/telegram"
	"riskdash/internal/web"
)

func main() {
	log.Println("🚀 Starting customer risk dashboard service...")

	dbPath := envOr("DB_PATH", "/data/riskdash.db")
	port := envOr("PORT", "8080")

	// 1. Initialize Store (Dependency Injection)
	db, err := store.New(dbPath)
	if err != nil {
		log.Fatalf("Fatal: Failed to initialize DB: %v", err)
	}
	defer db.Close()

	// 2. Optional Telegram report bot
	telegram.StartBot(db)

	// 3. Web Server
	srv := web.NewServer(db)
	router := srv.Router()

	log.Printf("🌍 Server running on :%s", port)
	if err := router.Run(":" + port); err != nil {
		log.Fatal(err)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
