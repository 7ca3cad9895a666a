package main

import (
	"log"

	"github.com/lucianomirandaGherzoni/api-crud-berlini/config"
	db "github.com/lucianomirandaGherzoni/api-crud-berlini/db"
	api "github.com/lucianomirandaGherzoni/api-crud-berlini/routes"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Configuration error: %v", err)
	}
	dbService := db.NewDBService(cfg)
	api.ExposeAPI(dbService, cfg)
}
