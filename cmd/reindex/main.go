package main

import (
	"context"
	"log"

	"healthix-be/internal/bootstrap"
	"healthix-be/internal/config"
	"healthix-be/pkg/database"
)

// Rebuilds the patient vector namespace from the patients table. Run after a
// bulk import or an embedding model change.
func main() {
	cfg := config.Load()

	gormDB, err := database.NewGormDBFromDSN(cfg.Database.Connection)
	if err != nil {
		log.Panicf("Unable to connect to GORM DB: %v", err)
	}

	container := bootstrap.NewContainer(gormDB, cfg)
	if container.NatsPublisher != nil {
		defer container.NatsPublisher.Close()
	}

	log.Println("Rebuilding patient vector index...")
	res, err := container.PatientService.RefreshIndex(context.Background())
	if err != nil {
		log.Fatalf("Reindex failed: %v", err)
	}

	log.Printf("Reindex complete: %d chunks indexed", res.IndexedRecords)
}
