package main

import (
	"context"
	"log"

	"ai-lecture-be/internal/bootstrap"
	"ai-lecture-be/internal/config"
	"ai-lecture-be/internal/server"
	"ai-lecture-be/pkg/database"

	"gorm.io/gorm"
)

func main() {
	// 0. Initialize Tracer - DISABLED
	// shutdownTracer := tracer.InitTracer()
	// defer shutdownTracer(context.Background())

	// 1. Load Configuration
	cfg := config.Load()

	// 2. Initialize Database (optional: archive disabled without it)
	var gormDB *gorm.DB
	if cfg.Database.Connection != "" {
		db, err := database.NewGormDBFromDSN(cfg.Database.Connection)
		if err != nil {
			log.Panicf("Unable to connect to GORM DB: %v", err)
		}
		gormDB = db
	}

	// 3. Bootstrap Dependencies (Container)
	container := bootstrap.NewContainer(gormDB, cfg)

	// 4. Start Background Services
	if container.ArchiveConsumerService != nil {
		go func() {
			log.Println("Background: Starting Archive Consumer Service...")
			if err := container.ArchiveConsumerService.Consume(context.Background()); err != nil {
				log.Printf("Background Archive Consumer Error: %v", err)
			}
		}()
	}

	// 5. Initialize Server
	srv := server.New(cfg, container)

	// 6. Run Server
	log.Fatal(srv.Run())
}
