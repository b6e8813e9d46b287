package main

import (
	"context"
	"log"

	"github.com/yuw136/paper-helper/internal/bootstrap"
	"github.com/yuw136/paper-helper/internal/config"
	"github.com/yuw136/paper-helper/internal/model"
	"github.com/yuw136/paper-helper/internal/server"
	"github.com/yuw136/paper-helper/internal/tracer"
	"github.com/yuw136/paper-helper/pkg/database"
)

func main() {
	// 0. Initialize Tracer (no-op unless OTEL_ENABLED=true)
	shutdownTracer := tracer.InitTracer()
	defer shutdownTracer(context.Background())

	// 1. Load Configuration
	cfg := config.Load()

	// 2. Initialize Database
	gormDB, err := database.NewGormDBFromDSN(cfg.Database.Connection)
	if err != nil {
		log.Panicf("Unable to connect to GORM DB: %v", err)
	}
	if err := database.Migrate(gormDB,
		&model.Paper{},
		&model.PaperChunk{},
		&model.ChatSession{},
		&model.ChatMessage{},
		&model.AgentCheckpoint{},
	); err != nil {
		log.Panicf("Unable to migrate schema: %v", err)
	}

	// 3. Bootstrap Dependencies (Container)
	container := bootstrap.NewContainer(gormDB, cfg)
	defer container.NatsPublisher.Close()

	// 4. Initialize Server
	srv := server.New(cfg, container)

	// 5. Run Server
	log.Fatal(srv.Run())
}
