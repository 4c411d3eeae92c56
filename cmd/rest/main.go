package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"deepseek-chat-be/internal/bootstrap"
	"deepseek-chat-be/internal/config"
	"deepseek-chat-be/internal/server"
	"deepseek-chat-be/internal/tracer"
	"deepseek-chat-be/pkg/database"
)

func main() {
	// 1. Load Configuration
	cfg := config.Load()

	// 2. Initialize Tracer
	shutdownTracer := tracer.InitTracer(cfg.Tracing)
	defer shutdownTracer(context.Background())

	// 3. Initialize Database
	gormDB, err := database.NewGormDBFromDSN(cfg.Database.Connection)
	if err != nil {
		log.Panicf("Unable to connect to GORM DB: %v", err)
	}

	// 4. Bootstrap Dependencies (Container)
	container := bootstrap.NewContainer(gormDB, cfg)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 5. Start Background Services
	container.Start(ctx)

	// 6. Initialize Server
	srv := server.New(cfg, container)

	// 7. Run Server
	serverErr := make(chan error, 1)
	go func() {
		serverErr <- srv.Run()
	}()

	select {
	case err := <-serverErr:
		log.Printf("Server stopped: %v", err)
	case <-ctx.Done():
		log.Println("Shutting down...")
		if err := srv.Shutdown(); err != nil {
			log.Printf("Server shutdown error: %v", err)
		}
	}

	stop()
	container.Close()
	if err := database.Close(gormDB); err != nil {
		log.Printf("Database close error: %v", err)
	}
}
