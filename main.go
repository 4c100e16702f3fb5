package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"etalase/internal/app"
	"etalase/internal/config"
)

func main() {
	// --- Configuration ---
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// --- Wire repositories, assets, events and routes ---
	ctx := context.Background()
	server, err := app.New(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}
	defer func() {
		if err := server.Close(); err != nil {
			log.Printf("Error releasing resources: %v", err)
		}
	}()

	// --- Start HTTP Server ---
	log.Printf("Starting server on port %s", cfg.AppPort)

	// Graceful shutdown handling
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := server.Fiber.Listen(cfg.AppPort); err != nil {
			log.Printf("Server stopped: %v", err)
			quit <- syscall.SIGTERM
		}
	}()

	<-quit
	log.Println("Shutting down server...")

	if err := server.Fiber.Shutdown(); err != nil {
		log.Printf("Error during Fiber shutdown: %v", err)
	}
	log.Println("Server gracefully stopped")
}
