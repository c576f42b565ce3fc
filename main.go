package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"usermgmt/internal/app"
	"usermgmt/internal/config"

	"github.com/spf13/viper"
)

func main() {
	// --- Configuration ---
	cfg, err := config.Load(viper.GetViper())
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	application, err := app.New(cfg)
	if err != nil {
		log.Fatalf("Failed to create app: %v", err)
	}
	defer application.Close()

	if err := application.StartConsumer(); err != nil {
		log.Printf("Failed to start RabbitMQ consumer: %v", err)
	}

	// --- Start HTTP Server ---
	log.Printf("Starting server on port %s", cfg.AppPort)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	if err := serve(application, cfg.AppPort, quit); err != nil {
		log.Printf("Server stopped: %v", err)
		return
	}
	log.Println("Server gracefully stopped")
}

// serve runs the HTTP server until it fails or quit fires. It always returns
// to the caller so deferred cleanup runs.
func serve(application *app.App, addr string, quit <-chan os.Signal) error {
	listenErr := make(chan error, 1)
	go func() {
		listenErr <- application.Fiber.Listen(addr)
	}()

	select {
	case err := <-listenErr:
		return err
	case <-quit:
	}
	log.Println("Shutting down server...")
	return application.Fiber.Shutdown()
}
