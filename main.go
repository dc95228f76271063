package main

import (
	"log"

	"github.com/joho/godotenv"

	"bulkinvoicer/cmd"
	"bulkinvoicer/internal/config"
	"bulkinvoicer/internal/logger"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: Could not load .env file: %v", err)
	}

	if err := logger.Setup(config.LoggerConfig()); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	cmd.Execute()
}
