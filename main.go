package main

import (
	"log"

	"workout_gym_backend/internal/app"
	"workout_gym_backend/internal/config"
	"workout_gym_backend/pkg/logger"
)

func main() {
	cfg, err := config.LoadConfig("configs")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	application := app.NewApp(cfg)
	defer logger.Log.Sync()

	application.Run()
}
