package main

import (
	"context"
	"os"

	"github.com/habitflow/scheduler/internal/app"
	log "github.com/sirupsen/logrus"
)

func init() {
	level := os.Getenv("LOG_LEVEL")
	if level != "" {
		logrusLevel, err := log.ParseLevel(level)
		if err != nil {
			log.Fatal(err)
		}
		log.SetLevel(logrusLevel)
	} else {
		log.SetLevel(log.InfoLevel)
	}
}

const defaultConfigPath = "./config/application.yaml"

func main() {
	configPath := os.Getenv("SCHEDULER_CONFIG")
	if configPath == "" {
		configPath = defaultConfigPath
	}
	application, err := app.NewApplication(context.Background(), configPath)
	if err != nil {
		log.Fatalf("failed to initialize application: %v", err)
	}
	if err := application.Run(); err != nil {
		log.Fatal(err)
	}
}
