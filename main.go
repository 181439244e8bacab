package main

import (
	"context"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/brightpath-edu/retention-service/internal/app"
	"github.com/brightpath-edu/retention-service/internal/config"
)

func main() {
	logrus.SetFormatter(&logrus.JSONFormatter{})

	cfg, err := config.Load()
	if err != nil {
		logrus.Errorf("failed to load config: %v", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		logrus.Errorf("invalid config: %v", err)
		os.Exit(1)
	}

	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	logrus.SetLevel(level)

	ctx := context.Background()

	application, err := app.New(ctx, cfg)
	if err != nil {
		logrus.Errorf("failed to initialize application: %v", err)
		os.Exit(1)
	}

	if err := application.Run(ctx); err != nil {
		logrus.Errorf("application error: %v", err)
		os.Exit(1)
	}
}
