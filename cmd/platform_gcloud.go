//go:build gcloud

package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/KasumiMercury/primind-task-dispatcher/internal/config"
	"github.com/KasumiMercury/primind-task-dispatcher/internal/domain"
	"github.com/KasumiMercury/primind-task-dispatcher/internal/infra/notifier"
	"github.com/KasumiMercury/primind-task-dispatcher/internal/observability"
	"github.com/KasumiMercury/primind-task-dispatcher/internal/observability/logging"
)

func initSender(ctx context.Context, cfg *config.Config) (domain.NotificationSender, func() error, error) {
	sender, err := notifier.NewCloudTasksSender(ctx, notifier.CloudTasksConfig{
		ProjectID:           cfg.Notifier.GCloudProjectID,
		LocationID:          cfg.Notifier.GCloudLocationID,
		QueueID:             cfg.Notifier.GCloudQueueID,
		TargetURL:           cfg.Notifier.GCloudTargetURL,
		Endpoint:            cfg.Notifier.CloudTasksEndpoint,
		ServiceAccountEmail: cfg.Notifier.GCloudServiceAccount,
	})
	if err != nil {
		return nil, nil, err
	}

	slog.Info("notification sender initialized",
		slog.String("type", "cloud_tasks"),
		slog.String("project", cfg.Notifier.GCloudProjectID),
		slog.String("location", cfg.Notifier.GCloudLocationID),
		slog.String("queue", cfg.Notifier.GCloudQueueID),
	)

	cleanup := func() error {
		if err := sender.Close(); err != nil {
			slog.Warn("failed to close cloud tasks client", slog.String("error", err.Error()))

			return err
		}

		return nil
	}

	return sender, cleanup, nil
}

func initObservability(ctx context.Context) (*observability.Resources, error) {
	serviceName := os.Getenv("K_SERVICE")
	if serviceName == "" {
		serviceName = "task-dispatcher"
	}

	env := logging.EnvProd
	if e := os.Getenv("ENV"); e != "" {
		env = logging.Environment(e)
	}

	projectID := os.Getenv("GOOGLE_CLOUD_PROJECT")
	if projectID == "" {
		projectID = os.Getenv("GCLOUD_PROJECT_ID")
	}

	obs, err := observability.Init(ctx, observability.Config{
		ServiceInfo: logging.ServiceInfo{
			Name:     serviceName,
			Version:  Version,
			Revision: os.Getenv("K_REVISION"),
		},
		Environment:   env,
		GCPProjectID:  projectID,
		SamplingRate:  1.0,
		DefaultModule: moduleName,
		LogLevel:      os.Getenv("LOG_LEVEL"),
	})
	if err != nil {
		return nil, err
	}

	return obs, nil
}
