//go:build !gcloud

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

func initSender(_ context.Context, cfg *config.Config) (domain.NotificationSender, func() error, error) {
	sender := notifier.NewExpoSender(notifier.ExpoConfig{
		Endpoint:             cfg.Notifier.ExpoEndpoint,
		AccessToken:          cfg.Notifier.ExpoAccessToken,
		MaxRequestsPerSecond: cfg.Notifier.ExpoMaxRequestsPerSecond,
		Timeout:              cfg.Notifier.ExpoTimeout,
	})

	slog.Info("notification sender initialized",
		slog.String("type", "expo"),
		slog.String("endpoint", cfg.Notifier.ExpoEndpoint),
		slog.Int("max_requests_per_second", cfg.Notifier.ExpoMaxRequestsPerSecond),
	)

	return sender, nil, nil
}

func initObservability(ctx context.Context) (*observability.Resources, error) {
	serviceName := os.Getenv("SERVICE_NAME")
	if serviceName == "" {
		serviceName = "task-dispatcher"
	}

	env := logging.EnvDev
	if e := os.Getenv("ENV"); e != "" {
		env = logging.Environment(e)
	}

	obs, err := observability.Init(ctx, observability.Config{
		ServiceInfo: logging.ServiceInfo{
			Name:     serviceName,
			Version:  Version,
			Revision: "",
		},
		Environment:   env,
		GCPProjectID:  "",
		SamplingRate:  1.0,
		DefaultModule: moduleName,
		LogLevel:      os.Getenv("LOG_LEVEL"),
	})
	if err != nil {
		return nil, err
	}

	return obs, nil
}
