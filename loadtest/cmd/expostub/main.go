package main

import (
	"log/slog"
	"os"

	"github.com/gin-gonic/gin"

	"github.com/KasumiMercury/primind-task-dispatcher/loadtest/internal/stub"
)

func main() {
	port := os.Getenv("PORT")
	if port == "" {
		port = "8090"
	}

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	r := gin.New()
	r.Use(gin.Recovery())
	stub.NewHandler(stub.NewPushStorage()).Register(r)

	slog.Info("starting expo push stub", slog.String("port", port))
	if err := r.Run(":" + port); err != nil {
		slog.Error("expo push stub exited", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
