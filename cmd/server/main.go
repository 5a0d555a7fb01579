package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/factgraph/backend/internal/database"
	"github.com/factgraph/backend/internal/queue"
	"github.com/factgraph/backend/internal/server"
	mid "github.com/factgraph/backend/internal/server/middleware"
	"github.com/factgraph/backend/internal/setup"
	"github.com/factgraph/backend/internal/storage"
	"github.com/factgraph/backend/internal/util"
	"github.com/factgraph/backend/pkg/logger"
)

func main() {
	util.LoadEnv()
	setup.InitLogger("server")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	apiKey := util.GetEnv("API_KEY")
	if apiKey == "" {
		logger.Fatal("API_KEY is required")
	}

	dbURL := util.GetEnv("DATABASE_URL")
	if util.GetEnvBool("MIGRATE_ON_START", true) {
		migrations := util.GetEnvString("MIGRATIONS_PATH", "migrations")
		if err := database.Migrate(dbURL, migrations, database.Up); err != nil {
			logger.Fatal("Failed to run migrations", "err", err)
		}
	}

	pool, err := database.Connect(ctx, dbURL)
	if err != nil {
		logger.Fatal("Failed to connect to database", "err", err)
	}
	defer pool.Close()

	aiClient, err := setup.AIClientFromEnv()
	if err != nil {
		logger.Fatal("Failed to create AI client", "err", err)
	}
	pipeline, st, err := setup.PostgresPipeline(pool, aiClient)
	if err != nil {
		logger.Fatal("Failed to create graph pipeline", "err", err)
	}

	conn, err := queue.Init()
	if err != nil {
		logger.Fatal("Failed to connect to RabbitMQ", "err", err)
	}
	defer conn.Close()
	ch, err := conn.Channel()
	if err != nil {
		logger.Fatal("Failed to open channel", "err", err)
	}
	defer ch.Close()
	if err := queue.SetupQueues(ch, []string{queue.IngestQueue}); err != nil {
		logger.Fatal("Failed to declare queues", "err", err)
	}

	s3Client, err := storage.NewS3Client(ctx)
	if err != nil {
		logger.Fatal("Failed to create S3 client", "err", err)
	}
	docs, err := storage.NewS3Documents(s3Client, util.GetEnv("AWS_BUCKET"))
	if err != nil {
		logger.Fatal("Failed to create document store", "err", err)
	}

	e := server.New(&mid.App{
		Store:     st,
		Pipeline:  pipeline,
		Queue:     ch,
		Documents: docs,
		APIKey:    apiKey,
	})

	if err := server.Run(ctx, e, util.GetEnvString("PORT", "8080")); err != nil {
		logger.Fatal("Server stopped", "err", err)
	}
	logger.Info("Shutdown complete")
}
