package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/factgraph/backend/internal/database"
	"github.com/factgraph/backend/internal/queue"
	"github.com/factgraph/backend/internal/setup"
	"github.com/factgraph/backend/internal/storage"
	"github.com/factgraph/backend/internal/util"
	"github.com/factgraph/backend/pkg/logger"
)

func main() {
	util.LoadEnv()
	setup.InitLogger("worker")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Init s3 client
	s3Client, err := storage.NewS3Client(ctx)
	if err != nil {
		logger.Fatal("Failed to create S3 client", "err", err)
	}
	docs, err := storage.NewS3Documents(s3Client, util.GetEnv("AWS_BUCKET"))
	if err != nil {
		logger.Fatal("Failed to create document store", "err", err)
	}

	aiClient, err := setup.AIClientFromEnv()
	if err != nil {
		logger.Fatal("Failed to create AI client", "err", err)
	}

	// Init pgx client
	pool, err := database.Connect(ctx, util.GetEnv("DATABASE_URL"))
	if err != nil {
		logger.Fatal("Unable to connect to database", "err", err)
	}
	defer pool.Close()

	pipeline, _, err := setup.PostgresPipeline(pool, aiClient)
	if err != nil {
		logger.Fatal("Failed to create graph pipeline", "err", err)
	}

	// Init rabbitmq
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

	// prefetch=1: one document at a time per worker
	if err := ch.Qos(1, 0, false); err != nil {
		logger.Fatal("Failed to set QoS", "err", err)
	}

	msgs, err := ch.Consume(
		queue.IngestQueue,
		"ingest_queue_consumer",
		false, // autoAck
		false, // exclusive
		false, // noLocal
		false, // noWait
		nil,   // args
	)
	if err != nil {
		logger.Fatal("Failed to start consuming", "queue", queue.IngestQueue, "err", err)
	}

	logger.Info("Listening for messages", "queue", queue.IngestQueue)

	for {
		select {
		case <-ctx.Done():
			logger.Info("Shutdown signal received, exiting...")
			return
		case msg, ok := <-msgs:
			if !ok {
				logger.Info("Message channel closed", "queue", queue.IngestQueue)
				return
			}

			startTime := time.Now()
			logger.Info("Received message", "queue", queue.IngestQueue, "retries", queue.Retries(msg.Headers))

			if err := queue.ProcessIngestMessage(ctx, docs, pipeline, msg.Body); err != nil {
				logger.Error("Error processing message", "queue", queue.IngestQueue, "err", err)
				queue.HandleProcessingError(ch, msg, queue.IngestQueue)
			} else {
				if err := msg.Ack(false); err != nil {
					logger.Error("Failed to ack message", "err", err)
				}
				logger.Info("Message processed successfully", "queue", queue.IngestQueue)
			}

			setup.LogMetrics(aiClient)
			logger.Info("Processing time", "duration", setup.FormatDuration(time.Since(startTime)))
			logger.Info("Waiting for next message")
		}
	}
}
