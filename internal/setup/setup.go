// Package setup holds the environment driven wiring shared by the server,
// the worker and factctl.
package setup

import (
	"fmt"
	"time"

	"github.com/factgraph/backend/internal/util"
	"github.com/factgraph/backend/pkg/ai"
	oai "github.com/factgraph/backend/pkg/ai/ollama"
	gai "github.com/factgraph/backend/pkg/ai/openai"
	"github.com/factgraph/backend/pkg/graph"
	"github.com/factgraph/backend/pkg/leaselock"
	"github.com/factgraph/backend/pkg/logger"
	"github.com/factgraph/backend/pkg/logger/console"
	"github.com/factgraph/backend/pkg/store"
	graphstorage "github.com/factgraph/backend/pkg/store/pgx"

	"github.com/jackc/pgx/v5/pgxpool"
)

// InitLogger installs the console logger configured by DEBUG and
// LOG_FORMAT.
func InitLogger(prefix string) {
	consoleLogger := console.NewConsoleLogger(console.ConsoleLoggerParams{
		Debug:  util.GetEnvBool("DEBUG", false),
		JSON:   util.GetEnvString("LOG_FORMAT", "text") == "json",
		Prefix: prefix,
	})
	logger.Init(consoleLogger)
}

// AIClientFromEnv builds the client selected by AI_ADAPTER. An empty
// adapter means openai.
func AIClientFromEnv() (ai.GraphAIClient, error) {
	timeout := util.GetEnvDuration("AI_TIMEOUT_SEC", time.Minute)
	parallel := int64(util.GetEnvInt("AI_PARALLEL_REQ", 15))
	dim := util.GetEnvInt("AI_EMBED_DIM", 0)

	switch adapter := util.GetEnvString("AI_ADAPTER", "openai"); adapter {
	case "ollama":
		client, err := oai.NewGraphOllamaClient(oai.NewGraphOllamaClientParams{
			EmbeddingModel:  util.GetEnv("AI_EMBED_MODEL"),
			ClassifyModel:   util.GetEnv("AI_CHAT_CLASSIFY_MODEL"),
			ExtractionModel: util.GetEnv("AI_CHAT_EXTRACT_MODEL"),
			Dimensions:      dim,

			BaseURL: util.GetEnv("AI_CHAT_URL"),
			ApiKey:  util.GetEnv("AI_CHAT_KEY"),

			Timeout:               timeout,
			MaxConcurrentRequests: parallel,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create ollama client: %w", err)
		}
		return client, nil
	case "openai":
		return gai.NewGraphOpenAIClient(gai.NewGraphOpenAIClientParams{
			EmbeddingModel:  util.GetEnv("AI_EMBED_MODEL"),
			ClassifyModel:   util.GetEnv("AI_CHAT_CLASSIFY_MODEL"),
			ExtractionModel: util.GetEnv("AI_CHAT_EXTRACT_MODEL"),
			Dimensions:      dim,

			EmbeddingURL: util.GetEnv("AI_EMBED_URL"),
			EmbeddingKey: util.GetEnv("AI_EMBED_KEY"),
			ChatURL:      util.GetEnv("AI_CHAT_URL"),
			ChatKey:      util.GetEnv("AI_CHAT_KEY"),

			Timeout:               timeout,
			MaxConcurrentRequests: parallel,
		}), nil
	default:
		return nil, fmt.Errorf("unknown AI_ADAPTER %q", adapter)
	}
}

// Pipeline wires the AI backed pipeline around st. A nil locker means the
// in-process LocalLocker.
func Pipeline(client ai.GraphAIClient, st store.GraphStorage, locker graph.CaseLocker) (*graph.Pipeline, error) {
	params := graph.NewAIPipelineParams(
		client,
		st,
		locker,
		graph.AIConfigFromEnv(),
		graph.LinkParamsFromEnv(),
	)
	return graph.NewPipeline(params)
}

// PostgresPipeline is Pipeline backed by pool, serialized per case with a
// lease lock so the server and workers can write concurrently.
func PostgresPipeline(pool *pgxpool.Pool, client ai.GraphAIClient) (*graph.Pipeline, store.GraphStorage, error) {
	st := graphstorage.NewGraphDBStorageWithConnection(pool)
	locker := leaselock.NewCaseLocker(
		leaselock.New(pool),
		util.GetEnvDuration("LOCK_TTL_SEC", 30*time.Second),
	)
	p, err := Pipeline(client, st, locker)
	if err != nil {
		return nil, nil, err
	}
	return p, st, nil
}

// LogMetrics logs and resets the token usage of client.
func LogMetrics(client ai.GraphAIClient) {
	metrics := client.GetMetrics()
	aiDuration := time.Duration(metrics.DurationMs) * time.Millisecond
	logger.Info(
		"AI Metrics",
		"requests", metrics.Requests,
		"input_tokens", metrics.InputTokens,
		"output_tokens", metrics.OutputTokens,
		"total_tokens", metrics.TotalTokens,
		"duration", FormatDuration(aiDuration),
	)
	client.ResetMetrics()
}

// FormatDuration renders d as hh:mm:ss.
func FormatDuration(d time.Duration) string {
	hours := int(d.Hours())
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60
	return fmt.Sprintf("%02d:%02d:%02d", hours, minutes, seconds)
}
