package graph

import (
	"errors"
	"time"

	"github.com/factgraph/backend/internal/util"
	"github.com/factgraph/backend/pkg/ai"
	"github.com/factgraph/backend/pkg/store"
	"github.com/factgraph/backend/pkg/topic"
)

// Pipeline builds the case graph: it creates facts, links them to the
// facts already in the case and ingests whole documents.
//
// A Pipeline should be created using NewPipeline.
type Pipeline struct {
	store      store.GraphStorage
	embedder   Embedder
	classifier topic.Classifier
	extractor  Extractor
	linker     *Linker
	locker     CaseLocker
}

// NewPipelineParams defines the collaborators of a Pipeline.
//
// Store, Embedder and Classifier are required. Extractor is only needed
// for IngestDocument. Locker defaults to a LocalLocker, which is enough
// when a single process writes to the store.
type NewPipelineParams struct {
	Store      store.GraphStorage
	Embedder   Embedder
	Classifier topic.Classifier
	Extractor  Extractor
	Locker     CaseLocker
	Link       LinkParams
}

// NewPipeline creates a Pipeline from the given collaborators.
//
// Example:
//
//	p, err := graph.NewPipeline(graph.NewPipelineParams{
//		Store:      memory.New(),
//		Embedder:   graph.NewAIEmbedder(client, time.Minute, 2),
//		Classifier: topic.NewAIClassifier(topic.NewAIClassifierParams{Client: client}),
//		Extractor:  graph.NewAIExtractor(graph.NewAIExtractorParams{Client: client}),
//		Link:       graph.DefaultLinkParams(),
//	})
func NewPipeline(params NewPipelineParams) (*Pipeline, error) {
	if params.Store == nil {
		return nil, errors.New("graph pipeline requires a store")
	}
	if params.Embedder == nil {
		return nil, errors.New("graph pipeline requires an embedder")
	}
	if params.Classifier == nil {
		return nil, errors.New("graph pipeline requires a classifier")
	}
	locker := params.Locker
	if locker == nil {
		locker = NewLocalLocker()
	}
	return &Pipeline{
		store:      params.Store,
		embedder:   params.Embedder,
		classifier: params.Classifier,
		extractor:  params.Extractor,
		linker:     NewLinker(params.Link),
		locker:     locker,
	}, nil
}

// Store returns the storage the pipeline writes to.
func (p *Pipeline) Store() store.GraphStorage {
	return p.store
}

// AIConfig holds the remote call settings read from the environment.
type AIConfig struct {
	Timeout    time.Duration
	MaxRetries int
	ChunkSize  int
}

// AIConfigFromEnv reads AI_TIMEOUT_SEC, AI_MAX_RETRIES and GRAPH_CHUNK_SIZE.
func AIConfigFromEnv() AIConfig {
	return AIConfig{
		Timeout:    util.GetEnvDuration("AI_TIMEOUT_SEC", time.Minute),
		MaxRetries: util.GetEnvInt("AI_MAX_RETRIES", 2),
		ChunkSize:  util.GetEnvInt("GRAPH_CHUNK_SIZE", DefaultChunkSize),
	}
}

// LinkParamsFromEnv reads the GRAPH_* thresholds, falling back to
// DefaultLinkParams.
func LinkParamsFromEnv() LinkParams {
	def := DefaultLinkParams()
	return LinkParams{
		BaseThreshold:    util.GetEnvNumeric("GRAPH_THRESHOLD", def.BaseThreshold),
		MaxRelationships: util.GetEnvInt("GRAPH_MAX_RELATIONSHIPS", def.MaxRelationships),
		TopicBoost:       util.GetEnvNumeric("GRAPH_TOPIC_BOOST", def.TopicBoost),
		StrongThreshold:  util.GetEnvNumeric("GRAPH_STRONG_THRESHOLD", def.StrongThreshold),
		Parallel:         def.Parallel,
	}
}

// NewAIPipelineParams wires the AI backed embedder, classifier and
// extractor around one client.
func NewAIPipelineParams(
	client ai.GraphAIClient,
	st store.GraphStorage,
	locker CaseLocker,
	cfg AIConfig,
	link LinkParams,
) NewPipelineParams {
	return NewPipelineParams{
		Store:    st,
		Embedder: NewAIEmbedder(client, cfg.Timeout, cfg.MaxRetries),
		Classifier: topic.NewAIClassifier(topic.NewAIClassifierParams{
			Client:     client,
			Timeout:    cfg.Timeout,
			MaxRetries: cfg.MaxRetries,
		}),
		Extractor: NewAIExtractor(NewAIExtractorParams{
			Client:     client,
			ChunkSize:  cfg.ChunkSize,
			Timeout:    cfg.Timeout,
			MaxRetries: cfg.MaxRetries,
		}),
		Locker: locker,
		Link:   link,
	}
}
