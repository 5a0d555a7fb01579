package ollama

import (
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/factgraph/backend/pkg/ai"

	"github.com/ollama/ollama/api"
	"golang.org/x/sync/semaphore"
)

// GraphOllamaClient implements ai.GraphAIClient against a locally hosted
// Ollama server.
type GraphOllamaClient struct {
	embeddingModel  string
	classifyModel   string
	extractionModel string
	dimensions      int

	timeout time.Duration
	reqLock *semaphore.Weighted

	metricsLock sync.Mutex
	metrics     ai.ModelMetrics

	baseURL *url.URL

	Client *api.Client
}

// NewGraphOllamaClientParams contains configuration options for creating a new GraphOllamaClient.
type NewGraphOllamaClientParams struct {
	EmbeddingModel  string
	ClassifyModel   string
	ExtractionModel string
	Dimensions      int

	BaseURL string
	ApiKey  string

	Timeout               time.Duration
	MaxConcurrentRequests int64
}

type headerTransport struct {
	headers map[string]string
	rt      http.RoundTripper
}

func (t *headerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	r := req.Clone(req.Context())
	for k, v := range t.headers {
		if r.Header.Get(k) == "" {
			r.Header.Set(k, v)
		}
	}
	return t.rt.RoundTrip(r)
}

// NewGraphOllamaClient connects to the Ollama server at BaseURL, or the
// library default when BaseURL is empty.
func NewGraphOllamaClient(
	params NewGraphOllamaClientParams,
) (*GraphOllamaClient, error) {
	var (
		u   *url.URL
		err error
	)

	if params.BaseURL != "" {
		u, err = url.Parse(params.BaseURL)
		if err != nil {
			return nil, err
		}
	}

	headers := map[string]string{}
	if params.ApiKey != "" {
		headers["Authorization"] = "Bearer " + params.ApiKey
	}
	httpClient := &http.Client{
		Transport: &headerTransport{headers: headers, rt: http.DefaultTransport},
	}

	var cli *api.Client
	if u != nil {
		cli = api.NewClient(u, httpClient)
	} else {
		cli, err = api.ClientFromEnvironment()
		if err != nil {
			return nil, err
		}
	}

	timeout := params.Timeout
	if timeout <= 0 {
		timeout = time.Minute
	}
	parallel := params.MaxConcurrentRequests
	if parallel <= 0 {
		parallel = 4
	}

	return &GraphOllamaClient{
		embeddingModel:  params.EmbeddingModel,
		classifyModel:   params.ClassifyModel,
		extractionModel: params.ExtractionModel,
		dimensions:      params.Dimensions,

		timeout: timeout,
		reqLock: semaphore.NewWeighted(parallel),

		baseURL: u,

		Client: cli,
	}, nil
}

// EmbeddingModel returns the configured embedding model name.
func (c *GraphOllamaClient) EmbeddingModel() string {
	return c.embeddingModel
}
