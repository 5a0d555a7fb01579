package topic

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/factgraph/backend/internal/util"
	"github.com/factgraph/backend/pkg/ai"
	"github.com/factgraph/backend/pkg/logger"
)

// ErrClassificationFailure is reported alongside Misc when the model could
// not be reached or gave no usable answer.
var ErrClassificationFailure = errors.New("classification failure")

// Classifier assigns a topic to a piece of text. The returned topic is
// always part of the set; a non-nil error only explains why Misc was used.
type Classifier interface {
	Classify(ctx context.Context, text string) (Topic, error)
}

// answer is the structured output expected from the chat model.
type answer struct {
	Topic string `json:"topic" jsonschema:"enum=identity,enum=location,enum=social_media,enum=contact,enum=employment,enum=education,enum=relationships,enum=activities,enum=timeline,enum=misc"`
}

// AIClassifier classifies text with a chat model constrained to a JSON
// schema enum of the topic set.
type AIClassifier struct {
	client     ai.GraphAIClient
	timeout    time.Duration
	maxRetries int
	model      string
}

// NewAIClassifierParams configures an AIClassifier. Model overrides the
// client's default classification model when set.
type NewAIClassifierParams struct {
	Client     ai.GraphAIClient
	Timeout    time.Duration
	MaxRetries int
	Model      string
}

// NewAIClassifier returns a classifier backed by the given AI client.
func NewAIClassifier(params NewAIClassifierParams) *AIClassifier {
	timeout := params.Timeout
	if timeout <= 0 {
		timeout = time.Minute
	}
	retries := params.MaxRetries
	if retries <= 0 {
		retries = 1
	}
	return &AIClassifier{
		client:     params.Client,
		timeout:    timeout,
		maxRetries: retries,
		model:      params.Model,
	}
}

// Classify returns the topic of text. Remote errors and timeouts yield
// Misc together with an error wrapping ErrClassificationFailure. Answers
// outside the set yield Misc without an error.
func (c *AIClassifier) Classify(ctx context.Context, text string) (Topic, error) {
	t, err := c.classify(ctx, text)
	if err != nil {
		logger.Warn("[Topic] Classification failed, using misc", "err", err)
		return Misc, fmt.Errorf("%w: %w", ErrClassificationFailure, err)
	}
	return t, nil
}

func (c *AIClassifier) classify(ctx context.Context, text string) (Topic, error) {
	if strings.TrimSpace(text) == "" {
		return Misc, nil
	}

	names := strings.Join(Names(), ", ")
	system := fmt.Sprintf(ai.ClassifyPrompt, names, names)

	opts := []ai.GenerateOption{
		ai.WithSystemPrompts(system),
		ai.WithTemperature(0.3),
		ai.WithMaxTokens(20),
	}
	if c.model != "" {
		opts = append(opts, ai.WithModel(c.model))
	}

	return util.RetryWithContext(ctx, c.maxRetries, func(ctx context.Context) (Topic, error) {
		aCtx, cancel := context.WithTimeout(ctx, c.timeout)
		defer cancel()

		var out answer
		if err := c.client.GenerateCompletionWithFormat(
			aCtx,
			"topic_classification",
			"Topic of an OSINT data point",
			text,
			&out,
			opts...,
		); err != nil {
			return Misc, err
		}
		return Parse(out.Topic), nil
	})
}
