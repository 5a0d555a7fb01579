package graph

import (
	"context"
	"errors"
	"testing"

	"github.com/factgraph/backend/pkg/common"
	"github.com/factgraph/backend/pkg/store/memory"
	"github.com/factgraph/backend/pkg/topic"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	f1 = "Name: John Smith"
	f2 = "Alias: Johnny Smith"
	f3 = "Location: Lives in Berlin"
)

type pipelineFixture struct {
	pipeline *Pipeline
	store    *memory.GraphMemoryStorage
	embedder *fakeEmbedder
	caseID   int64
}

func newFixture(t *testing.T, extracted []string, locker CaseLocker) pipelineFixture {
	t.Helper()
	st := memory.New()
	c, err := st.CreateCase(context.Background(), common.Case{Title: "Operation Test"})
	require.NoError(t, err)

	emb := &fakeEmbedder{vectors: map[string][]float32{
		f1: {1, 0, 0},
		f2: unitAt(0.95),
		f3: {0, 0, 1},
	}}
	p, err := NewPipeline(NewPipelineParams{
		Store:    st,
		Embedder: emb,
		Classifier: &fakeClassifier{topics: map[string]topic.Topic{
			f1: topic.Identity,
			f2: topic.Identity,
			f3: topic.Location,
		}},
		Extractor: &fakeExtractor{facts: extracted},
		Locker:    locker,
		Link:      DefaultLinkParams(),
	})
	require.NoError(t, err)

	return pipelineFixture{pipeline: p, store: st, embedder: emb, caseID: c.ID}
}

func TestIngestDocument_LinksBackwardOnly(t *testing.T) {
	fx := newFixture(t, []string{f1, f2, f3}, nil)
	ctx := context.Background()

	res, err := fx.pipeline.IngestDocument(ctx, fx.caseID, "some long report")
	require.NoError(t, err)
	assert.Equal(t, IngestResult{FactsCreated: 3}, res)

	facts, err := fx.store.FindFactsByCase(ctx, fx.caseID)
	require.NoError(t, err)
	require.Len(t, facts, 3)
	ids := map[string]int64{}
	for _, f := range facts {
		ids[f.Content] = f.ID
	}

	rels, err := fx.store.ListRelationships(ctx, fx.caseID)
	require.NoError(t, err)
	require.Len(t, rels, 1)
	assert.Equal(t, ids[f2], rels[0].SourceID)
	assert.Equal(t, ids[f1], rels[0].TargetID)
	assert.Equal(t, "identity_related", rels[0].Type)
	assert.Equal(t, 100, rels[0].Strength)

	for _, r := range rels {
		assert.NotEqual(t, ids[f1], r.SourceID, "the first fact must not link forward")
	}
}

func TestIngestDocument_CountsSkipped(t *testing.T) {
	fx := newFixture(t, []string{f1, f1, "", f3}, nil)

	res, err := fx.pipeline.IngestDocument(context.Background(), fx.caseID, "report")
	require.NoError(t, err)
	assert.Equal(t, 2, res.FactsCreated)
	assert.Equal(t, 2, res.Skipped)
}

func TestIngestDocument_Errors(t *testing.T) {
	fx := newFixture(t, nil, nil)
	_, err := fx.pipeline.IngestDocument(context.Background(), fx.caseID, "report")
	assert.ErrorIs(t, err, ErrNoFactsExtracted)

	_, err = fx.pipeline.IngestDocument(context.Background(), fx.caseID, "  \n ")
	assert.ErrorIs(t, err, ErrEmptyContent)

	boom := errors.New("model down")
	fx.pipeline.extractor = &fakeExtractor{err: boom}
	_, err = fx.pipeline.IngestDocument(context.Background(), fx.caseID, "report")
	assert.ErrorIs(t, err, boom)
}

func TestCreateFact_EmbeddingFailureStillPersists(t *testing.T) {
	fx := newFixture(t, nil, nil)
	ctx := context.Background()

	_, err := fx.pipeline.CreateFact(ctx, fx.caseID, common.FactKindText, f1)
	require.NoError(t, err)

	res, err := fx.pipeline.CreateFact(ctx, fx.caseID, common.FactKindLink, "https://example.com/profile")
	require.NoError(t, err)
	assert.NotZero(t, res.Fact.ID)
	assert.Nil(t, res.Fact.Embedding)
	assert.Empty(t, res.Edges)
	assert.NotEmpty(t, res.Warnings)
	assert.Equal(t, string(topic.Misc), res.Fact.Topic)

	facts, err := fx.store.FindFactsByCase(ctx, fx.caseID)
	require.NoError(t, err)
	assert.Len(t, facts, 2)
}

func TestCreateFact_FactWithoutEmbeddingIsNotACandidate(t *testing.T) {
	fx := newFixture(t, nil, nil)
	ctx := context.Background()

	_, err := fx.pipeline.CreateFact(ctx, fx.caseID, common.FactKindText, "unembeddable")
	require.NoError(t, err)

	res, err := fx.pipeline.CreateFact(ctx, fx.caseID, common.FactKindText, f1)
	require.NoError(t, err)
	assert.Empty(t, res.Edges)
	assert.Empty(t, res.Failures)
}

func TestCreateFact_RejectsDuplicates(t *testing.T) {
	fx := newFixture(t, nil, nil)
	ctx := context.Background()

	_, err := fx.pipeline.CreateFact(ctx, fx.caseID, common.FactKindText, f1)
	require.NoError(t, err)

	_, err = fx.pipeline.CreateFact(ctx, fx.caseID, common.FactKindText, "  "+f1+"\n")
	assert.ErrorIs(t, err, ErrDuplicateFact)

	rels, _ := fx.store.ListRelationships(ctx, fx.caseID)
	assert.Empty(t, rels)
}

func TestCreateFact_Validation(t *testing.T) {
	fx := newFixture(t, nil, nil)
	ctx := context.Background()

	_, err := fx.pipeline.CreateFact(ctx, fx.caseID, common.FactKind("image"), f1)
	assert.ErrorIs(t, err, ErrInvalidKind)

	_, err = fx.pipeline.CreateFact(ctx, fx.caseID, common.FactKindText, " \t\n")
	assert.ErrorIs(t, err, ErrEmptyContent)
	assert.Zero(t, fx.embedder.calls)
}

func TestCreateFact_LockFailureStoresWithoutLinks(t *testing.T) {
	fx := newFixture(t, nil, failingLocker{})
	ctx := context.Background()

	_, err := fx.pipeline.CreateFact(ctx, fx.caseID, common.FactKindText, f1)
	require.NoError(t, err)
	res, err := fx.pipeline.CreateFact(ctx, fx.caseID, common.FactKindText, f2)
	require.NoError(t, err)

	assert.NotZero(t, res.Fact.ID)
	assert.NotNil(t, res.Fact.Embedding)
	assert.Empty(t, res.Edges)
	assert.NotEmpty(t, res.Warnings)
}

func TestCreateFact_UnknownCase(t *testing.T) {
	fx := newFixture(t, nil, nil)
	_, err := fx.pipeline.CreateFact(context.Background(), fx.caseID+1000, common.FactKindText, f1)
	assert.Error(t, err)
}

func TestNewPipeline_RequiresCollaborators(t *testing.T) {
	_, err := NewPipeline(NewPipelineParams{})
	assert.Error(t, err)

	_, err = NewPipeline(NewPipelineParams{Store: memory.New()})
	assert.Error(t, err)
}
