package retrieval

import (
	"context"
	"errors"
	"testing"

	"github.com/mo7ami/backend-go/internal/config"
	"github.com/mo7ami/backend-go/internal/models"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

type fakeEmbedder struct {
	vec   []float32
	err   error
	calls int
}

func (f *fakeEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	f.calls++
	return f.vec, f.err
}

func (f *fakeEmbedder) Dimensions() int { return len(f.vec) }
func (f *fakeEmbedder) Ready() bool     { return true }

type fakeStore struct {
	matches []Match
	err     error
	lastReq SearchRequest
}

func (f *fakeStore) Search(ctx context.Context, req SearchRequest) ([]Match, error) {
	f.lastReq = req
	return f.matches, f.err
}

func (f *fakeStore) Ready() bool { return true }

type fakeDocs struct {
	docs map[string]*models.LegalDocument
}

func (f *fakeDocs) FetchByIDs(ctx context.Context, ids []string) (map[string]*models.LegalDocument, error) {
	return f.docs, nil
}

func testEngine(embedder Embedder, store VectorStore, docs DocumentLoader) *Engine {
	cfg := config.RAGConfig{
		TopK:                10,
		SimilarityThreshold: 0.30,
		CandidateMultiplier: 10,
		AuthorityURL:        "https://www.sgg.gov.ma",
	}
	return NewEngine(embedder, store, docs, cfg, zap.NewNop())
}

func TestRetrieveEmptyQuerySkipsEmbedding(t *testing.T) {
	embedder := &fakeEmbedder{vec: []float32{1, 0}}
	store := &fakeStore{}
	engine := testEngine(embedder, store, &fakeDocs{})

	for _, query := range []string{"", "   ", "\t\n"} {
		chunks, err := engine.Retrieve(context.Background(), query, Options{})
		assert.NoError(t, err)
		assert.Empty(t, chunks)
	}
	assert.Equal(t, 0, embedder.calls)
}

func TestRetrieveEmbeddingFailureReturnsEmpty(t *testing.T) {
	embedder := &fakeEmbedder{err: errors.New("provider down")}
	engine := testEngine(embedder, &fakeStore{}, &fakeDocs{})

	chunks, err := engine.Retrieve(context.Background(), "ما حكم السرقة؟", Options{})
	assert.NoError(t, err)
	assert.Empty(t, chunks)
	assert.Equal(t, 1, embedder.calls)
}

func TestRetrieveThresholdAndOrder(t *testing.T) {
	store := &fakeStore{matches: []Match{
		{ChunkID: "c1", DocumentID: "d1", Content: "a", Score: 0.91},
		{ChunkID: "c2", DocumentID: "d1", Content: "b", Score: 0.52},
		{ChunkID: "c3", DocumentID: "d2", Content: "c", Score: 0.44},
		{ChunkID: "c4", DocumentID: "d2", Content: "d", Score: 0.12},
	}}
	engine := testEngine(&fakeEmbedder{vec: []float32{1, 0}}, store, &fakeDocs{})

	chunks, err := engine.Retrieve(context.Background(), "سؤال", Options{TopK: 2})
	assert.NoError(t, err)
	assert.Len(t, chunks, 2)
	assert.Equal(t, "c1", chunks[0].ChunkID)
	assert.Equal(t, "c2", chunks[1].ChunkID)

	// 输出相似度不增
	for i := 1; i < len(chunks); i++ {
		assert.GreaterOrEqual(t, chunks[i-1].Score, chunks[i].Score)
	}

	// 候选上限为topK的固定倍数
	assert.Equal(t, 20, store.lastReq.CandidateLimit)
}

func TestRetrieveFiltersBelowThreshold(t *testing.T) {
	store := &fakeStore{matches: []Match{
		{ChunkID: "c1", DocumentID: "d1", Score: 0.82},
		{ChunkID: "c2", DocumentID: "d1", Score: 0.29},
		{ChunkID: "c3", DocumentID: "d2", Score: 0.05},
	}}
	engine := testEngine(&fakeEmbedder{vec: []float32{1, 0}}, store, &fakeDocs{})

	chunks, err := engine.Retrieve(context.Background(), "question", Options{})
	assert.NoError(t, err)
	assert.Len(t, chunks, 1)
	for _, c := range chunks {
		assert.GreaterOrEqual(t, c.Score, 0.30)
	}
}

func TestRetrieveAttachesParentDocuments(t *testing.T) {
	doc := &models.LegalDocument{ID: "d1", Title: "Code pénal", OfficialRef: "Dahir 1-59-413"}
	store := &fakeStore{matches: []Match{
		{ChunkID: "c1", DocumentID: "d1", Content: "x", Score: 0.82},
	}}
	engine := testEngine(&fakeEmbedder{vec: []float32{1, 0}}, store, &fakeDocs{
		docs: map[string]*models.LegalDocument{"d1": doc},
	})

	chunks, err := engine.Retrieve(context.Background(), "vol", Options{})
	assert.NoError(t, err)
	assert.Len(t, chunks, 1)
	assert.NotNil(t, chunks[0].Document)
	assert.Equal(t, "Dahir 1-59-413", chunks[0].Document.OfficialRef)
}

func TestRetrievePropagatesStoreError(t *testing.T) {
	store := &fakeStore{err: errors.New("connection reset")}
	engine := testEngine(&fakeEmbedder{vec: []float32{1, 0}}, store, &fakeDocs{})

	_, err := engine.Retrieve(context.Background(), "question", Options{})
	assert.Error(t, err)
}
