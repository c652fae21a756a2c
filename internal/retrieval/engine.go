package retrieval

import (
	"context"
	"strings"

	"github.com/mo7ami/backend-go/internal/config"
	"github.com/mo7ami/backend-go/internal/models"
	"go.uber.org/zap"
)

// RetrievedChunk 检索结果，附带父文献摘要
type RetrievedChunk struct {
	Match
	Document *models.LegalDocument
}

// Options 单次检索的可选参数
type Options struct {
	Language  string // 为空时跨语言检索
	Domain    string
	TopK      int
	Threshold float64
}

// DocumentLoader 父文献加载接口
type DocumentLoader interface {
	FetchByIDs(ctx context.Context, ids []string) (map[string]*models.LegalDocument, error)
}

// Engine 检索引擎：向量化查询、相似度检索、阈值过滤
type Engine struct {
	embedder Embedder
	store    VectorStore
	docs     DocumentLoader
	cfg      config.RAGConfig
	logger   *zap.Logger
}

func NewEngine(embedder Embedder, store VectorStore, docs DocumentLoader, cfg config.RAGConfig, logger *zap.Logger) *Engine {
	return &Engine{
		embedder: embedder,
		store:    store,
		docs:     docs,
		cfg:      cfg,
		logger:   logger,
	}
}

// Retrieve 返回按相似度降序的分块列表，可能为空
// 空白查询与向量化失败均静默返回空结果，不视为错误
func (e *Engine) Retrieve(ctx context.Context, query string, opts Options) ([]RetrievedChunk, error) {
	if strings.TrimSpace(query) == "" {
		return []RetrievedChunk{}, nil
	}

	topK := opts.TopK
	if topK <= 0 {
		topK = e.cfg.TopK
	}
	threshold := opts.Threshold
	if threshold <= 0 {
		threshold = e.cfg.SimilarityThreshold
	}
	multiplier := e.cfg.CandidateMultiplier
	if multiplier <= 0 {
		multiplier = 10
	}

	embedding, err := e.embedder.Embed(ctx, query)
	if err != nil || len(embedding) == 0 {
		// 向量化失败按空检索降级处理
		e.logger.Warn("query embedding unavailable, returning empty retrieval", zap.Error(err))
		return []RetrievedChunk{}, nil
	}

	candidates, err := e.store.Search(ctx, SearchRequest{
		QueryEmbedding: embedding,
		Limit:          topK,
		CandidateLimit: topK * multiplier,
		Language:       opts.Language,
		Domain:         opts.Domain,
	})
	if err != nil {
		return nil, err
	}

	// 候选已按相似度降序，按阈值过滤并截断到topK，不再重排
	kept := make([]Match, 0, topK)
	for _, candidate := range candidates {
		if candidate.Score < threshold {
			continue
		}
		kept = append(kept, candidate)
		if len(kept) == topK {
			break
		}
	}

	return e.attachDocuments(ctx, kept)
}

// attachDocuments 为命中分块补充父文献摘要
func (e *Engine) attachDocuments(ctx context.Context, matches []Match) ([]RetrievedChunk, error) {
	chunks := make([]RetrievedChunk, 0, len(matches))
	if len(matches) == 0 {
		return chunks, nil
	}

	seen := make(map[string]bool, len(matches))
	ids := make([]string, 0, len(matches))
	for _, m := range matches {
		if m.DocumentID == "" || seen[m.DocumentID] {
			continue
		}
		seen[m.DocumentID] = true
		ids = append(ids, m.DocumentID)
	}

	docs, err := e.docs.FetchByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	for _, m := range matches {
		chunks = append(chunks, RetrievedChunk{
			Match:    m,
			Document: docs[m.DocumentID],
		})
	}
	return chunks, nil
}
