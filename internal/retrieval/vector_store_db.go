package retrieval

import (
	"context"
	"encoding/json"
	"fmt"
	"math"

	"gorm.io/gorm"
)

// DatabaseVectorStore 基于PostgreSQL的退化向量存储
// embedding以JSON文本存储在document_chunks表，相似度在进程内计算
type DatabaseVectorStore struct {
	db *gorm.DB
}

func NewDatabaseVectorStore(db *gorm.DB) VectorStore {
	return &DatabaseVectorStore{db: db}
}

func (s *DatabaseVectorStore) Search(ctx context.Context, req SearchRequest) ([]Match, error) {
	if len(req.QueryEmbedding) == 0 {
		return nil, nil
	}
	if req.Limit == 0 {
		req.Limit = 10
	}
	if req.CandidateLimit == 0 {
		req.CandidateLimit = req.Limit * 10
	}

	query := s.db.WithContext(ctx).
		Table("document_chunks").
		Select("document_chunks.id, document_chunks.document_id, document_chunks.content, document_chunks.language, document_chunks.article_number, document_chunks.embedding, document_chunks.metadata").
		Where("document_chunks.embedding IS NOT NULL AND document_chunks.embedding::text <> ''")

	if req.Language != "" {
		query = query.Where("document_chunks.language = ?", req.Language)
	}
	if req.Domain != "" {
		query = query.
			Joins("JOIN legal_documents ON document_chunks.document_id = legal_documents.id").
			Where("legal_documents.domain = ?", req.Domain)
	}

	var rows []chunkEmbeddingRecord
	if err := query.Limit(req.CandidateLimit).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("vector search failed: %w", err)
	}

	queryNorm := vectorNorm(req.QueryEmbedding)
	if queryNorm == 0 {
		return nil, fmt.Errorf("query embedding norm is zero")
	}

	results := make([]Match, 0, len(rows))
	for _, row := range rows {
		var embedding []float32
		if err := json.Unmarshal([]byte(row.EmbeddingJSON), &embedding); err != nil {
			continue
		}
		var metadata map[string]interface{}
		if row.MetadataJSON != "" {
			_ = json.Unmarshal([]byte(row.MetadataJSON), &metadata)
		}
		score := cosineSimilarity(req.QueryEmbedding, embedding, queryNorm)
		results = append(results, Match{
			ChunkID:       row.ID,
			DocumentID:    row.DocumentID,
			Content:       row.Content,
			Language:      row.Language,
			ArticleNumber: row.ArticleNumber,
			Score:         score,
			Metadata:      metadata,
		})
	}

	// 排序
	sortMatchesByScore(results)
	if len(results) > req.CandidateLimit {
		results = results[:req.CandidateLimit]
	}
	return results, nil
}

func (s *DatabaseVectorStore) Ready() bool {
	return s.db != nil
}

type chunkEmbeddingRecord struct {
	ID            string
	DocumentID    string
	Content       string
	Language      string
	ArticleNumber string
	EmbeddingJSON string `gorm:"column:embedding"`
	MetadataJSON  string `gorm:"column:metadata"`
}

func vectorNorm(vec []float32) float64 {
	var sum float64
	for _, v := range vec {
		sum += float64(v * v)
	}
	return math.Sqrt(sum)
}

// cosineSimilarity 余弦相似度，等价于 1 - 余弦距离
func cosineSimilarity(a, b []float32, normA float64) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	if len(a) != len(b) {
		// 尝试对齐长度
		minLen := len(a)
		if len(b) < minLen {
			minLen = len(b)
		}
		a = a[:minLen]
		b = b[:minLen]
	}

	var dot float64
	var normB float64
	for i := range a {
		dot += float64(a[i] * b[i])
		normB += float64(b[i] * b[i])
	}

	if normA == 0 || normB == 0 {
		return 0
	}

	return dot / (normA * math.Sqrt(normB))
}
