package retrieval

import (
	"context"
	"sort"
)

// Match 向量检索命中的分块
type Match struct {
	ChunkID       string
	DocumentID    string
	Content       string
	Language      string
	ArticleNumber string
	Score         float64
	Metadata      map[string]interface{}
}

// SearchRequest 向量检索请求
type SearchRequest struct {
	QueryEmbedding []float32
	Limit          int
	CandidateLimit int
	Language       string // 为空时跨语言检索
	Domain         string
}

// VectorStore 向量存储抽象，返回按相似度降序排列的候选
type VectorStore interface {
	Search(ctx context.Context, req SearchRequest) ([]Match, error)
	Ready() bool
}

// sortMatchesByScore 相似度降序，同分按ChunkID保证稳定输出
func sortMatchesByScore(matches []Match) {
	sort.Slice(matches, func(i, j int) bool {
		if matches[i].Score == matches[j].Score {
			return matches[i].ChunkID < matches[j].ChunkID
		}
		return matches[i].Score > matches[j].Score
	})
}
