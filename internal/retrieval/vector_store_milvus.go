package retrieval

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/milvus-io/milvus-sdk-go/v2/client"
	"github.com/milvus-io/milvus-sdk-go/v2/entity"
)

// MilvusOptions Milvus客户端配置
type MilvusOptions struct {
	Address    string
	Username   string
	Password   string
	Collection string
	Database   string
	VectorSize int
	UseTLS     bool
	Timeout    time.Duration
}

type milvusVectorStore struct {
	milvusClient client.Client
	collection   string
	vectorSize   int
}

// NewMilvusVectorStore 创建Milvus向量存储
// 集合由语料入库管道创建并填充，检索端只读
func NewMilvusVectorStore(opts MilvusOptions) (VectorStore, error) {
	if opts.Address == "" {
		opts.Address = "localhost:19530"
	}
	if opts.Collection == "" {
		opts.Collection = "legal_chunks"
	}
	if opts.VectorSize == 0 {
		opts.VectorSize = 1536
	}
	if opts.Database == "" {
		opts.Database = "default"
	}

	milvusClient, err := client.NewClient(
		context.Background(),
		client.Config{
			Address:       opts.Address,
			DBName:        opts.Database,
			Username:      opts.Username,
			Password:      opts.Password,
			EnableTLSAuth: opts.UseTLS,
		},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create milvus client: %w", err)
	}

	return &milvusVectorStore{
		milvusClient: milvusClient,
		collection:   opts.Collection,
		vectorSize:   opts.VectorSize,
	}, nil
}

func (s *milvusVectorStore) Search(ctx context.Context, req SearchRequest) ([]Match, error) {
	if len(req.QueryEmbedding) == 0 {
		return nil, nil
	}
	if req.Limit == 0 {
		req.Limit = 10
	}
	if req.CandidateLimit == 0 {
		req.CandidateLimit = req.Limit * 10
	}

	// 过滤表达式
	var conditions []string
	if req.Language != "" {
		conditions = append(conditions, fmt.Sprintf(`language == "%s"`, escapeMilvusString(req.Language)))
	}
	if req.Domain != "" {
		conditions = append(conditions, fmt.Sprintf(`domain == "%s"`, escapeMilvusString(req.Domain)))
	}
	expr := strings.Join(conditions, " && ")

	sp, _ := entity.NewIndexHNSWSearchParam(64)
	queryVector := entity.FloatVector(req.QueryEmbedding)
	searchResults, err := s.milvusClient.Search(
		ctx,
		s.collection,
		[]string{},
		expr,
		[]string{"chunk_id", "document_id", "content", "language", "article_number"},
		[]entity.Vector{queryVector},
		"vector",
		entity.COSINE,
		req.CandidateLimit,
		sp,
	)
	if err != nil {
		return nil, fmt.Errorf("milvus search failed: %w", err)
	}

	if len(searchResults) == 0 {
		return []Match{}, nil
	}
	result := searchResults[0]
	if result.Err != nil {
		return nil, fmt.Errorf("milvus search error: %w", result.Err)
	}
	if result.ResultCount == 0 {
		return []Match{}, nil
	}

	var chunkIDs, documentIDs, contents, languages, articleNumbers []string
	for _, field := range result.Fields {
		col, ok := field.(*entity.ColumnVarChar)
		if !ok {
			continue
		}
		switch field.Name() {
		case "chunk_id":
			chunkIDs = col.Data()
		case "document_id":
			documentIDs = col.Data()
		case "content":
			contents = col.Data()
		case "language":
			languages = col.Data()
		case "article_number":
			articleNumbers = col.Data()
		}
	}

	// COSINE度量下Milvus直接返回相似度，结果已按相似度降序
	results := make([]Match, 0, result.ResultCount)
	for i := 0; i < result.ResultCount; i++ {
		m := Match{Metadata: make(map[string]interface{})}
		if i < len(chunkIDs) {
			m.ChunkID = chunkIDs[i]
		}
		if i < len(documentIDs) {
			m.DocumentID = documentIDs[i]
		}
		if i < len(contents) {
			m.Content = contents[i]
		}
		if i < len(languages) {
			m.Language = languages[i]
		}
		if i < len(articleNumbers) {
			m.ArticleNumber = articleNumbers[i]
		}
		if i < len(result.Scores) {
			m.Score = float64(result.Scores[i])
		}
		results = append(results, m)
	}

	return results, nil
}

func (s *milvusVectorStore) Ready() bool {
	if s.milvusClient == nil {
		return false
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, err := s.milvusClient.ListCollections(ctx)
	return err == nil
}

func escapeMilvusString(value string) string {
	return strings.ReplaceAll(value, `"`, `\"`)
}
