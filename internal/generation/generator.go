package generation

import (
	"context"

	"github.com/mo7ami/backend-go/internal/config"
	apperrors "github.com/mo7ami/backend-go/internal/errors"
	"github.com/mo7ami/backend-go/internal/retrieval"
	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

// ChatClient 对话补全客户端，由*openai.Client实现
type ChatClient interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// Answer 生成结果
type Answer struct {
	Text      string
	Citations []Citation
	Fallback  bool
}

// Generator 答案生成器：组装上下文并调用语言模型
type Generator struct {
	client       ChatClient
	cfg          config.OpenAIConfig
	authorityURL string
	logger       *zap.Logger
}

func NewGenerator(client ChatClient, cfg config.OpenAIConfig, authorityURL string, logger *zap.Logger) *Generator {
	return &Generator{
		client:       client,
		cfg:          cfg,
		authorityURL: authorityURL,
		logger:       logger,
	}
}

// Generate 基于检索结果生成带引用的答案
// 上下文为空时直接返回固定回复，不调用模型
func (g *Generator) Generate(ctx context.Context, query string, chunks []retrieval.RetrievedChunk, language string) (*Answer, error) {
	contextText := BuildContext(chunks, language)
	if contextText == "" {
		return &Answer{
			Text:      FallbackMessage(language),
			Citations: []Citation{},
			Fallback:  true,
		}, nil
	}

	citations := BuildCitations(chunks, language, g.authorityURL)

	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: g.cfg.ChatModel,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: SystemPrompt(language)},
			{Role: openai.ChatMessageRoleUser, Content: userPrompt(query, contextText, language)},
		},
		Temperature: float32(g.cfg.Temperature),
		MaxTokens:   g.cfg.MaxTokens,
	})
	if err != nil {
		// 不在本层重试，由调用方记录失败并上抛
		g.logger.Error("chat completion failed", zap.Error(err))
		return nil, apperrors.NewGenerationError(err)
	}
	if len(resp.Choices) == 0 {
		return nil, apperrors.NewGenerationError(nil)
	}

	return &Answer{
		Text:      resp.Choices[0].Message.Content,
		Citations: citations,
	}, nil
}
