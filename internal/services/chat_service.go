package services

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	apperrors "github.com/mo7ami/backend-go/internal/errors"
	"github.com/mo7ami/backend-go/internal/generation"
	"github.com/mo7ami/backend-go/internal/kafka"
	"github.com/mo7ami/backend-go/internal/metrics"
	"github.com/mo7ami/backend-go/internal/retrieval"
)

// Retriever 检索接口
type Retriever interface {
	Retrieve(ctx context.Context, query string, opts retrieval.Options) ([]retrieval.RetrievedChunk, error)
}

// AnswerGenerator 生成接口
type AnswerGenerator interface {
	Generate(ctx context.Context, query string, chunks []retrieval.RetrievedChunk, language string) (*generation.Answer, error)
}

// QuotaAdmitter 配额接口
type QuotaAdmitter interface {
	Admit(ctx context.Context, userID, clientToken *string) (*QuotaStatus, error)
}

// ConversationStore 对话存储接口
type ConversationStore interface {
	Resolve(ctx context.Context, conversationID, userID, clientToken *string, language string) (*Resolution, error)
	Persist(ctx context.Context, res *Resolution, turn *Turn) error
}

// AnalyticsRecorder 统计记录接口
type AnalyticsRecorder interface {
	Record(ctx context.Context, record *QueryRecord)
}

// ChatService 问答管线编排
type ChatService struct {
	retriever     Retriever
	generator     AnswerGenerator
	quota         QuotaAdmitter
	conversations ConversationStore
	analytics     AnalyticsRecorder
	logger        *zap.Logger
}

// NewChatService 创建问答服务
func NewChatService(
	retriever Retriever,
	generator AnswerGenerator,
	quota QuotaAdmitter,
	conversations ConversationStore,
	analytics AnalyticsRecorder,
	logger *zap.Logger,
) *ChatService {
	return &ChatService{
		retriever:     retriever,
		generator:     generator,
		quota:         quota,
		conversations: conversations,
		analytics:     analytics,
		logger:        logger,
	}
}

// ChatRequest 问答请求
type ChatRequest struct {
	Question       string  `json:"message"`
	Language       string  `json:"language,omitempty"`
	ConversationID *string `json:"conversation_id,omitempty"`
	UserID         *string `json:"user_id,omitempty"`
	ClientToken    *string `json:"client_token,omitempty"`
	VoiceUsed      bool    `json:"voice_input,omitempty"`
}

// ChatResponse 问答响应
type ChatResponse struct {
	Answer             string                `json:"answer"`
	Language           string                `json:"language"`
	Citations          []generation.Citation `json:"citations"`
	ConversationID     string                `json:"conversation_id"`
	ProcessingTime     float64               `json:"processing_time"`
	RemainingQuestions int                   `json:"remaining_questions"`
	DailyLimit         int                   `json:"daily_limit"`
}

func hasIdentity(req *ChatRequest) bool {
	if req.UserID != nil && *req.UserID != "" {
		return true
	}
	return req.ClientToken != nil && *req.ClientToken != ""
}

// Ask 执行一轮问答。身份和配额校验失败直接返回，
// 配额占用之后的任何失败都会写入统计。
func (s *ChatService) Ask(ctx context.Context, req *ChatRequest) (*ChatResponse, error) {
	start := time.Now()

	if !hasIdentity(req) {
		metrics.ChatRequestsTotal.WithLabelValues("rejected").Inc()
		return nil, apperrors.NewIdentityMissingError()
	}
	if strings.TrimSpace(req.Question) == "" {
		metrics.ChatRequestsTotal.WithLabelValues("rejected").Inc()
		return nil, apperrors.NewValidationError("question is required")
	}

	language := req.Language
	if language != "ar" && language != "fr" {
		language = retrieval.DetectLanguage(req.Question)
	}

	res, err := s.conversations.Resolve(ctx, req.ConversationID, req.UserID, req.ClientToken, language)
	if err != nil {
		metrics.ChatRequestsTotal.WithLabelValues("rejected").Inc()
		return nil, err
	}

	status, err := s.quota.Admit(ctx, req.UserID, req.ClientToken)
	if err != nil {
		metrics.ChatRequestsTotal.WithLabelValues("rejected").Inc()
		return nil, err
	}

	domain := retrieval.DetectDomain(req.Question)

	answer, err := s.answerTurn(ctx, req, res, language, domain)
	elapsed := time.Since(start)
	if err != nil {
		s.recordTurn(ctx, req, language, domain, elapsed, false)
		metrics.ChatRequestsTotal.WithLabelValues("error").Inc()
		return nil, err
	}

	s.recordTurn(ctx, req, language, domain, elapsed, true)
	s.publishTurn(res.Conversation.ID, req, language, domain, elapsed, true)
	metrics.ChatRequestsTotal.WithLabelValues("success").Inc()

	return &ChatResponse{
		Answer:             answer.Text,
		Language:           language,
		Citations:          answer.Citations,
		ConversationID:     res.Conversation.ID,
		ProcessingTime:     elapsed.Seconds(),
		RemainingQuestions: status.Remaining,
		DailyLimit:         status.Limit,
	}, nil
}

// answerTurn 检索、生成并持久化一轮问答
func (s *ChatService) answerTurn(ctx context.Context, req *ChatRequest, res *Resolution, language, domain string) (*generation.Answer, error) {
	retrievalStart := time.Now()
	// 语料以法语为主而查询多为阿拉伯语，检索不按语言过滤
	chunks, err := s.retriever.Retrieve(ctx, req.Question, retrieval.Options{
		Domain: domain,
	})
	metrics.RetrievalDuration.Observe(time.Since(retrievalStart).Seconds())
	if err != nil {
		return nil, err
	}
	metrics.RetrievedChunks.Observe(float64(len(chunks)))

	generationStart := time.Now()
	answer, err := s.generator.Generate(ctx, req.Question, chunks, language)
	metrics.GenerationDuration.Observe(time.Since(generationStart).Seconds())
	if err != nil {
		return nil, err
	}

	if err := s.conversations.Persist(ctx, res, &Turn{
		Question:  req.Question,
		Answer:    answer.Text,
		Language:  language,
		VoiceUsed: req.VoiceUsed,
		Citations: answer.Citations,
	}); err != nil {
		return nil, err
	}

	return answer, nil
}

func (s *ChatService) recordTurn(ctx context.Context, req *ChatRequest, language, domain string, elapsed time.Duration, successful bool) {
	s.analytics.Record(ctx, &QueryRecord{
		UserID:         req.UserID,
		ClientToken:    req.ClientToken,
		Question:       req.Question,
		Language:       language,
		Domain:         domain,
		ResponseTimeMs: int(elapsed.Milliseconds()),
		Successful:     successful,
		VoiceUsed:      req.VoiceUsed,
	})
}

// publishTurn 异步发布审计事件，Kafka未配置时静默跳过
func (s *ChatService) publishTurn(conversationID string, req *ChatRequest, language, domain string, elapsed time.Duration, successful bool) {
	event := &kafka.ChatTurnEvent{
		ConversationID: conversationID,
		UserID:         req.UserID,
		ClientToken:    req.ClientToken,
		Question:       req.Question,
		Language:       language,
		Domain:         domain,
		ResponseTimeMs: int(elapsed.Milliseconds()),
		Successful:     successful,
		VoiceUsed:      req.VoiceUsed,
		Timestamp:      time.Now(),
	}
	go func() {
		if err := kafka.SendChatTurn(event); err != nil {
			s.logger.Warn("failed to publish chat turn event", zap.Error(err))
		}
	}()
}
