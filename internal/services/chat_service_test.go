package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	apperrors "github.com/mo7ami/backend-go/internal/errors"
	"github.com/mo7ami/backend-go/internal/generation"
	"github.com/mo7ami/backend-go/internal/models"
	"github.com/mo7ami/backend-go/internal/retrieval"
)

type fakeRetriever struct {
	chunks   []retrieval.RetrievedChunk
	err      error
	calls    int
	lastOpts retrieval.Options
}

func (f *fakeRetriever) Retrieve(ctx context.Context, query string, opts retrieval.Options) ([]retrieval.RetrievedChunk, error) {
	f.calls++
	f.lastOpts = opts
	return f.chunks, f.err
}

type fakeGenerator struct {
	answer *generation.Answer
	err    error
	calls  int
}

func (f *fakeGenerator) Generate(ctx context.Context, query string, chunks []retrieval.RetrievedChunk, language string) (*generation.Answer, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.answer, nil
}

type fakeQuota struct {
	status *QuotaStatus
	err    error
	calls  int
}

func (f *fakeQuota) Admit(ctx context.Context, userID, clientToken *string) (*QuotaStatus, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.status, nil
}

type fakeConversations struct {
	resolveErr error
	persistErr error
	persisted  []*Turn
}

func (f *fakeConversations) Resolve(ctx context.Context, conversationID, userID, clientToken *string, language string) (*Resolution, error) {
	if f.resolveErr != nil {
		return nil, f.resolveErr
	}
	return &Resolution{
		Conversation: &models.Conversation{ID: "conv-1", Language: language},
		Create:       conversationID == nil,
	}, nil
}

func (f *fakeConversations) Persist(ctx context.Context, res *Resolution, turn *Turn) error {
	if f.persistErr != nil {
		return f.persistErr
	}
	f.persisted = append(f.persisted, turn)
	return nil
}

type fakeAnalytics struct {
	records []*QueryRecord
}

func (f *fakeAnalytics) Record(ctx context.Context, record *QueryRecord) {
	f.records = append(f.records, record)
}

type chatFixture struct {
	retriever     *fakeRetriever
	generator     *fakeGenerator
	quota         *fakeQuota
	conversations *fakeConversations
	analytics     *fakeAnalytics
	svc           *ChatService
}

func newChatFixture() *chatFixture {
	f := &chatFixture{
		retriever: &fakeRetriever{},
		generator: &fakeGenerator{answer: &generation.Answer{
			Text:      "الفصل 505 يعاقب على السرقة",
			Citations: []generation.Citation{{Source: "القانون الجنائي"}},
		}},
		quota:         &fakeQuota{status: &QuotaStatus{Limit: 10, Used: 3, Remaining: 7}},
		conversations: &fakeConversations{},
		analytics:     &fakeAnalytics{},
	}
	f.svc = NewChatService(f.retriever, f.generator, f.quota, f.conversations, f.analytics, zap.NewNop())
	return f
}

func TestChatService_HappyPath(t *testing.T) {
	f := newChatFixture()

	resp, err := f.svc.Ask(context.Background(), &ChatRequest{
		Question: "ما هي عقوبة السرقة؟",
		UserID:   strPtr("user-1"),
	})
	require.NoError(t, err)

	assert.Equal(t, "الفصل 505 يعاقب على السرقة", resp.Answer)
	assert.Equal(t, "ar", resp.Language)
	assert.Equal(t, "conv-1", resp.ConversationID)
	assert.Equal(t, 7, resp.RemainingQuestions)
	assert.Equal(t, 10, resp.DailyLimit)
	assert.Len(t, resp.Citations, 1)
	assert.GreaterOrEqual(t, resp.ProcessingTime, 0.0)

	// 一轮问答持久化一次
	require.Len(t, f.conversations.persisted, 1)
	assert.Equal(t, "ما هي عقوبة السرقة؟", f.conversations.persisted[0].Question)

	// 成功记录统计并带上请求身份
	require.Len(t, f.analytics.records, 1)
	assert.True(t, f.analytics.records[0].Successful)
	assert.Equal(t, "penal_law", f.analytics.records[0].Domain)
	require.NotNil(t, f.analytics.records[0].UserID)
	assert.Equal(t, "user-1", *f.analytics.records[0].UserID)
}

func TestChatService_RetrievalIsCrossLingual(t *testing.T) {
	f := newChatFixture()
	// 法语语料也要命中阿拉伯语查询
	f.retriever.chunks = []retrieval.RetrievedChunk{{
		Match: retrieval.Match{ChunkID: "c1", DocumentID: "d1", Content: "Article 505", Language: "fr", Score: 0.8},
	}}

	resp, err := f.svc.Ask(context.Background(), &ChatRequest{
		Question:    "ما هي عقوبة السرقة؟",
		ClientToken: strPtr("anon-1"),
	})
	require.NoError(t, err)
	assert.Equal(t, "ar", resp.Language)

	// 检索不按查询语言过滤，领域过滤保留
	assert.Equal(t, "", f.retriever.lastOpts.Language)
	assert.Equal(t, "penal_law", f.retriever.lastOpts.Domain)

	// 匿名身份也要入统计
	require.Len(t, f.analytics.records, 1)
	require.NotNil(t, f.analytics.records[0].ClientToken)
	assert.Equal(t, "anon-1", *f.analytics.records[0].ClientToken)
}

func TestChatService_VoiceFlagPersisted(t *testing.T) {
	f := newChatFixture()

	_, err := f.svc.Ask(context.Background(), &ChatRequest{
		Question:  "ما هي عقوبة السرقة؟",
		UserID:    strPtr("user-1"),
		VoiceUsed: true,
	})
	require.NoError(t, err)

	require.Len(t, f.conversations.persisted, 1)
	assert.True(t, f.conversations.persisted[0].VoiceUsed)
	require.Len(t, f.analytics.records, 1)
	assert.True(t, f.analytics.records[0].VoiceUsed)
}

func TestChatService_IdentityMissing(t *testing.T) {
	f := newChatFixture()

	_, err := f.svc.Ask(context.Background(), &ChatRequest{Question: "ما هي عقوبة السرقة؟"})
	require.Error(t, err)
	appErr := apperrors.GetAppError(err)
	require.NotNil(t, appErr)
	assert.Equal(t, apperrors.ErrCodeIdentityMissing, appErr.Code)

	// 身份校验失败不消耗配额也不记统计
	assert.Equal(t, 0, f.quota.calls)
	assert.Empty(t, f.analytics.records)
}

func TestChatService_EmptyQuestion(t *testing.T) {
	f := newChatFixture()

	_, err := f.svc.Ask(context.Background(), &ChatRequest{
		Question: "   ",
		UserID:   strPtr("user-1"),
	})
	require.Error(t, err)
	assert.Equal(t, 0, f.quota.calls)
}

func TestChatService_QuotaExceeded(t *testing.T) {
	f := newChatFixture()
	f.quota.err = apperrors.NewQuotaExceededError(5)

	_, err := f.svc.Ask(context.Background(), &ChatRequest{
		Question:    "Quelle est la peine pour le vol?",
		ClientToken: strPtr("anon-1"),
	})
	require.Error(t, err)
	appErr := apperrors.GetAppError(err)
	require.NotNil(t, appErr)
	assert.Equal(t, apperrors.ErrCodeLimitReached, appErr.Code)

	// 配额拒绝发生在统计之前
	assert.Equal(t, 0, f.retriever.calls)
	assert.Empty(t, f.analytics.records)
}

func TestChatService_ConversationNotFound(t *testing.T) {
	f := newChatFixture()
	f.conversations.resolveErr = apperrors.NewConversationNotFoundError()

	_, err := f.svc.Ask(context.Background(), &ChatRequest{
		Question:       "ما هي عقوبة السرقة؟",
		UserID:         strPtr("user-1"),
		ConversationID: strPtr("someone-elses"),
	})
	require.Error(t, err)
	appErr := apperrors.GetAppError(err)
	require.NotNil(t, appErr)
	assert.Equal(t, apperrors.ErrCodeConversationNotFound, appErr.Code)

	// 归属校验先于配额占用
	assert.Equal(t, 0, f.quota.calls)
	assert.Empty(t, f.analytics.records)
}

func TestChatService_GenerationFailureRecordsAnalytics(t *testing.T) {
	f := newChatFixture()
	f.generator.err = apperrors.NewGenerationError(assert.AnError)

	_, err := f.svc.Ask(context.Background(), &ChatRequest{
		Question: "ما هي عقوبة السرقة؟",
		UserID:   strPtr("user-1"),
	})
	require.Error(t, err)

	// 配额占用后的失败也要入统计
	require.Len(t, f.analytics.records, 1)
	assert.False(t, f.analytics.records[0].Successful)
	assert.Empty(t, f.conversations.persisted)
}

func TestChatService_PersistFailureRecordsAnalytics(t *testing.T) {
	f := newChatFixture()
	f.conversations.persistErr = apperrors.NewDatabaseError(assert.AnError)

	_, err := f.svc.Ask(context.Background(), &ChatRequest{
		Question: "Quelle est la peine pour le vol?",
		UserID:   strPtr("user-1"),
	})
	require.Error(t, err)
	appErr := apperrors.GetAppError(err)
	require.NotNil(t, appErr)
	assert.Equal(t, apperrors.ErrCodeDatabaseError, appErr.Code)

	require.Len(t, f.analytics.records, 1)
	assert.False(t, f.analytics.records[0].Successful)
	assert.Equal(t, "fr", f.analytics.records[0].Language)
}

func TestChatService_LanguageDetectedWhenMissing(t *testing.T) {
	f := newChatFixture()

	resp, err := f.svc.Ask(context.Background(), &ChatRequest{
		Question: "Quelle est la procédure de divorce?",
		UserID:   strPtr("user-1"),
	})
	require.NoError(t, err)
	assert.Equal(t, "fr", resp.Language)
}
