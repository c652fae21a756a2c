package services

import (
	"context"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	apperrors "github.com/mo7ami/backend-go/internal/errors"
	"github.com/mo7ami/backend-go/internal/generation"
	"github.com/mo7ami/backend-go/internal/models"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	sqlDB, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{
		Conn:                 sqlDB,
		PreferSimpleProtocol: true,
	}), &gorm.Config{SkipDefaultTransaction: true})
	require.NoError(t, err)
	return db, mock
}

func conversationRows(id string, userID, clientToken *string) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "user_id", "client_token", "title", "language"}).
		AddRow(id, userID, clientToken, "عقوبة السرقة", "ar")
}

func TestConversationService_ResolveNewConversation(t *testing.T) {
	db, _ := newMockDB(t)
	svc := NewConversationService(db, zap.NewNop())

	// 无对话ID时准备新对话，不访问数据库
	res, err := svc.Resolve(context.Background(), nil, strPtr("user-1"), strPtr("tok-1"), "ar")
	require.NoError(t, err)
	assert.True(t, res.Create)
	assert.False(t, res.Claim)
	assert.Equal(t, "user-1", *res.Conversation.UserID)
	// 认证用户的对话不保留客户端令牌
	assert.Nil(t, res.Conversation.ClientToken)
	assert.Equal(t, "ar", res.Conversation.Language)
}

func TestConversationService_ResolveNewAnonymous(t *testing.T) {
	db, _ := newMockDB(t)
	svc := NewConversationService(db, zap.NewNop())

	res, err := svc.Resolve(context.Background(), nil, nil, strPtr("tok-1"), "fr")
	require.NoError(t, err)
	assert.True(t, res.Create)
	assert.Nil(t, res.Conversation.UserID)
	assert.Equal(t, "tok-1", *res.Conversation.ClientToken)
}

func TestConversationService_ResolveNotFound(t *testing.T) {
	db, mock := newMockDB(t)
	svc := NewConversationService(db, zap.NewNop())

	mock.ExpectQuery(`SELECT (.+) FROM "conversations"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := svc.Resolve(context.Background(), strPtr("missing"), strPtr("user-1"), nil, "ar")
	require.Error(t, err)
	appErr := apperrors.GetAppError(err)
	require.NotNil(t, appErr)
	assert.Equal(t, apperrors.ErrCodeConversationNotFound, appErr.Code)
	assert.Equal(t, 404, appErr.HTTPCode)
}

func TestConversationService_ResolveOwnedByAnotherUser(t *testing.T) {
	db, mock := newMockDB(t)
	svc := NewConversationService(db, zap.NewNop())

	mock.ExpectQuery(`SELECT (.+) FROM "conversations"`).
		WillReturnRows(conversationRows("conv-1", strPtr("other-user"), nil))

	// 他人对话按不存在处理
	_, err := svc.Resolve(context.Background(), strPtr("conv-1"), strPtr("user-1"), nil, "ar")
	require.Error(t, err)
	appErr := apperrors.GetAppError(err)
	require.NotNil(t, appErr)
	assert.Equal(t, apperrors.ErrCodeConversationNotFound, appErr.Code)
}

func TestConversationService_ResolveOwnConversation(t *testing.T) {
	db, mock := newMockDB(t)
	svc := NewConversationService(db, zap.NewNop())

	mock.ExpectQuery(`SELECT (.+) FROM "conversations"`).
		WillReturnRows(conversationRows("conv-1", strPtr("user-1"), nil))

	res, err := svc.Resolve(context.Background(), strPtr("conv-1"), strPtr("user-1"), nil, "ar")
	require.NoError(t, err)
	assert.False(t, res.Create)
	assert.False(t, res.Claim)
	assert.Equal(t, "conv-1", res.Conversation.ID)
}

func TestConversationService_ResolveClaimsAnonymousConversation(t *testing.T) {
	db, mock := newMockDB(t)
	svc := NewConversationService(db, zap.NewNop())

	mock.ExpectQuery(`SELECT (.+) FROM "conversations"`).
		WillReturnRows(conversationRows("conv-1", nil, strPtr("tok-1")))

	// 登录后同一客户端的匿名对话归属到该用户
	res, err := svc.Resolve(context.Background(), strPtr("conv-1"), strPtr("user-1"), strPtr("tok-1"), "ar")
	require.NoError(t, err)
	assert.True(t, res.Claim)
	assert.Equal(t, "user-1", *res.Conversation.UserID)
	assert.Nil(t, res.Conversation.ClientToken)
}

func TestConversationService_ResolveAnonymousTokenMismatch(t *testing.T) {
	db, mock := newMockDB(t)
	svc := NewConversationService(db, zap.NewNop())

	mock.ExpectQuery(`SELECT (.+) FROM "conversations"`).
		WillReturnRows(conversationRows("conv-1", nil, strPtr("tok-1")))

	_, err := svc.Resolve(context.Background(), strPtr("conv-1"), nil, strPtr("tok-2"), "ar")
	require.Error(t, err)
	appErr := apperrors.GetAppError(err)
	require.NotNil(t, appErr)
	assert.Equal(t, apperrors.ErrCodeConversationNotFound, appErr.Code)
}

func TestConversationService_PersistPropagatesDatabaseError(t *testing.T) {
	db, mock := newMockDB(t)
	svc := NewConversationService(db, zap.NewNop())

	mock.ExpectBegin().WillReturnError(assert.AnError)

	res := &Resolution{Conversation: &models.Conversation{Language: "ar"}, Create: true}
	err := svc.Persist(context.Background(), res, &Turn{
		Question:  "ما هي عقوبة السرقة؟",
		Answer:    "الفصل 505",
		Language:  "ar",
		Citations: []generation.Citation{},
	})
	require.Error(t, err)
	appErr := apperrors.GetAppError(err)
	require.NotNil(t, appErr)
	assert.Equal(t, apperrors.ErrCodeDatabaseError, appErr.Code)
}

func TestAutoTitle(t *testing.T) {
	assert.Equal(t, "سؤال قصير", autoTitle("سؤال قصير"))

	long := strings.Repeat("س", 120)
	title := autoTitle(long)
	assert.Equal(t, 80, len([]rune(title)))
}
