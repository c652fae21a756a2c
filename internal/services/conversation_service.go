package services

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	apperrors "github.com/mo7ami/backend-go/internal/errors"
	"github.com/mo7ami/backend-go/internal/generation"
	"github.com/mo7ami/backend-go/internal/models"
)

const autoTitleMaxRunes = 80

// ConversationService 对话持久化服务
type ConversationService struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewConversationService 创建对话服务
func NewConversationService(db *gorm.DB, logger *zap.Logger) *ConversationService {
	return &ConversationService{db: db, logger: logger}
}

// Resolution 对话归属解析结果
type Resolution struct {
	Conversation *models.Conversation
	Create       bool // 新对话，尚未入库
	Claim        bool // 匿名对话在登录后归属到用户
}

// Resolve 解析目标对话。无ID则准备新对话，有ID则校验归属。
// 归属他人的对话一律按不存在处理。
func (s *ConversationService) Resolve(ctx context.Context, conversationID, userID, clientToken *string, language string) (*Resolution, error) {
	if conversationID == nil || *conversationID == "" {
		conv := &models.Conversation{
			UserID:      userID,
			ClientToken: clientToken,
			Language:    language,
		}
		if userID != nil && *userID != "" {
			// 认证用户的对话不保留客户端令牌
			conv.ClientToken = nil
		}
		return &Resolution{Conversation: conv, Create: true}, nil
	}

	var conv models.Conversation
	err := s.db.WithContext(ctx).Where("id = ?", *conversationID).First(&conv).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.NewConversationNotFoundError()
	}
	if err != nil {
		return nil, apperrors.NewDatabaseError(err)
	}

	if userID != nil && *userID != "" {
		if conv.UserID != nil && *conv.UserID == *userID {
			return &Resolution{Conversation: &conv}, nil
		}
		// 匿名对话由同一客户端发起，登录后归属到该用户
		if conv.UserID == nil && clientToken != nil && conv.ClientToken != nil && *conv.ClientToken == *clientToken {
			conv.UserID = userID
			conv.ClientToken = nil
			return &Resolution{Conversation: &conv, Claim: true}, nil
		}
		return nil, apperrors.NewConversationNotFoundError()
	}

	if conv.UserID == nil && conv.ClientToken != nil && clientToken != nil && *conv.ClientToken == *clientToken {
		return &Resolution{Conversation: &conv}, nil
	}
	return nil, apperrors.NewConversationNotFoundError()
}

// Turn 一轮问答的持久化内容
type Turn struct {
	Question  string
	Answer    string
	Language  string
	VoiceUsed bool
	Citations []generation.Citation
}

// Persist 在单个事务中写入对话和两条消息
func (s *ConversationService) Persist(ctx context.Context, res *Resolution, turn *Turn) error {
	citationsJSON, err := json.Marshal(turn.Citations)
	if err != nil {
		return apperrors.NewDatabaseError(err)
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		conv := res.Conversation

		if res.Create {
			conv.Title = autoTitle(turn.Question)
			if err := tx.Create(conv).Error; err != nil {
				return err
			}
		} else {
			updates := map[string]interface{}{"updated_at": time.Now()}
			if res.Claim {
				updates["user_id"] = conv.UserID
				updates["client_token"] = nil
			}
			if err := tx.Model(&models.Conversation{}).Where("id = ?", conv.ID).Updates(updates).Error; err != nil {
				return err
			}
		}

		userMsg := &models.Message{
			ConversationID: conv.ID,
			Role:           "user",
			Content:        turn.Question,
			Language:       turn.Language,
			VoiceUsed:      turn.VoiceUsed,
		}
		if err := tx.Create(userMsg).Error; err != nil {
			return err
		}

		asstMsg := &models.Message{
			ConversationID: conv.ID,
			Role:           "assistant",
			Content:        turn.Answer,
			Language:       turn.Language,
			Citations:      string(citationsJSON),
		}
		return tx.Create(asstMsg).Error
	})
	if err != nil {
		s.logger.Error("failed to persist conversation turn", zap.Error(err))
		return apperrors.NewDatabaseError(err)
	}
	return nil
}

// autoTitle 取首条用户消息的前若干字符作为标题
func autoTitle(question string) string {
	runes := []rune(question)
	if len(runes) <= autoTitleMaxRunes {
		return question
	}
	return string(runes[:autoTitleMaxRunes])
}

// ConversationSummary 对话列表项
type ConversationSummary struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Language     string    `json:"language"`
	MessageCount int64     `json:"message_count"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// ListConversations 按身份列出对话，最近更新在前
func (s *ConversationService) ListConversations(ctx context.Context, userID, clientToken *string, limit int) ([]ConversationSummary, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	query := s.db.WithContext(ctx).Model(&models.Conversation{})
	if userID != nil && *userID != "" {
		query = query.Where("user_id = ?", *userID)
	} else {
		query = query.Where("user_id IS NULL AND client_token = ?", *clientToken)
	}

	var convs []models.Conversation
	if err := query.Order("updated_at DESC").Limit(limit).Find(&convs).Error; err != nil {
		return nil, apperrors.NewDatabaseError(err)
	}

	summaries := make([]ConversationSummary, 0, len(convs))
	for _, conv := range convs {
		var count int64
		if err := s.db.WithContext(ctx).Model(&models.Message{}).Where("conversation_id = ?", conv.ID).Count(&count).Error; err != nil {
			return nil, apperrors.NewDatabaseError(err)
		}
		summaries = append(summaries, ConversationSummary{
			ID:           conv.ID,
			Title:        conv.Title,
			Language:     conv.Language,
			MessageCount: count,
			CreatedAt:    conv.CreatedAt,
			UpdatedAt:    conv.UpdatedAt,
		})
	}
	return summaries, nil
}

// MessageView 消息视图
type MessageView struct {
	ID        string                `json:"id"`
	Role      string                `json:"role"`
	Content   string                `json:"content"`
	Language  string                `json:"language"`
	VoiceUsed bool                  `json:"voice_used"`
	Citations []generation.Citation `json:"citations,omitempty"`
	CreatedAt time.Time             `json:"created_at"`
}

// ConversationDetail 对话详情
type ConversationDetail struct {
	ID        string        `json:"id"`
	Title     string        `json:"title"`
	Language  string        `json:"language"`
	Messages  []MessageView `json:"messages"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}

// GetConversation 获取对话及全部消息，归属校验同Resolve
func (s *ConversationService) GetConversation(ctx context.Context, conversationID string, userID, clientToken *string) (*ConversationDetail, error) {
	res, err := s.Resolve(ctx, &conversationID, userID, clientToken, "")
	if err != nil {
		return nil, err
	}
	conv := res.Conversation

	var messages []models.Message
	if err := s.db.WithContext(ctx).Where("conversation_id = ?", conv.ID).Order("created_at ASC").Find(&messages).Error; err != nil {
		return nil, apperrors.NewDatabaseError(err)
	}

	views := make([]MessageView, 0, len(messages))
	for _, msg := range messages {
		view := MessageView{
			ID:        msg.ID,
			Role:      msg.Role,
			Content:   msg.Content,
			Language:  msg.Language,
			VoiceUsed: msg.VoiceUsed,
			CreatedAt: msg.CreatedAt,
		}
		if msg.Citations != "" {
			if err := json.Unmarshal([]byte(msg.Citations), &view.Citations); err != nil {
				s.logger.Warn("failed to decode stored citations",
					zap.String("message_id", msg.ID), zap.Error(err))
			}
		}
		views = append(views, view)
	}

	return &ConversationDetail{
		ID:        conv.ID,
		Title:     conv.Title,
		Language:  conv.Language,
		Messages:  views,
		CreatedAt: conv.CreatedAt,
		UpdatedAt: conv.UpdatedAt,
	}, nil
}
