package services

import (
	"context"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/mo7ami/backend-go/internal/models"
	"github.com/mo7ami/backend-go/internal/retrieval"
)

const analyticsQuestionMaxRunes = 500

// AnalyticsService 查询统计服务
type AnalyticsService struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewAnalyticsService 创建统计服务
func NewAnalyticsService(db *gorm.DB, logger *zap.Logger) *AnalyticsService {
	return &AnalyticsService{db: db, logger: logger}
}

// QueryRecord 单次查询的统计记录
type QueryRecord struct {
	UserID         *string
	ClientToken    *string
	Question       string
	Language       string
	Domain         string
	ResponseTimeMs int
	Successful     bool
	VoiceUsed      bool
}

// Record 写入一条查询记录。统计失败只记日志，不影响主流程。
func (s *AnalyticsService) Record(ctx context.Context, record *QueryRecord) {
	entry := &models.QueryAnalytics{
		UserID:         record.UserID,
		ClientToken:    record.ClientToken,
		Question:       truncateRunes(record.Question, analyticsQuestionMaxRunes),
		Language:       record.Language,
		ResponseTimeMs: record.ResponseTimeMs,
		Successful:     record.Successful,
		VoiceUsed:      record.VoiceUsed,
	}
	if record.Domain != "" {
		entry.Domain = &record.Domain
	}

	if err := s.db.WithContext(ctx).Create(entry).Error; err != nil {
		s.logger.Error("failed to record query analytics", zap.Error(err))
	}
}

// DomainStat 法律领域的查询分布
type DomainStat struct {
	Domain string `json:"domain"`
	Count  int64  `json:"count"`
}

// TopDomains 统计查询最多的法律领域
func (s *AnalyticsService) TopDomains(ctx context.Context, limit int) ([]DomainStat, error) {
	if limit <= 0 || limit > 50 {
		limit = 10
	}

	var stats []DomainStat
	err := s.db.WithContext(ctx).Model(&models.QueryAnalytics{}).
		Select("domain, COUNT(*) as count").
		Where("domain IS NOT NULL").
		Group("domain").
		Order("count DESC").
		Limit(limit).
		Scan(&stats).Error
	if err != nil {
		return nil, err
	}
	return stats, nil
}

// DetectDomain 从问题文本推断法律领域
func (s *AnalyticsService) DetectDomain(question string) string {
	return retrieval.DetectDomain(question)
}

func truncateRunes(text string, max int) string {
	runes := []rune(text)
	if len(runes) <= max {
		return text
	}
	return string(runes[:max])
}
