package services

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/mo7ami/backend-go/internal/config"
	apperrors "github.com/mo7ami/backend-go/internal/errors"
	"github.com/mo7ami/backend-go/internal/metrics"
)

// QuotaCounter 配额计数器，按身份和UTC日期原子递增
type QuotaCounter interface {
	// Admit 尝试占用一次配额。返回当前计数和是否放行。
	Admit(ctx context.Context, identity, day string, limit int) (int, bool, error)
	// Count 查询当前计数，不修改。
	Count(ctx context.Context, identity, day string) (int, error)
}

// RedisQuotaCounter 基于Redis INCR的计数器
type RedisQuotaCounter struct {
	client *redis.Client
}

// NewRedisQuotaCounter 创建Redis配额计数器
func NewRedisQuotaCounter(client *redis.Client) *RedisQuotaCounter {
	return &RedisQuotaCounter{client: client}
}

func quotaKey(identity, day string) string {
	return fmt.Sprintf("quota:%s:%s", identity, day)
}

// Admit INCR后超限则回滚DECR，键在UTC次日零点过期
func (c *RedisQuotaCounter) Admit(ctx context.Context, identity, day string, limit int) (int, bool, error) {
	key := quotaKey(identity, day)

	count, err := c.client.Incr(ctx, key).Result()
	if err != nil {
		return 0, false, fmt.Errorf("failed to increment quota counter: %w", err)
	}

	if count == 1 {
		// 新键，设置到UTC次日零点的过期时间
		now := time.Now().UTC()
		midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC).Add(24 * time.Hour)
		c.client.ExpireAt(ctx, key, midnight)
	}

	if int(count) > limit {
		// 超限，回滚本次递增
		if err := c.client.Decr(ctx, key).Err(); err != nil {
			return int(count), false, fmt.Errorf("failed to roll back quota counter: %w", err)
		}
		return limit, false, nil
	}

	return int(count), true, nil
}

// Count 查询当前计数
func (c *RedisQuotaCounter) Count(ctx context.Context, identity, day string) (int, error) {
	count, err := c.client.Get(ctx, quotaKey(identity, day)).Int()
	if err == redis.Nil {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read quota counter: %w", err)
	}
	return count, nil
}

// PostgresQuotaCounter 基于UPSERT的计数器，Redis不可用时的后备
type PostgresQuotaCounter struct {
	db *gorm.DB
}

// NewPostgresQuotaCounter 创建数据库配额计数器
func NewPostgresQuotaCounter(db *gorm.DB) *PostgresQuotaCounter {
	return &PostgresQuotaCounter{db: db}
}

// Admit 单条UPSERT语句完成检查和递增，并发安全
func (c *PostgresQuotaCounter) Admit(ctx context.Context, identity, day string, limit int) (int, bool, error) {
	var count int
	err := c.db.WithContext(ctx).Raw(
		`INSERT INTO quota_counters (identity, day, count, updated_at)
		 VALUES (?, ?, 1, NOW())
		 ON CONFLICT (identity, day)
		 DO UPDATE SET count = quota_counters.count + 1, updated_at = NOW()
		 WHERE quota_counters.count < ?
		 RETURNING count`,
		identity, day, limit,
	).Scan(&count).Error
	if err != nil {
		return 0, false, fmt.Errorf("failed to increment quota counter: %w", err)
	}

	if count == 0 {
		// WHERE条件不满足，没有行被更新，配额已满
		return limit, false, nil
	}

	return count, true, nil
}

// Count 查询当前计数
func (c *PostgresQuotaCounter) Count(ctx context.Context, identity, day string) (int, error) {
	var count int
	err := c.db.WithContext(ctx).Raw(
		`SELECT count FROM quota_counters WHERE identity = ? AND day = ?`,
		identity, day,
	).Scan(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to read quota counter: %w", err)
	}
	return count, nil
}

// QuotaService 每日提问配额服务
type QuotaService struct {
	counter QuotaCounter
	cfg     config.QuotaConfig
}

// NewQuotaService 创建配额服务
func NewQuotaService(counter QuotaCounter, cfg config.QuotaConfig) *QuotaService {
	return &QuotaService{counter: counter, cfg: cfg}
}

// QuotaStatus 配额状态
type QuotaStatus struct {
	Limit     int `json:"daily_limit"`
	Used      int `json:"used"`
	Remaining int `json:"remaining_questions"`
}

// identityKey 认证用户以用户ID计数，匿名用户以客户端令牌计数
func identityKey(userID, clientToken *string) string {
	if userID != nil && *userID != "" {
		return "u:" + *userID
	}
	return "t:" + *clientToken
}

func (s *QuotaService) limitFor(userID *string) int {
	if userID != nil && *userID != "" {
		return s.cfg.AuthenticatedDailyLimit
	}
	return s.cfg.AnonymousDailyLimit
}

func quotaDay() string {
	return time.Now().UTC().Format("2006-01-02")
}

// Admit 占用一次今日配额，超限返回429
func (s *QuotaService) Admit(ctx context.Context, userID, clientToken *string) (*QuotaStatus, error) {
	limit := s.limitFor(userID)
	identity := identityKey(userID, clientToken)

	count, admitted, err := s.counter.Admit(ctx, identity, quotaDay(), limit)
	if err != nil {
		return nil, apperrors.NewDatabaseError(err)
	}
	if !admitted {
		metrics.QuotaRejectionsTotal.Inc()
		return nil, apperrors.NewQuotaExceededError(limit)
	}

	return &QuotaStatus{
		Limit:     limit,
		Used:      count,
		Remaining: limit - count,
	}, nil
}

// Status 查询今日配额状态，不消耗
func (s *QuotaService) Status(ctx context.Context, userID, clientToken *string) (*QuotaStatus, error) {
	limit := s.limitFor(userID)
	identity := identityKey(userID, clientToken)

	count, err := s.counter.Count(ctx, identity, quotaDay())
	if err != nil {
		return nil, apperrors.NewDatabaseError(err)
	}
	if count > limit {
		count = limit
	}

	return &QuotaStatus{
		Limit:     limit,
		Used:      count,
		Remaining: limit - count,
	}, nil
}
