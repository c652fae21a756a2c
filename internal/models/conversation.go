package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Conversation 对话表
type Conversation struct {
	ID          string    `gorm:"primaryKey;column:id;size:36" json:"id"`
	UserID      *string   `gorm:"column:user_id;size:36;index" json:"user_id,omitempty"`
	ClientToken *string   `gorm:"column:client_token;size:128;index" json:"client_token,omitempty"`
	Title       string    `gorm:"column:title;size:255" json:"title"`
	Language    string    `gorm:"column:language;size:8;not null;default:ar" json:"language"`
	CreatedAt   time.Time `gorm:"column:created_at;not null" json:"created_at"`
	UpdatedAt   time.Time `gorm:"column:updated_at" json:"updated_at"`

	Messages []Message `gorm:"foreignKey:ConversationID" json:"messages,omitempty"`
}

func (Conversation) TableName() string {
	return "conversations"
}

func (c *Conversation) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}

// Message 对话消息表
type Message struct {
	ID             string    `gorm:"primaryKey;column:id;size:36" json:"id"`
	ConversationID string    `gorm:"column:conversation_id;size:36;not null;index" json:"conversation_id"`
	Role           string    `gorm:"column:role;size:20;not null" json:"role"`
	Content        string    `gorm:"type:text;not null" json:"content"`
	Language       string    `gorm:"column:language;size:8;not null" json:"language"`
	Citations      string    `gorm:"type:jsonb;column:citations" json:"citations,omitempty"`
	VoiceUsed      bool      `gorm:"column:voice_used;not null;default:false" json:"voice_used"`
	CreatedAt      time.Time `gorm:"column:created_at;not null;index" json:"created_at"`
}

func (Message) TableName() string {
	return "messages"
}

func (m *Message) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	return nil
}

// QueryAnalytics 问答分析记录表
type QueryAnalytics struct {
	ID             string    `gorm:"primaryKey;column:id;size:36" json:"id"`
	UserID         *string   `gorm:"column:user_id;size:36;index" json:"user_id,omitempty"`
	ClientToken    *string   `gorm:"column:client_token;size:128;index" json:"client_token,omitempty"`
	Question       string    `gorm:"type:text;not null" json:"question"`
	Language       string    `gorm:"column:language;size:8;not null" json:"language"`
	Domain         *string   `gorm:"column:domain;size:50" json:"domain,omitempty"`
	ResponseTimeMs int       `gorm:"column:response_time_ms;not null" json:"response_time_ms"`
	Successful     bool      `gorm:"column:successful;not null" json:"successful"`
	VoiceUsed      bool      `gorm:"column:voice_used;not null;default:false" json:"voice_used"`
	CreatedAt      time.Time `gorm:"column:created_at;not null;index" json:"created_at"`
}

func (QueryAnalytics) TableName() string {
	return "query_analytics"
}

func (a *QueryAnalytics) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	return nil
}

// QuotaCounter 每日配额计数表（Redis不可用时的数据库后端）
type QuotaCounter struct {
	Identity  string    `gorm:"primaryKey;column:identity;size:150" json:"identity"`
	Day       string    `gorm:"primaryKey;column:day;size:10" json:"day"`
	Count     int       `gorm:"column:count;not null;default:0" json:"count"`
	UpdatedAt time.Time `gorm:"column:updated_at" json:"updated_at"`
}

func (QuotaCounter) TableName() string {
	return "quota_counters"
}
