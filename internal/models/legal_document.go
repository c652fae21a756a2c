package models

import (
	"time"
)

// LegalDocument 法律文献表（语料由采集管道写入，服务端只读）
type LegalDocument struct {
	ID          string     `gorm:"primaryKey;column:id;size:36" json:"id"`
	Title       string     `gorm:"column:title;size:500" json:"title"`
	TitleAr     string     `gorm:"column:title_ar;size:500" json:"title_ar"`
	Domain      string     `gorm:"column:domain;size:50;index" json:"domain"`
	Language    string     `gorm:"column:language;size:8" json:"language"`
	OfficialRef string     `gorm:"column:official_ref;size:255" json:"official_ref"`
	Metadata    string     `gorm:"type:jsonb;column:metadata" json:"metadata,omitempty"`
	PublishedAt *time.Time `gorm:"column:published_at" json:"published_at,omitempty"`
	CreatedAt   time.Time  `gorm:"column:created_at;not null" json:"created_at"`
	UpdatedAt   time.Time  `gorm:"column:updated_at" json:"updated_at"`

	Chunks []DocumentChunk `gorm:"foreignKey:DocumentID" json:"chunks,omitempty"`
}

func (LegalDocument) TableName() string {
	return "legal_documents"
}

// DocumentChunk 法律文献分块表，embedding以JSON文本存储
type DocumentChunk struct {
	ID            string    `gorm:"primaryKey;column:id;size:36" json:"id"`
	DocumentID    string    `gorm:"column:document_id;size:36;not null;index" json:"document_id"`
	Content       string    `gorm:"type:text;not null" json:"content"`
	ArticleNumber *string   `gorm:"column:article_number;size:50" json:"article_number,omitempty"`
	Language      string    `gorm:"column:language;size:8" json:"language"`
	ChunkIndex    int       `gorm:"column:chunk_index;not null" json:"chunk_index"`
	Embedding     string    `gorm:"type:json;column:embedding" json:"-"`
	Metadata      string    `gorm:"type:json;column:metadata" json:"metadata,omitempty"`
	CreatedAt     time.Time `gorm:"column:created_at;not null" json:"created_at"`
}

func (DocumentChunk) TableName() string {
	return "document_chunks"
}
