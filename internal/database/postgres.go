package database

import (
	"fmt"
	"log"

	"github.com/mo7ami/backend-go/internal/config"
	"github.com/mo7ami/backend-go/internal/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

func InitDB() (*gorm.DB, error) {
	cfg := config.AppConfig
	if cfg == nil {
		return nil, fmt.Errorf("config not loaded")
	}

	db, err := gorm.Open(postgres.Open(cfg.Database.URL), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// 获取底层的sql.DB设置连接池
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}

	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)

	// 自动迁移会话相关表
	if err := autoMigrate(db); err != nil {
		log.Printf("⚠️  Database migration warning: %v", err)
	}

	DB = db
	log.Println("✅ Database connected successfully")
	return db, nil
}

// autoMigrate 自动迁移会话相关表
// 法律语料表（legal_documents、document_chunks）由采集管道维护，不在此迁移
func autoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&models.Conversation{}); err != nil {
		log.Printf("⚠️  Failed to migrate conversations: %v", err)
	}
	if err := db.AutoMigrate(&models.Message{}); err != nil {
		log.Printf("⚠️  Failed to migrate messages: %v", err)
	}
	if err := db.AutoMigrate(&models.QueryAnalytics{}); err != nil {
		log.Printf("⚠️  Failed to migrate query_analytics: %v", err)
	}
	if err := db.AutoMigrate(&models.QuotaCounter{}); err != nil {
		log.Printf("⚠️  Failed to migrate quota_counters: %v", err)
	}
	return nil
}

func CloseDB() error {
	if DB == nil {
		return nil
	}

	sqlDB, err := DB.DB()
	if err != nil {
		return err
	}

	return sqlDB.Close()
}
