package kafka

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/IBM/sarama"
	"github.com/mo7ami/backend-go/internal/logger"
	"go.uber.org/zap"
)

// Producer Kafka生产者
type Producer struct {
	producer sarama.SyncProducer
	topic    string
}

// GetProducerInstance 获取底层sarama producer实例（用于扩展功能）
func (p *Producer) GetProducerInstance() sarama.SyncProducer {
	return p.producer
}

// ChatTurnEvent 问答轮次审计事件
type ChatTurnEvent struct {
	ConversationID string    `json:"conversation_id"`
	UserID         *string   `json:"user_id,omitempty"`
	ClientToken    *string   `json:"client_token,omitempty"`
	Question       string    `json:"question"`
	Language       string    `json:"language"`
	Domain         string    `json:"domain,omitempty"`
	ResponseTimeMs int       `json:"response_time_ms"`
	Successful     bool      `json:"successful"`
	VoiceUsed      bool      `json:"voice_used"`
	Timestamp      time.Time `json:"timestamp"`
}

var globalProducer *Producer

// InitProducer 初始化Kafka生产者
func InitProducer(brokers []string, topic string) error {
	config := sarama.NewConfig()
	config.Producer.Return.Successes = true
	config.Producer.RequiredAcks = sarama.WaitForAll
	config.Producer.Retry.Max = 5
	config.Producer.Timeout = 10 * time.Second

	producer, err := sarama.NewSyncProducer(brokers, config)
	if err != nil {
		return fmt.Errorf("创建Kafka生产者失败: %w", err)
	}

	globalProducer = &Producer{
		producer: producer,
		topic:    topic,
	}

	logger.Info("Kafka生产者初始化成功", zap.Strings("brokers", brokers), zap.String("topic", topic))
	return nil
}

// GetProducer 获取全局生产者实例
func GetProducer() *Producer {
	return globalProducer
}

// SendEvent 发送审计事件到Kafka
func (p *Producer) SendEvent(event *ChatTurnEvent) error {
	if p == nil || p.producer == nil {
		return fmt.Errorf("Kafka生产者未初始化")
	}

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("序列化事件失败: %w", err)
	}

	kafkaMsg := &sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.StringEncoder(event.ConversationID),
		Value: sarama.ByteEncoder(data),
		Headers: []sarama.RecordHeader{
			{
				Key:   []byte("language"),
				Value: []byte(event.Language),
			},
		},
	}

	partition, offset, err := p.producer.SendMessage(kafkaMsg)
	if err != nil {
		logger.Error("发送Kafka消息失败", zap.Error(err))
		return fmt.Errorf("发送消息失败: %w", err)
	}

	logger.Debug("Kafka消息发送成功",
		zap.Int32("partition", partition),
		zap.Int64("offset", offset),
		zap.String("conversation_id", event.ConversationID))

	return nil
}

// Close 关闭生产者
func (p *Producer) Close() error {
	if p != nil && p.producer != nil {
		return p.producer.Close()
	}
	return nil
}

// SendChatTurn 发送问答轮次事件（便捷方法）
func SendChatTurn(event *ChatTurnEvent) error {
	producer := GetProducer()
	if producer == nil {
		// 如果Kafka未配置，静默失败（不影响主流程）
		logger.Warn("Kafka生产者未初始化，跳过消息发送")
		return nil
	}

	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	return producer.SendEvent(event)
}
