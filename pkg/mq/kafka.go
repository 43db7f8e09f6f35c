// Package mq 提供 Kafka producer/consumer 通用实现，支持重试与批量发送
package mq

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/wyfcoding/storefront/pkg/logger"
)

// KafkaConfig Kafka 配置
type KafkaConfig struct {
	Brokers      []string
	GroupID      string
	MaxRetries   int
	RetryBackoff int
}

// KafkaProducer Kafka 生产者
type KafkaProducer struct {
	writer *kafka.Writer
	config KafkaConfig
}

// NewProducer 创建 Kafka 生产者
func NewProducer(cfg KafkaConfig) (*KafkaProducer, error) {
	if len(cfg.Brokers) == 0 {
		return nil, fmt.Errorf("kafka brokers are required")
	}

	writer := &kafka.Writer{
		Addr:                   kafka.TCP(cfg.Brokers...),
		AllowAutoTopicCreation: true,
		Compression:            kafka.Gzip,
		RequiredAcks:           kafka.RequireAll, // 等待所有副本确认
		MaxAttempts:            cfg.MaxRetries,
		WriteBackoffMin:        time.Duration(cfg.RetryBackoff) * time.Millisecond,
		WriteBackoffMax:        time.Duration(cfg.RetryBackoff*10) * time.Millisecond,
	}

	logger.Info(context.Background(), "Kafka producer created successfully", "brokers", cfg.Brokers)
	return &KafkaProducer{
		writer: writer,
		config: cfg,
	}, nil
}

// SendMessage 发送单条消息
func (kp *KafkaProducer) SendMessage(ctx context.Context, topic string, key string, value interface{}) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	return kp.SendRaw(ctx, topic, key, data)
}

// SendRaw 发送已序列化的消息
func (kp *KafkaProducer) SendRaw(ctx context.Context, topic string, key string, value []byte) error {
	msg := kafka.Message{
		Topic: topic,
		Key:   []byte(key),
		Value: value,
	}

	if err := kp.writer.WriteMessages(ctx, msg); err != nil {
		logger.Error(ctx, "Failed to send Kafka message",
			"topic", topic,
			"key", key,
			"error", err,
		)
		return err
	}

	logger.Debug(ctx, "Kafka message sent",
		"topic", topic,
		"key", key,
	)
	return nil
}

// Close 关闭生产者
func (kp *KafkaProducer) Close() error {
	return kp.writer.Close()
}

// MessageHandler 消息处理函数
type MessageHandler func(ctx context.Context, key, value []byte) error

// KafkaConsumer Kafka 消费者
type KafkaConsumer struct {
	reader *kafka.Reader
}

// NewConsumer 创建 Kafka 消费者
func NewConsumer(cfg KafkaConfig, topic string) (*KafkaConsumer, error) {
	if len(cfg.Brokers) == 0 {
		return nil, fmt.Errorf("kafka brokers are required")
	}

	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers: cfg.Brokers,
		GroupID: cfg.GroupID,
		Topic:   topic,
	})

	return &KafkaConsumer{reader: reader}, nil
}

// Consume 持续消费消息直到 context 取消
func (kc *KafkaConsumer) Consume(ctx context.Context, handler MessageHandler) error {
	for {
		msg, err := kc.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			logger.Error(ctx, "Failed to fetch Kafka message", "error", err)
			continue
		}

		if err := handler(ctx, msg.Key, msg.Value); err != nil {
			logger.Error(ctx, "Failed to handle Kafka message",
				"topic", msg.Topic,
				"offset", msg.Offset,
				"error", err,
			)
			continue
		}

		if err := kc.reader.CommitMessages(ctx, msg); err != nil {
			logger.Error(ctx, "Failed to commit Kafka message", "error", err)
		}
	}
}

// Close 关闭消费者
func (kc *KafkaConsumer) Close() error {
	return kc.reader.Close()
}
