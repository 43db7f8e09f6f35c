// Package outbox 实现事务性 Outbox 模式：领域事件与业务数据同事务落库，由后台循环转发到 Kafka
package outbox

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/wyfcoding/storefront/pkg/db"
	"github.com/wyfcoding/storefront/pkg/logger"
	"github.com/wyfcoding/storefront/pkg/mq"
)

// Message Outbox 消息记录
type Message struct {
	ID        string    `gorm:"column:id;type:varchar(36);primaryKey"`
	Topic     string    `gorm:"column:topic;type:varchar(100);index;not null"`
	EventKey  string    `gorm:"column:event_key;type:varchar(100)"`
	EventType string    `gorm:"column:event_type;type:varchar(100);index;not null"`
	Payload   string    `gorm:"column:payload;type:text;not null"`
	Status    string    `gorm:"column:status;type:varchar(20);index;not null;default:'pending'"`
	CreatedAt time.Time `gorm:"index"`
	UpdatedAt time.Time
}

// TableName 指定表名
func (Message) TableName() string {
	return "outbox_messages"
}

const (
	statusPending = "pending"
	statusSent    = "sent"
)

// Manager 管理 Outbox 消息的写入与转发
// Publish 从 context 中取调用方事务，使事件与业务写入同事务提交
type Manager struct {
	db *gorm.DB
}

// NewManager 创建 Outbox 管理器
func NewManager(database *gorm.DB) *Manager {
	return &Manager{db: database}
}

// Publish 将事件写入 Outbox 表
// 事件类型取 payload 的动态类型名，由调用方保证稳定
func (m *Manager) Publish(ctx context.Context, topic string, key string, event any) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	msg := Message{
		ID:        uuid.New().String(),
		Topic:     topic,
		EventKey:  key,
		EventType: eventTypeName(event),
		Payload:   string(payload),
		Status:    statusPending,
	}

	return db.TxFromContext(ctx, m.db).Create(&msg).Error
}

// Relay 周期性地将待发送消息转发到 Kafka，直到 context 取消
func (m *Manager) Relay(ctx context.Context, producer *mq.KafkaProducer, interval time.Duration, batchSize int) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := m.relayBatch(ctx, producer, batchSize); err != nil {
				logger.Error(ctx, "Outbox relay batch failed", "error", err)
			}
		}
	}
}

// relayBatch 转发一批待发送消息
func (m *Manager) relayBatch(ctx context.Context, producer *mq.KafkaProducer, batchSize int) error {
	var messages []Message

	if err := m.db.WithContext(ctx).
		Where("status = ?", statusPending).
		Order("created_at ASC").
		Limit(batchSize).
		Find(&messages).Error; err != nil {
		return err
	}

	for _, msg := range messages {
		if err := producer.SendRaw(ctx, msg.Topic, msg.EventKey, []byte(msg.Payload)); err != nil {
			// 发送失败保持 pending，下一轮重试
			return err
		}

		if err := m.db.WithContext(ctx).Model(&Message{}).
			Where("id = ?", msg.ID).
			Update("status", statusSent).Error; err != nil {
			return err
		}
	}

	return nil
}

// CleanupSent 删除已发送且早于给定时间的消息
func (m *Manager) CleanupSent(ctx context.Context, before time.Time) error {
	return m.db.WithContext(ctx).
		Where("status = ? AND updated_at < ?", statusSent, before).
		Delete(&Message{}).Error
}

// eventTypeName 返回事件的类型名
func eventTypeName(event any) string {
	type named interface {
		EventName() string
	}
	if n, ok := event.(named); ok {
		return n.EventName()
	}
	return "unknown"
}
