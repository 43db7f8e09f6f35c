// Package utils 提供雪花 ID、分页等通用工具
package utils

import (
	"sync"
	"time"
)

// SnowflakeID 雪花算法 ID 生成器，用于订单号/预约号
type SnowflakeID struct {
	mu        sync.Mutex
	timestamp int64
	sequence  int64
	nodeID    int64
}

// NewSnowflakeID 创建雪花 ID 生成器
func NewSnowflakeID(nodeID int64) *SnowflakeID {
	return &SnowflakeID{nodeID: nodeID & 0x3FF} // 10 bits
}

// Generate 生成雪花 ID
func (s *SnowflakeID) Generate() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UnixMilli()

	if now == s.timestamp {
		s.sequence = (s.sequence + 1) & 0xFFF // 12 bits
		if s.sequence == 0 {
			// 等待下一毫秒
			for now <= s.timestamp {
				now = time.Now().UnixMilli()
			}
		}
	} else {
		s.sequence = 0
	}

	s.timestamp = now

	// 组合 ID：timestamp(41 bits) + nodeID(10 bits) + sequence(12 bits)
	return (now << 22) | (s.nodeID << 12) | s.sequence
}

// Pagination 分页参数
type Pagination struct {
	Page     int   `json:"page"`
	PageSize int   `json:"page_size"`
	Total    int64 `json:"total"`
}

// NewPagination 创建分页参数，规范化非法输入
func NewPagination(page, pageSize int, total int64) *Pagination {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	return &Pagination{
		Page:     page,
		PageSize: pageSize,
		Total:    total,
	}
}

// Offset 计算偏移量
func (p *Pagination) Offset() int {
	return (p.Page - 1) * p.PageSize
}

// Limit 返回每页数量
func (p *Pagination) Limit() int {
	return p.PageSize
}
