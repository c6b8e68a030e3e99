package model

import (
	"strings"
	"time"
	"vibelog/internal/pkg/apperr"
)

// Type 通知类型
type Type string

const (
	TypeLike    Type = "LIKE"
	TypeComment Type = "COMMENT"
	TypeFollow  Type = "FOLLOW"
	TypeReblog  Type = "REBLOG"
	TypeReport  Type = "REPORT"
)

// Notification 通知，只由分发器创建，只会被标记已读
type Notification struct {
	ID          uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Type        Type      `gorm:"type:varchar(20);not null" json:"type"`
	RecipientID uint      `gorm:"index:idx_notifications_recipient;not null" json:"recipientId"`
	Content     string    `gorm:"not null" json:"content"`
	Seen        bool      `gorm:"not null;default:false" json:"seen"`
	Timestamp   time.Time `gorm:"index:idx_notifications_recipient;not null" json:"timestamp"`
}

// NewNotification 构造未读通知
func NewNotification(t Type, recipientID uint, content string, now time.Time) (*Notification, error) {
	if recipientID == 0 {
		return nil, apperr.Validation("notification recipient is required")
	}
	if strings.TrimSpace(content) == "" {
		return nil, apperr.Validation("notification content must not be blank")
	}
	return &Notification{Type: t, RecipientID: recipientID, Content: content, Timestamp: now}, nil
}
