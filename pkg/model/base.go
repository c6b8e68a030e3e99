package model

import (
	"time"
)

// BaseModel 基础模型，自增主键
// 不带 DeletedAt：社交数据采用硬删除，级联清理后不允许残留引用
type BaseModel struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
