package model

import "time"

// Like 点赞，(user_id, post_id) 联合主键保证唯一
type Like struct {
	UserID  uint      `gorm:"primaryKey;autoIncrement:false" json:"userId"`
	PostID  uint      `gorm:"primaryKey;autoIncrement:false;index" json:"postId"`
	LikedAt time.Time `gorm:"not null" json:"likedAt"`
}
