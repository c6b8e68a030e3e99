package model

import "time"

// Follow 关注关系 follower -> followee
// 联合主键防止重复边，数据库 CHECK 约束禁止自关注
type Follow struct {
	FollowerID uint      `gorm:"primaryKey;autoIncrement:false" json:"followerId"`
	FolloweeID uint      `gorm:"primaryKey;autoIncrement:false;index" json:"followeeId"`
	CreatedAt  time.Time `json:"createdAt"`
}
