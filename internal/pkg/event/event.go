// Package event 进程内领域事件：动作组件发布，通知分发器订阅
package event

// Tag 事件标签
type Tag string

const (
	TagLike           Tag = "LIKE"
	TagComment        Tag = "COMMENT"
	TagFollow         Tag = "FOLLOW"
	TagReblog         Tag = "REBLOG"
	TagReportResolved Tag = "REPORT_RESOLVED"
)

// Event 不可变、不持久化的领域事件
// 携带渲染通知所需的最少 ID 与用户名，订阅方无需回查存储
type Event interface {
	Tag() Tag
}

// LikeEvent 点赞（仅在非作者点赞时发布）
type LikeEvent struct {
	PostID         uint
	LikerID        uint
	LikerUsername  string
	AuthorID       uint
	AuthorUsername string
}

func (LikeEvent) Tag() Tag { return TagLike }

// CommentEvent 评论
type CommentEvent struct {
	PostID            uint
	CommentID         uint
	CommenterID       uint
	CommenterUsername string
	AuthorID          uint
	AuthorUsername    string
}

func (CommentEvent) Tag() Tag { return TagComment }

// FollowEvent 关注，接收方为被关注者
type FollowEvent struct {
	FollowerID       uint
	FollowerUsername string
	FolloweeID       uint
	FolloweeUsername string
}

func (FollowEvent) Tag() Tag { return TagFollow }

// ReblogEvent 转发，接收方为原帖作者
type ReblogEvent struct {
	OriginalPostID         uint
	ReblogPostID           uint
	RebloggerID            uint
	RebloggerUsername      string
	OriginalAuthorID       uint
	OriginalAuthorUsername string
}

func (ReblogEvent) Tag() Tag { return TagReblog }

// ReportResolvedEvent 举报处理完成，接收方为举报人
// PostID 与 CommentID 恰有一个非空
type ReportResolvedEvent struct {
	ReportID         uint
	ReporterID       uint
	ReporterUsername string
	PostID           *uint
	CommentID        *uint
	Outcome          string
}

func (ReportResolvedEvent) Tag() Tag { return TagReportResolved }
