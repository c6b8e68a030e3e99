package model

import (
	"fmt"
	"strings"
	"time"
	"vibelog/internal/pkg/apperr"
	baseModel "vibelog/pkg/model"
)

// Status 举报状态
type Status string

const (
	StatusPending  Status = "PENDING"
	StatusReviewed Status = "REVIEWED"
	StatusResolved Status = "RESOLVED"
)

var statusRank = map[Status]int{
	StatusPending:  0,
	StatusReviewed: 1,
	StatusResolved: 2,
}

// ParseStatus 大小写不敏感
func ParseStatus(s string) (Status, error) {
	st := Status(strings.ToUpper(strings.TrimSpace(s)))
	if _, ok := statusRank[st]; !ok {
		return "", apperr.Validation("unknown report status %q", s)
	}
	return st, nil
}

// CanTransitionTo 状态只能前进或保持不变
func (s Status) CanTransitionTo(next Status) bool {
	from, ok := statusRank[s]
	if !ok {
		return false
	}
	to, ok := statusRank[next]
	if !ok {
		return false
	}
	return to >= from
}

// Report 举报，PostID 与 CommentID 恰有一个非空
type Report struct {
	baseModel.BaseModel
	ReporterID uint      `gorm:"index;not null" json:"reporterId"`
	PostID     *uint     `gorm:"index" json:"postId,omitempty"`
	CommentID  *uint     `gorm:"index" json:"commentId,omitempty"`
	Reason     string    `gorm:"not null" json:"reason"`
	Status     Status    `gorm:"type:varchar(20);not null;default:'PENDING';index" json:"status"`
	ReportedAt time.Time `gorm:"not null" json:"reportedAt"`
}

// Target 举报对象
type Target struct {
	PostID    *uint `json:"postId"`
	CommentID *uint `json:"commentId"`
}

func PostTarget(id uint) Target    { return Target{PostID: &id} }
func CommentTarget(id uint) Target { return Target{CommentID: &id} }

// Validate 举报对象必须是文章或评论之一
func (t Target) Validate() error {
	if (t.PostID == nil) == (t.CommentID == nil) {
		return apperr.Validation("a report must target exactly one of post or comment")
	}
	return nil
}

// NewReport 校验后构造 PENDING 状态的举报
func NewReport(reporterID uint, target Target, reason string, now time.Time) (*Report, error) {
	if err := target.Validate(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(reason) == "" {
		return nil, apperr.Validation("report reason must not be blank")
	}
	return &Report{
		ReporterID: reporterID,
		PostID:     target.PostID,
		CommentID:  target.CommentID,
		Reason:     reason,
		Status:     StatusPending,
		ReportedAt: now,
	}, nil
}

// TargetLabel 如 "post #10"、"comment #5"
func (r *Report) TargetLabel() string {
	if r.PostID != nil {
		return fmt.Sprintf("post #%d", *r.PostID)
	}
	if r.CommentID != nil {
		return fmt.Sprintf("comment #%d", *r.CommentID)
	}
	return "unknown target"
}
