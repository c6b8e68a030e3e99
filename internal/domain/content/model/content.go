package model

import (
	"strings"
	"time"
	"vibelog/internal/pkg/apperr"
	baseModel "vibelog/pkg/model"
)

// MaxCommentLength 评论最大字符数
const MaxCommentLength = 1000

// Post 文章模型，OriginalPostID 非空时为转发
type Post struct {
	baseModel.BaseModel
	AuthorID       uint   `gorm:"index;not null" json:"authorId"`
	Title          string `gorm:"size:200" json:"title"`
	Body           string `gorm:"type:text" json:"body"`
	OriginalPostID *uint  `gorm:"index" json:"originalPostId,omitempty"`

	// 关联
	Media []Media `gorm:"foreignKey:PostID" json:"media,omitempty"`
}

// IsReblog 是否为转发
func (p *Post) IsReblog() bool {
	return p.OriginalPostID != nil
}

// Comment 评论模型
type Comment struct {
	baseModel.BaseModel
	Content  string     `gorm:"size:1000;not null" json:"content"`
	AuthorID uint       `gorm:"index;not null" json:"authorId"`
	PostID   uint       `gorm:"index;not null" json:"postId"`
	EditedAt *time.Time `json:"editedAt,omitempty"`
}

// NewComment 校验内容后构造评论
func NewComment(postID, authorID uint, content string) (*Comment, error) {
	if err := validateCommentContent(content); err != nil {
		return nil, err
	}
	return &Comment{PostID: postID, AuthorID: authorID, Content: content}, nil
}

// Edit 修改评论内容并记录编辑时间
func (c *Comment) Edit(content string, now time.Time) error {
	if err := validateCommentContent(content); err != nil {
		return err
	}
	c.Content = content
	c.EditedAt = &now
	return nil
}

func validateCommentContent(content string) error {
	if strings.TrimSpace(content) == "" {
		return apperr.Validation("comment content must not be blank")
	}
	if n := len([]rune(content)); n > MaxCommentLength {
		return apperr.Validation("comment content is %d characters, max is %d", n, MaxCommentLength)
	}
	return nil
}

// Media 文章附件，ObjectKey 为对象存储中的 key
type Media struct {
	baseModel.BaseModel
	PostID      uint   `gorm:"index;not null" json:"postId"`
	ObjectKey   string `gorm:"not null" json:"-"`
	URL         string `json:"url"`
	ContentType string `json:"contentType"`
}

func (Media) TableName() string {
	return "media"
}
