// Package apperr 定义社交核心对外暴露的错误分类
package apperr

import (
	"errors"
	"fmt"
)

// Kind 错误类别
type Kind uint8

const (
	KindInternal Kind = iota
	KindNotFound
	KindValidation
	KindUnauthorized
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindValidation:
		return "validation"
	case KindUnauthorized:
		return "unauthorized"
	default:
		return "internal"
	}
}

// Entity 资源类型，NotFound 使用
type Entity string

const (
	EntityUser         Entity = "user"
	EntityPost         Entity = "post"
	EntityComment      Entity = "comment"
	EntityReport       Entity = "report"
	EntityNotification Entity = "notification"
)

// Error 业务错误
type Error struct {
	Kind    Kind
	Entity  Entity
	ID      any
	Message string
	Err     error
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		switch e.Kind {
		case KindNotFound:
			msg = fmt.Sprintf("%s not found: %v", e.Entity, e.ID)
		default:
			msg = e.Kind.String()
		}
	}
	if e.Err != nil {
		return msg + ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is 同类别同实体的错误视为相等，便于 errors.Is(err, apperr.NotFound(apperr.EntityPost, nil))
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Kind != e.Kind {
		return false
	}
	return t.Entity == "" || t.Entity == e.Entity
}

// NotFound 资源不存在，id 可以是数字 ID 或用户名
func NotFound(entity Entity, id any) *Error {
	return &Error{Kind: KindNotFound, Entity: entity, ID: id}
}

// Validation 请求不合法
func Validation(format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

// Unauthorized 非作者修改/删除
func Unauthorized(format string, args ...any) *Error {
	return &Error{Kind: KindUnauthorized, Message: fmt.Sprintf(format, args...)}
}

// Internal 包装存储层等内部错误
func Internal(op string, err error) *Error {
	return &Error{Kind: KindInternal, Message: op, Err: err}
}

// KindOf 返回错误类别，非 *Error 一律视为内部错误
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

func IsNotFound(err error) bool     { return KindOf(err) == KindNotFound }
func IsValidation(err error) bool   { return KindOf(err) == KindValidation }
func IsUnauthorized(err error) bool { return KindOf(err) == KindUnauthorized }
