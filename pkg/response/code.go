package response

// 业务状态码
const (
	CodeSuccess = 0
	CodeError   = 1

	// 用户模块错误 100xx
	ErrUserNotFound = 10002
	ErrAuthFailed   = 10003
	ErrTokenInvalid = 10004
	ErrNoPermission = 10005

	// 内容与互动 200xx
	ErrPostNotFound         = 20001
	ErrCommentNotFound      = 20002
	ErrReportNotFound       = 20003
	ErrNotificationNotFound = 20004
	ErrNotAuthor            = 20005

	// 系统错误 500xx
	ErrServerInternal  = 50001
	ErrInvalidParam    = 50002
	ErrTooManyRequests = 50003
)
