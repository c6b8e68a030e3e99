package handler

import (
	"net/http"
	"vibelog/internal/domain/content/service"
	"vibelog/internal/pkg/common"
	"vibelog/internal/pkg/middleware"
	"vibelog/pkg/response"
	"vibelog/pkg/utils"

	"github.com/gin-gonic/gin"
)

type ContentHandler struct {
	service service.ContentService
}

func NewContentHandler(s service.ContentService) *ContentHandler {
	return &ContentHandler{service: s}
}

// PostInput 发布文章输入
type PostInput struct {
	Title string `json:"title" binding:"max=200"`
	Body  string `json:"body"`
}

// CommentInput 评论输入
type CommentInput struct {
	Content string `json:"content" binding:"required"`
}

// CreatePost 发布文章
// @Summary 发布文章
// @Tags Content
// @Accept json
// @Produce json
// @Param input body PostInput true "文章内容"
// @Success 200 {object} model.Post
// @Router /posts [post]
func (h *ContentHandler) CreatePost(c *gin.Context) {
	var input PostInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
		return
	}

	post, err := h.service.CreatePost(c.Request.Context(), middleware.CurrentUsername(c), input.Title, input.Body)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, post)
}

// GetPost 文章详情
// @Summary 文章详情
// @Tags Content
// @Param id path int true "文章ID"
// @Success 200 {object} model.Post
// @Router /posts/{id} [get]
func (h *ContentHandler) GetPost(c *gin.Context) {
	id, ok := common.PathID(c, "id")
	if !ok {
		return
	}

	post, err := h.service.GetPost(c.Request.Context(), id)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, post)
}

// ListUserPosts 用户的文章列表
func (h *ContentHandler) ListUserPosts(c *gin.Context) {
	var p utils.Pagination
	_ = c.ShouldBindQuery(&p)

	posts, total, err := h.service.ListPostsByAuthor(c.Request.Context(), c.Param("username"), p)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, utils.NewPageResult(posts, total, p))
}

// UploadMedia 上传文章附件
// @Summary 上传附件到对象存储
// @Tags Content
// @Accept multipart/form-data
// @Param id path int true "文章ID"
// @Param file formData file true "File"
// @Success 200 {object} model.Media
// @Router /posts/{id}/media [post]
func (h *ContentHandler) UploadMedia(c *gin.Context) {
	id, ok := common.PathID(c, "id")
	if !ok {
		return
	}

	fh, err := c.FormFile("file")
	if err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, "No file uploaded")
		return
	}
	src, err := fh.Open()
	if err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, "Invalid file")
		return
	}
	defer src.Close()

	media, err := h.service.AttachMedia(c.Request.Context(), id, middleware.CurrentUsername(c),
		fh.Filename, fh.Header.Get("Content-Type"), src)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, media)
}

// AddComment 发表评论
func (h *ContentHandler) AddComment(c *gin.Context) {
	postID, ok := common.PathID(c, "id")
	if !ok {
		return
	}

	var input CommentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
		return
	}

	comment, err := h.service.AddComment(c.Request.Context(), postID, middleware.CurrentUsername(c), input.Content)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, comment)
}

// GetComments 获取评论列表
func (h *ContentHandler) GetComments(c *gin.Context) {
	postID, ok := common.PathID(c, "id")
	if !ok {
		return
	}

	comments, err := h.service.ListComments(c.Request.Context(), postID)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, comments)
}

// UpdateComment 修改评论（仅作者）
func (h *ContentHandler) UpdateComment(c *gin.Context) {
	commentID, ok := common.PathID(c, "id")
	if !ok {
		return
	}

	var input CommentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
		return
	}

	comment, err := h.service.UpdateComment(c.Request.Context(), commentID, middleware.CurrentUsername(c), input.Content)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, comment)
}

// Reblog 转发
func (h *ContentHandler) Reblog(c *gin.Context) {
	postID, ok := common.PathID(c, "id")
	if !ok {
		return
	}

	reblog, created, err := h.service.Reblog(c.Request.Context(), middleware.CurrentUsername(c), postID)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, gin.H{"post": reblog, "created": created})
}

// UndoReblog 取消转发
func (h *ContentHandler) UndoReblog(c *gin.Context) {
	postID, ok := common.PathID(c, "id")
	if !ok {
		return
	}

	if err := h.service.UndoReblog(c.Request.Context(), middleware.CurrentUsername(c), postID); err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, "success")
}

// ReblogStatus 当前用户是否转发过及转发总数
func (h *ContentHandler) ReblogStatus(c *gin.Context) {
	postID, ok := common.PathID(c, "id")
	if !ok {
		return
	}

	ctx := c.Request.Context()
	reblogged, err := h.service.IsReblogged(ctx, middleware.CurrentUsername(c), postID)
	if err != nil {
		response.FromError(c, err)
		return
	}
	count, err := h.service.CountReblogs(ctx, postID)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, gin.H{"reblogged": reblogged, "count": count})
}
