package common

import (
	"context"
	"errors"
	"mime/multipart"
	"net/http"
	"sync"
	"time"

	"bookstore_api/internal/pkg/uploader"
	"bookstore_api/pkg/errs"
	"bookstore_api/pkg/response"

	"github.com/gin-gonic/gin"
)

// Pinger 健康检查依赖
type Pinger interface {
	PingContext(ctx context.Context) error
}

type Handler struct {
	uploader uploader.Uploader
	db       Pinger
}

// NewHandler uploader 为 nil 时上传接口返回 500
func NewHandler(up uploader.Uploader, db Pinger) *Handler {
	return &Handler{uploader: up, db: db}
}

// UploadFile 上传商品封面 (支持批量)
// @Summary 上传文件到 OSS (支持批量)
// @Tags Common
// @Accept multipart/form-data
// @Produce json
// @Param files formData file true "Files"
// @Success 200 {object} response.Response{data=[]string} "URLs"
// @Router /upload [post]
func (h *Handler) UploadFile(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		response.Error(c, http.StatusBadRequest, errs.ErrInvalidParam, "Invalid form data")
		return
	}

	files := form.File["files"]
	if len(files) == 0 {
		response.Error(c, http.StatusBadRequest, errs.ErrInvalidParam, "No files uploaded")
		return
	}

	// 先整体校验，避免部分上传
	for _, f := range files {
		if _, err := uploader.CheckFile(f); err != nil {
			response.Error(c, http.StatusBadRequest, errs.ErrInvalidParam, f.Filename+": "+err.Error())
			return
		}
	}

	if h.uploader == nil {
		response.Error(c, http.StatusInternalServerError, errs.ErrServerInternal, "Uploader not initialized")
		return
	}

	urls := make([]string, len(files))
	var wg sync.WaitGroup
	var errOnce sync.Once
	var uploadErr error

	// 限制并发数为 5
	sem := make(chan struct{}, 5)

	for i, file := range files {
		wg.Add(1)
		go func(index int, f *multipart.FileHeader) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			url, err := h.uploader.UploadFile(f)
			if err != nil {
				errOnce.Do(func() { uploadErr = err })
				return
			}
			urls[index] = url
		}(i, file)
	}
	wg.Wait()

	if uploadErr != nil {
		if errors.Is(uploadErr, uploader.ErrUnsupportedType) || errors.Is(uploadErr, uploader.ErrFileTooLarge) {
			response.Error(c, http.StatusBadRequest, errs.ErrInvalidParam, uploadErr.Error())
			return
		}
		response.HandleError(c, uploadErr)
		return
	}

	response.Success(c, urls)
}

// Health 检查数据库连通性
func (h *Handler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	if err := h.db.PingContext(ctx); err != nil {
		c.JSON(http.StatusServiceUnavailable, response.Response{
			Code:    errs.ErrServerInternal,
			Message: "database unavailable",
			Data:    gin.H{"status": "down"},
		})
		return
	}
	response.Success(c, gin.H{"status": "ok"})
}
