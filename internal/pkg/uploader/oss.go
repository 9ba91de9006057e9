package uploader

import (
	"errors"
	"fmt"
	"mime/multipart"
	"path/filepath"
	"strings"
	"time"

	"bookstore_api/internal/pkg/config"

	"github.com/aliyun/aliyun-oss-go-sdk/oss"
	"github.com/google/uuid"
)

const maxCoverSize = 5 << 20

var (
	ErrNotConfigured   = errors.New("oss config is missing")
	ErrUnsupportedType = errors.New("only jpg, png and webp images are allowed")
	ErrFileTooLarge    = errors.New("file exceeds 5MB")
)

var allowedExt = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".webp": "image/webp",
}

type Uploader interface {
	UploadFile(file *multipart.FileHeader) (string, error)
}

// AliyunOSSUploader 商品封面上传
type AliyunOSSUploader struct {
	bucket *oss.Bucket
	config config.OSSConfig
}

func NewAliyunOSSUploader(cfg config.OSSConfig) (*AliyunOSSUploader, error) {
	if cfg.Endpoint == "" || cfg.BucketName == "" {
		return nil, ErrNotConfigured
	}
	client, err := oss.New(cfg.Endpoint, cfg.AccessKeyID, cfg.AccessKeySecret)
	if err != nil {
		return nil, err
	}

	bucket, err := client.Bucket(cfg.BucketName)
	if err != nil {
		return nil, err
	}

	return &AliyunOSSUploader{bucket: bucket, config: cfg}, nil
}

// CheckFile 校验封面文件，返回对应的 Content-Type
func CheckFile(file *multipart.FileHeader) (string, error) {
	contentType, ok := allowedExt[strings.ToLower(filepath.Ext(file.Filename))]
	if !ok {
		return "", ErrUnsupportedType
	}
	if file.Size > maxCoverSize {
		return "", ErrFileTooLarge
	}
	return contentType, nil
}

// ObjectKey covers/YYYYMMDD/uuid.ext
func ObjectKey(filename string, now time.Time) string {
	ext := strings.ToLower(filepath.Ext(filename))
	return fmt.Sprintf("covers/%s/%s%s", now.Format("20060102"), uuid.New().String(), ext)
}

func (u *AliyunOSSUploader) UploadFile(file *multipart.FileHeader) (string, error) {
	contentType, err := CheckFile(file)
	if err != nil {
		return "", err
	}

	src, err := file.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	key := ObjectKey(file.Filename, time.Now())
	if err := u.bucket.PutObject(key, src, oss.ContentType(contentType)); err != nil {
		return "", err
	}

	// bucket 为公共读，直接拼接访问地址
	return fmt.Sprintf("https://%s.%s/%s", u.config.BucketName, u.config.Endpoint, key), nil
}
