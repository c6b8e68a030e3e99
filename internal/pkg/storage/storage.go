package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"sync"
	"time"

	"vibelog/internal/pkg/config"

	"github.com/aliyun/aliyun-oss-go-sdk/oss"
	"github.com/google/uuid"
)

// MediaStorage 媒体文件存储
type MediaStorage interface {
	Upload(ctx context.Context, filename string, r io.Reader) (key string, url string, err error)
	DeleteObjects(ctx context.Context, keys []string) error
}

// ObjectKey 生成对象名: YYYYMMDD/uuid.ext
func ObjectKey(filename string, now time.Time) string {
	return fmt.Sprintf("%s/%s%s", now.Format("20060102"), uuid.New().String(), filepath.Ext(filename))
}

type AliyunOSSStorage struct {
	bucket *oss.Bucket
	config config.OSSConfig
}

func NewAliyunOSSStorage(cfg config.OSSConfig) (*AliyunOSSStorage, error) {
	client, err := oss.New(cfg.Endpoint, cfg.AccessKeyID, cfg.AccessKeySecret)
	if err != nil {
		return nil, err
	}

	bucket, err := client.Bucket(cfg.BucketName)
	if err != nil {
		return nil, err
	}

	return &AliyunOSSStorage{bucket: bucket, config: cfg}, nil
}

func (s *AliyunOSSStorage) Upload(ctx context.Context, filename string, r io.Reader) (string, string, error) {
	key := ObjectKey(filename, time.Now())
	if err := s.bucket.PutObject(key, r, oss.WithContext(ctx)); err != nil {
		return "", "", err
	}
	// bucket 为公共读或挂 CDN
	url := fmt.Sprintf("https://%s.%s/%s", s.config.BucketName, s.config.Endpoint, key)
	return key, url, nil
}

// 单次 DeleteObjects 最多 1000 个 key
const deleteBatchSize = 1000

func (s *AliyunOSSStorage) DeleteObjects(ctx context.Context, keys []string) error {
	for start := 0; start < len(keys); start += deleteBatchSize {
		end := start + deleteBatchSize
		if end > len(keys) {
			end = len(keys)
		}
		if _, err := s.bucket.DeleteObjects(keys[start:end], oss.DeleteObjectsQuiet(true), oss.WithContext(ctx)); err != nil {
			return err
		}
	}
	return nil
}

// MemoryStorage 未配置 OSS 时使用，本地开发与测试
type MemoryStorage struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{objects: make(map[string][]byte)}
}

func (s *MemoryStorage) Upload(_ context.Context, filename string, r io.Reader) (string, string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", "", err
	}
	key := ObjectKey(filename, time.Now())

	s.mu.Lock()
	s.objects[key] = data
	s.mu.Unlock()
	return key, "memory://" + key, nil
}

func (s *MemoryStorage) DeleteObjects(_ context.Context, keys []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, k := range keys {
		delete(s.objects, k)
	}
	return nil
}

// Has 对象是否存在
func (s *MemoryStorage) Has(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.objects[key]
	return ok
}

// ErrOSSRequired 生产环境未配置 OSS
var ErrOSSRequired = errors.New("oss endpoint and bucket must be configured in prod")

// New 按配置选择存储实现，内存存储仅用于非生产环境
func New(cfg config.OSSConfig, env string) (MediaStorage, error) {
	if cfg.Endpoint == "" || cfg.BucketName == "" {
		if env == "prod" {
			return nil, ErrOSSRequired
		}
		return NewMemoryStorage(), nil
	}
	return NewAliyunOSSStorage(cfg)
}
