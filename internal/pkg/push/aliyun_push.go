package push

import (
	"context"
	"encoding/json"
	"errors"

	"vibelog/internal/pkg/config"

	"github.com/aliyun/alibaba-cloud-sdk-go/sdk/requests"
	"github.com/aliyun/alibaba-cloud-sdk-go/services/push"
)

// ErrNotConfigured 未配置推送
var ErrNotConfigured = errors.New("push config is missing")

// Pusher 移动端推送
type Pusher interface {
	PushToAccount(ctx context.Context, accountID string, title, body string, extParameters map[string]string) error
}

type AliyunPushService struct {
	client *push.Client
	appKey int64
}

func NewAliyunPushService(cfg config.PushConfig) (*AliyunPushService, error) {
	if cfg.AccessKeyID == "" || cfg.AppKey == 0 {
		return nil, ErrNotConfigured
	}

	client, err := push.NewClientWithAccessKey(
		cfg.RegionID,
		cfg.AccessKeyID,
		cfg.AccessKeySecret,
	)
	if err != nil {
		return nil, err
	}

	return &AliyunPushService{
		client: client,
		appKey: cfg.AppKey,
	}, nil
}

func (s *AliyunPushService) PushToAccount(ctx context.Context, accountID string, title, body string, extParameters map[string]string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	request := push.CreatePushRequest()
	request.AppKey = requests.NewInteger(int(s.appKey))
	request.Target = "ACCOUNT"
	request.TargetValue = accountID
	request.Title = title
	request.Body = body
	request.DeviceType = "ALL"  // iOS & Android
	request.PushType = "NOTICE" // 通知

	// 扩展参数 (JSON 序列化)
	if len(extParameters) > 0 {
		extJSON, err := json.Marshal(extParameters)
		if err != nil {
			return err
		}
		request.AndroidExtParameters = string(extJSON)
		request.IOSExtParameters = string(extJSON)
	}

	_, err := s.client.Push(request)
	return err
}

// NoopPusher 未配置推送时使用
type NoopPusher struct{}

func (NoopPusher) PushToAccount(context.Context, string, string, string, map[string]string) error {
	return nil
}

// New 按配置选择推送实现
func New(cfg config.PushConfig) (Pusher, error) {
	s, err := NewAliyunPushService(cfg)
	if errors.Is(err, ErrNotConfigured) {
		return NoopPusher{}, nil
	}
	if err != nil {
		return nil, err
	}
	return s, nil
}
