// Package webhook 提供排班和员工数据的外部推送
package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/helmplan/helmplan/internal/config"
	"github.com/helmplan/helmplan/pkg/errors"
	"github.com/helmplan/helmplan/pkg/logger"
	"github.com/helmplan/helmplan/pkg/model"
	"github.com/rs/zerolog"
)

// 推送类别
const (
	CategorySchedule  = "schedule"
	CategoryEmployees = "employees"
)

// Dispatcher 向外部系统推送数据
// 推送失败只记录日志，不影响主流程
type Dispatcher struct {
	cfg    *config.WebhookConfig
	client *http.Client
	log    zerolog.Logger
}

// New 创建推送器
func New(cfg *config.WebhookConfig) *Dispatcher {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Dispatcher{
		cfg:    cfg,
		client: &http.Client{Timeout: timeout},
		log:    logger.Get().With().Str("component", "webhook").Logger(),
	}
}

// Enabled 检查是否启用推送
func (d *Dispatcher) Enabled() bool {
	return d.cfg != nil && d.cfg.Enabled
}

// envelope 推送消息格式
type envelope struct {
	Category  string      `json:"category"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// DispatchSchedule 推送排班结果
// 远端可以返回一份替代排班（非null的JSON对象），调用方负责落库
func (d *Dispatcher) DispatchSchedule(ctx context.Context, schedule *model.Schedule) (*model.Schedule, error) {
	body, err := d.post(ctx, CategorySchedule, schedule)
	if err != nil {
		d.log.Warn().Err(err).Str("month", schedule.Month).Msg("排班推送失败")
		return nil, nil
	}
	if len(body) == 0 {
		return nil, nil
	}

	var replacement *model.Schedule
	if err := json.Unmarshal(body, &replacement); err != nil {
		d.log.Warn().Err(err).Msg("解析Webhook响应失败")
		return nil, nil
	}
	if replacement == nil || replacement.Month == "" {
		return nil, nil
	}

	d.log.Info().Str("month", replacement.Month).Msg("收到替代排班")
	return replacement, nil
}

// DispatchEmployees 推送员工数据
func (d *Dispatcher) DispatchEmployees(ctx context.Context, employees []*model.Employee) error {
	if _, err := d.post(ctx, CategoryEmployees, employees); err != nil {
		d.log.Warn().Err(err).Int("count", len(employees)).Msg("员工推送失败")
		return errors.WebhookFailed(CategoryEmployees, err.Error())
	}
	return nil
}

// post 发送POST请求并返回响应体
func (d *Dispatcher) post(ctx context.Context, category string, payload interface{}) ([]byte, error) {
	url := d.cfg.URLFor(category)
	if url == "" {
		return nil, fmt.Errorf("类别 %s 没有配置推送地址", category)
	}

	data, err := json.Marshal(envelope{
		Category:  category,
		Timestamp: time.Now(),
		Payload:   payload,
	})
	if err != nil {
		return nil, fmt.Errorf("序列化推送消息失败: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("创建请求失败: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := d.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("推送请求失败: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 10<<20))
	if err != nil {
		return nil, fmt.Errorf("读取响应失败: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("推送返回状态码 %d", resp.StatusCode)
	}

	d.log.Debug().
		Str("category", category).
		Int("status", resp.StatusCode).
		Dur("duration", time.Since(start)).
		Msg("推送完成")

	// 响应为字面量null时视为无内容
	if string(bytes.TrimSpace(body)) == "null" {
		return nil, nil
	}

	return body, nil
}
