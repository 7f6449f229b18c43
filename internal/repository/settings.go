// Package repository 提供数据访问层
package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/helmplan/helmplan/pkg/model"
)

// SettingsRepository 配置仓储
// 配置只有一行，不存在时回退到默认配置
type SettingsRepository struct {
	db DB
}

// NewSettingsRepository 创建配置仓储
func NewSettingsRepository(db DB) *SettingsRepository {
	return &SettingsRepository{db: db}
}

// Get 获取当前配置
func (r *SettingsRepository) Get(ctx context.Context) (*model.Settings, error) {
	var data []byte
	err := r.db.QueryRowContext(ctx, `SELECT data FROM settings_helm WHERE id = 1`).Scan(&data)
	if err == sql.ErrNoRows {
		return model.DefaultSettings(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("查询配置失败: %w", err)
	}

	settings := &model.Settings{}
	if err := json.Unmarshal(data, settings); err != nil {
		return nil, fmt.Errorf("解析配置失败: %w", err)
	}

	return settings, nil
}

// Save 保存配置
func (r *SettingsRepository) Save(ctx context.Context, settings *model.Settings) error {
	data, err := json.Marshal(settings)
	if err != nil {
		return fmt.Errorf("序列化配置失败: %w", err)
	}

	query := `
		INSERT INTO settings_helm (id, data, updated_at)
		VALUES (1, $1, $2)
		ON CONFLICT (id) DO UPDATE SET data = EXCLUDED.data, updated_at = EXCLUDED.updated_at
	`

	if _, err := r.db.ExecContext(ctx, query, data, time.Now()); err != nil {
		return fmt.Errorf("保存配置失败: %w", err)
	}

	return nil
}
