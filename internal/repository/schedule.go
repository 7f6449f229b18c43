// Package repository 提供数据访问层
package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/helmplan/helmplan/pkg/model"
)

// ScheduleRepository 排班结果仓储
type ScheduleRepository struct {
	db      DB
	history int
}

// NewScheduleRepository 创建排班仓储
// history 为保留的历史排班数量，超出后删除最旧的记录
func NewScheduleRepository(db DB, history int) *ScheduleRepository {
	if history <= 0 {
		history = 50
	}
	return &ScheduleRepository{db: db, history: history}
}

// Save 保存排班结果并截断历史
func (r *ScheduleRepository) Save(ctx context.Context, schedule *model.Schedule) error {
	if schedule.ID == "" {
		schedule.ID = uuid.New().String()
	}
	if schedule.CreatedAt.IsZero() {
		schedule.CreatedAt = time.Now()
	}

	data, err := json.Marshal(schedule)
	if err != nil {
		return fmt.Errorf("序列化排班失败: %w", err)
	}

	query := `
		INSERT INTO schedules_helm (id, month, data, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE SET month = EXCLUDED.month, data = EXCLUDED.data
	`

	if _, err := r.db.ExecContext(ctx, query, schedule.ID, schedule.Month, data, schedule.CreatedAt); err != nil {
		return fmt.Errorf("保存排班失败: %w", err)
	}

	return r.truncate(ctx)
}

// truncate 只保留最近的 history 条记录
func (r *ScheduleRepository) truncate(ctx context.Context) error {
	query := `
		DELETE FROM schedules_helm
		WHERE id NOT IN (
			SELECT id FROM schedules_helm ORDER BY created_at DESC LIMIT $1
		)
	`

	if _, err := r.db.ExecContext(ctx, query, r.history); err != nil {
		return fmt.Errorf("清理历史排班失败: %w", err)
	}

	return nil
}

// GetByID 根据ID获取排班
func (r *ScheduleRepository) GetByID(ctx context.Context, id string) (*model.Schedule, error) {
	query := `SELECT data FROM schedules_helm WHERE id = $1`
	return scanSchedule(r.db.QueryRowContext(ctx, query, id))
}

// GetByMonth 获取某月最新的排班
func (r *ScheduleRepository) GetByMonth(ctx context.Context, month string) (*model.Schedule, error) {
	query := `
		SELECT data FROM schedules_helm
		WHERE month = $1
		ORDER BY created_at DESC
		LIMIT 1
	`
	return scanSchedule(r.db.QueryRowContext(ctx, query, month))
}

// List 按创建时间倒序返回排班历史
func (r *ScheduleRepository) List(ctx context.Context) ([]*model.Schedule, error) {
	query := `
		SELECT data FROM schedules_helm
		ORDER BY created_at DESC
		LIMIT $1
	`

	rows, err := r.db.QueryContext(ctx, query, r.history)
	if err != nil {
		return nil, fmt.Errorf("查询排班历史失败: %w", err)
	}
	defer rows.Close()

	var schedules []*model.Schedule
	for rows.Next() {
		schedule, err := scanSchedule(rows)
		if err != nil {
			return nil, err
		}
		schedules = append(schedules, schedule)
	}

	return schedules, rows.Err()
}

// ReplaceByMonth 替换某月的排班记录
// Webhook返回替代排班时使用：删除该月所有记录后写入新记录
func (r *ScheduleRepository) ReplaceByMonth(ctx context.Context, schedule *model.Schedule) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM schedules_helm WHERE month = $1`, schedule.Month); err != nil {
		return fmt.Errorf("删除旧排班失败: %w", err)
	}

	return r.Save(ctx, schedule)
}

// Delete 删除排班记录
func (r *ScheduleRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM schedules_helm WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("删除排班失败: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("排班不存在")
	}

	return nil
}

// scanSchedule 扫描单行排班数据
func scanSchedule(row Scanner) (*model.Schedule, error) {
	var data []byte
	if err := row.Scan(&data); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("扫描排班数据失败: %w", err)
	}

	schedule := &model.Schedule{}
	if err := json.Unmarshal(data, schedule); err != nil {
		return nil, fmt.Errorf("解析排班数据失败: %w", err)
	}

	return schedule, nil
}
