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

// EmployeeRepository 员工仓储
// 员工以JSONB形式整体存储，ID保留前端传入的字符串
type EmployeeRepository struct {
	db DB
}

// NewEmployeeRepository 创建员工仓储
func NewEmployeeRepository(db DB) *EmployeeRepository {
	return &EmployeeRepository{db: db}
}

// Create 创建员工
func (r *EmployeeRepository) Create(ctx context.Context, emp *model.Employee) error {
	if emp.ID == "" {
		emp.ID = uuid.New().String()
	}

	data, err := json.Marshal(emp)
	if err != nil {
		return fmt.Errorf("序列化员工失败: %w", err)
	}

	query := `
		INSERT INTO employees_helm (id, data, created_at, updated_at)
		VALUES ($1, $2, $3, $3)
	`

	if _, err := r.db.ExecContext(ctx, query, emp.ID, data, time.Now()); err != nil {
		return fmt.Errorf("创建员工失败: %w", err)
	}

	return nil
}

// GetByID 根据ID获取员工
func (r *EmployeeRepository) GetByID(ctx context.Context, id string) (*model.Employee, error) {
	query := `SELECT data FROM employees_helm WHERE id = $1`
	return scanEmployee(r.db.QueryRowContext(ctx, query, id))
}

// Update 更新员工
func (r *EmployeeRepository) Update(ctx context.Context, emp *model.Employee) error {
	data, err := json.Marshal(emp)
	if err != nil {
		return fmt.Errorf("序列化员工失败: %w", err)
	}

	query := `UPDATE employees_helm SET data = $2, updated_at = $3 WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, emp.ID, data, time.Now())
	if err != nil {
		return fmt.Errorf("更新员工失败: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("员工不存在")
	}

	return nil
}

// Delete 删除员工
func (r *EmployeeRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM employees_helm WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("删除员工失败: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("员工不存在")
	}

	return nil
}

// List 按创建时间返回全部员工
func (r *EmployeeRepository) List(ctx context.Context) ([]*model.Employee, error) {
	query := `SELECT data FROM employees_helm ORDER BY created_at ASC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("查询员工列表失败: %w", err)
	}
	defer rows.Close()

	var employees []*model.Employee
	for rows.Next() {
		emp, err := scanEmployee(rows)
		if err != nil {
			return nil, err
		}
		employees = append(employees, emp)
	}

	return employees, rows.Err()
}

// ReplaceAll 用给定列表整体替换员工数据
// Webhook导入时使用
func (r *EmployeeRepository) ReplaceAll(ctx context.Context, employees []*model.Employee) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM employees_helm`); err != nil {
		return fmt.Errorf("清空员工失败: %w", err)
	}

	for _, emp := range employees {
		if err := r.Create(ctx, emp); err != nil {
			return err
		}
	}

	return nil
}

// scanEmployee 扫描单行员工数据
func scanEmployee(row Scanner) (*model.Employee, error) {
	var data []byte
	if err := row.Scan(&data); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("扫描员工数据失败: %w", err)
	}

	emp := &model.Employee{}
	if err := json.Unmarshal(data, emp); err != nil {
		return nil, fmt.Errorf("解析员工数据失败: %w", err)
	}

	return emp, nil
}
