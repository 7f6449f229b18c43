// Package model 定义月度排班引擎的核心数据模型
package model

import (
	"time"

	"github.com/google/uuid"
)

// 日期与月份的字符串格式
const (
	DateLayout  = "2006-01-02"
	MonthLayout = "2006-01"
)

// ShiftType 班次类型
type ShiftType string

const (
	ShiftEarly  ShiftType = "früh"     // 早班
	ShiftMiddle ShiftType = "zwischen" // 中班
	ShiftLate   ShiftType = "spät"     // 晚班
)

// PreferenceFree 表示员工当天希望休息的偏好类型
const PreferenceFree = "frei"

// AllShifts 返回所有班次类型（展示顺序）
func AllShifts() []ShiftType {
	return []ShiftType{ShiftEarly, ShiftMiddle, ShiftLate}
}

// AssignmentOrder 返回班次的分配顺序：早班和晚班优先，中班最后
func AssignmentOrder() []ShiftType {
	return []ShiftType{ShiftEarly, ShiftLate, ShiftMiddle}
}

// IsValidShift 检查是否为合法班次类型
func IsValidShift(s ShiftType) bool {
	switch s {
	case ShiftEarly, ShiftMiddle, ShiftLate:
		return true
	}
	return false
}

// BaseModel 基础模型（持久化记录通用字段）
type BaseModel struct {
	ID        uuid.UUID `json:"id" db:"id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// NewBaseModel 创建新的基础模型
func NewBaseModel() BaseModel {
	now := time.Now()
	return BaseModel{
		ID:        uuid.New(),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// DateRange 日期范围（含两端，格式 YYYY-MM-DD）
type DateRange struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// IsZero 检查范围是否为空
func (r DateRange) IsZero() bool {
	return r.From == "" || r.To == ""
}

// Contains 检查日期是否落在范围内
// ISO 日期的字符串比较与时间顺序一致
func (r DateRange) Contains(date string) bool {
	if r.IsZero() {
		return false
	}
	return r.From <= date && date <= r.To
}
