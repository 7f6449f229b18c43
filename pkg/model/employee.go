// Package model 定义月度排班引擎的核心数据模型
package model

import "time"

// Employee 员工
type Employee struct {
	ID       string  `json:"id" db:"id"`
	Name     string  `json:"name" db:"name"`
	Workload float64 `json:"workload" db:"workload"` // 工作量百分比 (0, 100]

	// 可分配的班次类型，为空表示不可排任何班
	Skills []ShiftType `json:"skills" db:"skills"`

	// 按日期的偏好（休息日或指定班次）
	Preferences []Preference `json:"preferences,omitempty" db:"preferences"`

	// 最大连续工作天数，0 表示使用默认值 4，引擎上限为 5
	MaxConsecutiveDays int `json:"maxConsecutiveDays,omitempty" db:"max_consecutive_days"`

	// 缺勤
	SickLeave DateRange   `json:"sickLeave" db:"sick_leave"`
	Vacations []DateRange `json:"vacations,omitempty" db:"vacations"`

	// 每周可用性，nil 表示每天都可用
	AvailableDays *AvailableDays `json:"availableDays,omitempty" db:"available_days"`
}

// Preference 员工的单日偏好
// Type 为 "frei"（休息）或某个班次类型
type Preference struct {
	Date   string `json:"date"`
	Type   string `json:"type"`
	Reason string `json:"reason,omitempty"`
}

// AvailableDays 每周各天的可用性
type AvailableDays struct {
	Monday    bool `json:"monday"`
	Tuesday   bool `json:"tuesday"`
	Wednesday bool `json:"wednesday"`
	Thursday  bool `json:"thursday"`
	Friday    bool `json:"friday"`
	Saturday  bool `json:"saturday"`
	Sunday    bool `json:"sunday"`
}

// DefaultAvailableDays 返回每天都可用的可用性
func DefaultAvailableDays() *AvailableDays {
	return &AvailableDays{
		Monday: true, Tuesday: true, Wednesday: true,
		Thursday: true, Friday: true, Saturday: true, Sunday: true,
	}
}

// On 检查某个星期几是否可用，nil 表示不限制
func (d *AvailableDays) On(weekday time.Weekday) bool {
	if d == nil {
		return true
	}
	switch weekday {
	case time.Monday:
		return d.Monday
	case time.Tuesday:
		return d.Tuesday
	case time.Wednesday:
		return d.Wednesday
	case time.Thursday:
		return d.Thursday
	case time.Friday:
		return d.Friday
	case time.Saturday:
		return d.Saturday
	case time.Sunday:
		return d.Sunday
	}
	return false
}

// HasSkill 检查员工是否可排某班次
func (e *Employee) HasSkill(shift ShiftType) bool {
	for _, s := range e.Skills {
		if s == shift {
			return true
		}
	}
	return false
}

// EffectiveMaxConsecutiveDays 返回生效的最大连续工作天数
// 未设置时默认 4，引擎强制上限 5
func (e *Employee) EffectiveMaxConsecutiveDays() int {
	days := e.MaxConsecutiveDays
	if days <= 0 {
		days = 4
	}
	if days > 5 {
		days = 5
	}
	return days
}

// IsAbsentOn 检查员工当天是否因病假或休假缺勤
func (e *Employee) IsAbsentOn(date string) bool {
	if e.SickLeave.Contains(date) {
		return true
	}
	for _, v := range e.Vacations {
		if v.Contains(date) {
			return true
		}
	}
	return false
}

// PreferenceOn 返回员工当天的偏好，没有则返回 nil
func (e *Employee) PreferenceOn(date string) *Preference {
	for i := range e.Preferences {
		if e.Preferences[i].Date == date {
			return &e.Preferences[i]
		}
	}
	return nil
}

// AvailableOn 检查员工在某个星期几是否可用
func (e *Employee) AvailableOn(weekday time.Weekday) bool {
	return e.AvailableDays.On(weekday)
}
