// Package model 定义月度排班引擎的核心数据模型
package model

import "time"

// 违规类型
const (
	ViolationUnderstaffed  = "understaffed"
	ViolationHoursMismatch = "hours_mismatch"
)

// 解释类型
const (
	ExplanationCapacityShortage = "capacity_shortage"
	ExplanationSkillShortage    = "skill_shortage"
	ExplanationWeekendLimit     = "weekend_constraint"
	ExplanationFreePreferences  = "preference_volume"
	ExplanationAbsences         = "absence_volume"
)

// DayAssignments 单日排班：班次 -> 员工ID列表
type DayAssignments map[ShiftType][]string

// Count 返回某班次已分配的人数
func (d DayAssignments) Count(shift ShiftType) int {
	return len(d[shift])
}

// Has 检查某员工当天是否已被分配
func (d DayAssignments) Has(employeeID string) bool {
	for _, ids := range d {
		for _, id := range ids {
			if id == employeeID {
				return true
			}
		}
	}
	return false
}

// Violation 排班违规记录
// understaffed 使用 Date/Shift/Required/Assigned 字段，
// hours_mismatch 使用 EmployeeID/EmployeeName/Target/Actual/Difference 字段
type Violation struct {
	Type     string    `json:"type"`
	Date     string    `json:"date,omitempty"`
	Shift    ShiftType `json:"shift,omitempty"`
	Required int       `json:"required,omitempty"`
	Assigned int       `json:"assigned"`

	EmployeeID   string  `json:"employeeId,omitempty"`
	EmployeeName string  `json:"employeeName,omitempty"`
	Target       float64 `json:"target,omitempty"`
	Actual       float64 `json:"actual,omitempty"`
	Difference   float64 `json:"difference,omitempty"`
}

// ShiftStats 员工的班次分布统计
type ShiftStats struct {
	Early     int `json:"früh"`
	Middle    int `json:"zwischen"`
	Late      int `json:"spät"`
	TotalDays int `json:"totalDays"`
}

// Count 返回某班次的天数
func (s *ShiftStats) Count(shift ShiftType) int {
	switch shift {
	case ShiftMiddle:
		return s.Middle
	case ShiftLate:
		return s.Late
	default:
		return s.Early
	}
}

// Add 记录一次班次分配
func (s *ShiftStats) Add(shift ShiftType) {
	switch shift {
	case ShiftEarly:
		s.Early++
	case ShiftMiddle:
		s.Middle++
	case ShiftLate:
		s.Late++
	}
	s.TotalDays++
}

// Remove 撤销一次班次分配
func (s *ShiftStats) Remove(shift ShiftType) {
	switch shift {
	case ShiftEarly:
		s.Early--
	case ShiftMiddle:
		s.Middle--
	case ShiftLate:
		s.Late--
	}
	s.TotalDays--
}

// Explanation 对人员不足原因的结构化解释
type Explanation struct {
	Type    string    `json:"type"`
	Shift   ShiftType `json:"shift,omitempty"`
	Message string    `json:"message"`
	Demand  float64   `json:"demand,omitempty"`
	Supply  float64   `json:"supply,omitempty"`
}

// Schedule 月度排班结果
type Schedule struct {
	ID    string `json:"id,omitempty"`
	Month string `json:"month"` // YYYY-MM

	// 日期 -> 班次 -> 员工ID；节假日周末组内的日期没有条目
	Days map[string]DayAssignments `json:"days"`

	Violations             []Violation            `json:"violations"`
	EmployeeHours          map[string]float64     `json:"employeeHours"`
	EmployeeStats          map[string]*ShiftStats `json:"employeeStats"`
	TargetHours            map[string]float64     `json:"targetHours"`
	EmployeeWeekendShifts  map[string]int         `json:"employeeWeekendShifts"` // 周末组数，非天数
	Explanations           []Explanation          `json:"explanations"`
	DaysWithoutMiddleShift []string               `json:"daysWithoutMiddleShift"`

	// 硬性输入错误；非空时不包含排班内容
	Errors []string `json:"errors,omitempty"`

	CreatedAt time.Time `json:"createdAt,omitempty"`
}

// HasErrors 检查是否存在硬性输入错误
func (s *Schedule) HasErrors() bool {
	return len(s.Errors) > 0
}

// AssignedOn 返回某天某班次的已分配人数，日期无条目时为 0
func (s *Schedule) AssignedOn(date string, shift ShiftType) int {
	day, ok := s.Days[date]
	if !ok {
		return 0
	}
	return day.Count(shift)
}
