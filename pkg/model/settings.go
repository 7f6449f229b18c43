// Package model 定义月度排班引擎的核心数据模型
package model

// ShiftTime 单个班次的时间定义
type ShiftTime struct {
	Start   string `json:"start"` // HH:MM
	End     string `json:"end"`   // HH:MM
	Hours   int    `json:"hours"`
	Minutes int    `json:"minutes"`
}

// DurationHours 返回班次时长（小时）
func (s ShiftTime) DurationHours() float64 {
	return float64(s.Hours) + float64(s.Minutes)/60.0
}

// ShiftTimes 三个班次的时间定义
type ShiftTimes struct {
	Early  ShiftTime `json:"früh"`
	Middle ShiftTime `json:"zwischen"`
	Late   ShiftTime `json:"spät"`
}

// For 返回某班次的时间定义
func (s ShiftTimes) For(shift ShiftType) ShiftTime {
	switch shift {
	case ShiftMiddle:
		return s.Middle
	case ShiftLate:
		return s.Late
	default:
		return s.Early
	}
}

// StaffingLevel 单日各班次的最低人数
type StaffingLevel struct {
	Early  int `json:"früh"`
	Middle int `json:"zwischen"`
	Late   int `json:"spät"`
}

// For 返回某班次的最低人数
func (l StaffingLevel) For(shift ShiftType) int {
	switch shift {
	case ShiftMiddle:
		return l.Middle
	case ShiftLate:
		return l.Late
	default:
		return l.Early
	}
}

// Total 返回单日所需总人数
func (l StaffingLevel) Total() int {
	return l.Early + l.Middle + l.Late
}

// MinStaffing 工作日与周末的最低人数配置
type MinStaffing struct {
	Weekday StaffingLevel `json:"weekday"`
	Weekend StaffingLevel `json:"weekend"`
}

// Rules 排班规则
type Rules struct {
	MaxConsecutiveDays      int     `json:"maxConsecutiveDays"`
	MinRestHours            int     `json:"minRestHours"`
	NoEarlyAfterLate        bool    `json:"noEarlyAfterLate"`
	MaxHoursPerDay          int     `json:"maxHoursPerDay"`
	MaxHoursPerWeek         int     `json:"maxHoursPerWeek"`
	HoursTolerance          float64 `json:"hoursTolerance"`
	MinutesTolerance        int     `json:"minutesTolerance"`
	MinDaysOffBetweenBlocks int     `json:"minDaysOffBetweenBlocks"`
}

// ToleranceHours 返回目标工时的允许偏差（小时）
func (r Rules) ToleranceHours() float64 {
	return r.HoursTolerance + float64(r.MinutesTolerance)/60.0
}

// WeekendRules 按工作量划分的每月最大周末数
type WeekendRules struct {
	Under50 int `json:"under50"` // 工作量 <= 50%
	Over50  int `json:"over50"`  // 工作量 > 50%
}

// MaxWeekendsFor 返回某工作量员工每月可排的最大周末数
func (w WeekendRules) MaxWeekendsFor(workload float64) int {
	if workload <= 50 {
		return w.Under50
	}
	return w.Over50
}

// Holiday 节假日
type Holiday struct {
	Date string `json:"date"` // YYYY-MM-DD
	Name string `json:"name"`
}

// Settings 排班配置，生成过程中不可变
type Settings struct {
	Shifts       ShiftTimes   `json:"shifts"`
	MinStaffing  MinStaffing  `json:"minStaffing"`
	Rules        Rules        `json:"rules"`
	WeekendRules WeekendRules `json:"weekendRules"`
	Holidays     []Holiday    `json:"holidays,omitempty"`
}

// IsHoliday 检查某天是否为节假日
func (s *Settings) IsHoliday(date string) bool {
	for _, h := range s.Holidays {
		if h.Date == date {
			return true
		}
	}
	return false
}

// DefaultSettings 返回生产环境的默认配置
func DefaultSettings() *Settings {
	return &Settings{
		Shifts: ShiftTimes{
			Early:  ShiftTime{Start: "07:00", End: "15:54", Hours: 8, Minutes: 24},
			Middle: ShiftTime{Start: "10:00", End: "18:54", Hours: 8, Minutes: 24},
			Late:   ShiftTime{Start: "12:45", End: "21:39", Hours: 8, Minutes: 54},
		},
		MinStaffing: MinStaffing{
			Weekday: StaffingLevel{Early: 2, Middle: 3, Late: 2},
			Weekend: StaffingLevel{Early: 1, Middle: 2, Late: 1},
		},
		Rules: Rules{
			MaxConsecutiveDays:      4,
			MinRestHours:            11,
			NoEarlyAfterLate:        true,
			MaxHoursPerDay:          12,
			MaxHoursPerWeek:         48,
			HoursTolerance:          8,
			MinutesTolerance:        0,
			MinDaysOffBetweenBlocks: 2,
		},
		WeekendRules: WeekendRules{Under50: 1, Over50: 2},
	}
}
