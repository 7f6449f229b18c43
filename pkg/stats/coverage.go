// Package stats 提供排班统计分析功能
package stats

import (
	"fmt"
	"sort"
	"time"

	"github.com/helmplan/helmplan/pkg/model"
)

// 建议类型
const (
	SuggestionCriticalDay           = "critical_day"
	SuggestionAvailableCapacity     = "available_capacity"
	SuggestionWeekendRedistribution = "weekend_redistribution"
)

// CoverageMetrics 覆盖率指标
type CoverageMetrics struct {
	RequiredSlots int     `json:"required_slots"` // 最低人数需求总和
	AssignedSlots int     `json:"assigned_slots"` // 有效分配数（超出需求的不计入）
	CoverageRate  float64 `json:"coverage_rate"`  // 覆盖率 (%)

	DailyCoverage map[string]DayCoverage `json:"daily_coverage"`
	CriticalDays  []CriticalDay          `json:"critical_days"`
}

// DayCoverage 每日覆盖情况
type DayCoverage struct {
	Date         string  `json:"date"`
	Required     int     `json:"required"`
	Assigned     int     `json:"assigned"`
	CoverageRate float64 `json:"coverage_rate"`
}

// CriticalDay 缺口较大的日期
type CriticalDay struct {
	Date    string            `json:"date"`
	Missing int               `json:"missing"`
	Shifts  []model.ShiftType `json:"shifts"`
}

// Suggestion 改进建议
type Suggestion struct {
	Type         string  `json:"type"`
	Message      string  `json:"message"`
	Date         string  `json:"date,omitempty"`
	EmployeeID   string  `json:"employee_id,omitempty"`
	EmployeeName string  `json:"employee_name,omitempty"`
	FreeHours    float64 `json:"free_hours,omitempty"`
	Weekends     int     `json:"weekends,omitempty"`
}

// CoverageAnalyzer 基于最低人数配置分析排班覆盖率
type CoverageAnalyzer struct {
	settings *model.Settings
}

// NewCoverageAnalyzer 创建覆盖率分析器
func NewCoverageAnalyzer(settings *model.Settings) *CoverageAnalyzer {
	if settings == nil {
		settings = model.DefaultSettings()
	}
	return &CoverageAnalyzer{settings: settings}
}

// weekdayOf 返回日期对应的星期几
func weekdayOf(date string) time.Weekday {
	d, err := time.Parse(model.DateLayout, date)
	if err != nil {
		return time.Monday
	}
	return d.Weekday()
}

// staffingFor 返回某天适用的最低人数配置
func (c *CoverageAnalyzer) staffingFor(date string) model.StaffingLevel {
	wd := weekdayOf(date)
	if wd == time.Saturday || wd == time.Sunday || c.settings.IsHoliday(date) {
		return c.settings.MinStaffing.Weekend
	}
	return c.settings.MinStaffing.Weekday
}

// Analyze 计算排班的覆盖率
// 没有条目的日期（节假日周末）不参与统计，
// 超出最低人数的分配不提高覆盖率
func (c *CoverageAnalyzer) Analyze(schedule *model.Schedule) *CoverageMetrics {
	metrics := &CoverageMetrics{
		DailyCoverage: make(map[string]DayCoverage),
	}
	if schedule == nil || len(schedule.Days) == 0 {
		metrics.CoverageRate = 100
		return metrics
	}

	dates := make([]string, 0, len(schedule.Days))
	for date := range schedule.Days {
		dates = append(dates, date)
	}
	sort.Strings(dates)

	for _, date := range dates {
		day := schedule.Days[date]
		staffing := c.staffingFor(date)

		required := 0
		assigned := 0
		var missingShifts []model.ShiftType
		for _, shift := range model.AllShifts() {
			need := staffing.For(shift)
			have := day.Count(shift)
			if have > need {
				have = need
			}
			required += need
			assigned += have
			if have < need {
				missingShifts = append(missingShifts, shift)
			}
		}

		dc := DayCoverage{Date: date, Required: required, Assigned: assigned}
		if required > 0 {
			dc.CoverageRate = float64(assigned) / float64(required) * 100
		} else {
			dc.CoverageRate = 100
		}
		metrics.DailyCoverage[date] = dc
		metrics.RequiredSlots += required
		metrics.AssignedSlots += assigned

		if missing := required - assigned; missing > 0 {
			metrics.CriticalDays = append(metrics.CriticalDays, CriticalDay{
				Date:    date,
				Missing: missing,
				Shifts:  missingShifts,
			})
		}
	}

	if metrics.RequiredSlots > 0 {
		metrics.CoverageRate = float64(metrics.AssignedSlots) / float64(metrics.RequiredSlots) * 100
	} else {
		metrics.CoverageRate = 100
	}

	sort.SliceStable(metrics.CriticalDays, func(i, j int) bool {
		return metrics.CriticalDays[i].Missing > metrics.CriticalDays[j].Missing
	})

	return metrics
}

// Suggestions 生成改进建议
// 包含缺口最大的日期（最多5个）、目标工时未用满的员工
// 以及周末班次超过建议值的员工
func (c *CoverageAnalyzer) Suggestions(schedule *model.Schedule, employees []*model.Employee) []Suggestion {
	var out []Suggestion
	if schedule == nil {
		return out
	}

	metrics := c.Analyze(schedule)
	for i, day := range metrics.CriticalDays {
		if i >= 5 {
			break
		}
		out = append(out, Suggestion{
			Type:    SuggestionCriticalDay,
			Date:    day.Date,
			Message: fmt.Sprintf("%s 缺少 %d 人，受影响班次: %v", day.Date, day.Missing, day.Shifts),
		})
	}

	for _, emp := range employees {
		target := schedule.TargetHours[emp.ID]
		hours := schedule.EmployeeHours[emp.ID]
		if target > 0 && hours < target*0.9 {
			out = append(out, Suggestion{
				Type:         SuggestionAvailableCapacity,
				EmployeeID:   emp.ID,
				EmployeeName: emp.Name,
				FreeHours:    target - hours,
				Message:      fmt.Sprintf("员工 %s 还有约 %.1f 小时的剩余容量", emp.Name, target-hours),
			})
		}
	}

	for _, emp := range employees {
		recommended := 1
		if emp.Workload > 50 {
			recommended = 2
		}
		weekends := schedule.EmployeeWeekendShifts[emp.ID]
		if weekends > recommended {
			out = append(out, Suggestion{
				Type:         SuggestionWeekendRedistribution,
				EmployeeID:   emp.ID,
				EmployeeName: emp.Name,
				Weekends:     weekends,
				Message:      fmt.Sprintf("员工 %s 排了 %d 个周末，建议不超过 %d 个", emp.Name, weekends, recommended),
			})
		}
	}

	return out
}
