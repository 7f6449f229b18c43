// Package validator 提供排班冲突检测
// 用于校验外部导入的排班，本地生成的排班由引擎自身保证规则
package validator

import (
	"fmt"
	"sort"
	"time"

	"github.com/helmplan/helmplan/pkg/model"
)

// ConflictType 冲突类型
type ConflictType string

const (
	ConflictDoubleBooking  ConflictType = "double_booking"   // 同一天多个班次
	ConflictSkill          ConflictType = "skill"            // 技能不匹配
	ConflictAbsence        ConflictType = "absence"          // 病假或休假期间被排班
	ConflictAvailability   ConflictType = "availability"     // 不可用的星期几
	ConflictEarlyAfterLate ConflictType = "early_after_late" // 晚班后接早班
	ConflictConsecutive    ConflictType = "consecutive"      // 连续天数过多
	ConflictUnknownID      ConflictType = "unknown_employee" // 未知员工ID
)

// Conflict 冲突信息
type Conflict struct {
	Type       ConflictType    `json:"type"`
	Severity   string          `json:"severity"` // error/warning
	EmployeeID string          `json:"employeeId"`
	Date       string          `json:"date,omitempty"`
	Shift      model.ShiftType `json:"shift,omitempty"`
	Message    string          `json:"message"`
}

// IsError 检查是否为硬冲突
func (c Conflict) IsError() bool {
	return c.Severity == "error"
}

// ConflictDetector 冲突检测器
type ConflictDetector struct {
	settings *model.Settings
}

// NewConflictDetector 创建冲突检测器
func NewConflictDetector(settings *model.Settings) *ConflictDetector {
	if settings == nil {
		settings = model.DefaultSettings()
	}
	return &ConflictDetector{settings: settings}
}

// DetectAll 检测排班中的所有冲突
func (d *ConflictDetector) DetectAll(schedule *model.Schedule, employees []*model.Employee) []Conflict {
	if schedule == nil || len(schedule.Days) == 0 {
		return nil
	}

	byID := make(map[string]*model.Employee, len(employees))
	for _, emp := range employees {
		byID[emp.ID] = emp
	}

	dates := make([]string, 0, len(schedule.Days))
	for date := range schedule.Days {
		dates = append(dates, date)
	}
	sort.Strings(dates)

	// 员工 -> 日期 -> 班次
	assigned := make(map[string]map[string]model.ShiftType)

	var conflicts []Conflict
	for _, date := range dates {
		day := schedule.Days[date]
		for _, shift := range model.AllShifts() {
			for _, id := range day[shift] {
				emp := byID[id]
				if emp == nil {
					conflicts = append(conflicts, Conflict{
						Type:       ConflictUnknownID,
						Severity:   "error",
						EmployeeID: id,
						Date:       date,
						Shift:      shift,
						Message:    fmt.Sprintf("员工 %s 不在员工列表中", id),
					})
					continue
				}

				if prior, ok := assigned[id][date]; ok {
					conflicts = append(conflicts, Conflict{
						Type:       ConflictDoubleBooking,
						Severity:   "error",
						EmployeeID: id,
						Date:       date,
						Shift:      shift,
						Message:    fmt.Sprintf("员工 %s 在 %s 已有班次 %s", emp.Name, date, prior),
					})
				} else {
					if assigned[id] == nil {
						assigned[id] = make(map[string]model.ShiftType)
					}
					assigned[id][date] = shift
				}

				conflicts = append(conflicts, d.checkAssignment(emp, date, shift)...)
			}
		}
	}

	for id, days := range assigned {
		emp := byID[id]
		if emp == nil {
			continue
		}
		conflicts = append(conflicts, d.checkSequences(emp, days)...)
	}

	return conflicts
}

// checkAssignment 检查单个分配
func (d *ConflictDetector) checkAssignment(emp *model.Employee, date string, shift model.ShiftType) []Conflict {
	var conflicts []Conflict

	if !emp.HasSkill(shift) {
		conflicts = append(conflicts, Conflict{
			Type:       ConflictSkill,
			Severity:   "error",
			EmployeeID: emp.ID,
			Date:       date,
			Shift:      shift,
			Message:    fmt.Sprintf("员工 %s 不具备班次 %s 的技能", emp.Name, shift),
		})
	}

	if emp.IsAbsentOn(date) {
		conflicts = append(conflicts, Conflict{
			Type:       ConflictAbsence,
			Severity:   "error",
			EmployeeID: emp.ID,
			Date:       date,
			Shift:      shift,
			Message:    fmt.Sprintf("员工 %s 在 %s 处于病假或休假", emp.Name, date),
		})
	}

	if day, err := time.Parse(model.DateLayout, date); err == nil {
		if !emp.AvailableOn(day.Weekday()) {
			conflicts = append(conflicts, Conflict{
				Type:       ConflictAvailability,
				Severity:   "warning",
				EmployeeID: emp.ID,
				Date:       date,
				Shift:      shift,
				Message:    fmt.Sprintf("员工 %s 在 %s（%s）不可用", emp.Name, date, day.Weekday()),
			})
		}
	}

	return conflicts
}

// checkSequences 检查跨日期的规则
func (d *ConflictDetector) checkSequences(emp *model.Employee, days map[string]model.ShiftType) []Conflict {
	var conflicts []Conflict

	dates := make([]string, 0, len(days))
	for date := range days {
		dates = append(dates, date)
	}
	sort.Strings(dates)

	// 晚班后接早班
	if d.settings.Rules.NoEarlyAfterLate {
		for _, date := range dates {
			if days[date] != model.ShiftLate {
				continue
			}
			next := nextDate(date)
			if days[next] == model.ShiftEarly {
				conflicts = append(conflicts, Conflict{
					Type:       ConflictEarlyAfterLate,
					Severity:   "error",
					EmployeeID: emp.ID,
					Date:       next,
					Shift:      model.ShiftEarly,
					Message:    fmt.Sprintf("员工 %s 在 %s 晚班后 %s 接早班", emp.Name, date, next),
				})
			}
		}
	}

	// 连续工作天数
	maxAllowed := emp.EffectiveMaxConsecutiveDays()
	run := 0
	runStart := ""
	reported := false
	for i, date := range dates {
		if i > 0 && nextDate(dates[i-1]) == date {
			run++
		} else {
			run = 1
			runStart = date
			reported = false
		}
		if run > maxAllowed && !reported {
			conflicts = append(conflicts, Conflict{
				Type:       ConflictConsecutive,
				Severity:   "error",
				EmployeeID: emp.ID,
				Date:       runStart,
				Message:    fmt.Sprintf("员工 %s 从 %s 起连续工作超过 %d 天", emp.Name, runStart, maxAllowed),
			})
			reported = true
		}
	}

	return conflicts
}

// HasErrors 检查冲突列表中是否存在硬冲突
func HasErrors(conflicts []Conflict) bool {
	for _, c := range conflicts {
		if c.IsError() {
			return true
		}
	}
	return false
}

// nextDate 返回后一天
func nextDate(date string) string {
	d, err := time.Parse(model.DateLayout, date)
	if err != nil {
		return ""
	}
	return d.AddDate(0, 0, 1).Format(model.DateLayout)
}
