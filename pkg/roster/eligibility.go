package roster

import "github.com/helmplan/helmplan/pkg/model"

// 规则名称，用于调试日志
const (
	ruleAlreadyAssigned    = "already_assigned"
	ruleUnavailableWeekday = "unavailable_weekday"
	ruleAbsent             = "absent"
	ruleMissingSkill       = "missing_skill"
	ruleMaxConsecutiveDays = "max_consecutive_days"
	ruleBlockRest          = "min_days_off_between_blocks"
	ruleFreePreference     = "free_preference"
	ruleOtherShiftPrefer   = "other_shift_preferred"
	ruleEarlyAfterLate     = "early_after_late"
	ruleHoursCap           = "hours_cap"
	ruleWeekendQuota       = "weekend_quota"
)

// eligible 按固定顺序检查员工能否在某天排某班次
// 第一个不满足的规则即拒绝，返回规则名称
func (g *generation) eligible(st *employeeState, date string, shift model.ShiftType) (bool, string) {
	// 1. 当天已有班次
	if st.workedOn(date) {
		return false, ruleAlreadyAssigned
	}

	// 2. 班次技能
	if !st.emp.HasSkill(shift) {
		return false, ruleMissingSkill
	}

	// 3. 每周可用性
	if !st.emp.AvailableOn(weekdayOf(date)) {
		return false, ruleUnavailableWeekday
	}

	// 4. 病假或休假
	if st.emp.IsAbsentOn(date) {
		return false, ruleAbsent
	}

	// 5. 最大连续工作天数（前后两个方向都要计入已排的日期）
	run := g.consecutiveDaysBefore(st, date) + g.consecutiveDaysAfter(st, date)
	if run >= st.emp.EffectiveMaxConsecutiveDays() {
		return false, ruleMaxConsecutiveDays
	}

	// 6. 工作块之间的最少休息天数
	if !g.blockRestOK(st, date) {
		return false, ruleBlockRest
	}

	// 7. 当日偏好
	if p := st.emp.PreferenceOn(date); p != nil {
		if p.Type == model.PreferenceFree {
			return false, ruleFreePreference
		}
		if model.IsValidShift(model.ShiftType(p.Type)) && p.Type != string(shift) {
			return false, ruleOtherShiftPrefer
		}
	}

	// 8. 晚班后不接早班
	// 周末阶段先行分配，所以排晚班时也要检查第二天是否已有早班
	if g.settings.Rules.NoEarlyAfterLate {
		if shift == model.ShiftEarly {
			if prev, ok := st.shiftOn[previousDate(date)]; ok && prev == model.ShiftLate {
				return false, ruleEarlyAfterLate
			}
		}
		if shift == model.ShiftLate {
			if next, ok := st.shiftOn[nextDate(date)]; ok && next == model.ShiftEarly {
				return false, ruleEarlyAfterLate
			}
		}
	}

	return true, ""
}

// blockRestOK 检查工作块之间的休息间隔
// 仅在员工不处于工作块中间时检查：若上一个工作块结束后的
// 空闲天数少于 minDaysOffBetweenBlocks，则不允许开新块
func (g *generation) blockRestOK(st *employeeState, date string) bool {
	min := g.settings.Rules.MinDaysOffBetweenBlocks
	if min <= 1 {
		return true
	}

	d := previousDate(date)
	if st.workedOn(d) {
		// 处于工作块中间，由连续天数规则约束
		return true
	}

	gap := 0
	for i := 0; i < 31; i++ {
		if st.workedOn(d) {
			return gap >= min
		}
		gap++
		if gap >= min {
			return true
		}
		d = previousDate(d)
	}
	// 之前没有工作块
	return true
}

// hoursCapOK 检查分配后是否仍在目标工时加容差范围内
// 仅用于工作日排班和再分配
func (g *generation) hoursCapOK(st *employeeState, shift model.ShiftType) bool {
	hours := g.settings.Shifts.For(shift).DurationHours()
	return st.hours+hours <= st.target+g.settings.Rules.ToleranceHours()
}

// underWeekendQuota 检查员工是否还能再排一个周末
func (g *generation) underWeekendQuota(st *employeeState) bool {
	return st.weekends < g.settings.WeekendRules.MaxWeekendsFor(st.emp.Workload)
}
