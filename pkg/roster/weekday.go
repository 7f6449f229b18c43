package roster

import "github.com/helmplan/helmplan/pkg/model"

// scheduleWeekdays 工作日排班阶段
// 按时间顺序处理非周末日期；节假日使用周末的最低人数配置
func (g *generation) scheduleWeekdays() int {
	assigned := 0
	for _, date := range g.dates {
		if isWeekendDate(date) {
			continue
		}

		if g.days[date] == nil {
			g.days[date] = model.DayAssignments{}
		}

		staffing := g.staffingFor(date)
		for _, shift := range model.AssignmentOrder() {
			assigned += g.fillDayShift(date, shift, staffing.For(shift))
		}

		if g.days[date].Count(model.ShiftMiddle) < staffing.Middle {
			g.dropMiddleAndReinforce([]string{date}, false, staffing)
		}
	}
	return assigned
}

// fillDayShift 为单日的某个班次分配员工，返回分配的人数
func (g *generation) fillDayShift(date string, shift model.ShiftType, required int) int {
	if required <= 0 {
		return 0
	}

	cands := g.dayCandidates(date, shift)
	g.rankCandidates(cands, date, shift, false)

	assigned := 0
	for _, st := range cands {
		if assigned >= required {
			break
		}
		g.assign(date, shift, st)
		assigned++
	}
	return assigned
}

// dayCandidates 返回通过资格检查和工时上限的候选人
func (g *generation) dayCandidates(date string, shift model.ShiftType) []*employeeState {
	var cands []*employeeState
	for _, emp := range g.employees {
		st := g.states[emp.ID]
		if valid, rule := g.eligible(st, date, shift); !valid {
			g.log.RuleRejection(emp.ID, date, string(shift), rule)
			continue
		}
		if !g.hoursCapOK(st, shift) {
			g.log.RuleRejection(emp.ID, date, string(shift), ruleHoursCap)
			continue
		}
		cands = append(cands, st)
	}
	return cands
}
