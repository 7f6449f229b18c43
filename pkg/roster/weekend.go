package roster

import "github.com/helmplan/helmplan/pkg/model"

// scheduleWeekends 周末排班阶段
// 周六和紧随的周日作为一个整体分配：被选中的员工在组内的
// 每一天都排同一个班次，周末配额按组计数
func (g *generation) scheduleWeekends() int {
	assigned := 0
	for _, group := range weekendGroups(g.dates) {
		if g.groupHasHoliday(group) {
			// 节假日落在周末组内时整组不排班
			continue
		}

		for _, date := range group {
			if g.days[date] == nil {
				g.days[date] = model.DayAssignments{}
			}
		}

		staffing := g.settings.MinStaffing.Weekend
		for _, shift := range model.AssignmentOrder() {
			assigned += g.fillWeekendShift(group, shift, staffing.For(shift))
		}

		if g.days[group[0]].Count(model.ShiftMiddle) < staffing.Middle {
			g.dropMiddleAndReinforce(group, true, staffing)
		}
	}
	return assigned
}

// groupHasHoliday 检查周末组内是否包含节假日
func (g *generation) groupHasHoliday(group []string) bool {
	for _, date := range group {
		if g.settings.IsHoliday(date) {
			return true
		}
	}
	return false
}

// fillWeekendShift 为周末组的某个班次分配员工，返回分配的人次
func (g *generation) fillWeekendShift(group []string, shift model.ShiftType, required int) int {
	if required <= 0 {
		return 0
	}

	cands := g.weekendCandidates(group, shift)
	g.rankCandidates(cands, group[0], shift, true)

	assigned := 0
	for _, st := range cands {
		if assigned >= required {
			break
		}
		g.assignGroup(group, shift, st)
		assigned++
	}
	return assigned * len(group)
}

// weekendCandidates 返回在组内每一天都满足全部资格检查
// 且周末配额未用完的候选人
func (g *generation) weekendCandidates(group []string, shift model.ShiftType) []*employeeState {
	var cands []*employeeState
	for _, emp := range g.employees {
		st := g.states[emp.ID]
		if !g.underWeekendQuota(st) {
			g.log.RuleRejection(emp.ID, group[0], string(shift), ruleWeekendQuota)
			continue
		}
		ok := true
		for _, date := range group {
			if valid, rule := g.eligible(st, date, shift); !valid {
				g.log.RuleRejection(emp.ID, date, string(shift), rule)
				ok = false
				break
			}
		}
		if ok {
			cands = append(cands, st)
		}
	}
	return cands
}

// assignGroup 把员工整组分配到某个班次并消耗一个周末配额
func (g *generation) assignGroup(group []string, shift model.ShiftType, st *employeeState) {
	for _, date := range group {
		g.assign(date, shift, st)
	}
	st.weekends++
}
