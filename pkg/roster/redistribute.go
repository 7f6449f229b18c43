package roster

import (
	"sort"

	"github.com/helmplan/helmplan/pkg/model"
)

// dropMiddleAndReinforce 中班再分配
// 当中班人数达不到最低要求时，整体取消该组日期的中班，
// 记录到无中班日期列表，并用空闲员工补足早班和晚班的缺口
func (g *generation) dropMiddleAndReinforce(group []string, weekend bool, staffing model.StaffingLevel) {
	assigned := g.days[group[0]].Count(model.ShiftMiddle)
	g.log.MiddleShiftDropped(group[0], assigned, staffing.Middle)

	reverted := make(map[string]bool)
	for _, date := range group {
		for _, st := range g.unassignShift(date, model.ShiftMiddle) {
			reverted[st.emp.ID] = true
		}
		g.daysWithoutMiddle = append(g.daysWithoutMiddle, date)
	}

	// 周末组内的中班是整组分配的，撤销后退还周末配额
	if weekend {
		for id := range reverted {
			g.states[id].weekends--
		}
	}

	for _, shift := range []model.ShiftType{model.ShiftEarly, model.ShiftLate} {
		shortfall := staffing.For(shift) - g.days[group[0]].Count(shift)
		if shortfall <= 0 {
			continue
		}
		g.reinforceShift(group, shift, shortfall, weekend)
	}
}

// reinforceShift 为某班次补足缺口
// 候选人按该班次当前占比与目标工时完成度之和升序排列
func (g *generation) reinforceShift(group []string, shift model.ShiftType, shortfall int, weekend bool) {
	var cands []*employeeState
	for _, emp := range g.employees {
		st := g.states[emp.ID]
		if weekend && !g.underWeekendQuota(st) {
			continue
		}
		ok := true
		for _, date := range group {
			if valid, _ := g.eligible(st, date, shift); !valid {
				ok = false
				break
			}
		}
		if !ok || !g.hoursCapOK(st, shift) {
			continue
		}
		cands = append(cands, st)
	}

	sort.SliceStable(cands, func(i, j int) bool {
		si := reinforceScore(cands[i], shift)
		sj := reinforceScore(cands[j], shift)
		if si != sj {
			return si < sj
		}
		return cands[i].emp.ID < cands[j].emp.ID
	})

	for i := 0; i < len(cands) && i < shortfall; i++ {
		if weekend {
			g.assignGroup(group, shift, cands[i])
		} else {
			g.assign(group[0], shift, cands[i])
		}
	}
}

// reinforceScore 越低越优先：该班次占比低且目标工时完成度低的员工先补
func reinforceScore(st *employeeState, shift model.ShiftType) float64 {
	return actualShare(st, shift) + completionFraction(st)
}

// completionFraction 返回目标工时的完成比例
func completionFraction(st *employeeState) float64 {
	if st.target <= 0 {
		return 1
	}
	return st.hours / st.target
}
