package roster

import (
	"fmt"
	"strings"

	"github.com/helmplan/helmplan/pkg/model"
)

// violations 汇总人员不足和工时超出的违规
// 被再分配取消的中班不算人员不足
func (g *generation) violations() []model.Violation {
	var out []model.Violation

	dropped := make(map[string]bool, len(g.daysWithoutMiddle))
	for _, date := range g.daysWithoutMiddle {
		dropped[date] = true
	}

	for _, date := range g.dates {
		day, ok := g.days[date]
		if !ok {
			// 节假日周末组内的日期不参与排班
			continue
		}
		staffing := g.staffingFor(date)
		for _, shift := range model.AllShifts() {
			if shift == model.ShiftMiddle && dropped[date] {
				continue
			}
			required := staffing.For(shift)
			assigned := day.Count(shift)
			if assigned < required {
				out = append(out, model.Violation{
					Type:     model.ViolationUnderstaffed,
					Date:     date,
					Shift:    shift,
					Required: required,
					Assigned: assigned,
				})
			}
		}
	}

	// 只报告超出目标工时加容差的情况，工时不足不算违规
	tolerance := g.settings.Rules.ToleranceHours()
	for _, emp := range g.employees {
		st := g.states[emp.ID]
		diff := st.hours - st.target
		if diff > tolerance {
			out = append(out, model.Violation{
				Type:         model.ViolationHoursMismatch,
				EmployeeID:   emp.ID,
				EmployeeName: emp.Name,
				Target:       st.target,
				Actual:       st.hours,
				Difference:   diff,
			})
		}
	}

	return out
}

// explanations 在出现人员不足时给出结构化的原因解释
func (g *generation) explanations(violations []model.Violation) []model.Explanation {
	understaffed := false
	for _, v := range violations {
		if v.Type == model.ViolationUnderstaffed {
			understaffed = true
			break
		}
	}
	if !understaffed {
		return nil
	}

	earlyDur := g.settings.Shifts.Early.DurationHours()

	// 需求：已排班日期的最低人数之和（按班次与周末分别统计）
	demandByShift := make(map[model.ShiftType]float64)
	totalDemand := 0.0
	weekendDemand := 0.0
	for _, date := range g.dates {
		if _, ok := g.days[date]; !ok {
			continue
		}
		staffing := g.staffingFor(date)
		for _, shift := range model.AllShifts() {
			required := float64(staffing.For(shift))
			demandByShift[shift] += required
			totalDemand += required
			if isWeekendDate(date) {
				weekendDemand += required
			}
		}
	}

	// 供给：由目标工时推算的可用班次容量
	totalSupply := 0.0
	supplyByShift := make(map[model.ShiftType]float64)
	weekendSupply := 0.0
	freiDays := 0
	absenceDays := 0
	for _, emp := range g.employees {
		st := g.states[emp.ID]
		capacityDays := st.target / earlyDur
		totalSupply += capacityDays

		share := idealShare(st)
		for _, s := range emp.Skills {
			supplyByShift[s] += capacityDays * share
		}

		weekendSupply += float64(g.settings.WeekendRules.MaxWeekendsFor(emp.Workload) * 2)

		for _, p := range emp.Preferences {
			if p.Type == model.PreferenceFree && strings.HasPrefix(p.Date, g.month) {
				freiDays++
			}
		}
		for _, date := range g.dates {
			if emp.IsAbsentOn(date) {
				absenceDays++
			}
		}
	}

	var out []model.Explanation

	if totalDemand > totalSupply {
		out = append(out, model.Explanation{
			Type:    model.ExplanationCapacityShortage,
			Message: fmt.Sprintf("总体容量不足：本月需要 %.0f 个班次，按目标工时可用容量约 %.1f 个班次", totalDemand, totalSupply),
			Demand:  totalDemand,
			Supply:  totalSupply,
		})
	}

	for _, shift := range model.AllShifts() {
		if demandByShift[shift] > supplyByShift[shift] {
			out = append(out, model.Explanation{
				Type:    model.ExplanationSkillShortage,
				Shift:   shift,
				Message: fmt.Sprintf("班次 %s 的技能容量不足：需要 %.0f 个班次，具备该技能的容量约 %.1f 个班次", shift, demandByShift[shift], supplyByShift[shift]),
				Demand:  demandByShift[shift],
				Supply:  supplyByShift[shift],
			})
		}
	}

	if weekendDemand > weekendSupply {
		out = append(out, model.Explanation{
			Type:    model.ExplanationWeekendLimit,
			Message: fmt.Sprintf("周末配额不足：周末共需要 %.0f 个班次，配额允许的供给约 %.0f 个班次", weekendDemand, weekendSupply),
			Demand:  weekendDemand,
			Supply:  weekendSupply,
		})
	}

	if totalSupply > 0 && float64(freiDays) > 0.1*totalSupply {
		out = append(out, model.Explanation{
			Type:    model.ExplanationFreePreferences,
			Message: fmt.Sprintf("休息日偏好较多：本月共有 %d 个休息日请求，占可用容量的比例较高", freiDays),
			Demand:  float64(freiDays),
			Supply:  totalSupply,
		})
	}

	if totalSupply > 0 && float64(absenceDays) > 0.1*totalSupply {
		out = append(out, model.Explanation{
			Type:    model.ExplanationAbsences,
			Message: fmt.Sprintf("缺勤较多：病假和休假共占用 %d 个工作日容量", absenceDays),
			Demand:  float64(absenceDays),
			Supply:  totalSupply,
		})
	}

	return out
}
