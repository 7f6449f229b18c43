package roster

import (
	"math"
	"sort"

	"github.com/helmplan/helmplan/pkg/model"
)

// ratioThreshold 比率型排序层级的最小差值，低于该值视为平手
const ratioThreshold = 0.1

// rankCandidates 对候选人排序，越靠前越优先
// 层级依次为：当日班次偏好、周末配额比（仅周末）、单班次平衡、
// 整体班次偏差、剩余目标工时比、工作量，最后按员工ID稳定排序
func (g *generation) rankCandidates(cands []*employeeState, date string, shift model.ShiftType, weekend bool) {
	sort.SliceStable(cands, func(i, j int) bool {
		return g.compareCandidates(cands[i], cands[j], date, shift, weekend) < 0
	})
}

func (g *generation) compareCandidates(a, b *employeeState, date string, shift model.ShiftType, weekend bool) int {
	// 1. 明确偏好当日该班次的候选人直接胜出
	aPref := prefersShift(a, date, shift)
	bPref := prefersShift(b, date, shift)
	if aPref != bPref {
		if aPref {
			return -1
		}
		return 1
	}

	// 2. 周末配额比更低者优先
	if weekend {
		ar := g.weekendRatio(a)
		br := g.weekendRatio(b)
		if math.Abs(ar-br) > ratioThreshold {
			if ar < br {
				return -1
			}
			return 1
		}
	}

	// 3. 对该班次的平衡需求更大者优先
	an := shiftNeed(a, shift)
	bn := shiftNeed(b, shift)
	if math.Abs(an-bn) > ratioThreshold {
		if an > bn {
			return -1
		}
		return 1
	}

	// 4. 整体班次分布偏差更大者优先
	ad := totalDeviation(a)
	bd := totalDeviation(b)
	if math.Abs(ad-bd) > ratioThreshold {
		if ad > bd {
			return -1
		}
		return 1
	}

	// 5. 剩余目标工时比例更大者优先
	arem := remainingFraction(a)
	brem := remainingFraction(b)
	if math.Abs(arem-brem) > ratioThreshold {
		if arem > brem {
			return -1
		}
		return 1
	}

	// 6. 工作量更高者优先
	if a.emp.Workload != b.emp.Workload {
		if a.emp.Workload > b.emp.Workload {
			return -1
		}
		return 1
	}

	// 最终按员工ID保证确定性
	if a.emp.ID < b.emp.ID {
		return -1
	}
	if a.emp.ID > b.emp.ID {
		return 1
	}
	return 0
}

// prefersShift 检查员工当天是否明确偏好该班次
func prefersShift(st *employeeState, date string, shift model.ShiftType) bool {
	p := st.emp.PreferenceOn(date)
	return p != nil && p.Type == string(shift)
}

// weekendRatio 返回已用周末数占配额的比例
func (g *generation) weekendRatio(st *employeeState) float64 {
	max := g.settings.WeekendRules.MaxWeekendsFor(st.emp.Workload)
	if max <= 0 {
		return 1
	}
	return float64(st.weekends) / float64(max)
}

// idealShare 返回员工技能范围内每个班次的理想占比
func idealShare(st *employeeState) float64 {
	if len(st.emp.Skills) == 0 {
		return 0
	}
	return 1.0 / float64(len(st.emp.Skills))
}

// actualShare 返回某班次在员工已排天数中的实际占比
func actualShare(st *employeeState, shift model.ShiftType) float64 {
	if st.stats.TotalDays == 0 {
		return 0
	}
	return float64(st.stats.Count(shift)) / float64(st.stats.TotalDays)
}

// shiftNeed 返回员工对某班次的平衡需求（理想占比减实际占比）
func shiftNeed(st *employeeState, shift model.ShiftType) float64 {
	return idealShare(st) - actualShare(st, shift)
}

// totalDeviation 返回员工全部技能班次的占比偏差之和
func totalDeviation(st *employeeState) float64 {
	ideal := idealShare(st)
	sum := 0.0
	for _, s := range st.emp.Skills {
		sum += math.Abs(actualShare(st, s) - ideal)
	}
	return sum
}

// remainingFraction 返回员工尚未完成的目标工时比例
func remainingFraction(st *employeeState) float64 {
	if st.target <= 0 {
		return 0
	}
	return 1 - st.hours/st.target
}
