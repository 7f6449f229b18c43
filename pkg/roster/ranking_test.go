package roster

import (
	"testing"

	"github.com/helmplan/helmplan/pkg/model"
)

func rankOrder(g *generation, date string, shift model.ShiftType, weekend bool, ids ...string) []string {
	cands := make([]*employeeState, 0, len(ids))
	for _, id := range ids {
		cands = append(cands, g.states[id])
	}
	g.rankCandidates(cands, date, shift, weekend)

	out := make([]string, 0, len(cands))
	for _, st := range cands {
		out = append(out, st.emp.ID)
	}
	return out
}

func TestRankCandidates_PreferenceWinsOutright(t *testing.T) {
	a := createEmployee("a1", "Anna", 100)
	b := createEmployee("b1", "Thomas", 60)
	b.Preferences = []model.Preference{{Date: "2026-03-02", Type: string(model.ShiftEarly)}}

	g := newTestGeneration(t, []*model.Employee{a, b}, "2026-03", flatSettings())
	// b 的工时压力和工作量都更低，但明确偏好直接胜出
	g.states["b1"].hours = 100

	order := rankOrder(g, "2026-03-02", model.ShiftEarly, false, "a1", "b1")
	if order[0] != "b1" {
		t.Errorf("偏好当日班次的员工应排第一, got %v", order)
	}
}

func TestRankCandidates_WeekendQuotaRatio(t *testing.T) {
	a := createEmployee("a1", "Anna", 100)
	b := createEmployee("b1", "Thomas", 100)

	g := newTestGeneration(t, []*model.Employee{a, b}, "2026-03", flatSettings())
	g.states["a1"].weekends = 1 // 比例 0.5
	g.states["b1"].weekends = 0 // 比例 0.0

	order := rankOrder(g, "2026-03-07", model.ShiftEarly, true, "a1", "b1")
	if order[0] != "b1" {
		t.Errorf("周末配额比更低者应排第一, got %v", order)
	}

	// 非周末上下文忽略该层级，落到后续层级后按ID排序
	order = rankOrder(g, "2026-03-02", model.ShiftEarly, false, "b1", "a1")
	if order[0] != "a1" {
		t.Errorf("非周末应忽略配额比, got %v", order)
	}
}

func TestRankCandidates_ShiftBalanceNeed(t *testing.T) {
	a := createEmployee("a1", "Anna", 100)
	b := createEmployee("b1", "Thomas", 100)

	g := newTestGeneration(t, []*model.Employee{a, b}, "2026-03", flatSettings())
	// a 已经排了两个早班，对早班的需求为负
	sa := g.states["a1"]
	sa.stats.Add(model.ShiftEarly)
	sa.stats.Add(model.ShiftEarly)
	sa.hours = 16
	// b 同样工时但班次分布均匀
	sb := g.states["b1"]
	sb.stats.Add(model.ShiftMiddle)
	sb.stats.Add(model.ShiftLate)
	sb.hours = 16

	order := rankOrder(g, "2026-03-09", model.ShiftEarly, false, "a1", "b1")
	if order[0] != "b1" {
		t.Errorf("早班占比低的员工应优先排早班, got %v", order)
	}
}

func TestRankCandidates_RemainingHours(t *testing.T) {
	a := createEmployee("a1", "Anna", 100)
	b := createEmployee("b1", "Thomas", 100)

	g := newTestGeneration(t, []*model.Employee{a, b}, "2026-03", flatSettings())
	// 班次分布相同，只有工时完成度不同
	g.states["a1"].hours = g.states["a1"].target * 0.8
	g.states["b1"].hours = g.states["b1"].target * 0.2

	order := rankOrder(g, "2026-03-02", model.ShiftEarly, false, "a1", "b1")
	if order[0] != "b1" {
		t.Errorf("剩余目标工时多的员工应优先, got %v", order)
	}
}

func TestRankCandidates_WorkloadTiebreak(t *testing.T) {
	a := createEmployee("a1", "Anna", 60)
	b := createEmployee("b1", "Thomas", 100)

	g := newTestGeneration(t, []*model.Employee{a, b}, "2026-03", flatSettings())

	order := rankOrder(g, "2026-03-02", model.ShiftEarly, false, "a1", "b1")
	if order[0] != "b1" {
		t.Errorf("工作量更高者应优先, got %v", order)
	}
}

func TestRankCandidates_DeterministicIDTiebreak(t *testing.T) {
	a := createEmployee("a1", "Anna", 100)
	b := createEmployee("b1", "Thomas", 100)

	g := newTestGeneration(t, []*model.Employee{a, b}, "2026-03", flatSettings())

	// 完全平手时按员工ID排序，与传入顺序无关
	first := rankOrder(g, "2026-03-02", model.ShiftEarly, false, "a1", "b1")
	second := rankOrder(g, "2026-03-02", model.ShiftEarly, false, "b1", "a1")

	if first[0] != "a1" || second[0] != "a1" {
		t.Errorf("平手时应按ID确定顺序, got %v / %v", first, second)
	}
}
