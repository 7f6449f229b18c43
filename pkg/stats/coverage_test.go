package stats

import (
	"testing"

	"github.com/helmplan/helmplan/pkg/model"
)

func testSchedule() *model.Schedule {
	return &model.Schedule{
		Month: "2026-03",
		Days: map[string]model.DayAssignments{
			// 周一，工作日配置 2/3/2
			"2026-03-02": {
				model.ShiftEarly:  {"e1", "e2"},
				model.ShiftMiddle: {"e3", "e4", "e5"},
				model.ShiftLate:   {"e6", "e7"},
			},
			// 周二，中班缺2人
			"2026-03-03": {
				model.ShiftEarly:  {"e1", "e2"},
				model.ShiftMiddle: {"e3"},
				model.ShiftLate:   {"e6", "e7"},
			},
			// 周六，周末配置 1/2/1，早班超员1人不计入
			"2026-03-07": {
				model.ShiftEarly:  {"e1", "e2"},
				model.ShiftMiddle: {"e3", "e4"},
				model.ShiftLate:   {"e6"},
			},
		},
		EmployeeHours:         map[string]float64{"e1": 100, "e2": 180},
		TargetHours:           map[string]float64{"e1": 168, "e2": 168},
		EmployeeWeekendShifts: map[string]int{"e1": 1, "e2": 3},
	}
}

func TestCoverageAnalyzer_Analyze(t *testing.T) {
	analyzer := NewCoverageAnalyzer(model.DefaultSettings())
	metrics := analyzer.Analyze(testSchedule())

	// 需求: 7 + 7 + 4 = 18；有效分配: 7 + 5 + 4 = 16
	if metrics.RequiredSlots != 18 {
		t.Errorf("RequiredSlots = %d, expected 18", metrics.RequiredSlots)
	}
	if metrics.AssignedSlots != 16 {
		t.Errorf("AssignedSlots = %d, expected 16", metrics.AssignedSlots)
	}

	if len(metrics.CriticalDays) != 1 {
		t.Fatalf("应该只有1个缺口日期, got %d", len(metrics.CriticalDays))
	}
	day := metrics.CriticalDays[0]
	if day.Date != "2026-03-03" || day.Missing != 2 {
		t.Errorf("缺口日期错误: %+v", day)
	}

	full := metrics.DailyCoverage["2026-03-02"]
	if full.CoverageRate != 100 {
		t.Errorf("2026-03-02 覆盖率 = %v, expected 100", full.CoverageRate)
	}
}

func TestCoverageAnalyzer_EmptySchedule(t *testing.T) {
	analyzer := NewCoverageAnalyzer(nil)

	metrics := analyzer.Analyze(&model.Schedule{})
	if metrics.CoverageRate != 100 {
		t.Errorf("空排班的覆盖率应为100, got %v", metrics.CoverageRate)
	}
}

func TestCoverageAnalyzer_Suggestions(t *testing.T) {
	analyzer := NewCoverageAnalyzer(model.DefaultSettings())

	employees := []*model.Employee{
		{ID: "e1", Name: "Anna", Workload: 100},
		{ID: "e2", Name: "Thomas", Workload: 40},
	}

	suggestions := analyzer.Suggestions(testSchedule(), employees)

	types := make(map[string]int)
	for _, s := range suggestions {
		if s.Message == "" {
			t.Error("建议应包含可读信息")
		}
		types[s.Type]++
	}

	if types[SuggestionCriticalDay] != 1 {
		t.Errorf("缺口日期建议数 = %d, expected 1", types[SuggestionCriticalDay])
	}
	// e1 工时 100/168 < 90%
	if types[SuggestionAvailableCapacity] != 1 {
		t.Errorf("剩余容量建议数 = %d, expected 1", types[SuggestionAvailableCapacity])
	}
	// e2 工作量40%建议最多1个周末，实际3个
	if types[SuggestionWeekendRedistribution] != 1 {
		t.Errorf("周末再分配建议数 = %d, expected 1", types[SuggestionWeekendRedistribution])
	}
}
