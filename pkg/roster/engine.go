package roster

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/helmplan/helmplan/pkg/logger"
	"github.com/helmplan/helmplan/pkg/model"
)

// ErrNoEmployees 员工列表为空时写入结果的错误信息
const ErrNoEmployees = "at least one employee is required"

// Engine 月度排班引擎
// 同一输入总是产生同一结果
type Engine struct {
	log *logger.PlannerLogger
}

// New 创建排班引擎
func New() *Engine {
	return &Engine{log: logger.NewPlannerLogger()}
}

// Generate 为指定月份生成排班
// 硬性输入错误（空员工列表、非法月份）通过结果的 Errors 字段返回，
// 此时不包含任何排班内容
func (e *Engine) Generate(ctx context.Context, employees []*model.Employee, month string, settings *model.Settings) *model.Schedule {
	start := time.Now()

	if len(employees) == 0 {
		return &model.Schedule{Month: month, Errors: []string{ErrNoEmployees}}
	}
	if settings == nil {
		settings = model.DefaultSettings()
	}

	dates, err := monthDates(month)
	if err != nil {
		return &model.Schedule{Month: month, Errors: []string{fmt.Sprintf("invalid month %q, expected YYYY-MM", month)}}
	}
	if ctx.Err() != nil {
		return &model.Schedule{Month: month, Errors: []string{"generation cancelled"}}
	}

	e.log.StartGeneration(month, len(employees), len(dates))
	g := newGeneration(employees, month, dates, settings, e.log)

	assigned := g.scheduleWeekends()
	e.log.PhaseComplete(month, "weekend", assigned)

	assigned = g.scheduleWeekdays()
	e.log.PhaseComplete(month, "weekday", assigned)

	violations := g.violations()
	schedule := g.assemble(violations)

	e.log.GenerationComplete(month, time.Since(start), len(violations))
	return schedule
}

// assemble 把生成状态汇总为结果
func (g *generation) assemble(violations []model.Violation) *model.Schedule {
	hours := make(map[string]float64, len(g.employees))
	stats := make(map[string]*model.ShiftStats, len(g.employees))
	targets := make(map[string]float64, len(g.employees))
	weekendShifts := make(map[string]int, len(g.employees))
	for _, emp := range g.employees {
		st := g.states[emp.ID]
		hours[emp.ID] = st.hours
		stats[emp.ID] = st.stats
		targets[emp.ID] = st.target
		weekendShifts[emp.ID] = st.weekends
	}

	noMiddle := append([]string(nil), g.daysWithoutMiddle...)
	sort.Strings(noMiddle)

	return &model.Schedule{
		Month:                  g.month,
		Days:                   g.days,
		Violations:             violations,
		EmployeeHours:          hours,
		EmployeeStats:          stats,
		TargetHours:            targets,
		EmployeeWeekendShifts:  weekendShifts,
		Explanations:           g.explanations(violations),
		DaysWithoutMiddleShift: noMiddle,
		CreatedAt:              time.Now(),
	}
}
