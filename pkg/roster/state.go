package roster

import (
	"github.com/helmplan/helmplan/pkg/logger"
	"github.com/helmplan/helmplan/pkg/model"
)

// employeeState 单个员工在一次生成运行中的全部状态
type employeeState struct {
	emp      *model.Employee
	target   float64
	hours    float64
	stats    *model.ShiftStats
	weekends int // 已分配的周末组数

	// 日期 -> 已分配班次
	shiftOn map[string]model.ShiftType
}

// workedOn 检查员工当天是否已有班次
func (s *employeeState) workedOn(date string) bool {
	_, ok := s.shiftOn[date]
	return ok
}

// assign 记录一次分配
func (s *employeeState) assign(date string, shift model.ShiftType, hours float64) {
	s.shiftOn[date] = shift
	s.hours += hours
	s.stats.Add(shift)
}

// unassign 撤销一次分配
func (s *employeeState) unassign(date string, shift model.ShiftType, hours float64) {
	delete(s.shiftOn, date)
	s.hours -= hours
	s.stats.Remove(shift)
}

// generation 一次生成运行的共享状态
type generation struct {
	month     string
	dates     []string
	settings  *model.Settings
	employees []*model.Employee
	states    map[string]*employeeState

	// 日期 -> 当日排班；节假日周末组内的日期没有条目
	days map[string]model.DayAssignments

	daysWithoutMiddle []string
	log               *logger.PlannerLogger
}

func newGeneration(employees []*model.Employee, month string, dates []string, settings *model.Settings, log *logger.PlannerLogger) *generation {
	g := &generation{
		month:     month,
		dates:     dates,
		settings:  settings,
		employees: employees,
		states:    make(map[string]*employeeState, len(employees)),
		days:      make(map[string]model.DayAssignments, len(dates)),
		log:       log,
	}
	for _, emp := range employees {
		g.states[emp.ID] = &employeeState{
			emp:     emp,
			target:  TargetHours(emp, month, settings),
			stats:   &model.ShiftStats{},
			shiftOn: make(map[string]model.ShiftType),
		}
	}
	return g
}

// staffingFor 返回某天适用的最低人数配置
// 周末和节假日使用周末配置
func (g *generation) staffingFor(date string) model.StaffingLevel {
	if isWeekendDate(date) || g.settings.IsHoliday(date) {
		return g.settings.MinStaffing.Weekend
	}
	return g.settings.MinStaffing.Weekday
}

// assign 把员工分配到某天的某个班次
func (g *generation) assign(date string, shift model.ShiftType, st *employeeState) {
	day := g.days[date]
	if day == nil {
		day = model.DayAssignments{}
		g.days[date] = day
	}
	day[shift] = append(day[shift], st.emp.ID)
	st.assign(date, shift, g.settings.Shifts.For(shift).DurationHours())
}

// unassignShift 撤销某天某班次的全部分配并返回被撤销的员工
func (g *generation) unassignShift(date string, shift model.ShiftType) []*employeeState {
	day := g.days[date]
	if day == nil {
		return nil
	}

	var reverted []*employeeState
	hours := g.settings.Shifts.For(shift).DurationHours()
	for _, id := range day[shift] {
		st := g.states[id]
		st.unassign(date, shift, hours)
		reverted = append(reverted, st)
	}
	delete(day, shift)
	return reverted
}

// consecutiveDaysBefore 返回紧邻某天之前的连续工作天数
func (g *generation) consecutiveDaysBefore(st *employeeState, date string) int {
	count := 0
	d := previousDate(date)
	for i := 0; i < 31; i++ {
		if !st.workedOn(d) {
			break
		}
		count++
		d = previousDate(d)
	}
	return count
}

// consecutiveDaysAfter 返回紧邻某天之后的连续工作天数
// 周末阶段先行分配，工作日阶段必须把已排的周末也算进连续天数
func (g *generation) consecutiveDaysAfter(st *employeeState, date string) int {
	count := 0
	d := nextDate(date)
	for i := 0; i < 31; i++ {
		if !st.workedOn(d) {
			break
		}
		count++
		d = nextDate(d)
	}
	return count
}
