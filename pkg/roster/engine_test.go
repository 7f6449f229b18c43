package roster

import (
	"context"
	"reflect"
	"testing"

	"github.com/helmplan/helmplan/pkg/model"
)

func TestGenerate_EmptyEmployees(t *testing.T) {
	e := New()
	s := e.Generate(context.Background(), nil, "2026-03", model.DefaultSettings())

	if !s.HasErrors() {
		t.Fatal("空员工列表应返回错误")
	}
	if s.Errors[0] != ErrNoEmployees {
		t.Errorf("错误信息 = %q, expected %q", s.Errors[0], ErrNoEmployees)
	}
	if len(s.Days) != 0 {
		t.Error("出错时不应包含排班内容")
	}
}

func TestGenerate_InvalidMonth(t *testing.T) {
	e := New()
	employees := []*model.Employee{createEmployee("e1", "Anna", 100)}

	for _, month := range []string{"2026-13", "2026-3", "März 2026"} {
		s := e.Generate(context.Background(), employees, month, model.DefaultSettings())
		if !s.HasErrors() {
			t.Errorf("非法月份 %q 应返回错误", month)
		}
	}
}

func TestGenerate_NilSettingsUsesDefaults(t *testing.T) {
	e := New()
	employees := []*model.Employee{createEmployee("e1", "Anna", 100)}

	s := e.Generate(context.Background(), employees, "2026-03", nil)
	if s.HasErrors() {
		t.Fatalf("默认配置下不应出错: %v", s.Errors)
	}
	if len(s.Days) == 0 {
		t.Error("应包含排班内容")
	}
}

// 场景：3个全技能员工，每班需要1人，二月份应全部排满且无违规
func TestGenerate_FullyStaffedFebruary(t *testing.T) {
	settings := flatSettings()
	settings.MinStaffing.Weekend = model.StaffingLevel{}

	var employees []*model.Employee
	for _, id := range []string{"e1", "e2", "e3"} {
		emp := createEmployee(id, "员工"+id, 100)
		emp.MaxConsecutiveDays = 5
		employees = append(employees, emp)
	}

	s := New().Generate(context.Background(), employees, "2026-02", settings)
	if s.HasErrors() {
		t.Fatalf("生成失败: %v", s.Errors)
	}

	dates, _ := monthDates("2026-02")
	for _, date := range dates {
		if isWeekendDate(date) {
			continue
		}
		day := s.Days[date]
		for _, shift := range model.AllShifts() {
			if day.Count(shift) != 1 {
				t.Errorf("%s 的 %s 班人数 = %d, expected 1", date, shift, day.Count(shift))
			}
		}
	}

	if len(s.Violations) != 0 {
		t.Errorf("不应有违规, got %+v", s.Violations)
	}
}

// 场景：周六不可用的员工永远不会被排在周六
func TestGenerate_SaturdayUnavailable(t *testing.T) {
	restricted := createEmployee("a1", "Anna", 100)
	restricted.AvailableDays = &model.AvailableDays{
		Monday: true, Tuesday: true, Wednesday: true,
		Thursday: true, Friday: true, Saturday: false, Sunday: true,
	}

	employees := []*model.Employee{
		restricted,
		createEmployee("b1", "Thomas", 100),
		createEmployee("c1", "Lisa", 100),
		createEmployee("d1", "Maria", 100),
		createEmployee("e1", "Peter", 100),
		createEmployee("f1", "Julia", 100),
	}

	s := New().Generate(context.Background(), employees, "2026-03", model.DefaultSettings())

	dates, _ := monthDates("2026-03")
	for _, date := range dates {
		if weekdayOf(date).String() != "Saturday" {
			continue
		}
		if day, ok := s.Days[date]; ok && day.Has("a1") {
			t.Errorf("周六 %s 不应分配给 a1", date)
		}
	}
}

// 场景：休息日偏好当天不分配任何班次
func TestGenerate_FreePreference(t *testing.T) {
	anna := createEmployee("a1", "Anna", 100)
	anna.Preferences = []model.Preference{{Date: "2024-03-05", Type: model.PreferenceFree, Reason: "Arzttermin"}}

	employees := []*model.Employee{
		anna,
		createEmployee("b1", "Thomas", 100),
		createEmployee("c1", "Lisa", 100),
		createEmployee("d1", "Maria", 100),
	}

	s := New().Generate(context.Background(), employees, "2024-03", model.DefaultSettings())

	if day, ok := s.Days["2024-03-05"]; ok && day.Has("a1") {
		t.Error("2024-03-05 不应分配给有休息日偏好的 a1")
	}
}

// 场景：40%工作量的员工每月最多排1个完整周末
func TestGenerate_WeekendQuota(t *testing.T) {
	low := createEmployee("a1", "Lisa", 40)

	employees := []*model.Employee{
		low,
		createEmployee("b1", "Anna", 100),
		createEmployee("c1", "Thomas", 100),
		createEmployee("d1", "Maria", 100),
		createEmployee("e1", "Peter", 100),
		createEmployee("f1", "Julia", 100),
	}

	s := New().Generate(context.Background(), employees, "2026-03", model.DefaultSettings())

	if s.EmployeeWeekendShifts["a1"] > 1 {
		t.Errorf("40%%工作量的周末数 = %d, 最多为1", s.EmployeeWeekendShifts["a1"])
	}

	weekendDays := 0
	dates, _ := monthDates("2026-03")
	for _, date := range dates {
		if !isWeekendDate(date) {
			continue
		}
		if day, ok := s.Days[date]; ok && day.Has("a1") {
			weekendDays++
		}
	}
	if weekendDays > 2 {
		t.Errorf("40%%工作量的周末工作天数 = %d, 最多为2", weekendDays)
	}
}

// 场景：唯一具备中班技能的员工被早班占用时，
// 中班被取消且早晚班仍达到最低人数
func TestGenerate_MiddleShiftDropped(t *testing.T) {
	allRounder := createEmployee("a1", "Anna", 100)
	allRounder.Preferences = []model.Preference{{Date: "2026-03-03", Type: string(model.ShiftEarly)}}

	employees := []*model.Employee{
		allRounder,
		createEmployee("b1", "Thomas", 100, model.ShiftEarly, model.ShiftLate),
		createEmployee("c1", "Lisa", 100, model.ShiftEarly, model.ShiftLate),
		createEmployee("d1", "Maria", 100, model.ShiftEarly, model.ShiftLate),
	}

	s := New().Generate(context.Background(), employees, "2026-03", flatSettings())

	found := false
	for _, d := range s.DaysWithoutMiddleShift {
		if d == "2026-03-03" {
			found = true
		}
	}
	if !found {
		t.Fatal("2026-03-03 应出现在无中班日期列表中")
	}

	day := s.Days["2026-03-03"]
	if _, ok := day[model.ShiftMiddle]; ok {
		t.Error("被取消的中班不应有条目")
	}
	if day.Count(model.ShiftEarly) < 1 || day.Count(model.ShiftLate) < 1 {
		t.Error("早班和晚班仍应达到最低人数")
	}

	for _, v := range s.Violations {
		if v.Type == model.ViolationUnderstaffed && v.Date == "2026-03-03" && v.Shift == model.ShiftMiddle {
			t.Error("被取消的中班不应产生人员不足违规")
		}
	}
}

// 节假日落在周末组内时整个周末都不排班
func TestGenerate_HolidayWeekendSuppressed(t *testing.T) {
	settings := model.DefaultSettings()
	settings.Holidays = []model.Holiday{{Date: "2026-03-07", Name: "Feiertag"}}

	employees := []*model.Employee{
		createEmployee("a1", "Anna", 100),
		createEmployee("b1", "Thomas", 100),
		createEmployee("c1", "Lisa", 100),
		createEmployee("d1", "Maria", 100),
	}

	s := New().Generate(context.Background(), employees, "2026-03", settings)

	for _, date := range []string{"2026-03-07", "2026-03-08"} {
		if _, ok := s.Days[date]; ok {
			t.Errorf("%s 属于节假日周末组，不应有排班条目", date)
		}
	}
	for _, v := range s.Violations {
		if v.Date == "2026-03-07" || v.Date == "2026-03-08" {
			t.Errorf("被跳过的周末不应产生违规: %+v", v)
		}
	}
}

// 工作日的节假日使用周末的最低人数配置
func TestGenerate_WeekdayHolidayUsesWeekendStaffing(t *testing.T) {
	settings := model.DefaultSettings()
	settings.Holidays = []model.Holiday{{Date: "2026-03-04", Name: "Feiertag"}}

	var employees []*model.Employee
	for _, id := range []string{"a1", "b1", "c1", "d1", "e1", "f1", "g1", "h1"} {
		employees = append(employees, createEmployee(id, "员工"+id, 100))
	}

	s := New().Generate(context.Background(), employees, "2026-03", settings)

	day, ok := s.Days["2026-03-04"]
	if !ok {
		t.Fatal("工作日节假日仍应排班")
	}
	// 周末配置为 1/2/1，不应超过该人数
	if day.Count(model.ShiftEarly) > settings.MinStaffing.Weekend.Early {
		t.Errorf("节假日早班人数 = %d, 不应超过周末配置 %d",
			day.Count(model.ShiftEarly), settings.MinStaffing.Weekend.Early)
	}
}

// 不变量检查：用接近生产的输入验证核心性质
func TestGenerate_Invariants(t *testing.T) {
	sick := createEmployee("c1", "Lisa", 60)
	sick.SickLeave = model.DateRange{From: "2026-03-09", To: "2026-03-13"}

	vacationer := createEmployee("d1", "Maria", 80)
	vacationer.Vacations = []model.DateRange{{From: "2026-03-16", To: "2026-03-22"}}

	employees := []*model.Employee{
		createEmployee("a1", "Anna", 100),
		createEmployee("b1", "Thomas", 80),
		sick,
		vacationer,
		createEmployee("e1", "Peter", 100),
		createEmployee("f1", "Julia", 50),
		createEmployee("g1", "Max", 100),
		createEmployee("h1", "Sofia", 40),
	}

	s := New().Generate(context.Background(), employees, "2026-03", model.DefaultSettings())
	if s.HasErrors() {
		t.Fatalf("生成失败: %v", s.Errors)
	}

	dates, _ := monthDates("2026-03")

	// 每人每天最多一个班次
	for _, date := range dates {
		day, ok := s.Days[date]
		if !ok {
			continue
		}
		seen := make(map[string]int)
		for _, ids := range day {
			for _, id := range ids {
				seen[id]++
			}
		}
		for id, n := range seen {
			if n > 1 {
				t.Errorf("%s 员工 %s 被分配了 %d 个班次", date, id, n)
			}
		}
	}

	// 连续工作天数不超过上限
	for _, emp := range employees {
		run := 0
		for _, date := range dates {
			worked := false
			if day, ok := s.Days[date]; ok && day.Has(emp.ID) {
				worked = true
			}
			if worked {
				run++
				if run > emp.EffectiveMaxConsecutiveDays() {
					t.Errorf("员工 %s 连续工作 %d 天，超过上限 %d", emp.ID, run, emp.EffectiveMaxConsecutiveDays())
				}
			} else {
				run = 0
			}
		}
	}

	// 周末两天的班次人员完全一致
	for _, group := range weekendGroups(dates) {
		if len(group) != 2 {
			continue
		}
		sat, satOK := s.Days[group[0]]
		sun, sunOK := s.Days[group[1]]
		if !satOK || !sunOK {
			continue
		}
		for _, shift := range model.AllShifts() {
			if !reflect.DeepEqual(sat[shift], sun[shift]) {
				t.Errorf("周末 %v 的 %s 班人员不一致: %v vs %v", group, shift, sat[shift], sun[shift])
			}
		}
	}

	// 缺勤期间绝不排班
	for _, date := range dates {
		day, ok := s.Days[date]
		if !ok {
			continue
		}
		for _, emp := range employees {
			if emp.IsAbsentOn(date) && day.Has(emp.ID) {
				t.Errorf("%s 缺勤的员工 %s 被排班", date, emp.ID)
			}
		}
	}

	// 工时违规只报告超出，不报告不足
	for _, v := range s.Violations {
		if v.Type == model.ViolationHoursMismatch {
			if v.Actual <= v.Target {
				t.Errorf("工时违规应只报告超出: %+v", v)
			}
			if v.Difference <= 0 {
				t.Errorf("工时违规的差值应为正: %+v", v)
			}
		}
	}

	// 无中班日期的排班里没有中班条目，也没有中班的人员不足违规
	for _, date := range s.DaysWithoutMiddleShift {
		if _, ok := s.Days[date][model.ShiftMiddle]; ok {
			t.Errorf("%s 的中班已取消，不应有条目", date)
		}
		for _, v := range s.Violations {
			if v.Type == model.ViolationUnderstaffed && v.Date == date && v.Shift == model.ShiftMiddle {
				t.Errorf("%s 被取消的中班不应产生违规", date)
			}
		}
	}

	// 结果字段完整
	for _, emp := range employees {
		if _, ok := s.TargetHours[emp.ID]; !ok {
			t.Errorf("缺少员工 %s 的目标工时", emp.ID)
		}
		if _, ok := s.EmployeeStats[emp.ID]; !ok {
			t.Errorf("缺少员工 %s 的班次统计", emp.ID)
		}
	}
}

// 相同输入必须产生相同结果
func TestGenerate_Deterministic(t *testing.T) {
	build := func() []*model.Employee {
		return []*model.Employee{
			createEmployee("a1", "Anna", 100),
			createEmployee("b1", "Thomas", 80),
			createEmployee("c1", "Lisa", 60),
			createEmployee("d1", "Maria", 100),
			createEmployee("e1", "Peter", 50),
		}
	}

	first := New().Generate(context.Background(), build(), "2026-03", model.DefaultSettings())
	second := New().Generate(context.Background(), build(), "2026-03", model.DefaultSettings())

	if !reflect.DeepEqual(first.Days, second.Days) {
		t.Error("两次生成的排班不一致")
	}
	if !reflect.DeepEqual(first.EmployeeHours, second.EmployeeHours) {
		t.Error("两次生成的工时不一致")
	}
	if !reflect.DeepEqual(first.Violations, second.Violations) {
		t.Error("两次生成的违规不一致")
	}
}

// 人员严重不足时应产生解释
func TestGenerate_Explanations(t *testing.T) {
	employees := []*model.Employee{
		createEmployee("a1", "Anna", 50, model.ShiftEarly),
	}

	s := New().Generate(context.Background(), employees, "2026-03", model.DefaultSettings())

	understaffed := false
	for _, v := range s.Violations {
		if v.Type == model.ViolationUnderstaffed {
			understaffed = true
		}
	}
	if !understaffed {
		t.Fatal("单个员工无法满足需求，应有人员不足违规")
	}

	if len(s.Explanations) == 0 {
		t.Fatal("人员不足时应产生解释")
	}

	types := make(map[string]bool)
	for _, exp := range s.Explanations {
		if exp.Message == "" {
			t.Error("解释应包含可读信息")
		}
		types[exp.Type] = true
	}
	if !types[model.ExplanationCapacityShortage] {
		t.Error("应包含总体容量不足的解释")
	}
	if !types[model.ExplanationSkillShortage] {
		t.Error("应包含技能容量不足的解释")
	}
}
