package model

import "testing"

func TestDayAssignments_Has(t *testing.T) {
	d := DayAssignments{
		ShiftEarly: {"e1", "e2"},
		ShiftLate:  {"e3"},
	}

	if !d.Has("e1") {
		t.Error("e1当天已被分配")
	}
	if !d.Has("e3") {
		t.Error("e3当天已被分配")
	}
	if d.Has("e4") {
		t.Error("e4当天未被分配")
	}
	if d.Count(ShiftEarly) != 2 {
		t.Errorf("早班人数 = %d, expected 2", d.Count(ShiftEarly))
	}
}

func TestShiftStats_AddRemove(t *testing.T) {
	s := &ShiftStats{}

	s.Add(ShiftEarly)
	s.Add(ShiftEarly)
	s.Add(ShiftLate)

	if s.Early != 2 || s.Late != 1 || s.TotalDays != 3 {
		t.Errorf("统计错误: %+v", s)
	}
	if s.Count(ShiftEarly) != 2 {
		t.Errorf("Count(früh) = %d, expected 2", s.Count(ShiftEarly))
	}

	s.Remove(ShiftEarly)
	if s.Early != 1 || s.TotalDays != 2 {
		t.Errorf("撤销后统计错误: %+v", s)
	}
}

func TestSchedule_AssignedOn(t *testing.T) {
	s := &Schedule{
		Days: map[string]DayAssignments{
			"2026-03-02": {ShiftEarly: {"e1", "e2"}},
		},
	}

	if s.AssignedOn("2026-03-02", ShiftEarly) != 2 {
		t.Error("应该返回2人")
	}
	if s.AssignedOn("2026-03-02", ShiftMiddle) != 0 {
		t.Error("未分配班次应返回0")
	}
	if s.AssignedOn("2026-03-07", ShiftEarly) != 0 {
		t.Error("无条目日期应返回0")
	}
}
