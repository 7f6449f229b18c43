package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/helmplan/helmplan/pkg/model"
	"github.com/helmplan/helmplan/pkg/roster"
)

func newTestRosterHandler() *RosterHandler {
	return NewRosterHandler(roster.New(), nil, nil, nil, nil, 10*time.Second)
}

func postJSON(t *testing.T, h http.HandlerFunc, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	data, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("序列化请求失败: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(data))
	rec := httptest.NewRecorder()
	h(rec, req)
	return rec
}

func TestRosterHandler_Generate(t *testing.T) {
	h := newTestRosterHandler()

	t.Run("正常生成排班", func(t *testing.T) {
		rec := postJSON(t, h.Generate, "/api/v1/roster/generate", GenerateRequest{
			Month: "2026-03",
			Employees: []*model.Employee{
				{ID: "e1", Name: "Anna", Workload: 100, Skills: model.AllShifts()},
				{ID: "e2", Name: "Thomas", Workload: 100, Skills: model.AllShifts()},
				{ID: "e3", Name: "Lisa", Workload: 50, Skills: model.AllShifts()},
			},
		})

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, expected 200, body: %s", rec.Code, rec.Body.String())
		}

		var schedule model.Schedule
		if err := json.Unmarshal(rec.Body.Bytes(), &schedule); err != nil {
			t.Fatalf("解析响应失败: %v", err)
		}
		if schedule.Month != "2026-03" {
			t.Errorf("month = %s, expected 2026-03", schedule.Month)
		}
		if len(schedule.Days) == 0 {
			t.Error("应该包含排班内容")
		}
		if schedule.TargetHours["e1"] <= 0 {
			t.Error("应该包含目标工时")
		}
	})

	t.Run("员工列表为空返回验证错误", func(t *testing.T) {
		rec := postJSON(t, h.Generate, "/api/v1/roster/generate", GenerateRequest{Month: "2026-03"})
		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d, expected 400", rec.Code)
		}
	})

	t.Run("无效月份返回验证错误", func(t *testing.T) {
		rec := postJSON(t, h.Generate, "/api/v1/roster/generate", GenerateRequest{
			Month:     "2026-3",
			Employees: []*model.Employee{{ID: "e1", Name: "Anna", Workload: 100}},
		})
		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d, expected 400", rec.Code)
		}
	})

	t.Run("GET方法被拒绝", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/roster/generate", nil)
		rec := httptest.NewRecorder()
		h.Generate(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d, expected 400", rec.Code)
		}
	})

	t.Run("无数据库时persist分配本地ID", func(t *testing.T) {
		rec := postJSON(t, h.Generate, "/api/v1/roster/generate", GenerateRequest{
			Month:   "2026-03",
			Persist: true,
			Employees: []*model.Employee{
				{ID: "e1", Name: "Anna", Workload: 100, Skills: model.AllShifts()},
				{ID: "e2", Name: "Thomas", Workload: 100, Skills: model.AllShifts()},
			},
		})
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, expected 200", rec.Code)
		}

		var schedule model.Schedule
		json.Unmarshal(rec.Body.Bytes(), &schedule)
		if len(schedule.ID) < 7 || schedule.ID[:6] != "local_" {
			t.Errorf("无数据库时应分配local_前缀ID, got %q", schedule.ID)
		}
	})
}

func TestRosterHandler_ListSchedules(t *testing.T) {
	h := newTestRosterHandler()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/schedules", nil)
	rec := httptest.NewRecorder()
	h.ListSchedules(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, expected 200", rec.Code)
	}

	var resp struct {
		Schedules []*model.Schedule `json:"schedules"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("解析响应失败: %v", err)
	}
	if resp.Schedules == nil {
		t.Error("schedules 应为空数组而不是null")
	}
}

func TestRosterHandler_ImportWithoutWebhook(t *testing.T) {
	h := newTestRosterHandler()

	rec := postJSON(t, h.Import, "/api/v1/schedules/import", ImportRequest{Month: "2026-03"})
	if rec.Code == http.StatusOK {
		t.Error("Webhook未启用时导入应失败")
	}
}

func TestSettingsHandler_DefaultsWithoutDB(t *testing.T) {
	h := NewSettingsHandler(nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/settings", nil)
	rec := httptest.NewRecorder()
	h.Handle(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, expected 200", rec.Code)
	}

	var settings model.Settings
	if err := json.Unmarshal(rec.Body.Bytes(), &settings); err != nil {
		t.Fatalf("解析配置失败: %v", err)
	}
	if settings.MinStaffing.Weekday.Middle != 3 {
		t.Errorf("默认工作日中班人数 = %d, expected 3", settings.MinStaffing.Weekday.Middle)
	}
	if settings.Rules.MaxConsecutiveDays != 4 {
		t.Errorf("默认最大连续天数 = %d, expected 4", settings.Rules.MaxConsecutiveDays)
	}
}

func TestStatsHandler_Coverage(t *testing.T) {
	h := NewStatsHandler(nil)

	rec := postJSON(t, h.Coverage, "/api/v1/stats/coverage", StatsRequest{
		Schedule: &model.Schedule{
			Month: "2026-03",
			Days: map[string]model.DayAssignments{
				"2026-03-02": {
					model.ShiftEarly:  {"e1", "e2"},
					model.ShiftMiddle: {"e3", "e4", "e5"},
					model.ShiftLate:   {"e6", "e7"},
				},
			},
		},
	})

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, expected 200, body: %s", rec.Code, rec.Body.String())
	}

	var result struct {
		CoverageRate float64 `json:"coverage_rate"`
	}
	json.Unmarshal(rec.Body.Bytes(), &result)
	if result.CoverageRate != 100 {
		t.Errorf("覆盖率 = %v, expected 100", result.CoverageRate)
	}
}

func TestStatsHandler_MissingSchedule(t *testing.T) {
	h := NewStatsHandler(nil)

	rec := postJSON(t, h.Fairness, "/api/v1/stats/fairness", StatsRequest{})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, expected 400", rec.Code)
	}
}
