package webhook

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/helmplan/helmplan/internal/config"
	"github.com/helmplan/helmplan/pkg/model"
)

func testConfig(url string) *config.WebhookConfig {
	return &config.WebhookConfig{
		Enabled:      true,
		ScheduleURL:  url,
		EmployeesURL: url,
		Timeout:      2 * time.Second,
	}
}

func TestDispatcher_DispatchSchedule(t *testing.T) {
	t.Run("远端返回null时不产生替代排班", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var env envelope
			if err := json.NewDecoder(r.Body).Decode(&env); err != nil {
				t.Errorf("解析推送消息失败: %v", err)
			}
			if env.Category != CategorySchedule {
				t.Errorf("category = %s, expected schedule", env.Category)
			}
			w.Write([]byte("null"))
		}))
		defer server.Close()

		d := New(testConfig(server.URL))
		replacement, err := d.DispatchSchedule(context.Background(), &model.Schedule{Month: "2026-03"})
		if err != nil {
			t.Fatalf("推送失败: %v", err)
		}
		if replacement != nil {
			t.Error("应该没有替代排班")
		}
	})

	t.Run("远端返回排班对象时解析为替代排班", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(model.Schedule{
				Month: "2026-03",
				Days: map[string]model.DayAssignments{
					"2026-03-02": {model.ShiftEarly: {"e1"}},
				},
			})
		}))
		defer server.Close()

		d := New(testConfig(server.URL))
		replacement, err := d.DispatchSchedule(context.Background(), &model.Schedule{Month: "2026-03"})
		if err != nil {
			t.Fatalf("推送失败: %v", err)
		}
		if replacement == nil {
			t.Fatal("应该收到替代排班")
		}
		if replacement.Month != "2026-03" {
			t.Errorf("month = %s, expected 2026-03", replacement.Month)
		}
		if len(replacement.Days["2026-03-02"][model.ShiftEarly]) != 1 {
			t.Error("替代排班内容不完整")
		}
	})

	t.Run("远端失败时不返回错误", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer server.Close()

		d := New(testConfig(server.URL))
		replacement, err := d.DispatchSchedule(context.Background(), &model.Schedule{Month: "2026-03"})
		if err != nil {
			t.Errorf("推送失败不应中断主流程: %v", err)
		}
		if replacement != nil {
			t.Error("失败时不应有替代排班")
		}
	})
}

func TestDispatcher_DispatchEmployees(t *testing.T) {
	var received envelope
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&received)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	d := New(testConfig(server.URL))
	employees := []*model.Employee{
		{ID: "e1", Name: "Anna", Workload: 100},
		{ID: "e2", Name: "Thomas", Workload: 50},
	}

	if err := d.DispatchEmployees(context.Background(), employees); err != nil {
		t.Fatalf("推送员工失败: %v", err)
	}
	if received.Category != CategoryEmployees {
		t.Errorf("category = %s, expected employees", received.Category)
	}
}

func TestDispatcher_MissingURL(t *testing.T) {
	d := New(&config.WebhookConfig{Enabled: true, Timeout: time.Second})

	if err := d.DispatchEmployees(context.Background(), nil); err == nil {
		t.Error("没有配置地址时应返回错误")
	}
}
