// Package handler 提供HTTP请求处理器
package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/helmplan/helmplan/internal/metrics"
	"github.com/helmplan/helmplan/internal/repository"
	"github.com/helmplan/helmplan/internal/webhook"
	"github.com/helmplan/helmplan/pkg/errors"
	"github.com/helmplan/helmplan/pkg/logger"
	"github.com/helmplan/helmplan/pkg/model"
	"github.com/helmplan/helmplan/pkg/roster"
	"github.com/helmplan/helmplan/pkg/validator"
)

// RosterHandler 排班处理器
// 仓储为nil时服务在无数据库模式下运行，结果只返回不落库
type RosterHandler struct {
	engine     *roster.Engine
	schedules  *repository.ScheduleRepository
	settings   *repository.SettingsRepository
	employees  *repository.EmployeeRepository
	dispatcher *webhook.Dispatcher
	timeout    time.Duration
}

// NewRosterHandler 创建排班处理器
func NewRosterHandler(
	engine *roster.Engine,
	schedules *repository.ScheduleRepository,
	settings *repository.SettingsRepository,
	employees *repository.EmployeeRepository,
	dispatcher *webhook.Dispatcher,
	timeout time.Duration,
) *RosterHandler {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &RosterHandler{
		engine:     engine,
		schedules:  schedules,
		settings:   settings,
		employees:  employees,
		dispatcher: dispatcher,
		timeout:    timeout,
	}
}

// GenerateRequest 排班生成请求
type GenerateRequest struct {
	Month     string            `json:"month"` // YYYY-MM
	Employees []*model.Employee `json:"employees"`
	Settings  *model.Settings   `json:"settings,omitempty"`
	Persist   bool              `json:"persist,omitempty"`
}

// Generate 生成月度排班
func (h *RosterHandler) Generate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}

	var req GenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, errors.Wrap(err, errors.CodeInvalidInput, "解析请求失败"))
		return
	}

	if err := validateGenerateRequest(&req); err != nil {
		respondError(w, err)
		return
	}

	settings := req.Settings
	if settings == nil {
		settings = h.loadSettings(r.Context())
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	start := time.Now()
	schedule := h.engine.Generate(ctx, req.Employees, req.Month, settings)
	duration := time.Since(start)

	violationCounts := make(map[string]int)
	for _, v := range schedule.Violations {
		violationCounts[v.Type]++
	}
	metrics.RecordRosterGeneration(!schedule.HasErrors(), duration, violationCounts, len(schedule.DaysWithoutMiddleShift))

	if schedule.HasErrors() {
		respondJSON(w, http.StatusUnprocessableEntity, schedule)
		return
	}

	if req.Persist {
		h.persist(r.Context(), schedule)
	}

	if h.dispatcher != nil && h.dispatcher.Enabled() {
		if replacement, _ := h.dispatcher.DispatchSchedule(r.Context(), schedule); replacement != nil {
			metrics.RecordWebhookDispatch(webhook.CategorySchedule, true)
			if h.schedules != nil {
				if err := h.schedules.ReplaceByMonth(r.Context(), replacement); err != nil {
					logger.WithError(err).Str("month", replacement.Month).Msg("替代排班落库失败")
				}
			}
			respondJSON(w, http.StatusOK, replacement)
			return
		}
	}

	respondJSON(w, http.StatusOK, schedule)
}

// persist 保存排班结果
// 没有数据库时分配本地ID，前端仍能引用本次结果
func (h *RosterHandler) persist(ctx context.Context, schedule *model.Schedule) {
	if h.schedules == nil {
		schedule.ID = fmt.Sprintf("local_%d", time.Now().UnixMilli())
		return
	}
	if err := h.schedules.Save(ctx, schedule); err != nil {
		logger.WithError(err).Str("month", schedule.Month).Msg("保存排班失败")
		schedule.ID = fmt.Sprintf("local_%d", time.Now().UnixMilli())
	}
}

// loadSettings 加载当前配置
func (h *RosterHandler) loadSettings(ctx context.Context) *model.Settings {
	if h.settings == nil {
		return model.DefaultSettings()
	}
	settings, err := h.settings.Get(ctx)
	if err != nil {
		logger.WithError(err).Msg("加载配置失败，使用默认配置")
		return model.DefaultSettings()
	}
	return settings
}

// validateGenerateRequest 验证生成请求
func validateGenerateRequest(req *GenerateRequest) *errors.AppError {
	ve := &errors.ValidationErrors{}

	if req.Month == "" {
		ve.Add("month", "月份不能为空")
	} else if _, err := time.Parse(model.MonthLayout, req.Month); err != nil {
		ve.Add("month", "月份格式无效，应为YYYY-MM")
	}
	if len(req.Employees) == 0 {
		ve.Add("employees", "员工列表不能为空")
	}
	for i, emp := range req.Employees {
		if emp == nil || emp.ID == "" {
			ve.Add(fmt.Sprintf("employees[%d].id", i), "员工ID不能为空")
		}
	}

	if ve.HasErrors() {
		return ve.ToAppError()
	}
	return nil
}

// ListSchedules 返回排班历史
func (h *RosterHandler) ListSchedules(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	if h.schedules == nil {
		respondJSON(w, http.StatusOK, map[string]interface{}{"schedules": []*model.Schedule{}})
		return
	}

	schedules, err := h.schedules.List(r.Context())
	if err != nil {
		respondError(w, errors.Wrap(err, errors.CodeDatabaseError, "查询排班历史失败"))
		return
	}
	if schedules == nil {
		schedules = []*model.Schedule{}
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{"schedules": schedules})
}

// ScheduleByID 处理单条排班记录的查询和删除
func (h *RosterHandler) ScheduleByID(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/api/v1/schedules/")
	if id == "" || strings.Contains(id, "/") {
		respondError(w, errors.New(errors.CodeInvalidInput, "无效的排班ID"))
		return
	}
	if h.schedules == nil {
		respondError(w, errors.New(errors.CodeDatabaseError, "数据库未启用"))
		return
	}

	switch r.Method {
	case http.MethodGet:
		schedule, err := h.schedules.GetByID(r.Context(), id)
		if err != nil {
			respondError(w, errors.Wrap(err, errors.CodeDatabaseError, "查询排班失败"))
			return
		}
		if schedule == nil {
			respondError(w, errors.NotFound("schedule", id))
			return
		}
		respondJSON(w, http.StatusOK, schedule)

	case http.MethodDelete:
		if err := h.schedules.Delete(r.Context(), id); err != nil {
			respondError(w, errors.NotFound("schedule", id))
			return
		}
		respondJSON(w, http.StatusOK, map[string]interface{}{"deleted": id})

	default:
		methodNotAllowed(w)
	}
}

// ImportRequest 按月导入请求
type ImportRequest struct {
	Month string `json:"month"` // YYYY-MM
}

// Import 从Webhook导入某月的排班
// 把该月当前的排班（可能为空）推送给远端，远端返回的替代排班会替换本地记录
func (h *RosterHandler) Import(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	if h.dispatcher == nil || !h.dispatcher.Enabled() {
		respondError(w, errors.New(errors.CodeWebhookFailed, "Webhook未启用"))
		return
	}

	var req ImportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, errors.Wrap(err, errors.CodeInvalidInput, "解析请求失败"))
		return
	}
	if _, err := time.Parse(model.MonthLayout, req.Month); err != nil {
		respondError(w, errors.InvalidMonth(req.Month))
		return
	}

	current := &model.Schedule{Month: req.Month}
	if h.schedules != nil {
		if existing, err := h.schedules.GetByMonth(r.Context(), req.Month); err == nil && existing != nil {
			current = existing
		}
	}

	replacement, _ := h.dispatcher.DispatchSchedule(r.Context(), current)
	if replacement == nil {
		respondError(w, errors.ImportFailed(req.Month, "远端没有返回排班数据"))
		return
	}
	if replacement.Month != req.Month {
		respondError(w, errors.ImportFailed(req.Month, "远端返回的月份不匹配"))
		return
	}

	// 导入的排班按当前员工和规则做冲突检测
	if h.employees != nil {
		if employees, err := h.employees.List(r.Context()); err == nil && len(employees) > 0 {
			conflicts := validator.NewConflictDetector(h.loadSettings(r.Context())).DetectAll(replacement, employees)
			if validator.HasErrors(conflicts) {
				respondJSON(w, http.StatusUnprocessableEntity, map[string]interface{}{
					"error":     true,
					"code":      errors.CodeImportFailed,
					"message":   "导入的排班存在冲突",
					"conflicts": conflicts,
				})
				return
			}
		}
	}

	if h.schedules != nil {
		if err := h.schedules.ReplaceByMonth(r.Context(), replacement); err != nil {
			respondError(w, errors.Wrap(err, errors.CodeDatabaseError, "导入排班落库失败"))
			return
		}
	}

	respondJSON(w, http.StatusOK, replacement)
}
