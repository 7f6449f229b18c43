// Package handler 提供HTTP请求处理器
package handler

import (
	"encoding/json"
	"net/http"

	"github.com/helmplan/helmplan/internal/metrics"
	"github.com/helmplan/helmplan/internal/repository"
	"github.com/helmplan/helmplan/pkg/errors"
	"github.com/helmplan/helmplan/pkg/model"
	"github.com/helmplan/helmplan/pkg/stats"
)

// StatsHandler 统计分析处理器
type StatsHandler struct {
	settings *repository.SettingsRepository
}

// NewStatsHandler 创建统计处理器
func NewStatsHandler(settings *repository.SettingsRepository) *StatsHandler {
	return &StatsHandler{settings: settings}
}

// StatsRequest 统计分析请求
type StatsRequest struct {
	Schedule  *model.Schedule   `json:"schedule"`
	Employees []*model.Employee `json:"employees,omitempty"`
	Settings  *model.Settings   `json:"settings,omitempty"`
}

// decodeStatsRequest 解析并验证统计请求
func (h *StatsHandler) decodeStatsRequest(r *http.Request) (*StatsRequest, *errors.AppError) {
	var req StatsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return nil, errors.Wrap(err, errors.CodeInvalidInput, "解析请求失败")
	}
	if req.Schedule == nil {
		return nil, errors.New(errors.CodeInvalidInput, "排班数据不能为空")
	}
	if req.Settings == nil && h.settings != nil {
		if settings, err := h.settings.Get(r.Context()); err == nil {
			req.Settings = settings
		}
	}
	return &req, nil
}

// Coverage 覆盖率分析
func (h *StatsHandler) Coverage(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}

	req, appErr := h.decodeStatsRequest(r)
	if appErr != nil {
		respondError(w, appErr)
		return
	}

	result := stats.NewCoverageAnalyzer(req.Settings).Analyze(req.Schedule)
	metrics.SetCoverageRate(result.CoverageRate)

	respondJSON(w, http.StatusOK, result)
}

// Fairness 公平性分析
func (h *StatsHandler) Fairness(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}

	req, appErr := h.decodeStatsRequest(r)
	if appErr != nil {
		respondError(w, appErr)
		return
	}
	if len(req.Employees) == 0 {
		respondError(w, errors.New(errors.CodeInvalidInput, "员工列表不能为空"))
		return
	}

	result := stats.NewFairnessAnalyzer().Analyze(req.Schedule, req.Employees)
	metrics.SetFairnessGini("fulfillment", result.FulfillmentGini)
	metrics.SetFairnessGini("weekend", result.WeekendGini)

	respondJSON(w, http.StatusOK, result)
}

// Suggestions 改进建议
func (h *StatsHandler) Suggestions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}

	req, appErr := h.decodeStatsRequest(r)
	if appErr != nil {
		respondError(w, appErr)
		return
	}

	suggestions := stats.NewCoverageAnalyzer(req.Settings).Suggestions(req.Schedule, req.Employees)
	if suggestions == nil {
		suggestions = []stats.Suggestion{}
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{"suggestions": suggestions})
}
