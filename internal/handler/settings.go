// Package handler 提供HTTP请求处理器
package handler

import (
	"encoding/json"
	"net/http"

	"github.com/helmplan/helmplan/internal/repository"
	"github.com/helmplan/helmplan/pkg/errors"
	"github.com/helmplan/helmplan/pkg/model"
)

// SettingsHandler 配置处理器
type SettingsHandler struct {
	settings *repository.SettingsRepository
}

// NewSettingsHandler 创建配置处理器
func NewSettingsHandler(settings *repository.SettingsRepository) *SettingsHandler {
	return &SettingsHandler{settings: settings}
}

// Handle 处理配置的查询和保存
func (h *SettingsHandler) Handle(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		if h.settings == nil {
			respondJSON(w, http.StatusOK, model.DefaultSettings())
			return
		}
		settings, err := h.settings.Get(r.Context())
		if err != nil {
			respondError(w, errors.Wrap(err, errors.CodeDatabaseError, "查询配置失败"))
			return
		}
		respondJSON(w, http.StatusOK, settings)

	case http.MethodPut:
		var settings model.Settings
		if err := json.NewDecoder(r.Body).Decode(&settings); err != nil {
			respondError(w, errors.Wrap(err, errors.CodeInvalidInput, "解析请求失败"))
			return
		}
		if err := validateSettings(&settings); err != nil {
			respondError(w, err)
			return
		}
		if h.settings == nil {
			respondError(w, errors.New(errors.CodeDatabaseError, "数据库未启用"))
			return
		}
		if err := h.settings.Save(r.Context(), &settings); err != nil {
			respondError(w, errors.Wrap(err, errors.CodeDatabaseError, "保存配置失败"))
			return
		}
		respondJSON(w, http.StatusOK, &settings)

	default:
		methodNotAllowed(w)
	}
}

// validateSettings 验证配置数据
func validateSettings(settings *model.Settings) *errors.AppError {
	ve := &errors.ValidationErrors{}

	for _, shift := range model.AllShifts() {
		st := settings.Shifts.For(shift)
		if st.Hours <= 0 && st.Minutes <= 0 {
			ve.Add("shiftTimes", "班次 "+string(shift)+" 的时长必须大于0")
		}
	}
	if settings.Rules.MaxConsecutiveDays <= 0 {
		ve.Add("rules.maxConsecutiveDays", "最大连续工作天数必须大于0")
	}
	if settings.Rules.HoursTolerance < 0 {
		ve.Add("rules.hoursTolerance", "工时容差不能为负数")
	}
	if settings.WeekendRules.Under50 < 0 || settings.WeekendRules.Over50 < 0 {
		ve.Add("weekendRules", "周末上限不能为负数")
	}

	if ve.HasErrors() {
		return ve.ToAppError()
	}
	return nil
}
