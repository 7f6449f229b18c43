// Package handler 提供HTTP请求处理器
package handler

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/helmplan/helmplan/internal/metrics"
	"github.com/helmplan/helmplan/internal/repository"
	"github.com/helmplan/helmplan/internal/webhook"
	"github.com/helmplan/helmplan/pkg/errors"
	"github.com/helmplan/helmplan/pkg/logger"
	"github.com/helmplan/helmplan/pkg/model"
)

// EmployeeHandler 员工处理器
type EmployeeHandler struct {
	employees  *repository.EmployeeRepository
	dispatcher *webhook.Dispatcher
}

// NewEmployeeHandler 创建员工处理器
func NewEmployeeHandler(employees *repository.EmployeeRepository, dispatcher *webhook.Dispatcher) *EmployeeHandler {
	return &EmployeeHandler{employees: employees, dispatcher: dispatcher}
}

// Collection 处理员工列表的查询和创建
func (h *EmployeeHandler) Collection(w http.ResponseWriter, r *http.Request) {
	if h.employees == nil {
		respondError(w, errors.New(errors.CodeDatabaseError, "数据库未启用"))
		return
	}

	switch r.Method {
	case http.MethodGet:
		employees, err := h.employees.List(r.Context())
		if err != nil {
			respondError(w, errors.Wrap(err, errors.CodeDatabaseError, "查询员工列表失败"))
			return
		}
		if employees == nil {
			employees = []*model.Employee{}
		}
		respondJSON(w, http.StatusOK, map[string]interface{}{"employees": employees})

	case http.MethodPost:
		var emp model.Employee
		if err := json.NewDecoder(r.Body).Decode(&emp); err != nil {
			respondError(w, errors.Wrap(err, errors.CodeInvalidInput, "解析请求失败"))
			return
		}
		if err := validateEmployee(&emp); err != nil {
			respondError(w, err)
			return
		}
		if err := h.employees.Create(r.Context(), &emp); err != nil {
			respondError(w, errors.Wrap(err, errors.CodeDatabaseError, "创建员工失败"))
			return
		}
		h.dispatchAll(r)
		respondJSON(w, http.StatusCreated, &emp)

	case http.MethodPut:
		// 整体替换，Webhook导入员工数据时使用
		var employees []*model.Employee
		if err := json.NewDecoder(r.Body).Decode(&employees); err != nil {
			respondError(w, errors.Wrap(err, errors.CodeInvalidInput, "解析请求失败"))
			return
		}
		for _, emp := range employees {
			if err := validateEmployee(emp); err != nil {
				respondError(w, err)
				return
			}
		}
		if err := h.employees.ReplaceAll(r.Context(), employees); err != nil {
			respondError(w, errors.Wrap(err, errors.CodeDatabaseError, "替换员工数据失败"))
			return
		}
		respondJSON(w, http.StatusOK, map[string]interface{}{"count": len(employees)})

	default:
		methodNotAllowed(w)
	}
}

// ByID 处理单个员工的查询、更新和删除
func (h *EmployeeHandler) ByID(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/api/v1/employees/")
	if id == "" || strings.Contains(id, "/") {
		respondError(w, errors.New(errors.CodeInvalidInput, "无效的员工ID"))
		return
	}
	if h.employees == nil {
		respondError(w, errors.New(errors.CodeDatabaseError, "数据库未启用"))
		return
	}

	switch r.Method {
	case http.MethodGet:
		emp, err := h.employees.GetByID(r.Context(), id)
		if err != nil {
			respondError(w, errors.Wrap(err, errors.CodeDatabaseError, "查询员工失败"))
			return
		}
		if emp == nil {
			respondError(w, errors.NotFound("employee", id))
			return
		}
		respondJSON(w, http.StatusOK, emp)

	case http.MethodPut:
		var emp model.Employee
		if err := json.NewDecoder(r.Body).Decode(&emp); err != nil {
			respondError(w, errors.Wrap(err, errors.CodeInvalidInput, "解析请求失败"))
			return
		}
		emp.ID = id
		if err := validateEmployee(&emp); err != nil {
			respondError(w, err)
			return
		}
		if err := h.employees.Update(r.Context(), &emp); err != nil {
			respondError(w, errors.NotFound("employee", id))
			return
		}
		h.dispatchAll(r)
		respondJSON(w, http.StatusOK, &emp)

	case http.MethodDelete:
		if err := h.employees.Delete(r.Context(), id); err != nil {
			respondError(w, errors.NotFound("employee", id))
			return
		}
		h.dispatchAll(r)
		respondJSON(w, http.StatusOK, map[string]interface{}{"deleted": id})

	default:
		methodNotAllowed(w)
	}
}

// dispatchAll 员工数据变更后推送完整列表
func (h *EmployeeHandler) dispatchAll(r *http.Request) {
	if h.dispatcher == nil || !h.dispatcher.Enabled() {
		return
	}

	employees, err := h.employees.List(r.Context())
	if err != nil {
		logger.WithError(err).Msg("推送前查询员工列表失败")
		return
	}

	err = h.dispatcher.DispatchEmployees(r.Context(), employees)
	metrics.RecordWebhookDispatch(webhook.CategoryEmployees, err == nil)
}

// validateEmployee 验证员工数据
func validateEmployee(emp *model.Employee) *errors.AppError {
	ve := &errors.ValidationErrors{}

	if emp == nil {
		ve.Add("employee", "员工数据不能为空")
		return ve.ToAppError()
	}
	if emp.Name == "" {
		ve.Add("name", "姓名不能为空")
	}
	if emp.Workload <= 0 || emp.Workload > 100 {
		ve.Add("workload", "工作量必须在(0, 100]区间内")
	}
	for _, skill := range emp.Skills {
		if !model.IsValidShift(skill) {
			ve.Add("skills", "无效的班次技能: "+string(skill))
		}
	}

	if ve.HasErrors() {
		return ve.ToAppError()
	}
	return nil
}
