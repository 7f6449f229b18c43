// Package handler 提供HTTP请求处理器
package handler

import (
	"encoding/json"
	"net/http"

	"github.com/helmplan/helmplan/pkg/errors"
)

// respondJSON 返回JSON响应
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// respondError 返回错误响应
func respondError(w http.ResponseWriter, err *errors.AppError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(err.HTTPStatus)
	body := map[string]interface{}{
		"error":   true,
		"code":    err.Code,
		"message": err.Message,
		"details": err.Details,
	}
	if len(err.Fields) > 0 {
		body["fields"] = err.Fields
	}
	json.NewEncoder(w).Encode(body)
}

// methodNotAllowed 拒绝不支持的方法
func methodNotAllowed(w http.ResponseWriter) {
	respondError(w, errors.New(errors.CodeInvalidInput, "不支持的请求方法"))
}
