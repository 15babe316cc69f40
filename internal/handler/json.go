package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
)

// errorCode 供调用方区分失败原因，Message 只用于展示
type errorCode string

const (
	codePlanRunning      errorCode = "PLAN_RUNNING"
	codeNotFound         errorCode = "NOT_FOUND"
	codeMethodNotAllowed errorCode = "METHOD_NOT_ALLOWED"
	codeInternal         errorCode = "INTERNAL"
)

// Response 是所有接口统一的返回格式，Data 的类型由具体接口决定
type Response[T any] struct {
	Success bool      `json:"success"`
	Code    errorCode `json:"code,omitempty"`
	Message string    `json:"message"`
	Data    T         `json:"data"`
}

func (h *Handler) writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	// 排班进度随时在变，不允许中间代理缓存
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("写入响应失败", "request_id", middleware.GetReqID(r.Context()), "path", r.URL.Path, "error", err)
	}
}

func writeSuccess[T any](h *Handler, w http.ResponseWriter, r *http.Request, msg string, data T) {
	h.writeJSON(w, r, http.StatusOK, Response[T]{
		Success: true,
		Message: msg,
		Data:    data,
	})
}

func (h *Handler) failure(w http.ResponseWriter, r *http.Request, status int, code errorCode, msg string) {
	h.writeJSON(w, r, status, Response[any]{
		Success: false,
		Code:    code,
		Message: msg,
	})
}

func (h *Handler) internalServerError(w http.ResponseWriter, r *http.Request, err error) {
	slog.Error("服务器内部错误",
		"request_id", middleware.GetReqID(r.Context()),
		"method", r.Method,
		"path", r.URL.Path,
		"error", err,
	)
	h.failure(w, r, http.StatusInternalServerError, codeInternal, "服务器内部错误")
}
