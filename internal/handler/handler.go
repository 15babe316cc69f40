package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/sysu-ecnc-dev/workshop-planner/backend/internal/status"
)

type stateSource interface {
	State() status.State
	Result() (*status.FinalResult, bool)
}

type Handler struct {
	tracker stateSource
	metrics http.Handler

	Mux *chi.Mux
}

func NewHandler(tracker stateSource, metrics http.Handler) *Handler {
	return &Handler{
		tracker: tracker,
		metrics: metrics,

		Mux: chi.NewRouter(),
	}
}

func (h *Handler) RegisterRoutes() {
	h.Mux.Use(middleware.RequestID)
	h.Mux.Use(h.logger)
	h.Mux.Use(h.recoverer)

	h.Mux.NotFound(func(w http.ResponseWriter, r *http.Request) {
		h.failure(w, r, http.StatusNotFound, codeNotFound, "接口不存在")
	})
	h.Mux.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		h.failure(w, r, http.StatusMethodNotAllowed, codeMethodNotAllowed, "请求方法不被允许")
	})

	h.Mux.Get("/status", h.GetStatus)
	h.Mux.Get("/result", h.GetResult)
	if h.metrics != nil {
		h.Mux.Method(http.MethodGet, "/metrics", h.metrics)
	}
}

func (h *Handler) GetStatus(w http.ResponseWriter, r *http.Request) {
	writeSuccess(h, w, r, "获取排班进度成功", h.tracker.State())
}

func (h *Handler) GetResult(w http.ResponseWriter, r *http.Request) {
	result, ok := h.tracker.Result()
	if !ok {
		// 搜索仍在进行，稍后再来
		h.failure(w, r, http.StatusConflict, codePlanRunning, "排班尚未结束")
		return
	}

	writeSuccess(h, w, r, "获取排班结果成功", result)
}
