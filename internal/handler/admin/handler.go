package admin

import (
	"fmt"
	"math"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/zhouzirui/mock-interview/backend/internal/service/guard"
	"github.com/zhouzirui/mock-interview/backend/pkg/utils"
)

// Status 暴露生成器的限流与缓存状态
type Status interface {
	Limiter() *guard.RateLimiter
	Cache() *guard.ResponseCache
	UsingFallback() bool
	DevelopmentMode() bool
}

// Info 描述启动时确定的静态信息
type Info struct {
	AIProvider   string
	SessionStore string
}

// Handler 健康检查与运维接口的HTTP处理器
type Handler struct {
	status Status
	info   Info
	now    func() time.Time
}

// New 创建运维处理器
func New(status Status, info Info) *Handler {
	return &Handler{
		status: status,
		info:   info,
		now:    time.Now,
	}
}

// RegisterRoutes 注册健康检查与运维路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/health", h.handleHealth)
	r.Route("/admin", func(admin chi.Router) {
		admin.Get("/api-status", h.handleAPIStatus)
		admin.Post("/clear-cache", h.handleClearCache)
	})
}

type cacheSizes struct {
	Questions   int `json:"questions"`
	Evaluations int `json:"evaluations"`
}

// handleHealth 健康检查端点
func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	usage := h.status.Limiter().Snapshot()
	questions, evaluations := h.status.Cache().Sizes()

	utils.RespondJSON(w, http.StatusOK, map[string]any{
		"status":             "healthy",
		"ai_provider":        h.info.AIProvider,
		"development_mode":   h.status.DevelopmentMode(),
		"session_store":      h.info.SessionStore,
		"supabase_connected": h.info.SessionStore == "supabase",
		"api_usage": map[string]any{
			"calls_today": usage.CallsToday,
			"limit":       usage.DailyLimit,
			"remaining":   usage.Remaining,
			"reset_time":  usage.ResetAt.Format(time.RFC3339),
			"cache_sizes": cacheSizes{Questions: questions, Evaluations: evaluations},
		},
		"timestamp": h.now().Format(time.RFC3339),
	})
}

// handleAPIStatus 详细的调用量与降级状态
func (h *Handler) handleAPIStatus(w http.ResponseWriter, r *http.Request) {
	usage := h.status.Limiter().Snapshot()
	questions, evaluations := h.status.Cache().Sizes()
	hoursUntilReset := usage.ResetAt.Sub(h.now()).Hours()

	usagePercentage := 0.0
	if usage.DailyLimit > 0 {
		usagePercentage = math.Min(100, float64(usage.CallsToday)/float64(usage.DailyLimit)*100)
	}

	usingFallbacks := h.status.UsingFallback()
	nearLimit := usage.CallsToday >= usage.Threshold

	fallbackReason := "Normal operation"
	switch {
	case h.status.DevelopmentMode():
		fallbackReason = "Development mode"
	case nearLimit:
		fallbackReason = "Approaching API limit"
	}

	recommendations := []string{"API usage within normal range"}
	if nearLimit {
		recommendations[0] = "Consider upgrading to paid tier"
	}
	if questions > 5 {
		recommendations = append(recommendations, "Cache is helping reduce API calls")
	} else {
		recommendations = append(recommendations, "Consider enabling caching")
	}
	if hoursUntilReset > 0 {
		recommendations = append(recommendations, fmt.Sprintf("Reset in %.1f hours", hoursUntilReset))
	} else {
		recommendations = append(recommendations, "Reset time passed")
	}

	utils.RespondJSON(w, http.StatusOK, map[string]any{
		"api_usage": map[string]any{
			"calls_today":       usage.CallsToday,
			"daily_limit":       usage.DailyLimit,
			"remaining_calls":   usage.Remaining,
			"usage_percentage":  usagePercentage,
			"reset_time":        usage.ResetAt.Format(time.RFC3339),
			"hours_until_reset": math.Max(0, hoursUntilReset),
		},
		"cache_status": map[string]any{
			"question_cache_size": questions,
			"answer_cache_size":   evaluations,
			"cache_hit_potential": hitPotential(questions),
		},
		"fallback_status": map[string]any{
			"using_fallbacks": usingFallbacks,
			"fallback_reason": fallbackReason,
		},
		"recommendations": recommendations,
	})
}

// handleClearCache 清空题目与评分缓存
func (h *Handler) handleClearCache(w http.ResponseWriter, r *http.Request) {
	questions, evaluations := h.status.Cache().Clear()
	utils.RespondJSON(w, http.StatusOK, map[string]any{
		"message": "Cache cleared successfully",
		"cleared": cacheSizes{Questions: questions, Evaluations: evaluations},
	})
}

func hitPotential(questions int) string {
	switch {
	case questions > 10:
		return "High"
	case questions > 5:
		return "Medium"
	default:
		return "Low"
	}
}
