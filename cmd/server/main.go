// HelmPlan 排班服务
// 主程序入口

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/helmplan/helmplan/internal/config"
	"github.com/helmplan/helmplan/internal/database"
	"github.com/helmplan/helmplan/internal/handler"
	"github.com/helmplan/helmplan/internal/metrics"
	"github.com/helmplan/helmplan/internal/repository"
	"github.com/helmplan/helmplan/internal/webhook"
	"github.com/helmplan/helmplan/pkg/logger"
	"github.com/helmplan/helmplan/pkg/roster"
	"github.com/joho/godotenv"
)

// 构建信息（通过 ldflags 注入）
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	// .env 文件可选
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "加载配置失败: %v\n", err)
		os.Exit(1)
	}

	// 初始化日志
	logFormat := "json"
	if cfg.IsDevelopment() {
		logFormat = "console"
	}
	logger.Init(logger.Config{
		Level:  cfg.App.LogLevel,
		Format: logFormat,
	})

	// 打印版本信息
	fmt.Printf("HelmPlan 排班服务 v%s\n", Version)
	fmt.Printf("Build: %s (%s)\n", BuildTime, GitCommit)
	fmt.Println()

	// 数据库可选，连接失败时降级为无持久化模式
	var db *database.DB
	if cfg.Database.Enabled {
		db, err = database.New(&cfg.Database)
		if err != nil {
			logger.WithError(err).Msg("数据库不可用，以无持久化模式运行")
			db = nil
		} else {
			defer db.Close()
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			if err := db.Migrate(ctx); err != nil {
				logger.WithError(err).Msg("数据库迁移失败")
				os.Exit(1)
			}
			cancel()
		}
	}

	// 仓储，没有数据库时保持为nil
	var (
		employeeRepo *repository.EmployeeRepository
		settingsRepo *repository.SettingsRepository
		scheduleRepo *repository.ScheduleRepository
	)
	if db != nil {
		employeeRepo = repository.NewEmployeeRepository(db)
		settingsRepo = repository.NewSettingsRepository(db)
		scheduleRepo = repository.NewScheduleRepository(db, cfg.Planner.ScheduleHistory)
	}

	dispatcher := webhook.New(&cfg.Webhook)
	engine := roster.New()

	rosterHandler := handler.NewRosterHandler(engine, scheduleRepo, settingsRepo, employeeRepo, dispatcher, cfg.Planner.GenerateTimeout)
	employeeHandler := handler.NewEmployeeHandler(employeeRepo, dispatcher)
	settingsHandler := handler.NewSettingsHandler(settingsRepo)
	statsHandler := handler.NewStatsHandler(settingsRepo)

	mux := http.NewServeMux()

	// ========================================
	// 系统端点
	// ========================================

	// 健康检查端点
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		status := map[string]interface{}{
			"status":  "ok",
			"service": cfg.App.Name,
		}
		if db != nil {
			dbStatus := "ok"
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			if err := db.Health(ctx); err != nil {
				dbStatus = "unavailable"
			}
			cancel()
			status["database"] = dbStatus
		} else {
			status["database"] = "disabled"
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(status)
	})

	// 版本信息端点
	mux.HandleFunc("/version", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, `{"version":"%s","build_time":"%s","git_commit":"%s"}`, Version, BuildTime, GitCommit)
	})

	// ========================================
	// API v1 端点
	// ========================================

	// API 根路由
	mux.HandleFunc("/api/v1/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{
			"message": "HelmPlan 排班服务 API v1",
			"endpoints": {
				"roster": {
					"generate": "POST /api/v1/roster/generate"
				},
				"schedules": {
					"list": "GET /api/v1/schedules",
					"get": "GET /api/v1/schedules/{id}",
					"delete": "DELETE /api/v1/schedules/{id}",
					"import": "POST /api/v1/schedules/import"
				},
				"employees": {
					"list": "GET /api/v1/employees",
					"create": "POST /api/v1/employees",
					"replace": "PUT /api/v1/employees",
					"get": "GET /api/v1/employees/{id}",
					"update": "PUT /api/v1/employees/{id}",
					"delete": "DELETE /api/v1/employees/{id}"
				},
				"settings": {
					"get": "GET /api/v1/settings",
					"update": "PUT /api/v1/settings"
				},
				"stats": {
					"coverage": "POST /api/v1/stats/coverage",
					"fairness": "POST /api/v1/stats/fairness",
					"suggestions": "POST /api/v1/stats/suggestions"
				}
			}
		}`))
	})

	// 排班生成 API
	mux.HandleFunc("/api/v1/roster/generate", rosterHandler.Generate)

	// 排班历史 API
	mux.HandleFunc("/api/v1/schedules", rosterHandler.ListSchedules)
	mux.HandleFunc("/api/v1/schedules/import", rosterHandler.Import)
	mux.HandleFunc("/api/v1/schedules/", rosterHandler.ScheduleByID)

	// 员工 API
	mux.HandleFunc("/api/v1/employees", employeeHandler.Collection)
	mux.HandleFunc("/api/v1/employees/", employeeHandler.ByID)

	// 配置 API
	mux.HandleFunc("/api/v1/settings", settingsHandler.Handle)

	// 统计分析 API
	mux.HandleFunc("/api/v1/stats/coverage", statsHandler.Coverage)
	mux.HandleFunc("/api/v1/stats/fairness", statsHandler.Fairness)
	mux.HandleFunc("/api/v1/stats/suggestions", statsHandler.Suggestions)

	// ========================================
	// 监控端点
	// ========================================

	if cfg.Metrics.Enabled {
		mux.Handle(cfg.Metrics.Path, metrics.Handler())
	}

	// ========================================
	// 中间件
	// ========================================

	// 中间件执行顺序：requestID -> rateLimit -> cors -> logging -> recovery -> handler
	rateLimiter := NewRateLimiter(float64(cfg.API.RateLimit))
	root := requestIDMiddleware(rateLimitMiddleware(rateLimiter, corsMiddleware(loggingMiddleware(recoveryMiddleware(mux)))))

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.App.Port),
		Handler:      root,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// 启动服务器（非阻塞）
	go func() {
		logger.Info().
			Int("port", cfg.App.Port).
			Str("version", Version).
			Str("env", cfg.App.Env).
			Bool("database", db != nil).
			Bool("webhook", dispatcher.Enabled()).
			Msg("服务器启动")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error().Err(err).Msg("服务器启动失败")
			os.Exit(1)
		}
	}()

	// 优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("正在关闭服务器...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("服务器关闭失败")
		os.Exit(1)
	}

	logger.Info().Msg("服务器已关闭")
}

// requestIDMiddleware 请求ID追踪中间件
func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// 尝试从请求头获取 Request ID，没有则生成新的
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = uuid.New().String()
		}

		// 设置响应头
		w.Header().Set("X-Request-ID", requestID)

		// 将 Request ID 存储到 context 中
		ctx := context.WithValue(r.Context(), "request_id", requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// loggingMiddleware 日志中间件
func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		// 获取 Request ID
		requestID, _ := r.Context().Value("request_id").(string)

		// 包装ResponseWriter以捕获状态码
		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(rw, r)

		duration := time.Since(start)

		logger.Info().
			Str("request_id", requestID).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", rw.statusCode).
			Dur("duration", duration).
			Msg("请求处理")

		// 记录Prometheus指标
		metrics.RecordRequestMetrics(r.Method, r.URL.Path, rw.statusCode, duration)
	})
}

// recoveryMiddleware panic恢复中间件
func recoveryMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if p := recover(); p != nil {
				logger.Error().
					Interface("panic", p).
					Str("path", r.URL.Path).
					Msg("请求处理panic")
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusInternalServerError)
				json.NewEncoder(w).Encode(map[string]interface{}{
					"error":   true,
					"code":    "INTERNAL_ERROR",
					"message": "服务器内部错误",
				})
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// responseWriter 包装ResponseWriter以捕获状态码
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// RateLimiter 简单的令牌桶限流器
type RateLimiter struct {
	tokens     float64
	maxTokens  float64
	refillRate float64 // 每秒添加的令牌数
	lastRefill time.Time
	mu         sync.Mutex
}

// NewRateLimiter 创建限流器
func NewRateLimiter(requestsPerSecond float64) *RateLimiter {
	if requestsPerSecond <= 0 {
		requestsPerSecond = 100
	}
	return &RateLimiter{
		tokens:     requestsPerSecond,
		maxTokens:  requestsPerSecond * 2, // 允许突发流量
		refillRate: requestsPerSecond,
		lastRefill: time.Now(),
	}
}

// Allow 检查是否允许请求
func (rl *RateLimiter) Allow() bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	elapsed := now.Sub(rl.lastRefill).Seconds()
	rl.tokens += elapsed * rl.refillRate
	if rl.tokens > rl.maxTokens {
		rl.tokens = rl.maxTokens
	}
	rl.lastRefill = now

	if rl.tokens >= 1 {
		rl.tokens--
		return true
	}
	return false
}

// rateLimitMiddleware 限流中间件
func rateLimitMiddleware(limiter *RateLimiter, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !limiter.Allow() {
			w.Header().Set("Content-Type", "application/json")
			w.Header().Set("Retry-After", "1")
			w.WriteHeader(http.StatusTooManyRequests)
			json.NewEncoder(w).Encode(map[string]interface{}{
				"error":   true,
				"code":    "RATE_LIMITED",
				"message": "请求过于频繁，请稍后重试",
			})
			return
		}
		next.ServeHTTP(w, r)
	})
}

// corsMiddleware CORS中间件
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-API-Key")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
