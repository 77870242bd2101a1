// Package api - HTTP status API инспектора: результат анализа, чанки, процесс, метрики.
// Команды игроков сюда не входят, они идут через command.Dispatcher.
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/annel0/chunk-inspector/internal/analysis"
	"github.com/annel0/chunk-inspector/internal/auth"
	"github.com/annel0/chunk-inspector/internal/chunk"
	"github.com/annel0/chunk-inspector/internal/inspector"
	"github.com/annel0/chunk-inspector/internal/logging"
	"github.com/annel0/chunk-inspector/internal/marker"
	"github.com/annel0/chunk-inspector/internal/middleware"
	"github.com/annel0/chunk-inspector/internal/vec"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

// Config содержит зависимости status API
type Config struct {
	Port     int
	Engine   *inspector.Engine
	Issuer   *auth.TokenIssuer    // nil - /api без авторизации
	Registry *prometheus.Registry // метрики HTTP регистрируются здесь же
	Version  string
}

// StatusServer представляет status API
type StatusServer struct {
	router  *gin.Engine
	engine  *inspector.Engine
	metrics *ServerMetrics
	version string
	srv     *http.Server
}

// GenericResponse представляет общий ответ API
type GenericResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// NewStatusServer создает сервер и настраивает маршруты
func NewStatusServer(cfg Config) *StatusServer {
	if cfg.Registry == nil {
		cfg.Registry = prometheus.NewRegistry()
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(otelgin.Middleware("chunk-inspector"))
	router.Use(middleware.RequestLogger())

	httpMetrics := middleware.NewHTTPMetrics("chunks_api", cfg.Registry, cfg.Registry)
	router.Use(httpMetrics.Handler())
	httpMetrics.RegisterMetricsEndpoint(router)

	ss := &StatusServer{
		router:  router,
		engine:  cfg.Engine,
		metrics: NewServerMetrics(),
		version: cfg.Version,
	}
	ss.srv = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	router.GET("/health", ss.handleHealth)

	api := router.Group("/api")
	api.Use(middleware.RequireOperator(cfg.Issuer))
	{
		api.GET("/analysis", ss.handleAnalysis)
		api.GET("/chunks/:x/:y", ss.handleChunk)
		api.GET("/system", ss.handleSystem)
	}

	return ss
}

// Handler возвращает http.Handler сервера (для тестов и встраивания)
func (ss *StatusServer) Handler() http.Handler {
	return ss.router
}

// Start блокируется до Shutdown
func (ss *StatusServer) Start() error {
	logging.GetAPILogger().Info("🌐 Status API слушает %s", ss.srv.Addr)
	if err := ss.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown завершает обработку запросов
func (ss *StatusServer) Shutdown(ctx context.Context) error {
	return ss.srv.Shutdown(ctx)
}

type chunkView struct {
	X          int     `json:"x"`
	Y          int     `json:"y"`
	Bricks     uint64  `json:"bricks"`
	Colliders  uint64  `json:"colliders"`
	Components uint64  `json:"components"`
	Severity   string  `json:"severity"`
	MinZ       float64 `json:"min_z"`
	MaxZ       float64 `json:"max_z"`
}

func newChunkView(c vec.Vec2, s analysis.Stats) chunkView {
	return chunkView{
		X:          c.X,
		Y:          c.Y,
		Bricks:     s.Bricks,
		Colliders:  s.Colliders,
		Components: s.Components,
		Severity:   marker.Classify(s).String(),
		MinZ:       s.ZRange.Min,
		MaxZ:       s.ZRange.Max,
	}
}

func notAnalyzed(c *gin.Context) {
	c.JSON(http.StatusServiceUnavailable, GenericResponse{
		Success: false,
		Message: "Сохранение ещё не проанализировано",
	})
}

func (ss *StatusServer) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"state":   ss.engine.State().String(),
		"version": ss.version,
		"time":    time.Now().Unix(),
	})
}

// handleAnalysis возвращает сводку последнего анализа и перегруженные чанки
func (ss *StatusServer) handleAnalysis(c *gin.Context) {
	res, ok := ss.engine.Result()
	if !ok {
		notAnalyzed(c)
		return
	}

	flagged := make([]chunkView, 0)
	for _, coord := range res.Sorted() {
		s := *res.Chunks[coord]
		if sev := marker.Classify(s); sev != marker.Safe && sev != marker.Empty {
			flagged = append(flagged, newChunkView(coord, s))
		}
	}

	c.JSON(http.StatusOK, GenericResponse{
		Success: true,
		Message: "Результат анализа",
		Data: gin.H{
			"bricks":          res.TotalBricks,
			"colliders":       res.TotalColliders,
			"chunks":          len(res.Chunks),
			"collider_limit":  marker.ColliderLimit,
			"component_limit": marker.ComponentLimit,
			"flagged":         flagged,
			"unknown_shapes":  res.UnknownShapes,
			"markers_placed":  ss.engine.MarkersPlaced(),
			"analyzed_at":     res.AnalyzedAt,
		},
	})
}

// handleChunk возвращает статистику и угловые маркеры одного чанка
func (ss *StatusServer) handleChunk(c *gin.Context) {
	x, errX := strconv.Atoi(c.Param("x"))
	y, errY := strconv.Atoi(c.Param("y"))
	if errX != nil || errY != nil {
		c.JSON(http.StatusBadRequest, GenericResponse{
			Success: false,
			Message: "Координаты чанка должны быть целыми",
		})
		return
	}

	coord := vec.Vec2{X: x, Y: y}
	if !chunk.InRange(coord) {
		c.JSON(http.StatusBadRequest, GenericResponse{
			Success: false,
			Message: fmt.Sprintf("Координаты чанка должны лежать в пределах ±%d", chunk.MaxCoord),
		})
		return
	}

	plan, err := ss.engine.PlanChunk(coord)
	if errors.Is(err, inspector.ErrNotAnalyzed) {
		notAnalyzed(c)
		return
	}

	corners := make([]vec.Vec3Float, 0, len(plan.Markers))
	for _, m := range plan.Markers {
		corners = append(corners, m.Position)
	}

	c.JSON(http.StatusOK, GenericResponse{
		Success: true,
		Message: "Статистика чанка",
		Data: gin.H{
			"chunk":   newChunkView(plan.Chunk, plan.Stats),
			"color":   plan.Severity.Color(),
			"corners": corners,
		},
	})
}

// handleSystem возвращает показатели процесса
func (ss *StatusServer) handleSystem(c *gin.Context) {
	cpuPercent, _ := ss.metrics.GetCPUUsage()
	rssMB, _ := ss.metrics.GetRSS()

	c.JSON(http.StatusOK, GenericResponse{
		Success: true,
		Message: "Информация о процессе",
		Data: gin.H{
			"uptime":      ss.metrics.GetUptime(),
			"cpu_percent": fmt.Sprintf("%.1f", cpuPercent),
			"rss_mb":      fmt.Sprintf("%.1f", rssMB),
			"memory":      ss.metrics.GetDetailedMemoryStats(),
		},
	})
}
