// Package api 是推荐与分析的 HTTP 接口（chi）。
//
//	GET  /healthz                     存活
//	GET  /readyz                      已加载快照
//	GET  /metrics                     Prometheus 指标
//	POST /v1/recommendations          多条件推荐
//	GET  /v1/snapshot                 当前快照
//	POST /v1/snapshot/reload          重新加载目录（可选 Bearer Token）
//	GET  /v1/analytics/overview       概览，支持 ?year=&mpaa=&genre=
//	GET  /v1/analytics/insights       深度洞察，过滤参数同上
//	GET  /v1/analytics/filters        可选的过滤取值
package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/rushteam/moviekit/config"
	"github.com/rushteam/moviekit/engine"
	"github.com/rushteam/moviekit/logging"
	"github.com/rushteam/moviekit/snapshot"
)

// Server 是 HTTP 服务。
type Server struct {
	engine *engine.Engine
	cfg    config.ServerConfig
}

// NewServer 创建服务。
func NewServer(e *engine.Engine, cfg config.ServerConfig) *Server {
	return &Server{engine: e, cfg: cfg}
}

// Handler 返回配置好中间件与路由的 http.Handler。
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(RequestID())
	r.Use(chimiddleware.RealIP)
	r.Use(AccessLog())
	r.Use(chimiddleware.Recoverer)
	r.Use(CORS(s.cfg.CORSOrigins))

	r.Get("/healthz", s.handleHealth)
	r.Get("/readyz", s.handleReady)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/v1", func(r chi.Router) {
		r.Use(RateLimit(s.cfg.RateLimit, s.cfg.RateLimitWindow))

		r.Post("/recommendations", s.handleRecommend)

		r.Get("/snapshot", s.handleSnapshot)
		r.With(AdminAuth(s.cfg.AdminToken)).Post("/snapshot/reload", s.handleReload)

		r.Route("/analytics", func(r chi.Router) {
			r.Get("/overview", s.handleOverview)
			r.Get("/insights", s.handleInsights)
			r.Get("/filters", s.handleFilterOptions)
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, r, http.StatusNotFound, "NOT_FOUND", "route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, r, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "method not allowed")
	})
	return r
}

// ListenAndServe 启动服务，ctx 取消后优雅退出。
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Handler(),
		ReadTimeout:       s.cfg.ReadTimeout,
		ReadHeaderTimeout: s.cfg.ReadTimeout,
		WriteTimeout:      s.cfg.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logging.Info().Str("addr", s.cfg.Addr).Msg("http server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	timeout := s.cfg.ShutdownTimeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	logging.Info().Msg("http server shutting down")
	return srv.Shutdown(shutdownCtx)
}

func newSnapshotInfo(snap *snapshot.Snapshot) SnapshotInfo {
	return SnapshotInfo{
		ID:          snap.ID.String(),
		Version:     snap.Version,
		CatalogHash: strconv.FormatUint(snap.CatalogHash, 16),
		Movies:      snap.Len(),
		Terms:       snap.Index.Dims(),
		BuiltAt:     snap.BuiltAt.UTC().Format(time.RFC3339),
	}
}
