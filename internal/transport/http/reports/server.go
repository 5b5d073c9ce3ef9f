package reportshttp

import (
	"context"
	"errors"
	"net/http"
	"os"
	"strings"
	"time"

	"krakenreport/internal/logger"
	"krakenreport/internal/store"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"
)

const (
	defaultAddr     = ":9991"
	shutdownTimeout = 5 * time.Second
)

// Server 提供报告浏览服务：运行历史、图结构、失败步骤与静态报告目录。
type Server struct {
	addr   string
	router *gin.Engine
}

// ServerConfig 描述报告 HTTP 服务依赖。
type ServerConfig struct {
	Addr       string
	Runs       store.RunRepository
	Steps      store.StepIndex
	ReportsDir string
	Regenerate RegenerateFunc
}

// NewServer 构建报告 HTTP server。
func NewServer(cfg ServerConfig) (*Server, error) {
	if cfg.Runs == nil && strings.TrimSpace(cfg.ReportsDir) == "" {
		return nil, errors.New("reports http server requires a run store or a reports dir")
	}
	if cfg.Addr == "" {
		cfg.Addr = defaultAddr
	}
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger())

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if dir := strings.TrimSpace(cfg.ReportsDir); dir != "" {
		if stat, err := os.Stat(dir); err == nil && stat.IsDir() {
			router.Static("/reports", dir)
		} else {
			logger.Warnf("reports http: 报告目录不可用 %s，跳过静态挂载", dir)
		}
	}
	NewRouter(cfg.Runs, cfg.Steps, cfg.Regenerate).Register(router.Group("/api/reports"))

	return &Server{addr: cfg.Addr, router: router}, nil
}

// Handler exposes the router for embedding and tests.
func (s *Server) Handler() http.Handler {
	if s == nil {
		return nil
	}
	return s.router
}

// requestLogger 记录每个请求的耗时与状态码。
func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Debugf("reports http %s %s -> %d (%s)",
			c.Request.Method, c.Request.URL.RequestURI(), c.Writer.Status(), time.Since(start))
	}
}

func (s *Server) Addr() string {
	if s == nil {
		return ""
	}
	return s.addr
}

// Start 启动 HTTP 服务，ctx 取消后在 shutdownTimeout 内优雅退出。
func (s *Server) Start(ctx context.Context) error {
	if s == nil {
		return nil
	}
	srv := &http.Server{Addr: s.addr, Handler: s.router, ReadHeaderTimeout: 10 * time.Second}
	group, gctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		err := srv.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	})
	group.Go(func() error {
		<-gctx.Done()
		shCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shCtx)
	})
	return group.Wait()
}
