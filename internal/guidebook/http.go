// Пакет guidebook предоставляет HTTP API редактора интерактивных руководств: сессии редактирования документа,
// сопоставление кликов по кнопкам редактирования, формы действий и предпросмотр.
//
// Основные возможности:
//   - Сессии редактора в памяти с удалением по простою.
//   - Загрузка документа из HTML, Markdown или TipTap JSON.
//   - Клик по элементу DOM редактора, открытие и применение формы редактирования.
//   - Вставка, снятие и переключение интерактивных нод.
//   - Метрики Prometheus на отдельном порту.
package guidebook

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/aisa-it/guidebook/guidebook.go/internal/guidebook/apierrors"
	"github.com/aisa-it/guidebook/guidebook.go/internal/guidebook/config"
	store "github.com/aisa-it/guidebook/guidebook.go/internal/guidebook/memory-store"
	"github.com/aisa-it/guidebook/guidebook.go/internal/guidebook/preview"
	"github.com/aisa-it/guidebook/guidebook.go/internal/guidebook/session"
	"github.com/aisa-it/guidebook/guidebook.go/pkg/limiter"
)

type Server struct {
	cfg      *config.Config
	e        *echo.Echo
	sessions *store.SessionStore
	metrics  *Metrics
	limiter  limiter.LimiterInt

	createMu sync.Mutex
}

// ServerHeader middleware adds a `Server` header to the response.
func ServerHeader(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		c.Response().Header().Set(echo.HeaderServer, "Guidebook")
		return next(c)
	}
}

// NewServer создает сервер и регистрирует маршруты API.
func NewServer(cfg *config.Config) (*Server, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if err := cfg.Normalize(); err != nil {
		return nil, err
	}
	if _, err := preview.NewFormatter(cfg.PreviewFormat); err != nil {
		return nil, err
	}

	s := &Server{
		cfg:      cfg,
		sessions: store.NewSessionStore(cfg.SessionTTL()),
		metrics:  NewMetrics(),
		limiter:  limiter.New(cfg.MaxSessions),
	}
	s.sessions.OnChange = s.metrics.setSessions

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = func(err error, c echo.Context) {
		code := http.StatusInternalServerError
		var he *echo.HTTPError
		if errors.As(err, &he) {
			code = he.Code
		}

		// Ignore 404
		if code == http.StatusNotFound {
			c.NoContent(http.StatusNotFound)
			return
		}
		slog.Error("Unhandled error in endpoint", "url", c.Request().URL, "err", err)
		EErrorMsgStatus(c, nil, code)
	}

	e.Use(ServerHeader)
	e.Use(middleware.Recover())
	e.Use(middleware.BodyLimit("5M"))
	e.Use(middleware.GzipWithConfig(middleware.GzipConfig{
		Level:     5,
		MinLength: 2048,
	}))
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Namespace:  metricsNamespace,
		Registerer: s.metrics.Registry,
	}))
	e.Pre(middleware.AddTrailingSlash())

	e.Validator = NewRequestValidator()

	apiGroup := e.Group("/api/")
	s.AddSessionServices(apiGroup)
	s.AddEditServices(apiGroup)

	// Health endpoint
	apiGroup.GET("_health/", func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})

	s.e = e
	return s, nil
}

// Echo возвращает обработчик HTTP сервера.
func (s *Server) Echo() *echo.Echo {
	return s.e
}

// Sessions возвращает хранилище сессий.
func (s *Server) Sessions() *store.SessionStore {
	return s.sessions
}

// Start запускает API и сервер метрик и работает до отмены ctx.
func (s *Server) Start(ctx context.Context) error {
	var metrics *echo.Echo
	if s.cfg.MetricsAddr != "" {
		metrics = echo.New()
		metrics.HideBanner = true
		metrics.HidePort = true
		metrics.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: s.metrics.Registry}))
		go func() {
			slog.Info("Metrics server start", "addr", s.cfg.MetricsAddr)
			if err := metrics.Start(s.cfg.MetricsAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
				slog.Error("Metrics server fail", "err", err)
			}
		}()
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("Server start", "addr", s.cfg.ListenAddr)
		errCh <- s.e.Start(s.cfg.ListenAddr)
	}()

	var err error
	select {
	case <-ctx.Done():
	case err = <-errCh:
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if metrics != nil {
		_ = metrics.Shutdown(shutdownCtx)
	}
	if shutdownErr := s.e.Shutdown(shutdownCtx); shutdownErr != nil {
		slog.Error("Server shutdown", "err", shutdownErr)
	}
	s.sessions.Close()

	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) newSession(ctx context.Context, format, content string) (*session.Session, error) {
	doc, err := loadDocument(format, content)
	if err != nil {
		return nil, err
	}
	formatter, err := preview.NewFormatter(s.cfg.PreviewFormat)
	if err != nil {
		return nil, err
	}

	s.createMu.Lock()
	defer s.createMu.Unlock()
	if active := s.sessions.Len(); !s.limiter.CanOpenSession(active) {
		slog.WarnContext(ctx, "Session limit reached", "active", active)
		return nil, apierrors.ErrSessionLimit
	}

	sess := session.New(doc, session.Options{
		Glyph:     s.cfg.AffordanceGlyph,
		Formatter: formatter,
		Preview: []preview.Option{
			preview.WithSanitize(s.cfg.PreviewSanitize),
			preview.WithTimeout(s.cfg.PreviewTimeout()),
			preview.WithObserver(s.metrics.observePreview),
		},
	})
	s.sessions.Add(sess)
	slog.InfoContext(ctx, "Session created", "session", sess.ID, "format", format)
	return sess, nil
}
