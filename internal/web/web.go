// Package web serves the browser UI: a form that runs the content
// generation workflow and a result page with a publish-to-LinkedIn
// action. Results live in an in-memory session store keyed by UUID so
// reloads and publish requests can reference them.
package web

import (
	"context"
	"embed"
	"errors"
	"html/template"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/randalmurphal/postflow/internal/imagestore"
	"github.com/randalmurphal/postflow/internal/linkedin"
	"github.com/randalmurphal/postflow/internal/model"
	"github.com/randalmurphal/postflow/internal/workflow"
)

//go:embed templates
var templateFS embed.FS

// Generator runs the content workflow for one request.
type Generator interface {
	Run(ctx context.Context, req workflow.Request) (model.State, error)
}

// Publisher posts generated content to LinkedIn.
type Publisher interface {
	PostContent(ctx context.Context, text string) model.PublishResult
	PostArticle(ctx context.Context, title, text string) model.PublishResult
}

var (
	_ Generator = (*workflow.Workflow)(nil)
	_ Publisher = (*linkedin.Client)(nil)
)

// Server is the web UI over a generator and a publisher.
type Server struct {
	echo     *echo.Echo
	gen      Generator
	pub      Publisher
	images   *imagestore.Store
	sessions *sessionStore
	logger   *slog.Logger
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger for request and application logs.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// New builds the UI server. The image store is served read-only under
// /images so result pages can embed rendered illustrations.
func New(gen Generator, pub Publisher, images *imagestore.Store, opts ...Option) *Server {
	s := &Server{
		gen:      gen,
		pub:      pub,
		images:   images,
		sessions: newSessionStore(),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Renderer = &templateRenderer{
		templates: template.Must(template.ParseFS(templateFS, "templates/*.html")),
	}

	e.Use(middleware.Recover())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod: true,
		LogURI:    true,
		LogStatus: true,
		LogError:  true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			attrs := []slog.Attr{
				slog.String("method", v.Method),
				slog.String("uri", v.URI),
				slog.Int("status", v.Status),
			}
			if v.Error != nil {
				attrs = append(attrs, slog.String("error", v.Error.Error()))
			}
			s.logger.LogAttrs(c.Request().Context(), slog.LevelInfo, "request", attrs...)
			return nil
		},
	}))

	e.GET("/", s.handleIndex)
	e.POST("/generate", s.handleGenerate)
	e.GET("/result/:id", s.handleResult)
	e.POST("/result/:id/publish", s.handlePublish)
	e.Static("/images", images.Dir())

	s.echo = e
	return s
}

// ServeHTTP makes the server mountable and testable as a plain
// http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.echo.ServeHTTP(w, r)
}

// Start listens on addr until ctx is cancelled, then shuts down
// gracefully. No write timeout is set: /generate runs the workflow
// inside the request and can take minutes.
func (s *Server) Start(ctx context.Context, addr string) error {
	server := &http.Server{
		Addr:              addr,
		Handler:           s.echo,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("web UI listening", slog.String("addr", addr))
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			s.logger.Error("web UI shutdown failed", slog.String("error", err.Error()))
			return server.Close()
		}
		s.logger.Info("web UI stopped")
		return nil
	}
}

// templateRenderer adapts html/template to echo's Renderer interface.
type templateRenderer struct {
	templates *template.Template
}

func (t *templateRenderer) Render(w io.Writer, name string, data any, _ echo.Context) error {
	return t.templates.ExecuteTemplate(w, name, data)
}
