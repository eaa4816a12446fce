package web

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/hpungsan/stevept/internal/chat"
	"github.com/hpungsan/stevept/internal/logging"
	"github.com/hpungsan/stevept/internal/recipe"
	"github.com/hpungsan/stevept/internal/stats"
	"github.com/hpungsan/stevept/internal/texture"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static/*
var staticFS embed.FS

// placeholderTexture is served for textures no asset store can supply.
const placeholderTexture = "static/" + texture.MissingFile

// Deps holds what the web UI reads from.
type Deps struct {
	Recipes *recipe.Service
	Stats   *stats.Table
	Logger  logrus.FieldLogger
}

// newHandlers wires handlers over the embedded templates.
func newHandlers(deps Deps, version string) *Handlers {
	if deps.Logger == nil {
		deps.Logger = logging.Discard()
	}
	if deps.Stats == nil {
		deps.Stats = stats.NewTable()
	}

	templateSub, err := fs.Sub(templateFS, "templates")
	if err != nil {
		panic(fmt.Sprintf("template sub-FS: %v", err))
	}

	return &Handlers{
		recipes:  deps.Recipes,
		bot:      chat.New(deps.Recipes, deps.Stats),
		renderer: NewRenderer(templateSub, version, deps.Recipes.Textures().MissingPath(), deps.Logger),
		logger:   deps.Logger,
	}
}

// NewServer creates and configures the HTTP server for the recipe browser.
func NewServer(deps Deps, version, bind string, port int) *http.Server {
	h := newHandlers(deps, version)

	staticSub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(fmt.Sprintf("static sub-FS: %v", err))
	}

	return &http.Server{
		Addr:              fmt.Sprintf("%s:%d", bind, port),
		Handler:           securityHeaders(routes(h, staticSub)),
		ReadHeaderTimeout: 10 * time.Second,
	}
}

// routes builds the request multiplexer.
func routes(h *Handlers, staticSub fs.FS) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/recipes", http.StatusFound)
	})
	mux.HandleFunc("GET /recipes", h.HandleList)
	mux.HandleFunc("GET /recipes/search", h.HandleSearch)
	mux.HandleFunc("GET /recipes/{id}", h.HandleDetail)
	mux.HandleFunc("GET /chat", h.HandleChat)

	// Textures live under the resolver's base path so the paths it hands out
	// resolve against this server.
	mux.HandleFunc("GET "+h.recipes.Textures().BasePath()+"/{path...}", h.HandleTexture)

	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServerFS(staticSub)))

	return mux
}

// securityHeaders adds security-related HTTP headers to all responses.
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Security-Policy", "default-src 'self'; img-src 'self'; script-src 'self'; style-src 'self'")
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		next.ServeHTTP(w, r)
	})
}

// Run starts the HTTP server and handles graceful shutdown on SIGINT/SIGTERM.
func Run(srv *http.Server, logger logrus.FieldLogger) error {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	logger.WithField("addr", srv.Addr).Infof("recipe browser running at http://%s", srv.Addr)

	if strings.Contains(srv.Addr, "0.0.0.0") || strings.Contains(srv.Addr, "::") {
		logger.Warn("server is binding to all interfaces and may be accessible from the network")
	}

	select {
	case err := <-errCh:
		return err
	case <-sigCh:
		logger.Info("shutting down")
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(ctx)
	}
}
