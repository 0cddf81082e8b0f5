// Package web serves the featured carousel and the feed endpoints over HTTP.
package web

import (
	"context"
	"embed"
	"html/template"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/ssh-vom/mangashelf/internal/cover"
	"github.com/ssh-vom/mangashelf/internal/feed"
	"github.com/ssh-vom/mangashelf/internal/logging"
)

const (
	DefaultRequestTimeout   = 60 * time.Second
	DefaultCarouselInterval = 5 * time.Second
)

//go:embed templates/*.html
var templateFS embed.FS

// Feed is what the handlers need from the aggregation layer.
type Feed interface {
	Latest(ctx context.Context) ([]feed.Card, error)
	Search(ctx context.Context, query string) ([]feed.Card, error)
	Carousel(ctx context.Context) ([]feed.CarouselItem, error)
	TopListings(ctx context.Context) (*feed.TopListings, error)
}

type Options struct {
	Addr             string
	CarouselInterval time.Duration
	RequestTimeout   time.Duration
	Logger           *slog.Logger
}

type Server struct {
	feed       Feed
	options    Options
	logger     *slog.Logger
	templates  *template.Template
	router     *chi.Mux
	httpServer *http.Server
}

func NewServer(source Feed, options Options) (*Server, error) {
	if options.CarouselInterval <= 0 {
		options.CarouselInterval = DefaultCarouselInterval
	}
	if options.RequestTimeout <= 0 {
		options.RequestTimeout = DefaultRequestTimeout
	}
	logger := options.Logger
	if logger == nil {
		logger = logging.Discard()
	}

	templates, err := template.New("pages").Funcs(template.FuncMap{
		"coverSrc": coverSrc,
		"millis":   func(d time.Duration) int64 { return d.Milliseconds() },
	}).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, err
	}

	server := &Server{
		feed:      source,
		options:   options,
		logger:    logger,
		templates: templates,
	}

	router := chi.NewRouter()
	router.Use(RequestID())
	router.Use(RequestLogger(logger))
	router.Use(chimw.Recoverer)
	router.Use(chimw.Timeout(options.RequestTimeout))

	router.Get("/healthz", server.handleHealth)
	router.Route("/api", func(api chi.Router) {
		api.Get("/latest", server.handleLatest)
		api.Get("/search", server.handleSearch)
		api.Get("/carousel", server.handleCarousel)
		api.Get("/top", server.handleTop)
	})
	router.Get("/", server.handleCarouselPage)
	router.Get("/search", server.handleSearchPage)

	server.router = router
	server.httpServer = &http.Server{
		Addr:              options.Addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       2 * time.Minute,
	}
	return server, nil
}

func (server *Server) Handler() http.Handler {
	return server.router
}

// ListenAndServe blocks until the server is shut down.
func (server *Server) ListenAndServe() error {
	server.logger.Info("server starting", slog.String("addr", server.httpServer.Addr))
	return server.httpServer.ListenAndServe()
}

func (server *Server) Shutdown(ctx context.Context) error {
	return server.httpServer.Shutdown(ctx)
}

// coverSrc only lets base64 image data URIs through to img src attributes.
func coverSrc(uri string) template.URL {
	if !cover.IsImageDataURI(uri) {
		return ""
	}
	return template.URL(uri)
}
