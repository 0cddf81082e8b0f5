package web

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/ssh-vom/mangashelf/internal/feed"
	"github.com/ssh-vom/mangashelf/internal/providers/manga/mangadex"
)

type errorBody struct {
	Error          string `json:"error"`
	UpstreamStatus int    `json:"upstreamStatus,omitempty"`
	RequestID      string `json:"requestId,omitempty"`
}

type carouselPage struct {
	Items    []feed.CarouselItem
	Interval time.Duration
}

type searchPage struct {
	Query string
	Cards []feed.Card
}

type errorPage struct {
	Status  int
	Message string
}

func (server *Server) handleHealth(writer http.ResponseWriter, request *http.Request) {
	writeJSON(writer, http.StatusOK, map[string]string{"status": "ok"})
}

func (server *Server) handleLatest(writer http.ResponseWriter, request *http.Request) {
	cards, err := server.feed.Latest(request.Context())
	if err != nil {
		server.writeError(writer, request, err)
		return
	}
	writeJSON(writer, http.StatusOK, cards)
}

func (server *Server) handleSearch(writer http.ResponseWriter, request *http.Request) {
	cards, err := server.feed.Search(request.Context(), request.URL.Query().Get("q"))
	if err != nil {
		server.writeError(writer, request, err)
		return
	}
	writeJSON(writer, http.StatusOK, cards)
}

func (server *Server) handleCarousel(writer http.ResponseWriter, request *http.Request) {
	items, err := server.feed.Carousel(request.Context())
	if err != nil {
		server.writeError(writer, request, err)
		return
	}
	writeJSON(writer, http.StatusOK, items)
}

func (server *Server) handleTop(writer http.ResponseWriter, request *http.Request) {
	listings, err := server.feed.TopListings(request.Context())
	if err != nil {
		server.writeError(writer, request, err)
		return
	}
	writeJSON(writer, http.StatusOK, listings)
}

func (server *Server) handleCarouselPage(writer http.ResponseWriter, request *http.Request) {
	items, err := server.feed.Carousel(request.Context())
	if err != nil {
		server.renderError(writer, request, err)
		return
	}
	server.render(writer, request, http.StatusOK, "carousel.html", carouselPage{Items: items, Interval: server.options.CarouselInterval})
}

func (server *Server) handleSearchPage(writer http.ResponseWriter, request *http.Request) {
	query := request.URL.Query().Get("q")
	cards, err := server.feed.Search(request.Context(), query)
	if err != nil {
		server.renderError(writer, request, err)
		return
	}
	server.render(writer, request, http.StatusOK, "search.html", searchPage{Query: query, Cards: cards})
}

// statusFor maps feed failures to HTTP statuses. Upstream failures surface as
// 502 with the MangaDex status, if any, in the body.
func statusFor(err error) (int, int) {
	var transportErr *mangadex.TransportError
	var parseErr *mangadex.ParseError
	switch {
	case errors.Is(err, feed.ErrEmptyQuery):
		return http.StatusBadRequest, 0
	case errors.As(err, &transportErr):
		return http.StatusBadGateway, transportErr.StatusCode
	case errors.As(err, &parseErr):
		return http.StatusBadGateway, 0
	default:
		return http.StatusInternalServerError, 0
	}
}

func (server *Server) writeError(writer http.ResponseWriter, request *http.Request, err error) {
	status, upstream := statusFor(err)
	loggerFrom(request.Context(), server.logger).Error("request failed",
		slog.Int("status", status),
		slog.Any("error", err),
	)

	writeJSON(writer, status, errorBody{
		Error:          err.Error(),
		UpstreamStatus: upstream,
		RequestID:      RequestIDFrom(request.Context()),
	})
}

func (server *Server) renderError(writer http.ResponseWriter, request *http.Request, err error) {
	status, _ := statusFor(err)
	loggerFrom(request.Context(), server.logger).Error("page failed",
		slog.Int("status", status),
		slog.Any("error", err),
	)
	server.render(writer, request, status, "error.html", errorPage{Status: status, Message: err.Error()})
}

// render executes into a buffer first so a template failure never leaves a
// half written page behind a 200.
func (server *Server) render(writer http.ResponseWriter, request *http.Request, status int, name string, data any) {
	var buffer bytes.Buffer
	if err := server.templates.ExecuteTemplate(&buffer, name, data); err != nil {
		loggerFrom(request.Context(), server.logger).Error("template failed",
			slog.String("template", name),
			slog.Any("error", err),
		)
		http.Error(writer, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	writer.Header().Set("Content-Type", "text/html; charset=utf-8")
	writer.WriteHeader(status)
	_, _ = buffer.WriteTo(writer)
}

func writeJSON(writer http.ResponseWriter, status int, payload any) {
	writer.Header().Set("Content-Type", "application/json; charset=utf-8")
	writer.WriteHeader(status)
	_ = json.NewEncoder(writer).Encode(payload)
}
