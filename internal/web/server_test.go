package web

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ssh-vom/mangashelf/internal/feed"
	"github.com/ssh-vom/mangashelf/internal/providers/manga/mangadex"
)

const pngURI = "data:image/png;base64,iVBORw0KGgo="

type fakeFeed struct {
	cards    []feed.Card
	items    []feed.CarouselItem
	top      *feed.TopListings
	err      error
	searched string
}

func (f *fakeFeed) Latest(ctx context.Context) ([]feed.Card, error) {
	return f.cards, f.err
}

func (f *fakeFeed) Search(ctx context.Context, query string) ([]feed.Card, error) {
	f.searched = query
	if query == "" {
		return nil, feed.ErrEmptyQuery
	}
	return f.cards, f.err
}

func (f *fakeFeed) Carousel(ctx context.Context) ([]feed.CarouselItem, error) {
	return f.items, f.err
}

func (f *fakeFeed) TopListings(ctx context.Context) (*feed.TopListings, error) {
	return f.top, f.err
}

func newTestServer(t *testing.T, source Feed, logs *bytes.Buffer) *Server {
	t.Helper()
	options := Options{CarouselInterval: 3 * time.Second}
	if logs != nil {
		options.Logger = slog.New(slog.NewTextHandler(logs, nil))
	}
	server, err := NewServer(source, options)
	require.NoError(t, err)
	return server
}

func serve(server *Server, target string, header http.Header) *httptest.ResponseRecorder {
	request := httptest.NewRequest(http.MethodGet, target, nil)
	for key, values := range header {
		request.Header[key] = values
	}
	recorder := httptest.NewRecorder()
	server.Handler().ServeHTTP(recorder, request)
	return recorder
}

func TestHealthz(t *testing.T) {
	recorder := serve(newTestServer(t, &fakeFeed{}, nil), "/healthz", nil)

	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.JSONEq(t, `{"status":"ok"}`, recorder.Body.String())
	assert.NotEmpty(t, recorder.Header().Get(HeaderRequestID))
}

func TestRequestIDIsPropagated(t *testing.T) {
	header := http.Header{}
	header.Set(HeaderRequestID, "abc-123")

	recorder := serve(newTestServer(t, &fakeFeed{}, nil), "/healthz", header)
	assert.Equal(t, "abc-123", recorder.Header().Get(HeaderRequestID))
}

func TestAPILatest(t *testing.T) {
	source := &fakeFeed{cards: []feed.Card{{ID: "m1", Title: "One", Cover: pngURI}}}

	recorder := serve(newTestServer(t, source, nil), "/api/latest", nil)
	require.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, "application/json; charset=utf-8", recorder.Header().Get("Content-Type"))

	var cards []feed.Card
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &cards))
	require.Len(t, cards, 1)
	assert.Equal(t, "One", cards[0].Title)
}

func TestAPISearchPassesQuery(t *testing.T) {
	source := &fakeFeed{cards: []feed.Card{}}

	recorder := serve(newTestServer(t, source, nil), "/api/search?q=one+piece", nil)
	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, "one piece", source.searched)
	assert.JSONEq(t, `[]`, recorder.Body.String())
}

func TestAPISearchEmptyQuery(t *testing.T) {
	recorder := serve(newTestServer(t, &fakeFeed{}, nil), "/api/search", nil)

	assert.Equal(t, http.StatusBadRequest, recorder.Code)
	var body errorBody
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))
	assert.Equal(t, feed.ErrEmptyQuery.Error(), body.Error)
	assert.NotEmpty(t, body.RequestID)
}

func TestAPIUpstreamFailure(t *testing.T) {
	var logs bytes.Buffer
	upstream := &mangadex.TransportError{URL: "https://api.test/manga", StatusCode: http.StatusTooManyRequests}
	source := &fakeFeed{err: fmt.Errorf("latest: %w", upstream)}

	recorder := serve(newTestServer(t, source, &logs), "/api/latest", nil)
	assert.Equal(t, http.StatusBadGateway, recorder.Code)

	var body errorBody
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))
	assert.Equal(t, http.StatusTooManyRequests, body.UpstreamStatus)
	assert.Contains(t, logs.String(), "request failed")
	assert.Contains(t, logs.String(), "status=502")
}

func TestAPIUnexpectedFailure(t *testing.T) {
	recorder := serve(newTestServer(t, &fakeFeed{err: errors.New("boom")}, nil), "/api/carousel", nil)
	assert.Equal(t, http.StatusInternalServerError, recorder.Code)
}

func TestAPITop(t *testing.T) {
	source := &fakeFeed{top: &feed.TopListings{
		Follows:  []feed.RankedItem{{Rank: 1, ID: "a"}},
		Rating:   []feed.RankedItem{{Rank: 1, ID: "b"}},
		Progress: []feed.RankedItem{{Rank: 1, ID: "c"}},
	}}

	recorder := serve(newTestServer(t, source, nil), "/api/top", nil)
	require.Equal(t, http.StatusOK, recorder.Code)

	var listings feed.TopListings
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &listings))
	assert.Equal(t, "c", listings.Progress[0].ID)
}

func TestCarouselPage(t *testing.T) {
	source := &fakeFeed{items: []feed.CarouselItem{
		{ID: "m1", Title: "First", Cover: pngURI, Tags: []string{"Action", "Drama"}, Authors: []string{"Oda"}, Year: 1997},
		{ID: "m2", Title: "Second", Cover: "javascript:alert(1)"},
	}}

	recorder := serve(newTestServer(t, source, nil), "/", nil)
	require.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, "text/html; charset=utf-8", recorder.Header().Get("Content-Type"))

	document, err := goquery.NewDocumentFromReader(recorder.Body)
	require.NoError(t, err)

	interval, ok := document.Find("#carousel").Attr("data-interval")
	require.True(t, ok)
	assert.Equal(t, "3000", interval)

	slides := document.Find(".slide")
	require.Equal(t, 2, slides.Length())
	assert.Equal(t, "First", slides.First().Find("h2").Text())
	assert.Equal(t, 2, slides.First().Find(".tags li").Length())

	src, ok := slides.First().Find("img").Attr("src")
	require.True(t, ok)
	assert.Equal(t, pngURI, src)
	assert.Equal(t, 0, slides.Last().Find("img").Length())
}

func TestSearchPage(t *testing.T) {
	source := &fakeFeed{cards: []feed.Card{{ID: "m1", Title: "Berserk", Cover: pngURI}}}

	recorder := serve(newTestServer(t, source, nil), "/search?q=berserk", nil)
	require.Equal(t, http.StatusOK, recorder.Code)

	document, err := goquery.NewDocumentFromReader(recorder.Body)
	require.NoError(t, err)
	assert.Contains(t, document.Find("main h2").Text(), "berserk")
	assert.Equal(t, "Berserk", document.Find(".card h3").Text())
}

func TestPageErrorStatus(t *testing.T) {
	source := &fakeFeed{err: &mangadex.TransportError{URL: "https://api.test/manga", StatusCode: http.StatusServiceUnavailable}}

	recorder := serve(newTestServer(t, source, nil), "/", nil)
	require.Equal(t, http.StatusBadGateway, recorder.Code)

	document, err := goquery.NewDocumentFromReader(recorder.Body)
	require.NoError(t, err)
	assert.Equal(t, "502", document.Find(".status").Text())
	assert.Contains(t, document.Find(".message").Text(), "503")
}

func TestCoverSrcRejectsNonImages(t *testing.T) {
	assert.Equal(t, "", string(coverSrc("https://example.test/a.jpg")))
	assert.Equal(t, "", string(coverSrc("data:text/html;base64,PGI+")))
	assert.Equal(t, pngURI, string(coverSrc(pngURI)))
}
