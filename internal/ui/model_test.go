package ui

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ssh-vom/mangashelf/internal/cover"
	"github.com/ssh-vom/mangashelf/internal/feed"
)

type fakeFeed struct {
	items    []feed.CarouselItem
	cards    []feed.Card
	top      *feed.TopListings
	err      error
	searched []string
}

func (f *fakeFeed) Latest(ctx context.Context) ([]feed.Card, error) { return f.cards, f.err }

func (f *fakeFeed) Search(ctx context.Context, query string) ([]feed.Card, error) {
	f.searched = append(f.searched, query)
	return f.cards, f.err
}

func (f *fakeFeed) Carousel(ctx context.Context) ([]feed.CarouselItem, error) { return f.items, f.err }

func (f *fakeFeed) TopListings(ctx context.Context) (*feed.TopListings, error) { return f.top, f.err }

func pngDataURI(t *testing.T) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 4, 6))
	img.Set(1, 1, color.RGBA{R: 255, A: 255})
	var buffer bytes.Buffer
	require.NoError(t, png.Encode(&buffer, img))
	return cover.EncodeDataURI("image/png", buffer.Bytes())
}

func slides(ids ...string) []feed.CarouselItem {
	items := make([]feed.CarouselItem, 0, len(ids))
	for _, id := range ids {
		items = append(items, feed.CarouselItem{ID: id, Title: "Title " + id})
	}
	return items
}

func newTestModel(source Feed, graphics bool) model {
	return NewModel(source, Options{Interval: time.Millisecond, Graphics: &graphics})
}

func update(t *testing.T, m model, msg tea.Msg) (model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	updated, ok := next.(model)
	require.True(t, ok)
	return updated, cmd
}

func key(value string) tea.KeyMsg {
	switch value {
	case "left":
		return tea.KeyMsg{Type: tea.KeyLeft}
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "space":
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(value)}
}

func loadedCarousel(t *testing.T, source *fakeFeed) model {
	t.Helper()
	m := newTestModel(source, false)
	m, cmd := update(t, m, m.loadCarouselCmd()())
	require.Equal(t, stateCarousel, m.state)
	require.NotNil(t, cmd)
	return m
}

func TestCarouselLoads(t *testing.T) {
	m := loadedCarousel(t, &fakeFeed{items: slides("a", "b", "c")})

	assert.Equal(t, 0, m.index)
	assert.Contains(t, m.View(), "Title a")
	assert.Contains(t, m.View(), "1/3")
}

func TestAutoAdvanceIgnoresStaleTicks(t *testing.T) {
	m := loadedCarousel(t, &fakeFeed{items: slides("a", "b", "c")})
	current := m.generation

	m, cmd := update(t, m, advanceMsg{generation: current})
	assert.Equal(t, 1, m.index)
	assert.NotNil(t, cmd)

	m, cmd = update(t, m, advanceMsg{generation: current})
	assert.Equal(t, 1, m.index)
	assert.Nil(t, cmd)
}

func TestAutoAdvanceTickFires(t *testing.T) {
	m := loadedCarousel(t, &fakeFeed{items: slides("a", "b")})

	msg := advanceCmd(time.Millisecond, m.generation)()
	m, _ = update(t, m, msg)
	assert.Equal(t, 1, m.index)
}

func TestManualNavigationWrapsAndResetsTimer(t *testing.T) {
	m := loadedCarousel(t, &fakeFeed{items: slides("a", "b", "c")})
	before := m.generation

	m, _ = update(t, m, key("left"))
	assert.Equal(t, 2, m.index)
	assert.Greater(t, m.generation, before)

	m, _ = update(t, m, key("right"))
	m, _ = update(t, m, key("right"))
	assert.Equal(t, 1, m.index)

	m, _ = update(t, m, advanceMsg{generation: before})
	assert.Equal(t, 1, m.index)
}

func TestPauseStopsAutoAdvance(t *testing.T) {
	m := loadedCarousel(t, &fakeFeed{items: slides("a", "b")})

	m, cmd := update(t, m, key("space"))
	assert.True(t, m.paused)
	assert.Nil(t, cmd)
	assert.Contains(t, m.View(), "paused")

	m, _ = update(t, m, advanceMsg{generation: m.generation})
	assert.Equal(t, 0, m.index)

	m, cmd = update(t, m, key("space"))
	assert.False(t, m.paused)
	assert.NotNil(t, cmd)
}

func TestSingleSlideDoesNotArmTimer(t *testing.T) {
	m := newTestModel(&fakeFeed{items: slides("a")}, false)
	m, cmd := update(t, m, m.loadCarouselCmd()())
	assert.Equal(t, stateCarousel, m.state)
	assert.Nil(t, cmd)
}

func TestCarouselErrorAndRetry(t *testing.T) {
	source := &fakeFeed{err: errors.New("request https://api.test/manga failed: 503 Service Unavailable")}
	m := newTestModel(source, false)

	m, _ = update(t, m, m.loadCarouselCmd()())
	assert.Equal(t, stateError, m.state)
	assert.Contains(t, m.View(), "503")

	m, cmd := update(t, m, key("r"))
	assert.Equal(t, stateLoading, m.state)
	assert.NotNil(t, cmd)

	source.err = nil
	source.items = slides("a", "b")
	m, _ = update(t, m, m.loadCarouselCmd()())
	assert.Equal(t, stateCarousel, m.state)
}

func TestTopListingsView(t *testing.T) {
	source := &fakeFeed{
		items: slides("a", "b"),
		top: &feed.TopListings{
			Follows:  []feed.RankedItem{{Rank: 1, ID: "f1", Title: "Followed"}},
			Rating:   []feed.RankedItem{{Rank: 1, ID: "r1", Title: "Rated"}, {Rank: 2, ID: "r2", Title: "Also rated"}},
			Progress: []feed.RankedItem{{Rank: 1, ID: "p1", Title: "Fresh"}},
		},
	}
	m := loadedCarousel(t, source)

	m, cmd := update(t, m, key("t"))
	assert.Equal(t, stateLoading, m.state)
	assert.NotNil(t, cmd)

	m, _ = update(t, m, m.loadTopCmd()())
	require.Equal(t, stateList, m.state)
	items := m.cardList.Items()
	require.Len(t, items, 4)
	assert.Equal(t, "1. Followed", items[0].(cardItem).Title())
	assert.Equal(t, "Recently uploaded", items[3].(cardItem).Description())

	m, cmd = update(t, m, key("esc"))
	assert.Equal(t, stateCarousel, m.state)
	assert.NotNil(t, cmd)
}

func TestLatestView(t *testing.T) {
	updated := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)
	source := &fakeFeed{
		items: slides("a"),
		cards: []feed.Card{{ID: "m1", Title: "Dungeon Meshi", Status: "completed", UpdatedAt: updated}},
	}
	m := loadedCarousel2(t, source)

	m, _ = update(t, m, key("l"))
	m, _ = update(t, m, m.loadLatestCmd()())
	require.Equal(t, stateList, m.state)
	assert.Equal(t, "Latest updates", m.listTitle)
	assert.Equal(t, "completed · updated 2026-10-01", m.cardList.Items()[0].(cardItem).Description())
}

// loadedCarousel2 loads a carousel that may hold a single slide.
func loadedCarousel2(t *testing.T, source *fakeFeed) model {
	t.Helper()
	m := newTestModel(source, false)
	m, _ = update(t, m, m.loadCarouselCmd()())
	require.Equal(t, stateCarousel, m.state)
	return m
}

func TestSearchFlow(t *testing.T) {
	source := &fakeFeed{items: slides("a", "b"), cards: []feed.Card{{ID: "m1", Title: "Frieren"}}}
	m := loadedCarousel(t, source)

	m, _ = update(t, m, key("/"))
	require.Equal(t, stateSearchQuery, m.state)

	m, cmd := update(t, m, key("enter"))
	assert.Nil(t, cmd)
	assert.Equal(t, feed.ErrEmptyQuery.Error(), m.errorMessage)

	m, _ = update(t, m, key("frieren"))
	assert.Equal(t, "frieren", m.textInput.Value())
	assert.Empty(t, m.errorMessage)

	m, cmd = update(t, m, key("enter"))
	assert.Equal(t, stateLoading, m.state)
	assert.NotNil(t, cmd)

	m, _ = update(t, m, m.searchCmd("frieren")())
	assert.Equal(t, []string{"frieren"}, source.searched)
	assert.Equal(t, stateList, m.state)
	assert.Equal(t, `Results for "frieren"`, m.listTitle)
}

func TestSearchEscReturnsToCaller(t *testing.T) {
	m := loadedCarousel(t, &fakeFeed{items: slides("a", "b")})

	m, _ = update(t, m, key("/"))
	m, cmd := update(t, m, key("esc"))
	assert.Equal(t, stateCarousel, m.state)
	assert.NotNil(t, cmd)
}

func TestCarouselCoversDecodedWithGraphics(t *testing.T) {
	uri := pngDataURI(t)
	source := &fakeFeed{items: []feed.CarouselItem{
		{ID: "a", Title: "With cover", Cover: uri},
		{ID: "b", Title: "Broken", Cover: "data:image/jpeg;base64,AAAA"},
	}}
	m := newTestModel(source, true)

	m, _ = update(t, m, m.loadCarouselCmd()())
	require.Contains(t, m.covers, "a")
	assert.Equal(t, 4, m.covers["a"].Width)
	assert.Contains(t, m.coverErrors, "b")
	assert.Contains(t, m.View(), "\x1b_Ga=T")

	m, _ = update(t, m, key("right"))
	assert.NotContains(t, m.View(), "\x1b_Ga=T")
}

func TestListCoverDecodedOnSelection(t *testing.T) {
	uri := pngDataURI(t)
	source := &fakeFeed{items: slides("a"), cards: []feed.Card{{ID: "m1", Title: "One", Cover: uri}}}
	m := newTestModel(source, true)
	m, _ = update(t, m, m.loadCarouselCmd()())

	m, cmd := update(t, m, m.loadLatestCmd()())
	require.NotNil(t, cmd)
	assert.Equal(t, "m1", m.coverLoadingID)

	m, _ = update(t, m, decodeCoverCmd("m1", uri)())
	assert.Empty(t, m.coverLoadingID)
	assert.Contains(t, m.covers, "m1")
	assert.Contains(t, m.View(), "\x1b_Ga=T")
}

func TestLogPane(t *testing.T) {
	sink := NewLogSink(4)
	m := NewModel(&fakeFeed{}, Options{Verbose: true, Logs: sink})

	_, err := sink.Write([]byte("first\n\nsecond\n"))
	require.NoError(t, err)
	m, _ = update(t, m, listenLogCmd(sink.channel)())
	m, _ = update(t, m, listenLogCmd(sink.channel)())
	assert.Equal(t, []string{"first", "second"}, m.logLines)

	for i := 0; i < logLineLimit+2; i++ {
		m, _ = update(t, m, logMsg("line"))
	}
	assert.Len(t, m.logLines, logLineLimit)
	assert.True(t, strings.Contains(m.View(), "Logs:"))
}

func TestLogSinkDropsWhenFull(t *testing.T) {
	sink := NewLogSink(1)
	n, err := sink.Write([]byte("a\nb\n"))
	require.NoError(t, err)
	assert.Equal(t, 4, n)
	assert.Len(t, sink.channel, 1)
}

func TestLayoutHelpers(t *testing.T) {
	assert.Equal(t, 30, coverPanelWidth(30))
	assert.Equal(t, 40, coverPanelWidth(120))
	assert.Equal(t, 78, resultsListWidth(120))
	assert.Equal(t, 20, resultsListWidth(10))

	cols, rows := coverRenderSize(30, 256, 400)
	assert.Equal(t, 28, cols)
	assert.Equal(t, 22, rows)

	_, rows = coverRenderSize(30, 0, 0)
	assert.Equal(t, 12, rows)
	assert.Equal(t, "  \n  ", coverPlaceholder(2, 2))
}
