package ui

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ssh-vom/mangashelf/internal/cover"
	"github.com/ssh-vom/mangashelf/internal/feed"
)

type carouselMsg struct {
	items       []feed.CarouselItem
	covers      map[string]cover.Image
	coverErrors map[string]string
	err         error
}

type cardsMsg struct {
	title string
	items []cardItem
	err   error
}

type advanceMsg struct {
	generation int
}

type coverDecodedMsg struct {
	id    string
	image cover.Image
	err   error
}

type logMsg string

func (model model) loadCarouselCmd() tea.Cmd {
	source, timeout, graphics := model.feed, model.options.RequestTimeout, model.supportsGraphics
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		items, err := source.Carousel(ctx)
		if err != nil {
			return carouselMsg{err: err}
		}

		msg := carouselMsg{items: items, covers: map[string]cover.Image{}, coverErrors: map[string]string{}}
		if !graphics {
			return msg
		}
		// Slides rotate on a timer so every cover is decoded up front.
		for _, item := range items {
			if item.Cover == "" {
				continue
			}
			image, err := cover.FromDataURI(item.Cover)
			if err != nil {
				msg.coverErrors[item.ID] = err.Error()
				continue
			}
			msg.covers[item.ID] = image
		}
		return msg
	}
}

func (model model) loadLatestCmd() tea.Cmd {
	source, timeout := model.feed, model.options.RequestTimeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		cards, err := source.Latest(ctx)
		if err != nil {
			return cardsMsg{err: err}
		}
		return cardsMsg{title: "Latest updates", items: cardItems(cards)}
	}
}

func (model model) searchCmd(query string) tea.Cmd {
	source, timeout := model.feed, model.options.RequestTimeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		cards, err := source.Search(ctx, query)
		if err != nil {
			return cardsMsg{err: err}
		}
		return cardsMsg{title: fmt.Sprintf("Results for %q", query), items: cardItems(cards)}
	}
}

func (model model) loadTopCmd() tea.Cmd {
	source, timeout := model.feed, model.options.RequestTimeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		listings, err := source.TopListings(ctx)
		if err != nil {
			return cardsMsg{err: err}
		}
		return cardsMsg{title: "Top titles", items: rankedItems(listings)}
	}
}

func decodeCoverCmd(id, uri string) tea.Cmd {
	return func() tea.Msg {
		image, err := cover.FromDataURI(uri)
		return coverDecodedMsg{id: id, image: image, err: err}
	}
}

func advanceCmd(interval time.Duration, generation int) tea.Cmd {
	return tea.Tick(interval, func(time.Time) tea.Msg {
		return advanceMsg{generation: generation}
	})
}

func listenLogCmd(ch <-chan logMsg) tea.Cmd {
	return func() tea.Msg {
		return <-ch
	}
}
