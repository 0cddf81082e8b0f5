package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"

	"github.com/ssh-vom/mangashelf/internal/feed"
)

type cardItem struct {
	id          string
	title       string
	description string
	cover       string
}

func (item cardItem) Title() string       { return item.title }
func (item cardItem) Description() string { return item.description }
func (item cardItem) FilterValue() string { return item.title }

func cardItems(cards []feed.Card) []cardItem {
	items := make([]cardItem, 0, len(cards))
	for _, card := range cards {
		details := []string{}
		if card.Status != "" {
			details = append(details, card.Status)
		}
		if !card.UpdatedAt.IsZero() {
			details = append(details, "updated "+card.UpdatedAt.Format("2006-01-02"))
		}
		if len(card.Tags) > 0 {
			details = append(details, strings.Join(card.Tags, ", "))
		}
		items = append(items, cardItem{
			id:          card.ID,
			title:       card.Title,
			description: strings.Join(details, " · "),
			cover:       card.Cover,
		})
	}
	return items
}

func rankedItems(listings *feed.TopListings) []cardItem {
	if listings == nil {
		return nil
	}

	sections := []struct {
		label string
		items []feed.RankedItem
	}{
		{"Most followed", listings.Follows},
		{"Highest rated", listings.Rating},
		{"Recently uploaded", listings.Progress},
	}

	items := []cardItem{}
	for _, section := range sections {
		for _, ranked := range section.items {
			items = append(items, cardItem{
				id:          ranked.ID,
				title:       fmt.Sprintf("%d. %s", ranked.Rank, ranked.Title),
				description: section.label,
				cover:       ranked.Cover,
			})
		}
	}
	return items
}

func newCardList(items []cardItem, title string, width, height int) list.Model {
	listItems := make([]list.Item, 0, len(items))
	for _, item := range items {
		listItems = append(listItems, item)
	}

	cardList := list.New(listItems, list.NewDefaultDelegate(), width, height)
	cardList.Title = title
	cardList.SetShowStatusBar(false)
	cardList.SetFilteringEnabled(true)
	cardList.SetShowHelp(false)
	return cardList
}
