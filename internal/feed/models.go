package feed

import (
	"time"

	"github.com/ssh-vom/mangashelf/internal/providers/manga"
)

// Card is the view model for latest and search results.
type Card struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	Cover         string    `json:"cover,omitempty"`
	UpdatedAt     time.Time `json:"updatedAt"`
	Status        string    `json:"status,omitempty"`
	ContentRating string    `json:"contentRating,omitempty"`
	Tags          []string  `json:"tags,omitempty"`
}

// CarouselItem is one slide of the featured carousel.
type CarouselItem struct {
	ID            string   `json:"id"`
	Title         string   `json:"title"`
	Cover         string   `json:"cover,omitempty"`
	Description   string   `json:"description,omitempty"`
	Tags          []string `json:"tags,omitempty"`
	Status        string   `json:"status,omitempty"`
	ContentRating string   `json:"contentRating,omitempty"`
	Year          int      `json:"year,omitempty"`
	Authors       []string `json:"authors,omitempty"`
}

// RankedItem is one row of a top listing. Rank starts at 1.
type RankedItem struct {
	Rank      int       `json:"rank"`
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Cover     string    `json:"cover,omitempty"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type TopListings struct {
	Follows  []RankedItem `json:"follows"`
	Rating   []RankedItem `json:"rating"`
	Progress []RankedItem `json:"progress"`
}

// attributesOf prefers the expanded entity, whose tags and titles match the
// primary listing but which also carries relationships.
func attributesOf(entry resolved) manga.MangaAttributes {
	if attributes, ok := entry.expanded.Manga(); ok {
		return attributes
	}
	attributes, _ := entry.primary.Manga()
	return attributes
}

func newCard(entry resolved, languages []string) Card {
	attributes := attributesOf(entry)
	return Card{
		ID:            entry.primary.ID,
		Title:         manga.PickTitle(attributes, languages),
		Cover:         entry.cover,
		UpdatedAt:     attributes.UpdatedAt,
		Status:        attributes.Status,
		ContentRating: attributes.ContentRating,
		Tags:          manga.TagNames(attributes, languages),
	}
}

func newCarouselItem(entry resolved, languages []string) CarouselItem {
	attributes := attributesOf(entry)
	return CarouselItem{
		ID:            entry.primary.ID,
		Title:         manga.PickTitle(attributes, languages),
		Cover:         entry.cover,
		Description:   attributes.Description.Pick(languages),
		Tags:          manga.TagNames(attributes, languages),
		Status:        attributes.Status,
		ContentRating: attributes.ContentRating,
		Year:          attributes.Year,
		Authors:       manga.CreatorNames(entry.expanded.Relationships),
	}
}

func newRankedItem(rank int, entry resolved, languages []string) RankedItem {
	attributes := attributesOf(entry)
	return RankedItem{
		Rank:      rank,
		ID:        entry.primary.ID,
		Title:     manga.PickTitle(attributes, languages),
		Cover:     entry.cover,
		UpdatedAt: attributes.UpdatedAt,
	}
}
