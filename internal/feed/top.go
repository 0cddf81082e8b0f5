package feed

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/ssh-vom/mangashelf/internal/providers/manga"
)

// Ranking is the MangaDex order field a top listing sorts by.
type Ranking string

const (
	RankFollows Ranking = "followedCount"
	RankRating  Ranking = "rating"
	// RankProgress orders by the most recent chapter upload, i.e. the titles
	// readers are actively progressing through.
	RankProgress Ranking = "latestUploadedChapter"
)

func ParseRanking(value string) (Ranking, error) {
	switch Ranking(value) {
	case RankFollows, RankRating, RankProgress:
		return Ranking(value), nil
	case "follows":
		return RankFollows, nil
	case "progress":
		return RankProgress, nil
	default:
		return "", fmt.Errorf("unknown ranking %q", value)
	}
}

// TopListings fetches the three rankings in parallel. Any failing ranking
// fails the whole call.
func (service *Service) TopListings(ctx context.Context) (*TopListings, error) {
	var listings TopListings

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() (err error) {
		listings.Follows, err = service.TopRanked(groupCtx, RankFollows)
		return err
	})
	group.Go(func() (err error) {
		listings.Rating, err = service.TopRanked(groupCtx, RankRating)
		return err
	})
	group.Go(func() (err error) {
		listings.Progress, err = service.TopRanked(groupCtx, RankProgress)
		return err
	})

	if err := group.Wait(); err != nil {
		return nil, err
	}
	return &listings, nil
}

// TopRanked returns a single ranked list with covers resolved.
func (service *Service) TopRanked(ctx context.Context, ranking Ranking) ([]RankedItem, error) {
	params := manga.Params{}.
		Add("limit", service.options.TopLimit).
		Add("order", manga.Order(string(ranking), manga.OrderDesc))

	page, err := service.list(ctx, params)
	if err != nil {
		return nil, service.fail("top", err, slog.String("ranking", string(ranking)))
	}

	entries, err := service.resolve(ctx, page.Data)
	if err != nil {
		return nil, service.fail("top", err, slog.String("ranking", string(ranking)))
	}

	items := make([]RankedItem, 0, len(entries))
	for index, entry := range entries {
		items = append(items, newRankedItem(index+1, entry, service.options.Languages))
	}
	return items, nil
}
