package feed

import (
	"context"
	"log/slog"

	"github.com/ssh-vom/mangashelf/internal/providers/manga"
)

// Carousel picks up to CarouselSize popular titles at random. Sampling is
// from one randomly offset window, not from the whole catalogue.
func (service *Service) Carousel(ctx context.Context) ([]CarouselItem, error) {
	offset := service.intN(service.options.CarouselOffsetRange)

	page, err := service.list(ctx, service.carouselParams(offset))
	if err != nil {
		return nil, service.fail("carousel", err, slog.Int("offset", offset))
	}
	if len(page.Data) == 0 && offset > 0 {
		service.logger.Debug("carousel window empty, using first window", slog.Int("offset", offset))
		page, err = service.list(ctx, service.carouselParams(0))
		if err != nil {
			return nil, service.fail("carousel", err, slog.Int("offset", 0))
		}
	}

	entries, err := service.resolve(ctx, service.sample(page.Data, service.options.CarouselSize))
	if err != nil {
		return nil, service.fail("carousel", err, slog.Int("offset", offset))
	}

	items := make([]CarouselItem, 0, len(entries))
	for _, entry := range entries {
		items = append(items, newCarouselItem(entry, service.options.Languages))
	}
	return items, nil
}

func (service *Service) carouselParams(offset int) manga.Params {
	return manga.Params{}.
		Add("limit", service.options.CarouselWindow).
		Add("offset", offset).
		Add("order", manga.Object{
			{Key: "followedCount", Value: manga.OrderDesc},
			{Key: "rating", Value: manga.OrderDesc},
		}).
		Add("hasAvailableChapters", true)
}

// sample shuffles a copy of page and keeps the first size distinct ids.
func (service *Service) sample(page []manga.Entity, size int) []manga.Entity {
	shuffled := make([]manga.Entity, len(page))
	copy(shuffled, page)

	service.randomMu.Lock()
	service.random.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	service.randomMu.Unlock()

	seen := make(map[string]bool, size)
	picked := make([]manga.Entity, 0, size)
	for _, entity := range shuffled {
		if len(picked) == size {
			break
		}
		if entity.ID == "" || seen[entity.ID] {
			continue
		}
		seen[entity.ID] = true
		picked = append(picked, entity)
	}
	return picked
}

func (service *Service) intN(n int) int {
	if n <= 1 {
		return 0
	}
	service.randomMu.Lock()
	defer service.randomMu.Unlock()
	return service.random.IntN(n)
}
