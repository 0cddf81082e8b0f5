// Package feed combines MangaDex listings and cover lookups into the view
// models the web page and the terminal carousel render.
package feed

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/text/unicode/norm"

	"github.com/ssh-vom/mangashelf/internal/logging"
	"github.com/ssh-vom/mangashelf/internal/providers/manga"
)

const (
	DefaultLatestLimit         = 60
	DefaultSearchLimit         = 20
	DefaultCarouselWindow      = 20
	DefaultCarouselSize        = 6
	DefaultCarouselOffsetRange = 100
	DefaultTopLimit            = 10
)

var ErrEmptyQuery = errors.New("search query cannot be empty")

// relationIncludes expands what the view models need on the second lookup.
var relationIncludes = []string{"cover_art", "author", "artist", "tag"}

type Options struct {
	Languages           []string
	LatestLimit         int
	SearchLimit         int
	CarouselWindow      int
	CarouselSize        int
	CarouselOffsetRange int
	TopLimit            int
	// CoverConcurrency bounds parallel cover fetches; zero means one
	// goroutine per item.
	CoverConcurrency int
	// Revalidate is passed to listing requests as a caching hint.
	Revalidate time.Duration
	Random     *rand.Rand
	Logger     *slog.Logger
}

type Service struct {
	provider manga.Provider
	options  Options
	logger   *slog.Logger

	randomMu sync.Mutex
	random   *rand.Rand
}

func New(provider manga.Provider, options Options) *Service {
	options.LatestLimit = positive(options.LatestLimit, DefaultLatestLimit)
	options.SearchLimit = positive(options.SearchLimit, DefaultSearchLimit)
	options.CarouselWindow = positive(options.CarouselWindow, DefaultCarouselWindow)
	options.CarouselSize = positive(options.CarouselSize, DefaultCarouselSize)
	options.CarouselOffsetRange = positive(options.CarouselOffsetRange, DefaultCarouselOffsetRange)
	options.TopLimit = positive(options.TopLimit, DefaultTopLimit)
	if len(options.Languages) == 0 {
		options.Languages = manga.DefaultLanguages
	}

	logger := options.Logger
	if logger == nil {
		logger = logging.Discard()
	}
	random := options.Random
	if random == nil {
		random = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}

	return &Service{provider: provider, options: options, logger: logger, random: random}
}

// Latest returns the most recently updated titles.
func (service *Service) Latest(ctx context.Context) ([]Card, error) {
	params := manga.Params{}.
		Add("limit", service.options.LatestLimit).
		Add("order", manga.Order("updatedAt", manga.OrderDesc))

	cards, err := service.cardsFor(ctx, params)
	if err != nil {
		return nil, service.fail("latest", err)
	}
	return cards, nil
}

// Search returns titles matching query.
func (service *Service) Search(ctx context.Context, query string) ([]Card, error) {
	query = norm.NFC.String(strings.TrimSpace(query))
	if query == "" {
		return nil, ErrEmptyQuery
	}

	params := manga.Params{}.
		Add("title", query).
		Add("limit", service.options.SearchLimit).
		Add("order", manga.Order("relevance", manga.OrderDesc))

	cards, err := service.cardsFor(ctx, params)
	if err != nil {
		return nil, service.fail("search", err, slog.String("query", query))
	}
	return cards, nil
}

func (service *Service) cardsFor(ctx context.Context, params manga.Params) ([]Card, error) {
	page, err := service.list(ctx, params)
	if err != nil {
		return nil, err
	}

	entries, err := service.resolve(ctx, page.Data)
	if err != nil {
		return nil, err
	}

	cards := make([]Card, 0, len(entries))
	for _, entry := range entries {
		cards = append(cards, newCard(entry, service.options.Languages))
	}
	return cards, nil
}

func (service *Service) list(ctx context.Context, params manga.Params) (*manga.Collection, error) {
	page, err := service.provider.ListManga(ctx, params, manga.RequestOptions{Revalidate: service.options.Revalidate})
	if err != nil {
		return nil, err
	}
	if page == nil {
		return &manga.Collection{}, nil
	}
	return page, nil
}

// resolved is one primary entity joined with its expanded counterpart and
// its cover data URI.
type resolved struct {
	primary  manga.Entity
	expanded manga.Entity
	cover    string
}

// resolve runs the second phase: expand the ids of primary with their
// relationships, then fetch every cover in parallel. Output keeps the order
// of primary.
func (service *Service) resolve(ctx context.Context, primary []manga.Entity) ([]resolved, error) {
	if len(primary) == 0 {
		return []resolved{}, nil
	}

	ids := make([]string, 0, len(primary))
	for _, entity := range primary {
		ids = append(ids, entity.ID)
	}

	params := manga.Params{}.
		Add("ids", ids).
		Add("limit", len(ids)).
		Add("includes", relationIncludes)
	expandedPage, err := service.list(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("expand %d ids: %w", len(ids), err)
	}

	byID := make(map[string]manga.Entity, len(expandedPage.Data))
	for _, entity := range expandedPage.Data {
		byID[entity.ID] = entity
	}

	entries := make([]resolved, len(primary))
	coverURLs := make([]string, len(primary))
	for index, entity := range primary {
		expanded, ok := byID[entity.ID]
		if !ok {
			expanded = entity
		}
		entries[index] = resolved{primary: entity, expanded: expanded}
		if fileName := manga.CoverFileName(expanded.Relationships); fileName != "" {
			coverURLs[index] = service.provider.CoverURL(entity.ID, fileName)
		}
	}

	covers, err := service.fetchCovers(ctx, coverURLs)
	if err != nil {
		return nil, err
	}
	for index := range entries {
		entries[index].cover = covers[index]
	}

	return entries, nil
}

func (service *Service) fetchCovers(ctx context.Context, coverURLs []string) ([]string, error) {
	covers := make([]string, len(coverURLs))

	group, groupCtx := errgroup.WithContext(ctx)
	if service.options.CoverConcurrency > 0 {
		group.SetLimit(service.options.CoverConcurrency)
	}
	for index, coverURL := range coverURLs {
		if coverURL == "" {
			continue
		}
		group.Go(func() error {
			uri, err := service.provider.FetchCover(groupCtx, coverURL)
			if err != nil {
				return fmt.Errorf("cover %s: %w", coverURL, err)
			}
			covers[index] = uri
			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return nil, err
	}
	return covers, nil
}

// fail logs an aggregator failure and wraps it with the aggregator name.
func (service *Service) fail(operation string, err error, attributes ...any) error {
	attributes = append([]any{slog.String("operation", operation), slog.Any("error", err)}, attributes...)
	service.logger.Error("feed request failed", attributes...)
	return fmt.Errorf("%s: %w", operation, err)
}

func positive(value, fallback int) int {
	if value <= 0 {
		return fallback
	}
	return value
}
