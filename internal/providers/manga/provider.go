package manga

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Provider is the remote catalogue the aggregators read from.
type Provider interface {
	ListManga(ctx context.Context, params Params, options RequestOptions) (*Collection, error)
	FetchCover(ctx context.Context, coverURL string) (string, error)
	CoverURL(mangaID, fileName string) string
}

// RequestOptions carries transport caching hints for a single request.
type RequestOptions struct {
	// CacheMode is sent verbatim as Cache-Control (no-cache, no-store, ...).
	CacheMode string
	// Revalidate, when set, wins over CacheMode and becomes max-age.
	Revalidate time.Duration
}

func (options RequestOptions) CacheControl() string {
	if options.Revalidate > 0 {
		return fmt.Sprintf("max-age=%d", int(options.Revalidate/time.Second))
	}
	return options.CacheMode
}

var ErrCoverURLMissing = errors.New("cover url missing")
