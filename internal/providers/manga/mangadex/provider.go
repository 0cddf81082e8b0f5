package mangadex

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/ssh-vom/mangashelf/internal/cover"
	"github.com/ssh-vom/mangashelf/internal/logging"
	"github.com/ssh-vom/mangashelf/internal/providers/manga"
)

const (
	DefaultBaseURL      = "https://api.mangadex.org"
	DefaultCoverBaseURL = "https://uploads.mangadex.org"
	DefaultUserAgent    = "mangashelf/0.1"
)

type Options struct {
	BaseURL      string
	CoverBaseURL string
	APIKey       string
	UserAgent    string
	// RequestsPerSecond throttles outgoing requests; zero disables throttling.
	RequestsPerSecond float64
	Logger            *slog.Logger
}

type Provider struct {
	httpClient   *http.Client
	baseURL      string
	coverBaseURL string
	apiKey       string
	userAgent    string
	limiter      *rate.Limiter
	logger       *slog.Logger
}

var _ manga.Provider = (*Provider)(nil)

func New(httpClient *http.Client, options Options) *Provider {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}

	provider := &Provider{
		httpClient:   httpClient,
		baseURL:      strings.TrimRight(withDefault(options.BaseURL, DefaultBaseURL), "/"),
		coverBaseURL: strings.TrimRight(withDefault(options.CoverBaseURL, DefaultCoverBaseURL), "/"),
		apiKey:       strings.TrimSpace(options.APIKey),
		userAgent:    withDefault(options.UserAgent, DefaultUserAgent),
		logger:       options.Logger,
	}
	if provider.logger == nil {
		provider.logger = logging.Discard()
	}
	if options.RequestsPerSecond > 0 {
		burst := int(options.RequestsPerSecond)
		if burst < 1 {
			burst = 1
		}
		provider.limiter = rate.NewLimiter(rate.Limit(options.RequestsPerSecond), burst)
	}

	return provider
}

// ListManga lists manga entities from the manga endpoint.
func (provider *Provider) ListManga(ctx context.Context, params manga.Params, options manga.RequestOptions) (*manga.Collection, error) {
	var collection manga.Collection
	if err := provider.FetchJSON(ctx, "manga", params, options, &collection); err != nil {
		return nil, err
	}
	return &collection, nil
}

// FetchJSON performs a GET against baseURL/endpoint and decodes the body into out.
// Failures are logged here and returned as *TransportError or *ParseError.
func (provider *Provider) FetchJSON(ctx context.Context, endpoint string, params manga.Params, options manga.RequestOptions, out any) error {
	endpointURL := provider.EndpointURL(endpoint, params)

	body, err := provider.get(ctx, endpointURL, options)
	if err != nil {
		return err
	}

	if err := json.Unmarshal(body, out); err != nil {
		parseErr := &ParseError{URL: endpointURL, Err: err}
		provider.logger.Error("mangadex response is not valid json",
			slog.String("url", endpointURL),
			slog.Any("error", err),
		)
		return parseErr
	}

	return nil
}

// FetchCover downloads an image and returns it as a data: URI.
func (provider *Provider) FetchCover(ctx context.Context, coverURL string) (string, error) {
	if coverURL == "" {
		provider.logger.Error("cover fetch without url")
		return "", manga.ErrCoverURLMissing
	}

	var contentType string
	body, err := provider.do(ctx, coverURL, "image/*", manga.RequestOptions{}, func(response *http.Response) {
		contentType = response.Header.Get("Content-Type")
	})
	if err != nil {
		return "", err
	}

	return cover.EncodeDataURI(contentType, body), nil
}

// EndpointURL joins the base URL, endpoint and serialized query.
func (provider *Provider) EndpointURL(endpoint string, params manga.Params) string {
	endpointURL := provider.baseURL + "/" + strings.TrimLeft(endpoint, "/")
	if query := params.Encode(); query != "" {
		endpointURL += "?" + query
	}
	return endpointURL
}

// CoverURL builds the 256px thumbnail URL for a cover file.
func (provider *Provider) CoverURL(mangaID, fileName string) string {
	if mangaID == "" || fileName == "" {
		return ""
	}

	return fmt.Sprintf("%s/covers/%s/%s.256.jpg", provider.coverBaseURL, mangaID, fileName)
}

func (provider *Provider) get(ctx context.Context, endpointURL string, options manga.RequestOptions) ([]byte, error) {
	return provider.do(ctx, endpointURL, "application/json", options, nil)
}

func (provider *Provider) do(ctx context.Context, target, accept string, options manga.RequestOptions, inspect func(*http.Response)) ([]byte, error) {
	if provider.limiter != nil {
		if err := provider.limiter.Wait(ctx); err != nil {
			return nil, provider.transportFailure(&TransportError{URL: target, Err: err})
		}
	}

	request, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, provider.transportFailure(&TransportError{URL: target, Err: fmt.Errorf("error building request: %w", err)})
	}
	provider.addHeaders(request, options)
	request.Header.Set("Accept", accept)

	response, err := provider.httpClient.Do(request)
	if err != nil {
		return nil, provider.transportFailure(&TransportError{URL: target, Err: err})
	}
	defer response.Body.Close()

	if response.StatusCode < 200 || response.StatusCode >= 300 {
		return nil, provider.transportFailure(&TransportError{URL: target, StatusCode: response.StatusCode, Status: response.Status})
	}

	body, err := io.ReadAll(response.Body)
	if err != nil {
		return nil, provider.transportFailure(&TransportError{URL: target, Err: fmt.Errorf("error reading body: %w", err)})
	}
	if inspect != nil {
		inspect(response)
	}

	provider.logger.Debug("mangadex request",
		slog.String("url", target),
		slog.Int("status", response.StatusCode),
		slog.Int("bytes", len(body)),
	)
	return body, nil
}

func (provider *Provider) transportFailure(err *TransportError) error {
	attributes := []any{slog.String("url", err.URL)}
	if err.StatusCode != 0 {
		attributes = append(attributes, slog.Int("status", err.StatusCode))
	}
	if err.Err != nil {
		attributes = append(attributes, slog.Any("error", err.Err))
	}
	provider.logger.Error("mangadex request failed", attributes...)
	return err
}

func (provider *Provider) addHeaders(request *http.Request, options manga.RequestOptions) {
	request.Header.Set("User-Agent", provider.userAgent)
	if cacheControl := options.CacheControl(); cacheControl != "" {
		request.Header.Set("Cache-Control", cacheControl)
	}
	if provider.apiKey == "" {
		return
	}
	request.Header.Set("Authorization", "Bearer "+provider.apiKey)
	request.Header.Set("X-Api-Key", provider.apiKey)
}

func withDefault(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return strings.TrimSpace(value)
}
