// Package feedsearch searches Google News RSS directly, the same way the
// Briefly backend does, for use when no backend is reachable.
package feedsearch

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/mmcdole/gofeed"
	"github.com/mmcdole/gofeed/rss"
	"go.uber.org/zap"

	"github.com/thedittmer/briefly/internal/backend"
	"github.com/thedittmer/briefly/internal/models"
)

const (
	DefaultEndpoint  = "https://news.google.com/rss/search"
	unknownPublisher = "Unknown"
	maxFeedSize      = 10 << 20
)

type Searcher struct {
	endpoint string
	http     *http.Client
	log      *zap.Logger
}

// New returns a Searcher for endpoint. A nil client gets a 30s timeout.
func New(endpoint string, client *http.Client, log *zap.Logger) *Searcher {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Searcher{endpoint: endpoint, http: client, log: log.Named("feedsearch")}
}

// Search fetches {endpoint}?q={keywords}. The title is not part of the
// feed query.
func (s *Searcher) Search(ctx context.Context, q models.SearchQuery) ([]models.Article, error) {
	u, err := url.Parse(s.endpoint)
	if err != nil {
		return nil, fmt.Errorf("invalid feed endpoint %q: %w", s.endpoint, err)
	}
	params := u.Query()
	params.Set("q", q.Keywords)
	u.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("error building feed request: %w", err)
	}

	resp, err := s.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: fetching %s: %w", backend.ErrNetwork, u.Redacted(), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &backend.HTTPError{StatusCode: resp.StatusCode}
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxFeedSize))
	if err != nil {
		return nil, fmt.Errorf("%w: reading feed: %w", backend.ErrNetwork, err)
	}

	articles, err := parse(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", backend.ErrMalformedResponse, err)
	}

	s.log.Debug("feed searched", zap.String("url", u.String()), zap.Int("articles", len(articles)))
	return articles, nil
}

// parse reads RSS with the RSS parser so each item's <source> survives;
// any other feed type goes through the universal parser.
func parse(data []byte) ([]models.Article, error) {
	if gofeed.DetectFeedType(bytes.NewReader(data)) == gofeed.FeedTypeRSS {
		fp := &rss.Parser{}
		feed, err := fp.Parse(bytes.NewReader(data))
		if err != nil {
			return nil, err
		}
		articles := make([]models.Article, 0, len(feed.Items))
		for _, item := range feed.Items {
			publisher := unknownPublisher
			if item.Source != nil && item.Source.Title != "" {
				publisher = item.Source.Title
			}
			articles = append(articles, models.Article{
				Title:     item.Title,
				Link:      item.Link,
				Date:      item.PubDate,
				Publisher: publisher,
			})
		}
		return articles, nil
	}

	feed, err := gofeed.NewParser().Parse(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	articles := make([]models.Article, 0, len(feed.Items))
	for _, item := range feed.Items {
		publisher := unknownPublisher
		if item.Author != nil && item.Author.Name != "" {
			publisher = item.Author.Name
		}
		articles = append(articles, models.Article{
			Title:     item.Title,
			Link:      item.Link,
			Date:      item.Published,
			Publisher: publisher,
		})
	}
	return articles, nil
}
