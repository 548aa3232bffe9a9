package feedsearch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thedittmer/briefly/internal/backend"
	"github.com/thedittmer/briefly/internal/models"
)

const googleNewsRSS = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
<channel>
  <title>"golang" - Google News</title>
  <item>
    <title>Go 1.24 released</title>
    <link>https://news.example.com/go124</link>
    <pubDate>Tue, 11 Feb 2025 18:00:00 GMT</pubDate>
    <source url="https://go.dev">The Go Blog</source>
  </item>
  <item>
    <title>No source here</title>
    <link>https://news.example.com/nosource</link>
    <pubDate>Wed, 12 Feb 2025 09:00:00 GMT</pubDate>
  </item>
</channel>
</rss>`

const atomFeed = `<?xml version="1.0" encoding="utf-8"?>
<feed xmlns="http://www.w3.org/2005/Atom">
  <title>Example</title>
  <entry>
    <title>Atom entry</title>
    <link href="https://news.example.com/atom"/>
    <published>2025-02-11T18:00:00Z</published>
    <author><name>Jane Doe</name></author>
  </entry>
</feed>`

func serve(t *testing.T, status int, body string, gotQuery *string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if gotQuery != nil {
			*gotQuery = r.URL.Query().Get("q")
		}
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestSearchGoogleNewsRSS(t *testing.T) {
	var q string
	srv := serve(t, http.StatusOK, googleNewsRSS, &q)

	articles, err := New(srv.URL, nil, nil).Search(context.Background(), models.SearchQuery{Title: "ignored", Keywords: "golang release"})
	require.NoError(t, err)
	assert.Equal(t, "golang release", q)

	require.Len(t, articles, 2)
	assert.Equal(t, models.Article{
		Title:     "Go 1.24 released",
		Link:      "https://news.example.com/go124",
		Date:      "Tue, 11 Feb 2025 18:00:00 GMT",
		Publisher: "The Go Blog",
	}, articles[0])
	assert.Equal(t, "Unknown", articles[1].Publisher)
}

func TestSearchAtomFeed(t *testing.T) {
	srv := serve(t, http.StatusOK, atomFeed, nil)

	articles, err := New(srv.URL, nil, nil).Search(context.Background(), models.SearchQuery{Keywords: "x"})
	require.NoError(t, err)
	require.Len(t, articles, 1)
	assert.Equal(t, "Atom entry", articles[0].Title)
	assert.Equal(t, "Jane Doe", articles[0].Publisher)
	assert.Equal(t, "https://news.example.com/atom", articles[0].Link)
}

func TestSearchHTTPError(t *testing.T) {
	srv := serve(t, http.StatusServiceUnavailable, "down", nil)

	_, err := New(srv.URL, nil, nil).Search(context.Background(), models.SearchQuery{})
	assert.True(t, backend.IsHTTPStatus(err, http.StatusServiceUnavailable))
}

func TestSearchMalformedFeed(t *testing.T) {
	srv := serve(t, http.StatusOK, "this is not a feed", nil)

	_, err := New(srv.URL, nil, nil).Search(context.Background(), models.SearchQuery{})
	assert.ErrorIs(t, err, backend.ErrMalformedResponse)
}

func TestSearchNetworkError(t *testing.T) {
	srv := serve(t, http.StatusOK, googleNewsRSS, nil)
	endpoint := srv.URL
	srv.Close()

	_, err := New(endpoint, nil, nil).Search(context.Background(), models.SearchQuery{})
	assert.ErrorIs(t, err, backend.ErrNetwork)
}

func TestNewDefaults(t *testing.T) {
	s := New("", nil, nil)
	assert.Equal(t, DefaultEndpoint, s.endpoint)
	assert.NotNil(t, s.http)
}
