package fetcher_test

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"minerva_rss/internal/fetcher"
	"minerva_rss/internal/models"

	"github.com/stretchr/testify/require"
)

const rssTemplate = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
	<channel>
		<title>Test Feed</title>
		%s
	</channel>
</rss>`

func serveRSS(t *testing.T, items string) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		fmt.Fprintf(w, rssTemplate, items)
	}))
	t.Cleanup(server.Close)
	return server
}

func newTestFetcher() *fetcher.Fetcher {
	f := fetcher.New(fetcher.NewExtractor())
	f.Delay = 0
	return f
}

func TestFetchFeeds_ParsesItems(t *testing.T) {
	items := `
		<item>
			<title> First Article </title>
			<link>http://www.example.com/first</link>
			<description><![CDATA[<p>Plain  <b>summary</b> text</p>]]></description>
			<author>writer@example.com (Jane Writer)</author>
			<pubDate>Tue, 05 Mar 2024 10:00:00 +0000</pubDate>
		</item>
		<item>
			<title>No Link Article</title>
			<description>skipped</description>
		</item>`
	server := serveRSS(t, items)

	articles := newTestFetcher().FetchFeeds([]models.FeedConfig{
		{URL: server.URL, Name: "Example"},
	})

	require.Len(t, articles, 1)
	a := articles[0]
	require.Equal(t, "First Article", a.Title)
	require.Equal(t, "http://www.example.com/first", a.URL)
	require.Equal(t, "Plain summary text", a.Summary)
	require.Equal(t, "2024-03-05 10:00:00", a.PublishedDate)
	require.Equal(t, "Example", a.FeedName)
	require.Equal(t, server.URL, a.FeedURL)
	require.Equal(t, "example.com", a.Domain)
	require.NotEmpty(t, a.ExtractedAt)
	require.False(t, a.HasFullContent())
}

func TestFetchFeeds_DateFallback(t *testing.T) {
	items := `
		<item>
			<title>Undated</title>
			<link>http://example.com/undated</link>
		</item>`
	server := serveRSS(t, items)

	articles := newTestFetcher().FetchFeeds([]models.FeedConfig{{URL: server.URL, Name: "Example"}})
	require.Len(t, articles, 1)
	// Дата отсутствует в ленте — подставляется текущее время.
	require.NotEmpty(t, articles[0].PublishedDate)
}

func TestFetchFeeds_FeedFailureDoesNotAbort(t *testing.T) {
	items := `
		<item>
			<title>Survivor</title>
			<link>http://example.com/ok</link>
		</item>`
	server := serveRSS(t, items)

	articles := newTestFetcher().FetchFeeds([]models.FeedConfig{
		{URL: "http://127.0.0.1:1/rss", Name: "Broken"},
		{URL: server.URL, Name: "Working"},
	})

	require.Len(t, articles, 1)
	require.Equal(t, "Working", articles[0].FeedName)
}

func TestFetchFeeds_FullContentExtraction(t *testing.T) {
	paragraph := strings.Repeat("Readable sentence about the subject at hand. ", 12)
	page := fmt.Sprintf(`<!DOCTYPE html>
		<html><head><title>Full Article</title></head>
		<body>
			<nav>Home | About</nav>
			<article>
				<h1>Full Article</h1>
				<p>%s</p>
				<p>%s</p>
				<p>See <a href="http://example.com/related">the related piece</a>.</p>
			</article>
		</body></html>`, paragraph, paragraph)

	mux := http.NewServeMux()
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	mux.HandleFunc("/article", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(page))
	})
	mux.HandleFunc("/rss", func(w http.ResponseWriter, r *http.Request) {
		items := fmt.Sprintf(`
			<item>
				<title>Full Article</title>
				<link>%s/article</link>
				<description>short</description>
			</item>`, server.URL)
		fmt.Fprintf(w, rssTemplate, items)
	})

	articles := newTestFetcher().FetchFeeds([]models.FeedConfig{
		{URL: server.URL + "/rss", Name: "Example", ExtractArticles: true},
	})

	require.Len(t, articles, 1)
	require.True(t, articles[0].HasFullContent())
	require.Contains(t, articles[0].FullContent, "Readable sentence")
	require.Contains(t, articles[0].FullContent, "[the related piece](http://example.com/related)")
}

func TestFetchFeeds_ExtractionFailureKeepsArticle(t *testing.T) {
	items := `
		<item>
			<title>Unreachable Page</title>
			<link>http://127.0.0.1:1/page</link>
			<description>summary survives extraction failure</description>
		</item>`
	server := serveRSS(t, items)

	articles := newTestFetcher().FetchFeeds([]models.FeedConfig{
		{URL: server.URL, Name: "Example", ExtractArticles: true},
	})

	require.Len(t, articles, 1)
	require.False(t, articles[0].HasFullContent())
	require.Equal(t, "summary survives extraction failure", articles[0].Summary)
}
