package fetcher

import (
	"net/url"
	"strings"
	"time"

	"minerva_rss/internal/logger"
	"minerva_rss/internal/models"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"
)

const (
	feedTimeout = 10 * time.Second
	userAgent   = "Mozilla/5.0 (compatible; MinervaRSS/1.0)"
)

// Fetcher загружает RSS-ленты и превращает их элементы в статьи.
// Ленты обрабатываются строго последовательно с паузой Delay между ними,
// чтобы не нагружать источники.
type Fetcher struct {
	parser    *gofeed.Parser
	extractor *Extractor

	// Delay — пауза между лентами; в тестах обнуляется.
	Delay time.Duration
}

func New(extractor *Extractor) *Fetcher {
	parser := gofeed.NewParser()
	parser.UserAgent = userAgent

	return &Fetcher{
		parser:    parser,
		extractor: extractor,
		Delay:     time.Second,
	}
}

// FetchFeeds собирает статьи со всех лент. Ошибка одной ленты логируется
// и не прерывает обработку остальных.
func (f *Fetcher) FetchFeeds(configs []models.FeedConfig) []models.Article {
	extractedAt := time.Now().Format(models.DateLayout)

	var all []models.Article
	for i, cfg := range configs {
		log := logger.Log.WithFields(map[string]interface{}{
			"feed_name": cfg.Name,
			"feed_url":  cfg.URL,
		})
		log.Info("Fetching RSS feed")

		articles, err := f.fetchFeed(cfg, extractedAt)
		if err != nil {
			log.Errorf("Failed to fetch feed: %v", err)
		} else {
			log.WithField("articles_count", len(articles)).Info("Fetched feed")
			all = append(all, articles...)
		}

		if i < len(configs)-1 {
			time.Sleep(f.Delay)
		}
	}
	return all
}

func (f *Fetcher) fetchFeed(cfg models.FeedConfig, extractedAt string) ([]models.Article, error) {
	feed, err := f.parser.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	var articles []models.Article
	for _, item := range feed.Items {
		article, ok := f.parseItem(item, cfg, extractedAt)
		if !ok {
			continue
		}
		articles = append(articles, article)
	}
	return articles, nil
}

// parseItem превращает один элемент ленты в статью. Элементы без заголовка
// или ссылки пропускаются.
func (f *Fetcher) parseItem(item *gofeed.Item, cfg models.FeedConfig, extractedAt string) (models.Article, bool) {
	title := strings.TrimSpace(item.Title)
	link := strings.TrimSpace(item.Link)
	if title == "" || link == "" {
		return models.Article{}, false
	}

	summary := item.Description
	if summary == "" {
		summary = item.Content
	}

	article := models.Article{
		Title:         title,
		URL:           link,
		Summary:       cleanHTML(summary),
		Author:        itemAuthor(item),
		PublishedDate: itemDate(item),
		FeedName:      cfg.Name,
		FeedURL:       cfg.URL,
		Domain:        stripDomain(link),
		ExtractedAt:   extractedAt,
	}

	if cfg.ExtractArticles && f.extractor != nil {
		content, err := f.extractor.Extract(link)
		if err != nil {
			logger.Log.WithField("url", link).Warnf("Could not extract full content: %v", err)
		} else {
			article.FullContent = content
		}
	}

	return article, true
}

// itemDate берёт первую заполненную дату элемента, иначе текущее время.
func itemDate(item *gofeed.Item) string {
	for _, ts := range []*time.Time{item.PublishedParsed, item.UpdatedParsed} {
		if ts != nil {
			return ts.Format(models.DateLayout)
		}
	}
	return time.Now().Format(models.DateLayout)
}

func itemAuthor(item *gofeed.Item) string {
	for _, person := range item.Authors {
		if person != nil && person.Name != "" {
			return person.Name
		}
	}
	if item.DublinCoreExt != nil && len(item.DublinCoreExt.Creator) > 0 {
		return item.DublinCoreExt.Creator[0]
	}
	return ""
}

// stripDomain извлекает хост ссылки без префикса "www.".
func stripDomain(link string) string {
	parsed, err := url.Parse(link)
	if err != nil {
		return ""
	}
	return strings.TrimPrefix(parsed.Host, "www.")
}

// cleanHTML убирает разметку из HTML-описания и нормализует пробелы,
// оставляя только переводы строк между смысловыми кусками.
func cleanHTML(html string) string {
	if html == "" {
		return ""
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return strings.TrimSpace(html)
	}
	doc.Find("script, style").Remove()

	var chunks []string
	for _, line := range strings.Split(doc.Text(), "\n") {
		line = strings.Join(strings.Fields(line), " ")
		if line != "" {
			chunks = append(chunks, line)
		}
	}
	return strings.Join(chunks, "\n")
}
