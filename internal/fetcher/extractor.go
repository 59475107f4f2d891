package fetcher

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	md "github.com/JohannesKaufmann/html-to-markdown"
	readability "github.com/go-shiori/go-readability"
)

const extractTimeout = 30 * time.Second

// Extractor скачивает страницу статьи, выделяет основной контент
// readability-эвристикой и конвертирует его в markdown с сохранением
// ссылок и изображений.
type Extractor struct {
	client    *http.Client
	converter *md.Converter
}

func NewExtractor() *Extractor {
	return &Extractor{
		client:    &http.Client{Timeout: extractTimeout},
		converter: md.NewConverter("", true, nil),
	}
}

// Extract возвращает markdown основного контента страницы по pageURL.
// Любая ошибка (сеть, не-HTML, таймаут) означает отсутствие полного
// контента у статьи, но не провал запуска.
func (e *Extractor) Extract(pageURL string) (string, error) {
	parsed, err := url.Parse(pageURL)
	if err != nil {
		return "", fmt.Errorf("parse url: %w", err)
	}

	req, err := http.NewRequest(http.MethodGet, pageURL, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := e.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	article, err := readability.FromReader(resp.Body, parsed)
	if err != nil {
		return "", fmt.Errorf("readability: %w", err)
	}

	markdown, err := e.converter.ConvertString(article.Content)
	if err != nil {
		return "", fmt.Errorf("convert to markdown: %w", err)
	}

	return strings.TrimSpace(markdown), nil
}
