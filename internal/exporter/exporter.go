package exporter

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"minerva_rss/internal/logger"
	"minerva_rss/internal/models"

	"github.com/gosimple/slug"
	"gopkg.in/yaml.v3"
)

// minContentLength — минимальная длина текста статьи (в символах),
// при которой она экспортируется на диск.
const minContentLength = 800

const maxSlugLength = 100

// Exporter пишет статьи в markdown-файлы по схеме
// {base}/{domain}/{year}/{month}/{date}_{slug}.md.
type Exporter struct {
	basePath string
}

func New(basePath string) (*Exporter, error) {
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("create export base dir: %w", err)
	}
	return &Exporter{basePath: basePath}, nil
}

// frontmatter — структурированный заголовок markdown-файла.
type frontmatter struct {
	Title         string `yaml:"title"`
	URL           string `yaml:"url"`
	Author        string `yaml:"author"`
	PublishedDate string `yaml:"published_date"`
	FeedName      string `yaml:"feed_name"`
	FeedURL       string `yaml:"feed_url"`
	Domain        string `yaml:"domain"`
	ExtractedAt   string `yaml:"extracted_at"`
	Summary       string `yaml:"summary,omitempty"`
}

// ExportArticle пишет одну статью на диск и возвращает путь к файлу.
// Статьи короче minContentLength пропускаются: возвращается пустой путь
// без ошибки. Существующий файл по тому же пути молча перезаписывается.
func (e *Exporter) ExportArticle(article models.Article) (string, error) {
	content := article.ContentText()
	if length := len([]rune(content)); length < minContentLength {
		logger.Log.WithFields(map[string]interface{}{
			"title":  article.Title,
			"length": length,
		}).Warn("Article content too short, skipping export")
		return "", nil
	}

	path := e.buildFilePath(article)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("create export dir: %w", err)
	}

	header, err := yaml.Marshal(frontmatter{
		Title:         article.Title,
		URL:           article.URL,
		Author:        article.Author,
		PublishedDate: article.PublishedDate,
		FeedName:      article.FeedName,
		FeedURL:       article.FeedURL,
		Domain:        article.Domain,
		ExtractedAt:   article.ExtractedAt,
		Summary:       article.Summary,
	})
	if err != nil {
		return "", fmt.Errorf("marshal frontmatter: %w", err)
	}

	document := "---\n" + string(header) + "---\n\n" + content + "\n"
	if err := os.WriteFile(path, []byte(document), 0o644); err != nil {
		return "", fmt.Errorf("write article file: %w", err)
	}

	logger.Log.WithField("path", path).Info("Exported article")
	return path, nil
}

// ExportArticles экспортирует статьи по очереди. Ошибка одной статьи
// логируется и не мешает экспорту остальных; возвращаются пути
// реально записанных файлов.
func (e *Exporter) ExportArticles(articles []models.Article) []string {
	var paths []string
	for _, article := range articles {
		path, err := e.ExportArticle(article)
		if err != nil {
			logger.Log.WithField("title", article.Title).Errorf("Failed to export article: %v", err)
			continue
		}
		if path != "" {
			paths = append(paths, path)
		}
	}
	logger.Log.WithField("exported_count", len(paths)).Info("Exported articles to disk")
	return paths
}

// buildFilePath собирает путь файла из домена, даты публикации и слага
// заголовка. Неразбираемая дата заменяется текущим временем.
func (e *Exporter) buildFilePath(article models.Article) string {
	published, err := time.Parse(models.DateLayout, article.PublishedDate)
	if err != nil {
		published = time.Now()
	}

	titleSlug := slug.Make(article.Title)
	if len(titleSlug) > maxSlugLength {
		titleSlug = strings.TrimRight(titleSlug[:maxSlugLength], "-")
	}

	fileName := fmt.Sprintf("%s_%s.md", published.Format("2006-01-02"), titleSlug)
	return filepath.Join(
		e.basePath,
		sanitizeDomain(article.Domain),
		published.Format("2006"),
		published.Format("01"),
		fileName,
	)
}

// sanitizeDomain готовит домен к использованию как имя каталога:
// срезает "www." и заменяет недопустимые для файловой системы символы.
func sanitizeDomain(domain string) string {
	domain = strings.TrimPrefix(domain, "www.")
	if domain == "" {
		return "unknown"
	}
	return strings.Map(func(r rune) rune {
		if strings.ContainsRune(`<>:"/\|?*`, r) {
			return '_'
		}
		return r
	}, domain)
}
