package processor

import (
	"strings"

	"minerva_rss/internal/logger"
	"minerva_rss/internal/models"
)

// Processor сравнивает свежесобранные статьи с множеством уже известных URL
// одного хранилища. Для каждого хранилища создаётся свой экземпляр: пересечение
// множеств между хранилищами не проверяется, они независимы.
type Processor struct {
	existingURLs map[string]struct{}
}

func New() *Processor {
	return &Processor{existingURLs: make(map[string]struct{})}
}

// LoadExisting заполняет множество известных URL. Пустые строки игнорируются,
// значения сравниваются после обрезки пробелов.
func (p *Processor) LoadExisting(urls []string) {
	p.existingURLs = make(map[string]struct{}, len(urls))
	for _, u := range urls {
		u = strings.TrimSpace(u)
		if u == "" {
			continue
		}
		p.existingURLs[u] = struct{}{}
	}
	logger.Log.WithField("existing_count", len(p.existingURLs)).Debug("Loaded existing article URLs")
}

// KnownCount возвращает размер множества известных URL.
func (p *Processor) KnownCount() int {
	return len(p.existingURLs)
}

// FilterNew разбивает статьи на новые и дубликаты относительно загруженного
// множества. Каждая входная статья попадает ровно в один из двух срезов.
func (p *Processor) FilterNew(fetched []models.Article) (newArticles, duplicates []models.Article) {
	for _, article := range fetched {
		url := strings.TrimSpace(article.URL)
		if _, ok := p.existingURLs[url]; ok {
			duplicates = append(duplicates, article)
		} else {
			newArticles = append(newArticles, article)
		}
	}
	return newArticles, duplicates
}
