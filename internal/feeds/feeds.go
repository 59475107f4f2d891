package feeds

import (
	"encoding/csv"
	"fmt"
	"net/http"
	"strings"
	"time"

	"minerva_rss/internal/logger"
	"minerva_rss/internal/models"
)

const fetchTimeout = 30 * time.Second

// LoadFromCSV загружает конфигурацию лент из опубликованного CSV по csvURL.
// Ожидаются колонки url, name, description, extract_articles; строки без url
// пропускаются. Ошибка загрузки конфигурации фатальна для запуска.
func LoadFromCSV(csvURL string) ([]models.FeedConfig, error) {
	client := http.Client{Timeout: fetchTimeout}
	resp, err := client.Get(csvURL)
	if err != nil {
		return nil, fmt.Errorf("fetch feeds csv: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch feeds csv: unexpected status %d", resp.StatusCode)
	}

	reader := csv.NewReader(resp.Body)
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse feeds csv: %w", err)
	}
	if len(records) == 0 {
		return nil, nil
	}

	// Первая строка — заголовок; колонки ищем по именам, а не по позициям.
	cols := map[string]int{}
	for i, name := range records[0] {
		cols[strings.TrimSpace(strings.ToLower(name))] = i
	}
	if _, ok := cols["url"]; !ok {
		return nil, fmt.Errorf("parse feeds csv: no url column")
	}

	var configs []models.FeedConfig
	for _, row := range records[1:] {
		url := field(row, cols, "url")
		if url == "" {
			continue
		}
		configs = append(configs, models.FeedConfig{
			URL:             url,
			Name:            field(row, cols, "name"),
			Description:     field(row, cols, "description"),
			ExtractArticles: models.ParseExtractFlag(field(row, cols, "extract_articles")),
		})
	}

	logger.Log.WithField("feeds_count", len(configs)).Info("Loaded feed configs from CSV")
	return configs, nil
}

func field(row []string, cols map[string]int, name string) string {
	i, ok := cols[name]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}
