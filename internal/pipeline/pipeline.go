package pipeline

import (
	"context"
	"fmt"

	"minerva_rss/internal/config"
	"minerva_rss/internal/feeds"
	"minerva_rss/internal/logger"
	"minerva_rss/internal/models"
	"minerva_rss/internal/processor"
)

// FeedFetcher собирает статьи из настроенных лент.
type FeedFetcher interface {
	FetchFeeds(configs []models.FeedConfig) []models.Article
}

// SheetStore — табличное хранилище статей (лист).
type SheetStore interface {
	ExistingURLs(ctx context.Context) ([]string, error)
	AppendArticles(ctx context.Context, articles []models.Article) error
}

// ArticleStore — реляционное хранилище статей.
type ArticleStore interface {
	RecentURLs(ctx context.Context, limit int) ([]string, error)
	InsertArticles(ctx context.Context, articles []models.Article) (added, skipped int, err error)
}

// ArticleExporter пишет статьи в markdown-файлы.
type ArticleExporter interface {
	ExportArticles(articles []models.Article) []string
}

// Pipeline — линейный конвейер одного запуска: загрузка конфигурации лент,
// сбор статей, независимая дедупликация по каждому хранилищу, запись и экспорт.
// Состояния идут строго по порядку, ветвлений назад нет.
type Pipeline struct {
	cfg      *config.Config
	fetcher  FeedFetcher
	sheet    SheetStore
	db       ArticleStore
	exporter ArticleExporter

	// LoadFeeds подменяется в тестах; по умолчанию — загрузка CSV по HTTP.
	LoadFeeds func(csvURL string) ([]models.FeedConfig, error)
}

func New(cfg *config.Config, fetcher FeedFetcher, sheet SheetStore, db ArticleStore, exporter ArticleExporter) *Pipeline {
	return &Pipeline{
		cfg:       cfg,
		fetcher:   fetcher,
		sheet:     sheet,
		db:        db,
		exporter:  exporter,
		LoadFeeds: feeds.LoadFromCSV,
	}
}

// Run выполняет один проход конвейера. Ошибка любой записи фатальна для
// запуска; ошибки чтения существующих множеств не фатальны и трактуются
// как пустое множество (вставку дубликатов в БД страхует ограничение
// уникальности, лист может получить повторные строки).
func (p *Pipeline) Run(ctx context.Context) error {
	if err := p.run(ctx); err != nil {
		runsTotal.WithLabelValues("error").Inc()
		return err
	}
	runsTotal.WithLabelValues("success").Inc()
	return nil
}

func (p *Pipeline) run(ctx context.Context) error {
	log := logger.Log.WithField("component", "pipeline")
	log.Info("Starting pipeline run")

	// Шаг 1: конфигурация лент
	feedConfigs, err := p.LoadFeeds(p.cfg.FeedsCSVURL)
	if err != nil {
		return fmt.Errorf("load feed configs: %w", err)
	}
	if len(feedConfigs) == 0 {
		log.Warn("No feeds configured, nothing to do")
		return nil
	}

	// Шаг 2: сбор статей
	fetched := p.fetcher.FetchFeeds(feedConfigs)
	articlesFetched.Add(float64(len(fetched)))
	log.WithField("fetched_count", len(fetched)).Info("Fetched articles from feeds")
	if len(fetched) == 0 {
		log.Warn("No articles fetched, nothing to do")
		return nil
	}

	// Шаг 3: существующие статьи листа (без ограничения)
	sheetURLs, err := p.sheet.ExistingURLs(ctx)
	if err != nil {
		log.Warnf("Failed to read existing articles from sheet, assuming empty: %v", err)
		sheetURLs = nil
	}

	// Шаг 4: дедупликация для листа
	sheetProc := processor.New()
	sheetProc.LoadExisting(sheetURLs)
	newForSheet, dupForSheet := sheetProc.FilterNew(fetched)
	articlesNew.WithLabelValues("sheet").Add(float64(len(newForSheet)))
	articlesDuplicate.WithLabelValues("sheet").Add(float64(len(dupForSheet)))
	log.WithFields(map[string]interface{}{
		"new_count":       len(newForSheet),
		"duplicate_count": len(dupForSheet),
	}).Info("Filtered articles for sheet")

	// Шаг 5: существующие статьи БД (последние N)
	dbURLs, err := p.db.RecentURLs(ctx, p.cfg.DBReadLimit)
	if err != nil {
		log.Warnf("Failed to read existing articles from database, assuming empty: %v", err)
		dbURLs = nil
	}

	// Шаг 6: дедупликация для БД
	dbProc := processor.New()
	dbProc.LoadExisting(dbURLs)
	newForDB, dupForDB := dbProc.FilterNew(fetched)
	articlesNew.WithLabelValues("db").Add(float64(len(newForDB)))
	articlesDuplicate.WithLabelValues("db").Add(float64(len(dupForDB)))
	log.WithFields(map[string]interface{}{
		"new_count":       len(newForDB),
		"duplicate_count": len(dupForDB),
	}).Info("Filtered articles for database")

	if len(newForSheet) == 0 && len(newForDB) == 0 {
		log.Info("No new articles for either sink, nothing to write")
		return nil
	}

	// Шаг 7: запись в лист
	if len(newForSheet) > 0 {
		if err := p.sheet.AppendArticles(ctx, newForSheet); err != nil {
			return fmt.Errorf("write articles to sheet: %w", err)
		}
	}

	// Шаг 8: запись в БД
	var added, skipped int
	if len(newForDB) > 0 {
		added, skipped, err = p.db.InsertArticles(ctx, newForDB)
		if err != nil {
			return fmt.Errorf("write articles to database: %w", err)
		}
	}

	// Шаг 9: экспорт новых статей на диск
	exported := p.exporter.ExportArticles(unionByURL(newForSheet, newForDB))
	articlesExported.Add(float64(len(exported)))

	log.WithFields(map[string]interface{}{
		"fetched":       len(fetched),
		"new_for_sheet": len(newForSheet),
		"new_for_db":    len(newForDB),
		"db_added":      added,
		"db_skipped":    skipped,
		"exported":      len(exported),
	}).Info("Pipeline run completed")
	return nil
}

// unionByURL объединяет два среза статей, убирая повторы по URL.
// Порядок сохраняется: сначала a, затем новые элементы из b.
func unionByURL(a, b []models.Article) []models.Article {
	seen := make(map[string]struct{}, len(a)+len(b))
	var union []models.Article
	for _, article := range append(append([]models.Article{}, a...), b...) {
		if _, ok := seen[article.URL]; ok {
			continue
		}
		seen[article.URL] = struct{}{}
		union = append(union, article)
	}
	return union
}
