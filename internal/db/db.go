package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"minerva_rss/internal/logger"
	"minerva_rss/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// uniqueViolation — код SQLSTATE нарушения уникального ограничения.
const uniqueViolation = "23505"

// Database инкапсулирует пул соединений к PostgreSQL с таблицей статей.
type Database struct {
	Pool *pgxpool.Pool
}

// NewDB создаёт пул соединений по connString и возвращает Database.
func NewDB(ctx context.Context, connString string) (*Database, error) {
	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, fmt.Errorf("unable to create connection pool: %v", err)
	}
	return &Database{Pool: pool}, nil
}

// Close закрывает пул соединений.
func (db *Database) Close() {
	db.Pool.Close()
}

// EnsureSchema создаёт таблицу articles, если её ещё нет.
func (db *Database) EnsureSchema(ctx context.Context) error {
	_, err := db.Pool.Exec(ctx, `
        CREATE TABLE IF NOT EXISTS articles (
            id SERIAL PRIMARY KEY,
            title TEXT NOT NULL,
            url VARCHAR(2048) UNIQUE NOT NULL,
            summary TEXT,
            author TEXT,
            published_date TEXT,
            feed_name TEXT,
            domain TEXT,
            extracted_at TEXT,
            has_full_content BOOLEAN NOT NULL DEFAULT FALSE,
            updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
        )
    `)
	return err
}

// RecentURLs возвращает URL последних limit статей, отсортированных по дате
// публикации от новых к старым. Статьи старше limit-й в выборку не попадают:
// их повторную вставку отсекает уникальное ограничение на url.
func (db *Database) RecentURLs(ctx context.Context, limit int) ([]string, error) {
	rows, err := db.Pool.Query(ctx, `
        SELECT url
        FROM articles
        ORDER BY published_date DESC
        LIMIT $1
    `, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var urls []string
	for rows.Next() {
		var url string
		if err := rows.Scan(&url); err != nil {
			return nil, err
		}
		urls = append(urls, url)
	}
	return urls, rows.Err()
}

// InsertArticles вставляет статьи по одной. Нарушение уникальности url —
// ожидаемый результат ("дубликат, пропустить"), учитывается в skipped;
// любая другая ошибка прерывает всю партию.
func (db *Database) InsertArticles(ctx context.Context, articles []models.Article) (added, skipped int, err error) {
	for _, article := range articles {
		_, err := db.Pool.Exec(ctx, `
            INSERT INTO articles (title, url, summary, author, published_date,
                feed_name, domain, extracted_at, has_full_content)
            VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
        `,
			article.Title,
			article.URL,
			article.Summary,
			article.Author,
			article.PublishedDate,
			article.FeedName,
			article.Domain,
			article.ExtractedAt,
			article.HasFullContent(),
		)
		if err != nil {
			if isUniqueViolation(err) {
				skipped++
				continue
			}
			return added, skipped, fmt.Errorf("insert article %s: %w", article.URL, err)
		}
		added++
	}

	logger.Log.WithFields(map[string]interface{}{
		"added":   added,
		"skipped": skipped,
	}).Info("Inserted articles into database")
	return added, skipped, nil
}

// GetArticleByURL возвращает статью с точно совпадающим url или nil.
// Полный текст в БД не хранится, поэтому флаг has_full_content
// возвращается отдельным значением.
func (db *Database) GetArticleByURL(ctx context.Context, url string) (*models.Article, bool, error) {
	var (
		article models.Article
		hasFull bool
	)
	err := db.Pool.QueryRow(ctx, `
        SELECT title, url, summary, author, published_date,
               feed_name, domain, extracted_at, has_full_content
        FROM articles
        WHERE url = $1
    `, url).Scan(
		&article.Title,
		&article.URL,
		&article.Summary,
		&article.Author,
		&article.PublishedDate,
		&article.FeedName,
		&article.Domain,
		&article.ExtractedAt,
		&hasFull,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return &article, hasFull, nil
}

// UpdateArticle обновляет поля статьи по точному url и проставляет updated_at.
// Допустимые поля — колонки таблицы; прочие ключи отвергаются.
func (db *Database) UpdateArticle(ctx context.Context, url string, updates map[string]interface{}) error {
	if len(updates) == 0 {
		return nil
	}

	allowed := map[string]bool{
		"title": true, "summary": true, "author": true, "published_date": true,
		"feed_name": true, "domain": true, "extracted_at": true, "has_full_content": true,
	}

	set := "updated_at = $1"
	args := []interface{}{time.Now().UTC()}
	for field, value := range updates {
		if !allowed[field] {
			return fmt.Errorf("unknown article field: %s", field)
		}
		args = append(args, value)
		set += fmt.Sprintf(", %s = $%d", field, len(args))
	}
	args = append(args, url)

	tag, err := db.Pool.Exec(ctx,
		fmt.Sprintf("UPDATE articles SET %s WHERE url = $%d", set, len(args)), args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		logger.Log.WithField("url", url).Warn("Article not found for update")
	}
	return nil
}

// DeleteArticle удаляет статью по точному url.
func (db *Database) DeleteArticle(ctx context.Context, url string) error {
	tag, err := db.Pool.Exec(ctx, `DELETE FROM articles WHERE url = $1`, url)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		logger.Log.WithField("url", url).Warn("Article not found for deletion")
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}
