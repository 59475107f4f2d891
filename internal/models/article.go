package models

import "strings"

// DateLayout — формат дат published_date и extracted_at во всех хранилищах.
const DateLayout = "2006-01-02 15:04:05"

// SheetHeader — фиксированный порядок колонок листа статей.
// Последние три колонки заполняются вручную и при вставке остаются пустыми.
var SheetHeader = []string{
	"title", "url", "summary", "author", "published_date",
	"feed_name", "domain", "extracted_at", "has_full_content",
	"labels", "ratings", "readers",
}

// Article представляет одну статью, собранную из RSS-ленты за текущий запуск.
// Идентичность статьи — её URL; оба хранилища дедуплицируют только по нему.
type Article struct {
	Title         string
	URL           string
	Summary       string
	FullContent   string
	Author        string
	PublishedDate string
	FeedName      string
	FeedURL       string
	Domain        string
	ExtractedAt   string
}

// HasFullContent сообщает, удалось ли извлечь полный текст страницы.
func (a *Article) HasFullContent() bool {
	return a.FullContent != ""
}

// ContentText возвращает текст для экспорта: полный контент, если он есть,
// иначе краткое описание из ленты.
func (a *Article) ContentText() string {
	if a.FullContent != "" {
		return a.FullContent
	}
	return a.Summary
}

// SheetRow формирует строку значений для листа в порядке SheetHeader.
// Summary ограничивается 500 символами, has_full_content пишется как Yes/No.
func (a *Article) SheetRow() []interface{} {
	hasFull := "No"
	if a.HasFullContent() {
		hasFull = "Yes"
	}
	return []interface{}{
		a.Title,
		a.URL,
		truncate(a.Summary, 500),
		a.Author,
		a.PublishedDate,
		a.FeedName,
		a.Domain,
		a.ExtractedAt,
		hasFull,
		"", // labels
		"", // ratings
		"", // readers
	}
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}

// FeedConfig описывает одну RSS-ленту из конфигурационного CSV.
type FeedConfig struct {
	URL             string
	Name            string
	Description     string
	ExtractArticles bool
}

// ParseExtractFlag разбирает строковое значение колонки extract_articles.
// Любое значение, кроме "true" (без учёта регистра), означает false.
func ParseExtractFlag(s string) bool {
	return strings.EqualFold(strings.TrimSpace(s), "true")
}
