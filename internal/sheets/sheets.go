package sheets

import (
	"context"
	"fmt"
	"strings"

	"minerva_rss/internal/logger"
	"minerva_rss/internal/models"

	"google.golang.org/api/option"
	sheets "google.golang.org/api/sheets/v4"
)

// Store — хранилище статей в листе Google Sheets. Лист сам по себе не
// обеспечивает уникальность строк: дубликаты отсекаются только фильтром
// перед записью, поэтому запись имеет семантику at-least-once.
type Store struct {
	svc           *sheets.Service
	spreadsheetID string
	worksheet     string
}

// NewStore создаёт клиент Sheets API для листа worksheet таблицы spreadsheetID.
// Дополнительные opts позволяют подставить учётные данные или тестовый эндпоинт.
func NewStore(ctx context.Context, spreadsheetID, worksheet string, opts ...option.ClientOption) (*Store, error) {
	svc, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return &Store{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		worksheet:     worksheet,
	}, nil
}

// ReadAll возвращает все строки листа как отображения "заголовок → значение".
// Чтение не ограничено по количеству строк.
func (s *Store) ReadAll(ctx context.Context) ([]map[string]string, error) {
	resp, err := s.svc.Spreadsheets.Values.Get(s.spreadsheetID, s.worksheet).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read sheet: %w", err)
	}
	if len(resp.Values) < 2 {
		return nil, nil
	}

	header := make([]string, len(resp.Values[0]))
	for i, cell := range resp.Values[0] {
		header[i] = strings.TrimSpace(fmt.Sprint(cell))
	}

	records := make([]map[string]string, 0, len(resp.Values)-1)
	for _, row := range resp.Values[1:] {
		record := make(map[string]string, len(header))
		for i, name := range header {
			if i < len(row) {
				record[name] = fmt.Sprint(row[i])
			} else {
				record[name] = ""
			}
		}
		records = append(records, record)
	}

	logger.Log.WithField("rows_count", len(records)).Info("Read existing articles from sheet")
	return records, nil
}

// ExistingURLs возвращает значения колонки url всех строк листа.
func (s *Store) ExistingURLs(ctx context.Context) ([]string, error) {
	records, err := s.ReadAll(ctx)
	if err != nil {
		return nil, err
	}
	urls := make([]string, 0, len(records))
	for _, record := range records {
		if url := record["url"]; url != "" {
			urls = append(urls, url)
		}
	}
	return urls, nil
}

// AppendArticles дописывает статьи одной пакетной операцией. Если лист пуст,
// сначала добавляется строка заголовка. Никакой проверки уникальности здесь
// нет — только добавление строк.
func (s *Store) AppendArticles(ctx context.Context, articles []models.Article) error {
	if len(articles) == 0 {
		return nil
	}

	headerResp, err := s.svc.Spreadsheets.Values.Get(s.spreadsheetID, s.worksheet+"!1:1").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("read sheet header: %w", err)
	}

	var rows [][]interface{}
	if len(headerResp.Values) == 0 || len(headerResp.Values[0]) == 0 {
		header := make([]interface{}, len(models.SheetHeader))
		for i, name := range models.SheetHeader {
			header[i] = name
		}
		rows = append(rows, header)
	}
	for _, article := range articles {
		rows = append(rows, article.SheetRow())
	}

	_, err = s.svc.Spreadsheets.Values.Append(s.spreadsheetID, s.worksheet, &sheets.ValueRange{
		Values: rows,
	}).ValueInputOption("RAW").InsertDataOption("INSERT_ROWS").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("append to sheet: %w", err)
	}

	logger.Log.WithField("articles_count", len(articles)).Info("Appended articles to sheet")
	return nil
}

// UpdateArticle обновляет поля строки, найденной по точному совпадению url.
// Если строка не найдена, пишется предупреждение и ничего не меняется.
func (s *Store) UpdateArticle(ctx context.Context, url string, updates map[string]string) error {
	resp, err := s.svc.Spreadsheets.Values.Get(s.spreadsheetID, s.worksheet).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("read sheet: %w", err)
	}
	if len(resp.Values) == 0 {
		logger.Log.WithField("url", url).Warn("Article not found in sheet for update")
		return nil
	}

	header := resp.Values[0]
	urlCol := -1
	for i, cell := range header {
		if fmt.Sprint(cell) == "url" {
			urlCol = i
			break
		}
	}
	if urlCol == -1 {
		return fmt.Errorf("sheet has no url column")
	}

	rowNum := -1
	for i, row := range resp.Values[1:] {
		if urlCol < len(row) && fmt.Sprint(row[urlCol]) == url {
			rowNum = i + 2 // 1-based, после строки заголовка
			break
		}
	}
	if rowNum == -1 {
		logger.Log.WithField("url", url).Warn("Article not found in sheet for update")
		return nil
	}

	for field, value := range updates {
		col := -1
		for i, cell := range header {
			if fmt.Sprint(cell) == field {
				col = i
				break
			}
		}
		if col == -1 {
			continue
		}

		cellRange := fmt.Sprintf("%s!%s%d", s.worksheet, columnName(col), rowNum)
		_, err := s.svc.Spreadsheets.Values.Update(s.spreadsheetID, cellRange, &sheets.ValueRange{
			Values: [][]interface{}{{value}},
		}).ValueInputOption("RAW").Context(ctx).Do()
		if err != nil {
			return fmt.Errorf("update cell %s: %w", cellRange, err)
		}
	}

	logger.Log.WithField("url", url).Info("Updated article in sheet")
	return nil
}

// columnName переводит индекс колонки (с нуля) в буквенное имя A, B, …, AA.
func columnName(index int) string {
	name := ""
	for index >= 0 {
		name = string(rune('A'+index%26)) + name
		index = index/26 - 1
	}
	return name
}
