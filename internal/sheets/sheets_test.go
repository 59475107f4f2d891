package sheets_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"minerva_rss/internal/models"
	"minerva_rss/internal/sheets"

	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"
)

// fakeSheet эмулирует values-эндпоинты Sheets API поверх httptest.
type fakeSheet struct {
	rows    [][]interface{}
	updates map[string]interface{} // диапазон ячейки → записанное значение
}

func (f *fakeSheet) handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path, _ := url.PathUnescape(r.URL.Path)
		w.Header().Set("Content-Type", "application/json")

		switch {
		case r.Method == http.MethodPost && strings.HasSuffix(path, ":append"):
			var body struct {
				Values [][]interface{} `json:"values"`
			}
			json.NewDecoder(r.Body).Decode(&body)
			f.rows = append(f.rows, body.Values...)
			json.NewEncoder(w).Encode(map[string]interface{}{})

		case r.Method == http.MethodPut:
			var body struct {
				Values [][]interface{} `json:"values"`
			}
			json.NewDecoder(r.Body).Decode(&body)
			rng := path[strings.LastIndex(path, "/")+1:]
			f.updates[rng] = body.Values[0][0]
			json.NewEncoder(w).Encode(map[string]interface{}{})

		case r.Method == http.MethodGet:
			values := f.rows
			if strings.HasSuffix(path, "!1:1") && len(f.rows) > 1 {
				values = f.rows[:1]
			}
			json.NewEncoder(w).Encode(map[string]interface{}{
				"range":          "Articles",
				"majorDimension": "ROWS",
				"values":         values,
			})

		default:
			http.Error(w, "unexpected request", http.StatusBadRequest)
		}
	})
}

func newTestStore(t *testing.T, fake *fakeSheet) *sheets.Store {
	t.Helper()
	if fake.updates == nil {
		fake.updates = map[string]interface{}{}
	}
	server := httptest.NewServer(fake.handler())
	t.Cleanup(server.Close)

	store, err := sheets.NewStore(context.Background(), "sheet-123", "Articles",
		option.WithoutAuthentication(), option.WithEndpoint(server.URL))
	require.NoError(t, err)
	return store
}

func headerRow() []interface{} {
	row := make([]interface{}, len(models.SheetHeader))
	for i, name := range models.SheetHeader {
		row[i] = name
	}
	return row
}

func TestReadAll(t *testing.T) {
	fake := &fakeSheet{rows: [][]interface{}{
		headerRow(),
		{"Title One", "http://example.com/1", "summary", "Author"},
	}}
	store := newTestStore(t, fake)

	records, err := store.ReadAll(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 1)
	require.Equal(t, "Title One", records[0]["title"])
	require.Equal(t, "http://example.com/1", records[0]["url"])
	// Колонки без значений в строке присутствуют с пустым значением.
	require.Equal(t, "", records[0]["labels"])
}

func TestExistingURLs(t *testing.T) {
	fake := &fakeSheet{rows: [][]interface{}{
		headerRow(),
		{"One", "http://example.com/1"},
		{"Two", "http://example.com/2"},
		{"No URL", ""},
	}}
	store := newTestStore(t, fake)

	urls, err := store.ExistingURLs(context.Background())
	require.NoError(t, err)
	require.Equal(t, []string{"http://example.com/1", "http://example.com/2"}, urls)
}

func TestAppendArticles_EmptySheetWritesHeader(t *testing.T) {
	fake := &fakeSheet{}
	store := newTestStore(t, fake)

	err := store.AppendArticles(context.Background(), []models.Article{
		{Title: "One", URL: "http://example.com/1", FullContent: "full text"},
	})
	require.NoError(t, err)

	require.Len(t, fake.rows, 2)
	require.Equal(t, "title", fake.rows[0][0])
	require.Equal(t, "One", fake.rows[1][0])
	require.Equal(t, "http://example.com/1", fake.rows[1][1])
	require.Equal(t, "Yes", fake.rows[1][8])
}

func TestAppendArticles_ExistingHeaderNotDuplicated(t *testing.T) {
	fake := &fakeSheet{rows: [][]interface{}{headerRow()}}
	store := newTestStore(t, fake)

	err := store.AppendArticles(context.Background(), []models.Article{
		{Title: "One", URL: "http://example.com/1"},
		{Title: "Two", URL: "http://example.com/2"},
	})
	require.NoError(t, err)

	require.Len(t, fake.rows, 3)
	require.Equal(t, "One", fake.rows[1][0])
	require.Equal(t, "No", fake.rows[2][8])
}

func TestUpdateArticle(t *testing.T) {
	fake := &fakeSheet{rows: [][]interface{}{
		headerRow(),
		{"One", "http://example.com/1"},
		{"Two", "http://example.com/2"},
	}}
	store := newTestStore(t, fake)

	err := store.UpdateArticle(context.Background(), "http://example.com/2", map[string]string{
		"labels": "starred",
	})
	require.NoError(t, err)

	// labels — десятая колонка (J), вторая строка данных — строка 3 листа.
	require.Equal(t, "starred", fake.updates["Articles!J3"])
}

func TestUpdateArticle_NotFound(t *testing.T) {
	fake := &fakeSheet{rows: [][]interface{}{headerRow()}}
	store := newTestStore(t, fake)

	err := store.UpdateArticle(context.Background(), "http://example.com/missing", map[string]string{
		"labels": "starred",
	})
	require.NoError(t, err)
	require.Empty(t, fake.updates)
}
