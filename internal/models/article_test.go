package models_test

import (
	"strings"
	"testing"

	"minerva_rss/internal/models"

	"github.com/stretchr/testify/require"
)

func TestContentText(t *testing.T) {
	a := models.Article{Summary: "summary", FullContent: "full"}
	require.Equal(t, "full", a.ContentText())
	require.True(t, a.HasFullContent())

	a.FullContent = ""
	require.Equal(t, "summary", a.ContentText())
	require.False(t, a.HasFullContent())
}

func TestSheetRow(t *testing.T) {
	a := models.Article{
		Title:         "Title",
		URL:           "http://example.com/1",
		Summary:       strings.Repeat("x", 600),
		Author:        "Author",
		PublishedDate: "2024-03-05 10:00:00",
		FeedName:      "Feed",
		Domain:        "example.com",
		ExtractedAt:   "2024-03-05 12:00:00",
		FullContent:   "full",
	}

	row := a.SheetRow()
	require.Len(t, row, len(models.SheetHeader))
	require.Equal(t, "Title", row[0])
	require.Equal(t, "http://example.com/1", row[1])
	// Summary ограничивается 500 символами
	require.Len(t, row[2], 500)
	require.Equal(t, "Yes", row[8])
	// labels, ratings, readers при вставке пустые
	require.Equal(t, "", row[9])
	require.Equal(t, "", row[10])
	require.Equal(t, "", row[11])

	a.FullContent = ""
	require.Equal(t, "No", a.SheetRow()[8])
}

func TestParseExtractFlag(t *testing.T) {
	require.True(t, models.ParseExtractFlag("true"))
	require.True(t, models.ParseExtractFlag(" TRUE "))
	require.False(t, models.ParseExtractFlag("false"))
	require.False(t, models.ParseExtractFlag(""))
	require.False(t, models.ParseExtractFlag("yes"))
}
