package storage

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/thedittmer/briefly/internal/models"
)

var csvHeader = []string{"title", "link", "date", "publisher", "image"}

// WriteCSV writes articles with the same columns the backend uses for its
// saved search results.
func WriteCSV(w io.Writer, articles []models.Article) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, a := range articles {
		if err := cw.Write([]string{a.Title, a.Link, a.Date, a.Publisher, a.Image}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ExportCSV writes articles to path, or to a timestamped file in the
// data directory when path is empty. It returns the path written.
func (s *Storage) ExportCSV(articles []models.Article, path string) (string, error) {
	if path == "" {
		name := fmt.Sprintf("search_results_%s.csv", time.Now().Format("20060102150405"))
		path = filepath.Join(s.dataDir, "search_results", name)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", fmt.Errorf("error creating export directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("error creating %s: %w", path, err)
	}
	if err := WriteCSV(f, articles); err != nil {
		f.Close()
		return "", fmt.Errorf("error writing %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("error closing %s: %w", path, err)
	}
	return path, nil
}
