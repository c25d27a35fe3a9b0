package catalog

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
)

// NormalizedHeader is the column order of a written normalized table.
var NormalizedHeader = []string{
	"bookID",
	ColumnTitle,
	ColumnAuthors,
	ColumnAverageRating,
	ColumnISBN13,
	ColumnLanguageCode,
	ColumnPages,
	ColumnPublicationDate,
	ColumnPublisher,
	ColumnSeries,
	ColumnBookNumber,
}

// WriteCSV writes the normalized set as a comma-delimited table that
// ReadCSV and Normalize accept unchanged.
func WriteCSV(w io.Writer, books []Book) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(NormalizedHeader); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, b := range books {
		row := []string{
			b.ID,
			b.Title,
			b.Authors,
			b.RatingString(),
			b.ISBN13,
			b.LanguageCode,
			strconv.Itoa(b.Pages),
			b.PublicationDate,
			b.Publisher,
			b.Series,
			b.BookNumber,
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write book %s: %w", b.ID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteCSVFile writes the normalized set to path, replacing any existing file.
func WriteCSVFile(path string, books []Book) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create normalized table: %w", err)
	}
	if err := WriteCSV(f, books); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
