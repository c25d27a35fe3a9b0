// Package catalog reads the tabular book catalog and normalizes its rows into
// typed Book records ready for graph lifting and lookup.
package catalog

import (
	"strconv"
)

// Standalone is the series sentinel for books that are not part of a series.
const Standalone = "Standalone"

// Canonical column names. Header cells are matched after trimming
// whitespace, stripping trailing ';' artifacts and lower-casing.
const (
	ColumnID              = "bookid"
	ColumnTitle           = "title"
	ColumnAuthors         = "authors"
	ColumnAverageRating   = "average_rating"
	ColumnISBN            = "isbn"
	ColumnISBN13          = "isbn13"
	ColumnLanguageCode    = "language_code"
	ColumnPages           = "num_pages"
	ColumnRatingsCount    = "ratings_count"
	ColumnTextReviews     = "text_reviews_count"
	ColumnPublicationDate = "publication_date"
	ColumnPublisher       = "publisher"
	ColumnSeries          = "series"
	ColumnBookNumber      = "book_number"
)

// RequiredColumns must be present in every source header.
var RequiredColumns = []string{
	ColumnID,
	ColumnTitle,
	ColumnAuthors,
	ColumnAverageRating,
	ColumnISBN13,
	ColumnLanguageCode,
	ColumnPages,
	ColumnPublicationDate,
	ColumnPublisher,
}

// keptColumns are the columns that survive pruning. Popularity metrics and
// the ISBN-10 column are dropped.
var keptColumns = map[string]bool{
	ColumnID:              true,
	ColumnTitle:           true,
	ColumnAuthors:         true,
	ColumnAverageRating:   true,
	ColumnISBN13:          true,
	ColumnLanguageCode:    true,
	ColumnPages:           true,
	ColumnPublicationDate: true,
	ColumnPublisher:       true,
	ColumnSeries:          true,
	ColumnBookNumber:      true,
}

// RawRecord is one row of the source table. A column that is absent from
// Fields, or holds an empty cell, is null.
type RawRecord struct {
	Source string
	Line   int
	Fields map[string]string
}

// Get returns a column value and whether it is non-null.
func (r RawRecord) Get(column string) (string, bool) {
	v, ok := r.Fields[column]
	if !ok || v == "" {
		return "", false
	}
	return v, true
}

// Prune returns a copy of the record holding only the columns used downstream.
func Prune(r RawRecord) RawRecord {
	fields := make(map[string]string, len(keptColumns))
	for k, v := range r.Fields {
		if keptColumns[k] {
			fields[k] = v
		}
	}
	return RawRecord{Source: r.Source, Line: r.Line, Fields: fields}
}

// Book is a normalized catalog record.
type Book struct {
	ID              string  `json:"id"`
	Title           string  `json:"title"`
	Authors         string  `json:"authors"`
	AverageRating   float64 `json:"average_rating"`
	ISBN13          string  `json:"isbn13"`
	LanguageCode    string  `json:"language_code"`
	Pages           int     `json:"num_pages"`
	PublicationDate string  `json:"publication_date"`
	Publisher       string  `json:"publisher"`
	Series          string  `json:"series"`
	BookNumber      string  `json:"book_number,omitempty"`
}

// IsStandalone reports whether the book is outside any series.
func (b Book) IsStandalone() bool {
	return b.Series == Standalone
}

// Position returns the in-series position reported to callers. Standalone
// works are always at position 1 regardless of any stored number.
func (b Book) Position() string {
	if b.IsStandalone() {
		return "1"
	}
	return b.BookNumber
}

// RatingString formats the average rating without trailing zeros.
func (b Book) RatingString() string {
	return strconv.FormatFloat(b.AverageRating, 'f', -1, 64)
}

// PublicFieldNames is the fixed order of PublicFields.
var PublicFieldNames = []string{
	"title",
	"authors",
	"average_rating",
	"isbn13",
	"language_code",
	"num_pages",
	"publication_date",
	"publisher",
	"series",
	"book_number",
}

// PublicFields returns the record's public fields in PublicFieldNames order.
func (b Book) PublicFields() []string {
	return []string{
		b.Title,
		b.Authors,
		b.RatingString(),
		b.ISBN13,
		b.LanguageCode,
		strconv.Itoa(b.Pages),
		b.PublicationDate,
		b.Publisher,
		b.Series,
		b.Position(),
	}
}
