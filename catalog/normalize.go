package catalog

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// SkipReason classifies why a row was excluded from the normalized set.
type SkipReason string

const (
	// SkipStructural marks rows the CSV reader could not split into fields.
	SkipStructural SkipReason = "structural"

	// SkipIncomplete marks rows missing a required field.
	SkipIncomplete SkipReason = "incomplete"

	// SkipMalformed marks rows whose required field failed coercion.
	SkipMalformed SkipReason = "malformed"

	// SkipZeroPages marks rows with a page count of zero.
	SkipZeroPages SkipReason = "zero_pages"
)

// dateLayouts are the accepted publication date formats, tried in order.
var dateLayouts = []string{
	"1/2/2006",
	"2006-01-02",
}

// Result is the outcome of normalizing a set of rows.
type Result struct {
	Books   []Book
	Skipped map[SkipReason]int
	Errors  []*MalformedRowError
}

// SkippedTotal returns the number of rows dropped for any reason.
func (r Result) SkippedTotal() int {
	total := 0
	for _, n := range r.Skipped {
		total += n
	}
	return total
}

func newResult(capacity int) Result {
	return Result{
		Books:   make([]Book, 0, capacity),
		Skipped: make(map[SkipReason]int),
	}
}

func (r *Result) skip(source string, line int, err error) {
	var malformed *MalformedRowError
	var incomplete *incompleteRowError
	switch {
	case errors.As(err, &malformed):
		malformed.Source = source
		malformed.Line = line
		r.Errors = append(r.Errors, malformed)
		r.Skipped[SkipMalformed]++
	case errors.As(err, &incomplete):
		r.Skipped[SkipIncomplete]++
	case errors.Is(err, zeroPagesError{}):
		r.Skipped[SkipZeroPages]++
	default:
		r.Skipped[SkipMalformed]++
	}
}

// Normalize converts raw rows into normalized books, preserving input order.
// Rows that are incomplete, malformed or have zero pages are dropped and
// counted; Normalize never fails on row-level problems.
func Normalize(rows []RawRecord) Result {
	result := newResult(len(rows))
	for _, raw := range rows {
		b, err := bookFromRaw(Prune(raw))
		if err == nil {
			b, err = normalizeBook(b)
		}
		if err != nil {
			result.skip(raw.Source, raw.Line, err)
			continue
		}
		result.Books = append(result.Books, b)
	}
	return result
}

// Renormalize re-applies normalization to already normalized books. For any
// output of Normalize it returns the same books unchanged.
func Renormalize(books []Book) Result {
	result := newResult(len(books))
	for i, b := range books {
		nb, err := normalizeBook(b)
		if err != nil {
			result.skip("", i+1, err)
			continue
		}
		result.Books = append(result.Books, nb)
	}
	return result
}

// bookFromRaw reads and coerces the kept columns of a raw row.
func bookFromRaw(raw RawRecord) (Book, error) {
	text := func(column string) string {
		v, _ := raw.Get(column)
		return CanonicalizeText(v)
	}
	number := func(column string) (string, error) {
		v, ok := raw.Get(column)
		v = strings.TrimSpace(v)
		if !ok || v == "" {
			return "", &incompleteRowError{field: column}
		}
		return v, nil
	}

	b := Book{
		Title:        text(ColumnTitle),
		Authors:      text(ColumnAuthors),
		LanguageCode: text(ColumnLanguageCode),
		Publisher:    text(ColumnPublisher),
		Series:       text(ColumnSeries),
		BookNumber:   text(ColumnBookNumber),
	}

	id, err := number(ColumnID)
	if err != nil {
		return Book{}, err
	}
	n, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		return Book{}, &MalformedRowError{Field: ColumnID, Value: id, Err: err}
	}
	b.ID = strconv.FormatInt(n, 10)

	rating, err := number(ColumnAverageRating)
	if err != nil {
		return Book{}, err
	}
	b.AverageRating, err = strconv.ParseFloat(rating, 64)
	if err != nil || math.IsNaN(b.AverageRating) || math.IsInf(b.AverageRating, 0) {
		if err == nil {
			err = fmt.Errorf("not a finite number")
		}
		return Book{}, &MalformedRowError{Field: ColumnAverageRating, Value: rating, Err: err}
	}

	isbn, err := number(ColumnISBN13)
	if err != nil {
		return Book{}, err
	}
	if _, err := strconv.ParseUint(isbn, 10, 64); err != nil {
		return Book{}, &MalformedRowError{Field: ColumnISBN13, Value: isbn, Err: err}
	}
	b.ISBN13 = isbn

	pages, err := number(ColumnPages)
	if err != nil {
		return Book{}, err
	}
	b.Pages, err = strconv.Atoi(pages)
	if err != nil {
		return Book{}, &MalformedRowError{Field: ColumnPages, Value: pages, Err: err}
	}

	date, err := number(ColumnPublicationDate)
	if err != nil {
		return Book{}, err
	}
	b.PublicationDate, err = parseDate(date)
	if err != nil {
		return Book{}, &MalformedRowError{Field: ColumnPublicationDate, Value: date, Err: err}
	}

	return b, nil
}

func parseDate(raw string) (string, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.Format("2006-01-02"), nil
		}
	}
	return "", fmt.Errorf("unrecognized date format")
}

// normalizeBook canonicalizes text fields, filters the row and decomposes the
// title. Every step is stable under re-application.
func normalizeBook(b Book) (Book, error) {
	b.Title = CanonicalizeText(b.Title)
	b.Authors = trimPadding(CanonicalizeText(b.Authors))
	b.LanguageCode = trimPadding(CanonicalizeText(b.LanguageCode))
	b.Publisher = strings.TrimLeft(strings.TrimRight(CanonicalizeText(b.Publisher), JoinChar+";"), JoinChar)
	b.Series = CanonicalizeText(b.Series)
	b.BookNumber = CanonicalizeText(b.BookNumber)
	b.PublicationDate = CanonicalizeText(b.PublicationDate)

	if field := missingField(b); field != "" {
		return Book{}, &incompleteRowError{field: field}
	}
	if b.Pages == 0 {
		return Book{}, zeroPagesError{}
	}
	if b.Pages < 0 {
		return Book{}, &MalformedRowError{Field: ColumnPages, Value: strconv.Itoa(b.Pages), Err: fmt.Errorf("negative page count")}
	}

	title, series, number, ok := DecomposeTitle(b.Title)
	b.Title = title
	if ok {
		if series == "" {
			return Book{}, &MalformedRowError{Field: ColumnTitle, Value: b.Title, Err: fmt.Errorf("empty series in title")}
		}
		b.Series = series
		b.BookNumber = number
	} else {
		b.Series = stripSeries(b.Series)
		b.BookNumber = stripArtifacts(b.BookNumber)
	}
	if b.Title == "" {
		return Book{}, &incompleteRowError{field: ColumnTitle}
	}

	if b.Series == "" || b.Series == Standalone {
		b.Series = Standalone
		b.BookNumber = ""
		return b, nil
	}
	if b.BookNumber == "" {
		return Book{}, &MalformedRowError{Field: ColumnBookNumber, Value: b.Series, Err: fmt.Errorf("series without book number")}
	}
	return b, nil
}

func trimPadding(s string) string {
	return strings.Trim(s, JoinChar)
}

func missingField(b Book) string {
	switch {
	case b.ID == "":
		return ColumnID
	case isBlank(b.Title):
		return ColumnTitle
	case isBlank(b.Authors):
		return ColumnAuthors
	case b.ISBN13 == "":
		return ColumnISBN13
	case isBlank(b.LanguageCode):
		return ColumnLanguageCode
	case b.PublicationDate == "":
		return ColumnPublicationDate
	case isBlank(b.Publisher):
		return ColumnPublisher
	}
	return ""
}
