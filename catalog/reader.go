package catalog

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// ReadOptions controls how a source table is parsed.
type ReadOptions struct {
	// Delimiter is the field separator. Zero means detect from the header.
	Delimiter rune

	// Logger receives a warning for every skipped row. Nil uses slog.Default().
	Logger *slog.Logger
}

func (o ReadOptions) logger() *slog.Logger {
	if o.Logger == nil {
		return slog.Default()
	}
	return o.Logger
}

// Table is a fully materialized source table.
type Table struct {
	Sources []string
	Header  []string
	Rows    []RawRecord

	// Skipped counts rows dropped because they could not be split into the
	// header's fields.
	Skipped int
}

// headerSniffSize bounds how much of the input is inspected for the delimiter.
const headerSniffSize = 64 * 1024

// ReadSources reads every file matching pattern and concatenates their rows
// in lexical path order. Patterns follow doublestar syntax ("data/**/*.csv");
// a plain path is read directly.
func ReadSources(pattern string, opts ReadOptions) (*Table, error) {
	if !strings.ContainsAny(pattern, "*?[{") {
		return ReadFile(pattern, opts)
	}

	matches, err := doublestar.FilepathGlob(pattern)
	if err != nil {
		return nil, &SourceUnavailableError{Path: pattern, Err: fmt.Errorf("expand pattern: %w", err)}
	}
	if len(matches) == 0 {
		return nil, &SourceUnavailableError{Path: pattern, Err: ErrNoMatches}
	}
	sort.Strings(matches)

	merged := &Table{}
	for _, path := range matches {
		t, err := ReadFile(path, opts)
		if err != nil {
			return nil, err
		}
		if merged.Header == nil {
			merged.Header = t.Header
		}
		merged.Sources = append(merged.Sources, path)
		merged.Rows = append(merged.Rows, t.Rows...)
		merged.Skipped += t.Skipped
	}
	return merged, nil
}

// ReadFile reads a single delimited source file.
func ReadFile(path string, opts ReadOptions) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &SourceUnavailableError{Path: path, Err: err}
	}
	defer f.Close()

	return ReadCSV(f, path, opts)
}

// ReadCSV reads a delimited table from r. source names the input in errors
// and skipped-row warnings.
func ReadCSV(r io.Reader, source string, opts ReadOptions) (*Table, error) {
	br := bufio.NewReaderSize(r, headerSniffSize)
	delim := opts.Delimiter
	if delim == 0 {
		peek, err := br.Peek(headerSniffSize)
		if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, bufio.ErrBufferFull) {
			return nil, &SourceUnavailableError{Path: source, Err: err}
		}
		delim = DetectDelimiter(peek)
	}

	cr := csv.NewReader(br)
	cr.Comma = delim
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	headerRow, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, &SourceUnavailableError{Path: source, Err: ErrEmptySource}
	}
	if err != nil {
		return nil, &SourceUnavailableError{Path: source, Err: fmt.Errorf("read header: %w", err)}
	}

	header := make([]string, len(headerRow))
	present := make(map[string]bool, len(headerRow))
	for i, name := range headerRow {
		header[i] = canonicalColumn(name)
		present[header[i]] = true
	}
	for _, col := range RequiredColumns {
		if !present[col] {
			return nil, &SourceUnavailableError{Path: source, Err: fmt.Errorf("missing required column %q", col)}
		}
	}

	logger := opts.logger()
	table := &Table{Sources: []string{source}, Header: header}
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				logger.Warn("Skipping unparseable row",
					"source", source,
					"line", parseErr.StartLine,
					"error", parseErr.Err)
				table.Skipped++
				continue
			}
			return nil, &SourceUnavailableError{Path: source, Err: err}
		}

		line, _ := cr.FieldPos(0)
		if len(row) != len(header) {
			logger.Warn("Skipping row with wrong field count",
				"source", source,
				"line", line,
				"fields", len(row),
				"expected", len(header))
			table.Skipped++
			continue
		}

		fields := make(map[string]string, len(header))
		for i, col := range header {
			fields[col] = row[i]
		}
		table.Rows = append(table.Rows, Prune(RawRecord{Source: source, Line: line, Fields: fields}))
	}

	if len(table.Rows) == 0 && table.Skipped == 0 {
		return nil, &SourceUnavailableError{Path: source, Err: ErrEmptySource}
	}
	return table, nil
}

// DetectDelimiter picks ';' or ',' by counting occurrences in the first line.
func DetectDelimiter(sample []byte) rune {
	line := sample
	if i := bytes.IndexByte(sample, '\n'); i >= 0 {
		line = sample[:i]
	}
	if bytes.Count(line, []byte{';'}) > bytes.Count(line, []byte{','}) {
		return ';'
	}
	return ','
}

func canonicalColumn(name string) string {
	name = strings.TrimPrefix(name, "\ufeff")
	name = strings.TrimSpace(name)
	name = strings.TrimRight(name, ";")
	return strings.ToLower(strings.TrimSpace(name))
}
