package csvimport

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// CSVParser reads header-keyed rows from a CSV stream. The input must
// be UTF-8; a leading BOM is tolerated and stripped.
type CSVParser struct {
	reader    *csv.Reader
	headers   []string
	headerIdx map[string]int
	trim      bool
	line      int // 1-based, header is line 1
	dataRows  int
}

// ParserOption configures a CSVParser.
type ParserOption func(*CSVParser)

// WithDelimiter overrides the comma delimiter.
func WithDelimiter(d rune) ParserOption {
	return func(p *CSVParser) { p.reader.Comma = d }
}

// WithLazyQuotes toggles tolerant quote handling.
func WithLazyQuotes(lazy bool) ParserOption {
	return func(p *CSVParser) { p.reader.LazyQuotes = lazy }
}

// WithTrimSpace toggles trimming of surrounding whitespace on headers
// and values.
func WithTrimSpace(trim bool) ParserOption {
	return func(p *CSVParser) {
		p.trim = trim
		p.reader.TrimLeadingSpace = trim
	}
}

// NewCSVParser wraps r, verifying the stream starts with valid UTF-8.
func NewCSVParser(r io.Reader, opts ...ParserOption) (*CSVParser, error) {
	br := bufio.NewReader(r)

	head, err := br.Peek(3)
	if err != nil && err != io.EOF {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	if len(head) == 3 && head[0] == utf8BOM[0] && head[1] == utf8BOM[1] && head[2] == utf8BOM[2] {
		_, _ = br.Discard(3)
	}

	// Sample the first 4K to reject non-UTF-8 uploads before row
	// parsing produces garbage field values.
	sample, err := br.Peek(4096)
	if err != nil && err != io.EOF {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	if len(sample) == 0 {
		return nil, ErrEmptyFile
	}
	if !utf8.Valid(trimPartialRune(sample)) {
		return nil, ErrInvalidEncoding
	}

	p := &CSVParser{
		reader:    csv.NewReader(br),
		headerIdx: make(map[string]int),
		trim:      true,
	}
	p.reader.LazyQuotes = true
	p.reader.TrimLeadingSpace = true
	p.reader.FieldsPerRecord = -1

	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// trimPartialRune drops trailing bytes that may be the prefix of a
// rune cut off by the sample boundary.
func trimPartialRune(b []byte) []byte {
	for i := 0; i < utf8.UTFMax && len(b) > 0; i++ {
		if r, _ := utf8.DecodeLastRune(b); r != utf8.RuneError {
			break
		}
		b = b[:len(b)-1]
	}
	return b
}

// ParseHeader consumes the first row as column names.
func (p *CSVParser) ParseHeader() error {
	record, err := p.reader.Read()
	if err == io.EOF {
		return ErrMissingHeader
	}
	if err != nil {
		return fmt.Errorf("read csv header: %w", err)
	}

	p.headers = make([]string, len(record))
	for i, h := range record {
		if p.trim {
			h = strings.TrimSpace(h)
		}
		p.headers[i] = h
		p.headerIdx[h] = i
	}
	p.line = 1
	return nil
}

// Headers returns the column names in file order.
func (p *CSVParser) Headers() []string {
	return p.headers
}

// HasHeader reports whether the file declares the given column.
func (p *CSVParser) HasHeader(name string) bool {
	_, ok := p.headerIdx[name]
	return ok
}

// ValidateHeaders returns the required columns the file is missing.
func (p *CSVParser) ValidateHeaders(required []string) []string {
	var missing []string
	for _, name := range required {
		if !p.HasHeader(name) {
			missing = append(missing, name)
		}
	}
	return missing
}

// Row is one data row keyed by header name.
type Row struct {
	LineNumber int
	Data       map[string]string
}

// Get returns the value in the named column, or "" when absent.
func (r *Row) Get(header string) string {
	return r.Data[header]
}

// GetOrDefault returns the named column's value, or def when the
// column is absent or empty.
func (r *Row) GetOrDefault(header, def string) string {
	if v := r.Data[header]; v != "" {
		return v
	}
	return def
}

// IsEmpty reports whether every field in the row is blank.
func (r *Row) IsEmpty() bool {
	for _, v := range r.Data {
		if v != "" {
			return false
		}
	}
	return true
}

// ReadRow returns the next data row, or io.EOF at end of input. Short
// records leave the remaining columns empty; extra fields beyond the
// header are ignored.
func (p *CSVParser) ReadRow() (*Row, error) {
	record, err := p.reader.Read()
	if err == io.EOF {
		return nil, io.EOF
	}
	p.line++
	if err != nil {
		return nil, fmt.Errorf("read csv row %d: %w", p.line, err)
	}
	p.dataRows++

	row := &Row{
		LineNumber: p.line,
		Data:       make(map[string]string, len(p.headers)),
	}
	for i, header := range p.headers {
		var value string
		if i < len(record) {
			value = record[i]
			if p.trim {
				value = strings.TrimSpace(value)
			}
		}
		row.Data[header] = value
	}
	return row, nil
}

// ReadAllRows drains the parser, skipping blank rows.
func (p *CSVParser) ReadAllRows() ([]*Row, error) {
	var rows []*Row
	for {
		row, err := p.ReadRow()
		if err == io.EOF {
			return rows, nil
		}
		if err != nil {
			return rows, err
		}
		if !row.IsEmpty() {
			rows = append(rows, row)
		}
	}
}

// CurrentRow returns the 1-based line number of the last row read.
func (p *CSVParser) CurrentRow() int {
	return p.line
}

// TotalRows returns how many data rows have been read so far.
func (p *CSVParser) TotalRows() int {
	return p.dataRows
}
