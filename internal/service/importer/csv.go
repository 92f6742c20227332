package importer

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Record is one raw CSV row keyed by trimmed header name.
type Record map[string]string

// Table is a parsed CSV file.
type Table struct {
	Header  []string
	Records []Record
}

var (
	ErrEmptyFile      = errors.New("CSV file is empty")
	ErrMissingColumns = errors.New("missing required columns")
)

// MissingColumnsError lists the required headers a file lacks.
type MissingColumnsError struct {
	Columns []string
}

func (e *MissingColumnsError) Error() string {
	return "Missing required columns: " + strings.Join(e.Columns, ", ")
}

func (e *MissingColumnsError) Unwrap() error { return ErrMissingColumns }

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ReadCSV parses a CSV file with a header line. A leading UTF-8 BOM is
// dropped and header names are trimmed. Rows may be shorter or longer than
// the header; missing cells read as "" and extra cells are ignored.
func ReadCSV(r io.Reader, required []string) (*Table, error) {
	br := bufio.NewReader(r)
	if head, err := br.Peek(len(utf8BOM)); err == nil && bytes.Equal(head, utf8BOM) {
		_, _ = br.Discard(len(utf8BOM))
	}

	cr := csv.NewReader(br)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrEmptyFile
		}
		return nil, fmt.Errorf("read header: %w", err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}

	if missing := missingColumns(header, required); len(missing) > 0 {
		return nil, &MissingColumnsError{Columns: missing}
	}

	t := &Table{Header: header}
	for {
		fields, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row %d: %w", len(t.Records)+2, err)
		}

		rec := make(Record, len(header))
		for i, name := range header {
			if name == "" {
				continue
			}
			if i < len(fields) {
				rec[name] = fields[i]
			} else {
				rec[name] = ""
			}
		}
		t.Records = append(t.Records, rec)
	}

	return t, nil
}

func missingColumns(header, required []string) []string {
	present := make(map[string]bool, len(header))
	for _, h := range header {
		present[h] = true
	}
	var missing []string
	for _, col := range required {
		if !present[col] {
			missing = append(missing, col)
		}
	}
	return missing
}
