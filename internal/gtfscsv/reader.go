// Package gtfscsv streams GTFS static tables row by row so that even the
// largest table (stop_times) is never resident in memory.
package gtfscsv

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// MissingFileError reports a required table that does not exist on disk.
// It is fatal: callers abort the whole pipeline rather than skipping the table.
type MissingFileError struct {
	Path string
}

func (e *MissingFileError) Error() string {
	return fmt.Sprintf("required GTFS table is missing: %s", e.Path)
}

// Record maps a header field name to the trimmed value from the current row.
type Record map[string]string

// Reader streams one delimited table. Rows with more or fewer fields than the
// header are accepted: extra fields are dropped, missing ones read as "".
type Reader struct {
	file    *os.File
	csv     *csv.Reader
	headers []string
	record  Record
	err     error
}

// Open prepares a streaming reader over the table at path. The header row is
// consumed immediately; data rows are produced by Next. The file handle is
// held until Close (or until the scan hits EOF and Close is called).
func Open(path string) (*Reader, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, &MissingFileError{Path: path}
		}
		return nil, fmt.Errorf("error opening table %s: %w", path, err)
	}

	cr := csv.NewReader(file)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.TrimLeadingSpace = true

	headers, err := cr.Read()
	if err != nil {
		file.Close() // nolint:errcheck
		if err == io.EOF {
			return nil, fmt.Errorf("table %s has no header row", path)
		}
		return nil, fmt.Errorf("error reading header of %s: %w", path, err)
	}

	for i := range headers {
		headers[i] = strings.TrimSpace(headers[i])
	}
	// Feeds exported on Windows often carry a UTF-8 BOM on the first header.
	if len(headers) > 0 {
		headers[0] = strings.TrimPrefix(headers[0], "\ufeff")
	}

	return &Reader{
		file:    file,
		csv:     cr,
		headers: headers,
	}, nil
}

// Headers returns the field names from the header row, in file order.
func (r *Reader) Headers() []string {
	return r.headers
}

// Next advances to the next data row. It returns false at EOF or on a read
// error; callers distinguish the two via Err.
func (r *Reader) Next() bool {
	if r.err != nil {
		return false
	}

	row, err := r.csv.Read()
	if err == io.EOF {
		return false
	}
	if err != nil {
		r.err = err
		return false
	}

	record := make(Record, len(r.headers))
	for i, name := range r.headers {
		if i < len(row) {
			record[name] = strings.TrimSpace(row[i])
		} else {
			record[name] = ""
		}
	}
	r.record = record
	return true
}

// Record returns the row produced by the last successful call to Next.
func (r *Reader) Record() Record {
	return r.record
}

// Err returns the first read error encountered, if any. EOF is not an error.
func (r *Reader) Err() error {
	return r.err
}

func (r *Reader) Close() error {
	return r.file.Close()
}
