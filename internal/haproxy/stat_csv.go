package haproxy

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"
)

// ParseStatCSV decodes the output of "show stat". The first byte must be the
// '#' that comments out the header row.
func ParseStatCSV(data []byte) ([]Statistic, error) {
	if len(data) == 0 || data[0] != '#' {
		return nil, &StatCSVError{Kind: CSVMissingMarker}
	}

	r := csv.NewReader(bytes.NewReader(data[1:]))
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if errors.Is(err, io.EOF) {
		return nil, &StatCSVError{Kind: CSVHeaderMissing}
	}
	if err != nil {
		return nil, &StatCSVError{Kind: CSVParseFailed, Err: err}
	}

	typePos, svnamePos := -1, -1
	for i, name := range header {
		if !utf8.ValidString(name) {
			return nil, &StatCSVError{Kind: CSVHeaderDecodeFailed, Err: fmt.Errorf("column %d: %w", i, errInvalidUTF8)}
		}
		name = strings.TrimSpace(name)
		header[i] = name
		switch name {
		case "type":
			if typePos < 0 {
				typePos = i
			}
		case "svname":
			if svnamePos < 0 {
				svnamePos = i
			}
		}
	}
	if typePos < 0 {
		return nil, &StatCSVError{Kind: CSVColumnMissing, Column: "type"}
	}
	if svnamePos < 0 {
		return nil, &StatCSVError{Kind: CSVColumnMissing, Column: "svname"}
	}

	var stats []Statistic
	for row := 1; ; row++ {
		record, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, &StatCSVError{Kind: CSVParseFailed, Row: row, Err: err}
		}

		if typePos >= len(record) {
			return nil, &StatCSVError{Kind: CSVCellMissing, Row: row, Column: "type"}
		}
		if svnamePos >= len(record) {
			return nil, &StatCSVError{Kind: CSVCellMissing, Row: row, Column: "svname"}
		}

		stat, err := decodeStatistic(row, rowAttrs(header, record))
		if err != nil {
			return nil, csvRowError(row, err)
		}
		stats = append(stats, stat)
	}
	return stats, nil
}

// rowAttrs pairs header names with cells. Empty cells are kept; binding
// treats them as absent for numeric and optional fields.
func rowAttrs(header, record []string) map[string]any {
	attrs := make(map[string]any, len(header))
	for i, cell := range record {
		if i >= len(header) || header[i] == "" {
			continue
		}
		if _, dup := attrs[header[i]]; dup {
			continue
		}
		attrs[header[i]] = cell
	}
	return attrs
}

func csvRowError(row int, err error) error {
	kind := CSVRowDecodeFailed
	var rowErr *RowError
	if errors.As(err, &rowErr) {
		switch rowErr.Kind {
		case RowValueMismatch:
			kind = CSVRowValueMismatch
		case RowUnknownType:
			kind = CSVUnknownType
		}
	}
	return &StatCSVError{Kind: kind, Row: row, Err: err}
}
