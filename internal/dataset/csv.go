package dataset

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/classmap/runtime/internal/errhandling"
	"github.com/classmap/runtime/internal/pathutil"
)

// Error codes for dataset loading
const (
	ErrCodeLoadFailed    = "LOAD_FAILED"
	ErrCodeMissingColumn = "MISSING_COLUMN"
	ErrCodeBadRow        = "BAD_ROW"
	ErrCodeEmptyDataset  = "EMPTY_DATASET"
)

// Canonical field names accepted in the columns mapping.
const (
	FieldClassification = "classification"
	FieldAge            = "age"
	FieldCounty         = "county"
	FieldCountyCode     = "countyCode"
	FieldState          = "state"
)

// defaultHeaders maps canonical field names to the conventional CSV headers.
var defaultHeaders = map[string]string{
	FieldClassification: "CLASSIFICATION",
	FieldAge:            "AGE",
	FieldCounty:         "COUNTY",
	FieldCountyCode:     "COUNTY_CODE",
	FieldState:          "STATE",
}

// Source fetches the full record table from a source system.
type Source interface {
	// Fetch reads the complete record set. The context can be used to
	// cancel long-running loads. Malformed rows are a fatal load error.
	Fetch(ctx context.Context) (Table, error)
	// Close releases any resources held by the source.
	Close() error
}

// CSVSource loads records from a delimited file. It is the only production
// source; tests substitute in-memory sources behind the Source interface.
type CSVSource struct {
	path    string
	headers map[string]string
	script  *FieldScript
}

// NewCSVSource creates a CSV source for the given path. The columns map
// overrides the default header name for any canonical field. The optional
// script adds derived fields per record at load time.
func NewCSVSource(path string, columns map[string]string, script *FieldScript) (*CSVSource, error) {
	if err := pathutil.ValidateFilePath(path); err != nil {
		return nil, errhandling.NewInputError(ErrCodeLoadFailed, err.Error(), err)
	}

	headers := make(map[string]string, len(defaultHeaders))
	for field, header := range defaultHeaders {
		headers[field] = header
	}
	for field, header := range columns {
		if _, ok := defaultHeaders[field]; !ok {
			return nil, errhandling.NewInputError(ErrCodeMissingColumn,
				fmt.Sprintf("unknown canonical field %q in columns mapping", field), nil)
		}
		headers[field] = header
	}

	return &CSVSource{path: path, headers: headers, script: script}, nil
}

// Fetch reads and types the whole file. Any I/O failure, missing column, or
// malformed row aborts the load; there is no partial dataset.
func (s *CSVSource) Fetch(ctx context.Context) (Table, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, errhandling.NewIOError(ErrCodeLoadFailed,
			fmt.Sprintf("opening dataset %s", s.path), err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, errhandling.NewSchemaError(ErrCodeLoadFailed,
			fmt.Sprintf("reading header of %s", s.path), err)
	}

	cols, err := s.resolveColumns(header)
	if err != nil {
		return nil, err
	}

	var table Table
	rowNum := 1
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		rowNum++
		if err != nil {
			return nil, errhandling.NewSchemaError(ErrCodeBadRow,
				fmt.Sprintf("row %d: %v", rowNum, err), err)
		}

		rec, err := s.parseRow(row, cols, rowNum)
		if err != nil {
			return nil, err
		}
		table = append(table, rec)
	}

	if len(table) == 0 {
		return nil, errhandling.NewSchemaError(ErrCodeEmptyDataset,
			fmt.Sprintf("dataset %s contains no records", s.path), nil)
	}
	return table, nil
}

// Close releases the source. CSV sources hold no state between fetches.
func (s *CSVSource) Close() error {
	return nil
}

// columnIndexes holds the resolved position of each canonical field.
type columnIndexes struct {
	classification int
	age            int
	county         int
	countyCode     int
	state          int
}

// resolveColumns maps the header row to field positions. Every canonical
// field must be present; a missing column is a fatal schema error.
func (s *CSVSource) resolveColumns(header []string) (columnIndexes, error) {
	pos := make(map[string]int, len(header))
	for i, h := range header {
		pos[strings.TrimSpace(h)] = i
	}

	cols := columnIndexes{}
	targets := []struct {
		field string
		dst   *int
	}{
		{FieldClassification, &cols.classification},
		{FieldAge, &cols.age},
		{FieldCounty, &cols.county},
		{FieldCountyCode, &cols.countyCode},
		{FieldState, &cols.state},
	}
	for _, t := range targets {
		idx, ok := pos[s.headers[t.field]]
		if !ok {
			return cols, errhandling.NewSchemaError(ErrCodeMissingColumn,
				fmt.Sprintf("dataset %s is missing column %q (field %s)", s.path, s.headers[t.field], t.field), nil)
		}
		*t.dst = idx
	}
	return cols, nil
}

// parseRow types one CSV row. County codes are kept as opaque strings.
func (s *CSVSource) parseRow(row []string, cols columnIndexes, rowNum int) (Record, error) {
	max := cols.classification
	for _, idx := range []int{cols.age, cols.county, cols.countyCode, cols.state} {
		if idx > max {
			max = idx
		}
	}
	if len(row) <= max {
		return Record{}, errhandling.NewSchemaError(ErrCodeBadRow,
			fmt.Sprintf("row %d has %d fields, need %d", rowNum, len(row), max+1), nil)
	}

	classification, err := strconv.Atoi(strings.TrimSpace(row[cols.classification]))
	if err != nil {
		return Record{}, errhandling.NewSchemaError(ErrCodeBadRow,
			fmt.Sprintf("row %d: classification %q is not an integer", rowNum, row[cols.classification]), err)
	}

	age, err := strconv.ParseFloat(strings.TrimSpace(row[cols.age]), 64)
	if err != nil {
		return Record{}, errhandling.NewSchemaError(ErrCodeBadRow,
			fmt.Sprintf("row %d: age %q is not numeric", rowNum, row[cols.age]), err)
	}

	rec := Record{
		Classification: classification,
		Age:            age,
		AgeBand:        DeriveAgeBand(age),
		County:         strings.TrimSpace(row[cols.county]),
		CountyCode:     strings.TrimSpace(row[cols.countyCode]),
		State:          strings.TrimSpace(row[cols.state]),
	}

	if s.script != nil {
		extra, err := s.script.Apply(rec.AsMap())
		if err != nil {
			return Record{}, errhandling.NewSchemaError(ErrCodeBadRow,
				fmt.Sprintf("row %d: derived-field script failed: %v", rowNum, err), err)
		}
		rec.Extra = extra
	}

	return rec, nil
}
