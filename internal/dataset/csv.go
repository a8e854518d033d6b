package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/lightscameradata/boxoffice/pkg/models"
)

// Column names of the release-season table.
const (
	ColumnSeason = "release_season"
	ColumnMean   = "mean"
	ColumnSEM    = "sem"
)

var (
	// ErrMissingColumn is returned when the header lacks a required column.
	ErrMissingColumn = errors.New("missing required column")

	// ErrDuplicateCategory is returned when a release season appears twice.
	ErrDuplicateCategory = errors.New("duplicate release season")

	// ErrEmpty is returned when the table has a header but no data rows.
	ErrEmpty = errors.New("no data rows")
)

// RowError describes a rejected cell. Line is 1-based and counts the header.
type RowError struct {
	Line   int
	Column string
	Value  string
	Err    error
}

func (e *RowError) Error() string {
	return fmt.Sprintf("line %d, column %s: %q: %v", e.Line, e.Column, e.Value, e.Err)
}

func (e *RowError) Unwrap() error { return e.Err }

// ParseCSV reads a release-season table. The header row is required; columns
// are matched by name so their order does not matter and extra columns are
// ignored. Rows come back in file order.
func ParseCSV(r io.Reader) ([]models.SeasonStat, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("read header: %w", ErrEmpty)
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	seasonIdx, meanIdx, semIdx := -1, -1, -1
	for i, h := range header {
		h = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		switch strings.ToLower(h) {
		case ColumnSeason:
			seasonIdx = i
		case ColumnMean:
			meanIdx = i
		case ColumnSEM:
			semIdx = i
		}
	}
	for name, idx := range map[string]int{ColumnSeason: seasonIdx, ColumnMean: meanIdx, ColumnSEM: semIdx} {
		if idx < 0 {
			return nil, fmt.Errorf("%w: %s", ErrMissingColumn, name)
		}
	}

	var stats []models.SeasonStat
	seen := make(map[string]bool)
	line := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, err
		}
		if isBlank(record) {
			continue
		}

		season := cell(record, seasonIdx)
		if season == "" {
			return nil, &RowError{Line: line, Column: ColumnSeason, Err: errors.New("empty category")}
		}
		if seen[season] {
			return nil, &RowError{Line: line, Column: ColumnSeason, Value: season, Err: ErrDuplicateCategory}
		}
		seen[season] = true

		mean, err := parseNumber(record, meanIdx)
		if err != nil {
			return nil, &RowError{Line: line, Column: ColumnMean, Value: cell(record, meanIdx), Err: err}
		}
		sem, err := parseNumber(record, semIdx)
		if err != nil {
			return nil, &RowError{Line: line, Column: ColumnSEM, Value: cell(record, semIdx), Err: err}
		}
		if sem < 0 {
			return nil, &RowError{Line: line, Column: ColumnSEM, Value: cell(record, semIdx), Err: errors.New("negative standard error")}
		}

		stats = append(stats, models.SeasonStat{ReleaseSeason: season, Mean: mean, SEM: sem})
	}

	if len(stats) == 0 {
		return nil, ErrEmpty
	}
	return stats, nil
}

func cell(record []string, idx int) string {
	if idx >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[idx])
}

// parseNumber rejects empty, non-numeric and non-finite cells.
func parseNumber(record []string, idx int) (float64, error) {
	s := cell(record, idx)
	if s == "" {
		return 0, errors.New("empty value")
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, errors.New("not a number")
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, errors.New("not a finite number")
	}
	return v, nil
}

func isBlank(record []string) bool {
	for _, f := range record {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}
