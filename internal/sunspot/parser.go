package sunspot

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// =============================================================================
// SIDC Monthly Format
// =============================================================================

const (
	// Field separator used by SILSO data files
	Separator = ';'

	// Column indices (SN_m_tot_V2.0.csv)
	ColYear         = 0
	ColMonth        = 1
	ColFractionDate = 2
	ColMean         = 3
	ColStd          = 4
	ColObservations = 5
	ColMarker       = 6

	// ColumnCount is the exact number of fields per record
	ColumnCount = 7
)

// ParseStats holds statistics for a parsing operation.
type ParseStats struct {
	TotalLinesRead   int64 // Lines read from the input
	ParsedRecords    int64 // Records successfully parsed
	SkippedEmptyRows int64 // Blank and comment lines skipped
}

// ParseSIDC reads the SILSO monthly format:
//
//	YYYY;MM;decimal_year;SSN;std_dev;observations;marker
//
// Parsing is strict: a wrong column count or an unparsable field fails the
// whole read with the offending line number. Blank and '#' lines are skipped.
func ParseSIDC(r io.Reader, stats *ParseStats) ([]Observation, error) {
	if stats == nil {
		stats = &ParseStats{}
	}

	var records []Observation
	scanner := bufio.NewScanner(r)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		stats.TotalLinesRead++

		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			stats.SkippedEmptyRows++
			continue
		}

		rec, err := ParseSIDCLine(line)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNum, err)
		}

		records = append(records, rec)
		stats.ParsedRecords++
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read failed: %w", err)
	}

	return records, nil
}

// ParseSIDCLine parses a single semicolon-delimited record.
func ParseSIDCLine(line string) (Observation, error) {
	fields := strings.Split(line, string(Separator))
	if len(fields) != ColumnCount {
		return Observation{}, fmt.Errorf("expected %d columns, got %d", ColumnCount, len(fields))
	}

	var rec Observation
	var err error

	if rec.Year, err = parseInt(fields[ColYear]); err != nil {
		return Observation{}, fmt.Errorf("invalid year: %w", err)
	}

	if rec.Month, err = parseInt(fields[ColMonth]); err != nil {
		return Observation{}, fmt.Errorf("invalid month: %w", err)
	}
	if rec.Month < 1 || rec.Month > 12 {
		return Observation{}, fmt.Errorf("month out of range: %d", rec.Month)
	}

	if rec.FractionalDate, err = parseFloat(fields[ColFractionDate]); err != nil {
		return Observation{}, fmt.Errorf("invalid fraction date: %w", err)
	}

	if rec.Mean, err = parseFloat(fields[ColMean]); err != nil {
		return Observation{}, fmt.Errorf("invalid mean: %w", err)
	}

	if rec.Std, err = parseFloat(fields[ColStd]); err != nil {
		return Observation{}, fmt.Errorf("invalid std: %w", err)
	}

	if rec.Observations, err = parseInt(fields[ColObservations]); err != nil {
		return Observation{}, fmt.Errorf("invalid observations: %w", err)
	}

	rec.Marker = strings.TrimSpace(fields[ColMarker])

	return rec, nil
}

// WriteSIDC writes records in the SILSO monthly layout, padded the same way
// SILSO pads its own files.
func WriteSIDC(w io.Writer, records []Observation) error {
	bw := bufio.NewWriter(w)
	for _, rec := range records {
		if _, err := fmt.Fprintf(bw, "%04d;%02d;%8.3f;%6.1f;%5.1f;%5d;%s\n",
			rec.Year, rec.Month, rec.FractionalDate, rec.Mean, rec.Std, rec.Observations, rec.Marker); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// =============================================================================
// Numeric Parsing Helpers
// =============================================================================

func parseInt(s string) (int, error) {
	return strconv.Atoi(strings.TrimSpace(s))
}

func parseFloat(s string) (float64, error) {
	return strconv.ParseFloat(strings.TrimSpace(s), 64)
}
