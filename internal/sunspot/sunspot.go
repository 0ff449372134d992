// Package sunspot provides the monthly sunspot dataset and the transforms
// the dashboard runs against it.
//
// The dataset is the SIDC/SILSO monthly mean total sunspot number
// (SN_m_tot_V2.0.csv). It is loaded once at process start and never mutated;
// every transform returns a freshly allocated view.
package sunspot

import (
	"errors"
	"fmt"
)

// SchemaVersion is the current sunspot record schema version.
const SchemaVersion = 1

var (
	// ErrDuplicateKey is returned when two records share a (year, month) key.
	ErrDuplicateKey = errors.New("duplicate (year, month) key")
	// ErrUnordered is returned when fractional dates decrease along the sequence.
	ErrUnordered = errors.New("fractional dates out of order")
	// ErrEmpty is returned when a dataset source holds no records.
	ErrEmpty = errors.New("dataset is empty")
)

// Observation is one monthly record of the SIDC dataset.
//
// Std and Observations are -1 where SIDC has no value (early years).
// Marker is "1" for a definitive value and "0" for a provisional one.
type Observation struct {
	Year           int     `parquet:"year" ch:"year"`
	Month          int     `parquet:"month" ch:"month"`
	FractionalDate float64 `parquet:"fraction_date" ch:"fraction_date"`
	Mean           float64 `parquet:"mean_sunspot" ch:"mean_sunspot"`
	Std            float64 `parquet:"mean_std" ch:"mean_std"`
	Observations   int     `parquet:"observations" ch:"observations"`
	Marker         string  `parquet:"marker" ch:"marker"`
}

type monthKey struct {
	year  int
	month int
}

// Dataset is the immutable, ordered table of observations.
// It is safe for concurrent use since nothing writes to it after NewDataset.
type Dataset struct {
	records []Observation
	index   map[monthKey]int
}

// NewDataset validates records and builds the lookup index.
// The slice is copied; later changes by the caller are not observed.
func NewDataset(records []Observation) (*Dataset, error) {
	if len(records) == 0 {
		return nil, ErrEmpty
	}

	ds := &Dataset{
		records: make([]Observation, len(records)),
		index:   make(map[monthKey]int, len(records)),
	}
	copy(ds.records, records)

	for i, rec := range ds.records {
		key := monthKey{rec.Year, rec.Month}
		if prev, ok := ds.index[key]; ok {
			return nil, fmt.Errorf("%w: %04d-%02d at rows %d and %d", ErrDuplicateKey, rec.Year, rec.Month, prev, i)
		}
		if i > 0 && rec.FractionalDate < ds.records[i-1].FractionalDate {
			return nil, fmt.Errorf("%w: row %d (%.3f) after %.3f", ErrUnordered, i, rec.FractionalDate, ds.records[i-1].FractionalDate)
		}
		ds.index[key] = i
	}

	return ds, nil
}

// Len returns the number of records.
func (d *Dataset) Len() int {
	return len(d.records)
}

// At returns the i-th record.
func (d *Dataset) At(i int) Observation {
	return d.records[i]
}

// Records returns a copy of all records in chronological order.
func (d *Dataset) Records() []Observation {
	out := make([]Observation, len(d.records))
	copy(out, d.records)
	return out
}

// Lookup returns the record for (year, month), if present.
func (d *Dataset) Lookup(year, month int) (Observation, bool) {
	i, ok := d.index[monthKey{year, month}]
	if !ok {
		return Observation{}, false
	}
	return d.records[i], true
}

// YearSpan returns the first and last year covered by the dataset.
func (d *Dataset) YearSpan() (first, last int) {
	return d.records[0].Year, d.records[len(d.records)-1].Year
}
