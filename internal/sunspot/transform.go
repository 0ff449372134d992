package sunspot

import "math"

// FilteredRow is the (year, month, mean) projection produced by FilterYears.
type FilteredRow struct {
	Year  int     `json:"year"`
	Month int     `json:"month"`
	Mean  float64 `json:"mean_sunspot"`
}

// SmoothedPoint is one trailing-average value aligned to the last row of its window.
type SmoothedPoint struct {
	Year    int     `json:"year"`
	Month   int     `json:"month"`
	Average float64 `json:"rolling_avg"`
}

// CyclePoint pairs a record's cycle phase with its sunspot count.
type CyclePoint struct {
	Year  int     `json:"year"`
	Month int     `json:"month"`
	Phase float64 `json:"phase"`
	Count float64 `json:"mean_sunspot"`
}

// Span is a half-open integer range [Start, End).
type Span struct {
	Start int
	End   int
}

// Closed builds the Span covering lo..hi inclusive.
func Closed(lo, hi int) Span {
	return Span{Start: lo, End: hi + 1}
}

// Contains reports whether v lies in [Start, End).
func (s Span) Contains(v int) bool {
	return v >= s.Start && v < s.End
}

// FilterYears returns the rows whose year lies in [minYear, maxYear], both
// bounds inclusive, in their original order.
func FilterYears(records []Observation, minYear, maxYear int) []FilteredRow {
	out := make([]FilteredRow, 0)
	for _, rec := range records {
		if rec.Year < minYear || rec.Year > maxYear {
			continue
		}
		out = append(out, FilteredRow{Year: rec.Year, Month: rec.Month, Mean: rec.Mean})
	}
	return out
}

// Smooth computes the trailing mean of Mean over window rows. Positions
// without a full window of history are dropped, so the result has
// len(rows)-window+1 points, or none when window exceeds len(rows).
func Smooth(rows []FilteredRow, window int) []SmoothedPoint {
	if window < 1 || window > len(rows) {
		return []SmoothedPoint{}
	}

	out := make([]SmoothedPoint, 0, len(rows)-window+1)
	for i := window - 1; i < len(rows); i++ {
		var sum float64
		for _, r := range rows[i-window+1 : i+1] {
			sum += r.Mean
		}
		out = append(out, SmoothedPoint{
			Year:    rows[i].Year,
			Month:   rows[i].Month,
			Average: sum / float64(window),
		})
	}
	return out
}

// CycleAggregate folds records onto a cycle of the given length in years.
//
// years and months are half-open. Pairs are visited year-major, month-minor;
// a (year, month) with no record is skipped. Phase is FractionalDate mod
// cycle, normalised into [0, cycle). A non-positive cycle yields no points.
func CycleAggregate(ds *Dataset, years, months Span, cycle float64) []CyclePoint {
	out := make([]CyclePoint, 0)
	if cycle <= 0 || math.IsNaN(cycle) || math.IsInf(cycle, 0) {
		return out
	}

	for y := years.Start; y < years.End; y++ {
		for m := months.Start; m < months.End; m++ {
			rec, ok := ds.Lookup(y, m)
			if !ok {
				continue
			}
			out = append(out, CyclePoint{
				Year:  y,
				Month: m,
				Phase: Phase(rec.FractionalDate, cycle),
				Count: rec.Mean,
			})
		}
	}
	return out
}

// Phase returns date mod cycle in [0, cycle).
func Phase(date, cycle float64) float64 {
	p := math.Mod(date, cycle)
	if p < 0 {
		p += cycle
	}
	// -tiny + cycle can round up to cycle itself
	if p >= cycle {
		p = 0
	}
	return p
}

// CycleColumns splits points into parallel year, month, phase and count slices.
func CycleColumns(points []CyclePoint) (years, months []int, phases, counts []float64) {
	years = make([]int, len(points))
	months = make([]int, len(points))
	phases = make([]float64, len(points))
	counts = make([]float64, len(points))
	for i, p := range points {
		years[i] = p.Year
		months[i] = p.Month
		phases[i] = p.Phase
		counts[i] = p.Count
	}
	return years, months, phases, counts
}

// FilterYears runs FilterYears over the dataset without copying it.
func (d *Dataset) FilterYears(minYear, maxYear int) []FilteredRow {
	return FilterYears(d.records, minYear, maxYear)
}
