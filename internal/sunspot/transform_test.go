package sunspot

import (
	"math"
	"testing"
)

// monthlyRecords builds one record per month for firstYear..lastYear with
// SIDC-style mid-month fractional dates.
func monthlyRecords(firstYear, lastYear int) []Observation {
	var records []Observation
	for y := firstYear; y <= lastYear; y++ {
		for m := 1; m <= 12; m++ {
			records = append(records, Observation{
				Year:           y,
				Month:          m,
				FractionalDate: float64(y) + (float64(m)-0.5)/12,
				Mean:           float64((y-firstYear)*12 + m),
				Std:            -1,
				Observations:   -1,
				Marker:         "1",
			})
		}
	}
	return records
}

func mustDataset(t *testing.T, records []Observation) *Dataset {
	t.Helper()
	ds, err := NewDataset(records)
	if err != nil {
		t.Fatalf("NewDataset failed: %v", err)
	}
	return ds
}

func TestFilterYears(t *testing.T) {
	records := monthlyRecords(1749, 2022)

	rows := FilterYears(records, 1980, 1985)
	if len(rows) != 72 {
		t.Fatalf("Expected 72 rows, got %d", len(rows))
	}

	for i, r := range rows {
		if r.Year < 1980 || r.Year > 1985 {
			t.Errorf("Row %d: year %d outside [1980, 1985]", i, r.Year)
		}
		if i > 0 {
			prev := rows[i-1]
			if r.Year*12+r.Month <= prev.Year*12+prev.Month {
				t.Errorf("Row %d: order not preserved (%d-%02d after %d-%02d)", i, r.Year, r.Month, prev.Year, prev.Month)
			}
		}
	}

	if rows[0].Year != 1980 || rows[0].Month != 1 {
		t.Errorf("Expected first row 1980-01, got %d-%02d", rows[0].Year, rows[0].Month)
	}
	if rows[71].Year != 1985 || rows[71].Month != 12 {
		t.Errorf("Expected last row 1985-12, got %d-%02d", rows[71].Year, rows[71].Month)
	}
}

func TestFilterYearsSingleYearAndEmpty(t *testing.T) {
	records := monthlyRecords(2000, 2002)

	if got := len(FilterYears(records, 2001, 2001)); got != 12 {
		t.Errorf("Expected 12 rows for a single year, got %d", got)
	}

	empty := FilterYears(records, 1900, 1910)
	if empty == nil || len(empty) != 0 {
		t.Errorf("Expected empty non-nil result, got %v", empty)
	}
}

func TestSmoothWindowThree(t *testing.T) {
	rows := make([]FilteredRow, 12)
	for i := range rows {
		rows[i] = FilteredRow{Year: 2000, Month: i + 1, Mean: float64(i + 1)}
	}

	points := Smooth(rows, 3)
	if len(points) != 10 {
		t.Fatalf("Expected 10 points, got %d", len(points))
	}
	if points[0].Average != 2.0 {
		t.Errorf("Expected first average 2.0, got %f", points[0].Average)
	}
	if points[9].Average != 11.0 {
		t.Errorf("Expected last average 11.0, got %f", points[9].Average)
	}
	if points[0].Month != 3 {
		t.Errorf("Expected first point aligned to month 3, got %d", points[0].Month)
	}
}

func TestSmoothIdentity(t *testing.T) {
	rows := FilterYears(monthlyRecords(1990, 1991), 1990, 1991)

	points := Smooth(rows, 1)
	if len(points) != len(rows) {
		t.Fatalf("Expected %d points, got %d", len(rows), len(points))
	}
	for i := range rows {
		if points[i].Average != rows[i].Mean {
			t.Errorf("Point %d: expected %f, got %f", i, rows[i].Mean, points[i].Average)
		}
	}
}

func TestSmoothLengths(t *testing.T) {
	rows := FilterYears(monthlyRecords(1990, 1990), 1990, 1990)

	for w := 1; w <= 20; w++ {
		got := len(Smooth(rows, w))
		want := len(rows) - (w - 1)
		if w > len(rows) {
			want = 0
		}
		if got != want {
			t.Errorf("Window %d: expected %d points, got %d", w, want, got)
		}
	}

	if got := len(Smooth(rows, 0)); got != 0 {
		t.Errorf("Window 0: expected no points, got %d", got)
	}
	if got := len(Smooth(nil, 3)); got != 0 {
		t.Errorf("Empty input: expected no points, got %d", got)
	}
}

func TestCycleAggregateOrder(t *testing.T) {
	ds := mustDataset(t, monthlyRecords(1975, 1990))

	points := CycleAggregate(ds, Span{1980, 1982}, Span{1, 3}, 11)
	if len(points) != 4 {
		t.Fatalf("Expected 4 points, got %d", len(points))
	}

	want := [][2]int{{1980, 1}, {1980, 2}, {1981, 1}, {1981, 2}}
	for i, w := range want {
		if points[i].Year != w[0] || points[i].Month != w[1] {
			t.Errorf("Point %d: expected %d-%02d, got %d-%02d", i, w[0], w[1], points[i].Year, points[i].Month)
		}
		rec, _ := ds.Lookup(w[0], w[1])
		if points[i].Count != rec.Mean {
			t.Errorf("Point %d: expected count %f, got %f", i, rec.Mean, points[i].Count)
		}
		if math.Abs(points[i].Phase-math.Mod(rec.FractionalDate, 11)) > 1e-9 {
			t.Errorf("Point %d: unexpected phase %f", i, points[i].Phase)
		}
	}
}

func TestCycleAggregatePhaseRange(t *testing.T) {
	ds := mustDataset(t, monthlyRecords(1749, 2022))

	for _, cycle := range []float64{1, 7, 11, 20} {
		points := CycleAggregate(ds, Span{1749, 2023}, Span{1, 13}, cycle)
		if len(points) != ds.Len() {
			t.Errorf("Cycle %v: expected %d points, got %d", cycle, ds.Len(), len(points))
		}
		for _, p := range points {
			if p.Phase < 0 || p.Phase >= cycle {
				t.Fatalf("Cycle %v: phase %f outside [0, %v)", cycle, p.Phase, cycle)
			}
		}
	}
}

func TestCycleAggregateSkipsMissing(t *testing.T) {
	records := monthlyRecords(2000, 2001)
	// Drop 2000-06
	records = append(records[:5], records[6:]...)
	ds := mustDataset(t, records)

	points := CycleAggregate(ds, Span{1999, 2001}, Span{5, 8}, 11)
	if len(points) != 2 {
		t.Fatalf("Expected 2 points (1999 absent, 2000-06 absent), got %d", len(points))
	}
	if points[0].Month != 5 || points[1].Month != 7 {
		t.Errorf("Expected months 5 and 7, got %d and %d", points[0].Month, points[1].Month)
	}
}

func TestCycleAggregateInvalidCycle(t *testing.T) {
	ds := mustDataset(t, monthlyRecords(2000, 2000))

	for _, cycle := range []float64{0, -11, math.NaN()} {
		if got := CycleAggregate(ds, Span{2000, 2001}, Span{1, 13}, cycle); len(got) != 0 {
			t.Errorf("Cycle %v: expected no points, got %d", cycle, len(got))
		}
	}
}

func TestPhaseNegativeDate(t *testing.T) {
	p := Phase(-1.5, 11)
	if math.Abs(p-9.5) > 1e-12 {
		t.Errorf("Expected 9.5, got %f", p)
	}
}

func TestCycleColumns(t *testing.T) {
	ds := mustDataset(t, monthlyRecords(1980, 1981))
	points := CycleAggregate(ds, Closed(1980, 1981), Closed(1, 2), 11)

	years, months, phases, counts := CycleColumns(points)
	if len(years) != 4 || len(months) != 4 || len(phases) != 4 || len(counts) != 4 {
		t.Fatalf("Expected 4 entries per column, got %d/%d/%d/%d", len(years), len(months), len(phases), len(counts))
	}
	if years[2] != 1981 || months[2] != 1 {
		t.Errorf("Expected third entry 1981-01, got %d-%02d", years[2], months[2])
	}
}
