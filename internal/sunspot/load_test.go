package sunspot

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const sidcSample = `1749;01;1749.042;  96.7; -1.0;   -1;1
1749;02;1749.123; 104.3; -1.0;   -1;1

# comment lines are ignored
1749;03;1749.204; 116.7; -1.0;   -1;1
2022;12;2022.958; 113.1; 16.1; 1223;0
`

func TestParseSIDC(t *testing.T) {
	stats := &ParseStats{}
	records, err := ParseSIDC(strings.NewReader(sidcSample), stats)
	if err != nil {
		t.Fatalf("ParseSIDC failed: %v", err)
	}

	if len(records) != 4 {
		t.Fatalf("Expected 4 records, got %d", len(records))
	}
	if stats.ParsedRecords != 4 || stats.SkippedEmptyRows != 2 {
		t.Errorf("Unexpected stats: %+v", *stats)
	}

	first := records[0]
	if first.Year != 1749 || first.Month != 1 || first.FractionalDate != 1749.042 || first.Mean != 96.7 {
		t.Errorf("Unexpected first record: %+v", first)
	}
	if first.Std != -1 || first.Observations != -1 || first.Marker != "1" {
		t.Errorf("Unexpected first record trailer: %+v", first)
	}

	last := records[3]
	if last.Observations != 1223 || last.Std != 16.1 || last.Marker != "0" {
		t.Errorf("Unexpected last record: %+v", last)
	}
}

func TestParseSIDCMalformed(t *testing.T) {
	cases := map[string]string{
		"short row":    "1749;01;1749.042;96.7;-1.0;-1\n",
		"bad year":     "17x9;01;1749.042;96.7;-1.0;-1;1\n",
		"bad mean":     "1749;01;1749.042;n/a;-1.0;-1;1\n",
		"month range":  "1749;13;1749.042;96.7;-1.0;-1;1\n",
		"extra column": "1749;01;1749.042;96.7;-1.0;-1;1;x\n",
	}

	for name, input := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := ParseSIDC(strings.NewReader(input), nil); err == nil {
				t.Errorf("Expected error for %q", input)
			}
		})
	}
}

func TestParseSIDCReportsLine(t *testing.T) {
	input := "1749;01;1749.042;96.7;-1.0;-1;1\n1749;02;oops;104.3;-1.0;-1;1\n"
	_, err := ParseSIDC(strings.NewReader(input), nil)
	if err == nil || !strings.Contains(err.Error(), "line 2") {
		t.Errorf("Expected line 2 error, got %v", err)
	}
}

func TestNewDatasetInvariants(t *testing.T) {
	records := monthlyRecords(2000, 2000)

	dup := append([]Observation{}, records...)
	dup[3].Month = 3
	dup[3].FractionalDate = dup[2].FractionalDate
	if _, err := NewDataset(dup); !errors.Is(err, ErrDuplicateKey) {
		t.Errorf("Expected ErrDuplicateKey, got %v", err)
	}

	unordered := append([]Observation{}, records...)
	unordered[5].FractionalDate = 1999.5
	if _, err := NewDataset(unordered); !errors.Is(err, ErrUnordered) {
		t.Errorf("Expected ErrUnordered, got %v", err)
	}

	if _, err := NewDataset(nil); !errors.Is(err, ErrEmpty) {
		t.Errorf("Expected ErrEmpty, got %v", err)
	}
}

func TestDatasetIsImmutable(t *testing.T) {
	records := monthlyRecords(2000, 2000)
	ds := mustDataset(t, records)

	records[0].Mean = -999
	out := ds.Records()
	out[1].Mean = -999

	if ds.At(0).Mean == -999 || ds.At(1).Mean == -999 {
		t.Error("Dataset was mutated through caller slices")
	}

	first, last := ds.YearSpan()
	if first != 2000 || last != 2000 {
		t.Errorf("Expected span 2000-2000, got %d-%d", first, last)
	}

	if _, ok := ds.Lookup(2000, 13); ok {
		t.Error("Expected lookup miss for month 13")
	}
	if rec, ok := ds.Lookup(2000, 7); !ok || rec.Month != 7 {
		t.Errorf("Expected lookup hit for 2000-07, got %+v %v", rec, ok)
	}
}

func TestWriteSIDCRoundTrip(t *testing.T) {
	records, err := ParseSIDC(strings.NewReader(sidcSample), nil)
	if err != nil {
		t.Fatalf("ParseSIDC failed: %v", err)
	}

	var buf bytes.Buffer
	if err := WriteSIDC(&buf, records); err != nil {
		t.Fatalf("WriteSIDC failed: %v", err)
	}

	again, err := ParseSIDC(&buf, nil)
	if err != nil {
		t.Fatalf("Reparse failed: %v", err)
	}
	if len(again) != len(records) {
		t.Fatalf("Expected %d records, got %d", len(records), len(again))
	}
	for i := range records {
		if again[i] != records[i] {
			t.Errorf("Record %d: expected %+v, got %+v", i, records[i], again[i])
		}
	}
}

func TestFileFormats(t *testing.T) {
	records, err := ParseSIDC(strings.NewReader(sidcSample), nil)
	if err != nil {
		t.Fatalf("ParseSIDC failed: %v", err)
	}

	dir := t.TempDir()
	for _, name := range []string{"monthly.csv", "monthly.csv.gz", "monthly.csv.zst", "monthly.parquet"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, name)
			if err := WriteFile(path, records); err != nil {
				t.Fatalf("WriteFile failed: %v", err)
			}
			if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
				t.Errorf("Temp file left behind: %v", err)
			}

			ds, err := LoadFile(path)
			if err != nil {
				t.Fatalf("LoadFile failed: %v", err)
			}
			if ds.Len() != len(records) {
				t.Fatalf("Expected %d records, got %d", len(records), ds.Len())
			}
			for i := range records {
				if ds.At(i) != records[i] {
					t.Errorf("Record %d: expected %+v, got %+v", i, records[i], ds.At(i))
				}
			}
		})
	}
}

func TestLoadFileErrors(t *testing.T) {
	dir := t.TempDir()

	if _, err := LoadFile(filepath.Join(dir, "missing.csv")); err == nil {
		t.Error("Expected error for missing file")
	}

	unknown := filepath.Join(dir, "monthly.xlsx")
	if err := os.WriteFile(unknown, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFile(unknown); err == nil {
		t.Error("Expected error for unknown format")
	}

	bad := filepath.Join(dir, "bad.csv")
	if err := os.WriteFile(bad, []byte("1749;01;1749.042\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFile(bad); err == nil {
		t.Error("Expected error for malformed file")
	}

	empty := filepath.Join(dir, "empty.csv")
	if err := os.WriteFile(empty, nil, 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFile(empty); !errors.Is(err, ErrEmpty) {
		t.Errorf("Expected ErrEmpty, got %v", err)
	}
}
