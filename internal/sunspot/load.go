package sunspot

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zstd"
	"github.com/klauspost/pgzip"
	"github.com/parquet-go/parquet-go"
)

// Format identifies an on-disk dataset encoding.
type Format string

const (
	FormatText    Format = "text"    // SIDC semicolon text (.csv, .txt)
	FormatGzip    Format = "gzip"    // SIDC text, gzip compressed (.gz)
	FormatZstd    Format = "zstd"    // SIDC text, zstd compressed (.zst)
	FormatParquet Format = "parquet" // Columnar (.parquet)
	FormatUnknown Format = "unknown"
)

// parquetReadRows is the row buffer size for the parquet reader.
const parquetReadRows = 1024

// DetectFormat determines the dataset format from the file name.
func DetectFormat(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv", ".txt":
		return FormatText
	case ".gz":
		return FormatGzip
	case ".zst":
		return FormatZstd
	case ".parquet":
		return FormatParquet
	}
	return FormatUnknown
}

// LoadFile reads a dataset file in any supported format and validates it.
// A returned error is meant to be fatal for the caller; there is no partial load.
func LoadFile(path string) (*Dataset, error) {
	records, err := ReadFile(path)
	if err != nil {
		return nil, err
	}
	ds, err := NewDataset(records)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return ds, nil
}

// ReadFile reads the raw records of a dataset file without validating them.
func ReadFile(path string) ([]Observation, error) {
	format := DetectFormat(path)
	if format == FormatUnknown {
		return nil, fmt.Errorf("%s: unknown dataset format", filepath.Base(path))
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	if format == FormatParquet {
		info, err := f.Stat()
		if err != nil {
			return nil, err
		}
		return readParquet(f, info.Size())
	}

	var reader io.Reader = f
	switch format {
	case FormatGzip:
		gz, err := pgzip.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("gzip open failed: %w", err)
		}
		defer gz.Close()
		reader = gz
	case FormatZstd:
		zr, err := zstd.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("zstd open failed: %w", err)
		}
		defer zr.Close()
		reader = zr
	}

	records, err := ParseSIDC(reader, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return records, nil
}

func readParquet(r io.ReaderAt, size int64) ([]Observation, error) {
	pf, err := parquet.OpenFile(r, size)
	if err != nil {
		return nil, fmt.Errorf("parquet open failed: %w", err)
	}

	reader := parquet.NewGenericReader[Observation](pf)
	defer reader.Close()

	records := make([]Observation, 0, pf.NumRows())
	buf := make([]Observation, parquetReadRows)

	for {
		n, err := reader.Read(buf)
		records = append(records, buf[:n]...)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parquet read failed: %w", err)
		}
		if n == 0 {
			break
		}
	}

	return records, nil
}

// WriteFile writes records in the format implied by the file name.
// The file is written to a temp path and renamed into place.
func WriteFile(path string, records []Observation) (err error) {
	format := DetectFormat(path)
	if format == FormatUnknown {
		return fmt.Errorf("%s: unknown dataset format", filepath.Base(path))
	}

	tmpPath := path + ".tmp"
	f, err := os.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("create file failed: %w", err)
	}
	defer func() {
		if err != nil {
			f.Close()
			os.Remove(tmpPath)
		}
	}()

	if err = encode(f, format, records); err != nil {
		return err
	}
	if err = f.Close(); err != nil {
		return err
	}

	if err = os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("rename failed: %w", err)
	}
	return nil
}

func encode(w io.Writer, format Format, records []Observation) error {
	switch format {
	case FormatParquet:
		pw := parquet.NewGenericWriter[Observation](w)
		if _, err := pw.Write(records); err != nil {
			return fmt.Errorf("parquet write failed: %w", err)
		}
		return pw.Close()

	case FormatGzip:
		gz := pgzip.NewWriter(w)
		if err := WriteSIDC(gz, records); err != nil {
			gz.Close()
			return err
		}
		return gz.Close()

	case FormatZstd:
		zw, err := zstd.NewWriter(w)
		if err != nil {
			return fmt.Errorf("zstd open failed: %w", err)
		}
		if err := WriteSIDC(zw, records); err != nil {
			zw.Close()
			return err
		}
		return zw.Close()
	}

	return WriteSIDC(w, records)
}
