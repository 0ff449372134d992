// sunspot-download - Download SIDC SILSO sunspot tables
//
// Data sources:
//   - SIDC SILSO: Monthly mean total sunspot number (1749-present)
//   - SIDC SILSO: 13-month smoothed monthly sunspot number
//   - SIDC SILSO: Daily total sunspot number (1818-present)
//
// The monthly table is the dashboard's dataset; it is parsed after download
// so a truncated or reformatted file never replaces a good one.
//
// Build: CGO_ENABLED=0 go build -ldflags="-s -w" -o build/sunspot-download ./cmd/sunspot-download

package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/KI7MT/ki7mt-sunspot-dash/internal/common"
	"github.com/KI7MT/ki7mt-sunspot-dash/internal/sunspot"
)

// Version can be overridden at build time via -ldflags
var Version = "1.0.0"

// DataSource defines a SILSO download
type DataSource struct {
	Name     string
	URL      string
	Filename string
	Desc     string
	Monthly  bool // parsed as the dashboard table before it is kept
}

var sources = []DataSource{
	{
		Name:     "sidc_monthly",
		URL:      "https://www.sidc.be/SILSO/DATA/SN_m_tot_V2.0.csv",
		Filename: "sidc_ssn_monthly.csv",
		Desc:     "SIDC monthly mean sunspot numbers (1749-present)",
		Monthly:  true,
	},
	{
		Name:     "sidc_smoothed",
		URL:      "https://www.sidc.be/SILSO/DATA/SN_ms_tot_V2.0.csv",
		Filename: "sidc_ssn_smoothed.csv",
		Desc:     "SIDC 13-month smoothed sunspot numbers",
		Monthly:  true,
	},
	{
		Name:     "sidc_daily",
		URL:      "https://www.sidc.be/SILSO/DATA/SN_d_tot_V2.0.csv",
		Filename: "sidc_ssn_daily.csv",
		Desc:     "SIDC daily sunspot numbers (1818-present)",
	},
}

func downloadFile(ctx context.Context, client *http.Client, src DataSource, destPath string) (int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src.URL, nil)
	if err != nil {
		return 0, err
	}
	req.Header.Set("User-Agent", "sunspot-download/"+Version)

	resp, err := client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("HTTP GET failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("HTTP %d: %s", resp.StatusCode, resp.Status)
	}

	tmpPath := destPath + ".tmp"
	f, err := os.Create(tmpPath)
	if err != nil {
		return 0, fmt.Errorf("create file failed: %w", err)
	}

	n, err := io.Copy(f, resp.Body)
	f.Close()

	if err != nil {
		os.Remove(tmpPath)
		return 0, fmt.Errorf("download failed: %w", err)
	}

	if src.Monthly {
		if err := verifyMonthly(tmpPath); err != nil {
			os.Remove(tmpPath)
			return 0, fmt.Errorf("verify failed: %w", err)
		}
	}

	// Atomic rename
	if err := os.Rename(tmpPath, destPath); err != nil {
		os.Remove(tmpPath)
		return 0, fmt.Errorf("rename failed: %w", err)
	}

	return n, nil
}

// verifyMonthly parses a downloaded monthly table. The .tmp suffix hides the
// format, so the file is parsed as SIDC text directly.
func verifyMonthly(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	var stats sunspot.ParseStats
	records, err := sunspot.ParseSIDC(f, &stats)
	if err != nil {
		return err
	}
	ds, err := sunspot.NewDataset(records)
	if err != nil {
		return err
	}
	first, last := ds.YearSpan()
	fmt.Printf("  Verified %d months (%d-%d), %d lines read\n", ds.Len(), first, last, stats.TotalLinesRead)
	return nil
}

func main() {
	cfg := common.DefaultConfig()

	destDir := flag.String("dest", cfg.SolarDataDir(), "Destination directory")
	timeout := flag.Duration("timeout", 60*time.Second, "HTTP timeout per download")
	listSources := flag.Bool("list", false, "List available data sources")
	source := flag.String("source", "all", "Source to download (or 'all')")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "sunspot-download v%s - SILSO Sunspot Downloader\n\n", Version)
		fmt.Fprintf(os.Stderr, "Usage: %s [OPTIONS]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Downloads sunspot number tables from SIDC SILSO.\n\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nData Sources:\n")
		for _, s := range sources {
			fmt.Fprintf(os.Stderr, "  %-15s %s\n", s.Name, s.Desc)
		}
	}

	flag.Parse()

	if *listSources {
		fmt.Printf("Available sunspot data sources:\n\n")
		for _, s := range sources {
			fmt.Printf("  %-15s %s\n", s.Name, s.Desc)
			fmt.Printf("                  URL: %s\n", s.URL)
			fmt.Printf("                  File: %s\n\n", s.Filename)
		}
		return
	}

	fmt.Println("=========================================================")
	fmt.Printf("Sunspot Download v%s\n", Version)
	fmt.Println("=========================================================")
	fmt.Printf("Destination: %s\n", *destDir)
	fmt.Printf("Timeout:     %v\n", *timeout)
	fmt.Println()

	if err := os.MkdirAll(*destDir, 0755); err != nil {
		fmt.Fprintf(os.Stderr, "Error: Cannot create directory: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	client := &http.Client{Timeout: *timeout}
	startTime := time.Now()
	downloaded := 0
	failed := 0

	for _, src := range sources {
		if *source != "all" && *source != src.Name {
			continue
		}
		if ctx.Err() != nil {
			break
		}

		destPath := filepath.Join(*destDir, src.Filename)
		fmt.Printf("[%s] Downloading from %s...\n", src.Name, src.URL)

		n, err := downloadFile(ctx, client, src, destPath)
		if err != nil {
			fmt.Printf("  ERROR: %v\n", err)
			failed++
			continue
		}
		fmt.Printf("  Downloaded %s (%d bytes)\n", filepath.Base(destPath), n)
		downloaded++
	}

	elapsed := time.Since(startTime)

	fmt.Println()
	fmt.Println("=========================================================")
	fmt.Println("Download Summary")
	fmt.Println("=========================================================")
	fmt.Printf("Downloaded: %d files\n", downloaded)
	fmt.Printf("Failed:     %d files\n", failed)
	fmt.Printf("Elapsed:    %v\n", elapsed.Round(time.Millisecond))
	fmt.Println("=========================================================")

	if failed > 0 {
		os.Exit(1)
	}
}
