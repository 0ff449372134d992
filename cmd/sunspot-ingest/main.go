// sunspot-ingest - SIDC monthly sunspot ingestion into ClickHouse
//
// Reads monthly tables in any supported encoding:
//   - SIDC CSV (.csv, .txt): SN_m_tot_V2.0 semicolon format
//   - Compressed CSV (.csv.gz, .csv.zst)
//   - Parquet (.parquet) written by sunspot-convert
//
// Build: CGO_ENABLED=0 go build -ldflags="-s -w" -o build/sunspot-ingest ./cmd/sunspot-ingest

package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/KI7MT/ki7mt-sunspot-dash/internal/common"
	"github.com/KI7MT/ki7mt-sunspot-dash/internal/store"
	"github.com/KI7MT/ki7mt-sunspot-dash/internal/sunspot"
)

// Version can be overridden at build time via -ldflags
var Version = "1.0.0"

func main() {
	cfg := common.DefaultConfig()

	chHost := flag.String("ch-host", cfg.ClickHouseAddr(), "ClickHouse address")
	chDB := flag.String("ch-db", cfg.ClickHouseDatabase, "ClickHouse database")
	chTable := flag.String("ch-table", cfg.ClickHouseTable, "ClickHouse table")
	sourceDir := flag.String("source-dir", cfg.SolarDataDir(), "Sunspot data source directory")
	pattern := flag.String("pattern", "sidc_ssn_monthly*", "File name pattern used when scanning -source-dir")
	truncate := flag.Bool("truncate", false, "Truncate table before insert")
	create := flag.Bool("create", true, "Create table if it does not exist")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "sunspot-ingest v%s - Monthly Sunspot Ingester\n\n", Version)
		fmt.Fprintf(os.Stderr, "Usage: %s [OPTIONS] [files...]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Ingests SIDC monthly sunspot tables into ClickHouse.\n\n")
		fmt.Fprintf(os.Stderr, "Supported formats:\n")
		fmt.Fprintf(os.Stderr, "  - SIDC CSV (.csv, .txt), optionally .gz or .zst compressed\n")
		fmt.Fprintf(os.Stderr, "  - Parquet (.parquet)\n\n")
		flag.PrintDefaults()
	}

	flag.Parse()

	log.Println("=========================================================")
	log.Printf("Sunspot Ingest v%s", Version)
	log.Println("=========================================================")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		log.Println("\nShutdown requested...")
		cancel()
	}()

	opts := store.Options{
		Addr:     *chHost,
		Database: *chDB,
		Table:    *chTable,
		User:     cfg.ClickHouseUser,
		Password: cfg.ClickHousePassword,
	}

	log.Printf("Connecting to ClickHouse at %s...", opts.Addr)
	w, err := store.Dial(ctx, opts)
	if err != nil {
		log.Fatalf("ClickHouse connection failed: %v", err)
	}
	defer w.Close()

	log.Printf("Table: %s", opts.TableFQN())

	if *create {
		if err := w.CreateTable(ctx); err != nil {
			log.Fatalf("Create table failed: %v", err)
		}
	}

	if *truncate {
		log.Printf("Truncating table %s...", opts.TableFQN())
		if err := w.Truncate(ctx); err != nil {
			log.Printf("Truncate warning: %v", err)
		}
	}

	files, err := discoverFiles(flag.Args(), *sourceDir, *pattern)
	if err != nil {
		log.Fatalf("Cannot read source directory: %v", err)
	}
	if len(files) == 0 {
		log.Fatal("No files to process")
	}

	log.Printf("Found %d file(s)", len(files))

	startTime := time.Now()
	totalRecords := 0
	failedFiles := 0

	for _, filePath := range files {
		if ctx.Err() != nil {
			break
		}

		name := filepath.Base(filePath)
		records, err := sunspot.ReadFile(filePath)
		if err != nil {
			log.Printf("[%s] Parse error: %v", name, err)
			failedFiles++
			continue
		}

		// Reject tables that would not load in the dashboard.
		if _, err := sunspot.NewDataset(records); err != nil {
			log.Printf("[%s] Invalid table: %v", name, err)
			failedFiles++
			continue
		}

		n, err := w.Insert(ctx, records)
		if err != nil {
			log.Fatalf("[%s] Insert error: %v", name, err)
		}

		log.Printf("[%s] Inserted %d records (%s format)", name, n, sunspot.DetectFormat(filePath))
		totalRecords += n
	}

	elapsed := time.Since(startTime)

	log.Println()
	log.Println("=========================================================")
	log.Println("Final Statistics")
	log.Println("=========================================================")
	log.Printf("Total Records: %d", totalRecords)
	log.Printf("Failed Files:  %d", failedFiles)
	log.Printf("Elapsed:       %v", elapsed.Round(time.Millisecond))
	log.Printf("Rate:          %.0f records/sec", float64(totalRecords)/elapsed.Seconds())
	log.Println("=========================================================")

	if failedFiles > 0 {
		os.Exit(1)
	}
}

// discoverFiles returns args when given, otherwise the tables in dir matching
// pattern. Only one monthly table belongs in a table keyed by (year, month).
func discoverFiles(args []string, dir, pattern string) ([]string, error) {
	if len(args) > 0 {
		return args, nil
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if ok, err := filepath.Match(pattern, e.Name()); err != nil {
			return nil, err
		} else if !ok {
			continue
		}
		path := filepath.Join(dir, e.Name())
		if sunspot.DetectFormat(path) == sunspot.FormatUnknown {
			log.Printf("[%s] Skipping (unknown format)", e.Name())
			continue
		}
		files = append(files, path)
	}
	return files, nil
}
