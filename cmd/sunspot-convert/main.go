// sunspot-convert - Convert monthly sunspot tables between encodings
//
// Reads SIDC text (.csv, .txt), compressed text (.gz, .zst) or Parquet and
// writes any of the same, chosen by the output extension. With -from-ch the
// input is the ClickHouse table instead of a file.
//
// Build: CGO_ENABLED=0 go build -ldflags="-s -w" -o build/sunspot-convert ./cmd/sunspot-convert

package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
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

	fromCH := flag.Bool("from-ch", false, "Read from ClickHouse instead of an input file")
	chHost := flag.String("ch-host", cfg.ClickHouseAddr(), "ClickHouse address")
	chDB := flag.String("ch-db", cfg.ClickHouseDatabase, "ClickHouse database")
	chTable := flag.String("ch-table", cfg.ClickHouseTable, "ClickHouse table")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "sunspot-convert v%s - Monthly Sunspot Converter\n\n", Version)
		fmt.Fprintf(os.Stderr, "Usage: %s [OPTIONS] <input> <output>\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "       %s -from-ch [OPTIONS] <output>\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Formats by extension: .csv .txt .gz .zst .parquet\n\n")
		flag.PrintDefaults()
	}

	flag.Parse()

	want := 2
	if *fromCH {
		want = 1
	}
	if flag.NArg() != want {
		flag.Usage()
		os.Exit(1)
	}
	outPath := flag.Arg(want - 1)
	if sunspot.DetectFormat(outPath) == sunspot.FormatUnknown {
		log.Fatalf("Unknown output format: %s", outPath)
	}

	log.Println("=========================================================")
	log.Printf("Sunspot Convert v%s", Version)
	log.Println("=========================================================")

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	startTime := time.Now()

	var records []sunspot.Observation
	var err error
	if *fromCH {
		opts := store.Options{
			Addr:     *chHost,
			Database: *chDB,
			Table:    *chTable,
			User:     cfg.ClickHouseUser,
			Password: cfg.ClickHousePassword,
		}
		log.Printf("Input:  clickhouse %s (%s)", opts.TableFQN(), opts.Addr)
		records, err = readClickHouse(ctx, opts)
	} else {
		inPath := flag.Arg(0)
		log.Printf("Input:  %s (%s)", inPath, sunspot.DetectFormat(inPath))
		records, err = sunspot.ReadFile(inPath)
	}
	if err != nil {
		log.Fatalf("Read failed: %v", err)
	}

	ds, err := sunspot.NewDataset(records)
	if err != nil {
		log.Fatalf("Invalid table: %v", err)
	}

	log.Printf("Output: %s (%s)", outPath, sunspot.DetectFormat(outPath))
	if err := sunspot.WriteFile(outPath, ds.Records()); err != nil {
		log.Fatalf("Write failed: %v", err)
	}

	first, last := ds.YearSpan()
	log.Println("=========================================================")
	log.Printf("Records: %d (%d-%d)", ds.Len(), first, last)
	log.Printf("Elapsed: %v", time.Since(startTime).Round(time.Millisecond))
	log.Println("=========================================================")
}

func readClickHouse(ctx context.Context, opts store.Options) ([]sunspot.Observation, error) {
	r, err := store.Open(ctx, opts)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return r.Records(ctx)
}
