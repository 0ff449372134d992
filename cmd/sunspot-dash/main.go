// sunspot-dash - Interactive historical sunspot dashboard
//
// Loads the SIDC monthly mean sunspot table from a file (csv, csv.gz,
// csv.zst, parquet) or from ClickHouse and serves the dashboard over HTTP.
//
// Build: CGO_ENABLED=0 go build -ldflags="-s -w" -o build/sunspot-dash ./cmd/sunspot-dash

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/KI7MT/ki7mt-sunspot-dash/internal/common"
	"github.com/KI7MT/ki7mt-sunspot-dash/internal/dashboard"
	"github.com/KI7MT/ki7mt-sunspot-dash/internal/store"
	"github.com/KI7MT/ki7mt-sunspot-dash/internal/sunspot"
)

// Version can be overridden at build time via -ldflags
var Version = "1.0.0"

func main() {
	cfg := common.DefaultConfig()

	datasetPath := flag.String("dataset", cfg.DatasetPath, "Monthly sunspot file (.csv, .csv.gz, .csv.zst, .parquet)")
	source := flag.String("source", cfg.DatasetSource, "Dataset source: file or clickhouse")
	listen := flag.String("listen", cfg.ListenAddr, "HTTP listen address")
	chHost := flag.String("ch-host", cfg.ClickHouseAddr(), "ClickHouse address")
	chDB := flag.String("ch-db", cfg.ClickHouseDatabase, "ClickHouse database")
	chTable := flag.String("ch-table", cfg.ClickHouseTable, "ClickHouse table")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "sunspot-dash v%s - Historical Sunspot Dashboard\n\n", Version)
		fmt.Fprintf(os.Stderr, "Usage: %s [OPTIONS]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Serves the sunspot activity and cycle dashboard.\n\n")
		flag.PrintDefaults()
	}

	flag.Parse()

	cfg.DatasetPath = *datasetPath
	cfg.DatasetSource = *source
	cfg.ListenAddr = *listen
	cfg.ClickHouseDatabase = *chDB
	cfg.ClickHouseTable = *chTable
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	if cfg.LogLevel == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	log.Println("=========================================================")
	log.Printf("Sunspot Dashboard v%s", Version)
	log.Println("=========================================================")

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	startTime := time.Now()
	ds, origin, err := loadDataset(ctx, cfg, *chHost)
	if err != nil {
		// The dashboard cannot start without data.
		log.Fatalf("Dataset load failed: %v", err)
	}
	first, last := ds.YearSpan()
	log.Printf("Loaded %d months (%d-%d) from %s in %v",
		ds.Len(), first, last, origin, time.Since(startTime).Round(time.Millisecond))

	stats := common.NewStats()
	dispatcher := dashboard.NewDefaultDispatcher(ds, stats)
	router := dashboard.SetupRouter(dashboard.NewHandler(dispatcher, stats, origin))

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		log.Println("Shutdown requested...")
		shutdownCtx, done := context.WithTimeout(context.Background(), 5*time.Second)
		defer done()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("Shutdown error: %v", err)
		}
	}()

	log.Printf("Server starting on %s", cfg.ListenAddr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("Failed to start server: %v", err)
	}

	snap := stats.Snapshot()
	log.Println("=========================================================")
	log.Printf("Recomputes: %d  Failures: %d  Uptime: %s", snap.Recomputes, snap.Failures, snap.Uptime)
	log.Println("=========================================================")
}

// loadDataset reads the table from the configured source and returns it with
// a description of where it came from.
func loadDataset(ctx context.Context, cfg *common.Config, chAddr string) (*sunspot.Dataset, string, error) {
	switch cfg.DatasetSource {
	case common.SourceClickHouse:
		opts := store.Options{
			Addr:     chAddr,
			Database: cfg.ClickHouseDatabase,
			Table:    cfg.ClickHouseTable,
			User:     cfg.ClickHouseUser,
			Password: cfg.ClickHousePassword,
		}
		log.Printf("Connecting to ClickHouse at %s...", chAddr)
		r, err := store.Open(ctx, opts)
		if err != nil {
			return nil, "", err
		}
		defer r.Close()

		ds, err := r.Load(ctx)
		if err != nil {
			return nil, "", err
		}
		return ds, "clickhouse://" + chAddr + "/" + opts.TableFQN(), nil
	default:
		log.Printf("Reading %s (%s)...", cfg.DatasetPath, sunspot.DetectFormat(cfg.DatasetPath))
		ds, err := sunspot.LoadFile(cfg.DatasetPath)
		if err != nil {
			return nil, "", err
		}
		return ds, cfg.DatasetPath, nil
	}
}
