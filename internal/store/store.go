// Package store moves the monthly sunspot dataset in and out of ClickHouse.
//
// Writes go through ch-go's native columnar protocol (the same path the
// solar ingesters use); reads go through clickhouse-go so the dashboard can
// start from the table instead of a file.
package store

import (
	"context"
	"fmt"
	"log"

	"github.com/ClickHouse/ch-go"
	"github.com/ClickHouse/ch-go/proto"
	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"

	"github.com/KI7MT/ki7mt-sunspot-dash/internal/sunspot"
)

// BatchLimit is the number of rows sent per INSERT block.
const BatchLimit = 50000

// columns is the insert/select column order.
const columns = "year, month, fraction_date, mean_sunspot, mean_std, observations, marker"

// Options holds ClickHouse connection settings.
type Options struct {
	Addr     string // host:port, native protocol
	Database string
	Table    string
	User     string
	Password string
}

// TableFQN returns database.table.
func (o Options) TableFQN() string {
	return fmt.Sprintf("%s.%s", o.Database, o.Table)
}

// CreateTableSQL returns the DDL for the monthly table.
// ReplacingMergeTree on (year, month) collapses re-ingested months.
func CreateTableSQL(tableFQN string) string {
	return fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
    year          Int16,
    month         UInt8,
    fraction_date Float64,
    mean_sunspot  Float64,
    mean_std      Float64,
    observations  Int32,
    marker        String
) ENGINE = ReplacingMergeTree
ORDER BY (year, month)`, tableFQN)
}

// =============================================================================
// Batch - columnar buffer for native insert
// =============================================================================

// Batch holds column data for native insert.
// Matches schema: (year, month, fraction_date, mean_sunspot, mean_std, observations, marker)
type Batch struct {
	Year         *proto.ColInt16
	Month        *proto.ColUInt8
	FractionDate *proto.ColFloat64
	Mean         *proto.ColFloat64
	Std          *proto.ColFloat64
	Observations *proto.ColInt32
	Marker       *proto.ColStr
}

// NewBatch creates an empty batch.
func NewBatch() *Batch {
	return &Batch{
		Year:         new(proto.ColInt16),
		Month:        new(proto.ColUInt8),
		FractionDate: new(proto.ColFloat64),
		Mean:         new(proto.ColFloat64),
		Std:          new(proto.ColFloat64),
		Observations: new(proto.ColInt32),
		Marker:       new(proto.ColStr),
	}
}

// Reset empties the batch for reuse.
func (b *Batch) Reset() {
	b.Year.Reset()
	b.Month.Reset()
	b.FractionDate.Reset()
	b.Mean.Reset()
	b.Std.Reset()
	b.Observations.Reset()
	b.Marker.Reset()
}

// Len returns the number of buffered rows.
func (b *Batch) Len() int {
	return b.Year.Rows()
}

// Input returns the ch-go input block.
func (b *Batch) Input() proto.Input {
	return proto.Input{
		{Name: "year", Data: b.Year},
		{Name: "month", Data: b.Month},
		{Name: "fraction_date", Data: b.FractionDate},
		{Name: "mean_sunspot", Data: b.Mean},
		{Name: "mean_std", Data: b.Std},
		{Name: "observations", Data: b.Observations},
		{Name: "marker", Data: b.Marker},
	}
}

// Add appends one observation.
func (b *Batch) Add(rec sunspot.Observation) {
	b.Year.Append(int16(rec.Year))
	b.Month.Append(uint8(rec.Month))
	b.FractionDate.Append(rec.FractionalDate)
	b.Mean.Append(rec.Mean)
	b.Std.Append(rec.Std)
	b.Observations.Append(int32(rec.Observations))
	b.Marker.Append(rec.Marker)
}

// =============================================================================
// Writer - ch-go native protocol
// =============================================================================

// Writer inserts observations over the native protocol.
type Writer struct {
	conn     *ch.Client
	tableFQN string
}

// Dial connects a Writer with LZ4 compression.
func Dial(ctx context.Context, opts Options) (*Writer, error) {
	conn, err := ch.Dial(ctx, ch.Options{
		Address:     opts.Addr,
		Database:    opts.Database,
		User:        opts.User,
		Password:    opts.Password,
		Compression: ch.CompressionLZ4,
	})
	if err != nil {
		return nil, fmt.Errorf("clickhouse dial failed: %w", err)
	}
	return &Writer{conn: conn, tableFQN: opts.TableFQN()}, nil
}

// Close closes the connection.
func (w *Writer) Close() error {
	return w.conn.Close()
}

// CreateTable creates the monthly table if it does not exist.
func (w *Writer) CreateTable(ctx context.Context) error {
	return w.conn.Do(ctx, ch.Query{Body: CreateTableSQL(w.tableFQN)})
}

// Truncate removes every row from the table.
func (w *Writer) Truncate(ctx context.Context) error {
	return w.conn.Do(ctx, ch.Query{Body: fmt.Sprintf("TRUNCATE TABLE %s", w.tableFQN)})
}

// Insert writes records in blocks of BatchLimit rows and returns the number
// of rows sent.
func (w *Writer) Insert(ctx context.Context, records []sunspot.Observation) (int, error) {
	batch := NewBatch()
	inserted := 0

	for _, rec := range records {
		if err := ctx.Err(); err != nil {
			return inserted, err
		}

		batch.Add(rec)
		if batch.Len() >= BatchLimit {
			if err := w.flush(ctx, batch); err != nil {
				return inserted, fmt.Errorf("insert error at row %d: %w", inserted, err)
			}
			inserted += batch.Len()
			log.Printf("  Inserted %d / %d rows", inserted, len(records))
			batch.Reset()
		}
	}

	if batch.Len() > 0 {
		if err := w.flush(ctx, batch); err != nil {
			return inserted, fmt.Errorf("final insert error: %w", err)
		}
		inserted += batch.Len()
	}

	return inserted, nil
}

func (w *Writer) flush(ctx context.Context, batch *Batch) error {
	if batch.Len() == 0 {
		return nil
	}
	return w.conn.Do(ctx, ch.Query{
		Body:  fmt.Sprintf("INSERT INTO %s (%s) VALUES", w.tableFQN, columns),
		Input: batch.Input(),
	})
}

// =============================================================================
// Reader - clickhouse-go
// =============================================================================

// Reader loads the dataset back out of ClickHouse.
type Reader struct {
	conn     driver.Conn
	tableFQN string
}

// Open connects a Reader and pings the server.
func Open(ctx context.Context, opts Options) (*Reader, error) {
	conn, err := clickhouse.Open(&clickhouse.Options{
		Addr: []string{opts.Addr},
		Auth: clickhouse.Auth{
			Database: opts.Database,
			Username: opts.User,
			Password: opts.Password,
		},
		Compression: &clickhouse.Compression{
			Method: clickhouse.CompressionLZ4,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("clickhouse open failed: %w", err)
	}
	if err := conn.Ping(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("clickhouse ping failed: %w", err)
	}
	return &Reader{conn: conn, tableFQN: opts.TableFQN()}, nil
}

// Close closes the connection.
func (r *Reader) Close() error {
	return r.conn.Close()
}

// Records returns every row in (year, month) order.
func (r *Reader) Records(ctx context.Context) ([]sunspot.Observation, error) {
	query := fmt.Sprintf("SELECT %s FROM %s FINAL ORDER BY year, month", columns, r.tableFQN)
	rows, err := r.conn.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	var records []sunspot.Observation
	for rows.Next() {
		var (
			year         int16
			month        uint8
			fractionDate float64
			mean         float64
			std          float64
			observations int32
			marker       string
		)
		if err := rows.Scan(&year, &month, &fractionDate, &mean, &std, &observations, &marker); err != nil {
			return nil, fmt.Errorf("scan failed: %w", err)
		}
		records = append(records, sunspot.Observation{
			Year:           int(year),
			Month:          int(month),
			FractionalDate: fractionDate,
			Mean:           mean,
			Std:            std,
			Observations:   int(observations),
			Marker:         marker,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return records, nil
}

// Load reads and validates the dataset.
func (r *Reader) Load(ctx context.Context) (*sunspot.Dataset, error) {
	records, err := r.Records(ctx)
	if err != nil {
		return nil, err
	}
	ds, err := sunspot.NewDataset(records)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", r.tableFQN, err)
	}
	return ds, nil
}
