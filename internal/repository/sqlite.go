package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"mq-dashboard/internal/domain"

	_ "github.com/mattn/go-sqlite3"
)

// SQLiteStore records applied samples so past ticks can be paged through the
// history endpoint.
type SQLiteStore struct {
	db     *sql.DB
	dbPath string
}

func NewSQLiteStore(path string) *SQLiteStore {
	return &SQLiteStore{dbPath: path}
}

func dsn(path string) string {
	if path == ":memory:" || strings.Contains(path, "?") {
		return path
	}
	return path + "?_journal_mode=WAL&_busy_timeout=5000"
}

func (s *SQLiteStore) Init() error {
	var err error

	s.db, err = sql.Open("sqlite3", dsn(s.dbPath))
	if err != nil {
		return fmt.Errorf("error opening database: %w", err)
	}

	if err = s.db.Ping(); err != nil {
		return fmt.Errorf("error connecting to database: %w", err)
	}

	createTableSQL := `
	CREATE TABLE IF NOT EXISTS samples (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		source TEXT NOT NULL,
		label TEXT NOT NULL DEFAULT '',
		received_at INTEGER NOT NULL,
		message_count REAL,
		throughput REAL,
		latency REAL,
		cpu_usage REAL
	);
	CREATE INDEX IF NOT EXISTS idx_samples_source ON samples(source, id);`

	_, err = s.db.Exec(createTableSQL)
	if err != nil {
		return fmt.Errorf("error creating table: %w", err)
	}
	return nil
}

func (s *SQLiteStore) StoreSample(ctx context.Context, source domain.Source, sample domain.Sample) error {
	stmt, err := s.db.PrepareContext(ctx,
		"INSERT INTO samples(source, label, received_at, message_count, throughput, latency, cpu_usage) VALUES(?, ?, ?, ?, ?, ?, ?)")
	if err != nil {
		return fmt.Errorf("error preparing insert statement: %w", err)
	}
	defer stmt.Close()

	_, err = stmt.ExecContext(ctx,
		string(source),
		string(sample.Timestamp),
		sample.ReceivedAt.UnixNano(),
		nullable(sample.MessageCount),
		nullable(sample.Throughput),
		nullable(sample.Latency),
		nullable(sample.CPUUsage),
	)
	if err != nil {
		return fmt.Errorf("error inserting sample: %w", err)
	}
	return nil
}

// GetSamples returns samples of one source in arrival order. A non-positive
// limit returns everything after offset.
func (s *SQLiteStore) GetSamples(ctx context.Context, source domain.Source, limit, offset int) ([]domain.Sample, error) {
	query := "SELECT label, received_at, message_count, throughput, latency, cpu_usage FROM samples WHERE source = ? ORDER BY id ASC"
	args := []interface{}{string(source)}

	if limit <= 0 {
		limit = -1
	}
	query += " LIMIT ?"
	args = append(args, limit)

	if offset < 0 {
		offset = 0
	}
	query += " OFFSET ?"
	args = append(args, offset)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error querying database: %w", err)
	}
	defer rows.Close()

	var fetched []domain.Sample

	for rows.Next() {
		var (
			sample                               domain.Sample
			label                                string
			receivedAt                           int64
			count, throughput, latency, cpuUsage sql.NullFloat64
		)
		if err := rows.Scan(&label, &receivedAt, &count, &throughput, &latency, &cpuUsage); err != nil {
			return nil, fmt.Errorf("error scanning row: %w", err)
		}
		sample.Timestamp = domain.Label(label)
		sample.ReceivedAt = time.Unix(0, receivedAt)
		sample.MessageCount = fromNullable(count)
		sample.Throughput = fromNullable(throughput)
		sample.Latency = fromNullable(latency)
		sample.CPUUsage = fromNullable(cpuUsage)
		fetched = append(fetched, sample)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during rows iteration: %w", err)
	}
	return fetched, nil
}

func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func nullable(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}

func fromNullable(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	return domain.Float(v.Float64)
}
