package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/nvandessel/samplespace/internal/estimate"
	_ "modernc.org/sqlite" // SQLite driver
)

// SQLiteRunStore implements RunStore on a SQLite database.
type SQLiteRunStore struct {
	mu     sync.Mutex
	db     *sql.DB
	dbPath string
}

// NewSQLiteRunStore opens (creating if needed) the database at dbPath.
func NewSQLiteRunStore(dbPath string) (*SQLiteRunStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0700); err != nil {
		return nil, fmt.Errorf("failed to create history directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1) // SQLite works best with single writer

	if err := InitSchema(context.Background(), db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &SQLiteRunStore{db: db, dbPath: dbPath}, nil
}

// Path returns the database file path.
func (s *SQLiteRunStore) Path() string {
	return s.dbPath
}

// Record inserts a run.
func (s *SQLiteRunStore) Record(ctx context.Context, run Run) (string, error) {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}

	keys, err := json.Marshal(nonNil(run.Keys))
	if err != nil {
		return "", fmt.Errorf("failed to marshal keys: %w", err)
	}
	var given, value sql.NullString
	if len(run.Given) > 0 {
		data, err := json.Marshal(run.Given)
		if err != nil {
			return "", fmt.Errorf("failed to marshal given: %w", err)
		}
		given = sql.NullString{String: string(data), Valid: true}
	}
	if run.Value != nil {
		data, err := json.Marshal(estimate.JSONValue(run.Value))
		if err != nil {
			return "", fmt.Errorf("failed to marshal value: %w", err)
		}
		value = sql.NullString{String: string(data), Valid: true}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO runs (id, scenario, statistic, keys, given, iterations, survivors, seed,
			moment_order, central, normalized, value, elapsed_ns, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.Scenario, run.Statistic, string(keys), given, run.Iterations, run.Survivors,
		strconv.FormatUint(run.Seed, 10), run.Order, boolToInt(run.Central), boolToInt(run.Normalized),
		value, int64(run.Elapsed), run.CreatedAt.UnixNano())
	if err != nil {
		return "", fmt.Errorf("failed to insert run: %w", err)
	}
	return run.ID, nil
}

const runColumns = `id, scenario, statistic, keys, given, iterations, survivors, seed,
	moment_order, central, normalized, value, elapsed_ns, created_at`

// Get retrieves a run by ID. Returns nil if not found.
func (s *SQLiteRunStore) Get(ctx context.Context, id string) (*Run, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	row := s.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs WHERE id = ?`, id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run %s: %w", id, err)
	}
	return run, nil
}

// List returns matching runs, newest first.
func (s *SQLiteRunStore) List(ctx context.Context, filter Filter) ([]Run, error) {
	var where []string
	var args []any
	if filter.Scenario != "" {
		where = append(where, "scenario = ?")
		args = append(args, filter.Scenario)
	}
	if filter.Statistic != "" {
		where = append(where, "statistic = ?")
		args = append(args, filter.Statistic)
	}

	query := `SELECT ` + runColumns + ` FROM runs`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY created_at DESC, rowid DESC"
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, *run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate runs: %w", err)
	}
	return runs, nil
}

// Close closes the database.
func (s *SQLiteRunStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Close()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(sc scanner) (*Run, error) {
	var (
		run                 Run
		keys, seed          string
		given, value        sql.NullString
		central, normalized int
		elapsed, created    int64
	)
	if err := sc.Scan(&run.ID, &run.Scenario, &run.Statistic, &keys, &given,
		&run.Iterations, &run.Survivors, &seed, &run.Order, &central, &normalized,
		&value, &elapsed, &created); err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(keys), &run.Keys); err != nil {
		return nil, fmt.Errorf("invalid keys: %w", err)
	}
	if given.Valid {
		if err := json.Unmarshal([]byte(given.String), &run.Given); err != nil {
			return nil, fmt.Errorf("invalid given: %w", err)
		}
	}
	if value.Valid {
		if err := json.Unmarshal([]byte(value.String), &run.Value); err != nil {
			return nil, fmt.Errorf("invalid value: %w", err)
		}
	}
	n, err := strconv.ParseUint(seed, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid seed %q: %w", seed, err)
	}
	run.Seed = n
	run.Central = central != 0
	run.Normalized = normalized != 0
	run.Elapsed = time.Duration(elapsed)
	run.CreatedAt = time.Unix(0, created).UTC()
	return &run, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
