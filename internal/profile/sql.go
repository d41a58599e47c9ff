package profile

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/tartampluch/go-yeartiles/internal/config"
	"github.com/tartampluch/go-yeartiles/internal/engine"
	_ "modernc.org/sqlite"
)

// Dialect captures the placeholder style of a SQL backend.
type Dialect struct {
	Name   string
	Driver string
	insert string
	update string
	get    string
}

var (
	// DialectSQLite targets modernc.org/sqlite.
	DialectSQLite = Dialect{
		Name:   config.StoreSQLite,
		Driver: "sqlite",
		insert: `INSERT INTO profiles (id, time_zone, special_days, updated_at) VALUES (?, ?, ?, ?) ON CONFLICT (id) DO NOTHING`,
		update: `UPDATE profiles SET time_zone = ?, special_days = ?, updated_at = ? WHERE id = ?`,
		get:    `SELECT time_zone, special_days, updated_at FROM profiles WHERE id = ?`,
	}

	// DialectPostgres targets the pgx stdlib driver.
	DialectPostgres = Dialect{
		Name:   config.StorePostgres,
		Driver: "pgx",
		insert: `INSERT INTO profiles (id, time_zone, special_days, updated_at) VALUES ($1, $2, $3, $4) ON CONFLICT (id) DO NOTHING`,
		update: `UPDATE profiles SET time_zone = $1, special_days = $2, updated_at = $3 WHERE id = $4`,
		get:    `SELECT time_zone, special_days, updated_at FROM profiles WHERE id = $1`,
	}
)

const schema = `CREATE TABLE IF NOT EXISTS profiles (
	id           TEXT PRIMARY KEY,
	time_zone    TEXT NOT NULL,
	special_days TEXT NOT NULL,
	updated_at   TEXT NOT NULL
)`

// SQLStore keeps one row per profile; special days are a JSON column.
type SQLStore struct {
	DB      *sql.DB
	Dialect Dialect
	Clock   engine.Clock
	NewID   IDGenerator
}

// OpenSQLite opens (and creates) a SQLite database file.
func OpenSQLite(ctx context.Context, path string, clock engine.Clock) (*SQLStore, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, config.DirPermUserRWX); err != nil {
			return nil, fmt.Errorf("%s: %w", config.ErrStoreOpen, err)
		}
	}
	db, err := sql.Open(DialectSQLite.Driver, path)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrStoreOpen, err)
	}
	// SQLite allows a single writer.
	db.SetMaxOpenConns(1)
	return NewSQLStore(ctx, db, DialectSQLite, clock)
}

// OpenPostgres opens a PostgreSQL connection and verifies connectivity.
func OpenPostgres(ctx context.Context, dsn string, clock engine.Clock) (*SQLStore, error) {
	if dsn == "" {
		return nil, errors.New(config.ErrPostgresDSN)
	}
	db, err := sql.Open(DialectPostgres.Driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrStoreOpen, err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%s: %w", config.ErrStoreOpen, err)
	}
	return NewSQLStore(ctx, db, DialectPostgres, clock)
}

// NewSQLStore wraps db and creates the table when missing.
func NewSQLStore(ctx context.Context, db *sql.DB, dialect Dialect, clock engine.Clock) (*SQLStore, error) {
	if clock == nil {
		clock = engine.RealClock{}
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%s: %w", config.ErrStoreOpen, err)
	}
	return &SQLStore{DB: db, Dialect: dialect, Clock: clock, NewID: RandomID}, nil
}

// Kind implements Store.
func (s *SQLStore) Kind() string { return s.Dialect.Name }

// Close releases the connection pool.
func (s *SQLStore) Close() error { return s.DB.Close() }

// Ping checks connectivity.
func (s *SQLStore) Ping(ctx context.Context) error { return s.DB.PingContext(ctx) }

// Create implements Store. Colliding ids are retried.
func (s *SQLStore) Create(ctx context.Context, p Payload) (*Record, error) {
	for i := 0; i < config.MaxIDAttempts; i++ {
		rec := newRecord(s.NewID(), p, s.Clock)
		specials, err := json.Marshal(rec.SpecialDays)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", config.ErrProfileEncode, err)
		}

		res, err := s.DB.ExecContext(ctx, s.Dialect.insert, rec.ID, rec.TimeZone, string(specials), formatTime(rec.UpdatedAt))
		if err != nil {
			return nil, unavailable(config.ErrStoreWrite, err)
		}
		if n, err := res.RowsAffected(); err == nil && n == 1 {
			return rec, nil
		}
	}
	return nil, unavailable(config.ErrIDExhausted, fmt.Errorf("%d attempts", config.MaxIDAttempts))
}

// Update implements Store.
func (s *SQLStore) Update(ctx context.Context, id string, p Payload) (*Record, error) {
	rec := newRecord(id, p, s.Clock)
	specials, err := json.Marshal(rec.SpecialDays)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrProfileEncode, err)
	}

	res, err := s.DB.ExecContext(ctx, s.Dialect.update, rec.TimeZone, string(specials), formatTime(rec.UpdatedAt), id)
	if err != nil {
		return nil, unavailable(config.ErrStoreWrite, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, unavailable(config.ErrStoreWrite, err)
	}
	if n == 0 {
		return nil, ErrNotFound
	}
	return rec, nil
}

// Get implements Store.
func (s *SQLStore) Get(ctx context.Context, id string) (*Record, error) {
	var tz, specials, updated string
	err := s.DB.QueryRowContext(ctx, s.Dialect.get, id).Scan(&tz, &specials, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, unavailable(config.ErrStoreRead, err)
	}

	rec := &Record{
		ID:          id,
		TimeZone:    tz,
		SpecialDays: engine.ParseSpecialDaysJSON(specials),
	}
	rec.UpdatedAt, _ = time.Parse(time.RFC3339Nano, updated)
	return rec, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}
