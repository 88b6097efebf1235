package history

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// Entry is one evaluated REPL input.
type Entry struct {
	ID         uuid.UUID
	SessionID  uuid.UUID
	ExecutedAt time.Time
	Input      string
	Output     string
	Error      string
}

// Store journals REPL sessions to a SQL database. It keeps at most
// maxEntries rows; older ones are pruned on every append.
type Store struct {
	db         *sql.DB
	dialect    dialect
	maxEntries int
}

// Open connects with driver (sqlite3 when empty, mysql or postgres) and
// creates the history table if needed. maxEntries <= 0 disables pruning.
func Open(ctx context.Context, driver, dsn string, maxEntries int) (*Store, error) {
	d, err := lookupDialect(driver)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open(d.driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open history database: %w", err)
	}
	if d.driver == DriverSQLite {
		// one writer; sqlite serializes anyway
		db.SetMaxOpenConns(1)
	}

	if _, err := db.ExecContext(ctx, d.createTable); err != nil {
		db.Close()
		return nil, fmt.Errorf("create history table: %w", err)
	}

	slog.Debug("history store opened",
		slog.String("driver", d.driver),
		slog.Int("maxEntries", maxEntries))

	return &Store{db: db, dialect: d, maxEntries: maxEntries}, nil
}

// Append stores e, filling in a fresh ID and the current time when unset,
// and returns the stored entry.
func (s *Store) Append(ctx context.Context, e Entry) (Entry, error) {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	if e.ExecutedAt.IsZero() {
		e.ExecutedAt = time.Now()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Entry{}, fmt.Errorf("begin history append: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, s.dialect.rebind(
		`INSERT INTO history (id, session_id, executed_at, input, output, error) VALUES (?, ?, ?, ?, ?, ?)`),
		e.ID.String(), e.SessionID.String(), e.ExecutedAt.UnixNano(), e.Input, e.Output, e.Error)
	if err != nil {
		return Entry{}, fmt.Errorf("insert history entry: %w", err)
	}

	if s.maxEntries > 0 {
		res, err := tx.ExecContext(ctx, s.dialect.rebind(
			`DELETE FROM history WHERE id NOT IN (
				SELECT id FROM (SELECT id FROM history ORDER BY executed_at DESC LIMIT ?) AS kept
			)`), s.maxEntries)
		if err != nil {
			return Entry{}, fmt.Errorf("prune history: %w", err)
		}
		if n, _ := res.RowsAffected(); n > 0 {
			slog.Debug("pruned history", slog.Int64("rows", n))
		}
	}

	if err := tx.Commit(); err != nil {
		return Entry{}, fmt.Errorf("commit history append: %w", err)
	}
	return e, nil
}

// Recent returns up to n of the newest entries, oldest first.
func (s *Store) Recent(ctx context.Context, n int) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx, s.dialect.rebind(
		`SELECT id, session_id, executed_at, input, output, error FROM history ORDER BY executed_at DESC LIMIT ?`), n)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			e               Entry
			id, session     string
			executedAtNanos int64
		)
		if err := rows.Scan(&id, &session, &executedAtNanos, &e.Input, &e.Output, &e.Error); err != nil {
			return nil, fmt.Errorf("scan history entry: %w", err)
		}
		if e.ID, err = uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("history entry id: %w", err)
		}
		if e.SessionID, err = uuid.Parse(session); err != nil {
			return nil, fmt.Errorf("history session id: %w", err)
		}
		e.ExecutedAt = time.Unix(0, executedAtNanos)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read history: %w", err)
	}

	for i, j := 0, len(entries)-1; i < j; i, j = i+1, j-1 {
		entries[i], entries[j] = entries[j], entries[i]
	}
	return entries, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}
