package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sat8bit/charagen/persona"
	"gopkg.in/yaml.v3"

	_ "modernc.org/sqlite"
)

// 文字列の並びが時刻順になるよう、小数部の桁を固定する
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// SQLiteStore は、シートを SQLite に保存します。参照は "<batch id>/<ordinal>" です。
type SQLiteStore struct {
	db     *sql.DB
	mu     sync.RWMutex
	logger *slog.Logger
}

// NewSQLiteStore は、dbPath のデータベースを開き、テーブルがなければ作成します。
// dbPath に ":memory:" を渡すとメモリ上のデータベースになります。
func NewSQLiteStore(dbPath string, logger *slog.Logger) (*SQLiteStore, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// メモリDBは接続ごとに別物になるため、接続を1本に固定する
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	s := &SQLiteStore{db: db, logger: logger}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate database: %w", err)
	}
	return s, nil
}

func (s *SQLiteStore) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS batches (
		id TEXT PRIMARY KEY,
		label TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS sheets (
		batch_id TEXT NOT NULL,
		ordinal INTEGER NOT NULL,
		name TEXT NOT NULL,
		body TEXT NOT NULL,
		PRIMARY KEY (batch_id, ordinal),
		FOREIGN KEY (batch_id) REFERENCES batches(id) ON DELETE CASCADE
	);

	CREATE INDEX IF NOT EXISTS idx_sheets_name ON sheets(name);
	`
	_, err := s.db.Exec(schema)
	return err
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// SaveBatch は、シート群を1トランザクションで保存します。
func (s *SQLiteStore) SaveBatch(ctx context.Context, label string, sheets []*persona.CharacterSheet) (*Batch, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b := &Batch{
		ID:        uuid.NewString(),
		Label:     label,
		Location:  "sqlite",
		CreatedAt: time.Now().UTC(),
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO batches (id, label, created_at) VALUES (?, ?, ?)`,
		b.ID, label, b.CreatedAt.Format(timeLayout),
	); err != nil {
		return nil, fmt.Errorf("insert batch: %w", err)
	}

	for i, sheet := range sheets {
		body, err := yaml.Marshal(sheet)
		if err != nil {
			return nil, fmt.Errorf("marshal sheet %s: %w", sheet.Name, err)
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO sheets (batch_id, ordinal, name, body) VALUES (?, ?, ?, ?)`,
			b.ID, i+1, sheet.Name, string(body),
		); err != nil {
			return nil, fmt.Errorf("insert sheet %s: %w", sheet.Name, err)
		}
		b.Entries = append(b.Entries, entryFor(fmt.Sprintf("%s/%d", b.ID, i+1), sheet))
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit batch: %w", err)
	}

	s.logger.Info("sheets saved", "batch", b.ID, "count", len(b.Entries))
	return b, nil
}

// Load は、"<batch id>/<ordinal>" で指定したシートを読み直して検証します。
func (s *SQLiteStore) Load(ctx context.Context, ref string) (*persona.CharacterSheet, error) {
	batchID, ord, ok := strings.Cut(ref, "/")
	if !ok {
		return nil, fmt.Errorf("invalid sheet reference %q", ref)
	}
	ordinal, err := strconv.Atoi(ord)
	if err != nil {
		return nil, fmt.Errorf("invalid sheet reference %q: %w", ref, err)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var body string
	err = s.db.QueryRowContext(ctx,
		`SELECT body FROM sheets WHERE batch_id = ? AND ordinal = ?`, batchID, ordinal,
	).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, ref)
	}
	if err != nil {
		return nil, fmt.Errorf("query sheet: %w", err)
	}

	var sheet persona.CharacterSheet
	if err := yaml.Unmarshal([]byte(body), &sheet); err != nil {
		return nil, fmt.Errorf("decode sheet %s: %w", ref, err)
	}
	return &sheet, nil
}

// Batches は、保存済みのバッチを新しい順に返します。Entries は含みません。
func (s *SQLiteStore) Batches(ctx context.Context) ([]Batch, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `SELECT id, label, created_at FROM batches ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("query batches: %w", err)
	}
	defer rows.Close()

	var out []Batch
	for rows.Next() {
		var b Batch
		var created string
		if err := rows.Scan(&b.ID, &b.Label, &created); err != nil {
			return nil, fmt.Errorf("scan batch: %w", err)
		}
		b.CreatedAt, _ = time.Parse(timeLayout, created)
		b.Location = "sqlite"
		out = append(out, b)
	}
	return out, rows.Err()
}

var _ Store = (*SQLiteStore)(nil)
