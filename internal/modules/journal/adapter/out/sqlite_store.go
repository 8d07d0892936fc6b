package out

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"dropkit/internal/modules/journal/domain"
	journalout "dropkit/internal/modules/journal/port/out"

	_ "modernc.org/sqlite"
)

const timeLayout = "2006-01-02T15:04:05.000Z07:00"

type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(dbPath string) (journalout.Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	store := &SQLiteStore{db: db}
	if err := store.ensureSchema(context.Background()); err != nil {
		return nil, err
	}
	return store, nil
}

func (s *SQLiteStore) ensureSchema(ctx context.Context) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS operations (
  id TEXT PRIMARY KEY,
  operation_id TEXT NOT NULL,
  processor TEXT NOT NULL,
  item_count INTEGER NOT NULL,
  bulk INTEGER NOT NULL,
  status TEXT NOT NULL,
  error TEXT,
  created_at TEXT NOT NULL,
  updated_at TEXT NOT NULL
);
`
	if _, err := s.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("create operations table: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Append(ctx context.Context, record domain.Record) error {
	const stmt = `
INSERT INTO operations (id, operation_id, processor, item_count, bulk, status, error, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?);
`
	_, err := s.db.ExecContext(ctx, stmt,
		record.ID,
		record.OperationID,
		record.Processor,
		record.ItemCount,
		boolToInt(record.Bulk),
		string(record.Status),
		record.Error,
		record.CreatedAt.Format(timeLayout),
		record.UpdatedAt.Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("append journal record: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Get(ctx context.Context, id string) (domain.Record, error) {
	row := s.db.QueryRowContext(ctx, `
SELECT id, operation_id, processor, item_count, bulk, status, error, created_at, updated_at
FROM operations WHERE id = ?;
`, id)
	record, err := scanRecord(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Record{}, fmt.Errorf("%w: %s", domain.ErrRecordNotFound, id)
	}
	if err != nil {
		return domain.Record{}, fmt.Errorf("get journal record: %w", err)
	}
	return record, nil
}

func (s *SQLiteStore) SetStatus(ctx context.Context, id string, status domain.Status, errMessage string, at time.Time) error {
	result, err := s.db.ExecContext(ctx, `
UPDATE operations SET status = ?, error = ?, updated_at = ? WHERE id = ?;
`, string(status), errMessage, at.Format(timeLayout), id)
	if err != nil {
		return fmt.Errorf("update journal record: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update journal record: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: %s", domain.ErrRecordNotFound, id)
	}
	return nil
}

// List returns the newest records first. A non-positive limit means
// everything.
func (s *SQLiteStore) List(ctx context.Context, limit int) ([]domain.Record, error) {
	query := `
SELECT id, operation_id, processor, item_count, bulk, status, error, created_at, updated_at
FROM operations ORDER BY created_at DESC, id DESC
`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list journal records: %w", err)
	}
	defer rows.Close()

	var records []domain.Record
	for rows.Next() {
		record, err := scanRecord(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan journal record: %w", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list journal records: %w", err)
	}
	return records, nil
}

func scanRecord(scan func(dest ...any) error) (domain.Record, error) {
	var record domain.Record
	var bulk int
	var status, createdAt, updatedAt string
	var errMessage sql.NullString
	if err := scan(
		&record.ID,
		&record.OperationID,
		&record.Processor,
		&record.ItemCount,
		&bulk,
		&status,
		&errMessage,
		&createdAt,
		&updatedAt,
	); err != nil {
		return domain.Record{}, err
	}
	record.Bulk = bulk != 0
	record.Status = domain.Status(status)
	record.Error = errMessage.String
	var err error
	if record.CreatedAt, err = time.Parse(timeLayout, createdAt); err != nil {
		return domain.Record{}, err
	}
	if record.UpdatedAt, err = time.Parse(timeLayout, updatedAt); err != nil {
		return domain.Record{}, err
	}
	return record, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
