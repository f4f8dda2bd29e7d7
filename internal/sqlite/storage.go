package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

const DriverName = "sqlite3"

type Storage struct {
	db *sqlx.DB
}

func NewStorage(db *sql.DB) *Storage {
	s := &Storage{
		db: sqlx.NewDb(db, DriverName),
	}
	err := s.RunMigrations()
	if err != nil {
		panic(fmt.Sprintf("sqlite: running migrations: %v", err))
	}
	return s
}

func (s Storage) Calendars(ctx context.Context) ([]Calendar, error) {
	var cals []Calendar
	err := s.db.SelectContext(ctx, &cals, `
		SELECT id, name FROM calendars ORDER BY id
	`)
	return cals, err
}

func (s Storage) Items(ctx context.Context, calendarID string) ([]Item, error) {
	var items []Item
	err := s.db.SelectContext(ctx, &items, `
		SELECT id, calendar_id, kind, uid, name, completed, status,
			version_tag, last_modified, created_at, prod_id, deleted_at
		FROM items
		WHERE calendar_id = ?
	`, calendarID)
	return items, err
}

// ReplaceCalendar rewrites one calendar and all of its item rows in a
// single transaction.
func (s Storage) ReplaceCalendar(ctx context.Context, cal Calendar, items []Item) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO calendars (id, name) VALUES (?, ?)
		ON CONFLICT(id) DO UPDATE SET name = ?;
	`, cal.ID, cal.Name, cal.Name)
	if err != nil {
		return fmt.Errorf("calendar %s: %w", cal.ID, err)
	}

	_, err = tx.ExecContext(ctx, `DELETE FROM items WHERE calendar_id = ?`, cal.ID)
	if err != nil {
		return fmt.Errorf("calendar %s: clearing items: %w", cal.ID, err)
	}

	for _, item := range items {
		_, err = tx.NamedExecContext(ctx, `
			INSERT INTO items (id, calendar_id, kind, uid, name, completed,
				status, version_tag, last_modified, created_at, prod_id, deleted_at)
			VALUES (:id, :calendar_id, :kind, :uid, :name, :completed,
				:status, :version_tag, :last_modified, :created_at, :prod_id, :deleted_at)
		`, item)
		if err != nil {
			return fmt.Errorf("item %s: %w", item.ID, err)
		}
	}
	return tx.Commit()
}

func (s Storage) LastSync(ctx context.Context) (time.Time, error) {
	var lastSync string
	err := s.db.GetContext(ctx, &lastSync, `SELECT last_sync FROM sync WHERE id = 1`)
	if errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, err
	}
	return parseTime(lastSync), nil
}

func (s Storage) SaveLastSync(ctx context.Context, t time.Time) error {
	lastSync := formatTime(t)
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO sync (id, last_sync) VALUES (1, ?)
		ON CONFLICT(id) DO UPDATE SET last_sync = ?;
	`, lastSync, lastSync)
	return err
}
