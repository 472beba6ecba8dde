package gateway

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/centavo-app/centavo/internal/models"
)

const sqliteSchemaSQL = `
CREATE TABLE IF NOT EXISTS records (
	seq            INTEGER PRIMARY KEY AUTOINCREMENT,
	id             TEXT NOT NULL UNIQUE,
	type           TEXT NOT NULL,
	date           TEXT NOT NULL DEFAULT '',
	description    TEXT NOT NULL DEFAULT '',
	value          TEXT NOT NULL DEFAULT '',
	category       TEXT NOT NULL DEFAULT '',
	account        TEXT NOT NULL DEFAULT '',
	payment_method TEXT NOT NULL DEFAULT '',
	status         TEXT NOT NULL DEFAULT '',
	notes          TEXT NOT NULL DEFAULT '',
	related_id     TEXT NOT NULL DEFAULT '',
	billing_day    INTEGER NOT NULL DEFAULT 0,
	active         INTEGER NOT NULL DEFAULT 0
);
`

// SQLite persists the record set in a single table, replaced whole on every
// Save inside one transaction.
type SQLite struct {
	conn *sql.DB
}

// OpenSQLite opens (or creates) the SQLite database and applies the schema.
func OpenSQLite(dsn string) (*SQLite, error) {
	conn, err := sql.Open("sqlite3", dsn+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("gateway: open db: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("gateway: ping: %w", err)
	}
	if _, err := conn.Exec(sqliteSchemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("gateway: apply schema: %w", err)
	}
	return &SQLite{conn: conn}, nil
}

// Close closes the underlying database connection.
func (s *SQLite) Close() error {
	return s.conn.Close()
}

// Load returns all persisted records in insertion order.
func (s *SQLite) Load() (models.RecordSet, error) {
	rows, err := s.conn.Query(`
		SELECT id, type, date, description, value, category, account,
		       payment_method, status, notes, related_id, billing_day, active
		FROM records ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("gateway: select records: %w", err)
	}
	defer rows.Close()

	var set models.RecordSet
	for rows.Next() {
		var r models.Record
		var value string
		var active int
		if err := rows.Scan(&r.ID, &r.Type, &r.Date, &r.Description, &value,
			&r.Category, &r.Account, &r.PaymentMethod, &r.Status, &r.Notes,
			&r.RelatedID, &r.BillingDay, &active); err != nil {
			return nil, fmt.Errorf("gateway: scan record: %w", err)
		}
		if value != "" {
			if d, err := decimal.NewFromString(value); err == nil {
				r.Value = d
			}
		}
		r.Active = active != 0
		set = append(set, r)
	}
	return set, rows.Err()
}

// Save replaces the whole table with the given set in one transaction.
func (s *SQLite) Save(set models.RecordSet) error {
	tx, err := s.conn.Begin()
	if err != nil {
		return fmt.Errorf("gateway: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	if _, err := tx.Exec(`DELETE FROM records`); err != nil {
		return fmt.Errorf("gateway: clear records: %w", err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO records (id, type, date, description, value, category,
			account, payment_method, status, notes, related_id, billing_day, active)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("gateway: prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, r := range set {
		value := ""
		if !r.Value.IsZero() {
			value = r.Value.String()
		}
		active := 0
		if r.Active {
			active = 1
		}
		if _, err := stmt.Exec(r.ID, string(r.Type), r.Date, r.Description, value,
			r.Category, r.Account, r.PaymentMethod, string(r.Status), r.Notes,
			r.RelatedID, r.BillingDay, active); err != nil {
			return fmt.Errorf("gateway: insert record %s: %w", r.ID, err)
		}
	}

	return tx.Commit()
}

// Compile-time interface checks.
var (
	_ Provider = (*CSV)(nil)
	_ Provider = (*SQLite)(nil)
)
