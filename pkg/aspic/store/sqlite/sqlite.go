package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/cognicore/aspic/pkg/aspic/store"
)

// sqliteStore implements the Store interface using SQLite
type sqliteStore struct {
	db *sql.DB
}

// OpenSQLite opens a SQLite database with WAL mode enabled.
func OpenSQLite(ctx context.Context, path string) (store.Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", store.ErrUnavailable, err)
	}
	// Pragmas are per connection; a single connection keeps foreign keys
	// enforced and serialises writers.
	db.SetMaxOpenConns(1)

	// Enable WAL mode for better concurrency
	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: %v", store.ErrUnavailable, err)
	}

	// Enable foreign keys
	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, err
	}

	// Initialize schema
	if err := initSchema(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	return &sqliteStore{db: db}, nil
}

// Close closes the database connection
func (s *sqliteStore) Close() error {
	return s.db.Close()
}

// initSchema creates tables if they don't exist
func initSchema(ctx context.Context, db *sql.DB) error {
	schema := `
CREATE TABLE IF NOT EXISTS knowledge_bases (
	name TEXT PRIMARY KEY,
	updated_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS rules (
	id TEXT PRIMARY KEY,
	base TEXT NOT NULL,
	position INTEGER NOT NULL,
	consequent TEXT NOT NULL,
	antecedent TEXT NOT NULL,
	dob REAL NOT NULL,
	name TEXT,
	caption TEXT,
	description TEXT,
	FOREIGN KEY(base) REFERENCES knowledge_bases(name) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS rules_by_base ON rules(base, position);

CREATE TABLE IF NOT EXISTS cards (
	id TEXT PRIMARY KEY,
	base TEXT NOT NULL,
	query_id TEXT,
	title TEXT,
	bullets TEXT,
	score_json TEXT,
	FOREIGN KEY(base) REFERENCES knowledge_bases(name) ON DELETE CASCADE
);
`

	_, err := db.ExecContext(ctx, schema)
	return err
}

// SaveRules replaces the rules stored under base in one transaction
func (s *sqliteStore) SaveRules(ctx context.Context, base string, rules []store.RuleRecord) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
INSERT INTO knowledge_bases (name, updated_at)
VALUES (?, ?)
ON CONFLICT(name) DO UPDATE SET updated_at=excluded.updated_at;
`, base, time.Now().UTC().Format(time.RFC3339Nano)); err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM rules WHERE base = ?`, base); err != nil {
		return err
	}

	stmt, err := tx.PrepareContext(ctx, `
INSERT INTO rules (id, base, position, consequent, antecedent, dob, name, caption, description)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?);
`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, r := range rules {
		antecedent := r.Antecedent
		if antecedent == nil {
			antecedent = []string{}
		}
		antecedentJSON, err := json.Marshal(antecedent)
		if err != nil {
			return err
		}
		if _, err := stmt.ExecContext(ctx, r.ID, base, r.Position, r.Consequent, string(antecedentJSON),
			r.Dob, r.Name, r.Caption, r.Description); err != nil {
			return fmt.Errorf("insert rule %s: %w", r.ID, err)
		}
	}

	return tx.Commit()
}

// LoadRules returns the rules of base in position order
func (s *sqliteStore) LoadRules(ctx context.Context, base string) ([]store.RuleRecord, error) {
	if err := s.requireBase(ctx, base); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
SELECT id, position, consequent, antecedent, dob, name, caption, description
FROM rules
WHERE base = ?
ORDER BY position;
`, base)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []store.RuleRecord
	for rows.Next() {
		var r store.RuleRecord
		var antecedentJSON string
		var name, caption, description sql.NullString
		if err := rows.Scan(&r.ID, &r.Position, &r.Consequent, &antecedentJSON, &r.Dob, &name, &caption, &description); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(antecedentJSON), &r.Antecedent); err != nil {
			return nil, err
		}
		if len(r.Antecedent) == 0 {
			r.Antecedent = nil
		}
		r.Name, r.Caption, r.Description = name.String, caption.String, description.String
		out = append(out, r)
	}
	return out, rows.Err()
}

// ListKnowledgeBases returns the stored bases sorted by name
func (s *sqliteStore) ListKnowledgeBases(ctx context.Context) ([]store.BaseInfo, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT kb.name, kb.updated_at, COUNT(r.id)
FROM knowledge_bases kb
LEFT JOIN rules r ON r.base = kb.name
GROUP BY kb.name, kb.updated_at
ORDER BY kb.name;
`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []store.BaseInfo
	for rows.Next() {
		var info store.BaseInfo
		var updated string
		if err := rows.Scan(&info.Name, &updated, &info.Rules); err != nil {
			return nil, err
		}
		if t, err := time.Parse(time.RFC3339Nano, updated); err == nil {
			info.UpdatedAt = t
		}
		out = append(out, info)
	}
	return out, rows.Err()
}

// DeleteKnowledgeBase removes a base; its rules and cards cascade
func (s *sqliteStore) DeleteKnowledgeBase(ctx context.Context, base string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM knowledge_bases WHERE name = ?`, base)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", store.ErrBaseNotFound, base)
	}
	return nil
}

// UpsertCard inserts or updates a card
func (s *sqliteStore) UpsertCard(ctx context.Context, c store.Card) error {
	bulletsJSON, err := json.Marshal(c.Bullets)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, `
INSERT INTO cards (id, base, query_id, title, bullets, score_json)
VALUES (?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
	base=excluded.base,
	query_id=excluded.query_id,
	title=excluded.title,
	bullets=excluded.bullets,
	score_json=excluded.score_json;
`, c.ID, c.Base, c.QueryID, c.Title, string(bulletsJSON), c.ScoreJSON)
	return err
}

// GetCardsByBase retrieves the newest cards of a base
func (s *sqliteStore) GetCardsByBase(ctx context.Context, base string, k int) ([]store.Card, error) {
	if k <= 0 {
		k = 10
	}

	rows, err := s.db.QueryContext(ctx, `
SELECT id, base, query_id, title, bullets, score_json
FROM cards
WHERE base = ?
ORDER BY id DESC
LIMIT ?;
`, base, k)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cards []store.Card
	for rows.Next() {
		var c store.Card
		var bulletsJSON string
		if err := rows.Scan(&c.ID, &c.Base, &c.QueryID, &c.Title, &bulletsJSON, &c.ScoreJSON); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(bulletsJSON), &c.Bullets); err != nil {
			return nil, err
		}
		cards = append(cards, c)
	}
	return cards, rows.Err()
}

func (s *sqliteStore) requireBase(ctx context.Context, base string) error {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM knowledge_bases WHERE name = ?`, base).Scan(&n); err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", store.ErrBaseNotFound, base)
	}
	return nil
}
