// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package history records backend exchanges in a local SQLite database so
// past answers can be listed, searched, exported and replayed offline.
// Layout state is never stored; a replayed answer is laid out afresh.
package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/termgraph/pkg/types"
)

const dbFile = "history.db"

// ErrNotFound is returned when no recorded exchange matches.
var ErrNotFound = errors.New("no recorded exchange")

// Exchange is one recorded question and the backend's answer.
type Exchange struct {
	ID        string             `json:"id" yaml:"id"`
	Question  string             `json:"question" yaml:"question"`
	CreatedAt time.Time          `json:"created_at" yaml:"created_at"`
	Result    types.SearchResult `json:"result" yaml:"result"`
}

// Store manages the history SQLite database.
type Store struct {
	db         *sql.DB
	dir        string
	maxResults int
	now        func() time.Time
}

// NewStore opens or creates dir/history.db and its schema.
func NewStore(cfg types.HistoryConfig) (*Store, error) {
	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating history directory: %w", err)
	}

	dbPath := filepath.Join(cfg.Dir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = 20
	}

	s := &Store{db: db, dir: cfg.Dir, maxResults: maxResults, now: time.Now}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Dir returns the directory holding the database.
func (s *Store) Dir() string { return s.dir }

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS exchanges (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			id TEXT NOT NULL UNIQUE,
			question TEXT NOT NULL,
			question_key TEXT NOT NULL,
			created_at TEXT NOT NULL,
			payload TEXT NOT NULL,
			search_text TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_exchanges_question_key ON exchanges(question_key)`,
		`CREATE VIRTUAL TABLE IF NOT EXISTS exchanges_fts USING fts4(content="exchanges", question, search_text)`,
		`CREATE TRIGGER IF NOT EXISTS exchanges_ai AFTER INSERT ON exchanges BEGIN
			INSERT INTO exchanges_fts(docid, question, search_text) VALUES (new.rowid, new.question, new.search_text);
		END`,
		`CREATE TRIGGER IF NOT EXISTS exchanges_bd BEFORE DELETE ON exchanges BEGIN
			DELETE FROM exchanges_fts WHERE docid = old.rowid;
		END`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// questionKey folds a question the way the neighborhood filter folds
// labels, so replay matches regardless of case and surrounding space.
func questionKey(q string) string {
	return strings.ToLower(strings.TrimSpace(q))
}

// searchText is the indexed body of an exchange: the report and every
// term label.
func searchText(res *types.SearchResult) string {
	var b strings.Builder
	b.WriteString(res.Report.Summary)
	for _, f := range res.Report.Findings {
		b.WriteByte('\n')
		b.WriteString(f)
	}
	for _, r := range res.Records {
		b.WriteByte('\n')
		b.WriteString(r.Label)
	}
	return b.String()
}

// Record stores one exchange and returns it with its assigned ID.
func (s *Store) Record(ctx context.Context, question string, res *types.SearchResult) (Exchange, error) {
	if res == nil {
		return Exchange{}, fmt.Errorf("recording %q: nil result", question)
	}
	payload, err := json.Marshal(res)
	if err != nil {
		return Exchange{}, fmt.Errorf("encoding result: %w", err)
	}

	ex := Exchange{
		ID:        uuid.NewString(),
		Question:  question,
		CreatedAt: s.now().UTC(),
		Result:    *res,
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO exchanges (id, question, question_key, created_at, payload, search_text)
		VALUES (?, ?, ?, ?, ?, ?)`,
		ex.ID, question, questionKey(question),
		ex.CreatedAt.Format(time.RFC3339Nano), string(payload), searchText(res),
	)
	if err != nil {
		return Exchange{}, fmt.Errorf("inserting exchange: %w", err)
	}
	return ex, nil
}

// Latest returns the most recent exchange for question, compared
// case-insensitively after trimming. It returns ErrNotFound when there is
// none.
func (s *Store) Latest(ctx context.Context, question string) (Exchange, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, question, created_at, payload FROM exchanges
		WHERE question_key = ? ORDER BY rowid DESC LIMIT 1`,
		questionKey(question))
	ex, err := scanExchange(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Exchange{}, fmt.Errorf("%w for %q", ErrNotFound, question)
	}
	return ex, err
}

// Get returns the exchange with the given ID.
func (s *Store) Get(ctx context.Context, id string) (Exchange, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, question, created_at, payload FROM exchanges WHERE id = ?`, id)
	ex, err := scanExchange(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Exchange{}, fmt.Errorf("%w with id %s", ErrNotFound, id)
	}
	return ex, err
}

// List returns up to limit exchanges, newest first. Zero uses the store
// default.
func (s *Store) List(ctx context.Context, limit int) ([]Exchange, error) {
	if limit <= 0 {
		limit = s.maxResults
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, question, created_at, payload FROM exchanges
		ORDER BY rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("listing exchanges: %w", err)
	}
	return collect(rows)
}

// Search runs a full-text query over questions, reports and term labels
// and returns up to limit matches, newest first.
func (s *Store) Search(ctx context.Context, query string, limit int) ([]Exchange, error) {
	if strings.TrimSpace(query) == "" {
		return s.List(ctx, limit)
	}
	if limit <= 0 {
		limit = s.maxResults
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT e.id, e.question, e.created_at, e.payload
		FROM exchanges_fts
		JOIN exchanges e ON e.rowid = exchanges_fts.docid
		WHERE exchanges_fts MATCH ?
		ORDER BY e.rowid DESC LIMIT ?`, query, limit)
	if err != nil {
		return nil, fmt.Errorf("searching exchanges: %w", err)
	}
	return collect(rows)
}

// Prune deletes all but the newest keep exchanges and returns how many
// were removed.
func (s *Store) Prune(ctx context.Context, keep int) (int64, error) {
	if keep < 0 {
		keep = 0
	}
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM exchanges WHERE rowid NOT IN
			(SELECT rowid FROM exchanges ORDER BY rowid DESC LIMIT ?)`, keep)
	if err != nil {
		return 0, fmt.Errorf("pruning exchanges: %w", err)
	}
	return res.RowsAffected()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanExchange(row scanner) (Exchange, error) {
	var (
		ex      Exchange
		created string
		payload string
	)
	if err := row.Scan(&ex.ID, &ex.Question, &created, &payload); err != nil {
		return Exchange{}, err
	}
	t, err := time.Parse(time.RFC3339Nano, created)
	if err != nil {
		return Exchange{}, fmt.Errorf("parsing created_at of %s: %w", ex.ID, err)
	}
	ex.CreatedAt = t
	if err := json.Unmarshal([]byte(payload), &ex.Result); err != nil {
		return Exchange{}, fmt.Errorf("decoding payload of %s: %w", ex.ID, err)
	}
	return ex, nil
}

func collect(rows *sql.Rows) ([]Exchange, error) {
	defer rows.Close()
	var out []Exchange
	for rows.Next() {
		ex, err := scanExchange(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, ex)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating rows: %w", err)
	}
	return out, nil
}
