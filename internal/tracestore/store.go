package tracestore

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/danielpatrickdp/manifold-nav/internal/navigation"
)

// #region schema
const schema = `
CREATE TABLE IF NOT EXISTS trace_entries (
	entry_id          TEXT PRIMARY KEY,
	session_id        TEXT NOT NULL,
	seq               INTEGER NOT NULL,
	manifold_id       TEXT NOT NULL,
	family            TEXT NOT NULL,
	decision          TEXT NOT NULL,
	cause             TEXT,
	tension           REAL NOT NULL,
	velocity          REAL NOT NULL,
	accel             REAL NOT NULL,
	is_ruin           INTEGER NOT NULL DEFAULT 0,
	ruin_hits         TEXT,
	posterior         TEXT NOT NULL,
	violation_count   INTEGER NOT NULL,
	state_description TEXT NOT NULL,
	created_at        TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_trace_entries_session
ON trace_entries(session_id, seq);
`

// #endregion schema

// #region store-struct

// Store persists navigation trace entries in SQLite, grouped by session.
type Store struct {
	db *sql.DB
}

// NewStore opens a SQLite database and runs migrations.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return nil, fmt.Errorf("pragma: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// #endregion store-struct

// #region append

// Append persists one trace entry under a session. seq fixes the replay
// order independent of timestamp resolution.
func (s *Store) Append(sessionID string, seq int, entry navigation.TraceEntry) error {
	ruinHits, err := json.Marshal(entry.Evaluation.RuinHits)
	if err != nil {
		return fmt.Errorf("marshal ruin hits: %w", err)
	}
	posterior, err := json.Marshal(entry.Posterior)
	if err != nil {
		return fmt.Errorf("marshal posterior: %w", err)
	}

	isRuin := 0
	if entry.Evaluation.IsRuin {
		isRuin = 1
	}
	createdAt := entry.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	_, err = s.db.Exec(
		`INSERT INTO trace_entries
		 (entry_id, session_id, seq, manifold_id, family, decision, cause,
		  tension, velocity, accel, is_ruin, ruin_hits, posterior,
		  violation_count, state_description, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.ID,
		sessionID,
		seq,
		entry.Evaluation.ManifoldID,
		entry.Evaluation.Family,
		string(entry.Decision.Verdict),
		nullIfEmpty(string(entry.Decision.Cause)),
		entry.Decision.Metrics.Tension,
		entry.Decision.Metrics.Velocity,
		entry.Decision.Metrics.Accel,
		isRuin,
		string(ruinHits),
		string(posterior),
		len(entry.Evaluation.Result.Violations),
		entry.Evaluation.Result.StateDescription,
		createdAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("insert trace entry: %w", err)
	}
	return nil
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// #endregion append

// #region read

// StoredEntry is a persisted trace row.
type StoredEntry struct {
	EntryID          string
	SessionID        string
	Seq              int
	ManifoldID       string
	Family           string
	Decision         string
	Cause            string
	Tension          float64
	Velocity         float64
	Accel            float64
	IsRuin           bool
	RuinHits         []string
	Posterior        map[string]float64
	ViolationCount   int
	StateDescription string
	CreatedAt        time.Time
}

// Session returns all entries for a session in step order.
func (s *Store) Session(sessionID string) ([]StoredEntry, error) {
	rows, err := s.db.Query(
		`SELECT entry_id, session_id, seq, manifold_id, family, decision, cause,
		        tension, velocity, accel, is_ruin, ruin_hits, posterior,
		        violation_count, state_description, created_at
		 FROM trace_entries WHERE session_id = ? ORDER BY seq ASC`,
		sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("query session %s: %w", sessionID, err)
	}
	defer rows.Close()

	var entries []StoredEntry
	for rows.Next() {
		var e StoredEntry
		var cause sql.NullString
		var ruinHits sql.NullString
		var posterior string
		var isRuin int
		var createdStr string
		if err := rows.Scan(
			&e.EntryID, &e.SessionID, &e.Seq, &e.ManifoldID, &e.Family,
			&e.Decision, &cause, &e.Tension, &e.Velocity, &e.Accel,
			&isRuin, &ruinHits, &posterior, &e.ViolationCount,
			&e.StateDescription, &createdStr,
		); err != nil {
			return nil, fmt.Errorf("scan trace entry: %w", err)
		}
		if cause.Valid {
			e.Cause = cause.String
		}
		e.IsRuin = isRuin != 0
		if ruinHits.Valid && ruinHits.String != "" {
			if err := json.Unmarshal([]byte(ruinHits.String), &e.RuinHits); err != nil {
				return nil, fmt.Errorf("unmarshal ruin hits: %w", err)
			}
		}
		if err := json.Unmarshal([]byte(posterior), &e.Posterior); err != nil {
			return nil, fmt.Errorf("unmarshal posterior: %w", err)
		}
		e.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdStr)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate trace entries: %w", err)
	}
	return entries, nil
}

// Sessions lists distinct session ids, most recent first.
func (s *Store) Sessions() ([]string, error) {
	rows, err := s.db.Query(
		`SELECT session_id FROM trace_entries
		 GROUP BY session_id ORDER BY MAX(created_at) DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan session id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// DecisionCounts aggregates verdict counts for a session.
func (s *Store) DecisionCounts(sessionID string) (map[string]int, error) {
	rows, err := s.db.Query(
		`SELECT decision, COUNT(*) FROM trace_entries
		 WHERE session_id = ? GROUP BY decision`,
		sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("query decision counts: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var decision string
		var n int
		if err := rows.Scan(&decision, &n); err != nil {
			return nil, fmt.Errorf("scan decision count: %w", err)
		}
		counts[decision] = n
	}
	return counts, rows.Err()
}

// #endregion read
