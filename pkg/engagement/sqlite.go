package engagement

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"florence-hq/vesta/pkg/review/eligibility"
)

const engagementSchema = `
CREATE TABLE IF NOT EXISTS engagements (
	id          TEXT PRIMARY KEY,
	initiator_id TEXT NOT NULL,
	starts_at   TIMESTAMP NOT NULL,
	ends_at     TIMESTAMP NOT NULL,
	completed   INTEGER NOT NULL DEFAULT 0,
	reviewed_at TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_engagements_initiator
	ON engagements(initiator_id, ends_at);

CREATE TABLE IF NOT EXISTS assignments (
	engagement_id  TEXT NOT NULL,
	participant_id TEXT NOT NULL,
	priority       INTEGER NOT NULL,
	reviewed_at    TIMESTAMP,
	PRIMARY KEY (engagement_id, participant_id)
);

CREATE INDEX IF NOT EXISTS idx_assignments_participant
	ON assignments(participant_id, priority);
`

// SQLiteStoreConfig contains configuration for the SQLite engagement store.
type SQLiteStoreConfig struct {
	// Path is the database file path.
	Path string

	// InitiatorID is the local user whose requested engagements
	// FetchForInitiator returns.
	InitiatorID string

	// BusyTimeout is the duration to wait when the database is locked.
	// Default: 5 seconds
	BusyTimeout time.Duration
}

// SQLiteStore is a file-backed EngagementStore. It exists for the daemon
// and for development fixtures; production hosts adapt their own session
// APIs instead.
type SQLiteStore struct {
	db          *sql.DB
	initiatorID string
}

// NewSQLiteStore opens (creating if needed) the database at config.Path and
// ensures the schema.
func NewSQLiteStore(config SQLiteStoreConfig) (*SQLiteStore, error) {
	if config.Path == "" {
		return nil, fmt.Errorf("database path cannot be empty")
	}
	if config.BusyTimeout <= 0 {
		config.BusyTimeout = 5 * time.Second
	}

	db, err := sql.Open("sqlite3", config.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open engagement database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}
	if _, err := db.Exec(fmt.Sprintf("PRAGMA busy_timeout=%d;", config.BusyTimeout.Milliseconds())); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set busy timeout: %w", err)
	}
	if _, err := db.Exec(engagementSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create engagement schema: %w", err)
	}

	return &SQLiteStore{db: db, initiatorID: config.InitiatorID}, nil
}

// FetchForInitiator implements review.EngagementStore.
func (s *SQLiteStore) FetchForInitiator(ctx context.Context) ([]eligibility.Engagement, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, starts_at, ends_at, completed, reviewed_at
		FROM engagements
		WHERE initiator_id = ?
		ORDER BY ends_at ASC, id ASC`, s.initiatorID)
	if err != nil {
		return nil, fmt.Errorf("failed to query engagements: %w", err)
	}
	defer rows.Close()
	return scanEngagements(rows)
}

// FetchForParticipant implements review.EngagementStore.
func (s *SQLiteStore) FetchForParticipant(ctx context.Context, userID string) ([]eligibility.Engagement, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT e.id, e.starts_at, e.ends_at, e.completed, e.reviewed_at
		FROM engagements e
		JOIN assignments a ON a.engagement_id = e.id
		WHERE a.participant_id = ?
		ORDER BY a.priority ASC`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query assigned engagements: %w", err)
	}
	defer rows.Close()
	return scanEngagements(rows)
}

// FetchAssignmentRecords implements review.EngagementStore. Records come
// back in priority order.
func (s *SQLiteStore) FetchAssignmentRecords(ctx context.Context, userID string) ([]eligibility.AssignmentRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT engagement_id, participant_id, reviewed_at
		FROM assignments
		WHERE participant_id = ?
		ORDER BY priority ASC`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query assignments: %w", err)
	}
	defer rows.Close()

	var records []eligibility.AssignmentRecord
	for rows.Next() {
		var rec eligibility.AssignmentRecord
		var reviewedAt sql.NullTime
		if err := rows.Scan(&rec.EngagementID, &rec.ParticipantID, &reviewedAt); err != nil {
			return nil, fmt.Errorf("failed to scan assignment: %w", err)
		}
		if reviewedAt.Valid {
			t := reviewedAt.Time
			rec.ReviewedAt = &t
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate assignments: %w", err)
	}
	return records, nil
}

// SeedEngagement inserts or replaces an engagement owned by initiatorID.
func (s *SQLiteStore) SeedEngagement(ctx context.Context, initiatorID string, eng eligibility.Engagement) error {
	if eng.ID == "" {
		return fmt.Errorf("engagement ID cannot be empty")
	}
	var reviewedAt any
	if eng.ReviewedAt != nil {
		reviewedAt = *eng.ReviewedAt
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO engagements (id, initiator_id, starts_at, ends_at, completed, reviewed_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		eng.ID, initiatorID, eng.StartsAt, eng.EndsAt, eng.Completed, reviewedAt)
	if err != nil {
		return fmt.Errorf("failed to seed engagement: %w", err)
	}
	return nil
}

// SeedAssignment inserts or replaces an assignment record at the given
// priority. Lower priority values are fetched first.
func (s *SQLiteStore) SeedAssignment(ctx context.Context, priority int, rec eligibility.AssignmentRecord) error {
	if rec.EngagementID == "" || rec.ParticipantID == "" {
		return fmt.Errorf("assignment IDs cannot be empty")
	}
	var reviewedAt any
	if rec.ReviewedAt != nil {
		reviewedAt = *rec.ReviewedAt
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO assignments (engagement_id, participant_id, priority, reviewed_at)
		VALUES (?, ?, ?, ?)`,
		rec.EngagementID, rec.ParticipantID, priority, reviewedAt)
	if err != nil {
		return fmt.Errorf("failed to seed assignment: %w", err)
	}
	return nil
}

// MarkEngagementReviewed stamps the engagement's review time, ending its
// eligibility for initiator prompts.
func (s *SQLiteStore) MarkEngagementReviewed(ctx context.Context, engagementID string, at time.Time) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE engagements SET reviewed_at = ? WHERE id = ?`, at, engagementID)
	if err != nil {
		return fmt.Errorf("failed to mark engagement reviewed: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("engagement %q not found", engagementID)
	}
	return nil
}

// MarkAssignmentReviewed stamps the assignment's review time, ending its
// eligibility for participant prompts.
func (s *SQLiteStore) MarkAssignmentReviewed(ctx context.Context, engagementID, participantID string, at time.Time) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE assignments SET reviewed_at = ? WHERE engagement_id = ? AND participant_id = ?`,
		at, engagementID, participantID)
	if err != nil {
		return fmt.Errorf("failed to mark assignment reviewed: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("assignment %q/%q not found", engagementID, participantID)
	}
	return nil
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func scanEngagements(rows *sql.Rows) ([]eligibility.Engagement, error) {
	var engs []eligibility.Engagement
	for rows.Next() {
		var eng eligibility.Engagement
		var reviewedAt sql.NullTime
		if err := rows.Scan(&eng.ID, &eng.StartsAt, &eng.EndsAt, &eng.Completed, &reviewedAt); err != nil {
			return nil, fmt.Errorf("failed to scan engagement: %w", err)
		}
		if reviewedAt.Valid {
			t := reviewedAt.Time
			eng.ReviewedAt = &t
		}
		engs = append(engs, eng)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate engagements: %w", err)
	}
	return engs, nil
}
