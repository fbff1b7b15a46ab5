package sqlite

import (
	"context"
	"database/sql"

	"github.com/pkg/errors"
	_ "modernc.org/sqlite"

	"jobtracker/internal/domain/email"
)

// EmailRepository archives classified emails. It is a read model only; the
// processed-ID file stays the deduplication gate.
type EmailRepository struct {
	db *sql.DB
}

func NewEmailRepository(dbPath string) (*EmailRepository, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, errors.Wrap(err, "open database")
	}

	for _, pragma := range []string{"PRAGMA journal_mode=WAL;", "PRAGMA busy_timeout = 5000;"} {
		if _, err := db.Exec(pragma); err != nil {
			_ = db.Close()
			return nil, errors.Wrapf(err, "apply %q", pragma)
		}
	}

	schema := `
CREATE TABLE IF NOT EXISTS applications (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    gmail_id TEXT UNIQUE NOT NULL,
    date TEXT,
    from_addr TEXT,
    subject TEXT,
    snippet TEXT,
    body TEXT,
    outcome TEXT,
    created_at INTEGER
);
CREATE INDEX IF NOT EXISTS idx_applications_outcome ON applications(outcome);
`
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "create schema")
	}

	return &EmailRepository{db: db}, nil
}

func (r *EmailRepository) Save(ctx context.Context, e *email.Email) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO applications
         (gmail_id, date, from_addr, subject, snippet, body, outcome, created_at)
         VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		e.GmailID, e.Date, e.From, e.Subject, e.Snippet, e.Body,
		e.Outcome.String(), e.CreatedAt.Unix(),
	)

	if err != nil {
		return errors.Wrapf(err, "save email %s", e.GmailID)
	}

	return nil
}

// CountByOutcome returns the number of archived emails per outcome. An outcome
// the classifier cannot produce is reported as an error.
func (r *EmailRepository) CountByOutcome(ctx context.Context) (map[email.Outcome]int, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT outcome, COUNT(*) FROM applications GROUP BY outcome`)
	if err != nil {
		return nil, errors.Wrap(err, "count outcomes")
	}
	defer rows.Close()

	counts := make(map[email.Outcome]int)
	for rows.Next() {
		var outcome string
		var n int
		if err := rows.Scan(&outcome, &n); err != nil {
			return nil, errors.Wrap(err, "scan outcome count")
		}
		o := email.Outcome(outcome)
		if !o.IsValid() {
			return nil, errors.Errorf("unknown outcome %q in archive", outcome)
		}
		counts[o] = n
	}

	return counts, errors.Wrap(rows.Err(), "iterate outcome counts")
}

func (r *EmailRepository) Close() error {
	return r.db.Close()
}
