package journal

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/frameflow/frameflow/internal/domain"
	"github.com/frameflow/frameflow/internal/ports"
)

// PostgresJournal persists frame delivery records in batched inserts. Each
// journal instance tags its rows with a fresh session ID so multiple pipeline
// runs can share a table. Writes are idempotent per (session, frame index).
type PostgresJournal struct {
	db      *sql.DB
	table   string
	session string
}

func NewPostgresJournal(db *sql.DB, table string) *PostgresJournal {
	return &PostgresJournal{
		db:      db,
		table:   table,
		session: uuid.NewString(),
	}
}

func (j *PostgresJournal) Name() string { return "postgres" }

// SessionID identifies this pipeline run in the journal table.
func (j *PostgresJournal) SessionID() string { return j.session }

func (j *PostgresJournal) WriteFrames(records []domain.FrameRecord) error {
	if len(records) == 0 {
		return nil
	}

	var b strings.Builder
	b.WriteString("INSERT INTO ")
	b.WriteString(j.table)
	b.WriteString(" (session_id, frame_index, tick_time, delivered, cumulative) VALUES ")

	args := make([]any, 0, len(records)*5)
	for i, r := range records {
		if i > 0 {
			b.WriteString(",")
		}
		b.WriteString(fmt.Sprintf("($%d,$%d,$%d,$%d,$%d)",
			len(args)+1, len(args)+2, len(args)+3, len(args)+4, len(args)+5))
		args = append(args, j.session, r.Index, r.Tick, r.Delivered, r.Cumulative)
	}

	b.WriteString(" ON CONFLICT (session_id, frame_index) DO NOTHING")

	if _, err := j.db.Exec(b.String(), args...); err != nil {
		return fmt.Errorf("journal insert: %w", err)
	}
	return nil
}

var _ ports.Journal = (*PostgresJournal)(nil)
