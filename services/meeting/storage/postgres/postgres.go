package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/joeleesuh/delegate-ai/pkg/gen"
	"github.com/joeleesuh/delegate-ai/pkg/logger"
	"github.com/joeleesuh/delegate-ai/services/meeting/entity"
	"github.com/joeleesuh/delegate-ai/services/meeting/storage"
)

const schema = `
CREATE TABLE IF NOT EXISTS meetings (
	id               UUID PRIMARY KEY,
	source_link      TEXT NOT NULL,
	display_name     TEXT,
	organizer_name   TEXT,
	status           TEXT NOT NULL DEFAULT 'pending',
	error_message    TEXT,
	transcript       TEXT,
	analysis         JSONB,
	audio_path       TEXT,
	duration_seconds INTEGER,
	created_at       TIMESTAMPTZ NOT NULL DEFAULT now(),
	completed_at     TIMESTAMPTZ
)`

const meetingColumns = `id, source_link, display_name, organizer_name, status,
	error_message, transcript, analysis, audio_path, duration_seconds,
	created_at, completed_at`

type pgStorage struct {
	db  *sql.DB
	ids gen.UUIDGenerator
}

// New wraps an open Postgres connection. The caller owns the *sql.DB and the
// lib/pq driver registration.
func New(db *sql.DB) storage.Storage {
	return &pgStorage{
		db:  db,
		ids: gen.UUID(),
	}
}

// EnsureSchema creates the meetings table when it does not exist yet.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to create meetings table: %w", err)
	}
	return nil
}

func (s *pgStorage) CreateMeeting(ctx context.Context, req *entity.CreateMeetingRequest) (*entity.Meeting, error) {
	log := logger.FromContext(ctx)

	row := s.db.QueryRowContext(ctx, `
		INSERT INTO meetings (id, source_link, display_name, organizer_name, status, created_at)
		VALUES ($1, $2, $3, $4, $5, now())
		RETURNING `+meetingColumns,
		s.ids.Next().String(), req.SourceLink, req.DisplayName, req.OrganizerName, entity.StatusPending,
	)

	m, err := scanMeeting(row)
	if err != nil {
		log.Error("failed to create meeting", "error", err)
		return nil, fmt.Errorf("failed to create meeting: %w", err)
	}
	log.Debug("created meeting", "id", m.ID)

	return m, nil
}

func (s *pgStorage) GetMeeting(ctx context.Context, id string) (*entity.Meeting, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+meetingColumns+` FROM meetings WHERE id = $1`, id)

	m, err := scanMeeting(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, entity.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get meeting: %w", err)
	}
	return m, nil
}

func (s *pgStorage) ListMeetings(ctx context.Context) ([]*entity.Meeting, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+meetingColumns+` FROM meetings ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list meetings: %w", err)
	}
	defer rows.Close()

	var out []*entity.Meeting
	for rows.Next() {
		m, err := scanMeeting(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan meeting row: %w", err)
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate meeting rows: %w", err)
	}
	return out, nil
}

func (s *pgStorage) BeginProcessing(ctx context.Context, id string) (*entity.Meeting, error) {
	log := logger.FromContext(ctx)

	// Conditional update doubles as the processing lease: only one trigger
	// can win the pending/failed -> processing transition.
	row := s.db.QueryRowContext(ctx, `
		UPDATE meetings
		SET status = $2, error_message = NULL, transcript = NULL, analysis = NULL,
		    audio_path = NULL, duration_seconds = NULL, completed_at = NULL
		WHERE id = $1 AND status IN ('pending', 'failed')
		RETURNING `+meetingColumns,
		id, entity.StatusProcessing,
	)

	m, err := scanMeeting(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, s.beginProcessingConflict(ctx, id)
	}
	if err != nil {
		log.Error("failed to begin processing", "error", err, "id", id)
		return nil, fmt.Errorf("failed to begin processing: %w", err)
	}
	return m, nil
}

func (s *pgStorage) beginProcessingConflict(ctx context.Context, id string) error {
	var status entity.Status
	err := s.db.QueryRowContext(ctx, `SELECT status FROM meetings WHERE id = $1`, id).Scan(&status)
	if errors.Is(err, sql.ErrNoRows) {
		return entity.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to inspect meeting status: %w", err)
	}

	switch status {
	case entity.StatusCompleted:
		return entity.ErrAlreadyCompleted
	case entity.StatusProcessing:
		return entity.ErrAlreadyProcessing
	}
	return fmt.Errorf("meeting %s in unexpected status %q", id, status)
}

func (s *pgStorage) SaveRecording(ctx context.Context, id, audioPath string, durationSeconds int) error {
	return s.update(ctx, id, `
		UPDATE meetings SET audio_path = $2, duration_seconds = $3 WHERE id = $1`,
		id, audioPath, durationSeconds)
}

func (s *pgStorage) SaveTranscript(ctx context.Context, id, transcript string) error {
	return s.update(ctx, id, `
		UPDATE meetings SET transcript = $2 WHERE id = $1`,
		id, transcript)
}

func (s *pgStorage) Complete(ctx context.Context, id string, analysis *entity.AnalysisResult) (*entity.Meeting, error) {
	var analysisJSON any
	if analysis != nil {
		data, err := json.Marshal(analysis)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal analysis: %w", err)
		}
		analysisJSON = string(data)
	}

	row := s.db.QueryRowContext(ctx, `
		UPDATE meetings
		SET status = $2, analysis = $3, error_message = NULL, completed_at = now()
		WHERE id = $1
		RETURNING `+meetingColumns,
		id, entity.StatusCompleted, analysisJSON,
	)

	m, err := scanMeeting(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, entity.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to complete meeting: %w", err)
	}
	return m, nil
}

func (s *pgStorage) Fail(ctx context.Context, id, message string) error {
	return s.update(ctx, id, `
		UPDATE meetings SET status = 'failed', error_message = $2, analysis = NULL WHERE id = $1`,
		id, message)
}

func (s *pgStorage) update(ctx context.Context, id, query string, args ...any) error {
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update meeting %s: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return entity.ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMeeting(row rowScanner) (*entity.Meeting, error) {
	var (
		m            entity.Meeting
		displayName  sql.NullString
		organizer    sql.NullString
		errorMessage sql.NullString
		transcript   sql.NullString
		analysis     sql.NullString
		audioPath    sql.NullString
		duration     sql.NullInt32
		completedAt  sql.NullTime
	)

	err := row.Scan(&m.ID, &m.SourceLink, &displayName, &organizer, &m.Status,
		&errorMessage, &transcript, &analysis, &audioPath, &duration,
		&m.CreatedAt, &completedAt)
	if err != nil {
		return nil, err
	}

	m.DisplayName = displayName.String
	m.OrganizerName = organizer.String
	m.ErrorMessage = errorMessage.String
	m.Transcript = transcript.String
	m.AudioPath = audioPath.String
	m.DurationSeconds = int(duration.Int32)
	if completedAt.Valid {
		t := completedAt.Time
		m.CompletedAt = &t
	}
	if analysis.Valid && analysis.String != "" {
		var a entity.AnalysisResult
		if err := json.Unmarshal([]byte(analysis.String), &a); err != nil {
			return nil, fmt.Errorf("failed to decode stored analysis: %w", err)
		}
		m.Analysis = &a
	}
	return &m, nil
}
