package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/zhouzirui/mock-interview/backend/internal/model/interview"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS sessions (
    session_id TEXT PRIMARY KEY,
    user_id TEXT NOT NULL,
    role TEXT NOT NULL,
    mode TEXT NOT NULL,
    num_questions INTEGER NOT NULL,
    history TEXT NOT NULL DEFAULT '[]',
    current_question_index INTEGER NOT NULL DEFAULT 0,
    start_time TEXT NOT NULL,
    end_time TEXT,
    updated_at TEXT NOT NULL
);
`

type SQLiteStore struct {
	db *sql.DB
}

func NewSQLite(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, err
	}
	// sqlite allows one writer; a single connection also keeps ":memory:" databases shared.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create sessions table: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Name() string { return "sqlite" }

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) Get(ctx context.Context, sessionID string) (*interview.Session, error) {
	if sessionID == "" {
		return nil, ErrNotFound
	}

	var rec record
	var endTime sql.NullString
	err := s.db.QueryRowContext(ctx, `
		SELECT session_id, user_id, role, mode, num_questions, history, current_question_index, start_time, end_time
		FROM sessions WHERE session_id = ?`, sessionID).Scan(
		&rec.SessionID, &rec.UserID, &rec.Role, &rec.Mode, &rec.NumQuestions,
		&rec.History, &rec.CurrentQuestionIndex, &rec.StartTime, &endTime,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if endTime.Valid {
		rec.EndTime = &endTime.String
	}
	return rec.toSession(), nil
}

func (s *SQLiteStore) Save(ctx context.Context, session *interview.Session) error {
	if err := validateSession(session); err != nil {
		return err
	}

	rec, err := toRecord(session)
	if err != nil {
		return fmt.Errorf("encode session %s: %w", session.SessionID, err)
	}

	var endTime sql.NullString
	if rec.EndTime != nil {
		endTime = sql.NullString{String: *rec.EndTime, Valid: true}
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO sessions (session_id, user_id, role, mode, num_questions, history, current_question_index, start_time, end_time, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(session_id) DO UPDATE SET
			user_id = excluded.user_id,
			role = excluded.role,
			mode = excluded.mode,
			num_questions = excluded.num_questions,
			history = excluded.history,
			current_question_index = excluded.current_question_index,
			start_time = excluded.start_time,
			end_time = excluded.end_time,
			updated_at = excluded.updated_at`,
		rec.SessionID, rec.UserID, rec.Role, rec.Mode, rec.NumQuestions, rec.History,
		rec.CurrentQuestionIndex, rec.StartTime, endTime, time.Now().UTC().Format(time.RFC3339Nano),
	)
	return err
}
