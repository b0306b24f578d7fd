package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.opentelemetry.io/otel"

	"github.com/careerpilot/insights/internal/domain"
)

// SessionRepo persists interview sessions. Questions, answers and the
// aggregate lists are stored as JSONB.
type SessionRepo struct{ Pool PgxPool }

// NewSessionRepo constructs a SessionRepo with the given pool.
func NewSessionRepo(p PgxPool) *SessionRepo { return &SessionRepo{Pool: p} }

// Create inserts a new session and returns its id.
func (r *SessionRepo) Create(ctx context.Context, s domain.InterviewSession) (string, error) {
	tracer := otel.Tracer("repo.sessions")
	ctx, span := tracer.Start(ctx, "sessions.Create")
	defer span.End()

	id := s.ID
	if id == "" {
		id = uuid.New().String()
	}
	questions, answers, strengths, improvements, err := marshalSessionLists(s)
	if err != nil {
		return "", fmt.Errorf("op=session.create: %w", err)
	}
	q := `INSERT INTO interview_sessions
		(id, user_id, role, interview_type, questions, answers, status, overall_score, strengths, improvements, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)`
	_, err = r.Pool.Exec(ctx, q, id, s.UserID, s.Role, s.InterviewType,
		questions, answers, s.Status, s.OverallScore, strengths, improvements,
		s.CreatedAt.UTC(), s.UpdatedAt.UTC())
	if err != nil {
		return "", fmt.Errorf("op=session.create: %w", err)
	}
	return id, nil
}

// Get loads a session by id.
func (r *SessionRepo) Get(ctx context.Context, id string) (domain.InterviewSession, error) {
	tracer := otel.Tracer("repo.sessions")
	ctx, span := tracer.Start(ctx, "sessions.Get")
	defer span.End()

	q := `SELECT id, user_id, role, interview_type, questions, answers, status, overall_score, strengths, improvements, created_at, updated_at
		FROM interview_sessions WHERE id=$1`
	row := r.Pool.QueryRow(ctx, q, id)
	var (
		s                                        domain.InterviewSession
		questions, answers, strengths, improvements []byte
	)
	if err := row.Scan(&s.ID, &s.UserID, &s.Role, &s.InterviewType, &questions, &answers,
		&s.Status, &s.OverallScore, &strengths, &improvements, &s.CreatedAt, &s.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.InterviewSession{}, fmt.Errorf("op=session.get: %w", domain.ErrNotFound)
		}
		return domain.InterviewSession{}, fmt.Errorf("op=session.get: %w", err)
	}
	if err := unmarshalSessionLists(&s, questions, answers, strengths, improvements); err != nil {
		return domain.InterviewSession{}, fmt.Errorf("op=session.get: %w", err)
	}
	return s, nil
}

// Update rewrites the mutable fields of a session.
func (r *SessionRepo) Update(ctx context.Context, s domain.InterviewSession) error {
	tracer := otel.Tracer("repo.sessions")
	ctx, span := tracer.Start(ctx, "sessions.Update")
	defer span.End()

	questions, answers, strengths, improvements, err := marshalSessionLists(s)
	if err != nil {
		return fmt.Errorf("op=session.update: %w", err)
	}
	q := `UPDATE interview_sessions
		SET questions=$2, answers=$3, status=$4, overall_score=$5, strengths=$6, improvements=$7, updated_at=$8
		WHERE id=$1`
	tag, err := r.Pool.Exec(ctx, q, s.ID, questions, answers, s.Status, s.OverallScore, strengths, improvements, s.UpdatedAt.UTC())
	if err != nil {
		return fmt.Errorf("op=session.update: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("op=session.update: %w", domain.ErrNotFound)
	}
	return nil
}

func marshalSessionLists(s domain.InterviewSession) (questions, answers, strengths, improvements []byte, err error) {
	if questions, err = json.Marshal(s.Questions); err != nil {
		return
	}
	if answers, err = json.Marshal(s.Answers); err != nil {
		return
	}
	if strengths, err = json.Marshal(s.Strengths); err != nil {
		return
	}
	improvements, err = json.Marshal(s.Improvements)
	return
}

func unmarshalSessionLists(s *domain.InterviewSession, questions, answers, strengths, improvements []byte) error {
	if err := json.Unmarshal(questions, &s.Questions); err != nil {
		return err
	}
	if err := json.Unmarshal(answers, &s.Answers); err != nil {
		return err
	}
	if err := json.Unmarshal(strengths, &s.Strengths); err != nil {
		return err
	}
	return json.Unmarshal(improvements, &s.Improvements)
}
