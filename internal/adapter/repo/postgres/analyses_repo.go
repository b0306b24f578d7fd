package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.opentelemetry.io/otel"

	"github.com/careerpilot/insights/internal/domain"
)

// AnalysisRepo persists pipeline runs. Request and result payloads are
// stored as JSONB keyed by the kind column; each run is a new row, there is
// no in-place mutation.
type AnalysisRepo struct{ Pool PgxPool }

// NewAnalysisRepo constructs an AnalysisRepo with the given pool.
func NewAnalysisRepo(p PgxPool) *AnalysisRepo { return &AnalysisRepo{Pool: p} }

// Create inserts a new analysis row and returns its id.
func (r *AnalysisRepo) Create(ctx context.Context, a domain.Analysis) (string, error) {
	tracer := otel.Tracer("repo.analyses")
	ctx, span := tracer.Start(ctx, "analyses.Create")
	defer span.End()

	id := a.ID
	if id == "" {
		id = uuid.New().String()
	}
	reqJSON, err := json.Marshal(requestPayload(a.Request))
	if err != nil {
		return "", fmt.Errorf("op=analysis.create: marshal request: %w", err)
	}
	resJSON, err := json.Marshal(a.Result.Payload())
	if err != nil {
		return "", fmt.Errorf("op=analysis.create: marshal result: %w", err)
	}
	q := `INSERT INTO analyses (id, user_id, kind, request, result, used_fallback, created_at) VALUES ($1,$2,$3,$4,$5,$6,$7)`
	if _, err := r.Pool.Exec(ctx, q, id, a.UserID, a.Kind, reqJSON, resJSON, a.UsedFallback, a.CreatedAt.UTC()); err != nil {
		return "", fmt.Errorf("op=analysis.create: %w", err)
	}
	return id, nil
}

// Get loads an analysis by id.
func (r *AnalysisRepo) Get(ctx context.Context, id string) (domain.Analysis, error) {
	tracer := otel.Tracer("repo.analyses")
	ctx, span := tracer.Start(ctx, "analyses.Get")
	defer span.End()

	q := `SELECT id, user_id, kind, request, result, used_fallback, created_at FROM analyses WHERE id=$1`
	row := r.Pool.QueryRow(ctx, q, id)
	var (
		a                domain.Analysis
		reqJSON, resJSON []byte
		createdAt        time.Time
	)
	if err := row.Scan(&a.ID, &a.UserID, &a.Kind, &reqJSON, &resJSON, &a.UsedFallback, &createdAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Analysis{}, fmt.Errorf("op=analysis.get: %w", domain.ErrNotFound)
		}
		return domain.Analysis{}, fmt.Errorf("op=analysis.get: %w", err)
	}
	a.CreatedAt = createdAt
	req, err := decodeRequest(a.Kind, a.UserID, reqJSON)
	if err != nil {
		return domain.Analysis{}, fmt.Errorf("op=analysis.get: %w", err)
	}
	a.Request = req
	res, err := decodeStoredResult(a.Kind, a.UsedFallback, createdAt, resJSON)
	if err != nil {
		return domain.Analysis{}, fmt.Errorf("op=analysis.get: %w", err)
	}
	a.Result = res
	return a, nil
}

func requestPayload(req domain.AnalysisRequest) any {
	switch req.Kind {
	case domain.KindSalary:
		return req.Salary
	case domain.KindCareerPath:
		return req.CareerPath
	case domain.KindResumeCritique:
		return req.ResumeCritique
	case domain.KindSkillsFeedback:
		return req.SkillsFeedback
	case domain.KindInterviewQuestions:
		return req.Questions
	case domain.KindInterviewAnswer:
		return req.Answer
	}
	return nil
}

func decodeRequest(kind domain.Kind, userID string, raw []byte) (domain.AnalysisRequest, error) {
	req := domain.AnalysisRequest{Kind: kind, UserID: userID}
	var err error
	switch kind {
	case domain.KindSalary:
		req.Salary = &domain.SalaryRequest{}
		err = json.Unmarshal(raw, req.Salary)
	case domain.KindCareerPath:
		req.CareerPath = &domain.CareerPathRequest{}
		err = json.Unmarshal(raw, req.CareerPath)
	case domain.KindResumeCritique:
		req.ResumeCritique = &domain.ResumeCritiqueRequest{}
		err = json.Unmarshal(raw, req.ResumeCritique)
	case domain.KindSkillsFeedback:
		req.SkillsFeedback = &domain.SkillsFeedbackRequest{}
		err = json.Unmarshal(raw, req.SkillsFeedback)
	case domain.KindInterviewQuestions:
		req.Questions = &domain.InterviewQuestionsRequest{}
		err = json.Unmarshal(raw, req.Questions)
	case domain.KindInterviewAnswer:
		req.Answer = &domain.InterviewAnswerRequest{}
		err = json.Unmarshal(raw, req.Answer)
	default:
		err = fmt.Errorf("unknown kind %q", kind)
	}
	return req, err
}

func decodeStoredResult(kind domain.Kind, usedFallback bool, createdAt time.Time, raw []byte) (domain.AnalysisResult, error) {
	res := domain.AnalysisResult{Kind: kind, UsedFallback: usedFallback, CreatedAt: createdAt}
	var err error
	switch kind {
	case domain.KindSalary:
		res.Salary = &domain.SalaryResult{}
		err = json.Unmarshal(raw, res.Salary)
	case domain.KindCareerPath:
		res.CareerPath = &domain.CareerPathResult{}
		err = json.Unmarshal(raw, res.CareerPath)
	case domain.KindResumeCritique:
		res.ResumeCritique = &domain.ResumeCritiqueResult{}
		err = json.Unmarshal(raw, res.ResumeCritique)
	case domain.KindSkillsFeedback:
		res.SkillsFeedback = &domain.SkillsFeedbackResult{}
		err = json.Unmarshal(raw, res.SkillsFeedback)
	case domain.KindInterviewQuestions:
		res.Questions = &domain.InterviewQuestionsResult{}
		err = json.Unmarshal(raw, res.Questions)
	case domain.KindInterviewAnswer:
		res.Answer = &domain.InterviewAnswerResult{}
		err = json.Unmarshal(raw, res.Answer)
	default:
		err = fmt.Errorf("unknown kind %q", kind)
	}
	return res, err
}
