package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/careerpilot/insights/internal/adapter/observability"
	"github.com/careerpilot/insights/internal/domain"
)

// AnalyzeService orchestrates one analysis request through the pipeline:
// validate, build prompt, call model, parse, fall back on any upstream or
// parsing failure, persist, respond. The model call is bounded by a single
// timeout and never retried; upstream failure is never surfaced to the
// caller, only a validation failure or a persistence failure is.
type AnalyzeService struct {
	AI        domain.AIClient
	Parser    domain.OutputParser
	Analyses  domain.AnalysisRepository
	Timeout   time.Duration
	MaxTokens int
}

// NewAnalyzeService constructs an AnalyzeService with its dependencies.
func NewAnalyzeService(aiCl domain.AIClient, parser domain.OutputParser, repo domain.AnalysisRepository, timeout time.Duration, maxTokens int) AnalyzeService {
	return AnalyzeService{AI: aiCl, Parser: parser, Analyses: repo, Timeout: timeout, MaxTokens: maxTokens}
}

// Run executes the pipeline for one request. Exactly one persistence write
// happens per successful call; a validation failure persists nothing and
// costs no model call.
func (s AnalyzeService) Run(ctx context.Context, req domain.AnalysisRequest) (domain.Analysis, error) {
	if err := ValidateRequest(req); err != nil {
		return domain.Analysis{}, err
	}

	result, err := s.tryModel(ctx, req)
	if err != nil {
		slog.Warn("model path failed; using deterministic fallback",
			slog.String("kind", string(req.Kind)),
			slog.Any("error", err))
		result = SynthesizeFallback(req)
		observability.AnalysesTotal.WithLabelValues(string(req.Kind), "fallback").Inc()
	} else {
		observability.AnalysesTotal.WithLabelValues(string(req.Kind), "ai").Inc()
	}
	result.CreatedAt = time.Now().UTC()

	a := domain.Analysis{
		ID:           uuid.New().String(),
		UserID:       req.UserID,
		Kind:         req.Kind,
		Request:      req,
		Result:       result,
		UsedFallback: result.UsedFallback,
		CreatedAt:    result.CreatedAt,
	}
	id, err := s.Analyses.Create(ctx, a)
	if err != nil {
		// The one fatal failure: a result that cannot be recorded is not
		// delivered.
		return domain.Analysis{}, fmt.Errorf("op=analysis.persist: %w", err)
	}
	a.ID = id
	return a, nil
}

// tryModel runs prompt -> call -> parse -> decode under one deadline. Any
// error here routes the orchestrator to the fallback path.
func (s AnalyzeService) tryModel(ctx context.Context, req domain.AnalysisRequest) (domain.AnalysisResult, error) {
	p := BuildPrompt(req)

	callCtx, cancel := context.WithTimeout(ctx, s.Timeout)
	defer cancel()
	raw, err := s.AI.ChatJSON(callCtx, p.System, p.User, s.MaxTokens)
	if err != nil {
		return domain.AnalysisResult{}, err
	}
	payload, err := s.Parser.Parse(req.Kind, raw)
	if err != nil {
		return domain.AnalysisResult{}, err
	}
	return decodeResult(req.Kind, payload)
}

// decodeResult turns the shape-checked JSON into a typed result. The parser
// guarantees required keys are present, not that values have usable types,
// so decoding failures still route to the fallback.
func decodeResult(kind domain.Kind, payload []byte) (domain.AnalysisResult, error) {
	res := domain.AnalysisResult{Kind: kind}
	var err error
	switch kind {
	case domain.KindSalary:
		var v domain.SalaryResult
		err = json.Unmarshal(payload, &v)
		res.Salary = &v
	case domain.KindCareerPath:
		var v domain.CareerPathResult
		err = json.Unmarshal(payload, &v)
		res.CareerPath = &v
	case domain.KindResumeCritique:
		var v domain.ResumeCritiqueResult
		err = json.Unmarshal(payload, &v)
		res.ResumeCritique = &v
	case domain.KindSkillsFeedback:
		var v domain.SkillsFeedbackResult
		err = json.Unmarshal(payload, &v)
		res.SkillsFeedback = &v
	case domain.KindInterviewQuestions:
		var qs []domain.Question
		err = json.Unmarshal(payload, &qs)
		for i := range qs {
			qs[i].ID = fmt.Sprintf("q%d", i+1)
		}
		res.Questions = &domain.InterviewQuestionsResult{Questions: qs}
	case domain.KindInterviewAnswer:
		var v domain.InterviewAnswerResult
		err = json.Unmarshal(payload, &v)
		res.Answer = &v
	default:
		return res, fmt.Errorf("%w: unknown analysis kind %q", domain.ErrInvalidArgument, kind)
	}
	if err != nil {
		return domain.AnalysisResult{}, fmt.Errorf("%w: decode %s result: %v", domain.ErrSchemaInvalid, kind, err)
	}
	return res, nil
}

// Get loads a stored analysis, enforcing ownership.
func (s AnalyzeService) Get(ctx context.Context, userID, id string) (domain.Analysis, error) {
	a, err := s.Analyses.Get(ctx, id)
	if err != nil {
		return domain.Analysis{}, err
	}
	if a.UserID != userID {
		return domain.Analysis{}, fmt.Errorf("op=analysis.get: %w", domain.ErrNotFound)
	}
	return a, nil
}
