package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/careerpilot/insights/internal/config"
	"github.com/careerpilot/insights/internal/domain"
	"github.com/careerpilot/insights/internal/usecase"
)

const maxBodyBytes = 1 << 20 // 1 MiB is generous for text payloads

// Server wires the analysis services into HTTP handlers.
type Server struct {
	Cfg       config.Config
	Analyze   usecase.AnalyzeService
	Interview usecase.InterviewService

	// Readiness probes for backing services. Nil checks are skipped.
	PingDB    func(ctx context.Context) error
	PingRedis func(ctx context.Context) error
}

// NewServer constructs a Server.
func NewServer(cfg config.Config, analyze usecase.AnalyzeService, interview usecase.InterviewService) *Server {
	return &Server{Cfg: cfg, Analyze: analyze, Interview: interview}
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			return fmt.Errorf("request body exceeds %d bytes: %w", maxBodyBytes, domain.ErrInvalidArgument)
		}
		return fmt.Errorf("malformed request body: %w", domain.ErrInvalidArgument)
	}
	// Trailing garbage after the JSON document is rejected.
	if dec.More() {
		return fmt.Errorf("unexpected trailing data: %w", domain.ErrInvalidArgument)
	}
	_, _ = io.Copy(io.Discard, r.Body)
	return nil
}

func (s *Server) runAnalysis(w http.ResponseWriter, r *http.Request, req domain.AnalysisRequest) {
	req.UserID = UserFrom(r.Context())
	a, err := s.Analyze.Run(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, a.ID, a.Result.Payload(), boolPtr(a.UsedFallback))
}

// SalaryHandler handles POST /v1/analyze/salary.
func (s *Server) SalaryHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body domain.SalaryRequest
		if err := decodeBody(w, r, &body); err != nil {
			writeError(w, r, err)
			return
		}
		s.runAnalysis(w, r, domain.AnalysisRequest{Kind: domain.KindSalary, Salary: &body})
	}
}

// CareerPathHandler handles POST /v1/analyze/career-path.
func (s *Server) CareerPathHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body domain.CareerPathRequest
		if err := decodeBody(w, r, &body); err != nil {
			writeError(w, r, err)
			return
		}
		s.runAnalysis(w, r, domain.AnalysisRequest{Kind: domain.KindCareerPath, CareerPath: &body})
	}
}

// ResumeHandler handles POST /v1/analyze/resume.
func (s *Server) ResumeHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body domain.ResumeCritiqueRequest
		if err := decodeBody(w, r, &body); err != nil {
			writeError(w, r, err)
			return
		}
		s.runAnalysis(w, r, domain.AnalysisRequest{Kind: domain.KindResumeCritique, ResumeCritique: &body})
	}
}

// SkillsFeedbackHandler handles POST /v1/analyze/skills-feedback.
func (s *Server) SkillsFeedbackHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body domain.SkillsFeedbackRequest
		if err := decodeBody(w, r, &body); err != nil {
			writeError(w, r, err)
			return
		}
		s.runAnalysis(w, r, domain.AnalysisRequest{Kind: domain.KindSkillsFeedback, SkillsFeedback: &body})
	}
}

// interviewRequest is the action-dispatched body for POST /v1/interview.
type interviewRequest struct {
	Action string `json:"action"`

	// generate-questions
	Role            string `json:"role"`
	InterviewType   string `json:"interview_type"`
	QuestionCount   int    `json:"question_count"`
	ExperienceLevel string `json:"experience_level"`

	// analyze-answer / complete-session
	SessionID     string `json:"session_id"`
	QuestionIndex *int   `json:"question_index"`
	Transcript    string `json:"transcript"`
}

// InterviewHandler handles POST /v1/interview. The action field selects the
// operation: generate-questions, analyze-answer or complete-session.
func (s *Server) InterviewHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body interviewRequest
		if err := decodeBody(w, r, &body); err != nil {
			writeError(w, r, err)
			return
		}
		userID := UserFrom(r.Context())
		switch body.Action {
		case "generate-questions":
			sess, usedFallback, err := s.Interview.GenerateQuestions(r.Context(), userID, domain.InterviewQuestionsRequest{
				Role:            body.Role,
				InterviewType:   body.InterviewType,
				QuestionCount:   body.QuestionCount,
				ExperienceLevel: body.ExperienceLevel,
			})
			if err != nil {
				writeError(w, r, err)
				return
			}
			writeData(w, sess.ID, sess, boolPtr(usedFallback))
		case "analyze-answer":
			if body.SessionID == "" || body.QuestionIndex == nil {
				writeError(w, r, fmt.Errorf("session_id and question_index are required: %w", domain.ErrInvalidArgument))
				return
			}
			sess, usedFallback, err := s.Interview.AnalyzeAnswer(r.Context(), userID, body.SessionID, *body.QuestionIndex, body.Transcript)
			if err != nil {
				writeError(w, r, err)
				return
			}
			writeData(w, sess.ID, sess, boolPtr(usedFallback))
		case "complete-session":
			if body.SessionID == "" {
				writeError(w, r, fmt.Errorf("session_id is required: %w", domain.ErrInvalidArgument))
				return
			}
			sess, err := s.Interview.Complete(r.Context(), userID, body.SessionID)
			if err != nil {
				writeError(w, r, err)
				return
			}
			writeData(w, sess.ID, sess, nil)
		default:
			writeError(w, r, fmt.Errorf("unknown action %q: %w", body.Action, domain.ErrInvalidArgument))
		}
	}
}

// GetAnalysisHandler handles GET /v1/analyses/{id}.
func (s *Server) GetAnalysisHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		a, err := s.Analyze.Get(r.Context(), UserFrom(r.Context()), id)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeData(w, a.ID, a.Result.Payload(), boolPtr(a.UsedFallback))
	}
}

// GetSessionHandler handles GET /v1/interview/{id}.
func (s *Server) GetSessionHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		sess, err := s.Interview.Get(r.Context(), UserFrom(r.Context()), id)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeData(w, sess.ID, sess, nil)
	}
}

// HealthzHandler is a liveness probe.
func (s *Server) HealthzHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

// ReadyzHandler reports readiness of backing services.
func (s *Server) ReadyzHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		checks := map[string]string{}
		ready := true
		if s.PingDB != nil {
			if err := s.PingDB(ctx); err != nil {
				checks["postgres"] = err.Error()
				ready = false
			} else {
				checks["postgres"] = "ok"
			}
		}
		if s.PingRedis != nil {
			if err := s.PingRedis(ctx); err != nil {
				checks["redis"] = err.Error()
				ready = false
			} else {
				checks["redis"] = "ok"
			}
		}
		status := http.StatusOK
		if !ready {
			status = http.StatusServiceUnavailable
		}
		writeJSON(w, status, map[string]any{"ready": ready, "checks": checks})
	}
}
