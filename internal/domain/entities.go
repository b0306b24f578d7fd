// Package domain holds the core entities, ports and error taxonomy of the
// analysis pipeline. It has no dependencies on adapters.
package domain

import (
	"context"
	"errors"
	"time"
)

// Error taxonomy (sentinels)
var (
	ErrInvalidArgument      = errors.New("invalid argument")
	ErrNotFound             = errors.New("not found")
	ErrUnauthorized         = errors.New("unauthorized")
	ErrRateLimited          = errors.New("rate limited")
	ErrUpstreamUnavailable  = errors.New("upstream unavailable")
	ErrUpstreamTimeout      = errors.New("upstream timeout")
	ErrUpstream             = errors.New("upstream error")
	ErrMalformedOutput      = errors.New("malformed model output")
	ErrSchemaInvalid        = errors.New("schema invalid")
	ErrInvalidQuestionIndex = errors.New("invalid question index")
	ErrInternal             = errors.New("internal error")
)

// Kind enumerates the analysis kinds the pipeline supports.
type Kind string

const (
	KindSalary             Kind = "salary"
	KindCareerPath         Kind = "career_path"
	KindResumeCritique     Kind = "resume_critique"
	KindSkillsFeedback     Kind = "skills_feedback"
	KindInterviewQuestions Kind = "interview_questions"
	KindInterviewAnswer    Kind = "interview_answer"
)

// Kinds lists every supported analysis kind.
func Kinds() []Kind {
	return []Kind{
		KindSalary, KindCareerPath, KindResumeCritique,
		KindSkillsFeedback, KindInterviewQuestions, KindInterviewAnswer,
	}
}

// SalaryRequest asks for a compensation estimate.
// Education, CompanySize and Skills are optional.
type SalaryRequest struct {
	JobTitle        string `json:"job_title" validate:"required"`
	Location        string `json:"location" validate:"required"`
	YearsExperience int    `json:"years_experience" validate:"gte=0"`
	Industry        string `json:"industry" validate:"required"`
	Education       string `json:"education"`
	CompanySize     string `json:"company_size"`
	Skills          string `json:"skills"`
}

// CareerPathRequest asks for a plan from the current role to a target role.
type CareerPathRequest struct {
	CurrentRole     string `json:"current_role" validate:"required"`
	TargetRole      string `json:"target_role" validate:"required"`
	YearsExperience int    `json:"years_experience" validate:"gte=0"`
	Industry        string `json:"industry" validate:"required"`
	Skills          string `json:"skills"`
	Education       string `json:"education"`
}

// ResumeCritiqueRequest asks for a critique of raw resume text.
type ResumeCritiqueRequest struct {
	ResumeText string `json:"resume_text" validate:"required"`
	TargetRole string `json:"target_role"`
	Industry   string `json:"industry"`
}

// SkillsFeedbackRequest asks for feedback on a self-assessment submission.
type SkillsFeedbackRequest struct {
	Role      string `json:"role" validate:"required"`
	SkillArea string `json:"skill_area" validate:"required"`
	Responses string `json:"responses" validate:"required"`
}

// InterviewQuestionsRequest asks for a question set for a mock interview.
type InterviewQuestionsRequest struct {
	Role            string `json:"role" validate:"required"`
	InterviewType   string `json:"interview_type" validate:"required"`
	QuestionCount   int    `json:"question_count"`
	ExperienceLevel string `json:"experience_level"`
}

// InterviewAnswerRequest asks for a score of one spoken answer transcript.
type InterviewAnswerRequest struct {
	Role       string `json:"role" validate:"required"`
	Question   string `json:"question" validate:"required"`
	Category   string `json:"category"`
	Transcript string `json:"transcript" validate:"required"`
}

// AnalysisRequest is a tagged union over all analysis kinds. Exactly the
// variant matching Kind is populated; the rest are nil.
type AnalysisRequest struct {
	Kind   Kind
	UserID string

	Salary         *SalaryRequest
	CareerPath     *CareerPathRequest
	ResumeCritique *ResumeCritiqueRequest
	SkillsFeedback *SkillsFeedbackRequest
	Questions      *InterviewQuestionsRequest
	Answer         *InterviewAnswerRequest
}

// SalaryRange bounds an estimate.
type SalaryRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Percentiles carries the three estimate percentiles.
type Percentiles struct {
	P25 float64 `json:"p25"`
	P50 float64 `json:"p50"`
	P75 float64 `json:"p75"`
}

// ImpactFactor names one input's effect on the estimate.
type ImpactFactor struct {
	Name   string `json:"name"`
	Impact string `json:"impact"`
}

// SalaryResult is the strict output shape of a salary analysis.
// Invariant: Range.Min <= P25 <= P50 <= P75 <= Range.Max on the fallback
// path; the model path is shape-checked only.
type SalaryResult struct {
	MedianSalary float64        `json:"medianSalary"`
	SalaryRange  SalaryRange    `json:"salaryRange"`
	Percentiles  Percentiles    `json:"percentiles"`
	Factors      []ImpactFactor `json:"factors"`
	Trend        string         `json:"trend"`
	Insight      string         `json:"insight"`
}

// CareerStep is one stage of a career path plan.
type CareerStep struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Duration    string `json:"duration"`
}

// CareerPathResult is the strict output shape of a career path analysis.
type CareerPathResult struct {
	Timeline        string       `json:"timeline"`
	Steps           []CareerStep `json:"steps"`
	Recommendations []string     `json:"recommendations"`
}

// ResumeCritiqueResult is the strict output shape of a resume critique.
type ResumeCritiqueResult struct {
	OverallScore int      `json:"overallScore"`
	Strengths    []string `json:"strengths"`
	Weaknesses   []string `json:"weaknesses"`
	Suggestions  []string `json:"suggestions"`
	Summary      string   `json:"summary"`
}

// SkillsFeedbackResult is the strict output shape of skills feedback.
type SkillsFeedbackResult struct {
	Score        int      `json:"score"`
	Level        string   `json:"level"`
	Strengths    []string `json:"strengths"`
	Improvements []string `json:"improvements"`
	Feedback     string   `json:"feedback"`
}

// Question is one generated interview question.
type Question struct {
	ID         string `json:"id"`
	Text       string `json:"text"`
	Category   string `json:"category"`
	Difficulty string `json:"difficulty"`
}

// InterviewQuestionsResult is the strict output shape of question generation.
type InterviewQuestionsResult struct {
	Questions []Question `json:"questions"`
}

// InterviewAnswerResult is the strict output shape of answer scoring.
// Score is bounded to [0,100].
type InterviewAnswerResult struct {
	Score        int      `json:"score"`
	Feedback     string   `json:"feedback"`
	Strengths    []string `json:"strengths"`
	Improvements []string `json:"improvements"`
}

// AnalysisResult is a tagged union mirroring AnalysisRequest. UsedFallback
// reports whether the deterministic synthesizer produced the payload.
type AnalysisResult struct {
	Kind         Kind
	UsedFallback bool
	CreatedAt    time.Time

	Salary         *SalaryResult
	CareerPath     *CareerPathResult
	ResumeCritique *ResumeCritiqueResult
	SkillsFeedback *SkillsFeedbackResult
	Questions      *InterviewQuestionsResult
	Answer         *InterviewAnswerResult
}

// Payload returns the populated variant of the union as an any, for
// serialization. Returns nil when no variant is set.
func (r AnalysisResult) Payload() any {
	switch r.Kind {
	case KindSalary:
		if r.Salary != nil {
			return r.Salary
		}
	case KindCareerPath:
		if r.CareerPath != nil {
			return r.CareerPath
		}
	case KindResumeCritique:
		if r.ResumeCritique != nil {
			return r.ResumeCritique
		}
	case KindSkillsFeedback:
		if r.SkillsFeedback != nil {
			return r.SkillsFeedback
		}
	case KindInterviewQuestions:
		if r.Questions != nil {
			return r.Questions
		}
	case KindInterviewAnswer:
		if r.Answer != nil {
			return r.Answer
		}
	}
	return nil
}

// Analysis is one persisted pipeline run: the request, its result and
// ownership metadata.
type Analysis struct {
	ID           string
	UserID       string
	Kind         Kind
	Request      AnalysisRequest
	Result       AnalysisResult
	UsedFallback bool
	CreatedAt    time.Time
}

// SessionStatus is the lifecycle status of an interview session.
type SessionStatus string

const (
	SessionInProgress SessionStatus = "in_progress"
	SessionCompleted  SessionStatus = "completed"
)

// Answer records one scored response within a session.
type Answer struct {
	QuestionIndex int      `json:"question_index"`
	Transcript    string   `json:"transcript"`
	Score         int      `json:"score"`
	Feedback      string   `json:"feedback"`
	Strengths     []string `json:"strengths"`
	Improvements  []string `json:"improvements"`
}

// InterviewSession is the multi-turn interview state. OverallScore and the
// aggregated strength/improvement lists are populated at completion.
type InterviewSession struct {
	ID            string        `json:"id"`
	UserID        string        `json:"user_id"`
	Role          string        `json:"role"`
	InterviewType string        `json:"interview_type"`
	Questions     []Question    `json:"questions"`
	Answers       []Answer      `json:"answers"`
	Status        SessionStatus `json:"status"`
	OverallScore  int           `json:"overall_score"`
	Strengths     []string      `json:"strengths"`
	Improvements  []string      `json:"improvements"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}

// AnswerFor returns the recorded answer for a question index, if any.
func (s InterviewSession) AnswerFor(idx int) (Answer, bool) {
	for _, a := range s.Answers {
		if a.QuestionIndex == idx {
			return a, true
		}
	}
	return Answer{}, false
}

// Repositories (ports)

// AnalysisRepository persists pipeline runs.
type AnalysisRepository interface {
	Create(ctx context.Context, a Analysis) (string, error)
	Get(ctx context.Context, id string) (Analysis, error)
}

// SessionRepository persists interview sessions.
type SessionRepository interface {
	Create(ctx context.Context, s InterviewSession) (string, error)
	Get(ctx context.Context, id string) (InterviewSession, error)
	Update(ctx context.Context, s InterviewSession) error
}

// AIClient (port)

// AIClient issues one non-streaming chat completion. Implementations must
// not retry; the orchestrator owns failure policy.
type AIClient interface {
	ChatJSON(ctx context.Context, systemPrompt, userPrompt string, maxTokens int) (string, error)
}

// OutputParser (port)

// OutputParser extracts and shape-checks the JSON embedded in a raw model
// completion for a given kind. The returned bytes are valid JSON whose
// required top-level keys for the kind are present.
type OutputParser interface {
	Parse(kind Kind, raw string) ([]byte, error)
}

// SessionLocker (port)

// SessionLocker serializes transitions of a single interview session.
// Acquire blocks until the session lock is held or ctx is done; the
// returned release function must be called exactly once.
type SessionLocker interface {
	Acquire(ctx context.Context, sessionID string) (func(), error)
}
