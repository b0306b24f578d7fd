// Package usecase contains the analysis pipeline business logic: request
// validation, prompt construction, fallback synthesis, the orchestrator and
// the interview session machine.
package usecase

import (
	"fmt"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/careerpilot/insights/internal/domain"
)

var (
	vldOnce sync.Once
	vld     *validator.Validate
)

func getValidator() *validator.Validate {
	vldOnce.Do(func() { vld = validator.New() })
	return vld
}

// ValidateRequest checks kind-required fields and numeric domains before any
// external call is made. The request is not mutated; string fields are
// trimmed only for the emptiness check. Returns domain.ErrInvalidArgument
// naming the offending fields.
func ValidateRequest(req domain.AnalysisRequest) error {
	if req.UserID == "" {
		return fmt.Errorf("%w: user id required", domain.ErrInvalidArgument)
	}
	var payload any
	switch req.Kind {
	case domain.KindSalary:
		payload = req.Salary
	case domain.KindCareerPath:
		payload = req.CareerPath
	case domain.KindResumeCritique:
		payload = req.ResumeCritique
	case domain.KindSkillsFeedback:
		payload = req.SkillsFeedback
	case domain.KindInterviewQuestions:
		payload = req.Questions
	case domain.KindInterviewAnswer:
		payload = req.Answer
	default:
		return fmt.Errorf("%w: unknown analysis kind %q", domain.ErrInvalidArgument, req.Kind)
	}
	if isNil(payload) {
		return fmt.Errorf("%w: missing %s payload", domain.ErrInvalidArgument, req.Kind)
	}
	if err := getValidator().Struct(payload); err != nil {
		ve, ok := err.(validator.ValidationErrors)
		if !ok {
			return fmt.Errorf("%w: %v", domain.ErrInvalidArgument, err)
		}
		missing := make([]string, 0, len(ve))
		invalid := make([]string, 0, len(ve))
		for _, fe := range ve {
			name := snakeCase(fe.Field())
			if fe.Tag() == "required" {
				missing = append(missing, name)
			} else {
				invalid = append(invalid, name)
			}
		}
		switch {
		case len(missing) > 0 && len(invalid) > 0:
			return fmt.Errorf("%w: missing fields: %s; invalid range: %s",
				domain.ErrInvalidArgument, strings.Join(missing, ", "), strings.Join(invalid, ", "))
		case len(missing) > 0:
			return fmt.Errorf("%w: missing fields: %s", domain.ErrInvalidArgument, strings.Join(missing, ", "))
		default:
			return fmt.Errorf("%w: invalid range: %s", domain.ErrInvalidArgument, strings.Join(invalid, ", "))
		}
	}
	// validator's required tag does not treat whitespace-only strings as
	// empty, but the pipeline must.
	if fields := blankRequiredFields(req); len(fields) > 0 {
		return fmt.Errorf("%w: missing fields: %s", domain.ErrInvalidArgument, strings.Join(fields, ", "))
	}
	return nil
}

func isNil(v any) bool {
	switch t := v.(type) {
	case *domain.SalaryRequest:
		return t == nil
	case *domain.CareerPathRequest:
		return t == nil
	case *domain.ResumeCritiqueRequest:
		return t == nil
	case *domain.SkillsFeedbackRequest:
		return t == nil
	case *domain.InterviewQuestionsRequest:
		return t == nil
	case *domain.InterviewAnswerRequest:
		return t == nil
	}
	return v == nil
}

func blankRequiredFields(req domain.AnalysisRequest) []string {
	check := func(out *[]string, name, val string) {
		if strings.TrimSpace(val) == "" {
			*out = append(*out, name)
		}
	}
	var out []string
	switch req.Kind {
	case domain.KindSalary:
		check(&out, "job_title", req.Salary.JobTitle)
		check(&out, "location", req.Salary.Location)
		check(&out, "industry", req.Salary.Industry)
	case domain.KindCareerPath:
		check(&out, "current_role", req.CareerPath.CurrentRole)
		check(&out, "target_role", req.CareerPath.TargetRole)
		check(&out, "industry", req.CareerPath.Industry)
	case domain.KindResumeCritique:
		check(&out, "resume_text", req.ResumeCritique.ResumeText)
	case domain.KindSkillsFeedback:
		check(&out, "role", req.SkillsFeedback.Role)
		check(&out, "skill_area", req.SkillsFeedback.SkillArea)
		check(&out, "responses", req.SkillsFeedback.Responses)
	case domain.KindInterviewQuestions:
		check(&out, "role", req.Questions.Role)
		check(&out, "interview_type", req.Questions.InterviewType)
	case domain.KindInterviewAnswer:
		check(&out, "role", req.Answer.Role)
		check(&out, "question", req.Answer.Question)
		check(&out, "transcript", req.Answer.Transcript)
	}
	return out
}

// snakeCase converts a Go field name like YearsExperience to years_experience
// for error messages matching the wire field names.
func snakeCase(s string) string {
	var b strings.Builder
	for i, r := range s {
		if r >= 'A' && r <= 'Z' {
			if i > 0 {
				b.WriteByte('_')
			}
			b.WriteRune(r + ('a' - 'A'))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
