package usecase_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/careerpilot/insights/internal/domain"
	"github.com/careerpilot/insights/internal/usecase"
)

func TestBuildPrompt_Salary_RestatesEveryField(t *testing.T) {
	t.Parallel()
	p := usecase.BuildPrompt(domain.AnalysisRequest{
		Kind:   domain.KindSalary,
		UserID: "u-1",
		Salary: &domain.SalaryRequest{
			JobTitle:        "Software Engineer",
			Location:        "Remote",
			YearsExperience: 5,
			Industry:        "Technology",
			Skills:          "Go, Postgres",
		},
	})
	assert.Contains(t, p.System, "medianSalary")
	assert.Contains(t, p.System, "JSON only")
	assert.Contains(t, p.User, "Software Engineer")
	assert.Contains(t, p.User, "Remote")
	assert.Contains(t, p.User, "5")
	assert.Contains(t, p.User, "Technology")
	assert.Contains(t, p.User, "Go, Postgres")
	// Absent optionals are restated, not dropped.
	assert.Contains(t, p.User, "not specified")
}

func TestBuildPrompt_Questions_CountDefaulted(t *testing.T) {
	t.Parallel()
	p := usecase.BuildPrompt(domain.AnalysisRequest{
		Kind:      domain.KindInterviewQuestions,
		UserID:    "u-1",
		Questions: &domain.InterviewQuestionsRequest{Role: "Backend Engineer", InterviewType: "technical"},
	})
	assert.Contains(t, p.System, "exactly 5 interview questions")
	assert.Contains(t, p.User, "Backend Engineer")
	assert.Contains(t, p.User, "technical")
}

func TestBuildPrompt_Deterministic(t *testing.T) {
	t.Parallel()
	req := domain.AnalysisRequest{
		Kind:           domain.KindResumeCritique,
		UserID:         "u-1",
		ResumeCritique: &domain.ResumeCritiqueRequest{ResumeText: "Experience at Acme."},
	}
	assert.Equal(t, usecase.BuildPrompt(req), usecase.BuildPrompt(req))
}

func TestBuildPrompt_AnswerIncludesQuestionAndTranscript(t *testing.T) {
	t.Parallel()
	p := usecase.BuildPrompt(domain.AnalysisRequest{
		Kind:   domain.KindInterviewAnswer,
		UserID: "u-1",
		Answer: &domain.InterviewAnswerRequest{
			Role:       "SRE",
			Question:   "Describe an incident you handled.",
			Transcript: "Last year our cache fleet failed over badly...",
		},
	})
	assert.Contains(t, p.User, "Describe an incident you handled.")
	assert.Contains(t, p.User, "cache fleet")
	assert.Contains(t, p.System, "score")
}
