package usecase_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/careerpilot/insights/internal/domain"
	"github.com/careerpilot/insights/internal/usecase"
)

func validSalaryRequest() domain.AnalysisRequest {
	return domain.AnalysisRequest{
		Kind:   domain.KindSalary,
		UserID: "u-1",
		Salary: &domain.SalaryRequest{
			JobTitle:        "Software Engineer",
			Location:        "Remote",
			YearsExperience: 5,
			Industry:        "Technology",
		},
	}
}

func TestValidateRequest_OK(t *testing.T) {
	t.Parallel()
	require.NoError(t, usecase.ValidateRequest(validSalaryRequest()))
}

func TestValidateRequest_MissingUser(t *testing.T) {
	t.Parallel()
	req := validSalaryRequest()
	req.UserID = ""
	err := usecase.ValidateRequest(req)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
}

func TestValidateRequest_MissingFieldsNamed(t *testing.T) {
	t.Parallel()
	req := domain.AnalysisRequest{
		Kind:   domain.KindSalary,
		UserID: "u-1",
		Salary: &domain.SalaryRequest{YearsExperience: 3},
	}
	err := usecase.ValidateRequest(req)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
	assert.Contains(t, err.Error(), "job_title")
	assert.Contains(t, err.Error(), "location")
	assert.Contains(t, err.Error(), "industry")
}

func TestValidateRequest_WhitespaceOnlyIsMissing(t *testing.T) {
	t.Parallel()
	req := validSalaryRequest()
	req.Salary.JobTitle = "   "
	err := usecase.ValidateRequest(req)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
	assert.Contains(t, err.Error(), "job_title")
}

func TestValidateRequest_NegativeExperience(t *testing.T) {
	t.Parallel()
	req := validSalaryRequest()
	req.Salary.YearsExperience = -1
	err := usecase.ValidateRequest(req)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
	assert.Contains(t, err.Error(), "years_experience")
}

func TestValidateRequest_NilPayload(t *testing.T) {
	t.Parallel()
	err := usecase.ValidateRequest(domain.AnalysisRequest{Kind: domain.KindSalary, UserID: "u-1"})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
}

func TestValidateRequest_UnknownKind(t *testing.T) {
	t.Parallel()
	err := usecase.ValidateRequest(domain.AnalysisRequest{Kind: "tarot_reading", UserID: "u-1"})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
}

func TestValidateRequest_InterviewAnswer(t *testing.T) {
	t.Parallel()
	err := usecase.ValidateRequest(domain.AnalysisRequest{
		Kind:   domain.KindInterviewAnswer,
		UserID: "u-1",
		Answer: &domain.InterviewAnswerRequest{Role: "Engineer", Question: "Why?"},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "transcript")

	err = usecase.ValidateRequest(domain.AnalysisRequest{
		Kind:   domain.KindInterviewAnswer,
		UserID: "u-1",
		Answer: &domain.InterviewAnswerRequest{Role: "Engineer", Question: "Why?", Transcript: "Because."},
	})
	require.NoError(t, err)
}

func TestValidateRequest_QuestionCountOptional(t *testing.T) {
	t.Parallel()
	err := usecase.ValidateRequest(domain.AnalysisRequest{
		Kind:      domain.KindInterviewQuestions,
		UserID:    "u-1",
		Questions: &domain.InterviewQuestionsRequest{Role: "Engineer", InterviewType: "mixed"},
	})
	require.NoError(t, err)
}
