package usecase

import (
	"fmt"
	"strings"

	"github.com/careerpilot/insights/internal/domain"
)

// notSpecified renders absent optional fields explicitly. A silently dropped
// field would change the model's behavior invisibly, so every field is
// always restated.
const notSpecified = "not specified"

func orNotSpecified(s string) string {
	if strings.TrimSpace(s) == "" {
		return notSpecified
	}
	return s
}

// Prompt is a system/user message pair for one model call.
type Prompt struct {
	System string
	User   string
}

// BuildPrompt renders a validated request into its model instruction. Pure:
// no I/O, no randomness. The system message pins the exact output JSON shape
// and demands JSON only; the parser depends entirely on the model obeying it.
func BuildPrompt(req domain.AnalysisRequest) Prompt {
	switch req.Kind {
	case domain.KindSalary:
		return salaryPrompt(req.Salary)
	case domain.KindCareerPath:
		return careerPathPrompt(req.CareerPath)
	case domain.KindResumeCritique:
		return resumeCritiquePrompt(req.ResumeCritique)
	case domain.KindSkillsFeedback:
		return skillsFeedbackPrompt(req.SkillsFeedback)
	case domain.KindInterviewQuestions:
		return interviewQuestionsPrompt(req.Questions)
	case domain.KindInterviewAnswer:
		return interviewAnswerPrompt(req.Answer)
	}
	return Prompt{}
}

const jsonOnly = "Respond with JSON only. No prose, no markdown fences, no explanation outside the JSON."

func salaryPrompt(r *domain.SalaryRequest) Prompt {
	system := `You are a compensation analyst. Produce a salary estimate as a single JSON object with exactly this shape:
{
  "medianSalary": number,
  "salaryRange": {"min": number, "max": number},
  "percentiles": {"p25": number, "p50": number, "p75": number},
  "factors": [{"name": string, "impact": string}],
  "trend": string,
  "insight": string
}
All amounts are annual USD. ` + jsonOnly
	user := fmt.Sprintf(`Estimate the salary for this profile:
Job title: %s
Location: %s
Years of experience: %d
Industry: %s
Education: %s
Company size: %s
Key skills: %s`,
		r.JobTitle, r.Location, r.YearsExperience, r.Industry,
		orNotSpecified(r.Education), orNotSpecified(r.CompanySize), orNotSpecified(r.Skills))
	return Prompt{System: system, User: user}
}

func careerPathPrompt(r *domain.CareerPathRequest) Prompt {
	system := `You are a career coach. Produce a career path plan as a single JSON object with exactly this shape:
{
  "timeline": string,
  "steps": [{"title": string, "description": string, "duration": string}],
  "recommendations": [string]
}
` + jsonOnly
	user := fmt.Sprintf(`Plan the path between these roles:
Current role: %s
Target role: %s
Years of experience: %d
Industry: %s
Current skills: %s
Education: %s`,
		r.CurrentRole, r.TargetRole, r.YearsExperience, r.Industry,
		orNotSpecified(r.Skills), orNotSpecified(r.Education))
	return Prompt{System: system, User: user}
}

func resumeCritiquePrompt(r *domain.ResumeCritiqueRequest) Prompt {
	system := `You are a resume reviewer. Critique the resume as a single JSON object with exactly this shape:
{
  "overallScore": number,
  "strengths": [string],
  "weaknesses": [string],
  "suggestions": [string],
  "summary": string
}
overallScore is an integer from 0 to 100. ` + jsonOnly
	user := fmt.Sprintf(`Critique this resume:
Target role: %s
Industry: %s
Resume text:
%s`,
		orNotSpecified(r.TargetRole), orNotSpecified(r.Industry), r.ResumeText)
	return Prompt{System: system, User: user}
}

func skillsFeedbackPrompt(r *domain.SkillsFeedbackRequest) Prompt {
	system := `You are a skills assessor. Evaluate the self-assessment as a single JSON object with exactly this shape:
{
  "score": number,
  "level": string,
  "strengths": [string],
  "improvements": [string],
  "feedback": string
}
score is an integer from 0 to 100; level is one of "beginner", "intermediate", "advanced", "expert". ` + jsonOnly
	user := fmt.Sprintf(`Assess this submission:
Role: %s
Skill area: %s
Assessment responses:
%s`,
		r.Role, r.SkillArea, r.Responses)
	return Prompt{System: system, User: user}
}

func interviewQuestionsPrompt(r *domain.InterviewQuestionsRequest) Prompt {
	count := r.QuestionCount
	if count <= 0 {
		count = defaultQuestionCount
	}
	system := fmt.Sprintf(`You are an interview coach. Produce exactly %d interview questions as a single JSON array with exactly this shape:
[{"text": string, "category": string, "difficulty": string}]
difficulty is one of "easy", "medium", "hard". %s`, count, jsonOnly)
	user := fmt.Sprintf(`Generate questions for this interview:
Role: %s
Interview type: %s
Number of questions: %d
Experience level: %s`,
		r.Role, r.InterviewType, count, orNotSpecified(r.ExperienceLevel))
	return Prompt{System: system, User: user}
}

func interviewAnswerPrompt(r *domain.InterviewAnswerRequest) Prompt {
	system := `You are an interview coach. Score the candidate's answer as a single JSON object with exactly this shape:
{
  "score": number,
  "feedback": string,
  "strengths": [string],
  "improvements": [string]
}
score is an integer from 0 to 100. ` + jsonOnly
	user := fmt.Sprintf(`Score this interview answer:
Role: %s
Question: %s
Category: %s
Answer transcript:
%s`,
		r.Role, r.Question, orNotSpecified(r.Category), r.Transcript)
	return Prompt{System: system, User: user}
}
