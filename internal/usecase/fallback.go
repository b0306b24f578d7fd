package usecase

import (
	"fmt"
	"math"
	"regexp"
	"strings"

	"github.com/careerpilot/insights/internal/domain"
)

// SynthesizeFallback deterministically computes a result of the same shape
// as a successful model response. Pure function of the request: no external
// calls, no randomness, no clock. Every analysis kind has exactly one
// fallback path.
func SynthesizeFallback(req domain.AnalysisRequest) domain.AnalysisResult {
	res := domain.AnalysisResult{Kind: req.Kind, UsedFallback: true}
	switch req.Kind {
	case domain.KindSalary:
		res.Salary = fallbackSalary(req.Salary)
	case domain.KindCareerPath:
		res.CareerPath = fallbackCareerPath(req.CareerPath)
	case domain.KindResumeCritique:
		res.ResumeCritique = fallbackResumeCritique(req.ResumeCritique)
	case domain.KindSkillsFeedback:
		res.SkillsFeedback = fallbackSkillsFeedback(req.SkillsFeedback)
	case domain.KindInterviewQuestions:
		res.Questions = fallbackQuestions(req.Questions)
	case domain.KindInterviewAnswer:
		res.Answer = fallbackAnswerScore(req.Answer)
	}
	return res
}

// ---- salary ----

// Base annual USD medians at zero experience, keyed by industry keyword.
var industryBases = []struct {
	keyword string
	base    float64
}{
	{"technology", 95000},
	{"software", 95000},
	{"finance", 92000},
	{"consulting", 88000},
	{"healthcare", 80000},
	{"manufacturing", 72000},
	{"government", 70000},
	{"media", 68000},
	{"education", 62000},
	{"retail", 58000},
	{"nonprofit", 56000},
}

const defaultIndustryBase = 75000

// Seniority checked before discipline; first match wins.
var roleMultipliers = []struct {
	keyword string
	mult    float64
}{
	{"director", 1.45},
	{"vp", 1.45},
	{"head of", 1.45},
	{"principal", 1.35},
	{"staff", 1.35},
	{"architect", 1.30},
	{"lead", 1.25},
	{"senior", 1.20},
	{"manager", 1.20},
	{"junior", 0.80},
	{"intern", 0.60},
	{"scientist", 1.15},
	{"engineer", 1.10},
	{"developer", 1.10},
	{"analyst", 0.95},
	{"designer", 0.95},
}

var locationMultipliers = []struct {
	keyword string
	mult    float64
}{
	{"san francisco", 1.35},
	{"bay area", 1.35},
	{"new york", 1.30},
	{"seattle", 1.25},
	{"boston", 1.20},
	{"london", 1.20},
	{"austin", 1.10},
	{"denver", 1.08},
	{"chicago", 1.08},
	{"remote", 1.00},
}

func industryBase(industry string) float64 {
	low := strings.ToLower(industry)
	for _, e := range industryBases {
		if strings.Contains(low, e.keyword) {
			return e.base
		}
	}
	return defaultIndustryBase
}

func roleMultiplier(title string) float64 {
	low := strings.ToLower(title)
	for _, e := range roleMultipliers {
		if strings.Contains(low, e.keyword) {
			return e.mult
		}
	}
	return 1.0
}

func locationMultiplier(location string) float64 {
	low := strings.ToLower(location)
	for _, e := range locationMultipliers {
		if strings.Contains(low, e.keyword) {
			return e.mult
		}
	}
	return 1.0
}

// experienceMultiplier grows 4% per year, capped at 20 years.
func experienceMultiplier(years int) float64 {
	if years < 0 {
		years = 0
	}
	if years > 20 {
		years = 20
	}
	return 1.0 + 0.04*float64(years)
}

func educationMultiplier(education string) float64 {
	low := strings.ToLower(education)
	switch {
	case strings.Contains(low, "phd"), strings.Contains(low, "doctor"):
		return 1.12
	case strings.Contains(low, "master"), strings.Contains(low, "mba"):
		return 1.08
	default:
		return 1.0
	}
}

func round500(v float64) float64 {
	return math.Round(v/500) * 500
}

func fallbackSalary(r *domain.SalaryRequest) *domain.SalaryResult {
	median := round500(industryBase(r.Industry) *
		roleMultiplier(r.JobTitle) *
		experienceMultiplier(r.YearsExperience) *
		locationMultiplier(r.Location) *
		educationMultiplier(r.Education))

	low := round500(median * 0.82)
	p25 := round500(median * 0.91)
	p75 := round500(median * 1.12)
	high := round500(median * 1.28)

	// Ordering invariant min <= p25 <= p50 <= p75 <= max is enforced
	// explicitly, not assumed from the multiplier choice.
	p25 = math.Max(low, math.Min(p25, median))
	p75 = math.Max(median, math.Min(p75, high))

	factors := []domain.ImpactFactor{
		{Name: "Experience", Impact: fmt.Sprintf("%d years of experience adjusts the base estimate by %+.0f%%", r.YearsExperience, (experienceMultiplier(r.YearsExperience)-1)*100)},
		{Name: "Location", Impact: fmt.Sprintf("%s adjusts the market rate by %+.0f%%", r.Location, (locationMultiplier(r.Location)-1)*100)},
		{Name: "Industry", Impact: fmt.Sprintf("%s industry baseline applied", r.Industry)},
	}
	if strings.TrimSpace(r.Education) != "" {
		factors = append(factors, domain.ImpactFactor{
			Name:   "Education",
			Impact: fmt.Sprintf("%s adjusts the estimate by %+.0f%%", r.Education, (educationMultiplier(r.Education)-1)*100),
		})
	}

	return &domain.SalaryResult{
		MedianSalary: median,
		SalaryRange:  domain.SalaryRange{Min: low, Max: high},
		Percentiles:  domain.Percentiles{P25: p25, P50: median, P75: p75},
		Factors:      factors,
		Trend:        fmt.Sprintf("Compensation for %s roles in %s has been rising modestly year over year.", r.JobTitle, r.Industry),
		Insight:      fmt.Sprintf("With %d years of experience in %s, a %s in %s can expect offers concentrated between the 25th and 75th percentile figures above.", r.YearsExperience, r.Industry, r.JobTitle, r.Location),
	}
}

// ---- career path ----

func fallbackCareerPath(r *domain.CareerPathRequest) *domain.CareerPathResult {
	timeline := "4-6 years"
	switch {
	case r.YearsExperience >= 8:
		timeline = "2-4 years"
	case r.YearsExperience >= 3:
		timeline = "3-5 years"
	}

	steps := []domain.CareerStep{
		{
			Title:       fmt.Sprintf("Deepen core %s skills", r.Industry),
			Description: fmt.Sprintf("Close the skill gaps between %s and %s through targeted projects and certifications relevant to %s.", r.CurrentRole, r.TargetRole, r.Industry),
			Duration:    "6-12 months",
		},
		{
			Title:       fmt.Sprintf("Expand scope as %s", r.CurrentRole),
			Description: fmt.Sprintf("Take on responsibilities that overlap with a %s: own larger initiatives, mentor others, and build visibility with stakeholders.", r.TargetRole),
			Duration:    "12-18 months",
		},
		{
			Title:       "Move into a bridging role",
			Description: fmt.Sprintf("Target hybrid or transitional positions that combine %s work with %s responsibilities.", r.CurrentRole, r.TargetRole),
			Duration:    "12-24 months",
		},
		{
			Title:       fmt.Sprintf("Transition to %s", r.TargetRole),
			Description: fmt.Sprintf("Apply for %s positions in %s, leading with the expanded scope and bridging experience from the previous steps.", r.TargetRole, r.Industry),
			Duration:    "3-6 months",
		},
	}

	recs := []string{
		fmt.Sprintf("Build a portfolio of work that demonstrates %s-level impact.", r.TargetRole),
		fmt.Sprintf("Find a mentor currently working as a %s in %s.", r.TargetRole, r.Industry),
		fmt.Sprintf("Track %s job postings now to target the most commonly required skills.", r.TargetRole),
	}
	if strings.TrimSpace(r.Skills) == "" {
		recs = append(recs, "Complete a skills inventory to identify which current strengths transfer directly.")
	}

	return &domain.CareerPathResult{Timeline: timeline, Steps: steps, Recommendations: recs}
}

// ---- resume critique ----

var (
	digitRe      = regexp.MustCompile(`[0-9]`)
	actionVerbRe = regexp.MustCompile(`(?i)\b(led|built|designed|launched|improved|reduced|increased|delivered|managed|created|implemented|automated|migrated|shipped)\b`)
)

func fallbackResumeCritique(r *domain.ResumeCritiqueRequest) *domain.ResumeCritiqueResult {
	text := strings.ToLower(r.ResumeText)
	words := len(strings.Fields(r.ResumeText))

	hasNumbers := digitRe.MatchString(r.ResumeText)
	verbs := len(actionVerbRe.FindAllString(r.ResumeText, -1))
	sections := 0
	for _, s := range []string{"experience", "education", "skills"} {
		if strings.Contains(text, s) {
			sections++
		}
	}

	score := 40 + 5*sections
	if hasNumbers {
		score += 10
	}
	score += minInt(15, words/60)
	score += minInt(10, verbs*2)
	score = clampInt(score, 35, 85)

	role := r.TargetRole
	if strings.TrimSpace(role) == "" {
		role = "your target role"
	}

	var strengths, weaknesses, suggestions []string
	if sections == 3 {
		strengths = append(strengths, "Covers the expected experience, education and skills sections.")
	} else {
		weaknesses = append(weaknesses, "One or more standard sections (experience, education, skills) is missing or unlabeled.")
		suggestions = append(suggestions, "Add clearly labeled experience, education and skills sections.")
	}
	if hasNumbers {
		strengths = append(strengths, "Includes quantified results, which strengthens impact claims.")
	} else {
		weaknesses = append(weaknesses, "Accomplishments are not quantified.")
		suggestions = append(suggestions, "Add concrete numbers (team size, revenue, latency, adoption) to each accomplishment.")
	}
	if verbs >= 3 {
		strengths = append(strengths, "Uses strong action verbs to open bullet points.")
	} else {
		suggestions = append(suggestions, "Open bullet points with action verbs like led, built, delivered.")
	}
	if words < 150 {
		weaknesses = append(weaknesses, "The resume is short; it may read as lacking depth.")
		suggestions = append(suggestions, fmt.Sprintf("Expand the most relevant roles with detail tailored to %s.", role))
	}
	if len(strengths) == 0 {
		strengths = append(strengths, fmt.Sprintf("The resume provides a starting structure to tailor toward %s.", role))
	}

	return &domain.ResumeCritiqueResult{
		OverallScore: score,
		Strengths:    strengths,
		Weaknesses:   weaknesses,
		Suggestions:  suggestions,
		Summary:      fmt.Sprintf("The resume scores %d/100 against common screening criteria for %s. The highest-leverage improvements are listed under suggestions.", score, role),
	}
}

// ---- skills feedback ----

func fallbackSkillsFeedback(r *domain.SkillsFeedbackRequest) *domain.SkillsFeedbackResult {
	resp := strings.TrimSpace(r.Responses)
	score := 35 + minInt(40, len(resp)/15)
	if strings.Contains(strings.ToLower(resp), strings.ToLower(r.SkillArea)) {
		score += 5
	}
	score = clampInt(score, 25, 85)

	level := "beginner"
	switch {
	case score >= 75:
		level = "expert"
	case score >= 60:
		level = "advanced"
	case score >= 45:
		level = "intermediate"
	}

	return &domain.SkillsFeedbackResult{
		Score: score,
		Level: level,
		Strengths: []string{
			fmt.Sprintf("Engaged thoughtfully with the %s assessment.", r.SkillArea),
			fmt.Sprintf("Shows self-awareness about %s skills expected of a %s.", r.SkillArea, r.Role),
		},
		Improvements: []string{
			fmt.Sprintf("Practice applying %s in realistic %s scenarios.", r.SkillArea, r.Role),
			fmt.Sprintf("Seek feedback from experienced %ss on concrete work samples.", strings.ToLower(r.Role)),
		},
		Feedback: fmt.Sprintf("Based on your responses, your %s proficiency currently sits at the %s level for a %s. Focus on the improvement areas to progress.", r.SkillArea, level, r.Role),
	}
}

// ---- interview questions ----

const defaultQuestionCount = 5

var behavioralQuestionBank = []struct {
	text       string
	difficulty string
}{
	{"Tell me about a time you faced a significant challenge as a %s. How did you handle it?", "easy"},
	{"Describe a situation where you disagreed with a teammate. How was it resolved?", "easy"},
	{"Give an example of a goal you set as a %s and how you achieved it.", "medium"},
	{"Tell me about a time you failed. What did you learn?", "medium"},
	{"Describe a time you had to influence a decision without formal authority.", "medium"},
	{"Tell me about the most complex project you led as a %s.", "hard"},
	{"Describe a time you received difficult feedback. What changed afterwards?", "medium"},
	{"How have you handled competing priorities under a tight deadline?", "hard"},
}

var technicalQuestionBank = []struct {
	text       string
	difficulty string
}{
	{"Walk me through how you would approach a typical problem a %s faces day to day.", "easy"},
	{"What tools and methods do you rely on most as a %s, and why?", "easy"},
	{"Explain a technical decision you made recently and the trade-offs involved.", "medium"},
	{"How do you evaluate the quality of your own work as a %s?", "medium"},
	{"Describe how you would design a solution for a problem you have never seen before.", "hard"},
	{"What is a common misconception in your field, and how would you correct it?", "medium"},
	{"How do you keep your %s skills current?", "easy"},
	{"Describe the hardest technical problem you have solved and how.", "hard"},
}

func fallbackQuestions(r *domain.InterviewQuestionsRequest) *domain.InterviewQuestionsResult {
	count := r.QuestionCount
	if count <= 0 {
		count = defaultQuestionCount
	}
	if count > 10 {
		count = 10
	}

	itype := strings.ToLower(r.InterviewType)
	var out []domain.Question
	pick := func(bank []struct {
		text       string
		difficulty string
	}, category string, n int) {
		for i := 0; i < len(bank) && len(out) < n; i++ {
			text := bank[i].text
			if strings.Contains(text, "%s") {
				text = fmt.Sprintf(text, r.Role)
			}
			out = append(out, domain.Question{
				ID:         fmt.Sprintf("q%d", len(out)+1),
				Text:       text,
				Category:   category,
				Difficulty: bank[i].difficulty,
			})
		}
	}

	switch {
	case strings.Contains(itype, "behavior"):
		pick(behavioralQuestionBank, "behavioral", count)
	case strings.Contains(itype, "tech"):
		pick(technicalQuestionBank, "technical", count)
	default:
		// Mixed: alternate starting with behavioral.
		half := (count + 1) / 2
		pick(behavioralQuestionBank, "behavioral", half)
		pick(technicalQuestionBank, "technical", count)
	}
	return &domain.InterviewQuestionsResult{Questions: out}
}

// ---- interview answer scoring ----

var substanceMarkers = []string{
	"for example", "situation", "result", "team", "project",
	"challenge", "learned", "impact", "measured",
}

func fallbackAnswerScore(r *domain.InterviewAnswerRequest) *domain.InterviewAnswerResult {
	transcript := strings.TrimSpace(r.Transcript)
	length := len(transcript)

	// Length is a shallow but monotonic proxy for answer substance; it is
	// bounded so a rambling answer cannot outscore the cap.
	score := 10 + length/6
	low := strings.ToLower(transcript)
	bonus := 0
	for _, m := range substanceMarkers {
		if strings.Contains(low, m) {
			bonus += 2
		}
	}
	score += minInt(bonus, 10)
	score = clampInt(score, 5, 88)

	category := r.Category
	if strings.TrimSpace(category) == "" {
		category = "general"
	}

	var strengths []string
	var improvements []string
	if length >= 300 {
		strengths = append(strengths, fmt.Sprintf("Provided a detailed answer appropriate for a %s question.", category))
	} else {
		improvements = append(improvements, fmt.Sprintf("Expand the answer with a specific example from your %s experience.", r.Role))
	}
	if bonus >= 4 {
		strengths = append(strengths, "Grounded the answer in concrete situations and outcomes.")
	} else {
		improvements = append(improvements, "Structure the answer around a situation, your actions, and the measurable result.")
	}
	if len(strengths) == 0 {
		strengths = append(strengths, fmt.Sprintf("Attempted the %s question directly.", category))
	}

	return &domain.InterviewAnswerResult{
		Score:        score,
		Feedback:     fmt.Sprintf("For a %s question at the %s level, this answer would benefit most from the improvement points below. Score reflects answer depth and structure.", category, r.Role),
		Strengths:    strengths,
		Improvements: improvements,
	}
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
