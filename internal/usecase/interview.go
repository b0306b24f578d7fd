package usecase

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/careerpilot/insights/internal/adapter/observability"
	"github.com/careerpilot/insights/internal/domain"
)

// InterviewService drives the multi-turn interview flow on top of the
// analysis orchestrator: question-set generation, per-answer scoring, and
// session completion. Transitions for a given session are serialized through
// the SessionLocker; no cross-session coordination exists.
type InterviewService struct {
	Analyze  AnalyzeService
	Sessions domain.SessionRepository
	Locks    domain.SessionLocker
}

// NewInterviewService constructs an InterviewService.
func NewInterviewService(analyze AnalyzeService, sessions domain.SessionRepository, locks domain.SessionLocker) InterviewService {
	return InterviewService{Analyze: analyze, Sessions: sessions, Locks: locks}
}

// GenerateQuestions creates a new session populated with a generated
// question set and status in_progress.
func (s InterviewService) GenerateQuestions(ctx context.Context, userID string, req domain.InterviewQuestionsRequest) (domain.InterviewSession, bool, error) {
	a, err := s.Analyze.Run(ctx, domain.AnalysisRequest{
		Kind:      domain.KindInterviewQuestions,
		UserID:    userID,
		Questions: &req,
	})
	if err != nil {
		return domain.InterviewSession{}, false, err
	}

	now := time.Now().UTC()
	sess := domain.InterviewSession{
		UserID:        userID,
		Role:          req.Role,
		InterviewType: req.InterviewType,
		Questions:     a.Result.Questions.Questions,
		Answers:       []domain.Answer{},
		Status:        domain.SessionInProgress,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	id, err := s.Sessions.Create(ctx, sess)
	if err != nil {
		return domain.InterviewSession{}, false, fmt.Errorf("op=session.create: %w", err)
	}
	sess.ID = id
	return sess, a.UsedFallback, nil
}

// AnalyzeAnswer scores the transcript for one question index and records it
// on the session, overwriting any earlier answer for that index. Scoring an
// out-of-range index fails before any persistence write. When the answer
// fills the last open question the session is completed in the same
// transition.
func (s InterviewService) AnalyzeAnswer(ctx context.Context, userID, sessionID string, questionIndex int, transcript string) (domain.InterviewSession, bool, error) {
	release, err := s.Locks.Acquire(ctx, sessionID)
	if err != nil {
		return domain.InterviewSession{}, false, fmt.Errorf("op=session.lock: %w", err)
	}
	defer release()

	sess, err := s.ownedSession(ctx, userID, sessionID)
	if err != nil {
		return domain.InterviewSession{}, false, err
	}
	if sess.Status != domain.SessionInProgress {
		return domain.InterviewSession{}, false, fmt.Errorf("%w: session %s is %s", domain.ErrInvalidArgument, sessionID, sess.Status)
	}
	if questionIndex < 0 || questionIndex >= len(sess.Questions) {
		return domain.InterviewSession{}, false, fmt.Errorf("%w: index %d, session has %d questions", domain.ErrInvalidQuestionIndex, questionIndex, len(sess.Questions))
	}

	q := sess.Questions[questionIndex]
	a, err := s.Analyze.Run(ctx, domain.AnalysisRequest{
		Kind:   domain.KindInterviewAnswer,
		UserID: userID,
		Answer: &domain.InterviewAnswerRequest{
			Role:       sess.Role,
			Question:   q.Text,
			Category:   q.Category,
			Transcript: transcript,
		},
	})
	if err != nil {
		return domain.InterviewSession{}, false, err
	}

	score := a.Result.Answer
	answer := domain.Answer{
		QuestionIndex: questionIndex,
		Transcript:    transcript,
		Score:         score.Score,
		Feedback:      score.Feedback,
		Strengths:     score.Strengths,
		Improvements:  score.Improvements,
	}
	recordAnswer(&sess, answer)

	if len(sess.Answers) == len(sess.Questions) {
		finalize(&sess)
	}
	sess.UpdatedAt = time.Now().UTC()
	if err := s.Sessions.Update(ctx, sess); err != nil {
		return domain.InterviewSession{}, false, fmt.Errorf("op=session.update: %w", err)
	}
	return sess, a.UsedFallback, nil
}

// Complete finishes a session explicitly. Sessions with zero recorded
// answers complete with an overall score of 0 and empty aggregate lists.
// Completing an already completed session returns it unchanged.
func (s InterviewService) Complete(ctx context.Context, userID, sessionID string) (domain.InterviewSession, error) {
	release, err := s.Locks.Acquire(ctx, sessionID)
	if err != nil {
		return domain.InterviewSession{}, fmt.Errorf("op=session.lock: %w", err)
	}
	defer release()

	sess, err := s.ownedSession(ctx, userID, sessionID)
	if err != nil {
		return domain.InterviewSession{}, err
	}
	if sess.Status == domain.SessionCompleted {
		return sess, nil
	}
	finalize(&sess)
	sess.UpdatedAt = time.Now().UTC()
	if err := s.Sessions.Update(ctx, sess); err != nil {
		return domain.InterviewSession{}, fmt.Errorf("op=session.update: %w", err)
	}
	return sess, nil
}

// Get loads a stored session, enforcing ownership.
func (s InterviewService) Get(ctx context.Context, userID, sessionID string) (domain.InterviewSession, error) {
	return s.ownedSession(ctx, userID, sessionID)
}

func (s InterviewService) ownedSession(ctx context.Context, userID, sessionID string) (domain.InterviewSession, error) {
	sess, err := s.Sessions.Get(ctx, sessionID)
	if err != nil {
		return domain.InterviewSession{}, err
	}
	if sess.UserID != userID {
		return domain.InterviewSession{}, fmt.Errorf("op=session.get: %w", domain.ErrNotFound)
	}
	return sess, nil
}

// recordAnswer appends or overwrites the answer for its question index,
// keeping the answer list ordered by index.
func recordAnswer(sess *domain.InterviewSession, a domain.Answer) {
	for i := range sess.Answers {
		if sess.Answers[i].QuestionIndex == a.QuestionIndex {
			sess.Answers[i] = a
			return
		}
	}
	sess.Answers = append(sess.Answers, a)
	sort.Slice(sess.Answers, func(i, j int) bool {
		return sess.Answers[i].QuestionIndex < sess.Answers[j].QuestionIndex
	})
}

const maxAggregateItems = 5

// finalize computes the overall score as the arithmetic mean of recorded
// answers only; unanswered questions are excluded, not counted as zero.
func finalize(sess *domain.InterviewSession) {
	if len(sess.Answers) > 0 {
		sum := 0
		for _, a := range sess.Answers {
			sum += a.Score
		}
		sess.OverallScore = int(math.Round(float64(sum) / float64(len(sess.Answers))))
	} else {
		sess.OverallScore = 0
	}

	sess.Strengths = dedupeCapped(sess.Answers, func(a domain.Answer) []string { return a.Strengths })
	sess.Improvements = dedupeCapped(sess.Answers, func(a domain.Answer) []string { return a.Improvements })
	sess.Status = domain.SessionCompleted

	observability.SessionsCompletedTotal.Inc()
	observability.SessionOverallScore.Observe(float64(sess.OverallScore))
}

// dedupeCapped is the order-preserving de-duplicated union across answers,
// capped to keep the session summary readable.
func dedupeCapped(answers []domain.Answer, get func(domain.Answer) []string) []string {
	out := []string{}
	seen := map[string]bool{}
	for _, a := range answers {
		for _, s := range get(a) {
			if seen[s] {
				continue
			}
			seen[s] = true
			out = append(out, s)
			if len(out) == maxAggregateItems {
				return out
			}
		}
	}
	return out
}
