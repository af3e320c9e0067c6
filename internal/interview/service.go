package interview

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"anemo-backend/internal/agent"
	"anemo-backend/internal/platform/web"
	"anemo-backend/internal/prompt"
	"anemo-backend/internal/schema"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

var (
	ErrInterviewComplete    = fmt.Errorf("interview is already complete: %w", web.ErrConflict)
	ErrInterviewNotComplete = fmt.Errorf("interview is not complete yet: %w", web.ErrConflict)
	ErrInterviewNotStarted  = fmt.Errorf("interview has not asked a question yet: %w", web.ErrConflict)
	ErrSessionOwner         = fmt.Errorf("session belongs to another user: %w", web.ErrConflict)
)

const (
	DefaultMaxTurns = 12
	targetTurns     = "5 to 8"
)

type Service interface {
	// Start asks the first question of a new session.
	Start(ctx context.Context, req StartRequest) (Session, Turn, error)
	// Answer records the answer to the pending question and asks the next
	// one. On error the given session is returned unchanged.
	Answer(ctx context.Context, session Session, answer string) (Session, Turn, error)
	// Recommend scores a complete session. A session is scored once; later
	// calls return the stored report.
	Recommend(ctx context.Context, session Session) (RecommendationReport, error)
	History(ctx context.Context, userID string) ([]RecommendationReport, error)
	Report(ctx context.Context, id uuid.UUID) (RecommendationReport, error)
}

type service struct {
	ai       agent.Client
	repo     Repository
	maxTurns int
	now      func() time.Time
}

func NewService(ai agent.Client, repo Repository, maxTurns int) Service {
	if maxTurns <= 0 {
		maxTurns = DefaultMaxTurns
	}
	return &service{
		ai:       ai,
		repo:     repo,
		maxTurns: maxTurns,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (s *service) Start(ctx context.Context, req StartRequest) (Session, Turn, error) {
	req.UserID = strings.TrimSpace(req.UserID)
	if err := schema.Request(&req); err != nil {
		return Session{}, Turn{}, err
	}

	session := Session{
		ID:                  uuid.New(),
		UserID:              req.UserID,
		Profile:             req.Profile,
		ImageAnalysisResult: req.ImageAnalysisResult,
		PriorResponses:      []QA{},
		Status:              StatusAwaitingFirstQuestion,
	}

	out, err := s.nextTurn(ctx, session, "")
	if err != nil {
		return Session{}, Turn{}, fmt.Errorf("start interview: %w", err)
	}
	if out.IsComplete {
		return Session{}, Turn{}, fmt.Errorf("start interview: %w: completed before asking a question", schema.ErrViolation)
	}

	session.Status = StatusAwaitingAnswer
	session.PendingQuestion = out.Question
	return session, out, nil
}

func (s *service) Answer(ctx context.Context, session Session, answer string) (Session, Turn, error) {
	logger := zerolog.Ctx(ctx)

	if err := schema.Request(&session); err != nil {
		return session, Turn{}, err
	}
	switch session.Status {
	case StatusComplete:
		return session, Turn{}, ErrInterviewComplete
	case StatusAwaitingFirstQuestion:
		return session, Turn{}, ErrInterviewNotStarted
	}
	if strings.TrimSpace(session.PendingQuestion) == "" {
		return session, Turn{}, fmt.Errorf("%w: session has no pending question", schema.ErrInvalidInput)
	}
	answer = strings.TrimSpace(answer)
	if answer == "" {
		return session, Turn{}, fmt.Errorf("%w: answer is required", schema.ErrInvalidInput)
	}

	next := session.withResponses(QA{Question: session.PendingQuestion, Answer: answer})
	next.PendingQuestion = ""

	if len(next.PriorResponses) >= s.maxTurns {
		logger.Info().Str("session_id", session.ID.String()).Int("turns", len(next.PriorResponses)).
			Msg("interview reached max turns")
		next.Status = StatusComplete
		return next, Turn{IsComplete: true}, nil
	}

	out, err := s.nextTurn(ctx, session, answer)
	if err != nil {
		return session, Turn{}, fmt.Errorf("answer interview: %w", err)
	}

	if out.IsComplete {
		next.Status = StatusComplete
		return next, Turn{IsComplete: true}, nil
	}
	next.Status = StatusAwaitingAnswer
	next.PendingQuestion = out.Question
	return next, out, nil
}

// nextTurn asks the model for the next question. prior is the session before
// the latest answer is recorded; latest is empty for the first question.
func (s *service) nextTurn(ctx context.Context, prior Session, latest string) (Turn, error) {
	responses := make([]prompt.QA, 0, len(prior.PriorResponses)+1)
	for _, qa := range prior.PriorResponses {
		responses = append(responses, prompt.QA{Question: qa.Question, Answer: qa.Answer})
	}
	if latest != "" {
		responses = append(responses, prompt.QA{Question: prior.PendingQuestion, Answer: latest})
	}

	text, err := prompt.Render(prompt.InterviewTurn, prompt.InterviewData{
		Female:         prior.Profile.IsFemale(),
		TargetTurns:    targetTurns,
		Profile:        prior.Profile.Summary(),
		ImageAnalysis:  imageDescription(prior.ImageAnalysisResult),
		PriorResponses: responses,
		LastResponse:   latest,
	})
	if err != nil {
		return Turn{}, err
	}

	resp, err := s.ai.Generate(ctx, &agent.Request{
		Flow:   "interview_turn",
		Prompt: text,
		Output: turnSchema,
	})
	if err != nil {
		return Turn{}, err
	}

	var out turnOutput
	if err := resp.Decode(&out); err != nil {
		return Turn{}, err
	}

	turn := Turn{Question: strings.TrimSpace(out.Question), IsComplete: *out.IsComplete}
	if turn.IsComplete {
		turn.Question = ""
		return turn, nil
	}
	if turn.Question == "" {
		return Turn{}, fmt.Errorf("%w: empty question for an incomplete interview", schema.ErrViolation)
	}
	return turn, nil
}

func (s *service) Recommend(ctx context.Context, session Session) (RecommendationReport, error) {
	logger := zerolog.Ctx(ctx)

	if err := schema.Request(&session); err != nil {
		return RecommendationReport{}, err
	}
	if session.Status != StatusComplete {
		return RecommendationReport{}, ErrInterviewNotComplete
	}

	existing, err := s.repo.GetBySession(ctx, session.ID)
	switch {
	case err == nil:
		return s.owned(session, *existing)
	case !errors.Is(err, ErrReportNotFound):
		logger.Warn().Err(err).Str("session_id", session.ID.String()).Msg("failed to look up stored report")
	}

	text, err := prompt.Render(prompt.Recommendations, prompt.RecommendationData{
		ImageAnalysis:      imageDescription(session.ImageAnalysisResult),
		UserProfile:        session.Profile.Summary(),
		InterviewResponses: transcript(session.PriorResponses),
	})
	if err != nil {
		return RecommendationReport{}, err
	}

	resp, err := s.ai.Generate(ctx, &agent.Request{
		Flow:   "recommendations",
		Prompt: text,
		Output: recommendationSchema,
	})
	if err != nil {
		return RecommendationReport{}, fmt.Errorf("generate recommendations: %w", err)
	}

	var out recommendationOutput
	if err := resp.Decode(&out); err != nil {
		return RecommendationReport{}, fmt.Errorf("generate recommendations: %w", err)
	}
	recommendations := strings.TrimSpace(out.Recommendations)
	if recommendations == "" {
		return RecommendationReport{}, fmt.Errorf("generate recommendations: %w: empty recommendations", schema.ErrViolation)
	}

	score := int(math.Round(*out.RiskScore))
	report := RecommendationReport{
		ID:              uuid.New(),
		SessionID:       session.ID,
		UserID:          session.UserID,
		RiskScore:       score,
		RiskLevel:       RiskLevel(score),
		Recommendations: recommendations,
		Transcript:      session.PriorResponses,
		CreatedAt:       s.now(),
	}

	if err := s.repo.Save(ctx, &report); err != nil {
		logger.Error().Err(err).Str("report_id", report.ID.String()).Msg("failed to save recommendation report")
		return report, nil
	}

	// A concurrent call may have stored its report first; that one wins.
	stored, err := s.repo.GetBySession(ctx, session.ID)
	if err != nil {
		logger.Warn().Err(err).Str("session_id", session.ID.String()).Msg("failed to re-read stored report")
		return report, nil
	}
	return s.owned(session, *stored)
}

func (s *service) owned(session Session, report RecommendationReport) (RecommendationReport, error) {
	if report.UserID != session.UserID {
		return RecommendationReport{}, ErrSessionOwner
	}
	return report, nil
}

func (s *service) History(ctx context.Context, userID string) ([]RecommendationReport, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, fmt.Errorf("%w: userId is required", schema.ErrInvalidInput)
	}
	reports, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list reports: %w", err)
	}
	return reports, nil
}

func (s *service) Report(ctx context.Context, id uuid.UUID) (RecommendationReport, error) {
	report, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return RecommendationReport{}, fmt.Errorf("get report: %w", err)
	}
	return *report, nil
}

func imageDescription(s string) string {
	if strings.TrimSpace(s) == "" {
		return NoDescription
	}
	return s
}

func transcript(responses []QA) string {
	var b strings.Builder
	for i, qa := range responses {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "assistant: %s\nuser: %s", qa.Question, qa.Answer)
	}
	return b.String()
}
