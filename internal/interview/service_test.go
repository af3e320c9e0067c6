package interview

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"anemo-backend/internal/agent"
	"anemo-backend/internal/agent/agenttest"
	"anemo-backend/internal/schema"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockRepo struct {
	mock.Mock
}

func (m *mockRepo) Save(ctx context.Context, r *RecommendationReport) error {
	return m.Called(ctx, r).Error(0)
}

func (m *mockRepo) GetByID(ctx context.Context, id uuid.UUID) (*RecommendationReport, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*RecommendationReport), args.Error(1)
}

func (m *mockRepo) GetBySession(ctx context.Context, sessionID uuid.UUID) (*RecommendationReport, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*RecommendationReport), args.Error(1)
}

func (m *mockRepo) ListByUser(ctx context.Context, userID string) ([]RecommendationReport, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]RecommendationReport), args.Error(1)
}

func intPtr(i int) *int { return &i }

func female() Profile {
	return Profile{Age: intPtr(30), Gender: "Female"}
}

func awaiting(questions ...string) Session {
	s := Session{
		ID:                  uuid.New(),
		UserID:              "user-1",
		Profile:             female(),
		ImageAnalysisResult: "Pale conjunctiva.",
		PriorResponses:      []QA{},
		Status:              StatusAwaitingAnswer,
	}
	for i, q := range questions {
		if i == len(questions)-1 {
			s.PendingQuestion = q
			break
		}
		s.PriorResponses = append(s.PriorResponses, QA{Question: q, Answer: "yes"})
	}
	return s
}

func completed() Session {
	return Session{
		ID:             uuid.New(),
		UserID:         "user-1",
		Profile:        female(),
		PriorResponses: []QA{{Question: "Q1", Answer: "A1"}, {Question: "Q2", Answer: "A2"}},
		Status:         StatusComplete,
	}
}

func promptContains(flow string, parts ...string) any {
	return mock.MatchedBy(func(req *agent.Request) bool {
		if req.Flow != flow {
			return false
		}
		for _, p := range parts {
			if !strings.Contains(req.Prompt, p) {
				return false
			}
		}
		return true
	})
}

func TestStart(t *testing.T) {
	ai := new(agenttest.Client)
	ai.On("Generate", mock.Anything, promptContains("interview_turn",
		"Menstrual history", "Age: 30, Gender: Female", "Pale conjunctiva.", "Ask the first question.")).
		Return(agenttest.Text(`{"question":"Do you often feel tired?","isComplete":false}`), nil)

	svc := NewService(ai, NewMemoryRepository(), 0)
	session, turn, err := svc.Start(context.Background(), StartRequest{
		UserID:              "user-1",
		Profile:             female(),
		ImageAnalysisResult: "Pale conjunctiva.",
	})
	require.NoError(t, err)

	assert.Equal(t, Turn{Question: "Do you often feel tired?"}, turn)
	assert.Equal(t, StatusAwaitingAnswer, session.Status)
	assert.Equal(t, "Do you often feel tired?", session.PendingQuestion)
	assert.NotEqual(t, uuid.Nil, session.ID)
	assert.Empty(t, session.PriorResponses)
	ai.AssertExpectations(t)
}

func TestStart_MenstrualTopicOnlyForFemale(t *testing.T) {
	ai := new(agenttest.Client)
	ai.On("Generate", mock.Anything, mock.MatchedBy(func(req *agent.Request) bool {
		return !strings.Contains(req.Prompt, "Menstrual") &&
			strings.Contains(req.Prompt, NoDescription)
	})).Return(agenttest.Text(`{"question":"Any dizziness?","isComplete":false}`), nil)

	_, _, err := NewService(ai, NewMemoryRepository(), 0).Start(context.Background(), StartRequest{
		UserID:  "user-2",
		Profile: Profile{Age: intPtr(45), Gender: "male"},
	})
	require.NoError(t, err)
	ai.AssertExpectations(t)
}

func TestStart_Errors(t *testing.T) {
	t.Run("missing user", func(t *testing.T) {
		ai := new(agenttest.Client)
		_, _, err := NewService(ai, NewMemoryRepository(), 0).Start(context.Background(), StartRequest{UserID: "  "})
		assert.ErrorIs(t, err, schema.ErrInvalidInput)
		ai.AssertNotCalled(t, "Generate", mock.Anything, mock.Anything)
	})

	t.Run("complete before first question", func(t *testing.T) {
		ai := new(agenttest.Client)
		ai.On("Generate", mock.Anything, mock.Anything).
			Return(agenttest.Text(`{"question":"","isComplete":true}`), nil)
		_, _, err := NewService(ai, NewMemoryRepository(), 0).Start(context.Background(), StartRequest{UserID: "u"})
		assert.ErrorIs(t, err, schema.ErrViolation)
	})

	t.Run("empty question", func(t *testing.T) {
		ai := new(agenttest.Client)
		ai.On("Generate", mock.Anything, mock.Anything).
			Return(agenttest.Text(`{"question":"  ","isComplete":false}`), nil)
		_, _, err := NewService(ai, NewMemoryRepository(), 0).Start(context.Background(), StartRequest{UserID: "u"})
		assert.ErrorIs(t, err, schema.ErrViolation)
	})

	t.Run("model unavailable", func(t *testing.T) {
		ai := new(agenttest.Client)
		ai.On("Generate", mock.Anything, mock.Anything).Return(nil, agent.ErrUnavailable)
		_, _, err := NewService(ai, NewMemoryRepository(), 0).Start(context.Background(), StartRequest{UserID: "u"})
		assert.ErrorIs(t, err, agent.ErrUnavailable)
	})
}

func TestAnswer_NextQuestion(t *testing.T) {
	ai := new(agenttest.Client)
	ai.On("Generate", mock.Anything, promptContains("interview_turn",
		"Q: Do you often feel tired?\nA: Almost every day", "The user's latest answer: Almost every day")).
		Return(agenttest.Text(`{"question":"Do you eat red meat?","isComplete":false}`), nil)

	in := awaiting("Do you often feel tired?")
	out, turn, err := NewService(ai, NewMemoryRepository(), 0).Answer(context.Background(), in, " Almost every day ")
	require.NoError(t, err)

	assert.Equal(t, "Do you eat red meat?", turn.Question)
	assert.False(t, turn.IsComplete)
	assert.Equal(t, StatusAwaitingAnswer, out.Status)
	assert.Equal(t, "Do you eat red meat?", out.PendingQuestion)
	assert.Equal(t, []QA{{Question: "Do you often feel tired?", Answer: "Almost every day"}}, out.PriorResponses)
	assert.Equal(t, in.ID, out.ID)
	assert.Empty(t, in.PriorResponses)
	ai.AssertExpectations(t)
}

func TestAnswer_Completes(t *testing.T) {
	ai := new(agenttest.Client)
	ai.On("Generate", mock.Anything, mock.Anything).
		Return(agenttest.Text(`{"question":"Thanks, that is all.","isComplete":true}`), nil).Once()

	svc := NewService(ai, NewMemoryRepository(), 0)
	out, turn, err := svc.Answer(context.Background(), awaiting("Q1", "Q2"), "no")
	require.NoError(t, err)

	assert.Equal(t, Turn{IsComplete: true}, turn)
	assert.Equal(t, StatusComplete, out.Status)
	assert.Empty(t, out.PendingQuestion)
	assert.Len(t, out.PriorResponses, 2)

	// terminal: no further model calls
	again, _, err := svc.Answer(context.Background(), out, "one more thing")
	assert.ErrorIs(t, err, ErrInterviewComplete)
	assert.Equal(t, out, again)
	ai.AssertNumberOfCalls(t, "Generate", 1)
}

func TestAnswer_Rejected(t *testing.T) {
	fresh := awaiting("Q1")
	fresh.Status = StatusAwaitingFirstQuestion

	noPending := awaiting("Q1")
	noPending.PendingQuestion = ""

	noUser := awaiting("Q1")
	noUser.UserID = ""

	noID := awaiting("Q1")
	noID.ID = uuid.Nil

	tests := []struct {
		name    string
		session Session
		answer  string
		want    error
	}{
		{name: "complete", session: completed(), answer: "x", want: ErrInterviewComplete},
		{name: "not started", session: fresh, answer: "x", want: ErrInterviewNotStarted},
		{name: "empty answer", session: awaiting("Q1"), answer: "   ", want: schema.ErrInvalidInput},
		{name: "no pending question", session: noPending, answer: "x", want: schema.ErrInvalidInput},
		{name: "no user", session: noUser, answer: "x", want: schema.ErrInvalidInput},
		{name: "no id", session: noID, answer: "x", want: schema.ErrInvalidInput},
		{name: "unknown status", session: Session{ID: uuid.New(), UserID: "u", Status: "paused"}, answer: "x", want: schema.ErrInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ai := new(agenttest.Client)
			out, _, err := NewService(ai, NewMemoryRepository(), 0).Answer(context.Background(), tt.session, tt.answer)
			assert.ErrorIs(t, err, tt.want)
			assert.Equal(t, tt.session, out)
			ai.AssertNotCalled(t, "Generate", mock.Anything, mock.Anything)
		})
	}
}

func TestAnswer_FailureKeepsSession(t *testing.T) {
	tests := []struct {
		name string
		resp *agent.Response
		err  error
		want error
	}{
		{name: "unavailable", err: agent.ErrUnavailable, want: agent.ErrUnavailable},
		{name: "garbage", resp: agenttest.Text("I think you are fine"), want: schema.ErrViolation},
		{name: "missing isComplete", resp: agenttest.Text(`{"question":"Next?"}`), want: schema.ErrViolation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ai := new(agenttest.Client)
			ai.On("Generate", mock.Anything, mock.Anything).Return(tt.resp, tt.err)

			in := awaiting("Q1", "Q2")
			out, _, err := NewService(ai, NewMemoryRepository(), 0).Answer(context.Background(), in, "yes")
			assert.ErrorIs(t, err, tt.want)
			assert.Equal(t, in, out)
		})
	}
}

func TestAnswer_MaxTurns(t *testing.T) {
	ai := new(agenttest.Client)

	out, turn, err := NewService(ai, NewMemoryRepository(), 3).Answer(context.Background(), awaiting("Q1", "Q2", "Q3"), "yes")
	require.NoError(t, err)
	assert.True(t, turn.IsComplete)
	assert.Equal(t, StatusComplete, out.Status)
	assert.Len(t, out.PriorResponses, 3)
	ai.AssertNotCalled(t, "Generate", mock.Anything, mock.Anything)
}

func TestRecommend(t *testing.T) {
	ai := new(agenttest.Client)
	ai.On("Generate", mock.Anything, promptContains("recommendations",
		"assistant: Q1\nuser: A1\nassistant: Q2\nuser: A2",
		"Image analysis: "+NoDescription,
		"User profile: Age: 30, Gender: Female")).
		Return(agenttest.Text(`{"riskScore":72.4,"recommendations":"Eat more leafy greens and see a doctor."}`), nil).Once()

	repo := NewMemoryRepository()
	svc := NewService(ai, repo, 0)
	session := completed()

	report, err := svc.Recommend(context.Background(), session)
	require.NoError(t, err)
	assert.Equal(t, 72, report.RiskScore)
	assert.Equal(t, RiskHigh, report.RiskLevel)
	assert.Equal(t, "user-1", report.UserID)
	assert.Equal(t, session.ID, report.SessionID)
	assert.Equal(t, session.PriorResponses, report.Transcript)
	assert.False(t, report.CreatedAt.IsZero())

	again, err := svc.Recommend(context.Background(), session)
	require.NoError(t, err)
	assert.Equal(t, report.ID, again.ID)

	history, err := svc.History(context.Background(), "user-1")
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, report.ID, history[0].ID)

	got, err := svc.Report(context.Background(), report.ID)
	require.NoError(t, err)
	assert.Equal(t, report.Recommendations, got.Recommendations)

	ai.AssertExpectations(t)
}

func TestRecommend_NotComplete(t *testing.T) {
	ai := new(agenttest.Client)
	_, err := NewService(ai, NewMemoryRepository(), 0).Recommend(context.Background(), awaiting("Q1"))
	assert.ErrorIs(t, err, ErrInterviewNotComplete)
	ai.AssertNotCalled(t, "Generate", mock.Anything, mock.Anything)
}

func TestRecommend_InvalidOutput(t *testing.T) {
	for name, text := range map[string]string{
		"score above range":     `{"riskScore":120,"recommendations":"x"}`,
		"negative score":        `{"riskScore":-1,"recommendations":"x"}`,
		"missing score":         `{"recommendations":"x"}`,
		"empty recommendations": `{"riskScore":20,"recommendations":"  "}`,
		"prose":                 `You are at low risk.`,
	} {
		t.Run(name, func(t *testing.T) {
			ai := new(agenttest.Client)
			ai.On("Generate", mock.Anything, mock.Anything).Return(agenttest.Text(text), nil)

			repo := NewMemoryRepository()
			_, err := NewService(ai, repo, 0).Recommend(context.Background(), completed())
			assert.ErrorIs(t, err, schema.ErrViolation)

			history, err := repo.ListByUser(context.Background(), "user-1")
			require.NoError(t, err)
			assert.Empty(t, history)
		})
	}
}

func TestRecommend_SaveFailureStillReturnsReport(t *testing.T) {
	ai := new(agenttest.Client)
	ai.On("Generate", mock.Anything, mock.Anything).
		Return(agenttest.Text(`{"riskScore":10,"recommendations":"Keep a balanced diet."}`), nil)

	repo := new(mockRepo)
	repo.On("GetBySession", mock.Anything, mock.Anything).Return(nil, errors.New("connection refused"))
	repo.On("Save", mock.Anything, mock.Anything).Return(errors.New("connection refused"))

	report, err := NewService(ai, repo, 0).Recommend(context.Background(), completed())
	require.NoError(t, err)
	assert.Equal(t, RiskLow, report.RiskLevel)
	repo.AssertExpectations(t)
}

func TestHistory_RequiresUser(t *testing.T) {
	_, err := NewService(new(agenttest.Client), NewMemoryRepository(), 0).History(context.Background(), " ")
	assert.ErrorIs(t, err, schema.ErrInvalidInput)
}

func TestReport_NotFound(t *testing.T) {
	_, err := NewService(new(agenttest.Client), NewMemoryRepository(), 0).Report(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrReportNotFound)
}

func TestMemoryRepository_NewestFirst(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()
	base := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

	for i := 0; i < 3; i++ {
		require.NoError(t, repo.Save(ctx, &RecommendationReport{
			ID:        uuid.New(),
			SessionID: uuid.New(),
			UserID:    "user-1",
			RiskScore: i * 10,
			CreatedAt: base.Add(time.Duration(i) * time.Hour),
		}))
	}
	require.NoError(t, repo.Save(ctx, &RecommendationReport{ID: uuid.New(), SessionID: uuid.New(), UserID: "user-2"}))

	got, err := repo.ListByUser(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, []int{20, 10, 0}, []int{got[0].RiskScore, got[1].RiskScore, got[2].RiskScore})
}

func TestMemoryRepository_KeepsFirstReportPerSession(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()
	session := uuid.New()

	first := &RecommendationReport{ID: uuid.New(), SessionID: session, UserID: "u", RiskScore: 30}
	require.NoError(t, repo.Save(ctx, first))
	require.NoError(t, repo.Save(ctx, &RecommendationReport{ID: uuid.New(), SessionID: session, UserID: "u", RiskScore: 90}))

	got, err := repo.GetBySession(ctx, session)
	require.NoError(t, err)
	assert.Equal(t, first.ID, got.ID)
	assert.Equal(t, 30, got.RiskScore)
}

func TestRecommend_RequiresSessionID(t *testing.T) {
	ai := new(agenttest.Client)
	repo := NewMemoryRepository()
	svc := NewService(ai, repo, 0)

	for _, user := range []string{"alice", "bob"} {
		session := completed()
		session.ID = uuid.Nil
		session.UserID = user

		_, err := svc.Recommend(context.Background(), session)
		assert.ErrorIs(t, err, schema.ErrInvalidInput, user)
	}
	ai.AssertNotCalled(t, "Generate", mock.Anything, mock.Anything)
}

func TestRecommend_StoredReportOfAnotherUser(t *testing.T) {
	ai := new(agenttest.Client)
	repo := NewMemoryRepository()
	session := completed()
	require.NoError(t, repo.Save(context.Background(), &RecommendationReport{
		ID:              uuid.New(),
		SessionID:       session.ID,
		UserID:          "alice",
		Recommendations: "alice private advice",
	}))

	session.UserID = "bob"
	got, err := NewService(ai, repo, 0).Recommend(context.Background(), session)
	assert.ErrorIs(t, err, ErrSessionOwner)
	assert.Empty(t, got.Recommendations)
	ai.AssertNotCalled(t, "Generate", mock.Anything, mock.Anything)
}

func TestRecommend_ConcurrentSaveReturnsStoredReport(t *testing.T) {
	ai := new(agenttest.Client)
	ai.On("Generate", mock.Anything, mock.Anything).
		Return(agenttest.Text(`{"riskScore":30,"recommendations":"Second opinion."}`), nil)

	session := completed()
	winner := &RecommendationReport{ID: uuid.New(), SessionID: session.ID, UserID: session.UserID, RiskScore: 50, Recommendations: "First."}

	repo := new(mockRepo)
	repo.On("GetBySession", mock.Anything, session.ID).Return(nil, ErrReportNotFound).Once()
	repo.On("Save", mock.Anything, mock.Anything).Return(nil)
	repo.On("GetBySession", mock.Anything, session.ID).Return(winner, nil).Once()

	got, err := NewService(ai, repo, 0).Recommend(context.Background(), session)
	require.NoError(t, err)
	assert.Equal(t, winner.ID, got.ID)
	assert.Equal(t, "First.", got.Recommendations)
	repo.AssertExpectations(t)
}
