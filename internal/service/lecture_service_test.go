package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"ai-lecture-be/internal/dto"
	"ai-lecture-be/internal/pkg/serverutils"
	"ai-lecture-be/internal/repository/memory"
	"ai-lecture-be/pkg/lecture"
	"ai-lecture-be/pkg/lecture/notify"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeAgent stands in for all three generation collaborators.
type fakeAgent struct {
	mu            sync.Mutex
	analyzeCalls  int
	generateCalls int

	chapters    []lecture.Chapter
	scripts     map[string]string
	analyzeErr  error
	generateErr error
	evaluateErr error
	delay       time.Duration
}

func (f *fakeAgent) Analyze(ctx context.Context, documentPath string) ([]lecture.Chapter, error) {
	f.mu.Lock()
	f.analyzeCalls++
	f.mu.Unlock()
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	if f.analyzeErr != nil {
		return nil, f.analyzeErr
	}
	return f.chapters, nil
}

func (f *fakeAgent) Generate(ctx context.Context, chapterTitle, documentPath string, startPage, endPage int) (string, error) {
	f.mu.Lock()
	f.generateCalls++
	f.mu.Unlock()
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	if f.generateErr != nil {
		return "", f.generateErr
	}
	return f.scripts[chapterTitle], nil
}

func (f *fakeAgent) Evaluate(ctx context.Context, question, answer, documentPath string) (*lecture.Evaluation, error) {
	if f.evaluateErr != nil {
		return nil, f.evaluateErr
	}
	return &lecture.Evaluation{
		Explanation: "Good thinking about " + question,
		Verdict:     "GOOD",
	}, nil
}

func (f *fakeAgent) generated() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.generateCalls
}

func (f *fakeAgent) analyzed() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.analyzeCalls
}

type nopLogger struct{}

func (nopLogger) Debug(module, message string, details map[string]interface{}) {}
func (nopLogger) Info(module, message string, details map[string]interface{})  {}
func (nopLogger) Warn(module, message string, details map[string]interface{})  {}
func (nopLogger) Error(module, message string, details map[string]interface{}) {}

func (nopLogger) Sync() error { return nil }

func newTestService(agent *fakeAgent) ILectureService {
	return NewLectureService(
		memory.NewSessionRegistry(),
		agent,
		agent,
		agent,
		notify.NopNotifier{},
		nil,
		nopLogger{},
	)
}

func initialize(t *testing.T, svc ILectureService, lectureId int64) {
	t.Helper()
	res, err := svc.Initialize(context.Background(), &dto.InitializeLectureRequest{
		LectureId: lectureId,
		PdfPath:   "uploads/test.pdf",
	})
	require.NoError(t, err)
	require.Equal(t, lecture.ResultProcessing, res.Status)
	waitForSessionStatus(t, svc, lectureId, lecture.StatusInitialized)
}

func waitForSessionStatus(t *testing.T, svc ILectureService, lectureId int64, status string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		snap, err := svc.GetSession(context.Background(), lectureId)
		require.NoError(t, err)
		if snap.Status == status {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("session for lecture %d never reached status %q", lectureId, status)
}

// pollNext polls until something other than processing arrives.
func pollNext(t *testing.T, svc ILectureService, lectureId int64) *dto.NextContentResponse {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		res, err := svc.GetNextContent(context.Background(), lectureId)
		require.NoError(t, err)
		if res.Status != lecture.ResultProcessing {
			return res
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("poll for lecture %d never produced a result", lectureId)
	return nil
}

func apiCode(t *testing.T, err error) string {
	t.Helper()
	var apiErr *serverutils.ApiError
	require.True(t, errors.As(err, &apiErr), "expected ApiError, got %v", err)
	return apiErr.Code
}

func TestLectureFlowWithQuestionGate(t *testing.T) {
	agent := &fakeAgent{
		chapters: []lecture.Chapter{
			{Title: "Intro", StartPage: 1, EndPage: 5},
			{Title: "Outro", StartPage: 6, EndPage: 9},
		},
		scripts: map[string]string{
			"Intro": "Welcome to the intro. [Q]What did we just cover?[/Q] Moving on now.",
			"Outro": "That wraps everything up.",
		},
	}
	svc := newTestService(agent)
	ctx := context.Background()

	initialize(t, svc, 1)

	first := pollNext(t, svc, 1)
	assert.Equal(t, lecture.ResultContent, first.Status)
	assert.Equal(t, "Welcome to the intro.", first.Content)
	assert.Equal(t, "Intro", first.ChapterTitle)
	assert.True(t, first.HasMore)

	question := pollNext(t, svc, 1)
	require.Equal(t, lecture.ResultQuestion, question.Status)
	assert.Equal(t, "c0-q-0", question.QuestionId)
	assert.Equal(t, "What did we just cover?", question.Question)

	// The gate rejects further polling until the question is answered.
	_, err := svc.GetNextContent(ctx, 1)
	require.Error(t, err)
	assert.Equal(t, serverutils.CodeInvalidState, apiCode(t, err))

	// Unknown question id.
	_, err = svc.AnswerQuestion(ctx, 1, &dto.AnswerQuestionRequest{QuestionId: "c9-q-9", Answer: "hm"})
	require.Error(t, err)
	assert.Equal(t, serverutils.CodeNotFound, apiCode(t, err))

	answer, err := svc.AnswerQuestion(ctx, 1, &dto.AnswerQuestionRequest{
		QuestionId: question.QuestionId,
		Answer:     "the intro",
	})
	require.NoError(t, err)
	assert.Equal(t, "GOOD", answer.Verdict)
	assert.NotEmpty(t, answer.Explanation)

	// Answering twice is rejected.
	_, err = svc.AnswerQuestion(ctx, 1, &dto.AnswerQuestionRequest{
		QuestionId: question.QuestionId,
		Answer:     "again",
	})
	require.Error(t, err)
	assert.Equal(t, serverutils.CodeAlreadyAnswered, apiCode(t, err))

	rest := pollNext(t, svc, 1)
	assert.Equal(t, lecture.ResultContent, rest.Status)
	assert.Equal(t, "Moving on now.", rest.Content)

	outro := pollNext(t, svc, 1)
	assert.Equal(t, lecture.ResultContent, outro.Status)
	assert.Equal(t, "That wraps everything up.", outro.Content)
	assert.Equal(t, "Outro", outro.ChapterTitle)

	done := pollNext(t, svc, 1)
	assert.Equal(t, lecture.ResultCompleted, done.Status)

	// Chapter generation ran once per chapter despite repeated polling.
	assert.Equal(t, 2, agent.generated())

	snap, err := svc.GetSession(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, lecture.StatusCompleted, snap.Status)
	require.Len(t, snap.Questions, 1)
	assert.True(t, snap.Questions[0].Answered)
	assert.Equal(t, "the intro", snap.Questions[0].Answer)
}

func TestGetNextContentUnknownLecture(t *testing.T) {
	svc := newTestService(&fakeAgent{})

	_, err := svc.GetNextContent(context.Background(), 404)
	require.Error(t, err)
	assert.Equal(t, serverutils.CodeNotFound, apiCode(t, err))

	_, err = svc.GetSession(context.Background(), 404)
	require.Error(t, err)
	assert.Equal(t, serverutils.CodeNotFound, apiCode(t, err))
}

func TestInitializeIsIdempotentWhileActive(t *testing.T) {
	agent := &fakeAgent{
		chapters: []lecture.Chapter{{Title: "Only", StartPage: 1, EndPage: 2}},
		scripts:  map[string]string{"Only": "Single chapter."},
	}
	svc := newTestService(agent)
	ctx := context.Background()

	initialize(t, svc, 7)

	// Re-initializing an active session returns its state without new work.
	res, err := svc.Initialize(ctx, &dto.InitializeLectureRequest{LectureId: 7, PdfPath: "uploads/test.pdf"})
	require.NoError(t, err)
	assert.Equal(t, lecture.StatusInitialized, res.Status)
	assert.Len(t, res.Chapters, 1)
	assert.Equal(t, 1, agent.analyzed())
}

func TestInitializeReplacesTerminalSession(t *testing.T) {
	agent := &fakeAgent{
		chapters: []lecture.Chapter{{Title: "Only", StartPage: 1, EndPage: 2}},
		scripts:  map[string]string{"Only": "Single chapter."},
	}
	svc := newTestService(agent)
	ctx := context.Background()

	initialize(t, svc, 8)
	_, err := svc.Cancel(ctx, 8)
	require.NoError(t, err)

	res, err := svc.Initialize(ctx, &dto.InitializeLectureRequest{LectureId: 8, PdfPath: "uploads/test.pdf"})
	require.NoError(t, err)
	assert.Equal(t, lecture.ResultProcessing, res.Status)
	waitForSessionStatus(t, svc, 8, lecture.StatusInitialized)
	assert.Equal(t, 2, agent.analyzed())
}

func TestConcurrentPollsSpawnSingleGenerator(t *testing.T) {
	agent := &fakeAgent{
		chapters: []lecture.Chapter{{Title: "Only", StartPage: 1, EndPage: 2}},
		scripts:  map[string]string{"Only": "Single chapter."},
		delay:    20 * time.Millisecond,
	}
	svc := newTestService(agent)
	ctx := context.Background()

	initialize(t, svc, 9)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.GetNextContent(ctx, 9)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	res := pollNext(t, svc, 9)
	assert.Equal(t, lecture.ResultContent, res.Status)
	assert.Equal(t, 1, agent.generated())
}

func TestCancelStopsDelivery(t *testing.T) {
	agent := &fakeAgent{
		chapters: []lecture.Chapter{
			{Title: "Intro", StartPage: 1, EndPage: 5},
			{Title: "Outro", StartPage: 6, EndPage: 9},
		},
		scripts: map[string]string{
			"Intro": "Part one. [Q]Still here?[/Q]",
			"Outro": "Part two.",
		},
	}
	svc := newTestService(agent)
	ctx := context.Background()

	initialize(t, svc, 10)

	first := pollNext(t, svc, 10)
	require.Equal(t, lecture.ResultContent, first.Status)
	question := pollNext(t, svc, 10)
	require.Equal(t, lecture.ResultQuestion, question.Status)

	res, err := svc.Cancel(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, lecture.StatusCancelled, res.Status)

	// Cancellation is idempotent.
	res, err = svc.Cancel(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, lecture.StatusCancelled, res.Status)

	// Answering after cancellation is rejected.
	_, err = svc.AnswerQuestion(ctx, 10, &dto.AnswerQuestionRequest{
		QuestionId: question.QuestionId,
		Answer:     "yes",
	})
	require.Error(t, err)
	assert.Equal(t, serverutils.CodeCancelled, apiCode(t, err))

	next, err := svc.GetNextContent(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, lecture.ResultCancelled, next.Status)
}

func TestCancelAfterCompletionLeavesSessionUntouched(t *testing.T) {
	agent := &fakeAgent{
		chapters: []lecture.Chapter{{Title: "Only", StartPage: 1, EndPage: 2}},
		scripts:  map[string]string{"Only": "Single chapter."},
	}
	svc := newTestService(agent)
	ctx := context.Background()

	initialize(t, svc, 15)
	content := pollNext(t, svc, 15)
	require.Equal(t, lecture.ResultContent, content.Status)
	done := pollNext(t, svc, 15)
	require.Equal(t, lecture.ResultCompleted, done.Status)

	res, err := svc.Cancel(ctx, 15)
	require.NoError(t, err)
	assert.Equal(t, lecture.StatusCancelled, res.Status)

	snap, err := svc.GetSession(ctx, 15)
	require.NoError(t, err)
	assert.Equal(t, lecture.StatusCompleted, snap.Status)
}

func TestSessionSnapshotDoesNotTrackLiveJob(t *testing.T) {
	agent := &fakeAgent{
		chapters: []lecture.Chapter{{Title: "Only", StartPage: 1, EndPage: 2}},
		scripts:  map[string]string{"Only": "Single chapter."},
		delay:    100 * time.Millisecond,
	}
	svc := newTestService(agent)
	ctx := context.Background()

	res, err := svc.Initialize(ctx, &dto.InitializeLectureRequest{LectureId: 16, PdfPath: "uploads/test.pdf"})
	require.NoError(t, err)
	require.Equal(t, lecture.ResultProcessing, res.Status)

	snap, err := svc.GetSession(ctx, 16)
	require.NoError(t, err)
	require.NotNil(t, snap.Job)
	require.Equal(t, lecture.JobStatusProcessing, snap.Job.Status)

	waitForSessionStatus(t, svc, 16, lecture.StatusInitialized)

	// The earlier snapshot is a copy: the finished job must not leak into it.
	assert.Equal(t, lecture.JobStatusProcessing, snap.Job.Status)
	assert.Nil(t, snap.Job.FinishedAt)

	fresh, err := svc.GetSession(ctx, 16)
	require.NoError(t, err)
	require.NotNil(t, fresh.Job)
	assert.Equal(t, lecture.JobStatusCompleted, fresh.Job.Status)
}

func TestCancelUnknownLectureSucceeds(t *testing.T) {
	svc := newTestService(&fakeAgent{})

	res, err := svc.Cancel(context.Background(), 999)
	require.NoError(t, err)
	assert.Equal(t, lecture.StatusCancelled, res.Status)
}

func TestAnalyzeFailureSurfacesOnPoll(t *testing.T) {
	agent := &fakeAgent{analyzeErr: errors.New("model unavailable")}
	svc := newTestService(agent)
	ctx := context.Background()

	res, err := svc.Initialize(ctx, &dto.InitializeLectureRequest{LectureId: 11, PdfPath: "uploads/test.pdf"})
	require.NoError(t, err)
	require.Equal(t, lecture.ResultProcessing, res.Status)
	waitForSessionStatus(t, svc, 11, lecture.StatusError)

	_, err = svc.GetNextContent(ctx, 11)
	require.Error(t, err)
	assert.Equal(t, serverutils.CodeUpstreamFailure, apiCode(t, err))
}

func TestGenerateFailureSurfacesOnPoll(t *testing.T) {
	agent := &fakeAgent{
		chapters:    []lecture.Chapter{{Title: "Only", StartPage: 1, EndPage: 2}},
		scripts:     map[string]string{},
		generateErr: errors.New("model unavailable"),
	}
	svc := newTestService(agent)
	ctx := context.Background()

	initialize(t, svc, 12)
	waitForSessionStatus(t, svc, 12, lecture.StatusInitialized)

	res, err := svc.GetNextContent(ctx, 12)
	require.NoError(t, err)
	require.Equal(t, lecture.ResultProcessing, res.Status)
	waitForSessionStatus(t, svc, 12, lecture.StatusError)

	_, err = svc.GetNextContent(ctx, 12)
	require.Error(t, err)
	assert.Equal(t, serverutils.CodeUpstreamFailure, apiCode(t, err))
}

func TestEmptyChaptersAreSkipped(t *testing.T) {
	agent := &fakeAgent{
		chapters: []lecture.Chapter{
			{Title: "Blank", StartPage: 1, EndPage: 1},
			{Title: "Real", StartPage: 2, EndPage: 3},
		},
		scripts: map[string]string{
			"Blank": "   \n  ",
			"Real":  "Actual content.",
		},
	}
	svc := newTestService(agent)

	initialize(t, svc, 13)

	res := pollNext(t, svc, 13)
	assert.Equal(t, lecture.ResultContent, res.Status)
	assert.Equal(t, "Actual content.", res.Content)
	assert.Equal(t, 1, res.ChapterIndex)

	done := pollNext(t, svc, 13)
	assert.Equal(t, lecture.ResultCompleted, done.Status)
}

func TestEvaluateFailureKeepsQuestionOpen(t *testing.T) {
	agent := &fakeAgent{
		chapters: []lecture.Chapter{{Title: "Only", StartPage: 1, EndPage: 2}},
		scripts:  map[string]string{"Only": "[Q]First question?[/Q]"},
	}
	svc := newTestService(agent)
	ctx := context.Background()

	initialize(t, svc, 14)

	question := pollNext(t, svc, 14)
	require.Equal(t, lecture.ResultQuestion, question.Status)

	agent.evaluateErr = errors.New("model unavailable")
	_, err := svc.AnswerQuestion(ctx, 14, &dto.AnswerQuestionRequest{
		QuestionId: question.QuestionId,
		Answer:     "attempt",
	})
	require.Error(t, err)
	assert.Equal(t, serverutils.CodeUpstreamFailure, apiCode(t, err))

	// The gate still holds and the question may be retried.
	agent.evaluateErr = nil
	answer, err := svc.AnswerQuestion(ctx, 14, &dto.AnswerQuestionRequest{
		QuestionId: question.QuestionId,
		Answer:     "retry",
	})
	require.NoError(t, err)
	assert.Equal(t, "GOOD", answer.Verdict)
}
