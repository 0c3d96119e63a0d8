package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"ai-lecture-be/internal/dto"
	"ai-lecture-be/internal/pkg/logger"
	"ai-lecture-be/internal/pkg/serverutils"
	"ai-lecture-be/internal/repository/memory"
	"ai-lecture-be/pkg/agent"
	"ai-lecture-be/pkg/lecture"
	"ai-lecture-be/pkg/lecture/notify"
	"ai-lecture-be/pkg/lecture/tokenizer"

	"github.com/google/uuid"
)

const (
	TopicChapterArchived    = "LECTURE_CHAPTER_ARCHIVED"
	TopicEvaluationRecorded = "LECTURE_EVALUATION_RECORDED"
)

type ILectureService interface {
	Initialize(ctx context.Context, req *dto.InitializeLectureRequest) (*dto.InitializeLectureResponse, error)
	GetNextContent(ctx context.Context, lectureId int64) (*dto.NextContentResponse, error)
	AnswerQuestion(ctx context.Context, lectureId int64, req *dto.AnswerQuestionRequest) (*dto.AnswerQuestionResponse, error)
	GetSession(ctx context.Context, lectureId int64) (*dto.SessionSnapshotResponse, error)
	Cancel(ctx context.Context, lectureId int64) (*dto.CancelLectureResponse, error)
}

// lectureService owns the per-lecture session state machine and its
// background job model. Slow collaborator calls (structure analysis,
// chapter generation) run in detached goroutines; a poller is only ever
// answered from cheap state inspection under the registry lock.
type lectureService struct {
	registry         *memory.SessionRegistry
	analyzer         agent.StructureAnalyzer
	generator        agent.LectureGenerator
	evaluator        agent.AnswerEvaluator
	notifier         notify.Notifier
	publisherService IPublisherService
	logger           logger.ILogger
}

func NewLectureService(
	registry *memory.SessionRegistry,
	analyzer agent.StructureAnalyzer,
	generator agent.LectureGenerator,
	evaluator agent.AnswerEvaluator,
	notifier notify.Notifier,
	publisherService IPublisherService,
	sysLogger logger.ILogger,
) ILectureService {
	return &lectureService{
		registry:         registry,
		analyzer:         analyzer,
		generator:        generator,
		evaluator:        evaluator,
		notifier:         notifier,
		publisherService: publisherService,
		logger:           sysLogger,
	}
}

// Initialize creates (or idempotently re-enters) the session for a lecture
// and starts structure analysis in the background. A terminal session is
// replaced by a fresh one; a mid-flight session is returned as-is so
// duplicate initialize calls never duplicate work.
func (s *lectureService) Initialize(ctx context.Context, req *dto.InitializeLectureRequest) (*dto.InitializeLectureResponse, error) {
	var (
		response *dto.InitializeLectureResponse
		spawn    bool
	)

	s.registry.Upsert(req.LectureId, func(existing *lecture.Session) *lecture.Session {
		if existing != nil && !existing.Terminal() {
			status := lecture.ResultProcessing
			var chapters []lecture.Chapter
			if existing.Status != lecture.StatusInitializing {
				status = lecture.StatusInitialized
				chapters = existing.Chapters
			}
			response = &dto.InitializeLectureResponse{
				Status:    status,
				LectureId: req.LectureId,
				Chapters:  chapters,
			}
			return nil
		}

		session := lecture.NewSession(req.LectureId, req.PdfPath)
		session.Status = lecture.StatusInitializing
		session.Job = &lecture.Job{
			ID:        uuid.NewString(),
			Type:      lecture.JobTypeAnalyze,
			Status:    lecture.JobStatusProcessing,
			StartedAt: time.Now(),
		}
		session.Log.Append("INFO", "session created, structure analysis started")

		response = &dto.InitializeLectureResponse{
			Status:    lecture.ResultProcessing,
			LectureId: req.LectureId,
		}
		spawn = true
		return session
	})

	if spawn {
		s.logger.Info("LECTURE", "Starting structure analysis", map[string]interface{}{
			"lecture_id": req.LectureId,
			"pdf_path":   req.PdfPath,
		})
		go s.runAnalyze(req.LectureId, req.PdfPath)
	}

	return response, nil
}

// runAnalyze is the background unit started by Initialize.
func (s *lectureService) runAnalyze(lectureId int64, pdfPath string) {
	ctx := context.Background()

	if s.cancelled(lectureId) {
		s.finishJob(lectureId, lecture.JobStatusCancelled, "cancelled before analysis")
		return
	}

	chapters, err := s.analyzer.Analyze(ctx, pdfPath)
	if err != nil {
		s.failSession(lectureId, fmt.Sprintf("structure analysis failed: %v", err))
		return
	}

	s.registry.Update(lectureId, func(session *lecture.Session) {
		if session.Status == lecture.StatusCancelled {
			finishJobLocked(session, lecture.JobStatusCancelled, "")
			session.Log.Append("WARN", "analysis result discarded, session cancelled")
			return
		}
		session.Chapters = chapters
		session.Status = lecture.StatusInitialized
		finishJobLocked(session, lecture.JobStatusCompleted, "")
		session.Log.Append("INFO", fmt.Sprintf("structure analysis found %d chapters", len(chapters)))
	})

	s.logger.Info("LECTURE", "Structure analysis completed", map[string]interface{}{
		"lecture_id": lectureId,
		"chapters":   len(chapters),
	})
	s.notifier.LectureInitialized(ctx, lectureId, len(chapters))
}

// GetNextContent is the poll operation. It never blocks on generation: it
// pops a buffered result, reports a conflict, or starts/reports the
// background job, all decided atomically under the registry lock.
func (s *lectureService) GetNextContent(ctx context.Context, lectureId int64) (*dto.NextContentResponse, error) {
	var (
		response *dto.NextContentResponse
		opErr    error
		spawn    bool
	)

	found := s.registry.Update(lectureId, func(session *lecture.Session) {
		if pending := session.PopResult(); pending != nil {
			response = resultToResponse(lectureId, pending)
			return
		}

		if session.WaitingForAnswer {
			opErr = serverutils.InvalidState(
				"Waiting for answer to question %s; resolve it before polling", session.CurrentQuestionID)
			return
		}

		switch session.Status {
		case lecture.StatusCancelled:
			response = &dto.NextContentResponse{Status: lecture.ResultCancelled, LectureId: lectureId}
			return
		case lecture.StatusCompleted:
			response = &dto.NextContentResponse{Status: lecture.ResultCompleted, LectureId: lectureId}
			return
		case lecture.StatusError:
			opErr = serverutils.UpstreamFailure("%s", session.Error)
			return
		}

		if session.Job.Processing() {
			response = &dto.NextContentResponse{Status: lecture.ResultProcessing, LectureId: lectureId, HasMore: true}
			return
		}

		if session.Status == lecture.StatusInitializing || session.Status == lecture.StatusUninitialized {
			// Analysis job finished without installing chapters yet; treat as in-flight.
			response = &dto.NextContentResponse{Status: lecture.ResultProcessing, LectureId: lectureId, HasMore: true}
			return
		}

		session.Status = lecture.StatusGenerating
		session.Job = &lecture.Job{
			ID:        uuid.NewString(),
			Type:      lecture.JobTypeGenerate,
			Status:    lecture.JobStatusProcessing,
			StartedAt: time.Now(),
		}
		session.Log.Append("INFO", "content generation job started")
		spawn = true
		response = &dto.NextContentResponse{Status: lecture.ResultProcessing, LectureId: lectureId, HasMore: true}
	})

	if !found {
		return nil, serverutils.NotFound("No session for lecture %d; call initialize first", lectureId)
	}
	if opErr != nil {
		return nil, opErr
	}
	if spawn {
		go s.runGenerate(lectureId)
	}
	return response, nil
}

// runGenerate advances the cursor until it produces exactly one deliverable
// result (or finishes the lecture). Chapters that tokenize to zero segments
// are skipped without emitting anything. A question segment is a hard stop.
func (s *lectureService) runGenerate(lectureId int64) {
	ctx := context.Background()

	for {
		// Cancellation checkpoint before touching the next chapter.
		if s.cancelled(lectureId) {
			s.finishJob(lectureId, lecture.JobStatusCancelled, "cancelled before advancing")
			return
		}

		var (
			docPath     string
			chapterIdx  int
			chapterDone bool
			chapter     lecture.Chapter
			cached      *lecture.ChapterContent
			questions   int
		)
		s.registry.Read(lectureId, func(session *lecture.Session) {
			docPath = session.DocumentPath
			chapterIdx = session.Cursor.ChapterIndex
			chapterDone = chapterIdx >= len(session.Chapters)
			if !chapterDone {
				chapter = session.Chapters[chapterIdx]
				cached = session.GeneratedChapters[chapterIdx]
			}
			questions = len(session.Questions)
		})

		if chapterDone {
			s.registry.Update(lectureId, func(session *lecture.Session) {
				session.Status = lecture.StatusCompleted
				session.PushResult(&lecture.Result{
					Status:       lecture.ResultCompleted,
					ChapterIndex: session.Cursor.ChapterIndex,
				})
				finishJobLocked(session, lecture.JobStatusCompleted, "")
				session.Log.Append("INFO", "all chapters delivered, lecture completed")
			})
			s.logger.Info("LECTURE", "Lecture completed", map[string]interface{}{"lecture_id": lectureId})
			s.notifier.LectureCompleted(ctx, lectureId, questions)
			return
		}

		if cached == nil {
			content, err := s.generateChapter(ctx, lectureId, chapterIdx, chapter, docPath)
			if err != nil {
				s.failSession(lectureId, fmt.Sprintf("chapter %d generation failed: %v", chapterIdx, err))
				return
			}
			if content == nil {
				// Cancelled while the generation call was in flight; result discarded.
				return
			}
		}

		delivered := s.advanceCursor(lectureId, chapterIdx)
		if delivered {
			return
		}
		// Cursor moved to the next chapter without emitting; loop.
	}
}

// generateChapter calls the generator outside any lock, tokenizes the
// narrative and installs the chapter content exactly once. Returns nil
// content (no error) when the session was cancelled mid-call.
func (s *lectureService) generateChapter(ctx context.Context, lectureId int64, chapterIdx int, chapter lecture.Chapter, docPath string) (*lecture.ChapterContent, error) {
	text, err := s.generator.Generate(ctx, chapter.Title, docPath, chapter.StartPage, chapter.EndPage)
	if err != nil {
		return nil, err
	}

	segments, questionMeta := tokenizer.Tokenize(text, fmt.Sprintf("c%d-", chapterIdx))
	content := &lecture.ChapterContent{
		ChapterTitle: chapter.Title,
		SourcePath:   docPath,
		Segments:     segments,
		Questions:    questionMeta,
	}

	var installed *lecture.ChapterContent
	cancelled := false
	s.registry.Update(lectureId, func(session *lecture.Session) {
		if session.Status == lecture.StatusCancelled {
			finishJobLocked(session, lecture.JobStatusCancelled, "")
			session.Log.Append("WARN", fmt.Sprintf("chapter %d result discarded, session cancelled", chapterIdx))
			cancelled = true
			return
		}
		// Write-once cache: keep the first install under concurrent races.
		if existing := session.GeneratedChapters[chapterIdx]; existing != nil {
			installed = existing
			return
		}
		session.GeneratedChapters[chapterIdx] = content
		for id, meta := range questionMeta {
			session.Questions[id] = &lecture.QuestionRecord{
				QuestionID:   id,
				Question:     meta.Question,
				ChapterIndex: chapterIdx,
				ChapterTitle: chapter.Title,
			}
		}
		session.Log.Append("INFO", fmt.Sprintf(
			"chapter %d generated: %d segments, %d questions", chapterIdx, len(segments), len(questionMeta)))
		installed = content
	})
	if cancelled {
		return nil, nil
	}

	s.archiveChapter(ctx, lectureId, chapterIdx, installed)
	return installed, nil
}

// advanceCursor delivers the segment under the cursor, or rolls the cursor
// to the next chapter when this one is exhausted. Returns true when a
// result was produced and the job is done.
func (s *lectureService) advanceCursor(lectureId int64, chapterIdx int) bool {
	delivered := false
	s.registry.Update(lectureId, func(session *lecture.Session) {
		if session.Status == lecture.StatusCancelled {
			finishJobLocked(session, lecture.JobStatusCancelled, "")
			delivered = true
			return
		}

		content := session.GeneratedChapters[chapterIdx]
		if content == nil || session.Cursor.SegmentIndex >= len(content.Segments) {
			// Chapter exhausted (or empty): move on without emitting.
			session.Cursor.ChapterIndex++
			session.Cursor.SegmentIndex = 0
			return
		}

		segment := content.Segments[session.Cursor.SegmentIndex]
		session.Cursor.SegmentIndex++

		switch segment.Type {
		case lecture.SegmentQuestion:
			session.WaitingForAnswer = true
			session.CurrentQuestionID = segment.QuestionID
			session.Status = lecture.StatusWaitingForAnswer
			session.PushResult(&lecture.Result{
				Status:       lecture.ResultQuestion,
				QuestionID:   segment.QuestionID,
				Question:     segment.Question,
				ChapterIndex: chapterIdx,
				ChapterTitle: content.ChapterTitle,
				HasMore:      true,
			})
			session.Log.Append("INFO", fmt.Sprintf("question %s delivered, gating further content", segment.QuestionID))
		default:
			session.WaitingForAnswer = false
			session.Status = lecture.StatusReady
			session.PushResult(&lecture.Result{
				Status:       lecture.ResultContent,
				Content:      segment.Content,
				ChapterIndex: chapterIdx,
				ChapterTitle: content.ChapterTitle,
				HasMore:      true,
			})
			session.Log.Append("INFO", fmt.Sprintf("script segment delivered (chapter %d)", chapterIdx))
		}

		finishJobLocked(session, lecture.JobStatusCompleted, "")
		delivered = true
	})
	return delivered
}

// AnswerQuestion validates the gate, runs the evaluator and records the
// answer. The cursor is not advanced here; advancement is owned by the
// next poll's background job.
func (s *lectureService) AnswerQuestion(ctx context.Context, lectureId int64, req *dto.AnswerQuestionRequest) (*dto.AnswerQuestionResponse, error) {
	var (
		opErr    error
		question string
		docPath  string
	)

	found := s.registry.Read(lectureId, func(session *lecture.Session) {
		record, ok := session.Questions[req.QuestionId]
		if !ok {
			opErr = serverutils.NotFound("Unknown question %s for lecture %d", req.QuestionId, lectureId)
			return
		}
		if record.Answered {
			opErr = serverutils.AlreadyAnswered("Question %s has already been answered", req.QuestionId)
			return
		}
		if session.Status == lecture.StatusCancelled {
			opErr = serverutils.Cancelled("Session for lecture %d is cancelled", lectureId)
			return
		}
		if !session.WaitingForAnswer || session.CurrentQuestionID != req.QuestionId {
			opErr = serverutils.InvalidState(
				"Question %s is not awaiting an answer", req.QuestionId)
			return
		}
		question = record.Question
		docPath = session.DocumentPath
	})
	if !found {
		return nil, serverutils.NotFound("No session for lecture %d", lectureId)
	}
	if opErr != nil {
		return nil, opErr
	}

	evaluation, err := s.evaluator.Evaluate(ctx, question, req.Answer, docPath)
	if err != nil {
		return nil, serverutils.UpstreamFailure("answer evaluation failed: %v", err)
	}

	now := time.Now()
	s.registry.Update(lectureId, func(session *lecture.Session) {
		record, ok := session.Questions[req.QuestionId]
		if !ok || record.Answered {
			opErr = serverutils.AlreadyAnswered("Question %s has already been answered", req.QuestionId)
			return
		}
		record.Answered = true
		record.Answer = req.Answer
		record.Evaluation = evaluation
		record.AnsweredAt = &now
		session.WaitingForAnswer = false
		session.CurrentQuestionID = ""
		if session.Status == lecture.StatusWaitingForAnswer {
			session.Status = lecture.StatusReady
		}
		session.Log.Append("INFO", fmt.Sprintf("question %s answered (verdict %s)", req.QuestionId, evaluation.Verdict))
	})
	if opErr != nil {
		return nil, opErr
	}

	s.archiveEvaluation(ctx, lectureId, req.QuestionId, question, req.Answer, evaluation)

	return &dto.AnswerQuestionResponse{
		QuestionId:       req.QuestionId,
		Explanation:      evaluation.Explanation,
		Verdict:          evaluation.Verdict,
		FollowUpConcepts: evaluation.FollowUpConcepts,
	}, nil
}

// GetSession returns the full snapshot for observability and client resync.
func (s *lectureService) GetSession(ctx context.Context, lectureId int64) (*dto.SessionSnapshotResponse, error) {
	var snapshot *dto.SessionSnapshotResponse
	found := s.registry.Read(lectureId, func(session *lecture.Session) {
		questions := make([]lecture.QuestionRecord, 0, len(session.Questions))
		for _, record := range session.Questions {
			questions = append(questions, *record)
		}
		// Copy the job: the background goroutine keeps writing to the live
		// one after this lock is released.
		var job *lecture.Job
		if session.Job != nil {
			jobCopy := *session.Job
			job = &jobCopy
		}
		snapshot = &dto.SessionSnapshotResponse{
			LectureId:         session.LectureID,
			Status:            session.Status,
			DocumentPath:      session.DocumentPath,
			Chapters:          session.Chapters,
			Cursor:            session.Cursor,
			Questions:         questions,
			WaitingForAnswer:  session.WaitingForAnswer,
			CurrentQuestionId: session.CurrentQuestionID,
			Job:               job,
			Log:               session.Log.Entries(),
			Error:             session.Error,
			CreatedAt:         session.CreatedAt,
			UpdatedAt:         session.UpdatedAt,
		}
	})
	if !found {
		return nil, serverutils.NotFound("No session for lecture %d", lectureId)
	}
	return snapshot, nil
}

// Cancel sets the cooperative cancellation flag. An in-flight collaborator
// call is allowed to finish; its result is discarded at the next checkpoint.
// Cancelling an unknown or already-terminal session is a no-op success.
func (s *lectureService) Cancel(ctx context.Context, lectureId int64) (*dto.CancelLectureResponse, error) {
	cancelled := false
	s.registry.Update(lectureId, func(session *lecture.Session) {
		if session.Terminal() {
			return
		}
		session.Status = lecture.StatusCancelled
		session.WaitingForAnswer = false
		session.CurrentQuestionID = ""
		session.Log.Append("WARN", "session cancelled by caller")
		cancelled = true
	})

	if cancelled {
		s.logger.Info("LECTURE", "Session cancelled", map[string]interface{}{"lecture_id": lectureId})
		s.notifier.LectureCancelled(ctx, lectureId)
	}

	return &dto.CancelLectureResponse{Status: lecture.StatusCancelled, LectureId: lectureId}, nil
}

// --- helpers ---

func (s *lectureService) cancelled(lectureId int64) bool {
	cancelled := false
	s.registry.Read(lectureId, func(session *lecture.Session) {
		cancelled = session.Status == lecture.StatusCancelled
	})
	return cancelled
}

func (s *lectureService) failSession(lectureId int64, message string) {
	s.registry.Update(lectureId, func(session *lecture.Session) {
		session.Status = lecture.StatusError
		session.Error = message
		finishJobLocked(session, lecture.JobStatusError, message)
		session.Log.Append("ERROR", message)
	})
	s.logger.Error("LECTURE", "Background job failed", map[string]interface{}{
		"lecture_id": lectureId,
		"error":      message,
	})
	s.notifier.LectureFailed(context.Background(), lectureId, message)
}

func (s *lectureService) finishJob(lectureId int64, status, note string) {
	s.registry.Update(lectureId, func(session *lecture.Session) {
		finishJobLocked(session, status, "")
		if note != "" {
			session.Log.Append("WARN", note)
		}
	})
}

func finishJobLocked(session *lecture.Session, status, errMsg string) {
	if session.Job == nil {
		return
	}
	now := time.Now()
	session.Job.Status = status
	session.Job.FinishedAt = &now
	session.Job.Error = errMsg
}

func (s *lectureService) archiveChapter(ctx context.Context, lectureId int64, chapterIdx int, content *lecture.ChapterContent) {
	if s.publisherService == nil || content == nil {
		return
	}
	msg := dto.ArchiveChapterMessage{
		LectureId:    lectureId,
		ChapterIndex: chapterIdx,
		Content:      content,
	}
	payload, err := json.Marshal(msg)
	if err != nil {
		s.logger.Error("LECTURE", "Failed to marshal chapter archive message", map[string]interface{}{"error": err.Error()})
		return
	}
	if err := s.publisherService.Publish(ctx, TopicChapterArchived, payload); err != nil {
		s.logger.Error("LECTURE", "Failed to publish chapter archive message", map[string]interface{}{"error": err.Error()})
	}
}

func (s *lectureService) archiveEvaluation(ctx context.Context, lectureId int64, questionId, question, answer string, evaluation *lecture.Evaluation) {
	if s.publisherService == nil {
		return
	}
	msg := dto.ArchiveEvaluationMessage{
		LectureId:  lectureId,
		QuestionId: questionId,
		Question:   question,
		Answer:     answer,
		Evaluation: evaluation,
	}
	payload, err := json.Marshal(msg)
	if err != nil {
		s.logger.Error("LECTURE", "Failed to marshal evaluation archive message", map[string]interface{}{"error": err.Error()})
		return
	}
	if err := s.publisherService.Publish(ctx, TopicEvaluationRecorded, payload); err != nil {
		s.logger.Error("LECTURE", "Failed to publish evaluation archive message", map[string]interface{}{"error": err.Error()})
	}
}

func resultToResponse(lectureId int64, r *lecture.Result) *dto.NextContentResponse {
	return &dto.NextContentResponse{
		Status:       r.Status,
		LectureId:    lectureId,
		Content:      r.Content,
		QuestionId:   r.QuestionID,
		Question:     r.Question,
		ChapterIndex: r.ChapterIndex,
		ChapterTitle: r.ChapterTitle,
		HasMore:      r.HasMore,
	}
}
