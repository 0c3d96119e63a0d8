package lecture

import (
	"time"
)

// Session status values. A session walks
// initializing -> initialized -> generating/ready -> ... -> completed,
// or drops into waiting_for_answer whenever a question segment is delivered.
const (
	StatusUninitialized    = "uninitialized"
	StatusInitializing     = "initializing"
	StatusInitialized      = "initialized"
	StatusGenerating       = "generating"
	StatusReady            = "ready"
	StatusWaitingForAnswer = "waiting_for_answer"
	StatusCompleted        = "completed"
	StatusError            = "error"
	StatusCancelled        = "cancelled"
)

// Job types and statuses for the per-session background unit of work.
const (
	JobTypeAnalyze  = "analyze"
	JobTypeGenerate = "generate"

	JobStatusProcessing = "processing"
	JobStatusCompleted  = "completed"
	JobStatusError      = "error"
	JobStatusCancelled  = "cancelled"
)

// Result kinds delivered to pollers.
const (
	ResultProcessing = "processing"
	ResultContent    = "content"
	ResultQuestion   = "question"
	ResultCompleted  = "completed"
	ResultCancelled  = "cancelled"
	ResultError      = "error"
)

// Segment kinds produced by the tokenizer.
const (
	SegmentScript   = "script"
	SegmentQuestion = "question"
)

// Chapter is one entry of the structure analysis result.
type Chapter struct {
	Title     string `json:"chapter_title"`
	StartPage int    `json:"start_page"`
	EndPage   int    `json:"end_page"`
}

// Segment is one deliverable unit: narrative script text or an embedded question.
type Segment struct {
	Type       string `json:"type"`
	Content    string `json:"content,omitempty"`
	QuestionID string `json:"questionId,omitempty"`
	Question   string `json:"question,omitempty"`
}

// QuestionMeta is the per-question entry inside a generated chapter.
type QuestionMeta struct {
	Question      string `json:"question"`
	QuestionIndex int    `json:"questionIndex"`
}

// ChapterContent is the cached generation result for a single chapter.
// Written once per chapter index, read by every later poll.
type ChapterContent struct {
	ChapterTitle string                  `json:"chapter_title"`
	SourcePath   string                  `json:"source_path"`
	Segments     []Segment               `json:"segments"`
	Questions    map[string]QuestionMeta `json:"questions"`
}

// QuestionRecord tracks a question across its whole lifecycle. Answer fields
// are written exactly once; everything else is immutable after registration.
type QuestionRecord struct {
	QuestionID   string      `json:"question_id"`
	Question     string      `json:"question"`
	ChapterIndex int         `json:"chapter_index"`
	ChapterTitle string      `json:"chapter_title"`
	Answered     bool        `json:"answered"`
	Answer       string      `json:"answer,omitempty"`
	Evaluation   *Evaluation `json:"evaluation,omitempty"`
	AnsweredAt   *time.Time  `json:"answered_at,omitempty"`
}

// Evaluation is the structured result of the answer evaluator collaborator.
type Evaluation struct {
	Explanation      string   `json:"explanation"`
	Verdict          string   `json:"verdict"`
	FollowUpConcepts []string `json:"follow_up_concepts,omitempty"`
}

// Cursor marks the next segment to deliver. ChapterIndex never decreases;
// SegmentIndex resets to zero exactly when ChapterIndex advances.
type Cursor struct {
	ChapterIndex int `json:"chapter_index"`
	SegmentIndex int `json:"segment_index"`
}

// Job describes the in-flight or most recent background unit of work.
type Job struct {
	ID         string     `json:"id"`
	Type       string     `json:"type"`
	Status     string     `json:"status"`
	StartedAt  time.Time  `json:"started_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
	Error      string     `json:"error,omitempty"`
}

// Processing reports whether a background unit is still running.
func (j *Job) Processing() bool {
	return j != nil && j.Status == JobStatusProcessing
}

// Result is one poll outcome. Results computed in the background are queued
// on the session so the next poll pops them without waiting on the generator.
type Result struct {
	Status       string `json:"status"`
	Content      string `json:"content,omitempty"`
	QuestionID   string `json:"question_id,omitempty"`
	Question     string `json:"question,omitempty"`
	ChapterIndex int    `json:"chapter_index"`
	ChapterTitle string `json:"chapter_title,omitempty"`
	HasMore      bool   `json:"has_more"`
}

// Session is the per-lecture aggregate: generation progress, caches,
// question state and the bounded activity log. All mutation goes through
// the registry's serialized update scope.
type Session struct {
	LectureID         int64                      `json:"lecture_id"`
	Status            string                     `json:"status"`
	DocumentPath      string                     `json:"document_path"`
	Chapters          []Chapter                  `json:"chapters"`
	Cursor            Cursor                     `json:"cursor"`
	GeneratedChapters map[int]*ChapterContent    `json:"-"`
	Questions         map[string]*QuestionRecord `json:"questions"`
	PendingResults    []*Result                  `json:"-"`
	WaitingForAnswer  bool                       `json:"waiting_for_answer"`
	CurrentQuestionID string                     `json:"current_question_id,omitempty"`
	Job               *Job                       `json:"job,omitempty"`
	Log               *LogRing                   `json:"log,omitempty"`
	Error             string                     `json:"error,omitempty"`
	CreatedAt         time.Time                  `json:"created_at"`
	UpdatedAt         time.Time                  `json:"updated_at"`
}

// NewSession creates a fresh session for a lecture. The cursor starts at
// (0,0) and is never reset again for the lifetime of the session.
func NewSession(lectureID int64, documentPath string) *Session {
	now := time.Now()
	return &Session{
		LectureID:         lectureID,
		Status:            StatusUninitialized,
		DocumentPath:      documentPath,
		GeneratedChapters: make(map[int]*ChapterContent),
		Questions:         make(map[string]*QuestionRecord),
		Log:               NewLogRing(DefaultLogCapacity),
		CreatedAt:         now,
		UpdatedAt:         now,
	}
}

// Terminal reports whether the session can no longer advance.
func (s *Session) Terminal() bool {
	switch s.Status {
	case StatusCompleted, StatusError, StatusCancelled:
		return true
	}
	return false
}

// PushResult queues a computed poll result for later delivery.
func (s *Session) PushResult(r *Result) {
	s.PendingResults = append(s.PendingResults, r)
}

// PopResult removes and returns the oldest queued result, or nil.
func (s *Session) PopResult() *Result {
	if len(s.PendingResults) == 0 {
		return nil
	}
	r := s.PendingResults[0]
	s.PendingResults = s.PendingResults[1:]
	return r
}

// Touch bumps the updated-at timestamp.
func (s *Session) Touch() {
	s.UpdatedAt = time.Now()
}
