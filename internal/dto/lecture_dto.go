package dto

import (
	"time"

	"ai-lecture-be/pkg/lecture"
)

type InitializeLectureRequest struct {
	LectureId int64  `json:"lecture_id" validate:"required"`
	PdfPath   string `json:"pdf_path" validate:"required"`
}

type InitializeLectureResponse struct {
	Status    string            `json:"status"`
	LectureId int64             `json:"lecture_id"`
	Chapters  []lecture.Chapter `json:"chapters,omitempty"`
}

type NextContentResponse struct {
	Status       string `json:"status"`
	LectureId    int64  `json:"lecture_id"`
	Content      string `json:"content,omitempty"`
	QuestionId   string `json:"question_id,omitempty"`
	Question     string `json:"question,omitempty"`
	ChapterIndex int    `json:"chapter_index"`
	ChapterTitle string `json:"chapter_title,omitempty"`
	HasMore      bool   `json:"has_more"`
}

type AnswerQuestionRequest struct {
	QuestionId string `json:"question_id" validate:"required"`
	Answer     string `json:"answer" validate:"required"`
}

type AnswerQuestionResponse struct {
	QuestionId       string   `json:"question_id"`
	Explanation      string   `json:"explanation"`
	Verdict          string   `json:"verdict,omitempty"`
	FollowUpConcepts []string `json:"follow_up_concepts,omitempty"`
}

type SessionSnapshotResponse struct {
	LectureId         int64                      `json:"lecture_id"`
	Status            string                     `json:"status"`
	DocumentPath      string                     `json:"document_path"`
	Chapters          []lecture.Chapter          `json:"chapters,omitempty"`
	Cursor            lecture.Cursor             `json:"cursor"`
	Questions         []lecture.QuestionRecord   `json:"questions"`
	WaitingForAnswer  bool                       `json:"waiting_for_answer"`
	CurrentQuestionId string                     `json:"current_question_id,omitempty"`
	Job               *lecture.Job               `json:"job,omitempty"`
	Log               []lecture.LogEntry         `json:"log"`
	Error             string                     `json:"error,omitempty"`
	CreatedAt         time.Time                  `json:"created_at"`
	UpdatedAt         time.Time                  `json:"updated_at"`
}

type CancelLectureResponse struct {
	Status    string `json:"status"`
	LectureId int64  `json:"lecture_id"`
}

type ArchivedChapterResponse struct {
	ChapterIndex int                     `json:"chapter_index"`
	ChapterTitle string                  `json:"chapter_title"`
	SourcePath   string                  `json:"source_path"`
	Segments     []lecture.Segment       `json:"segments"`
	Questions    map[string]lecture.QuestionMeta `json:"questions"`
	CreatedAt    time.Time               `json:"created_at"`
}

type ArchivedEvaluationResponse struct {
	QuestionId       string    `json:"question_id"`
	Question         string    `json:"question"`
	Answer           string    `json:"answer"`
	Explanation      string    `json:"explanation"`
	Verdict          string    `json:"verdict,omitempty"`
	FollowUpConcepts []string  `json:"follow_up_concepts,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
}

type LectureArchiveResponse struct {
	LectureId   int64                        `json:"lecture_id"`
	Chapters    []ArchivedChapterResponse    `json:"chapters"`
	Evaluations []ArchivedEvaluationResponse `json:"evaluations"`
}

// Archive pipeline messages (watermill payloads).

type ArchiveChapterMessage struct {
	LectureId    int64                   `json:"lecture_id"`
	ChapterIndex int                     `json:"chapter_index"`
	Content      *lecture.ChapterContent `json:"content"`
}

type ArchiveEvaluationMessage struct {
	LectureId  int64                   `json:"lecture_id"`
	QuestionId string                  `json:"question_id"`
	Question   string                  `json:"question"`
	Answer     string                  `json:"answer"`
	Evaluation *lecture.Evaluation     `json:"evaluation"`
}
