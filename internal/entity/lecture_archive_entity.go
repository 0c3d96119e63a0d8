package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// ArchivedChapter is one generated chapter persisted after background
// generation finishes. Segments and questions are stored as JSON so the
// archive survives schema-free tokenizer changes.
type ArchivedChapter struct {
	Id           uuid.UUID `gorm:"primaryKey"`
	LectureId    int64     `gorm:"index:idx_archived_chapters_lecture_chapter,unique"`
	ChapterIndex int       `gorm:"index:idx_archived_chapters_lecture_chapter,unique"`
	ChapterTitle string
	SourcePath   string
	Segments     datatypes.JSON
	Questions    datatypes.JSON
	CreatedAt    time.Time
}

// ArchivedEvaluation is one recorded answer evaluation.
type ArchivedEvaluation struct {
	Id               uuid.UUID `gorm:"primaryKey"`
	LectureId        int64     `gorm:"index"`
	QuestionId       string    `gorm:"index"`
	Question         string
	Answer           string
	Explanation      string
	Verdict          string
	FollowUpConcepts datatypes.JSON
	CreatedAt        time.Time
}
