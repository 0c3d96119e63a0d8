package contract

import (
	"context"

	"ai-lecture-be/internal/entity"
)

type ArchiveRepository interface {
	SaveChapter(ctx context.Context, chapter *entity.ArchivedChapter) error
	SaveEvaluation(ctx context.Context, evaluation *entity.ArchivedEvaluation) error
	FindChaptersByLectureId(ctx context.Context, lectureId int64) ([]entity.ArchivedChapter, error)
	FindEvaluationsByLectureId(ctx context.Context, lectureId int64) ([]entity.ArchivedEvaluation, error)
}
