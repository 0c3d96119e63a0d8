package implementation

import (
	"context"

	"ai-lecture-be/internal/entity"
	"ai-lecture-be/internal/repository/contract"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type archiveRepository struct {
	db *gorm.DB
}

func NewArchiveRepository(db *gorm.DB) contract.ArchiveRepository {
	return &archiveRepository{db: db}
}

// SaveChapter upserts on (lecture_id, chapter_index): re-archiving after a
// session restart overwrites rather than duplicating.
func (r *archiveRepository) SaveChapter(ctx context.Context, chapter *entity.ArchivedChapter) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "lecture_id"}, {Name: "chapter_index"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"chapter_title", "source_path", "segments", "questions",
		}),
	}).Create(chapter).Error
}

func (r *archiveRepository) SaveEvaluation(ctx context.Context, evaluation *entity.ArchivedEvaluation) error {
	return r.db.WithContext(ctx).Create(evaluation).Error
}

func (r *archiveRepository) FindChaptersByLectureId(ctx context.Context, lectureId int64) ([]entity.ArchivedChapter, error) {
	var chapters []entity.ArchivedChapter
	err := r.db.WithContext(ctx).
		Where("lecture_id = ?", lectureId).
		Order("chapter_index ASC").
		Find(&chapters).Error
	return chapters, err
}

func (r *archiveRepository) FindEvaluationsByLectureId(ctx context.Context, lectureId int64) ([]entity.ArchivedEvaluation, error) {
	var evaluations []entity.ArchivedEvaluation
	err := r.db.WithContext(ctx).
		Where("lecture_id = ?", lectureId).
		Order("created_at ASC").
		Find(&evaluations).Error
	return evaluations, err
}
