package service

import (
	"context"
	"encoding/json"

	"ai-lecture-be/internal/dto"
	"ai-lecture-be/internal/pkg/serverutils"
	"ai-lecture-be/internal/repository/contract"
	"ai-lecture-be/pkg/lecture"
)

type IArchiveService interface {
	GetArchive(ctx context.Context, lectureId int64) (*dto.LectureArchiveResponse, error)
}

type archiveService struct {
	archiveRepo contract.ArchiveRepository
}

func NewArchiveService(archiveRepo contract.ArchiveRepository) IArchiveService {
	return &archiveService{archiveRepo: archiveRepo}
}

func (s *archiveService) GetArchive(ctx context.Context, lectureId int64) (*dto.LectureArchiveResponse, error) {
	if s.archiveRepo == nil {
		return nil, serverutils.NotFound("Archive storage is not configured")
	}
	chapters, err := s.archiveRepo.FindChaptersByLectureId(ctx, lectureId)
	if err != nil {
		return nil, err
	}
	evaluations, err := s.archiveRepo.FindEvaluationsByLectureId(ctx, lectureId)
	if err != nil {
		return nil, err
	}
	if len(chapters) == 0 && len(evaluations) == 0 {
		return nil, serverutils.NotFound("No archived content for lecture %d", lectureId)
	}

	response := &dto.LectureArchiveResponse{
		LectureId:   lectureId,
		Chapters:    make([]dto.ArchivedChapterResponse, 0, len(chapters)),
		Evaluations: make([]dto.ArchivedEvaluationResponse, 0, len(evaluations)),
	}

	for _, chapter := range chapters {
		var segments []lecture.Segment
		if err := json.Unmarshal(chapter.Segments, &segments); err != nil {
			return nil, err
		}
		var questions map[string]lecture.QuestionMeta
		if err := json.Unmarshal(chapter.Questions, &questions); err != nil {
			return nil, err
		}
		response.Chapters = append(response.Chapters, dto.ArchivedChapterResponse{
			ChapterIndex: chapter.ChapterIndex,
			ChapterTitle: chapter.ChapterTitle,
			SourcePath:   chapter.SourcePath,
			Segments:     segments,
			Questions:    questions,
			CreatedAt:    chapter.CreatedAt,
		})
	}

	for _, evaluation := range evaluations {
		var concepts []string
		if len(evaluation.FollowUpConcepts) > 0 {
			if err := json.Unmarshal(evaluation.FollowUpConcepts, &concepts); err != nil {
				return nil, err
			}
		}
		response.Evaluations = append(response.Evaluations, dto.ArchivedEvaluationResponse{
			QuestionId:       evaluation.QuestionId,
			Question:         evaluation.Question,
			Answer:           evaluation.Answer,
			Explanation:      evaluation.Explanation,
			Verdict:          evaluation.Verdict,
			FollowUpConcepts: concepts,
			CreatedAt:        evaluation.CreatedAt,
		})
	}

	return response, nil
}
