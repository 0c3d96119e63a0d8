package service

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"ai-lecture-be/internal/dto"
	"ai-lecture-be/internal/entity"
	"ai-lecture-be/internal/repository/contract"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type IArchiveConsumerService interface {
	Consume(ctx context.Context) error
}

// archiveConsumerService drains the in-process archive topics and persists
// chapters and evaluations so lecture content survives a restart. Archival
// is best-effort: a failed write never blocks the delivery path.
type archiveConsumerService struct {
	pubSub      *gochannel.GoChannel
	archiveRepo contract.ArchiveRepository
}

func NewArchiveConsumerService(
	pubSub *gochannel.GoChannel,
	archiveRepo contract.ArchiveRepository,
) IArchiveConsumerService {
	return &archiveConsumerService{
		pubSub:      pubSub,
		archiveRepo: archiveRepo,
	}
}

func (cs *archiveConsumerService) Consume(ctx context.Context) error {
	chapterMessages, err := cs.pubSub.Subscribe(ctx, TopicChapterArchived)
	if err != nil {
		return err
	}
	evaluationMessages, err := cs.pubSub.Subscribe(ctx, TopicEvaluationRecorded)
	if err != nil {
		return err
	}

	go func() {
		for msg := range chapterMessages {
			cs.processChapter(ctx, msg)
		}
	}()
	go func() {
		for msg := range evaluationMessages {
			cs.processEvaluation(ctx, msg)
		}
	}()

	return nil
}

func (cs *archiveConsumerService) processChapter(ctx context.Context, msg *message.Message) {
	var payload dto.ArchiveChapterMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		log.Printf("[ERROR] Failed to unmarshal chapter archive message: %v", err)
		msg.Ack() // Ack invalid messages to prevent infinite retry
		return
	}
	if payload.Content == nil {
		log.Printf("[ERROR] Chapter archive message for lecture %d has no content", payload.LectureId)
		msg.Ack()
		return
	}

	segments, err := json.Marshal(payload.Content.Segments)
	if err != nil {
		log.Printf("[ERROR] Failed to marshal segments for lecture %d: %v", payload.LectureId, err)
		msg.Ack()
		return
	}
	questions, err := json.Marshal(payload.Content.Questions)
	if err != nil {
		log.Printf("[ERROR] Failed to marshal questions for lecture %d: %v", payload.LectureId, err)
		msg.Ack()
		return
	}

	chapter := &entity.ArchivedChapter{
		Id:           uuid.New(),
		LectureId:    payload.LectureId,
		ChapterIndex: payload.ChapterIndex,
		ChapterTitle: payload.Content.ChapterTitle,
		SourcePath:   payload.Content.SourcePath,
		Segments:     datatypes.JSON(segments),
		Questions:    datatypes.JSON(questions),
		CreatedAt:    time.Now(),
	}

	if err := cs.archiveRepo.SaveChapter(ctx, chapter); err != nil {
		log.Printf("[ERROR] Failed to archive chapter %d of lecture %d: %v", payload.ChapterIndex, payload.LectureId, err)
		msg.Nack() // Nack for retriable errors
		return
	}

	log.Printf("[INFO] Archived chapter %d of lecture %d (%d segments)",
		payload.ChapterIndex, payload.LectureId, len(payload.Content.Segments))
	msg.Ack()
}

func (cs *archiveConsumerService) processEvaluation(ctx context.Context, msg *message.Message) {
	var payload dto.ArchiveEvaluationMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		log.Printf("[ERROR] Failed to unmarshal evaluation archive message: %v", err)
		msg.Ack()
		return
	}
	if payload.Evaluation == nil {
		log.Printf("[ERROR] Evaluation archive message for question %s has no evaluation", payload.QuestionId)
		msg.Ack()
		return
	}

	concepts, err := json.Marshal(payload.Evaluation.FollowUpConcepts)
	if err != nil {
		log.Printf("[ERROR] Failed to marshal follow-up concepts for question %s: %v", payload.QuestionId, err)
		msg.Ack()
		return
	}

	evaluation := &entity.ArchivedEvaluation{
		Id:               uuid.New(),
		LectureId:        payload.LectureId,
		QuestionId:       payload.QuestionId,
		Question:         payload.Question,
		Answer:           payload.Answer,
		Explanation:      payload.Evaluation.Explanation,
		Verdict:          payload.Evaluation.Verdict,
		FollowUpConcepts: datatypes.JSON(concepts),
		CreatedAt:        time.Now(),
	}

	if err := cs.archiveRepo.SaveEvaluation(ctx, evaluation); err != nil {
		log.Printf("[ERROR] Failed to archive evaluation for question %s: %v", payload.QuestionId, err)
		msg.Nack()
		return
	}

	log.Printf("[INFO] Archived evaluation for question %s of lecture %d", payload.QuestionId, payload.LectureId)
	msg.Ack()
}
