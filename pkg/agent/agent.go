package agent

import (
	"context"

	"ai-lecture-be/pkg/lecture"
)

// StructureAnalyzer inspects a source document and returns its ordered
// chapter layout.
type StructureAnalyzer interface {
	Analyze(ctx context.Context, documentPath string) ([]lecture.Chapter, error)
}

// LectureGenerator produces the narrative text for one chapter. The text may
// embed [Q]...[/Q] question markers which the tokenizer splits out.
type LectureGenerator interface {
	Generate(ctx context.Context, chapterTitle, documentPath string, startPage, endPage int) (string, error)
}

// AnswerEvaluator judges a learner's answer to an embedded question and
// produces a supplementary explanation.
type AnswerEvaluator interface {
	Evaluate(ctx context.Context, question, answer, documentPath string) (*lecture.Evaluation, error)
}
