package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"ai-lecture-be/pkg/lecture"
	"ai-lecture-be/pkg/llm"
)

// LLMAgent implements all three lecture collaborators on top of a generic
// text-generation provider. The model is assumed to have access to the
// referenced document (uploaded out of band); this agent only owns prompt
// construction and response parsing.
type LLMAgent struct {
	provider llm.Provider
}

var (
	_ StructureAnalyzer = &LLMAgent{}
	_ LectureGenerator  = &LLMAgent{}
	_ AnswerEvaluator   = &LLMAgent{}
)

func NewLLMAgent(provider llm.Provider) *LLMAgent {
	return &LLMAgent{provider: provider}
}

func (a *LLMAgent) Analyze(ctx context.Context, documentPath string) ([]lecture.Chapter, error) {
	prompt := fmt.Sprintf("Analyze the chapter structure of the document at %q.", documentPath)

	raw, err := llm.CompletePrompt(ctx, a.provider, analyzeSystemPrompt, prompt, llm.WithTemperature(0.2))
	if err != nil {
		return nil, fmt.Errorf("structure analysis call: %w", err)
	}

	body, _ := ExtractFencedBlock(raw)
	var chapters []lecture.Chapter
	if err := json.Unmarshal([]byte(body), &chapters); err != nil {
		return nil, fmt.Errorf("structure analysis returned unparseable output: %w", err)
	}
	if len(chapters) == 0 {
		return nil, fmt.Errorf("structure analysis found no chapters")
	}
	return chapters, nil
}

func (a *LLMAgent) Generate(ctx context.Context, chapterTitle, documentPath string, startPage, endPage int) (string, error) {
	prompt := fmt.Sprintf(
		"Generate the lecture script for chapter %q of the document at %q (pages %d-%d).",
		chapterTitle, documentPath, startPage, endPage,
	)

	text, err := llm.CompletePrompt(ctx, a.provider, generateSystemPrompt, prompt)
	if err != nil {
		return "", fmt.Errorf("lecture generation call: %w", err)
	}
	return text, nil
}

func (a *LLMAgent) Evaluate(ctx context.Context, question, answer, documentPath string) (*lecture.Evaluation, error) {
	prompt := fmt.Sprintf(
		"Document: %q\n\nQuestion: %s\n\nLearner answer: %s",
		documentPath, question, answer,
	)

	raw, err := llm.CompletePrompt(ctx, a.provider, evaluateSystemPrompt, prompt, llm.WithTemperature(0.3))
	if err != nil {
		return nil, fmt.Errorf("answer evaluation call: %w", err)
	}

	body, fenced := ExtractFencedBlock(raw)
	var eval lecture.Evaluation
	if err := json.Unmarshal([]byte(body), &eval); err != nil {
		if fenced {
			return nil, fmt.Errorf("answer evaluation returned unparseable output: %w", err)
		}
		// No fence and not JSON: treat the whole response as the explanation.
		return &lecture.Evaluation{Explanation: strings.TrimSpace(raw)}, nil
	}
	eval.Verdict = strings.ToUpper(strings.TrimSpace(eval.Verdict))
	return &eval, nil
}
