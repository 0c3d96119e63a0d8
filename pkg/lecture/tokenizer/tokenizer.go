package tokenizer

import (
	"fmt"
	"regexp"
	"strings"

	"ai-lecture-be/pkg/lecture"
)

// questionPattern matches one [Q]...[/Q] marker pair. (?s) so question
// bodies may span multiple lines.
var questionPattern = regexp.MustCompile(`(?s)\[Q\](.*?)\[/Q\]`)

// Tokenize splits generated narrative text into an ordered sequence of
// script and question segments. Text between marker pairs (and before the
// first / after the last) becomes a script segment if non-blank after
// trimming; each marker pair body becomes a question segment with an id
// "<prefix>q-<n>". With no markers the whole trimmed text is a single
// script segment, or nothing at all when blank.
//
// Deterministic and side-effect free so it can be tested without the
// generation backend.
func Tokenize(text string, prefix string) ([]lecture.Segment, map[string]lecture.QuestionMeta) {
	segments := make([]lecture.Segment, 0)
	questions := make(map[string]lecture.QuestionMeta)

	matches := questionPattern.FindAllStringSubmatchIndex(text, -1)
	if len(matches) == 0 {
		if trimmed := strings.TrimSpace(text); trimmed != "" {
			segments = append(segments, lecture.Segment{
				Type:    lecture.SegmentScript,
				Content: trimmed,
			})
		}
		return segments, questions
	}

	pos := 0
	for idx, m := range matches {
		start, end := m[0], m[1]
		body := text[m[2]:m[3]]

		if before := strings.TrimSpace(text[pos:start]); before != "" {
			segments = append(segments, lecture.Segment{
				Type:    lecture.SegmentScript,
				Content: before,
			})
		}

		questionID := fmt.Sprintf("%sq-%d", prefix, idx)
		question := strings.TrimSpace(body)
		segments = append(segments, lecture.Segment{
			Type:       lecture.SegmentQuestion,
			QuestionID: questionID,
			Question:   question,
		})
		questions[questionID] = lecture.QuestionMeta{
			Question:      question,
			QuestionIndex: idx,
		}

		pos = end
	}

	if remaining := strings.TrimSpace(text[pos:]); remaining != "" {
		segments = append(segments, lecture.Segment{
			Type:    lecture.SegmentScript,
			Content: remaining,
		})
	}

	return segments, questions
}
