package agent

import (
	"regexp"
	"strings"
)

var fencedBlockPattern = regexp.MustCompile("(?s)```(?:json)?\\s*(.*?)```")

// ExtractFencedBlock pulls the body of the first fenced code block out of a
// model response. Models regularly wrap structured output in ```json fences
// with prose around it; when no fence is present the whole trimmed response
// is returned so callers can attempt to parse it as-is.
func ExtractFencedBlock(text string) (string, bool) {
	if m := fencedBlockPattern.FindStringSubmatch(text); m != nil {
		return strings.TrimSpace(m[1]), true
	}
	return strings.TrimSpace(text), false
}
