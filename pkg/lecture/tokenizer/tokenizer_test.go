package tokenizer

import (
	"testing"

	"ai-lecture-be/pkg/lecture"
)

func TestTokenize(t *testing.T) {
	tests := []struct {
		name          string
		text          string
		prefix        string
		wantTypes     []string
		wantContents  []string
		wantQuestions int
	}{
		{
			name:          "no markers single script",
			text:          "  Plain narrative text.  ",
			wantTypes:     []string{"script"},
			wantContents:  []string{"Plain narrative text."},
			wantQuestions: 0,
		},
		{
			name:          "blank input yields nothing",
			text:          "   \n\t  ",
			wantTypes:     []string{},
			wantContents:  []string{},
			wantQuestions: 0,
		},
		{
			name:          "script question script",
			text:          "A [Q]B[/Q] C",
			wantTypes:     []string{"script", "question", "script"},
			wantContents:  []string{"A", "B", "C"},
			wantQuestions: 1,
		},
		{
			name:          "question at start",
			text:          "[Q]What is a process?[/Q] It is a running program.",
			wantTypes:     []string{"question", "script"},
			wantContents:  []string{"What is a process?", "It is a running program."},
			wantQuestions: 1,
		},
		{
			name:          "adjacent questions no blank script between",
			text:          "[Q]First?[/Q]\n\n[Q]Second?[/Q]",
			wantTypes:     []string{"question", "question"},
			wantContents:  []string{"First?", "Second?"},
			wantQuestions: 2,
		},
		{
			name:          "multiline question body",
			text:          "Intro.\n[Q]\nExplain paging\nin your own words.\n[/Q]\nOutro.",
			wantTypes:     []string{"script", "question", "script"},
			wantContents:  []string{"Intro.", "Explain paging\nin your own words.", "Outro."},
			wantQuestions: 1,
		},
		{
			name:          "unclosed marker treated as script",
			text:          "Before [Q]dangling",
			wantTypes:     []string{"script"},
			wantContents:  []string{"Before [Q]dangling"},
			wantQuestions: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			segments, questions := Tokenize(tt.text, tt.prefix)

			if len(segments) != len(tt.wantTypes) {
				t.Fatalf("segment count = %d, want %d (%v)", len(segments), len(tt.wantTypes), segments)
			}
			for i, seg := range segments {
				if seg.Type != tt.wantTypes[i] {
					t.Errorf("segment[%d].Type = %q, want %q", i, seg.Type, tt.wantTypes[i])
				}
				got := seg.Content
				if seg.Type == lecture.SegmentQuestion {
					got = seg.Question
				}
				if got != tt.wantContents[i] {
					t.Errorf("segment[%d] text = %q, want %q", i, got, tt.wantContents[i])
				}
			}
			if len(questions) != tt.wantQuestions {
				t.Errorf("question count = %d, want %d", len(questions), tt.wantQuestions)
			}
		})
	}
}

func TestTokenizeQuestionIDs(t *testing.T) {
	segments, questions := Tokenize("[Q]one[/Q] mid [Q]two[/Q]", "c3-")

	wantIDs := []string{"c3-q-0", "c3-q-1"}
	gotIDs := make([]string, 0)
	for _, seg := range segments {
		if seg.Type == lecture.SegmentQuestion {
			gotIDs = append(gotIDs, seg.QuestionID)
		}
	}

	if len(gotIDs) != len(wantIDs) {
		t.Fatalf("question segments = %d, want %d", len(gotIDs), len(wantIDs))
	}
	for i, id := range wantIDs {
		if gotIDs[i] != id {
			t.Errorf("question id[%d] = %q, want %q", i, gotIDs[i], id)
		}
		meta, ok := questions[id]
		if !ok {
			t.Fatalf("question index missing id %q", id)
		}
		if meta.QuestionIndex != i {
			t.Errorf("questions[%q].QuestionIndex = %d, want %d", id, meta.QuestionIndex, i)
		}
	}
}

func TestTokenizeRoundTrip(t *testing.T) {
	// Concatenating segment texts reconstructs the marker-stripped original.
	text := "Alpha. [Q]Why?[/Q] Beta. [Q]How?[/Q] Gamma."
	segments, _ := Tokenize(text, "")

	var rebuilt []string
	for _, seg := range segments {
		if seg.Type == lecture.SegmentScript {
			rebuilt = append(rebuilt, seg.Content)
		} else {
			rebuilt = append(rebuilt, seg.Question)
		}
	}

	want := []string{"Alpha.", "Why?", "Beta.", "How?", "Gamma."}
	if len(rebuilt) != len(want) {
		t.Fatalf("parts = %v, want %v", rebuilt, want)
	}
	for i := range want {
		if rebuilt[i] != want[i] {
			t.Errorf("part[%d] = %q, want %q", i, rebuilt[i], want[i])
		}
	}
}
