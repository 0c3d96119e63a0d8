package agent

import (
	"testing"
)

func TestExtractFencedBlock(t *testing.T) {
	tests := []struct {
		name      string
		text      string
		want      string
		wantFence bool
	}{
		{
			name:      "json fence with prose around",
			text:      "Here you go:\n```json\n[{\"chapter_title\":\"Intro\"}]\n```\nDone.",
			want:      "[{\"chapter_title\":\"Intro\"}]",
			wantFence: true,
		},
		{
			name:      "bare fence",
			text:      "```\n{\"a\":1}\n```",
			want:      "{\"a\":1}",
			wantFence: true,
		},
		{
			name:      "no fence falls back to raw",
			text:      "  [1,2,3]  ",
			want:      "[1,2,3]",
			wantFence: false,
		},
		{
			name:      "first fence wins",
			text:      "```json\nfirst\n```\ntext\n```json\nsecond\n```",
			want:      "first",
			wantFence: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, fenced := ExtractFencedBlock(tt.text)
			if got != tt.want {
				t.Errorf("body = %q, want %q", got, tt.want)
			}
			if fenced != tt.wantFence {
				t.Errorf("fenced = %v, want %v", fenced, tt.wantFence)
			}
		})
	}
}
