package agent

import "testing"

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name     string
		response string
		want     string
	}{
		{
			name:     "bare object",
			response: `{"data_source": "vectorstore"}`,
			want:     `{"data_source": "vectorstore"}`,
		},
		{
			name:     "markdown fence",
			response: "```json\n{\"binary_score\": \"yes\"}\n```",
			want:     `{"binary_score": "yes"}`,
		},
		{
			name:     "surrounding prose",
			response: `Sure, here is the answer: {"tools": ["web_search"]} hope that helps`,
			want:     `{"tools": ["web_search"]}`,
		},
		{
			name:     "no json",
			response: "I cannot answer that.",
			want:     "",
		},
		{
			name:     "empty",
			response: "",
			want:     "",
		},
		{
			name:     "closing brace before opening",
			response: "} nonsense {",
			want:     "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := extractJSON(tt.response); got != tt.want {
				t.Errorf("extractJSON(%q) = %q, want %q", tt.response, got, tt.want)
			}
		})
	}
}

func TestClamp01(t *testing.T) {
	tests := []struct {
		in   float64
		want float64
	}{
		{-0.5, 0},
		{0, 0},
		{0.42, 0.42},
		{1, 1},
		{1.7, 1},
	}

	for _, tt := range tests {
		if got := clamp01(tt.in); got != tt.want {
			t.Errorf("clamp01(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
