package agent

import "testing"

func TestNewTurnState(t *testing.T) {
	messages := []Message{userMsg("m1", "What is the main theorem?")}

	st, err := NewTurnState("What is the main theorem?", "paper-1", "graph theory",
		"prior summary", messages, []string{"excerpt"})
	if err != nil {
		t.Fatalf("NewTurnState: %v", err)
	}

	if st.CurrentQuestion != st.OriginalQuestion {
		t.Errorf("CurrentQuestion = %q, want %q", st.CurrentQuestion, st.OriginalQuestion)
	}
	if st.SearchCount != 0 {
		t.Errorf("SearchCount = %d, want 0", st.SearchCount)
	}
	if st.Source != SourceLocal {
		t.Errorf("Source = %q, want %q", st.Source, SourceLocal)
	}
	if st.Summary != "prior summary" {
		t.Errorf("Summary = %q", st.Summary)
	}
}

func TestStateValidate(t *testing.T) {
	valid := State{
		OriginalQuestion: "q",
		CurrentQuestion:  "q",
		Source:           SourceLocal,
		Messages:         []Message{userMsg("m1", "q")},
	}

	tests := []struct {
		name    string
		mutate  func(*State)
		wantErr bool
	}{
		{"valid", func(s *State) {}, false},
		{"valid web source", func(s *State) { s.Source = SourceWeb }, false},
		{"empty original question", func(s *State) { s.OriginalQuestion = "" }, true},
		{"empty current question", func(s *State) { s.CurrentQuestion = "" }, true},
		{"invalid source", func(s *State) { s.Source = "cache" }, true},
		{"negative search count", func(s *State) { s.SearchCount = -1 }, true},
		{"message without id", func(s *State) { s.Messages = []Message{{Role: "user", Content: "q"}} }, true},
		{"message without role", func(s *State) { s.Messages = []Message{{Id: "m1", Content: "q"}} }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := valid
			st.Messages = append([]Message(nil), valid.Messages...)
			tt.mutate(&st)

			err := st.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
