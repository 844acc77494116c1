package profile

import (
	"reflect"
	"strings"
	"testing"
)

func TestFormatParseAnswers_RoundTrip(t *testing.T) {
	answers := map[int]string{
		1: "I build things.",
		3: "Climbing, chess",
		5: "Shipping this.",
	}

	text := FormatAnswers(answers)
	if !strings.HasPrefix(text, "Question: Tell me about yourself. Answer: I build things.") {
		t.Errorf("FormatAnswers() prefix = %q", text[:60])
	}

	got := ParseAnswers(text)
	want := map[int]string{
		1: "I build things.",
		2: "",
		3: "Climbing, chess",
		4: "",
		5: "Shipping this.",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ParseAnswers() = %v, want %v", got, want)
	}
}

func TestParseAnswers(t *testing.T) {
	tests := []struct {
		name string
		text string
		want map[int]string
	}{
		{
			name: "empty text",
			text: "",
			want: map[int]string{},
		},
		{
			name: "single trailing answer",
			text: "Question: What is your greatest accomplishment? Answer:   Finishing a marathon  ",
			want: map[int]string{5: "Finishing a marathon"},
		},
		{
			name: "question without answer marker",
			text: "Question: Tell me about yourself.",
			want: map[int]string{},
		},
		{
			name: "unknown question ignored",
			text: "Question: Favorite color? Answer: blue",
			want: map[int]string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ParseAnswers(tt.text); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ParseAnswers() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestInstagramUsername(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"https://www.instagram.com/ada", "ada"},
		{"instagram.com/bob_1", "bob_1"},
		{"just-a-handle", "just-a-handle"},
		{"https://www.instagram.com/", "https://www.instagram.com/"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := InstagramUsername(tt.input); got != tt.want {
				t.Errorf("InstagramUsername(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestQuestionByID(t *testing.T) {
	q, ok := QuestionByID(3)
	if !ok || !strings.HasPrefix(q.Text, "What hobbies") {
		t.Errorf("QuestionByID(3) = %+v, %v", q, ok)
	}
	if _, ok := QuestionByID(42); ok {
		t.Error("QuestionByID(42) should not exist")
	}
}

func TestWordCount(t *testing.T) {
	if got := WordCount("  one two\tthree\n"); got != 3 {
		t.Errorf("WordCount() = %d, want 3", got)
	}
}
