package profile

import (
	"strings"
)

const (
	questionMarker = "Question: "
	answerMarker   = "Answer: "
)

// Question is one entry of the profile questionnaire.
type Question struct {
	ID       int    `json:"id"`
	Text     string `json:"text"`
	MaxWords int    `json:"max_words"`
}

// Questions is the fixed questionnaire, in the order answers are stored.
var Questions = []Question{
	{ID: 1, Text: "Tell me about yourself.", MaxWords: 500},
	{ID: 2, Text: "What are some key aspects of your culture or upbringing that shaped your perspective?", MaxWords: 500},
	{ID: 3, Text: "What hobbies, interests, or passions do you have that influence how you see the world?", MaxWords: 500},
	{ID: 4, Text: "Have you ever had an experience that changed the way you view life or people around you?", MaxWords: 500},
	{ID: 5, Text: "What is your greatest accomplishment?", MaxWords: 500},
}

// QuestionByID returns the question with the given ID.
func QuestionByID(id int) (Question, bool) {
	for _, q := range Questions {
		if q.ID == id {
			return q, true
		}
	}
	return Question{}, false
}

// FormatAnswers serializes answers into the document text blob.
// Every question is emitted; unanswered ones get an empty answer.
func FormatAnswers(answers map[int]string) string {
	parts := make([]string, 0, len(Questions))
	for _, q := range Questions {
		parts = append(parts, questionMarker+q.Text+" "+answerMarker+answers[q.ID])
	}
	return strings.Join(parts, " ")
}

// ParseAnswers recovers answers from a document text blob. Questions that
// do not appear in the text are absent from the result.
func ParseAnswers(text string) map[int]string {
	answers := make(map[int]string)
	for _, q := range Questions {
		qStart := strings.Index(text, questionMarker+q.Text)
		if qStart == -1 {
			continue
		}

		rest := text[qStart:]
		aIdx := strings.Index(rest, answerMarker)
		if aIdx == -1 {
			continue
		}
		answer := rest[aIdx+len(answerMarker):]

		if end := strings.Index(answer, questionMarker); end != -1 {
			answer = answer[:end]
		}
		answers[q.ID] = strings.TrimSpace(answer)
	}
	return answers
}

// WordCount returns the number of whitespace-separated words in s.
func WordCount(s string) int {
	return len(strings.Fields(s))
}
