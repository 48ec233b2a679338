package extract

import (
	"errors"
	"testing"

	"studyaid/internal/domain"
)

func TestFlashcardsNoiseWrappedArray(t *testing.T) {
	raw := "Sure! Here are your flashcards:\n```json\n" +
		`[{"topic":"Biology","question":"What is osmosis?","answer":"Diffusion of water."}]` +
		"\n```\nLet me know if you need more."

	cards, err := Flashcards(raw)
	if err != nil {
		t.Fatalf("Flashcards() error = %v", err)
	}
	if len(cards) != 1 {
		t.Fatalf("got %d cards, want 1", len(cards))
	}
	if cards[0].Question != "What is osmosis?" {
		t.Errorf("question = %q", cards[0].Question)
	}
	if cards[0].Answer != "Diffusion of water." {
		t.Errorf("answer = %q", cards[0].Answer)
	}
}

func TestFlashcardsStripsReasoningTags(t *testing.T) {
	raw := `<think>the user wants [cards] so I should...</think>` +
		`[{"question":"Q1","answer":"A1"}]`

	cards, err := Flashcards(raw)
	if err != nil {
		t.Fatalf("Flashcards() error = %v", err)
	}
	if len(cards) != 1 || cards[0].Question != "Q1" {
		t.Fatalf("got %+v, want the single card outside the reasoning tag", cards)
	}
}

func TestFlashcardsDropsIncompleteElements(t *testing.T) {
	raw := `[
		{"question":"Q1","answer":"A1"},
		{"question":"","answer":"no question"},
		{"question":"Q3"},
		"not an object",
		{"question":"Q4","answer":"A4"},
	]`

	cards, err := Flashcards(raw)
	if err != nil {
		t.Fatalf("Flashcards() error = %v", err)
	}
	if len(cards) != 2 {
		t.Fatalf("got %d cards, want 2", len(cards))
	}
	if cards[0].Question != "Q1" || cards[1].Question != "Q4" {
		t.Errorf("surviving cards = %+v", cards)
	}
}

func TestFlashcardsEmptyResult(t *testing.T) {
	for _, raw := range []string{
		"[]",
		`[{"question":"","answer":""}]`,
	} {
		_, err := Flashcards(raw)
		if !errors.Is(err, domain.ErrEmptyResult) {
			t.Errorf("Flashcards(%q) error = %v, want ErrEmptyResult", raw, err)
		}
	}
}

func TestFlashcardsNoPayload(t *testing.T) {
	_, err := Flashcards("I could not produce any flashcards, sorry.")
	if !errors.Is(err, domain.ErrNoPayload) {
		t.Errorf("error = %v, want ErrNoPayload", err)
	}
}

func TestFlashcardsMalformedPayload(t *testing.T) {
	_, err := Flashcards(`[{"question": "Q1" "answer": "A1"}]`)
	var malformed *domain.MalformedPayloadError
	if !errors.As(err, &malformed) {
		t.Fatalf("error = %v, want MalformedPayloadError", err)
	}
	if !errors.Is(err, domain.ErrMalformedPayload) {
		t.Errorf("error should match ErrMalformedPayload sentinel")
	}
	if malformed.Snippet == "" {
		t.Errorf("snippet should carry payload context")
	}
}

func TestFlashcardsGreedyOuterMatch(t *testing.T) {
	// Nested arrays inside the payload must not end the match early.
	raw := `noise [ {"question":"Q [a][b]","answer":"A"} ] trailing noise`

	cards, err := Flashcards(raw)
	if err != nil {
		t.Fatalf("Flashcards() error = %v", err)
	}
	if len(cards) != 1 || cards[0].Question != "Q [a][b]" {
		t.Fatalf("cards = %+v", cards)
	}
}

func TestExamSortsQuestionsByNumber(t *testing.T) {
	raw := `{"questions":[
		{"question_number":2,"question_text":"second","marks":3,"answer_text":"b"},
		{"question_number":1,"question_text":"first","marks":2,"answer_text":"a"},
		{"question_number":3,"question_text":"third","marks":5,"answer_text":"c"}
	]}`

	exam, err := Exam(raw)
	if err != nil {
		t.Fatalf("Exam() error = %v", err)
	}
	got := []int{}
	for _, q := range exam.Questions {
		got = append(got, q.Number)
	}
	want := []int{1, 2, 3}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("question order = %v, want %v", got, want)
		}
	}
}

func TestExamSortIsStable(t *testing.T) {
	raw := `{"questions":[
		{"question_number":1,"question_text":"first","marks":1,"answer_text":"a"},
		{"question_number":1,"question_text":"also first","marks":1,"answer_text":"b"}
	]}`

	exam, err := Exam(raw)
	if err != nil {
		t.Fatalf("Exam() error = %v", err)
	}
	if exam.Questions[0].Text != "first" || exam.Questions[1].Text != "also first" {
		t.Errorf("equal numbers must keep their original order, got %+v", exam.Questions)
	}
}

func TestExamMissingMarksFailsWholeExtraction(t *testing.T) {
	raw := `{"questions":[
		{"question_number":1,"question_text":"ok","marks":2,"answer_text":"a"},
		{"question_number":2,"question_text":"broken","answer_text":"b"}
	]}`

	_, err := Exam(raw)
	var schema *domain.SchemaViolationError
	if !errors.As(err, &schema) {
		t.Fatalf("error = %v, want SchemaViolationError", err)
	}
	if schema.Field != "questions[1].marks" {
		t.Errorf("field = %q, want questions[1].marks", schema.Field)
	}
}

func TestExamRequiredFields(t *testing.T) {
	tests := []struct {
		name     string
		question string
		field    string
	}{
		{"missing number", `{"question_text":"t","marks":1,"answer_text":"a"}`, "questions[0].question_number"},
		{"zero number", `{"question_number":0,"question_text":"t","marks":1,"answer_text":"a"}`, "questions[0].question_number"},
		{"fractional marks", `{"question_number":1,"question_text":"t","marks":1.5,"answer_text":"a"}`, "questions[0].marks"},
		{"empty text", `{"question_number":1,"question_text":"  ","marks":1,"answer_text":"a"}`, "questions[0].question_text"},
		{"missing answer", `{"question_number":1,"question_text":"t","marks":1}`, "questions[0].answer_text"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Exam(`{"questions":[` + tt.question + `]}`)
			var schema *domain.SchemaViolationError
			if !errors.As(err, &schema) {
				t.Fatalf("error = %v, want SchemaViolationError", err)
			}
			if schema.Field != tt.field {
				t.Errorf("field = %q, want %q", schema.Field, tt.field)
			}
		})
	}
}

func TestExamNumericStringFields(t *testing.T) {
	raw := `{"questions":[
		{"question_number":"2","question_text":"t","marks":"4","answer_text":"a"}
	]}`

	exam, err := Exam(raw)
	if err != nil {
		t.Fatalf("Exam() error = %v", err)
	}
	if exam.Questions[0].Number != 2 || exam.Questions[0].Marks != 4 {
		t.Errorf("numeric strings should parse, got %+v", exam.Questions[0])
	}
}

func TestExamEmptyQuestions(t *testing.T) {
	_, err := Exam(`{"questions":[]}`)
	if !errors.Is(err, domain.ErrEmptyResult) {
		t.Errorf("error = %v, want ErrEmptyResult", err)
	}
}

func TestExamMissingQuestionsKey(t *testing.T) {
	_, err := Exam(`{"title":"no questions here"}`)
	var schema *domain.SchemaViolationError
	if !errors.As(err, &schema) {
		t.Fatalf("error = %v, want SchemaViolationError", err)
	}
	if schema.Field != "questions" {
		t.Errorf("field = %q, want questions", schema.Field)
	}
}

func TestExamRepairsSingleEscapedLatex(t *testing.T) {
	raw := `{"questions":[
		{"question_number":1,"question_text":"Evaluate $\frac{1}{2} + \frac{1}{4}$","marks":2,"answer_text":"$\frac{3}{4}$"}
	]}`

	exam, err := Exam(raw)
	if err != nil {
		t.Fatalf("Exam() error = %v", err)
	}
	want := `Evaluate $\frac{1}{2} + \frac{1}{4}$`
	if exam.Questions[0].Text != want {
		t.Errorf("text = %q, want %q", exam.Questions[0].Text, want)
	}
}

func TestExamIdempotentOnProperlyEscapedLatex(t *testing.T) {
	// A payload that already doubles its backslashes must parse to the same
	// value as the single-escaped form.
	raw := `{"questions":[
		{"question_number":1,"question_text":"$\\sqrt{2}$","marks":1,"answer_text":"$\\pi$"}
	]}`

	exam, err := Exam(raw)
	if err != nil {
		t.Fatalf("Exam() error = %v", err)
	}
	if exam.Questions[0].Text != `$\sqrt{2}$` {
		t.Errorf("text = %q, want %q", exam.Questions[0].Text, `$\sqrt{2}$`)
	}
	if exam.Questions[0].Answer != `$\pi$` {
		t.Errorf("answer = %q, want %q", exam.Questions[0].Answer, `$\pi$`)
	}
}

func TestExamModelAnswerOptional(t *testing.T) {
	raw := `{"questions":[
		{"question_number":1,"question_text":"t","marks":1,"answer_text":"a","model_answer":"full working"}
	]}`

	exam, err := Exam(raw)
	if err != nil {
		t.Fatalf("Exam() error = %v", err)
	}
	if exam.Questions[0].ModelAnswer != "full working" {
		t.Errorf("model answer = %q", exam.Questions[0].ModelAnswer)
	}
}
