// Package extract turns raw model output into validated study records.
//
// Model output is untrusted text: it may carry reasoning fences, markdown
// commentary around the payload, single-escaped LaTeX inside JSON strings
// and assorted near-JSON syntax errors. The pipeline here strips the noise,
// repairs what is safely repairable, parses leniently and then validates
// strictly. It performs no I/O and is safe for concurrent use.
package extract

import (
	"fmt"
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"studyaid/internal/domain"
)

// FlashcardDraft is one extracted question/answer pair, not yet persisted.
type FlashcardDraft struct {
	Topic    string
	Question string
	Answer   string
}

// QuestionDraft is one extracted exam question, not yet persisted.
type QuestionDraft struct {
	Number      int
	Text        string
	Marks       int
	Answer      string
	ModelAnswer string
}

// ExamDraft is an extracted mock exam: a non-empty question sequence sorted
// by question number.
type ExamDraft struct {
	Questions []QuestionDraft
}

// Models are instructed not to emit reasoning tags, but tolerate them.
var reasoningRE = regexp.MustCompile(`(?s)<think(?:ing)?>.*?</think(?:ing)?>`)

// Flashcards extracts a flashcard batch from raw model output. Elements
// missing a question or answer are dropped; the call fails with
// domain.ErrEmptyResult only when nothing survives.
func Flashcards(raw string) ([]FlashcardDraft, error) {
	payload, err := locatePayload(stripReasoning(raw), '[', ']')
	if err != nil {
		return nil, err
	}

	value, err := parseLenient(payload)
	if err != nil {
		return nil, &domain.MalformedPayloadError{Snippet: snippet(payload), Err: err}
	}

	items, ok := value.([]interface{})
	if !ok {
		return nil, &domain.SchemaViolationError{Field: "payload", Reason: "expected an array of flashcards"}
	}

	var cards []FlashcardDraft
	for _, item := range items {
		obj, ok := item.(map[string]interface{})
		if !ok {
			continue
		}
		card := FlashcardDraft{
			Topic:    strings.TrimSpace(asString(obj["topic"])),
			Question: strings.TrimSpace(asString(obj["question"])),
			Answer:   strings.TrimSpace(asString(obj["answer"])),
		}
		if card.Question == "" || card.Answer == "" {
			continue // drop the element, keep the batch
		}
		cards = append(cards, card)
	}

	if len(cards) == 0 {
		return nil, domain.ErrEmptyResult
	}
	return cards, nil
}

// Exam extracts a mock exam from raw model output. Unlike flashcards, a
// question missing a required field fails the whole extraction: an exam
// with silently dropped questions is worse than no exam.
func Exam(raw string) (*ExamDraft, error) {
	payload, err := locatePayload(stripReasoning(raw), '{', '}')
	if err != nil {
		return nil, err
	}

	// Exam text carries inline $...$ math; models frequently emit its
	// control sequences with a single backslash, which is invalid inside a
	// JSON string.
	payload = repairEscapes(payload)

	value, err := parseLenient(payload)
	if err != nil {
		return nil, &domain.MalformedPayloadError{Snippet: snippet(payload), Err: err}
	}

	obj, ok := value.(map[string]interface{})
	if !ok {
		return nil, &domain.SchemaViolationError{Field: "payload", Reason: "expected an exam object"}
	}
	rawQuestions, ok := obj["questions"].([]interface{})
	if !ok {
		return nil, &domain.SchemaViolationError{Field: "questions", Reason: "missing or not an array"}
	}
	if len(rawQuestions) == 0 {
		return nil, domain.ErrEmptyResult
	}

	questions := make([]QuestionDraft, 0, len(rawQuestions))
	for i, item := range rawQuestions {
		q, ok := item.(map[string]interface{})
		if !ok {
			return nil, &domain.SchemaViolationError{
				Field:  fmt.Sprintf("questions[%d]", i),
				Reason: "expected an object",
			}
		}
		draft, err := questionFromValue(i, q)
		if err != nil {
			return nil, err
		}
		questions = append(questions, draft)
	}

	// Stable: equal numbers keep their original order.
	sort.SliceStable(questions, func(i, j int) bool {
		return questions[i].Number < questions[j].Number
	})

	return &ExamDraft{Questions: questions}, nil
}

func questionFromValue(i int, q map[string]interface{}) (QuestionDraft, error) {
	field := func(name string) string { return fmt.Sprintf("questions[%d].%s", i, name) }

	number, ok := asPositiveInt(q["question_number"])
	if !ok {
		return QuestionDraft{}, &domain.SchemaViolationError{
			Field: field("question_number"), Reason: "missing or not a positive integer",
		}
	}
	marks, ok := asPositiveInt(q["marks"])
	if !ok {
		return QuestionDraft{}, &domain.SchemaViolationError{
			Field: field("marks"), Reason: "missing or not a positive integer",
		}
	}
	text := strings.TrimSpace(asString(q["question_text"]))
	if text == "" {
		return QuestionDraft{}, &domain.SchemaViolationError{
			Field: field("question_text"), Reason: "missing or empty",
		}
	}
	answer := strings.TrimSpace(asString(q["answer_text"]))
	if answer == "" {
		return QuestionDraft{}, &domain.SchemaViolationError{
			Field: field("answer_text"), Reason: "missing or empty",
		}
	}

	return QuestionDraft{
		Number:      number,
		Text:        text,
		Marks:       marks,
		Answer:      answer,
		ModelAnswer: strings.TrimSpace(asString(q["model_answer"])),
	}, nil
}

func stripReasoning(s string) string {
	return reasoningRE.ReplaceAllString(s, "")
}

// locatePayload slices from the first opening delimiter to the last matching
// closing delimiter, discarding any prose before and after. The greedy outer
// match keeps nested brackets inside the payload intact.
func locatePayload(s string, open, close byte) (string, error) {
	start := strings.IndexByte(s, open)
	if start < 0 {
		return "", domain.ErrNoPayload
	}
	end := strings.LastIndexByte(s, close)
	if end <= start {
		return "", domain.ErrNoPayload
	}
	return s[start : end+1], nil
}

func snippet(s string) string {
	const max = 80
	s = strings.TrimSpace(s)
	if len(s) > max {
		return s[:max] + "..."
	}
	return s
}

func asString(v interface{}) string {
	s, _ := v.(string)
	return s
}

// asPositiveInt accepts JSON numbers that are whole and positive, plus
// numeric strings ("3"), which some models emit for counts.
func asPositiveInt(v interface{}) (int, bool) {
	switch n := v.(type) {
	case float64:
		if n <= 0 || n != math.Trunc(n) {
			return 0, false
		}
		return int(n), true
	case string:
		i, err := strconv.Atoi(strings.TrimSpace(n))
		if err != nil || i <= 0 {
			return 0, false
		}
		return i, true
	default:
		return 0, false
	}
}
