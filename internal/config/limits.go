package config

// Input limits enforced by service-level validation.
const (
	MaxFolderNameLength = 100
	MaxTopicLength      = 200
	MaxTitleLength      = 200
	MaxQuestionLength   = 5000
	MaxAnswerLength     = 10000

	// Bulk hierarchy operations
	MaxBulkItems = 200

	// Generation bounds
	MaxFlashcardCount = 50
	MaxExamQuestions  = 30
	MaxTargetMarks    = 300
)
