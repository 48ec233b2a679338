package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"

	"studyaid/internal/config"
	"studyaid/internal/domain"
	"studyaid/internal/domain/models"
	"studyaid/internal/domain/repositories"
	"studyaid/internal/domain/services"
	"studyaid/internal/extract"
	"studyaid/internal/llm"
)

const flashcardSystemPrompt = `You are a study assistant that writes flashcards.
Respond with ONLY a JSON array, no markdown fences and no commentary:
[{"topic": "...", "question": "...", "answer": "..."}]
Every element must have a non-empty question and answer.`

const examSystemPrompt = `You are a study assistant that writes mock exams.
Respond with ONLY a JSON object, no markdown fences and no commentary:
{"questions": [{"question_number": 1, "question_text": "...", "marks": 2, "answer_text": "...", "model_answer": "..."}]}
question_number and marks must be positive integers. Write inline math
between single $ signs and double every backslash inside JSON strings,
for example "$\\frac{1}{2}$".`

type generationService struct {
	completer  llm.Completer
	cardRepo   repositories.FlashcardRepository
	folderRepo repositories.FolderRepository
	examRepo   repositories.ExamRepository
	txManager  repositories.TransactionManager
	maxTokens  int
	logger     *slog.Logger
}

// NewGenerationService creates a new generation service
func NewGenerationService(
	completer llm.Completer,
	cardRepo repositories.FlashcardRepository,
	folderRepo repositories.FolderRepository,
	examRepo repositories.ExamRepository,
	txManager repositories.TransactionManager,
	maxTokens int,
	logger *slog.Logger,
) services.GenerationService {
	return &generationService{
		completer:  completer,
		cardRepo:   cardRepo,
		folderRepo: folderRepo,
		examRepo:   examRepo,
		txManager:  txManager,
		maxTokens:  maxTokens,
		logger:     logger,
	}
}

// GenerateFlashcards completes, extracts and persists a flashcard batch.
// The batch is inserted in one transaction; an extraction failure persists
// nothing.
func (s *generationService) GenerateFlashcards(ctx context.Context, req *services.GenerateFlashcardsRequest) ([]models.Flashcard, error) {
	err := validation.ValidateStruct(req,
		validation.Field(&req.OwnerID, validation.Required),
		validation.Field(&req.Topic, validation.Required, validation.Length(1, config.MaxTopicLength)),
		validation.Field(&req.Count, validation.Required, validation.Min(1), validation.Max(config.MaxFlashcardCount)),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	if req.FolderID != nil && *req.FolderID == "" {
		req.FolderID = nil
	}
	if req.FolderID != nil {
		if _, err := s.folderRepo.GetByID(ctx, *req.FolderID, req.OwnerID); err != nil {
			return nil, fmt.Errorf("folder: %w", err)
		}
	}

	userPrompt := fmt.Sprintf("Write %d flashcards about: %s", req.Count, req.Topic)
	raw, err := s.completer.Complete(ctx, flashcardSystemPrompt, userPrompt, s.maxTokens)
	if err != nil {
		return nil, fmt.Errorf("complete flashcards: %w", err)
	}

	drafts, err := extract.Flashcards(raw)
	if err != nil {
		s.logger.Warn("flashcard extraction failed",
			"owner_id", req.OwnerID,
			"topic", req.Topic,
			"error", err,
		)
		return nil, err
	}

	now := time.Now()
	cards := make([]models.Flashcard, 0, len(drafts))
	for _, d := range drafts {
		topic := d.Topic
		if topic == "" {
			topic = req.Topic
		}
		cards = append(cards, models.Flashcard{
			ID:        uuid.New().String(),
			OwnerID:   req.OwnerID,
			FolderID:  req.FolderID,
			Topic:     topic,
			Question:  d.Question,
			Answer:    d.Answer,
			CreatedAt: now,
			UpdatedAt: now,
		})
	}

	err = s.txManager.ExecTx(ctx, func(ctx context.Context) error {
		return s.cardRepo.CreateBatch(ctx, cards)
	})
	if err != nil {
		return nil, fmt.Errorf("persist flashcards: %w", err)
	}

	s.logger.Info("flashcards generated",
		"owner_id", req.OwnerID,
		"topic", req.Topic,
		"requested", req.Count,
		"persisted", len(cards),
	)

	return cards, nil
}

// GenerateExam completes, extracts and persists a mock exam atomically
func (s *generationService) GenerateExam(ctx context.Context, req *services.GenerateExamRequest) (*models.ExamWithQuestions, error) {
	err := validation.ValidateStruct(req,
		validation.Field(&req.OwnerID, validation.Required),
		validation.Field(&req.Title, validation.Required, validation.Length(1, config.MaxTitleLength)),
		validation.Field(&req.Topic, validation.Required, validation.Length(1, config.MaxTopicLength)),
		validation.Field(&req.QuestionCount, validation.Required, validation.Min(1), validation.Max(config.MaxExamQuestions)),
		validation.Field(&req.TargetMarks, validation.Min(0), validation.Max(config.MaxTargetMarks)),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	userPrompt := fmt.Sprintf("Write a mock exam with %d questions about: %s", req.QuestionCount, req.Topic)
	if req.TargetMarks > 0 {
		userPrompt += fmt.Sprintf("\nAim for roughly %d marks in total.", req.TargetMarks)
	}

	raw, err := s.completer.Complete(ctx, examSystemPrompt, userPrompt, s.maxTokens)
	if err != nil {
		return nil, fmt.Errorf("complete exam: %w", err)
	}

	draft, err := extract.Exam(raw)
	if err != nil {
		s.logger.Warn("exam extraction failed",
			"owner_id", req.OwnerID,
			"topic", req.Topic,
			"error", err,
		)
		return nil, err
	}

	exam := models.Exam{
		ID:          uuid.New().String(),
		OwnerID:     req.OwnerID,
		Title:       req.Title,
		Topic:       req.Topic,
		TargetMarks: req.TargetMarks,
		CreatedAt:   time.Now(),
	}
	questions := make([]models.ExamQuestion, 0, len(draft.Questions))
	for _, q := range draft.Questions {
		var modelAnswer *string
		if q.ModelAnswer != "" {
			ma := q.ModelAnswer
			modelAnswer = &ma
		}
		questions = append(questions, models.ExamQuestion{
			ID:             uuid.New().String(),
			ExamID:         exam.ID,
			QuestionNumber: q.Number,
			QuestionText:   q.Text,
			Marks:          q.Marks,
			AnswerText:     q.Answer,
			ModelAnswer:    modelAnswer,
		})
	}

	err = s.txManager.ExecTx(ctx, func(ctx context.Context) error {
		return s.examRepo.Create(ctx, &exam, questions)
	})
	if err != nil {
		return nil, fmt.Errorf("persist exam: %w", err)
	}

	s.logger.Info("exam generated",
		"owner_id", req.OwnerID,
		"exam_id", exam.ID,
		"questions", len(questions),
	)

	return &models.ExamWithQuestions{Exam: exam, Questions: questions}, nil
}

// GetExam retrieves a generated exam with its ordered questions
func (s *generationService) GetExam(ctx context.Context, id, ownerID string) (*models.ExamWithQuestions, error) {
	return s.examRepo.GetByID(ctx, id, ownerID)
}

// ListExams lists an owner's exam headers, newest first
func (s *generationService) ListExams(ctx context.Context, ownerID string) ([]models.Exam, error) {
	return s.examRepo.ListByOwner(ctx, ownerID)
}

// DeleteExam removes an exam and its question batch in one transaction
func (s *generationService) DeleteExam(ctx context.Context, id, ownerID string) error {
	return s.txManager.ExecTx(ctx, func(ctx context.Context) error {
		return s.examRepo.Delete(ctx, id, ownerID)
	})
}
