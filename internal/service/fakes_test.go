package service

import (
	"context"
	"fmt"

	"studyaid/internal/domain"
	"studyaid/internal/domain/models"
	"studyaid/internal/domain/repositories"
)

// fakeStore is an in-memory stand-in for the postgres layer. Slices keep
// insertion order so traversal-order assertions stay deterministic.
type fakeStore struct {
	folders   []models.Folder
	cards     []models.Flashcard
	exams     []models.Exam
	questions []models.ExamQuestion
}

func (s *fakeStore) snapshot() fakeStore {
	return fakeStore{
		folders:   append([]models.Folder(nil), s.folders...),
		cards:     append([]models.Flashcard(nil), s.cards...),
		exams:     append([]models.Exam(nil), s.exams...),
		questions: append([]models.ExamQuestion(nil), s.questions...),
	}
}

func (s *fakeStore) restore(snap fakeStore) {
	s.folders = snap.folders
	s.cards = snap.cards
	s.exams = snap.exams
	s.questions = snap.questions
}

// fakeTxManager mimics all-or-nothing semantics by snapshotting the store
// and restoring it when the transaction function fails.
type fakeTxManager struct {
	store *fakeStore
}

func (m *fakeTxManager) ExecTx(ctx context.Context, fn repositories.TxFn) error {
	snap := m.store.snapshot()
	if err := fn(ctx); err != nil {
		m.store.restore(snap)
		return err
	}
	return nil
}

type fakeFolderRepo struct {
	store        *fakeStore
	failUpdateID string // Update on this id fails, for rollback tests
}

func (r *fakeFolderRepo) Create(ctx context.Context, folder *models.Folder) error {
	r.store.folders = append(r.store.folders, *folder)
	return nil
}

func (r *fakeFolderRepo) GetByID(ctx context.Context, id, ownerID string) (*models.Folder, error) {
	for _, f := range r.store.folders {
		if f.ID == id && f.OwnerID == ownerID {
			copied := f
			return &copied, nil
		}
	}
	return nil, fmt.Errorf("folder %s: %w", id, domain.ErrNotFound)
}

func (r *fakeFolderRepo) Update(ctx context.Context, folder *models.Folder) error {
	if folder.ID == r.failUpdateID {
		return fmt.Errorf("update folder %s: injected failure", folder.ID)
	}
	for i, f := range r.store.folders {
		if f.ID == folder.ID && f.OwnerID == folder.OwnerID {
			r.store.folders[i] = *folder
			return nil
		}
	}
	return fmt.Errorf("folder %s: %w", folder.ID, domain.ErrNotFound)
}

func (r *fakeFolderRepo) Delete(ctx context.Context, id, ownerID string) error {
	for i, f := range r.store.folders {
		if f.ID == id && f.OwnerID == ownerID {
			r.store.folders = append(r.store.folders[:i], r.store.folders[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("folder %s: %w", id, domain.ErrNotFound)
}

func (r *fakeFolderRepo) ListChildren(ctx context.Context, parentID *string, ownerID string) ([]models.Folder, error) {
	var out []models.Folder
	for _, f := range r.store.folders {
		if f.OwnerID != ownerID {
			continue
		}
		if parentID == nil && f.ParentID == nil {
			out = append(out, f)
		} else if parentID != nil && f.ParentID != nil && *f.ParentID == *parentID {
			out = append(out, f)
		}
	}
	return out, nil
}

func (r *fakeFolderRepo) GetAllByOwner(ctx context.Context, ownerID string) ([]models.Folder, error) {
	var out []models.Folder
	for _, f := range r.store.folders {
		if f.OwnerID == ownerID {
			out = append(out, f)
		}
	}
	return out, nil
}

type fakeFlashcardRepo struct {
	store        *fakeStore
	failUpdateID string
}

func (r *fakeFlashcardRepo) Create(ctx context.Context, card *models.Flashcard) error {
	r.store.cards = append(r.store.cards, *card)
	return nil
}

func (r *fakeFlashcardRepo) CreateBatch(ctx context.Context, cards []models.Flashcard) error {
	r.store.cards = append(r.store.cards, cards...)
	return nil
}

func (r *fakeFlashcardRepo) GetByID(ctx context.Context, id, ownerID string) (*models.Flashcard, error) {
	for _, c := range r.store.cards {
		if c.ID == id && c.OwnerID == ownerID {
			copied := c
			return &copied, nil
		}
	}
	return nil, fmt.Errorf("flashcard %s: %w", id, domain.ErrNotFound)
}

func (r *fakeFlashcardRepo) Update(ctx context.Context, card *models.Flashcard) error {
	if card.ID == r.failUpdateID {
		return fmt.Errorf("update flashcard %s: injected failure", card.ID)
	}
	for i, c := range r.store.cards {
		if c.ID == card.ID && c.OwnerID == card.OwnerID {
			r.store.cards[i] = *card
			return nil
		}
	}
	return fmt.Errorf("flashcard %s: %w", card.ID, domain.ErrNotFound)
}

func (r *fakeFlashcardRepo) Delete(ctx context.Context, id, ownerID string) error {
	for i, c := range r.store.cards {
		if c.ID == id && c.OwnerID == ownerID {
			r.store.cards = append(r.store.cards[:i], r.store.cards[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("flashcard %s: %w", id, domain.ErrNotFound)
}

func (r *fakeFlashcardRepo) ListByFolder(ctx context.Context, folderID *string, ownerID string) ([]models.Flashcard, error) {
	var out []models.Flashcard
	for _, c := range r.store.cards {
		if c.OwnerID != ownerID {
			continue
		}
		if folderID == nil && c.FolderID == nil {
			out = append(out, c)
		} else if folderID != nil && c.FolderID != nil && *c.FolderID == *folderID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r *fakeFlashcardRepo) GetAllByOwner(ctx context.Context, ownerID string) ([]models.Flashcard, error) {
	var out []models.Flashcard
	for _, c := range r.store.cards {
		if c.OwnerID == ownerID {
			out = append(out, c)
		}
	}
	return out, nil
}

type fakeExamRepo struct {
	store *fakeStore
}

func (r *fakeExamRepo) Create(ctx context.Context, exam *models.Exam, questions []models.ExamQuestion) error {
	r.store.exams = append(r.store.exams, *exam)
	r.store.questions = append(r.store.questions, questions...)
	return nil
}

func (r *fakeExamRepo) GetByID(ctx context.Context, id, ownerID string) (*models.ExamWithQuestions, error) {
	for _, e := range r.store.exams {
		if e.ID == id && e.OwnerID == ownerID {
			out := &models.ExamWithQuestions{Exam: e}
			for _, q := range r.store.questions {
				if q.ExamID == id {
					out.Questions = append(out.Questions, q)
				}
			}
			return out, nil
		}
	}
	return nil, fmt.Errorf("exam %s: %w", id, domain.ErrNotFound)
}

func (r *fakeExamRepo) ListByOwner(ctx context.Context, ownerID string) ([]models.Exam, error) {
	var out []models.Exam
	for _, e := range r.store.exams {
		if e.OwnerID == ownerID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r *fakeExamRepo) Delete(ctx context.Context, id, ownerID string) error {
	for i, e := range r.store.exams {
		if e.ID == id && e.OwnerID == ownerID {
			r.store.exams = append(r.store.exams[:i], r.store.exams[i+1:]...)
			kept := r.store.questions[:0]
			for _, q := range r.store.questions {
				if q.ExamID != id {
					kept = append(kept, q)
				}
			}
			r.store.questions = kept
			return nil
		}
	}
	return fmt.Errorf("exam %s: %w", id, domain.ErrNotFound)
}

// fakeCompleter returns a canned response or error.
type fakeCompleter struct {
	response string
	err      error
	calls    int
}

func (c *fakeCompleter) Complete(ctx context.Context, systemPrompt, userPrompt string, maxTokens int) (string, error) {
	c.calls++
	if c.err != nil {
		return "", c.err
	}
	return c.response, nil
}
