package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"

	"studyaid/internal/config"
	"studyaid/internal/domain"
	"studyaid/internal/domain/models"
	"studyaid/internal/domain/repositories"
	"studyaid/internal/domain/services"
)

var folderNameRE = regexp.MustCompile(`^[^/]+$`)

type hierarchyService struct {
	folderRepo repositories.FolderRepository
	cardRepo   repositories.FlashcardRepository
	txManager  repositories.TransactionManager
	logger     *slog.Logger
}

// NewHierarchyService creates a new hierarchy service
func NewHierarchyService(
	folderRepo repositories.FolderRepository,
	cardRepo repositories.FlashcardRepository,
	txManager repositories.TransactionManager,
	logger *slog.Logger,
) services.HierarchyService {
	return &hierarchyService{
		folderRepo: folderRepo,
		cardRepo:   cardRepo,
		txManager:  txManager,
		logger:     logger,
	}
}

// CreateFolder creates a folder, optionally under a parent
func (s *hierarchyService) CreateFolder(ctx context.Context, req *services.CreateFolderRequest) (*models.Folder, error) {
	err := validation.ValidateStruct(req,
		validation.Field(&req.OwnerID, validation.Required),
		validation.Field(&req.Name,
			validation.Required,
			validation.Length(1, config.MaxFolderNameLength),
			validation.Match(folderNameRE).Error("folder name cannot contain slashes"),
		),
		validation.Field(&req.Icon, validation.Length(0, 16)),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	// Normalize empty string to nil for root-level folders
	if req.ParentID != nil && *req.ParentID == "" {
		req.ParentID = nil
	}

	if req.ParentID != nil {
		if _, err := s.folderRepo.GetByID(ctx, *req.ParentID, req.OwnerID); err != nil {
			return nil, fmt.Errorf("parent folder: %w", err)
		}
	}

	now := time.Now()
	folder := &models.Folder{
		ID:        uuid.New().String(),
		OwnerID:   req.OwnerID,
		ParentID:  req.ParentID,
		Name:      req.Name,
		Icon:      req.Icon,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.folderRepo.Create(ctx, folder); err != nil {
		return nil, err
	}

	s.logger.Info("folder created",
		"id", folder.ID,
		"name", folder.Name,
		"owner_id", folder.OwnerID,
		"parent_id", folder.ParentID,
	)

	return folder, nil
}

// RenameFolder changes a folder's name and/or icon
func (s *hierarchyService) RenameFolder(ctx context.Context, req *services.RenameFolderRequest) (*models.Folder, error) {
	if req.Name == nil && req.Icon == nil {
		return nil, fmt.Errorf("%w: at least one field must be provided", domain.ErrValidation)
	}
	if req.Name != nil {
		err := validation.Validate(*req.Name,
			validation.Required,
			validation.Length(1, config.MaxFolderNameLength),
			validation.Match(folderNameRE).Error("folder name cannot contain slashes"),
		)
		if err != nil {
			return nil, fmt.Errorf("%w: name: %v", domain.ErrValidation, err)
		}
	}

	folder, err := s.folderRepo.GetByID(ctx, req.FolderID, req.OwnerID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		folder.Name = *req.Name
	}
	if req.Icon != nil {
		folder.Icon = *req.Icon
	}
	folder.UpdatedAt = time.Now()

	if err := s.folderRepo.Update(ctx, folder); err != nil {
		return nil, err
	}

	s.logger.Info("folder renamed", "id", folder.ID, "name", folder.Name)

	return folder, nil
}

// CreateFlashcard creates a flashcard, optionally filed in a folder
func (s *hierarchyService) CreateFlashcard(ctx context.Context, req *services.CreateFlashcardRequest) (*models.Flashcard, error) {
	err := validation.ValidateStruct(req,
		validation.Field(&req.OwnerID, validation.Required),
		validation.Field(&req.Question, validation.Required, validation.Length(1, config.MaxQuestionLength)),
		validation.Field(&req.Answer, validation.Required, validation.Length(1, config.MaxAnswerLength)),
		validation.Field(&req.Topic, validation.Length(0, config.MaxTopicLength)),
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

	now := time.Now()
	card := &models.Flashcard{
		ID:        uuid.New().String(),
		OwnerID:   req.OwnerID,
		FolderID:  req.FolderID,
		Topic:     req.Topic,
		Question:  req.Question,
		Answer:    req.Answer,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.cardRepo.Create(ctx, card); err != nil {
		return nil, err
	}

	s.logger.Info("flashcard created", "id", card.ID, "owner_id", card.OwnerID, "folder_id", card.FolderID)

	return card, nil
}

// UpdateFlashcard edits a flashcard's topic, question or answer
func (s *hierarchyService) UpdateFlashcard(ctx context.Context, req *services.UpdateFlashcardRequest) (*models.Flashcard, error) {
	if req.Topic == nil && req.Question == nil && req.Answer == nil {
		return nil, fmt.Errorf("%w: at least one field must be provided", domain.ErrValidation)
	}

	card, err := s.cardRepo.GetByID(ctx, req.FlashcardID, req.OwnerID)
	if err != nil {
		return nil, err
	}

	if req.Topic != nil {
		card.Topic = *req.Topic
	}
	if req.Question != nil {
		if err := validation.Validate(*req.Question, validation.Required, validation.Length(1, config.MaxQuestionLength)); err != nil {
			return nil, fmt.Errorf("%w: question: %v", domain.ErrValidation, err)
		}
		card.Question = *req.Question
	}
	if req.Answer != nil {
		if err := validation.Validate(*req.Answer, validation.Required, validation.Length(1, config.MaxAnswerLength)); err != nil {
			return nil, fmt.Errorf("%w: answer: %v", domain.ErrValidation, err)
		}
		card.Answer = *req.Answer
	}
	card.UpdatedAt = time.Now()

	if err := s.cardRepo.Update(ctx, card); err != nil {
		return nil, err
	}

	return card, nil
}

// forestIndex holds an owner's folders and flashcards indexed for
// iterative traversal.
type forestIndex struct {
	byID          map[string]models.Folder
	childIDs      map[string][]string // parent folder id -> child folder ids
	cardsByFolder map[string][]models.Flashcard
	rootFolderIDs []string
	rootCards     []models.Flashcard
}

func (s *hierarchyService) loadForest(ctx context.Context, ownerID string) (*forestIndex, error) {
	folders, err := s.folderRepo.GetAllByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("load folders: %w", err)
	}
	cards, err := s.cardRepo.GetAllByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("load flashcards: %w", err)
	}

	idx := &forestIndex{
		byID:          make(map[string]models.Folder, len(folders)),
		childIDs:      make(map[string][]string),
		cardsByFolder: make(map[string][]models.Flashcard),
	}
	for _, f := range folders {
		idx.byID[f.ID] = f
	}
	for _, f := range folders {
		if f.ParentID != nil {
			if _, ok := idx.byID[*f.ParentID]; ok {
				idx.childIDs[*f.ParentID] = append(idx.childIDs[*f.ParentID], f.ID)
				continue
			}
		}
		// Root level, or orphaned by a dangling parent reference - surface
		// it at root rather than dropping it.
		idx.rootFolderIDs = append(idx.rootFolderIDs, f.ID)
	}
	for _, c := range cards {
		if c.FolderID != nil {
			if _, ok := idx.byID[*c.FolderID]; ok {
				idx.cardsByFolder[*c.FolderID] = append(idx.cardsByFolder[*c.FolderID], c)
				continue
			}
		}
		idx.rootCards = append(idx.rootCards, c)
	}
	return idx, nil
}

// BuildTree returns the owner's folder forest. Traversal is an explicit
// work-list with a visited set: even a corrupt parent chain that forms a
// cycle terminates instead of recursing forever.
func (s *hierarchyService) BuildTree(ctx context.Context, ownerID string, rootIDs []string) (*models.TreeNode, error) {
	if ownerID == "" {
		return nil, fmt.Errorf("%w: owner id is required", domain.ErrValidation)
	}

	idx, err := s.loadForest(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	roots := rootIDs
	wholeForest := len(rootIDs) == 0
	if wholeForest {
		roots = idx.rootFolderIDs
	}

	tree := &models.TreeNode{
		Folders:    []*models.FolderTreeNode{},
		Flashcards: []models.Flashcard{},
	}
	if wholeForest {
		tree.Flashcards = append(tree.Flashcards, idx.rootCards...)
	}

	visited := make(map[string]bool)
	for _, id := range roots {
		if visited[id] {
			continue
		}
		if _, ok := idx.byID[id]; !ok {
			continue // unknown or unowned root: skip silently
		}
		tree.Folders = append(tree.Folders, buildSubtree(idx, id, visited))
	}

	return tree, nil
}

func buildSubtree(idx *forestIndex, rootID string, visited map[string]bool) *models.FolderTreeNode {
	visited[rootID] = true
	root := newTreeNode(idx, rootID)

	stack := []*models.FolderTreeNode{root}
	for len(stack) > 0 {
		node := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		for _, childID := range idx.childIDs[node.ID] {
			if visited[childID] {
				continue
			}
			visited[childID] = true
			child := newTreeNode(idx, childID)
			node.Subfolders = append(node.Subfolders, child)
			stack = append(stack, child)
		}
	}
	return root
}

func newTreeNode(idx *forestIndex, id string) *models.FolderTreeNode {
	f := idx.byID[id]
	node := &models.FolderTreeNode{
		ID:         f.ID,
		Name:       f.Name,
		Icon:       f.Icon,
		ParentID:   f.ParentID,
		CreatedAt:  f.CreatedAt,
		Subfolders: []*models.FolderTreeNode{},
		Flashcards: []models.Flashcard{},
	}
	node.Flashcards = append(node.Flashcards, idx.cardsByFolder[id]...)
	return node
}

// CollectFlashcards gathers the flashcards of the given folders and all
// their descendants. Folders not owned by the caller are skipped; cards are
// deduplicated by id in first-seen order, since requested roots may repeat
// or share descendants.
func (s *hierarchyService) CollectFlashcards(ctx context.Context, ownerID string, folderIDs []string) ([]models.Flashcard, error) {
	if ownerID == "" {
		return nil, fmt.Errorf("%w: owner id is required", domain.ErrValidation)
	}

	idx, err := s.loadForest(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	var collected []models.Flashcard
	seenCards := make(map[string]bool)
	visited := make(map[string]bool)

	for _, rootID := range folderIDs {
		if _, ok := idx.byID[rootID]; !ok {
			continue // unknown or unowned: skip silently
		}

		stack := []string{rootID}
		for len(stack) > 0 {
			id := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if visited[id] {
				continue
			}
			visited[id] = true

			for _, card := range idx.cardsByFolder[id] {
				if seenCards[card.ID] {
					continue
				}
				seenCards[card.ID] = true
				collected = append(collected, card)
			}

			// Push in reverse so children pop in their stored order.
			children := idx.childIDs[id]
			for i := len(children) - 1; i >= 0; i-- {
				stack = append(stack, children[i])
			}
		}
	}

	return collected, nil
}

// MoveItem re-files a flashcard or re-parents a folder. Unknown and
// unowned identifiers no-op so stale client state degrades gracefully;
// a cyclic folder move is a structural violation and is surfaced.
func (s *hierarchyService) MoveItem(ctx context.Context, ownerID string, item services.ItemRef, targetFolderID *string) error {
	if targetFolderID != nil && *targetFolderID == "" {
		targetFolderID = nil
	}
	if targetFolderID != nil {
		if _, err := s.folderRepo.GetByID(ctx, *targetFolderID, ownerID); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				s.logger.Debug("move target not found, skipping", "target_id", *targetFolderID)
				return nil
			}
			return err
		}
	}

	switch item.Type {
	case services.ItemTypeFlashcard:
		card, err := s.cardRepo.GetByID(ctx, item.ID, ownerID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				s.logger.Debug("flashcard not found, skipping move", "id", item.ID)
				return nil
			}
			return err
		}
		card.FolderID = targetFolderID
		card.UpdatedAt = time.Now()
		return s.cardRepo.Update(ctx, card)

	case services.ItemTypeFolder:
		folder, err := s.folderRepo.GetByID(ctx, item.ID, ownerID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				s.logger.Debug("folder not found, skipping move", "id", item.ID)
				return nil
			}
			return err
		}
		if targetFolderID != nil {
			if err := s.checkNoCycle(ctx, ownerID, folder.ID, *targetFolderID); err != nil {
				return err
			}
		}
		folder.ParentID = targetFolderID
		folder.UpdatedAt = time.Now()
		return s.folderRepo.Update(ctx, folder)

	default:
		return fmt.Errorf("%w: unknown item type %q", domain.ErrValidation, item.Type)
	}
}

// MoveItemsBulk validates every entry, then applies all moves inside one
// transaction. Unlike the single-item path, any unknown item or invalid
// move aborts the whole batch: a partial bulk move is never visible.
func (s *hierarchyService) MoveItemsBulk(ctx context.Context, ownerID string, items []services.ItemRef, targetFolderID *string) error {
	if err := validateBulk(ownerID, items); err != nil {
		return err
	}
	if targetFolderID != nil && *targetFolderID == "" {
		targetFolderID = nil
	}

	return s.txManager.ExecTx(ctx, func(ctx context.Context) error {
		if targetFolderID != nil {
			if _, err := s.folderRepo.GetByID(ctx, *targetFolderID, ownerID); err != nil {
				return fmt.Errorf("target folder %s: %w", *targetFolderID, err)
			}
		}

		// Validate everything before touching anything.
		var cards []*models.Flashcard
		var folders []*models.Folder
		for _, item := range items {
			switch item.Type {
			case services.ItemTypeFlashcard:
				card, err := s.cardRepo.GetByID(ctx, item.ID, ownerID)
				if err != nil {
					return fmt.Errorf("move flashcard %s: %w", item.ID, err)
				}
				cards = append(cards, card)
			case services.ItemTypeFolder:
				folder, err := s.folderRepo.GetByID(ctx, item.ID, ownerID)
				if err != nil {
					return fmt.Errorf("move folder %s: %w", item.ID, err)
				}
				if targetFolderID != nil {
					if err := s.checkNoCycle(ctx, ownerID, folder.ID, *targetFolderID); err != nil {
						return err
					}
				}
				folders = append(folders, folder)
			default:
				return fmt.Errorf("%w: unknown item type %q", domain.ErrValidation, item.Type)
			}
		}

		now := time.Now()
		for _, card := range cards {
			card.FolderID = targetFolderID
			card.UpdatedAt = now
			if err := s.cardRepo.Update(ctx, card); err != nil {
				return fmt.Errorf("move flashcard %s: %w", card.ID, err)
			}
		}
		for _, folder := range folders {
			folder.ParentID = targetFolderID
			folder.UpdatedAt = now
			if err := s.folderRepo.Update(ctx, folder); err != nil {
				return fmt.Errorf("move folder %s: %w", folder.ID, err)
			}
		}

		s.logger.Info("bulk move applied",
			"owner_id", ownerID,
			"items", len(items),
			"target_id", targetFolderID,
		)
		return nil
	})
}

// DeleteItem deletes a flashcard unconditionally, or a folder only when it
// is empty. Unknown and unowned identifiers no-op.
func (s *hierarchyService) DeleteItem(ctx context.Context, ownerID string, item services.ItemRef) error {
	switch item.Type {
	case services.ItemTypeFlashcard:
		err := s.cardRepo.Delete(ctx, item.ID, ownerID)
		if errors.Is(err, domain.ErrNotFound) {
			s.logger.Debug("flashcard not found, skipping delete", "id", item.ID)
			return nil
		}
		return err

	case services.ItemTypeFolder:
		folder, err := s.folderRepo.GetByID(ctx, item.ID, ownerID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				s.logger.Debug("folder not found, skipping delete", "id", item.ID)
				return nil
			}
			return err
		}
		if err := s.checkFolderEmpty(ctx, ownerID, folder); err != nil {
			return err
		}
		return s.folderRepo.Delete(ctx, item.ID, ownerID)

	default:
		return fmt.Errorf("%w: unknown item type %q", domain.ErrValidation, item.Type)
	}
}

// DeleteItemsBulk deletes every entry inside one transaction. One non-empty
// folder (or unknown item) aborts the whole batch: a partial bulk delete
// could strand flashcards the user never asked to orphan.
func (s *hierarchyService) DeleteItemsBulk(ctx context.Context, ownerID string, items []services.ItemRef) error {
	if err := validateBulk(ownerID, items); err != nil {
		return err
	}

	return s.txManager.ExecTx(ctx, func(ctx context.Context) error {
		// Validate everything before deleting anything.
		for _, item := range items {
			switch item.Type {
			case services.ItemTypeFlashcard:
				if _, err := s.cardRepo.GetByID(ctx, item.ID, ownerID); err != nil {
					return fmt.Errorf("delete flashcard %s: %w", item.ID, err)
				}
			case services.ItemTypeFolder:
				folder, err := s.folderRepo.GetByID(ctx, item.ID, ownerID)
				if err != nil {
					return fmt.Errorf("delete folder %s: %w", item.ID, err)
				}
				if err := s.checkFolderEmpty(ctx, ownerID, folder); err != nil {
					return err
				}
			default:
				return fmt.Errorf("%w: unknown item type %q", domain.ErrValidation, item.Type)
			}
		}

		for _, item := range items {
			switch item.Type {
			case services.ItemTypeFlashcard:
				if err := s.cardRepo.Delete(ctx, item.ID, ownerID); err != nil {
					return fmt.Errorf("delete flashcard %s: %w", item.ID, err)
				}
			case services.ItemTypeFolder:
				if err := s.folderRepo.Delete(ctx, item.ID, ownerID); err != nil {
					return fmt.Errorf("delete folder %s: %w", item.ID, err)
				}
			}
		}

		s.logger.Info("bulk delete applied", "owner_id", ownerID, "items", len(items))
		return nil
	})
}

// checkNoCycle rejects re-parenting folderID under targetID when targetID
// is the folder itself or one of its descendants. The ancestor walk carries
// a visited set so a pre-existing corrupt cycle terminates.
func (s *hierarchyService) checkNoCycle(ctx context.Context, ownerID, folderID, targetID string) error {
	if folderID == targetID {
		return &domain.CyclicMoveError{FolderID: folderID, TargetID: targetID}
	}

	visited := map[string]bool{targetID: true}
	currentID := targetID
	for {
		current, err := s.folderRepo.GetByID(ctx, currentID, ownerID)
		if err != nil {
			return fmt.Errorf("walk ancestors of %s: %w", targetID, err)
		}
		if current.ParentID == nil {
			return nil // reached root, no cycle
		}
		if *current.ParentID == folderID {
			return &domain.CyclicMoveError{FolderID: folderID, TargetID: targetID}
		}
		if visited[*current.ParentID] {
			return nil // corrupt ancestry already loops; moving here adds nothing
		}
		visited[*current.ParentID] = true
		currentID = *current.ParentID
	}
}

func (s *hierarchyService) checkFolderEmpty(ctx context.Context, ownerID string, folder *models.Folder) error {
	subfolders, err := s.folderRepo.ListChildren(ctx, &folder.ID, ownerID)
	if err != nil {
		return fmt.Errorf("check subfolders: %w", err)
	}
	cards, err := s.cardRepo.ListByFolder(ctx, &folder.ID, ownerID)
	if err != nil {
		return fmt.Errorf("check flashcards: %w", err)
	}
	if len(subfolders) > 0 || len(cards) > 0 {
		return &domain.FolderNotEmptyError{
			FolderID:   folder.ID,
			Name:       folder.Name,
			Subfolders: len(subfolders),
			Flashcards: len(cards),
		}
	}
	return nil
}

func validateBulk(ownerID string, items []services.ItemRef) error {
	if ownerID == "" {
		return fmt.Errorf("%w: owner id is required", domain.ErrValidation)
	}
	if len(items) == 0 {
		return fmt.Errorf("%w: no items given", domain.ErrValidation)
	}
	if len(items) > config.MaxBulkItems {
		return fmt.Errorf("%w: at most %d items per batch", domain.ErrValidation, config.MaxBulkItems)
	}
	return nil
}
