package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"studyaid/internal/domain"
	"studyaid/internal/domain/models"
	"studyaid/internal/domain/services"
)

const testOwner = "user-1"

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type hierarchyFixture struct {
	store      *fakeStore
	folderRepo *fakeFolderRepo
	cardRepo   *fakeFlashcardRepo
	svc        services.HierarchyService
}

func newHierarchyFixture() *hierarchyFixture {
	store := &fakeStore{}
	folderRepo := &fakeFolderRepo{store: store}
	cardRepo := &fakeFlashcardRepo{store: store}
	svc := NewHierarchyService(folderRepo, cardRepo, &fakeTxManager{store: store}, testLogger())
	return &hierarchyFixture{store: store, folderRepo: folderRepo, cardRepo: cardRepo, svc: svc}
}

func (f *hierarchyFixture) addFolder(id, name string, parentID *string) {
	f.store.folders = append(f.store.folders, models.Folder{
		ID:        id,
		OwnerID:   testOwner,
		ParentID:  parentID,
		Name:      name,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	})
}

func (f *hierarchyFixture) addCard(id string, folderID *string) {
	f.store.cards = append(f.store.cards, models.Flashcard{
		ID:        id,
		OwnerID:   testOwner,
		FolderID:  folderID,
		Question:  "Q " + id,
		Answer:    "A " + id,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	})
}

func ptr(s string) *string { return &s }

// seedChain builds A > B > C with one card in each folder plus a root card.
func (f *hierarchyFixture) seedChain() {
	f.addFolder("A", "algebra", nil)
	f.addFolder("B", "linear", ptr("A"))
	f.addFolder("C", "matrices", ptr("B"))
	f.addCard("card-a", ptr("A"))
	f.addCard("card-b", ptr("B"))
	f.addCard("card-c", ptr("C"))
	f.addCard("card-root", nil)
}

func TestCreateFolderValidation(t *testing.T) {
	f := newHierarchyFixture()
	ctx := context.Background()

	tests := []struct {
		name string
		req  services.CreateFolderRequest
	}{
		{"empty name", services.CreateFolderRequest{OwnerID: testOwner, Name: ""}},
		{"slash in name", services.CreateFolderRequest{OwnerID: testOwner, Name: "a/b"}},
		{"missing owner", services.CreateFolderRequest{Name: "ok"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.CreateFolder(ctx, &tt.req)
			if !errors.Is(err, domain.ErrValidation) {
				t.Errorf("error = %v, want ErrValidation", err)
			}
		})
	}
}

func TestCreateFolderUnderParent(t *testing.T) {
	f := newHierarchyFixture()
	f.addFolder("A", "parent", nil)
	ctx := context.Background()

	folder, err := f.svc.CreateFolder(ctx, &services.CreateFolderRequest{
		OwnerID:  testOwner,
		Name:     "child",
		ParentID: ptr("A"),
	})
	if err != nil {
		t.Fatalf("CreateFolder() error = %v", err)
	}
	if folder.ParentID == nil || *folder.ParentID != "A" {
		t.Errorf("parent = %v, want A", folder.ParentID)
	}

	_, err = f.svc.CreateFolder(ctx, &services.CreateFolderRequest{
		OwnerID:  testOwner,
		Name:     "orphan",
		ParentID: ptr("missing"),
	})
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("unknown parent error = %v, want ErrNotFound", err)
	}
}

func TestBuildTreeNestsFoldersAndCards(t *testing.T) {
	f := newHierarchyFixture()
	f.seedChain()

	tree, err := f.svc.BuildTree(context.Background(), testOwner, nil)
	if err != nil {
		t.Fatalf("BuildTree() error = %v", err)
	}

	if len(tree.Folders) != 1 || tree.Folders[0].ID != "A" {
		t.Fatalf("roots = %+v, want just A", tree.Folders)
	}
	if len(tree.Flashcards) != 1 || tree.Flashcards[0].ID != "card-root" {
		t.Fatalf("root cards = %+v, want just card-root", tree.Flashcards)
	}

	a := tree.Folders[0]
	if len(a.Subfolders) != 1 || a.Subfolders[0].ID != "B" {
		t.Fatalf("A children = %+v, want just B", a.Subfolders)
	}
	b := a.Subfolders[0]
	if len(b.Subfolders) != 1 || b.Subfolders[0].ID != "C" {
		t.Fatalf("B children = %+v, want just C", b.Subfolders)
	}
	if len(a.Flashcards) != 1 || a.Flashcards[0].ID != "card-a" {
		t.Errorf("A cards = %+v", a.Flashcards)
	}
	if len(b.Subfolders[0].Flashcards) != 1 || b.Subfolders[0].Flashcards[0].ID != "card-c" {
		t.Errorf("C cards = %+v", b.Subfolders[0].Flashcards)
	}
}

func TestBuildTreeWithRootFilter(t *testing.T) {
	f := newHierarchyFixture()
	f.seedChain()
	f.addFolder("D", "other", nil)

	tree, err := f.svc.BuildTree(context.Background(), testOwner, []string{"B", "unknown", "B"})
	if err != nil {
		t.Fatalf("BuildTree() error = %v", err)
	}

	if len(tree.Folders) != 1 || tree.Folders[0].ID != "B" {
		t.Fatalf("roots = %+v, want just B (unknown skipped, duplicate deduped)", tree.Folders)
	}
	if len(tree.Flashcards) != 0 {
		t.Errorf("filtered tree must not include root-level cards, got %+v", tree.Flashcards)
	}
	if len(tree.Folders[0].Subfolders) != 1 || tree.Folders[0].Subfolders[0].ID != "C" {
		t.Errorf("B subtree = %+v, want C under B", tree.Folders[0].Subfolders)
	}
}

func TestBuildTreeTerminatesOnCorruptCycle(t *testing.T) {
	f := newHierarchyFixture()
	// X and Y point at each other; Z is a healthy root.
	f.addFolder("X", "x", ptr("Y"))
	f.addFolder("Y", "y", ptr("X"))
	f.addFolder("Z", "z", nil)

	done := make(chan *models.TreeNode, 1)
	go func() {
		tree, err := f.svc.BuildTree(context.Background(), testOwner, nil)
		if err != nil {
			t.Errorf("BuildTree() error = %v", err)
		}
		done <- tree
	}()

	select {
	case tree := <-done:
		if len(tree.Folders) != 1 || tree.Folders[0].ID != "Z" {
			t.Errorf("roots = %+v, want just Z", tree.Folders)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("BuildTree did not terminate on cyclic parent chain")
	}
}

func TestCollectFlashcardsRecursive(t *testing.T) {
	f := newHierarchyFixture()
	f.seedChain()

	cards, err := f.svc.CollectFlashcards(context.Background(), testOwner, []string{"A"})
	if err != nil {
		t.Fatalf("CollectFlashcards() error = %v", err)
	}

	want := []string{"card-a", "card-b", "card-c"}
	if len(cards) != len(want) {
		t.Fatalf("got %d cards, want %d", len(cards), len(want))
	}
	for i, id := range want {
		if cards[i].ID != id {
			t.Errorf("cards[%d] = %s, want %s", i, cards[i].ID, id)
		}
	}
}

func TestCollectFlashcardsDeduplicates(t *testing.T) {
	f := newHierarchyFixture()
	f.seedChain()

	// A and B overlap: B's subtree is inside A's.
	cards, err := f.svc.CollectFlashcards(context.Background(), testOwner, []string{"A", "B", "A"})
	if err != nil {
		t.Fatalf("CollectFlashcards() error = %v", err)
	}
	if len(cards) != 3 {
		t.Errorf("got %d cards, want 3 after dedupe", len(cards))
	}
}

func TestCollectFlashcardsSkipsUnknownFolders(t *testing.T) {
	f := newHierarchyFixture()
	f.seedChain()

	cards, err := f.svc.CollectFlashcards(context.Background(), testOwner, []string{"unknown", "C"})
	if err != nil {
		t.Fatalf("CollectFlashcards() error = %v", err)
	}
	if len(cards) != 1 || cards[0].ID != "card-c" {
		t.Errorf("cards = %+v, want just card-c", cards)
	}
}

func TestMoveItemFlashcard(t *testing.T) {
	f := newHierarchyFixture()
	f.seedChain()
	ctx := context.Background()

	item := services.ItemRef{ID: "card-c", Type: services.ItemTypeFlashcard}
	if err := f.svc.MoveItem(ctx, testOwner, item, ptr("A")); err != nil {
		t.Fatalf("MoveItem() error = %v", err)
	}

	card, _ := f.cardRepo.GetByID(ctx, "card-c", testOwner)
	if card.FolderID == nil || *card.FolderID != "A" {
		t.Errorf("folder = %v, want A", card.FolderID)
	}

	// nil target moves to root level
	if err := f.svc.MoveItem(ctx, testOwner, item, nil); err != nil {
		t.Fatalf("MoveItem() to root error = %v", err)
	}
	card, _ = f.cardRepo.GetByID(ctx, "card-c", testOwner)
	if card.FolderID != nil {
		t.Errorf("folder = %v, want root", card.FolderID)
	}
}

func TestMoveItemUnknownIsNoOp(t *testing.T) {
	f := newHierarchyFixture()
	f.seedChain()

	item := services.ItemRef{ID: "ghost", Type: services.ItemTypeFlashcard}
	if err := f.svc.MoveItem(context.Background(), testOwner, item, ptr("A")); err != nil {
		t.Errorf("unknown item should no-op, got %v", err)
	}
}

func TestMoveItemRejectsCyclicFolderMove(t *testing.T) {
	f := newHierarchyFixture()
	f.seedChain()
	ctx := context.Background()

	tests := []struct {
		name   string
		folder string
		target string
	}{
		{"into itself", "A", "A"},
		{"into child", "A", "B"},
		{"into grandchild", "A", "C"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			item := services.ItemRef{ID: tt.folder, Type: services.ItemTypeFolder}
			err := f.svc.MoveItem(ctx, testOwner, item, ptr(tt.target))
			if !errors.Is(err, domain.ErrCyclicMove) {
				t.Fatalf("error = %v, want ErrCyclicMove", err)
			}
			var cyclic *domain.CyclicMoveError
			if !errors.As(err, &cyclic) || cyclic.FolderID != tt.folder {
				t.Errorf("error should name folder %s, got %v", tt.folder, err)
			}
		})
	}

	// The structure must be untouched.
	b, _ := f.folderRepo.GetByID(ctx, "B", testOwner)
	if b.ParentID == nil || *b.ParentID != "A" {
		t.Errorf("B parent changed to %v", b.ParentID)
	}
}

func TestMoveItemFolderToValidTarget(t *testing.T) {
	f := newHierarchyFixture()
	f.seedChain()
	f.addFolder("D", "destination", nil)
	ctx := context.Background()

	item := services.ItemRef{ID: "B", Type: services.ItemTypeFolder}
	if err := f.svc.MoveItem(ctx, testOwner, item, ptr("D")); err != nil {
		t.Fatalf("MoveItem() error = %v", err)
	}
	b, _ := f.folderRepo.GetByID(ctx, "B", testOwner)
	if b.ParentID == nil || *b.ParentID != "D" {
		t.Errorf("B parent = %v, want D", b.ParentID)
	}
}

func TestMoveItemsBulkAllOrNothingOnUnknownItem(t *testing.T) {
	f := newHierarchyFixture()
	f.seedChain()
	f.addFolder("D", "destination", nil)
	ctx := context.Background()

	items := []services.ItemRef{
		{ID: "card-a", Type: services.ItemTypeFlashcard},
		{ID: "ghost", Type: services.ItemTypeFlashcard},
	}
	err := f.svc.MoveItemsBulk(ctx, testOwner, items, ptr("D"))
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("error = %v, want ErrNotFound", err)
	}

	card, _ := f.cardRepo.GetByID(ctx, "card-a", testOwner)
	if card.FolderID == nil || *card.FolderID != "A" {
		t.Errorf("card-a moved despite failed batch, folder = %v", card.FolderID)
	}
}

func TestMoveItemsBulkRollsBackOnMidBatchFailure(t *testing.T) {
	f := newHierarchyFixture()
	f.seedChain()
	f.addFolder("D", "destination", nil)
	f.cardRepo.failUpdateID = "card-b"
	ctx := context.Background()

	items := []services.ItemRef{
		{ID: "card-a", Type: services.ItemTypeFlashcard},
		{ID: "card-b", Type: services.ItemTypeFlashcard},
	}
	if err := f.svc.MoveItemsBulk(ctx, testOwner, items, ptr("D")); err == nil {
		t.Fatal("expected mid-batch failure")
	}

	card, _ := f.cardRepo.GetByID(ctx, "card-a", testOwner)
	if card.FolderID == nil || *card.FolderID != "A" {
		t.Errorf("card-a kept its move after rollback, folder = %v", card.FolderID)
	}
}

func TestMoveItemsBulkSuccess(t *testing.T) {
	f := newHierarchyFixture()
	f.seedChain()
	f.addFolder("D", "destination", nil)
	ctx := context.Background()

	items := []services.ItemRef{
		{ID: "card-a", Type: services.ItemTypeFlashcard},
		{ID: "card-root", Type: services.ItemTypeFlashcard},
		{ID: "C", Type: services.ItemTypeFolder},
	}
	if err := f.svc.MoveItemsBulk(ctx, testOwner, items, ptr("D")); err != nil {
		t.Fatalf("MoveItemsBulk() error = %v", err)
	}

	for _, id := range []string{"card-a", "card-root"} {
		card, _ := f.cardRepo.GetByID(ctx, id, testOwner)
		if card.FolderID == nil || *card.FolderID != "D" {
			t.Errorf("%s folder = %v, want D", id, card.FolderID)
		}
	}
	c, _ := f.folderRepo.GetByID(ctx, "C", testOwner)
	if c.ParentID == nil || *c.ParentID != "D" {
		t.Errorf("C parent = %v, want D", c.ParentID)
	}
}

func TestDeleteItemFolderMustBeEmpty(t *testing.T) {
	f := newHierarchyFixture()
	f.seedChain()
	ctx := context.Background()

	item := services.ItemRef{ID: "B", Type: services.ItemTypeFolder}
	err := f.svc.DeleteItem(ctx, testOwner, item)
	if !errors.Is(err, domain.ErrFolderNotEmpty) {
		t.Fatalf("error = %v, want ErrFolderNotEmpty", err)
	}
	var notEmpty *domain.FolderNotEmptyError
	if !errors.As(err, &notEmpty) {
		t.Fatalf("error = %v, want FolderNotEmptyError", err)
	}
	if notEmpty.FolderID != "B" || notEmpty.Subfolders != 1 || notEmpty.Flashcards != 1 {
		t.Errorf("details = %+v", notEmpty)
	}

	if _, err := f.folderRepo.GetByID(ctx, "B", testOwner); err != nil {
		t.Errorf("B should still exist: %v", err)
	}
}

func TestDeleteItemEmptyFolder(t *testing.T) {
	f := newHierarchyFixture()
	f.addFolder("E", "empty", nil)
	ctx := context.Background()

	item := services.ItemRef{ID: "E", Type: services.ItemTypeFolder}
	if err := f.svc.DeleteItem(ctx, testOwner, item); err != nil {
		t.Fatalf("DeleteItem() error = %v", err)
	}
	if _, err := f.folderRepo.GetByID(ctx, "E", testOwner); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("E should be gone, got %v", err)
	}
}

func TestDeleteItemUnknownIsNoOp(t *testing.T) {
	f := newHierarchyFixture()
	item := services.ItemRef{ID: "ghost", Type: services.ItemTypeFolder}
	if err := f.svc.DeleteItem(context.Background(), testOwner, item); err != nil {
		t.Errorf("unknown item should no-op, got %v", err)
	}
}

func TestDeleteItemsBulkAbortsOnNonEmptyFolder(t *testing.T) {
	f := newHierarchyFixture()
	f.seedChain()
	ctx := context.Background()

	items := []services.ItemRef{
		{ID: "card-root", Type: services.ItemTypeFlashcard},
		{ID: "B", Type: services.ItemTypeFolder},
	}
	err := f.svc.DeleteItemsBulk(ctx, testOwner, items)

	var notEmpty *domain.FolderNotEmptyError
	if !errors.As(err, &notEmpty) {
		t.Fatalf("error = %v, want FolderNotEmptyError", err)
	}
	if notEmpty.FolderID != "B" || notEmpty.Name != "linear" {
		t.Errorf("error should name the offending folder, got %+v", notEmpty)
	}

	// Nothing was deleted, including the deletable flashcard.
	if _, err := f.cardRepo.GetByID(ctx, "card-root", testOwner); err != nil {
		t.Errorf("card-root deleted despite aborted batch: %v", err)
	}
}

func TestDeleteItemsBulkSuccess(t *testing.T) {
	f := newHierarchyFixture()
	f.seedChain()
	ctx := context.Background()

	// Empty C first, then the batch can take both card-c and C.
	items := []services.ItemRef{
		{ID: "card-c", Type: services.ItemTypeFlashcard},
		{ID: "card-root", Type: services.ItemTypeFlashcard},
	}
	if err := f.svc.DeleteItemsBulk(ctx, testOwner, items); err != nil {
		t.Fatalf("DeleteItemsBulk() error = %v", err)
	}

	items = []services.ItemRef{{ID: "C", Type: services.ItemTypeFolder}}
	if err := f.svc.DeleteItemsBulk(ctx, testOwner, items); err != nil {
		t.Fatalf("DeleteItemsBulk() on emptied folder error = %v", err)
	}
	if _, err := f.folderRepo.GetByID(ctx, "C", testOwner); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("C should be gone, got %v", err)
	}
}

func TestDeleteItemsBulkValidation(t *testing.T) {
	f := newHierarchyFixture()
	ctx := context.Background()

	if err := f.svc.DeleteItemsBulk(ctx, testOwner, nil); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("empty batch error = %v, want ErrValidation", err)
	}
	if err := f.svc.DeleteItemsBulk(ctx, "", []services.ItemRef{{ID: "x", Type: services.ItemTypeFlashcard}}); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("missing owner error = %v, want ErrValidation", err)
	}
}

func TestOwnershipScoping(t *testing.T) {
	f := newHierarchyFixture()
	f.seedChain()
	// Another user's folder with the same shape.
	f.store.folders = append(f.store.folders, models.Folder{
		ID: "theirs", OwnerID: "user-2", Name: "private",
	})
	ctx := context.Background()

	tree, err := f.svc.BuildTree(ctx, testOwner, nil)
	if err != nil {
		t.Fatalf("BuildTree() error = %v", err)
	}
	for _, root := range tree.Folders {
		if root.ID == "theirs" {
			t.Error("tree leaked another owner's folder")
		}
	}

	// Moving someone else's card behaves as not found: silent no-op.
	f.store.cards = append(f.store.cards, models.Flashcard{
		ID: "their-card", OwnerID: "user-2", Question: "q", Answer: "a",
	})
	item := services.ItemRef{ID: "their-card", Type: services.ItemTypeFlashcard}
	if err := f.svc.MoveItem(ctx, testOwner, item, ptr("A")); err != nil {
		t.Errorf("cross-owner move should no-op, got %v", err)
	}
	for _, c := range f.store.cards {
		if c.ID == "their-card" && c.FolderID != nil {
			t.Error("cross-owner card was moved")
		}
	}
}
