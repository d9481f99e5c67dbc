package services

import (
	"context"

	"bilancio/internal/core"
	"bilancio/internal/log"
	"bilancio/internal/storage"
)

// CategoryService manages user-defined transaction categories.
type CategoryService struct {
	storage *storage.SQLiteRepository
	logger  *log.Logger
}

func NewCategoryService(storage *storage.SQLiteRepository, logger *log.Logger) *CategoryService {
	return &CategoryService{
		storage: storage,
		logger:  logger.WithComponent(log.ComponentCategory),
	}
}

// List returns the user's categories ordered by name, optionally filtered
// by type. An empty type string means no filter; anything else must be a
// valid transaction type.
func (s *CategoryService) List(ctx context.Context, userID string, typ string) Result {
	filter := core.TransactionType(typ)
	if typ != "" && !filter.IsValid() {
		return Fail("type must be income or expense")
	}

	categories, err := s.storage.ListCategories(ctx, userID, filter)
	if err != nil {
		return failForError(ctx, s.logger, "list_categories", err, "")
	}
	if categories == nil {
		categories = []core.Category{}
	}
	return OK(categories)
}

func (s *CategoryService) Create(ctx context.Context, userID string, in core.CategoryInput) Result {
	if err := in.Validate(); err != nil {
		return failForError(ctx, s.logger, "create_category", err, "")
	}

	category, err := s.storage.CreateCategory(ctx, userID, in)
	if err != nil {
		return failForError(ctx, s.logger, "create_category", err, "")
	}

	s.logger.InfoContext(ctx, "Category created",
		log.FieldUserID, userID,
		log.FieldCategory, category.Name,
		log.FieldTxType, string(category.Type))
	return OK(category)
}

// Delete removes a category owned by the caller. Transactions keep the
// name and icon they snapshotted at creation, so historical display is
// unaffected.
func (s *CategoryService) Delete(ctx context.Context, userID, categoryID string) Result {
	if err := s.storage.DeleteCategory(ctx, userID, categoryID); err != nil {
		return failForError(ctx, s.logger, "delete_category", err, "category not found")
	}

	s.logger.InfoContext(ctx, "Category deleted",
		log.FieldUserID, userID,
		log.FieldCategory, categoryID)
	return OK(map[string]string{"id": categoryID})
}
