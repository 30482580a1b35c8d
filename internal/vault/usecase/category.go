package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/shandysiswandi/dragonfruit/internal/pkg/goerror"
	"github.com/shandysiswandi/dragonfruit/internal/vault/entity"
)

// maxCategoryDepth bounds the parent walk of the cycle check.
const maxCategoryDepth = 32

type CategoryCreateInput struct {
	Name        string `validate:"max=100"`
	Description string `validate:"max=500"`
	ParentID    *uuid.UUID
}

type CategoryUpdateInput struct {
	ID          uuid.UUID
	Name        *string `validate:"omitempty,max=100"`
	Description *string `validate:"omitempty,max=500"`
	ParentID    *uuid.UUID
	ClearParent bool
}

func (s *Usecase) CategoryList(ctx context.Context) ([]entity.Category, error) {
	ctx, span := s.startSpan(ctx, "CategoryList")
	defer span.End()

	userID, err := s.owner(ctx)
	if err != nil {
		return nil, err
	}

	cats, err := s.repoDB.ListCategories(ctx, userID)
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo list categories", "user_id", userID, "error", err)
		return nil, goerror.NewServer(err)
	}

	return cats, nil
}

func (s *Usecase) CategoryGet(ctx context.Context, id uuid.UUID) (*entity.Category, error) {
	ctx, span := s.startSpan(ctx, "CategoryGet")
	defer span.End()

	userID, err := s.owner(ctx)
	if err != nil {
		return nil, err
	}

	cat, err := s.repoDB.GetCategory(ctx, userID, id)
	if errors.Is(err, goerror.ErrNotFound) {
		return nil, goerror.NewBusiness("Category not found", goerror.CodeNotFound)
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo get category", "user_id", userID, "category_id", id, "error", err)
		return nil, goerror.NewServer(err)
	}

	return cat, nil
}

func (s *Usecase) CategoryCreate(ctx context.Context, in CategoryCreateInput) (*entity.Category, error) {
	ctx, span := s.startSpan(ctx, "CategoryCreate")
	defer span.End()

	userID, err := s.owner(ctx)
	if err != nil {
		return nil, err
	}

	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return nil, goerror.NewInvalidFormat("Category name cannot be empty")
	}
	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	if in.ParentID != nil {
		if err := s.ensureCategory(ctx, userID, *in.ParentID); err != nil {
			return nil, err
		}
	}

	now := s.clock.Now()
	cat := entity.Category{
		ID:          s.uuid.Generate(),
		UserID:      userID,
		ParentID:    in.ParentID,
		Name:        in.Name,
		Description: strings.TrimSpace(in.Description),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.repoDB.CreateCategory(ctx, cat); err != nil {
		slog.ErrorContext(ctx, "failed to repo create category", "user_id", userID, "error", err)
		return nil, goerror.NewServer(err)
	}

	return &cat, nil
}

func (s *Usecase) CategoryUpdate(ctx context.Context, in CategoryUpdateInput) (*entity.Category, error) {
	ctx, span := s.startSpan(ctx, "CategoryUpdate")
	defer span.End()

	userID, err := s.owner(ctx)
	if err != nil {
		return nil, err
	}

	if in.Name != nil {
		v := strings.TrimSpace(*in.Name)
		if v == "" {
			return nil, goerror.NewInvalidFormat("Category name cannot be empty")
		}
		in.Name = &v
	}
	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	if in.ParentID != nil {
		if err := s.ensureParent(ctx, userID, in.ID, *in.ParentID); err != nil {
			return nil, err
		}
	}

	cat, err := s.repoDB.UpdateCategory(ctx, entity.CategoryUpdate{
		ID:          in.ID,
		UserID:      userID,
		Name:        in.Name,
		Description: in.Description,
		ParentID:    in.ParentID,
		ClearParent: in.ClearParent && in.ParentID == nil,
		UpdatedAt:   s.clock.Now(),
	})
	if errors.Is(err, goerror.ErrNotFound) {
		return nil, goerror.NewBusiness("Category not found", goerror.CodeNotFound)
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo update category", "user_id", userID, "category_id", in.ID, "error", err)
		return nil, goerror.NewServer(err)
	}

	return cat, nil
}

// ensureParent checks that parentID is the caller's and that id is not among its ancestors.
func (s *Usecase) ensureParent(ctx context.Context, userID, id, parentID uuid.UUID) error {
	next := &parentID
	for depth := 0; next != nil; depth++ {
		if *next == id || depth >= maxCategoryDepth {
			return goerror.NewInvalidInput(nil, "parent_id", "would create a cycle")
		}

		cat, err := s.repoDB.GetCategory(ctx, userID, *next)
		if errors.Is(err, goerror.ErrNotFound) {
			if depth == 0 {
				return goerror.NewBusiness("Category not found", goerror.CodeNotFound)
			}
			return nil
		}
		if err != nil {
			slog.ErrorContext(ctx, "failed to repo get category", "user_id", userID, "category_id", *next, "error", err)
			return goerror.NewServer(err)
		}
		next = cat.ParentID
	}

	return nil
}

func (s *Usecase) CategoryDelete(ctx context.Context, id uuid.UUID) error {
	ctx, span := s.startSpan(ctx, "CategoryDelete")
	defer span.End()

	userID, err := s.owner(ctx)
	if err != nil {
		return err
	}

	err = s.repoDB.DeleteCategory(ctx, userID, id)
	if errors.Is(err, goerror.ErrNotFound) {
		return goerror.NewBusiness("Category not found", goerror.CodeNotFound)
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo delete category", "user_id", userID, "category_id", id, "error", err)
		return goerror.NewServer(err)
	}

	return nil
}

// CategoryCredentials lists the caller's credentials filed under category id.
func (s *Usecase) CategoryCredentials(ctx context.Context, id uuid.UUID) ([]entity.Credential, error) {
	ctx, span := s.startSpan(ctx, "CategoryCredentials")
	defer span.End()

	userID, err := s.owner(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.ensureCategory(ctx, userID, id); err != nil {
		return nil, err
	}

	creds, err := s.repoDB.ListCredentials(ctx, userID, &id)
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo list credentials", "user_id", userID, "category_id", id, "error", err)
		return nil, goerror.NewServer(err)
	}

	return creds, nil
}
