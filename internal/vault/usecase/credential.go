package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/shandysiswandi/dragonfruit/internal/pkg/goerror"
	"github.com/shandysiswandi/dragonfruit/internal/pkg/idempotency"
	"github.com/shandysiswandi/dragonfruit/internal/vault/entity"
)

type CredentialCreateInput struct {
	IdempotencyKey string `validate:"omitempty,max=128"`
	CategoryID     *uuid.UUID
	Name           string `validate:"max=200"`
	Username       string `validate:"max=200"`
	Password       string `validate:"max=1024"`
	Website        string `validate:"omitempty,max=2048"`
	Notes          string `validate:"max=10000"`
}

type CredentialUpdateInput struct {
	ID            uuid.UUID
	CategoryID    *uuid.UUID
	ClearCategory bool
	Name          *string `validate:"omitempty,max=200"`
	Username      *string `validate:"omitempty,max=200"`
	Password      *string `validate:"omitempty,max=1024"`
	Website       *string `validate:"omitempty,max=2048"`
	Notes         *string `validate:"omitempty,max=10000"`
}

type RevealOutput struct {
	ID       uuid.UUID
	Password string
}

func (s *Usecase) CredentialList(ctx context.Context) ([]entity.Credential, error) {
	ctx, span := s.startSpan(ctx, "CredentialList")
	defer span.End()

	userID, err := s.owner(ctx)
	if err != nil {
		return nil, err
	}

	creds, err := s.repoDB.ListCredentials(ctx, userID, nil)
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo list credentials", "user_id", userID, "error", err)
		return nil, goerror.NewServer(err)
	}

	return creds, nil
}

func (s *Usecase) CredentialGet(ctx context.Context, id uuid.UUID) (*entity.Credential, error) {
	ctx, span := s.startSpan(ctx, "CredentialGet")
	defer span.End()

	userID, err := s.owner(ctx)
	if err != nil {
		return nil, err
	}

	return s.getCredential(ctx, userID, id)
}

func (s *Usecase) getCredential(ctx context.Context, userID, id uuid.UUID) (*entity.Credential, error) {
	cred, err := s.repoDB.GetCredential(ctx, userID, id)
	if errors.Is(err, goerror.ErrNotFound) {
		return nil, goerror.NewBusiness("Credential not found", goerror.CodeNotFound)
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo get credential", "user_id", userID, "credential_id", id, "error", err)
		return nil, goerror.NewServer(err)
	}

	return cred, nil
}

// CredentialCreate stores a new credential. A repeated IdempotencyKey returns
// the credential created by the first request.
func (s *Usecase) CredentialCreate(ctx context.Context, in CredentialCreateInput) (*entity.Credential, error) {
	ctx, span := s.startSpan(ctx, "CredentialCreate")
	defer span.End()

	userID, err := s.owner(ctx)
	if err != nil {
		return nil, err
	}

	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return nil, goerror.NewInvalidFormat("Credential name cannot be empty")
	}
	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	if in.IdempotencyKey == "" {
		return s.createCredential(ctx, userID, in)
	}

	var created *entity.Credential
	key := "credentials:" + userID.String() + ":" + in.IdempotencyKey
	result, replayed, err := s.idemp.Do(ctx, key, func(ctx context.Context) (string, error) {
		cred, err := s.createCredential(ctx, userID, in)
		if err != nil {
			return "", err
		}
		created = cred
		return cred.ID.String(), nil
	})
	if errors.Is(err, idempotency.ErrInProgress) {
		return nil, goerror.NewBusiness("Request with this idempotency key is in progress", goerror.CodeConflict)
	}
	if err != nil {
		var ge *goerror.Error
		if errors.As(err, &ge) {
			return nil, err
		}
		slog.ErrorContext(ctx, "failed to idempotency do", "user_id", userID, "error", err)
		return nil, goerror.NewServer(err)
	}
	if !replayed {
		return created, nil
	}

	id, err := uuid.Parse(result)
	if err != nil {
		slog.ErrorContext(ctx, "failed to parse replayed credential id", "user_id", userID, "result", result, "error", err)
		return nil, goerror.NewServer(err)
	}

	return s.getCredential(ctx, userID, id)
}

func (s *Usecase) createCredential(ctx context.Context, userID uuid.UUID, in CredentialCreateInput) (*entity.Credential, error) {
	if in.CategoryID != nil {
		if err := s.ensureCategory(ctx, userID, *in.CategoryID); err != nil {
			return nil, err
		}
	}

	secret, err := s.encrypt(ctx, in.Password, userID)
	if err != nil {
		slog.ErrorContext(ctx, "failed to encrypt credential password", "user_id", userID, "error", err)
		return nil, goerror.NewServer(err)
	}

	now := s.clock.Now()
	cred := entity.Credential{
		ID:         s.uuid.Generate(),
		UserID:     userID,
		CategoryID: in.CategoryID,
		Name:       in.Name,
		Username:   in.Username,
		Password:   secret,
		Website:    strings.TrimSpace(in.Website),
		Notes:      in.Notes,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := s.repoDB.CreateCredential(ctx, cred); err != nil {
		slog.ErrorContext(ctx, "failed to repo create credential", "user_id", userID, "error", err)
		return nil, goerror.NewServer(err)
	}

	return &cred, nil
}

// CredentialReveal decrypts the stored password with the caller as owner.
func (s *Usecase) CredentialReveal(ctx context.Context, id uuid.UUID) (*RevealOutput, error) {
	ctx, span := s.startSpan(ctx, "CredentialReveal")
	defer span.End()

	userID, err := s.owner(ctx)
	if err != nil {
		return nil, err
	}

	cred, err := s.getCredential(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	password, err := s.decrypt(ctx, cred.Password, userID)
	if err != nil {
		slog.ErrorContext(ctx, "failed to decrypt credential password", "user_id", userID, "credential_id", id,
			"mode", s.cipher.Mode(), "error", err)
		return nil, goerror.NewServer(err)
	}

	return &RevealOutput{ID: cred.ID, Password: password}, nil
}

func (s *Usecase) CredentialUpdate(ctx context.Context, in CredentialUpdateInput) (*entity.Credential, error) {
	ctx, span := s.startSpan(ctx, "CredentialUpdate")
	defer span.End()

	userID, err := s.owner(ctx)
	if err != nil {
		return nil, err
	}

	if in.Name != nil {
		v := strings.TrimSpace(*in.Name)
		if v == "" {
			return nil, goerror.NewInvalidFormat("Credential name cannot be empty")
		}
		in.Name = &v
	}
	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	if in.CategoryID != nil {
		if err := s.ensureCategory(ctx, userID, *in.CategoryID); err != nil {
			return nil, err
		}
	}

	upd := entity.CredentialUpdate{
		ID:            in.ID,
		UserID:        userID,
		CategoryID:    in.CategoryID,
		ClearCategory: in.ClearCategory && in.CategoryID == nil,
		Name:          in.Name,
		Username:      in.Username,
		Website:       in.Website,
		Notes:         in.Notes,
		UpdatedAt:     s.clock.Now(),
	}

	if in.Password != nil {
		secret, err := s.encrypt(ctx, *in.Password, userID)
		if err != nil {
			slog.ErrorContext(ctx, "failed to encrypt credential password", "user_id", userID, "error", err)
			return nil, goerror.NewServer(err)
		}
		upd.Password = &secret
	}

	cred, err := s.repoDB.UpdateCredential(ctx, upd)
	if errors.Is(err, goerror.ErrNotFound) {
		return nil, goerror.NewBusiness("Credential not found", goerror.CodeNotFound)
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo update credential", "user_id", userID, "credential_id", in.ID, "error", err)
		return nil, goerror.NewServer(err)
	}

	return cred, nil
}

func (s *Usecase) CredentialDelete(ctx context.Context, id uuid.UUID) error {
	ctx, span := s.startSpan(ctx, "CredentialDelete")
	defer span.End()

	userID, err := s.owner(ctx)
	if err != nil {
		return err
	}

	err = s.repoDB.DeleteCredential(ctx, userID, id)
	if errors.Is(err, goerror.ErrNotFound) {
		return goerror.NewBusiness("Credential not found", goerror.CodeNotFound)
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo delete credential", "user_id", userID, "credential_id", id, "error", err)
		return goerror.NewServer(err)
	}

	return nil
}
