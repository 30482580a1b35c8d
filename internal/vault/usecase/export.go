package usecase

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/shandysiswandi/dragonfruit/internal/pkg/goerror"
	"github.com/shandysiswandi/dragonfruit/internal/vault/entity"
)

const exportFormat = "dragonfruit.vault.v1"

type ExportOutput struct {
	Key       string
	URL       string
	ExpiresAt time.Time
}

type exportDocument struct {
	Format      string             `json:"format"`
	Cipher      string             `json:"cipher"`
	UserID      uuid.UUID          `json:"user_id"`
	ExportedAt  time.Time          `json:"exported_at"`
	Categories  []exportCategory   `json:"categories"`
	Credentials []exportCredential `json:"credentials"`
}

type exportCategory struct {
	ID          uuid.UUID  `json:"id"`
	ParentID    *uuid.UUID `json:"parent_id,omitempty"`
	Name        string     `json:"name"`
	Description string     `json:"description,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

type exportCredential struct {
	ID         uuid.UUID  `json:"id"`
	CategoryID *uuid.UUID `json:"category_id,omitempty"`
	Name       string     `json:"name"`
	Username   string     `json:"username,omitempty"`
	Password   string     `json:"password"`
	Website    string     `json:"website,omitempty"`
	Notes      string     `json:"notes,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// Export writes the caller's vault as JSON to object storage and returns a
// presigned download link. Passwords stay in their encrypted form.
func (s *Usecase) Export(ctx context.Context) (*ExportOutput, error) {
	ctx, span := s.startSpan(ctx, "Export")
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

	creds, err := s.repoDB.ListCredentials(ctx, userID, nil)
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo list credentials", "user_id", userID, "error", err)
		return nil, goerror.NewServer(err)
	}

	now := s.clock.Now()
	doc := exportDocument{
		Format:     exportFormat,
		Cipher:     string(s.cipher.Mode()),
		UserID:     userID,
		ExportedAt: now,
		Categories: lo.Map(cats, func(c entity.Category, _ int) exportCategory {
			return exportCategory{
				ID:          c.ID,
				ParentID:    c.ParentID,
				Name:        c.Name,
				Description: c.Description,
				CreatedAt:   c.CreatedAt,
				UpdatedAt:   c.UpdatedAt,
			}
		}),
		Credentials: lo.Map(creds, func(c entity.Credential, _ int) exportCredential {
			return exportCredential{
				ID:         c.ID,
				CategoryID: c.CategoryID,
				Name:       c.Name,
				Username:   c.Username,
				Password:   c.Password,
				Website:    c.Website,
				Notes:      c.Notes,
				CreatedAt:  c.CreatedAt,
				UpdatedAt:  c.UpdatedAt,
			}
		}),
	}

	data, err := json.Marshal(doc)
	if err != nil {
		slog.ErrorContext(ctx, "failed to marshal vault export", "user_id", userID, "error", err)
		return nil, goerror.NewServer(err)
	}

	key := "exports/" + userID.String() + "/" + now.UTC().Format("20060102T150405Z") + ".json"
	if err := s.repoBlob.Put(ctx, key, data, "application/json"); err != nil {
		slog.ErrorContext(ctx, "failed to repo put vault export", "user_id", userID, "key", key, "error", err)
		return nil, goerror.NewServer(err)
	}

	ttl := s.cfg.GetSecond("modules.vault.export_url_ttl_seconds")
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}

	url, err := s.repoBlob.PresignGet(ctx, key, ttl)
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo presign vault export", "user_id", userID, "key", key, "error", err)
		return nil, goerror.NewServer(err)
	}

	return &ExportOutput{Key: key, URL: url, ExpiresAt: now.Add(ttl)}, nil
}
