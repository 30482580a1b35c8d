package usecase

import (
	"context"
	"log/slog"
	"net/url"

	"github.com/shandysiswandi/dragonfruit/internal/identity/entity"
	"github.com/shandysiswandi/dragonfruit/internal/pkg/goerror"
)

const defaultQRSize = 256

// TOTPQRCode renders the provisioning URI of the caller's Pending secret as a PNG.
func (s *Usecase) TOTPQRCode(ctx context.Context) ([]byte, error) {
	ctx, span := s.startSpan(ctx, "TOTPQRCode")
	defer span.End()

	user, err := s.currentUser(ctx)
	if err != nil {
		return nil, err
	}

	if user.TOTPState != entity.TOTPStatePending || user.TOTPSecret == "" {
		return nil, goerror.NewBusiness("TOTP not set up yet", goerror.CodeInvalidFormat)
	}

	secret, err := s.sealer.Open(user.TOTPSecret, s.otpScope(user.ID))
	if err != nil {
		slog.ErrorContext(ctx, "failed to open totp secret", "user_id", user.ID, "error", err)
		return nil, goerror.NewServer(err)
	}

	label := s.totp.Label()
	uri := (&url.URL{
		Scheme:   "otpauth",
		Host:     "totp",
		Path:     "/" + label + ":" + user.ID.String(),
		RawQuery: url.Values{"secret": {secret}, "issuer": {label}}.Encode(),
	}).String()

	size := s.cfg.GetInt("modules.identity.totp_qr_size")
	if size <= 0 {
		size = defaultQRSize
	}

	png, err := s.totp.QRCode(uri, size)
	if err != nil {
		slog.ErrorContext(ctx, "failed to render totp qr code", "user_id", user.ID, "error", err)
		return nil, goerror.NewServer(err)
	}

	return png, nil
}
