package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/shandysiswandi/dragonfruit/internal/pkg/mail"
	"github.com/shandysiswandi/dragonfruit/internal/shared/event"
)

type alertTemplate struct {
	Subject string
	Body    string
}

var alertTemplates = map[event.SecurityKind]alertTemplate{
	event.KindTOTPDisabled: {
		Subject: "Two-factor authentication was turned off",
		Body:    "Two-factor authentication was disabled on your {{.app}} account at {{.at}}.",
	},
	event.KindRecoveryCodeUsed: {
		Subject: "A recovery code was used to sign in",
		Body:    "A recovery code was used to sign in to your {{.app}} account at {{.at}}.",
	},
	event.KindPasswordChanged: {
		Subject: "Your password was changed",
		Body:    "The password of your {{.app}} account was changed at {{.at}}.",
	},
}

const alertFooter = `

Request details
IP address: {{.ip}}
Device: {{.user_agent}}

If this was not you, change your password and contact {{.support}} right away.
`

func (s *Usecase) sendAlert(ctx context.Context, in ConsumeSecurityEventInput, at time.Time) {
	tpl, ok := alertTemplates[in.Kind]
	if !ok {
		return
	}

	app := s.cfg.GetString("app.name")
	if app == "" {
		app = "DragonFruit"
	}

	data := map[string]any{
		"app":        app,
		"at":         at.UTC().Format(time.RFC1123),
		"ip":         in.IP,
		"user_agent": in.UserAgent,
		"support":    s.cfg.GetString("mail.support_address"),
	}

	body, err := s.renderTemplate("body", tpl.Body+alertFooter, data)
	if err != nil {
		slog.ErrorContext(ctx, "failed to render security alert", "event_id", in.EventID, "kind", in.Kind.String(), "error", err)
		return
	}

	if err := s.repoMail.Send(ctx, mail.Message{
		To:      []string{in.Email},
		Subject: "[" + app + "] " + tpl.Subject,
		Text:    body,
	}); err != nil {
		slog.ErrorContext(ctx, "failed to send security alert", "event_id", in.EventID, "user_id", in.UserID, "kind", in.Kind.String(), "error", err)
	}
}
