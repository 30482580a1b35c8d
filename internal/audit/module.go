package audit

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shandysiswandi/dragonfruit/internal/audit/inbound"
	"github.com/shandysiswandi/dragonfruit/internal/audit/outbound/db"
	"github.com/shandysiswandi/dragonfruit/internal/audit/outbound/email"
	"github.com/shandysiswandi/dragonfruit/internal/audit/usecase"
	"github.com/shandysiswandi/dragonfruit/internal/pkg/clock"
	"github.com/shandysiswandi/dragonfruit/internal/pkg/config"
	"github.com/shandysiswandi/dragonfruit/internal/pkg/goroutine"
	"github.com/shandysiswandi/dragonfruit/internal/pkg/instrument"
	"github.com/shandysiswandi/dragonfruit/internal/pkg/mail"
	"github.com/shandysiswandi/dragonfruit/internal/pkg/messaging"
	"github.com/shandysiswandi/dragonfruit/internal/pkg/router"
	"github.com/shandysiswandi/dragonfruit/internal/pkg/uid"
	"github.com/shandysiswandi/dragonfruit/internal/pkg/validator"
)

type Dependency struct {
	// Ctx bounds the consumers. A nil Ctx registers HTTP routes only.
	Ctx        context.Context
	DBConn     *pgxpool.Pool              `validate:"required"`
	Subscriber messaging.Subscriber       `validate:"required"`
	Router     *router.Router             `validate:"required"`
	Mail       mail.Mail                  `validate:"required"`
	Config     config.Config              `validate:"required"`
	Instrument instrument.Instrumentation `validate:"required"`
	UID        uid.NumberID               `validate:"required"`
	UUID       uid.UUIDGenerator          `validate:"required"`
	Clock      clock.Clocker              `validate:"required"`
	Goroutine  *goroutine.Manager         `validate:"required"`
	Validator  validator.Validator        `validate:"required"`
}

func New(dep Dependency) error {
	if err := dep.Validator.Validate(dep); err != nil {
		return err
	}

	uc := usecase.New(usecase.Dependency{
		RepoDB:     db.NewDB(dep.DBConn, dep.Instrument),
		RepoMail:   email.New(dep.Mail, dep.Instrument),
		Config:     dep.Config,
		UID:        dep.UID,
		Clock:      dep.Clock,
		Validator:  dep.Validator,
		Instrument: dep.Instrument,
	})

	inbound.RegisterHTTPEndpoint(dep.Router, uc)
	if dep.Ctx != nil {
		inbound.RegisterMQConsumer(dep.Ctx, dep.Config, dep.Goroutine, dep.Subscriber, dep.UUID, uc, dep.Instrument)
	}

	return nil
}
