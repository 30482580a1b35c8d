package identity

import (
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/shandysiswandi/dragonfruit/internal/identity/inbound"
	"github.com/shandysiswandi/dragonfruit/internal/identity/outbound/cache"
	"github.com/shandysiswandi/dragonfruit/internal/identity/outbound/db"
	"github.com/shandysiswandi/dragonfruit/internal/identity/outbound/mq"
	"github.com/shandysiswandi/dragonfruit/internal/identity/usecase"
	"github.com/shandysiswandi/dragonfruit/internal/pkg/clock"
	"github.com/shandysiswandi/dragonfruit/internal/pkg/config"
	"github.com/shandysiswandi/dragonfruit/internal/pkg/goroutine"
	"github.com/shandysiswandi/dragonfruit/internal/pkg/hash"
	"github.com/shandysiswandi/dragonfruit/internal/pkg/instrument"
	"github.com/shandysiswandi/dragonfruit/internal/pkg/jwt"
	"github.com/shandysiswandi/dragonfruit/internal/pkg/messaging"
	"github.com/shandysiswandi/dragonfruit/internal/pkg/mfa"
	"github.com/shandysiswandi/dragonfruit/internal/pkg/otp"
	"github.com/shandysiswandi/dragonfruit/internal/pkg/router"
	"github.com/shandysiswandi/dragonfruit/internal/pkg/uid"
	"github.com/shandysiswandi/dragonfruit/internal/pkg/validator"
)

type Dependency struct {
	DBConn       *pgxpool.Pool              `validate:"required"`
	CacheConn    redis.Cmdable              `validate:"required"`
	Router       *router.Router             `validate:"required"`
	Publisher    messaging.Publisher        `validate:"required"`
	Config       config.Config              `validate:"required"`
	Instrument   instrument.Instrumentation `validate:"required"`
	UID          uid.NumberID               `validate:"required"`
	UUID         uid.UUIDGenerator          `validate:"required"`
	Password     *hash.Password             `validate:"required"`
	HMAC         hash.Hash                  `validate:"required"`
	Limiter      *goroutine.Limiter         `validate:"required"`
	Sealer       *mfa.Sealer                `validate:"required"`
	RecoveryCode *mfa.RecoveryCode          `validate:"required"`
	TOTP         *otp.TOTP                  `validate:"required"`
	Clock        clock.Clocker              `validate:"required"`
	Validator    validator.Validator        `validate:"required"`
	JWT          jwt.JWT                    `validate:"required"`
}

func New(dep Dependency) error {
	if err := dep.Validator.Validate(dep); err != nil {
		return err
	}

	uc := usecase.New(usecase.Dependency{
		RepoDB:        db.NewDB(dep.DBConn, dep.Instrument),
		RepoCache:     cache.NewCache(dep.CacheConn, dep.Instrument),
		RepoMessaging: mq.NewMessaging(dep.Publisher, dep.UUID, dep.Instrument),
		Validator:     dep.Validator,
		Config:        dep.Config,
		Password:      dep.Password,
		HMAC:          dep.HMAC,
		Limiter:       dep.Limiter,
		Sealer:        dep.Sealer,
		RecoveryCode:  dep.RecoveryCode,
		TOTP:          dep.TOTP,
		JWT:           dep.JWT,
		UID:           dep.UID,
		UUID:          dep.UUID,
		Clock:         dep.Clock,
		Instrument:    dep.Instrument,
	})

	inbound.RegisterHTTPEndpoint(dep.Router, uc)

	return nil
}
