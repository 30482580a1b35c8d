package app

import (
	"log/slog"
	"os"
	"time"

	"github.com/shandysiswandi/dragonfruit/internal/audit"
	"github.com/shandysiswandi/dragonfruit/internal/identity"
	"github.com/shandysiswandi/dragonfruit/internal/pkg/messaging"
	"github.com/shandysiswandi/dragonfruit/internal/vault"
)

func (a *App) initModules() {
	if a.config.GetBool("modules.identity.enabled") {
		if err := identity.New(identity.Dependency{
			DBConn:    a.dbConn,
			CacheConn: a.cacheConn,
			Router:    a.router,
			Publisher: messaging.NewRetryPublisher(a.messaging, messaging.RetryConfig{
				Attempts: uint64(a.config.GetUint32("messaging.retry.attempts")),
				Base:     time.Duration(a.config.GetInt64("messaging.retry.base_ms")) * time.Millisecond,
				Cap:      time.Duration(a.config.GetInt64("messaging.retry.cap_ms")) * time.Millisecond,
			}),
			Config:       a.config,
			Instrument:   a.ins,
			UID:          a.uid,
			UUID:         a.uuid,
			Password:     a.password,
			HMAC:         a.hmac,
			Limiter:      a.limiter,
			Sealer:       a.sealer,
			RecoveryCode: a.recoveryCode,
			TOTP:         a.totp,
			Clock:        a.clock,
			Validator:    a.validator,
			JWT:          a.jwt,
		}); err != nil {
			slog.Error("failed to init module identity", "error", err)
			os.Exit(1)
		}
	}

	if a.config.GetBool("modules.vault.enabled") {
		if err := vault.New(vault.Dependency{
			DBConn:      a.dbConn,
			Router:      a.router,
			Storage:     a.storage,
			Idempotency: a.idemp,
			Cipher:      a.cipher,
			Limiter:     a.limiter,
			Config:      a.config,
			Instrument:  a.ins,
			UUID:        a.uuid,
			Clock:       a.clock,
			Validator:   a.validator,
		}); err != nil {
			slog.Error("failed to init module vault", "error", err)
			os.Exit(1)
		}
	}

	if a.config.GetBool("modules.audit.enabled") {
		if err := audit.New(audit.Dependency{
			Ctx:        a.ctx,
			DBConn:     a.dbConn,
			Subscriber: a.messaging,
			Router:     a.router,
			Mail:       a.mail,
			Config:     a.config,
			Instrument: a.ins,
			UID:        a.uid,
			UUID:       a.uuid,
			Clock:      a.clock,
			Goroutine:  a.goroutine,
			Validator:  a.validator,
		}); err != nil {
			slog.Error("failed to init module audit", "error", err)
			os.Exit(1)
		}
	}
}
