package app

import (
	"context"
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/shandysiswandi/dragonfruit/internal/pkg/clock"
	"github.com/shandysiswandi/dragonfruit/internal/pkg/config"
	"github.com/shandysiswandi/dragonfruit/internal/pkg/goroutine"
	"github.com/shandysiswandi/dragonfruit/internal/pkg/hash"
	"github.com/shandysiswandi/dragonfruit/internal/pkg/idempotency"
	"github.com/shandysiswandi/dragonfruit/internal/pkg/instrument"
	"github.com/shandysiswandi/dragonfruit/internal/pkg/jwt"
	"github.com/shandysiswandi/dragonfruit/internal/pkg/mail"
	"github.com/shandysiswandi/dragonfruit/internal/pkg/messaging"
	"github.com/shandysiswandi/dragonfruit/internal/pkg/mfa"
	"github.com/shandysiswandi/dragonfruit/internal/pkg/otp"
	"github.com/shandysiswandi/dragonfruit/internal/pkg/router"
	"github.com/shandysiswandi/dragonfruit/internal/pkg/storage"
	"github.com/shandysiswandi/dragonfruit/internal/pkg/uid"
	"github.com/shandysiswandi/dragonfruit/internal/pkg/validator"
	"github.com/shandysiswandi/dragonfruit/internal/pkg/vaultcrypto"
)

// App wires dependencies and manages service lifecycle.
type App struct {
	ctx    context.Context
	cancel context.CancelFunc

	// configuration
	config config.Config
	ins    instrument.Instrumentation

	// libraries
	goroutine    *goroutine.Manager
	limiter      *goroutine.Limiter
	validator    validator.Validator
	clock        clock.Clocker
	hmac         hash.Hash
	argon2id     *hash.Argon2id
	password     *hash.Password
	uid          uid.NumberID
	uuid         uid.UUIDGenerator
	totp         *otp.TOTP
	jwt          *jwt.HMAC
	sealer       *mfa.Sealer
	recoveryCode *mfa.RecoveryCode
	cipher       *vaultcrypto.Service

	// resources
	dbConn    *pgxpool.Pool
	cacheConn *redis.Client
	idemp     *idempotency.Tracker
	mail      mail.Mail
	messaging messaging.Broker
	storage   storage.Storage

	// server
	router     *router.Router
	httpServer *http.Server

	closers []struct {
		name string
		fn   func(context.Context) error
	}
}

// New initializes the application with default wiring and returns an App instance.
func New() *App {
	ctx, cancel := context.WithCancel(context.Background())
	app := &App{
		ctx:    ctx,
		cancel: cancel,
	}

	app.initConfig()
	app.initInstrument()
	app.initLibraries()
	app.initJWT()
	app.initCipher()
	app.initDatabase()
	app.initCache()
	app.initMail()
	app.initStorage()
	app.initMessaging()
	app.initHTTPServer()
	app.initModules()
	app.initClosers()

	return app
}
