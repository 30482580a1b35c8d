package usecase_test

import (
	"context"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shandysiswandi/dragonfruit/internal/identity/entity"
	"github.com/shandysiswandi/dragonfruit/internal/identity/usecase"
	"github.com/shandysiswandi/dragonfruit/internal/pkg/clock"
	"github.com/shandysiswandi/dragonfruit/internal/pkg/config"
	"github.com/shandysiswandi/dragonfruit/internal/pkg/goerror"
	"github.com/shandysiswandi/dragonfruit/internal/pkg/goroutine"
	"github.com/shandysiswandi/dragonfruit/internal/pkg/hash"
	"github.com/shandysiswandi/dragonfruit/internal/pkg/instrument"
	"github.com/shandysiswandi/dragonfruit/internal/pkg/jwt"
	"github.com/shandysiswandi/dragonfruit/internal/pkg/mfa"
	"github.com/shandysiswandi/dragonfruit/internal/pkg/otp"
	"github.com/shandysiswandi/dragonfruit/internal/pkg/uid"
	"github.com/shandysiswandi/dragonfruit/internal/pkg/validator"
	"github.com/shandysiswandi/dragonfruit/internal/shared/event"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2026, 3, 4, 10, 0, 15, 0, time.UTC)

type fakeDB struct {
	mu       sync.Mutex
	users    map[uuid.UUID]*entity.User
	codes    map[uuid.UUID][]entity.RecoveryCode
	failWith error
}

func newFakeDB() *fakeDB {
	return &fakeDB{users: map[uuid.UUID]*entity.User{}, codes: map[uuid.UUID][]entity.RecoveryCode{}}
}

func (f *fakeDB) GetUserByID(_ context.Context, id uuid.UUID) (*entity.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.failWith != nil {
		return nil, f.failWith
	}
	u, ok := f.users[id]
	if !ok {
		return nil, goerror.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *fakeDB) GetUserByUsername(_ context.Context, username string) (*entity.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.failWith != nil {
		return nil, f.failWith
	}
	for _, u := range f.users {
		if u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, goerror.ErrNotFound
}

func (f *fakeDB) CreateUser(_ context.Context, user entity.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, u := range f.users {
		if u.Email == user.Email {
			return entity.ErrEmailTaken
		}
		if u.Username == user.Username {
			return entity.ErrUsernameTaken
		}
	}
	f.users[user.ID] = &user
	return nil
}

func (f *fakeDB) UpdateUser(_ context.Context, in entity.UserUpdate) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	u, ok := f.users[in.ID]
	if !ok {
		return goerror.ErrNotFound
	}
	for id, other := range f.users {
		if id == in.ID {
			continue
		}
		if in.Email != nil && other.Email == *in.Email {
			return entity.ErrEmailTaken
		}
		if in.Username != nil && other.Username == *in.Username {
			return entity.ErrUsernameTaken
		}
	}
	if in.Username != nil {
		u.Username = *in.Username
	}
	if in.Email != nil {
		u.Email = *in.Email
	}
	if in.PasswordHash != nil {
		u.PasswordHash = *in.PasswordHash
	}
	u.UpdatedAt = in.UpdatedAt
	return nil
}

func (f *fakeDB) UpdateLastLogin(_ context.Context, id uuid.UUID, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.users[id].LastLogin = &at
	return nil
}

func (f *fakeDB) UpdatePasswordHash(_ context.Context, id uuid.UUID, h string, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.users[id].PasswordHash = h
	f.users[id].UpdatedAt = at
	return nil
}

func (f *fakeDB) SetTOTPPending(_ context.Context, id uuid.UUID, sealed string, _ time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	u := f.users[id]
	if u.TOTPState == entity.TOTPStateEnabled {
		return entity.ErrTOTPTransition
	}
	u.TOTPSecret = sealed
	u.TOTPState = entity.TOTPStatePending
	return nil
}

func (f *fakeDB) EnableTOTP(_ context.Context, id uuid.UUID, codes []entity.RecoveryCode, _ time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	u := f.users[id]
	if u.TOTPState != entity.TOTPStatePending || u.TOTPSecret == "" {
		return entity.ErrTOTPTransition
	}
	u.TOTPState = entity.TOTPStateEnabled
	f.codes[id] = append([]entity.RecoveryCode(nil), codes...)
	return nil
}

func (f *fakeDB) DisableTOTP(_ context.Context, id uuid.UUID, _ time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	u := f.users[id]
	if u.TOTPState != entity.TOTPStateEnabled {
		return entity.ErrTOTPTransition
	}
	u.TOTPState = entity.TOTPStateDisabled
	u.TOTPSecret = ""
	delete(f.codes, id)
	return nil
}

func (f *fakeDB) UseRecoveryCode(_ context.Context, userID uuid.UUID, codeHash string, at time.Time) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for i := range f.codes[userID] {
		c := &f.codes[userID][i]
		if c.CodeHash == codeHash && c.UsedAt == nil {
			c.UsedAt = &at
			return true, nil
		}
	}
	return false, nil
}

type fakeCache struct {
	mu   sync.Mutex
	used map[string]bool
}

func (f *fakeCache) MarkTOTPUsed(_ context.Context, userID uuid.UUID, step uint64, _ time.Duration) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	key := userID.String() + ":" + strconv.FormatUint(step, 10)
	if f.used[key] {
		return false, nil
	}
	f.used[key] = true
	return true, nil
}

type fakeBus struct {
	mu     sync.Mutex
	events []usecase.SecurityEvent
}

func (f *fakeBus) PublishSecurityEvent(_ context.Context, ev usecase.SecurityEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.events = append(f.events, ev)
	return nil
}

func (f *fakeBus) kinds() []event.SecurityKind {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make([]event.SecurityKind, 0, len(f.events))
	for _, ev := range f.events {
		out = append(out, ev.Kind)
	}
	return out
}

type seqID struct {
	mu sync.Mutex
	n  int64
}

func (s *seqID) Generate() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.n++
	return s.n
}

type env struct {
	uc     *usecase.Usecase
	db     *fakeDB
	bus    *fakeBus
	clock  *clock.Fixed
	totp   *otp.TOTP
	tokens *jwt.HMAC
	argon  *hash.Argon2id
	bcrypt *hash.Bcrypt
}

func newEnv(t *testing.T) *env {
	t.Helper()

	cfg, err := config.NewViperFromBytes("yaml", []byte("modules:\n  identity:\n    totp_period_seconds: 30\n"))
	require.NoError(t, err)

	v, err := validator.NewV10Validator()
	require.NoError(t, err)

	clk := clock.NewFixed(now)
	tokens, err := jwt.NewHMAC(jwt.Config{Key: jwt.StaticKey([]byte("identity-test-signing-key")), Clock: clk})
	require.NoError(t, err)

	e := &env{
		db:     newFakeDB(),
		bus:    &fakeBus{},
		clock:  clk,
		totp:   otp.NewTOTP(otp.Config{}),
		tokens: tokens,
		argon:  hash.NewArgon2id(hash.Argon2Params{MemoryKiB: 64, Iterations: 1, Parallelism: 1}),
		bcrypt: hash.NewBcrypt(4),
	}

	e.uc = usecase.New(usecase.Dependency{
		RepoDB:        e.db,
		RepoCache:     &fakeCache{used: map[string]bool{}},
		RepoMessaging: e.bus,
		Validator:     v,
		Config:        cfg,
		Password:      hash.NewPassword(e.argon, e.bcrypt),
		HMAC:          hash.NewHMACSHA256([]byte("recovery-code-key")),
		Limiter:       goroutine.NewLimiter(2),
		Sealer:        mfa.NewSealer(mfa.StaticKeyProvider{KeyBytes: []byte("0123456789abcdef0123456789abcdef")}),
		RecoveryCode:  mfa.NewRecoveryCode(),
		TOTP:          e.totp,
		JWT:           tokens,
		UID:           &seqID{},
		UUID:          uid.NewUUID(),
		Clock:         clk,
		Instrument:    instrument.NewNoop(),
	})

	return e
}

func (e *env) register(t *testing.T, username, password string) *entity.User {
	t.Helper()

	user, err := e.uc.Register(context.Background(), usecase.RegisterInput{
		Username: username,
		Email:    username + "@example.com",
		Password: password,
	})
	require.NoError(t, err)
	return user
}

func asUser(id uuid.UUID) context.Context {
	return jwt.SetAuth(context.Background(), id)
}

// enableTOTP walks the account through generate and enable and returns the
// plaintext secret with the recovery codes.
func (e *env) enableTOTP(t *testing.T, id uuid.UUID) (string, []string) {
	t.Helper()

	gen, err := e.uc.TOTPGenerate(asUser(id))
	require.NoError(t, err)

	code, err := e.totp.Code(gen.Secret, e.clock.Now())
	require.NoError(t, err)

	out, err := e.uc.TOTPEnable(asUser(id), usecase.TOTPEnableInput{Code: code})
	require.NoError(t, err)

	return gen.Secret, out.RecoveryCodes
}

func requireGoError(t *testing.T, err error, code goerror.Code, reason goerror.Reason, msg string) {
	t.Helper()

	var ge *goerror.Error
	require.ErrorAs(t, err, &ge)
	assert.Equal(t, code, ge.Code())
	assert.Equal(t, reason, ge.Reason())
	if msg != "" {
		assert.Equal(t, msg, ge.Msg())
	}
}
