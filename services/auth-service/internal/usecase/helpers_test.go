package usecase

import (
	"context"
	"errors"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/vasapolrittideah/credential-auth/services/auth-service/internal/config"
	"github.com/vasapolrittideah/credential-auth/services/auth-service/internal/model"
	"github.com/vasapolrittideah/credential-auth/services/auth-service/internal/repository"
	"github.com/vasapolrittideah/credential-auth/services/auth-service/internal/token"
	"github.com/vasapolrittideah/credential-auth/shared/auth"
	"github.com/vasapolrittideah/credential-auth/shared/logger"
	"github.com/vasapolrittideah/credential-auth/shared/security"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type sentMail struct {
	To      []string
	Subject string
	Text    string
}

type fakeMailer struct {
	mu   sync.Mutex
	sent []sentMail
	err  error
}

func (m *fakeMailer) SendHTML(to []string, subject, _, textBody string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, sentMail{To: to, Subject: subject, Text: textBody})
	return m.err
}

var codePattern = regexp.MustCompile(`\b\d{6}\b`)

func (m *fakeMailer) lastCode(t *testing.T) string {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	require.NotEmpty(t, m.sent, "no mail sent")
	code := codePattern.FindString(m.sent[len(m.sent)-1].Text)
	require.NotEmpty(t, code, "no code in mail")
	return code
}

func (m *fakeMailer) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sent)
}

// failingRepo wraps a repository and fails the selected operations.
type failingRepo struct {
	repository.UserRepository
	failSave  bool
	failClear bool
}

var errStorage = errors.New("storage unavailable")

func (r *failingRepo) SaveUser(ctx context.Context, user *model.User) (*model.User, error) {
	if r.failSave {
		return nil, errStorage
	}
	return r.UserRepository.SaveUser(ctx, user)
}

func (r *failingRepo) ClearActiveSession(ctx context.Context, id string) error {
	if r.failClear {
		return errStorage
	}
	return r.UserRepository.ClearActiveSession(ctx, id)
}

func testSecurityConfig() config.SecurityConfig {
	return config.SecurityConfig{
		LockoutThreshold:  5,
		LockoutDuration:   15 * time.Minute,
		MFAOTPExpiresIn:   5 * time.Minute,
		ResetOTPExpiresIn: 15 * time.Minute,
		OTPMaxAttempts:    5,
		MinPasswordLength: 8,
	}
}

func testTokenIssuer() *token.Issuer {
	return token.NewIssuer(auth.NewJWTAuthenticator("auth-service", "auth-service"), config.TokenConfig{
		AccessTokenSecret:     "access-secret",
		RefreshTokenSecret:    "refresh-secret",
		AccessTokenExpiresIn:  15 * time.Minute,
		RefreshTokenExpiresIn: 7 * 24 * time.Hour,
	})
}

type testEnv struct {
	repo   repository.UserRepository
	clock  *fakeClock
	mailer *fakeMailer
	auth   AuthUsecase
	reset  PasswordResetUsecase
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	return newTestEnvWithRepo(t, repository.NewUserMemoryRepository())
}

func newTestEnvWithRepo(t *testing.T, repo repository.UserRepository) *testEnv {
	t.Helper()

	clock := newFakeClock()
	mailer := &fakeMailer{}
	hasher := security.NewBcryptHasher(bcrypt.MinCost)
	cfg := testSecurityConfig()

	return &testEnv{
		repo:   repo,
		clock:  clock,
		mailer: mailer,
		auth:   NewAuthUsecase(repo, hasher, testTokenIssuer(), mailer, cfg, logger.Nop(), WithClock(clock.Now)),
		reset:  NewPasswordResetUsecase(repo, hasher, mailer, cfg, logger.Nop(), WithClock(clock.Now)),
	}
}

func (e *testEnv) signup(t *testing.T, email, password string) *model.User {
	t.Helper()
	user, err := e.auth.Signup(context.Background(), SignupParams{Email: email, Password: password})
	require.NoError(t, err)
	return user
}
