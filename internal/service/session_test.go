package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/iliyamo/mercado-storefront/internal/model"
	"github.com/iliyamo/mercado-storefront/internal/repository"
)

type memUsers struct {
	mu     sync.Mutex
	byID   map[int64]model.User
	nextID int64

	findErr   error
	insertErr error
}

func newMemUsers() *memUsers { return &memUsers{byID: map[int64]model.User{}} }

func (m *memUsers) Insert(_ context.Context, name, email, hash string) (model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.insertErr != nil {
		return model.User{}, m.insertErr
	}
	for _, u := range m.byID {
		if u.Email == email {
			return model.User{}, repository.ErrEmailExists
		}
	}
	m.nextID++
	u := model.User{ID: m.nextID, Name: name, Email: email, PasswordHash: hash, CreatedAt: time.Now().UTC()}
	m.byID[u.ID] = u
	return u, nil
}

func (m *memUsers) FindByEmail(_ context.Context, email string) (model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.findErr != nil {
		return model.User{}, m.findErr
	}
	for _, u := range m.byID {
		if u.Email == repository.NormalizeEmail(email) {
			return u, nil
		}
	}
	return model.User{}, repository.ErrNotFound
}

func (m *memUsers) FindByID(_ context.Context, id int64) (model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.byID[id]
	if !ok {
		return model.User{}, repository.ErrNotFound
	}
	return u, nil
}

func (m *memUsers) List(context.Context) ([]model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]model.User, 0, len(m.byID))
	for _, u := range m.byID {
		out = append(out, u)
	}
	return out, nil
}

type memSessions struct {
	mu   sync.Mutex
	rows map[string]model.Session

	findErr  error
	swept    int
	sweepErr error
}

func newMemSessions() *memSessions { return &memSessions{rows: map[string]model.Session{}} }

func (m *memSessions) Create(_ context.Context, s model.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows[s.ID] = s
	return nil
}

func (m *memSessions) FindByID(_ context.Context, id string) (model.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.findErr != nil {
		return model.Session{}, m.findErr
	}
	s, ok := m.rows[id]
	if !ok {
		return model.Session{}, repository.ErrNotFound
	}
	return s, nil
}

func (m *memSessions) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.rows, id)
	return nil
}

func (m *memSessions) DeleteExpired(_ context.Context, now time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.swept++
	if m.sweepErr != nil {
		return 0, m.sweepErr
	}
	var n int64
	for id, s := range m.rows {
		if s.ExpiresAt != nil && !s.ExpiresAt.After(now) {
			delete(m.rows, id)
			n++
		}
	}
	return n, nil
}

type sessionFixture struct {
	mgr      *SessionManager
	users    *memUsers
	sessions *memSessions
	clock    time.Time
}

func newSessionFixture(t *testing.T) *sessionFixture {
	t.Helper()
	f := &sessionFixture{
		users:    newMemUsers(),
		sessions: newMemSessions(),
		clock:    time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC),
	}
	f.mgr = NewSessionManager(f.users, f.sessions, bcrypt.MinCost, 0)
	f.mgr.now = func() time.Time { return f.clock }
	_, err := f.mgr.Register(context.Background(), "Admin", "admin@teste.com", "123456")
	require.NoError(t, err)
	return f
}

func TestRegisterValidation(t *testing.T) {
	f := newSessionFixture(t)
	ctx := context.Background()

	_, err := f.mgr.Register(ctx, "  ", "x@y.com", "pw")
	assert.Equal(t, KindInvalidInput, KindOf(err))
	_, err = f.mgr.Register(ctx, "X", "", "pw")
	assert.Equal(t, KindInvalidInput, KindOf(err))
	_, err = f.mgr.Register(ctx, "X", "x@y.com", "   ")
	assert.Equal(t, KindInvalidInput, KindOf(err))

	_, err = f.mgr.Register(ctx, "Other", "ADMIN@teste.com", "pw")
	assert.Equal(t, KindDuplicateEmail, KindOf(err))
}

func TestRegisterNeverStoresPlaintext(t *testing.T) {
	f := newSessionFixture(t)
	u, err := f.users.FindByEmail(context.Background(), "admin@teste.com")
	require.NoError(t, err)
	assert.NotEqual(t, "123456", u.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("123456")))
}

func TestRegisterHashFailureIsInternal(t *testing.T) {
	users := newMemUsers()
	mgr := NewSessionManager(users, newMemSessions(), bcrypt.MaxCost+1, 0)
	_, err := mgr.Register(context.Background(), "A", "a@b.com", "pw")
	assert.Equal(t, KindInternal, KindOf(err))
	assert.Empty(t, users.byID)
}

func TestRegisterInsertRaceMapsToDuplicate(t *testing.T) {
	users := newMemUsers()
	users.insertErr = repository.ErrEmailExists
	mgr := NewSessionManager(users, newMemSessions(), bcrypt.MinCost, 0)
	_, err := mgr.Register(context.Background(), "A", "a@b.com", "pw")
	assert.Equal(t, KindDuplicateEmail, KindOf(err))
}

func TestLoginOutcomes(t *testing.T) {
	f := newSessionFixture(t)
	ctx := context.Background()

	_, _, err := f.mgr.Login(ctx, "ghost@teste.com", "123456")
	assert.Equal(t, KindNotFound, KindOf(err))

	_, _, err = f.mgr.Login(ctx, "admin@teste.com", "wrong")
	assert.Equal(t, KindInvalidCredentials, KindOf(err))

	s, u, err := f.mgr.Login(ctx, "Admin@Teste.com", "123456")
	require.NoError(t, err)
	assert.Equal(t, "admin@teste.com", u.Email)
	assert.Len(t, s.ID, 64)
	require.NotNil(t, s.ExpiresAt)
	assert.Equal(t, f.clock.Add(24*time.Hour), *s.ExpiresAt)
}

func TestSessionValidAfterLoginInvalidAfterLogout(t *testing.T) {
	f := newSessionFixture(t)
	ctx := context.Background()

	s, u, err := f.mgr.Login(ctx, "admin@teste.com", "123456")
	require.NoError(t, err)

	uid, ok := f.mgr.Validate(ctx, s.ID)
	require.True(t, ok)
	assert.Equal(t, u.ID, uid)

	require.NoError(t, f.mgr.Logout(ctx, s.ID))
	_, ok = f.mgr.Validate(ctx, s.ID)
	assert.False(t, ok)

	// logout is idempotent
	require.NoError(t, f.mgr.Logout(ctx, s.ID))
	require.NoError(t, f.mgr.Logout(ctx, ""))
}

func TestSessionExpiry(t *testing.T) {
	f := newSessionFixture(t)
	ctx := context.Background()

	s, _, err := f.mgr.Login(ctx, "admin@teste.com", "123456")
	require.NoError(t, err)

	f.clock = f.clock.Add(24*time.Hour - time.Second)
	_, ok := f.mgr.Validate(ctx, s.ID)
	assert.True(t, ok)

	f.clock = f.clock.Add(time.Second)
	_, ok = f.mgr.Validate(ctx, s.ID)
	assert.False(t, ok, "expired exactly at expires_at")

	_, err = f.mgr.CurrentUser(ctx, s.ID)
	assert.Equal(t, KindUnauthenticated, KindOf(err))
}

func TestSessionWithoutExpiryIsValid(t *testing.T) {
	f := newSessionFixture(t)
	ctx := context.Background()
	require.NoError(t, f.sessions.Create(ctx, model.Session{ID: "legacy", UserID: 1, CreatedAt: f.clock}))

	uid, ok := f.mgr.Validate(ctx, "legacy")
	assert.True(t, ok)
	assert.Equal(t, int64(1), uid)
}

func TestLoginSweepsExpiredSessions(t *testing.T) {
	f := newSessionFixture(t)
	ctx := context.Background()

	old, _, err := f.mgr.Login(ctx, "admin@teste.com", "123456")
	require.NoError(t, err)

	f.clock = f.clock.Add(25 * time.Hour)
	_, _, err = f.mgr.Login(ctx, "admin@teste.com", "123456")
	require.NoError(t, err)

	_, present := f.sessions.rows[old.ID]
	assert.False(t, present)
	assert.Equal(t, 2, f.sessions.swept)
}

func TestLoginSurvivesSweepFailure(t *testing.T) {
	f := newSessionFixture(t)
	f.sessions.sweepErr = errors.New("db down")
	_, _, err := f.mgr.Login(context.Background(), "admin@teste.com", "123456")
	assert.NoError(t, err)
}

func TestValidateFailsClosedOnLookupError(t *testing.T) {
	f := newSessionFixture(t)
	ctx := context.Background()
	s, _, err := f.mgr.Login(ctx, "admin@teste.com", "123456")
	require.NoError(t, err)

	f.sessions.findErr = errors.New("connection reset")
	_, ok := f.mgr.Validate(ctx, s.ID)
	assert.False(t, ok)

	_, err = f.mgr.CurrentUser(ctx, s.ID)
	assert.Equal(t, KindUnauthenticated, KindOf(err))
}

func TestSessionIDGenerationFailure(t *testing.T) {
	f := newSessionFixture(t)
	f.mgr.newID = func() (string, error) { return "", errors.New("entropy exhausted") }
	_, _, err := f.mgr.Login(context.Background(), "admin@teste.com", "123456")
	assert.Equal(t, KindInternal, KindOf(err))
	assert.Empty(t, f.sessions.rows)
}

func TestCurrentUser(t *testing.T) {
	f := newSessionFixture(t)
	ctx := context.Background()
	s, _, err := f.mgr.Login(ctx, "admin@teste.com", "123456")
	require.NoError(t, err)

	u, err := f.mgr.CurrentUser(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, "Admin", u.Name)

	_, err = f.mgr.CurrentUser(ctx, "nope")
	assert.Equal(t, KindUnauthenticated, KindOf(err))
}

func TestSeedAdminIsIdempotent(t *testing.T) {
	users := newMemUsers()
	mgr := NewSessionManager(users, newMemSessions(), bcrypt.MinCost, 0)
	ctx := context.Background()

	require.NoError(t, mgr.SeedAdmin(ctx, "Admin", "admin@teste.com", "123456"))
	require.NoError(t, mgr.SeedAdmin(ctx, "Admin", "admin@teste.com", "other"))
	assert.Len(t, users.byID, 1)

	users.findErr = errors.New("db down")
	assert.Equal(t, KindInternal, KindOf(mgr.SeedAdmin(ctx, "Admin", "admin@teste.com", "123456")))
}
