package service

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/iliyamo/mercado-storefront/internal/model"
	"github.com/iliyamo/mercado-storefront/internal/repository"
	"github.com/iliyamo/mercado-storefront/internal/utils"
)

// DefaultSessionTTL is how long a login stays valid.
const DefaultSessionTTL = 24 * time.Hour

// UserStore is the credential store used by SessionManager.
type UserStore interface {
	Insert(ctx context.Context, name, email, passwordHash string) (model.User, error)
	FindByEmail(ctx context.Context, email string) (model.User, error)
	FindByID(ctx context.Context, id int64) (model.User, error)
	List(ctx context.Context) ([]model.User, error)
}

// SessionStore persists sessions. FindByID must not filter on expiry.
type SessionStore interface {
	Create(ctx context.Context, s model.Session) error
	FindByID(ctx context.Context, id string) (model.Session, error)
	Delete(ctx context.Context, id string) error
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

// SessionManager registers users, checks credentials and issues, validates
// and revokes server-side sessions.
type SessionManager struct {
	users      UserStore
	sessions   SessionStore
	bcryptCost int
	ttl        time.Duration

	now   func() time.Time
	newID func() (string, error)
}

func NewSessionManager(users UserStore, sessions SessionStore, bcryptCost int, ttl time.Duration) *SessionManager {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &SessionManager{
		users:      users,
		sessions:   sessions,
		bcryptCost: bcryptCost,
		ttl:        ttl,
		now:        func() time.Time { return time.Now().UTC() },
		newID:      utils.NewSessionID,
	}
}

// TTL is the lifetime given to new sessions.
func (m *SessionManager) TTL() time.Duration { return m.ttl }

// Register creates a user with a bcrypt hashed password.
func (m *SessionManager) Register(ctx context.Context, name, email, password string) (model.User, error) {
	name = strings.TrimSpace(name)
	email = repository.NormalizeEmail(email)
	if name == "" || email == "" || strings.TrimSpace(password) == "" {
		return model.User{}, newErr(KindInvalidInput, "name, email and password are required")
	}

	_, err := m.users.FindByEmail(ctx, email)
	switch {
	case err == nil:
		return model.User{}, newErr(KindDuplicateEmail, "email already registered")
	case !errors.Is(err, repository.ErrNotFound):
		return model.User{}, internalErr("lookup user", err)
	}

	hash, err := utils.HashPassword(password, m.bcryptCost)
	if err != nil {
		return model.User{}, internalErr("hash password", err)
	}
	u, err := m.users.Insert(ctx, name, email, hash)
	if err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return model.User{}, newErr(KindDuplicateEmail, "email already registered")
		}
		return model.User{}, internalErr("insert user", err)
	}
	return u, nil
}

// Login verifies credentials and opens a new session. Expired sessions of
// every user are swept first.
func (m *SessionManager) Login(ctx context.Context, email, password string) (model.Session, model.User, error) {
	email = repository.NormalizeEmail(email)
	if email == "" || password == "" {
		return model.Session{}, model.User{}, newErr(KindInvalidInput, "email and password are required")
	}

	u, err := m.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.Session{}, model.User{}, newErr(KindNotFound, "user not found")
		}
		return model.Session{}, model.User{}, internalErr("lookup user", err)
	}
	if !utils.VerifyPassword(u.PasswordHash, password) {
		return model.Session{}, model.User{}, newErr(KindInvalidCredentials, "invalid credentials")
	}

	now := m.now()
	if n, err := m.sessions.DeleteExpired(ctx, now); err != nil {
		log.Printf("session: sweep expired failed: %v", err)
	} else if n > 0 {
		log.Printf("session: swept %d expired sessions", n)
	}

	id, err := m.newID()
	if err != nil {
		return model.Session{}, model.User{}, internalErr("generate session id", err)
	}
	exp := now.Add(m.ttl)
	s := model.Session{ID: id, UserID: u.ID, CreatedAt: now, ExpiresAt: &exp}
	if err := m.sessions.Create(ctx, s); err != nil {
		return model.Session{}, model.User{}, internalErr("create session", err)
	}
	return s, u, nil
}

// Validate returns the user owning token when the session exists and has
// not expired. Any lookup failure counts as unauthenticated.
func (m *SessionManager) Validate(ctx context.Context, token string) (int64, bool) {
	if token == "" {
		return 0, false
	}
	s, err := m.sessions.FindByID(ctx, token)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			log.Printf("session: lookup failed: %v", err)
		}
		return 0, false
	}
	if !s.ValidAt(m.now()) {
		return 0, false
	}
	return s.UserID, true
}

// Logout deletes the session. Unknown or empty tokens are not an error.
func (m *SessionManager) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	if err := m.sessions.Delete(ctx, token); err != nil {
		return internalErr("delete session", err)
	}
	return nil
}

// CurrentUser resolves token to its user with the same expiry rules as
// Validate.
func (m *SessionManager) CurrentUser(ctx context.Context, token string) (model.User, error) {
	uid, ok := m.Validate(ctx, token)
	if !ok {
		return model.User{}, newErr(KindUnauthenticated, "not authenticated")
	}
	return m.UserByID(ctx, uid)
}

// UserByID loads a user for an already validated session.
func (m *SessionManager) UserByID(ctx context.Context, id int64) (model.User, error) {
	u, err := m.users.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.User{}, newErr(KindUnauthenticated, "not authenticated")
		}
		return model.User{}, internalErr("load user", err)
	}
	return u, nil
}

// Users lists every registered user.
func (m *SessionManager) Users(ctx context.Context) ([]model.User, error) {
	list, err := m.users.List(ctx)
	if err != nil {
		return nil, internalErr("list users", err)
	}
	return list, nil
}

// SeedAdmin registers the bootstrap account unless the email is taken.
func (m *SessionManager) SeedAdmin(ctx context.Context, name, email, password string) error {
	_, err := m.users.FindByEmail(ctx, email)
	if err == nil {
		return nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return internalErr("lookup admin", err)
	}
	if _, err := m.Register(ctx, name, email, password); err != nil {
		if KindOf(err) == KindDuplicateEmail {
			return nil
		}
		return err
	}
	log.Printf("seeded admin user %s", repository.NormalizeEmail(email))
	return nil
}
