package model

import "time"

// User represents an application user record as stored in the
// `users` table. Users are created on registration and never edited
// afterwards. Handlers expose PublicUser instead so the password hash
// never leaves the service layer.
//
// Fields:
//
//	ID           – primary key identifier of the user.
//	Name         – display name given at registration.
//	Email        – unique email address.
//	PasswordHash – bcrypt hashed password.
//	CreatedAt    – timestamp of creation.
type User struct {
	ID           int64     // users.id
	Name         string    // users.name
	Email        string    // users.email
	PasswordHash string    // users.password_hash
	CreatedAt    time.Time // users.created_at
}

// PublicUser is the JSON shape of a user returned to clients.
type PublicUser struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Public strips the credential fields from u.
func (u User) Public() PublicUser {
	return PublicUser{ID: u.ID, Name: u.Name, Email: u.Email}
}

// Session models an entry in the `sessions` table. The ID is the opaque
// value carried by the session cookie. ExpiresAt is nil for sessions
// that never expire (rows written by older schemas).
type Session struct {
	ID        string     // sessions.id
	UserID    int64      // sessions.user_id
	CreatedAt time.Time  // sessions.created_at
	ExpiresAt *time.Time // sessions.expires_at (nullable)
}

// ValidAt reports whether the session is still usable at now.
func (s Session) ValidAt(now time.Time) bool {
	return s.ExpiresAt == nil || s.ExpiresAt.After(now)
}
