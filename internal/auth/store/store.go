// Package store keeps users and bearer sessions in memory. A Store is
// created once at start-up and shared by every auth handler; nothing
// survives a restart.
//
// Lookups report absence with a boolean and never return errors. All
// returned values are copies, so callers cannot mutate stored state.
package store

import (
	"crypto/rand"
	"encoding/hex"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// SessionTTL is how long a session stays valid after creation.
const SessionTTL = 24 * time.Hour

const bearerPrefix = "Bearer "

// User is a registered account. Password is stored as given and never
// serialised; use ToPublic at every boundary.
type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Password  string    `json:"-"`
	Avatar    string    `json:"avatar,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// PublicUser is the only user shape returned to clients.
type PublicUser struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Avatar    string    `json:"avatar,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type Session struct {
	Token     string    `json:"token"`
	UserID    string    `json:"userId"`
	CreatedAt time.Time `json:"createdAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Principal is the user and session a bearer token resolved to.
type Principal struct {
	User    User
	Session Session
}

// UserUpdate lists the fields to change. Nil fields are left untouched.
type UserUpdate struct {
	Name     *string
	Email    *string
	Password *string
	Avatar   *string
}

type Store struct {
	mu       sync.RWMutex
	users    []*User
	byID     map[string]*User
	sessions map[string]*Session
	now      func() time.Time
}

type Option func(*Store)

// WithClock replaces time.Now, letting tests move time forward.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

func New(opts ...Option) *Store {
	s := &Store{
		byID:     make(map[string]*User),
		sessions: make(map[string]*Session),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateUser adds a user with a fresh id and lowercased email. It does not
// check for duplicate emails; callers do that with FindUserByEmail.
func (s *Store) CreateUser(name, email, password string) User {
	now := s.now().UTC()
	u := &User{
		ID:        uuid.NewString(),
		Name:      name,
		Email:     strings.ToLower(email),
		Password:  password,
		CreatedAt: now,
		UpdatedAt: now,
	}

	s.mu.Lock()
	s.users = append(s.users, u)
	s.byID[u.ID] = u
	s.mu.Unlock()

	return *u
}

// FindUserByEmail matches case-insensitively. If several users share an
// email the earliest registered wins.
func (s *Store) FindUserByEmail(email string) (User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if strings.EqualFold(u.Email, email) {
			return *u, true
		}
	}
	return User{}, false
}

func (s *Store) FindUserByID(id string) (User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.byID[id]
	if !ok {
		return User{}, false
	}
	return *u, true
}

// UpdateUser applies the non-nil fields of upd and refreshes UpdatedAt even
// when nothing else changed.
func (s *Store) UpdateUser(id string, upd UserUpdate) (User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.byID[id]
	if !ok {
		return User{}, false
	}
	if upd.Name != nil {
		u.Name = *upd.Name
	}
	if upd.Email != nil {
		u.Email = strings.ToLower(*upd.Email)
	}
	if upd.Password != nil {
		u.Password = *upd.Password
	}
	if upd.Avatar != nil {
		u.Avatar = *upd.Avatar
	}
	u.UpdatedAt = s.now().UTC()
	return *u, true
}

// DeleteUser removes the user and every session they own.
func (s *Store) DeleteUser(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byID[id]; !ok {
		return false
	}
	delete(s.byID, id)
	for i, u := range s.users {
		if u.ID == id {
			s.users = append(s.users[:i], s.users[i+1:]...)
			break
		}
	}
	s.deleteUserSessionsLocked(id)
	return true
}

// CreateSession issues a token valid for SessionTTL.
func (s *Store) CreateSession(userID string) Session {
	now := s.now().UTC()
	sess := &Session{
		Token:     newToken(),
		UserID:    userID,
		CreatedAt: now,
		ExpiresAt: now.Add(SessionTTL),
	}

	s.mu.Lock()
	s.sessions[sess.Token] = sess
	s.mu.Unlock()

	return *sess
}

// FindSessionByToken returns the session if it has not expired. An expired
// session is removed as a side effect.
func (s *Store) FindSessionByToken(token string) (Session, bool) {
	s.mu.RLock()
	sess, ok := s.sessions[token]
	var cp Session
	if ok {
		cp = *sess
	}
	s.mu.RUnlock()
	if !ok {
		return Session{}, false
	}
	if s.now().Before(cp.ExpiresAt) {
		return cp, true
	}

	s.mu.Lock()
	if cur, ok := s.sessions[token]; ok && !s.now().Before(cur.ExpiresAt) {
		delete(s.sessions, token)
	}
	s.mu.Unlock()
	return Session{}, false
}

func (s *Store) DeleteSession(token string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[token]; !ok {
		return false
	}
	delete(s.sessions, token)
	return true
}

// DeleteAllUserSessions removes every session owned by userID and returns
// how many there were.
func (s *Store) DeleteAllUserSessions(userID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.deleteUserSessionsLocked(userID)
}

func (s *Store) deleteUserSessionsLocked(userID string) int {
	n := 0
	for token, sess := range s.sessions {
		if sess.UserID == userID {
			delete(s.sessions, token)
			n++
		}
	}
	return n
}

// ResolveBearer parses an Authorization header of the exact form
// "Bearer <token>" and returns the session and its user.
func (s *Store) ResolveBearer(header string) (Principal, bool) {
	token, ok := strings.CutPrefix(header, bearerPrefix)
	if !ok || token == "" {
		return Principal{}, false
	}
	sess, ok := s.FindSessionByToken(token)
	if !ok {
		return Principal{}, false
	}
	u, ok := s.FindUserByID(sess.UserID)
	if !ok {
		return Principal{}, false
	}
	return Principal{User: u, Session: sess}, true
}

// AllUsers lists every user in registration order.
func (s *Store) AllUsers() []PublicUser {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]PublicUser, len(s.users))
	for i, u := range s.users {
		out[i] = ToPublic(*u)
	}
	return out
}

func (s *Store) UserCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.users)
}

// SessionCount includes expired sessions that have not been looked up yet.
func (s *Store) SessionCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

func ToPublic(u User) PublicUser {
	return PublicUser{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Avatar:    u.Avatar,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

func newToken() string {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		panic("crypto/rand failed: " + err.Error())
	}
	return hex.EncodeToString(b)
}
