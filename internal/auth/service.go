// Package auth owns user accounts and sessions: bcrypt-hashed passwords,
// HS256 session tokens, per-email sign-in throttling and a session change
// stream. The session is always passed explicitly, never read from a global.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"fintrack/internal/log"

	"github.com/google/uuid"
)

// User is a stored account.
type User struct {
	ID           string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}

// UserStore persists accounts. CreateUser returns ErrUserExists for a taken
// email and UserByEmail returns ErrUserNotFound for an unknown one.
type UserStore interface {
	CreateUser(ctx context.Context, u User) error
	UserByEmail(ctx context.Context, email string) (User, error)
}

// Throttle limits sign-in attempts per key.
type Throttle interface {
	Allow(key string) bool
	Reset(key string)
}

type Options struct {
	Secret         []byte
	TTL            time.Duration
	AllowedDomains []string
	Throttle       Throttle // nil disables throttling
	BcryptCost     int      // zero means bcrypt.DefaultCost
	Logger         *log.Logger
}

type Service struct {
	users    UserStore
	tokens   *TokenIssuer
	domains  []string
	throttle Throttle
	cost     int
	events   *broadcaster
	logger   *log.Logger
	now      func() time.Time

	mu      sync.Mutex
	revoked map[string]time.Time // token id to expiry
}

func NewService(users UserStore, opts Options) *Service {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	return &Service{
		users:    users,
		tokens:   NewTokenIssuer(opts.Secret, opts.TTL),
		domains:  opts.AllowedDomains,
		throttle: opts.Throttle,
		cost:     opts.BcryptCost,
		events:   newBroadcaster(),
		logger:   logger.WithComponent(log.ComponentAuth),
		now:      time.Now,
		revoked:  make(map[string]time.Time),
	}
}

// SignUp creates an account and signs it in.
func (s *Service) SignUp(ctx context.Context, email, password string) (Session, error) {
	email, err := NormalizeEmail(email, s.domains)
	if err != nil {
		return Session{}, err
	}
	if err := ValidatePassword(password); err != nil {
		return Session{}, err
	}

	hash, err := HashPassword(password, s.cost)
	if err != nil {
		return Session{}, err
	}
	user := User{ID: uuid.NewString(), Email: email, PasswordHash: hash, CreatedAt: s.now().UTC()}
	if err := s.users.CreateUser(ctx, user); err != nil {
		if !errors.Is(err, ErrUserExists) {
			s.logger.ErrorContext(ctx, "Failed to create user", log.FieldOperation, log.OpSignUp, log.FieldError, err)
		}
		return Session{}, fmt.Errorf("sign up: %w", err)
	}

	session, err := s.issue(user)
	if err != nil {
		return Session{}, err
	}
	s.logger.InfoContext(ctx, "User signed up", log.FieldOwnerID, user.ID)
	s.emit(SessionEvent{Kind: SignedUp, UserID: user.ID, Session: session})
	return session, nil
}

// SignUpConfirmed is SignUp with the second password entry checked first.
func (s *Service) SignUpConfirmed(ctx context.Context, email, password, confirm string) (Session, error) {
	if password != confirm {
		return Session{}, ErrPasswordMismatch
	}
	return s.SignUp(ctx, email, password)
}

// SignIn checks the credentials. Unknown emails and wrong passwords give the
// same error.
func (s *Service) SignIn(ctx context.Context, email, password string) (Session, error) {
	key := strings.ToLower(strings.TrimSpace(email))
	if s.throttle != nil && !s.throttle.Allow(key) {
		s.logger.WarnContext(ctx, "Sign-in throttled", log.FieldOperation, log.OpSignIn)
		return Session{}, ErrRateLimited
	}

	user, err := s.users.UserByEmail(ctx, key)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return Session{}, ErrInvalidCredentials
		}
		return Session{}, fmt.Errorf("sign in: %w", err)
	}
	if !CheckPasswordHash(password, user.PasswordHash) {
		return Session{}, ErrInvalidCredentials
	}
	if s.throttle != nil {
		s.throttle.Reset(key)
	}

	session, err := s.issue(user)
	if err != nil {
		return Session{}, err
	}
	s.emit(SessionEvent{Kind: SignedIn, UserID: user.ID, Session: session})
	return session, nil
}

// SignOut revokes the token until it would have expired anyway. Signing out
// an already invalid token is not an error.
func (s *Service) SignOut(ctx context.Context, token string) error {
	claims, err := s.tokens.Parse(token)
	if err != nil {
		return nil
	}

	s.mu.Lock()
	s.revoked[claims.ID] = claims.ExpiresAt.Time
	s.pruneLocked()
	s.mu.Unlock()

	s.logger.InfoContext(ctx, "User signed out", log.FieldOwnerID, claims.UserID)
	s.emit(SessionEvent{Kind: SignedOut, UserID: claims.UserID})
	return nil
}

// Verify returns the session a token stands for.
func (s *Service) Verify(token string) (Session, error) {
	if token == "" {
		return Session{}, ErrNoSession
	}
	claims, err := s.tokens.Parse(token)
	if err != nil {
		return Session{}, err
	}

	s.mu.Lock()
	_, revoked := s.revoked[claims.ID]
	s.mu.Unlock()
	if revoked {
		return Session{}, ErrSessionExpired
	}

	return Session{UserID: claims.UserID, Email: claims.Email, Token: token, ExpiresAt: claims.ExpiresAt.Time}, nil
}

// Subscribe streams session events until cancel is called.
func (s *Service) Subscribe() (<-chan SessionEvent, func()) {
	return s.events.subscribe()
}

func (s *Service) issue(u User) (Session, error) {
	token, claims, err := s.tokens.Issue(u.ID, u.Email)
	if err != nil {
		return Session{}, err
	}
	return Session{UserID: u.ID, Email: u.Email, Token: token, ExpiresAt: claims.ExpiresAt.Time}, nil
}

func (s *Service) emit(ev SessionEvent) {
	ev.At = s.now().UTC()
	if dropped := s.events.publish(ev); dropped > 0 {
		s.logger.Warn("Dropped session event for slow subscribers", "kind", ev.Kind, "dropped", dropped)
	}
}

func (s *Service) pruneLocked() {
	now := s.now()
	for id, exp := range s.revoked {
		if exp.Before(now) {
			delete(s.revoked, id)
		}
	}
}
