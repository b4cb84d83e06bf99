package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"net/url"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"

	"github.com/roach88/teamkit/internal/apperr"
	"github.com/roach88/teamkit/internal/clock"
	"github.com/roach88/teamkit/internal/idgen"
	"github.com/roach88/teamkit/internal/store"
)

// Caller-facing messages.
const (
	MsgRegistered       = "Registration successful. Please check your email to verify your account."
	MsgVerified         = "Email verified successfully. You can now log in."
	MsgLoggedOut        = "Logged out successfully"
	MsgEmailTaken       = "User with this email already exists"
	MsgInvalidToken     = "Invalid verification token"
	MsgTokenExpired     = "Verification token has expired"
	MsgAlreadyVerified  = "Account is already verified"
	MsgInvalidCreds     = "Invalid credentials"
	MsgVerifyFirst      = "Please verify your email before logging in"
	MsgUserNotFound     = "User not found"
	MsgInvalidSession   = "Invalid or expired session"
	MsgMissingSession   = "Missing session token"
	MsgInactiveIdentity = "User not found or inactive"
)

const (
	// VerificationTTL is how long a verification token stays valid.
	VerificationTTL = 24 * time.Hour

	// DefaultBcryptCost is the bcrypt work factor for new password hashes.
	DefaultBcryptCost = 10

	// MinPasswordLength is the shortest password Register accepts.
	MinPasswordLength = 8

	// MaxPasswordLength is bcrypt's input limit in bytes.
	MaxPasswordLength = 72

	verificationTokenBytes = 32
)

// UserRepository is the storage the service needs. *store.Store implements it.
type UserRepository interface {
	CreateUser(ctx context.Context, u store.User) error
	UserByID(ctx context.Context, id string) (store.User, error)
	UserByEmail(ctx context.Context, email string) (store.User, error)
	UserByVerificationToken(ctx context.Context, token string) (store.User, error)
	ActivateUser(ctx context.Context, id string, now time.Time) error
}

// RegisterInput is the registration form.
type RegisterInput struct {
	Email            string `json:"email"`
	Username         string `json:"username"`
	Password         string `json:"password"`
	OrganizationName string `json:"organizationName,omitempty"`
	IntendedUse      string `json:"intendedUse,omitempty"`
}

// Profile is the public view of a user.
type Profile struct {
	ID               string    `json:"id"`
	Email            string    `json:"email"`
	Username         string    `json:"username"`
	OrganizationName string    `json:"organizationName,omitempty"`
	IntendedUse      string    `json:"intendedUse,omitempty"`
	CreatedAt        time.Time `json:"createdAt"`
}

// Session is the result of a successful login.
type Session struct {
	AccessToken string      `json:"accessToken"`
	User        SessionUser `json:"user"`
}

// SessionUser is the subset of the profile returned with a session.
type SessionUser struct {
	ID               string `json:"id"`
	Email            string `json:"email"`
	Username         string `json:"username"`
	OrganizationName string `json:"organizationName,omitempty"`
}

// Config holds the service settings.
type Config struct {
	// BaseURL prefixes the verification link, e.g. "https://teamkit.example".
	BaseURL    string
	JWTSecret  []byte
	SessionTTL time.Duration
	BcryptCost int
}

// Service implements the Auth Gate.
type Service struct {
	users  UserRepository
	mailer Mailer
	tokens *TokenIssuer
	clock  clock.Clock
	ids    idgen.Generator
	logger *slog.Logger

	baseURL    string
	bcryptCost int
}

// Option configures a Service.
type Option func(*Service)

// WithClock overrides the wall clock used for expiry and token times.
func WithClock(c clock.Clock) Option {
	return func(s *Service) { s.clock = c }
}

// WithIDGenerator overrides the UUIDv7 id generator.
func WithIDGenerator(g idgen.Generator) Option {
	return func(s *Service) { s.ids = g }
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// NewService creates the Auth Gate. A nil mailer logs verification links.
func NewService(users UserRepository, mailer Mailer, cfg Config, opts ...Option) (*Service, error) {
	s := &Service{
		users:      users,
		mailer:     mailer,
		clock:      clock.System{},
		ids:        idgen.UUIDv7Generator{},
		logger:     slog.Default(),
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		bcryptCost: cfg.BcryptCost,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.mailer == nil {
		s.mailer = LogMailer{Logger: s.logger}
	}
	if s.bcryptCost == 0 {
		s.bcryptCost = DefaultBcryptCost
	}
	if s.bcryptCost < bcrypt.MinCost || s.bcryptCost > bcrypt.MaxCost {
		return nil, fmt.Errorf("bcrypt cost %d out of range [%d, %d]", s.bcryptCost, bcrypt.MinCost, bcrypt.MaxCost)
	}

	ttl := cfg.SessionTTL
	if ttl == 0 {
		ttl = 24 * time.Hour
	}
	tokens, err := NewTokenIssuer(cfg.JWTSecret, ttl, s.clock.Now)
	if err != nil {
		return nil, err
	}
	s.tokens = tokens
	return s, nil
}

// NormalizeEmail trims, NFC-normalizes and lower-cases an email address so
// uniqueness is case-insensitive.
func NormalizeEmail(email string) string {
	return cases.Lower(language.Und).String(norm.NFC.String(strings.TrimSpace(email)))
}

// Register creates a pending account and sends the verification email.
func (s *Service) Register(ctx context.Context, in RegisterInput) error {
	email := NormalizeEmail(in.Email)
	if err := validateRegistration(email, in); err != nil {
		return err
	}

	if _, err := s.users.UserByEmail(ctx, email); err == nil {
		return apperr.Conflict(MsgEmailTaken)
	} else if !errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("register: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.bcryptCost)
	if err != nil {
		return fmt.Errorf("register: hash password: %w", err)
	}

	token, err := newVerificationToken()
	if err != nil {
		return fmt.Errorf("register: %w", err)
	}

	now := s.clock.Now()
	user := store.User{
		ID:                      s.ids.Generate(),
		Email:                   email,
		Username:                strings.TrimSpace(in.Username),
		PasswordHash:            string(hash),
		IsActive:                false,
		VerificationToken:       token,
		VerificationTokenExpiry: now.Add(VerificationTTL),
		OrganizationName:        strings.TrimSpace(in.OrganizationName),
		IntendedUse:             strings.TrimSpace(in.IntendedUse),
		CreatedAt:               now,
		UpdatedAt:               now,
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		// Lost a race with a concurrent registration.
		if errors.Is(err, store.ErrEmailTaken) {
			return apperr.Conflict(MsgEmailTaken)
		}
		return fmt.Errorf("register: %w", err)
	}

	if err := s.mailer.SendVerification(ctx, email, s.VerificationLink(token)); err != nil {
		s.logger.ErrorContext(ctx, "failed to send verification email", "email", email, "error", err)
	}

	s.logger.InfoContext(ctx, "user registered", "user_id", user.ID, "email", email)
	return nil
}

// VerificationLink builds the link mailed to a new user.
func (s *Service) VerificationLink(token string) string {
	return s.baseURL + "/auth/verify?token=" + url.QueryEscape(token)
}

// VerifyEmail activates the account holding token.
//
// A token is single use: it is cleared on success, so presenting it again
// fails with "Invalid verification token".
func (s *Service) VerifyEmail(ctx context.Context, token string) error {
	user, err := s.users.UserByVerificationToken(ctx, token)
	if errors.Is(err, store.ErrNotFound) {
		return apperr.BadRequest(MsgInvalidToken)
	}
	if err != nil {
		return fmt.Errorf("verify email: %w", err)
	}

	now := s.clock.Now()
	if user.VerificationTokenExpiry.IsZero() || user.VerificationTokenExpiry.Before(now) {
		return apperr.BadRequest(MsgTokenExpired)
	}
	if user.IsActive {
		return apperr.BadRequest(MsgAlreadyVerified)
	}

	if err := s.users.ActivateUser(ctx, user.ID, now); err != nil {
		// Another request activated the account in between.
		if errors.Is(err, store.ErrNotFound) {
			return apperr.BadRequest(MsgAlreadyVerified)
		}
		return fmt.Errorf("verify email: %w", err)
	}

	s.logger.InfoContext(ctx, "user verified", "user_id", user.ID)
	return nil
}

// Login checks the credentials and issues a session token. An inactive
// account is rejected before the password is compared.
func (s *Service) Login(ctx context.Context, email, password string) (Session, error) {
	user, err := s.users.UserByEmail(ctx, NormalizeEmail(email))
	if errors.Is(err, store.ErrNotFound) {
		return Session{}, apperr.Unauthorized(MsgInvalidCreds)
	}
	if err != nil {
		return Session{}, fmt.Errorf("login: %w", err)
	}

	if !user.IsActive {
		return Session{}, apperr.Unauthorized(MsgVerifyFirst)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return Session{}, apperr.Unauthorized(MsgInvalidCreds)
	}

	token, err := s.tokens.Issue(user.ID, user.Email)
	if err != nil {
		return Session{}, fmt.Errorf("login: %w", err)
	}

	s.logger.InfoContext(ctx, "user logged in", "user_id", user.ID)
	return Session{
		AccessToken: token,
		User: SessionUser{
			ID:               user.ID,
			Email:            user.Email,
			Username:         user.Username,
			OrganizationName: user.OrganizationName,
		},
	}, nil
}

// Profile returns the profile of userID.
func (s *Service) Profile(ctx context.Context, userID string) (Profile, error) {
	user, err := s.users.UserByID(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return Profile{}, apperr.Unauthorized(MsgUserNotFound)
	}
	if err != nil {
		return Profile{}, fmt.Errorf("profile: %w", err)
	}
	return Profile{
		ID:               user.ID,
		Email:            user.Email,
		Username:         user.Username,
		OrganizationName: user.OrganizationName,
		IntendedUse:      user.IntendedUse,
		CreatedAt:        user.CreatedAt,
	}, nil
}

// Authenticate verifies a session token and resolves it to an active user.
func (s *Service) Authenticate(ctx context.Context, token string) (Identity, error) {
	if token == "" {
		return Identity{}, apperr.Unauthorized(MsgMissingSession)
	}

	id, err := s.tokens.Verify(token)
	if err != nil {
		s.logger.DebugContext(ctx, "session rejected", "error", err)
		return Identity{}, apperr.Unauthorized(MsgInvalidSession)
	}

	user, err := s.users.UserByID(ctx, id.UserID)
	if errors.Is(err, store.ErrNotFound) {
		return Identity{}, apperr.Unauthorized(MsgInactiveIdentity)
	}
	if err != nil {
		return Identity{}, fmt.Errorf("authenticate: %w", err)
	}
	if !user.IsActive {
		return Identity{}, apperr.Unauthorized(MsgInactiveIdentity)
	}
	return id, nil
}

func validateRegistration(email string, in RegisterInput) error {
	if email == "" {
		return apperr.BadRequest("email is required")
	}
	if addr, err := mail.ParseAddress(email); err != nil || addr.Address != email {
		return apperr.BadRequest("email is not a valid address")
	}
	if strings.TrimSpace(in.Username) == "" {
		return apperr.BadRequest("username is required")
	}
	if len(in.Password) < MinPasswordLength {
		return apperr.BadRequest(fmt.Sprintf("password must be at least %d characters", MinPasswordLength))
	}
	if len(in.Password) > MaxPasswordLength {
		return apperr.BadRequest(fmt.Sprintf("password must be at most %d bytes", MaxPasswordLength))
	}
	return nil
}

func newVerificationToken() (string, error) {
	buf := make([]byte, verificationTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate verification token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
