// Package service holds the account and post business rules on top of the repositories.
package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"devconnector/internal/auth"
	"devconnector/internal/models"
	"devconnector/internal/observability"
	"devconnector/internal/repository"
	"devconnector/internal/validation"
)

// PasswordHasher hashes and checks passwords.
type PasswordHasher interface {
	Hash(plain string) (string, error)
	Verify(plain, stored string) (bool, error)
}

// TokenIssuer signs identity tokens.
type TokenIssuer interface {
	Issue(id auth.Identity, ttl time.Duration) (string, error)
}

type UserService struct {
	userRepo repository.UserRepository
	hasher   PasswordHasher
	tokens   TokenIssuer
	tokenTTL time.Duration
	now      func() time.Time
}

type RegisterInput struct {
	Name      string `json:"name" validate:"required,min=2,max=30"`
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=6,max=30,bcryptlen"`
	Password2 string `json:"password2" validate:"required,eqfield=Password"`
}

type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

var registerMessages = validation.Messages{
	"name.required":      "Name field is required",
	"name":               "Name must be between 2 and 30 characters",
	"email.required":     "Email field is required",
	"email":              "Email is invalid",
	"password.required":  "Password field is required",
	"password":           "Password must be at least 6 and max of 30",
	"password2.required": "Confirm password field is required",
	"password2":          "Passwords must match",
}

var loginMessages = validation.Messages{
	"email.required":    "Email field is required",
	"email":             "Email is invalid",
	"password.required": "Password field is required",
}

// NewUserService wires registration and login. A zero ttl means auth.DefaultTokenTTL.
func NewUserService(userRepo repository.UserRepository, hasher PasswordHasher, tokens TokenIssuer, ttl time.Duration) *UserService {
	if ttl <= 0 {
		ttl = auth.DefaultTokenTTL
	}
	return &UserService{
		userRepo: userRepo,
		hasher:   hasher,
		tokens:   tokens,
		tokenTTL: ttl,
		now:      time.Now,
	}
}

// Register creates an account and returns its public view.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (user *models.PublicUser, err error) {
	defer func() { recordAuthAttempt("register", err) }()

	in.Name = strings.TrimSpace(in.Name)
	in.Email = normalizeEmail(in.Email)
	if err := validate(in, registerMessages); err != nil {
		return nil, err
	}

	existing, err := s.userRepo.GetByEmail(ctx, in.Email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, models.NewDuplicateEmailError()
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	created := &models.User{
		Name:     in.Name,
		Email:    in.Email,
		Password: hash,
		Date:     s.now().UTC(),
	}
	// Create maps a lost race on the email index to DUPLICATE_EMAIL as well.
	if err := s.userRepo.Create(ctx, created); err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "user registered", slog.String("user_id", created.ID))
	return publicUser(created), nil
}

// Login checks credentials and returns a "Bearer <jwt>" token.
func (s *UserService) Login(ctx context.Context, in LoginInput) (token string, err error) {
	defer func() { recordAuthAttempt("login", err) }()

	in.Email = normalizeEmail(in.Email)
	if err := validate(in, loginMessages); err != nil {
		return "", err
	}

	user, err := s.userRepo.GetByEmail(ctx, in.Email)
	if err != nil {
		return "", err
	}
	if user == nil {
		return "", models.NewUserNotFoundError()
	}

	ok, err := s.hasher.Verify(in.Password, user.Password)
	if err != nil {
		if errors.Is(err, auth.ErrCorruptCredential) {
			slog.ErrorContext(ctx, "stored password hash is unusable", slog.String("user_id", user.ID))
			return "", models.NewCorruptCredentialError(err)
		}
		return "", models.NewInternalError(err)
	}
	if !ok {
		return "", models.NewPasswordIncorrectError()
	}

	signed, err := s.tokens.Issue(auth.Identity{ID: user.ID, Name: user.Name, Email: user.Email}, s.tokenTTL)
	if err != nil {
		return "", models.NewInternalError(err)
	}
	return "Bearer " + signed, nil
}

// Current returns the identity carried by verified claims; it does not touch the store.
func (s *UserService) Current(claims *auth.Claims) (*models.PublicUser, error) {
	if claims == nil {
		return nil, models.NewUnauthorizedError("Authentication required")
	}
	id := claims.Identity()
	return &models.PublicUser{ID: id.ID, Name: id.Name, Email: id.Email}, nil
}

func publicUser(u *models.User) *models.PublicUser {
	return &models.PublicUser{ID: u.ID, Name: u.Name, Email: u.Email}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// validate turns failing fields into a VALIDATION_ERROR AppError.
func validate(in any, msgs validation.Messages) error {
	fields, err := validation.Struct(in, msgs)
	if err != nil {
		return models.NewInternalError(err)
	}
	if len(fields) > 0 {
		return models.NewFieldValidationError(fields)
	}
	return nil
}

// outcome labels err for metrics: "success", its AppError code, or "error".
func outcome(err error) string {
	if err == nil {
		return "success"
	}
	var appErr *models.AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return "error"
}

func recordAuthAttempt(operation string, err error) {
	observability.AuthAttempts.WithLabelValues(operation, outcome(err)).Inc()
}
