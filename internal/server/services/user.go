package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/dmitrijs2005/eventgraph/internal/common"
	"github.com/dmitrijs2005/eventgraph/internal/logging"
	"github.com/dmitrijs2005/eventgraph/internal/server/auth"
	"github.com/dmitrijs2005/eventgraph/internal/server/config"
	"github.com/dmitrijs2005/eventgraph/internal/server/models"
	"github.com/dmitrijs2005/eventgraph/internal/server/repositories/repomanager"
)

// AuthPayload is returned by registration and login.
type AuthPayload struct {
	Token string
	User  *models.User
}

// RegisterInput mirrors the registerUser mutation input.
type RegisterInput struct {
	Name            string
	Email           string
	Password        string
	ConfirmPassword string
}

// UserService handles registration, login and resolving session tokens.
type UserService struct {
	repomanager           repomanager.RepositoryManager
	logger                logging.Logger
	jwtSecret             []byte
	tokenValidityDuration time.Duration
	bcryptCost            int
	defaultPageSize       int
	maxPageSize           int
	now                   Clock
}

// NewUserService constructs a UserService using repositories and server config.
func NewUserService(m repomanager.RepositoryManager, cfg *config.Config, logger logging.Logger) *UserService {
	return &UserService{
		repomanager:           m,
		logger:                logger.With("module", "users"),
		jwtSecret:             []byte(cfg.SecretKey),
		tokenValidityDuration: cfg.TokenValidityDuration,
		bcryptCost:            cfg.BcryptCost,
		defaultPageSize:       cfg.DefaultPageSize,
		maxPageSize:           cfg.MaxPageSize,
		now:                   time.Now,
	}
}

// WithClock replaces the time source.
func (s *UserService) WithClock(now Clock) *UserService {
	s.now = now
	return s
}

// NormalizeEmail trims and lowercases an address; uniqueness is defined on
// the normalized form.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register validates input, stores the user with a bcrypt hash and issues a
// token. Duplicate emails are rejected by the store, not by a pre-check.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*AuthPayload, error) {
	name := strings.TrimSpace(in.Name)
	email := NormalizeEmail(in.Email)
	if name == "" || email == "" || in.Password == "" || in.ConfirmPassword == "" {
		return nil, common.NewError(common.ErrorValidation, "all fields are required")
	}
	if in.Password != in.ConfirmPassword {
		return nil, common.NewError(common.ErrorValidation, "passwords do not match")
	}
	if len(in.Password) > auth.MaxPasswordBytes {
		return nil, common.NewError(common.ErrorValidation, "password is too long")
	}

	hash, err := auth.HashPassword(in.Password, s.bcryptCost)
	if err != nil {
		s.logger.Error(ctx, "hash password", "error", err)
		return nil, common.ErrorInternal
	}

	user, err := s.repomanager.Users().Create(ctx, &models.User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    stamp(s.now),
	})
	if err != nil {
		if errors.Is(err, common.ErrorConflict) {
			return nil, common.NewError(common.ErrorConflict, "email already registered")
		}
		s.logger.Error(ctx, "create user", "error", err)
		return nil, common.ErrorInternal
	}

	s.logger.Info(ctx, "user registered", "user_id", user.ID)
	return s.issue(ctx, user)
}

// Login checks credentials. Unknown emails and wrong passwords are reported
// with distinct errors.
func (s *UserService) Login(ctx context.Context, email, password string) (*AuthPayload, error) {
	email = NormalizeEmail(email)
	if email == "" || password == "" {
		return nil, common.NewError(common.ErrorValidation, "email and password are required")
	}

	user, err := s.repomanager.Users().GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.NewError(common.ErrorNotFound, "user not found")
		}
		s.logger.Error(ctx, "find user", "error", err)
		return nil, common.ErrorInternal
	}

	if !auth.VerifyPassword(user.PasswordHash, password) {
		return nil, common.NewError(common.ErrorUnauthorized, "invalid password")
	}

	return s.issue(ctx, user)
}

// Authenticate resolves a bearer token to a user. Any failure yields nil:
// a bad token means an anonymous request, never an error.
func (s *UserService) Authenticate(ctx context.Context, token string) *models.User {
	userID, err := auth.GetUserIDFromToken(token, s.jwtSecret)
	if err != nil {
		s.logger.Debug(ctx, "token rejected", "error", err)
		return nil
	}

	user, err := s.repomanager.Users().GetByID(ctx, userID)
	if err != nil {
		if !errors.Is(err, common.ErrorNotFound) {
			s.logger.Warn(ctx, "resolve token user", "error", err)
		}
		return nil
	}
	return user
}

// GetByID returns common.ErrorNotFound for unknown ids.
func (s *UserService) GetByID(ctx context.Context, id string) (*models.User, error) {
	return s.repomanager.Users().GetByID(ctx, id)
}

func (s *UserService) GetByIDs(ctx context.Context, ids []string) ([]*models.User, error) {
	return s.repomanager.Users().GetByIDs(ctx, ids)
}

// List pages through users in registration order.
func (s *UserService) List(ctx context.Context, limit, offset *int) ([]*models.User, error) {
	l, o := common.Page(limit, offset, s.defaultPageSize, s.maxPageSize)
	return s.repomanager.Users().List(ctx, l, o)
}

func (s *UserService) issue(ctx context.Context, user *models.User) (*AuthPayload, error) {
	token, err := auth.GenerateToken(user.ID, s.jwtSecret, s.tokenValidityDuration)
	if err != nil {
		s.logger.Error(ctx, "generate token", "error", err)
		return nil, common.ErrorInternal
	}
	return &AuthPayload{Token: token, User: user}, nil
}
