package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"reviewhub/internal/config"
	"reviewhub/internal/confirmation"
	"reviewhub/internal/httpapi/dto"
	"reviewhub/internal/httpapi/models"
	"reviewhub/internal/httpapi/repository"
	"reviewhub/internal/mailer"
)

// UsernamePattern is the allowed username character set. "me" is reserved
// for the self-profile route and rejected separately.
var UsernamePattern = regexp.MustCompile(`^[\w.@+-]+$`)

const confirmationEmailSubject = "Your confirmation code"

// Claims is the access-token payload: enough identity to authorize a request
// without a user lookup.
type Claims struct {
	UserID   int64  `json:"user_id"`
	Username string `json:"username"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

type AccountService interface {
	// SignUp registers a user (or idempotently re-registers an existing
	// exact identity) and emails a confirmation code, best effort.
	SignUp(ctx context.Context, username, email string) (*models.User, error)

	// IssueTokens exchanges a live confirmation code for an access/refresh
	// token pair.
	IssueTokens(ctx context.Context, username, code string) (*dto.TokenResponse, error)

	RefreshAccessToken(ctx context.Context, refreshToken string) (string, error)

	// RevokeRefreshToken invalidates a refresh token (logout). Unknown
	// tokens are not an error, so the response cannot be used to probe
	// which tokens exist.
	RevokeRefreshToken(ctx context.Context, refreshToken string) error

	ValidateAccessToken(tokenString string) (*Claims, error)
	AccessTokenTTL() time.Duration

	GetProfile(ctx context.Context, userID int64) (*models.User, error)
	UpdateProfile(ctx context.Context, userID int64, patch dto.UpdateMeDTO) (*models.User, error)

	ListUsers(ctx context.Context, search string, page, pageSize int) ([]models.User, int64, error)
	CreateUser(ctx context.Context, req dto.CreateUserDTO) (*models.User, error)
	GetUser(ctx context.Context, username string) (*models.User, error)
	UpdateUser(ctx context.Context, username string, patch dto.UpdateUserDTO) (*models.User, error)
	DeleteUser(ctx context.Context, username string) error
}

type accountService struct {
	userRepo         repository.UserRepository
	refreshTokenRepo repository.RefreshTokenRepository
	codes            confirmation.Store
	mail             mailer.Mailer
	logger           *slog.Logger
	jwtSecret        string
	accessTokenTTL   time.Duration
	refreshTokenTTL  time.Duration
}

func NewAccountService(
	userRepo repository.UserRepository,
	refreshTokenRepo repository.RefreshTokenRepository,
	codes confirmation.Store,
	mail mailer.Mailer,
	logger *slog.Logger,
	cfg *config.Config,
) AccountService {
	return &accountService{
		userRepo:         userRepo,
		refreshTokenRepo: refreshTokenRepo,
		codes:            codes,
		mail:             mail,
		logger:           logger,
		jwtSecret:        cfg.JWTSecret,
		accessTokenTTL:   cfg.AccessTokenTTL,
		refreshTokenTTL:  cfg.RefreshTokenTTL,
	}
}

// ValidateUsername rejects usernames outside the allowed character set and
// the reserved value "me". Exported because the CSV importer applies the
// same rule.
func ValidateUsername(username string) error {
	if username == "me" {
		return NewFieldError("username", `"me" is not allowed as a username`)
	}
	if !UsernamePattern.MatchString(username) {
		return NewFieldError("username", "username may contain only letters, digits and . @ + - _")
	}
	return nil
}

func (s *accountService) SignUp(ctx context.Context, username, email string) (*models.User, error) {
	if err := ValidateUsername(username); err != nil {
		return nil, err
	}

	existing, err := s.userRepo.FindByUsername(ctx, username)
	switch {
	case err == nil:
		if existing.Email != email {
			return nil, ErrUsernameTaken
		}
		// Same (username, email) pair: idempotent re-registration, the
		// caller just gets a fresh code.
		s.deliverConfirmationCode(ctx, existing)
		return existing, nil
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, err
	}

	if _, err := s.userRepo.FindByEmail(ctx, email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	user := &models.User{
		Username: username,
		Email:    email,
		Role:     models.RoleUser,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		// A concurrent signup may win the uniqueness race; report the
		// conflicting field just as the fast path would.
		if repository.IsUniqueViolation(err, "users_username_key") {
			return nil, ErrUsernameTaken
		}
		if repository.IsUniqueViolation(err, "users_email_key") {
			return nil, ErrEmailTaken
		}
		return nil, err
	}

	s.deliverConfirmationCode(ctx, user)
	return user, nil
}

// deliverConfirmationCode issues a fresh code and mails it without blocking
// the request. Email failure is logged and swallowed: registration already
// succeeded once the account row exists.
func (s *accountService) deliverConfirmationCode(ctx context.Context, user *models.User) {
	code, err := s.codes.Issue(ctx, user.Username)
	if err != nil {
		s.logger.Error("failed to issue confirmation code",
			"username", user.Username, "error", err)
		return
	}

	go func() {
		body := fmt.Sprintf("Your confirmation code: %s", code)
		if err := s.mail.Send(user.Email, confirmationEmailSubject, body); err != nil {
			s.logger.Warn("confirmation email delivery failed",
				"username", user.Username, "error", err)
		}
	}()
}

func (s *accountService) IssueTokens(ctx context.Context, username, code string) (*dto.TokenResponse, error) {
	user, err := s.userRepo.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	ok, err := s.codes.Verify(ctx, username, code)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrInvalidCode
	}

	accessToken, err := s.generateAccessToken(user)
	if err != nil {
		return nil, err
	}
	refreshToken, err := s.generateRefreshToken(ctx, user)
	if err != nil {
		return nil, err
	}

	return &dto.TokenResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "Bearer",
		ExpiresIn:    int64(s.accessTokenTTL.Seconds()),
	}, nil
}

func (s *accountService) generateAccessToken(user *models.User) (string, error) {
	now := time.Now()
	claims := &Claims{
		UserID:   user.ID,
		Username: user.Username,
		Role:     string(user.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(s.accessTokenTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.jwtSecret))
}

func (s *accountService) generateRefreshToken(ctx context.Context, user *models.User) (string, error) {
	refreshToken := &models.RefreshToken{
		ID:        uuid.New().String(),
		UserID:    user.ID,
		Token:     uuid.New().String(),
		ExpiresAt: time.Now().Add(s.refreshTokenTTL),
	}
	if err := s.refreshTokenRepo.Create(ctx, refreshToken); err != nil {
		return "", err
	}
	return refreshToken.Token, nil
}

func (s *accountService) RefreshAccessToken(ctx context.Context, refreshTokenString string) (string, error) {
	refreshToken, err := s.refreshTokenRepo.FindByToken(ctx, refreshTokenString)
	if err != nil {
		return "", ErrInvalidRefresh
	}
	if refreshToken.Revoked {
		return "", ErrInvalidRefresh
	}
	if time.Now().After(refreshToken.ExpiresAt) {
		if err := s.refreshTokenRepo.Delete(ctx, refreshToken.ID); err != nil {
			s.logger.Warn("failed to delete expired refresh token", "error", err)
		}
		return "", ErrInvalidRefresh
	}

	user, err := s.userRepo.FindByID(ctx, refreshToken.UserID)
	if err != nil {
		return "", ErrInvalidRefresh
	}
	return s.generateAccessToken(user)
}

func (s *accountService) RevokeRefreshToken(ctx context.Context, refreshTokenString string) error {
	refreshToken, err := s.refreshTokenRepo.FindByToken(ctx, refreshTokenString)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return err
	}
	return s.refreshTokenRepo.Revoke(ctx, refreshToken.ID)
}

func (s *accountService) ValidateAccessToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid signing method")
		}
		return []byte(s.jwtSecret), nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

func (s *accountService) AccessTokenTTL() time.Duration {
	return s.accessTokenTTL
}

func (s *accountService) GetProfile(ctx context.Context, userID int64) (*models.User, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return user, nil
}

func (s *accountService) UpdateProfile(ctx context.Context, userID int64, patch dto.UpdateMeDTO) (*models.User, error) {
	user, err := s.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	applyProfilePatch(user, patch.Email, patch.FirstName, patch.LastName, patch.Bio)

	if err := s.userRepo.Update(ctx, user); err != nil {
		if repository.IsUniqueViolation(err, "users_email_key") {
			return nil, ErrEmailTaken
		}
		return nil, err
	}
	return user, nil
}

func (s *accountService) ListUsers(ctx context.Context, search string, page, pageSize int) ([]models.User, int64, error) {
	return s.userRepo.List(ctx, search, page, pageSize)
}

// CreateUser is the admin-side create. Unlike SignUp it may set any role and
// never emails a confirmation code.
func (s *accountService) CreateUser(ctx context.Context, req dto.CreateUserDTO) (*models.User, error) {
	if err := ValidateUsername(req.Username); err != nil {
		return nil, err
	}

	role := models.RoleUser
	if req.Role != "" {
		parsed, err := models.ParseRole(req.Role)
		if err != nil {
			return nil, NewFieldError("role", "role must be one of: user, moderator, admin")
		}
		role = parsed
	}

	user := &models.User{
		Username:  req.Username,
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Bio:       req.Bio,
		Role:      role,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if repository.IsUniqueViolation(err, "users_username_key") {
			return nil, ErrUsernameTaken
		}
		if repository.IsUniqueViolation(err, "users_email_key") {
			return nil, ErrEmailTaken
		}
		return nil, err
	}
	return user, nil
}

func (s *accountService) GetUser(ctx context.Context, username string) (*models.User, error) {
	user, err := s.userRepo.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return user, nil
}

func (s *accountService) UpdateUser(ctx context.Context, username string, patch dto.UpdateUserDTO) (*models.User, error) {
	user, err := s.GetUser(ctx, username)
	if err != nil {
		return nil, err
	}

	applyProfilePatch(user, patch.Email, patch.FirstName, patch.LastName, patch.Bio)
	if patch.Role != nil {
		role, err := models.ParseRole(*patch.Role)
		if err != nil {
			return nil, NewFieldError("role", "role must be one of: user, moderator, admin")
		}
		user.Role = role
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		if repository.IsUniqueViolation(err, "users_email_key") {
			return nil, ErrEmailTaken
		}
		return nil, err
	}
	return user, nil
}

func (s *accountService) DeleteUser(ctx context.Context, username string) error {
	user, err := s.GetUser(ctx, username)
	if err != nil {
		return err
	}
	return s.userRepo.Delete(ctx, user)
}

func applyProfilePatch(user *models.User, email, firstName, lastName, bio *string) {
	if email != nil {
		user.Email = *email
	}
	if firstName != nil {
		user.FirstName = *firstName
	}
	if lastName != nil {
		user.LastName = *lastName
	}
	if bio != nil {
		user.Bio = *bio
	}
}
