package service

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"

	"reviewhub/internal/config"
	"reviewhub/internal/confirmation"
	"reviewhub/internal/httpapi/dto"
	"reviewhub/internal/httpapi/models"
)

// MockUserRepository mocks the UserRepository interface
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) List(ctx context.Context, search string, page, pageSize int) ([]models.User, int64, error) {
	args := m.Called(ctx, search, page, pageSize)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]models.User), args.Get(1).(int64), args.Error(2)
}

func (m *MockUserRepository) FindByID(ctx context.Context, id int64) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) Create(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) Update(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) Delete(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

// MockRefreshTokenRepository mocks the RefreshTokenRepository interface
type MockRefreshTokenRepository struct {
	mock.Mock
}

func (m *MockRefreshTokenRepository) Create(ctx context.Context, token *models.RefreshToken) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

func (m *MockRefreshTokenRepository) FindByToken(ctx context.Context, tokenString string) (*models.RefreshToken, error) {
	args := m.Called(ctx, tokenString)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.RefreshToken), args.Error(1)
}

func (m *MockRefreshTokenRepository) Revoke(ctx context.Context, tokenID string) error {
	args := m.Called(ctx, tokenID)
	return args.Error(0)
}

func (m *MockRefreshTokenRepository) Delete(ctx context.Context, tokenID string) error {
	args := m.Called(ctx, tokenID)
	return args.Error(0)
}

func (m *MockRefreshTokenRepository) DeleteExpired(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// captureMailer records sent mail; Send runs from a goroutine so access is
// guarded.
type captureMailer struct {
	mu   sync.Mutex
	sent []string
}

func (m *captureMailer) Send(to, subject, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, to)
	return nil
}

func testAccountService(userRepo *MockUserRepository, tokenRepo *MockRefreshTokenRepository) (AccountService, *confirmation.MemoryStore) {
	codes := confirmation.NewMemoryStore(time.Hour)
	cfg := &config.Config{
		JWTSecret:       "test-secret-test-secret-test-secret",
		AccessTokenTTL:  15 * time.Minute,
		RefreshTokenTTL: 7 * 24 * time.Hour,
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewAccountService(userRepo, tokenRepo, codes, &captureMailer{}, logger, cfg), codes
}

func TestSignUp_Success(t *testing.T) {
	mockUserRepo := new(MockUserRepository)
	mockTokenRepo := new(MockRefreshTokenRepository)
	accounts, _ := testAccountService(mockUserRepo, mockTokenRepo)

	mockUserRepo.On("FindByUsername", mock.Anything, "newuser").Return(nil, gorm.ErrRecordNotFound)
	mockUserRepo.On("FindByEmail", mock.Anything, "new@example.com").Return(nil, gorm.ErrRecordNotFound)
	mockUserRepo.On("Create", mock.Anything, mock.AnythingOfType("*models.User")).Return(nil)

	user, err := accounts.SignUp(context.Background(), "newuser", "new@example.com")

	assert.NoError(t, err)
	assert.NotNil(t, user)
	assert.Equal(t, "newuser", user.Username)
	assert.Equal(t, models.RoleUser, user.Role)
	mockUserRepo.AssertExpectations(t)
}

func TestSignUp_ReservedUsername(t *testing.T) {
	mockUserRepo := new(MockUserRepository)
	mockTokenRepo := new(MockRefreshTokenRepository)
	accounts, _ := testAccountService(mockUserRepo, mockTokenRepo)

	user, err := accounts.SignUp(context.Background(), "me", "me@example.com")

	assert.Error(t, err)
	assert.Nil(t, user)
	var fieldErr *FieldError
	assert.ErrorAs(t, err, &fieldErr)
	assert.Equal(t, "username", fieldErr.Field)
}

func TestSignUp_InvalidCharacters(t *testing.T) {
	mockUserRepo := new(MockUserRepository)
	mockTokenRepo := new(MockRefreshTokenRepository)
	accounts, _ := testAccountService(mockUserRepo, mockTokenRepo)

	user, err := accounts.SignUp(context.Background(), "user name!", "u@example.com")

	assert.Error(t, err)
	assert.Nil(t, user)
}

func TestSignUp_IdempotentReRegistration(t *testing.T) {
	mockUserRepo := new(MockUserRepository)
	mockTokenRepo := new(MockRefreshTokenRepository)
	accounts, _ := testAccountService(mockUserRepo, mockTokenRepo)

	existing := &models.User{ID: 7, Username: "repeat", Email: "repeat@example.com", Role: models.RoleUser}
	mockUserRepo.On("FindByUsername", mock.Anything, "repeat").Return(existing, nil)

	user, err := accounts.SignUp(context.Background(), "repeat", "repeat@example.com")

	assert.NoError(t, err)
	assert.Equal(t, existing, user)
	mockUserRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	mockUserRepo.AssertExpectations(t)
}

func TestSignUp_UsernameTaken(t *testing.T) {
	mockUserRepo := new(MockUserRepository)
	mockTokenRepo := new(MockRefreshTokenRepository)
	accounts, _ := testAccountService(mockUserRepo, mockTokenRepo)

	existing := &models.User{Username: "taken", Email: "other@example.com"}
	mockUserRepo.On("FindByUsername", mock.Anything, "taken").Return(existing, nil)

	user, err := accounts.SignUp(context.Background(), "taken", "mine@example.com")

	assert.ErrorIs(t, err, ErrUsernameTaken)
	assert.Nil(t, user)
	mockUserRepo.AssertExpectations(t)
}

func TestSignUp_EmailTaken(t *testing.T) {
	mockUserRepo := new(MockUserRepository)
	mockTokenRepo := new(MockRefreshTokenRepository)
	accounts, _ := testAccountService(mockUserRepo, mockTokenRepo)

	existing := &models.User{Username: "other", Email: "dup@example.com"}
	mockUserRepo.On("FindByUsername", mock.Anything, "fresh").Return(nil, gorm.ErrRecordNotFound)
	mockUserRepo.On("FindByEmail", mock.Anything, "dup@example.com").Return(existing, nil)

	user, err := accounts.SignUp(context.Background(), "fresh", "dup@example.com")

	assert.ErrorIs(t, err, ErrEmailTaken)
	assert.Nil(t, user)
	mockUserRepo.AssertExpectations(t)
}

func TestIssueTokens_Success(t *testing.T) {
	mockUserRepo := new(MockUserRepository)
	mockTokenRepo := new(MockRefreshTokenRepository)
	accounts, codes := testAccountService(mockUserRepo, mockTokenRepo)

	user := &models.User{ID: 42, Username: "confirmed", Email: "c@example.com", Role: models.RoleUser}
	mockUserRepo.On("FindByUsername", mock.Anything, "confirmed").Return(user, nil)
	mockTokenRepo.On("Create", mock.Anything, mock.AnythingOfType("*models.RefreshToken")).Return(nil)

	code, err := codes.Issue(context.Background(), "confirmed")
	assert.NoError(t, err)

	tokens, err := accounts.IssueTokens(context.Background(), "confirmed", code)

	assert.NoError(t, err)
	assert.NotEmpty(t, tokens.AccessToken)
	assert.NotEmpty(t, tokens.RefreshToken)
	assert.Equal(t, "Bearer", tokens.TokenType)
	assert.Equal(t, int64((15 * time.Minute).Seconds()), tokens.ExpiresIn)

	claims, err := accounts.ValidateAccessToken(tokens.AccessToken)
	assert.NoError(t, err)
	assert.Equal(t, int64(42), claims.UserID)
	assert.Equal(t, "confirmed", claims.Username)
	assert.Equal(t, string(models.RoleUser), claims.Role)
	mockUserRepo.AssertExpectations(t)
	mockTokenRepo.AssertExpectations(t)
}

func TestIssueTokens_UnknownUser(t *testing.T) {
	mockUserRepo := new(MockUserRepository)
	mockTokenRepo := new(MockRefreshTokenRepository)
	accounts, _ := testAccountService(mockUserRepo, mockTokenRepo)

	mockUserRepo.On("FindByUsername", mock.Anything, "ghost").Return(nil, gorm.ErrRecordNotFound)

	tokens, err := accounts.IssueTokens(context.Background(), "ghost", "whatever")

	// Unknown username is 404, not 400: the account must exist first.
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Nil(t, tokens)
	mockUserRepo.AssertExpectations(t)
}

func TestIssueTokens_WrongCode(t *testing.T) {
	mockUserRepo := new(MockUserRepository)
	mockTokenRepo := new(MockRefreshTokenRepository)
	accounts, codes := testAccountService(mockUserRepo, mockTokenRepo)

	user := &models.User{ID: 1, Username: "someone", Role: models.RoleUser}
	mockUserRepo.On("FindByUsername", mock.Anything, "someone").Return(user, nil)

	_, err := codes.Issue(context.Background(), "someone")
	assert.NoError(t, err)

	tokens, err := accounts.IssueTokens(context.Background(), "someone", "not-the-code")

	assert.ErrorIs(t, err, ErrInvalidCode)
	assert.Nil(t, tokens)
	mockUserRepo.AssertExpectations(t)
}

func TestIssueTokens_NoCodeIssued(t *testing.T) {
	mockUserRepo := new(MockUserRepository)
	mockTokenRepo := new(MockRefreshTokenRepository)
	accounts, _ := testAccountService(mockUserRepo, mockTokenRepo)

	user := &models.User{ID: 1, Username: "eager", Role: models.RoleUser}
	mockUserRepo.On("FindByUsername", mock.Anything, "eager").Return(user, nil)

	tokens, err := accounts.IssueTokens(context.Background(), "eager", "some-code")

	assert.ErrorIs(t, err, ErrInvalidCode)
	assert.Nil(t, tokens)
}

func TestValidateAccessToken_Expired(t *testing.T) {
	mockUserRepo := new(MockUserRepository)
	mockTokenRepo := new(MockRefreshTokenRepository)
	accounts, _ := testAccountService(mockUserRepo, mockTokenRepo)

	claims := &Claims{
		UserID:   1,
		Username: "stale",
		Role:     string(models.RoleUser),
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now().Add(-2 * time.Hour)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, _ := token.SignedString([]byte("test-secret-test-secret-test-secret"))

	validated, err := accounts.ValidateAccessToken(tokenString)

	assert.ErrorIs(t, err, ErrExpiredToken)
	assert.Nil(t, validated)
}

func TestValidateAccessToken_WrongSecret(t *testing.T) {
	mockUserRepo := new(MockUserRepository)
	mockTokenRepo := new(MockRefreshTokenRepository)
	accounts, _ := testAccountService(mockUserRepo, mockTokenRepo)

	claims := &Claims{
		UserID: 1,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, _ := token.SignedString([]byte("a-completely-different-secret-value"))

	validated, err := accounts.ValidateAccessToken(tokenString)

	assert.ErrorIs(t, err, ErrInvalidToken)
	assert.Nil(t, validated)
}

func TestRefreshAccessToken_Success(t *testing.T) {
	mockUserRepo := new(MockUserRepository)
	mockTokenRepo := new(MockRefreshTokenRepository)
	accounts, _ := testAccountService(mockUserRepo, mockTokenRepo)

	refreshToken := &models.RefreshToken{
		ID:        "token-id",
		UserID:    42,
		Token:     "refresh-token",
		ExpiresAt: time.Now().Add(24 * time.Hour),
	}
	user := &models.User{ID: 42, Username: "confirmed", Role: models.RoleUser}

	mockTokenRepo.On("FindByToken", mock.Anything, "refresh-token").Return(refreshToken, nil)
	mockUserRepo.On("FindByID", mock.Anything, int64(42)).Return(user, nil)

	accessToken, err := accounts.RefreshAccessToken(context.Background(), "refresh-token")

	assert.NoError(t, err)
	assert.NotEmpty(t, accessToken)
	mockTokenRepo.AssertExpectations(t)
	mockUserRepo.AssertExpectations(t)
}

func TestRefreshAccessToken_Expired(t *testing.T) {
	mockUserRepo := new(MockUserRepository)
	mockTokenRepo := new(MockRefreshTokenRepository)
	accounts, _ := testAccountService(mockUserRepo, mockTokenRepo)

	refreshToken := &models.RefreshToken{
		ID:        "token-id",
		UserID:    42,
		Token:     "stale-token",
		ExpiresAt: time.Now().Add(-time.Hour),
	}
	mockTokenRepo.On("FindByToken", mock.Anything, "stale-token").Return(refreshToken, nil)
	mockTokenRepo.On("Delete", mock.Anything, "token-id").Return(nil)

	accessToken, err := accounts.RefreshAccessToken(context.Background(), "stale-token")

	assert.ErrorIs(t, err, ErrInvalidRefresh)
	assert.Empty(t, accessToken)
	mockTokenRepo.AssertExpectations(t)
}

func TestRefreshAccessToken_Revoked(t *testing.T) {
	mockUserRepo := new(MockUserRepository)
	mockTokenRepo := new(MockRefreshTokenRepository)
	accounts, _ := testAccountService(mockUserRepo, mockTokenRepo)

	refreshToken := &models.RefreshToken{
		ID:        "token-id",
		UserID:    42,
		Token:     "revoked-token",
		ExpiresAt: time.Now().Add(24 * time.Hour),
		Revoked:   true,
	}
	mockTokenRepo.On("FindByToken", mock.Anything, "revoked-token").Return(refreshToken, nil)

	accessToken, err := accounts.RefreshAccessToken(context.Background(), "revoked-token")

	assert.ErrorIs(t, err, ErrInvalidRefresh)
	assert.Empty(t, accessToken)
	mockTokenRepo.AssertExpectations(t)
}

func TestRevokeRefreshToken_MarksTokenRevoked(t *testing.T) {
	mockUserRepo := new(MockUserRepository)
	mockTokenRepo := new(MockRefreshTokenRepository)
	accounts, _ := testAccountService(mockUserRepo, mockTokenRepo)

	refreshToken := &models.RefreshToken{
		ID:        "token-id",
		UserID:    42,
		Token:     "live-token",
		ExpiresAt: time.Now().Add(24 * time.Hour),
	}
	mockTokenRepo.On("FindByToken", mock.Anything, "live-token").Return(refreshToken, nil)
	mockTokenRepo.On("Revoke", mock.Anything, "token-id").Return(nil)

	err := accounts.RevokeRefreshToken(context.Background(), "live-token")

	assert.NoError(t, err)
	mockTokenRepo.AssertExpectations(t)
}

func TestRevokeRefreshToken_UnknownTokenIsNotAnError(t *testing.T) {
	mockUserRepo := new(MockUserRepository)
	mockTokenRepo := new(MockRefreshTokenRepository)
	accounts, _ := testAccountService(mockUserRepo, mockTokenRepo)

	mockTokenRepo.On("FindByToken", mock.Anything, "no-such-token").Return(nil, gorm.ErrRecordNotFound)

	err := accounts.RevokeRefreshToken(context.Background(), "no-such-token")

	assert.NoError(t, err)
	mockTokenRepo.AssertNotCalled(t, "Revoke", mock.Anything, mock.Anything)
}

func TestCreateUser_AdminSetsRole(t *testing.T) {
	mockUserRepo := new(MockUserRepository)
	mockTokenRepo := new(MockRefreshTokenRepository)
	accounts, store := testAccountService(mockUserRepo, mockTokenRepo)

	mockUserRepo.On("Create", mock.Anything, mock.AnythingOfType("*models.User")).Return(nil)

	user, err := accounts.CreateUser(context.Background(), dto.CreateUserDTO{
		Username: "newmod",
		Email:    "newmod@example.com",
		Role:     "moderator",
	})

	assert.NoError(t, err)
	assert.Equal(t, models.RoleModerator, user.Role)
	mockUserRepo.AssertExpectations(t)

	// Admin-created users get no code until they sign up themselves.
	ok, err := store.Verify(context.Background(), "newmod", "anything")
	assert.NoError(t, err)
	assert.False(t, ok)
}

func TestCreateUser_InvalidRole(t *testing.T) {
	mockUserRepo := new(MockUserRepository)
	mockTokenRepo := new(MockRefreshTokenRepository)
	accounts, _ := testAccountService(mockUserRepo, mockTokenRepo)

	user, err := accounts.CreateUser(context.Background(), dto.CreateUserDTO{
		Username: "newmod",
		Email:    "newmod@example.com",
		Role:     "superuser",
	})

	var fieldErr *FieldError
	assert.ErrorAs(t, err, &fieldErr)
	assert.Equal(t, "role", fieldErr.Field)
	assert.Nil(t, user)
	mockUserRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCreateUser_ReservedUsername(t *testing.T) {
	mockUserRepo := new(MockUserRepository)
	mockTokenRepo := new(MockRefreshTokenRepository)
	accounts, _ := testAccountService(mockUserRepo, mockTokenRepo)

	user, err := accounts.CreateUser(context.Background(), dto.CreateUserDTO{
		Username: "me",
		Email:    "me@example.com",
	})

	var fieldErr *FieldError
	assert.ErrorAs(t, err, &fieldErr)
	assert.Equal(t, "username", fieldErr.Field)
	assert.Nil(t, user)
}

func TestUpdateUser_InvalidRole(t *testing.T) {
	mockUserRepo := new(MockUserRepository)
	mockTokenRepo := new(MockRefreshTokenRepository)
	accounts, _ := testAccountService(mockUserRepo, mockTokenRepo)

	user := &models.User{ID: 3, Username: "plain", Role: models.RoleUser}
	mockUserRepo.On("FindByUsername", mock.Anything, "plain").Return(user, nil)

	badRole := "superuser"
	updated, err := accounts.UpdateUser(context.Background(), "plain", dto.UpdateUserDTO{Role: &badRole})

	assert.Error(t, err)
	assert.Nil(t, updated)
	mockUserRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestUpdateUser_PromoteToModerator(t *testing.T) {
	mockUserRepo := new(MockUserRepository)
	mockTokenRepo := new(MockRefreshTokenRepository)
	accounts, _ := testAccountService(mockUserRepo, mockTokenRepo)

	user := &models.User{ID: 3, Username: "plain", Role: models.RoleUser}
	mockUserRepo.On("FindByUsername", mock.Anything, "plain").Return(user, nil)
	mockUserRepo.On("Update", mock.Anything, mock.AnythingOfType("*models.User")).Return(nil)

	moderator := "moderator"
	updated, err := accounts.UpdateUser(context.Background(), "plain", dto.UpdateUserDTO{Role: &moderator})

	assert.NoError(t, err)
	assert.Equal(t, models.RoleModerator, updated.Role)
	mockUserRepo.AssertExpectations(t)
}
