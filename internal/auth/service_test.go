package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eventbook/internal/shared/config"
	"eventbook/internal/users"
)

type fakeUserRepo struct {
	byEmail map[string]*users.User
	byID    map[uint]*users.User
	nextID  uint
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{
		byEmail: make(map[string]*users.User),
		byID:    make(map[uint]*users.User),
	}
}

func (f *fakeUserRepo) CreateUser(ctx context.Context, user *users.User) error {
	f.nextID++
	user.ID = f.nextID
	f.byEmail[user.Email] = user
	f.byID[user.ID] = user
	return nil
}

func (f *fakeUserRepo) GetUserByEmail(ctx context.Context, email string) (*users.User, error) {
	user, ok := f.byEmail[email]
	if !ok {
		return nil, ErrUserNotFound
	}
	return user, nil
}

func (f *fakeUserRepo) GetUserByID(ctx context.Context, id uint) (*users.User, error) {
	user, ok := f.byID[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	return user, nil
}

func (f *fakeUserRepo) UpdateUserPassword(ctx context.Context, userID uint, hashedPassword string) error {
	user, ok := f.byID[userID]
	if !ok {
		return ErrUserNotFound
	}
	user.Password = hashedPassword
	return nil
}

func (f *fakeUserRepo) EmailExists(ctx context.Context, email string) (bool, error) {
	_, ok := f.byEmail[email]
	return ok, nil
}

func testAuthConfig() *config.Config {
	return &config.Config{
		JWT: config.JWTConfig{
			Secret:           "test-secret",
			JWTExpiresIn:     15 * time.Minute,
			RefreshExpiresIn: 24 * time.Hour,
		},
	}
}

func TestRegisterAndLogin(t *testing.T) {
	svc := NewService(newFakeUserRepo(), testAuthConfig())

	registered, err := svc.Register(context.Background(), &RegisterRequest{
		Name:     "Alice Carter",
		Email:    "alice@example.com",
		Password: "password123",
	})
	require.NoError(t, err)
	assert.Equal(t, "USER", registered.User.Role)
	assert.NotEmpty(t, registered.AccessToken)
	assert.NotEmpty(t, registered.RefreshToken)

	loggedIn, err := svc.Login(context.Background(), &LoginRequest{
		Email:    "alice@example.com",
		Password: "password123",
	})
	require.NoError(t, err)
	assert.Equal(t, registered.User.ID, loggedIn.User.ID)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc := NewService(newFakeUserRepo(), testAuthConfig())

	_, err := svc.Register(context.Background(), &RegisterRequest{
		Name: "Alice", Email: "alice@example.com", Password: "password123",
	})
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), &RegisterRequest{
		Name: "Also Alice", Email: "alice@example.com", Password: "password456",
	})
	assert.ErrorIs(t, err, ErrUserAlreadyExists)
}

func TestRegisterNormalizesRole(t *testing.T) {
	svc := NewService(newFakeUserRepo(), testAuthConfig())

	resp, err := svc.Register(context.Background(), &RegisterRequest{
		Name: "Root", Email: "root@example.com", Password: "password123", Role: "admin",
	})
	require.NoError(t, err)
	assert.Equal(t, "ADMIN", resp.User.Role)

	resp, err = svc.Register(context.Background(), &RegisterRequest{
		Name: "Odd", Email: "odd@example.com", Password: "password123", Role: "superuser",
	})
	require.NoError(t, err)
	assert.Equal(t, "USER", resp.User.Role)
}

func TestLoginWrongPassword(t *testing.T) {
	svc := NewService(newFakeUserRepo(), testAuthConfig())

	_, err := svc.Register(context.Background(), &RegisterRequest{
		Name: "Alice", Email: "alice@example.com", Password: "password123",
	})
	require.NoError(t, err)

	_, err = svc.Login(context.Background(), &LoginRequest{
		Email: "alice@example.com", Password: "wrong",
	})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(context.Background(), &LoginRequest{
		Email: "nobody@example.com", Password: "password123",
	})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAccessTokenClaims(t *testing.T) {
	svc := NewService(newFakeUserRepo(), testAuthConfig())

	resp, err := svc.Register(context.Background(), &RegisterRequest{
		Name: "Alice", Email: "alice@example.com", Password: "password123",
	})
	require.NoError(t, err)

	claims, err := svc.ValidateToken(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, claims.UserID)
	assert.Equal(t, "alice@example.com", claims.Email)
	assert.Equal(t, "access", claims.Type)
	assert.Equal(t, "eventbook", claims.Issuer)
}

func TestRefreshTokenFlow(t *testing.T) {
	svc := NewService(newFakeUserRepo(), testAuthConfig())

	resp, err := svc.Register(context.Background(), &RegisterRequest{
		Name: "Alice", Email: "alice@example.com", Password: "password123",
	})
	require.NoError(t, err)

	pair, err := svc.RefreshToken(context.Background(), resp.RefreshToken)
	require.NoError(t, err)
	assert.NotEmpty(t, pair.AccessToken)

	// An access token must not work as a refresh token.
	_, err = svc.RefreshToken(context.Background(), resp.AccessToken)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestChangePassword(t *testing.T) {
	svc := NewService(newFakeUserRepo(), testAuthConfig())

	resp, err := svc.Register(context.Background(), &RegisterRequest{
		Name: "Alice", Email: "alice@example.com", Password: "password123",
	})
	require.NoError(t, err)

	err = svc.ChangePassword(context.Background(), resp.User.ID, &ChangePasswordRequest{
		CurrentPassword: "wrong",
		NewPassword:     "newpassword",
	})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	err = svc.ChangePassword(context.Background(), resp.User.ID, &ChangePasswordRequest{
		CurrentPassword: "password123",
		NewPassword:     "newpassword",
	})
	require.NoError(t, err)

	_, err = svc.Login(context.Background(), &LoginRequest{
		Email: "alice@example.com", Password: "newpassword",
	})
	assert.NoError(t, err)
}
