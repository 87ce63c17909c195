package services

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/zaqqye/hotel_backend/internal/apperror"
	"github.com/zaqqye/hotel_backend/internal/models"
	"github.com/zaqqye/hotel_backend/internal/store"
	"github.com/zaqqye/hotel_backend/internal/store/filestore"
	"github.com/zaqqye/hotel_backend/internal/utils"
)

func fastHash(plain string) (string, error) {
	return utils.HashPasswordCost(plain, bcrypt.MinCost)
}

func newAuth(t *testing.T) (*AuthService, *store.Store) {
	t.Helper()
	s := filestore.Open(t.TempDir(), nil, nil)
	svc := NewAuthService(s.Users, NewTokenManager("test-secret", time.Hour))
	svc.hash = fastHash
	return svc, s
}

var ada = RegisterInput{Email: "Ada@Example.com", Password: "secret1", FirstName: "Ada", LastName: "Lovelace"}

func TestRegisterAndLogin(t *testing.T) {
	ctx := context.Background()
	svc, _ := newAuth(t)

	user, token, err := svc.Register(ctx, ada)
	require.NoError(t, err)
	require.NotEmpty(t, token)
	require.Equal(t, models.RoleGuest, user.Role)
	require.True(t, user.IsActive)
	require.Nil(t, user.Phone)
	require.NotEqual(t, ada.Password, user.Password)

	_, _, err = svc.Register(ctx, RegisterInput{Email: "ada@EXAMPLE.com", Password: "secret2", FirstName: "Ada", LastName: "Byron"})
	require.EqualError(t, err, MsgEmailTaken)
	require.Equal(t, apperror.CodeConflict, apperror.CodeOf(err))

	logged, token, err := svc.Login(ctx, LoginInput{Email: "ADA@example.com", Password: "secret1"})
	require.NoError(t, err)
	require.NotNil(t, logged.LastLogin)
	require.Equal(t, user.ID, logged.ID)

	current, err := svc.CurrentUser(ctx, token)
	require.NoError(t, err)
	require.Equal(t, user.ID, current.ID)
	require.NotNil(t, current.LastLogin)
}

func TestLoginFailures(t *testing.T) {
	ctx := context.Background()
	svc, s := newAuth(t)
	user, _, err := svc.Register(ctx, ada)
	require.NoError(t, err)

	_, _, err = svc.Login(ctx, LoginInput{Email: "nobody@example.com", Password: "secret1"})
	require.EqualError(t, err, MsgInvalidCredentials)
	require.Equal(t, apperror.CodeUnauthorized, apperror.CodeOf(err))

	_, _, err = svc.Login(ctx, LoginInput{Email: ada.Email, Password: "wrong-password"})
	require.EqualError(t, err, MsgInvalidCredentials)

	_, err = s.Users.Update(ctx, user.ID, func(u *models.User) error {
		u.IsActive = false
		return nil
	})
	require.NoError(t, err)
	_, _, err = svc.Login(ctx, LoginInput{Email: ada.Email, Password: ada.Password})
	require.EqualError(t, err, MsgAccountDeactivated)

	_, _, err = svc.Login(ctx, LoginInput{Email: "not-an-email", Password: "x"})
	require.Equal(t, apperror.CodeValidation, apperror.CodeOf(err))
}

func TestCurrentUserRejects(t *testing.T) {
	ctx := context.Background()
	svc, s := newAuth(t)
	user, token, err := svc.Register(ctx, ada)
	require.NoError(t, err)

	for _, bad := range []string{"", "garbage", token + "x"} {
		_, err := svc.CurrentUser(ctx, bad)
		require.Equal(t, apperror.CodeUnauthorized, apperror.CodeOf(err), "token %q", bad)
	}

	other := NewTokenManager("another-secret", time.Hour)
	forged, err := other.Issue(user)
	require.NoError(t, err)
	_, err = svc.CurrentUser(ctx, forged)
	require.EqualError(t, err, "Invalid token")

	deleted, err := s.Users.Delete(ctx, user.ID)
	require.NoError(t, err)
	require.True(t, deleted)
	_, err = svc.CurrentUser(ctx, token)
	require.Equal(t, apperror.CodeUnauthorized, apperror.CodeOf(err))
}

func TestTokenClaimsAndExpiry(t *testing.T) {
	m := NewTokenManager("test-secret", 7*24*time.Hour)
	issued := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return issued }

	user := models.User{ID: "u1", Email: "ada@example.com", Role: models.RoleAdmin}
	token, err := m.Issue(user)
	require.NoError(t, err)

	claims, err := m.Parse(token)
	require.NoError(t, err)
	require.Equal(t, "u1", claims.UserID)
	require.Equal(t, models.RoleAdmin, claims.Role)
	require.Equal(t, "ada@example.com", claims.Email)
	require.Equal(t, TokenIssuer, claims.Issuer)
	require.Equal(t, issued.Add(7*24*time.Hour), claims.ExpiresAt.Time.UTC())

	// raw claim names on the wire
	raw := jwt.MapClaims{}
	_, _, err = jwt.NewParser().ParseUnverified(token, raw)
	require.NoError(t, err)
	require.Equal(t, "u1", raw["userId"])
	require.Contains(t, raw, "iat")
	require.Contains(t, raw, "exp")

	m.now = func() time.Time { return issued.Add(8 * 24 * time.Hour) }
	_, err = m.Parse(token)
	require.EqualError(t, err, "Token expired")
}

func TestTokenRejectsOtherAlgorithms(t *testing.T) {
	m := NewTokenManager("test-secret", time.Hour)
	claims := Claims{UserID: "u1", RegisteredClaims: jwt.RegisteredClaims{
		Issuer:    TokenIssuer,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	_, err = m.Parse(token)
	require.EqualError(t, err, "Invalid token")
}

func TestUpdateProfileKeepsEmptyFields(t *testing.T) {
	ctx := context.Background()
	svc, _ := newAuth(t)
	in := ada
	in.Phone = "+1-555-0100"
	user, _, err := svc.Register(ctx, in)
	require.NoError(t, err)

	updated, err := svc.UpdateProfile(ctx, user.ID, ProfileInput{FirstName: "Augusta"})
	require.NoError(t, err)
	require.Equal(t, "Augusta", updated.FirstName)
	require.Equal(t, "Lovelace", updated.LastName)
	require.Equal(t, "+1-555-0100", *updated.Phone)

	_, err = svc.UpdateProfile(ctx, "missing", ProfileInput{FirstName: "Nobody"})
	require.EqualError(t, err, MsgUserNotFound)

	_, err = svc.UpdateProfile(ctx, user.ID, ProfileInput{LastName: "L"})
	require.Equal(t, apperror.CodeValidation, apperror.CodeOf(err))
}
