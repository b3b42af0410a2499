package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccessTokenRoundTrip(t *testing.T) {
	userID := uuid.NewString()
	roleID := uuid.NewString()

	token, err := GenerateAccessToken(userID, roleID)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := VerifyToken(token)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, roleID, claims.RoleID)
	assert.Equal(t, "inkwell", claims.Issuer)
}

func TestVerifyTokenRejectsEmpty(t *testing.T) {
	_, err := VerifyToken("")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyTokenRejectsGarbage(t *testing.T) {
	_, err := VerifyToken("not.a.token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyTokenRejectsTampered(t *testing.T) {
	token, err := GenerateAccessToken(uuid.NewString(), uuid.NewString())
	require.NoError(t, err)

	_, err = VerifyToken(token + "x")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyTokenRejectsExpired(t *testing.T) {
	claims := Claims{
		UserID: uuid.NewString(),
		RoleID: uuid.NewString(),
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now().Add(-2 * time.Hour)),
			Issuer:    "inkwell",
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(jwtSecretKey)
	require.NoError(t, err)

	_, err = VerifyToken(token)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestVerifyTokenRejectsWrongSigningMethod(t *testing.T) {
	claims := Claims{UserID: uuid.NewString()}
	token, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = VerifyToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyTokenRejectsMissingUserID(t *testing.T) {
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(jwtSecretKey)
	require.NoError(t, err)

	_, err = VerifyToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestGenerateRefreshToken(t *testing.T) {
	a := GenerateRefreshToken()
	b := GenerateRefreshToken()

	_, err := uuid.Parse(a)
	assert.NoError(t, err)
	assert.NotEqual(t, a, b)
}
