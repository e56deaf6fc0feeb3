package utils

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func TestGenerateAndValidateToken(t *testing.T) {
	userID := uuid.New()

	token, err := GenerateToken(userID, "teacher@school.test", "teacher", "", testSecret, time.Hour)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	userCtx, err := ValidateTokenStringToUUID(token, testSecret)
	require.NoError(t, err)

	assert.Equal(t, userID, userCtx.ID)
	assert.Equal(t, "teacher@school.test", userCtx.Email)
	assert.Equal(t, "teacher", userCtx.Role)
}

func TestValidateTokenCarriesStudentID(t *testing.T) {
	token, err := GenerateToken(uuid.New(), "s1@school.test", "student", "S1", testSecret, time.Hour)
	require.NoError(t, err)

	userCtx, err := ValidateTokenStringToUUID(token, testSecret)
	require.NoError(t, err)
	assert.Equal(t, "S1", userCtx.StudentID)
}

func TestValidateTokenStripsBearerPrefix(t *testing.T) {
	token, err := GenerateToken(uuid.New(), "a@b.test", "student", "", testSecret, time.Hour)
	require.NoError(t, err)

	_, err = ValidateTokenStringToUUID("Bearer "+token, testSecret)
	assert.NoError(t, err)
}

func TestValidateExpiredToken(t *testing.T) {
	token, err := GenerateToken(uuid.New(), "a@b.test", "student", "", testSecret, -time.Minute)
	require.NoError(t, err)

	_, err = ValidateTokenStringToUUID(token, testSecret)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestValidateTokenWrongSecret(t *testing.T) {
	token, err := GenerateToken(uuid.New(), "a@b.test", "student", "", testSecret, time.Hour)
	require.NoError(t, err)

	_, err = ValidateTokenStringToUUID(token, "other-secret")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateEmptyToken(t *testing.T) {
	_, err := ValidateTokenStringToUUID("", testSecret)
	assert.ErrorIs(t, err, ErrMissingToken)
}

func TestExtractTokenFromHeader(t *testing.T) {
	assert.Equal(t, "abc", ExtractTokenFromHeader("Bearer abc"))
	assert.Equal(t, "", ExtractTokenFromHeader(""))
	assert.Equal(t, "", ExtractTokenFromHeader("Basic abc"))
	assert.Equal(t, "", ExtractTokenFromHeader("Bearer"))
}
