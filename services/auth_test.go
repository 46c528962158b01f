package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"studio_site_go/models"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

const testTokenSecret = "test-secret-that-is-long-enough-for-hs256"

func createTestAdmin(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()
	user, err := CreateAdminUser(context.Background(), db, "Nuro", "Admin@Example.com", "SecretPass123!")
	assert.NoError(t, err)
	return user
}

func TestPasswordHashing(t *testing.T) {
	password := "SecretPass123!"

	hash, err := HashPassword(password)
	assert.NoError(t, err)
	assert.NotEmpty(t, hash)
	assert.NotEqual(t, password, hash)

	assert.True(t, CheckPassword(password, hash))
	assert.False(t, CheckPassword("WrongPass", hash))
}

func TestCreateAdminUser(t *testing.T) {
	db := setupAvailabilityTestDB()
	ctx := context.Background()

	user := createTestAdmin(t, db)
	assert.Equal(t, "admin@example.com", user.Email)
	assert.True(t, user.IsActive)
	assert.NotEqual(t, "SecretPass123!", user.PasswordHash)

	t.Run("Duplicate", func(t *testing.T) {
		_, err := CreateAdminUser(ctx, db, "Other", "admin@example.com", "AnotherPass1!")
		assert.True(t, IsValidationError(err))
	})

	t.Run("ShortPassword", func(t *testing.T) {
		_, err := CreateAdminUser(ctx, db, "Other", "other@example.com", "short")
		assert.True(t, IsValidationError(err))
	})

	t.Run("BadEmail", func(t *testing.T) {
		_, err := CreateAdminUser(ctx, db, "Other", "not-an-email", "LongEnough1!")
		assert.True(t, IsValidationError(err))
	})
}

func TestAuthenticate(t *testing.T) {
	db := setupAvailabilityTestDB()
	ctx := context.Background()
	created := createTestAdmin(t, db)

	t.Run("Success", func(t *testing.T) {
		user, err := Authenticate(ctx, db, " ADMIN@example.com ", "SecretPass123!")
		assert.NoError(t, err)
		assert.Equal(t, created.ID, user.ID)
		assert.NotNil(t, user.LastLoginAt)
	})

	t.Run("WrongPassword", func(t *testing.T) {
		_, err := Authenticate(ctx, db, "admin@example.com", "nope")
		assert.True(t, errors.Is(err, ErrInvalidCredentials))
	})

	t.Run("UnknownEmail", func(t *testing.T) {
		_, err := Authenticate(ctx, db, "ghost@example.com", "SecretPass123!")
		assert.True(t, errors.Is(err, ErrInvalidCredentials))
	})

	t.Run("InactiveUser", func(t *testing.T) {
		db.Model(&models.User{}).Where("id = ?", created.ID).Update("is_active", false)
		_, err := Authenticate(ctx, db, "admin@example.com", "SecretPass123!")
		assert.True(t, errors.Is(err, ErrInvalidCredentials))
	})
}

func TestIssueAndVerifyAccessToken(t *testing.T) {
	db := setupAvailabilityTestDB()
	ctx := context.Background()
	user := createTestAdmin(t, db)
	verifier := NewJWTVerifier(db, testTokenSecret, "studio-site")

	t.Run("RoundTrip", func(t *testing.T) {
		issued, err := IssueAccessToken(user, testTokenSecret, "studio-site", time.Hour, time.Now())
		assert.NoError(t, err)
		assert.NotEmpty(t, issued.Token)
		assert.WithinDuration(t, time.Now().Add(time.Hour), issued.ExpiresAt, 5*time.Second)

		got, err := verifier.Verify(ctx, issued.Token)
		assert.NoError(t, err)
		assert.Equal(t, user.ID, got.ID)
	})

	t.Run("Expired", func(t *testing.T) {
		issued, err := IssueAccessToken(user, testTokenSecret, "studio-site", time.Minute, time.Now().Add(-2*time.Hour))
		assert.NoError(t, err)

		_, err = verifier.Verify(ctx, issued.Token)
		assert.True(t, errors.Is(err, ErrUnauthorized))
	})

	t.Run("WrongSecret", func(t *testing.T) {
		issued, err := IssueAccessToken(user, "some-other-secret-of-sufficient-length", "studio-site", time.Hour, time.Now())
		assert.NoError(t, err)

		_, err = verifier.Verify(ctx, issued.Token)
		assert.True(t, errors.Is(err, ErrUnauthorized))
	})

	t.Run("WrongIssuer", func(t *testing.T) {
		issued, err := IssueAccessToken(user, testTokenSecret, "someone-else", time.Hour, time.Now())
		assert.NoError(t, err)

		_, err = verifier.Verify(ctx, issued.Token)
		assert.True(t, errors.Is(err, ErrUnauthorized))
	})

	t.Run("Tampered", func(t *testing.T) {
		issued, err := IssueAccessToken(user, testTokenSecret, "studio-site", time.Hour, time.Now())
		assert.NoError(t, err)

		_, err = verifier.Verify(ctx, issued.Token+"x")
		assert.True(t, errors.Is(err, ErrUnauthorized))
	})

	t.Run("NoneAlgorithm", func(t *testing.T) {
		claims := AccessClaims{RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			Issuer:    "studio-site",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		}}
		unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
		assert.NoError(t, err)

		_, err = verifier.Verify(ctx, unsigned)
		assert.True(t, errors.Is(err, ErrUnauthorized))
	})

	t.Run("UnknownUser", func(t *testing.T) {
		ghost := &models.User{ID: "00000000-0000-0000-0000-000000000000", Email: "ghost@example.com"}
		issued, err := IssueAccessToken(ghost, testTokenSecret, "studio-site", time.Hour, time.Now())
		assert.NoError(t, err)

		_, err = verifier.Verify(ctx, issued.Token)
		assert.True(t, errors.Is(err, ErrUnauthorized))
	})

	t.Run("Empty", func(t *testing.T) {
		_, err := verifier.Verify(ctx, "")
		assert.True(t, errors.Is(err, ErrUnauthorized))
	})

	// Deactivation revokes tokens already issued
	t.Run("DeactivatedUser", func(t *testing.T) {
		issued, err := IssueAccessToken(user, testTokenSecret, "studio-site", time.Hour, time.Now())
		assert.NoError(t, err)
		db.Model(&models.User{}).Where("id = ?", user.ID).Update("is_active", false)

		_, err = verifier.Verify(ctx, issued.Token)
		assert.True(t, errors.Is(err, ErrUnauthorized))
	})
}

func TestIssueAccessTokenRequiresSecret(t *testing.T) {
	_, err := IssueAccessToken(&models.User{ID: "u"}, "", "studio-site", time.Hour, time.Now())
	assert.True(t, errors.Is(err, ErrNotConfigured))
}
