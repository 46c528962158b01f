package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"studio_site_go/models"

	"github.com/golang-jwt/jwt/v4"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	// BcryptCost is the cost factor for bcrypt hashing
	BcryptCost = 10
	// DefaultTokenTTL is used when no token lifetime is configured
	DefaultTokenTTL = 12 * time.Hour
)

// HashPassword hashes a password using bcrypt
func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), BcryptCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(bytes), nil
}

// CheckPassword verifies a password against a hash
func CheckPassword(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

// AccessClaims are the JWT claims carried by admin bearer tokens
type AccessClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// AccessToken is a signed bearer token and its expiry
type AccessToken struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// IssueAccessToken signs an HS256 token for user
func IssueAccessToken(user *models.User, secret, issuer string, ttl time.Duration, now time.Time) (*AccessToken, error) {
	if secret == "" {
		return nil, fmt.Errorf("token secret: %w", ErrNotConfigured)
	}
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}

	expiresAt := now.Add(ttl).Truncate(time.Second)
	claims := AccessClaims{
		Email: user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			Issuer:    issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		return nil, fmt.Errorf("failed to sign token: %w", err)
	}
	return &AccessToken{Token: signed, ExpiresAt: expiresAt}, nil
}

// TokenVerifier resolves a bearer token to an active administrator
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (*models.User, error)
}

// JWTVerifier verifies HS256 tokens and loads the subject from the users table
type JWTVerifier struct {
	db     *gorm.DB
	secret []byte
	issuer string
}

// NewJWTVerifier creates a verifier; tokens from other issuers are rejected
func NewJWTVerifier(db *gorm.DB, secret, issuer string) *JWTVerifier {
	return &JWTVerifier{db: db, secret: []byte(secret), issuer: issuer}
}

// Verify returns ErrUnauthorized for any token that is not valid for an active user
func (v *JWTVerifier) Verify(ctx context.Context, token string) (*models.User, error) {
	if token == "" || len(v.secret) == 0 {
		return nil, ErrUnauthorized
	}

	claims := &AccessClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok || t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return v.secret, nil
	})
	if err != nil || !parsed.Valid {
		return nil, fmt.Errorf("%w: %v", ErrUnauthorized, err)
	}
	if claims.ExpiresAt == nil {
		return nil, fmt.Errorf("%w: token has no expiry", ErrUnauthorized)
	}
	if v.issuer != "" && !claims.VerifyIssuer(v.issuer, true) {
		return nil, fmt.Errorf("%w: unexpected issuer %q", ErrUnauthorized, claims.Issuer)
	}

	var user models.User
	err = v.db.WithContext(ctx).Where("id = ?", claims.Subject).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: unknown user", ErrUnauthorized)
		}
		return nil, upstream("database", "load user", err)
	}
	if !user.CanSignIn() {
		return nil, fmt.Errorf("%w: inactive user", ErrUnauthorized)
	}
	return &user, nil
}

// Authenticate checks an email/password pair against active users and records the login
func Authenticate(ctx context.Context, db *gorm.DB, email, password string) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	var user models.User
	err := db.WithContext(ctx).Where("email = ? AND is_active = ?", email, true).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			LogSecurityEvent("LOGIN_FAILED", "", "unknown email "+email)
			return nil, ErrInvalidCredentials
		}
		return nil, upstream("database", "load user", err)
	}

	if !CheckPassword(password, user.PasswordHash) {
		LogSecurityEvent("LOGIN_FAILED", user.ID, "wrong password")
		return nil, ErrInvalidCredentials
	}

	now := time.Now()
	if err := db.WithContext(ctx).Model(&user).Update("last_login_at", now).Error; err != nil {
		log.Printf("[WARNING] Failed to record login for user %s: %v", user.ID, err)
	} else {
		user.LastLoginAt = &now
	}

	LogSecurityEvent("LOGIN_SUCCESS", user.ID, "")
	return &user, nil
}

// CreateAdminUser stores a new active administrator with a hashed password
func CreateAdminUser(ctx context.Context, db *gorm.DB, name, email, password string) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if strings.TrimSpace(name) == "" {
		return nil, NewValidationError("name", "Name is required")
	}
	if !IsValidContactEmail(email) {
		return nil, NewValidationError("email", "Invalid email format")
	}
	if err := ValidatePassword(password); err != nil {
		return nil, err
	}

	var count int64
	if err := db.WithContext(ctx).Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return nil, upstream("database", "check user", err)
	}
	if count > 0 {
		return nil, NewValidationError("email", "A user with this email already exists")
	}

	hash, err := HashPassword(password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Name:         strings.TrimSpace(name),
		Email:        email,
		PasswordHash: hash,
		IsActive:     true,
	}
	if err := db.WithContext(ctx).Create(user).Error; err != nil {
		return nil, upstream("database", "create user", err)
	}
	return user, nil
}

// LogSecurityEvent logs security-related events
func LogSecurityEvent(eventType, userID, details string) {
	log.Printf("[SECURITY] %s | User: %s | Details: %s", eventType, userID, details)
}
