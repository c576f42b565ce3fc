package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"usermgmt/internal/models"
	"usermgmt/internal/repositories"

	"github.com/dgrijalva/jwt-go"
)

// CredentialVerifier confirms that a candidate secret matches the stored credential of an account.
// Unknown accounts and wrong secrets both report false without an error.
type CredentialVerifier interface {
	Verify(ctx context.Context, email, candidate string) (bool, error)
}

// AuthService handles credential checks and token issuance.
type AuthService struct {
	userRepo   repositories.UserRepository
	hasher     PasswordHasher
	jwtSecret  []byte
	tokenDurat time.Duration // Duration for which JWT is valid
}

// NewAuthService creates a new AuthService.
func NewAuthService(userRepo repositories.UserRepository, hasher PasswordHasher, jwtSecret string, tokenTTL time.Duration) *AuthService {
	if tokenTTL <= 0 {
		tokenTTL = 24 * time.Hour
	}
	return &AuthService{
		userRepo:   userRepo,
		hasher:     hasher,
		jwtSecret:  []byte(jwtSecret),
		tokenDurat: tokenTTL,
	}
}

// Verify implements CredentialVerifier.
func (s *AuthService) Verify(ctx context.Context, email, candidate string) (bool, error) {
	user, err := s.lookup(ctx, email)
	if err != nil || user == nil {
		return false, err
	}
	return s.hasher.Compare(user.Password, candidate), nil
}

// lookup returns nil without error for an unknown email.
func (s *AuthService) lookup(ctx context.Context, email string) (*models.User, error) {
	user, err := s.userRepo.GetByEmail(ctx, email)
	if errors.Is(err, repositories.ErrUserNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up credentials: %w", err)
	}
	return user, nil
}

// Login authenticates a user and returns a JWT token if successful.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, error) {
	user, err := s.lookup(ctx, email)
	if err != nil {
		return "", callFailure("login", err)
	}
	// Do not reveal whether the email exists.
	if user == nil || !s.hasher.Compare(user.Password, password) {
		return "", ErrInvalidCredentials
	}

	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": user.ID,
		"email":   user.Email,
		"exp":     now.Add(s.tokenDurat).Unix(),
		"iat":     now.Unix(),
	})

	tokenString, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return tokenString, nil
}

// ValidateToken parses and validates a JWT token, returning the claims if valid.
func (s *AuthService) ValidateToken(tokenString string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		log.Printf("Token validation error: %v", err)
		return nil, fmt.Errorf("invalid token: %w", err)
	}

	if claims, ok := token.Claims.(jwt.MapClaims); ok && token.Valid {
		return claims, nil
	}
	return nil, fmt.Errorf("invalid token")
}
