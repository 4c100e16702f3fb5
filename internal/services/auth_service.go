package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"etalase/internal/models"
	"etalase/internal/repositories"

	"github.com/dgrijalva/jwt-go"
	"golang.org/x/crypto/bcrypt"
)

// AuthService handles admin authentication and authorization.
type AuthService struct {
	adminRepo  repositories.AdminRepository
	jwtSecret  []byte
	tokenDurat time.Duration // Duration for which JWT is valid
}

// NewAuthService creates a new AuthService. A non-positive ttl falls back to 24 hours.
func NewAuthService(adminRepo repositories.AdminRepository, jwtSecret string, ttl time.Duration) *AuthService {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &AuthService{
		adminRepo:  adminRepo,
		jwtSecret:  []byte(jwtSecret),
		tokenDurat: ttl,
	}
}

// EnsureAdmin creates the admin account unless the username already exists.
func (s *AuthService) EnsureAdmin(ctx context.Context, username, password string) error {
	_, err := s.adminRepo.GetByUsername(ctx, username)
	if err == nil {
		return nil
	}
	if !errors.Is(err, models.ErrNotFound) {
		return err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	admin := &models.Admin{Username: username, Password: string(hashedPassword)}
	if err := s.adminRepo.Create(ctx, admin); err != nil {
		return fmt.Errorf("failed to seed admin %s: %w", username, err)
	}
	log.Printf("Seeded admin account %s", username)
	return nil
}

// Verify checks a username/password pair against the stored hash.
func (s *AuthService) Verify(ctx context.Context, username, password string) (models.Identity, error) {
	admin, err := s.adminRepo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return models.Identity{}, fmt.Errorf("invalid credentials: %w", models.ErrUnauthorized)
		}
		return models.Identity{}, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(admin.Password), []byte(password)); err != nil {
		return models.Identity{}, fmt.Errorf("invalid credentials: %w", models.ErrUnauthorized)
	}
	return models.Identity{AdminID: admin.ID, Username: admin.Username}, nil
}

// Login verifies the credentials and returns a signed JWT.
func (s *AuthService) Login(ctx context.Context, username, password string) (string, error) {
	identity, err := s.Verify(ctx, username, password)
	if err != nil {
		return "", err
	}

	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"admin_id": identity.AdminID,
		"username": identity.Username,
		"exp":      now.Add(s.tokenDurat).Unix(),
		"iat":      now.Unix(),
	})

	tokenString, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return tokenString, nil
}

// Authorize parses and validates a JWT and confirms the admin it was issued
// to still exists.
func (s *AuthService) Authorize(ctx context.Context, tokenString string) (models.Identity, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		log.Printf("Token validation error: %v", err)
		return models.Identity{}, fmt.Errorf("invalid token: %v: %w", err, models.ErrUnauthorized)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return models.Identity{}, fmt.Errorf("invalid token: %w", models.ErrUnauthorized)
	}
	adminID, _ := claims["admin_id"].(string)
	if adminID == "" {
		return models.Identity{}, fmt.Errorf("invalid token: missing admin_id: %w", models.ErrUnauthorized)
	}

	admin, err := s.adminRepo.GetByID(ctx, adminID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return models.Identity{}, fmt.Errorf("token admin %s no longer exists: %w", adminID, models.ErrUnauthorized)
		}
		return models.Identity{}, err
	}
	return models.Identity{AdminID: admin.ID, Username: admin.Username}, nil
}
