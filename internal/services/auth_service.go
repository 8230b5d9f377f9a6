package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"contractors/internal/models"
	"contractors/internal/repositories"

	"github.com/dgrijalva/jwt-go"
	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"
)

// JWTOptions carries token signing configuration.
type JWTOptions struct {
	Secret        string
	Issuer        string
	Audience      string
	ExpireMinutes int
}

// AuthService handles registration, authentication and token issuance.
type AuthService struct {
	userRepo   repositories.UserRepository
	validate   *validator.Validate
	jwtOptions JWTOptions
}

// NewAuthService creates a new AuthService.
func NewAuthService(userRepo repositories.UserRepository, jwtOptions JWTOptions) *AuthService {
	return &AuthService{
		userRepo:   userRepo,
		validate:   validator.New(),
		jwtOptions: jwtOptions,
	}
}

// Register creates a new account and returns a signed bearer token.
func (s *AuthService) Register(ctx context.Context, userName, emailAddress, password string) (string, error) {
	if userName == "" || password == "" {
		return "", Unprocessable("Provided password or username is empty.")
	}

	if !s.isValidEmail(emailAddress) {
		return "", Unprocessable("Provided email address is not a valid email address.")
	}

	if _, err := s.userRepo.GetByEmail(ctx, emailAddress); err == nil {
		return "", Unprocessable("Provided email address is already in use.")
	} else if !errors.Is(err, repositories.ErrNotFound) {
		return "", Internal("Encountered an issue while registering a user.", err)
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", Internal("Encountered an issue while registering a user.", err)
	}

	user := &models.User{
		UserName:     userName,
		EmailAddress: emailAddress,
		PasswordHash: string(passwordHash),
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return "", Internal("Encountered an issue while registering a user.", err)
	}

	return s.createToken(user)
}

// Authenticate verifies credentials and returns a signed bearer token. A
// wrong email and a wrong password produce the same failure.
func (s *AuthService) Authenticate(ctx context.Context, emailAddress, password string) (string, error) {
	if emailAddress == "" || password == "" {
		return "", Unprocessable("Provided password or email address is empty.")
	}

	user, err := s.userRepo.GetByEmail(ctx, emailAddress)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return "", NotFound("Provided password or email address is invalid.")
		}
		return "", Internal("Encountered an issue while authenticating a user.", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", NotFound("Provided password or email address is invalid.")
	}

	return s.createToken(user)
}

// RemoveUser deletes the account together with its contractors and their
// additional data.
func (s *AuthService) RemoveUser(ctx context.Context, userID int) error {
	if userID < 0 {
		return NotFound("Bad user id.")
	}

	if err := s.userRepo.Delete(ctx, uint(userID)); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return NotFound("User with the provided user id could not be found.")
		}
		return Internal("Encountered an issue while removing a user.", err)
	}
	return nil
}

// ValidateToken parses and validates a JWT token, returning the claims if valid.
func (s *AuthService) ValidateToken(tokenString string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.jwtOptions.Secret), nil
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

func (s *AuthService) createToken(user *models.User) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id":  user.ID,
		"username": user.UserName,
		"iss":      s.jwtOptions.Issuer,
		"aud":      s.jwtOptions.Audience,
		"exp":      now.Add(time.Duration(s.jwtOptions.ExpireMinutes) * time.Minute).Unix(),
		"iat":      now.Unix(),
	})

	tokenString, err := token.SignedString([]byte(s.jwtOptions.Secret))
	if err != nil {
		return "", Internal("Encountered an issue while issuing a token.", err)
	}
	return tokenString, nil
}

// isValidEmail applies the structural email check: no trailing dot and a
// well-formed address.
func (s *AuthService) isValidEmail(emailAddress string) bool {
	trimmed := strings.TrimSpace(emailAddress)
	if trimmed == "" || strings.HasSuffix(trimmed, ".") {
		return false
	}
	return s.validate.Var(trimmed, "email") == nil
}
