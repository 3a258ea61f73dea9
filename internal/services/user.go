package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"photoshare-backend/internal/apperror"
	"photoshare-backend/internal/models"
	"photoshare-backend/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

const (
	minPasswordLength = 6
	maxPasswordLength = 72 // bcrypt input limit
	searchLimit       = 20
)

// Claims is the payload of a session token
type Claims struct {
	UserID int64 `json:"user_id"`
	jwt.RegisteredClaims
}

// UserService handles accounts, sessions and user lookup
type UserService struct {
	users     UserStore
	jwtSecret []byte
	tokenTTL  time.Duration
}

// NewUserService creates a new user service
func NewUserService(users UserStore, jwtSecret string, tokenTTL time.Duration) *UserService {
	return &UserService{
		users:     users,
		jwtSecret: []byte(jwtSecret),
		tokenTTL:  tokenTTL,
	}
}

// TokenTTL is how long issued session tokens stay valid
func (s *UserService) TokenTTL() time.Duration {
	return s.tokenTTL
}

// Register creates an account with a bcrypt hashed password
func (s *UserService) Register(ctx context.Context, username, password string) (*models.User, error) {
	username = strings.TrimSpace(username)
	if !usernameRegex.MatchString(username) {
		return nil, apperror.InvalidInput("Username must be 3-32 letters, digits, '.', '_' or '-'")
	}
	if len(password) < minPasswordLength || len(password) > maxPasswordLength {
		return nil, apperror.InvalidInput(fmt.Sprintf("Password must be %d-%d characters", minPasswordLength, maxPasswordLength))
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperror.Unexpected(err, "failed to hash password")
	}

	user := models.NewUser(username, string(hash))
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperror.InvalidInput("Username already taken")
		}
		return nil, apperror.Unexpected(err, "failed to create user")
	}

	return user, nil
}

// Login checks credentials and returns the account
func (s *UserService) Login(ctx context.Context, username, password string) (*models.User, error) {
	user, err := s.users.GetByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		return nil, apperror.Unexpected(err, "failed to get user")
	}
	if user == nil {
		return nil, apperror.Unauthenticated("Invalid username or password")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, apperror.Unauthenticated("Invalid username or password")
	}

	return user, nil
}

// GenerateJWT generates a session token for a user
func (s *UserService) GenerateJWT(userID int64) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return tokenString, nil
}

// ValidateJWT validates a session token and returns the user ID
func (s *UserService) ValidateJWT(tokenString string) (int64, error) {
	var claims Claims
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to parse token: %w", err)
	}

	if !token.Valid {
		return 0, fmt.Errorf("invalid token")
	}
	if claims.UserID <= 0 {
		return 0, fmt.Errorf("user_id not found in token")
	}

	return claims.UserID, nil
}

// GetUser returns a user or a NotFound error
func (s *UserService) GetUser(ctx context.Context, id int64) (*models.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, apperror.Unexpected(err, "failed to get user")
	}
	if user == nil {
		return nil, apperror.NotFound("User not found")
	}
	return user, nil
}

// Search finds users by partial, case-insensitive username, never returning the caller
func (s *UserService) Search(ctx context.Context, callerID int64, query string) ([]*models.User, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []*models.User{}, nil
	}

	users, err := s.users.Search(ctx, query, callerID, searchLimit)
	if err != nil {
		return nil, apperror.Unexpected(err, "failed to search users")
	}
	return users, nil
}

// UpdatePushToken stores the device token used for push notifications. An empty token clears it.
func (s *UserService) UpdatePushToken(ctx context.Context, userID int64, token string) error {
	var pushToken *string
	if token = strings.TrimSpace(token); token != "" {
		pushToken = &token
	}

	if err := s.users.UpdatePushToken(ctx, userID, pushToken); err != nil {
		return apperror.Unexpected(err, "failed to update push token")
	}
	return nil
}
