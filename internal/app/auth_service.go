package app

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"todohub/internal/model"
	"todohub/internal/pkg/jwtutil"
	"todohub/internal/repository"
)

var (
	ErrInvalidInput      = errors.New("invalid input")
	ErrUsernameExists    = errors.New("username already exists")
	ErrEmailExists       = errors.New("email already exists")
	ErrInvalidCredential = errors.New("invalid username or password")
	ErrWeakPassword      = errors.New("password does not meet strength requirements")
	ErrResetTokenInvalid = errors.New("invalid or expired reset token")
)

type AuthService struct {
	userRepo      *repository.UserRepository
	resetRepo     *repository.PasswordResetRepository
	jwtSecret     string
	jwtExpiration time.Duration
	resetTokenTTL time.Duration
}

type RegisterInput struct {
	Username string
	Email    string
	Password string
}

type LoginInput struct {
	Username string
	Password string
}

type AuthResult struct {
	Token string
	User  *model.User
}

func NewAuthService(
	userRepo *repository.UserRepository,
	resetRepo *repository.PasswordResetRepository,
	jwtSecret string,
	jwtExpiration time.Duration,
	resetTokenTTL time.Duration,
) *AuthService {
	if resetTokenTTL <= 0 {
		resetTokenTTL = time.Hour
	}
	return &AuthService{
		userRepo:      userRepo,
		resetRepo:     resetRepo,
		jwtSecret:     jwtSecret,
		jwtExpiration: jwtExpiration,
		resetTokenTTL: resetTokenTTL,
	}
}

func (s *AuthService) Register(input RegisterInput) (*AuthResult, error) {
	username := strings.TrimSpace(input.Username)
	email := strings.TrimSpace(strings.ToLower(input.Email))
	password := strings.TrimSpace(input.Password)

	if username == "" || email == "" || len(password) < 8 {
		return nil, ErrInvalidInput
	}

	existingByName, err := s.userRepo.GetByUsername(username)
	if err != nil {
		return nil, err
	}
	if existingByName != nil {
		return nil, ErrUsernameExists
	}

	existingByEmail, err := s.userRepo.GetByEmail(email)
	if err != nil {
		return nil, err
	}
	if existingByEmail != nil {
		return nil, ErrEmailExists
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password failed: %w", err)
	}

	user := &model.User{
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
	}
	if err := s.userRepo.Create(user); err != nil {
		return nil, err
	}

	token, err := jwtutil.GenerateToken(s.jwtSecret, s.jwtExpiration, user.ID, user.Username)
	if err != nil {
		return nil, err
	}
	return &AuthResult{Token: token, User: user}, nil
}

func (s *AuthService) Login(input LoginInput) (*AuthResult, error) {
	username := strings.TrimSpace(input.Username)
	password := strings.TrimSpace(input.Password)
	if username == "" || password == "" {
		return nil, ErrInvalidInput
	}

	user, err := s.userRepo.GetByUsername(username)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrInvalidCredential
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredential
	}

	token, err := jwtutil.GenerateToken(s.jwtSecret, s.jwtExpiration, user.ID, user.Username)
	if err != nil {
		return nil, err
	}
	return &AuthResult{Token: token, User: user}, nil
}

func (s *AuthService) GetUserByID(id uint) (*model.User, error) {
	if id == 0 {
		return nil, ErrInvalidInput
	}
	return s.userRepo.GetByID(id)
}

// ForgotPassword issues a single-use reset token for the account behind
// email. Unknown addresses succeed silently so the endpoint cannot be used
// to enumerate accounts. Without a mail sender the token is written to the
// server log.
func (s *AuthService) ForgotPassword(email string) error {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" {
		return ErrInvalidInput
	}

	user, err := s.userRepo.GetByEmail(email)
	if err != nil {
		return err
	}
	if user == nil {
		log.Printf("password reset requested for unknown email")
		return nil
	}

	token := &model.PasswordResetToken{
		UserID:    user.ID,
		Token:     uuid.NewString(),
		ExpiresAt: time.Now().Add(s.resetTokenTTL),
	}
	if err := s.resetRepo.Create(token); err != nil {
		return err
	}

	log.Printf("password reset token issued for user %d: %s", user.ID, token.Token)
	return nil
}

// ResetPassword redeems a token and replaces the account password. Tokens
// are one-shot; a redeemed or expired token reports ErrResetTokenInvalid.
func (s *AuthService) ResetPassword(token, newPassword string) error {
	token = strings.TrimSpace(token)
	newPassword = strings.TrimSpace(newPassword)
	if token == "" {
		return ErrInvalidInput
	}
	if !passwordIsStrong(newPassword) {
		return ErrWeakPassword
	}

	record, err := s.resetRepo.GetByToken(token)
	if err != nil {
		return err
	}
	if record == nil || !record.Usable(time.Now()) {
		return ErrResetTokenInvalid
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password failed: %w", err)
	}

	if err := s.userRepo.UpdatePasswordHash(record.UserID, string(hash)); err != nil {
		return err
	}
	return s.resetRepo.MarkUsed(record.ID)
}

// passwordIsStrong requires at least 8 chars with upper, lower, digit and
// punctuation present.
func passwordIsStrong(password string) bool {
	if len(password) < 8 {
		return false
	}
	var hasUpper, hasLower, hasDigit, hasSpecial bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasDigit = true
		case unicode.IsPunct(r) || unicode.IsSymbol(r):
			hasSpecial = true
		}
	}
	return hasUpper && hasLower && hasDigit && hasSpecial
}
